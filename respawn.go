package main

// SelectRespawnPad returns the pad whose centre is furthest from the
// opponent. Ties keep the first pad in the given order. It fails only
// when there are no pads.
func SelectRespawnPad(pads []*TerrainTile, opponent Vec2) (*TerrainTile, bool) {
	var best *TerrainTile
	bestDist := -1.0
	for _, p := range pads {
		d := p.Rect.Center().DistanceTo(opponent)
		if d > bestDist {
			best, bestDist = p, d
		}
	}
	return best, best != nil
}
