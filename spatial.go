package main

// The terrain is grid-aligned, so the tile grid doubles as the broad-phase
// index: a box only needs testing against the tiles in the cells it covers.

func (g *Grid) cellKey(col, row int) [2]int { return [2]int{col, row} }

// cellRange returns the inclusive cell span covered by a pixel box
func (g *Grid) cellRange(r Rect) (minC, minR, maxC, maxR int) {
	ts := g.TileSize
	minC = floorDiv(r.X, ts)
	minR = floorDiv(r.Y, ts)
	maxC = floorDiv(r.Right()-1, ts)
	maxR = floorDiv(r.Bottom()-1, ts)
	return
}

// TilesOverlapping returns every tile whose box intersects r, in row-major
// order. Pixel masks are not consulted here.
func (g *Grid) TilesOverlapping(r Rect) []*TerrainTile {
	if r.W <= 0 || r.H <= 0 {
		return nil
	}
	minC, minR, maxC, maxR := g.cellRange(r)
	var out []*TerrainTile
	for row := minR; row <= maxR; row++ {
		for col := minC; col <= maxC; col++ {
			if t, ok := g.TileAt(col, row); ok {
				out = append(out, t)
			}
		}
	}
	return out
}

// CollidingTiles returns the tiles whose masks overlap b
func (g *Grid) CollidingTiles(b Body) []*TerrainTile {
	var hits []*TerrainTile
	for _, t := range g.TilesOverlapping(b.Rect) {
		if Collide(b, t.Body()) {
			hits = append(hits, t)
		}
	}
	return hits
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
