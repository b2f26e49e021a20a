package main

// EntityKind tags the variants held by a session
type EntityKind uint8

const (
	KindCraft EntityKind = iota
	KindProjectile
	KindTerrain
	KindEffect
)

func (k EntityKind) String() string {
	switch k {
	case KindCraft:
		return "craft"
	case KindProjectile:
		return "projectile"
	case KindTerrain:
		return "terrain"
	case KindEffect:
		return "effect"
	}
	return "unknown"
}

// Handle references one slot of a session arena. Craft handles use the
// slot index (player-1). Projectile and effect handles are only valid until
// the next Step compacts the arena.
type Handle struct {
	Kind  EntityKind
	Index int
}

// Entity is a tagged view of one arena slot; exactly one pointer is set,
// matching Kind.
type Entity struct {
	Handle     Handle
	Craft      *Craft
	Projectile *Projectile
	Tile       *TerrainTile
	Effect     *Effect
}

// Get resolves a handle
func (s *Session) Get(h Handle) (Entity, bool) {
	e := Entity{Handle: h}
	switch h.Kind {
	case KindCraft:
		if h.Index < 0 || h.Index >= len(s.crafts) || s.crafts[h.Index] == nil {
			return e, false
		}
		e.Craft = s.crafts[h.Index]
	case KindProjectile:
		if h.Index < 0 || h.Index >= len(s.projectiles) {
			return e, false
		}
		e.Projectile = s.projectiles[h.Index]
	case KindTerrain:
		if h.Index < 0 || h.Index >= len(s.grid.Tiles) {
			return e, false
		}
		e.Tile = &s.grid.Tiles[h.Index]
	case KindEffect:
		if h.Index < 0 || h.Index >= len(s.effects) {
			return e, false
		}
		e.Effect = s.effects[h.Index]
	default:
		return e, false
	}
	return e, true
}

// Entities lists every live entity in draw order: terrain, effects,
// projectiles (local then relayed), crafts.
func (s *Session) Entities() []Entity {
	out := make([]Entity, 0, len(s.grid.Tiles)+len(s.effects)+len(s.projectiles)+2)
	for i := range s.grid.Tiles {
		out = append(out, Entity{Handle: Handle{KindTerrain, i}, Tile: &s.grid.Tiles[i]})
	}
	for i, e := range s.effects {
		out = append(out, Entity{Handle: Handle{KindEffect, i}, Effect: e})
	}
	for i, p := range s.projectiles {
		out = append(out, Entity{Handle: Handle{KindProjectile, i}, Projectile: p})
	}
	for _, shots := range s.remoteShots {
		for _, p := range shots {
			out = append(out, Entity{Handle: Handle{KindProjectile, -1}, Projectile: p})
		}
	}
	for i, c := range s.crafts {
		if c != nil {
			out = append(out, Entity{Handle: Handle{KindCraft, i}, Craft: c})
		}
	}
	return out
}
