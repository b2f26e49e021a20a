package main

// Craft is the player-controlled lander.
// Pos is the centre of the sprite; Rotation is in degrees, counter-clockwise
// on screen. Landed is only ever true while Vel is zero.
type Craft struct {
	Player    int
	Pos       Vec2
	Vel       Vec2
	Acc       Vec2
	Rotation  int
	Landed    bool
	Thrusting bool
	Exploded  bool
	Fuel      FuelTank
	LastShot  float64

	sprite *RotatedSprite
}

// CraftTick reports what a tick did, for the session to act on
type CraftTick struct {
	Killed  bool
	Reason  KillReason
	Exhaust bool // thrust was applied; emit smoke at Tail()
	Fired   bool // a shot left the nose this tick
}

// NewCraft places a fresh craft with a full tank. A new craft starts
// landed, so it hovers at its spawn point until the pilot thrusts.
func NewCraft(player int, center Vec2, t Tuning) *Craft {
	return &Craft{
		Player: player,
		Pos:    center,
		Landed: true,
		Fuel:   NewFuelTank(t.FuelMax),
		sprite: NewRotatedSprite(CraftMask()),
	}
}

// NewCraftAtTopLeft places a craft so its unrotated box starts at p
func NewCraftAtTopLeft(player int, p Vec2, t Tuning) *Craft {
	c := NewCraft(player, p, t)
	w, h := c.Size()
	c.Pos = p.Add(Vec2{float64(w) / 2, float64(h) / 2})
	return c
}

// NewCraftOnPad places a craft resting on top of a landing pad
func NewCraftOnPad(player int, pad Rect, t Tuning) *Craft {
	c := NewCraft(player, Vec2{}, t)
	_, h := c.Size()
	top := pad.MidTop()
	c.Pos = Vec2{top.X, top.Y - float64(h)/2}
	return c
}

// Size returns the unrotated sprite dimensions
func (c *Craft) Size() (w, h int) {
	b := c.sprite.Base()
	return b.W, b.H
}

// Body returns the rotated mask at the current position
func (c *Craft) Body() Body { return c.sprite.At(c.Pos, c.Rotation) }

// Heading is the unit vector the nose points along
func (c *Craft) Heading() Vec2 { return Vec2{0, -1}.Rotate(float64(-c.Rotation)) }

// Nose is where shots leave the craft
func (c *Craft) Nose() Vec2 {
	_, h := c.Size()
	return c.Pos.Sub(Vec2{0, float64(h) / 2}.Rotate(float64(-c.Rotation)))
}

// Tail is where exhaust smoke appears
func (c *Craft) Tail() Vec2 {
	_, h := c.Size()
	return c.Pos.Add(Vec2{0, float64(h) * 0.75}.Rotate(float64(-c.Rotation)))
}

// Control consumes one tick of intent: rotation, thrust and fire.
func (c *Craft) Control(in Intent, now float64, t Tuning) (exhaust, fired bool) {
	if in.Has(IntentRotateLeft) {
		c.Rotation += t.RotationStep
	}
	if in.Has(IntentRotateRight) {
		c.Rotation -= t.RotationStep
	}
	c.Rotation = normalizeDegrees(c.Rotation)

	if in.Has(IntentThrust) && c.Fuel.Amount > 0 {
		c.Acc = c.Acc.Add(Vec2{0, -t.Thrust}.Rotate(float64(-c.Rotation)))
		c.Thrusting = true
		c.Fuel.Drain()
		exhaust = true
	}
	if in.Has(IntentFire) && now-c.LastShot > t.Reload {
		c.LastShot = now
		fired = true
	}
	return exhaust, fired
}

// Integrate applies gravity while airborne and advances one step of
// semi-implicit Euler.
func (c *Craft) Integrate(dt, gravity float64) {
	if !c.Landed {
		c.Acc = c.Acc.Add(Vec2{0, gravity})
	}
	c.Vel = c.Vel.Add(c.Acc.Scale(dt))
	c.Pos = c.Pos.Add(c.Vel.Scale(dt))
}

// Touchdown resolves terrain contact. Any pad among the overlapping tiles
// makes it a landing attempt; otherwise contact is fatal.
func (c *Craft) Touchdown(g *Grid, hardLanding float64) (KillReason, bool) {
	hits := g.CollidingTiles(c.Body())
	if len(hits) == 0 {
		return 0, false
	}
	for _, tile := range hits {
		if !tile.IsPad() {
			continue
		}
		if c.Vel.Y > hardLanding {
			return ReasonWall, true
		}
		c.Vel = Vec2{}
		c.Rotation = 0
		c.Landed = true
		return 0, false
	}
	return ReasonWall, true
}

// HitBy reports whether a projectile fired by someone else overlaps the craft
func (c *Craft) HitBy(shots []*Projectile) bool {
	if len(shots) == 0 {
		return false
	}
	body := c.Body()
	for _, p := range shots {
		if !p.Alive || p.Sender == c.Player {
			continue
		}
		if Collide(body, p.Body()) {
			return true
		}
	}
	return false
}

// Tick runs one full update of the craft against the terrain and the live
// projectiles. dt and now are in seconds.
func (c *Craft) Tick(in Intent, dt, now float64, g *Grid, shots []*Projectile, t Tuning) CraftTick {
	var res CraftTick
	if c.Exploded {
		return res
	}
	c.Thrusting = false
	c.Acc = Vec2{}

	res.Exhaust, res.Fired = c.Control(in, now, t)
	c.Integrate(dt, t.Gravity)

	if reason, killed := c.Touchdown(g, t.HardLanding); killed {
		res.Killed, res.Reason = true, reason
	} else if c.HitBy(shots) {
		res.Killed, res.Reason = true, ReasonShot
	}
	if !c.Vel.IsZero() {
		c.Landed = false
	}
	if res.Killed {
		c.Exploded = true
		return res
	}
	if c.Landed {
		c.Fuel.Regenerate(t.FuelRegen)
	}
	return res
}

// Snapshot captures the craft for the relay
func (c *Craft) Snapshot() Snapshot {
	return Snapshot{
		Player:    c.Player,
		X:         c.Pos.X,
		Y:         c.Pos.Y,
		VX:        c.Vel.X,
		VY:        c.Vel.Y,
		Rotation:  c.Rotation,
		Fuel:      c.Fuel.Amount,
		FuelMax:   c.Fuel.Max,
		Landed:    c.Landed,
		Thrusting: c.Thrusting,
		Exploded:  c.Exploded,
		LastShot:  c.LastShot,
	}
}

// ApplySnapshot overwrites the craft state with a relayed one
func (c *Craft) ApplySnapshot(s Snapshot) {
	c.Pos = Vec2{s.X, s.Y}
	c.Vel = Vec2{s.VX, s.VY}
	c.Rotation = normalizeDegrees(s.Rotation)
	c.Fuel = FuelTank{Max: max(s.FuelMax, 0)}
	c.Fuel.Amount = min(max(s.Fuel, 0), c.Fuel.Max)
	c.Landed = s.Landed
	c.Thrusting = s.Thrusting
	c.Exploded = s.Exploded
	c.LastShot = s.LastShot
}

func normalizeDegrees(d int) int {
	return ((d % 360) + 360) % 360
}
