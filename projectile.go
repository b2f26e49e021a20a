package main

// Projectile is a straight-line laser shot. Sender is the player id of the
// craft that fired it, which the shot can never hit.
type Projectile struct {
	ID      uint32
	Sender  int
	Pos     Vec2
	Vel     Vec2
	Heading int // sprite rotation in degrees, same convention as Craft
	Age     float64
	Alive   bool

	mask *Mask
}

// NewProjectile fires a shot from the craft's nose along its heading
func NewProjectile(id uint32, c *Craft, speed float64) *Projectile {
	return &Projectile{
		ID:      id,
		Sender:  c.Player,
		Pos:     c.Nose(),
		Vel:     c.Heading().Scale(speed),
		Heading: c.Rotation,
		Alive:   true,
		mask:    LaserMask().Rotate(c.Rotation),
	}
}

// ProjectileFromState rebuilds a relayed shot
func ProjectileFromState(s ProjectileState) *Projectile {
	return &Projectile{
		ID:      s.ID,
		Sender:  s.Sender,
		Pos:     Vec2{s.X, s.Y},
		Vel:     Vec2{s.VX, s.VY},
		Heading: s.Heading,
		Alive:   true,
		mask:    LaserMask().Rotate(s.Heading),
	}
}

// Body places the rotated laser mask at the shot's position
func (p *Projectile) Body() Body {
	return Body{Mask: p.mask, Rect: RectFromCenter(p.Pos, p.mask.W, p.mask.H)}
}

// Update moves the shot one tick. It dies on terrain contact, when it
// leaves the map, or once it is older than life seconds (life 0 = no cap).
func (p *Projectile) Update(dt float64, g *Grid, life float64) {
	if !p.Alive {
		return
	}
	p.Pos = p.Pos.Add(p.Vel.Scale(dt))
	p.Age += dt

	switch {
	case life > 0 && p.Age > life:
		p.Alive = false
	case !p.inside(g.Bounds()):
		p.Alive = false
	case len(g.CollidingTiles(p.Body())) > 0:
		p.Alive = false
	}
}

func (p *Projectile) inside(r Rect) bool {
	return p.Pos.X >= float64(r.X) && p.Pos.Y >= float64(r.Y) &&
		p.Pos.X < float64(r.Right()) && p.Pos.Y < float64(r.Bottom())
}

// ToState converts to wire state
func (p *Projectile) ToState() ProjectileState {
	return ProjectileState{
		ID:      p.ID,
		X:       p.Pos.X,
		Y:       p.Pos.Y,
		VX:      p.Vel.X,
		VY:      p.Vel.Y,
		Heading: p.Heading,
		Sender:  p.Sender,
	}
}
