package main

// EffectKind tags a visual effect entity
type EffectKind uint8

const (
	EffectSmoke EffectKind = iota
	EffectExplosion
)

// Smoke and explosion tuning
const (
	smokeAlpha        = 128.0
	smokeFade         = 6.0   // alpha lost on the first tick
	smokeFadeDecay    = 0.1   // fade slows by this much per tick
	smokeFadeFloor    = 1.5
	smokeScale        = 0.1
	smokeGrowth       = 0.005 // scale gained per tick
	smokeSpeed        = 400.0 // pixels/s
	ExplosionFrames   = 8
	explosionFrameDur = 0.1 // seconds per frame
)

// Effect is a purely visual entity. It never takes part in collisions.
type Effect struct {
	Kind  EffectKind
	Pos   Vec2
	Vel   Vec2
	Alpha float64
	Scale float64
	Frame int
	Alive bool

	fade      float64
	lastFrame float64
}

// NewSmoke emits an exhaust puff travelling along dir
func NewSmoke(pos, dir Vec2) *Effect {
	return &Effect{
		Kind:  EffectSmoke,
		Pos:   pos,
		Vel:   dir.Scale(smokeSpeed),
		Alpha: smokeAlpha,
		Scale: smokeScale,
		Alive: true,
		fade:  smokeFade,
	}
}

// NewExplosion starts an explosion animation at pos
func NewExplosion(pos Vec2, now float64) *Effect {
	return &Effect{Kind: EffectExplosion, Pos: pos, Alive: true, lastFrame: now}
}

// Update advances the effect one tick
func (e *Effect) Update(dt, now float64) {
	if !e.Alive {
		return
	}
	switch e.Kind {
	case EffectSmoke:
		e.Pos = e.Pos.Add(e.Vel.Scale(dt))
		e.Scale += smokeGrowth
		e.Alpha -= e.fade
		if e.Alpha < 0 {
			e.Alive = false
		}
		e.fade = max(e.fade-smokeFadeDecay, smokeFadeFloor)
	case EffectExplosion:
		if now-e.lastFrame > explosionFrameDur {
			e.lastFrame = now
			e.Frame++
		}
		if e.Frame >= ExplosionFrames-1 {
			e.Alive = false
		}
	}
}

// EffectSink receives notifications for cues outside the simulation, such
// as sound. Implementations must not block.
type EffectSink interface {
	Exhaust(player int)
	Shot(player int)
	Explosion(player int, reason KillReason)
}

type nopSink struct{}

func (nopSink) Exhaust(int)               {}
func (nopSink) Shot(int)                  {}
func (nopSink) Explosion(int, KillReason) {}
