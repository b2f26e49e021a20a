package main

import "fmt"

// KillEvent reports one craft death and where its replacement spawned
type KillEvent struct {
	Player int
	Reason KillReason
	Pad    *TerrainTile
	Score  ScoreEvent
}

// Session owns every entity of one match: the two craft slots, live
// projectiles, effects and the terrain. It is single-threaded; callers
// drive it with Step.
type Session struct {
	tuning   Tuning
	grid     *Grid
	textures *TextureSet
	sink     EffectSink

	crafts      [2]*Craft
	remote      [2]bool
	projectiles []*Projectile
	remoteShots [2][]*Projectile
	effects     []*Effect

	Score *ScoreLedger

	now      float64
	tick     uint64
	snapSeq  uint64
	nextShot uint32
	cursor   eventCursor
}

// NewSession validates the grid and spawns both crafts
func NewSession(t Tuning, g *Grid, ts *TextureSet) (*Session, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	s := &Session{
		tuning:   t,
		grid:     g,
		textures: ts,
		sink:     nopSink{},
		Score:    NewScoreLedger(t.ScorePolicy),
	}
	if err := s.spawnAll(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) spawnAll() error {
	for i := range s.crafts {
		c, err := s.SpawnCraft(i + 1)
		if err != nil {
			return err
		}
		s.crafts[i] = c
	}
	return nil
}

// SpawnCraft builds a fresh craft at a player's spawn marker
func (s *Session) SpawnCraft(player int) (*Craft, error) {
	p, ok := s.grid.SpawnTopLeft(player)
	if !ok {
		return nil, fmt.Errorf("%w for player %d", ErrMissingSpawn, player)
	}
	return NewCraftAtTopLeft(player, p, s.tuning), nil
}

// SetEffectSink installs a receiver for sound cues
func (s *Session) SetEffectSink(sink EffectSink) {
	if sink == nil {
		sink = nopSink{}
	}
	s.sink = sink
}

// SetRemote marks a player slot as driven by relayed snapshots
func (s *Session) SetRemote(player int, remote bool) {
	if player >= 1 && player <= 2 {
		s.remote[player-1] = remote
	}
}

func (s *Session) Grid() *Grid { return s.grid }
func (s *Session) Tuning() Tuning { return s.tuning }
func (s *Session) Now() float64 { return s.now }
func (s *Session) Tick() uint64 { return s.tick }
func (s *Session) Effects() []*Effect { return s.effects }

// Craft returns the current craft of player 1 or 2
func (s *Session) Craft(player int) *Craft {
	if player < 1 || player > 2 {
		return nil
	}
	return s.crafts[player-1]
}

// Projectiles returns the locally simulated shots
func (s *Session) Projectiles() []*Projectile { return s.projectiles }

// hazards is every shot that can hit a local craft
func (s *Session) hazards() []*Projectile {
	n := len(s.projectiles) + len(s.remoteShots[0]) + len(s.remoteShots[1])
	if n == len(s.projectiles) {
		return s.projectiles
	}
	out := make([]*Projectile, 0, n)
	out = append(out, s.projectiles...)
	out = append(out, s.remoteShots[0]...)
	return append(out, s.remoteShots[1]...)
}

// Step advances the session by dt seconds; now is the session clock used
// for reload and animation timing. Crafts update in slot order, then
// projectiles, then effects.
func (s *Session) Step(dt, now float64, in Intents) []KillEvent {
	s.now = now
	s.tick++

	var kills []KillEvent
	for i := range s.crafts {
		if s.remote[i] {
			continue
		}
		if ev, killed := s.updateCraft(i, in[i], dt); killed {
			kills = append(kills, ev)
		}
	}

	live := s.projectiles[:0]
	for _, p := range s.projectiles {
		s.updateProjectile(p, dt)
		if p.Alive {
			live = append(live, p)
		}
	}
	clear(s.projectiles[len(live):])
	s.projectiles = live

	fx := s.effects[:0]
	for _, e := range s.effects {
		s.updateEffect(e, dt)
		if e.Alive {
			fx = append(fx, e)
		}
	}
	clear(s.effects[len(fx):])
	s.effects = fx
	return kills
}

func (s *Session) updateCraft(slot int, in Intent, dt float64) (KillEvent, bool) {
	c := s.crafts[slot]
	res := c.Tick(in, dt, s.now, s.grid, s.hazards(), s.tuning)
	if res.Exhaust {
		s.effects = append(s.effects, NewSmoke(c.Tail(), Vec2{0, 1}.Rotate(float64(-c.Rotation))))
		s.sink.Exhaust(c.Player)
	}
	if res.Fired {
		s.nextShot++
		s.projectiles = append(s.projectiles, NewProjectile(s.nextShot, c, s.tuning.ProjectileSpeed))
		s.sink.Shot(c.Player)
	}
	if !res.Killed {
		return KillEvent{}, false
	}
	return s.kill(slot, res.Reason), true
}

func (s *Session) updateProjectile(p *Projectile, dt float64) {
	p.Update(dt, s.grid, s.tuning.ProjectileLife)
}

func (s *Session) updateEffect(e *Effect, dt float64) {
	e.Update(dt, s.now)
}

// kill removes the craft in slot, scores the death and respawns the player
// on the pad furthest from the opponent.
func (s *Session) kill(slot int, reason KillReason) KillEvent {
	dead := s.crafts[slot]
	s.effects = append(s.effects, NewExplosion(dead.Pos, s.now))
	s.sink.Explosion(dead.Player, reason)

	from := dead.Pos
	if opp := s.crafts[1-slot]; opp != nil {
		from = opp.Body().Rect.Center()
	}
	// NewSession validated the grid, so a pad always exists
	pad, _ := SelectRespawnPad(s.grid.LandingPads(), from)
	ev := KillEvent{
		Player: dead.Player,
		Reason: reason,
		Pad:    pad,
		Score:  s.Score.ApplyKill(dead.Player, reason),
	}
	s.crafts[slot] = NewCraftOnPad(dead.Player, pad.Rect, s.tuning)
	return ev
}

// LocalSnapshot captures a player's craft, its live shots and the recent
// score events for the relay.
func (s *Session) LocalSnapshot(player int) Snapshot {
	c := s.Craft(player)
	if c == nil {
		return Snapshot{Player: player}
	}
	s.snapSeq++
	snap := c.Snapshot()
	snap.Seq = s.snapSeq
	for _, p := range s.projectiles {
		if p.Sender == player {
			snap.Projectiles = append(snap.Projectiles, p.ToState())
		}
	}
	snap.Events = s.Score.Recent()
	return snap
}

// ApplyRemote updates a remote slot from a relayed snapshot. The peer's
// shots replace the previous set of relayed hazards and each of its score
// events is applied once.
func (s *Session) ApplyRemote(snap Snapshot) {
	if snap.Player < 1 || snap.Player > 2 {
		return
	}
	slot := snap.Player - 1
	if !s.remote[slot] {
		return
	}
	s.crafts[slot].ApplySnapshot(snap)
	shots := make([]*Projectile, 0, len(snap.Projectiles))
	for _, ps := range snap.Projectiles {
		shots = append(shots, ProjectileFromState(ps))
	}
	s.remoteShots[slot] = shots

	for _, ev := range s.cursor.fresh(slot, snap) {
		s.Score.Apply(ev)
	}
}

// Reset re-creates the crafts, clears shots and effects and zeroes the
// score. A session sharing a match with a remote peer ignores it: the
// peer's ledger and the relay's spawn would no longer agree.
func (s *Session) Reset() error {
	if s.remote[0] || s.remote[1] {
		return nil
	}
	s.projectiles = nil
	s.remoteShots = [2][]*Projectile{}
	s.effects = nil
	s.Score.Reset()
	return s.spawnAll()
}

// Minimap renders one rune per tile: '#' terrain, '=' pads, '1'/'2' crafts
func (s *Session) Minimap() []string {
	rows := make([][]rune, s.grid.NumRows())
	for r := range rows {
		rows[r] = []rune(fmt.Sprintf("%*s", s.grid.Cols, ""))
	}
	put := func(col, row int, ch rune) {
		if row >= 0 && row < len(rows) && col >= 0 && col < len(rows[row]) {
			rows[row][col] = ch
		}
	}
	for _, t := range s.grid.Tiles {
		ch := '#'
		if t.IsPad() {
			ch = '='
		}
		put(t.Col, t.Row, ch)
	}
	ts := float64(s.grid.TileSize)
	for _, c := range s.crafts {
		if c == nil {
			continue
		}
		put(int(c.Pos.X/ts), int(c.Pos.Y/ts), rune('0'+c.Player))
	}
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = string(r)
	}
	return out
}
