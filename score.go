package main

import "fmt"

// KillReason classifies why a craft was destroyed
type KillReason uint8

const (
	ReasonWall KillReason = iota + 1
	ReasonShot
)

func (r KillReason) String() string {
	switch r {
	case ReasonWall:
		return "wall"
	case ReasonShot:
		return "shot"
	}
	return "unknown"
}

// ScorePolicy decides what a penalty does to a zero score
type ScorePolicy string

const (
	PolicyClamp    ScorePolicy = "clamp"    // never below zero
	PolicyNegative ScorePolicy = "negative" // penalties may go below zero
)

func (p ScorePolicy) Valid() bool { return p == PolicyClamp || p == PolicyNegative }

// recentEvents is how many locally produced events a ledger remembers for
// relaying to the peer.
const recentEvents = 16

// ScoreEvent is one give/take applied to a ledger
type ScoreEvent struct {
	Seq    uint32 `msgpack:"s" json:"seq"`
	Player int    `msgpack:"p" json:"player"`
	Delta  int    `msgpack:"d" json:"delta"`
}

// ScoreLedger holds the point counters of players 1 and 2
type ScoreLedger struct {
	policy ScorePolicy
	points [2]int
	seq    uint32
	recent []ScoreEvent
}

func NewScoreLedger(policy ScorePolicy) *ScoreLedger {
	if !policy.Valid() {
		policy = PolicyClamp
	}
	return &ScoreLedger{policy: policy}
}

// Give credits player one point
func (l *ScoreLedger) Give(player int) ScoreEvent { return l.record(player, 1) }

// Take removes one point from player, subject to the policy
func (l *ScoreLedger) Take(player int) ScoreEvent { return l.record(player, -1) }

func (l *ScoreLedger) record(player, delta int) ScoreEvent {
	l.seq++
	ev := ScoreEvent{Seq: l.seq, Player: player, Delta: delta}
	l.Apply(ev)
	l.recent = append(l.recent, ev)
	if len(l.recent) > recentEvents {
		l.recent = l.recent[len(l.recent)-recentEvents:]
	}
	return ev
}

// Apply adds an event's delta without recording it as locally produced.
// Used for events relayed from the peer.
func (l *ScoreLedger) Apply(ev ScoreEvent) {
	if ev.Player < 1 || ev.Player > 2 {
		return
	}
	v := l.points[ev.Player-1] + ev.Delta
	if v < 0 && l.policy == PolicyClamp {
		v = 0
	}
	l.points[ev.Player-1] = v
}

// ApplyKill issues the score adjustment for a death: a shot credits the
// opponent, a crash penalises the victim.
func (l *ScoreLedger) ApplyKill(victim int, reason KillReason) ScoreEvent {
	if reason == ReasonShot {
		return l.Give(Opponent(victim))
	}
	return l.Take(victim)
}

// Score returns a player's points
func (l *ScoreLedger) Score(player int) int {
	if player < 1 || player > 2 {
		return 0
	}
	return l.points[player-1]
}

// Scores returns both counters, player 1 first
func (l *ScoreLedger) Scores() [2]int { return l.points }

// Recent returns the last locally produced events, oldest first
func (l *ScoreLedger) Recent() []ScoreEvent {
	out := make([]ScoreEvent, len(l.recent))
	copy(out, l.recent)
	return out
}

// Reset zeroes both counters; the event sequence keeps counting
func (l *ScoreLedger) Reset() {
	l.points = [2]int{}
}

func (l *ScoreLedger) String() string {
	return fmt.Sprintf("p1: %d\np2: %d", l.points[0], l.points[1])
}

// Opponent returns the other player id
func Opponent(player int) int {
	if player == 1 {
		return 2
	}
	return 1
}

// eventCursor tracks which relayed score events of each peer slot were
// already applied. A peer whose snapshot sequence goes backwards restarted
// and its event sequence starts over.
type eventCursor struct {
	snapSeq [2]uint64
	evSeq   [2]uint32
}

// fresh returns the events of snap not seen before from that slot
func (c *eventCursor) fresh(slot int, snap Snapshot) []ScoreEvent {
	if slot < 0 || slot > 1 {
		return nil
	}
	if snap.Seq < c.snapSeq[slot] {
		c.evSeq[slot] = 0
	}
	c.snapSeq[slot] = snap.Seq
	var out []ScoreEvent
	for _, ev := range snap.Events {
		if ev.Seq <= c.evSeq[slot] {
			continue
		}
		out = append(out, ev)
		c.evSeq[slot] = ev.Seq
	}
	return out
}

// reset forgets a slot, for a fresh peer on that index
func (c *eventCursor) reset(slot int) {
	if slot >= 0 && slot <= 1 {
		c.snapSeq[slot], c.evSeq[slot] = 0, 0
	}
}
