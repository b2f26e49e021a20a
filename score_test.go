package main

import "testing"

func TestLedgerGiveTake(t *testing.T) {
	l := NewScoreLedger(PolicyClamp)
	l.Give(1)
	l.Give(1)
	l.Take(1)
	if l.Score(1) != 1 {
		t.Errorf("expected 1, got %d", l.Score(1))
	}
	if l.Score(2) != 0 {
		t.Errorf("expected 0, got %d", l.Score(2))
	}
}

func TestLedgerClampPolicy(t *testing.T) {
	l := NewScoreLedger(PolicyClamp)
	ev := l.Take(2)
	if l.Score(2) != 0 {
		t.Errorf("clamp policy must not go below zero, got %d", l.Score(2))
	}
	if ev.Delta != -1 {
		t.Errorf("event should carry the requested delta, got %d", ev.Delta)
	}
}

func TestLedgerNegativePolicy(t *testing.T) {
	l := NewScoreLedger(PolicyNegative)
	l.Take(2)
	l.Take(2)
	if l.Score(2) != -2 {
		t.Errorf("negative policy should allow -2, got %d", l.Score(2))
	}
}

func TestLedgerUnknownPolicyDefaultsToClamp(t *testing.T) {
	l := NewScoreLedger("bogus")
	l.Take(1)
	if l.Score(1) != 0 {
		t.Errorf("expected clamp behaviour, got %d", l.Score(1))
	}
}

func TestApplyKill(t *testing.T) {
	l := NewScoreLedger(PolicyNegative)
	l.ApplyKill(1, ReasonShot)
	if l.Score(2) != 1 || l.Score(1) != 0 {
		t.Errorf("shot should credit the opponent: %v", l.Scores())
	}
	l.ApplyKill(2, ReasonWall)
	if l.Score(2) != 0 {
		t.Errorf("wall death should penalise the victim: %v", l.Scores())
	}
}

func TestLedgerRecentIsBounded(t *testing.T) {
	l := NewScoreLedger(PolicyClamp)
	for i := 0; i < recentEvents+5; i++ {
		l.Give(1)
	}
	r := l.Recent()
	if len(r) != recentEvents {
		t.Fatalf("expected %d recent events, got %d", recentEvents, len(r))
	}
	if r[0].Seq != 6 || r[len(r)-1].Seq != uint32(recentEvents+5) {
		t.Errorf("unexpected window %d..%d", r[0].Seq, r[len(r)-1].Seq)
	}
}

func TestLedgerApplyDoesNotRecord(t *testing.T) {
	l := NewScoreLedger(PolicyClamp)
	l.Apply(ScoreEvent{Seq: 9, Player: 2, Delta: 1})
	if l.Score(2) != 1 {
		t.Errorf("expected applied point, got %d", l.Score(2))
	}
	if len(l.Recent()) != 0 {
		t.Error("applied remote events must not be re-relayed")
	}
	l.Apply(ScoreEvent{Player: 7, Delta: 1})
	if l.Scores() != [2]int{0, 1} {
		t.Errorf("invalid player should be ignored: %v", l.Scores())
	}
}

func TestLedgerReset(t *testing.T) {
	l := NewScoreLedger(PolicyClamp)
	l.Give(1)
	l.Give(2)
	l.Reset()
	if l.Scores() != [2]int{} {
		t.Errorf("expected zero scores, got %v", l.Scores())
	}
	if l.String() != "p1: 0\np2: 0" {
		t.Errorf("unexpected string %q", l.String())
	}
}

func TestKillReasonString(t *testing.T) {
	if ReasonWall.String() != "wall" || ReasonShot.String() != "shot" {
		t.Error("unexpected reason names")
	}
}

func TestEventCursor(t *testing.T) {
	var c eventCursor
	snap := Snapshot{Seq: 5, Events: []ScoreEvent{{Seq: 1}, {Seq: 2}}}
	if n := len(c.fresh(0, snap)); n != 2 {
		t.Fatalf("expected 2 fresh events, got %d", n)
	}
	snap.Seq = 6
	snap.Events = append(snap.Events, ScoreEvent{Seq: 3})
	got := c.fresh(0, snap)
	if len(got) != 1 || got[0].Seq != 3 {
		t.Errorf("expected only event 3, got %+v", got)
	}
	// Slots are independent
	if n := len(c.fresh(1, Snapshot{Seq: 1, Events: []ScoreEvent{{Seq: 1}}})); n != 1 {
		t.Errorf("slot 1 should see its own events, got %d", n)
	}
	// Sequence going backwards means a restarted peer
	if n := len(c.fresh(0, Snapshot{Seq: 1, Events: []ScoreEvent{{Seq: 1}}})); n != 1 {
		t.Errorf("restarted peer's events should apply, got %d", n)
	}
	c.reset(0)
	if n := len(c.fresh(0, Snapshot{Seq: 9, Events: []ScoreEvent{{Seq: 1}}})); n != 1 {
		t.Errorf("reset slot should accept events again, got %d", n)
	}
	if c.fresh(4, snap) != nil {
		t.Error("invalid slot should yield nothing")
	}
}
