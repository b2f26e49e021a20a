package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func fixedClock(t *time.Time) func() time.Time {
	return func() time.Time { return *t }
}

func TestReplayRoundTrip(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 5, 4, 10, 15, 0, 0, time.UTC)
	w := NewReplayWriter(dir, "relay", "m1")
	w.now = fixedClock(&now)

	w.PeerChanged(0, true)
	w.SnapshotReceived(0, Snapshot{Player: 1, Seq: 7, X: 12.5, Projectiles: []ProjectileState{{ID: 3, Sender: 1}}})
	w.PeerChanged(0, false)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	recs, err := ReadReplay(filepath.Join(dir, "relay-2026-05-04-10.jsonl.zst"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	if recs[0].Connected == nil || !*recs[0].Connected || recs[0].MatchID != "m1" {
		t.Errorf("bad connect record %+v", recs[0])
	}
	s := recs[1].Snapshot
	if s == nil || s.Seq != 7 || s.X != 12.5 || len(s.Projectiles) != 1 || s.Projectiles[0].ID != 3 {
		t.Errorf("bad snapshot record %+v", recs[1])
	}
	if !recs[1].At.Equal(now) {
		t.Errorf("record time = %v, want %v", recs[1].At, now)
	}
	if recs[2].Connected == nil || *recs[2].Connected {
		t.Errorf("bad disconnect record %+v", recs[2])
	}
}

func TestReplayRotatesHourly(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 5, 4, 10, 59, 0, 0, time.UTC)
	w := NewReplayWriter(dir, "relay", "m1")
	w.now = fixedClock(&now)

	w.SnapshotReceived(0, Snapshot{Seq: 1})
	now = now.Add(2 * time.Minute)
	w.SnapshotReceived(0, Snapshot{Seq: 2})
	w.SnapshotReceived(1, Snapshot{Seq: 1})
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	first, err := ReadReplay(w.PathForHour("2026-05-04-10"))
	if err != nil || len(first) != 1 {
		t.Fatalf("first hour: %d records, err %v", len(first), err)
	}
	second, err := ReadReplay(w.PathForHour("2026-05-04-11"))
	if err != nil || len(second) != 2 {
		t.Fatalf("second hour: %d records, err %v", len(second), err)
	}
}

func TestReplayAppendsAcrossWriters(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		w := NewReplayWriter(dir, "relay", "m1")
		w.now = fixedClock(&now)
		w.SnapshotReceived(i, Snapshot{Seq: uint64(i + 1)})
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}
	}
	recs, err := ReadReplay(filepath.Join(dir, "relay-2026-05-04-10.jsonl.zst"))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 || recs[1].Index != 1 {
		t.Errorf("expected both writers' records, got %+v", recs)
	}
}

func TestReadReplayMissingFile(t *testing.T) {
	if _, err := ReadReplay(filepath.Join(t.TempDir(), "nope.jsonl.zst")); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
