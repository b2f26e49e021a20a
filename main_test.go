package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultMapIsPlayable(t *testing.T) {
	g, _, err := loadGrid(DefaultConfig())
	if err != nil {
		t.Fatalf("built-in map: %v", err)
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("built-in map invalid: %v", err)
	}
	for _, row := range g.Rows {
		if len(row) != g.Cols {
			t.Fatalf("ragged row %q", row)
		}
	}
}

func TestParseConfigFlagsWin(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lander.yaml")
	yaml := "fps: 50\naddr: \"10.0.0.1:7000\"\nkeys: arrows\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := parseConfig([]string{
		"-config", path,
		"-env", filepath.Join(dir, "missing.env"),
		"-addr", "127.0.0.1:9000",
		"-policy", "negative",
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9000" {
		t.Errorf("flag should override file, addr = %q", cfg.Addr)
	}
	if cfg.FPS != 50 || cfg.Keys != "arrows" {
		t.Errorf("file values lost: fps %d keys %q", cfg.FPS, cfg.Keys)
	}
	if cfg.ScorePolicy != PolicyNegative {
		t.Errorf("policy = %q", cfg.ScorePolicy)
	}
	if cfg.Mode != "local" {
		t.Errorf("unset flag should keep default mode, got %q", cfg.Mode)
	}
}

func TestParseConfigRejectsBadValues(t *testing.T) {
	env := filepath.Join(t.TempDir(), "missing.env")
	for _, args := range [][]string{
		{"-env", env, "-mode", "spectate"},
		{"-env", env, "-fps", "0"},
		{"-env", env, "-policy", "lenient"},
		{"-env", env, "-keys", "vim"},
	} {
		if _, err := parseConfig(args); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestAdvertiseAddr(t *testing.T) {
	if got := advertiseAddr("10.1.2.3:5555"); got != "10.1.2.3:5555" {
		t.Errorf("explicit host changed: %q", got)
	}
	got := advertiseAddr(":5555")
	if !strings.HasSuffix(got, ":5555") || strings.HasPrefix(got, ":") {
		t.Errorf("expected hostname filled in, got %q", got)
	}
}

func TestJoinSessionRejectsBadSpawn(t *testing.T) {
	if _, err := joinSession(DefaultConfig(), Snapshot{Player: 3}); err == nil {
		t.Error("expected error for player 3")
	}
}

func TestJoinedPeersSeeEachOther(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScorePolicy = PolicyNegative
	grid, ts, err := loadGrid(cfg)
	if err != nil {
		t.Fatal(err)
	}
	spawn, err := sessionSpawner(cfg.Tuning, grid, ts)
	if err != nil {
		t.Fatal(err)
	}
	srv := NewRelayServer("127.0.0.1:0", spawn)
	if err := srv.Start(); err != nil {
		t.Fatal(err)
	}
	defer srv.Close()

	a, b := dial(t, srv), dial(t, srv)
	sa, err := joinSession(cfg, a.Spawn)
	if err != nil {
		t.Fatal(err)
	}
	sb, err := joinSession(cfg, b.Spawn)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pa, pb := NewPump(a, 5*time.Millisecond), NewPump(b, 5*time.Millisecond)
	go pa.Run(ctx)
	go pb.Run(ctx)
	ha, hb := syncRemote(pa, 1), syncRemote(pb, 2)

	now := 0.0
	tick := func() {
		now += 0.01
		sa.Step(0.01, now, Intents{})
		ha(sa, nil)
		sb.Step(0.01, now, Intents{})
		hb(sb, nil)
	}

	sb.Craft(2).Pos.X += 5
	waitFor(t, "player 2 position at peer 1", func() bool {
		tick()
		return sa.Craft(2).Pos == sb.Craft(2).Pos
	})

	sb.Score.Take(2)
	waitFor(t, "score event at peer 1", func() bool {
		tick()
		return sa.Score.Score(2) == -1
	})
	for i := 0; i < 10; i++ {
		tick()
	}
	if got := sa.Score.Score(2); got != -1 {
		t.Errorf("relayed event applied more than once, score %d", got)
	}
	if sa.Craft(1).Pos != (Vec2{106, 80}) {
		t.Errorf("local craft moved to %v", sa.Craft(1).Pos)
	}
}
