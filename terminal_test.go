package main

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
)

func newTestTerminal(t *testing.T) (*Terminal, tcell.SimulationScreen, *time.Time) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 24)

	wasd, _ := Bindings("wasd")
	arrows, _ := Bindings("arrows")
	term := NewTerminal(screen, [2]KeyBindings{wasd, arrows})
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	term.clock = func() time.Time { return now }
	return term, screen, &now
}

func press(term *Terminal, k tcell.Key, r rune) {
	term.HandleEvent(tcell.NewEventKey(k, r, tcell.ModNone))
}

func rowText(screen tcell.Screen, y int) string {
	w, _ := screen.Size()
	var sb strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := screen.GetContent(x, y)
		sb.WriteRune(r)
	}
	return sb.String()
}

func TestTerminalKeysBecomeIntents(t *testing.T) {
	term, _, _ := newTestTerminal(t)
	press(term, tcell.KeyRune, 'w')
	press(term, tcell.KeyRune, 'S')
	press(term, tcell.KeyLeft, 0)

	in, cmd := term.Poll(0)
	if cmd != CmdNone {
		t.Errorf("unexpected command %v", cmd)
	}
	if in[0] != IntentThrust|IntentFire {
		t.Errorf("player 1 intent = %v", in[0])
	}
	if in[1] != IntentRotateLeft {
		t.Errorf("player 2 intent = %v", in[1])
	}
}

func TestTerminalKeysExpire(t *testing.T) {
	term, _, now := newTestTerminal(t)
	press(term, tcell.KeyUp, 0)

	*now = now.Add(keyHold / 2)
	if in, _ := term.Poll(0); in[1] != IntentThrust {
		t.Fatalf("key should still be held, got %v", in[1])
	}
	*now = now.Add(keyHold)
	if in, _ := term.Poll(0); in[1] != 0 {
		t.Errorf("key should have been released, got %v", in[1])
	}
}

func TestTerminalCommands(t *testing.T) {
	term, _, _ := newTestTerminal(t)
	press(term, tcell.KeyRune, 'r')
	if _, cmd := term.Poll(0); cmd != CmdReset {
		t.Errorf("expected reset, got %v", cmd)
	}
	if _, cmd := term.Poll(0); cmd != CmdNone {
		t.Errorf("commands fire once, got %v", cmd)
	}

	press(term, tcell.KeyEscape, 0)
	press(term, tcell.KeyRune, 'r')
	if _, cmd := term.Poll(0); cmd != CmdQuit {
		t.Errorf("reset must not override quit, got %v", cmd)
	}

	press(term, tcell.KeyRune, 'q')
	if _, cmd := term.Poll(0); cmd != CmdQuit {
		t.Errorf("q should quit, got %v", cmd)
	}
}

func TestTerminalIgnoresUncontrolledPlayer(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	defer screen.Fini()
	wasd, _ := Bindings("wasd")
	term := NewTerminal(screen, [2]KeyBindings{nil, wasd})

	press(term, tcell.KeyRune, 'w')
	in, _ := term.Poll(0)
	if in[0] != 0 || in[1] != IntentThrust {
		t.Errorf("expected only player 2 driven, got %v", in)
	}
}

func TestTerminalRender(t *testing.T) {
	term, screen, _ := newTestTerminal(t)
	s := newTestSession(t, PolicyClamp)
	term.Render(s, nil)

	if hud := rowText(screen, 0); !strings.Contains(hud, "P1 fuel 100% score 0") || !strings.Contains(hud, "P2 fuel") {
		t.Errorf("unexpected HUD %q", hud)
	}
	check := func(x, y int, want rune) {
		t.Helper()
		if r, _, _, _ := screen.GetContent(x, y); r != want {
			t.Errorf("cell %d,%d = %q, want %q", x, y, r, want)
		}
	}
	check(0, 1, '#') // top-left wall
	check(2, 5, '=') // pad at tile 1,4
	check(3, 5, '=')
	check(2, 2, '^') // player 1 at rest points up
	check(16, 2, '^')
	check(22, 1, '#') // minimap to the right of the world

	s.Craft(1).Rotation = 90
	term.Render(s, []KillEvent{{Player: 2, Reason: ReasonShot, Pad: &s.Grid().Tiles[0]}})
	check(2, 2, '<')
	if msg := rowText(screen, s.Grid().NumRows()+hudRows); !strings.Contains(msg, "player 2 died (shot)") {
		t.Errorf("kill line = %q", msg)
	}
}

func TestCraftGlyph(t *testing.T) {
	cases := map[rune]Vec2{'^': {0, -1}, 'v': {0, 1}, '<': {-1, 0.2}, '>': {1, -0.2}}
	for want, h := range cases {
		if got := craftGlyph(h); got != want {
			t.Errorf("craftGlyph(%v) = %q, want %q", h, got, want)
		}
	}
}
