package main

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
)

// Terminals report key presses only, so a press counts as held for keyHold
const keyHold = 150 * time.Millisecond

const hudRows = 1

var (
	styleDefault = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	styleWall    = styleDefault.Foreground(tcell.ColorGray)
	stylePad     = styleDefault.Foreground(tcell.ColorLime).Bold(true)
	styleShot    = styleDefault.Foreground(tcell.ColorRed)
	styleSmoke   = styleDefault.Foreground(tcell.ColorDarkGray)
	styleBoom    = styleDefault.Foreground(tcell.ColorOrange).Bold(true)
	styleHUD     = styleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleLog     = styleDefault.Foreground(tcell.ColorYellow)

	craftStyles = [2]tcell.Style{
		styleDefault.Foreground(tcell.ColorSkyblue).Bold(true),
		styleDefault.Foreground(tcell.ColorFuchsia).Bold(true),
	}
)

// Terminal is the tcell frontend: it renders sessions and turns key
// presses into intents. controls[i] drives player i+1; a nil entry leaves
// that player to someone else.
type Terminal struct {
	screen   tcell.Screen
	controls [2]KeyBindings
	clock    func() time.Time

	mu       sync.Mutex
	held     map[string]time.Time
	cmd      Command
	lastKill string
}

func NewTerminal(screen tcell.Screen, controls [2]KeyBindings) *Terminal {
	screen.SetStyle(styleDefault)
	return &Terminal{
		screen:   screen,
		controls: controls,
		clock:    time.Now,
		held:     make(map[string]time.Time),
	}
}

// Listen feeds screen events into the terminal until the screen is
// finalized.
func (t *Terminal) Listen() {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		t.HandleEvent(ev)
	}
}

// HandleEvent records one screen event
func (t *Terminal) HandleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		t.screen.Sync()
	case *tcell.EventKey:
		t.mu.Lock()
		defer t.mu.Unlock()
		switch {
		case ev.Key() == tcell.KeyCtrlC, ev.Key() == tcell.KeyEscape:
			t.cmd = CmdQuit
			return
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'):
			t.cmd = CmdQuit
			return
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'r' || ev.Rune() == 'R'):
			if t.cmd != CmdQuit {
				t.cmd = CmdReset
			}
			return
		}
		if name := keyName(ev); name != "" {
			t.held[name] = t.clock()
		}
	}
}

func keyName(ev *tcell.EventKey) string {
	switch ev.Key() {
	case tcell.KeyUp:
		return "up"
	case tcell.KeyDown:
		return "down"
	case tcell.KeyLeft:
		return "left"
	case tcell.KeyRight:
		return "right"
	case tcell.KeyRune:
		if ev.Rune() == ' ' {
			return "space"
		}
		return strings.ToLower(string(ev.Rune()))
	}
	return ""
}

// Poll implements InputSource
func (t *Terminal) Poll(now float64) (Intents, Command) {
	t.mu.Lock()
	defer t.mu.Unlock()

	at := t.clock()
	keys := make([]string, 0, len(t.held))
	for k, pressed := range t.held {
		if at.Sub(pressed) > keyHold {
			delete(t.held, k)
			continue
		}
		keys = append(keys, k)
	}

	var in Intents
	for i, kb := range t.controls {
		if kb != nil {
			in[i] = kb.Resolve(keys)
		}
	}
	cmd := t.cmd
	t.cmd = CmdNone
	return in, cmd
}

// Render implements Renderer
func (t *Terminal) Render(s *Session, kills []KillEvent) {
	if len(kills) > 0 {
		k := kills[len(kills)-1]
		t.mu.Lock()
		t.lastKill = fmt.Sprintf("player %d died (%s), respawned at pad %d,%d", k.Player, k.Reason, k.Pad.Col, k.Pad.Row)
		t.mu.Unlock()
	}

	g := s.Grid()
	cellW := max(g.TileSize/2, 1)
	cellH := max(g.TileSize, 1)
	cell := func(p Vec2) (int, int) {
		return int(math.Floor(p.X / float64(cellW))), int(math.Floor(p.Y/float64(cellH))) + hudRows
	}

	t.screen.Clear()
	for _, e := range s.Entities() {
		switch e.Handle.Kind {
		case KindTerrain:
			ch, st := '#', styleWall
			if e.Tile.IsPad() {
				ch, st = '=', stylePad
			}
			y := e.Tile.Rect.Y/cellH + hudRows
			for x := e.Tile.Rect.X / cellW; x < e.Tile.Rect.Right()/cellW; x++ {
				t.screen.SetContent(x, y, ch, nil, st)
			}
		case KindEffect:
			x, y := cell(e.Effect.Pos)
			if e.Effect.Kind == EffectExplosion {
				t.screen.SetContent(x, y, '@', nil, styleBoom)
			} else {
				t.screen.SetContent(x, y, '.', nil, styleSmoke)
			}
		case KindProjectile:
			x, y := cell(e.Projectile.Pos)
			t.screen.SetContent(x, y, '*', nil, styleShot)
		case KindCraft:
			c := e.Craft
			if c.Exploded {
				continue
			}
			x, y := cell(c.Body().Rect.Center())
			t.screen.SetContent(x, y, craftGlyph(c.Heading()), nil, craftStyles[e.Handle.Index])
		}
	}

	t.drawHUD(s)
	t.drawMinimap(s, g.Cols*g.TileSize/cellW+2)

	t.mu.Lock()
	msg := t.lastKill
	t.mu.Unlock()
	drawText(t.screen, 0, g.NumRows()+hudRows, msg, styleLog)

	t.screen.Show()
}

func (t *Terminal) drawHUD(s *Session) {
	var parts []string
	for p := 1; p <= 2; p++ {
		fuel := 0.0
		if c := s.Craft(p); c != nil {
			fuel = c.Fuel.Percent() * 100
		}
		parts = append(parts, fmt.Sprintf("P%d fuel %3.0f%% score %d", p, fuel, s.Score.Score(p)))
	}
	drawText(t.screen, 0, 0, strings.Join(parts, "   "), styleHUD)
}

func (t *Terminal) drawMinimap(s *Session, x0 int) {
	w, _ := t.screen.Size()
	mm := s.Minimap()
	if len(mm) == 0 || x0+len(mm[0]) > w {
		return
	}
	for i, row := range mm {
		drawText(t.screen, x0, hudRows+i, row, styleWall)
	}
}

// craftGlyph picks an arrow for the dominant axis of the heading
func craftGlyph(h Vec2) rune {
	if math.Abs(h.X) > math.Abs(h.Y) {
		if h.X > 0 {
			return '>'
		}
		return '<'
	}
	if h.Y > 0 {
		return 'v'
	}
	return '^'
}

func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}
