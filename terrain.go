package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	ErrEmptyGrid    = errors.New("terrain grid has no rows")
	ErrNoLandingPad = errors.New("terrain grid has no landing pad")
	ErrMissingSpawn = errors.New("terrain grid is missing a spawn marker")
)

// TileClass tags a terrain tile
type TileClass uint8

const (
	ClassWall TileClass = iota
	ClassLandingPad
)

func (c TileClass) String() string {
	if c == ClassLandingPad {
		return "landing_pad"
	}
	return "wall"
}

// TerrainTile is a static obstacle or landing pad. Immutable after load.
type TerrainTile struct {
	Col, Row int
	Symbol   byte
	Class    TileClass
	Rect     Rect
	Mask     *Mask
}

// Body places the tile mask in the world
func (t *TerrainTile) Body() Body { return Body{Mask: t.Mask, Rect: t.Rect} }

// IsPad reports whether the tile is a landing pad
func (t *TerrainTile) IsPad() bool { return t.Class == ClassLandingPad }

// Grid is the parsed terrain: rows of symbols, the tiles built from them
// and the spawn cells of both players.
type Grid struct {
	Rows     []string
	Cols     int
	TileSize int
	Tiles    []TerrainTile // row-major order

	spawns [2]struct {
		col, row int
		ok       bool
	}
	cells map[[2]int]int // (col,row) -> index into Tiles
}

// LoadGrid reads a terrain file from disk
func LoadGrid(path string, ts *TextureSet) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open map: %w", err)
	}
	defer f.Close()
	g, err := ParseGrid(f, ts)
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", path, err)
	}
	return g, nil
}

// ParseGrid reads one row of single-character symbols per line. Surrounding
// whitespace is stripped and trailing blank lines are ignored. Grid width is
// the length of the first row; shorter or longer rows keep the symbols they
// have.
func ParseGrid(r io.Reader, ts *TextureSet) (*Grid, error) {
	var rows []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		rows = append(rows, strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	for len(rows) > 0 && rows[len(rows)-1] == "" {
		rows = rows[:len(rows)-1]
	}
	if len(rows) == 0 {
		return nil, ErrEmptyGrid
	}

	g := &Grid{
		Rows:     rows,
		Cols:     len(rows[0]),
		TileSize: ts.TileSize,
		cells:    make(map[[2]int]int),
	}
	for row, line := range rows {
		for col := 0; col < len(line); col++ {
			sym := line[col]
			switch sym {
			case SymbolEmpty:
			case SymbolSpawn1, SymbolSpawn2:
				s := &g.spawns[sym-SymbolSpawn1]
				s.col, s.row, s.ok = col, row, true
			default:
				class := ClassWall
				if sym == SymbolLandingPad {
					class = ClassLandingPad
				}
				g.cells[g.cellKey(col, row)] = len(g.Tiles)
				g.Tiles = append(g.Tiles, TerrainTile{
					Col:    col,
					Row:    row,
					Symbol: sym,
					Class:  class,
					Rect:   Rect{X: col * ts.TileSize, Y: row * ts.TileSize, W: ts.TileSize, H: ts.TileSize},
					Mask:   ts.MaskFor(sym),
				})
			}
		}
	}
	return g, nil
}

// Validate checks the grid can host a session
func (g *Grid) Validate() error {
	if len(g.LandingPads()) == 0 {
		return ErrNoLandingPad
	}
	for i := range g.spawns {
		if !g.spawns[i].ok {
			return fmt.Errorf("%w for player %d", ErrMissingSpawn, i+1)
		}
	}
	return nil
}

// NumRows returns the grid height in tiles
func (g *Grid) NumRows() int { return len(g.Rows) }

// Width returns the grid width in pixels
func (g *Grid) Width() int { return g.Cols * g.TileSize }

// Height returns the grid height in pixels
func (g *Grid) Height() int { return len(g.Rows) * g.TileSize }

// Bounds is the world box covered by the grid
func (g *Grid) Bounds() Rect { return Rect{W: g.Width(), H: g.Height()} }

// LandingPads returns the pad tiles in row-major order
func (g *Grid) LandingPads() []*TerrainTile {
	var pads []*TerrainTile
	for i := range g.Tiles {
		if g.Tiles[i].IsPad() {
			pads = append(pads, &g.Tiles[i])
		}
	}
	return pads
}

// SpawnTopLeft returns the pixel top-left of a player's spawn cell
func (g *Grid) SpawnTopLeft(player int) (Vec2, bool) {
	if player < 1 || player > 2 {
		return Vec2{}, false
	}
	s := g.spawns[player-1]
	if !s.ok {
		return Vec2{}, false
	}
	return Vec2{float64(s.col * g.TileSize), float64(s.row * g.TileSize)}, true
}

// TileAt returns the tile at a grid cell
func (g *Grid) TileAt(col, row int) (*TerrainTile, bool) {
	i, ok := g.cells[g.cellKey(col, row)]
	if !ok {
		return nil, false
	}
	return &g.Tiles[i], true
}
