package main

// Terrain symbols with fixed meaning in map files
const (
	SymbolEmpty       = '.'
	SymbolSpawn1      = '1'
	SymbolSpawn2      = '2'
	SymbolLandingPad  = 'l'
	defaultWallSymbol = '#'
)

// craftArt is the default rocket silhouette, nose up (20x32)
var craftArt = []string{
	".........##.........",
	"........####........",
	"........####........",
	".......######.......",
	".......######.......",
	"......########......",
	"......########......",
	"......########......",
	".....##########.....",
	".....##########.....",
	".....##########.....",
	".....##########.....",
	".....##########.....",
	".....##########.....",
	".....##########.....",
	".....##########.....",
	".....##########.....",
	".....##########.....",
	".....##########.....",
	".....##########.....",
	"....############....",
	"...##############...",
	"..################..",
	".##################.",
	"####################",
	"####################",
	"###.....####.....###",
	"##......####......##",
	"##......####......##",
	"#.......####.......#",
	"#.......####.......#",
	"#..................#",
}

// laserArt is the default projectile sprite, pointing up (3x12)
var laserArt = []string{
	".#.",
	"###",
	"###",
	"###",
	"###",
	"###",
	"###",
	"###",
	"###",
	"###",
	"###",
	".#.",
}

// CraftMask returns the unrotated craft sprite mask
func CraftMask() *Mask { return MaskFromRows(craftArt) }

// LaserMask returns the unrotated projectile sprite mask
func LaserMask() *Mask { return MaskFromRows(laserArt) }

// TextureSet maps terrain symbols to their masks. It stands in for the
// texture/tag lookup an asset loader would provide.
type TextureSet struct {
	TileSize int
	masks    map[byte]*Mask
}

// DefaultTextures gives every symbol a solid tile
func DefaultTextures(tileSize int) *TextureSet {
	return &TextureSet{TileSize: tileSize, masks: make(map[byte]*Mask)}
}

// Register overrides the mask for a symbol
func (ts *TextureSet) Register(symbol byte, m *Mask) {
	ts.masks[symbol] = m
}

// MaskFor returns the mask for a symbol, a solid tile if none is registered
func (ts *TextureSet) MaskFor(symbol byte) *Mask {
	if m, ok := ts.masks[symbol]; ok {
		return m
	}
	m := SolidMask(ts.TileSize, ts.TileSize)
	ts.masks[symbol] = m
	return m
}
