package main

import "math"

// Mask is a per-pixel opacity bitmap used for precise collision tests
type Mask struct {
	W, H int
	bits []bool
}

// NewMask returns a fully transparent w*h mask
func NewMask(w, h int) *Mask {
	return &Mask{W: w, H: h, bits: make([]bool, w*h)}
}

// SolidMask returns a fully opaque w*h mask
func SolidMask(w, h int) *Mask {
	m := NewMask(w, h)
	for i := range m.bits {
		m.bits[i] = true
	}
	return m
}

// MaskFromRows builds a mask from text art: '#' is opaque, anything else
// is transparent. Width is the longest row.
func MaskFromRows(rows []string) *Mask {
	w := 0
	for _, r := range rows {
		w = max(w, len(r))
	}
	m := NewMask(w, len(rows))
	for y, r := range rows {
		for x := 0; x < len(r); x++ {
			if r[x] == '#' {
				m.Set(x, y, true)
			}
		}
	}
	return m
}

func (m *Mask) Get(x, y int) bool {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return false
	}
	return m.bits[y*m.W+x]
}

func (m *Mask) Set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return
	}
	m.bits[y*m.W+x] = v
}

// Count returns the number of opaque pixels
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// Rotate returns a new mask turned deg degrees counter-clockwise on screen.
// The result grows to the rotated bounding box, like a rotated sprite image.
func (m *Mask) Rotate(deg int) *Mask {
	d := ((deg % 360) + 360) % 360
	if d == 0 {
		out := NewMask(m.W, m.H)
		copy(out.bits, m.bits)
		return out
	}
	rad := float64(d) * math.Pi / 180
	c, s := math.Cos(rad), math.Sin(rad)
	fw, fh := float64(m.W), float64(m.H)
	w := int(math.Ceil(math.Abs(fw*c)+math.Abs(fh*s)-1e-9))
	h := int(math.Ceil(math.Abs(fw*s)+math.Abs(fh*c)-1e-9))
	out := NewMask(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := float64(x) + 0.5 - float64(w)/2
			dy := float64(y) + 0.5 - float64(h)/2
			sx := dx*c - dy*s + fw/2
			sy := dx*s + dy*c + fh/2
			if m.Get(int(math.Floor(sx)), int(math.Floor(sy))) {
				out.bits[y*w+x] = true
			}
		}
	}
	return out
}

// Body is a mask placed in the world
type Body struct {
	Mask *Mask
	Rect Rect
}

// Collide reports whether two bodies share at least one opaque pixel
func Collide(a, b Body) bool {
	if a.Mask == nil || b.Mask == nil {
		return false
	}
	area, ok := a.Rect.Intersect(b.Rect)
	if !ok {
		return false
	}
	for y := area.Y; y < area.Bottom(); y++ {
		for x := area.X; x < area.Right(); x++ {
			if a.Mask.Get(x-a.Rect.X, y-a.Rect.Y) && b.Mask.Get(x-b.Rect.X, y-b.Rect.Y) {
				return true
			}
		}
	}
	return false
}

// RotatedSprite caches the rotated mask of a sprite for one angle.
// Rotating entities call At every tick; the mask is rebuilt only when the
// angle changed.
type RotatedSprite struct {
	base  *Mask
	angle int
	mask  *Mask
}

func NewRotatedSprite(base *Mask) *RotatedSprite {
	return &RotatedSprite{base: base, mask: base.Rotate(0)}
}

// At returns the mask for angle deg and the box re-centred on center
func (r *RotatedSprite) At(center Vec2, deg int) Body {
	if deg != r.angle {
		r.mask = r.base.Rotate(deg)
		r.angle = deg
	}
	return Body{Mask: r.mask, Rect: RectFromCenter(center, r.mask.W, r.mask.H)}
}

// Base returns the unrotated mask
func (r *RotatedSprite) Base() *Mask { return r.base }
