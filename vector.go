package main

import "math"

// Vec2 is a 2-D vector in world pixels (y grows downward)
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

func (v Vec2) Scale(k float64) Vec2 { return Vec2{v.X * k, v.Y * k} }

// Rotate turns v by deg degrees counter-clockwise in math orientation.
// With y pointing down this is clockwise on screen.
func (v Vec2) Rotate(deg float64) Vec2 {
	rad := deg * math.Pi / 180
	c, s := math.Cos(rad), math.Sin(rad)
	return Vec2{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

// Length returns the Euclidean norm
func (v Vec2) Length() float64 { return math.Hypot(v.X, v.Y) }

// DistanceTo returns the distance between two points
func (v Vec2) DistanceTo(o Vec2) float64 { return Distance(v.X, v.Y, o.X, o.Y) }

func (v Vec2) IsZero() bool { return v.X == 0 && v.Y == 0 }

// Rect is an integer axis-aligned box, top-left anchored
type Rect struct {
	X, Y, W, H int
}

// RectFromCenter builds a w*h box centred on c
func RectFromCenter(c Vec2, w, h int) Rect {
	return Rect{
		X: int(math.Round(c.X - float64(w)/2)),
		Y: int(math.Round(c.Y - float64(h)/2)),
		W: w,
		H: h,
	}
}

func (r Rect) Center() Vec2 {
	return Vec2{float64(r.X) + float64(r.W)/2, float64(r.Y) + float64(r.H)/2}
}

// MidTop is the centre of the top edge
func (r Rect) MidTop() Vec2 { return Vec2{float64(r.X) + float64(r.W)/2, float64(r.Y)} }

func (r Rect) Right() int  { return r.X + r.W }
func (r Rect) Bottom() int { return r.Y + r.H }

// Intersect returns the overlapping region and whether it is non-empty
func (r Rect) Intersect(o Rect) (Rect, bool) {
	x0 := max(r.X, o.X)
	y0 := max(r.Y, o.Y)
	x1 := min(r.Right(), o.Right())
	y1 := min(r.Bottom(), o.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}, false
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}, true
}
