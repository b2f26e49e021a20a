package main

import "testing"

func TestCollideSolidMasks(t *testing.T) {
	a := Body{Mask: SolidMask(10, 10), Rect: Rect{X: 0, Y: 0, W: 10, H: 10}}
	b := Body{Mask: SolidMask(10, 10), Rect: Rect{X: 5, Y: 5, W: 10, H: 10}}
	if !Collide(a, b) {
		t.Error("overlapping solid masks should collide")
	}

	// Touching edges share no pixel
	b.Rect.X = 10
	if Collide(a, b) {
		t.Error("edge-adjacent masks should not collide")
	}
}

func TestCollideTransparentRegion(t *testing.T) {
	// Only the bottom-right pixel of a is opaque
	ma := NewMask(4, 4)
	ma.Set(3, 3, true)
	a := Body{Mask: ma, Rect: Rect{X: 0, Y: 0, W: 4, H: 4}}

	b := Body{Mask: SolidMask(2, 2), Rect: Rect{X: 0, Y: 0, W: 2, H: 2}}
	if Collide(a, b) {
		t.Error("box overlap over transparent pixels must not collide")
	}

	b.Rect.X, b.Rect.Y = 3, 3
	if !Collide(a, b) {
		t.Error("opaque pixel overlap should collide")
	}
}

func TestMaskFromRows(t *testing.T) {
	m := MaskFromRows([]string{
		"#..",
		".#",
	})
	if m.W != 3 || m.H != 2 {
		t.Fatalf("expected 3x2, got %dx%d", m.W, m.H)
	}
	if !m.Get(0, 0) || !m.Get(1, 1) || m.Get(2, 0) {
		t.Error("unexpected mask contents")
	}
	if m.Count() != 2 {
		t.Errorf("expected 2 opaque pixels, got %d", m.Count())
	}
}

func TestMaskRotate90(t *testing.T) {
	// A 2x6 vertical bar with the top pixel row marked as the nose
	m := MaskFromRows([]string{
		"##",
		"#.",
		"#.",
		"#.",
		"#.",
		"#.",
	})
	r := m.Rotate(90)
	if r.W != 6 || r.H != 2 {
		t.Fatalf("expected 6x2 after 90 deg, got %dx%d", r.W, r.H)
	}
	// Counter-clockwise on screen: the nose ends up on the left
	if !r.Get(0, 0) || !r.Get(0, 1) {
		t.Error("nose should be on the left edge after rotating 90 deg")
	}
	if r.Count() != m.Count() {
		t.Errorf("right-angle rotation should keep pixel count, %d != %d", r.Count(), m.Count())
	}
}

func TestMaskRotateFullTurn(t *testing.T) {
	m := MaskFromRows([]string{"##.", "#.."})
	r := m.Rotate(360)
	if r.W != m.W || r.H != m.H {
		t.Fatalf("full turn should keep size")
	}
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if r.Get(x, y) != m.Get(x, y) {
				t.Errorf("pixel %d,%d changed after full turn", x, y)
			}
		}
	}
}

func TestMaskRotateGrowsBounds(t *testing.T) {
	m := SolidMask(10, 10)
	r := m.Rotate(45)
	if r.W <= 10 || r.H <= 10 {
		t.Errorf("45 deg rotation should enlarge the box, got %dx%d", r.W, r.H)
	}
}

func TestRotatedSpriteRecentres(t *testing.T) {
	rs := NewRotatedSprite(SolidMask(4, 10))
	center := Vec2{100, 100}
	b0 := rs.At(center, 0)
	b1 := rs.At(center, 90)
	if b1.Rect.W != 10 || b1.Rect.H != 4 {
		t.Fatalf("expected rotated box 10x4, got %dx%d", b1.Rect.W, b1.Rect.H)
	}
	if b0.Rect.Center() != center || b1.Rect.Center() != center {
		t.Errorf("boxes should stay centred on %v: %v %v", center, b0.Rect.Center(), b1.Rect.Center())
	}
}

func TestRectIntersect(t *testing.T) {
	a := Rect{0, 0, 10, 10}
	b := Rect{8, 2, 10, 3}
	got, ok := a.Intersect(b)
	if !ok {
		t.Fatal("expected intersection")
	}
	if got != (Rect{8, 2, 2, 3}) {
		t.Errorf("unexpected intersection %+v", got)
	}
	if _, ok := a.Intersect(Rect{20, 20, 1, 1}); ok {
		t.Error("disjoint rects should not intersect")
	}
}

func TestVecRotate(t *testing.T) {
	v := Vec2{0, -1}.Rotate(-90)
	if d := v.DistanceTo(Vec2{-1, 0}); d > 1e-9 {
		t.Errorf("expected (-1,0), got %v", v)
	}
}
