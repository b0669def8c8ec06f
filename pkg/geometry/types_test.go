package geometry

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNormalized(t *testing.T) {
	tests := []struct {
		name string
		in   Rect
		want Rect
	}{
		{"already positive", NewRect(10, 20, 30, 40), NewRect(10, 20, 30, 40)},
		{"negative width", NewRect(40, 20, -30, 40), NewRect(10, 20, 30, 40)},
		{"negative height", NewRect(10, 60, 30, -40), NewRect(10, 20, 30, 40)},
		{"both negative", NewRect(40, 60, -30, -40), NewRect(10, 20, 30, 40)},
	}
	for _, tt := range tests {
		if got := tt.in.Normalized(); got != tt.want {
			t.Errorf("%s: Normalized() = %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func TestRectFromPoints(t *testing.T) {
	r := RectFromPoints(Point2D{X: 50, Y: 80}, Point2D{X: 20, Y: 30})
	want := NewRect(20, 30, 30, 50)
	if r != want {
		t.Errorf("RectFromPoints() = %+v, want %+v", r, want)
	}
}

func TestContainsRect(t *testing.T) {
	parent := NewRect(100, 100, 200, 200)

	tests := []struct {
		name  string
		child Rect
		want  bool
	}{
		{"fully inside", NewRect(150, 150, 50, 50), true},
		{"equal", parent, true},
		{"touching all edges", NewRect(100, 100, 200, 200), true},
		{"right edge outside", NewRect(200, 150, 150, 50), false},
		{"left of parent", NewRect(50, 150, 40, 40), false},
		{"taller than parent", NewRect(150, 50, 50, 300), false},
	}
	for _, tt := range tests {
		if got := parent.ContainsRect(tt.child); got != tt.want {
			t.Errorf("%s: ContainsRect(%+v) = %v, want %v", tt.name, tt.child, got, tt.want)
		}
	}
}

func TestIntersection(t *testing.T) {
	a := NewRect(0, 0, 100, 100)
	b := NewRect(50, 50, 100, 100)
	got := a.Intersection(b)
	want := NewRect(50, 50, 50, 50)
	if got != want {
		t.Errorf("Intersection() = %+v, want %+v", got, want)
	}

	// Disjoint rectangles yield a zero rect.
	c := NewRect(500, 500, 10, 10)
	if got := a.Intersection(c); got != (Rect{}) {
		t.Errorf("Intersection() of disjoint rects = %+v, want zero", got)
	}

	// Edge-touching rectangles do not intersect.
	d := NewRect(100, 0, 50, 100)
	if a.Intersects(d) {
		t.Error("edge-touching rects should not intersect")
	}
	if got := a.Intersection(d); got != (Rect{}) {
		t.Errorf("Intersection() of edge-touching rects = %+v, want zero", got)
	}
}

func TestIoUIdentity(t *testing.T) {
	boxes := []Rect{
		NewRect(0, 0, 100, 100),
		NewRect(12.5, 99, 3, 7),
		NewRect(-50, -50, 25, 75),
	}
	for _, r := range boxes {
		if got := IoU(r, r); !almostEqual(got, 1.0) {
			t.Errorf("IoU(r, r) = %v for %+v, want 1.0", got, r)
		}
	}
}

func TestIoUDisjointAndTouching(t *testing.T) {
	a := NewRect(0, 0, 100, 100)
	tests := []struct {
		name string
		b    Rect
	}{
		{"far away", NewRect(1000, 1000, 10, 10)},
		{"touching right edge", NewRect(100, 0, 100, 100)},
		{"touching bottom edge", NewRect(0, 100, 100, 100)},
		{"touching corner", NewRect(100, 100, 100, 100)},
	}
	for _, tt := range tests {
		if got := IoU(a, tt.b); got != 0 {
			t.Errorf("%s: IoU = %v, want 0", tt.name, got)
		}
	}
}

func TestIoUSymmetricAndBounded(t *testing.T) {
	pairs := [][2]Rect{
		{NewRect(0, 0, 100, 100), NewRect(50, 50, 100, 100)},
		{NewRect(100, 100, 100, 100), NewRect(105, 105, 100, 100)},
		{NewRect(0, 0, 10, 10), NewRect(2, 2, 4, 4)},
	}
	for _, p := range pairs {
		ab := IoU(p[0], p[1])
		ba := IoU(p[1], p[0])
		if !almostEqual(ab, ba) {
			t.Errorf("IoU not symmetric: %v vs %v", ab, ba)
		}
		if ab < 0 || ab > 1 {
			t.Errorf("IoU out of range: %v", ab)
		}
	}
}

func TestIoUNearDuplicate(t *testing.T) {
	// Two boxes offset by 5px in each direction: known overlap ratio.
	a := NewRect(100, 100, 100, 100)
	b := NewRect(105, 105, 100, 100)
	got := IoU(a, b)
	inter := 95.0 * 95.0
	want := inter / (100*100 + 100*100 - inter)
	if !almostEqual(got, want) {
		t.Errorf("IoU = %v, want %v", got, want)
	}
	if got < 0.8 || got > 0.85 {
		t.Errorf("IoU = %v, expected ~0.83", got)
	}
}

func TestIoUDegenerate(t *testing.T) {
	zero := NewRect(10, 10, 0, 50)
	if got := IoU(zero, zero); got != 0 {
		t.Errorf("IoU of degenerate rect with itself = %v, want 0", got)
	}
	if got := IoU(zero, NewRect(0, 0, 100, 100)); got != 0 {
		t.Errorf("IoU with degenerate rect = %v, want 0", got)
	}
}

func TestCorners(t *testing.T) {
	r := NewRect(10, 20, 30, 40)
	c := r.Corners()
	want := [4]Point2D{
		{X: 10, Y: 20}, // TL
		{X: 40, Y: 20}, // TR
		{X: 40, Y: 60}, // BR
		{X: 10, Y: 60}, // BL
	}
	if c != want {
		t.Errorf("Corners() = %v, want %v", c, want)
	}
}

func TestClamp(t *testing.T) {
	bounds := NewRect(0, 0, 100, 100)
	tests := []struct {
		name string
		in   Rect
		want Rect
	}{
		{"inside untouched", NewRect(10, 10, 20, 20), NewRect(10, 10, 20, 20)},
		{"pushed right", NewRect(-10, 10, 20, 20), NewRect(0, 10, 20, 20)},
		{"pushed up", NewRect(10, 95, 20, 20), NewRect(10, 80, 20, 20)},
		{"oversized shrunk", NewRect(-10, -10, 300, 50), NewRect(0, 0, 100, 50)},
	}
	for _, tt := range tests {
		if got := tt.in.Clamp(bounds); got != tt.want {
			t.Errorf("%s: Clamp() = %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func TestUnion(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	b := NewRect(20, 30, 10, 10)
	want := NewRect(0, 0, 30, 40)
	if got := a.Union(b); got != want {
		t.Errorf("Union() = %+v, want %+v", got, want)
	}
}
