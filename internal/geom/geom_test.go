package geom

import (
	"math"
	"testing"
)

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"Zero", 0, 0},
		{"Pi stays", math.Pi, math.Pi},
		{"Minus pi wraps to pi", -math.Pi, math.Pi},
		{"Full turn", Tau, 0},
		{"Three pi", 3 * math.Pi, math.Pi},
		{"Small negative", -0.5, -0.5},
		{"Over a turn", Tau + 0.25, 0.25},
		{"NaN", math.NaN(), 0},
		{"Inf", math.Inf(1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeAngle(tt.in)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("NormalizeAngle(%v): expected %v, got %v", tt.in, tt.want, got)
			}
		})
	}
}

func TestNormalizeAngleRange(t *testing.T) {
	for _, a := range []float64{-1e15, -1e9, -1000.5, -7, 7, 1000.5, 1e9, 1e15, math.MaxFloat64} {
		got := NormalizeAngle(a)
		if got <= -math.Pi || got > math.Pi {
			t.Errorf("NormalizeAngle(%v) = %v outside (-π, π]", a, got)
		}
		// Tau is inexact, so the direction drifts once the input is many
		// turns away from zero
		if math.Abs(a) > 1e9 {
			continue
		}
		if math.Abs(math.Sin(got)-math.Sin(a)) > 1e-6 || math.Abs(math.Cos(got)-math.Cos(a)) > 1e-6 {
			t.Errorf("NormalizeAngle(%v) = %v changed direction", a, got)
		}
	}
}

func TestRotate(t *testing.T) {
	v := V(1, 0).Rotate(math.Pi / 2)
	if math.Abs(v.X) > 1e-12 || math.Abs(v.Y-1) > 1e-12 {
		t.Errorf("Expected (0,1), got %v", v)
	}
	f := FromAngle(math.Pi)
	if math.Abs(f.X+1) > 1e-12 || math.Abs(f.Y) > 1e-12 {
		t.Errorf("Expected (-1,0), got %v", f)
	}
	if a := V(0, 2).Angle(); math.Abs(a-math.Pi/2) > 1e-12 {
		t.Errorf("Expected π/2, got %v", a)
	}
}

func TestRectIntersect(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	b := Rect{X: 5, Y: -5, W: 10, H: 10}

	got := a.Intersect(b)
	want := Rect{X: 5, Y: 0, W: 5, H: 5}
	if got != want {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if !a.Intersect(Rect{X: 20, Y: 20, W: 1, H: 1}).Empty() {
		t.Error("Expected disjoint rects to have an empty intersection")
	}
	if !a.Contains(V(0, 9.5)) || a.Contains(V(10, 5)) {
		t.Error("Expected Contains to include the top-left edge and exclude the right edge")
	}
}
