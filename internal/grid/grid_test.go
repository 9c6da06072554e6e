package grid

import (
	"errors"
	"testing"

	"raycaster/internal/geom"
)

func TestParse(t *testing.T) {
	g, err := Parse([]string{
		"####",
		"#@.#",
		"#.2#",
		"####",
	}, 10)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if g.Width() != 4 || g.Height() != 4 {
		t.Errorf("Expected 4x4 grid, got %dx%d", g.Width(), g.Height())
	}
	if m := g.MaterialAt(0, 0); m != 1 {
		t.Errorf("Expected '#' to be material 1, got %d", m)
	}
	if m := g.MaterialAt(2, 2); m != 2 {
		t.Errorf("Expected material 2 at (2,2), got %d", m)
	}
	if m := g.MaterialAt(1, 1); m != Empty {
		t.Errorf("Expected spawn cell to be empty, got %d", m)
	}

	spawn, ok := g.Spawn()
	if !ok || spawn != (Cell{Col: 1, Row: 1}) {
		t.Errorf("Expected spawn at (1,1), got %v (ok=%v)", spawn, ok)
	}

	w, h := g.Extent()
	if w != 40 || h != 40 {
		t.Errorf("Expected extent 40x40, got %vx%v", w, h)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		rows []string
	}{
		{"Empty", nil},
		{"Ragged rows", []string{"###", "##"}},
		{"Unknown rune", []string{"#x#"}},
		{"Two spawns", []string{"@.@"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.rows, 1); err == nil {
				t.Errorf("Expected error for %v", tt.rows)
			}
		})
	}

	if _, err := Parse(nil, 1); !errors.Is(err, ErrEmpty) {
		t.Errorf("Expected ErrEmpty, got %v", err)
	}
	if _, err := Parse([]string{"#"}, 0); !errors.Is(err, ErrCellSize) {
		t.Errorf("Expected ErrCellSize, got %v", err)
	}
}

func TestMaterialAtOutOfBounds(t *testing.T) {
	g, err := Parse([]string{"..", ".."}, 1)
	if err != nil {
		t.Fatal(err)
	}

	for _, c := range []Cell{{-1, 0}, {0, -1}, {2, 0}, {0, 2}, {100, 100}} {
		if m := g.MaterialAt(c.Col, c.Row); m != OutOfBounds {
			t.Errorf("Expected OutOfBounds at %v, got %d", c, m)
		}
		if !g.Occupied(c.Col, c.Row) {
			t.Errorf("Expected off-grid cell %v to count as occupied", c)
		}
	}
	if g.Occupied(1, 1) {
		t.Error("Expected empty in-bounds cell to be unoccupied")
	}
}

func TestCellOf(t *testing.T) {
	g, err := Parse([]string{"...", "...", "..."}, 10)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		p    geom.Vec2
		want Cell
	}{
		{geom.V(0, 0), Cell{0, 0}},
		{geom.V(9.99, 10), Cell{0, 1}},
		{geom.V(29.999999, 29.999999), Cell{2, 2}},
		{geom.V(-0.1, 5), Cell{-1, -1}},
		{geom.V(30, 5), Cell{-1, -1}},
	}
	for _, tt := range tests {
		if got := g.CellOf(tt.p); got != tt.want {
			t.Errorf("CellOf(%v): expected %v, got %v", tt.p, tt.want, got)
		}
	}
}

func TestMaterials(t *testing.T) {
	g, err := Parse([]string{"3#2", "...", "#3."}, 1)
	if err != nil {
		t.Fatal(err)
	}
	got := g.Materials()
	want := []Material{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, got)
		}
	}
}
