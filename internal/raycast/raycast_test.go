package raycast

import (
	"math"
	"testing"

	"raycaster/internal/geom"
	"raycaster/internal/grid"
)

const cs = 64.0

func room(t *testing.T, rows ...string) *Caster {
	t.Helper()
	g, err := grid.Parse(rows, cs)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return New(g)
}

func bordered8(t *testing.T) *Caster {
	return room(t,
		"########",
		"#......#",
		"#......#",
		"#......#",
		"#......#",
		"#......#",
		"#......#",
		"########",
	)
}

func onBorder(g *grid.Grid, c grid.Cell) bool {
	return c.Col == 0 || c.Row == 0 || c.Col == g.Width()-1 || c.Row == g.Height()-1
}

func TestEmptyRoomHitsBoundary(t *testing.T) {
	c := room(t,
		"######",
		"#....#",
		"#....#",
		"#....#",
		"######",
	)
	g := c.Grid()

	origins := []geom.Vec2{
		geom.V(1.3*cs, 1.7*cs),
		geom.V(2.5*cs, 2.5*cs),
		geom.V(4.9*cs, 3.1*cs),
		geom.V(1.01*cs, 3.99*cs),
		geom.V(3*cs+0.5, 2*cs+0.25),
	}
	for _, o := range origins {
		for i := 0; i < 360; i++ {
			dir := geom.Radians(float64(i))
			hit := c.Cast(o, dir)

			if hit.Escaped {
				t.Fatalf("Cast(%v, %d°) escaped a closed room", o, i)
			}
			if !onBorder(g, hit.Cell) {
				t.Errorf("Cast(%v, %d°): expected border cell, got %v", o, i, hit.Cell)
			}
			if hit.Material(g) == grid.Empty {
				t.Errorf("Cast(%v, %d°): expected wall material at %v", o, i, hit.Cell)
			}
			if !hit.Pos.Finite() {
				t.Fatalf("Cast(%v, %d°): non-finite position %v", o, i, hit.Pos)
			}
			corrected := hit.Pos.Sub(o).Dot(geom.FromAngle(dir))
			if !(corrected > 0) {
				t.Errorf("Cast(%v, %d°): expected positive corrected distance, got %v", o, i, corrected)
			}
		}
	}
}

func TestAxisParallelDistance(t *testing.T) {
	c := bordered8(t)
	origin := geom.V(2.5*cs, 3.25*cs)

	tests := []struct {
		name      string
		dir       float64
		want      float64
		wantHoriz bool
	}{
		{"East", 0, 4.5 * cs, false},
		{"West", math.Pi, 1.5 * cs, false},
		{"West from -π", -math.Pi, 1.5 * cs, false},
		{"South", math.Pi / 2, 3.75 * cs, true},
		{"North", -math.Pi / 2, 2.25 * cs, true},
		{"East after a full turn", 2 * math.Pi, 4.5 * cs, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit := c.Cast(origin, tt.dir)
			d := hit.Pos.Dist(origin)
			if math.IsNaN(d) || math.IsInf(d, 0) {
				t.Fatalf("Expected finite distance, got %v", d)
			}
			if math.Abs(d-tt.want) > 1e-9 {
				t.Errorf("Expected distance %v, got %v", tt.want, d)
			}
			if hit.Horizontal != tt.wantHoriz {
				t.Errorf("Expected Horizontal=%v, got %v", tt.wantHoriz, hit.Horizontal)
			}
			if hit.Escaped {
				t.Error("Expected a wall hit")
			}
		})
	}
}

func TestCastIsIdempotent(t *testing.T) {
	c := room(t,
		"########",
		"#..2...#",
		"#......#",
		"#.1..3.#",
		"#......#",
		"########",
	)
	origin := geom.V(4.2*cs, 2.6*cs)

	for i := -720; i <= 720; i += 7 {
		dir := geom.Radians(float64(i))
		a := c.Cast(origin, dir)
		b := c.Cast(origin, dir)
		if a != b {
			t.Errorf("Cast at %d° not deterministic: %+v vs %+v", i, a, b)
		}
	}
}

func TestHitAngleIsNormalized(t *testing.T) {
	c := bordered8(t)
	origin := geom.V(4*cs, 4*cs)

	for _, dir := range []float64{-7, -math.Pi, 0, 3, math.Pi, 9.5, 1e6} {
		hit := c.Cast(origin, dir)
		if hit.Angle <= -math.Pi || hit.Angle > math.Pi {
			t.Errorf("Cast(%v): angle %v outside (-π, π]", dir, hit.Angle)
		}
	}
}

func TestInteriorWallStopsRay(t *testing.T) {
	c := room(t,
		"#######",
		"#.....#",
		"#..3..#",
		"#.....#",
		"#######",
	)
	hit := c.Cast(geom.V(1.5*cs, 2.5*cs), 0)

	if hit.Cell != (grid.Cell{Col: 3, Row: 2}) {
		t.Fatalf("Expected hit on interior wall (3,2), got %v", hit.Cell)
	}
	if got := hit.Material(c.Grid()); got != 3 {
		t.Errorf("Expected material 3, got %d", got)
	}
	if hit.Pos.X != 3*cs {
		t.Errorf("Expected impact on the wall face x=%v, got %v", 3*cs, hit.Pos.X)
	}
}

func TestEscapedRayThroughGap(t *testing.T) {
	c := room(t,
		"#.#",
		"#.#",
		"#.#",
	)
	hit := c.Cast(geom.V(1.5*cs, 1.5*cs), -math.Pi/2)

	if !hit.Escaped {
		t.Fatal("Expected ray through the gap to escape")
	}
	if hit.Cell != (grid.Cell{Col: 1, Row: 0}) {
		t.Errorf("Expected last valid cell (1,0), got %v", hit.Cell)
	}
	if math.Abs(hit.Pos.Y) > 1e-9 || math.Abs(hit.Pos.X-1.5*cs) > 1e-9 {
		t.Errorf("Expected exit on top edge at x=%v, got %v", 1.5*cs, hit.Pos)
	}
	if hit.Material(c.Grid()) != grid.Empty {
		t.Error("Expected escaped hit to report no material")
	}
}

func TestOpenMapTerminatesAndPrefersHorizontalOnTie(t *testing.T) {
	c := room(t,
		"....",
		"....",
		"....",
	)
	g := c.Grid()
	w, h := g.Extent()
	origin := geom.V(1.5*cs, 1.5*cs)

	for i := 0; i < 360; i += 5 {
		hit := c.Cast(origin, geom.Radians(float64(i)+0.5))
		if !hit.Escaped {
			t.Fatalf("Expected escape on an open map at %d°", i)
		}
		if hit.Pos.X < 0 || hit.Pos.X > w || hit.Pos.Y < 0 || hit.Pos.Y > h {
			t.Errorf("Expected exit point on the map boundary, got %v", hit.Pos)
		}
		if !g.InBounds(hit.Cell.Col, hit.Cell.Row) {
			t.Errorf("Expected escaped hit to keep an in-bounds cell, got %v", hit.Cell)
		}
		// both scans end at the same exit point
		if !hit.Horizontal {
			t.Errorf("Expected tie to resolve to the horizontal scan at %d°", i)
		}
	}
}

func TestCornerTieIsHorizontal(t *testing.T) {
	c := bordered8(t)
	ties := 0

	for row := 1; row < 7; row++ {
		for col := 1; col < 7; col++ {
			o := geom.V((float64(col)+0.5)*cs, (float64(row)+0.5)*cs)
			for _, dir := range []float64{math.Pi / 4, -math.Pi / 4, 3 * math.Pi / 4, -3 * math.Pi / 4} {
				v, okV := c.march(o, dir, axisX)
				h, okH := c.march(o, dir, axisY)
				if !okV || !okH {
					t.Fatalf("Expected both scans to run from %v at %v", o, dir)
				}
				dv, dh := o.Dist(v.pos), o.Dist(h.pos)
				if math.Abs(dv-dh) > 1e-6*dv {
					continue
				}
				ties++
				if hit := c.Cast(o, dir); !hit.Horizontal {
					t.Errorf("Expected corner tie from %v at %.4f to be horizontal, got v=%v h=%v", o, dir, v.pos, h.pos)
				}
			}
		}
	}
	if ties == 0 {
		t.Fatal("Expected diagonal rays from cell centers to meet corners")
	}
}

func TestBadOrigins(t *testing.T) {
	c := bordered8(t)

	for _, o := range []geom.Vec2{
		geom.V(math.NaN(), 10),
		geom.V(math.Inf(1), 10),
		geom.V(-100, 100),
		geom.V(100, 1e9),
	} {
		hit := c.Cast(o, 0.4)
		if !hit.Escaped {
			t.Errorf("Expected origin %v to yield an escaped hit", o)
		}
		if !hit.Pos.Finite() {
			t.Errorf("Expected finite fallback position for %v, got %v", o, hit.Pos)
		}
	}
}

func TestCenterFacingAxisIsVertical(t *testing.T) {
	c := bordered8(t)
	center := geom.V(4*cs, 4*cs)

	if hit := c.Cast(center, 0); hit.Horizontal || hit.Cell.Col != 7 {
		t.Errorf("Expected vertical hit on column 7, got %+v", hit)
	}
	if hit := c.Cast(center, math.Pi/2); !hit.Horizontal || hit.Cell.Row != 7 {
		t.Errorf("Expected horizontal hit on row 7, got %+v", hit)
	}
}
