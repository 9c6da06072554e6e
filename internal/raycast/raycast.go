// Package raycast finds the nearest wall along a ray through a grid.
//
// Instead of creeping along the ray in small steps (which misses corners and
// wastes work in open rooms), the caster jumps from one grid line to the
// next. Crossings of vertical lines and of horizontal lines are scanned
// independently and the closer of the two wins.
package raycast

import (
	"math"

	"raycaster/internal/geom"
	"raycaster/internal/grid"
)

// parallel is the smallest direction component treated as non-zero. A ray
// with a smaller component never reaches the next line on that axis.
const parallel = 1e-12

// tie is the relative distance gap under which two candidates are the same
// point. Both scans can land on one grid corner and differ only by rounding.
const tie = 1e-9

// Hit is where a ray stopped.
type Hit struct {
	Pos        geom.Vec2 // impact point in world space
	Cell       grid.Cell // wall cell struck, or last cell inside the map
	Horizontal bool      // produced by the horizontal grid line scan
	Angle      float64   // ray direction, normalized to (-π, π]
	Escaped    bool      // ray left the map without meeting a wall
}

// Material reports the wall material struck; escaped rays report Empty.
func (h Hit) Material(g *grid.Grid) grid.Material {
	if h.Escaped {
		return grid.Empty
	}
	return g.MaterialAt(h.Cell.Col, h.Cell.Row)
}

// Caster casts rays against one grid. It holds no mutable state, so a
// single Caster may be shared by every worker of a sweep.
type Caster struct {
	grid *grid.Grid
}

func New(g *grid.Grid) *Caster {
	return &Caster{grid: g}
}

func (c *Caster) Grid() *grid.Grid { return c.grid }

// axis selects which family of grid lines march crosses.
type axis int

const (
	// vertical lines x = k·cell, stepping along x
	axisX axis = iota
	// horizontal lines y = k·cell, stepping along y
	axisY
)

// candidate is the result of one scan.
type candidate struct {
	pos     geom.Vec2
	cell    grid.Cell
	escaped bool
}

// Cast returns the nearest wall hit from origin along dir. It is a pure
// function of its inputs and the grid.
func (c *Caster) Cast(origin geom.Vec2, dir float64) Hit {
	dir = geom.NormalizeAngle(dir)
	v, okV := c.march(origin, dir, axisX)
	h, okH := c.march(origin, dir, axisY)

	var (
		best       candidate
		horizontal bool
	)
	switch {
	case okV && okH:
		// equal distances go to the horizontal scan
		if origin.DistSq(h.pos) <= origin.DistSq(v.pos)*(1+tie) {
			best, horizontal = h, true
		} else {
			best = v
		}
	case okH:
		best, horizontal = h, true
	case okV:
		best = v
	default:
		// both scans refused: origin is not a usable point
		best = c.escape(origin, dir)
	}

	return Hit{
		Pos:        best.pos,
		Cell:       best.cell,
		Horizontal: horizontal,
		Angle:      dir,
		Escaped:    best.escaped,
	}
}

// march walks successive grid lines crossing the given axis. The work is
// written for axisX (p = x, s = y); for axisY the coordinates are swapped on
// the way in and on the way out, so both scans share one loop.
//
// It reports false when the ray runs parallel to the lines it would cross.
func (c *Caster) march(origin geom.Vec2, dir float64, a axis) (candidate, bool) {
	if !origin.Finite() {
		return candidate{}, false
	}
	// a viewer outside the map sees nothing of it
	if c.grid.CellOf(origin).Col < 0 {
		return c.escape(origin, dir), true
	}
	var (
		cs       = c.grid.CellSize()
		ew, eh   = c.grid.Extent()
		sin, cos = math.Sincos(dir)
		p0, s0   = origin.X, origin.Y
		dp, ds   = cos, sin
		lines    = c.grid.Width()
		extentS  = eh
	)
	if a == axisY {
		p0, s0 = s0, p0
		dp, ds = ds, dp
		lines = c.grid.Height()
		extentS = ew
	}
	if math.Abs(dp) < parallel {
		return candidate{}, false
	}

	// slope is ds/dp: tan(dir) on the x axis, 1/tan(dir) on the y axis
	slope := ds / dp
	step, shift := 1, 1
	if dp < 0 {
		step, shift = -1, 0
	}

	// Line n lies at p = n·cs. Moving forward the cell just past it is n,
	// moving backward it is n-1.
	start := int(math.Floor(p0/cs)) + shift

	lastInside := c.grid.CellOf(origin)
	for n := start; ; n += step {
		p := float64(n) * cs
		s := s0 + (p-p0)*slope

		cellP := n
		if step < 0 {
			cellP = n - 1
		}
		// bounds before occupancy: this is what ends the loop on open maps
		if cellP < 0 || cellP >= lines || !(s >= 0 && s < extentS) {
			return c.escapeFrom(origin, dir, lastInside), true
		}
		cellS := int(math.Floor(s / cs))
		cell := grid.Cell{Col: cellP, Row: cellS}
		pos := geom.V(p, s)
		if a == axisY {
			cell = grid.Cell{Col: cellS, Row: cellP}
			pos = pos.Swap()
		}
		if !c.grid.InBounds(cell.Col, cell.Row) {
			return c.escapeFrom(origin, dir, lastInside), true
		}
		if c.grid.Occupied(cell.Col, cell.Row) {
			return candidate{pos: pos, cell: cell}, true
		}
		lastInside = cell
	}
}

// escape builds the candidate for a ray that never meets a wall.
func (c *Caster) escape(origin geom.Vec2, dir float64) candidate {
	return c.escapeFrom(origin, dir, c.grid.CellOf(origin))
}

// escapeFrom places an escaped ray at the point where it crosses the
// boundary of the map, so the projector still gets a finite position. cell
// is the last in-bounds cell the scan passed through; if the scan never
// entered the map the cell holding the exit point is used instead.
func (c *Caster) escapeFrom(origin geom.Vec2, dir float64, cell grid.Cell) candidate {
	pos := c.exitPoint(origin, dir)
	if !c.grid.InBounds(cell.Col, cell.Row) {
		cell = c.clampCell(pos)
	}
	return candidate{pos: pos, cell: cell, escaped: true}
}

// exitPoint is the farthest point of the map along the ray (slab method).
// Origins off the map are clamped onto it first.
func (c *Caster) exitPoint(origin geom.Vec2, dir float64) geom.Vec2 {
	w, h := c.grid.Extent()
	if !origin.Finite() {
		return geom.V(w/2, h/2)
	}
	o := geom.V(geom.Clamp(origin.X, 0, w), geom.Clamp(origin.Y, 0, h))
	sin, cos := math.Sincos(dir)
	t := math.Inf(1)
	if cos > parallel {
		t = math.Min(t, (w-o.X)/cos)
	} else if cos < -parallel {
		t = math.Min(t, -o.X/cos)
	}
	if sin > parallel {
		t = math.Min(t, (h-o.Y)/sin)
	} else if sin < -parallel {
		t = math.Min(t, -o.Y/sin)
	}
	if math.IsInf(t, 1) || t < 0 {
		t = 0
	}
	return geom.V(
		geom.Clamp(o.X+cos*t, 0, w),
		geom.Clamp(o.Y+sin*t, 0, h),
	)
}

func (c *Caster) clampCell(p geom.Vec2) grid.Cell {
	cs := c.grid.CellSize()
	col := int(math.Floor(p.X / cs))
	row := int(math.Floor(p.Y / cs))
	if col < 0 {
		col = 0
	} else if col >= c.grid.Width() {
		col = c.grid.Width() - 1
	}
	if row < 0 {
		row = 0
	} else if row >= c.grid.Height() {
		row = c.grid.Height() - 1
	}
	return grid.Cell{Col: col, Row: row}
}
