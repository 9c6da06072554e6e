// Package grid is the static world model: a bounded 2-D array of material
// ids. Material 0 is walkable space, anything else is a wall whose id picks
// the wall texture. A Grid never changes once built.
package grid

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"raycaster/internal/geom"
)

// Material identifies what fills a cell.
type Material int

const (
	Empty Material = 0
	// OutOfBounds is returned by MaterialAt for cells outside the grid.
	OutOfBounds Material = -1
)

var (
	ErrEmpty    = errors.New("grid: no cells")
	ErrCellSize = errors.New("grid: cell size must be positive")
)

// Cell addresses a grid square by column and row.
type Cell struct {
	Col, Row int
}

// Grid is a W×H board of materials. Cells are stored column-major so that
// cells[col][row] reads the same way the coordinates are written.
type Grid struct {
	w, h     int
	cellSize float64
	cells    [][]Material
	spawn    Cell
	hasSpawn bool
}

// New builds a grid from rows of materials (rows[row][col]). Every row must
// have the same length.
func New(rows [][]Material, cellSize float64) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmpty
	}
	if !(cellSize > 0) {
		return nil, ErrCellSize
	}
	h, w := len(rows), len(rows[0])
	g := &Grid{w: w, h: h, cellSize: cellSize, cells: make([][]Material, w)}
	for col := range g.cells {
		g.cells[col] = make([]Material, h)
	}
	for row, line := range rows {
		if len(line) != w {
			return nil, errors.Errorf("grid: row %d has %d cells, want %d", row, len(line), w)
		}
		for col, m := range line {
			if m < 0 {
				return nil, errors.Errorf("grid: negative material %d at (%d,%d)", m, col, row)
			}
			g.cells[col][row] = m
		}
	}
	return g, nil
}

// Parse reads a text board. '.', '0' and ' ' are empty, '#' is material 1,
// '1'..'9' are those materials, and '@' is an empty cell marking the spawn.
func Parse(rows []string, cellSize float64) (*Grid, error) {
	var (
		mats  = make([][]Material, len(rows))
		spawn Cell
		found bool
	)
	for row, line := range rows {
		mats[row] = make([]Material, 0, len(line))
		for col, r := range line {
			switch {
			case r == '.' || r == '0' || r == ' ':
				mats[row] = append(mats[row], Empty)
			case r == '#':
				mats[row] = append(mats[row], 1)
			case r >= '1' && r <= '9':
				mats[row] = append(mats[row], Material(r-'0'))
			case r == '@':
				if found {
					return nil, errors.Errorf("grid: second spawn at (%d,%d)", col, row)
				}
				spawn, found = Cell{Col: col, Row: row}, true
				mats[row] = append(mats[row], Empty)
			default:
				return nil, errors.Errorf("grid: unknown cell %q at (%d,%d)", r, col, row)
			}
		}
	}
	g, err := New(mats, cellSize)
	if err != nil {
		return nil, err
	}
	g.spawn, g.hasSpawn = spawn, found
	return g, nil
}

func (g *Grid) Width() int        { return g.w }
func (g *Grid) Height() int       { return g.h }
func (g *Grid) CellSize() float64 { return g.cellSize }

// Extent is the world-space size of the whole board.
func (g *Grid) Extent() (w, h float64) {
	return float64(g.w) * g.cellSize, float64(g.h) * g.cellSize
}

// Spawn returns the cell marked '@' when the grid was parsed from text.
func (g *Grid) Spawn() (Cell, bool) { return g.spawn, g.hasSpawn }

// InBounds reports whether (col, row) is inside [0,W)×[0,H).
func (g *Grid) InBounds(col, row int) bool {
	return col >= 0 && col < g.w && row >= 0 && row < g.h
}

// MaterialAt returns the material of a cell, or OutOfBounds.
func (g *Grid) MaterialAt(col, row int) Material {
	if !g.InBounds(col, row) {
		return OutOfBounds
	}
	return g.cells[col][row]
}

// Occupied treats anything that is not walkable, including cells off the
// board, as solid.
func (g *Grid) Occupied(col, row int) bool {
	return g.MaterialAt(col, row) != Empty
}

// CellOf maps a world point to the cell containing it. Points off the board
// (or non-finite) map to a cell that fails InBounds.
func (g *Grid) CellOf(p geom.Vec2) Cell {
	w, h := g.Extent()
	if !(p.X >= 0 && p.X < w && p.Y >= 0 && p.Y < h) {
		return Cell{Col: -1, Row: -1}
	}
	c := Cell{
		Col: int(math.Floor(p.X / g.cellSize)),
		Row: int(math.Floor(p.Y / g.cellSize)),
	}
	// division can round a point just short of the far edge onto it
	if c.Col >= g.w {
		c.Col = g.w - 1
	}
	if c.Row >= g.h {
		c.Row = g.h - 1
	}
	return c
}

// Center is the world point in the middle of a cell.
func (g *Grid) Center(c Cell) geom.Vec2 {
	return geom.V((float64(c.Col)+0.5)*g.cellSize, (float64(c.Row)+0.5)*g.cellSize)
}

// Materials lists the distinct wall materials in use, in ascending order.
func (g *Grid) Materials() []Material {
	seen := make(map[Material]bool)
	var out []Material
	for col := 0; col < g.w; col++ {
		for row := 0; row < g.h; row++ {
			m := g.cells[col][row]
			if m != Empty && !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
