// Package level provides the boards the renderer can load: a couple of
// built-in ones and the text format written by the map editor.
package level

import (
	"bufio"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"raycaster/internal/geom"
	"raycaster/internal/grid"
)

var (
	ErrUnknown = errors.New("level: unknown level")
	ErrFormat  = errors.New("level: malformed map file")
)

// Level is a board plus where the player starts on it.
type Level struct {
	Name    string
	Grid    *grid.Grid
	Spawn   geom.Vec2
	Heading float64
	// Textures maps wall materials to image files. Built-in levels leave
	// it empty and rely on generated textures.
	Textures map[grid.Material]string
}

type builtin struct {
	rows    []string
	spawn   func(cs float64) geom.Vec2
	heading float64
}

var builtins = map[string]builtin{
	// The eight by eight demo board. The player starts on the grid corner
	// at its middle.
	"gdsc": {
		rows: []string{
			"########",
			"#..2...#",
			"#.22..##",
			"#......#",
			"#....#.#",
			"#......#",
			"#.#....#",
			"########",
		},
		spawn: func(cs float64) geom.Vec2 { return geom.V(4*cs, 4*cs) },
	},
	// A sixteen by sixteen maze with gaps in its outer wall, so some rays
	// leave the board.
	"maze": {
		rows: []string{
			"#########.......",
			"#...............",
			"#.......########",
			"#..............#",
			"#......##......#",
			"#......##......#",
			"#..............#",
			"###............#",
			"##.............#",
			"#......####..###",
			"#......#.......#",
			"#......#.......#",
			"#..............#",
			"#......#########",
			"#.............@.",
			"################",
		},
		heading: math.Pi,
	},
}

// Names lists the built-in levels.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Builtin returns a fresh copy of a built-in level.
func Builtin(name string, cellSize float64) (*Level, error) {
	b, ok := builtins[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknown, "%q (have %s)", name, strings.Join(Names(), ", "))
	}
	g, err := grid.Parse(b.rows, cellSize)
	if err != nil {
		return nil, errors.Wrapf(err, "level %s", name)
	}
	l := &Level{Name: name, Grid: g, Heading: b.heading}
	if b.spawn != nil {
		l.Spawn = b.spawn(cellSize)
	} else {
		l.Spawn = spawnPoint(g)
	}
	return l, nil
}

// Load reads a map file. Texture paths in it are taken relative to the
// file's directory.
func Load(path string, cellSize float64) (*Level, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "level: open map")
	}
	defer f.Close()

	l, err := ReadMap(f, cellSize)
	if err != nil {
		return nil, errors.Wrapf(err, "level: %s", path)
	}
	l.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	dir := filepath.Dir(path)
	for m, p := range l.Textures {
		if !filepath.IsAbs(p) {
			l.Textures[m] = filepath.Join(dir, p)
		}
	}
	return l, nil
}

// ReadMap parses the map editor format:
//
//	rows cols count
//	index path        (count lines)
//	c c c ...         (rows lines of cols integers)
//
// A cell of -1 is empty and k is image k, which becomes wall material k+1.
func ReadMap(r io.Reader, cellSize float64) (*Level, error) {
	sc := bufio.NewScanner(r)
	line := 0
	next := func() (string, bool) {
		for sc.Scan() {
			line++
			if s := strings.TrimSpace(sc.Text()); s != "" {
				return s, true
			}
		}
		return "", false
	}

	head, ok := next()
	if !ok {
		return nil, errors.Wrap(ErrFormat, "missing header")
	}
	nums, err := ints(strings.Fields(head))
	if err != nil || len(nums) != 3 {
		return nil, errors.Wrapf(ErrFormat, "line %d: header %q, want \"rows cols count\"", line, head)
	}
	rows, cols, count := nums[0], nums[1], nums[2]
	if rows <= 0 || cols <= 0 || count < 0 {
		return nil, errors.Wrapf(ErrFormat, "line %d: bad board size %dx%d", line, rows, cols)
	}

	images := make(map[int]string, count)
	for i := 0; i < count; i++ {
		s, ok := next()
		if !ok {
			return nil, errors.Wrapf(ErrFormat, "expected %d texture lines, got %d", count, i)
		}
		f := strings.SplitN(s, " ", 2)
		idx, err := strconv.Atoi(f[0])
		if err != nil || idx < 0 || len(f) < 2 || strings.TrimSpace(f[1]) == "" {
			return nil, errors.Wrapf(ErrFormat, "line %d: texture entry %q", line, s)
		}
		images[idx] = strings.TrimSpace(f[1])
	}

	mats := make([][]grid.Material, rows)
	for row := range mats {
		s, ok := next()
		if !ok {
			return nil, errors.Wrapf(ErrFormat, "expected %d board rows, got %d", rows, row)
		}
		cells, err := ints(strings.Fields(s))
		if err != nil || len(cells) != cols {
			return nil, errors.Wrapf(ErrFormat, "line %d: want %d integers", line, cols)
		}
		mats[row] = make([]grid.Material, cols)
		for col, c := range cells {
			switch {
			case c == -1:
			case c >= 0:
				mats[row][col] = grid.Material(c + 1)
			default:
				return nil, errors.Wrapf(ErrFormat, "line %d: cell %d", line, c)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "level: read map")
	}

	g, err := grid.New(mats, cellSize)
	if err != nil {
		return nil, err
	}
	l := &Level{
		Grid:     g,
		Spawn:    spawnPoint(g),
		Textures: make(map[grid.Material]string, len(images)),
	}
	for idx, path := range images {
		l.Textures[grid.Material(idx+1)] = path
	}
	return l, nil
}

func ints(fields []string) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// spawnPoint picks the marked spawn cell, or else the empty cell closest to
// the middle of the board.
func spawnPoint(g *grid.Grid) geom.Vec2 {
	if c, ok := g.Spawn(); ok {
		return g.Center(c)
	}
	w, h := g.Extent()
	mid := geom.V(w/2, h/2)
	best, bestD := geom.V(w/2, h/2), math.Inf(1)
	for row := 0; row < g.Height(); row++ {
		for col := 0; col < g.Width(); col++ {
			if g.Occupied(col, row) {
				continue
			}
			p := g.Center(grid.Cell{Col: col, Row: row})
			if d := p.DistSq(mid); d < bestD {
				best, bestD = p, d
			}
		}
	}
	return best
}
