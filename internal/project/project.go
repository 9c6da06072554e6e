// Package project turns ray hits into screen-space rectangles: one
// texture-mapped, distance-shaded wall strip per ray, and the floor and
// ceiling rows above and below it.
package project

import (
	"image/color"
	"math"

	"raycaster/internal/geom"
	"raycaster/internal/grid"
	"raycaster/internal/raycast"
	"raycaster/internal/texture"
)

// DefaultShade darkens by about 128 levels every eleven cells of distance.
const DefaultShade = 128.0 / 11.25

// Rect is one filled rectangle of the frame, in render-target pixels.
type Rect struct {
	X, Y, W, H float64
	Color      color.RGBA
}

// View is what the projector needs to know about the viewer and the target.
type View struct {
	Origin   geom.Vec2
	Heading  float64
	Viewport geom.Rect
}

// Strip is the horizontal span of the render target owned by one ray.
type Strip struct {
	X, W float64
}

// Column summarizes one projected ray.
type Column struct {
	Hit      raycast.Hit
	Distance float64 // fish-eye corrected
	X, W     float64
	Top      float64 // wall top, may lie above the viewport
	Height   float64 // projected wall height, unclipped
}

// Projector owns the read-only inputs shared by every column of a frame.
type Projector struct {
	grid     *grid.Grid
	textures *texture.Set

	// ShadeStrength is the channel value subtracted per cell of distance.
	ShadeStrength float64
	// MinDistance bounds the corrected distance from below so a viewer
	// pressed against a wall never divides by zero.
	MinDistance float64
}

func New(g *grid.Grid, ts *texture.Set) *Projector {
	return &Projector{
		grid:          g,
		textures:      ts,
		ShadeStrength: DefaultShade,
		MinDistance:   g.CellSize() / 1000,
	}
}

// CorrectedDistance projects the viewer→hit vector onto the forward axis.
// Using it instead of the radial distance keeps flat walls flat.
func CorrectedDistance(hit, origin geom.Vec2, heading float64) float64 {
	return hit.Sub(origin).Dot(geom.FromAngle(heading))
}

// WallHeight is the on-screen height of a wall one cell tall at the given
// corrected distance.
func WallHeight(cellSize, screenH, dist float64) float64 {
	return cellSize * screenH / dist
}

// StripWidth is the width each ray covers when screenW pixels span fov
// radians and rays are step radians apart.
func StripWidth(screenW, fov, step float64) float64 {
	return screenW / fov * step
}

// StripAt splits the viewport into n strips on whole-pixel boundaries. The
// strips tile the viewport exactly; their widths differ from StripWidth by
// less than a pixel.
func StripAt(i, n int, vp geom.Rect) Strip {
	x0 := math.Floor(float64(i) * vp.W / float64(n))
	x1 := math.Floor(float64(i+1) * vp.W / float64(n))
	if i == n-1 {
		x1 = math.Floor(vp.W)
	}
	return Strip{X: vp.X + x0, W: x1 - x0}
}

// Project appends the rectangles for one hit to dst.
func (p *Projector) Project(dst []Rect, hit raycast.Hit, v View, s Strip) (Column, []Rect) {
	cs := p.grid.CellSize()
	vp := v.Viewport

	dist := CorrectedDistance(hit.Pos, v.Origin, v.Heading)
	if !(dist > p.MinDistance) || math.IsInf(dist, 0) {
		dist = p.MinDistance
	}
	height := WallHeight(cs, vp.H, dist)
	col := Column{
		Hit:      hit,
		Distance: dist,
		X:        s.X,
		W:        s.W,
		Top:      vp.Y + (vp.H-height)/2,
		Height:   height,
	}
	if s.W <= 0 || vp.Empty() {
		return col, dst
	}

	dst = p.wall(dst, col, vp)
	dst = p.floorAndCeiling(dst, col, v)
	return col, dst
}

// wall stretches one texture column over the projected height.
func (p *Projector) wall(dst []Rect, col Column, vp geom.Rect) []Rect {
	cs := p.grid.CellSize()
	hit := col.Hit
	tex := p.textures.Wall(int(hit.Material(p.grid)))

	// Which face was struck decides which coordinate runs along the wall.
	inCell := hit.Pos.Sub(geom.V(float64(hit.Cell.Col)*cs, float64(hit.Cell.Row)*cs))
	u := inCell.Y
	if hit.Horizontal {
		u = inCell.X
	}
	tx := int(u / cs * float64(tex.W))

	shade := p.shade(col.Distance)
	texel := col.Height / float64(tex.H)
	first := int(math.Floor((vp.Y - col.Top) / texel))
	last := int(math.Ceil((vp.Bottom() - col.Top) / texel))
	if first < 0 {
		first = 0
	}
	if last > tex.H {
		last = tex.H
	}
	for i := first; i < last; i++ {
		r := geom.Rect{X: col.X, Y: col.Top + float64(i)*texel, W: col.W, H: texel}.Intersect(vp)
		if r.Empty() {
			continue
		}
		dst = append(dst, Rect{X: r.X, Y: r.Y, W: r.W, H: r.H, Color: texture.Shade(tex.At(tx, i), shade)})
	}
	return dst
}

// floorAndCeiling back-projects every pixel row below the wall to the point
// of the floor it shows, and mirrors the result onto the ceiling.
func (p *Projector) floorAndCeiling(dst []Rect, col Column, v View) []Rect {
	var (
		cs      = p.grid.CellSize()
		vp      = v.Viewport
		rows    = int(vp.H)
		half    = vp.H / 2
		bottom  = col.Top + col.Height - vp.Y
		floor   = p.textures.Floor()
		ceiling = p.textures.Ceiling()
		ray     = geom.FromAngle(col.Hit.Angle)
	)
	// first row whose pixel center is at or below the wall bottom
	start := int(math.Ceil(bottom - 0.5))
	if start < 0 {
		start = 0
	}

	// Rays off the view axis travel further to reach the same depth.
	fix := math.Cos(geom.NormalizeAngle(col.Hit.Angle - v.Heading))
	if fix < 1e-6 {
		fix = 1e-6
	}

	for r := start; r < rows; r++ {
		dy := float64(r) + 0.5 - half
		if dy < 0.5 {
			dy = 0.5
		}
		// Eye height is half a wall, so a row dy below the horizon sees the
		// floor at the depth where a wall's bottom edge would land on it.
		depth := cs / 2 * vp.H / dy
		world := v.Origin.Add(ray.Scale(depth / fix))
		fx, fy := world.X/cs, world.Y/cs
		shade := p.shade(depth)

		fc := floor.Wrap(int(math.Floor(fx*float64(floor.W))), int(math.Floor(fy*float64(floor.H))))
		cc := ceiling.Wrap(int(math.Floor(fx*float64(ceiling.W))), int(math.Floor(fy*float64(ceiling.H))))

		dst = append(dst,
			Rect{X: col.X, Y: vp.Y + float64(r), W: col.W, H: 1, Color: texture.Shade(fc, shade)},
			Rect{X: col.X, Y: vp.Y + float64(rows-1-r), W: col.W, H: 1, Color: texture.Shade(cc, shade)},
		)
	}
	return dst
}

func (p *Projector) shade(dist float64) int {
	return int(p.ShadeStrength * dist / p.grid.CellSize())
}
