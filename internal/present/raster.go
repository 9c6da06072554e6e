// Package present puts frames somewhere a person can see them: a terminal
// through tcell, or a PNG file.
package present

import (
	"image"
	"image/color"
	"math"

	"raycaster/internal/geom"
	"raycaster/internal/project"
)

var black = color.RGBA{A: 0xff}

// Layout splits a w×h pixel target into the 3-D view and, when wanted, a
// square overview panel in the top right corner.
func Layout(w, h int, minimap bool) (view, panel geom.Rect) {
	view = geom.Rect{W: float64(w), H: float64(h)}
	if minimap {
		s := math.Floor(math.Min(float64(w), float64(h)) / 3)
		panel = geom.Rect{X: float64(w) - s, Y: 0, W: s, H: s}
	}
	return view, panel
}

// Rasterize paints rects onto img in order. A pixel belongs to a rect when
// its center lies inside it, so rects that tile the plane paint every pixel
// exactly once.
func Rasterize(img *image.RGBA, rects []project.Rect) {
	b := img.Bounds()
	for _, r := range rects {
		x0 := max(b.Min.X, int(math.Ceil(r.X-0.5)))
		x1 := min(b.Max.X, int(math.Ceil(r.X+r.W-0.5)))
		y0 := max(b.Min.Y, int(math.Ceil(r.Y-0.5)))
		y1 := min(b.Max.Y, int(math.Ceil(r.Y+r.H-0.5)))
		if x0 >= x1 || y0 >= y1 {
			continue
		}
		for y := y0; y < y1; y++ {
			row := img.Pix[img.PixOffset(x0, y):]
			for x := 0; x < x1-x0; x++ {
				row[4*x+0] = r.Color.R
				row[4*x+1] = r.Color.G
				row[4*x+2] = r.Color.B
				row[4*x+3] = r.Color.A
			}
		}
	}
}

func fill(img *image.RGBA, c color.RGBA) {
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
}
