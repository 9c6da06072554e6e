package frame

import (
	"image/color"
	"math"

	"raycaster/internal/geom"
	"raycaster/internal/grid"
	"raycaster/internal/project"
	"raycaster/internal/texture"
)

var (
	floorInk  = color.RGBA{R: 0xd8, G: 0xd8, B: 0xd8, A: 0xff}
	playerInk = color.RGBA{R: 0xe0, G: 0x20, B: 0x20, A: 0xff}
	rayInk    = color.RGBA{R: 0x30, G: 0x60, B: 0xff, A: 0xff}
)

// panelScale is the pixels per world unit that fit the whole board into the
// panel while keeping cells square.
func (d *Driver) panelScale() float64 {
	w, h := d.grid.Extent()
	return math.Min(d.panel.W/w, d.panel.H/h)
}

// PanelToWorld maps a render-target pixel inside the overview panel to the
// world point drawn there.
func (d *Driver) PanelToWorld(x, y float64) (geom.Vec2, bool) {
	if d.panel.Empty() || !d.panel.Contains(geom.V(x, y)) {
		return geom.Vec2{}, false
	}
	s := d.panelScale()
	return geom.V((x-d.panel.X)/s, (y-d.panel.Y)/s), true
}

func (d *Driver) worldToPanel(p geom.Vec2) geom.Vec2 {
	s := d.panelScale()
	return geom.V(d.panel.X+p.X*s, d.panel.Y+p.Y*s)
}

// Overview appends a top-down view of the board to dst: the cells, the
// points every ray of the last sweep struck, and the player.
func (d *Driver) Overview(dst []project.Rect) []project.Rect {
	if d.panel.Empty() {
		return dst
	}
	s := d.panelScale()
	cs := d.grid.CellSize() * s

	for row := 0; row < d.grid.Height(); row++ {
		for col := 0; col < d.grid.Width(); col++ {
			ink := floorInk
			if m := d.grid.MaterialAt(col, row); m != grid.Empty {
				t := d.textures.Wall(int(m))
				ink = texture.Shade(t.At(t.W/2, t.H/2), 40)
			}
			dst = append(dst, project.Rect{
				X: d.panel.X + float64(col)*cs, Y: d.panel.Y + float64(row)*cs,
				W: cs, H: cs, Color: ink,
			})
		}
	}

	for _, c := range d.columns {
		p := d.worldToPanel(c.Hit.Pos)
		dst = append(dst, project.Rect{X: p.X - 0.5, Y: p.Y - 0.5, W: 1, H: 1, Color: rayInk})
	}

	size := math.Max(2, 2*d.Player.Radius*s)
	p := d.worldToPanel(d.Player.Pos)
	dst = append(dst, project.Rect{X: p.X - size/2, Y: p.Y - size/2, W: size, H: size, Color: playerInk})
	nose := d.worldToPanel(d.Player.Pos.Add(geom.FromAngle(d.Player.Heading).Scale(d.grid.CellSize() / 2)))
	return append(dst, project.Rect{X: nose.X - 0.5, Y: nose.Y - 0.5, W: 1, H: 1, Color: playerInk})
}
