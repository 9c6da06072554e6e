package frame

import (
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"raycaster/internal/project"
)

// Sweep casts and projects every ray of the field of view and appends the
// rectangles to dst in left-to-right order.
//
// With more than one worker the rays are split into contiguous bands. Each
// band goroutine writes only its own scratch slice and its own range of
// d.columns, so the join in Wait is the only synchronization. The grid and
// textures are read-only for the whole sweep.
func (d *Driver) Sweep(dst []project.Rect) []project.Rect {
	n := d.Player.Rays
	if cap(d.columns) < n {
		d.columns = make([]project.Column, n)
	}
	d.columns = d.columns[:n]

	bands := d.workers
	if bands > n {
		bands = n
	}
	if bands <= 1 {
		return d.castRange(dst, 0, n)
	}

	if len(d.bands) < bands {
		d.bands = append(d.bands, make([][]project.Rect, bands-len(d.bands))...)
	}
	var g errgroup.Group
	for b := 0; b < bands; b++ {
		b := b
		lo, hi := b*n/bands, (b+1)*n/bands
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					d.bands[b] = d.bands[b][:0]
					err = errors.Errorf("frame: rays %d-%d dropped: %v", lo, hi-1, r)
				}
			}()
			d.bands[b] = d.castRange(d.bands[b][:0], lo, hi)
			return nil
		})
	}
	// a failed band leaves a gap for one frame rather than ending the loop
	if err := g.Wait(); err != nil {
		d.log.Printf("sweep: %v", err)
	}
	for b := 0; b < bands; b++ {
		dst = append(dst, d.bands[b]...)
	}
	return dst
}

// castRange handles rays [lo, hi).
func (d *Driver) castRange(dst []project.Rect, lo, hi int) []project.Rect {
	p := d.Player
	v := project.View{Origin: p.Pos, Heading: p.Heading, Viewport: d.view}
	for i := lo; i < hi; i++ {
		hit := d.caster.Cast(p.Pos, RayAngle(p.Heading, p.FOV, i, p.Rays))
		var col project.Column
		col, dst = d.projector.Project(dst, hit, v, project.StripAt(i, p.Rays, d.view))
		d.columns[i] = col
	}
	return dst
}
