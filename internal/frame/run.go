package frame

import "github.com/pkg/errors"

// Run drives frames until the platform reports it is closed, then closes
// it. A failed Present ends the loop.
func Run(d *Driver, p Platform) (err error) {
	defer func() {
		if cerr := p.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "frame: close")
		}
	}()

	for !p.Closed() {
		dt := p.Elapsed()
		rects := d.Advance(dt, p.Input())
		if err := p.Present(rects); err != nil {
			return errors.Wrap(err, "frame: present")
		}
	}
	return nil
}
