package present

import (
	"image"
	"image/png"
	"os"

	"github.com/pkg/errors"

	"raycaster/internal/frame"
	"raycaster/internal/project"
)

// Snapshot is a headless platform that renders a single frame to a PNG.
type Snapshot struct {
	path string
	img  *image.RGBA
	done bool
}

func NewSnapshot(path string, w, h int) *Snapshot {
	return &Snapshot{path: path, img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func (s *Snapshot) Elapsed() float64   { return 0 }
func (s *Snapshot) Input() frame.Input { return nil }
func (s *Snapshot) Closed() bool       { return s.done }
func (s *Snapshot) Close() error       { return nil }

// Image is the last rendered frame.
func (s *Snapshot) Image() *image.RGBA { return s.img }

func (s *Snapshot) Present(rects []project.Rect) error {
	fill(s.img, black)
	Rasterize(s.img, rects)
	s.done = true
	if s.path == "" {
		return nil
	}
	return WritePNG(s.path, s.img)
}

// WritePNG encodes img to path, replacing any existing file.
func WritePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "present: create snapshot")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "present: close snapshot")
		}
	}()
	return errors.Wrap(png.Encode(f, img), "present: encode snapshot")
}
