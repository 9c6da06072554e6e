// Package texture holds the immutable RGBA pixel buffers walls, floor and
// ceiling are sampled from.
package texture

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
)

var (
	ErrNotPowerOfTwo = errors.New("texture: size is not a power of two")
	ErrEmpty         = errors.New("texture: zero-sized image")
)

// Texture is a W×H row-major pixel buffer. It is never written after
// construction, so any number of goroutines may sample it.
type Texture struct {
	W, H int
	Pix  []color.RGBA
}

// New allocates a texture filled by fn(x, y).
func New(w, h int, fn func(x, y int) color.RGBA) (*Texture, error) {
	if w <= 0 || h <= 0 {
		return nil, ErrEmpty
	}
	t := &Texture{W: w, H: h, Pix: make([]color.RGBA, w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			t.Pix[y*w+x] = fn(x, y)
		}
	}
	return t, nil
}

// FromImage copies any decoded image into a texture.
func FromImage(img image.Image) (*Texture, error) {
	b := img.Bounds()
	return New(b.Dx(), b.Dy(), func(x, y int) color.RGBA {
		return color.RGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA)
	})
}

// At samples texel (x, y), clamping out-of-range coordinates to the edge.
func (t *Texture) At(x, y int) color.RGBA {
	if x < 0 {
		x = 0
	} else if x >= t.W {
		x = t.W - 1
	}
	if y < 0 {
		y = 0
	} else if y >= t.H {
		y = t.H - 1
	}
	return t.Pix[y*t.W+x]
}

// Wrap samples with bitmask wrapping. Only valid for power-of-two textures,
// which is what Set enforces for floor and ceiling.
func (t *Texture) Wrap(x, y int) color.RGBA {
	return t.Pix[(y&(t.H-1))*t.W+(x&(t.W-1))]
}

// PowerOfTwo reports whether both dimensions are powers of two.
func (t *Texture) PowerOfTwo() bool {
	return isPow2(t.W) && isPow2(t.H)
}

func isPow2(n int) bool { return n > 0 && n&(n-1) == 0 }

// Shade darkens c by subtracting amount from each color channel, clamped
// to [0,255]. Alpha is kept. A negative amount brightens.
func Shade(c color.RGBA, amount int) color.RGBA {
	return color.RGBA{
		R: clampChannel(int(c.R) - amount),
		G: clampChannel(int(c.G) - amount),
		B: clampChannel(int(c.B) - amount),
		A: c.A,
	}
}

func clampChannel(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
