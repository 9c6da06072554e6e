package texture

import (
	"image/color"
	"math"
	"math/rand"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// Procedural textures stand in for image files when none are supplied. All
// of them are power-of-two squares so any of them may serve as a floor.

// MinSize is the smallest edge the generators accept.
const MinSize = 8

func checkSize(size int) error {
	if size < MinSize || !isPow2(size) {
		return errors.Wrapf(ErrNotPowerOfTwo, "procedural size %d (minimum %d)", size, MinSize)
	}
	return nil
}

// hsv wraps the hue into [0,360) before handing it to go-colorful.
func hsv(h, s, v float64) colorful.Color {
	return colorful.Hsv(math.Mod(math.Mod(h, 360)+360, 360), s, v)
}

func rgba(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// Bricks draws staggered bricks of the given hue separated by grey mortar.
func Bricks(size int, hue float64, seed int64) (*Texture, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))
	mortar := hsv(0, 0, 0.55)
	brickH := size / 4
	brickW := size / 2
	// one tint per brick, picked up front so the pattern tiles
	tints := make([]colorful.Color, 16)
	for i := range tints {
		tints[i] = hsv(hue+rng.Float64()*8-4, 0.65+rng.Float64()*0.15, 0.5+rng.Float64()*0.2)
	}
	return New(size, size, func(x, y int) color.RGBA {
		row := y / brickH
		off := 0
		if row%2 == 1 {
			off = brickW / 2
		}
		bx := (x + off) % size
		if y%brickH == 0 || bx%brickW == 0 {
			return rgba(mortar)
		}
		tint := tints[(row*4+bx/brickW)%len(tints)]
		// slight vertical darkening toward the bottom of each brick
		t := float64(y%brickH) / float64(brickH)
		return rgba(tint.BlendLab(hsv(hue, 0.7, 0.3), t*0.35))
	})
}

// Panels draws riveted metal panels.
func Panels(size int, hue float64, seed int64) (*Texture, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))
	base := hsv(hue, 0.15, 0.45)
	edge := hsv(hue, 0.25, 0.25)
	light := hsv(hue, 0.6, 0.95)
	panel := size / 2
	return New(size, size, func(x, y int) color.RGBA {
		px, py := x%panel, y%panel
		switch {
		case px == 0 || py == 0 || px == panel-1 || py == panel-1:
			return rgba(edge)
		case (px == 3 || px == panel-4) && (py == 3 || py == panel-4):
			return rgba(edge.BlendLab(light, 0.2))
		case py > panel/2-2 && py < panel/2+1 && px > 4 && px < panel-5:
			return rgba(light)
		}
		noise := rng.Float64() * 0.06
		return rgba(base.BlendLab(hsv(hue, 0.1, 0.6), noise))
	})
}

// Beams draws a vertical support beam with a darker flange on each side.
func Beams(size int, hue float64) (*Texture, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	flange := hsv(hue, 0.4, 0.3)
	web := hsv(hue, 0.5, 0.6)
	return New(size, size, func(x, y int) color.RGBA {
		switch {
		case x < size/8 || x >= size-size/8:
			return rgba(flange)
		case y%(size/4) == 0:
			return rgba(flange.BlendLab(web, 0.5))
		default:
			t := float64(x) / float64(size)
			return rgba(web.BlendLab(flange, 0.4*t))
		}
	})
}

// Tiles draws a checkered floor.
func Tiles(size int, a, b color.RGBA) (*Texture, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	ca, _ := colorful.MakeColor(a)
	cb, _ := colorful.MakeColor(b)
	tile := size / 2
	return New(size, size, func(x, y int) color.RGBA {
		if x%tile == 0 || y%tile == 0 {
			return rgba(ca.BlendLab(cb, 0.5))
		}
		if (x/tile+y/tile)%2 == 0 {
			return rgba(ca)
		}
		return rgba(cb)
	})
}

// Stars is a night sky for the ceiling: black with a scattering of stars.
func Stars(size int, density float64, seed int64) (*Texture, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))
	night := hsv(230, 0.6, 0.08)
	return New(size, size, func(x, y int) color.RGBA {
		if rng.Float64() < density {
			return rgba(hsv(50, 0.2*rng.Float64(), 0.7+0.3*rng.Float64()))
		}
		return rgba(night)
	})
}

// Checker is a magenta/black checkerboard used where a texture is missing.
func Checker(size int) (*Texture, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	cell := size / 4
	return New(size, size, func(x, y int) color.RGBA {
		if (x/cell+y/cell)%2 == 0 {
			return color.RGBA{R: 0xff, B: 0xff, A: 0xff}
		}
		return color.RGBA{A: 0xff}
	})
}

// Default builds a complete set for a grid with the given wall materials,
// cycling through the wall styles.
func Default(size int, materials []int) (*Set, error) {
	floor, err := Tiles(size, color.RGBA{R: 0x5a, G: 0x5a, B: 0x60, A: 0xff}, color.RGBA{R: 0x3c, G: 0x3c, B: 0x44, A: 0xff})
	if err != nil {
		return nil, err
	}
	ceiling, err := Stars(size, 0.02, 1)
	if err != nil {
		return nil, err
	}
	fallback, err := Checker(size)
	if err != nil {
		return nil, err
	}
	set, err := NewSet(floor, ceiling, fallback)
	if err != nil {
		return nil, err
	}
	for i, id := range materials {
		var t *Texture
		hue := float64((i * 67) % 360)
		switch i % 3 {
		case 0:
			t, err = Panels(size, hue+200, int64(id))
		case 1:
			t, err = Beams(size, hue)
		default:
			t, err = Bricks(size, hue, int64(id))
		}
		if err != nil {
			return nil, err
		}
		if err := set.SetWall(id, t); err != nil {
			return nil, err
		}
	}
	return set, nil
}
