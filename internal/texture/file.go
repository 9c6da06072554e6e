package texture

import (
	"image"
	_ "image/png"
	"os"

	"github.com/pkg/errors"
)

// Load decodes an image file into a texture.
func Load(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "texture: open %s", path)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "texture: decode %s", path)
	}
	return FromImage(img)
}
