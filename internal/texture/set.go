package texture

import (
	"github.com/pkg/errors"
)

// Set maps wall material ids to textures and carries the floor and ceiling.
// Fallback is drawn for rays that leave the map and for ids without a
// texture of their own.
type Set struct {
	walls    map[int]*Texture
	floor    *Texture
	ceiling  *Texture
	fallback *Texture
}

// NewSet validates the floor and ceiling (they are sampled with a bitmask
// wrap, so both must be power-of-two sized) and records the fallback.
func NewSet(floor, ceiling, fallback *Texture) (*Set, error) {
	if floor == nil || ceiling == nil || fallback == nil {
		return nil, errors.New("texture: floor, ceiling and fallback are required")
	}
	if !floor.PowerOfTwo() {
		return nil, errors.Wrapf(ErrNotPowerOfTwo, "floor %dx%d", floor.W, floor.H)
	}
	if !ceiling.PowerOfTwo() {
		return nil, errors.Wrapf(ErrNotPowerOfTwo, "ceiling %dx%d", ceiling.W, ceiling.H)
	}
	return &Set{
		walls:    make(map[int]*Texture),
		floor:    floor,
		ceiling:  ceiling,
		fallback: fallback,
	}, nil
}

// SetWall assigns the texture for a material id. It must be called before
// the first frame; a Set is read-only once rendering starts.
func (s *Set) SetWall(id int, t *Texture) error {
	if id <= 0 {
		return errors.Errorf("texture: wall id %d must be positive", id)
	}
	if t == nil {
		return errors.Errorf("texture: nil texture for wall %d", id)
	}
	s.walls[id] = t
	return nil
}

// Wall returns the texture for a material id, or the fallback.
func (s *Set) Wall(id int) *Texture {
	if t, ok := s.walls[id]; ok {
		return t
	}
	return s.fallback
}

func (s *Set) Floor() *Texture    { return s.floor }
func (s *Set) Ceiling() *Texture  { return s.ceiling }
func (s *Set) Fallback() *Texture { return s.fallback }
