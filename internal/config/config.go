// Package config holds the renderer's command-line settings.
package config

import (
	"flag"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"

	"raycaster/internal/frame"
	"raycaster/internal/geom"
)

// Color modes for the terminal presenter.
const (
	ColorAuto      = "auto"
	ColorTrueColor = "truecolor"
	Color256       = "256"
)

type Config struct {
	Level    string // built-in level name
	MapFile  string // map editor file, overrides Level
	Textures string // directory of PNG textures

	CellSize    float64
	TextureSize int     // edge of generated textures
	FOV         float64 // degrees
	Rays        int     // 0 casts one ray per pixel column
	Workers     int     // 0 uses every CPU
	Speed       float64 // cells per second
	TurnSpeed   float64 // degrees per second
	Radius      float64 // fraction of a cell
	Sensitivity float64
	Look        string

	Snapshot string // write one frame to this PNG and exit
	Width    int    // snapshot size
	Height   int
	Tick     time.Duration

	LogFile string
	HUD     bool
	Minimap bool
	Color   string
}

func Default() Config {
	return Config{
		Level:       "gdsc",
		CellSize:    64,
		TextureSize: 64,
		FOV:         60,
		Rays:        240,
		Workers:     0,
		Speed:       1.25,
		TurnSpeed:   120,
		Radius:      15.0 / 80,
		Sensitivity: 0.1,
		Look:        frame.LookFree.String(),
		Width:       640,
		Height:      640,
		Tick:        15 * time.Millisecond,
		Color:       ColorAuto,
	}
}

// RegisterFlags binds every field to a flag, using the current values as
// defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Level, "level", c.Level, "Built-in level: gdsc, maze")
	fs.StringVar(&c.MapFile, "map", c.MapFile, "Map editor file to load instead of a built-in level")
	fs.StringVar(&c.Textures, "textures", c.Textures, "Directory of PNG textures (floor.png, ceiling.png, fallback.png, <material>.png)")
	fs.Float64Var(&c.FOV, "fov", c.FOV, "Field of view in degrees")
	fs.IntVar(&c.Rays, "rays", c.Rays, "Rays per frame (0 = one per column)")
	fs.IntVar(&c.Workers, "workers", c.Workers, "Goroutines sharing the ray sweep (0 = one per CPU)")
	fs.Float64Var(&c.Speed, "speed", c.Speed, "Walking speed in cells per second")
	fs.StringVar(&c.Look, "look", c.Look, "Look mode: free, pointer")
	fs.StringVar(&c.Snapshot, "snapshot", c.Snapshot, "Render one frame to this PNG file and exit")
	fs.IntVar(&c.Width, "width", c.Width, "Snapshot width in pixels")
	fs.IntVar(&c.Height, "height", c.Height, "Snapshot height in pixels")
	fs.DurationVar(&c.Tick, "tick", c.Tick, "Frame interval")
	fs.StringVar(&c.LogFile, "log", c.LogFile, "Append log output to this file")
	fs.BoolVar(&c.HUD, "hud", c.HUD, "Show position, heading and frame rate")
	fs.BoolVar(&c.Minimap, "minimap", c.Minimap, "Show the overview map")
	fs.StringVar(&c.Color, "color", c.Color, "Color mode: auto, truecolor, 256")
}

// Validate rejects settings the renderer cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.MapFile == "" && c.Level == "":
		return errors.New("config: no level or map file")
	case !(c.CellSize > 0):
		return errors.Errorf("config: cell size %v must be positive", c.CellSize)
	case c.TextureSize < 8 || c.TextureSize&(c.TextureSize-1) != 0:
		return errors.Errorf("config: texture size %d must be a power of two of at least 8", c.TextureSize)
	case !(c.FOV > 0 && c.FOV < 180):
		return errors.Errorf("config: field of view %v outside (0, 180)", c.FOV)
	case c.Rays < 0:
		return errors.Errorf("config: negative ray count %d", c.Rays)
	case c.Workers < 0:
		return errors.Errorf("config: negative worker count %d", c.Workers)
	case c.Speed < 0 || c.TurnSpeed < 0:
		return errors.New("config: speeds must not be negative")
	case !(c.Radius >= 0 && c.Radius < 0.5):
		return errors.Errorf("config: radius %v must be in [0, 0.5) of a cell", c.Radius)
	case c.Snapshot != "" && (c.Width <= 0 || c.Height <= 0):
		return errors.Errorf("config: snapshot size %dx%d", c.Width, c.Height)
	case c.Tick <= 0:
		return errors.Errorf("config: tick %v must be positive", c.Tick)
	}
	if _, err := c.LookMode(); err != nil {
		return err
	}
	switch c.Color {
	case ColorAuto, ColorTrueColor, Color256:
	default:
		return errors.Errorf("config: unknown color mode %q", c.Color)
	}
	return nil
}

// LookMode parses the look flag.
func (c *Config) LookMode() (frame.LookMode, error) {
	switch strings.ToLower(c.Look) {
	case "free", "":
		return frame.LookFree, nil
	case "pointer", "mouse":
		return frame.LookPointer, nil
	}
	return frame.LookFree, errors.Errorf("config: unknown look mode %q", c.Look)
}

// WorkerCount is the number of sweep goroutines; zero means one per CPU.
func (c *Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// RayCount is the number of rays for a render target columns pixels wide.
// A zero ray count follows the width, so it changes on resize.
func (c *Config) RayCount(columns int) int {
	rays := c.Rays
	if rays == 0 {
		rays = columns
	}
	if rays < 1 {
		rays = 1
	}
	return rays
}

// Player converts the settings into world units for a player standing at
// pos.
func (c *Config) Player(pos geom.Vec2, heading float64, columns int) frame.Player {
	return frame.Player{
		Pos:       pos,
		Heading:   heading,
		Speed:     c.Speed * c.CellSize,
		TurnSpeed: geom.Radians(c.TurnSpeed),
		FOV:       geom.Radians(c.FOV),
		Rays:      c.RayCount(columns),
		Radius:    c.Radius * c.CellSize,
	}
}
