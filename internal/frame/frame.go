// Package frame drives one frame at a time: input, movement with collision,
// the ray sweep, and handing the resulting rectangles to the presentation
// layer.
package frame

import (
	"io"
	"log"
	"math"

	"github.com/pkg/errors"

	"raycaster/internal/collide"
	"raycaster/internal/geom"
	"raycaster/internal/grid"
	"raycaster/internal/project"
	"raycaster/internal/raycast"
	"raycaster/internal/texture"
)

// maxStep caps the simulated time of a single frame so a stall (a resize,
// a suspended terminal) does not teleport the player through a wall.
const maxStep = 0.25

// Key is a logical control, independent of the physical binding.
type Key int

const (
	KeyForward Key = iota
	KeyBack
	KeyStrafeLeft
	KeyStrafeRight
	KeyTurnLeft
	KeyTurnRight
)

// LookMode selects how the heading is steered.
type LookMode int

const (
	// LookFree turns with pointer motion and turn keys; movement is
	// relative to the heading.
	LookFree LookMode = iota
	// LookPointer faces the pointer on the overview map; movement keys
	// move along the map axes.
	LookPointer
)

func (m LookMode) String() string {
	if m == LookPointer {
		return "pointer"
	}
	return "free"
}

// Input is the per-frame view of the controls.
type Input interface {
	KeyDown(k Key) bool
	// PointerDelta is the pointer motion since the previous frame.
	PointerDelta() (dx, dy float64)
	// Pointer is the pointer position in render-target pixels.
	Pointer() (x, y float64, ok bool)
	LookMode() LookMode
}

// Platform is the presentation side of the loop.
type Platform interface {
	// Elapsed returns the seconds since the previous call.
	Elapsed() float64
	Input() Input
	// Present consumes the frame's rectangles before the next Advance.
	Present(rects []project.Rect) error
	Closed() bool
	Close() error
}

// Player is the viewer.
type Player struct {
	Pos       geom.Vec2
	Heading   float64 // radians, (-π, π]
	Speed     float64 // world units per second
	TurnSpeed float64 // radians per second, for the turn keys
	FOV       float64 // radians
	Rays      int
	Radius    float64 // collision radius
}

// Options configures a Driver beyond the player itself.
type Options struct {
	// View is the 3-D viewport in render-target pixels.
	View geom.Rect

	// Panel is where the overview map is drawn; empty disables it.
	Panel geom.Rect

	// Workers splits the sweep into that many column bands.
	Workers int

	// Sensitivity scales free-look pointer motion.
	Sensitivity float64
	Logger      *log.Logger
}

// Driver owns the player and the per-frame scratch buffers. It is not safe
// for concurrent use; the only concurrency is inside Sweep.
type Driver struct {
	Player Player

	grid        *grid.Grid
	textures    *texture.Set
	caster      *raycast.Caster
	projector   *project.Projector
	view        geom.Rect
	panel       geom.Rect
	workers     int
	sensitivity float64
	log         *log.Logger

	columns []project.Column
	bands   [][]project.Rect
	rects   []project.Rect
}

// New validates the player and builds a driver for one grid.
func New(g *grid.Grid, ts *texture.Set, p Player, opts Options) (*Driver, error) {
	switch {
	case g == nil || ts == nil:
		return nil, errors.New("frame: grid and textures are required")
	case p.Rays < 1:
		return nil, errors.Errorf("frame: ray count %d must be at least 1", p.Rays)
	case !(p.FOV > 0 && p.FOV < math.Pi):
		return nil, errors.Errorf("frame: field of view %.3f rad outside (0, π)", p.FOV)
	case p.Radius < 0 || p.Speed < 0:
		return nil, errors.New("frame: radius and speed must not be negative")
	case collide.Collides(g, p.Pos, p.Radius):
		return nil, errors.Errorf("frame: player at (%.1f, %.1f) starts inside a wall", p.Pos.X, p.Pos.Y)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	p.Heading = geom.NormalizeAngle(p.Heading)

	d := &Driver{
		Player:      p,
		grid:        g,
		textures:    ts,
		caster:      raycast.New(g),
		projector:   project.New(g, ts),
		workers:     opts.Workers,
		sensitivity: opts.Sensitivity,
		log:         opts.Logger,
	}
	d.SetLayout(opts.View, opts.Panel)
	return d, nil
}

// SetLayout changes the render target areas, e.g. after a resize.
func (d *Driver) SetLayout(view, panel geom.Rect) {
	d.view, d.panel = view, panel
}

func (d *Driver) View() geom.Rect  { return d.view }
func (d *Driver) Panel() geom.Rect { return d.panel }

// Columns returns the columns of the last sweep, left to right.
func (d *Driver) Columns() []project.Column { return d.columns }

// Advance runs one frame and returns its rectangles. The slice is reused by
// the next call.
func (d *Driver) Advance(dt float64, in Input) []project.Rect {
	if !(dt > 0) || math.IsInf(dt, 0) {
		dt = 0
	} else if dt > maxStep {
		dt = maxStep
	}
	if in != nil {
		d.steer(dt, in)
	}

	d.rects = d.Sweep(d.rects[:0])
	if !d.panel.Empty() {
		d.rects = d.Overview(d.rects)
	}
	return d.rects
}

// steer applies one frame of input: turn, then move, rejecting any move
// whose destination collides.
func (d *Driver) steer(dt float64, in Input) {
	p := &d.Player
	step := p.Speed * dt
	var move geom.Vec2

	switch in.LookMode() {
	case LookPointer:
		if in.KeyDown(KeyForward) {
			move.Y -= step
		}
		if in.KeyDown(KeyBack) {
			move.Y += step
		}
		if in.KeyDown(KeyStrafeLeft) {
			move.X -= step
		}
		if in.KeyDown(KeyStrafeRight) {
			move.X += step
		}
		if x, y, ok := in.Pointer(); ok {
			if target, ok := d.PanelToWorld(x, y); ok {
				if to := target.Sub(p.Pos); to.LenSq() > 0 {
					p.Heading = to.Angle()
				}
			}
		}
	default:
		dx, _ := in.PointerDelta()
		p.Heading += dx * dt * d.sensitivity
		if in.KeyDown(KeyTurnLeft) {
			p.Heading -= p.TurnSpeed * dt
		}
		if in.KeyDown(KeyTurnRight) {
			p.Heading += p.TurnSpeed * dt
		}

		forward := geom.FromAngle(p.Heading).Scale(step)
		right := forward.Rotate(math.Pi / 2)
		if in.KeyDown(KeyForward) {
			move = move.Add(forward)
		}
		if in.KeyDown(KeyBack) {
			move = move.Sub(forward)
		}
		if in.KeyDown(KeyStrafeLeft) {
			move = move.Sub(right)
		}
		if in.KeyDown(KeyStrafeRight) {
			move = move.Add(right)
		}
	}
	p.Heading = geom.NormalizeAngle(p.Heading)

	// diagonal input is no faster than straight input
	if l := move.Len(); l > step && l > 0 {
		move = move.Scale(step / l)
	}
	if move.LenSq() > 0 {
		p.Pos, _ = collide.Move(d.grid, p.Pos, move, p.Radius)
	}
}

// RayAngle is the direction of ray i of n, centered within its strip so
// the sweep is symmetric about the heading.
func RayAngle(heading, fov float64, i, n int) float64 {
	step := fov / float64(n)
	return heading - fov/2 + (float64(i)+0.5)*step
}
