package present

import (
	"image"
	"image/color"
	"io"
	"log"
	"sync"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/pkg/errors"

	"raycaster/internal/frame"
	"raycaster/internal/project"
)

const (
	// halfBlock draws the top pixel of a cell in the foreground color and
	// the bottom pixel in the background color.
	halfBlock = '▀'

	defaultHold         = 200 * time.Millisecond
	defaultPointerScale = 8
)

var hudStyle = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)

type TerminalOptions struct {
	Tick time.Duration

	// Hold is how long a key counts as down after its last press event.
	// Terminals report no key releases, only presses and auto-repeat.
	Hold time.Duration

	// PointerScale converts a one-column mouse move to pointer units.
	PointerScale float64

	// Palette256 maps every color to the xterm palette.
	Palette256 bool
	Look       frame.LookMode

	// Status returns the HUD line; nil hides it.
	Status func(fps float64) string

	// OnResize receives the new render-target size in pixels.
	OnResize    func(w, h int)
	OnToggleMap func()
	Logger      *log.Logger
}

// Terminal is a tcell platform. Every cell shows two pixels stacked
// vertically, so the render target is twice as tall as the screen.
type Terminal struct {
	screen tcell.Screen
	opts   TerminalOptions
	now    func() time.Time

	events    chan tcell.Event
	quit      chan struct{}
	closeOnce sync.Once
	ticker    *time.Ticker

	last time.Time
	fps  float64

	held     map[frame.Key]time.Time
	mode     frame.LookMode
	mouseX   int
	mouseY   int
	hasMouse bool
	dx, dy   float64
	closed   bool

	buf     *image.RGBA
	palette []tcell.Color
	cache   map[color.RGBA]tcell.Color
}

// NewTerminal takes over screen, or a new tcell screen when it is nil.
func NewTerminal(screen tcell.Screen, opts TerminalOptions) (*Terminal, error) {
	if screen == nil {
		var err error
		if screen, err = tcell.NewScreen(); err != nil {
			return nil, errors.Wrap(err, "present: open terminal")
		}
	}
	if err := screen.Init(); err != nil {
		return nil, errors.Wrap(err, "present: init terminal")
	}
	if opts.Tick <= 0 {
		opts.Tick = 15 * time.Millisecond
	}
	if opts.Hold <= 0 {
		opts.Hold = defaultHold
	}
	if opts.PointerScale == 0 {
		opts.PointerScale = defaultPointerScale
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}

	screen.HideCursor()
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.SetStyle(hudStyle)
	screen.Clear()

	t := &Terminal{
		screen: screen,
		opts:   opts,
		now:    time.Now,
		events: make(chan tcell.Event, 64),
		quit:   make(chan struct{}),
		ticker: time.NewTicker(opts.Tick),
		held:   make(map[frame.Key]time.Time),
		mode:   opts.Look,
		cache:  make(map[color.RGBA]tcell.Color),
	}
	if opts.Palette256 {
		for i := 0; i < 256; i++ {
			t.palette = append(t.palette, tcell.PaletteColor(i))
		}
	}
	t.last = t.now()
	t.resize()
	go t.pump()
	return t, nil
}

// Size is the render-target size in pixels.
func (t *Terminal) Size() (w, h int) {
	b := t.buf.Bounds()
	return b.Dx(), b.Dy()
}

func (t *Terminal) pump() {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case t.events <- ev:
		case <-t.quit:
			return
		}
	}
}

func (t *Terminal) Elapsed() float64 {
	now := t.now()
	dt := now.Sub(t.last).Seconds()
	t.last = now
	if dt > 0 {
		t.fps = 1 / dt
	}
	return dt
}

// Input applies the events that arrived since the previous frame.
func (t *Terminal) Input() frame.Input {
	t.dx, t.dy = 0, 0
	for {
		select {
		case ev := <-t.events:
			t.handle(ev)
		default:
			return t
		}
	}
}

func (t *Terminal) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		t.key(ev)
	case *tcell.EventMouse:
		x, y := ev.Position()
		if t.hasMouse {
			t.dx += float64(x-t.mouseX) * t.opts.PointerScale
			t.dy += float64(y-t.mouseY) * t.opts.PointerScale * 2
		}
		t.mouseX, t.mouseY, t.hasMouse = x, y, true
	case *tcell.EventResize:
		t.screen.Sync()
		t.resize()
	}
}

func (t *Terminal) key(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		t.closed = true
	case tcell.KeyUp:
		t.press(frame.KeyForward)
	case tcell.KeyDown:
		t.press(frame.KeyBack)
	case tcell.KeyLeft:
		t.press(frame.KeyTurnLeft)
	case tcell.KeyRight:
		t.press(frame.KeyTurnRight)
	case tcell.KeyTab:
		if t.mode == frame.LookFree {
			t.mode = frame.LookPointer
		} else {
			t.mode = frame.LookFree
		}
		t.opts.Logger.Printf("look mode %v", t.mode)
	case tcell.KeyRune:
		switch unicode.ToLower(ev.Rune()) {
		case 'w':
			t.press(frame.KeyForward)
		case 's':
			t.press(frame.KeyBack)
		case 'a':
			t.press(frame.KeyStrafeLeft)
		case 'd':
			t.press(frame.KeyStrafeRight)
		case 'q':
			t.press(frame.KeyTurnLeft)
		case 'e':
			t.press(frame.KeyTurnRight)
		case 'm':
			if t.opts.OnToggleMap != nil {
				t.opts.OnToggleMap()
			}
		}
	}
}

func (t *Terminal) press(k frame.Key) { t.held[k] = t.now() }

func (t *Terminal) KeyDown(k frame.Key) bool {
	at, ok := t.held[k]
	return ok && t.now().Sub(at) < t.opts.Hold
}

func (t *Terminal) PointerDelta() (dx, dy float64) { return t.dx, t.dy }

// Pointer is the center of the upper pixel of the cell under the mouse.
func (t *Terminal) Pointer() (x, y float64, ok bool) {
	return float64(t.mouseX) + 0.5, float64(2*t.mouseY) + 0.5, t.hasMouse
}

func (t *Terminal) LookMode() frame.LookMode { return t.mode }

func (t *Terminal) Closed() bool { return t.closed }

// resize matches the pixel buffer to the screen.
func (t *Terminal) resize() {
	w, h := t.screen.Size()
	if t.buf != nil {
		if b := t.buf.Bounds(); b.Dx() == w && b.Dy() == 2*h {
			return
		}
	}
	t.buf = image.NewRGBA(image.Rect(0, 0, w, 2*h))
	t.opts.Logger.Printf("terminal resized to %dx%d cells", w, h)
	if t.opts.OnResize != nil {
		t.opts.OnResize(w, 2*h)
	}
}

// Present draws the frame, then waits for the next tick.
func (t *Terminal) Present(rects []project.Rect) error {
	if t.closed {
		return nil
	}
	t.resize()

	fill(t.buf, black)
	Rasterize(t.buf, rects)
	w, h := t.screen.Size()
	for cy := 0; cy < h; cy++ {
		for cx := 0; cx < w; cx++ {
			top, bottom := t.buf.RGBAAt(cx, 2*cy), t.buf.RGBAAt(cx, 2*cy+1)
			style := tcell.StyleDefault.Foreground(t.color(top)).Background(t.color(bottom))
			t.screen.SetContent(cx, cy, halfBlock, nil, style)
		}
	}
	if t.opts.Status != nil {
		t.text(0, 0, t.opts.Status(t.fps))
	}
	t.screen.Show()

	select {
	case <-t.ticker.C:
	case <-t.quit:
	}
	return nil
}

// text writes s on row y, stopping at the right edge.
func (t *Terminal) text(x, y int, s string) {
	w, _ := t.screen.Size()
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if x+rw > w {
			return
		}
		t.screen.SetContent(x, y, r, nil, hudStyle)
		x += rw
	}
}

func (t *Terminal) color(c color.RGBA) tcell.Color {
	rgb := tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	if t.palette == nil {
		return rgb
	}
	if pc, ok := t.cache[c]; ok {
		return pc
	}
	pc := tcell.FindColor(rgb, t.palette)
	t.cache[c] = pc
	return pc
}

// Close restores the terminal. It is safe to call more than once.
func (t *Terminal) Close() error {
	t.closeOnce.Do(func() {
		t.closed = true
		close(t.quit)
		t.ticker.Stop()
		t.screen.Fini()
	})
	return nil
}
