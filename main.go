// Command raycaster walks a grid maze in the terminal, drawing textured
// walls, floor and ceiling with a column ray caster.
//
// Move with WASD or the arrow keys, turn with the arrows, Q/E or the mouse,
// Tab switches between free look and pointing on the overview map, M shows
// the map, Escape quits.
package main

import (
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"raycaster/internal/config"
	"raycaster/internal/frame"
	"raycaster/internal/level"
	"raycaster/internal/present"
	"raycaster/internal/texture"
)

func main() {
	cfg := config.Default()
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	logger, closeLog, err := openLog(cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(cfg, logger); err != nil {
		logger.Printf("exit: %v", err)
		fmt.Fprintf(os.Stderr, "%v\n", err)
		closeLog()
		os.Exit(1)
	}
}

func openLog(path string) (*log.Logger, func(), error) {
	if path == "" {
		return log.New(io.Discard, "", 0), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return log.New(f, "raycaster ", log.LstdFlags|log.Lmicroseconds), func() { f.Close() }, nil
}

func run(cfg config.Config, logger *log.Logger) error {
	lvl, err := loadLevel(cfg)
	if err != nil {
		return err
	}
	textures, err := loadTextures(cfg, lvl, logger)
	if err != nil {
		return err
	}
	look, err := cfg.LookMode()
	if err != nil {
		return err
	}
	logger.Printf("level %s: %dx%d cells, spawn (%.1f, %.1f)",
		lvl.Name, lvl.Grid.Width(), lvl.Grid.Height(), lvl.Spawn.X, lvl.Spawn.Y)

	if cfg.Snapshot != "" {
		return snapshot(cfg, lvl, textures, logger)
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("stdout is not a terminal (use -snapshot to render to a file)")
	}
	return play(cfg, lvl, textures, look, logger)
}

func loadLevel(cfg config.Config) (*level.Level, error) {
	if cfg.MapFile != "" {
		return level.Load(cfg.MapFile, cfg.CellSize)
	}
	return level.Builtin(cfg.Level, cfg.CellSize)
}

// loadTextures starts from generated textures and replaces each one that
// has an image file: floor.png, ceiling.png, fallback.png and <material>.png
// from the texture directory, then whatever the map file names.
func loadTextures(cfg config.Config, lvl *level.Level, logger *log.Logger) (*texture.Set, error) {
	var ids []int
	for _, m := range lvl.Grid.Materials() {
		ids = append(ids, int(m))
	}
	generated, err := texture.Default(cfg.TextureSize, ids)
	if err != nil {
		return nil, err
	}
	floor, ceiling, fallback := generated.Floor(), generated.Ceiling(), generated.Fallback()
	walls := make(map[int]*texture.Texture, len(ids))
	for _, id := range ids {
		walls[id] = generated.Wall(id)
	}

	if dir := cfg.Textures; dir != "" {
		replace := func(name string, dst **texture.Texture) error {
			t, err := texture.Load(filepath.Join(dir, name))
			switch {
			case errors.Is(err, fs.ErrNotExist):
				return nil
			case err != nil:
				return err
			}
			*dst = t
			return nil
		}
		for name, dst := range map[string]**texture.Texture{
			"floor.png":    &floor,
			"ceiling.png":  &ceiling,
			"fallback.png": &fallback,
		} {
			if err := replace(name, dst); err != nil {
				return nil, err
			}
		}
		for _, id := range ids {
			t := walls[id]
			if err := replace(strconv.Itoa(id)+".png", &t); err != nil {
				return nil, err
			}
			walls[id] = t
		}
	}

	// a broken map texture only costs that wall its image
	for m, path := range lvl.Textures {
		t, err := texture.Load(path)
		if err != nil {
			logger.Printf("texture for material %d: %v (using generated)", m, err)
			continue
		}
		walls[int(m)] = t
	}

	set, err := texture.NewSet(floor, ceiling, fallback)
	if err != nil {
		return nil, err
	}
	for id, t := range walls {
		if err := set.SetWall(id, t); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func snapshot(cfg config.Config, lvl *level.Level, ts *texture.Set, logger *log.Logger) error {
	view, panel := present.Layout(cfg.Width, cfg.Height, cfg.Minimap)
	d, err := frame.New(lvl.Grid, ts, cfg.Player(lvl.Spawn, lvl.Heading, cfg.Width), frame.Options{
		View:    view,
		Panel:   panel,
		Workers: cfg.WorkerCount(),
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	if err := frame.Run(d, present.NewSnapshot(cfg.Snapshot, cfg.Width, cfg.Height)); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", cfg.Snapshot)
	return nil
}

func play(cfg config.Config, lvl *level.Level, ts *texture.Set, look frame.LookMode, logger *log.Logger) (err error) {
	var (
		d       *frame.Driver
		tty     *present.Terminal
		minimap = cfg.Minimap
	)

	// Restore the terminal before reporting a crash, or the report is lost
	// in raw mode.
	defer func() {
		if r := recover(); r != nil {
			if tty != nil {
				tty.Close()
			}
			logger.Printf("crash: %v\n%s", r, debug.Stack())
			fmt.Fprintf(os.Stderr, "\nraycaster crashed: %v\nStack Trace:\n%s\n", r, debug.Stack())
			os.Exit(1)
		}
	}()

	relayout := func(w, h int) {
		if d == nil {
			return
		}
		view, panel := present.Layout(w, h, minimap)
		d.SetLayout(view, panel)
		d.Player.Rays = cfg.RayCount(int(view.W))
	}
	opts := present.TerminalOptions{
		Tick:       cfg.Tick,
		Palette256: cfg.Color == config.Color256,
		Look:       look,
		OnResize:   relayout,
		OnToggleMap: func() {
			minimap = !minimap
			relayout(tty.Size())
		},
		Logger: logger,
	}
	if cfg.HUD {
		// position in cells
		opts.Status = func(fps float64) string {
			if d == nil {
				return ""
			}
			p, cs := d.Player, lvl.Grid.CellSize()
			return fmt.Sprintf("X=%3.2f, Y=%3.2f, A=%3.2f, FPS=%3.2f", p.Pos.X/cs, p.Pos.Y/cs, p.Heading, fps)
		}
	}
	tty, err = present.NewTerminal(nil, opts)
	if err != nil {
		return err
	}

	w, h := tty.Size()
	view, panel := present.Layout(w, h, minimap)
	d, err = frame.New(lvl.Grid, ts, cfg.Player(lvl.Spawn, lvl.Heading, int(view.W)), frame.Options{
		View:        view,
		Panel:       panel,
		Workers:     cfg.WorkerCount(),
		Sensitivity: cfg.Sensitivity,
		Logger:      logger,
	})
	if err != nil {
		tty.Close()
		return err
	}
	return frame.Run(d, tty)
}

