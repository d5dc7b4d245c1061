package viewer

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/arbor/internal/config"
	"github.com/Faultbox/arbor/pkg/species"
	"github.com/Faultbox/arbor/pkg/tree"
)

// App ties the window, input, camera and renderer together.
type App struct {
	cfg *config.Config
	reg *species.Registry
	log *zap.Logger

	window   *Window
	input    *Input
	camera   *OrbitCamera
	renderer *Renderer
	state    State

	dragging bool
}

// New opens the window and generates the configured tree.
func New(cfg *config.Config, reg *species.Registry, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	mode, err := tree.ParseMode(cfg.Generation.Mode)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:    cfg,
		reg:    reg,
		log:    log,
		input:  NewInput(),
		camera: NewOrbitCamera(),
		state: State{
			Species:   reg.Names(),
			Seed:      cfg.Generation.Seed,
			Mode:      mode,
			Wireframe: cfg.Viewer.Wireframe,
		},
	}
	for i, name := range a.state.Species {
		if p, ok := reg.Lookup(cfg.Generation.Species); ok && p.Name == name {
			a.state.Index = i
		}
	}

	a.window, err = NewWindow(WindowConfig{
		Title:      a.state.Title(),
		Width:      cfg.Viewer.Width,
		Height:     cfg.Viewer.Height,
		Fullscreen: cfg.Viewer.Fullscreen,
		VSync:      cfg.Viewer.VSync,
		Samples:    cfg.Viewer.Samples,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}

	w, h := a.window.Size()
	a.renderer, err = NewRenderer(w, h, a.window.Samples() > 0, cfg.Viewer.Background, log)
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("creating renderer: %w", err)
	}

	if err := a.regenerate(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// Run processes input and draws until the window closes.
func (a *App) Run() error {
	for {
		if a.input.Update() {
			return nil
		}
		for _, e := range a.input.Events() {
			quit, err := a.handle(e)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}
		a.renderer.Draw(a.camera, a.state.Wireframe)
		a.window.SwapBuffers()
	}
}

func (a *App) handle(e Event) (quit bool, err error) {
	switch e.Type {
	case EventWindowResize:
		// The event carries window points; the viewport needs pixels.
		a.renderer.Resize(a.window.Size())
	case EventKeyDown:
		cmd := CommandForKey(e.Key)
		switch cmd {
		case CmdQuit:
			return true, nil
		case CmdToggleFullscreen:
			a.renderer.Resize(a.window.ToggleFullscreen())
			return false, nil
		}
		if a.state.Apply(cmd) {
			return false, a.regenerate()
		}
	case EventMouseDown:
		a.dragging = e.Button == sdl.BUTTON_LEFT || a.dragging
	case EventMouseUp:
		if e.Button == sdl.BUTTON_LEFT {
			a.dragging = false
		}
	case EventMouseMove:
		if a.dragging {
			a.camera.HandleDrag(float32(e.DeltaX), float32(e.DeltaY))
		}
	case EventMouseWheel:
		a.camera.HandleZoom(e.Wheel)
	}
	return false, nil
}

// regenerate builds the tree for the current state and uploads it.
func (a *App) regenerate() error {
	profile := a.reg.Get(a.state.SpeciesName())
	opts := a.cfg.TreeOptions(profile, a.state.Seed, a.log.Named("tree"))
	opts.Mode = a.state.Mode
	opts.Debug = true

	res, err := tree.Generate(profile, opts)
	if err != nil {
		return fmt.Errorf("generating %s: %w", profile.Name, err)
	}

	a.renderer.SetTree(res)
	a.camera.FitToBounds(res.Branches.Bounds())
	a.window.SetTitle(a.state.Title())
	a.log.Info("tree generated",
		zap.String("species", profile.Name),
		zap.Int64("seed", a.state.Seed),
		zap.Stringer("mode", a.state.Mode),
	)
	return nil
}

// Close releases the renderer and window.
func (a *App) Close() {
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}
