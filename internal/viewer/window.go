// Package viewer is the interactive tree previewer behind cmd/treeview.
package viewer

import (
	"fmt"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"
)

func init() {
	// OpenGL calls must be made from the main thread
	runtime.LockOSThread()
}

// WindowConfig holds window configuration. Samples is the multisample count;
// zero turns antialiasing off.
type WindowConfig struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
	Samples    int
}

type glAttribute struct {
	attr  sdl.GLattr
	value int
}

// glAttributes lists the context attributes for cfg. They must be set
// before the window exists. 4.1 core is the highest macOS offers.
func glAttributes(cfg WindowConfig) []glAttribute {
	attrs := []glAttribute{
		{sdl.GL_CONTEXT_MAJOR_VERSION, 4},
		{sdl.GL_CONTEXT_MINOR_VERSION, 1},
		{sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE},
		{sdl.GL_DOUBLEBUFFER, 1},
		{sdl.GL_DEPTH_SIZE, 24},
	}
	if cfg.Samples > 0 {
		attrs = append(attrs,
			glAttribute{sdl.GL_MULTISAMPLEBUFFERS, 1},
			glAttribute{sdl.GL_MULTISAMPLESAMPLES, cfg.Samples},
		)
	} else {
		attrs = append(attrs,
			glAttribute{sdl.GL_MULTISAMPLEBUFFERS, 0},
			glAttribute{sdl.GL_MULTISAMPLESAMPLES, 0},
		)
	}
	return attrs
}

func windowFlags(cfg WindowConfig) uint32 {
	flags := uint32(sdl.WINDOW_OPENGL | sdl.WINDOW_RESIZABLE | sdl.WINDOW_ALLOW_HIGHDPI)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}
	return flags
}

// Window wraps an SDL2 window and its OpenGL context.
type Window struct {
	config    WindowConfig
	sdlWindow *sdl.Window
	glContext sdl.GLContext
	log       *zap.Logger
}

// NewWindow creates a window with an OpenGL 4.1 core context. When the
// driver rejects the requested multisampling the window is opened without it.
func NewWindow(cfg WindowConfig, log *zap.Logger) (*Window, error) {
	if log == nil {
		log = zap.NewNop()
	}

	log.Info("initializing SDL2")
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	w, err := openWindow(cfg, log)
	if err != nil && cfg.Samples > 0 {
		log.Warn("multisampled window failed, retrying without",
			zap.Int("samples", cfg.Samples), zap.Error(err))
		cfg.Samples = 0
		w, err = openWindow(cfg, log)
	}
	if err != nil {
		sdl.Quit()
		return nil, err
	}

	interval := 0
	if cfg.VSync {
		interval = 1
	}
	if err := sdl.GLSetSwapInterval(interval); err != nil {
		log.Warn("failed to set swap interval", zap.Int("interval", interval), zap.Error(err))
	}

	dw, dh := w.Size()
	log.Info("window created",
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Int("drawable_width", dw),
		zap.Int("drawable_height", dh),
		zap.Int("samples", cfg.Samples),
		zap.Bool("fullscreen", cfg.Fullscreen),
		zap.Bool("vsync", cfg.VSync),
	)
	return w, nil
}

// openWindow creates the window and context for cfg. SDL stays initialized
// on failure.
func openWindow(cfg WindowConfig, log *zap.Logger) (*Window, error) {
	for _, a := range glAttributes(cfg) {
		if err := sdl.GLSetAttribute(a.attr, a.value); err != nil {
			log.Debug("GL attribute rejected", zap.Int("attr", int(a.attr)), zap.Int("value", a.value), zap.Error(err))
		}
	}

	win, err := sdl.CreateWindow(
		cfg.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width),
		int32(cfg.Height),
		windowFlags(cfg),
	)
	if err != nil {
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	ctx, err := win.GLCreateContext()
	if err != nil {
		win.Destroy()
		return nil, fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}
	return &Window{config: cfg, sdlWindow: win, glContext: ctx, log: log}, nil
}

// Close destroys the window and shuts SDL2 down.
func (w *Window) Close() {
	w.log.Info("closing window")

	if w.glContext != nil {
		sdl.GLDeleteContext(w.glContext)
	}
	if w.sdlWindow != nil {
		w.sdlWindow.Destroy()
	}
	sdl.Quit()
}

// SwapBuffers presents the frame.
func (w *Window) SwapBuffers() {
	w.sdlWindow.GLSwap()
}

// Size returns the drawable size in pixels, which differs from the window
// size on high-DPI displays.
func (w *Window) Size() (int, int) {
	width, height := w.sdlWindow.GLGetDrawableSize()
	return int(width), int(height)
}

// Samples returns the multisample count the window was opened with.
func (w *Window) Samples() int {
	return w.config.Samples
}

// ToggleFullscreen switches between windowed and desktop fullscreen and
// returns the new drawable size.
func (w *Window) ToggleFullscreen() (int, int) {
	w.config.Fullscreen = !w.config.Fullscreen
	var flags uint32
	if w.config.Fullscreen {
		flags = sdl.WINDOW_FULLSCREEN_DESKTOP
	}
	if err := w.sdlWindow.SetFullscreen(flags); err != nil {
		w.log.Warn("fullscreen switch failed", zap.Bool("fullscreen", w.config.Fullscreen), zap.Error(err))
		w.config.Fullscreen = !w.config.Fullscreen
	}
	return w.Size()
}

// SetTitle sets the window title.
func (w *Window) SetTitle(title string) {
	w.sdlWindow.SetTitle(title)
}
