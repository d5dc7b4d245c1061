package viewer

import (
	gomath "math"
	"testing"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/arbor/pkg/math"
	"github.com/Faultbox/arbor/pkg/mesh"
	"github.com/Faultbox/arbor/pkg/tree"
)

func TestCommandForKey(t *testing.T) {
	tests := []struct {
		key  sdl.Scancode
		want Command
	}{
		{sdl.SCANCODE_N, CmdNewSeed},
		{sdl.SCANCODE_M, CmdToggleMode},
		{sdl.SCANCODE_L, CmdToggleWireframe},
		{sdl.SCANCODE_F11, CmdToggleFullscreen},
		{sdl.SCANCODE_ESCAPE, CmdQuit},
		{sdl.SCANCODE_1, CmdSpecies1},
		{sdl.SCANCODE_6, CmdSpecies1 + 5},
		{sdl.SCANCODE_Z, CmdNone},
	}
	for _, tt := range tests {
		if got := CommandForKey(tt.key); got != tt.want {
			t.Errorf("CommandForKey(%v) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestGLAttributes(t *testing.T) {
	value := func(attrs []glAttribute, attr sdl.GLattr) (int, bool) {
		for _, a := range attrs {
			if a.attr == attr {
				return a.value, true
			}
		}
		return 0, false
	}

	tests := []struct {
		samples     int
		wantBuffers int
		wantSamples int
	}{
		{0, 0, 0},
		{4, 1, 4},
		{8, 1, 8},
	}
	for _, tt := range tests {
		attrs := glAttributes(WindowConfig{Samples: tt.samples})
		if v, _ := value(attrs, sdl.GL_CONTEXT_MAJOR_VERSION); v != 4 {
			t.Errorf("samples %d: major version %d, want 4", tt.samples, v)
		}
		if v, _ := value(attrs, sdl.GL_CONTEXT_MINOR_VERSION); v != 1 {
			t.Errorf("samples %d: minor version %d, want 1", tt.samples, v)
		}
		if v, ok := value(attrs, sdl.GL_MULTISAMPLEBUFFERS); !ok || v != tt.wantBuffers {
			t.Errorf("samples %d: multisample buffers %d, want %d", tt.samples, v, tt.wantBuffers)
		}
		if v, ok := value(attrs, sdl.GL_MULTISAMPLESAMPLES); !ok || v != tt.wantSamples {
			t.Errorf("samples %d: multisample samples %d, want %d", tt.samples, v, tt.wantSamples)
		}
	}
}

func TestWindowFlags(t *testing.T) {
	windowed := windowFlags(WindowConfig{})
	if windowed&sdl.WINDOW_OPENGL == 0 || windowed&sdl.WINDOW_RESIZABLE == 0 {
		t.Errorf("windowed flags %#x missing OpenGL or resizable", windowed)
	}
	if windowed&sdl.WINDOW_FULLSCREEN_DESKTOP == sdl.WINDOW_FULLSCREEN_DESKTOP {
		t.Errorf("windowed flags %#x request fullscreen", windowed)
	}
	full := windowFlags(WindowConfig{Fullscreen: true})
	if full&sdl.WINDOW_FULLSCREEN_DESKTOP != sdl.WINDOW_FULLSCREEN_DESKTOP {
		t.Errorf("fullscreen flags %#x", full)
	}
}

func TestStateApply(t *testing.T) {
	s := State{Species: []string{"broadleaf", "pine", "willow"}, Seed: 42}

	if !s.Apply(CmdNewSeed) || s.Seed != 43 {
		t.Errorf("new seed: %+v", s)
	}
	if !s.Apply(CmdToggleMode) || s.Mode != tree.Hierarchy {
		t.Errorf("toggle mode: %+v", s)
	}
	if !s.Apply(CmdToggleMode) || s.Mode != tree.Hybrid {
		t.Errorf("toggle mode back: %+v", s)
	}
	if s.Apply(CmdToggleWireframe) || !s.Wireframe {
		t.Errorf("wireframe should redraw only: %+v", s)
	}
	if s.Apply(CmdToggleFullscreen) {
		t.Error("fullscreen should not regenerate")
	}
	if !s.Apply(CmdSpecies1+1) || s.SpeciesName() != "pine" {
		t.Errorf("select species: %+v", s)
	}
	if s.Apply(CmdSpecies1 + 1) {
		t.Error("reselecting the same species should not regenerate")
	}
	if s.Apply(CmdSpecies1+5) || s.Index != 1 {
		t.Errorf("out of range species changed state: %+v", s)
	}
	if want := "treeview - pine (hybrid, seed 43)"; s.Title() != want {
		t.Errorf("Title = %q, want %q", s.Title(), want)
	}
}

func TestOrbitCameraClamps(t *testing.T) {
	c := NewOrbitCamera()

	c.HandleDrag(0, 1e6)
	if c.RotationX != c.MaxPitch {
		t.Errorf("pitch = %v, want %v", c.RotationX, c.MaxPitch)
	}
	c.HandleZoom(100)
	if c.Distance != c.MinDistance {
		t.Errorf("distance = %v, want %v", c.Distance, c.MinDistance)
	}
	c.HandleZoom(-1e6)
	if c.Distance != c.MaxDistance {
		t.Errorf("distance = %v, want %v", c.Distance, c.MaxDistance)
	}
}

func TestOrbitCameraFitToBounds(t *testing.T) {
	c := NewOrbitCamera()
	c.RotationY = 1
	c.FitToBounds(mesh.Bounds{Min: [3]float32{-2, 0, -2}, Max: [3]float32{2, 10, 2}})

	if c.Center != (math.Vec3{Y: 5}) {
		t.Errorf("center = %+v", c.Center)
	}
	if gomath.Abs(float64(c.Distance-14)) > 1e-4 {
		t.Errorf("distance = %v, want 14", c.Distance)
	}
	if c.RotationY != 1 {
		t.Error("fit should keep yaw")
	}
	if d := c.Position().Distance(c.Center); gomath.Abs(float64(d-c.Distance)) > 1e-4 {
		t.Errorf("position is %v from center, want %v", d, c.Distance)
	}
}
