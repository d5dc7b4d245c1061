package hierarchy

import (
	"errors"
	gomath "math"
	"math/rand"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/arbor/pkg/math"
	"github.com/Faultbox/arbor/pkg/skeleton"
	"github.com/Faultbox/arbor/pkg/species"
)

const eps = 1e-4

func near(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < eps
}

func build(cfg Config, seed int64) (*Node, Stats) {
	return Build(cfg, rand.New(rand.NewSource(seed)), nil)
}

func TestBuildCounts(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*Config)
		wantNodes  int
		wantLeaves int
		wantDepth  int
	}{
		{"default", func(*Config) {}, 1 + 5 + 15 + 30, 30, 3},
		{"trunk only", func(c *Config) { c.MaxLevels = 0 }, 1, 1, 0},
		{"one level", func(c *Config) { c.MaxLevels = 1 }, 6, 5, 1},
		{"short arrays fall back", func(c *Config) { c.Children = []int{2} }, 1 + 2 + 4 + 8, 8, 3},
		{"childless level", func(c *Config) { c.Children = []int{4, 0} }, 5, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			root, stats := build(cfg, 1)
			if got := root.Count(); got != tt.wantNodes {
				t.Errorf("Count() = %d, want %d", got, tt.wantNodes)
			}
			if stats.Nodes != tt.wantNodes {
				t.Errorf("stats.Nodes = %d, want %d", stats.Nodes, tt.wantNodes)
			}
			if len(stats.Leaves) != tt.wantLeaves {
				t.Errorf("got %d leaves, want %d", len(stats.Leaves), tt.wantLeaves)
			}
			if got := root.Depth(); got != tt.wantDepth {
				t.Errorf("Depth() = %d, want %d", got, tt.wantDepth)
			}
			if root.Depth() > cfg.MaxLevels {
				t.Errorf("depth %d exceeds MaxLevels %d", root.Depth(), cfg.MaxLevels)
			}
		})
	}
}

func TestTrunkOnlyLeafAtTip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxLevels = 0
	cfg.Origin = math.Vec3{X: 2, Z: -1}
	_, stats := build(cfg, 1)
	want := math.Vec3{X: 2, Y: 6, Z: -1}
	if got := stats.Leaves[0].Position; got.Distance(want) > eps {
		t.Errorf("leaf at %v, want %v", got, want)
	}
	if stats.Leaves[0].Direction != math.Up {
		t.Errorf("leaf direction = %v, want up", stats.Leaves[0].Direction)
	}
}

func TestChildPlacement(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxLevels = 1
	root, _ := build(cfg, 7)

	if len(root.Children) != 5 {
		t.Fatalf("got %d children, want 5", len(root.Children))
	}
	wantOrigin := math.Vec3{Y: 6 * 0.4}
	slot := float32(gomath.Cos(2 * gomath.Pi / 5))
	for i, c := range root.Children {
		if c.Origin.Distance(wantOrigin) > eps {
			t.Errorf("child %d origin %v, want %v", i, c.Origin, wantOrigin)
		}
		if !near(c.Direction.Y, float32(gomath.Cos(0.9))) {
			t.Errorf("child %d tilt: dir.Y = %v, want cos(0.9)", i, c.Direction.Y)
		}
		if !near(c.Direction.Length(), 1) {
			t.Errorf("child %d direction not unit: %v", i, c.Direction)
		}
		if c.Level != 1 || c.Length != 3 || c.Radius != 0.15 {
			t.Errorf("child %d level/length/radius = %d/%v/%v", i, c.Level, c.Length, c.Radius)
		}
		if i > 0 {
			a := root.Children[i-1].Direction.XZ().Normalize()
			b := c.Direction.XZ().Normalize()
			if !near(a.Dot(b), slot) {
				t.Errorf("children %d/%d not evenly spaced: dot %v, want %v", i-1, i, a.Dot(b), slot)
			}
		}
	}
}

func TestStagger(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxLevels = 1
	cfg.Stagger = true
	root, _ := build(cfg, 7)
	for i := 1; i < len(root.Children); i++ {
		if root.Children[i].Origin.Y <= root.Children[i-1].Origin.Y {
			t.Errorf("child %d not above child %d", i, i-1)
		}
		if root.Children[i].Offset < 0.4 || root.Children[i].Offset >= 1 {
			t.Errorf("child %d offset %v outside [0.4, 1)", i, root.Children[i].Offset)
		}
	}
}

func TestJitterScalesLength(t *testing.T) {
	for _, jitter := range []float32{0, 0.3} {
		cfg := DefaultConfig()
		cfg.Jitter = jitter
		root, _ := build(cfg, 11)

		varied := false
		root.Walk(func(n *Node) {
			if n.Level == 0 {
				return
			}
			ratio := n.Length / cfg.length(n.Level)
			if ratio < 1-jitter-1e-5 || ratio > 1+jitter+1e-5 {
				t.Errorf("jitter %v: level %d length ratio %v", jitter, n.Level, ratio)
			}
			if gomath.Abs(float64(ratio-1)) > 1e-5 {
				varied = true
			}
		})
		if varied != (jitter > 0) {
			t.Errorf("jitter %v: lengths varied = %v", jitter, varied)
		}
	}
}

func TestDeterminism(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Jitter = 0.2
	a, _ := build(cfg, 42)
	b, _ := build(cfg, 42)
	c, _ := build(cfg, 43)

	sa, sb, sc := a.SkeletonSegments(), b.SkeletonSegments(), c.SkeletonSegments()
	if len(sa) != len(sb) {
		t.Fatalf("same seed gave %d and %d segments", len(sa), len(sb))
	}
	for i := range sa {
		if sa[i] != sb[i] {
			t.Fatalf("segment %d differs for the same seed", i)
		}
	}
	same := len(sa) == len(sc)
	for i := 0; same && i < len(sa); i++ {
		same = sa[i] == sc[i]
	}
	if same {
		t.Error("different seeds produced identical trees")
	}
}

func TestInvalidDirectionSkipped(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	cfg := DefaultConfig()
	cfg.Angle = []float32{0, float32(gomath.NaN())}

	root, stats := Build(cfg, rand.New(rand.NewSource(1)), zap.New(core))
	if stats.Skipped != 5 {
		t.Errorf("Skipped = %d, want 5", stats.Skipped)
	}
	if root.Count() != 1 || len(root.Children) != 0 {
		t.Errorf("expected bare trunk, got %d nodes", root.Count())
	}
	if logs.Len() != 5 {
		t.Errorf("got %d warnings, want 5", logs.Len())
	}
	if entry := logs.All()[0]; entry.ContextMap()["reason"] != "invalid direction" {
		t.Errorf("unexpected log fields %v", entry.ContextMap())
	}

	paths, skipped := root.Paths()
	if len(paths) != 1 || skipped != 0 {
		t.Errorf("got %d paths, %d skipped", len(paths), skipped)
	}
}

func TestPaths(t *testing.T) {
	cfg := DefaultConfig()
	root, _ := build(cfg, 3)
	paths, skipped := root.Paths()
	if skipped != 0 {
		t.Errorf("skipped %d paths", skipped)
	}
	if len(paths) != root.Count() {
		t.Fatalf("got %d paths for %d nodes", len(paths), root.Count())
	}

	trunk := paths[0]
	if trunk.Len() != 7 {
		t.Errorf("trunk has %d points, want sections+1 = 7", trunk.Len())
	}
	if trunk.Points[0] != cfg.Origin {
		t.Errorf("trunk starts at %v", trunk.Points[0])
	}
	for _, p := range paths {
		if !p.Finite() {
			t.Fatal("non-finite path")
		}
		for i := 1; i < len(p.Radii); i++ {
			if p.Radii[i] > p.Radii[i-1] {
				t.Errorf("radius grows along path: %v", p.Radii)
				break
			}
		}
		if last := p.Radii[len(p.Radii)-1]; last < p.Radius*taperFloor-eps {
			t.Errorf("radius %v below floor", last)
		}
	}
}

func TestStraightPathEndsAtTip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TrunkCurve, cfg.BranchCurve = 0, 0
	root, _ := build(cfg, 5)
	root.Walk(func(n *Node) {
		p, ok := n.Path()
		if !ok {
			t.Fatalf("level %d path invalid", n.Level)
		}
		if end := p.Points[len(p.Points)-1]; end.Distance(n.Tip()) > 1e-3 {
			t.Errorf("level %d path ends at %v, tip %v", n.Level, end, n.Tip())
		}
	})
}

func TestSkeletonSegments(t *testing.T) {
	cfg := DefaultConfig()
	root, _ := build(cfg, 9)
	segs := root.SkeletonSegments()

	// The Segments field is ring resolution, not the flattened skeleton.
	if root.Segments != cfg.Segments[0] {
		t.Errorf("root ring segments = %d, want %d", root.Segments, cfg.Segments[0])
	}

	want := 0
	root.Walk(func(n *Node) { want += n.Sections })
	if len(segs) != want {
		t.Errorf("got %d segments, want %d", len(segs), want)
	}
	for i, s := range segs {
		if !s.Valid() || s.Kind != skeleton.KindSkeleton {
			t.Fatalf("segment %d invalid: %+v", i, s)
		}
		if s.Depth < 0 || s.Depth > cfg.MaxLevels {
			t.Errorf("segment %d depth %d", i, s.Depth)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"default", func(*Config) {}, nil},
		{"negative levels", func(c *Config) { c.MaxLevels = -1 }, ErrLevelsOutOfRange},
		{"too deep", func(c *Config) { c.MaxLevels = MaxLevels + 1 }, ErrLevelsOutOfRange},
		{"no lengths", func(c *Config) { c.Length = nil }, ErrMissingLevels},
		{"no children", func(c *Config) { c.Children = nil }, ErrMissingLevels},
		{"zero length", func(c *Config) { c.Length[2] = 0 }, ErrInvalidLength},
		{"negative children", func(c *Config) { c.Children[1] = -2 }, ErrInvalidChildren},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromProfile(t *testing.T) {
	for _, p := range species.Presets() {
		t.Run(p.Name, func(t *testing.T) {
			cfg := FromProfile(p)
			if err := cfg.Validate(); err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if cfg.MaxLevels != p.BranchLevels || cfg.Children[0] != p.NumBranches || cfg.Length[0] != p.TrunkHeight {
				t.Errorf("unexpected config %+v", cfg)
			}
			root, stats := build(cfg, 42)
			if stats.Skipped != 0 {
				t.Errorf("skipped %d nodes", stats.Skipped)
			}
			if root.Count() <= p.NumBranches {
				t.Errorf("got %d nodes, want more than %d", root.Count(), p.NumBranches)
			}
		})
	}
}
