// Package hierarchy builds a branch tree by recursive subdivision driven by
// level-indexed parameter arrays, without going through the grammar.
package hierarchy

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/Faultbox/arbor/pkg/math"
	"github.com/Faultbox/arbor/pkg/species"
)

// MaxLevels bounds the recursion depth a caller may request.
const MaxLevels = 6

// Hierarchy configuration errors.
var (
	ErrLevelsOutOfRange = errors.New("hierarchy levels out of range")
	ErrMissingLevels    = errors.New("hierarchy arrays must have at least one entry")
	ErrInvalidLength    = errors.New("hierarchy lengths must be positive and finite")
	ErrInvalidChildren  = errors.New("hierarchy child counts must be non-negative")
)

// Config holds the per-level arrays. Entry i applies to nodes at level i.
// Arrays shorter than the level requested fall back to their last entry.
type Config struct {
	Children []int
	Length   []float32
	Radius   []float32
	Angle    []float32 // tilt from the parent in radians
	Sections []int     // polyline sections per node
	Segments []int     // radial resolution per node
	Start    []float32 // fraction along the parent where children attach

	MaxLevels   int
	TrunkCurve  float32 // bend per section in radians, level 0
	BranchCurve float32 // bend per section in radians, other levels

	// Stagger spreads siblings from Start to the parent's end instead of
	// attaching them all at Start.
	Stagger bool
	// Jitter scales child lengths by a random factor in [1-Jitter, 1+Jitter].
	Jitter float32

	Origin math.Vec3
}

// DefaultConfig returns a three-level tree of moderate size.
func DefaultConfig() Config {
	return Config{
		Children:    []int{5, 3, 2},
		Length:      []float32{6, 3, 1.5, 0.8},
		Radius:      []float32{0.35, 0.15, 0.07, 0.03},
		Angle:       []float32{0, 0.9, 0.7, 0.6},
		Sections:    []int{6, 4, 3, 2},
		Segments:    []int{8, 6, 5, 4},
		Start:       []float32{0, 0.4, 0.3, 0.3},
		MaxLevels:   3,
		TrunkCurve:  0.03,
		BranchCurve: 0.08,
	}
}

// Validate checks the preconditions of Build.
func (c Config) Validate() error {
	if c.MaxLevels < 0 || c.MaxLevels > MaxLevels {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrLevelsOutOfRange, c.MaxLevels, MaxLevels)
	}
	if len(c.Length) == 0 || len(c.Radius) == 0 || len(c.Sections) == 0 {
		return ErrMissingLevels
	}
	if c.MaxLevels > 0 && (len(c.Children) == 0 || len(c.Angle) == 0 || len(c.Start) == 0) {
		return ErrMissingLevels
	}
	for i, l := range c.Length {
		if !(l > 0) || !math.IsFinite(l) {
			return fmt.Errorf("%w: level %d length %v", ErrInvalidLength, i, l)
		}
	}
	for i, n := range c.Children {
		if n < 0 {
			return fmt.Errorf("%w: level %d has %d", ErrInvalidChildren, i, n)
		}
	}
	return nil
}

func pick[T any](values []T, level int) T {
	var zero T
	if len(values) == 0 {
		return zero
	}
	if level >= len(values) {
		return values[len(values)-1]
	}
	return values[level]
}

func (c Config) children(level int) int { return pick(c.Children, level) }
func (c Config) length(level int) float32 { return pick(c.Length, level) }
func (c Config) radius(level int) float32 { return pick(c.Radius, level) }
func (c Config) angle(level int) float32 { return pick(c.Angle, level) }
func (c Config) sections(level int) int { return max(pick(c.Sections, level), 1) }
func (c Config) segments(level int) int { return pick(c.Segments, level) }
func (c Config) start(level int) float32 { return pick(c.Start, level) }

func (c Config) curve(level int) float32 {
	if level == 0 {
		return c.TrunkCurve
	}
	return c.BranchCurve
}

// FromProfile derives level arrays from a species profile. The trunk gets
// NumBranches children; each deeper level gets fewer, shorter and thinner
// branches.
func FromProfile(p species.Profile) Config {
	levels := p.BranchLevels
	cfg := Config{
		MaxLevels:   levels,
		TrunkCurve:  p.TrunkCurve,
		BranchCurve: p.BranchCurve,
		Stagger:     p.BranchSpread > 0,
		Jitter:      0.15,
	}

	angle := p.BranchAngle * gomath.Pi / 180
	spread := p.BranchSpread
	for level := 0; level <= levels; level++ {
		switch level {
		case 0:
			cfg.Children = append(cfg.Children, p.NumBranches)
			cfg.Length = append(cfg.Length, p.TrunkHeight)
			cfg.Radius = append(cfg.Radius, p.TrunkRadius)
			cfg.Angle = append(cfg.Angle, 0)
			cfg.Sections = append(cfg.Sections, 8)
			cfg.Segments = append(cfg.Segments, 8)
			cfg.Start = append(cfg.Start, 0)
		default:
			scale := float32(gomath.Pow(0.55, float64(level-1)))
			cfg.Children = append(cfg.Children, max(p.NumBranches/(level*2), 2))
			cfg.Length = append(cfg.Length, max(p.BranchLength*scale, 0.05))
			cfg.Radius = append(cfg.Radius, cfg.Radius[level-1]*0.45)
			cfg.Angle = append(cfg.Angle, angle*float32(gomath.Pow(0.85, float64(level-1))))
			cfg.Sections = append(cfg.Sections, max(6-level, 2))
			cfg.Segments = append(cfg.Segments, max(8-level, 4))
			start := 1 - spread
			if level == 1 {
				start = max(0.3, 1-spread)
			}
			cfg.Start = append(cfg.Start, min(start, 0.95))
		}
	}
	return cfg
}
