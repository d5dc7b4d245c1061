// Package species holds the botanical parameter presets trees are generated
// from, plus a registry for custom profiles loaded from YAML.
package species

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/arbor/pkg/math"
)

// DefaultName is the profile used when a lookup misses.
const DefaultName = "broadleaf"

// Profile validation errors.
var (
	ErrEmptyName       = errors.New("species name is empty")
	ErrInvalidTrunk    = errors.New("trunk height and radius must be positive")
	ErrInvalidBranch   = errors.New("branch parameters out of range")
	ErrInvalidLeaf     = errors.New("leaf parameters out of range")
	ErrUnknownLeafType = errors.New("unknown leaf type")
)

// LeafType selects the leaf geometry.
type LeafType string

const (
	LeafQuad  LeafType = "quad"
	LeafSolid LeafType = "solid"
)

// Color is a linear RGB triple in [0, 1].
type Color [3]float32

// Grammar carries an optional per-species growth grammar. Angle is in degrees.
// LocalYaw turns + and - around the turtle's own up axis instead of world up.
type Grammar struct {
	Axiom      string            `yaml:"axiom"`
	Rules      map[string]string `yaml:"rules"`
	Iterations int               `yaml:"iterations"`
	Angle      float32           `yaml:"angle"`
	LocalYaw   bool              `yaml:"local_yaw,omitempty"`
}

// Profile is a named parameter set. Angles are in degrees.
type Profile struct {
	Name string `yaml:"name"`

	TrunkHeight float32 `yaml:"trunk_height"`
	TrunkRadius float32 `yaml:"trunk_radius"`
	TrunkCurve  float32 `yaml:"trunk_curve"`

	NumBranches  int     `yaml:"num_branches"`
	BranchLevels int     `yaml:"branch_levels"`
	BranchLength float32 `yaml:"branch_length"`
	BranchCurve  float32 `yaml:"branch_curve"`
	BranchSpread float32 `yaml:"branch_spread"` // fraction of the parent the children spread over
	BranchAngle  float32 `yaml:"branch_angle"`

	LeafRadius   float32  `yaml:"leaf_radius"`
	LeafSegments int      `yaml:"leaf_segments"`
	LeafType     LeafType `yaml:"leaf_type"`
	LeafScaleMin float32  `yaml:"leaf_scale_min"`
	LeafScaleMax float32  `yaml:"leaf_scale_max"`

	TrunkColor  Color `yaml:"trunk_color"`
	BranchColor Color `yaml:"branch_color"`
	LeafColor   Color `yaml:"leaf_color"`

	Grammar *Grammar `yaml:"grammar,omitempty"`
}

// Validate checks that a profile can drive generation.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if !(p.TrunkHeight > 0) || !(p.TrunkRadius > 0) || !math.IsFinite(p.TrunkHeight) || !math.IsFinite(p.TrunkRadius) {
		return fmt.Errorf("%s: %w", p.Name, ErrInvalidTrunk)
	}
	if p.NumBranches < 0 || p.BranchLevels < 0 || p.BranchLevels > 6 || p.BranchLength < 0 || !math.IsFinite(p.BranchLength) {
		return fmt.Errorf("%s: %w", p.Name, ErrInvalidBranch)
	}
	if p.BranchSpread < 0 || p.BranchSpread > 1 {
		return fmt.Errorf("%s: %w: spread %v not in [0, 1]", p.Name, ErrInvalidBranch, p.BranchSpread)
	}
	if p.LeafRadius < 0 || p.LeafScaleMin < 0 || p.LeafScaleMax < p.LeafScaleMin {
		return fmt.Errorf("%s: %w", p.Name, ErrInvalidLeaf)
	}
	switch p.LeafType {
	case LeafQuad, LeafSolid:
	default:
		return fmt.Errorf("%s: %w: %q", p.Name, ErrUnknownLeafType, p.LeafType)
	}
	return nil
}

// Presets returns the built-in profiles in display order.
func Presets() []Profile {
	return []Profile{
		{
			Name:         "broadleaf",
			TrunkHeight:  6,
			TrunkRadius:  0.35,
			TrunkCurve:   0.03,
			NumBranches:  6,
			BranchLevels: 3,
			BranchLength: 3.5,
			BranchCurve:  0.08,
			BranchSpread: 0.5,
			BranchAngle:  50,
			LeafRadius:   0.35,
			LeafSegments: 1,
			LeafType:     LeafQuad,
			LeafScaleMin: 0.8,
			LeafScaleMax: 1.2,
			TrunkColor:   Color{0.36, 0.25, 0.16},
			BranchColor:  Color{0.42, 0.30, 0.19},
			LeafColor:    Color{0.25, 0.55, 0.20},
		},
		{
			Name:         "pine",
			TrunkHeight:  10,
			TrunkRadius:  0.3,
			TrunkCurve:   0.01,
			NumBranches:  12,
			BranchLevels: 3,
			BranchLength: 3,
			BranchCurve:  0.04,
			BranchSpread: 0.7,
			BranchAngle:  75,
			LeafRadius:   0.2,
			LeafSegments: 1,
			LeafType:     LeafSolid,
			LeafScaleMin: 0.7,
			LeafScaleMax: 1.0,
			TrunkColor:   Color{0.33, 0.22, 0.14},
			BranchColor:  Color{0.38, 0.26, 0.16},
			LeafColor:    Color{0.12, 0.36, 0.18},
			Grammar: &Grammar{
				Axiom:      "F",
				Rules:      map[string]string{"F": "FF-[-F+F]+[+F-F]"},
				Iterations: 3,
				Angle:      30,
				LocalYaw:   true,
			},
		},
		{
			Name:         "willow",
			TrunkHeight:  5,
			TrunkRadius:  0.4,
			TrunkCurve:   0.06,
			NumBranches:  8,
			BranchLevels: 3,
			BranchLength: 4,
			BranchCurve:  0.25,
			BranchSpread: 0.4,
			BranchAngle:  65,
			LeafRadius:   0.25,
			LeafSegments: 1,
			LeafType:     LeafQuad,
			LeafScaleMin: 0.6,
			LeafScaleMax: 1.1,
			TrunkColor:   Color{0.35, 0.28, 0.20},
			BranchColor:  Color{0.45, 0.36, 0.22},
			LeafColor:    Color{0.45, 0.62, 0.28},
		},
		{
			Name:         "birch",
			TrunkHeight:  8,
			TrunkRadius:  0.22,
			TrunkCurve:   0.04,
			NumBranches:  5,
			BranchLevels: 3,
			BranchLength: 2.5,
			BranchCurve:  0.06,
			BranchSpread: 0.5,
			BranchAngle:  35,
			LeafRadius:   0.25,
			LeafSegments: 1,
			LeafType:     LeafQuad,
			LeafScaleMin: 0.7,
			LeafScaleMax: 1.0,
			TrunkColor:   Color{0.88, 0.86, 0.80},
			BranchColor:  Color{0.55, 0.50, 0.45},
			LeafColor:    Color{0.50, 0.70, 0.25},
		},
		{
			Name:         "oak",
			TrunkHeight:  5,
			TrunkRadius:  0.6,
			TrunkCurve:   0.05,
			NumBranches:  7,
			BranchLevels: 3,
			BranchLength: 4.5,
			BranchCurve:  0.12,
			BranchSpread: 0.35,
			BranchAngle:  60,
			LeafRadius:   0.4,
			LeafSegments: 1,
			LeafType:     LeafQuad,
			LeafScaleMin: 0.9,
			LeafScaleMax: 1.4,
			TrunkColor:   Color{0.30, 0.21, 0.13},
			BranchColor:  Color{0.36, 0.26, 0.16},
			LeafColor:    Color{0.20, 0.45, 0.15},
			Grammar: &Grammar{
				Axiom:      "F",
				Rules:      map[string]string{"F": "F[&+F]F[^-F][+F]"},
				Iterations: 3,
				Angle:      28,
				LocalYaw:   true,
			},
		},
		{
			Name:         "palm",
			TrunkHeight:  9,
			TrunkRadius:  0.25,
			TrunkCurve:   0.08,
			NumBranches:  9,
			BranchLevels: 1,
			BranchLength: 3,
			BranchCurve:  0.3,
			BranchSpread: 0,
			BranchAngle:  70,
			LeafRadius:   0.6,
			LeafSegments: 1,
			LeafType:     LeafQuad,
			LeafScaleMin: 1.0,
			LeafScaleMax: 1.5,
			TrunkColor:   Color{0.50, 0.40, 0.28},
			BranchColor:  Color{0.35, 0.50, 0.20},
			LeafColor:    Color{0.25, 0.60, 0.22},
			Grammar: &Grammar{
				Axiom:      "FFFFA",
				Rules:      map[string]string{"A": "[&F][&+F][&-F][&++F][&--F][&|F]"},
				Iterations: 1,
				Angle:      60,
			},
		},
	}
}
