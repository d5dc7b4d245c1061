// Package colonize refines a coarse skeleton with space colonization: branch
// tips grow toward attraction points scattered in the crown and consume them.
package colonize

import (
	"errors"
	"fmt"
	gomath "math"
	"math/rand"

	"github.com/Faultbox/arbor/pkg/math"
	"github.com/Faultbox/arbor/pkg/skeleton"
)

// MaxIterations bounds the growth rounds a caller may request.
const MaxIterations = 1000

// Colonization configuration errors.
var (
	ErrInvalidRadius        = errors.New("colonization radius must be positive and finite")
	ErrKillRadius           = errors.New("kill radius must not exceed influence radius")
	ErrInvalidStep          = errors.New("colonization step must be positive and finite")
	ErrIterationsOutOfRange = errors.New("colonization iterations out of range")
	ErrInvalidDensity       = errors.New("point density must be non-negative and finite")
	ErrInvalidCrown         = errors.New("crown must have finite center and non-negative size")
)

// Config holds the growth parameters.
type Config struct {
	InfluenceRadius float32
	KillRadius      float32
	StepSize        float32
	MaxIterations   int
	PointDensity    float32 // points per unit of radius*height

	// UniformArea samples radius as R*sqrt(u) instead of the default R*u,
	// giving area-uniform density instead of a denser core.
	UniformArea bool
}

// DefaultConfig returns parameters tuned for a crown a few units across.
func DefaultConfig() Config {
	return Config{
		InfluenceRadius: 3,
		KillRadius:      0.6,
		StepSize:        0.35,
		MaxIterations:   40,
		PointDensity:    6,
	}
}

// Validate checks the preconditions of Grow.
func (c Config) Validate() error {
	if !(c.InfluenceRadius > 0) || !math.IsFinite(c.InfluenceRadius) {
		return fmt.Errorf("%w: influence %v", ErrInvalidRadius, c.InfluenceRadius)
	}
	if !(c.KillRadius > 0) || !math.IsFinite(c.KillRadius) {
		return fmt.Errorf("%w: kill %v", ErrInvalidRadius, c.KillRadius)
	}
	if c.KillRadius > c.InfluenceRadius {
		return ErrKillRadius
	}
	if !(c.StepSize > 0) || !math.IsFinite(c.StepSize) {
		return ErrInvalidStep
	}
	if c.MaxIterations < 0 || c.MaxIterations > MaxIterations {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrIterationsOutOfRange, c.MaxIterations, MaxIterations)
	}
	if c.PointDensity < 0 || !math.IsFinite(c.PointDensity) {
		return ErrInvalidDensity
	}
	return nil
}

// Crown is the cylinder attraction points are scattered in. Center is the
// middle of the cylinder; it spans Center.Y ± Height/2.
type Crown struct {
	Center math.Vec3
	Radius float32
	Height float32
}

// Validate checks the crown geometry.
func (c Crown) Validate() error {
	if !c.Center.IsFinite() || !math.IsFinite(c.Radius) || !math.IsFinite(c.Height) || c.Radius < 0 || c.Height < 0 {
		return ErrInvalidCrown
	}
	return nil
}

// Point is an attraction point. Active only ever goes from true to false.
type Point struct {
	Position math.Vec3
	Active   bool
}

// Tip is a growing branch end.
type Tip struct {
	Position  math.Vec3
	Direction math.Vec3
	Grown     int // rounds in which this tip moved
}

// Result is the output of Grow.
type Result struct {
	Segments      []skeleton.Segment     // fine segments, Kind == KindFine
	Points        []Point                // final attraction points
	Tips          []Tip                  // final tip states
	Leaves        []skeleton.LeafCluster // one per consumed point
	Rounds        int                    // growth rounds executed
	ActiveHistory []int                  // active point count after each round, preceded by the initial count
}

// ActiveCount returns the number of points still active.
func (r Result) ActiveCount() int {
	n := 0
	for _, p := range r.Points {
		if p.Active {
			n++
		}
	}
	return n
}

// PointCount returns how many points Distribute creates for a crown.
func PointCount(crown Crown, density float32) int {
	n := gomath.Floor(float64(crown.Radius) * float64(crown.Height) * float64(density))
	if n < 0 || gomath.IsNaN(n) {
		return 0
	}
	return int(n)
}

// Distribute scatters attraction points inside the crown cylinder using
// polar sampling: random angle, random radius, random height. With the
// default linear radius the density is higher near the axis.
func Distribute(crown Crown, density float32, uniformArea bool, rng *rand.Rand) []Point {
	n := PointCount(crown, density)
	points := make([]Point, n)
	base := crown.Center.Y - crown.Height/2
	for i := range points {
		angle := rng.Float64() * 2 * gomath.Pi
		u := rng.Float64()
		if uniformArea {
			u = gomath.Sqrt(u)
		}
		r := float32(u) * crown.Radius
		h := rng.Float32() * crown.Height
		off := math.Polar(float32(angle), r)
		points[i] = Point{
			Position: off.Lift(base + h).Add(math.Vec3{X: crown.Center.X, Z: crown.Center.Z}),
			Active:   true,
		}
	}
	return points
}
