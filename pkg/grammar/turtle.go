package grammar

import (
	gomath "math"
	"math/rand"

	"github.com/Faultbox/arbor/pkg/math"
	"github.com/Faultbox/arbor/pkg/skeleton"
)

// Turtle is the interpreter state. Heading, Left and Up form a right-handed
// frame with Up = Heading × Left.
type Turtle struct {
	Position math.Vec3
	Heading  math.Vec3
	Left     math.Vec3
	Up       math.Vec3
	Length   float32
	Depth    int
	drew     bool
	lastDir  math.Vec3 // direction of the last segment drawn on this branch
}

// NewTurtle returns a turtle at origin heading up the world Y axis.
func NewTurtle(origin math.Vec3, length float32) Turtle {
	return Turtle{
		Position: origin,
		Heading:  math.Up,
		Left:     math.Vec3{X: -1},
		Up:       math.Front,
		Length:   length,
	}
}

// yawAxis is world up unless the config asks for turns in the turtle frame.
func (t *Turtle) yawAxis(local bool) math.Vec3 {
	if local {
		return t.Up
	}
	return math.Up
}

func (t *Turtle) rotate(axis math.Vec3, angle float32) {
	q := math.QuatFromAxisAngle(axis, angle)
	t.Heading = q.Rotate(t.Heading)
	t.Left = q.Rotate(t.Left)
	t.Up = q.Rotate(t.Up)
}

// Result is the output of Interpret.
type Result struct {
	Segments  []skeleton.Segment
	Terminals []skeleton.LeafCluster // tips of drawn branches
	Final     Turtle                 // state after the last symbol
	Dropped   int                    // F moves with a degenerate direction
	Stats     Stats                  // shape of the rewritten string, set by Generate
}

// Interpret walks s left to right and emits one segment per F.
//
//	F  draw forward, then shrink the length by LengthFactor
//	f  move forward without drawing
//	+  turn left by Angle around world up, -  turn right
//	   (around the turtle's own up axis when LocalYaw is set)
//	&  pitch down, ^  pitch up
//	\  roll left, /  roll right
//	|  turn around
//	[  push state, ]  pop state (no-op on an empty stack)
//
// Every other symbol is ignored.
func Interpret(s string, cfg Config, rng *rand.Rand) Result {
	var res Result
	t := NewTurtle(cfg.Origin, cfg.Length)
	var stack []Turtle

	radiusAt := func(depth int, length float32) float32 {
		r := cfg.BaseRadius * length / cfg.Length
		if cfg.RadiusFactor > 0 {
			r *= float32(gomath.Pow(float64(cfg.RadiusFactor), float64(depth)))
		}
		return r
	}

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'F', 'f':
			end := advance(t, cfg, rng)
			if s[i] == 'F' {
				seg, ok := skeleton.NewSegment(t.Position, end, skeleton.KindSkeleton)
				if !ok {
					res.Dropped++
					t.Length *= cfg.LengthFactor
					continue
				}
				seg.Depth = t.Depth
				seg.Radius = radiusAt(t.Depth, t.Length)
				seg.EndRadius = radiusAt(t.Depth, t.Length*cfg.LengthFactor)
				res.Segments = append(res.Segments, seg)
				t.lastDir = seg.Direction
				t.drew = true
				t.Length *= cfg.LengthFactor
			}
			t.Position = end
		case '+':
			t.rotate(t.yawAxis(cfg.LocalYaw), cfg.Angle)
		case '-':
			t.rotate(t.yawAxis(cfg.LocalYaw), -cfg.Angle)
		case '&':
			t.rotate(t.Left, cfg.Angle)
		case '^':
			t.rotate(t.Left, -cfg.Angle)
		case '\\':
			t.rotate(t.Heading, cfg.Angle)
		case '/':
			t.rotate(t.Heading, -cfg.Angle)
		case '|':
			t.Heading, t.Left = t.Heading.Negate(), t.Left.Negate()
		case '[':
			stack = append(stack, t)
			t.Depth++
			t.drew = false
		case ']':
			if len(stack) == 0 {
				continue
			}
			if t.drew {
				res.Terminals = append(res.Terminals, skeleton.LeafCluster{Position: t.Position, Direction: t.lastDir})
			}
			t = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		}
	}
	if t.drew {
		res.Terminals = append(res.Terminals, skeleton.LeafCluster{Position: t.Position, Direction: t.lastDir})
	}
	res.Final = t
	return res
}

// advance returns the endpoint of a forward move: heading step, tropism pull
// and per-axis jitter, all scaled by the current length.
func advance(t Turtle, cfg Config, rng *rand.Rand) math.Vec3 {
	end := t.Position.Add(t.Heading.Scale(t.Length))
	end = end.Add(cfg.Tropism.Scale(cfg.TropismStrength * t.Length))
	if cfg.Randomness != 0 && rng != nil {
		j := cfg.Randomness * t.Length
		end = end.Add(math.Vec3{
			X: (rng.Float32()*2 - 1) * j,
			Y: (rng.Float32()*2 - 1) * j,
			Z: (rng.Float32()*2 - 1) * j,
		})
	}
	return end
}

// Generate rewrites the axiom and interprets the result.
func Generate(cfg Config, rng *rand.Rand) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	s := Rewrite(cfg.Axiom, cfg.Rules, cfg.Iterations)
	res := Interpret(s, cfg, rng)
	res.Stats = Measure(s)
	return res, nil
}
