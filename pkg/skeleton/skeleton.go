// Package skeleton defines the centerline graph shared by the growth stages
// and the mesh builder: segments, polyline paths and leaf anchors.
package skeleton

import (
	"github.com/Faultbox/arbor/pkg/math"
)

// Kind tells which growth stage produced a segment.
type Kind uint8

const (
	KindSkeleton Kind = iota // coarse structure (grammar or hierarchy)
	KindFine                 // space-colonization refinement
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindSkeleton:
		return "skeleton"
	case KindFine:
		return "fine"
	default:
		return "unknown"
	}
}

// Segment is one straight piece of the tree centerline.
type Segment struct {
	Start     math.Vec3
	End       math.Vec3
	Direction math.Vec3 // unit vector from Start to End
	Length    float32
	Radius    float32 // radius at Start, zero when unknown
	EndRadius float32 // radius at End
	Depth     int     // bracket nesting depth in the grammar, level in the hierarchy
	Kind      Kind
}

// NewSegment builds a segment between two points.
// ok is false when the points coincide or are not finite.
func NewSegment(start, end math.Vec3, kind Kind) (Segment, bool) {
	delta := end.Sub(start)
	length := delta.Length()
	dir, ok := Direction(delta)
	if !ok {
		return Segment{}, false
	}
	return Segment{
		Start:     start,
		End:       end,
		Direction: dir,
		Length:    length,
		Kind:      kind,
	}, true
}

// Valid reports whether the segment has finite endpoints and a usable direction.
func (s Segment) Valid() bool {
	return s.Start.IsFinite() && s.End.IsFinite() && ValidDirection(s.Direction) && s.Length > 0
}

// LeafCluster is an anchor where leaf geometry is placed.
type LeafCluster struct {
	Position  math.Vec3
	Direction math.Vec3 // direction of the branch ending here
}

// Path is a polyline with per-point radius, the unit the mesh builder sweeps.
type Path struct {
	Points []math.Vec3
	Radii  []float32 // optional; empty means taper from Radius
	Radius float32   // base radius used when Radii is empty
	Depth  int
	Kind   Kind
}

// Len returns the number of points.
func (p Path) Len() int {
	return len(p.Points)
}

// Finite reports whether every point and radius is finite.
func (p Path) Finite() bool {
	for _, pt := range p.Points {
		if !pt.IsFinite() {
			return false
		}
	}
	for _, r := range p.Radii {
		if !math.IsFinite(r) {
			return false
		}
	}
	return true
}

// RadiusAt returns the radius at point i. Without explicit radii the base
// radius tapers linearly as radius*(1-i/len).
func (p Path) RadiusAt(i int) float32 {
	if len(p.Radii) == len(p.Points) && len(p.Radii) > 0 {
		return p.Radii[i]
	}
	n := len(p.Points)
	if n == 0 {
		return 0
	}
	return p.Radius * (1 - float32(i)/float32(n))
}
