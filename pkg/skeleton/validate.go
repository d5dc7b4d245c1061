package skeleton

import (
	"github.com/Faultbox/arbor/pkg/math"
)

// minDirectionLength is the shortest vector still treated as a direction.
const minDirectionLength = 1e-6

// ValidDirection reports whether v is finite and has non-zero length.
func ValidDirection(v math.Vec3) bool {
	if !v.IsFinite() {
		return false
	}
	return v.Length() > minDirectionLength
}

// Direction normalizes v, reporting false for NaN, infinite or zero vectors.
func Direction(v math.Vec3) (math.Vec3, bool) {
	if !ValidDirection(v) {
		return math.Vec3{}, false
	}
	n := v.Normalize()
	if !n.IsFinite() {
		return math.Vec3{}, false
	}
	return n, true
}

// Filter drops invalid segments and returns the kept ones with the drop count.
func Filter(segments []Segment) ([]Segment, int) {
	kept := segments[:0:0]
	dropped := 0
	for _, s := range segments {
		if !s.Valid() {
			dropped++
			continue
		}
		kept = append(kept, s)
	}
	return kept, dropped
}

// Chains joins consecutive connected segments into polylines. Two segments
// are chained when the second starts where the first ended and both share
// depth and kind. Point radii come from Segment.Radius and EndRadius.
func Chains(segments []Segment) []Path {
	var paths []Path
	var last Segment

	for i, s := range segments {
		connected := i > 0 &&
			s.Start.Distance(last.End) < 1e-5 &&
			s.Depth == last.Depth && s.Kind == last.Kind
		if !connected {
			paths = append(paths, Path{
				Points: []math.Vec3{s.Start},
				Radii:  []float32{s.Radius},
				Radius: s.Radius,
				Depth:  s.Depth,
				Kind:   s.Kind,
			})
		}
		cur := &paths[len(paths)-1]
		cur.Points = append(cur.Points, s.End)
		cur.Radii = append(cur.Radii, s.EndRadius)
		last = s
	}
	return paths
}
