package hierarchy

import (
	"github.com/Faultbox/arbor/pkg/math"
	"github.com/Faultbox/arbor/pkg/skeleton"
)

// taperFloor is the smallest radius fraction a path tapers to.
const taperFloor = 0.05

// Node is one branch. Children are owned by value; there are no parent links.
type Node struct {
	Origin      math.Vec3
	Orientation math.Quat // absolute rotation of the local +Y axis
	Direction   math.Vec3 // Orientation applied to +Y
	Length      float32
	Radius      float32
	Curve       float32 // bend per section in radians
	Level       int
	Sections    int
	Segments    int
	Offset      float32 // fraction along the parent where this node attaches
	Children    []Node
}

// Tip returns the straight-line end of the branch.
func (n *Node) Tip() math.Vec3 {
	return n.Origin.Add(n.Direction.Scale(n.Length))
}

// RadiusAt returns the tapered radius at fraction t of the length.
func (n *Node) RadiusAt(t float32) float32 {
	return max(n.Radius*(1-t), n.Radius*taperFloor)
}

// Walk visits n and its descendants depth-first, parents before children.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for i := range n.Children {
		n.Children[i].Walk(fn)
	}
}

// Count returns the number of nodes in the subtree.
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node) { count++ })
	return count
}

// Depth returns how many levels lie below n.
func (n *Node) Depth() int {
	depth := 0
	for i := range n.Children {
		depth = max(depth, n.Children[i].Depth()+1)
	}
	return depth
}

// Path returns the node's centerline with Sections+1 points, bent by Curve
// around the node's local right axis. ok is false when any computed
// direction or point is degenerate.
func (n *Node) Path() (skeleton.Path, bool) {
	sections := max(n.Sections, 1)
	step := n.Length / float32(sections)

	dir, ok := skeleton.Direction(n.Direction)
	if !ok || !n.Origin.IsFinite() {
		return skeleton.Path{}, false
	}
	bend := math.QuatFromAxisAngle(n.Orientation.Rotate(math.Right), n.Curve)

	count := sections + 1
	path := skeleton.Path{
		Points: make([]math.Vec3, count),
		Radii:  make([]float32, count),
		Radius: n.Radius,
		Depth:  n.Level,
		Kind:   skeleton.KindSkeleton,
	}
	pos := n.Origin
	for i := 0; i < count; i++ {
		if i > 0 {
			dir, ok = skeleton.Direction(bend.Rotate(dir))
			if !ok {
				return skeleton.Path{}, false
			}
			pos = pos.Add(dir.Scale(step))
		}
		path.Points[i] = pos
		path.Radii[i] = n.RadiusAt(float32(i) / float32(count))
	}
	if !path.Finite() {
		return skeleton.Path{}, false
	}
	return path, true
}

// Paths extracts one polyline per node in depth-first order. Nodes whose
// path is degenerate are left out and counted in skipped.
func (n *Node) Paths() (paths []skeleton.Path, skipped int) {
	n.Walk(func(node *Node) {
		p, ok := node.Path()
		if !ok {
			skipped++
			return
		}
		paths = append(paths, p)
	})
	return paths, skipped
}

// SkeletonSegments flattens the tree into skeleton segments, one per path section.
// Depth carries the node level.
func (n *Node) SkeletonSegments() []skeleton.Segment {
	var segs []skeleton.Segment
	n.Walk(func(node *Node) {
		p, ok := node.Path()
		if !ok {
			return
		}
		for i := 0; i+1 < len(p.Points); i++ {
			s, ok := skeleton.NewSegment(p.Points[i], p.Points[i+1], skeleton.KindSkeleton)
			if !ok {
				continue
			}
			s.Radius = p.Radii[i]
			s.EndRadius = p.Radii[i+1]
			s.Depth = node.Level
			segs = append(segs, s)
		}
	})
	return segs
}
