package mesh

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/Faultbox/arbor/pkg/math"
	"github.com/Faultbox/arbor/pkg/skeleton"
)

// ErrRingSides is returned for rings with fewer than three sides.
var ErrRingSides = errors.New("ring needs at least 3 sides")

// NoJunctionSteps turns junction smoothing off. A zero JunctionSteps takes
// the default instead.
const NoJunctionSteps = -1

// Options configures a Builder. Zero fields take the defaults.
type Options struct {
	RingSides     int     // vertices per ring
	JunctionSteps int     // intermediate rings inserted at branch junctions
	TaperFloor    float32 // smallest radius fraction for tapered paths
	UVScale       float32 // v texture units per unit of length

	// TrueNormals emits radial normals instead of world up for every vertex.
	// Topology is identical either way.
	TrueNormals bool
}

// DefaultOptions returns the defaults used for zero fields.
func DefaultOptions() Options {
	return Options{
		RingSides:     8,
		JunctionSteps: 2,
		TaperFloor:    0.05,
		UVScale:       1,
	}
}

// Validate checks option ranges after defaults are applied.
func (o Options) Validate() error {
	o = o.withDefaults()
	if o.RingSides < 3 {
		return fmt.Errorf("%w: %d", ErrRingSides, o.RingSides)
	}
	return nil
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.RingSides == 0 {
		o.RingSides = def.RingSides
	}
	if o.JunctionSteps == 0 {
		o.JunctionSteps = def.JunctionSteps
	}
	if o.TaperFloor == 0 {
		o.TaperFloor = def.TaperFloor
	}
	if o.UVScale == 0 {
		o.UVScale = def.UVScale
	}
	return o
}

// Ring is a circular cross-section. Its vertices are generated on demand.
type Ring struct {
	Center    math.Vec3
	Direction math.Vec3 // unit tangent
	Radius    float32
}

// Valid reports whether the ring can be emitted.
func (r Ring) Valid() bool {
	return r.Center.IsFinite() && skeleton.ValidDirection(r.Direction) &&
		math.IsFinite(r.Radius) && r.Radius >= 0
}

// Lerp interpolates center, direction and radius.
func (r Ring) Lerp(other Ring, t float32) Ring {
	out := Ring{
		Center: r.Center.Lerp(other.Center, t),
		Radius: r.Radius + (other.Radius-r.Radius)*t,
	}
	dir, ok := skeleton.Direction(r.Direction.Lerp(other.Direction, t))
	if !ok {
		dir = r.Direction
	}
	out.Direction = dir
	return out
}

// frame returns two unit vectors perpendicular to the ring direction.
// The frame is seeded from world up, or world X when the direction is
// parallel to up.
func (r Ring) frame() (side, up math.Vec3) {
	ref := math.Up
	if gomath.Abs(float64(r.Direction.Dot(ref))) > 0.999 {
		ref = math.Right
	}
	side = r.Direction.Cross(ref).Normalize()
	up = side.Cross(r.Direction).Normalize()
	return side, up
}

// Builder accumulates tube geometry.
type Builder struct {
	opts    Options
	buf     Buffers
	skipped int
}

// NewBuilder returns a builder with zero option fields set to defaults.
// RingSides below 3 is raised to 3.
func NewBuilder(opts Options) *Builder {
	opts = opts.withDefaults()
	if opts.RingSides < 3 {
		opts.RingSides = 3
	}
	if opts.JunctionSteps < 0 {
		opts.JunctionSteps = 0
	}
	return &Builder{opts: opts}
}

// Options returns the effective options.
func (b *Builder) Options() Options {
	return b.opts
}

// Skipped returns how many paths, segments and junctions were rejected.
func (b *Builder) Skipped() int {
	return b.skipped
}

// Buffers returns the geometry built so far. The builder keeps appending
// to the same backing arrays, so callers finish building first.
func (b *Builder) Buffers() Buffers {
	return b.buf
}

// Rings computes the cross-sections of a path without emitting them.
// ok is false when the path has fewer than two points, a non-finite value,
// or no usable tangent at all.
func (b *Builder) Rings(path skeleton.Path) ([]Ring, bool) {
	n := path.Len()
	if n < 2 || !path.Finite() || !math.IsFinite(path.Radius) {
		return nil, false
	}

	tangents := make([]math.Vec3, n)
	valid := make([]bool, n)
	found := false
	for i := range path.Points {
		var d math.Vec3
		if i+1 < n {
			d = path.Points[i+1].Sub(path.Points[i])
		} else {
			d = path.Points[i].Sub(path.Points[i-1])
		}
		tangents[i], valid[i] = skeleton.Direction(d)
		found = found || valid[i]
	}
	if !found {
		return nil, false
	}
	// Coincident points borrow the nearest earlier tangent, or the first
	// valid one when none precedes them.
	first := 0
	for !valid[first] {
		first++
	}
	for i := range tangents {
		switch {
		case valid[i]:
		case i < first:
			tangents[i] = tangents[first]
		default:
			tangents[i] = tangents[i-1]
		}
	}

	explicit := len(path.Radii) == n
	floor := path.Radius * b.opts.TaperFloor
	rings := make([]Ring, n)
	for i, p := range path.Points {
		r := path.RadiusAt(i)
		if !explicit {
			r = max(r, floor)
		}
		rings[i] = Ring{Center: p, Direction: tangents[i], Radius: r}
	}
	return rings, true
}

// AddPath sweeps rings along the path and stitches them into a tube.
// Rejected paths are counted in Skipped.
func (b *Builder) AddPath(path skeleton.Path) bool {
	rings, ok := b.Rings(path)
	if !ok {
		b.skipped++
		return false
	}
	b.addRings(rings)
	return true
}

// AddJunction inserts steps rings interpolated between a and b at
// t = k/(steps+1) and stitches a through the intermediates to b.
// A negative steps uses the builder's JunctionSteps.
func (b *Builder) AddJunction(a, c Ring, steps int) bool {
	if !a.Valid() || !c.Valid() {
		b.skipped++
		return false
	}
	if steps < 0 {
		steps = b.opts.JunctionSteps
	}
	rings := make([]Ring, 0, steps+2)
	rings = append(rings, a)
	for k := 1; k <= steps; k++ {
		rings = append(rings, a.Lerp(c, float32(k)/float32(steps+1)))
	}
	rings = append(rings, c)
	b.addRings(rings)
	return true
}

// AddSegments meshes each segment as a two-point tube. Segment radii are
// capped at radius; segments without a radius use it directly. Returns the
// number of segments meshed.
func (b *Builder) AddSegments(segments []skeleton.Segment, radius float32) int {
	added := 0
	for _, s := range segments {
		if !s.Valid() {
			b.skipped++
			continue
		}
		r0, r1 := s.Radius, s.EndRadius
		if r0 <= 0 {
			r0 = radius
		}
		if r1 <= 0 {
			r1 = r0
		}
		if radius > 0 {
			r0, r1 = min(r0, radius), min(r1, radius)
		}
		path := skeleton.Path{
			Points: []math.Vec3{s.Start, s.End},
			Radii:  []float32{r0, r1},
			Radius: r0,
			Kind:   s.Kind,
		}
		if b.AddPath(path) {
			added++
		}
	}
	return added
}

// addRings emits every ring and stitches each consecutive pair.
func (b *Builder) addRings(rings []Ring) {
	var v float32
	prev := uint32(0)
	for i, r := range rings {
		if i > 0 {
			v += r.Center.Distance(rings[i-1].Center) * b.opts.UVScale
		}
		base := b.emitRing(r, v)
		if i > 0 {
			b.stitch(prev, base)
		}
		prev = base
	}
}

// emitRing appends RingSides vertices and returns the first index.
func (b *Builder) emitRing(r Ring, v float32) uint32 {
	side, up := r.frame()
	n := b.opts.RingSides
	base := uint32(b.buf.VertexCount())
	for k := 0; k < n; k++ {
		angle := 2 * gomath.Pi * float64(k) / float64(n)
		offset := side.Scale(float32(gomath.Cos(angle))).Add(up.Scale(float32(gomath.Sin(angle))))
		normal := math.Up
		if b.opts.TrueNormals {
			normal = offset
		}
		b.buf.AddVertex(r.Center.Add(offset.Scale(r.Radius)), normal, float32(k)/float32(n), v)
	}
	return base
}

// stitch joins two rings with 2*RingSides triangles, pairing vertex k of
// one ring with vertex k of the other. Winding is counter-clockwise seen
// from outside the tube.
func (b *Builder) stitch(a, c uint32) {
	n := uint32(b.opts.RingSides)
	for k := uint32(0); k < n; k++ {
		k1 := (k + 1) % n
		b.buf.AddTriangle(a+k, c+k, a+k1)
		b.buf.AddTriangle(a+k1, c+k, c+k1)
	}
}
