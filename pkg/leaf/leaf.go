// Package leaf places leaf geometry at branch anchors: quads or small solids
// for direct rendering, and per-leaf transforms for GPU instancing.
package leaf

import (
	"errors"
	"fmt"
	gomath "math"
	"math/rand"

	"github.com/Faultbox/arbor/pkg/math"
	"github.com/Faultbox/arbor/pkg/mesh"
	"github.com/Faultbox/arbor/pkg/skeleton"
)

// Style selects the leaf geometry.
type Style uint8

const (
	Quad  Style = iota // one double-triangle card per leaf
	Solid              // one octahedron per leaf
)

// String returns the style name.
func (s Style) String() string {
	switch s {
	case Quad:
		return "quad"
	case Solid:
		return "solid"
	default:
		return "unknown"
	}
}

// ParseStyle maps a name to a Style.
func ParseStyle(name string) (Style, error) {
	switch name {
	case "quad", "":
		return Quad, nil
	case "solid":
		return Solid, nil
	default:
		return Quad, fmt.Errorf("%w: %q", ErrUnknownStyle, name)
	}
}

// Leaf option errors.
var (
	ErrUnknownStyle = errors.New("unknown leaf style")
	ErrInvalidScale = errors.New("leaf scale range invalid")
)

// Options configures placement.
type Options struct {
	Style    Style
	Radius   float32 // leaf size before scaling
	ScaleMin float32
	ScaleMax float32

	// Billboard centers each quad on its anchor in a vertical plane with a
	// random heading, instead of extending it along the branch.
	Billboard bool
}

// DefaultOptions returns unit-scale quads.
func DefaultOptions() Options {
	return Options{Style: Quad, Radius: 0.3, ScaleMin: 1, ScaleMax: 1}
}

// Validate checks the scale range.
func (o Options) Validate() error {
	if o.Radius < 0 || o.ScaleMin < 0 || o.ScaleMax < o.ScaleMin ||
		!math.IsFinite(o.Radius) || !math.IsFinite(o.ScaleMin) || !math.IsFinite(o.ScaleMax) {
		return fmt.Errorf("%w: radius %v scale [%v, %v]", ErrInvalidScale, o.Radius, o.ScaleMin, o.ScaleMax)
	}
	if o.Style > Solid {
		return fmt.Errorf("%w: %d", ErrUnknownStyle, o.Style)
	}
	return nil
}

// Transform positions one leaf instance.
type Transform struct {
	Position math.Vec3
	Rotation math.Quat
	Scale    float32
}

// Matrix returns the model matrix translate * rotate * scale.
func (t Transform) Matrix() math.Mat4 {
	return math.TRS(t.Position, t.Rotation, t.Scale)
}

// Result holds placed leaves.
type Result struct {
	Buffers   mesh.Buffers
	Instances []Transform
	Fallbacks int // anchors whose direction was replaced by world up
	Skipped   int // anchors with a non-finite position
}

// Place emits geometry and a transform per anchor. Each anchor draws a
// scale and a twist from rng, in anchor order.
func Place(anchors []skeleton.LeafCluster, opts Options, rng *rand.Rand) Result {
	var res Result
	res.Instances = make([]Transform, 0, len(anchors))
	for _, a := range anchors {
		if !a.Position.IsFinite() {
			res.Skipped++
			continue
		}
		dir, ok := skeleton.Direction(a.Direction)
		if !ok {
			dir = math.Up
			res.Fallbacks++
		}

		scale := opts.ScaleMin + (opts.ScaleMax-opts.ScaleMin)*rng.Float32()
		twist := rng.Float32() * 2 * gomath.Pi
		rot := math.QuatFromTo(math.Up, dir).Mul(math.QuatFromAxisAngle(math.Up, twist)).Normalize()

		t := Transform{Position: a.Position, Rotation: rot, Scale: scale}
		res.Instances = append(res.Instances, t)

		size := opts.Radius * scale
		switch opts.Style {
		case Solid:
			addSolid(&res.Buffers, t, size)
		default:
			if opts.Billboard {
				addBillboard(&res.Buffers, a.Position, twist, size)
			} else {
				addQuad(&res.Buffers, t, size)
			}
		}
	}
	return res
}

// addQuad emits a card whose plane contains the branch direction. It starts
// at the anchor and extends two sizes along the branch.
func addQuad(buf *mesh.Buffers, t Transform, size float32) {
	dir := t.Rotation.Rotate(math.Up)
	side := t.Rotation.Rotate(math.Right)
	normal := side.Cross(dir).Normalize()
	emitCard(buf, t.Position.Sub(side.Scale(size)), side.Scale(2*size), dir.Scale(2*size), normal)
}

// addBillboard emits a card centered on the anchor in a vertical plane.
func addBillboard(buf *mesh.Buffers, center math.Vec3, heading, size float32) {
	side := math.QuatFromAxisAngle(math.Up, heading).Rotate(math.Right)
	normal := side.Cross(math.Up).Normalize()
	origin := center.Sub(side.Scale(size)).Sub(math.Up.Scale(size))
	emitCard(buf, origin, side.Scale(2*size), math.Up.Scale(2*size), normal)
}

// emitCard adds the quad origin, origin+u, origin+u+v, origin+v.
func emitCard(buf *mesh.Buffers, origin, u, v, normal math.Vec3) {
	i0 := buf.AddVertex(origin, normal, 0, 0)
	i1 := buf.AddVertex(origin.Add(u), normal, 1, 0)
	i2 := buf.AddVertex(origin.Add(u).Add(v), normal, 1, 1)
	i3 := buf.AddVertex(origin.Add(v), normal, 0, 1)
	buf.AddTriangle(i0, i1, i2)
	buf.AddTriangle(i0, i2, i3)
}

// octahedron corners in local space: four around the equator, then top and bottom.
var octahedron = [6]math.Vec3{
	{X: 1}, {Z: 1}, {X: -1}, {Z: -1},
	{Y: 1}, {Y: -1},
}

// addSolid emits an octahedron resting on the anchor.
func addSolid(buf *mesh.Buffers, t Transform, size float32) {
	center := t.Position.Add(t.Rotation.Rotate(math.Up).Scale(size))
	var idx [6]uint32
	for i, corner := range octahedron {
		n := t.Rotation.Rotate(corner)
		u := float32(i%4) / 4
		v := float32(0.5)
		switch i {
		case 4:
			u, v = 0.5, 1
		case 5:
			u, v = 0.5, 0
		}
		idx[i] = buf.AddVertex(center.Add(n.Scale(size)), n, u, v)
	}
	top, bottom := idx[4], idx[5]
	for k := 0; k < 4; k++ {
		a, b := idx[k], idx[(k+1)%4]
		buf.AddTriangle(a, top, b)
		buf.AddTriangle(a, b, bottom)
	}
}
