// Package mesh turns skeleton polylines into triangle buffers by sweeping
// rings of vertices along them and stitching neighbouring rings into tubes.
package mesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/arbor/pkg/math"
)

// Buffer validation errors.
var (
	ErrIndexCount      = errors.New("index count is not a multiple of 3")
	ErrIndexRange      = errors.New("index out of range")
	ErrAttributeLength = errors.New("vertex attribute lengths disagree")
	ErrNonFinite       = errors.New("non-finite vertex attribute")
)

// Buffers holds flat vertex attributes ready for GPU upload.
// Positions and Normals hold 3 floats per vertex, UVs hold 2.
type Buffers struct {
	Positions []float32
	Normals   []float32
	UVs       []float32
	Indices   []uint32
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// VertexCount returns the number of vertices.
func (b *Buffers) VertexCount() int {
	return len(b.Positions) / 3
}

// TriangleCount returns the number of triangles.
func (b *Buffers) TriangleCount() int {
	return len(b.Indices) / 3
}

// IsEmpty reports whether there is nothing to draw.
func (b *Buffers) IsEmpty() bool {
	return len(b.Indices) == 0
}

// Validate returns an error describing the first broken invariant.
func (b *Buffers) Validate() error {
	if len(b.Positions)%3 != 0 || len(b.Normals) != len(b.Positions) || len(b.UVs)*3 != len(b.Positions)*2 {
		return fmt.Errorf("%w: positions %d normals %d uvs %d",
			ErrAttributeLength, len(b.Positions), len(b.Normals), len(b.UVs))
	}
	if len(b.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices", ErrIndexCount, len(b.Indices))
	}
	n := uint32(b.VertexCount())
	for i, idx := range b.Indices {
		if idx >= n {
			return fmt.Errorf("%w: indices[%d] = %d with %d vertices", ErrIndexRange, i, idx, n)
		}
	}
	for _, attr := range [][]float32{b.Positions, b.Normals, b.UVs} {
		for i, f := range attr {
			if !math.IsFinite(f) {
				return fmt.Errorf("%w at offset %d", ErrNonFinite, i)
			}
		}
	}
	return nil
}

// mustMatch panics when the attribute slices disagree in vertex count.
// Callers only hand out buffers built by this package, so a mismatch is a bug.
func (b *Buffers) mustMatch() {
	if len(b.Positions)%3 != 0 || len(b.Normals) != len(b.Positions) || len(b.UVs)*3 != len(b.Positions)*2 {
		panic(fmt.Sprintf("mesh: mismatched buffers: positions %d normals %d uvs %d",
			len(b.Positions), len(b.Normals), len(b.UVs)))
	}
}

// Append adds other's geometry, rebasing its indices.
func (b *Buffers) Append(other Buffers) {
	b.mustMatch()
	other.mustMatch()
	base := uint32(b.VertexCount())
	b.Positions = append(b.Positions, other.Positions...)
	b.Normals = append(b.Normals, other.Normals...)
	b.UVs = append(b.UVs, other.UVs...)
	for _, idx := range other.Indices {
		b.Indices = append(b.Indices, idx+base)
	}
}

// Bounds returns the bounding box of all positions. An empty buffer has a
// zero box.
func (b *Buffers) Bounds() Bounds {
	if len(b.Positions) < 3 {
		return Bounds{}
	}
	bounds := Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}
	for i := 0; i+2 < len(b.Positions); i += 3 {
		for axis := 0; axis < 3; axis++ {
			v := b.Positions[i+axis]
			bounds.Min[axis] = min(bounds.Min[axis], v)
			bounds.Max[axis] = max(bounds.Max[axis], v)
		}
	}
	return bounds
}

// Position returns vertex i's position.
func (b *Buffers) Position(i int) math.Vec3 {
	return math.Vec3{X: b.Positions[i*3], Y: b.Positions[i*3+1], Z: b.Positions[i*3+2]}
}

// Normal returns vertex i's normal.
func (b *Buffers) Normal(i int) math.Vec3 {
	return math.Vec3{X: b.Normals[i*3], Y: b.Normals[i*3+1], Z: b.Normals[i*3+2]}
}

// AddVertex appends one vertex and returns its index.
func (b *Buffers) AddVertex(pos, normal math.Vec3, u, v float32) uint32 {
	idx := uint32(b.VertexCount())
	b.Positions = append(b.Positions, pos.X, pos.Y, pos.Z)
	b.Normals = append(b.Normals, normal.X, normal.Y, normal.Z)
	b.UVs = append(b.UVs, u, v)
	return idx
}

// AddTriangle appends one triangle.
func (b *Buffers) AddTriangle(i0, i1, i2 uint32) {
	b.Indices = append(b.Indices, i0, i1, i2)
}
