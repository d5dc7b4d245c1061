package mesh

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// ErrOddLines is returned when a line list does not hold whole endpoint pairs.
var ErrOddLines = errors.New("line list must hold xyz endpoint pairs")

// Group is one named object in an OBJ file.
type Group struct {
	Name    string
	Buffers *Buffers
}

// WriteOBJ writes the groups as Wavefront OBJ. Vertex indices are global
// across groups, as the format requires, and each face carries its
// position, UV and normal index.
func WriteOBJ(w io.Writer, groups ...Group) error {
	bw := bufio.NewWriter(w)
	base := 1
	for _, g := range groups {
		b := g.Buffers
		if b == nil || b.IsEmpty() {
			continue
		}
		if err := b.Validate(); err != nil {
			return fmt.Errorf("group %s: %w", g.Name, err)
		}
		fmt.Fprintf(bw, "o %s\n", g.Name)
		n := b.VertexCount()
		for i := range n {
			p := b.Positions[i*3 : i*3+3]
			fmt.Fprintf(bw, "v %g %g %g\n", p[0], p[1], p[2])
		}
		for i := range n {
			fmt.Fprintf(bw, "vt %g %g\n", b.UVs[i*2], b.UVs[i*2+1])
		}
		for i := range n {
			nm := b.Normals[i*3 : i*3+3]
			fmt.Fprintf(bw, "vn %g %g %g\n", nm[0], nm[1], nm[2])
		}
		for t := 0; t < len(b.Indices); t += 3 {
			a := int(b.Indices[t]) + base
			c := int(b.Indices[t+1]) + base
			d := int(b.Indices[t+2]) + base
			fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, c, c, c, d, d, d)
		}
		base += n
	}
	return bw.Flush()
}

// WriteLinesOBJ writes an xyz endpoint-pair list as OBJ line elements.
func WriteLinesOBJ(w io.Writer, name string, lines []float32) error {
	if len(lines)%6 != 0 {
		return fmt.Errorf("%w: %d floats", ErrOddLines, len(lines))
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "o %s\n", name)
	for i := 0; i < len(lines); i += 3 {
		fmt.Fprintf(bw, "v %g %g %g\n", lines[i], lines[i+1], lines[i+2])
	}
	for i := 1; i <= len(lines)/3; i += 2 {
		fmt.Fprintf(bw, "l %d %d\n", i, i+1)
	}
	return bw.Flush()
}
