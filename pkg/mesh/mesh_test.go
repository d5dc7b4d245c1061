package mesh

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/arbor/pkg/math"
	"github.com/Faultbox/arbor/pkg/skeleton"
)

const eps = 1e-4

func near(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < eps
}

func line(points ...math.Vec3) skeleton.Path {
	return skeleton.Path{Points: points, Radius: 1}
}

func TestAddPathTopology(t *testing.T) {
	tests := []struct {
		name  string
		sides int
		path  skeleton.Path
		verts int
		tris  int
	}{
		{"two points", 8, line(math.Vec3{}, math.Vec3{Y: 1}), 16, 16},
		{"three points", 8, line(math.Vec3{}, math.Vec3{Y: 1}, math.Vec3{Y: 2}), 24, 32},
		{"triangle rings", 3, line(math.Vec3{}, math.Vec3{X: 1}, math.Vec3{X: 1, Y: 1}, math.Vec3{Y: 1}), 12, 18},
		{"duplicate point", 6, line(math.Vec3{}, math.Vec3{}, math.Vec3{Z: 1}), 18, 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(Options{RingSides: tt.sides})
			if !b.AddPath(tt.path) {
				t.Fatal("path rejected")
			}
			buf := b.Buffers()
			if buf.VertexCount() != tt.verts || buf.TriangleCount() != tt.tris {
				t.Errorf("got %d verts %d tris, want %d/%d", buf.VertexCount(), buf.TriangleCount(), tt.verts, tt.tris)
			}
			if err := buf.Validate(); err != nil {
				t.Errorf("Validate: %v", err)
			}
		})
	}
}

func TestAddPathRejects(t *testing.T) {
	nan := float32(gomath.NaN())
	tests := []struct {
		name string
		path skeleton.Path
	}{
		{"empty", line()},
		{"single point", line(math.Vec3{})},
		{"nan point", line(math.Vec3{}, math.Vec3{X: nan})},
		{"inf point", line(math.Vec3{Y: float32(gomath.Inf(1))}, math.Vec3{})},
		{"all coincident", line(math.Vec3{X: 1}, math.Vec3{X: 1})},
		{"nan radius", skeleton.Path{Points: []math.Vec3{{}, {Y: 1}}, Radii: []float32{1, nan}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(Options{})
			if b.AddPath(tt.path) {
				t.Fatal("path accepted")
			}
			if b.Skipped() != 1 {
				t.Errorf("Skipped = %d, want 1", b.Skipped())
			}
			buf := b.Buffers()
			if !buf.IsEmpty() || buf.VertexCount() != 0 {
				t.Error("rejected path emitted geometry")
			}
		})
	}
}

func ringRadius(buf Buffers, base, sides int, center math.Vec3) float32 {
	var sum float32
	for k := 0; k < sides; k++ {
		sum += buf.Position(base + k).Distance(center)
	}
	return sum / float32(sides)
}

func TestTaper(t *testing.T) {
	path := line(math.Vec3{}, math.Vec3{Y: 1}, math.Vec3{Y: 2}, math.Vec3{Y: 3})

	tests := []struct {
		name  string
		floor float32
		path  skeleton.Path
		want  []float32
	}{
		{"linear", 0.05, path, []float32{1, 0.75, 0.5, 0.25}},
		{"floored", 0.5, path, []float32{1, 0.75, 0.5, 0.5}},
		{"explicit radii ignore floor", 0.5, skeleton.Path{Points: path.Points, Radii: []float32{2, 1, 0.2, 0.1}, Radius: 2}, []float32{2, 1, 0.2, 0.1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(Options{RingSides: 6, TaperFloor: tt.floor})
			b.AddPath(tt.path)
			buf := b.Buffers()
			for i, want := range tt.want {
				if got := ringRadius(buf, i*6, 6, tt.path.Points[i]); !near(got, want) {
					t.Errorf("ring %d radius = %v, want %v", i, got, want)
				}
			}
		})
	}
}

func TestNormals(t *testing.T) {
	path := line(math.Vec3{}, math.Vec3{X: 1, Y: 1}, math.Vec3{X: 1, Y: 3})

	b := NewBuilder(Options{})
	b.AddPath(path)
	buf := b.Buffers()
	for i := 0; i < buf.VertexCount(); i++ {
		if buf.Normal(i) != math.Up {
			t.Fatalf("vertex %d normal %v, want world up", i, buf.Normal(i))
		}
	}

	tb := NewBuilder(Options{TrueNormals: true})
	tb.AddPath(path)
	tbuf := tb.Buffers()
	if tbuf.VertexCount() != buf.VertexCount() || len(tbuf.Indices) != len(buf.Indices) {
		t.Fatal("true normals changed topology")
	}
	for i := range buf.Indices {
		if buf.Indices[i] != tbuf.Indices[i] {
			t.Fatal("true normals changed winding")
		}
	}
	rings, _ := tb.Rings(path)
	for i := 0; i < tbuf.VertexCount(); i++ {
		n := tbuf.Normal(i)
		if !near(n.Length(), 1) {
			t.Errorf("vertex %d normal not unit: %v", i, n)
		}
		if d := n.Dot(rings[i/8].Direction); !near(d, 0) {
			t.Errorf("vertex %d normal not perpendicular to tangent: %v", i, d)
		}
	}
}

func TestWindingFacesOutward(t *testing.T) {
	for _, dir := range []math.Vec3{math.Up, math.Right, {X: 1, Y: 2, Z: -1}} {
		b := NewBuilder(Options{RingSides: 8})
		b.AddPath(line(math.Vec3{}, dir.Normalize().Scale(2)))
		buf := b.Buffers()
		axis := dir.Normalize()
		for tri := 0; tri < buf.TriangleCount(); tri++ {
			p0 := buf.Position(int(buf.Indices[tri*3]))
			p1 := buf.Position(int(buf.Indices[tri*3+1]))
			p2 := buf.Position(int(buf.Indices[tri*3+2]))
			normal := p1.Sub(p0).Cross(p2.Sub(p0))
			centroid := p0.Add(p1).Add(p2).Scale(1.0 / 3)
			radial := centroid.Sub(axis.Scale(centroid.Dot(axis)))
			if normal.Dot(radial) <= 0 {
				t.Fatalf("dir %v triangle %d faces inward", dir, tri)
			}
		}
	}
}

func TestUVs(t *testing.T) {
	b := NewBuilder(Options{RingSides: 4, UVScale: 0.5})
	b.AddPath(line(math.Vec3{}, math.Vec3{Y: 2}, math.Vec3{Y: 6}))
	buf := b.Buffers()
	wantV := []float32{0, 1, 3}
	for i := 0; i < buf.VertexCount(); i++ {
		u, v := buf.UVs[i*2], buf.UVs[i*2+1]
		if !near(u, float32(i%4)/4) {
			t.Errorf("vertex %d u = %v", i, u)
		}
		if !near(v, wantV[i/4]) {
			t.Errorf("vertex %d v = %v, want %v", i, v, wantV[i/4])
		}
	}
}

func TestAddJunction(t *testing.T) {
	a := Ring{Center: math.Vec3{}, Direction: math.Up, Radius: 1}
	c := Ring{Center: math.Vec3{X: 1, Y: 1}, Direction: math.Right, Radius: 0.2}

	b := NewBuilder(Options{RingSides: 8})
	if !b.AddJunction(a, c, 2) {
		t.Fatal("junction rejected")
	}
	buf := b.Buffers()
	if buf.VertexCount() != 4*8 {
		t.Errorf("got %d vertices, want 32", buf.VertexCount())
	}
	if buf.TriangleCount() != 3*2*8 {
		t.Errorf("got %d triangles, want 48", buf.TriangleCount())
	}
	if err := buf.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	for k := 1; k <= 2; k++ {
		ring := a.Lerp(c, float32(k)/3)
		r := ringRadius(buf, k*8, 8, ring.Center)
		if !(r > c.Radius && r < a.Radius) {
			t.Errorf("intermediate ring %d radius %v not strictly between %v and %v", k, r, c.Radius, a.Radius)
		}
		if want := 1 - 0.8*float32(k)/3; !near(r, want) {
			t.Errorf("intermediate ring %d radius %v, want %v", k, r, want)
		}
	}
}

func TestAddJunctionDefaultsAndRejects(t *testing.T) {
	a := Ring{Direction: math.Up, Radius: 1}
	c := Ring{Center: math.Vec3{Y: 1}, Direction: math.Up, Radius: 0.5}

	b := NewBuilder(Options{RingSides: 5, JunctionSteps: 3})
	b.AddJunction(a, c, -1)
	buf := b.Buffers()
	if buf.VertexCount() != 5*5 {
		t.Errorf("got %d vertices, want 25", buf.VertexCount())
	}

	bad := c
	bad.Direction = math.Vec3{}
	if b.AddJunction(a, bad, 1) {
		t.Error("junction with zero direction accepted")
	}
	bad = c
	bad.Center.X = float32(gomath.NaN())
	if b.AddJunction(bad, a, 1) {
		t.Error("junction with NaN center accepted")
	}
	if b.Skipped() != 2 {
		t.Errorf("Skipped = %d, want 2", b.Skipped())
	}
}

func TestAddJunctionDisabled(t *testing.T) {
	a := Ring{Direction: math.Up, Radius: 1}
	c := Ring{Center: math.Vec3{Y: 1}, Direction: math.Up, Radius: 0.5}

	tests := []struct {
		name  string
		steps int
		want  int
	}{
		{"default", 0, (2 + 2) * 5},
		{"off", NoJunctionSteps, 2 * 5},
		{"explicit", 1, 3 * 5},
	}
	for _, tt := range tests {
		b := NewBuilder(Options{RingSides: 5, JunctionSteps: tt.steps})
		if !b.AddJunction(a, c, -1) {
			t.Fatalf("%s: junction rejected", tt.name)
		}
		bufs := b.Buffers()
		if got := bufs.VertexCount(); got != tt.want {
			t.Errorf("%s: got %d vertices, want %d", tt.name, got, tt.want)
		}
	}
}

func TestAddSegments(t *testing.T) {
	s1, _ := skeleton.NewSegment(math.Vec3{}, math.Vec3{Y: 1}, skeleton.KindFine)
	s1.Radius, s1.EndRadius = 0.5, 0.4
	s2, _ := skeleton.NewSegment(math.Vec3{Y: 1}, math.Vec3{X: 1, Y: 2}, skeleton.KindFine)
	invalid := skeleton.Segment{Start: math.Vec3{}, End: math.Vec3{}}

	b := NewBuilder(Options{RingSides: 6})
	if n := b.AddSegments([]skeleton.Segment{s1, s2, invalid}, 0.1); n != 2 {
		t.Errorf("added %d segments, want 2", n)
	}
	if b.Skipped() != 1 {
		t.Errorf("Skipped = %d, want 1", b.Skipped())
	}
	buf := b.Buffers()
	if buf.VertexCount() != 2*2*6 {
		t.Errorf("got %d vertices, want 24", buf.VertexCount())
	}
	// Radii are capped at 0.1.
	if r := ringRadius(buf, 0, 6, s1.Start); !near(r, 0.1) {
		t.Errorf("first ring radius %v, want 0.1", r)
	}
}

func TestVerticalPathFinite(t *testing.T) {
	b := NewBuilder(Options{TrueNormals: true})
	b.AddPath(line(math.Vec3{}, math.Vec3{Y: 1}, math.Vec3{Y: 2}, math.Vec3{Y: 1e-7 + 2, X: 1e-7}))
	buf := b.Buffers()
	if err := buf.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	good := func() Buffers {
		b := NewBuilder(Options{RingSides: 3})
		b.AddPath(line(math.Vec3{}, math.Vec3{Y: 1}))
		return b.Buffers()
	}

	tests := []struct {
		name    string
		mutate  func(*Buffers)
		wantErr error
	}{
		{"valid", func(*Buffers) {}, nil},
		{"ragged indices", func(b *Buffers) { b.Indices = b.Indices[:len(b.Indices)-1] }, ErrIndexCount},
		{"index out of range", func(b *Buffers) { b.Indices[4] = 6 }, ErrIndexRange},
		{"short normals", func(b *Buffers) { b.Normals = b.Normals[:3] }, ErrAttributeLength},
		{"short uvs", func(b *Buffers) { b.UVs = b.UVs[:2] }, ErrAttributeLength},
		{"nan position", func(b *Buffers) { b.Positions[1] = float32(gomath.NaN()) }, ErrNonFinite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := good()
			tt.mutate(&buf)
			err := buf.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAppend(t *testing.T) {
	a := NewBuilder(Options{RingSides: 4})
	a.AddPath(line(math.Vec3{}, math.Vec3{Y: 1}))
	b := NewBuilder(Options{RingSides: 4})
	b.AddPath(line(math.Vec3{X: 5}, math.Vec3{X: 5, Y: 1}, math.Vec3{X: 5, Y: 2}))

	out := a.Buffers()
	out.Append(b.Buffers())
	if out.VertexCount() != 8+12 || out.TriangleCount() != 8+16 {
		t.Errorf("got %d verts %d tris", out.VertexCount(), out.TriangleCount())
	}
	if err := out.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if first := out.Indices[8*3]; first < 8 {
		t.Errorf("appended indices not rebased: first is %d", first)
	}
}

func TestAppendMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	var b Buffers
	b.Append(Buffers{Positions: []float32{0, 0, 0}})
}

func TestBounds(t *testing.T) {
	var empty Buffers
	if empty.Bounds() != (Bounds{}) {
		t.Error("empty bounds should be zero")
	}

	b := NewBuilder(Options{RingSides: 4})
	b.AddPath(line(math.Vec3{Y: 1}, math.Vec3{Y: 3}))
	buf := b.Buffers()
	bounds := buf.Bounds()
	if !near(bounds.Min[1], 1) || !near(bounds.Max[1], 3) {
		t.Errorf("y range %v..%v, want 1..3", bounds.Min[1], bounds.Max[1])
	}
	if !near(bounds.Max[0], 1) || !near(bounds.Min[0], -1) {
		t.Errorf("x range %v..%v, want -1..1", bounds.Min[0], bounds.Max[0])
	}
}

func TestOptionsValidate(t *testing.T) {
	if err := (Options{}).Validate(); err != nil {
		t.Errorf("zero options: %v", err)
	}
	if err := (Options{RingSides: 2}).Validate(); !errors.Is(err, ErrRingSides) {
		t.Errorf("got %v, want ErrRingSides", err)
	}
	if got := NewBuilder(Options{RingSides: 2}).Options().RingSides; got != 3 {
		t.Errorf("RingSides = %d, want 3", got)
	}
}
