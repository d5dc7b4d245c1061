package skeleton

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/arbor/pkg/math"
)

func TestNewSegment(t *testing.T) {
	nan := float32(gomath.NaN())

	tests := []struct {
		name   string
		start  math.Vec3
		end    math.Vec3
		wantOK bool
	}{
		{"vertical", math.Vec3{}, math.Vec3{X: 0, Y: 2, Z: 0}, true},
		{"diagonal", math.Vec3{X: 1, Y: 1, Z: 1}, math.Vec3{X: 2, Y: 3, Z: 4}, true},
		{"zero length", math.Vec3{X: 1, Y: 1, Z: 1}, math.Vec3{X: 1, Y: 1, Z: 1}, false},
		{"nan end", math.Vec3{}, math.Vec3{X: nan, Y: 1, Z: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg, ok := NewSegment(tt.start, tt.end, KindSkeleton)
			if ok != tt.wantOK {
				t.Fatalf("NewSegment ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if l := seg.Direction.Length(); l < 0.999 || l > 1.001 {
				t.Errorf("direction length = %v, want 1", l)
			}
			if got := tt.start.Distance(tt.end); gomath.Abs(float64(got-seg.Length)) > 1e-5 {
				t.Errorf("length = %v, want %v", seg.Length, got)
			}
			if !seg.Valid() {
				t.Error("segment built by NewSegment should be valid")
			}
		})
	}
}

func TestDirection(t *testing.T) {
	inf := float32(gomath.Inf(1))

	if _, ok := Direction(math.Vec3{}); ok {
		t.Error("zero vector must not be a direction")
	}
	if _, ok := Direction(math.Vec3{X: inf}); ok {
		t.Error("infinite vector must not be a direction")
	}
	d, ok := Direction(math.Vec3{X: 0, Y: 0, Z: -5})
	if !ok || d != (math.Vec3{X: 0, Y: 0, Z: -1}) {
		t.Errorf("Direction = %v, %v; want (0,0,-1), true", d, ok)
	}
}

func TestFilter(t *testing.T) {
	good, _ := NewSegment(math.Vec3{}, math.Vec3{X: 0, Y: 1, Z: 0}, KindSkeleton)
	bad := Segment{Start: math.Vec3{}, End: math.Vec3{}, Length: 0}

	kept, dropped := Filter([]Segment{good, bad, good})
	if len(kept) != 2 || dropped != 1 {
		t.Errorf("Filter kept %d dropped %d, want 2 and 1", len(kept), dropped)
	}
}

func TestChains(t *testing.T) {
	mk := func(a, b math.Vec3, depth int, r float32) Segment {
		s, _ := NewSegment(a, b, KindSkeleton)
		s.Depth = depth
		s.Radius = r
		s.EndRadius = r * 0.5
		return s
	}

	segs := []Segment{
		mk(math.Vec3{}, math.Vec3{X: 0, Y: 1, Z: 0}, 0, 1),
		mk(math.Vec3{X: 0, Y: 1, Z: 0}, math.Vec3{X: 0, Y: 2, Z: 0}, 0, 0.5),
		mk(math.Vec3{X: 0, Y: 1, Z: 0}, math.Vec3{X: 1, Y: 2, Z: 0}, 1, 0.3), // branch from the middle
		mk(math.Vec3{X: 0, Y: 2, Z: 0}, math.Vec3{X: 0, Y: 3, Z: 0}, 0, 0.25),
	}

	paths := Chains(segs)
	if len(paths) != 3 {
		t.Fatalf("got %d paths, want 3", len(paths))
	}
	if paths[0].Len() != 3 {
		t.Errorf("first path has %d points, want 3", paths[0].Len())
	}
	if len(paths[0].Radii) != paths[0].Len() {
		t.Errorf("radii %d != points %d", len(paths[0].Radii), paths[0].Len())
	}
	if paths[0].Radii[0] != 1 {
		t.Errorf("first radius = %v, want 1", paths[0].Radii[0])
	}
	if paths[1].Len() != 2 || paths[2].Len() != 2 {
		t.Errorf("branch/continuation paths = %d/%d points, want 2/2", paths[1].Len(), paths[2].Len())
	}
}

func TestPathRadiusAt(t *testing.T) {
	p := Path{
		Points: make([]math.Vec3, 4),
		Radius: 2,
	}
	want := []float32{2, 1.5, 1, 0.5}
	for i, w := range want {
		if got := p.RadiusAt(i); gomath.Abs(float64(got-w)) > 1e-6 {
			t.Errorf("RadiusAt(%d) = %v, want %v", i, got, w)
		}
	}

	p.Radii = []float32{4, 3, 2, 1}
	if got := p.RadiusAt(1); got != 3 {
		t.Errorf("explicit RadiusAt(1) = %v, want 3", got)
	}
}

func TestPathFinite(t *testing.T) {
	p := Path{Points: []math.Vec3{{}, {X: 0, Y: 1, Z: 0}}}
	if !p.Finite() {
		t.Error("path of regular points should be finite")
	}
	p.Points[1].Y = float32(gomath.NaN())
	if p.Finite() {
		t.Error("path with NaN should not be finite")
	}
}

func TestLines(t *testing.T) {
	s, _ := NewSegment(math.Vec3{X: 1, Y: 2, Z: 3}, math.Vec3{X: 4, Y: 5, Z: 6}, KindFine)
	lines := Lines([]Segment{s, s})
	if len(lines) != 12 {
		t.Fatalf("Lines length = %d, want 12", len(lines))
	}
	if lines[3] != 4 || lines[5] != 6 {
		t.Errorf("unexpected end vertex %v", lines[3:6])
	}
}

func TestBoundsAndBoxLines(t *testing.T) {
	a, _ := NewSegment(math.Vec3{X: -1, Y: 0, Z: 2}, math.Vec3{X: 3, Y: 4, Z: -5}, KindSkeleton)
	b := Bounds([]Segment{a})
	want := [6]float32{-1, 0, -5, 3, 4, 2}
	if b != want {
		t.Errorf("Bounds = %v, want %v", b, want)
	}

	box := BoxLines(b)
	if len(box) != BoxLineVertexCount*3 {
		t.Errorf("BoxLines returned %d floats, want %d", len(box), BoxLineVertexCount*3)
	}
}
