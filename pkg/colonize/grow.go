package colonize

import (
	"math/rand"

	"github.com/Faultbox/arbor/pkg/math"
	"github.com/Faultbox/arbor/pkg/skeleton"
)

// radiusDecay shrinks a tip's radius each time it grows.
const radiusDecay = 0.92

type tipState struct {
	Tip
	radius float32
}

// Grow runs space colonization seeded from the endpoints of skel.
//
// Every round, each tip sums the unit directions to all active points within
// InfluenceRadius weighted by 1-d/InfluenceRadius, and moves StepSize along
// the normalized sum. Tips with nothing in range stay put. After the moves,
// points within KillRadius of any tip are deactivated for good. Growth stops
// after MaxIterations rounds, when no tip moved, or when no points remain.
func Grow(skel []skeleton.Segment, crown Crown, cfg Config, rng *rand.Rand) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if err := crown.Validate(); err != nil {
		return Result{}, err
	}

	points := Distribute(crown, cfg.PointDensity, cfg.UniformArea, rng)

	tips := make([]tipState, 0, len(skel))
	for _, s := range skel {
		if !s.Valid() {
			continue
		}
		tips = append(tips, tipState{
			Tip:    Tip{Position: s.End, Direction: s.Direction},
			radius: s.EndRadius,
		})
	}

	res := Result{}
	active := len(points)
	res.ActiveHistory = append(res.ActiveHistory, active)

	moves := make([]math.Vec3, len(tips))
	for round := 0; round < cfg.MaxIterations && active > 0; round++ {
		moved := false
		for i := range tips {
			moves[i] = growthVector(tips[i].Position, points, cfg.InfluenceRadius)
		}
		for i := range tips {
			dir, ok := skeleton.Direction(moves[i])
			if !ok {
				continue
			}
			t := &tips[i]
			end := t.Position.Add(dir.Scale(cfg.StepSize))
			seg, ok := skeleton.NewSegment(t.Position, end, skeleton.KindFine)
			if !ok {
				continue
			}
			seg.Radius = t.radius
			seg.EndRadius = t.radius * radiusDecay
			res.Segments = append(res.Segments, seg)

			t.Position = end
			t.Direction = seg.Direction
			t.radius = seg.EndRadius
			t.Grown++
			moved = true
		}
		if !moved {
			break
		}
		res.Rounds++

		active = consume(points, tips, cfg.KillRadius, &res.Leaves)
		res.ActiveHistory = append(res.ActiveHistory, active)
	}

	res.Points = points
	res.Tips = make([]Tip, len(tips))
	for i := range tips {
		res.Tips[i] = tips[i].Tip
	}
	return res, nil
}

// growthVector sums weighted directions toward active points in range.
// The zero vector means nothing attracts the tip.
func growthVector(pos math.Vec3, points []Point, influence float32) math.Vec3 {
	var sum math.Vec3
	for _, p := range points {
		if !p.Active {
			continue
		}
		delta := p.Position.Sub(pos)
		d := delta.Length()
		if d >= influence || d == 0 {
			continue
		}
		w := 1 - d/influence
		sum = sum.Add(delta.Scale(w / d))
	}
	return sum
}

// consume deactivates points within kill radius of any tip, appends a leaf
// anchor per consumed point and returns the remaining active count.
func consume(points []Point, tips []tipState, kill float32, leaves *[]skeleton.LeafCluster) int {
	active := 0
	for i := range points {
		p := &points[i]
		if !p.Active {
			continue
		}
		for j := range tips {
			if tips[j].Position.Distance(p.Position) <= kill {
				p.Active = false
				*leaves = append(*leaves, skeleton.LeafCluster{
					Position:  p.Position,
					Direction: tips[j].Direction,
				})
				break
			}
		}
		if p.Active {
			active++
		}
	}
	return active
}
