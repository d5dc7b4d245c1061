package hierarchy

import (
	gomath "math"
	"math/rand"

	"go.uber.org/zap"

	"github.com/Faultbox/arbor/pkg/math"
	"github.com/Faultbox/arbor/pkg/skeleton"
)

// Stats summarizes a Build run.
type Stats struct {
	Nodes   int
	Skipped int                    // children dropped for a degenerate direction or origin
	Leaves  []skeleton.LeafCluster // one per terminal node
}

type builder struct {
	cfg   Config
	rng   *rand.Rand
	log   *zap.Logger
	stats Stats
}

// Build grows the branch tree from the root at cfg.Origin pointing up.
// Nodes at MaxLevels are terminal and record a leaf cluster at their tip.
// The config is assumed valid; see Config.Validate.
func Build(cfg Config, rng *rand.Rand, log *zap.Logger) (*Node, Stats) {
	if log == nil {
		log = zap.NewNop()
	}
	b := &builder{cfg: cfg, rng: rng, log: log}

	root := &Node{
		Origin:      cfg.Origin,
		Orientation: math.QuatIdentity(),
		Direction:   math.Up,
		Length:      cfg.length(0),
		Radius:      cfg.radius(0),
		Curve:       cfg.curve(0),
		Sections:    cfg.sections(0),
		Segments:    cfg.segments(0),
	}
	b.grow(root)
	return root, b.stats
}

func (b *builder) grow(n *Node) {
	b.stats.Nodes++
	if n.Level >= b.cfg.MaxLevels {
		b.stats.Leaves = append(b.stats.Leaves, skeleton.LeafCluster{
			Position:  n.Tip(),
			Direction: n.Direction,
		})
		return
	}

	level := n.Level + 1
	count := b.cfg.children(n.Level)
	offset := b.rng.Float64()
	start := b.cfg.start(level)
	tilt := math.QuatFromAxisAngle(math.Right, b.cfg.angle(level))

	n.Children = make([]Node, 0, count)
	for i := 0; i < count; i++ {
		slot := 2 * gomath.Pi * (offset + float64(i)/float64(count))
		yaw := math.QuatFromAxisAngle(math.Up, float32(slot))
		orientation := n.Orientation.Mul(yaw.Mul(tilt)).Normalize()

		length := b.cfg.length(level)
		if b.cfg.Jitter > 0 {
			length *= 1 + b.cfg.Jitter*(b.rng.Float32()*2-1)
		}

		dir, ok := skeleton.Direction(orientation.Rotate(math.Up))
		if !ok {
			b.skip(level, i, "invalid direction")
			continue
		}

		frac := start
		if b.cfg.Stagger && count > 1 {
			frac = start + (1-start)*float32(i)/float32(count)
		}
		origin := n.Origin.Add(n.Direction.Scale(n.Length * frac))
		if !origin.IsFinite() || !(length > 0) {
			b.skip(level, i, "degenerate origin or length")
			continue
		}

		child := Node{
			Origin:      origin,
			Orientation: orientation,
			Direction:   dir,
			Length:      length,
			Radius:      b.cfg.radius(level),
			Curve:       b.cfg.curve(level),
			Level:       level,
			Sections:    b.cfg.sections(level),
			Segments:    b.cfg.segments(level),
			Offset:      frac,
		}
		b.grow(&child)
		n.Children = append(n.Children, child)
	}
}

func (b *builder) skip(level, slot int, reason string) {
	b.stats.Skipped++
	b.log.Warn("skipping branch",
		zap.Int("level", level),
		zap.Int("slot", slot),
		zap.String("reason", reason))
}
