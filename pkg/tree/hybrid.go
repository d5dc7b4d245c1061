package tree

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/arbor/pkg/colonize"
	"github.com/Faultbox/arbor/pkg/grammar"
	"github.com/Faultbox/arbor/pkg/math"
	"github.com/Faultbox/arbor/pkg/mesh"
	"github.com/Faultbox/arbor/pkg/skeleton"
	"github.com/Faultbox/arbor/pkg/species"

	"go.uber.org/zap"
)

// referenceHeight is the trunk height the colonization defaults are tuned for.
const referenceHeight = 10

// GrammarConfig derives grammar parameters from a profile.
func GrammarConfig(p species.Profile) (grammar.Config, error) {
	cfg := grammar.DefaultConfig()
	cfg.BaseRadius = p.TrunkRadius
	// Profiles without a grammar fan the default rule out in the turtle
	// plane at their branch angle, one rewrite per branch level.
	if p.BranchAngle > 0 {
		cfg.Angle = p.BranchAngle * gomath.Pi / 180
	}
	if p.BranchLevels > 0 {
		cfg.Iterations = min(p.BranchLevels, grammar.MaxIterations)
	}
	cfg.LocalYaw = true
	if g := p.Grammar; g != nil {
		cfg.LocalYaw = g.LocalYaw
		if g.Axiom != "" {
			cfg.Axiom = g.Axiom
		}
		if len(g.Rules) > 0 {
			rules, err := grammar.RulesFromStrings(g.Rules)
			if err != nil {
				return cfg, fmt.Errorf("species %s: %w", p.Name, err)
			}
			cfg.Rules = rules
		}
		cfg.Iterations = g.Iterations
		if g.Angle != 0 {
			cfg.Angle = g.Angle * gomath.Pi / 180
		}
	}
	return cfg, nil
}

// ColonizeConfig derives colonization parameters scaled to the trunk height.
func ColonizeConfig(p species.Profile) colonize.Config {
	cfg := colonize.DefaultConfig()
	s := p.TrunkHeight / referenceHeight
	cfg.InfluenceRadius *= s
	cfg.KillRadius *= s
	cfg.StepSize *= s
	return cfg
}

// CrownFor places the colonization volume over the upper part of the trunk,
// wide enough to cover the skeleton's spread.
func CrownFor(p species.Profile, segs []skeleton.Segment) colonize.Crown {
	radius := p.BranchLength
	if len(segs) > 0 {
		b := skeleton.Bounds(segs)
		half := max(b[3]-b[0], b[5]-b[2]) / 2
		radius = max(radius, half)
	}
	return colonize.Crown{
		Center: math.Vec3{Y: p.TrunkHeight * 0.85},
		Radius: radius,
		Height: p.TrunkHeight * 0.6,
	}
}

func (r *run) hybrid() ([]skeleton.LeafCluster, error) {
	gcfg, err := GrammarConfig(r.profile)
	if err != nil {
		return nil, err
	}
	if r.opts.Grammar != nil {
		gcfg = *r.opts.Grammar
	}
	gres, err := grammar.Generate(gcfg, r.rng)
	if err != nil {
		return nil, fmt.Errorf("grammar: %w", err)
	}
	r.log.Debug("grammar expanded",
		zap.Int("symbols", gres.Stats.Symbols),
		zap.Int("draws", gres.Stats.Draws),
		zap.Int("max_depth", gres.Stats.Depth))

	segs, dropped := skeleton.Filter(gres.Segments)
	r.res.Diagnostics.SkippedSegments = gres.Dropped + dropped
	terminals := fitToTrunk(segs, gres.Terminals, gcfg.Origin, r.profile)
	r.res.Skeleton = segs

	b := mesh.NewBuilder(r.opts.Mesh)
	paths := skeleton.Chains(segs)
	for _, p := range paths {
		if !b.AddPath(p) {
			continue
		}
		parent, ok := parentOf(segs, p)
		if !ok {
			continue
		}
		rings, ok := b.Rings(p)
		if !ok {
			continue
		}
		joint := mesh.Ring{Center: parent.End, Direction: parent.Direction, Radius: parent.EndRadius}
		b.AddJunction(joint, rings[0], -1)
	}

	ccfg := ColonizeConfig(r.profile)
	if r.opts.Colonize != nil {
		ccfg = *r.opts.Colonize
	}
	cres, err := colonize.Grow(segs, CrownFor(r.profile, segs), ccfg, r.rng)
	if err != nil {
		return nil, fmt.Errorf("colonize: %w", err)
	}
	r.res.FineSegments = cres.Segments
	r.res.Diagnostics.ColonizationRounds = cres.Rounds
	r.res.Diagnostics.ActivePoints = cres.ActiveCount()
	b.AddSegments(cres.Segments, r.profile.TrunkRadius*0.1)

	r.res.Branches = b.Buffers()
	r.res.Diagnostics.SkippedPaths = b.Skipped()

	anchors := make([]skeleton.LeafCluster, 0, len(cres.Leaves)+len(terminals))
	anchors = append(anchors, cres.Leaves...)
	anchors = append(anchors, terminals...)
	return anchors, nil
}

// fitToTrunk scales segment positions about origin so the skeleton is as
// tall as the trunk, and scales radii so the first segment starts at the
// trunk radius. Terminals move with the segments.
func fitToTrunk(segs []skeleton.Segment, terminals []skeleton.LeafCluster, origin math.Vec3, p species.Profile) []skeleton.LeafCluster {
	if len(segs) == 0 {
		return terminals
	}
	var top float32
	for _, s := range segs {
		top = max(top, s.Start.Y-origin.Y, s.End.Y-origin.Y)
	}
	scale := float32(1)
	if top > 0 {
		scale = p.TrunkHeight / top
	}
	radiusScale := float32(1)
	if segs[0].Radius > 0 {
		radiusScale = p.TrunkRadius / segs[0].Radius
	}

	at := func(v math.Vec3) math.Vec3 {
		return origin.Add(v.Sub(origin).Scale(scale))
	}
	for i := range segs {
		s := &segs[i]
		s.Start = at(s.Start)
		s.End = at(s.End)
		s.Length *= scale
		s.Radius *= radiusScale
		s.EndRadius *= radiusScale
	}
	out := make([]skeleton.LeafCluster, len(terminals))
	for i, t := range terminals {
		out[i] = skeleton.LeafCluster{Position: at(t.Position), Direction: t.Direction}
	}
	return out
}

// parentOf finds the last shallower segment ending where the path starts.
func parentOf(segs []skeleton.Segment, p skeleton.Path) (skeleton.Segment, bool) {
	if p.Len() == 0 {
		return skeleton.Segment{}, false
	}
	start := p.Points[0]
	for i := len(segs) - 1; i >= 0; i-- {
		s := segs[i]
		if s.Depth < p.Depth && s.End.Distance(start) < 1e-5 {
			return s, true
		}
	}
	return skeleton.Segment{}, false
}
