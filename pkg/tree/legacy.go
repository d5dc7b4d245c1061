package tree

import (
	"fmt"

	"github.com/Faultbox/arbor/pkg/hierarchy"
	"github.com/Faultbox/arbor/pkg/mesh"
	"github.com/Faultbox/arbor/pkg/skeleton"
)

func (r *run) hierarchy() ([]skeleton.LeafCluster, error) {
	cfg := hierarchy.FromProfile(r.profile)
	if r.opts.Hierarchy != nil {
		cfg = *r.opts.Hierarchy
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("hierarchy: %w", err)
	}

	root, stats := hierarchy.Build(cfg, r.rng, r.log)
	r.res.Diagnostics.SkippedNodes = stats.Skipped
	r.res.Skeleton = root.SkeletonSegments()

	opts := r.opts.Mesh
	if opts.RingSides == 0 && root.Segments >= 3 {
		opts.RingSides = root.Segments
	}
	b := mesh.NewBuilder(opts)
	root.Walk(func(n *hierarchy.Node) {
		p, ok := n.Path()
		if !ok {
			r.res.Diagnostics.SkippedPaths++
			return
		}
		if !b.AddPath(p) {
			return
		}
		for i := range n.Children {
			child := &n.Children[i]
			cp, ok := child.Path()
			if !ok {
				continue
			}
			rings, ok := b.Rings(cp)
			if !ok {
				continue
			}
			joint := mesh.Ring{
				Center:    child.Origin,
				Direction: n.Direction,
				Radius:    n.RadiusAt(child.Offset),
			}
			b.AddJunction(joint, rings[0], -1)
		}
	})
	r.res.Branches = b.Buffers()
	r.res.Diagnostics.SkippedPaths += b.Skipped()

	return stats.Leaves, nil
}
