package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/arbor/internal/config"
	"github.com/Faultbox/arbor/pkg/species"
	"github.com/Faultbox/arbor/pkg/tree"
)

type stressSummary struct {
	Runs      int
	Vertices  int
	Triangles int
	Leaves    int
	Skipped   int
	Fallbacks int
	Elapsed   time.Duration
}

func (s *stressSummary) add(res *tree.Result) {
	s.Runs++
	s.Vertices += res.Branches.VertexCount() + res.Leaves.VertexCount()
	s.Triangles += res.Branches.TriangleCount() + res.Leaves.TriangleCount()
	s.Leaves += len(res.Instances)
	d := res.Diagnostics
	s.Skipped += d.SkippedSegments + d.SkippedNodes + d.SkippedPaths
	s.Fallbacks += d.LeafFallbacks
}

func (s *stressSummary) print(w io.Writer) {
	fmt.Fprintf(w, "Runs:      %d\n", s.Runs)
	fmt.Fprintf(w, "Vertices:  %d\n", s.Vertices)
	fmt.Fprintf(w, "Triangles: %d\n", s.Triangles)
	fmt.Fprintf(w, "Leaves:    %d\n", s.Leaves)
	fmt.Fprintf(w, "Skipped:   %d (leaf fallbacks %d)\n", s.Skipped, s.Fallbacks)
	if s.Runs > 0 {
		fmt.Fprintf(w, "Elapsed:   %v (%v per tree)\n", s.Elapsed.Round(time.Millisecond), s.Elapsed/time.Duration(s.Runs))
	}
}

// runStress generates cfg.Stress.Runs trees, cycling through every species
// and both modes with consecutive seeds. Each call validates its own
// buffers, so any error is a generator bug.
func runStress(cfg *config.Config, reg *species.Registry, log *zap.Logger, progress io.Writer) (stressSummary, error) {
	names := reg.Names()
	modes := []tree.Mode{tree.Hybrid, tree.Hierarchy}

	bar := progressbar.NewOptions(cfg.Stress.Runs,
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("generating"),
		progressbar.OptionShowCount(),
	)
	defer bar.Close()

	var (
		mu  sync.Mutex
		sum stressSummary
		g   errgroup.Group
	)
	g.SetLimit(max(cfg.Stress.Workers, 1))

	start := time.Now()
	for i := range cfg.Stress.Runs {
		profile := reg.Get(names[i%len(names)])
		opts := tree.Options{
			Seed:   cfg.Generation.Seed + int64(i),
			Mode:   modes[(i/len(names))%len(modes)],
			Mesh:   cfg.MeshOptions(),
			Logger: log,
		}
		g.Go(func() error {
			defer bar.Add(1)
			res, err := tree.Generate(profile, opts)
			if err != nil {
				return fmt.Errorf("%s seed %d %s: %w", profile.Name, opts.Seed, opts.Mode, err)
			}
			mu.Lock()
			sum.add(res)
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	sum.Elapsed = time.Since(start)
	return sum, err
}
