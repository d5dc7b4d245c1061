// Package tree generates a complete tree mesh from a species profile.
//
// Two modes share the mesh and leaf stages. Hybrid grows a skeleton with the
// growth grammar and refines the crown with space colonization. Hierarchy
// subdivides the trunk recursively from level-indexed arrays, the way the
// legacy presets were tuned.
package tree

import (
	"errors"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/Faultbox/arbor/pkg/colonize"
	"github.com/Faultbox/arbor/pkg/grammar"
	"github.com/Faultbox/arbor/pkg/hierarchy"
	"github.com/Faultbox/arbor/pkg/leaf"
	"github.com/Faultbox/arbor/pkg/mesh"
	"github.com/Faultbox/arbor/pkg/skeleton"
	"github.com/Faultbox/arbor/pkg/species"
)

// Generation errors.
var (
	ErrInvalidMesh = errors.New("generated mesh failed validation")
	ErrUnknownMode = errors.New("unknown generation mode")
)

// Mode selects the skeleton source.
type Mode uint8

const (
	Hybrid    Mode = iota // grammar skeleton plus space colonization
	Hierarchy             // recursive level-indexed subdivision
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Hybrid:
		return "hybrid"
	case Hierarchy:
		return "hierarchy"
	default:
		return "unknown"
	}
}

// ParseMode maps a name to a Mode.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "hybrid", "":
		return Hybrid, nil
	case "hierarchy":
		return Hierarchy, nil
	default:
		return Hybrid, fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
}

// Options controls one generation call. Nil component configs are derived
// from the species profile. Zero Mesh fields take the mesh defaults and a
// zero Leaf takes the profile's leaf settings.
type Options struct {
	Seed int64
	Mode Mode

	Grammar   *grammar.Config
	Colonize  *colonize.Config
	Hierarchy *hierarchy.Config

	Mesh mesh.Options
	Leaf leaf.Options

	// Debug fills Result.Lines with the skeleton wireframe and its bounding box.
	Debug bool

	Logger *zap.Logger
}

// Diagnostics counts the anomalies that were recovered from.
type Diagnostics struct {
	SkippedSegments    int // degenerate grammar moves and filtered segments
	SkippedNodes       int // hierarchy children with a degenerate direction
	SkippedPaths       int // paths, segments and junctions the mesh builder rejected
	LeafFallbacks      int // leaf anchors without a usable direction
	ColonizationRounds int
	ActivePoints       int // attraction points left unconsumed
}

// Result is everything one call produces. Nothing is retained by the package.
type Result struct {
	Profile species.Profile
	Seed    int64
	Mode    Mode

	Branches mesh.Buffers
	Leaves   mesh.Buffers

	Skeleton     []skeleton.Segment
	FineSegments []skeleton.Segment
	LeafClusters []skeleton.LeafCluster
	Instances    []leaf.Transform

	// Lines holds xyz endpoint pairs for wireframe display; set when Debug is on.
	Lines []float32

	Diagnostics Diagnostics
}

// SegmentCount returns the number of skeleton and fine segments.
func (r *Result) SegmentCount() int {
	return len(r.Skeleton) + len(r.FineSegments)
}

// run carries per-call state. Every random draw of a call comes from rng in
// a fixed order, which makes the output a function of the seed.
type run struct {
	profile species.Profile
	opts    Options
	rng     *rand.Rand
	log     *zap.Logger
	res     *Result
}

// GenerateNamed looks up a preset by name, falling back to the default
// species, and generates it.
func GenerateNamed(name string, opts Options) (*Result, error) {
	return Generate(species.Lookup(name), opts)
}

// Generate builds one tree. Errors are returned only for invalid
// configuration or when the finished buffers fail validation.
func Generate(profile species.Profile, opts Options) (*Result, error) {
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("species: %w", err)
	}
	if err := opts.Mesh.Validate(); err != nil {
		return nil, fmt.Errorf("mesh options: %w", err)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := &run{
		profile: profile,
		opts:    opts,
		rng:     rand.New(rand.NewSource(opts.Seed)),
		log:     log.With(zap.String("species", profile.Name), zap.Int64("seed", opts.Seed)),
		res:     &Result{Profile: profile, Seed: opts.Seed, Mode: opts.Mode},
	}

	var anchors []skeleton.LeafCluster
	var err error
	switch opts.Mode {
	case Hybrid:
		anchors, err = r.hybrid()
	case Hierarchy:
		anchors, err = r.hierarchy()
	default:
		err = fmt.Errorf("%w: %d", ErrUnknownMode, opts.Mode)
	}
	if err != nil {
		return nil, err
	}

	if err := r.placeLeaves(anchors); err != nil {
		return nil, err
	}
	if opts.Debug {
		r.debugLines()
	}
	if err := r.validate(); err != nil {
		return nil, err
	}

	d := r.res.Diagnostics
	if d.SkippedSegments+d.SkippedNodes+d.SkippedPaths > 0 {
		r.log.Warn("recovered from degenerate geometry",
			zap.Int("skipped_segments", d.SkippedSegments),
			zap.Int("skipped_nodes", d.SkippedNodes),
			zap.Int("skipped_paths", d.SkippedPaths))
	}
	r.log.Debug("tree generated",
		zap.Stringer("mode", opts.Mode),
		zap.Int("segments", r.res.SegmentCount()),
		zap.Int("branch_vertices", r.res.Branches.VertexCount()),
		zap.Int("leaf_vertices", r.res.Leaves.VertexCount()))
	return r.res, nil
}

// leafOptions returns the explicit leaf options or the profile's.
func (r *run) leafOptions() leaf.Options {
	if r.opts.Leaf != (leaf.Options{}) {
		return r.opts.Leaf
	}
	style := leaf.Quad
	if r.profile.LeafType == species.LeafSolid {
		style = leaf.Solid
	}
	return leaf.Options{
		Style:    style,
		Radius:   r.profile.LeafRadius,
		ScaleMin: r.profile.LeafScaleMin,
		ScaleMax: r.profile.LeafScaleMax,
	}
}

func (r *run) placeLeaves(anchors []skeleton.LeafCluster) error {
	opts := r.leafOptions()
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("leaf options: %w", err)
	}
	placed := leaf.Place(anchors, opts, r.rng)
	r.res.LeafClusters = anchors
	// Append checks the attribute slices agree and panics on a mismatch.
	r.res.Leaves.Append(placed.Buffers)
	r.res.Instances = placed.Instances
	r.res.Diagnostics.LeafFallbacks = placed.Fallbacks
	return nil
}

func (r *run) debugLines() {
	all := make([]skeleton.Segment, 0, r.res.SegmentCount())
	all = append(all, r.res.Skeleton...)
	all = append(all, r.res.FineSegments...)
	lines := skeleton.Lines(all)
	if len(all) > 0 {
		lines = append(lines, skeleton.BoxLines(skeleton.Bounds(all))...)
	}
	r.res.Lines = lines
}

func (r *run) validate() error {
	if err := r.res.Branches.Validate(); err != nil {
		return fmt.Errorf("%w: branches: %w", ErrInvalidMesh, err)
	}
	if err := r.res.Leaves.Validate(); err != nil {
		return fmt.Errorf("%w: leaves: %w", ErrInvalidMesh, err)
	}
	return nil
}
