// treegen is a CLI for generating procedural tree meshes.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/arbor/internal/config"
	"github.com/Faultbox/arbor/internal/logger"
	"github.com/Faultbox/arbor/pkg/mesh"
	"github.com/Faultbox/arbor/pkg/species"
	"github.com/Faultbox/arbor/pkg/tree"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "generate", "gen":
		cmdGenerate(args)
	case "species", "ls":
		cmdSpecies(args)
	case "stress":
		cmdStress(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`treegen - procedural tree mesh generator

Usage:
  treegen <command> [options]

Commands:
  generate [file.obj]        Generate one tree and write it as OBJ
  species [-yaml] [name...]  List species or dump their profiles as YAML
  stress                     Generate many trees in parallel and check them
  config [-save] [file]      Print the effective config, or write it

Common options:
  -config <file>    Config file (default ./treegen.yaml)
  -species <name>   Species preset or custom profile
  -seed <n>         Random seed
  -mode <mode>      hybrid or hierarchy
  -debug            Debug logging and skeleton lines

Examples:
  treegen generate -species pine -seed 42 -lines
  treegen species -yaml oak > oak.yaml
  treegen stress -runs 500 -workers 8
  treegen config -save -seed 7 -mode hierarchy`)
}

// setup parses fs, loads the config and starts the global logger.
func setup(fs *flag.FlagSet, args []string) (*config.Config, *species.Registry) {
	flags := config.BindFlags(fs)
	fs.Parse(args)

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.LogFile()); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	logger.Sugar.Debugf("Config: %+v", cfg)

	reg, err := cfg.Registry()
	if err != nil {
		logger.Error("failed to load species", zap.Error(err))
		os.Exit(1)
	}
	return cfg, reg
}

func cmdGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	cfg, reg := setup(fs, args)
	defer logger.Sync()

	profile := reg.Get(cfg.Generation.Species)
	seed := cfg.Generation.Seed
	res, err := tree.Generate(profile, cfg.TreeOptions(profile, seed, logger.Log.Named("tree")))
	if err != nil {
		logger.Error("generation failed", zap.String("species", profile.Name), zap.Error(err))
		os.Exit(1)
	}

	base := fmt.Sprintf("%s_%d", profile.Name, seed)
	outputPath := filepath.Join(cfg.Output.Dir, base+".obj")
	if fs.NArg() > 0 {
		outputPath = fs.Arg(0)
		base = strings.TrimSuffix(filepath.Base(outputPath), filepath.Ext(outputPath))
	}

	err = writeFile(outputPath, func(f *os.File) error {
		return mesh.WriteOBJ(f,
			mesh.Group{Name: "branches", Buffers: &res.Branches},
			mesh.Group{Name: "leaves", Buffers: &res.Leaves},
		)
	})
	if err != nil {
		logger.Error("failed to write mesh", zap.String("path", outputPath), zap.Error(err))
		os.Exit(1)
	}

	fmt.Printf("Species:   %s (%s, seed %d)\n", profile.Name, res.Mode, seed)
	fmt.Printf("Branches:  %d vertices, %d triangles\n", res.Branches.VertexCount(), res.Branches.TriangleCount())
	fmt.Printf("Leaves:    %d vertices, %d triangles (%d clusters)\n",
		res.Leaves.VertexCount(), res.Leaves.TriangleCount(), len(res.LeafClusters))
	fmt.Printf("Segments:  %d skeleton, %d fine\n", len(res.Skeleton), len(res.FineSegments))
	fmt.Printf("Written:   %s\n", outputPath)

	if cfg.Output.Lines && len(res.Lines) > 0 {
		linesPath := filepath.Join(filepath.Dir(outputPath), base+"_lines.obj")
		err := writeFile(linesPath, func(f *os.File) error {
			return mesh.WriteLinesOBJ(f, "skeleton", res.Lines)
		})
		if err != nil {
			logger.Error("failed to write lines", zap.String("path", linesPath), zap.Error(err))
			os.Exit(1)
		}
		fmt.Printf("Written:   %s\n", linesPath)
	}
}

func writeFile(path string, write func(*os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func cmdSpecies(args []string) {
	fs := flag.NewFlagSet("species", flag.ExitOnError)
	dump := fs.Bool("yaml", false, "Dump profiles as YAML")
	sorted := fs.Bool("sort", false, "List species alphabetically")
	_, reg := setup(fs, args)
	defer logger.Sync()

	names, err := speciesNames(reg, fs.Args(), *sorted)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if *dump {
		profiles := make([]species.Profile, 0, len(names))
		for _, name := range names {
			profiles = append(profiles, reg.Get(name))
		}
		data, err := species.Marshal(profiles)
		if err != nil {
			logger.Error("failed to marshal species", zap.Error(err))
			os.Exit(1)
		}
		os.Stdout.Write(data)
		return
	}

	fmt.Printf("%-12s %7s %7s %9s %7s %6s %s\n", "NAME", "HEIGHT", "RADIUS", "BRANCHES", "LEVELS", "LEAF", "GRAMMAR")
	for _, name := range names {
		p := reg.Get(name)
		grammar := "-"
		if p.Grammar != nil {
			grammar = fmt.Sprintf("%s x%d", p.Grammar.Axiom, p.Grammar.Iterations)
		}
		fmt.Printf("%-12s %7.2f %7.2f %9d %7d %6s %s\n",
			p.Name, p.TrunkHeight, p.TrunkRadius, p.NumBranches, p.BranchLevels, p.LeafType, grammar)
	}
}

// speciesNames resolves the names to list: the requested ones, or every
// registered profile.
func speciesNames(reg *species.Registry, args []string, sorted bool) ([]string, error) {
	if len(args) == 0 {
		if sorted {
			return reg.SortedNames(), nil
		}
		return reg.Names(), nil
	}
	names := make([]string, 0, len(args))
	for _, name := range args {
		if _, ok := reg.Lookup(name); !ok {
			return nil, fmt.Errorf("unknown species: %s", name)
		}
		names = append(names, name)
	}
	if sorted {
		slices.Sort(names)
	}
	return names, nil
}

func cmdConfig(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	save := fs.Bool("save", false, "Write to the user config directory")
	cfg, _ := setup(fs, args)
	defer logger.Sync()

	path, err := writeConfig(cfg, fs.Arg(0), *save, os.Stdout)
	if err != nil {
		logger.Error("failed to write config", zap.Error(err))
		os.Exit(1)
	}
	if path != "" {
		fmt.Printf("Written:   %s\n", path)
	}
}

// writeConfig saves cfg to path, or to the user config directory when save
// is set, or prints it to w. It returns the path written, if any.
func writeConfig(cfg *config.Config, path string, save bool, w io.Writer) (string, error) {
	switch {
	case path != "":
		return path, cfg.SaveTo(path)
	case save:
		return cfg.Save()
	}
	data, err := cfg.Marshal()
	if err != nil {
		return "", err
	}
	_, err = w.Write(data)
	return "", err
}

func cmdStress(args []string) {
	fs := flag.NewFlagSet("stress", flag.ExitOnError)
	cfg, reg := setup(fs, args)
	defer logger.Sync()

	fmt.Printf("Stress: %d runs on %d workers, seeds from %d\n", cfg.Stress.Runs, cfg.Stress.Workers, cfg.Generation.Seed)
	sum, err := runStress(cfg, reg, logger.Log.Named("stress"), os.Stderr)
	sum.print(os.Stdout)
	if err != nil {
		logger.Error("stress run failed", zap.Error(err))
		os.Exit(1)
	}
}
