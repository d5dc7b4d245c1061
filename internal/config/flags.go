package config

import "flag"

// Flags are the command-line overrides shared by the binaries.
type Flags struct {
	fs *flag.FlagSet

	Config    string
	Debug     bool
	Species   string
	Seed      int64
	Mode      string
	Out       string
	Lines     bool
	Normals   bool
	Sides     int
	Billboard bool
	Runs      int
	Workers   int
	Width     int
	Height    int
}

// BindFlags registers the flags on fs. Parse fs before calling Load.
func BindFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging and skeleton lines")
	fs.StringVar(&f.Species, "species", "", "Species name")
	fs.Int64Var(&f.Seed, "seed", 0, "Random seed")
	fs.StringVar(&f.Mode, "mode", "", "Generation mode: hybrid or hierarchy")
	fs.StringVar(&f.Out, "out", "", "Output directory")
	fs.BoolVar(&f.Lines, "lines", false, "Also write the skeleton wireframe")
	fs.BoolVar(&f.Normals, "true-normals", false, "Emit radial normals")
	fs.IntVar(&f.Sides, "sides", 0, "Vertices per branch ring")
	fs.BoolVar(&f.Billboard, "billboard", false, "Center quad leaves on their anchors")
	fs.IntVar(&f.Runs, "runs", 0, "Stress runs")
	fs.IntVar(&f.Workers, "workers", 0, "Stress workers")
	fs.IntVar(&f.Width, "width", 0, "Window width")
	fs.IntVar(&f.Height, "height", 0, "Window height")
	return f
}

// ConfigPath returns the explicit config path if provided via --config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return f.Config
}

// apply copies the flags that were set onto cfg.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	set := map[string]bool{}
	if f.fs != nil {
		f.fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	}

	if f.Debug {
		cfg.Logging.Level = "debug"
		cfg.Generation.Debug = true
	}
	if f.Species != "" {
		cfg.Generation.Species = f.Species
	}
	if set["seed"] {
		cfg.Generation.Seed = f.Seed
	}
	if f.Mode != "" {
		cfg.Generation.Mode = f.Mode
	}
	if f.Out != "" {
		cfg.Output.Dir = f.Out
	}
	if f.Lines {
		cfg.Output.Lines = true
	}
	if f.Normals {
		cfg.Generation.TrueNormals = true
	}
	if f.Sides > 0 {
		cfg.Generation.RingSides = f.Sides
	}
	if f.Billboard {
		cfg.Generation.Billboard = true
	}
	if f.Runs > 0 {
		cfg.Stress.Runs = f.Runs
	}
	if f.Workers > 0 {
		cfg.Stress.Workers = f.Workers
	}
	if f.Width > 0 {
		cfg.Viewer.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Viewer.Height = f.Height
	}
}
