// Package config handles treegen and treeview configuration loading.
package config

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/arbor/internal/logger"
	"github.com/Faultbox/arbor/pkg/leaf"
	"github.com/Faultbox/arbor/pkg/mesh"
	"github.com/Faultbox/arbor/pkg/species"
	"github.com/Faultbox/arbor/pkg/tree"
)

// FileName is the config file looked up in the working and config directories.
const FileName = "treegen.yaml"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all settings.
type Config struct {
	Generation GenerationConfig  `yaml:"generation"`
	Output     OutputConfig      `yaml:"output"`
	Stress     StressConfig      `yaml:"stress"`
	Viewer     ViewerConfig      `yaml:"viewer"`
	Logging    LoggingConfig     `yaml:"logging"`
	Species    []species.Profile `yaml:"species,omitempty"` // custom profiles added to the presets
}

// GenerationConfig holds the parameters of a generation call.
type GenerationConfig struct {
	Species       string `yaml:"species"`
	SpeciesFile   string `yaml:"species_file"` // extra profiles in species.File layout
	Seed          int64  `yaml:"seed"`
	Mode          string `yaml:"mode"` // hybrid or hierarchy
	RingSides     int    `yaml:"ring_sides"`
	JunctionSteps int    `yaml:"junction_steps"`
	TrueNormals   bool   `yaml:"true_normals"`
	Billboard     bool   `yaml:"billboard"`
	Debug         bool   `yaml:"debug"`
}

// OutputConfig holds file output settings.
type OutputConfig struct {
	Dir   string `yaml:"dir"`
	Lines bool   `yaml:"lines"` // also write the skeleton wireframe
}

// StressConfig holds the randomized sweep settings.
type StressConfig struct {
	Runs    int `yaml:"runs"`
	Workers int `yaml:"workers"`
}

// ViewerConfig holds display settings for treeview.
type ViewerConfig struct {
	Width      int        `yaml:"width"`
	Height     int        `yaml:"height"`
	Fullscreen bool       `yaml:"fullscreen"`
	VSync      bool       `yaml:"vsync"`
	Samples    int        `yaml:"samples"` // multisample count, 0 for none
	Wireframe  bool       `yaml:"wireframe"`
	Background [3]float32 `yaml:"background"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Generation: GenerationConfig{
			Species:       species.DefaultName,
			Seed:          42,
			Mode:          tree.Hybrid.String(),
			RingSides:     8,
			JunctionSteps: 2,
		},
		Output: OutputConfig{
			Dir: ".",
		},
		Stress: StressConfig{
			Runs:    200,
			Workers: 4,
		},
		Viewer: ViewerConfig{
			Width:      1280,
			Height:     720,
			VSync:      true,
			Samples:    4,
			Background: [3]float32{0.55, 0.68, 0.80},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks values that would otherwise fail deep inside generation.
func (c *Config) Validate() error {
	if _, err := tree.ParseMode(c.Generation.Mode); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.MeshOptions().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Generation.JunctionSteps < 0 {
		return fmt.Errorf("%w: junction steps %d", ErrInvalidConfig, c.Generation.JunctionSteps)
	}
	if c.Stress.Runs < 0 || c.Stress.Workers < 0 {
		return fmt.Errorf("%w: stress runs and workers must be non-negative", ErrInvalidConfig)
	}
	if c.Viewer.Width <= 0 || c.Viewer.Height <= 0 {
		return fmt.Errorf("%w: viewer size %dx%d", ErrInvalidConfig, c.Viewer.Width, c.Viewer.Height)
	}
	if c.Viewer.Samples < 0 || c.Viewer.Samples > 16 {
		return fmt.Errorf("%w: viewer samples %d not in [0, 16]", ErrInvalidConfig, c.Viewer.Samples)
	}
	return nil
}

// MeshOptions returns the mesh builder options. A junction_steps of 0
// turns junction smoothing off.
func (c *Config) MeshOptions() mesh.Options {
	steps := c.Generation.JunctionSteps
	if steps == 0 {
		steps = mesh.NoJunctionSteps
	}
	return mesh.Options{
		RingSides:     c.Generation.RingSides,
		JunctionSteps: steps,
		TrueNormals:   c.Generation.TrueNormals,
	}
}

// TreeOptions returns generator options for seed. Leaf settings come from
// the species unless billboards are requested.
func (c *Config) TreeOptions(profile species.Profile, seed int64, log *zap.Logger) tree.Options {
	mode, _ := tree.ParseMode(c.Generation.Mode)
	opts := tree.Options{
		Seed:   seed,
		Mode:   mode,
		Mesh:   c.MeshOptions(),
		Debug:  c.Generation.Debug || c.Output.Lines,
		Logger: log,
	}
	if c.Generation.Billboard && profile.LeafType != species.LeafSolid {
		opts.Leaf = leaf.Options{
			Style:     leaf.Quad,
			Radius:    profile.LeafRadius,
			ScaleMin:  profile.LeafScaleMin,
			ScaleMax:  profile.LeafScaleMax,
			Billboard: true,
		}
	}
	return opts
}

// Registry returns the presets plus the profiles from the config and the
// species file.
func (c *Config) Registry() (*species.Registry, error) {
	reg := species.NewRegistry()
	for _, p := range c.Species {
		if p.LeafType == "" {
			p.LeafType = species.LeafQuad
		}
		if err := reg.Register(p); err != nil {
			return nil, fmt.Errorf("config species: %w", err)
		}
	}
	if c.Generation.SpeciesFile != "" {
		profiles, err := species.LoadFile(c.Generation.SpeciesFile)
		if err != nil {
			return nil, fmt.Errorf("species file %s: %w", c.Generation.SpeciesFile, err)
		}
		for _, p := range profiles {
			if err := reg.Register(p); err != nil {
				return nil, err
			}
		}
	}
	return reg, nil
}

// LogFile returns the rotating file settings, empty when file logging is off.
func (c *Config) LogFile() logger.FileConfig {
	if c.Logging.LogFile == "" {
		return logger.FileConfig{}
	}
	return logger.DefaultFileConfig(c.Logging.LogFile)
}
