// treeview is an interactive previewer for generated trees.
//
// Keys: N new seed, M toggle mode, L toggle skeleton wireframe,
// 1-6 select species, Esc quit. Drag to orbit, scroll to zoom.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/arbor/internal/config"
	"github.com/Faultbox/arbor/internal/logger"
	"github.com/Faultbox/arbor/internal/viewer"
)

func main() {
	flags := config.BindFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.LogFile()); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Arbor tree viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	reg, err := cfg.Registry()
	if err != nil {
		logger.Error("failed to load species", zap.Error(err))
		os.Exit(1)
	}

	app, err := viewer.New(cfg, reg, logger.Log.Named("viewer"))
	if err != nil {
		logger.Error("failed to start viewer", zap.Error(err))
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("viewer closed normally")
}
