package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/config-merger/internal/application"
	"github.com/eugenenazirov/config-merger/internal/config"
	"github.com/eugenenazirov/config-merger/internal/logging"
)

func main() {
	kingpinApp, overrides := newCLI()
	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	cfg, err := config.Load(overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := application.New(cfg, logger).Run(); err != nil {
		logger.Fatal("config merge failed", zap.Error(err))
	}
}

// newCLI declares the command line and binds parsed values to overrides.
func newCLI() (*kingpin.Application, *config.CLIOverrides) {
	overrides := &config.CLIOverrides{}
	var cpuinfo, logLevel, logFormat string

	app := kingpin.New("config-merger", "Merges default.yml, user.yml and forced.yml into the runtime config")
	app.Arg("defaults_dir", "Directory holding the baked-in default.yml and forced.yml").Required().StringVar(&overrides.DefaultsDir)
	app.Arg("user_config_path", "Persistent user overlay, created from defaults when missing").Required().StringVar(&overrides.UserConfigPath)
	app.Arg("output_config_path", "Destination of the merged config").Required().StringVar(&overrides.OutputConfigPath)
	app.Arg("debug_copy_path", "Optional copy of the merged config for inspection").StringVar(&overrides.DebugCopyPath)
	app.Flag("cpuinfo", "Hardware descriptor used to derive the node id").StringVar(&cpuinfo)
	app.Flag("log-level", "Log level (debug, info, warn, error)").StringVar(&logLevel)
	app.Flag("log-format", "Log encoding (console, json)").StringVar(&logFormat)

	overrides.CPUInfoPath = &cpuinfo
	overrides.LogLevel = &logLevel
	overrides.LogFormat = &logFormat

	return app, overrides
}
