package application

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/config-merger/internal/config"
	"github.com/eugenenazirov/config-merger/internal/envfile"
	"github.com/eugenenazirov/config-merger/internal/loader"
	"github.com/eugenenazirov/config-merger/internal/merge"
	"github.com/eugenenazirov/config-merger/internal/nodeid"
	"github.com/eugenenazirov/config-merger/internal/storage"
)

// App runs one merge of the default, user and forced layers.
type App struct {
	cfg       config.Config
	logger    *zap.Logger
	resolver  *nodeid.Resolver
	generator *envfile.Generator
}

// Option customises App construction.
type Option func(*options)

type options struct {
	source nodeid.Source
}

// WithIdentitySource replaces the cpuinfo-backed hardware identity source.
func WithIdentitySource(source nodeid.Source) Option {
	return func(o *options) {
		o.source = source
	}
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger, opts ...Option) *App {
	o := options{source: nodeid.CPUInfoSource{Path: cfg.CPUInfoPath}}
	for _, opt := range opts {
		opt(&o)
	}

	return &App{
		cfg:       cfg,
		logger:    logger,
		resolver:  nodeid.NewResolver(o.source, logger.Named("nodeid")),
		generator: envfile.NewGenerator(logger.Named("envfile")),
	}
}

// Run merges the layers, publishes the result and regenerates derived files.
// A returned error is fatal for the invocation.
func (a *App) Run() error {
	defaultPath := a.cfg.DefaultLayerPath()
	a.logger.Info("loading default config", zap.String("path", defaultPath))
	defaults, err := loader.LoadRequired(defaultPath)
	if err != nil {
		return fmt.Errorf("load default config: %w", err)
	}

	if err := a.ensureUserConfig(defaultPath); err != nil {
		return err
	}

	outcome, err := a.resolver.Ensure(a.cfg.UserConfigPath)
	if err != nil {
		a.logger.Warn("failed to ensure node id", zap.Error(err))
	} else {
		a.logger.Debug("node id check finished", zap.Stringer("outcome", outcome))
	}

	user := a.loadOverlay(loader.LayerUser, a.cfg.UserConfigPath)
	if merge.IsEmpty(user) {
		a.logger.Info("user config is empty, using defaults")
	}
	forced := a.loadOverlay(loader.LayerForced, a.cfg.ForcedLayerPath())

	merged := merge.Layers(defaults, user, forced)

	if err := a.writeOutput(merged); err != nil {
		return err
	}

	if _, err := a.generator.Generate(merged, a.cfg.EnvFilePath()); err != nil {
		return fmt.Errorf("generate %s: %w", envfile.FileName, err)
	}

	a.logger.Info("config merge completed successfully")
	return nil
}

// ensureUserConfig seeds the user overlay with a verbatim copy of the default
// layer. Losing the creation race to another process is expected.
func (a *App) ensureUserConfig(defaultPath string) error {
	path := a.cfg.UserConfigPath
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat user config: %w", err)
	}

	a.logger.Info("user config not found, copying from defaults", zap.String("path", path))
	if err := storage.EnsureDir(path); err != nil {
		return err
	}
	data, err := os.ReadFile(defaultPath)
	if err != nil {
		return fmt.Errorf("read default config: %w", err)
	}

	created, err := storage.CreateIfAbsent(path, data)
	if err != nil {
		return fmt.Errorf("create user config: %w", err)
	}
	if created {
		a.logger.Info("created user config", zap.String("path", path))
	} else {
		a.logger.Info("user config was created by another process", zap.String("path", path))
	}
	return nil
}

// loadOverlay reads an optional layer; unreadable content counts as empty.
func (a *App) loadOverlay(layer loader.Layer, path string) *yaml.Node {
	a.logger.Info("loading config layer", zap.Stringer("layer", layer), zap.String("path", path))

	tree, err := loader.LoadOptional(path)
	if err != nil {
		a.logger.Warn("ignoring unreadable config layer",
			zap.Stringer("layer", layer),
			zap.String("path", path),
			zap.Error(err),
		)
		return merge.EmptyMapping()
	}
	if !merge.IsEmpty(tree) {
		a.logger.Info("applying overrides", zap.Stringer("layer", layer))
	}
	return tree
}

// writeOutput publishes the merged tree and its optional debug copy.
func (a *App) writeOutput(merged *yaml.Node) error {
	path := a.cfg.OutputConfigPath
	a.logger.Info("writing merged config", zap.String("path", path))

	data, err := loader.Encode(merged)
	if err != nil {
		return err
	}
	if err := storage.EnsureDir(path); err != nil {
		return err
	}
	if err := storage.WriteFile(path, data); err != nil {
		return fmt.Errorf("write merged config: %w", err)
	}

	debugPath := a.cfg.DebugCopyPath
	if debugPath == "" {
		return nil
	}
	a.logger.Info("writing debug copy", zap.String("path", debugPath))
	if err := storage.EnsureDir(debugPath); err != nil {
		a.logger.Warn("failed to write debug copy", zap.String("path", debugPath), zap.Error(err))
		return nil
	}
	if err := storage.CopyFile(path, debugPath); err != nil {
		a.logger.Warn("failed to write debug copy", zap.String("path", debugPath), zap.Error(err))
	}
	return nil
}
