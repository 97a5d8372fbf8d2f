package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/eugenenazirov/config-merger/internal/envfile"
)

const (
	defaultLayerFile = "default.yml"
	forcedLayerFile  = "forced.yml"

	defaultCPUInfoPath = "/proc/cpuinfo"
	defaultLogLevel    = "info"
	defaultLogFormat   = "console"
)

// ErrMissingArgument is returned when a required path is not provided.
var ErrMissingArgument = errors.New("missing required argument")

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > Environment variables > Defaults
type Config struct {
	DefaultsDir      string
	UserConfigPath   string
	OutputConfigPath string
	DebugCopyPath    string
	CPUInfoPath      string
	LogLevel         string
	LogFormat        string
}

// envConfig represents the environment variables understood by the merger.
type envConfig struct {
	CPUInfoPath string `env:"CPUINFO" envDefault:"/proc/cpuinfo"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"console"`
}

// CLIOverrides holds command-line arguments and flag overrides.
type CLIOverrides struct {
	DefaultsDir      string
	UserConfigPath   string
	OutputConfigPath string
	DebugCopyPath    string
	CPUInfoPath      *string
	LogLevel         *string
	LogFormat        *string
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	if err := applyEnvConfig(&cfg); err != nil {
		return Config{}, err
	}

	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// DefaultLayerPath returns the path of the required default layer.
func (c Config) DefaultLayerPath() string {
	return filepath.Join(c.DefaultsDir, defaultLayerFile)
}

// ForcedLayerPath returns the path of the optional forced layer.
func (c Config) ForcedLayerPath() string {
	return filepath.Join(c.DefaultsDir, forcedLayerFile)
}

// OutputDir returns the directory receiving the merged config and derived files.
func (c Config) OutputDir() string {
	return filepath.Dir(c.OutputConfigPath)
}

// EnvFilePath returns where the tar1090 environment file is generated.
func (c Config) EnvFilePath() string {
	return filepath.Join(c.OutputDir(), envfile.FileName)
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		CPUInfoPath: defaultCPUInfoPath,
		LogLevel:    defaultLogLevel,
		LogFormat:   defaultLogFormat,
	}
}

// applyEnvConfig applies CONFIG_MERGER_* environment variables.
func applyEnvConfig(cfg *Config) error {
	var envCfg envConfig
	if err := env.ParseWithOptions(&envCfg, env.Options{Prefix: "CONFIG_MERGER_"}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}

	if v := strings.TrimSpace(envCfg.CPUInfoPath); v != "" {
		cfg.CPUInfoPath = v
	}
	if v := strings.TrimSpace(envCfg.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(envCfg.LogFormat); v != "" {
		cfg.LogFormat = v
	}
	return nil
}

// applyCLIOverrides applies positional arguments and flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	cfg.DefaultsDir = overrides.DefaultsDir
	cfg.UserConfigPath = overrides.UserConfigPath
	cfg.OutputConfigPath = overrides.OutputConfigPath
	cfg.DebugCopyPath = overrides.DebugCopyPath

	if overrides.CPUInfoPath != nil && *overrides.CPUInfoPath != "" {
		cfg.CPUInfoPath = *overrides.CPUInfoPath
	}
	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}
	if overrides.LogFormat != nil && *overrides.LogFormat != "" {
		cfg.LogFormat = *overrides.LogFormat
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.DefaultsDir == "" {
		return fmt.Errorf("%w: defaults_dir", ErrMissingArgument)
	}
	if cfg.UserConfigPath == "" {
		return fmt.Errorf("%w: user_config_path", ErrMissingArgument)
	}
	if cfg.OutputConfigPath == "" {
		return fmt.Errorf("%w: output_config_path", ErrMissingArgument)
	}
	switch cfg.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log format must be console or json, got %q", cfg.LogFormat)
	}
	return nil
}
