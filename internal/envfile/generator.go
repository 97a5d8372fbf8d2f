package envfile

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/config-merger/internal/storage"
)

// FileName is the environment file written next to the merged config.
const FileName = "tar1090.env"

// Generator writes the tar1090 environment file derived from a merged config.
type Generator struct {
	logger *zap.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{logger: logger}
}

// Generate regenerates the env file at path from tree. Without a tar1090
// section nothing is written and an existing file is left as it is.
func (g *Generator) Generate(tree *yaml.Node, path string) (bool, error) {
	rec, ok, err := Extract(tree)
	if err != nil {
		return false, err
	}
	if !ok {
		g.logger.Info("no tar1090 section, skipping env file", zap.String("path", path))
		return false, nil
	}

	if err := storage.WriteFile(path, rec.Render()); err != nil {
		return false, fmt.Errorf("write %s: %w", FileName, err)
	}

	g.logger.Info("generated tar1090 env file",
		zap.String("path", path),
		zap.Bool("adsblol_enabled", rec.FallbackEnabled),
	)
	return true, nil
}
