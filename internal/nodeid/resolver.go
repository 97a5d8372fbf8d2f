package nodeid

import (
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/config-merger/internal/loader"
	"github.com/eugenenazirov/config-merger/internal/merge"
	"github.com/eugenenazirov/config-merger/internal/storage"
)

const (
	networkKey = "network"
	nodeIDKey  = "node_id"
)

// Outcome describes what Ensure did to the user overlay.
type Outcome int

const (
	// OutcomeSkipped means no identifier could be derived; nothing was written.
	OutcomeSkipped Outcome = iota
	// OutcomeUnchanged means the stored identifier already matched the hardware.
	OutcomeUnchanged
	// OutcomeUpdated means a different stored identifier was replaced.
	OutcomeUpdated
	// OutcomeGenerated means the identifier was absent and has been added.
	OutcomeGenerated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeUpdated:
		return "updated"
	case OutcomeGenerated:
		return "generated"
	default:
		return "unknown"
	}
}

// Resolver keeps network.node_id in the user overlay in line with the
// hardware serial of the host.
type Resolver struct {
	source Source
	logger *zap.Logger
}

// NewResolver creates a Resolver reading hardware identity from source.
func NewResolver(source Source, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{source: source, logger: logger}
}

// Identifier derives the node identifier for the current host.
func (r *Resolver) Identifier() (string, error) {
	descriptor, err := r.source.Descriptor()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotRaspberryPi
		}
		return "", fmt.Errorf("read hardware descriptor: %w", err)
	}

	serial, err := ParseSerial(descriptor)
	if err != nil {
		return "", err
	}
	return FromSerial(serial), nil
}

// Ensure writes the node identifier into the user overlay at userPath when it
// is absent or differs from the one derived from hardware. Hosts that are not
// Raspberry Pis are skipped without error.
func (r *Resolver) Ensure(userPath string) (Outcome, error) {
	id, err := r.Identifier()
	if errors.Is(err, ErrNotRaspberryPi) {
		r.logger.Info("not running on Raspberry Pi hardware, skipping node id generation")
		return OutcomeSkipped, nil
	}
	if err != nil {
		return OutcomeSkipped, fmt.Errorf("derive node id: %w", err)
	}

	user, err := loader.LoadOptional(userPath)
	if err != nil {
		return OutcomeSkipped, fmt.Errorf("load user config: %w", err)
	}

	network := merge.Lookup(user, networkKey)
	switch {
	case merge.IsNull(network):
		network = merge.EmptyMapping()
		merge.Set(user, networkKey, network)
	case !merge.IsMapping(network):
		return OutcomeSkipped, ErrUnexpectedShape
	}

	outcome := OutcomeGenerated
	if current := merge.Lookup(network, nodeIDKey); current != nil {
		if current.Kind == yaml.ScalarNode && current.ShortTag() == "!!str" && current.Value == id {
			r.logger.Info("node id already correct", zap.String("node_id", id))
			return OutcomeUnchanged, nil
		}
		r.logger.Info("node id mismatch, updating",
			zap.String("current", current.Value),
			zap.String("node_id", id),
		)
		outcome = OutcomeUpdated
	} else {
		r.logger.Info("generating node id from hardware serial", zap.String("node_id", id))
	}

	merge.Set(network, nodeIDKey, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: id})

	data, err := loader.Encode(user)
	if err != nil {
		return OutcomeSkipped, err
	}
	if err := storage.WriteFile(userPath, data); err != nil {
		return OutcomeSkipped, fmt.Errorf("write user config: %w", err)
	}

	r.logger.Info("node id set", zap.String("path", userPath), zap.String("node_id", id))
	return outcome, nil
}
