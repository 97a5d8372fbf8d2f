package envfile

import (
	"fmt"
	"strconv"
	"strings"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/config-merger/internal/merge"
)

// SectionKey is the top-level key holding receiver and fallback settings.
const SectionKey = "tar1090"

// Record is the flat set of values exported to the tar1090 environment.
// Numeric fields keep the scalar text from the configuration unchanged.
type Record struct {
	Latitude        string
	Longitude       string
	Altitude        string
	FallbackEnabled bool
	FallbackRadius  string
	Source          string
}

var defaultRecord = Record{
	Latitude:       "0",
	Longitude:      "0",
	Altitude:       "0",
	FallbackRadius: "40",
}

type section struct {
	Location struct {
		Lat yaml.Node `yaml:"lat"`
		Lon yaml.Node `yaml:"lon"`
		Alt yaml.Node `yaml:"alt"`
	} `yaml:"location"`
	Fallback bool      `yaml:"adsblol_fallback"`
	Radius   yaml.Node `yaml:"adsblol_radius"`
	Source   yaml.Node `yaml:"adsb_source"`
}

// Extract reads the tar1090 section from a merged tree. It reports false when
// the section is absent or null. Missing fields take their defaults.
func Extract(tree *yaml.Node) (Record, bool, error) {
	node := merge.Lookup(tree, SectionKey)
	if merge.IsNull(node) {
		return Record{}, false, nil
	}
	if !merge.IsMapping(node) {
		return Record{}, false, fmt.Errorf("%w: expected a mapping", ErrInvalidSection)
	}

	var raw section
	if err := node.Decode(&raw); err != nil {
		return Record{}, false, fmt.Errorf("%w: %v", ErrInvalidSection, err)
	}

	var (
		rec Record
		err error
	)
	fields := []struct {
		name string
		node *yaml.Node
		dst  *string
	}{
		{"location.lat", &raw.Location.Lat, &rec.Latitude},
		{"location.lon", &raw.Location.Lon, &rec.Longitude},
		{"location.alt", &raw.Location.Alt, &rec.Altitude},
		{"adsblol_radius", &raw.Radius, &rec.FallbackRadius},
	}
	for _, f := range fields {
		if *f.dst, err = numeric(f.name, f.node); err != nil {
			return Record{}, false, err
		}
	}
	rec.FallbackEnabled = raw.Fallback
	if rec.Source, err = text("adsb_source", &raw.Source); err != nil {
		return Record{}, false, err
	}

	if err := mergo.Merge(&rec, defaultRecord); err != nil {
		return Record{}, false, fmt.Errorf("apply tar1090 defaults: %w", err)
	}
	return rec, true, nil
}

// Render formats the record as KEY=value lines. ADSB_SOURCE is left out when
// no source is configured.
func (r Record) Render() []byte {
	var b strings.Builder
	writeLine(&b, "RECEIVER_LAT", r.Latitude)
	writeLine(&b, "RECEIVER_LON", r.Longitude)
	writeLine(&b, "RECEIVER_ALT", r.Altitude)
	writeLine(&b, "ADSBLOL_ENABLED", strconv.FormatBool(r.FallbackEnabled))
	writeLine(&b, "ADSBLOL_RADIUS", r.FallbackRadius)
	if r.Source != "" {
		writeLine(&b, "ADSB_SOURCE", r.Source)
	}
	return []byte(b.String())
}

func writeLine(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(value)
	b.WriteByte('\n')
}

// numeric returns the scalar text of an int or float node; unset and null
// nodes yield an empty string.
func numeric(name string, n *yaml.Node) (string, error) {
	if n.Kind == 0 || merge.IsNull(n) {
		return "", nil
	}
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("%w: %s must be a number", ErrInvalidSection, name)
	}
	switch n.ShortTag() {
	case "!!int", "!!float":
		return n.Value, nil
	default:
		return "", fmt.Errorf("%w: %s must be a number, got %q", ErrInvalidSection, name, n.Value)
	}
}

func text(name string, n *yaml.Node) (string, error) {
	if n.Kind == 0 || merge.IsNull(n) {
		return "", nil
	}
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidSection, name)
	}
	if strings.ContainsAny(n.Value, "\r\n") {
		return "", fmt.Errorf("%w: %s must be a single line", ErrInvalidSection, name)
	}
	return n.Value, nil
}
