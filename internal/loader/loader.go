package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/config-merger/internal/merge"
)

// LoadRequired reads a layer that must exist and hold at least one entry.
func LoadRequired(path string) (*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read file: %w", err)
	}

	tree, err := parse(path, data)
	if err != nil {
		return nil, err
	}
	if merge.IsEmpty(tree) {
		return nil, fmt.Errorf("%w: %s", ErrEmptyLayer, path)
	}
	return tree, nil
}

// LoadOptional reads a layer that may be absent. A missing or empty file
// yields an empty mapping.
func LoadOptional(path string) (*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return merge.EmptyMapping(), nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	return parse(path, data)
}

// Decode parses YAML content into a mapping tree. Empty documents and an
// explicit top-level null decode to an empty mapping.
func Decode(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	root := &doc
	if doc.Kind == 0 {
		return merge.EmptyMapping(), nil
	}
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return merge.EmptyMapping(), nil
		}
		root = doc.Content[0]
	}
	if merge.IsNull(root) {
		return merge.EmptyMapping(), nil
	}

	root, err := normalize(root)
	if err != nil {
		return nil, err
	}
	if !merge.IsMapping(root) {
		return nil, ErrNotMapping
	}
	return root, nil
}

// Encode renders a tree as block-style YAML with two-space indentation.
func Encode(tree *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(tree); err != nil {
		return nil, fmt.Errorf("encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}

func parse(path string, data []byte) (*yaml.Node, error) {
	tree, err := Decode(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return tree, nil
}

// maxNodes bounds the size of a tree after alias expansion.
const maxNodes = 100_000

// normalizer expands aliases and "<<" merge keys in place so a tree can be
// merged and re-encoded without depending on anchors defined elsewhere.
type normalizer struct {
	expanding map[*yaml.Node]bool
	nodes     int
}

func normalize(n *yaml.Node) (*yaml.Node, error) {
	z := &normalizer{expanding: make(map[*yaml.Node]bool)}
	return z.normalize(n)
}

func (z *normalizer) normalize(n *yaml.Node) (*yaml.Node, error) {
	z.nodes++
	if z.nodes > maxNodes {
		return nil, ErrAliasExpansion
	}

	if n.Kind == yaml.AliasNode && n.Alias != nil {
		target := n.Alias
		if z.expanding[target] {
			return nil, fmt.Errorf("%w: *%s", ErrAliasCycle, n.Value)
		}
		z.expanding[target] = true
		expanded, err := z.normalize(merge.Clone(target))
		delete(z.expanding, target)
		return expanded, err
	}

	// Expanding the anchor itself must also catch aliases pointing back at it.
	if n.Anchor != "" {
		z.expanding[n] = true
		defer delete(z.expanding, n)
	}
	n.Anchor = ""
	n.Style &^= yaml.FlowStyle

	switch n.Kind {
	case yaml.SequenceNode:
		for i, child := range n.Content {
			expanded, err := z.normalize(child)
			if err != nil {
				return nil, err
			}
			n.Content[i] = expanded
		}
	case yaml.MappingNode:
		content, err := z.flattenMapping(n.Content)
		if err != nil {
			return nil, err
		}
		n.Content = content
	}
	return n, nil
}

func (z *normalizer) flattenMapping(pairs []*yaml.Node) ([]*yaml.Node, error) {
	var (
		inherited []*yaml.Node
		own       []*yaml.Node
	)
	for i := 0; i+1 < len(pairs); i += 2 {
		value, err := z.normalize(pairs[i+1])
		if err != nil {
			return nil, err
		}
		key := pairs[i]
		if key.Kind == yaml.ScalarNode && key.ShortTag() == "!!merge" {
			inherited = append(inherited, mergeSources(value)...)
			continue
		}
		if key, err = z.normalize(key); err != nil {
			return nil, err
		}
		own = append(own, key, value)
	}
	if len(inherited) == 0 {
		return own, nil
	}

	// Earlier merge sources win over later ones, explicit keys win over all.
	out := merge.EmptyMapping()
	for _, src := range inherited {
		for i := 0; i+1 < len(src.Content); i += 2 {
			if merge.LookupKey(out, src.Content[i]) == nil {
				out.Content = append(out.Content, merge.Clone(src.Content[i]), merge.Clone(src.Content[i+1]))
			}
		}
	}
	for i := 0; i+1 < len(own); i += 2 {
		merge.SetKey(out, own[i], own[i+1])
	}
	return out.Content, nil
}

func mergeSources(value *yaml.Node) []*yaml.Node {
	switch value.Kind {
	case yaml.MappingNode:
		return []*yaml.Node{value}
	case yaml.SequenceNode:
		sources := make([]*yaml.Node, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind == yaml.MappingNode {
				sources = append(sources, item)
			}
		}
		return sources
	default:
		return nil
	}
}
