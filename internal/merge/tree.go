package merge

import "gopkg.in/yaml.v3"

// EmptyMapping returns a mapping node without entries.
func EmptyMapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

// IsMapping reports whether n is a mapping node.
func IsMapping(n *yaml.Node) bool {
	return n != nil && n.Kind == yaml.MappingNode
}

// IsEmpty reports whether n is nil or a mapping without entries.
func IsEmpty(n *yaml.Node) bool {
	return n == nil || (IsMapping(n) && len(n.Content) == 0)
}

// IsNull reports whether n is nil or an explicit null scalar.
func IsNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

// Lookup walks a chain of mapping keys and returns the value found at the end
// of it, or nil when any key along the way is missing.
func Lookup(n *yaml.Node, path ...string) *yaml.Node {
	current := n
	for _, key := range path {
		if !IsMapping(current) {
			return nil
		}
		idx := keyIndex(current, stringKey(key))
		if idx < 0 {
			return nil
		}
		current = current.Content[idx+1]
	}
	return current
}

// LookupKey returns the value stored under key in mapping, or nil.
func LookupKey(mapping, key *yaml.Node) *yaml.Node {
	if !IsMapping(mapping) {
		return nil
	}
	if idx := keyIndex(mapping, key); idx >= 0 {
		return mapping.Content[idx+1]
	}
	return nil
}

// Set stores value under a string key in mapping, replacing an existing entry
// in place or appending a new one.
func Set(mapping *yaml.Node, key string, value *yaml.Node) {
	SetKey(mapping, stringKey(key), value)
}

// SetKey is Set for an arbitrary scalar key node.
func SetKey(mapping, key, value *yaml.Node) {
	if idx := keyIndex(mapping, key); idx >= 0 {
		mapping.Content[idx+1] = value
		return
	}
	mapping.Content = append(mapping.Content, key, value)
}

// Clone returns a deep copy of n.
func Clone(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}

	out := *n
	if len(n.Content) > 0 {
		out.Content = make([]*yaml.Node, len(n.Content))
		for i, child := range n.Content {
			out.Content[i] = Clone(child)
		}
	}
	return &out
}

// Equal reports whether two trees hold the same data. Styles, comments and
// positions are ignored; mapping key order is significant.
func Equal(a, b *yaml.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || len(a.Content) != len(b.Content) {
		return false
	}
	if a.Kind == yaml.ScalarNode && (a.ShortTag() != b.ShortTag() || a.Value != b.Value) {
		return false
	}
	for i := range a.Content {
		if !Equal(a.Content[i], b.Content[i]) {
			return false
		}
	}
	return true
}
