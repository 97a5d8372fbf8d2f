package merge

import "gopkg.in/yaml.v3"

// Merge deep-merges overlay into base and returns the result.
//
// Two mappings are merged key by key: keys only in base are kept in place,
// keys only in overlay are appended in overlay order, and shared keys are
// merged recursively. Every other combination replaces base with a copy of
// overlay, so sequences are never combined element-wise. Base is modified in
// place when it is a mapping; callers must always use the returned node.
func Merge(base, overlay *yaml.Node) *yaml.Node {
	if overlay == nil {
		return base
	}
	if !IsMapping(base) || !IsMapping(overlay) {
		return Clone(overlay)
	}

	for i := 0; i+1 < len(overlay.Content); i += 2 {
		key, value := overlay.Content[i], overlay.Content[i+1]
		if idx := keyIndex(base, key); idx >= 0 {
			base.Content[idx+1] = Merge(base.Content[idx+1], value)
			continue
		}
		base.Content = append(base.Content, Clone(key), Clone(value))
	}

	return base
}

// Layers resolves the default, user and forced layers in precedence order.
// The default tree is copied first, so none of the inputs are modified.
func Layers(defaults, user, forced *yaml.Node) *yaml.Node {
	result := Clone(defaults)
	if result == nil {
		result = EmptyMapping()
	}
	if !IsEmpty(user) {
		result = Merge(result, user)
	}
	if !IsEmpty(forced) {
		result = Merge(result, forced)
	}
	return result
}

// keyIndex finds key in mapping by tag and text, so 1 and "1" stay distinct.
func keyIndex(mapping, key *yaml.Node) int {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		candidate := mapping.Content[i]
		if candidate.Value == key.Value && candidate.ShortTag() == key.ShortTag() {
			return i
		}
	}
	return -1
}

func stringKey(key string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
}
