package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a required layer file does not exist.
	ErrNotFound = errors.New("config layer not found")
	// ErrEmptyLayer is returned when a required layer holds no entries.
	ErrEmptyLayer = errors.New("config layer is empty or invalid")
	// ErrNotMapping is returned when a document's top level is not a mapping.
	ErrNotMapping = errors.New("config layer must be a YAML mapping")
	// ErrAliasCycle is returned when an alias refers to a node that contains it.
	ErrAliasCycle = errors.New("recursive YAML alias")
	// ErrAliasExpansion is returned when expanding aliases grows the tree past its limit.
	ErrAliasExpansion = errors.New("YAML alias expansion exceeds node limit")
)

// ParseError reports a layer file whose content could not be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
