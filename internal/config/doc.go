// Package config resolves the merger's runtime settings from CLI arguments,
// CONFIG_MERGER_* environment variables and built-in defaults, with
// precedence: CLI flags > Environment variables > Defaults. It also derives
// the layer and output file paths from those settings.
package config
