package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCLIParsesPositionals(t *testing.T) {
	app, overrides := newCLI()

	_, err := app.Parse([]string{"/opt/defaults", "/data/user.yml", "/opt/config.yml", "/data/config.debug.yml"})
	require.NoError(t, err)

	assert.Equal(t, "/opt/defaults", overrides.DefaultsDir)
	assert.Equal(t, "/data/user.yml", overrides.UserConfigPath)
	assert.Equal(t, "/opt/config.yml", overrides.OutputConfigPath)
	assert.Equal(t, "/data/config.debug.yml", overrides.DebugCopyPath)
}

func TestNewCLIDebugCopyIsOptional(t *testing.T) {
	app, overrides := newCLI()

	_, err := app.Parse([]string{"/opt/defaults", "/data/user.yml", "/opt/config.yml"})
	require.NoError(t, err)
	assert.Empty(t, overrides.DebugCopyPath)
}

func TestNewCLIParsesFlags(t *testing.T) {
	app, overrides := newCLI()

	_, err := app.Parse([]string{"--cpuinfo=/tmp/cpuinfo", "--log-level=debug", "--log-format=json", "a", "b", "c"})
	require.NoError(t, err)

	require.NotNil(t, overrides.CPUInfoPath)
	assert.Equal(t, "/tmp/cpuinfo", *overrides.CPUInfoPath)
	assert.Equal(t, "debug", *overrides.LogLevel)
	assert.Equal(t, "json", *overrides.LogFormat)
}

func TestNewCLIRequiresThreePaths(t *testing.T) {
	app, _ := newCLI()

	_, err := app.Parse([]string{"/opt/defaults", "/data/user.yml"})
	assert.Error(t, err)
}
