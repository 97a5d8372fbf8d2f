package integration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/config-merger/internal/application"
	"github.com/eugenenazirov/config-merger/internal/config"
	"github.com/eugenenazirov/config-merger/internal/loader"
	"github.com/eugenenazirov/config-merger/internal/merge"
)

const defaultYAML = `process:
  detection:
    pfa: 0.001
    minDelay: 5
network:
  ip: 0.0.0.0
tar1090:
  adsblol_fallback: false
  adsblol_radius: 40
  adsb_source: ""
  location:
    lat: 0
    lon: 0
    alt: 0
`

const cpuinfo = `Hardware	: BCM2835
Revision	: d04170
Serial		: 1000000089ab0c1d
Model		: Raspberry Pi 5 Model B Rev 1.0
`

type node struct {
	defaultsDir string
	userPath    string
	cpuinfoPath string
}

func newNode(t *testing.T) node {
	t.Helper()

	root := t.TempDir()
	n := node{
		defaultsDir: filepath.Join(root, "defaults"),
		userPath:    filepath.Join(root, "data", "config", "user.yml"),
		cpuinfoPath: filepath.Join(root, "cpuinfo"),
	}
	require.NoError(t, os.MkdirAll(n.defaultsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(n.defaultsDir, "default.yml"), []byte(defaultYAML), 0o644))
	require.NoError(t, os.WriteFile(n.cpuinfoPath, []byte(cpuinfo), 0o644))
	return n
}

func (n node) config(outputDir string) config.Config {
	return config.Config{
		DefaultsDir:      n.defaultsDir,
		UserConfigPath:   n.userPath,
		OutputConfigPath: filepath.Join(outputDir, "config.yml"),
		DebugCopyPath:    filepath.Join(filepath.Dir(n.userPath), "config."+filepath.Base(outputDir)+".yml"),
		CPUInfoPath:      n.cpuinfoPath,
		LogLevel:         "info",
		LogFormat:        "console",
	}
}

func TestFirstBootFlow(t *testing.T) {
	n := newNode(t)
	cfg := n.config(filepath.Join(t.TempDir(), "blah2"))

	require.NoError(t, application.New(cfg, zaptest.NewLogger(t)).Run())

	// user.yml is the default layer plus the injected node id.
	user, err := loader.LoadRequired(n.userPath)
	require.NoError(t, err)
	assert.Equal(t, "ret89ab0c1d", merge.Lookup(user, "network", "node_id").Value)
	defaults, err := loader.LoadRequired(filepath.Join(n.defaultsDir, "default.yml"))
	require.NoError(t, err)
	network := merge.Lookup(user, "network")
	network.Content = network.Content[:len(network.Content)-2]
	assert.True(t, merge.Equal(defaults, user))

	out, err := os.ReadFile(cfg.OutputConfigPath)
	require.NoError(t, err)
	debug, err := os.ReadFile(cfg.DebugCopyPath)
	require.NoError(t, err)
	assert.Equal(t, string(out), string(debug))

	env, err := os.ReadFile(cfg.EnvFilePath())
	require.NoError(t, err)
	assert.Equal(t, "RECEIVER_LAT=0\nRECEIVER_LON=0\nRECEIVER_ALT=0\nADSBLOL_ENABLED=false\nADSBLOL_RADIUS=40\n", string(env))
}

func TestOperatorEditsSurviveRerun(t *testing.T) {
	n := newNode(t)
	cfg := n.config(filepath.Join(t.TempDir(), "api"))
	require.NoError(t, application.New(cfg, zaptest.NewLogger(t)).Run())

	edited := "network:\n  node_id: ret89ab0c1d\ntar1090:\n  adsblol_fallback: true\n  adsb_source: adsb.lol\n"
	require.NoError(t, os.WriteFile(n.userPath, []byte(edited), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(n.defaultsDir, "forced.yml"), []byte("process:\n  detection:\n    pfa: 0.01\n"), 0o644))

	require.NoError(t, application.New(cfg, zaptest.NewLogger(t)).Run())

	out, err := loader.LoadRequired(cfg.OutputConfigPath)
	require.NoError(t, err)
	assert.Equal(t, "0.01", merge.Lookup(out, "process", "detection", "pfa").Value)
	assert.Equal(t, "5", merge.Lookup(out, "process", "detection", "minDelay").Value)
	assert.Equal(t, "0.0.0.0", merge.Lookup(out, "network", "ip").Value)

	env, err := os.ReadFile(cfg.EnvFilePath())
	require.NoError(t, err)
	assert.Contains(t, string(env), "ADSBLOL_ENABLED=true\n")
	assert.Contains(t, string(env), "ADSB_SOURCE=adsb.lol\n")

	user, err := os.ReadFile(n.userPath)
	require.NoError(t, err)
	assert.Equal(t, edited, string(user))
}

func TestConcurrentContainersShareUserConfig(t *testing.T) {
	n := newNode(t)
	outputs := t.TempDir()

	const containers = 8
	var wg sync.WaitGroup
	errs := make([]error, containers)
	for i := 0; i < containers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cfg := n.config(filepath.Join(outputs, fmt.Sprintf("container-%d", i)))
			errs[i] = application.New(cfg, zaptest.NewLogger(t)).Run()
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "container %d", i)
	}

	user, err := loader.LoadRequired(n.userPath)
	require.NoError(t, err)
	assert.Equal(t, "ret89ab0c1d", merge.Lookup(user, "network", "node_id").Value)
	assert.Equal(t, "0.001", merge.Lookup(user, "process", "detection", "pfa").Value)

	entries, err := os.ReadDir(filepath.Dir(n.userPath))
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.Contains(entry.Name(), ".tmp."), "leftover %s", entry.Name())
	}

	var first string
	for i := 0; i < containers; i++ {
		data, err := os.ReadFile(filepath.Join(outputs, fmt.Sprintf("container-%d", i), "config.yml"))
		require.NoError(t, err)
		if i == 0 {
			first = string(data)
			continue
		}
		assert.Equal(t, first, string(data), "container %d", i)
	}
}
