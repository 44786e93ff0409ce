package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func readYAML(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, yaml.Unmarshal(data, &out))
	return out
}

func TestSetValue_UpdatesExistingKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	require.NoError(t, SetValue(path, "diff.cleanup", "semantic"))

	cfg := readYAML(t, path)
	diff := cfg["diff"].(map[string]any)
	require.Equal(t, "semantic", diff["cleanup"])
	require.Equal(t, 8, diff["concurrency"], "siblings untouched")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "# Line diff settings", "comments preserved")
}

func TestSetValue_CreatesMissingSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("diff:\n  cleanup: none\n"), 0o600))

	require.NoError(t, SetValue(path, "tracing.enabled", "true"))

	cfg := readYAML(t, path)
	tracing := cfg["tracing"].(map[string]any)
	require.Equal(t, true, tracing["enabled"])
	require.Equal(t, "none", cfg["diff"].(map[string]any)["cleanup"])
}

func TestSetValue_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, SetValue(path, "watch.debounce", "1s"))

	cfg := readYAML(t, path)
	require.Equal(t, "1s", cfg["watch"].(map[string]any)["debounce"])
}

func TestSetValue_InvalidKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.Error(t, SetValue(path, "", "x"))
	require.Error(t, SetValue(path, "diff..cleanup", "x"))
}

func TestSetValue_ThroughScalar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("diff: off\n"), 0o600))

	err := SetValue(path, "diff.cleanup", "none")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not a mapping")
}
