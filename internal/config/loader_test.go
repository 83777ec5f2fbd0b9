package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, dir, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, configFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// mockPaths points the user and project layers at dirs under a temp directory.
func mockPaths(t *testing.T) (userDir, projectDir string) {
	t.Helper()
	tempDir := t.TempDir()

	originalHome := osUserHomeDir
	originalGetwd := osGetwd
	t.Cleanup(func() {
		osUserHomeDir = originalHome
		osGetwd = originalGetwd
	})

	home := filepath.Join(tempDir, "home")
	wd := filepath.Join(tempDir, "project")
	osUserHomeDir = func() (string, error) { return home, nil }
	osGetwd = func() (string, error) { return wd, nil }

	return filepath.Join(home, userConfigDir), filepath.Join(wd, projectConfigDir)
}

func TestLoadConfig_DefaultOnly(t *testing.T) {
	mockPaths(t)

	loaded, err := LoadConfig()
	require.NoError(t, err)

	defaults := GetDefaultConfig()
	assert.Equal(t, defaults.Logging, loaded.Logging)
	assert.Equal(t, defaults.Container, loaded.Container)
	assert.ElementsMatch(t, defaults.Services, loaded.Services)
}

func TestLoadConfig_UserOverride(t *testing.T) {
	userDir, _ := mockPaths(t)
	writeConfigFile(t, userDir, `
logging:
  level: debug
container:
  readyTimeout: 2s
services:
  - name: heartbeat
    kind: heartbeat
    enabledByDefault: true
    interval: 250ms
    lifetime: 1m
`)

	loaded, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", loaded.Logging.Level)
	assert.Equal(t, 2*time.Second, loaded.Container.ReadyTimeout)
	assert.Equal(t, DefaultStopTimeout, loaded.Container.StopTimeout)
	require.Len(t, loaded.Services, 2)

	beat, ok := loaded.Service("heartbeat")
	require.True(t, ok)
	assert.Equal(t, 250*time.Millisecond, beat.Interval)
	assert.Equal(t, time.Minute, beat.Lifetime)
}

func TestLoadConfig_ProjectOverridesUser(t *testing.T) {
	userDir, projectDir := mockPaths(t)
	writeConfigFile(t, userDir, `
logging:
  level: debug
services:
  - name: kvstore
    kind: kvstore
    enabledByDefault: true
    startDelay: 1s
`)
	writeConfigFile(t, projectDir, `
logging:
  level: warn
services:
  - name: kvstore
    kind: kvstore
    enabledByDefault: false
    startDelay: 3s
`)

	loaded, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "warn", loaded.Logging.Level)
	store, ok := loaded.Service("kvstore")
	require.True(t, ok)
	assert.False(t, store.Enabled)
	assert.Equal(t, 3*time.Second, store.StartDelay)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	userDir, _ := mockPaths(t)
	writeConfigFile(t, userDir, "services: [unterminated")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error loading user config")
}

func TestLoadConfig_InvalidOverlay(t *testing.T) {
	_, projectDir := mockPaths(t)
	writeConfigFile(t, projectDir, `
services:
  - name: cache
    kind: redis
`)

	_, err := LoadConfig()
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), `unknown kind "redis"`)
}

func TestLoadConfigFromPath(t *testing.T) {
	path := writeConfigFile(t, t.TempDir(), `
container:
  stopTimeout: 5s
`)

	loaded, err := LoadConfigFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, loaded.Container.StopTimeout)
	assert.Equal(t, DefaultReadyTimeout, loaded.Container.ReadyTimeout)
	assert.Len(t, loaded.Services, 2)
}

func TestLoadConfigFromPath_Missing(t *testing.T) {
	_, err := LoadConfigFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMergeConfigs_SortsServicesByName(t *testing.T) {
	base := SvcctlConfig{Services: []ServiceDefinition{{Name: "b"}, {Name: "c"}}}
	overlay := SvcctlConfig{Services: []ServiceDefinition{{Name: "a"}}}

	merged := mergeConfigs(base, overlay)

	names := make([]string, 0, len(merged.Services))
	for _, svc := range merged.Services {
		names = append(names, svc.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestMarshal_RoundTripsDurations(t *testing.T) {
	data, err := Marshal(GetDefaultConfig())
	require.NoError(t, err)
	assert.Contains(t, string(data), "readyTimeout: 10s")

	path := writeConfigFile(t, t.TempDir(), string(data))
	loaded, err := LoadConfigFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig().Container, loaded.Container)
}

func TestGetUserConfigDir(t *testing.T) {
	original := osUserHomeDir
	defer func() { osUserHomeDir = original }()
	osUserHomeDir = func() (string, error) { return "/home/test", nil }

	dir, err := GetUserConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/test", ".config", "svcctl"), dir)
}
