package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestHome points HOME at a temp dir and returns the allowed config dir.
func setupTestHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "reflectify")
	require.NoError(t, os.MkdirAll(dir, 0700))
	return dir
}

func writeConfig(t *testing.T, dir, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	require.NoError(t, os.Chmod(path, perm))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	setupTestHome(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Port, cfg.Server.Port)
	assert.Equal(t, "disabled", cfg.Generator.Provider)
}

func TestLoad_ValidYAML(t *testing.T) {
	dir := setupTestHome(t)
	path := writeConfig(t, dir, `server:
  http_port: 8088
generator:
  provider: openai
  api_key: sk-test-123
  timeout: 4s
scoring:
  depth_dampening: 0.6
  critical_threshold: 8.5
`, 0600)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, "openai", cfg.Generator.Provider)
	assert.Equal(t, "sk-test-123", cfg.Generator.APIKey.Value())
	assert.Equal(t, 4*time.Second, cfg.Generator.Timeout.Duration())
	assert.Equal(t, 0.6, cfg.Scoring.DepthDampening)
	assert.Equal(t, 8.5, cfg.Scoring.CriticalThreshold)

	// Untouched keys keep their defaults.
	assert.Equal(t, 15.0, cfg.Scoring.OptimalSentenceLength)
	assert.Equal(t, "localhost", cfg.Server.Host)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	dir := setupTestHome(t)
	path := writeConfig(t, dir, "server:\n  http_port: 8088\n", 0600)

	t.Setenv("REFLECTIFY_SERVER_HTTP_PORT", "9300")
	t.Setenv("REFLECTIFY_SCORING_OPTIMAL_SENTENCE_LENGTH", "12")
	t.Setenv("REFLECTIFY_EVENTS_NATS_URL", "nats://localhost:4222")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9300, cfg.Server.Port)
	assert.Equal(t, 12.0, cfg.Scoring.OptimalSentenceLength)
	assert.Equal(t, "nats://localhost:4222", cfg.Events.NATSURL)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := setupTestHome(t)
	path := writeConfig(t, dir, "server: [unclosed\n", 0600)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config file")
}

func TestLoad_ValidationFailure(t *testing.T) {
	dir := setupTestHome(t)
	path := writeConfig(t, dir, "generator:\n  provider: anthropic\n", 0600)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires an api key")
}

func TestLoad_PathOutsideAllowedDirs(t *testing.T) {
	setupTestHome(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  http_port: 1\n"), 0600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be in")
}

func TestLoad_InsecurePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission model differs on windows")
	}
	dir := setupTestHome(t)
	path := writeConfig(t, dir, "server:\n  http_port: 8088\n", 0644)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insecure config file permissions")
}

func TestLoad_FileTooLarge(t *testing.T) {
	dir := setupTestHome(t)
	big := "# " + strings.Repeat("x", maxConfigFileSize) + "\n"
	path := writeConfig(t, dir, big, 0600)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "server.http_port", envKey("REFLECTIFY_SERVER_HTTP_PORT"))
	assert.Equal(t, "generator.api_key", envKey("REFLECTIFY_GENERATOR_API_KEY"))
	assert.Equal(t, "debug", envKey("REFLECTIFY_DEBUG"))
}

func TestEnsureConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.NoError(t, EnsureConfigDir())
	info, err := os.Stat(filepath.Join(home, ".config", "reflectify"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
