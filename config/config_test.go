/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see LICENSE file for details.                                       *
 ******************************************************************************/

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearSettingsEnv(t *testing.T) {
	t.Helper()
	for _, entry := range os.Environ() {
		name, _, _ := strings.Cut(entry, "=")
		if strings.HasPrefix(name, EnvPrefix) {
			value := os.Getenv(name)
			require.NoError(t, os.Unsetenv(name))
			t.Cleanup(func() { _ = os.Setenv(name, value) })
		}
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadSettings_Defaults(t *testing.T) {
	clearSettingsEnv(t)

	settings, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), settings)
}

func TestLoadSettings_FileThenEnv(t *testing.T) {
	clearSettingsEnv(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "settings.yaml", `
listen: "0.0.0.0:9000"
metrics_listen: "127.0.0.1:9100"
http_timeout: 10s
debug: true
config_files:
  - configs/microsoft365.json
  - extra.json
`)

	settings, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", settings.Listen)
	assert.Equal(t, "127.0.0.1:9100", settings.MetricsListen)
	assert.Equal(t, 10*time.Second, settings.HTTPTimeout)
	assert.True(t, settings.Debug)
	assert.Equal(t, "mcpgraph.log", settings.LogFile)
	assert.Equal(t, []string{"configs/microsoft365.json", "extra.json"}, settings.ConfigFiles)

	t.Setenv("MCPGRAPH_LISTEN", "localhost:7000")
	t.Setenv("MCPGRAPH_HTTP_TIMEOUT", "45s")
	t.Setenv("MCPGRAPH_NO_STREAMING", "true")
	t.Setenv("MCPGRAPH_DATA_DIR", dir)

	settings, err = LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost:7000", settings.Listen)
	assert.Equal(t, 45*time.Second, settings.HTTPTimeout)
	assert.True(t, settings.NoStreaming)
	assert.Equal(t, dir, settings.DataDir)
	assert.Equal(t, "127.0.0.1:9100", settings.MetricsListen)
}

func TestLoadSettings_FileFromEnvironment(t *testing.T) {
	clearSettingsEnv(t)
	path := writeFile(t, t.TempDir(), "settings.yaml", "listen: \"localhost:8001\"\n")
	t.Setenv(SettingsFileEnv, path)

	settings, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, "localhost:8001", settings.Listen)
}

func TestLoadSettings_Errors(t *testing.T) {
	clearSettingsEnv(t)

	_, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	t.Setenv("MCPGRAPH_HTTP_TIMEOUT", "0s")
	_, err = LoadSettings("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http_timeout")
}

func TestSettings_ConfigFileLists(t *testing.T) {
	clearSettingsEnv(t)
	t.Setenv("MCPGRAPH_CONFIG_FILES", "a.json, b.json")

	settings, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.json", "b.json"}, settings.ConfigFiles)

	settings.AddConfigFiles("c.json,,d.json")
	assert.Equal(t, []string{"a.json", "b.json", "c.json", "d.json"}, settings.ConfigFiles)

	settings.MetricsListen = settings.Listen
	assert.Error(t, settings.Validate())
}

const serviceTemplate = `{
  "services": {
    "%s": {
      "name": "Graph",
      "baseURL": "https://graph.example.com/v1.0",
      "auth": {"type": "none"},
      "endpoints": [
        {
          "id": "list-events",
          "name": "List Events",
          "method": "GET",
          "path": "/me/events",
          "parameters": [
            {"name": "calendarId", "type": "string", "location": "identifier"}
          ],
          "response": {"type": "json"}
        }
      ]
    }
  }
}`

func serviceJSON(key string) string {
	return strings.Replace(serviceTemplate, "%s", key, 1)
}

func TestManager_LoadConfigs(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "first.json", serviceJSON("work"))
	second := writeFile(t, dir, "second.json", serviceJSON("personal"))
	broken := writeFile(t, dir, "broken.json", "{")

	m := New(WithConfigFiles(first, broken, second))
	require.NoError(t, m.LoadConfigs())

	assert.Equal(t, 2, m.ServiceCount())
	assert.Equal(t, []string{"personal", "work"}, m.ServiceNames())
	assert.True(t, m.HasService("work"))
	assert.False(t, m.HasService("broken"))

	service, err := m.Service("work")
	require.NoError(t, err)
	assert.Equal(t, "work", service.ServiceKey)
	_, err = m.Service("missing")
	assert.Error(t, err)

	assert.Len(t, m.Config().Services, 2)
}

func TestManager_DuplicateService(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "first.json", serviceJSON("work"))
	second := writeFile(t, dir, "second.json", serviceJSON("work"))

	err := New(WithConfigFiles(first, second)).LoadConfigs()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than one configuration file")
}

func TestManager_NothingLoaded(t *testing.T) {
	assert.NoError(t, New().LoadConfigs())

	err := New(WithConfigFiles(filepath.Join(t.TempDir(), "missing.json"))).LoadConfigs()
	assert.Error(t, err)
}
