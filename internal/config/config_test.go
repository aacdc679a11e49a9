package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "timestamp", cfg.Annotate.Class)
	assert.Equal(t, "skip", cfg.Annotate.OnError)
	assert.Equal(t, "Local", cfg.Parse.Timezone)
	assert.Empty(t, cfg.Parse.Layouts)
	assert.Equal(t, "127.0.0.1", cfg.Serve.Host)
	assert.Equal(t, 5000, cfg.Serve.Port)
	assert.Equal(t, ".", cfg.Serve.Root)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PartialFileBackfillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[annotate]
class = "when"

[parse]
timezone = "UTC"
layouts = ["rfc3339", "2006/01/02"]

[serve]
port = 8080
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "when", cfg.Annotate.Class)
	assert.Equal(t, "skip", cfg.Annotate.OnError)
	assert.Equal(t, "UTC", cfg.Parse.Timezone)
	assert.Equal(t, []string{"rfc3339", "2006/01/02"}, cfg.Parse.Layouts)
	assert.Equal(t, 8080, cfg.Serve.Port)
	assert.Equal(t, "127.0.0.1", cfg.Serve.Host)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"policy": "[annotate]\non_error = \"explode\"\n",
		"port":   "[serve]\nport = 70000\n",
		"level":  "[log]\nlevel = \"chatty\"\n",
		"syntax": "[serve\n",
	} {
		path := filepath.Join(dir, name+".toml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
		_, err := Load(path)
		assert.Error(t, err, name)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	require.NoError(t, cfg.SetValue("serve.port", "9090"))
	require.NoError(t, cfg.SetValue("annotate.on_error", "legacy"))
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, loaded.Serve.Port)
	assert.Equal(t, "legacy", loaded.Annotate.OnError)
}

func TestGetSetValue(t *testing.T) {
	cfg := Default()

	v, ok := cfg.GetValue("serve.port")
	require.True(t, ok)
	assert.Equal(t, "5000", v)

	_, ok = cfg.GetValue("serve.nope")
	assert.False(t, ok)
	_, ok = cfg.GetValue("toplevel")
	assert.False(t, ok)

	assert.ErrorIs(t, cfg.SetValue("serve.nope", "1"), ErrUnknownKey)
	assert.Error(t, cfg.SetValue("serve.port", "abc"))
	assert.Error(t, cfg.SetValue("serve.port", "0"))
	assert.Error(t, cfg.SetValue("serve.port", "65536"))
	assert.Error(t, cfg.SetValue("log.level", "loud"))

	require.NoError(t, cfg.SetValue("log.level", "debug"))
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestListKeysAndHelp(t *testing.T) {
	keys := ListKeys()
	assert.Equal(t, []string{
		"annotate.class",
		"annotate.on_error",
		"log.level",
		"parse.timezone",
		"serve.host",
		"serve.port",
		"serve.root",
	}, keys)

	help := GenerateHelpText()
	assert.Contains(t, help, "Page server:")
	assert.Contains(t, help, "serve.port")
	assert.Contains(t, help, "(default: 5000)")
	// config --help relies on the trailing newline before "Examples:".
	assert.True(t, strings.HasSuffix(help, "\n"))
}

func TestPath_EnvOverride(t *testing.T) {
	t.Setenv("RELSTAMP_CONFIG", "/tmp/custom.toml")
	assert.Equal(t, "/tmp/custom.toml", Path())
}
