package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ansel1/tangview/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 1, cfg.GroupLevel)
	assert.Equal(t, 2, cfg.Precision)
	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	assert.Equal(t, parser.DefaultCallback, cfg.Callback)
	assert.Equal(t, 5*time.Second, cfg.SlowThreshold())
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
source: http://ci.example/result.js
group_level: 0
precision: 1
no_color: true
slow_threshold_ms: 250
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://ci.example/result.js", cfg.Source)
	assert.Equal(t, 0, cfg.GroupLevel)
	assert.Equal(t, 1, cfg.Precision)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, 250*time.Millisecond, cfg.SlowThreshold())
	assert.Equal(t, DefaultListen, cfg.Listen)
	assert.Equal(t, parser.DefaultCallback, cfg.Callback)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "invalid yaml", body: "group_level: [", want: "parse config"},
		{name: "negative group level", body: "group_level: -1", want: "group_level"},
		{name: "precision too large", body: "precision: 30", want: "precision"},
		{name: "negative slow threshold", body: "slow_threshold_ms: -5", want: "slow_threshold_ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadSearchesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("precision: 0\n"), 0o644))
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Precision)
}

func TestApply(t *testing.T) {
	cfg := Default()
	cfg.Listen = "from-file:1"

	err := cfg.Apply(Flags{
		Source:        "result.js",
		GroupLevel:    3,
		GroupLevelSet: true,
		Precision:     7,
		Listen:        "ignored:2",
	})
	require.NoError(t, err)
	assert.Equal(t, "result.js", cfg.Source)
	assert.Equal(t, 3, cfg.GroupLevel)
	assert.Equal(t, DefaultPrecision, cfg.Precision)
	assert.Equal(t, "from-file:1", cfg.Listen)

	err = cfg.Apply(Flags{Precision: -1, PrecisionSet: true})
	assert.Error(t, err)
}
