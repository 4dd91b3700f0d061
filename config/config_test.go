package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NEI-modeling/SunNEI/element"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, element.DefaultElements(), cfg.Elements)
	assert.Equal(t, DefaultDataDir, cfg.DataDir)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	src := `elements: [H, He, Fe]
data_dir: /data/chianti
start_temperature: 2.0e6
steps: 500
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"H", "He", "Fe"}, cfg.Elements)
	assert.Equal(t, "/data/chianti", cfg.DataDir)
	assert.Equal(t, 2.0e6, cfg.StartTemperature)
	assert.Equal(t, 500, cfg.Steps)
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("elements: [O]\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"O"}, cfg.Elements)
	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Equal(t, DefaultSteps, cfg.Steps)
}

func TestLoad_UnknownElement(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("elements: [H, Xx]\n"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, element.ErrUnknownElement)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"default ok", func(c *Config) {}, true},
		{"no elements", func(c *Config) { c.Elements = nil }, false},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, false},
		{"negative temperature", func(c *Config) { c.StartTemperature = -1 }, false},
		{"zero temperature means neutral", func(c *Config) { c.StartTemperature = 0 }, true},
		{"zero steps", func(c *Config) { c.Steps = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok && err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := Default()
	cfg.Elements = []string{"H", "Fe"}
	cfg.Steps = 42
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}
