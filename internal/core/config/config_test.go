package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/petpix/internal/core/label"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
api_base: https://abc.example.com/prod
default_label: dog
user_agent: petpix-test
`)

	cfg, err := Load(path, Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "https://abc.example.com/prod", cfg.APIBase)
	assert.Equal(t, "dog", cfg.DefaultLabel)
	assert.Equal(t, "petpix-test", cfg.UserAgent)
	assert.Equal(t, label.Dog, cfg.Label())
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeConfig(t, "api_base: http://localhost:9000\n")

	cfg, err := Load(path, Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "cat", cfg.DefaultLabel)
	assert.Equal(t, "petpix", cfg.UserAgent)
	assert.Equal(t, label.Cat, cfg.Label())
}

func TestLoad_MissingFileUsesOverrides(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	cfg, err := Load(missing, Overrides{APIBase: "https://api.example.com", DefaultLabel: "DOG"})
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.APIBase)
	assert.Equal(t, label.Dog, cfg.Label())
}

func TestLoad_OverridesWinOverFile(t *testing.T) {
	path := writeConfig(t, "api_base: https://file.example.com\ndefault_label: cat\n")

	cfg, err := Load(path, Overrides{APIBase: "https://flag.example.com"})
	require.NoError(t, err)

	assert.Equal(t, "https://flag.example.com", cfg.APIBase)
	assert.Equal(t, "cat", cfg.DefaultLabel)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "missing api base",
			content: "default_label: cat\n",
			want:    "api_base cannot be empty",
		},
		{
			name:    "bad scheme",
			content: "api_base: ftp://example.com\n",
			want:    "must use http or https",
		},
		{
			name:    "no host",
			content: "api_base: https://\n",
			want:    "missing host",
		},
		{
			name:    "unknown label",
			content: "api_base: https://example.com\ndefault_label: hamster\n",
			want:    "default_label",
		},
		{
			name:    "bad yaml",
			content: "api_base: [\n",
			want:    "parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content), Overrides{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	_, err := Load("", Overrides{})
	require.Error(t, err)

	cfg, err := Load("", Overrides{APIBase: " https://example.com "})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", cfg.APIBase)
}

func TestConfig_LabelFallsBackToCat(t *testing.T) {
	cfg := Config{DefaultLabel: "hamster"}
	assert.Equal(t, label.Cat, cfg.Label())
}

func TestRead_SkipsValidation(t *testing.T) {
	path := writeConfig(t, "default_label: hamster\n")

	cfg, err := Read(path, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "hamster", cfg.DefaultLabel)
	assert.Equal(t, "petpix", cfg.UserAgent)
	assert.Error(t, cfg.Validate())
}
