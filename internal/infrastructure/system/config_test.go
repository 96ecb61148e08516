package system

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigLoader_Load_FileNotExists(t *testing.T) {
	t.Parallel()
	loader := NewConfigLoader().WithEnvironment(map[string]string{})
	cfg, err := loader.Load("/nonexistent/config.yaml")

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfigLoader_Load_ValidConfig(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yaml := `
rulebooks:
  - house.yaml
  - season.yaml
output:
  format: json
checks:
  strict: true
  skip_compatibility: true
execution:
  max_concurrent: 8
  timeout: 30s
`
	require.NoError(t, os.WriteFile(configPath, []byte(yaml), 0o600))

	cfg, err := NewConfigLoader().WithEnvironment(map[string]string{}).Load(configPath)

	require.NoError(t, err)
	assert.Equal(t, []string{"house.yaml", "season.yaml"}, cfg.Rulebooks)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.True(t, cfg.Checks.Strict)
	assert.False(t, cfg.Checks.SkipPerformance)
	assert.True(t, cfg.Checks.SkipCompatibility)
	assert.Equal(t, 8, cfg.Execution.MaxConcurrent)
	assert.Equal(t, 30*time.Second, cfg.Execution.Timeout)
}

func TestConfigLoader_Load_PartialKeepsDefaults(t *testing.T) {
	t.Parallel()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("checks:\n  strict: true\n"), 0o600))

	cfg, err := NewConfigLoader().WithEnvironment(map[string]string{}).Load(configPath)

	require.NoError(t, err)
	assert.Equal(t, "table", cfg.Output.Format)
	assert.True(t, cfg.Checks.Strict)
}

func TestConfigLoader_Load_EnvironmentOverrides(t *testing.T) {
	t.Parallel()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("output:\n  format: yaml\n"), 0o600))

	cfg, err := NewConfigLoader().WithEnvironment(map[string]string{
		"ARMATURE_FORMAT":         "sarif",
		"ARMATURE_RULEBOOKS":      "a.yaml,b.yaml",
		"ARMATURE_SEQUENTIAL":     "true",
		"ARMATURE_MAX_CONCURRENT": "2",
		"ARMATURE_TIMEOUT":        "1m",
	}).Load(configPath)

	require.NoError(t, err)
	assert.Equal(t, "sarif", cfg.Output.Format)
	assert.Equal(t, []string{"a.yaml", "b.yaml"}, cfg.Rulebooks)
	assert.True(t, cfg.Execution.Sequential)
	assert.Equal(t, 2, cfg.Execution.MaxConcurrent)
	assert.Equal(t, time.Minute, cfg.Execution.Timeout)
}

func TestConfigLoader_Load_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "malformed yaml",
			content: "output: [[[",
			wantErr: "failed to parse system config",
		},
		{
			name:    "bad env value",
			content: "",
			env:     map[string]string{"ARMATURE_MAX_CONCURRENT": "many"},
			wantErr: "failed to apply environment overrides",
		},
		{
			name:    "negative concurrency",
			content: "execution:\n  max_concurrent: -1\n",
			wantErr: "max_concurrent cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			configPath := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(configPath, []byte(tt.content), 0o600))

			environment := tt.env
			if environment == nil {
				environment = map[string]string{}
			}
			_, err := NewConfigLoader().WithEnvironment(environment).Load(configPath)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
