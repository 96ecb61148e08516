package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/armature-dev/armature/internal/domain/values"
	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitOptions_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    InitOptions
		wantErr string
	}{
		{
			name: "valid",
			opts: InitOptions{ID: "u-1", Archetype: "combat", Rarity: "rare", Capacity: 4},
		},
		{
			name:    "missing id",
			opts:    InitOptions{Archetype: "combat", Rarity: "rare", Capacity: 4},
			wantErr: "--id is required",
		},
		{
			name:    "bad archetype",
			opts:    InitOptions{ID: "u-1", Archetype: "pilot", Rarity: "rare", Capacity: 4},
			wantErr: "pilot",
		},
		{
			name:    "bad rarity",
			opts:    InitOptions{ID: "u-1", Archetype: "combat", Rarity: "mythic", Capacity: 4},
			wantErr: "mythic",
		},
		{
			name:    "capacity too small",
			opts:    InitOptions{ID: "u-1", Archetype: "combat", Rarity: "rare", Capacity: 1},
			wantErr: "--capacity must be at least 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.opts.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuildUnitScaffold(t *testing.T) {
	t.Parallel()

	t.Run("combat", func(t *testing.T) {
		t.Parallel()
		unit := BuildUnitScaffold(&InitOptions{
			ID: "u-1", Name: "Unit u-1", Archetype: "combat", Owner: "player-1",
			CombatRole: "vanguard", Rarity: "rare", Capacity: 4,
		})

		assert.Equal(t, "vanguard", unit.CombatRole)
		assert.Equal(t, "player-1", unit.Owner)
		require.NotNil(t, unit.Core)
		assert.Equal(t, values.RarityRare, unit.Core.Rarity)
		assert.Len(t, unit.Components, 3)
		assert.Equal(t, 100, unit.State.Health)
	})

	t.Run("leader core is epic", func(t *testing.T) {
		t.Parallel()
		unit := BuildUnitScaffold(&InitOptions{
			ID: "boss", Archetype: "leader", Owner: "player-1", Rarity: "uncommon", Capacity: 4,
		})

		require.NotNil(t, unit.Core)
		assert.Equal(t, values.RarityEpic, unit.Core.Rarity)
		assert.Empty(t, unit.CombatRole)
	})

	t.Run("autonomous has no owner or core", func(t *testing.T) {
		t.Parallel()
		unit := BuildUnitScaffold(&InitOptions{
			ID: "drone", Archetype: "autonomous", Owner: "ignored", Rarity: "common", Capacity: 2,
		})

		assert.Empty(t, unit.Owner)
		assert.Nil(t, unit.Core)
		assert.Len(t, unit.Components, 2)
	})
}

func TestInitCommand_ScaffoldValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unit.yaml")

	out, err := executeCommand(t, "init", "--no-interactive", "--id", "scout-1", "--owner", "player-1", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Unit scout-1 saved to")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Contains(t, doc, "unit")

	_, err = executeCommand(t, "validate", path)
	assert.NoError(t, err)
}

func TestInitCommand_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("keep"), 0o600))

	_, err := executeCommand(t, "init", "--no-interactive", "--id", "scout-1", "-o", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))

	_, err = executeCommand(t, "init", "--no-interactive", "--id", "scout-1", "--owner", "player-1", "-o", path, "--force")
	assert.NoError(t, err)
}

func TestInitCommand_MissingID(t *testing.T) {
	_, err := executeCommand(t, "init", "--no-interactive", "-o", filepath.Join(t.TempDir(), "unit.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--id is required")
}
