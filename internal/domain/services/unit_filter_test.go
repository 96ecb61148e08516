package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armature-dev/armature/internal/domain/entities"
	"github.com/armature-dev/armature/internal/domain/values"
)

func Test_UnitFilter_NoFilters(t *testing.T) {
	t.Parallel()
	filter := NewUnitFilter()

	ok, _ := filter.ShouldValidate(&entities.Unit{ID: "u-1"})
	assert.True(t, ok, "no filters should allow all units")
}

func Test_UnitFilter_ExclusiveMode(t *testing.T) {
	t.Parallel()
	filter := NewUnitFilter().
		WithExclusiveUnits([]string{"u-1", "u-2"}).
		WithExcludedUnits([]string{"u-1"})

	tests := []struct {
		unitID   string
		expected bool
	}{
		{"u-1", true},
		{"u-2", true},
		{"u-3", false},
	}

	for _, tt := range tests {
		t.Run(tt.unitID, func(t *testing.T) {
			t.Parallel()
			ok, _ := filter.ShouldValidate(&entities.Unit{ID: tt.unitID})
			assert.Equal(t, tt.expected, ok)
		})
	}
}

func Test_UnitFilter_ExcludeAndArchetype(t *testing.T) {
	t.Parallel()
	filter := NewUnitFilter().
		WithExcludedUnits([]string{"u-skip"}).
		WithIncludedArchetypes([]string{"combat", "leader"})

	tests := []struct {
		name       string
		unit       *entities.Unit
		expected   bool
		wantReason string
	}{
		{"combat unit", &entities.Unit{ID: "u-1", Archetype: values.ArchetypeCombat}, true, ""},
		{"excluded id", &entities.Unit{ID: "u-skip", Archetype: values.ArchetypeCombat}, false, "excluded by --exclude-unit"},
		{"other archetype", &entities.Unit{ID: "u-2", Archetype: values.ArchetypeSupport}, false, "excluded by --archetype filter"},
		{"malformed unit always selected", nil, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ok, reason := filter.ShouldValidate(tt.unit)
			assert.Equal(t, tt.expected, ok)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func Test_UnitFilter_Expression(t *testing.T) {
	t.Parallel()

	program, err := CompileUnitFilter(`archetype == "combat" && modifiers > 0 && capacity >= 4`)
	require.NoError(t, err)
	filter := NewUnitFilter().WithFilterExpression(program)

	ok, _ := filter.ShouldValidate(validUnit(values.ArchetypeCombat))
	assert.True(t, ok)

	ok, reason := filter.ShouldValidate(validUnit(values.ArchetypeSupport))
	assert.False(t, ok)
	assert.Equal(t, "excluded by --filter expression", reason)
}

func Test_CompileUnitFilter_Errors(t *testing.T) {
	t.Parallel()

	_, err := CompileUnitFilter(`unknown_field == 1`)
	assert.Error(t, err)

	_, err = CompileUnitFilter(`name`)
	assert.Error(t, err, "non-boolean filters are rejected")
}
