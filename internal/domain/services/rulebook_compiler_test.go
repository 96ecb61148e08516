package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armature-dev/armature/internal/domain/entities"
	"github.com/armature-dev/armature/internal/domain/values"
)

func TestRulebookCompiler_Defaults(t *testing.T) {
	t.Parallel()

	rb, err := NewRulebookCompiler().Compile()

	require.NoError(t, err)
	assert.Equal(t, entities.DefaultRulebook(), rb)
}

func TestRulebookCompiler_OverlayAndValidate(t *testing.T) {
	t.Parallel()

	raw := &entities.Rulebook{
		CapacityPolicy: entities.CapacityLenient,
		Rules: []entities.ExpressionRule{{
			Name:     "limb-heavy",
			Expect:   `len(filter(components, .category == "limb")) <= 4`,
			Severity: values.SevWarning,
			Code:     "HOUSE_LIMB_HEAVY",
		}},
	}

	rb, err := NewRulebookCompiler().Compile(raw)

	require.NoError(t, err)
	assert.Equal(t, entities.CapacityLenient, rb.CapacityPolicy)
	assert.Len(t, rb.Rules, 1)
	assert.Equal(t, "1.0.0", rb.Version)
	assert.Empty(t, raw.Version, "raw input is not mutated")
}

func TestRulebookCompiler_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     *entities.Rulebook
		wantErr string
	}{
		{
			name:    "invalid policy",
			raw:     &entities.Rulebook{CapacityPolicy: "whatever"},
			wantErr: "rulebook validation failed",
		},
		{
			name: "broken expression",
			raw: &entities.Rulebook{Rules: []entities.ExpressionRule{{
				Name: "broken", Expect: "len(", Severity: values.SevInfo, Code: "X",
			}}},
			wantErr: "rulebook expression rules",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewRulebookCompiler().Compile(tt.raw)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
