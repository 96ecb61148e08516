package values

import (
	"encoding/json"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewSeverity(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Severity
		wantErr bool
	}{
		{"info", "info", SevInfo, false},
		{"warning", "warning", SevWarning, false},
		{"warn alias", "warn", SevWarning, false},
		{"error", "error", SevError, false},
		{"critical", "critical", SevCritical, false},
		{"uppercase", "ERROR", SevError, false},
		{"whitespace", "  warning  ", SevWarning, false},
		{"empty", "", SevUnknown, false},
		{"invalid", "fatal", Severity{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sev, err := NewSeverity(tt.input)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.True(t, sev.Equals(tt.want))
			}
		})
	}
}

func Test_Severity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		expected string
	}{
		{SevInfo, "info"},
		{SevWarning, "warning"},
		{SevError, "error"},
		{SevCritical, "critical"},
		{SevUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.severity.String())
		})
	}
}

func Test_Severity_Comparison(t *testing.T) {
	tests := []struct {
		name     string
		sev1     Severity
		sev2     Severity
		isHigher bool
		isEqual  bool
	}{
		{"critical > error", SevCritical, SevError, true, false},
		{"error > warning", SevError, SevWarning, true, false},
		{"warning > info", SevWarning, SevInfo, true, false},
		{"info == info", SevInfo, SevInfo, false, true},
		{"info < warning", SevInfo, SevWarning, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isHigher, tt.sev1.IsHigherThan(tt.sev2))
			assert.Equal(t, tt.isEqual, tt.sev1.Equals(tt.sev2))

			if tt.isHigher || tt.isEqual {
				assert.True(t, tt.sev1.IsHigherOrEqual(tt.sev2))
			}
		})
	}
}

func Test_Severity_IsBlocking(t *testing.T) {
	assert.False(t, SevInfo.IsBlocking())
	assert.False(t, SevWarning.IsBlocking())
	assert.True(t, SevError.IsBlocking())
	assert.True(t, SevCritical.IsBlocking())
}

func Test_Severity_JSON(t *testing.T) {
	original := SevCritical

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Equal(t, `"critical"`, string(data))

	var decoded Severity
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.True(t, original.Equals(decoded))
}

func Test_Severity_YAML(t *testing.T) {
	var doc struct {
		Severity Severity `yaml:"severity"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("severity: warning\n"), &doc))
	assert.True(t, doc.Severity.Equals(SevWarning))

	err := yaml.Unmarshal([]byte("severity: loud\n"), &doc)
	assert.Error(t, err)
}
