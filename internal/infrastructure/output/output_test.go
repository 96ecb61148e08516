package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/armature-dev/armature/internal/application/dto"
	"github.com/armature-dev/armature/internal/application/ports"
	"github.com/armature-dev/armature/internal/domain/validation"
	"github.com/armature-dev/armature/internal/domain/values"
	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestReport creates a report with one passing unit, one failing unit,
// one unit with a warning, and one skipped unit.
func createTestReport() *dto.ValidationReport {
	results := []validation.Result{
		{
			UnitID: "u-1",
			Valid:  true,
			Score:  100,
		},
		{
			UnitID:  "u-2",
			Valid:   false,
			Score:   85,
			Summary: validation.Summary{Errors: 1},
			Issues: []validation.Issue{
				validation.Error(values.CodeCapacityExceeded, "6 components assigned to a frame with capacity 4").
					At("components").
					InStage(validation.StageRequiredFields).
					Suggest("remove 2 components or use a larger frame"),
			},
		},
		{
			UnitID:  "u-3",
			Valid:   true,
			Score:   95,
			Summary: validation.Summary{Warnings: 1},
			Issues: []validation.Issue{
				validation.Warning(values.CodeTooManyModifiers, "unit carries 7 modifiers").
					At("modifiers").
					InStage(validation.StagePerformance),
			},
		},
	}

	batch := validation.NewBatchReport(results)
	batch.StartTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	batch.Duration = 120 * time.Millisecond

	return &dto.ValidationReport{
		Batch:   batch,
		Sources: []string{"units/roster.yaml", "units/roster.yaml", "units/roster.yaml"},
		Skipped: []dto.SkippedUnit{
			{UnitID: "u-4", Source: "units/roster.yaml", Reason: "archetype not selected"},
		},
		RulebookVersion: "1.4.0",
		EngineVersion:   "0.3.0",
	}
}

func plainTable(buf *bytes.Buffer) *TableFormatter {
	f := NewTableFormatter(buf)
	f.EnableColor = false
	return f
}

func TestTableFormatter_Format(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	err := plainTable(&buf).Format(createTestReport())
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Rulebook: v1.4.0 (engine 0.3.0)")
	assert.Contains(t, output, "✓ u-1 (units/roster.yaml)  score 100")
	assert.Contains(t, output, "✗ u-2 (units/roster.yaml)  score 85")
	assert.Contains(t, output, "⚠ u-3 (units/roster.yaml)  score 95")
	assert.Contains(t, output, "[error] SLOT_CAPACITY_EXCEEDED (components): 6 components assigned to a frame with capacity 4")
	assert.Contains(t, output, "Suggestion: remove 2 components or use a larger frame")
	assert.Contains(t, output, "⊘ u-4 (units/roster.yaml): archetype not selected")
	assert.Contains(t, output, "Total units:   3")
	assert.Contains(t, output, "Average score: 93.3")
	assert.Contains(t, output, "Common issues:")
	assert.NotContains(t, output, "\033[", "color disabled")
}

func TestTableFormatter_EmptyBatch(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	report := &dto.ValidationReport{
		Batch:           validation.NewBatchReport(nil),
		RulebookVersion: "1.0.0",
	}

	err := plainTable(&buf).Format(report)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "No units validated.")
	assert.Contains(t, output, "Average score: 0.0")
	assert.NotContains(t, output, "Common issues:")
}

func TestTableFormatter_NilReport(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	err := plainTable(&buf).Format(nil)
	require.Error(t, err)
}

func TestTableFormatter_MalformedUnit(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	report := &dto.ValidationReport{
		Batch: validation.NewBatchReport([]validation.Result{{
			Score:   60,
			Summary: validation.Summary{Criticals: 1},
			Issues: []validation.Issue{
				validation.Critical(values.CodeMalformed, "unit is missing"),
			},
		}}),
		Sources: []string{"broken.yaml"},
	}

	require.NoError(t, plainTable(&buf).Format(report))

	output := buf.String()
	assert.Contains(t, output, "(malformed)")
	assert.Contains(t, output, "[critical] STRUCT_MALFORMED: unit is missing")
}

func TestTableFormatter_Color(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	require.NoError(t, NewTableFormatter(&buf).Format(createTestReport()))

	assert.Contains(t, buf.String(), colorRed)
	assert.Contains(t, buf.String(), colorReset)
}

func TestJSONFormatter_Format_Indented(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	err := NewJSONFormatter(&buf, true).Format(createTestReport())
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "\n  ")
	assert.True(t, strings.HasSuffix(output, "\n"))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "1.4.0", decoded["rulebook_version"])

	batch, ok := decoded["batch"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 3, batch["total"])
	assert.EqualValues(t, 1, batch["invalid"])
}

func TestJSONFormatter_Format_Compact(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	err := NewJSONFormatter(&buf, false).Format(createTestReport())
	require.NoError(t, err)

	output := strings.TrimSuffix(buf.String(), "\n")
	assert.NotContains(t, output, "\n")
}

func TestJSONFormatter_PreservesIssues(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	require.NoError(t, NewJSONFormatter(&buf, false).Format(createTestReport()))

	var decoded dto.ValidationReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Batch.Results, 3)

	issue := decoded.Batch.Results[1].Issues[0]
	assert.Equal(t, values.CodeCapacityExceeded, issue.Code)
	assert.True(t, issue.Severity.Equals(values.SevError))
	assert.Equal(t, "components", issue.Field)
	assert.Equal(t, validation.StageRequiredFields, issue.Stage)
	assert.Equal(t, []string{"units/roster.yaml", "units/roster.yaml", "units/roster.yaml"}, decoded.Sources)
}

func TestYAMLFormatter_Format(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	err := NewYAMLFormatter(&buf).Format(createTestReport())
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "code: SLOT_CAPACITY_EXCEEDED")
	assert.Contains(t, output, "severity: error")

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "1.4.0", decoded["rulebook_version"])
	assert.Contains(t, decoded, "batch")
	assert.Contains(t, decoded, "skipped")
}

func TestAllFormatters_WithSameData(t *testing.T) {
	t.Parallel()
	factory := NewFormatterFactory()

	for _, format := range factory.SupportedFormats() {
		t.Run(format, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			formatter, err := factory.Create(format, &buf, ports.FormatterOptions{Indent: true})
			require.NoError(t, err)

			require.NoError(t, formatter.Format(createTestReport()))
			assert.NotEmpty(t, buf.String())
		})
	}
}
