// Package validation provides the domain models produced by the validation pipeline.
package validation

import (
	"fmt"

	"github.com/armature-dev/armature/internal/domain/values"
)

// Stage names a pipeline stage. Issues are tagged with the stage that raised them.
type Stage string

const (
	StageBasicStructure Stage = "basic_structure"
	StageRequiredFields Stage = "required_fields"
	StageBusinessRules  Stage = "business_rules"
	StagePerformance    Stage = "performance"
	StageCompatibility  Stage = "compatibility"
	StageCustom         Stage = "custom"
)

// Issue is a single finding about a unit.
type Issue struct {
	Severity   values.Severity  `json:"severity" yaml:"severity"`
	Code       values.IssueCode `json:"code" yaml:"code"`
	Message    string           `json:"message" yaml:"message"`
	Field      string           `json:"field,omitempty" yaml:"field,omitempty"`
	Suggestion string           `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	Stage      Stage            `json:"stage,omitempty" yaml:"stage,omitempty"`
}

// NewIssue creates an issue with a formatted message.
func NewIssue(sev values.Severity, code values.IssueCode, format string, args ...any) Issue {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return Issue{Severity: sev, Code: code, Message: msg}
}

// Critical creates a CRITICAL issue.
func Critical(code values.IssueCode, format string, args ...any) Issue {
	return NewIssue(values.SevCritical, code, format, args...)
}

// Error creates an ERROR issue.
func Error(code values.IssueCode, format string, args ...any) Issue {
	return NewIssue(values.SevError, code, format, args...)
}

// Warning creates a WARNING issue.
func Warning(code values.IssueCode, format string, args ...any) Issue {
	return NewIssue(values.SevWarning, code, format, args...)
}

// Info creates an INFO issue.
func Info(code values.IssueCode, format string, args ...any) Issue {
	return NewIssue(values.SevInfo, code, format, args...)
}

// At returns a copy of the issue pointing at a field path.
func (i Issue) At(field string) Issue {
	i.Field = field
	return i
}

// Suggest returns a copy of the issue carrying a remediation hint.
func (i Issue) Suggest(s string) Issue {
	i.Suggestion = s
	return i
}

// InStage returns a copy of the issue tagged with a stage.
func (i Issue) InStage(s Stage) Issue {
	i.Stage = s
	return i
}

// String renders the issue for logs.
func (i Issue) String() string {
	if i.Field != "" {
		return fmt.Sprintf("[%s] %s (%s): %s", i.Severity, i.Code, i.Field, i.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", i.Severity, i.Code, i.Message)
}
