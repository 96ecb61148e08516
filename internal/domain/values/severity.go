// Package values contains domain value objects that encapsulate
// primitive types with validation and ordering.
package values

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
)

// Severity represents how serious a validation issue is.
// Enforces valid severity values and provides ordering.
type Severity struct {
	value SeverityLevel
}

// SeverityLevel is the internal representation
type SeverityLevel int

const (
	SeverityUnknown  SeverityLevel = 0
	SeverityInfo     SeverityLevel = 1
	SeverityWarning  SeverityLevel = 2
	SeverityError    SeverityLevel = 3
	SeverityCritical SeverityLevel = 4
)

// Predefined severity values
var (
	SevUnknown  = Severity{SeverityUnknown}
	SevInfo     = Severity{SeverityInfo}
	SevWarning  = Severity{SeverityWarning}
	SevError    = Severity{SeverityError}
	SevCritical = Severity{SeverityCritical}
)

// NewSeverity creates a Severity from string
func NewSeverity(s string) (Severity, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	switch s {
	case "info":
		return SevInfo, nil
	case "warning", "warn":
		return SevWarning, nil
	case "error":
		return SevError, nil
	case "critical":
		return SevCritical, nil
	case "":
		return SevUnknown, nil
	default:
		return Severity{}, fmt.Errorf("invalid severity: %s", s)
	}
}

// MustNewSeverity creates a Severity or panics
func MustNewSeverity(s string) Severity {
	sev, err := NewSeverity(s)
	if err != nil {
		panic(err)
	}
	return sev
}

// String returns the string representation
func (s Severity) String() string {
	switch s.value {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return ""
	}
}

// Level returns the numeric severity level (for ordering)
func (s Severity) Level() int {
	return int(s.value)
}

// IsHigherThan returns true if this severity is higher than the other
func (s Severity) IsHigherThan(other Severity) bool {
	return s.value > other.value
}

// IsHigherOrEqual returns true if this severity is higher or equal to the other
func (s Severity) IsHigherOrEqual(other Severity) bool {
	return s.value >= other.value
}

// Equals checks if two severities are equal
func (s Severity) Equals(other Severity) bool {
	return s.value == other.value
}

// IsBlocking reports whether an issue of this severity invalidates the unit.
func (s Severity) IsBlocking() bool {
	return s.value >= SeverityError
}

// MarshalJSON implements json.Marshaler
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (s *Severity) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) < 2 {
		return fmt.Errorf("invalid severity JSON")
	}
	str = str[1 : len(str)-1]

	sev, err := NewSeverity(str)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}

// MarshalYAML implements yaml.InterfaceMarshaler
func (s Severity) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// UnmarshalYAML implements yaml.BytesUnmarshaler
func (s *Severity) UnmarshalYAML(data []byte) error {
	var str string
	if err := yaml.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("invalid severity YAML: %w", err)
	}

	sev, err := NewSeverity(str)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}
