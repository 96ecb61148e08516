package engine

import (
	"fmt"

	"github.com/armature-dev/armature/internal/domain/validation"
	"github.com/armature-dev/armature/internal/domain/values"
)

// generateResultMessage generates a human-readable message for a unit result.
func generateResultMessage(result validation.Result) string {
	s := result.Summary

	switch {
	case s.Criticals > 0:
		if s.Criticals == 1 {
			for _, issue := range result.Issues {
				if issue.Severity.Equals(values.SevCritical) {
					return issue.Message
				}
			}
			return "1 critical issue"
		}
		return fmt.Sprintf("%d critical issues", s.Criticals)

	case s.Errors > 0:
		if s.Errors == 1 {
			return "1 error found"
		}
		return fmt.Sprintf("%d errors found", s.Errors)

	case s.Warnings > 0:
		if s.Warnings == 1 {
			return "Valid with 1 warning"
		}
		return fmt.Sprintf("Valid with %d warnings", s.Warnings)

	case s.Infos > 0:
		return "Valid"

	default:
		return "All checks passed"
	}
}
