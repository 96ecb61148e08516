package validation

import (
	"github.com/armature-dev/armature/internal/domain/values"
)

// Summary counts issues per severity.
type Summary struct {
	Criticals int `json:"criticals" yaml:"criticals"`
	Errors    int `json:"errors" yaml:"errors"`
	Warnings  int `json:"warnings" yaml:"warnings"`
	Infos     int `json:"infos" yaml:"infos"`
}

// Summarize counts issues by severity. Issues with an unknown severity are ignored.
func Summarize(issues []Issue) Summary {
	var s Summary
	for _, issue := range issues {
		switch {
		case issue.Severity.Equals(values.SevCritical):
			s.Criticals++
		case issue.Severity.Equals(values.SevError):
			s.Errors++
		case issue.Severity.Equals(values.SevWarning):
			s.Warnings++
		case issue.Severity.Equals(values.SevInfo):
			s.Infos++
		}
	}
	return s
}

// Total returns the number of counted issues.
func (s Summary) Total() int {
	return s.Criticals + s.Errors + s.Warnings + s.Infos
}

// Blocking reports whether the summary holds any ERROR or CRITICAL issue.
func (s Summary) Blocking() bool {
	return s.Errors > 0 || s.Criticals > 0
}

// Result is the outcome of validating one unit.
type Result struct {
	UnitID  string  `json:"unit_id" yaml:"unit_id"`
	Valid   bool    `json:"valid" yaml:"valid"`
	Score   int     `json:"score" yaml:"score"`
	Summary Summary `json:"summary" yaml:"summary"`
	Issues  []Issue `json:"issues" yaml:"issues"`
}

// HasCode reports whether any issue carries the given code.
func (r Result) HasCode(code values.IssueCode) bool {
	for _, issue := range r.Issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}

// IssuesWithCode returns the issues carrying the given code.
func (r Result) IssuesWithCode(code values.IssueCode) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Code == code {
			out = append(out, issue)
		}
	}
	return out
}

// IssuesAtLeast returns the issues at or above a severity.
func (r Result) IssuesAtLeast(sev values.Severity) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity.IsHigherOrEqual(sev) {
			out = append(out, issue)
		}
	}
	return out
}
