package output

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/armature-dev/armature/internal/application/dto"
	"github.com/armature-dev/armature/internal/domain/validation"
	"github.com/armature-dev/armature/internal/domain/values"
	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"
)

// maxArtifactContentSize caps the unit file content embedded in a report.
const maxArtifactContentSize = 512 * 1024

type sarifMapper struct {
	report    *dto.ValidationReport
	cwd       string
	artifacts []*sarif.Artifact
	seen      map[string]bool
}

func newSARIFMapper(report *dto.ValidationReport) *sarifMapper {
	cwd, _ := os.Getwd() // Best effort, ignore error
	return &sarifMapper{
		report: report,
		cwd:    cwd,
		seen:   make(map[string]bool),
	}
}

// mapToRun populates the SARIF run with rules, results, artifacts, and invocations.
func (m *sarifMapper) mapToRun(run *sarif.Run) {
	m.addRules(run)
	m.addResults(run)
	m.addArtifacts(run)
	m.addInvocation(run)
	m.addProperties(run)
}

// addRules registers one rule per distinct issue code, in order of first use.
func (m *sarifMapper) addRules(run *sarif.Run) {
	registered := make(map[values.IssueCode]bool)

	for _, result := range m.report.Batch.Results {
		for _, issue := range result.Issues {
			if registered[issue.Code] {
				continue
			}
			registered[issue.Code] = true

			id := string(issue.Code)
			name := describeCode(issue.Code)
			rule := sarif.NewReportingDescriptor().WithID(id)
			rule.WithName(name)
			rule.WithShortDescription(&sarif.MultiformatMessageString{
				Text: &name,
			})
			rule.WithDefaultConfiguration(&sarif.ReportingConfiguration{
				Level: mapSeverityToLevel(issue.Severity),
			})

			props := sarif.NewPropertyBag()
			if issue.Stage != "" {
				props.WithTags([]string{string(issue.Stage)})
			}
			rule.WithProperties(props)

			run.Tool.Driver.AddRule(rule)
		}
	}
}

// addResults converts every issue into a SARIF result.
func (m *sarifMapper) addResults(run *sarif.Run) {
	for i, result := range m.report.Batch.Results {
		source := m.report.SourceOf(i)
		for _, issue := range result.Issues {
			run.AddResult(m.mapIssue(result, issue, source))
		}
	}
}

func (m *sarifMapper) mapIssue(unit validation.Result, issue validation.Issue, source string) *sarif.Result {
	result := sarif.NewRuleResult(string(issue.Code))
	result.Level = mapSeverityToLevel(issue.Severity)
	result.Kind = "fail"
	result.Message = sarif.NewTextMessage(displayUnitID(unit.UnitID) + ": " + issue.Message)

	if source != "" {
		result.Locations = []*sarif.Location{m.createLocation(source)}
	}

	props := sarif.NewPropertyBag()
	props.Add("unit", unit.UnitID)
	props.Add("severity", issue.Severity.String())
	if issue.Field != "" {
		props.Add("field", issue.Field)
	}
	if issue.Stage != "" {
		props.Add("stage", string(issue.Stage))
	}
	if issue.Suggestion != "" {
		props.Add("suggestion", issue.Suggestion)
	}
	result.WithProperties(props)

	return result
}

// mapSeverityToLevel converts issue severity to a SARIF level.
func mapSeverityToLevel(sev values.Severity) string {
	switch {
	case sev.IsBlocking():
		return "error"
	case sev.Equals(values.SevWarning):
		return "warning"
	default:
		return "note"
	}
}

// describeCode turns SLOT_CAPACITY_EXCEEDED into "Slot capacity exceeded".
func describeCode(code values.IssueCode) string {
	words := strings.ToLower(strings.ReplaceAll(string(code), "_", " "))
	if words == "" {
		return ""
	}
	return strings.ToUpper(words[:1]) + words[1:]
}

func (m *sarifMapper) createLocation(path string) *sarif.Location {
	uri := m.normalizeURI(path)
	m.registerArtifact(path, uri)

	pLoc := sarif.NewPhysicalLocation().
		WithArtifactLocation(sarif.NewArtifactLocation().WithURI(uri))

	return sarif.NewLocation().WithPhysicalLocation(pLoc)
}

// normalizeURI converts a file path to a SARIF-compliant URI.
func (m *sarifMapper) normalizeURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}

	if m.cwd != "" {
		if rel, err := filepath.Rel(m.cwd, abs); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}

	return "file://" + filepath.ToSlash(abs)
}

// registerArtifact records a unit file once, embedding small files so
// viewers can show them.
func (m *sarifMapper) registerArtifact(path, uri string) {
	if m.seen[uri] {
		return
	}
	m.seen[uri] = true

	artifact := sarif.NewArtifact().
		WithLocation(sarif.NewArtifactLocation().WithURI(uri))

	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		artifact.WithLength(int(info.Size()))
		if info.Size() < maxArtifactContentSize {
			//nolint:gosec // G304: path is a unit file the user asked to validate
			if content, err := os.ReadFile(path); err == nil {
				artifact.WithContents(sarif.NewArtifactContent().WithText(string(content)))
			}
		}
	}

	m.artifacts = append(m.artifacts, artifact)
}

func (m *sarifMapper) addArtifacts(run *sarif.Run) {
	for _, artifact := range m.artifacts {
		run.AddArtifact(artifact)
	}
}

// addInvocation adds execution metadata to the run. A rule that failed to
// execute marks the invocation unsuccessful.
func (m *sarifMapper) addInvocation(run *sarif.Run) {
	batch := m.report.Batch
	invocation := sarif.NewInvocation()

	successful := true
	for _, result := range batch.Results {
		if result.HasCode(values.CodeRuleExecutionFailed) {
			successful = false
			break
		}
	}
	invocation.ExecutionSuccessful = ptrBool(successful)

	startTime := batch.StartTime.UTC().Format("2006-01-02T15:04:05.000Z")
	endTime := batch.StartTime.Add(batch.Duration).UTC().Format("2006-01-02T15:04:05.000Z")
	invocation.StartTimeUtc = &startTime
	invocation.EndTimeUtc = &endTime

	if hostname, err := os.Hostname(); err == nil {
		invocation.Machine = &hostname
	}

	if m.cwd != "" {
		cwd := "file://" + filepath.ToSlash(m.cwd)
		invocation.WorkingDirectory = sarif.NewArtifactLocation().WithURI(cwd)
	}

	props := sarif.NewPropertyBag()
	props.Add("reportId", batch.ReportID.String())
	props.Add("rulebookVersion", m.report.RulebookVersion)
	invocation.WithProperties(props)

	run.AddInvocation(invocation)
}

// addProperties adds batch statistics to run properties.
func (m *sarifMapper) addProperties(run *sarif.Run) {
	batch := m.report.Batch
	props := sarif.NewPropertyBag()
	props.Add("total", batch.Total)
	props.Add("valid", batch.ValidCount)
	props.Add("invalid", batch.InvalidCount)
	props.Add("averageScore", batch.AverageScore)
	props.Add("commonIssues", batch.CommonIssues)
	if len(m.report.Skipped) > 0 {
		props.Add("skipped", m.report.Skipped)
	}
	run.WithProperties(props)
}
