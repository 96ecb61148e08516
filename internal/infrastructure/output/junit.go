package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/armature-dev/armature/internal/application/dto"
	"github.com/armature-dev/armature/internal/domain/validation"
	"github.com/armature-dev/armature/internal/domain/values"
)

// JUnitFormatter formats validation reports as JUnit XML.
// Each unit is a test case, grouped into one suite per source file.
type JUnitFormatter struct {
	writer io.Writer
}

// NewJUnitFormatter creates a new JUnit formatter.
func NewJUnitFormatter(w io.Writer) *JUnitFormatter {
	return &JUnitFormatter{
		writer: w,
	}
}

// JUnitTestSuites JUnit XML structures
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Skipped   int             `xml:"skipped,attr"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Content string `xml:",chardata"`
}

type JUnitError struct {
	Message string `xml:"message,attr"`
	Content string `xml:",chardata"`
}

type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// Format writes the validation report as JUnit XML.
func (f *JUnitFormatter) Format(report *dto.ValidationReport) error {
	suites := JUnitTestSuites{
		Name: "Armature Validation",
	}
	if report != nil && report.Batch != nil {
		suites.Time = report.Batch.Duration.Seconds()
		suites.TestSuites = buildSuites(report)
	}
	for _, suite := range suites.TestSuites {
		suites.Tests += suite.Tests
		suites.Failures += suite.Failures
		suites.Errors += suite.Errors
	}

	_, err := f.writer.Write([]byte(xml.Header))
	if err != nil {
		return err
	}

	encoder := xml.NewEncoder(f.writer)
	encoder.Indent("", "  ")
	if err := encoder.Encode(suites); err != nil {
		return err
	}

	_, err = f.writer.Write([]byte("\n"))
	return err
}

// buildSuites groups test cases by source file, in order of first appearance.
func buildSuites(report *dto.ValidationReport) []JUnitTestSuite {
	var suites []JUnitTestSuite
	index := make(map[string]int)

	suiteFor := func(source string) *JUnitTestSuite {
		name := source
		if name == "" {
			name = "units"
		}
		i, ok := index[name]
		if !ok {
			i = len(suites)
			index[name] = i
			suites = append(suites, JUnitTestSuite{Name: name})
		}
		return &suites[i]
	}

	for i, result := range report.Batch.Results {
		suite := suiteFor(report.SourceOf(i))
		c := JUnitTestCase{
			Name:      displayUnitID(result.UnitID),
			ClassName: suite.Name,
		}

		switch {
		case result.HasCode(values.CodeRuleExecutionFailed):
			c.Error = &JUnitError{
				Message: failureMessage(result),
				Content: formatIssues(result.Issues),
			}
			suite.Errors++
		case !result.Valid:
			c.Failure = &JUnitFailure{
				Message: failureMessage(result),
				Content: formatIssues(result.Issues),
			}
			suite.Failures++
		}

		suite.Tests++
		suite.TestCases = append(suite.TestCases, c)
	}

	for _, skipped := range report.Skipped {
		suite := suiteFor(skipped.Source)
		suite.TestCases = append(suite.TestCases, JUnitTestCase{
			Name:      displayUnitID(skipped.UnitID),
			ClassName: suite.Name,
			Skipped:   &JUnitSkipped{Message: skipped.Reason},
		})
		suite.Tests++
		suite.Skipped++
	}

	return suites
}

func failureMessage(result validation.Result) string {
	blocking := result.Summary.Errors + result.Summary.Criticals
	if blocking == 1 {
		return fmt.Sprintf("score %d: 1 blocking issue", result.Score)
	}
	return fmt.Sprintf("score %d: %d blocking issues", result.Score, blocking)
}

func formatIssues(issues []validation.Issue) string {
	var out strings.Builder
	for _, issue := range issues {
		out.WriteString(issue.String())
		out.WriteString("\n")
		if issue.Suggestion != "" {
			fmt.Fprintf(&out, "  Suggestion: %s\n", issue.Suggestion)
		}
	}
	return out.String()
}
