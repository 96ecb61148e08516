package output

import (
	"fmt"
	"io"

	"github.com/armature-dev/armature/internal/application/dto"
	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"
)

// SARIFFormatter formats validation reports as SARIF 2.1.0 JSON.
// Issue codes become SARIF rules and issues become results located in the
// unit file they came from.
//
// Usage:
//
//	formatter := output.NewSARIFFormatter(os.Stdout)
//	if err := formatter.Format(report); err != nil {
//	    log.Fatal(err)
//	}
type SARIFFormatter struct {
	writer io.Writer
}

// NewSARIFFormatter creates a new SARIF formatter.
func NewSARIFFormatter(writer io.Writer) *SARIFFormatter {
	return &SARIFFormatter{
		writer: writer,
	}
}

// Format writes the validation report as SARIF 2.1.0 JSON.
func (f *SARIFFormatter) Format(report *dto.ValidationReport) error {
	sarifReport := sarif.NewReport()

	run := sarif.NewRunWithInformationURI("Armature", "https://github.com/armature-dev/armature")
	if report != nil && report.EngineVersion != "" {
		run.Tool.Driver.Version = ptrString(report.EngineVersion)
	}
	run.Tool.Driver.Organization = ptrString("Armature")

	if report != nil && report.Batch != nil {
		newSARIFMapper(report).mapToRun(run)
	}

	sarifReport.AddRun(run)

	if err := sarifReport.Write(f.writer); err != nil {
		return fmt.Errorf("failed to write SARIF output: %w", err)
	}

	_, err := f.writer.Write([]byte("\n"))
	return err
}

func ptrString(s string) *string {
	return &s
}

func ptrBool(b bool) *bool {
	return &b
}
