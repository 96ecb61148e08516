package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/armature-dev/armature/internal/application/dto"
)

// JSONFormatter formats validation reports as JSON.
type JSONFormatter struct {
	writer io.Writer
	indent bool
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(w io.Writer, indent bool) *JSONFormatter {
	return &JSONFormatter{
		writer: w,
		indent: indent,
	}
}

// Format writes the validation report as JSON.
func (f *JSONFormatter) Format(report *dto.ValidationReport) error {
	var data []byte
	var err error

	if f.indent {
		data, err = json.MarshalIndent(report, "", "  ")
	} else {
		data, err = json.Marshal(report)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := f.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	_, err = f.writer.Write([]byte("\n"))
	return err
}
