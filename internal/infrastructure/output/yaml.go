package output

import (
	"io"

	"github.com/armature-dev/armature/internal/application/dto"
	"github.com/goccy/go-yaml"
)

// YAMLFormatter formats validation reports as YAML.
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

// Format writes the validation report as YAML.
func (f *YAMLFormatter) Format(report *dto.ValidationReport) error {
	encoder := yaml.NewEncoder(f.writer, yaml.Indent(2))

	if err := encoder.Encode(report); err != nil {
		return err
	}

	return encoder.Close()
}
