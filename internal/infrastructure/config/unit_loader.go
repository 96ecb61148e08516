// Package config provides infrastructure for loading unit and rulebook
// documents. This package handles YAML parsing, schema checks and file I/O.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/armature-dev/armature/internal/domain/entities"
)

//go:embed schema/unit.schema.json
var unitSchemaJSON []byte

const unitSchemaURL = "unit.schema.json"

// UnitLoader loads unit snapshots from YAML documents.
//
// A document holds either a single `unit:` mapping or a `units:` list.
// Every mapping entry is checked against the embedded JSON Schema for field
// types. Entries that are not mappings load as nil so the pipeline reports
// them as malformed instead of the whole file failing.
type UnitLoader struct {
	schema *jsonschema.Schema
}

// NewUnitLoader compiles the embedded unit schema.
func NewUnitLoader() (*UnitLoader, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource(unitSchemaURL, bytes.NewReader(unitSchemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to add unit schema resource: %w", err)
	}
	schema, err := compiler.Compile(unitSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile unit schema: %w", err)
	}
	return &UnitLoader{schema: schema}, nil
}

// LoadUnits loads all units from a YAML file.
func (l *UnitLoader) LoadUnits(path string) ([]*entities.Unit, error) {
	// Security: Use os.OpenRoot to prevent path traversal attacks
	root, err := os.OpenRoot(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open unit directory: %w", err)
	}
	defer func() {
		_ = root.Close() // Best-effort cleanup
	}()

	file, err := root.Open(filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open unit file: %w", err)
	}
	defer func() {
		_ = file.Close() // Best-effort cleanup
	}()

	return l.LoadUnitsFromReader(file)
}

// LoadUnitsFromReader loads all units from a YAML stream.
func (l *UnitLoader) LoadUnitsFromReader(r io.Reader) ([]*entities.Unit, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read unit document: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("unit document is empty")
	}

	entries, err := documentEntries(data)
	if err != nil {
		return nil, err
	}

	units := make([]*entities.Unit, len(entries))
	var problems []string
	for i, entry := range entries {
		fields, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}

		if err := l.schema.Validate(fields); err != nil {
			var validationErr *jsonschema.ValidationError
			if errors.As(err, &validationErr) {
				for _, msg := range schemaMessages(validationErr) {
					problems = append(problems, fmt.Sprintf("unit %d: %s", i, msg))
				}
				continue
			}
			return nil, fmt.Errorf("unit %d: schema check failed: %w", i, err)
		}

		unit, err := decodeUnit(fields)
		if err != nil {
			return nil, fmt.Errorf("unit %d: %w", i, err)
		}
		units[i] = unit
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("unit document failed schema validation:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return units, nil
}

// documentEntries converts YAML to generic JSON values and extracts the
// entries under `unit` or `units`.
func documentEntries(data []byte) ([]interface{}, error) {
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode unit YAML: %w", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(jsonData))
	decoder.UseNumber()
	var doc interface{}
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode unit YAML: %w", err)
	}

	root, ok := doc.(map[string]interface{})
	if !ok {
		return nil, errors.New("unit document must be a mapping with a unit or units key")
	}

	single, hasUnit := root["unit"]
	list, hasUnits := root["units"]
	switch {
	case hasUnit && hasUnits:
		return nil, errors.New("unit document cannot contain both unit and units")
	case hasUnit:
		return []interface{}{single}, nil
	case hasUnits:
		entries, ok := list.([]interface{})
		if !ok {
			return nil, errors.New("units must be a list")
		}
		return entries, nil
	default:
		return nil, errors.New("unit document must be a mapping with a unit or units key")
	}
}

func decodeUnit(fields map[string]interface{}) (*entities.Unit, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode unit: %w", err)
	}
	var unit entities.Unit
	if err := json.Unmarshal(raw, &unit); err != nil {
		return nil, fmt.Errorf("failed to decode unit: %w", err)
	}
	return &unit, nil
}

// schemaMessages flattens a schema validation error into one line per leaf
// cause, prefixed with the instance location.
func schemaMessages(err *jsonschema.ValidationError) []string {
	var messages []string

	var collect func(*jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 && e.Message != "" {
			location := e.InstanceLocation
			if location == "" {
				location = "(root)"
			}
			messages = append(messages, fmt.Sprintf("%s: %s", location, e.Message))
		}
		for _, cause := range e.Causes {
			collect(cause)
		}
	}
	collect(err)

	if len(messages) == 0 {
		messages = append(messages, err.Error())
	}
	return messages
}
