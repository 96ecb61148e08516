package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-yaml"

	"github.com/armature-dev/armature/internal/domain/entities"
	"github.com/armature-dev/armature/internal/domain/services"
	"github.com/armature-dev/armature/internal/version"
)

// RulebookLoader loads rulebook overlays from YAML files.
//
// Each file is decoded strictly (unknown keys are rejected), its version and
// engine requirement are checked, and the overlays are compiled onto the
// built-in rulebook left to right.
type RulebookLoader struct {
	compiler      *services.RulebookCompiler
	engineVersion string
}

// NewRulebookLoader creates a loader that checks `requires_engine` against
// engineVersion. Development builds (non-semver versions) satisfy any
// constraint.
func NewRulebookLoader(engineVersion string) *RulebookLoader {
	return &RulebookLoader{
		compiler:      services.NewRulebookCompiler(),
		engineVersion: engineVersion,
	}
}

// LoadRulebook loads and compiles the given overlay files. With no paths it
// returns the built-in rulebook.
func (l *RulebookLoader) LoadRulebook(paths ...string) (*entities.Rulebook, error) {
	overlays := make([]*entities.Rulebook, 0, len(paths))
	for _, path := range paths {
		overlay, err := l.loadSingleRulebook(path)
		if err != nil {
			return nil, fmt.Errorf("loading rulebook %q: %w", path, err)
		}
		overlays = append(overlays, overlay)
	}

	return l.compiler.Compile(overlays...)
}

func (l *RulebookLoader) loadSingleRulebook(path string) (*entities.Rulebook, error) {
	// Security: Use os.OpenRoot to prevent path traversal attacks
	root, err := os.OpenRoot(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open rulebook directory: %w", err)
	}
	defer func() {
		_ = root.Close() // Best-effort cleanup
	}()

	file, err := root.Open(filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open rulebook: %w", err)
	}
	defer func() {
		_ = file.Close() // Best-effort cleanup
	}()

	return l.LoadRulebookFromReader(file)
}

// LoadRulebookFromReader decodes one overlay and checks its version fields.
// Note: the result is NOT compiled onto the defaults.
func (l *RulebookLoader) LoadRulebookFromReader(r io.Reader) (*entities.Rulebook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read rulebook: %w", err)
	}

	var rulebook entities.Rulebook
	decoder := yaml.NewDecoder(bytes.NewReader(data), yaml.DisallowUnknownField())
	if err := decoder.Decode(&rulebook); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode rulebook YAML: %w", err)
	}

	zeros, err := explicitZeros(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode rulebook YAML: %w", err)
	}
	rulebook.ZeroOverrides = zeros

	if err := l.checkVersions(&rulebook); err != nil {
		return nil, err
	}
	return &rulebook, nil
}

// explicitZeros lists the threshold and weight keys written as 0, so that an
// overlay can zero a value instead of inheriting it.
func explicitZeros(data []byte) ([]string, error) {
	var doc struct {
		Thresholds map[string]interface{} `yaml:"thresholds"`
		Weights    map[string]interface{} `yaml:"weights"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	var zeros []string
	for section, fields := range map[string]map[string]interface{}{
		"thresholds": doc.Thresholds,
		"weights":    doc.Weights,
	} {
		for key, v := range fields {
			if isZeroNumber(v) {
				zeros = append(zeros, section+"."+key)
			}
		}
	}
	sort.Strings(zeros)
	return zeros, nil
}

func isZeroNumber(v interface{}) bool {
	switch n := v.(type) {
	case int:
		return n == 0
	case int64:
		return n == 0
	case uint64:
		return n == 0
	case float64:
		return n == 0
	default:
		return false
	}
}

func (l *RulebookLoader) checkVersions(rulebook *entities.Rulebook) error {
	if rulebook.Version != "" {
		if _, err := semver.NewVersion(rulebook.Version); err != nil {
			return fmt.Errorf("rulebook version %q is not valid semver: %w", rulebook.Version, err)
		}
	}

	if rulebook.RequiresEngine == "" {
		return nil
	}
	constraint, err := semver.NewConstraint(rulebook.RequiresEngine)
	if err != nil {
		return fmt.Errorf("invalid requires_engine constraint %q: %w", rulebook.RequiresEngine, err)
	}

	engine, release := version.Info{Version: l.engineVersion}.Semver()
	if !release {
		return nil
	}
	if !constraint.Check(engine) {
		return &entities.IncompatibleEngineError{
			Constraint: rulebook.RequiresEngine,
			Actual:     l.engineVersion,
		}
	}
	return nil
}
