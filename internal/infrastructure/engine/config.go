// Package engine runs the validation pipeline over units.
package engine

import (
	"runtime"
)

// MinConcurrentUnits is the minimum number of units validated at once,
// ensuring reasonable parallelism even on single-core systems.
const MinConcurrentUnits = 4

// PipelineConfig controls batch execution behavior.
type PipelineConfig struct {
	// Parallel validates batch units on a worker pool.
	Parallel bool
	// MaxConcurrent caps the worker pool. Zero or less picks a default.
	MaxConcurrent int
}

// DefaultPipelineConfig returns sensible defaults for parallel execution.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Parallel:      true,
		MaxConcurrent: defaultConcurrency(),
	}
}

// defaultConcurrency is NumCPU, but at least MinConcurrentUnits.
func defaultConcurrency() int {
	n := runtime.NumCPU()
	if n < MinConcurrentUnits {
		n = MinConcurrentUnits
	}
	return n
}
