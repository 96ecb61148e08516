package services

import (
	"github.com/armature-dev/armature/internal/domain/entities"
	"github.com/armature-dev/armature/internal/domain/validation"
)

const (
	maxScore = 100
	minScore = 0
)

// ScoreAggregator turns a severity-tagged issue list into a bounded quality
// score and a validity verdict.
//
// Business Rule:
//   - score = clamp(100 - Wc*criticals - We*errors - Ww*warnings - Wi*infos, 0, 100)
//   - valid = no ERROR and no CRITICAL issues
//   - warnings and infos lower the score but never affect validity
type ScoreAggregator struct {
	weights entities.ScoreWeights
}

// NewScoreAggregator creates an aggregator with the given deduction weights.
func NewScoreAggregator(weights entities.ScoreWeights) *ScoreAggregator {
	return &ScoreAggregator{weights: weights}
}

// Score computes the clamped score for a summary.
func (s *ScoreAggregator) Score(sum validation.Summary) int {
	score := maxScore -
		s.weights.Critical*sum.Criticals -
		s.weights.Error*sum.Errors -
		s.weights.Warning*sum.Warnings -
		s.weights.Info*sum.Infos

	if score < minScore {
		return minScore
	}
	if score > maxScore {
		return maxScore
	}
	return score
}

// Aggregate builds the final result for a unit from its collected issues.
func (s *ScoreAggregator) Aggregate(unitID string, issues []validation.Issue) validation.Result {
	sum := validation.Summarize(issues)
	if issues == nil {
		issues = []validation.Issue{}
	}
	return validation.Result{
		UnitID:  unitID,
		Valid:   !sum.Blocking(),
		Score:   s.Score(sum),
		Summary: sum,
		Issues:  issues,
	}
}
