package validation

import (
	"sort"
	"time"

	"github.com/armature-dev/armature/internal/domain/values"
)

// MaxCommonIssues caps the number of issue codes reported in a batch.
const MaxCommonIssues = 10

// IssueFrequency is how often an issue code occurred across a batch.
type IssueFrequency struct {
	Code  values.IssueCode `json:"code" yaml:"code"`
	Count int              `json:"count" yaml:"count"`
}

// BatchReport aggregates the results of validating a collection of units.
type BatchReport struct {
	ReportID     values.ReportID  `json:"report_id" yaml:"report_id"`
	StartTime    time.Time        `json:"start_time" yaml:"start_time"`
	Duration     time.Duration    `json:"duration_ms" yaml:"duration_ms"`
	Total        int              `json:"total" yaml:"total"`
	ValidCount   int              `json:"valid" yaml:"valid"`
	InvalidCount int              `json:"invalid" yaml:"invalid"`
	AverageScore float64          `json:"average_score" yaml:"average_score"`
	CommonIssues []IssueFrequency `json:"common_issues" yaml:"common_issues"`
	Results      []Result         `json:"results" yaml:"results"`
}

// batchTally is the commutative reduction behind a BatchReport.
// Tallies merge in any order and give the same totals.
type batchTally struct {
	valid    int
	invalid  int
	scoreSum int
	codes    map[values.IssueCode]int
}

func newBatchTally() *batchTally {
	return &batchTally{codes: make(map[values.IssueCode]int)}
}

func (t *batchTally) add(r Result) {
	if r.Valid {
		t.valid++
	} else {
		t.invalid++
	}
	t.scoreSum += r.Score
	for _, issue := range r.Issues {
		t.codes[issue.Code]++
	}
}

// NewBatchReport summarizes per-unit results. Results are kept in the given order.
func NewBatchReport(results []Result) *BatchReport {
	tally := newBatchTally()
	for _, r := range results {
		tally.add(r)
	}

	report := &BatchReport{
		ReportID:     values.NewReportID(),
		Total:        len(results),
		ValidCount:   tally.valid,
		InvalidCount: tally.invalid,
		CommonIssues: topIssues(tally.codes, MaxCommonIssues),
		Results:      results,
	}
	if len(results) > 0 {
		report.AverageScore = float64(tally.scoreSum) / float64(len(results))
	}
	return report
}

// topIssues ranks codes by descending count, breaking ties by code.
func topIssues(counts map[values.IssueCode]int, limit int) []IssueFrequency {
	freqs := make([]IssueFrequency, 0, len(counts))
	for code, n := range counts {
		freqs = append(freqs, IssueFrequency{Code: code, Count: n})
	}
	sort.Slice(freqs, func(i, j int) bool {
		if freqs[i].Count != freqs[j].Count {
			return freqs[i].Count > freqs[j].Count
		}
		return freqs[i].Code < freqs[j].Code
	})
	if len(freqs) > limit {
		freqs = freqs[:limit]
	}
	return freqs
}

// AllValid reports whether every unit in the batch passed.
func (b *BatchReport) AllValid() bool {
	return b.InvalidCount == 0
}
