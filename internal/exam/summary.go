package exam

import (
	"fmt"
	"math"
)

// JudgeRunScore is one judge run's exam-level total.
type JudgeRunScore struct {
	AwardedPoints float64 `json:"awarded_points"`
	Percentage    float64 `json:"percentage"`
}

// Aggregation holds statistics over all judge-run totals of one sheet.
type Aggregation struct {
	AveragePoints     float64 `json:"average_points"`
	AveragePercentage float64 `json:"average_percentage"`
	StdDevPoints      float64 `json:"std_dev_points"`
	StdDevPercentage  float64 `json:"std_dev_percentage"`
}

// Summary is the persisted grading summary of a graded sheet. All values
// are rounded to 2 decimal places at construction; intermediate math
// runs at full precision.
type Summary struct {
	TotalPoints float64                  `json:"total_points"`
	JudgeRuns   map[string]JudgeRunScore `json:"judge_runs"`
	Aggregation Aggregation              `json:"aggregation"`
}

// Clone returns a copy with its own judge_runs map.
func (s Summary) Clone() Summary {
	c := s
	c.JudgeRuns = make(map[string]JudgeRunScore, len(s.JudgeRuns))
	for k, v := range s.JudgeRuns {
		c.JudgeRuns[k] = v
	}
	return c
}

// RunKey builds the judge_runs map key for one (judge, run) pair.
func RunKey(judgeName string, runID int) string {
	return fmt.Sprintf("%s|%d", judgeName, runID)
}

// ComputeSummary walks all leaves of the sheet and computes the exam
// level statistics: total max points, per-(judge,run) totals, their mean
// and population standard deviation, and the corresponding percentages.
// Every individual judgment contributes to the total of its own
// (judge, run) key; a leaf graded under two run IDs feeds two keys.
// Pure: the sheet is not modified.
func ComputeSummary(s *Sheet) Summary {
	totalMaxPoints := 0.0
	runTotals := make(map[string]float64)

	WalkLeaves(s.Questions, func(q *Question) {
		if q.Points != nil {
			if v, ok := q.Points.Value(); ok {
				totalMaxPoints += v
			}
		}
		for _, j := range q.Judgments {
			if v, ok := j.AwardedPoints.Value(); ok {
				runTotals[RunKey(j.JudgeName, j.RunID)] += v
			}
		}
	})

	summary := Summary{
		TotalPoints: round2(totalMaxPoints),
		JudgeRuns:   make(map[string]JudgeRunScore, len(runTotals)),
	}
	if len(runTotals) == 0 {
		return summary
	}

	n := float64(len(runTotals))
	sum := 0.0
	for _, total := range runTotals {
		sum += total
	}
	avgPoints := sum / n

	variance := 0.0
	for _, total := range runTotals {
		variance += (total - avgPoints) * (total - avgPoints)
	}
	variance /= n
	stdDevPoints := math.Sqrt(variance)

	avgPercentage := 0.0
	stdDevPercentage := 0.0
	if totalMaxPoints > 0 {
		avgPercentage = avgPoints / totalMaxPoints * 100
		stdDevPercentage = stdDevPoints / totalMaxPoints * 100
	}

	for key, total := range runTotals {
		pct := 0.0
		if totalMaxPoints > 0 {
			pct = total / totalMaxPoints * 100
		}
		summary.JudgeRuns[key] = JudgeRunScore{
			AwardedPoints: round2(total),
			Percentage:    round2(pct),
		}
	}

	summary.Aggregation = Aggregation{
		AveragePoints:     round2(avgPoints),
		AveragePercentage: round2(avgPercentage),
		StdDevPoints:      round2(stdDevPoints),
		StdDevPercentage:  round2(stdDevPercentage),
	}
	return summary
}

// Recompute re-derives per-leaf awarded points and the grading summary
// from the judgments already embedded in a graded sheet, overwriting the
// summary in place. Given unchanged judgment data the result is
// identical to the online computation, which makes re-running it safe.
func Recompute(s *Sheet) Summary {
	Aggregate(s)
	summary := ComputeSummary(s)
	s.GradingSummary = &summary
	return summary
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
