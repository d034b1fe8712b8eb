package exam

// InitJudgments clears judgments, awarded points and feedback on every
// question so a sheet copied from a previous pass starts from a clean
// grading state. Idempotent: calling it twice leaves the same state as
// calling it once.
func InitJudgments(s *Sheet) {
	Walk(s.Questions, func(q *Question) {
		q.Judgments = nil
		q.AwardedPoints = nil
		q.Feedback = nil
	})
}

// CollectJudgments appends one grading run's results into the
// accumulator sheet. For every question in the accumulator whose ID
// appears in the run result with an awarded_points value, one judgment
// keyed by (judgeName, runID) is appended. Questions the judge skipped
// or failed to grade receive nothing: their judgment lists stay shorter,
// and the aggregator averages only over judgments that exist.
func CollectJudgments(accumulator, runResult *Sheet, judgeName string, runID int) {
	runIdx := IndexByID(runResult.Questions)

	Walk(accumulator.Questions, func(q *Question) {
		runQ, ok := runIdx[q.QuestionID]
		if !ok || runQ.AwardedPoints == nil {
			return
		}
		feedback := ""
		if runQ.Feedback != nil {
			feedback = *runQ.Feedback
		}
		q.Judgments = append(q.Judgments, Judgment{
			JudgeName:     judgeName,
			RunID:         runID,
			AwardedPoints: NewScore(*runQ.AwardedPoints),
			Feedback:      feedback,
		})
	})
}

// Aggregate derives awarded_points on every leaf as the arithmetic mean
// of its numeric judgments. Non-numeric judgment values are excluded
// from both sum and count; a leaf with no numeric judgments gets 0.
// Pure function of the judgment lists, so re-running it on a persisted
// sheet reproduces the same values.
func Aggregate(s *Sheet) {
	WalkLeaves(s.Questions, func(q *Question) {
		sum := 0.0
		count := 0
		for _, j := range q.Judgments {
			if v, ok := j.AwardedPoints.Value(); ok {
				sum += v
				count++
			}
		}
		mean := 0.0
		if count > 0 {
			mean = sum / float64(count)
		}
		q.AwardedPoints = &mean
	})
}

// InjectMaxPoints copies maximum points from the solution sheet into the
// graded sheet by question ID. Questions absent from the solution keep
// whatever points value they already have.
func InjectMaxPoints(graded, solution *Sheet) {
	pointsByID := make(map[string]Score)
	Walk(solution.Questions, func(q *Question) {
		if q.QuestionID != "" && q.Points != nil {
			pointsByID[q.QuestionID] = q.Points.Clone()
		}
	})

	Walk(graded.Questions, func(q *Question) {
		if pts, ok := pointsByID[q.QuestionID]; ok {
			p := pts.Clone()
			q.Points = &p
		}
	})
}
