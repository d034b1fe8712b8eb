package judge

import (
	"fmt"

	"github.com/mlippuner/swissbench/internal/exam"
)

const gradingSystemPrompt = `You are grading a Swiss professional exam.
You will be presented with questions, candidate answers, and official solutions one by one.

INSTRUCTIONS:
- Compare the candidate's answer with the solution.
- Assign 'awarded_points' (0 to max points).
- Provide brief 'feedback' (1-3 sentences).
- For MULTIPLE CHOICE:
  * Award either full points or 0 points (NO partial credit).
  * ALL correct options must be selected.
- OUTPUT FORMAT: JSON snippet ONLY
  {"points": <number>, "feedback": "<string>"}
- Keep original language (do NOT translate)
`

func buildContextMessage(questionText string) string {
	return fmt.Sprintf("CONTEXT FOR FOLLOWING QUESTIONS:\n%s\n\nReply 'Understood' to proceed.", questionText)
}

func buildGradingMessage(q *exam.Question, solution *exam.Question) string {
	solutionText := "N/A"
	criteria := "N/A"
	maxPoints := 0.0
	if solution != nil {
		if solution.SolutionField != nil {
			solutionText = *solution.SolutionField
		}
		if solution.GradingCriteria != nil {
			criteria = *solution.GradingCriteria
		}
		if solution.Points != nil {
			if v, ok := solution.Points.Value(); ok {
				maxPoints = v
			}
		}
	}

	answer := ""
	if q.AnswerField != nil {
		answer = *q.AnswerField
	}

	return fmt.Sprintf(
		"QUESTION: %s\n\nCANDIDATE ANSWER: %s\n\nOFFICIAL SOLUTION: %s\nGRADING CRITERIA: %s\nMAX POINTS: %v\n\nGrade this answer. Return JSON.",
		q.QuestionText, answer, solutionText, criteria, maxPoints,
	)
}
