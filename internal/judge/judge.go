// Package judge grades filled answer sheets against a solution sheet
// using an LLM, one leaf question at a time.
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mlippuner/swissbench/internal/exam"
	"github.com/mlippuner/swissbench/internal/llm"
)

const parseRetries = 3

// ErrParsingFeedback is recorded as feedback when a judge never
// returns parseable JSON for an answer.
const ErrParsingFeedback = "Error parsing judge response"

// Config holds grading settings.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns sensible defaults for grading.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   1024,
		Temperature: 0,
	}
}

// Judge grades candidate answers against official solutions.
type Judge struct {
	provider llm.Provider
	cfg      Config
}

// New creates a judge backed by the given provider.
func New(provider llm.Provider, cfg Config) *Judge {
	return &Judge{provider: provider, cfg: cfg}
}

type verdict struct {
	Points   *float64 `json:"points"`
	Feedback string   `json:"feedback"`
}

// Grade returns a copy of modelAnswers with awarded points and
// feedback set on every leaf. modelAnswers is never modified. A
// transport error aborts grading and is returned to the caller;
// malformed judge output is retried and then recorded as a zero-point
// parse failure.
func (j *Judge) Grade(ctx context.Context, modelAnswers, solutionSheet *exam.Sheet) (*exam.Sheet, error) {
	ctx = llm.WithPurpose(ctx, "judge")

	graded := modelAnswers.Clone()
	solutions := exam.IndexByID(solutionSheet.Questions)

	if err := j.processQuestions(ctx, graded.Questions, solutions, nil); err != nil {
		return nil, err
	}
	return graded, nil
}

func (j *Judge) processQuestions(ctx context.Context, questions []*exam.Question, solutions map[string]*exam.Question, history []llm.Message) error {
	for _, q := range questions {
		current := make([]llm.Message, len(history), len(history)+2)
		copy(current, history)

		if !q.IsLeaf() {
			current = append(current, llm.Message{
				Role:    llm.RoleUser,
				Content: buildContextMessage(q.QuestionText),
			})
			reply, err := j.chat(ctx, current)
			if err != nil {
				return fmt.Errorf("context for question %s: %w", q.QuestionID, err)
			}
			current = append(current, llm.Message{Role: llm.RoleAssistant, Content: reply})

			if err := j.processQuestions(ctx, q.Subquestions, solutions, current); err != nil {
				return err
			}
			continue
		}

		if q.AnswerField == nil {
			continue
		}

		current = append(current, llm.Message{
			Role:    llm.RoleUser,
			Content: buildGradingMessage(q, solutions[q.QuestionID]),
		})

		if err := j.gradeLeaf(ctx, q, current); err != nil {
			return fmt.Errorf("grade question %s: %w", q.QuestionID, err)
		}
	}
	return nil
}

// gradeLeaf asks for a verdict, retrying on malformed JSON. After the
// retry budget is spent the leaf is recorded as a zero-point parse
// failure rather than failing the whole run.
func (j *Judge) gradeLeaf(ctx context.Context, q *exam.Question, messages []llm.Message) error {
	for attempt := 0; attempt < parseRetries; attempt++ {
		reply, err := j.chat(ctx, messages)
		if err != nil {
			return err
		}

		v, parseErr := parseVerdict(reply)
		if parseErr != nil {
			slog.Warn("unparseable judge verdict",
				"question_id", q.QuestionID,
				"attempt", attempt+1,
				"error", parseErr)
			continue
		}

		points := 0.0
		if v.Points != nil {
			points = *v.Points
		}
		q.AwardedPoints = &points
		feedback := v.Feedback
		q.Feedback = &feedback
		return nil
	}

	zero := 0.0
	q.AwardedPoints = &zero
	feedback := ErrParsingFeedback
	q.Feedback = &feedback
	return nil
}

func parseVerdict(reply string) (*verdict, error) {
	raw := json.RawMessage(reply)
	if err := llm.ValidateContent(VerdictSchema, raw); err != nil {
		return nil, err
	}
	var v verdict
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("parse verdict: %w", err)
	}
	return &v, nil
}

func (j *Judge) chat(ctx context.Context, messages []llm.Message) (string, error) {
	resp, err := j.provider.Generate(ctx, llm.Request{
		System:      gradingSystemPrompt,
		Messages:    messages,
		MaxTokens:   j.cfg.MaxTokens,
		Temperature: j.cfg.Temperature,
	})
	if err != nil {
		return "", err
	}
	return llm.CleanContent(string(resp.Content)), nil
}
