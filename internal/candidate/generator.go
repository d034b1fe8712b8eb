// Package candidate generates exam answers by walking an answer sheet
// question by question, branching off a fresh chat history per
// question so group context never leaks into sibling questions.
package candidate

import (
	"context"
	"fmt"
	"strings"

	"github.com/mlippuner/swissbench/internal/exam"
	"github.com/mlippuner/swissbench/internal/llm"
	"github.com/mlippuner/swissbench/internal/rag"
)

const emptyAnswerRetries = 3

// Config holds answer generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns sensible defaults for answer generation.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   4096,
		Temperature: 0.2,
	}
}

// Generator fills answer sheets with model answers, optionally
// enriching leaf prompts with retrieved context.
type Generator struct {
	provider  llm.Provider
	retriever rag.Retriever
	topK      int
	cfg       Config
}

// NewGenerator creates an answer generator without retrieval.
func NewGenerator(provider llm.Provider, cfg Config) *Generator {
	return &Generator{provider: provider, cfg: cfg}
}

// NewRAGGenerator creates an answer generator that retrieves topK
// chunks per leaf question and records them on the sheet.
func NewRAGGenerator(provider llm.Provider, retriever rag.Retriever, topK int, cfg Config) *Generator {
	return &Generator{provider: provider, retriever: retriever, topK: topK, cfg: cfg}
}

// GenerateAnswers returns a copy of answerSheet with every leaf
// answer field filled. The input sheet is never modified. A transport
// error aborts generation and is returned to the caller.
func (g *Generator) GenerateAnswers(ctx context.Context, answerSheet *exam.Sheet) (*exam.Sheet, error) {
	ctx = llm.WithPurpose(ctx, "candidate")

	filled := answerSheet.Clone()
	if err := g.processQuestions(ctx, filled.Questions, nil, ""); err != nil {
		return nil, err
	}
	return filled, nil
}

// processQuestions walks one question level. Each question gets a copy
// of history so context from one group cannot pollute its siblings.
// parentText accumulates group question texts for retrieval queries.
func (g *Generator) processQuestions(ctx context.Context, questions []*exam.Question, history []llm.Message, parentText string) error {
	for _, q := range questions {
		current := make([]llm.Message, len(history), len(history)+2)
		copy(current, history)

		if !q.IsLeaf() {
			// Group question: send its text as context and keep the
			// model's acknowledgement in the history so chat
			// alternation stays valid for the subquestions.
			current = append(current, llm.Message{
				Role:    llm.RoleUser,
				Content: buildContextMessage(q.QuestionText),
			})
			reply, err := g.chat(ctx, current)
			if err != nil {
				return fmt.Errorf("context for question %s: %w", q.QuestionID, err)
			}
			current = append(current, llm.Message{Role: llm.RoleAssistant, Content: reply})

			childParent := strings.TrimSpace(parentText + " " + q.QuestionText)
			if err := g.processQuestions(ctx, q.Subquestions, current, childParent); err != nil {
				return err
			}
			continue
		}

		if q.AnswerField == nil {
			continue
		}

		var chunks []exam.RetrievedChunk
		if g.retriever != nil {
			query := strings.TrimSpace(parentText + " " + q.QuestionText)
			var err error
			chunks, err = g.retriever.Retrieve(ctx, query, g.topK)
			if err != nil {
				return fmt.Errorf("retrieve for question %s: %w", q.QuestionID, err)
			}
			q.RetrievedChunks = chunks
		}

		current = append(current, llm.Message{
			Role:    llm.RoleUser,
			Content: buildQuestionMessage(q.QuestionText, chunks),
		})

		answer, err := g.generateWithRetries(ctx, current)
		if err != nil {
			return fmt.Errorf("answer for question %s: %w", q.QuestionID, err)
		}
		*q.AnswerField = answer
	}
	return nil
}

// generateWithRetries re-asks when the model returns an empty answer,
// giving up with "" after the retry budget is spent.
func (g *Generator) generateWithRetries(ctx context.Context, messages []llm.Message) (string, error) {
	for attempt := 0; attempt < emptyAnswerRetries; attempt++ {
		answer, err := g.chat(ctx, messages)
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
	}
	return "", nil
}

func (g *Generator) chat(ctx context.Context, messages []llm.Message) (string, error) {
	systemPrompt := answerSystemPrompt
	if g.retriever != nil {
		systemPrompt = answerSystemPromptRAG
	}

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    messages,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return "", err
	}
	return llm.CleanContent(string(resp.Content)), nil
}
