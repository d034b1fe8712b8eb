package candidate

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlippuner/swissbench/internal/exam"
	"github.com/mlippuner/swissbench/internal/llm"
)

func strPtr(s string) *string { return &s }

func answerSheet() *exam.Sheet {
	return &exam.Sheet{
		ExamMetadata: map[string]any{"profession": "Elektroinstallateur"},
		Questions: []*exam.Question{
			{
				QuestionID:   "1",
				QuestionText: "Was ist die Netzspannung in der Schweiz?",
				AnswerField:  strPtr(""),
			},
			{
				QuestionID:   "2",
				QuestionText: "Situation: Installation in einem Einfamilienhaus.",
				Subquestions: []*exam.Question{
					{
						QuestionID:   "2a",
						QuestionText: "Welcher Leiterquerschnitt ist zu waehlen?",
						AnswerField:  strPtr(""),
					},
					{
						QuestionID:   "2b",
						QuestionText: "Welche Absicherung ist vorzusehen?",
						AnswerField:  strPtr(""),
					},
				},
			},
		},
	}
}

func textResponse(s string) llm.MockResponse {
	return llm.MockResponse{Content: json.RawMessage(s)}
}

func TestGenerateAnswersFillsLeaves(t *testing.T) {
	mock := llm.NewMockProvider(
		textResponse("230 V"),
		textResponse("Understood."),
		textResponse("1.5 mm2"),
		textResponse("13 A"),
	)

	gen := NewGenerator(mock, DefaultConfig())
	filled, err := gen.GenerateAnswers(context.Background(), answerSheet())
	require.NoError(t, err)

	idx := exam.IndexByID(filled.Questions)
	assert.Equal(t, "230 V", *idx["1"].AnswerField)
	assert.Equal(t, "1.5 mm2", *idx["2a"].AnswerField)
	assert.Equal(t, "13 A", *idx["2b"].AnswerField)
	assert.Nil(t, idx["2"].AnswerField)

	assert.Equal(t, 4, mock.CallCount())
}

func TestGenerateAnswersDoesNotMutateInput(t *testing.T) {
	mock := llm.NewMockProvider(
		textResponse("230 V"),
		textResponse("Understood."),
		textResponse("1.5 mm2"),
		textResponse("13 A"),
	)

	sheet := answerSheet()
	before, err := exam.MarshalIndent(sheet)
	require.NoError(t, err)

	_, err = NewGenerator(mock, DefaultConfig()).GenerateAnswers(context.Background(), sheet)
	require.NoError(t, err)

	after, err := exam.MarshalIndent(sheet)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestGenerateAnswersBranchesHistoryPerQuestion(t *testing.T) {
	mock := llm.NewMockProvider(
		textResponse("230 V"),
		textResponse("Understood."),
		textResponse("1.5 mm2"),
		textResponse("13 A"),
	)

	_, err := NewGenerator(mock, DefaultConfig()).GenerateAnswers(context.Background(), answerSheet())
	require.NoError(t, err)

	// Question 1 sees only its own prompt.
	require.Len(t, mock.Calls[0].Messages, 1)
	assert.Contains(t, mock.Calls[0].Messages[0].Content, "QUESTION:\nWas ist die Netzspannung")

	// The group context call carries the handshake instruction.
	require.Len(t, mock.Calls[1].Messages, 1)
	assert.Contains(t, mock.Calls[1].Messages[0].Content, "CONTEXT FOR FOLLOWING QUESTIONS:")
	assert.Contains(t, mock.Calls[1].Messages[0].Content, "replying 'Understood'")

	// Subquestions see the group context plus the assistant reply, but
	// not each other's answers.
	for _, call := range mock.Calls[2:] {
		require.Len(t, call.Messages, 3)
		assert.Equal(t, llm.RoleAssistant, call.Messages[1].Role)
		assert.Equal(t, "Understood.", call.Messages[1].Content)
	}
	assert.NotContains(t, mock.Calls[3].Messages[2].Content, "Leiterquerschnitt")
}

func TestGenerateAnswersRetriesEmptyThenGivesUp(t *testing.T) {
	mock := llm.NewMockProvider(
		textResponse("   "),
		textResponse(""),
		textResponse("   \n"),
	)

	sheet := &exam.Sheet{Questions: []*exam.Question{
		{QuestionID: "1", QuestionText: "Frage?", AnswerField: strPtr("")},
	}}

	filled, err := NewGenerator(mock, DefaultConfig()).GenerateAnswers(context.Background(), sheet)
	require.NoError(t, err)
	assert.Equal(t, "", *filled.Questions[0].AnswerField)
	assert.Equal(t, 3, mock.CallCount())
}

func TestGenerateAnswersRecoversOnRetry(t *testing.T) {
	mock := llm.NewMockProvider(
		textResponse(""),
		textResponse("230 V"),
	)

	sheet := &exam.Sheet{Questions: []*exam.Question{
		{QuestionID: "1", QuestionText: "Frage?", AnswerField: strPtr("")},
	}}

	filled, err := NewGenerator(mock, DefaultConfig()).GenerateAnswers(context.Background(), sheet)
	require.NoError(t, err)
	assert.Equal(t, "230 V", *filled.Questions[0].AnswerField)
}

func TestGenerateAnswersStripsFencesAndThinkBlocks(t *testing.T) {
	mock := llm.NewMockProvider(
		textResponse("<think>ueberlegen...</think>\n230 V"),
	)

	sheet := &exam.Sheet{Questions: []*exam.Question{
		{QuestionID: "1", QuestionText: "Frage?", AnswerField: strPtr("")},
	}}

	filled, err := NewGenerator(mock, DefaultConfig()).GenerateAnswers(context.Background(), sheet)
	require.NoError(t, err)
	assert.Equal(t, "230 V", *filled.Questions[0].AnswerField)
}

func TestGenerateAnswersPropagatesTransportError(t *testing.T) {
	transportErr := errors.New("connection refused")
	mock := llm.NewMockProvider(llm.MockResponse{Err: transportErr})

	_, err := NewGenerator(mock, DefaultConfig()).GenerateAnswers(context.Background(), answerSheet())
	require.Error(t, err)
	assert.ErrorIs(t, err, transportErr)
	assert.Contains(t, err.Error(), "question 1")
}

type stubRetriever struct {
	queries []string
	chunks  []exam.RetrievedChunk
	err     error
}

func (s *stubRetriever) Retrieve(_ context.Context, query string, _ int) ([]exam.RetrievedChunk, error) {
	s.queries = append(s.queries, query)
	return s.chunks, s.err
}

func TestGenerateAnswersWithRetrieval(t *testing.T) {
	mock := llm.NewMockProvider(
		textResponse("230 V"),
		textResponse("Understood."),
		textResponse("1.5 mm2"),
		textResponse("13 A"),
	)

	retriever := &stubRetriever{chunks: []exam.RetrievedChunk{
		{Text: "Die Netzspannung betraegt 230 V.", Source: "nin.pdf", ChunkIndex: 4, Distance: 0.12},
	}}

	gen := NewRAGGenerator(mock, retriever, 3, DefaultConfig())
	filled, err := gen.GenerateAnswers(context.Background(), answerSheet())
	require.NoError(t, err)

	idx := exam.IndexByID(filled.Questions)
	require.Len(t, idx["1"].RetrievedChunks, 1)
	assert.Equal(t, "nin.pdf", idx["1"].RetrievedChunks[0].Source)

	// Leaf prompts carry the retrieved context block.
	assert.Contains(t, mock.Calls[0].Messages[0].Content, "RETRIEVED CONTEXT:")
	assert.Contains(t, mock.Calls[0].Messages[0].Content, "--- Chunk 1 (Source: nin.pdf) ---")
	assert.True(t, strings.HasPrefix(mock.Calls[0].System, "You are taking a Swiss professional exam"))
	assert.Contains(t, mock.Calls[0].System, "RETRIEVED CONTEXT")

	// Retrieval queries include the parent question text for
	// subquestions.
	require.Len(t, retriever.queries, 3)
	assert.Equal(t, "Was ist die Netzspannung in der Schweiz?", retriever.queries[0])
	assert.Contains(t, retriever.queries[1], "Situation: Installation in einem Einfamilienhaus.")
	assert.Contains(t, retriever.queries[1], "Welcher Leiterquerschnitt ist zu waehlen?")
}

func TestGenerateAnswersRetrievalErrorPropagates(t *testing.T) {
	mock := llm.NewMockProvider()
	retriever := &stubRetriever{err: errors.New("store closed")}

	_, err := NewRAGGenerator(mock, retriever, 3, DefaultConfig()).
		GenerateAnswers(context.Background(), answerSheet())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieve for question 1")
	assert.Equal(t, 0, mock.CallCount())
}
