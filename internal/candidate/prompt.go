package candidate

import (
	"fmt"
	"strings"

	"github.com/mlippuner/swissbench/internal/exam"
)

const answerSystemPrompt = `You are taking a Swiss professional exam.
You will be presented with questions one by one.
Read each question carefully and provide the answer.

INSTRUCTIONS:
- Provide ONLY the answer text. Do not include 'Answer:', 'Here is the answer', or reasoning unless explicitly asked.
- For multiple choice questions:
  * Provide ONLY the answer (letter/number/option/text)
  * If multiple answers are correct, provide all of them (e.g., 'a, c' or 'Bundesrat, Kantone')
- For open questions: provide concise, accurate answers
- Keep original language (do NOT translate)
`

const answerSystemPromptRAG = `You are taking a Swiss professional exam.
You will be presented with questions one by one.
You will also receive 'RETRIEVED CONTEXT' from a database.
Read each question carefully and provide the answer.

INSTRUCTIONS:
- Use the RETRIEVED CONTEXT if it helps answer the question.
- NOTE: The retrieved context might be irrelevant. If so, ignore it and answer based on your knowledge.
- Provide ONLY the answer text. Do not include 'Answer:', 'Here is the answer', or reasoning unless explicitly asked.
- For multiple choice questions:
  * Provide ONLY the answer (letter/number/option/text)
  * If multiple answers are correct, provide all of them (e.g., 'a, c' or 'Bundesrat, Kantone')
- For open questions: provide concise, accurate answers
- Keep original language (do NOT translate)
`

func buildContextMessage(questionText string) string {
	return fmt.Sprintf("CONTEXT FOR FOLLOWING QUESTIONS:\n%s\n\nPlease confirm you understood the context by replying 'Understood'.", questionText)
}

func buildQuestionMessage(questionText string, chunks []exam.RetrievedChunk) string {
	var b strings.Builder
	b.WriteString("QUESTION:\n")
	b.WriteString(questionText)

	if len(chunks) > 0 {
		b.WriteString("\n\nRETRIEVED CONTEXT:\n")
		for i, chunk := range chunks {
			b.WriteString(fmt.Sprintf("--- Chunk %d (Source: %s) ---\n%s\n", i+1, chunk.Source, chunk.Text))
		}
	}
	return b.String()
}
