package rag

import "github.com/mlippuner/swissbench/internal/exam"

// ChunkReport pairs a question with the chunks retrieved for it, for
// the side file written next to the answer sheet.
type ChunkReport struct {
	QuestionID      string                `json:"question_id"`
	QuestionText    string                `json:"question_text"`
	RetrievedChunks []exam.RetrievedChunk `json:"retrieved_chunks"`
}

// ChunksReport extracts the retrieved chunks per question in document
// order.
func ChunksReport(sheet *exam.Sheet) []ChunkReport {
	var report []ChunkReport
	exam.Walk(sheet.Questions, func(q *exam.Question) {
		if len(q.RetrievedChunks) > 0 {
			report = append(report, ChunkReport{
				QuestionID:      q.QuestionID,
				QuestionText:    q.QuestionText,
				RetrievedChunks: q.RetrievedChunks,
			})
		}
	})
	return report
}

// StripChunks removes retrieved chunks from every question in place,
// keeping the answer sheet itself free of retrieval payloads.
func StripChunks(sheet *exam.Sheet) {
	exam.Walk(sheet.Questions, func(q *exam.Question) {
		q.RetrievedChunks = nil
	})
}
