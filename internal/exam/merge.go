package exam

// ErrorGenerationFailed is the marker written into exam_metadata.error
// when a model produced no usable answer sheet at all.
const ErrorGenerationFailed = "Model answer generation failed"

// MergeQuestions reconciles candidate questions against the reference
// tree. The output preserves reference order and the reference's full
// substructure for every question ID; only the candidate's answer fields
// (and retrieved chunks, in RAG mode) are copied over. Reference
// questions missing from the candidate become leaves with an empty
// answer, so a partial or malformed candidate never loses reference
// structure and never contributes new IDs.
func MergeQuestions(reference, candidate []*Question) []*Question {
	candMap := make(map[string]*Question, len(candidate))
	for _, q := range candidate {
		candMap[q.QuestionID] = q
	}

	out := make([]*Question, 0, len(reference))
	for _, refQ := range reference {
		merged := refQ.Clone()
		if candQ, ok := candMap[refQ.QuestionID]; ok {
			if candQ.AnswerField != nil {
				merged.AnswerField = cloneStringPtr(candQ.AnswerField)
			}
			if candQ.RetrievedChunks != nil {
				merged.RetrievedChunks = append([]RetrievedChunk(nil), candQ.RetrievedChunks...)
			}
			if refQ.Subquestions != nil {
				merged.Subquestions = MergeQuestions(refQ.Subquestions, candQ.Subquestions)
			}
		} else {
			if merged.AnswerField != nil {
				empty := ""
				merged.AnswerField = &empty
			}
			if merged.Subquestions != nil {
				merged.Subquestions = MergeQuestions(merged.Subquestions, nil)
			}
		}
		out = append(out, merged)
	}
	return out
}

// EnsureStructure returns a candidate sheet reshaped to the canonical
// reference structure. A nil or empty candidate signals upstream
// generation failure: the reference is deep-copied with all answers
// unfilled and an error marker is set in the exam metadata, leaving the
// pipeline free to continue.
func EnsureStructure(reference, candidate *Sheet) *Sheet {
	if candidate == nil || (len(candidate.Questions) == 0 && len(candidate.ExamMetadata) == 0) {
		fallback := reference.Clone()
		if fallback.ExamMetadata == nil {
			fallback.ExamMetadata = map[string]any{}
		}
		if fallback.Questions == nil {
			fallback.Questions = []*Question{}
		}
		WalkLeaves(fallback.Questions, func(q *Question) {
			if q.AnswerField != nil {
				empty := ""
				q.AnswerField = &empty
			}
		})
		fallback.ExamMetadata["error"] = ErrorGenerationFailed
		return fallback
	}

	merged := &Sheet{
		ExamMetadata:    candidate.ExamMetadata,
		GradingMetadata: candidate.GradingMetadata,
		Questions:       MergeQuestions(reference.Questions, candidate.Questions),
	}
	if merged.ExamMetadata == nil {
		merged.ExamMetadata = cloneMetadata(reference.ExamMetadata)
	}
	if merged.Questions == nil {
		merged.Questions = []*Question{}
	}
	return merged
}
