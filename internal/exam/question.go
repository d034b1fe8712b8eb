// Package exam models hierarchical exam sheets and implements the
// merge, judgment-collection and aggregation passes that turn raw model
// answers into graded, summarized results.
package exam

import "encoding/json"

// Question is one node of an exam tree. Leaf questions carry an answer
// field and, in graded sheets, judgments; parent questions carry only
// context text plus nested subquestions. Optional fields are pointers so
// that presence in the source JSON is a type-level fact.
type Question struct {
	QuestionID      string           `json:"question_id"`
	QuestionText    string           `json:"question_text,omitempty"`
	AnswerField     *string          `json:"answer_field,omitempty"`
	SolutionField   *string          `json:"solution_field,omitempty"`
	GradingCriteria *string          `json:"grading_criteria,omitempty"`
	Points          *Score           `json:"points,omitempty"`
	Subquestions    []*Question      `json:"subquestions,omitempty"`
	Judgments       []Judgment       `json:"judgments,omitempty"`
	AwardedPoints   *float64         `json:"awarded_points,omitempty"`
	Feedback        *string          `json:"feedback,omitempty"`
	RetrievedChunks []RetrievedChunk `json:"retrieved_chunks,omitempty"`
}

// Judgment is one judge's one scoring pass over one leaf question.
// Immutable once appended.
type Judgment struct {
	JudgeName     string `json:"judge_name"`
	RunID         int    `json:"run_id"`
	AwardedPoints Score  `json:"awarded_points"`
	Feedback      string `json:"feedback"`
}

// RetrievedChunk is one retrieval result attached to a leaf during RAG
// answer generation. Stripped from sheets before persistence.
type RetrievedChunk struct {
	Text       string  `json:"text"`
	Source     string  `json:"source"`
	ChunkIndex int     `json:"chunk_index"`
	Distance   float64 `json:"distance"`
}

// Sheet is a full exam tree: the shared shape of answer sheets, solution
// sheets, model answer sheets and graded sheets.
type Sheet struct {
	ExamMetadata    map[string]any `json:"exam_metadata,omitempty"`
	GradingMetadata map[string]any `json:"grading_metadata,omitempty"`
	Questions       []*Question    `json:"questions"`
	GradingSummary  *Summary       `json:"grading_summary,omitempty"`
}

// IsLeaf reports whether q is an answerable question. A question is a
// leaf iff it has no non-empty subquestions.
func (q *Question) IsLeaf() bool {
	return len(q.Subquestions) == 0
}

// Clone returns a deep copy of the question subtree.
func (q *Question) Clone() *Question {
	if q == nil {
		return nil
	}
	c := &Question{
		QuestionID:      q.QuestionID,
		QuestionText:    q.QuestionText,
		AnswerField:     cloneStringPtr(q.AnswerField),
		SolutionField:   cloneStringPtr(q.SolutionField),
		GradingCriteria: cloneStringPtr(q.GradingCriteria),
		Feedback:        cloneStringPtr(q.Feedback),
	}
	if q.Points != nil {
		p := q.Points.Clone()
		c.Points = &p
	}
	if q.AwardedPoints != nil {
		v := *q.AwardedPoints
		c.AwardedPoints = &v
	}
	if q.Subquestions != nil {
		c.Subquestions = make([]*Question, len(q.Subquestions))
		for i, sub := range q.Subquestions {
			c.Subquestions[i] = sub.Clone()
		}
	}
	if q.Judgments != nil {
		c.Judgments = make([]Judgment, len(q.Judgments))
		for i, j := range q.Judgments {
			j.AwardedPoints = j.AwardedPoints.Clone()
			c.Judgments[i] = j
		}
	}
	if q.RetrievedChunks != nil {
		c.RetrievedChunks = append([]RetrievedChunk(nil), q.RetrievedChunks...)
	}
	return c
}

// Clone returns a deep copy of the sheet.
func (s *Sheet) Clone() *Sheet {
	if s == nil {
		return nil
	}
	c := &Sheet{
		ExamMetadata:    cloneMetadata(s.ExamMetadata),
		GradingMetadata: cloneMetadata(s.GradingMetadata),
	}
	if s.Questions != nil {
		c.Questions = make([]*Question, len(s.Questions))
		for i, q := range s.Questions {
			c.Questions[i] = q.Clone()
		}
	}
	if s.GradingSummary != nil {
		sum := s.GradingSummary.Clone()
		c.GradingSummary = &sum
	}
	return c
}

// Walk visits every question in the tree in document order, parents
// before their subquestions.
func Walk(questions []*Question, fn func(*Question)) {
	for _, q := range questions {
		fn(q)
		if len(q.Subquestions) > 0 {
			Walk(q.Subquestions, fn)
		}
	}
}

// WalkLeaves visits only leaf questions, in document order.
func WalkLeaves(questions []*Question, fn func(*Question)) {
	Walk(questions, func(q *Question) {
		if q.IsLeaf() {
			fn(q)
		}
	})
}

// IndexByID builds a lookup from question ID to node over the whole
// tree. Built once per traversal pass; question IDs are unique within a
// tree by caller invariant, later occurrences win otherwise.
func IndexByID(questions []*Question) map[string]*Question {
	idx := make(map[string]*Question)
	Walk(questions, func(q *Question) {
		if q.QuestionID != "" {
			idx[q.QuestionID] = q
		}
	})
	return idx
}

// LeafIDs returns the set of leaf question IDs in the tree.
func LeafIDs(questions []*Question) map[string]bool {
	ids := make(map[string]bool)
	WalkLeaves(questions, func(q *Question) {
		if q.QuestionID != "" {
			ids[q.QuestionID] = true
		}
	})
	return ids
}

func cloneStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// cloneMetadata deep-copies an arbitrary metadata mapping through a JSON
// round trip, matching the semantics the metadata has on disk.
func cloneMetadata(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		// Metadata came from JSON in the first place; fall back to a
		// shallow copy for values that cannot round-trip.
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out
	}
	out := make(map[string]any, len(m))
	if err := json.Unmarshal(raw, &out); err != nil {
		return m
	}
	return out
}
