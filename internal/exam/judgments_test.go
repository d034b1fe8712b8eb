package exam

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func gradedRun(awarded map[string]float64, feedback map[string]string) *Sheet {
	ref := referenceSheet()
	WalkLeaves(ref.Questions, func(q *Question) {
		if v, ok := awarded[q.QuestionID]; ok {
			q.AwardedPoints = floatPtr(v)
			if fb, ok := feedback[q.QuestionID]; ok {
				q.Feedback = strPtr(fb)
			}
		}
	})
	return ref
}

func TestInitJudgments_Idempotent(t *testing.T) {
	s := referenceSheet()
	WalkLeaves(s.Questions, func(q *Question) {
		q.Judgments = []Judgment{{JudgeName: "alt", RunID: 1, AwardedPoints: NewScore(1)}}
		q.AwardedPoints = floatPtr(1)
		q.Feedback = strPtr("stale")
	})

	InitJudgments(s)
	once, err := MarshalIndent(s)
	require.NoError(t, err)

	InitJudgments(s)
	twice, err := MarshalIndent(s)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	WalkLeaves(s.Questions, func(q *Question) {
		assert.Nil(t, q.Judgments)
		assert.Nil(t, q.AwardedPoints)
		assert.Nil(t, q.Feedback)
	})
}

func TestCollectJudgments_AppendsPerRun(t *testing.T) {
	acc := referenceSheet()
	InitJudgments(acc)

	run1 := gradedRun(map[string]float64{"1": 2, "2a": 0, "2b": 5}, map[string]string{"1": "korrekt"})
	run2 := gradedRun(map[string]float64{"1": 1, "2b": 4}, nil) // judge failed on 2a

	CollectJudgments(acc, run1, "judge-x", 1)
	CollectJudgments(acc, run2, "judge-x", 2)

	idx := IndexByID(acc.Questions)
	require.Len(t, idx["1"].Judgments, 2)
	assert.Equal(t, "judge-x", idx["1"].Judgments[0].JudgeName)
	assert.Equal(t, 1, idx["1"].Judgments[0].RunID)
	assert.Equal(t, "korrekt", idx["1"].Judgments[0].Feedback)
	assert.Equal(t, 2, idx["1"].Judgments[1].RunID)

	// Under-count preserved: 2a only got one judgment.
	require.Len(t, idx["2a"].Judgments, 1)
	require.Len(t, idx["2b"].Judgments, 2)

	// Parent questions never accumulate judgments.
	assert.Empty(t, idx["2"].Judgments)
}

func TestCollectJudgments_SkipsUngraded(t *testing.T) {
	acc := referenceSheet()
	InitJudgments(acc)

	run := gradedRun(map[string]float64{"1": 2}, nil)
	CollectJudgments(acc, run, "j", 1)

	idx := IndexByID(acc.Questions)
	assert.Len(t, idx["1"].Judgments, 1)
	assert.Empty(t, idx["2a"].Judgments)
	assert.Empty(t, idx["2b"].Judgments)
}

func TestAggregate_MeanExcludesNonNumeric(t *testing.T) {
	var bad Score
	require.NoError(t, json.Unmarshal([]byte(`"bad"`), &bad))

	s := referenceSheet()
	idx := IndexByID(s.Questions)
	idx["1"].Judgments = []Judgment{
		{JudgeName: "a", RunID: 1, AwardedPoints: NewScore(2)},
		{JudgeName: "a", RunID: 2, AwardedPoints: NewScore(4)},
		{JudgeName: "b", RunID: 1, AwardedPoints: bad},
	}

	Aggregate(s)

	require.NotNil(t, idx["1"].AwardedPoints)
	assert.Equal(t, 3.0, *idx["1"].AwardedPoints)

	// Leaves without judgments aggregate to 0.
	require.NotNil(t, idx["2a"].AwardedPoints)
	assert.Equal(t, 0.0, *idx["2a"].AwardedPoints)
}

func TestAggregate_AllNonNumericIsZero(t *testing.T) {
	var null Score
	require.NoError(t, json.Unmarshal([]byte(`null`), &null))

	s := referenceSheet()
	idx := IndexByID(s.Questions)
	idx["1"].Judgments = []Judgment{{JudgeName: "a", RunID: 1, AwardedPoints: null}}

	Aggregate(s)

	require.NotNil(t, idx["1"].AwardedPoints)
	assert.Equal(t, 0.0, *idx["1"].AwardedPoints)
}

func TestInjectMaxPoints(t *testing.T) {
	solution := referenceSheet()
	solIdx := IndexByID(solution.Questions)
	for id, pts := range map[string]float64{"1": 2, "2a": 3, "2b": 5} {
		s := NewScore(pts)
		solIdx[id].Points = &s
	}

	graded := referenceSheet()
	// A question only the graded sheet knows keeps its own points.
	keep := NewScore(9)
	graded.Questions = append(graded.Questions, &Question{
		QuestionID: "extra", AnswerField: strPtr(""), Points: &keep,
	})

	InjectMaxPoints(graded, solution)

	idx := IndexByID(graded.Questions)
	for id, want := range map[string]float64{"1": 2, "2a": 3, "2b": 5, "extra": 9} {
		require.NotNil(t, idx[id].Points, id)
		v, ok := idx[id].Points.Value()
		require.True(t, ok, id)
		assert.Equal(t, want, v, id)
	}
}

func TestScore_RoundTripsNonNumericValues(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		valid bool
	}{
		{"number", `2.5`, true},
		{"integer", `3`, true},
		{"string", `"bad"`, false},
		{"null", `null`, false},
		{"object", `{"x":1}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Score
			require.NoError(t, json.Unmarshal([]byte(tt.in), &s))
			_, ok := s.Value()
			assert.Equal(t, tt.valid, ok)

			out, err := json.Marshal(s)
			require.NoError(t, err)
			assert.JSONEq(t, tt.in, string(out))
		})
	}
}
