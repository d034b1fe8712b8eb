package exam

import (
	"bytes"
	"encoding/json"
)

// Score holds a point value that may be missing, null or non-numeric in
// source data. Invalid values are excluded from arithmetic but preserved
// verbatim when the sheet is written back, so a recompute pass never
// destroys information it could not interpret.
type Score struct {
	value float64
	valid bool
	raw   json.RawMessage
}

// NewScore returns a valid numeric score.
func NewScore(v float64) Score {
	return Score{value: v, valid: true}
}

// Value returns the numeric value and whether the score is numeric.
func (s Score) Value() (float64, bool) {
	return s.value, s.valid
}

// Clone returns a copy with its own raw buffer.
func (s Score) Clone() Score {
	c := s
	if s.raw != nil {
		c.raw = append(json.RawMessage(nil), s.raw...)
	}
	return c
}

func (s *Score) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if !bytes.Equal(trimmed, []byte("null")) {
		var f float64
		if err := json.Unmarshal(trimmed, &f); err == nil {
			*s = Score{value: f, valid: true}
			return nil
		}
	}
	*s = Score{raw: append(json.RawMessage(nil), trimmed...)}
	return nil
}

func (s Score) MarshalJSON() ([]byte, error) {
	if s.valid {
		return json.Marshal(s.value)
	}
	if len(s.raw) > 0 {
		return s.raw, nil
	}
	return []byte("null"), nil
}
