package data

import "strconv"

// isMissing matches the markers treated as missing values in CSV input.
func isMissing(v string) bool { return v == "" || v == "NA" || v == "NaN" }

// LabelEncoder maps category strings to integer codes per column. Codes are
// assigned in first-seen order and shared by every table read through the
// same encoder, so train and test agree on them.
type LabelEncoder struct {
	codes map[string]map[string]int
}

func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{codes: map[string]map[string]int{}}
}

// Encode returns the code of value in column, assigning a new one if needed.
func (e *LabelEncoder) Encode(column, value string) float64 {
	m, ok := e.codes[column]
	if !ok {
		m = map[string]int{}
		e.codes[column] = m
	}
	c, ok := m[value]
	if !ok {
		c = len(m)
		m[value] = c
	}
	return float64(c)
}

// Mapping returns a copy of the codes assigned for column.
func (e *LabelEncoder) Mapping(column string) map[string]int {
	out := map[string]int{}
	for k, v := range e.codes[column] {
		out[k] = v
	}
	return out
}

// isNumericColumn reports whether every non-missing value parses as a float.
func isNumericColumn(values []string) bool {
	for _, v := range values {
		if isMissing(v) {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return false
		}
	}
	return true
}
