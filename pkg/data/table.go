// Package data holds the sample table shared by every stage of the uplift
// workflow and the helpers that load, tag and split it.
package data

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrSchemaMismatch is returned when two tables that must share a column
	// set do not.
	ErrSchemaMismatch = errors.New("data: column sets differ")
	ErrNoColumn       = errors.New("data: no such column")
	ErrLength         = errors.New("data: column length mismatch")
)

// Partition tags a row as belonging to the train or the test split.
type Partition string

const (
	Train Partition = "train"
	Test  Partition = "test"
)

// Table is a column-major table of float64 values. Categorical values are
// stored as their integer codes, missing values as NaN. A combined table also
// carries a partition tag per row.
type Table struct {
	columns []string
	index   map[string]int
	cols    [][]float64
	parts   []Partition // nil unless the table was built by Combine
}

// NewTable builds a table from row-major values.
func NewTable(columns []string, rows [][]float64) (*Table, error) {
	t := &Table{index: make(map[string]int, len(columns))}
	for _, c := range columns {
		if _, dup := t.index[c]; dup {
			return nil, fmt.Errorf("data: duplicate column %q", c)
		}
		t.index[c] = len(t.columns)
		t.columns = append(t.columns, c)
		t.cols = append(t.cols, make([]float64, len(rows)))
	}
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrLength, i, len(r), len(columns))
		}
		for j, v := range r {
			t.cols[j][i] = v
		}
	}
	return t, nil
}

// FromColumns builds a table from named columns of equal length.
func FromColumns(columns []string, values map[string][]float64) (*Table, error) {
	t := &Table{index: make(map[string]int, len(columns))}
	n := -1
	for _, c := range columns {
		v, ok := values[c]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNoColumn, c)
		}
		if n >= 0 && len(v) != n {
			return nil, fmt.Errorf("%w: %q", ErrLength, c)
		}
		n = len(v)
		t.index[c] = len(t.columns)
		t.columns = append(t.columns, c)
		t.cols = append(t.cols, append([]float64(nil), v...))
	}
	return t, nil
}

// Len is the number of rows.
func (t *Table) Len() int {
	if len(t.cols) == 0 {
		return len(t.parts)
	}
	return len(t.cols[0])
}

// Columns returns the column names in table order.
func (t *Table) Columns() []string { return append([]string(nil), t.columns...) }

func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Col returns a copy of the named column.
func (t *Table) Col(name string) ([]float64, error) {
	j, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoColumn, name)
	}
	return append([]float64(nil), t.cols[j]...), nil
}

// Value returns the value at row i of the named column, or NaN if the column
// is absent.
func (t *Table) Value(i int, name string) float64 {
	j, ok := t.index[name]
	if !ok {
		return math.NaN()
	}
	return t.cols[j][i]
}

// SetCol replaces the named column, appending it if it does not exist.
func (t *Table) SetCol(name string, values []float64) error {
	if len(t.columns) > 0 && len(values) != t.Len() {
		return fmt.Errorf("%w: %q has %d values, table has %d rows", ErrLength, name, len(values), t.Len())
	}
	v := append([]float64(nil), values...)
	if j, ok := t.index[name]; ok {
		t.cols[j] = v
		return nil
	}
	t.index[name] = len(t.columns)
	t.columns = append(t.columns, name)
	t.cols = append(t.cols, v)
	return nil
}

// Matrix returns the named columns as row-major feature vectors for the rows
// listed in idx, or for every row when idx is nil.
func (t *Table) Matrix(columns []string, idx []int) ([][]float64, error) {
	js := make([]int, len(columns))
	for k, c := range columns {
		j, ok := t.index[c]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNoColumn, c)
		}
		js[k] = j
	}
	if idx == nil {
		idx = t.All()
	}
	out := make([][]float64, len(idx))
	for r, i := range idx {
		row := make([]float64, len(js))
		for k, j := range js {
			row[k] = t.cols[j][i]
		}
		out[r] = row
	}
	return out, nil
}

// All returns the indices of every row.
func (t *Table) All() []int {
	idx := make([]int, t.Len())
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// Where returns, in row order, the indices of the rows for which keep is true.
// The result is never nil, so it can be passed where nil means "all rows".
func (t *Table) Where(keep func(i int) bool) []int {
	idx := []int{}
	for i, _n := 0, t.Len(); i < _n; i++ {
		if keep(i) {
			idx = append(idx, i)
		}
	}
	return idx
}

// Select returns a new untagged table holding the rows listed in idx.
func (t *Table) Select(idx []int) *Table {
	out := &Table{index: make(map[string]int, len(t.columns))}
	for j, c := range t.columns {
		v := make([]float64, len(idx))
		for r, i := range idx {
			v[r] = t.cols[j][i]
		}
		out.index[c] = j
		out.columns = append(out.columns, c)
		out.cols = append(out.cols, v)
	}
	return out
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := t.Select(t.All())
	if t.parts != nil {
		out.parts = append([]Partition(nil), t.parts...)
	}
	return out
}

// Equal reports whether both tables hold the same columns (in any order) with
// the same values row by row. NaN equals NaN.
func (t *Table) Equal(o *Table) bool {
	if t.Len() != o.Len() || !SameColumns(t, o) {
		return false
	}
	for j, c := range t.columns {
		other := o.cols[o.index[c]]
		for i, v := range t.cols[j] {
			if v != other[i] && !(math.IsNaN(v) && math.IsNaN(other[i])) {
				return false
			}
		}
	}
	return true
}

// SameColumns reports whether a and b have the same set of column names.
func SameColumns(a, b *Table) bool {
	if len(a.columns) != len(b.columns) {
		return false
	}
	x := append([]string(nil), a.columns...)
	y := append([]string(nil), b.columns...)
	sort.Strings(x)
	sort.Strings(y)
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}
