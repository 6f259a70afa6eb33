package data

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTable(t *testing.T, columns []string, rows [][]float64) *Table {
	t.Helper()
	tb, err := NewTable(columns, rows)
	require.NoError(t, err)
	return tb
}

func TestCombineSplitRoundTrip(t *testing.T) {
	train := mustTable(t, []string{"x", "Treatment", "Outcome"}, [][]float64{
		{0.5, 1, 1},
		{math.NaN(), 0, 0},
		{2, 1, 0},
	})
	test := mustTable(t, []string{"Outcome", "x", "Treatment"}, [][]float64{
		{1, 7, 0},
		{0, 8, 1},
	})

	combined, err := Combine(train, test)
	require.NoError(t, err)
	assert.Equal(t, 5, combined.Len())
	assert.Equal(t, []string{"x", "Treatment", "Outcome"}, combined.Columns())
	assert.Equal(t, []Partition{Train, Test}, combined.Partitions())
	assert.Equal(t, Test, combined.Partition(3))
	assert.Equal(t, 7.0, combined.Value(3, "x"))

	gotTrain, gotTest := combined.Split()
	assert.True(t, gotTrain.Equal(train))
	assert.True(t, gotTest.Equal(test))
}

func TestCombineSchemaMismatch(t *testing.T) {
	train := mustTable(t, []string{"x", "Treatment"}, [][]float64{{1, 0}})
	test := mustTable(t, []string{"y", "Treatment"}, [][]float64{{1, 0}})

	_, err := Combine(train, test)
	require.ErrorIs(t, err, ErrSchemaMismatch)

	_, err = Combine(train, nil)
	require.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestCombineEmptyTest(t *testing.T) {
	train := mustTable(t, []string{"x"}, [][]float64{{1}, {2}})
	test := mustTable(t, []string{"x"}, nil)

	combined, err := Combine(train, test)
	require.NoError(t, err)
	assert.Equal(t, []Partition{Train}, combined.Partitions())
	assert.Empty(t, combined.PartitionRows(Test))
	assert.NotNil(t, combined.PartitionRows(Test))
}

func TestMatrixAndWhere(t *testing.T) {
	tb := mustTable(t, []string{"a", "b"}, [][]float64{{1, 2}, {3, 4}, {5, 6}})

	all, err := tb.Matrix([]string{"b", "a"}, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{2, 1}, {4, 3}, {6, 5}}, all)

	none := tb.Where(func(int) bool { return false })
	require.NotNil(t, none)
	rows, err := tb.Matrix([]string{"a"}, none)
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = tb.Matrix([]string{"c"}, nil)
	require.ErrorIs(t, err, ErrNoColumn)
}

func TestSetCol(t *testing.T) {
	tb := mustTable(t, []string{"a"}, [][]float64{{1}, {2}})

	require.NoError(t, tb.SetCol("b", []float64{9, 8}))
	assert.Equal(t, []string{"a", "b"}, tb.Columns())
	require.NoError(t, tb.SetCol("a", []float64{0, 0}))
	col, err := tb.Col("a")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, col)

	require.ErrorIs(t, tb.SetCol("c", []float64{1}), ErrLength)
	assert.True(t, math.IsNaN(tb.Value(0, "missing")))
}

func TestReadCSV(t *testing.T) {
	enc := NewLabelEncoder()
	tb, err := ReadCSV(strings.NewReader("x,color,Treatment\n1,red,1\n2,blue,0\nNA,red,1\n"), enc)
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "color", "Treatment"}, tb.Columns())
	color, _ := tb.Col("color")
	assert.Equal(t, []float64{0, 1, 0}, color)
	assert.True(t, math.IsNaN(tb.Value(2, "x")))
	assert.Equal(t, map[string]int{"red": 0, "blue": 1}, enc.Mapping("color"))

	// a second file read through the same encoder reuses the codes
	other, err := ReadCSV(strings.NewReader("x,color,Treatment\n3,blue,0\n4,green,1\n"), enc)
	require.NoError(t, err)
	color, _ = other.Col("color")
	assert.Equal(t, []float64{1, 2}, color)
}

func TestWriteCSV(t *testing.T) {
	train := mustTable(t, []string{"x"}, [][]float64{{1.5}})
	test := mustTable(t, []string{"x"}, [][]float64{{2}})
	combined, err := Combine(train, test)
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, WriteCSV(&b, combined))
	assert.Equal(t, "partition,x\ntrain,1.5\ntest,2\n", b.String())

	b.Reset()
	require.NoError(t, WriteCSV(&b, train))
	assert.Equal(t, "x\n1.5\n", b.String())
}
