package data

import "fmt"

// Combine tags every row of train and test with its partition and stacks them,
// train first. The column sets must match (order-independent); test columns
// are reordered to train's order. Rows keep their order within a partition,
// so row positions are unique per partition.
func Combine(train, test *Table) (*Table, error) {
	if train == nil || test == nil {
		return nil, fmt.Errorf("%w: nil table", ErrSchemaMismatch)
	}
	if !SameColumns(train, test) {
		return nil, fmt.Errorf("%w: train %v, test %v", ErrSchemaMismatch, train.columns, test.columns)
	}
	nTr, nTe := train.Len(), test.Len()
	out := &Table{index: make(map[string]int, len(train.columns))}
	for j, c := range train.columns {
		v := make([]float64, 0, nTr+nTe)
		v = append(v, train.cols[j]...)
		v = append(v, test.cols[test.index[c]]...)
		out.index[c] = j
		out.columns = append(out.columns, c)
		out.cols = append(out.cols, v)
	}
	out.parts = make([]Partition, 0, nTr+nTe)
	for _i := 0; _i < nTr; _i++ {
		out.parts = append(out.parts, Train)
	}
	for _i := 0; _i < nTe; _i++ {
		out.parts = append(out.parts, Test)
	}
	return out, nil
}

// Split is the inverse of Combine. An untagged table is returned whole as the
// train part.
func (t *Table) Split() (train, test *Table) {
	if t.parts == nil {
		return t.Clone(), t.Select(nil)
	}
	return t.Select(t.PartitionRows(Train)), t.Select(t.PartitionRows(Test))
}

// Partition returns the tag of row i ("" for untagged tables).
func (t *Table) Partition(i int) Partition {
	if t.parts == nil {
		return ""
	}
	return t.parts[i]
}

// PartitionRows returns, in order, the indices of the rows tagged p.
func (t *Table) PartitionRows(p Partition) []int {
	return t.Where(func(i int) bool { return t.Partition(i) == p })
}

// Partitions lists the partitions present, train before test.
func (t *Table) Partitions() []Partition {
	var out []Partition
	for _, p := range []Partition{Train, Test} {
		if len(t.PartitionRows(p)) > 0 {
			out = append(out, p)
		}
	}
	return out
}
