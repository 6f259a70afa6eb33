package data

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

// ReadCSV reads a table with a header row. Numeric columns are parsed as
// float64; other columns are label encoded through enc. Missing markers
// ("", "NA", "NaN") become NaN.
func ReadCSV(r io.Reader, enc *LabelEncoder) (*Table, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("data: read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("data: read csv: missing header")
	}
	header, body := records[0], records[1:]

	values := make(map[string][]float64, len(header))
	for j, name := range header {
		raw := make([]string, len(body))
		for i, rec := range body {
			raw[i] = rec[j]
		}
		col := make([]float64, len(body))
		numeric := isNumericColumn(raw)
		for i, s := range raw {
			switch {
			case isMissing(s):
				col[i] = math.NaN()
			case numeric:
				col[i], _ = strconv.ParseFloat(s, 64)
			default:
				col[i] = enc.Encode(name, s)
			}
		}
		values[name] = col
	}
	return FromColumns(header, values)
}

// ReadCSVFile opens path and reads it with ReadCSV.
func ReadCSVFile(path string, enc *LabelEncoder) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f, enc)
}

// WriteCSV writes the table with a header row. Combined tables get a leading
// "partition" column.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	header := t.Columns()
	if t.parts != nil {
		header = append([]string{"partition"}, header...)
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	rec := make([]string, len(header))
	for i, _n := 0, t.Len(); i < _n; i++ {
		k := 0
		if t.parts != nil {
			rec[0] = string(t.parts[i])
			k = 1
		}
		for j := range t.columns {
			rec[k+j] = strconv.FormatFloat(t.cols[j][i], 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
