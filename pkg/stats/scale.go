package stats

import "math"

// StandardScaler standardizes each column to zero mean and unit variance.
// Constant columns keep a unit scale so they map to zero. NaN entries are
// ignored while fitting and pass through Transform unchanged.
type StandardScaler struct {
	Mean []float64
	Std  []float64
	fit  bool
}

func NewStandardScaler() *StandardScaler { return &StandardScaler{} }

func (s *StandardScaler) Fit(X [][]float64) error {
	if len(X) == 0 {
		return nil
	}
	c := len(X[0])
	s.Mean = make([]float64, c)
	s.Std = make([]float64, c)
	for j := 0; j < c; j++ {
		n := 0
		for i := range X {
			if !math.IsNaN(X[i][j]) {
				s.Mean[j] += X[i][j]
				n++
			}
		}
		if n > 0 {
			s.Mean[j] /= float64(n)
		}
		v := 0.0
		for i := range X {
			if !math.IsNaN(X[i][j]) {
				d := X[i][j] - s.Mean[j]
				v += d * d
			}
		}
		if n > 0 {
			v /= float64(n)
		}
		s.Std[j] = math.Sqrt(v)
		if s.Std[j] == 0 {
			s.Std[j] = 1
		}
	}
	s.fit = true
	return nil
}

func (s *StandardScaler) Transform(X [][]float64) [][]float64 {
	if !s.fit {
		return X
	}
	Y := make([][]float64, len(X))
	for i := range X {
		row := make([]float64, len(X[i]))
		for j := range row {
			row[j] = (X[i][j] - s.Mean[j]) / s.Std[j]
		}
		Y[i] = row
	}
	return Y
}

func (s *StandardScaler) FitTransform(X [][]float64) [][]float64 {
	_ = s.Fit(X)
	return s.Transform(X)
}
