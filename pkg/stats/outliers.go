package stats

// Clip clamps every value of x into [lower, upper], returning a new slice and
// the number of values that were moved. Values are never dropped.
func Clip(x []float64, lower, upper float64) ([]float64, int) {
	out := make([]float64, len(x))
	moved := 0
	for i, v := range x {
		switch {
		case v < lower:
			out[i] = lower
			moved++
		case v > upper:
			out[i] = upper
			moved++
		default:
			out[i] = v
		}
	}
	return out, moved
}
