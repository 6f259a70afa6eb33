package loss

import "math"

func Sigmoid(x float64) float64 { return 1.0 / (1.0 + math.Exp(-x)) }

// Logit is the inverse of Sigmoid. p is clamped away from 0 and 1.
func Logit(p float64) float64 {
	p = math.Min(math.Max(p, 1e-12), 1-1e-12)
	return math.Log(p / (1 - p))
}
