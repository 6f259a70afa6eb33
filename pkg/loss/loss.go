package loss

import "math"

// BCE is the sample-weighted binary cross-entropy. A nil w weights every
// sample by 1. Labels may be probabilities rather than hard 0/1 values.
func BCE(yTrue, yPred, w []float64) float64 {
	s, sw := 0.0, 0.0
	for i := range yTrue {
		wi := 1.0
		if w != nil {
			wi = w[i]
		}
		p := math.Min(math.Max(yPred[i], 1e-12), 1-1e-12)
		y := yTrue[i]
		s += -wi * (y*math.Log(p) + (1-y)*math.Log(1-p))
		sw += wi
	}
	if sw == 0 {
		return 0
	}
	return s / sw
}

// LogisticGradHess returns the first and second derivatives of the logistic
// loss with respect to the raw margin, scaled by the sample weights.
// Used by the boosted trees.
func LogisticGradHess(yTrue, margin, w []float64) (grad, hess []float64) {
	n := len(yTrue)
	grad = make([]float64, n)
	hess = make([]float64, n)
	for i := 0; i < n; i++ {
		p := Sigmoid(margin[i])
		wi := 1.0
		if w != nil {
			wi = w[i]
		}
		grad[i] = wi * (p - yTrue[i])
		hess[i] = wi * math.Max(p*(1-p), 1e-16)
	}
	return grad, hess
}
