package optim

import "math"

// SGD is plain gradient descent with a fixed learning rate.
type SGD struct{ LearningRate float64 }

func NewSGD(lr float64) *SGD { return &SGD{LearningRate: lr} }

func (o *SGD) Step(weights, grads []float64) { // in-place update using pointer receiver
	for i := range weights {
		weights[i] -= o.LearningRate * grads[i]
	}
}

// Proximal applies a gradient step followed by the proximal operator of a
// regularisation penalty. Penalty is "l1" (soft thresholding) or "l2"
// (shrinkage); Strength is the penalty multiplier (1/C for C-parameterised
// models).
type Proximal struct {
	SGD
	Penalty  string
	Strength float64
}

func NewProximal(lr float64, penalty string, strength float64) *Proximal {
	return &Proximal{SGD: SGD{LearningRate: lr}, Penalty: penalty, Strength: strength}
}

// Step updates weights in place and returns the largest absolute change.
// Entries listed in skip (e.g. the intercept) are not penalised.
func (o *Proximal) Step(weights, grads []float64, skip ...int) float64 {
	free := make(map[int]bool, len(skip))
	for _, s := range skip {
		free[s] = true
	}
	t := o.LearningRate * o.Strength
	maxDelta := 0.0
	for i := range weights {
		old := weights[i]
		v := old - o.LearningRate*grads[i]
		if !free[i] {
			switch o.Penalty {
			case "l1":
				v = SoftThreshold(v, t)
			default:
				v /= 1 + t
			}
		}
		weights[i] = v
		maxDelta = math.Max(maxDelta, math.Abs(v-old))
	}
	return maxDelta
}

// SoftThreshold is the proximal operator of t*|x|.
func SoftThreshold(x, t float64) float64 {
	switch {
	case x > t:
		return x - t
	case x < -t:
		return x + t
	default:
		return 0
	}
}
