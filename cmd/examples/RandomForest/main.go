package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/evelynqian/causallift/pkg/loader"
	"github.com/evelynqian/causallift/pkg/model"
)

// generateBinaryData creates a simple binary classification dataset.
// Rule: if x1 * x2 > 0 → class 1, else class 0.
func generateBinaryData(n int, rnd *rand.Rand) (X [][]float64, y []float64) {
	X = make([][]float64, n)
	y = make([]float64, n)
	for i := 0; i < n; i++ {
		x1 := rnd.Float64()*2 - 1 // [-1,1]
		x2 := rnd.Float64()*2 - 1
		X[i] = []float64{x1, x2}
		if x1*x2 > 0 {
			y[i] = 1
		}
	}
	return
}

func subset(X [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	Xs := make([][]float64, len(idx))
	ys := make([]float64, len(idx))
	for k, i := range idx {
		Xs[k], ys[k] = X[i], y[i]
	}
	return Xs, ys
}

func main() {
	seed := time.Now().UnixNano()
	rnd := rand.New(rand.NewSource(seed))

	fmt.Println("=== Outcome learners on a train/test split ===")

	// Step 1. Generate dataset
	X, y := generateBinaryData(1000, rnd)
	fmt.Printf("Generated %d samples with 2 features each.\n", len(X))

	// Step 2. Split into train/test sets
	trIdx, teIdx := loader.TrainTestSplit(len(X), 0.3, seed)
	XTrain, yTrain := subset(X, y, trIdx)
	XTest, yTest := subset(X, y, teIdx)
	fmt.Printf("Train size: %d, Test size: %d\n", len(XTrain), len(XTest))

	// Step 3. The learners the uplift session can use
	forestParams := model.DefaultForestParams()
	forestParams.NEstimators = 50
	boostParams := model.DefaultBoostingParams()
	boostParams.MaxDepth = 4
	learners := []struct {
		name string
		clf  model.Classifier
	}{
		{"random forest (50 trees)", model.NewRandomForestClassifier(forestParams, seed)},
		{"gradient boosting", model.NewGradientBoostingClassifier(boostParams, seed)},
		{"logistic regression", model.NewLogisticRegression(model.DefaultLogisticParams())},
	}

	// Step 4. Train, predict and score each
	yTrue := model.BinaryLabels(yTest)
	for _, l := range learners {
		start := time.Now()
		if err := l.clf.Fit(XTrain, yTrain, nil); err != nil {
			panic(fmt.Sprintf("training %s failed: %v", l.name, err))
		}
		proba := l.clf.PredictProba(XTest)
		pred := model.BinaryPredFromProba(proba, 0.5)
		fmt.Printf("\n%s (trained in %v)\n", l.name, time.Since(start))
		fmt.Printf("  accuracy: %.2f%%\n", model.AccuracyInt(yTrue, pred)*100)
		fmt.Printf("  ROC AUC:  %.3f\n", model.ROCAUC(yTrue, proba))
		cm := model.NewConfusionMatrix(yTrue, pred)
		fmt.Printf("  confusion: TN=%d FP=%d FN=%d TP=%d\n", cm.TN, cm.FP, cm.FN, cm.TP)
	}
	// The logistic model cannot separate an XOR pattern; the trees can.
}
