// Package eval provides evaluation measures for classifier predictions.
package eval

// Evaluator is an interface for scoring a list of predictions against the
// true labels. Predicted and actual must be the same length; scoring never
// mutates either slice.
type Evaluator interface {
	Score(predicted, actual []float64) float64
	Name() string
}

// Evaluate scores predictions using the supplied evaluation measures.
func Evaluate(evaluators []Evaluator, predicted, actual []float64) map[string]float64 {
	scores := make(map[string]float64, len(evaluators))
	for _, evaluator := range evaluators {
		scores[evaluator.Name()] = evaluator.Score(predicted, actual)
	}
	return scores
}

var (
	// Accuracy is the fraction of predictions matching the true label.
	Accuracy = accuracy{}
	// Precision is tp/(tp+fp) for the positive class (label 1).
	Precision = precision{}
	// Recall is tp/(tp+fn) for the positive class (label 1).
	Recall = recall{}
	// F1 is the harmonic mean of precision and recall.
	F1 = f1{}
)

type accuracy struct{}

func (accuracy) Name() string {
	return "Accuracy"
}

func (accuracy) Score(predicted, actual []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	correct := 0
	for i := range actual {
		if predicted[i] == actual[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(actual))
}

type precision struct{}

func (precision) Name() string {
	return "Precision"
}

func (precision) Score(predicted, actual []float64) float64 {
	tp, fp := counts(predicted, actual)
	if tp+fp == 0 {
		return 0
	}
	return float64(tp) / float64(tp+fp)
}

type recall struct{}

func (recall) Name() string {
	return "Recall"
}

func (recall) Score(predicted, actual []float64) float64 {
	tp := 0
	fn := 0
	for i := range actual {
		if actual[i] == 1 {
			if predicted[i] == 1 {
				tp++
			} else {
				fn++
			}
		}
	}
	if tp+fn == 0 {
		return 0
	}
	return float64(tp) / float64(tp+fn)
}

type f1 struct{}

func (f1) Name() string {
	return "F1"
}

func (f1) Score(predicted, actual []float64) float64 {
	p := Precision.Score(predicted, actual)
	r := Recall.Score(predicted, actual)
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

func counts(predicted, actual []float64) (tp, fp int) {
	for i := range actual {
		if predicted[i] == 1 {
			if actual[i] == 1 {
				tp++
			} else {
				fp++
			}
		}
	}
	return
}
