package search_test

import (
	"testing"

	"github.com/hscells/manifold/pipeline"
	"github.com/hscells/manifold/search"
	"github.com/hscells/manifold/svm"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// signEstimator predicts from the sign of the first feature. It is correct
// on data labelled the same way.
type signEstimator struct {
	fitted bool
}

func (e *signEstimator) Fit(X *mat.Dense, y []float64) error {
	e.fitted = true
	return nil
}

func (e *signEstimator) Predict(X *mat.Dense) ([]float64, error) {
	if !e.fitted {
		return nil, errors.New("predict before fit")
	}
	n, _ := X.Dims()
	predictions := make([]float64, n)
	for i := 0; i < n; i++ {
		if X.At(i, 0) > 0 {
			predictions[i] = 1
		}
	}
	return predictions, nil
}

// constantEstimator always predicts the same class.
type constantEstimator struct {
	label float64
}

func (e *constantEstimator) Fit(X *mat.Dense, y []float64) error {
	return nil
}

func (e *constantEstimator) Predict(X *mat.Dense) ([]float64, error) {
	n, _ := X.Dims()
	predictions := make([]float64, n)
	for i := range predictions {
		predictions[i] = e.label
	}
	return predictions, nil
}

// signData alternates negative and positive first features with matching labels.
func signData(n int) (*mat.Dense, []float64) {
	X := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		v := -1.0 - float64(i)
		if i%2 == 0 {
			v = 1.0 + float64(i)
			y[i] = 1
		}
		X.Set(i, 0, v)
		X.Set(i, 1, float64(i))
	}
	return X, y
}

func TestGridSearchSelectsBestCandidate(t *testing.T) {
	X, y := signData(30)

	g := search.GridSearch{
		Candidates: []search.Candidate{
			{Name: "constant", New: func() pipeline.Estimator { return &constantEstimator{label: 0} }},
			{Name: "sign", New: func() pipeline.Estimator { return &signEstimator{} }},
		},
		Folds: 3,
		Seed:  42,
	}
	selection, err := g.Fit(X, y)
	if err != nil {
		t.Fatal(err)
	}

	if selection.Name != "sign" {
		t.Fatalf("expected the sign candidate to win, got %s", selection.Name)
	}
	if selection.Mean != 1 {
		t.Fatalf("expected a perfect cross-validation score, got %v", selection.Mean)
	}
	if len(selection.Results) != 2 {
		t.Fatalf("expected results for 2 candidates, got %d", len(selection.Results))
	}

	// The winner must be refit on the full training data.
	predictions, err := selection.Estimator.Predict(X)
	if err != nil {
		t.Fatal(err)
	}
	for i := range y {
		if predictions[i] != y[i] {
			t.Fatalf("refit estimator mispredicts sample %d", i)
		}
	}
}

func TestGridSearchTieBreaksEarlier(t *testing.T) {
	X, y := signData(20)

	g := search.GridSearch{
		Candidates: []search.Candidate{
			{Name: "first", New: func() pipeline.Estimator { return &signEstimator{} }},
			{Name: "second", New: func() pipeline.Estimator { return &signEstimator{} }},
		},
		Folds: 2,
		Seed:  42,
	}
	selection, err := g.Fit(X, y)
	if err != nil {
		t.Fatal(err)
	}
	if selection.Name != "first" {
		t.Fatalf("expected the tie to break towards the earlier candidate, got %s", selection.Name)
	}
}

func TestGridSearchValidation(t *testing.T) {
	X, y := signData(10)

	g := search.GridSearch{Folds: 3}
	if _, err := g.Fit(X, y); err == nil {
		t.Fatal("expected an empty candidate list to be rejected")
	}

	g = search.GridSearch{
		Candidates: []search.Candidate{{Name: "sign", New: func() pipeline.Estimator { return &signEstimator{} }}},
		Folds:      1,
	}
	if _, err := g.Fit(X, y); err == nil {
		t.Fatal("expected a single fold to be rejected")
	}

	g.Folds = 3
	if _, err := g.Fit(X, y[:5]); err == nil {
		t.Fatal("expected a label count mismatch to be rejected")
	}
}

func TestGridSearchPropagatesFitErrors(t *testing.T) {
	X, y := signData(10)

	g := search.GridSearch{
		Candidates: []search.Candidate{
			{Name: "broken", New: func() pipeline.Estimator { return brokenEstimator{} }},
		},
		Folds: 2,
		Seed:  42,
	}
	if _, err := g.Fit(X, y); err == nil {
		t.Fatal("expected the candidate's fit error to propagate")
	}
}

type brokenEstimator struct{}

func (brokenEstimator) Fit(X *mat.Dense, y []float64) error {
	return errors.New("broken")
}

func (brokenEstimator) Predict(X *mat.Dense) ([]float64, error) {
	return nil, errors.New("broken")
}

func TestSVCCandidates(t *testing.T) {
	candidates, err := search.SVCCandidates(svm.Grid{C: []float64{0.1, 1, 10}})
	if err != nil {
		t.Fatal(err)
	}
	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}
	if candidates[0].Name != "C=0.1" {
		t.Fatalf("unexpected candidate name %s", candidates[0].Name)
	}
	if candidates[0].New() == nil {
		t.Fatal("expected the candidate to construct an estimator")
	}

	if _, err := search.SVCCandidates(svm.Grid{}); err == nil {
		t.Fatal("expected an empty grid to be rejected")
	}
}
