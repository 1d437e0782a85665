// Package search selects model configurations by cross-validated grid search.
package search

import (
	"runtime"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"github.com/hscells/manifold/eval"
	"github.com/hscells/manifold/pipeline"
	"github.com/hscells/manifold/split"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Candidate is one point of the hyperparameter grid. New must construct a
// fresh, unfitted estimator; it is called once per cross-validation fold
// and once more for the final refit.
type Candidate struct {
	Name string
	New  func() pipeline.Estimator
}

// CandidateResult holds the per-fold and aggregate cross-validation scores
// of one candidate.
type CandidateResult struct {
	Name   string
	Scores []float64
	Mean   float64
	StdDev float64
}

// Selection is the outcome of a grid search: the best candidate refit on
// the full training data, plus the scores of every candidate.
type Selection struct {
	Name      string
	Estimator pipeline.Estimator
	Mean      float64
	Results   []CandidateResult
}

// GridSearch evaluates every candidate by k-fold cross-validation on the
// training data and refits the best mean scorer. Candidates are evaluated
// in parallel; ties are broken in favour of the earlier candidate.
type GridSearch struct {
	Candidates []Candidate
	Folds      int
	Seed       int64
	// Parallelism bounds concurrent candidate evaluations. Zero means
	// one evaluation per CPU.
	Parallelism int
	// Progress renders a progress bar over the fold evaluations.
	Progress bool
}

type fold struct {
	trainX *mat.Dense
	trainY []float64
	valX   *mat.Dense
	valY   []float64
}

// Fit runs the search over the training data.
func (g GridSearch) Fit(X *mat.Dense, y []float64) (*Selection, error) {
	if len(g.Candidates) == 0 {
		return nil, errors.New("search: no candidates to search over")
	}
	if g.Folds < 2 {
		return nil, errors.Errorf("search: cross-validation requires at least 2 folds, got %d", g.Folds)
	}
	n, _ := X.Dims()
	if n != len(y) {
		return nil, errors.Errorf("search: %d samples but %d labels", n, len(y))
	}

	folds, err := g.folds(X, y, n)
	if err != nil {
		return nil, err
	}

	var bar *pb.ProgressBar
	if g.Progress {
		bar = pb.StartNew(len(g.Candidates) * len(folds))
	}

	concurrency := g.Parallelism
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	results := make([]CandidateResult, len(g.Candidates))
	var (
		mu       sync.Mutex
		firstErr error
	)
	sem := make(chan bool, concurrency)
	for i, candidate := range g.Candidates {
		sem <- true
		go func(i int, candidate Candidate) {
			defer func() { <-sem }()

			mu.Lock()
			failed := firstErr != nil
			mu.Unlock()
			if failed {
				return
			}

			scores := make([]float64, len(folds))
			for f, fd := range folds {
				est := candidate.New()
				if err := est.Fit(fd.trainX, fd.trainY); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = errors.Wrapf(err, "search: fitting candidate %s", candidate.Name)
					}
					mu.Unlock()
					return
				}
				predicted, err := est.Predict(fd.valX)
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = errors.Wrapf(err, "search: scoring candidate %s", candidate.Name)
					}
					mu.Unlock()
					return
				}
				scores[f] = eval.Accuracy.Score(predicted, fd.valY)
				if bar != nil {
					bar.Increment()
				}
			}
			results[i] = CandidateResult{
				Name:   candidate.Name,
				Scores: scores,
				Mean:   stat.Mean(scores, nil),
				StdDev: stat.StdDev(scores, nil),
			}
		}(i, candidate)
	}
	for i := 0; i < cap(sem); i++ {
		sem <- true
	}
	if bar != nil {
		bar.Finish()
	}
	if firstErr != nil {
		return nil, firstErr
	}

	best := 0
	for i, r := range results {
		if r.Mean > results[best].Mean {
			best = i
		}
	}

	estimator := g.Candidates[best].New()
	if err := estimator.Fit(X, y); err != nil {
		return nil, errors.Wrapf(err, "search: refitting best candidate %s", g.Candidates[best].Name)
	}

	return &Selection{
		Name:      g.Candidates[best].Name,
		Estimator: estimator,
		Mean:      results[best].Mean,
		Results:   results,
	}, nil
}

// folds materialises the cross-validation train/validation subsets once so
// every candidate scores against identical data.
func (g GridSearch) folds(X *mat.Dense, y []float64, n int) ([]fold, error) {
	assignment, err := split.KFold(n, g.Folds, g.Seed)
	if err != nil {
		return nil, err
	}
	folds := make([]fold, len(assignment))
	for f, valIdx := range assignment {
		inVal := make(map[int]bool, len(valIdx))
		for _, i := range valIdx {
			inVal[i] = true
		}
		trainIdx := make([]int, 0, n-len(valIdx))
		for i := 0; i < n; i++ {
			if !inVal[i] {
				trainIdx = append(trainIdx, i)
			}
		}
		trainX, trainY := split.Take(X, y, trainIdx)
		valX, valY := split.Take(X, y, valIdx)
		folds[f] = fold{trainX: trainX, trainY: trainY, valX: valX, valY: valY}
	}
	return folds, nil
}
