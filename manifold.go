// Package manifold provides a framework for constructing reproducible
// embedding-versus-raw-feature classification experiments: a synthetic
// dataset is generated and split, a linear support-vector classifier is
// selected by cross-validated grid search both on raw features and behind
// a UMAP-style embedding stage, and both models are scored on the held-out
// test split.
package manifold

import (
	"fmt"
	"hash/fnv"
	"log"

	"github.com/google/uuid"
	"github.com/hscells/manifold/dataset"
	"github.com/hscells/manifold/eval"
	"github.com/hscells/manifold/output"
	"github.com/hscells/manifold/pipeline"
	"github.com/hscells/manifold/search"
	"github.com/hscells/manifold/split"
	"github.com/hscells/manifold/svm"
)

// Model names used for cache keys, evaluation maps and report formatting.
const (
	ModelRaw  = "raw"
	ModelUMAP = "umap"
)

// ResultType is the type of result being returned through an experiment channel.
type ResultType uint8

const (
	// Selection reports the configuration chosen by a grid search.
	Selection ResultType = iota
	// Score is the held-out evaluation of one trained model.
	Score
	// Evaluation carries the formatted evaluation output.
	Evaluation
	// Error indicates an error was raised.
	Error
	// Done indicates the experiment has completed.
	Done
)

// Result is the output of a manifold experiment.
type Result struct {
	Model       string
	RunID       string
	Selection   *search.Selection
	Scores      map[string]float64
	Evaluations []string
	Type        ResultType
	Error       error
}

// Experiment contains all the information for executing an
// embedding-versus-raw experiment.
type Experiment struct {
	Name         string
	Dataset      dataset.Config
	TestFraction float64
	SplitSeed    int64
	Folds        int
	Baseline     svm.Grid
	Embedding    pipeline.Grid
	Evaluators   []eval.Evaluator
	Formatters   []output.EvaluationFormatter
	ScoreCache   ScoreCacher
	// MemorySize bounds the fitted-transformer cache shared by the
	// composed candidates.
	MemorySize int
	Progress   bool
}

// Execute runs the experiment, streaming results through c. The channel is
// closed once the experiment finishes, whether by completion or error.
func (e Experiment) Execute(c chan Result) {
	defer close(c)

	runID := uuid.New().String()
	log.Printf("starting manifold experiment %s [%s]\n", e.Name, runID)

	if e.Folds == 0 {
		e.Folds = 5
	}
	if len(e.Evaluators) == 0 {
		e.Evaluators = []eval.Evaluator{eval.Accuracy}
	}
	if e.MemorySize == 0 {
		e.MemorySize = 16
	}

	baseline, err := search.SVCCandidates(e.Baseline)
	if err != nil {
		c <- Result{Error: err, RunID: runID, Type: Error}
		return
	}
	memory, err := pipeline.NewMemory(e.MemorySize)
	if err != nil {
		c <- Result{Error: err, RunID: runID, Type: Error}
		return
	}
	composed, err := search.ComposedCandidates(e.Embedding, memory)
	if err != nil {
		c <- Result{Error: err, RunID: runID, Type: Error}
		return
	}

	log.Println("generating dataset...")
	ds, err := dataset.Generate(e.Dataset)
	if err != nil {
		c <- Result{Error: err, RunID: runID, Type: Error}
		return
	}

	log.Println("splitting dataset...")
	sp, err := split.TrainTest(ds, e.TestFraction, e.SplitSeed)
	if err != nil {
		c <- Result{Error: err, RunID: runID, Type: Error}
		return
	}

	models := []struct {
		name       string
		candidates []search.Candidate
	}{
		{name: ModelRaw, candidates: baseline},
		{name: ModelUMAP, candidates: composed},
	}

	evaluations := make(map[string]map[string]float64)
	for _, m := range models {
		key := e.cacheKey(m.name)
		if e.ScoreCache != nil {
			if scores, err := e.ScoreCache.Get(key); err == nil {
				log.Printf("already scored the %s model, so skipping it\n", m.name)
				evaluations[m.name] = scores
				c <- Result{Model: m.name, RunID: runID, Scores: scores, Type: Score}
				continue
			}
		}

		log.Printf("searching %d candidate configurations for the %s model...\n", len(m.candidates), m.name)
		gs := search.GridSearch{
			Candidates: m.candidates,
			Folds:      e.Folds,
			Seed:       e.SplitSeed,
			Progress:   e.Progress,
		}
		selection, err := gs.Fit(sp.TrainX, sp.TrainY)
		if err != nil {
			c <- Result{Model: m.name, Error: err, RunID: runID, Type: Error}
			return
		}
		c <- Result{Model: m.name, RunID: runID, Selection: selection, Type: Selection}

		log.Printf("scoring the %s model (%s) on the held-out test split...\n", m.name, selection.Name)
		predicted, err := selection.Estimator.Predict(sp.TestX)
		if err != nil {
			c <- Result{Model: m.name, Error: err, RunID: runID, Type: Error}
			return
		}
		scores := eval.Evaluate(e.Evaluators, predicted, sp.TestY)
		evaluations[m.name] = scores

		if e.ScoreCache != nil {
			if err := e.ScoreCache.Set(key, scores); err != nil {
				c <- Result{Model: m.name, Error: err, RunID: runID, Type: Error}
				return
			}
		}
		c <- Result{Model: m.name, RunID: runID, Scores: scores, Type: Score}
	}

	if len(e.Formatters) > 0 {
		formatted := make([]string, len(e.Formatters))
		for i, formatter := range e.Formatters {
			formatted[i], err = formatter(evaluations)
			if err != nil {
				c <- Result{Error: err, RunID: runID, Type: Error}
				return
			}
		}
		c <- Result{RunID: runID, Evaluations: formatted, Type: Evaluation}
	}

	c <- Result{RunID: runID, Type: Done}
}

// cacheKey fingerprints everything that determines a model's held-out
// scores: the dataset, the split, the grids, the fold count and the
// evaluator set.
func (e Experiment) cacheKey(model string) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%+v|%v|%d|%d|%+v|%+v|%s", e.Dataset, e.TestFraction, e.SplitSeed, e.Folds, e.Baseline, e.Embedding, model)
	for _, evaluator := range e.Evaluators {
		fmt.Fprintf(h, "|%s", evaluator.Name())
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
