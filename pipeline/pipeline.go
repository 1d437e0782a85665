// Package pipeline provides the estimator abstractions shared by the raw
// and embedding-augmented models: a fit/predict contract for classifiers,
// a fit/transform contract for preprocessing stages, and a composed
// pipeline that is itself an estimator.
package pipeline

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Estimator is an abstract representation of a model that can be fit on
// training data and asked for predictions on new data.
type Estimator interface {
	Fit(X *mat.Dense, y []float64) error
	Predict(X *mat.Dense) ([]float64, error)
}

// Transformer is a preprocessing stage fit once on training data and then
// applied to any compatible data.
type Transformer interface {
	Fit(X *mat.Dense) error
	Transform(X *mat.Dense) (*mat.Dense, error)
}

// Fingerprinter is implemented by transformers whose fitted state is fully
// determined by their configuration, making them safe to share through a
// Memory.
type Fingerprinter interface {
	Fingerprint() string
}

// Pipeline composes a preprocessing stage with a classifier into a single
// fit/predict unit. Fitting fits the transformer on the training features,
// transforms them, and fits the classifier on the result. Prediction
// applies the same fitted transformer to new data before classifying, so
// no statistics of the scored data leak into the preprocessing stage.
type Pipeline struct {
	Transform Transformer
	Classify  Estimator
	Memory    *Memory

	fitted Transformer
}

// Fit fits the composed unit on the training data.
func (p *Pipeline) Fit(X *mat.Dense, y []float64) error {
	if p.Transform == nil || p.Classify == nil {
		return errors.New("pipeline: both a transformer and a classifier are required")
	}

	t := p.Transform
	if p.Memory != nil {
		cached, key, ok := p.Memory.lookup(t, X)
		if ok {
			t = cached
		} else {
			if err := t.Fit(X); err != nil {
				return errors.Wrap(err, "pipeline: fitting transformer")
			}
			p.Memory.store(key, t)
		}
	} else if err := t.Fit(X); err != nil {
		return errors.Wrap(err, "pipeline: fitting transformer")
	}
	p.fitted = t

	Xt, err := t.Transform(X)
	if err != nil {
		return errors.Wrap(err, "pipeline: transforming training data")
	}
	return p.Classify.Fit(Xt, y)
}

// Predict transforms X with the fitted preprocessing stage and classifies
// the result.
func (p *Pipeline) Predict(X *mat.Dense) ([]float64, error) {
	if p.fitted == nil {
		return nil, errors.New("pipeline: predict called before fit")
	}
	Xt, err := p.fitted.Transform(X)
	if err != nil {
		return nil, errors.Wrap(err, "pipeline: transforming data")
	}
	return p.Classify.Predict(Xt)
}
