package search

import (
	"github.com/hscells/manifold/embed"
	"github.com/hscells/manifold/pipeline"
	"github.com/hscells/manifold/svm"
)

// SVCCandidates enumerates a classifier grid into candidates fitting on
// raw features.
func SVCCandidates(g svm.Grid) ([]Candidate, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	configs := g.Configs()
	candidates := make([]Candidate, len(configs))
	for i, cfg := range configs {
		cfg := cfg
		candidates[i] = Candidate{
			Name: cfg.String(),
			New: func() pipeline.Estimator {
				return svm.New(cfg)
			},
		}
	}
	return candidates, nil
}

// ComposedCandidates enumerates a composed embedding+classifier grid into
// candidates. All candidates share the memory, so a fitted embedding is
// reused across the classifier configurations paired with it.
func ComposedCandidates(g pipeline.Grid, memory *pipeline.Memory) ([]Candidate, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	configs := g.Configs()
	candidates := make([]Candidate, len(configs))
	for i, cfg := range configs {
		cfg := cfg
		candidates[i] = Candidate{
			Name: cfg.String(),
			New: func() pipeline.Estimator {
				return &pipeline.Pipeline{
					Transform: embed.New(cfg.Embedding),
					Classify:  svm.New(cfg.Classifier),
					Memory:    memory,
				}
			},
		}
	}
	return candidates, nil
}
