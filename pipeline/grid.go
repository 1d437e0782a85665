package pipeline

import (
	"fmt"

	"github.com/hscells/manifold/embed"
	"github.com/hscells/manifold/svm"
)

// Config is one composed-pipeline configuration: an embedding stage paired
// with a classifier stage.
type Config struct {
	Embedding  embed.Config
	Classifier svm.Config
}

// String names the configuration for grid-search reporting.
func (c Config) String() string {
	return fmt.Sprintf("%s %s", c.Embedding, c.Classifier)
}

// Grid spans both the embedding-stage parameters and the classifier
// regularisation strength. Base carries the embedding parameters that are
// not searched over (epochs, learning rate, seed).
type Grid struct {
	Embedding  embed.Grid
	Classifier svm.Grid
	Base       embed.Config
}

// Validate fails fast on malformed grids, before any fitting happens.
func (g Grid) Validate() error {
	if err := g.Embedding.Validate(); err != nil {
		return err
	}
	return g.Classifier.Validate()
}

// Configs enumerates the full Cartesian product of embedding and
// classifier configurations.
func (g Grid) Configs() []Config {
	embeddings := g.Embedding.Configs(g.Base)
	classifiers := g.Classifier.Configs()
	configs := make([]Config, 0, len(embeddings)*len(classifiers))
	for _, e := range embeddings {
		for _, c := range classifiers {
			configs = append(configs, Config{Embedding: e, Classifier: c})
		}
	}
	return configs
}
