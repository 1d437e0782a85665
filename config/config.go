// Package config loads experiment configuration from YAML files into the
// typed structures the rest of the module consumes.
package config

import (
	"os"

	"github.com/hscells/manifold"
	"github.com/hscells/manifold/dataset"
	"github.com/hscells/manifold/embed"
	"github.com/hscells/manifold/pipeline"
	"github.com/hscells/manifold/svm"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Dataset configures the synthetic classification dataset.
type Dataset struct {
	Samples          int     `yaml:"samples"`
	Features         int     `yaml:"features"`
	Informative      int     `yaml:"informative"`
	Redundant        int     `yaml:"redundant"`
	Repeated         int     `yaml:"repeated"`
	Classes          int     `yaml:"classes"`
	ClustersPerClass int     `yaml:"clusters_per_class"`
	ClassSep         float64 `yaml:"class_sep"`
	FlipY            float64 `yaml:"flip_y"`
	Shuffle          bool    `yaml:"shuffle"`
	Seed             int64   `yaml:"seed"`
}

// Split configures the train/test partition and the cross-validation folds.
type Split struct {
	TestFraction float64 `yaml:"test_fraction"`
	Seed         int64   `yaml:"seed"`
	Folds        int     `yaml:"folds"`
}

// Search configures the hyperparameter grids for both models, plus the
// fixed embedding parameters that are not searched over.
type Search struct {
	C               []float64 `yaml:"c"`
	Neighbours      []int     `yaml:"neighbours"`
	Components      []int     `yaml:"components"`
	MinDist         float64   `yaml:"min_dist"`
	Spread          float64   `yaml:"spread"`
	Epochs          int       `yaml:"epochs"`
	NegativeSamples int       `yaml:"negative_samples"`
	LearningRate    float64   `yaml:"learning_rate"`
	Seed            int64     `yaml:"seed"`
}

// Config is a complete experiment configuration.
type Config struct {
	Name    string  `yaml:"name"`
	Dataset Dataset `yaml:"dataset"`
	Split   Split   `yaml:"split"`
	Search  Search  `yaml:"search"`
}

// Default is the configuration of the reference experiment: a 1000x300
// dataset with 250 informative features, an 80/20 split, and grids spanning
// seven regularisation strengths and six embedding shapes.
func Default() Config {
	return Config{
		Name: "umap-vs-raw",
		Dataset: Dataset{
			Samples:     1000,
			Features:    300,
			Informative: 250,
			Classes:     2,
			Shuffle:     true,
			Seed:        1212,
		},
		Split: Split{
			TestFraction: 0.2,
			Seed:         42,
			Folds:        5,
		},
		Search: Search{
			C:          []float64{0.001, 0.01, 0.1, 1, 10, 100, 1000},
			Neighbours: []int{5, 20},
			Components: []int{15, 25, 50},
			Seed:       42,
		},
	}
}

// Load reads a YAML configuration from path, layered over the defaults.
// An empty path yields the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: reading %s", path)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "config: parsing %s", path)
	}
	return cfg, nil
}

// Experiment converts the configuration into an executable experiment.
// Score caching and progress reporting are left for the caller to attach.
func (c Config) Experiment() manifold.Experiment {
	return manifold.Experiment{
		Name: c.Name,
		Dataset: dataset.Config{
			Samples:          c.Dataset.Samples,
			Features:         c.Dataset.Features,
			Informative:      c.Dataset.Informative,
			Redundant:        c.Dataset.Redundant,
			Repeated:         c.Dataset.Repeated,
			Classes:          c.Dataset.Classes,
			ClustersPerClass: c.Dataset.ClustersPerClass,
			ClassSep:         c.Dataset.ClassSep,
			FlipY:            c.Dataset.FlipY,
			Shuffle:          c.Dataset.Shuffle,
			Seed:             c.Dataset.Seed,
		},
		TestFraction: c.Split.TestFraction,
		SplitSeed:    c.Split.Seed,
		Folds:        c.Split.Folds,
		Baseline:     svm.Grid{C: c.Search.C},
		Embedding: pipeline.Grid{
			Embedding: embed.Grid{
				Neighbours: c.Search.Neighbours,
				Components: c.Search.Components,
			},
			Classifier: svm.Grid{C: c.Search.C},
			Base: embed.Config{
				MinDist:         c.Search.MinDist,
				Spread:          c.Search.Spread,
				Epochs:          c.Search.Epochs,
				NegativeSamples: c.Search.NegativeSamples,
				LearningRate:    c.Search.LearningRate,
				Seed:            c.Search.Seed,
			},
		},
	}
}
