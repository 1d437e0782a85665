// Package dataset generates labelled synthetic classification datasets.
package dataset

import (
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Dataset is a fixed-size collection of feature vectors paired 1:1 with class labels.
type Dataset struct {
	X *mat.Dense
	Y []float64
}

// Dims returns the number of samples and the number of features.
func (d *Dataset) Dims() (n, p int) {
	return d.X.Dims()
}

// Config controls synthetic dataset generation. The defaults mirror the
// behaviour of the usual make_classification-style generators: two clusters
// per class placed on hypercube vertices, unit class separation and 1%
// label noise.
type Config struct {
	Samples          int
	Features         int
	Informative      int
	Redundant        int
	Repeated         int
	Classes          int
	ClustersPerClass int
	ClassSep         float64
	FlipY            float64
	Shuffle          bool
	Seed             int64
}

func (c Config) withDefaults() Config {
	if c.ClustersPerClass == 0 {
		c.ClustersPerClass = 2
	}
	if c.ClassSep == 0 {
		c.ClassSep = 1.0
	}
	return c
}

// Validate checks the parameter combination before any generation happens.
func (c Config) Validate() error {
	c = c.withDefaults()
	if c.Samples <= 0 {
		return errors.New("dataset: sample count must be positive")
	}
	if c.Features <= 0 {
		return errors.New("dataset: feature count must be positive")
	}
	if c.Classes < 2 {
		return errors.New("dataset: at least two classes are required")
	}
	if c.Informative <= 0 {
		return errors.New("dataset: informative feature count must be positive")
	}
	if c.Informative+c.Redundant+c.Repeated > c.Features {
		return errors.Errorf("dataset: informative (%d) + redundant (%d) + repeated (%d) features exceed total features (%d)",
			c.Informative, c.Redundant, c.Repeated, c.Features)
	}
	if c.FlipY < 0 || c.FlipY > 1 {
		return errors.New("dataset: label flip fraction must be in [0,1]")
	}
	clusters := c.Classes * c.ClustersPerClass
	if c.Informative < 64 && clusters > 1<<uint(c.Informative) {
		return errors.Errorf("dataset: %d clusters cannot be placed on the vertices of a %d-dimensional hypercube",
			clusters, c.Informative)
	}
	return nil
}

// Generate produces a Dataset from the configuration. Output is
// deterministic for a fixed seed: bit-identical across invocations.
func Generate(c Config) (*Dataset, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c = c.withDefaults()

	rng := rand.New(rand.NewSource(c.Seed))

	n := c.Samples
	clusters := c.Classes * c.ClustersPerClass
	centroids := hypercubeVertices(clusters, c.Informative, rng)
	for _, v := range centroids {
		for j := range v {
			v[j] = v[j]*2*c.ClassSep - c.ClassSep
		}
	}

	// Distribute samples across clusters as evenly as possible.
	counts := make([]int, clusters)
	for k := range counts {
		counts[k] = n / clusters
	}
	for k := 0; k < n%clusters; k++ {
		counts[k]++
	}

	X := mat.NewDense(n, c.Features, nil)
	y := make([]float64, n)

	// Informative block: standard normal draws pushed through a
	// per-cluster random linear map, then shifted to the centroid.
	row := 0
	z := make([]float64, c.Informative)
	v := make([]float64, c.Informative)
	for k, count := range counts {
		A := randomSquare(c.Informative, rng)
		for s := 0; s < count; s++ {
			for j := range z {
				z[j] = rng.NormFloat64()
			}
			for j := 0; j < c.Informative; j++ {
				sum := 0.0
				for i := 0; i < c.Informative; i++ {
					sum += z[i] * A[i*c.Informative+j]
				}
				v[j] = sum + centroids[k][j]
			}
			for j := 0; j < c.Informative; j++ {
				X.Set(row, j, v[j])
			}
			y[row] = float64(k % c.Classes)
			row++
		}
	}

	// Redundant columns are random linear combinations of the informative block.
	if c.Redundant > 0 {
		B := make([]float64, c.Informative*c.Redundant)
		for i := range B {
			B[i] = 2*rng.Float64() - 1
		}
		for i := 0; i < n; i++ {
			for j := 0; j < c.Redundant; j++ {
				sum := 0.0
				for l := 0; l < c.Informative; l++ {
					sum += X.At(i, l) * B[l*c.Redundant+j]
				}
				X.Set(i, c.Informative+j, sum)
			}
		}
	}

	// Repeated columns duplicate earlier useful columns.
	for j := 0; j < c.Repeated; j++ {
		src := rng.Intn(c.Informative + c.Redundant)
		for i := 0; i < n; i++ {
			X.Set(i, c.Informative+c.Redundant+j, X.At(i, src))
		}
	}

	// The remaining columns carry no class signal.
	for j := c.Informative + c.Redundant + c.Repeated; j < c.Features; j++ {
		for i := 0; i < n; i++ {
			X.Set(i, j, rng.NormFloat64())
		}
	}

	// Flip a fraction of labels to a uniformly random class.
	if c.FlipY > 0 {
		for i := 0; i < n; i++ {
			if rng.Float64() < c.FlipY {
				y[i] = float64(rng.Intn(c.Classes))
			}
		}
	}

	if c.Shuffle {
		X, y = shuffle(X, y, c.Features, rng)
	}

	return &Dataset{X: X, Y: y}, nil
}

// hypercubeVertices samples distinct binary vertices of the informative-space
// hypercube, one per cluster. Validation guarantees enough vertices exist.
func hypercubeVertices(clusters, dim int, rng *rand.Rand) [][]float64 {
	seen := make(map[string]bool, clusters)
	vertices := make([][]float64, 0, clusters)
	for len(vertices) < clusters {
		v := make([]float64, dim)
		key := make([]byte, dim)
		for j := range v {
			if rng.Intn(2) == 1 {
				v[j] = 1
				key[j] = '1'
			} else {
				key[j] = '0'
			}
		}
		if seen[string(key)] {
			continue
		}
		seen[string(key)] = true
		vertices = append(vertices, v)
	}
	return vertices
}

func randomSquare(dim int, rng *rand.Rand) []float64 {
	A := make([]float64, dim*dim)
	for i := range A {
		A[i] = 2*rng.Float64() - 1
	}
	return A
}

// shuffle permutes rows and columns in unison with the labels.
func shuffle(X *mat.Dense, y []float64, features int, rng *rand.Rand) (*mat.Dense, []float64) {
	n := len(y)
	rowPerm := rng.Perm(n)
	colPerm := rng.Perm(features)

	shuffled := mat.NewDense(n, features, nil)
	labels := make([]float64, n)
	for i, ri := range rowPerm {
		for j, cj := range colPerm {
			shuffled.Set(i, j, X.At(ri, cj))
		}
		labels[i] = y[ri]
	}
	return shuffled, labels
}
