package embed_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/hscells/manifold/embed"
	"gonum.org/v1/gonum/mat"
)

// clusters builds two gaussian blobs far apart in p dimensions.
func clusters(n, p int, seed int64) (*mat.Dense, []float64) {
	rng := rand.New(rand.NewSource(seed))
	X := mat.NewDense(n, p, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		centre := -10.0
		if i >= n/2 {
			centre = 10.0
			y[i] = 1
		}
		for j := 0; j < p; j++ {
			X.Set(i, j, centre+rng.NormFloat64())
		}
	}
	return X, y
}

func TestFitTransform(t *testing.T) {
	X, _ := clusters(60, 10, 3)
	u := embed.New(embed.Config{Neighbours: 5, Components: 3, Epochs: 50, Seed: 3})
	if err := u.Fit(X); err != nil {
		t.Fatal(err)
	}

	out, err := u.Transform(X)
	if err != nil {
		t.Fatal(err)
	}
	n, m := out.Dims()
	if n != 60 || m != 3 {
		t.Fatalf("expected a 60x3 embedding, got %dx%d", n, m)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			if v := out.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("non-finite embedding value at (%d,%d): %v", i, j, v)
			}
		}
	}
}

func TestClusterSeparation(t *testing.T) {
	X, y := clusters(60, 10, 5)
	u := embed.New(embed.Config{Neighbours: 5, Components: 2, Epochs: 100, Seed: 5})
	if err := u.Fit(X); err != nil {
		t.Fatal(err)
	}
	out, err := u.Transform(X)
	if err != nil {
		t.Fatal(err)
	}

	// Cluster means must sit further apart than the average spread within
	// each cluster.
	var meanA, meanB [2]float64
	for i, label := range y {
		for d := 0; d < 2; d++ {
			if label == 0 {
				meanA[d] += out.At(i, d) / 30
			} else {
				meanB[d] += out.At(i, d) / 30
			}
		}
	}
	between := math.Hypot(meanA[0]-meanB[0], meanA[1]-meanB[1])

	within := 0.0
	for i, label := range y {
		mean := meanA
		if label == 1 {
			mean = meanB
		}
		within += math.Hypot(out.At(i, 0)-mean[0], out.At(i, 1)-mean[1]) / 60
	}

	t.Logf("between=%v within=%v", between, within)
	if between <= within {
		t.Fatalf("clusters not separated: between=%v within=%v", between, within)
	}
}

func TestDeterminism(t *testing.T) {
	X, _ := clusters(40, 8, 11)
	cfg := embed.Config{Neighbours: 5, Components: 2, Epochs: 30, Seed: 11}

	a := embed.New(cfg)
	if err := a.Fit(X); err != nil {
		t.Fatal(err)
	}
	outA, err := a.Transform(X)
	if err != nil {
		t.Fatal(err)
	}

	b := embed.New(cfg)
	if err := b.Fit(X); err != nil {
		t.Fatal(err)
	}
	outB, err := b.Transform(X)
	if err != nil {
		t.Fatal(err)
	}

	if !mat.Equal(outA, outB) {
		t.Fatal("same seed produced different embeddings")
	}
}

func TestFitValidation(t *testing.T) {
	X, _ := clusters(10, 4, 1)

	if err := embed.New(embed.Config{Neighbours: 10, Components: 2}).Fit(X); err == nil {
		t.Fatal("expected a neighbourhood size matching the sample count to be rejected")
	}
	if err := embed.New(embed.Config{Neighbours: 5, Components: 4}).Fit(X); err == nil {
		t.Fatal("expected an output dimensionality matching the feature count to be rejected")
	}
}

func TestTransformBeforeFit(t *testing.T) {
	u := embed.New(embed.Config{})
	if _, err := u.Transform(mat.NewDense(2, 2, []float64{1, 2, 3, 4})); err == nil {
		t.Fatal("expected transform before fit to fail")
	}
}

func TestTransformFeatureMismatch(t *testing.T) {
	X, _ := clusters(30, 6, 2)
	u := embed.New(embed.Config{Neighbours: 5, Components: 2, Epochs: 20, Seed: 2})
	if err := u.Fit(X); err != nil {
		t.Fatal(err)
	}
	if _, err := u.Transform(mat.NewDense(3, 4, nil)); err == nil {
		t.Fatal("expected a feature count mismatch to fail")
	}
}

func TestFingerprint(t *testing.T) {
	a := embed.New(embed.Config{Neighbours: 5, Components: 2})
	b := embed.New(embed.Config{Neighbours: 5, Components: 2})
	c := embed.New(embed.Config{Neighbours: 20, Components: 2})

	if a.Fingerprint() != b.Fingerprint() {
		t.Fatal("identical configurations must share a fingerprint")
	}
	if a.Fingerprint() == c.Fingerprint() {
		t.Fatal("different configurations must not share a fingerprint")
	}
}
