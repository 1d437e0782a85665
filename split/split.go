// Package split partitions datasets into training and held-out subsets.
package split

import (
	"math"
	"math/rand"
	"sort"

	"github.com/hscells/manifold/dataset"
	"github.com/pkg/errors"
	"github.com/xtgo/set"
	"gonum.org/v1/gonum/mat"
)

// Split is a pair of disjoint, exhaustive partitions of a dataset.
// Membership is fixed at creation.
type Split struct {
	TrainX *mat.Dense
	TrainY []float64
	TestX  *mat.Dense
	TestY  []float64

	TrainIndices []int
	TestIndices  []int
}

// TrainTest partitions d into train and test subsets. The test subset holds
// round(n*fraction) samples. Assignment is a seeded permutation, so it is
// deterministic for a fixed seed.
func TrainTest(d *dataset.Dataset, fraction float64, seed int64) (Split, error) {
	n, _ := d.Dims()
	if fraction <= 0 || fraction >= 1 {
		return Split{}, errors.Errorf("split: test fraction must be in (0,1), got %v", fraction)
	}
	nTest := int(math.Round(float64(n) * fraction))
	if nTest == 0 || nTest == n {
		return Split{}, errors.Errorf("split: fraction %v leaves an empty partition for %d samples", fraction, n)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	test := append([]int{}, perm[:nTest]...)
	train := append([]int{}, perm[nTest:]...)
	sort.Ints(test)
	sort.Ints(train)

	if err := checkPartition(train, test, n); err != nil {
		return Split{}, err
	}

	trainX, trainY := Take(d.X, d.Y, train)
	testX, testY := Take(d.X, d.Y, test)
	return Split{
		TrainX:       trainX,
		TrainY:       trainY,
		TestX:        testX,
		TestY:        testY,
		TrainIndices: train,
		TestIndices:  test,
	}, nil
}

// KFold assigns the indices [0,n) to k folds of near-equal size using a
// seeded permutation. Every index appears in exactly one fold.
func KFold(n, k int, seed int64) ([][]int, error) {
	if k < 2 {
		return nil, errors.Errorf("split: at least two folds are required, got %d", k)
	}
	if k > n {
		return nil, errors.Errorf("split: cannot assign %d samples to %d folds", n, k)
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	folds := make([][]int, k)
	for i, idx := range perm {
		folds[i%k] = append(folds[i%k], idx)
	}
	for _, fold := range folds {
		sort.Ints(fold)
	}
	return folds, nil
}

// Take copies the rows of X and the labels of y selected by idx.
func Take(X *mat.Dense, y []float64, idx []int) (*mat.Dense, []float64) {
	_, p := X.Dims()
	out := mat.NewDense(len(idx), p, nil)
	labels := make([]float64, len(idx))
	for i, ri := range idx {
		for j := 0; j < p; j++ {
			out.Set(i, j, X.At(ri, j))
		}
		labels[i] = y[ri]
	}
	return out, labels
}

// checkPartition verifies the two partitions are disjoint and exhaustive.
func checkPartition(train, test []int, n int) error {
	all := make([]int, 0, len(train)+len(test))
	all = append(all, train...)
	all = append(all, test...)
	if len(all) != n {
		return errors.Errorf("split: partition sizes %d+%d do not sum to %d", len(train), len(test), n)
	}
	sort.Ints(all)
	if set.Uniq(sort.IntSlice(all)) != n {
		return errors.New("split: partitions overlap")
	}
	return nil
}
