package dataset_test

import (
	"testing"

	"github.com/hscells/manifold/dataset"
	"gonum.org/v1/gonum/mat"
)

func TestGenerateShape(t *testing.T) {
	d, err := dataset.Generate(dataset.Config{
		Samples:     120,
		Features:    20,
		Informative: 10,
		Redundant:   4,
		Repeated:    2,
		Classes:     2,
		Shuffle:     true,
		Seed:        1212,
	})
	if err != nil {
		t.Fatal(err)
	}

	n, p := d.Dims()
	if n != 120 || p != 20 {
		t.Fatalf("expected a 120x20 dataset, got %dx%d", n, p)
	}
	if len(d.Y) != n {
		t.Fatalf("expected %d labels, got %d", n, len(d.Y))
	}

	counts := map[float64]int{}
	for _, label := range d.Y {
		if label != 0 && label != 1 {
			t.Fatalf("unexpected label %v", label)
		}
		counts[label]++
	}
	if counts[0] == 0 || counts[1] == 0 {
		t.Fatalf("expected both classes to be represented, got %v", counts)
	}
}

func TestGenerateDeterminism(t *testing.T) {
	cfg := dataset.Config{
		Samples:     60,
		Features:    12,
		Informative: 8,
		Classes:     2,
		Shuffle:     true,
		Seed:        42,
	}
	a, err := dataset.Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := dataset.Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(a.X, b.X) {
		t.Fatal("same seed produced different feature matrices")
	}
	for i := range a.Y {
		if a.Y[i] != b.Y[i] {
			t.Fatalf("same seed produced different labels at %d", i)
		}
	}

	cfg.Seed = 43
	c, err := dataset.Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if mat.Equal(a.X, c.X) {
		t.Fatal("different seeds produced identical feature matrices")
	}
}

func TestGenerateRepeatedColumns(t *testing.T) {
	d, err := dataset.Generate(dataset.Config{
		Samples:     40,
		Features:    10,
		Informative: 5,
		Redundant:   2,
		Repeated:    2,
		Classes:     2,
		Seed:        7,
	})
	if err != nil {
		t.Fatal(err)
	}

	n, _ := d.Dims()
	for j := 7; j < 9; j++ {
		found := false
		for src := 0; src < 7 && !found; src++ {
			same := true
			for i := 0; i < n; i++ {
				if d.X.At(i, j) != d.X.At(i, src) {
					same = false
					break
				}
			}
			found = same
		}
		if !found {
			t.Fatalf("repeated column %d duplicates no earlier column", j)
		}
	}
}

func TestValidate(t *testing.T) {
	bad := []dataset.Config{
		{Samples: 0, Features: 10, Informative: 5, Classes: 2},
		{Samples: 10, Features: 0, Informative: 5, Classes: 2},
		{Samples: 10, Features: 10, Informative: 0, Classes: 2},
		{Samples: 10, Features: 10, Informative: 5, Classes: 1},
		{Samples: 10, Features: 10, Informative: 8, Redundant: 4, Classes: 2},
		{Samples: 10, Features: 10, Informative: 5, Classes: 2, FlipY: 1.5},
		{Samples: 10, Features: 10, Informative: 1, Classes: 2, ClustersPerClass: 2},
	}
	for i, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Fatalf("expected configuration %d to fail validation", i)
		} else {
			t.Log(err)
		}
	}

	good := dataset.Config{Samples: 10, Features: 10, Informative: 5, Classes: 2}
	if err := good.Validate(); err != nil {
		t.Fatal(err)
	}
}
