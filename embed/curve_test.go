package embed

import (
	"math"
	"testing"
)

func TestFitCurveDefaults(t *testing.T) {
	a, b := fitCurve(0.1, 1.0)
	t.Logf("a=%v b=%v", a, b)

	// The canonical fit for min_dist=0.1, spread=1.0 is a~1.58, b~0.90.
	if a < 1.2 || a > 2.0 {
		t.Fatalf("a=%v out of the expected range", a)
	}
	if b < 0.7 || b > 1.1 {
		t.Fatalf("b=%v out of the expected range", b)
	}

	// The fitted curve must be ~1 at the origin and decay monotonically.
	f := func(x float64) float64 { return 1 / (1 + a*math.Pow(x, 2*b)) }
	if f(0) != 1 {
		t.Fatalf("expected f(0)=1, got %v", f(0))
	}
	prev := f(0)
	for x := 0.1; x <= 3.0; x += 0.1 {
		v := f(x)
		if v > prev {
			t.Fatalf("curve is not monotone at x=%v", x)
		}
		prev = v
	}
	if f(3) > 0.1 {
		t.Fatalf("expected decay at the spread boundary, got f(3)=%v", f(3))
	}
}

func TestArgsort(t *testing.T) {
	order := argsort([]float64{3, 1, 2, 1})
	expected := []int{1, 3, 2, 0}
	for i := range expected {
		if order[i] != expected[i] {
			t.Fatalf("unexpected order %v", order)
		}
	}
}

func TestSmoothBandwidth(t *testing.T) {
	dists := []float64{1, 1.5, 2, 2.5, 3}
	rho := 1.0
	target := math.Log2(float64(len(dists)))

	sigma := smoothBandwidth(dists, rho, target)
	if sigma <= 0 {
		t.Fatalf("expected a positive bandwidth, got %v", sigma)
	}

	// The returned bandwidth must satisfy the target membership sum.
	sum := 0.0
	for _, d := range dists {
		v := d - rho
		if v <= 0 {
			sum++
		} else {
			sum += math.Exp(-v / sigma)
		}
	}
	if math.Abs(sum-target) > 1e-3 {
		t.Fatalf("membership sum %v does not meet target %v", sum, target)
	}
}

func TestNearestNeighbours(t *testing.T) {
	rows := [][]float64{
		{0, 0},
		{1, 0},
		{10, 0},
		{11, 0},
	}
	idx, dist := nearestNeighbours(rows, 2)
	if idx[0][0] != 1 {
		t.Fatalf("expected row 1 to be the nearest to row 0, got %d", idx[0][0])
	}
	if dist[0][0] != 1 {
		t.Fatalf("expected distance 1, got %v", dist[0][0])
	}
	if idx[2][0] != 3 {
		t.Fatalf("expected row 3 to be the nearest to row 2, got %d", idx[2][0])
	}

	qIdx, qDist := nearestTo([]float64{10.4, 0}, rows, 2)
	if qIdx[0] != 2 || qIdx[1] != 3 {
		t.Fatalf("unexpected query neighbours %v", qIdx)
	}
	if math.Abs(qDist[0]-0.4) > 1e-12 {
		t.Fatalf("unexpected query distance %v", qDist[0])
	}
}
