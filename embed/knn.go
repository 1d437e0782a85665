package embed

import (
	"math"
	"runtime"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// denseRows extracts the rows of X once so distance computations do not
// repeatedly copy out of the matrix.
func denseRows(X *mat.Dense) [][]float64 {
	n, _ := X.Dims()
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		rows[i] = mat.Row(nil, i, X)
	}
	return rows
}

// nearestNeighbours computes the k nearest neighbours of every row by
// exhaustive search, excluding the row itself. Rows are processed in
// parallel; results are written by index so the output is deterministic.
func nearestNeighbours(rows [][]float64, k int) (idx [][]int, dist [][]float64) {
	n := len(rows)
	idx = make([][]int, n)
	dist = make([][]float64, n)

	eachRow(n, func(i int) {
		ds := make([]float64, n)
		for j := 0; j < n; j++ {
			if j == i {
				ds[j] = math.Inf(1)
				continue
			}
			ds[j] = floats.Distance(rows[i], rows[j], 2)
		}
		order := argsort(ds)
		idx[i] = make([]int, k)
		dist[i] = make([]float64, k)
		for s := 0; s < k; s++ {
			idx[i][s] = order[s]
			dist[i][s] = ds[order[s]]
		}
	})
	return idx, dist
}

// nearestTo finds the k nearest rows to the query vector.
func nearestTo(query []float64, rows [][]float64, k int) (idx []int, dist []float64) {
	ds := make([]float64, len(rows))
	for j := range rows {
		ds[j] = floats.Distance(query, rows[j], 2)
	}
	order := argsort(ds)
	idx = make([]int, k)
	dist = make([]float64, k)
	for s := 0; s < k; s++ {
		idx[s] = order[s]
		dist[s] = ds[order[s]]
	}
	return idx, dist
}

// eachRow runs f over [0,n) with a bounded number of goroutines.
// http://jmoiron.net/blog/limiting-concurrency-in-go/
func eachRow(n int, f func(i int)) {
	concurrency := runtime.NumCPU()
	sem := make(chan bool, concurrency)
	for i := 0; i < n; i++ {
		sem <- true
		go func(i int) {
			defer func() { <-sem }()
			f(i)
		}(i)
	}
	for i := 0; i < cap(sem); i++ {
		sem <- true
	}
}

func argsort(ds []float64) []int {
	order := make([]int, len(ds))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		if ds[order[a]] != ds[order[b]] {
			return ds[order[a]] < ds[order[b]]
		}
		return order[a] < order[b]
	})
	return order
}

// smoothBandwidth finds the per-point bandwidth sigma such that the sum of
// the neighbourhood weights equals the target, by binary search. This is
// the smoothed-distance normalisation that makes neighbourhoods of
// differently dense regions comparable.
func smoothBandwidth(dists []float64, rho, target float64) float64 {
	lo, hi, mid := 0.0, math.Inf(1), 1.0
	for iter := 0; iter < 64; iter++ {
		sum := 0.0
		for _, d := range dists {
			v := d - rho
			if v <= 0 {
				sum++
			} else {
				sum += math.Exp(-v / mid)
			}
		}
		if math.Abs(sum-target) < 1e-5 {
			break
		}
		if sum > target {
			hi = mid
			mid = (lo + hi) / 2
		} else {
			lo = mid
			if math.IsInf(hi, 1) {
				mid *= 2
			} else {
				mid = (lo + hi) / 2
			}
		}
	}

	mean := 0.0
	for _, d := range dists {
		mean += d
	}
	mean /= float64(len(dists))
	return math.Max(mid, 1e-3*mean)
}
