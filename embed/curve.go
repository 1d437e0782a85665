package embed

import "math"

// fitCurve finds the parameters (a, b) of the differentiable family
// 1/(1+a*x^(2b)) approximating the target membership curve implied by
// MinDist and Spread: flat at 1 inside MinDist, exponential decay beyond.
// A coarse grid search followed by a refinement pass is deterministic and
// accurate enough for layout purposes.
func fitCurve(minDist, spread float64) (a, b float64) {
	const points = 300
	xs := make([]float64, points)
	ys := make([]float64, points)
	for i := 0; i < points; i++ {
		x := float64(i) * 3 * spread / float64(points-1)
		xs[i] = x
		if x < minDist {
			ys[i] = 1
		} else {
			ys[i] = math.Exp(-(x - minDist) / spread)
		}
	}

	a, b = gridFit(xs, ys, logspace(0.05, 20, 120), linspace(0.1, 3.0, 120))
	a, b = gridFit(xs, ys, logspace(a*0.6, a*1.6, 120), linspace(math.Max(b-0.1, 0.05), b+0.1, 120))
	return a, b
}

func gridFit(xs, ys, as, bs []float64) (bestA, bestB float64) {
	bestErr := math.Inf(1)
	for _, a := range as {
		for _, b := range bs {
			sse := 0.0
			for i, x := range xs {
				f := 1 / (1 + a*math.Pow(x, 2*b))
				diff := f - ys[i]
				sse += diff * diff
			}
			if sse < bestErr {
				bestErr = sse
				bestA, bestB = a, b
			}
		}
	}
	return bestA, bestB
}

func linspace(from, to float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = from + float64(i)*(to-from)/float64(n-1)
	}
	return out
}

func logspace(from, to float64, n int) []float64 {
	lf, lt := math.Log(from), math.Log(to)
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Exp(lf + float64(i)*(lt-lf)/float64(n-1))
	}
	return out
}
