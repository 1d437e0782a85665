// Package embed provides a UMAP-style nonlinear dimensionality-reduction
// transform with a fit/transform contract: fit learns a low-dimensional
// layout of the training data from its nearest-neighbour graph, and
// transform places new data into that space using only fitted state.
package embed

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Config is one embedding configuration.
type Config struct {
	// Neighbours is the neighbourhood size used to build the fuzzy graph.
	Neighbours int
	// Components is the output dimensionality.
	Components int
	// MinDist is the minimum spacing of points in the embedded space.
	MinDist float64
	// Spread is the scale of the embedded space.
	Spread float64
	// Epochs is the number of optimisation passes over the edge list.
	Epochs int
	// NegativeSamples is the number of repulsive samples per attractive move.
	NegativeSamples int
	// LearningRate is the initial SGD step size, decayed linearly to zero.
	LearningRate float64
	// Seed drives all stochastic parts of the layout.
	Seed int64
}

func (c Config) withDefaults() Config {
	if c.Neighbours == 0 {
		c.Neighbours = 15
	}
	if c.Components == 0 {
		c.Components = 2
	}
	if c.MinDist == 0 {
		c.MinDist = 0.1
	}
	if c.Spread == 0 {
		c.Spread = 1.0
	}
	if c.Epochs == 0 {
		c.Epochs = 200
	}
	if c.NegativeSamples == 0 {
		c.NegativeSamples = 5
	}
	if c.LearningRate == 0 {
		c.LearningRate = 1.0
	}
	return c
}

// String names the configuration for grid-search reporting.
func (c Config) String() string {
	c = c.withDefaults()
	return fmt.Sprintf("neighbours=%d components=%d", c.Neighbours, c.Components)
}

// Grid is the set of embedding configurations searched over.
type Grid struct {
	Neighbours []int
	Components []int
}

// Validate fails fast on malformed grids, before any fitting happens.
func (g Grid) Validate() error {
	if len(g.Neighbours) == 0 {
		return errors.New("embed: grid contains no candidate neighbourhood sizes")
	}
	if len(g.Components) == 0 {
		return errors.New("embed: grid contains no candidate output dimensionalities")
	}
	for _, n := range g.Neighbours {
		if n < 2 {
			return errors.Errorf("embed: neighbourhood size must be at least 2, got %d", n)
		}
	}
	for _, c := range g.Components {
		if c < 1 {
			return errors.Errorf("embed: output dimensionality must be positive, got %d", c)
		}
	}
	return nil
}

// Configs enumerates the Cartesian product of the grid over a base
// configuration carrying the non-searched parameters.
func (g Grid) Configs(base Config) []Config {
	configs := make([]Config, 0, len(g.Neighbours)*len(g.Components))
	for _, n := range g.Neighbours {
		for _, c := range g.Components {
			cfg := base
			cfg.Neighbours = n
			cfg.Components = c
			configs = append(configs, cfg)
		}
	}
	return configs
}

// UMAP learns a low-dimensional embedding of high-dimensional data.
// The layout is deterministic for a fixed seed.
type UMAP struct {
	cfg Config

	train     *mat.Dense
	embedding *mat.Dense
	a, b      float64
}

// New creates an unfitted transform from a configuration.
func New(cfg Config) *UMAP {
	return &UMAP{cfg: cfg.withDefaults()}
}

// Fingerprint identifies the fitted state this configuration will produce.
func (u *UMAP) Fingerprint() string {
	c := u.cfg
	return fmt.Sprintf("umap(k=%d,d=%d,md=%g,sp=%g,e=%d,neg=%d,lr=%g,seed=%d)",
		c.Neighbours, c.Components, c.MinDist, c.Spread, c.Epochs, c.NegativeSamples, c.LearningRate, c.Seed)
}

type edge struct {
	i, j   int
	weight float64
}

// Fit learns the embedding of X: nearest-neighbour graph, smoothed
// per-point bandwidths, symmetrised fuzzy edge weights, PCA
// initialisation and a negative-sampling SGD layout.
func (u *UMAP) Fit(X *mat.Dense) error {
	n, p := X.Dims()
	k := u.cfg.Neighbours
	if k >= n {
		return errors.Errorf("embed: neighbourhood size %d requires more than %d samples", k, n)
	}
	if u.cfg.Components >= p {
		return errors.Errorf("embed: output dimensionality %d must be below the feature count %d", u.cfg.Components, p)
	}
	if u.cfg.Components >= n {
		return errors.Errorf("embed: output dimensionality %d requires more than %d samples", u.cfg.Components, n)
	}

	rows := denseRows(X)
	idx, dist := nearestNeighbours(rows, k)

	rhos := make([]float64, n)
	sigmas := make([]float64, n)
	target := math.Log2(float64(k))
	for i := 0; i < n; i++ {
		rhos[i] = dist[i][0]
		sigmas[i] = smoothBandwidth(dist[i], rhos[i], target)
	}

	edges := fuzzyEdges(idx, dist, rhos, sigmas)

	u.a, u.b = fitCurve(u.cfg.MinDist, u.cfg.Spread)

	rng := rand.New(rand.NewSource(u.cfg.Seed))
	emb := u.initialise(X, rng)
	u.optimise(emb, edges, n, rng)

	u.train = mat.DenseCopyOf(X)
	u.embedding = mat.NewDense(n, u.cfg.Components, emb)
	return nil
}

// Transform embeds each row of X as the fuzzy-weighted average of its
// nearest training points' coordinates. Only fitted state is consulted, so
// no statistics of X leak into the embedding.
func (u *UMAP) Transform(X *mat.Dense) (*mat.Dense, error) {
	if u.embedding == nil {
		return nil, errors.New("embed: transform called before fit")
	}
	n, p := X.Dims()
	_, trainP := u.train.Dims()
	if p != trainP {
		return nil, errors.Errorf("embed: fitted on %d features, asked to transform %d", trainP, p)
	}

	k := u.cfg.Neighbours
	target := math.Log2(float64(k))
	trainRows := denseRows(u.train)
	queryRows := denseRows(X)

	out := mat.NewDense(n, u.cfg.Components, nil)
	eachRow(n, func(i int) {
		idx, dist := nearestTo(queryRows[i], trainRows, k)
		rho := dist[0]
		sigma := smoothBandwidth(dist, rho, target)

		total := 0.0
		weights := make([]float64, k)
		for j := 0; j < k; j++ {
			v := dist[j] - rho
			if v <= 0 {
				weights[j] = 1
			} else {
				weights[j] = math.Exp(-v / sigma)
			}
			total += weights[j]
		}
		for j := 0; j < k; j++ {
			w := weights[j] / total
			for d := 0; d < u.cfg.Components; d++ {
				out.Set(i, d, out.At(i, d)+w*u.embedding.At(idx[j], d))
			}
		}
	})
	return out, nil
}

// fuzzyEdges symmetrises the directional neighbourhood weights into an
// undirected edge list, ordered deterministically.
func fuzzyEdges(idx [][]int, dist [][]float64, rhos, sigmas []float64) []edge {
	directed := make(map[[2]int]float64)
	for i := range idx {
		for s, j := range idx[i] {
			v := dist[i][s] - rhos[i]
			w := 1.0
			if v > 0 {
				w = math.Exp(-v / sigmas[i])
			}
			directed[[2]int{i, j}] = w
		}
	}

	merged := make(map[[2]int]float64)
	for key := range directed {
		i, j := key[0], key[1]
		if i > j {
			i, j = j, i
		}
		pair := [2]int{i, j}
		if _, ok := merged[pair]; ok {
			continue
		}
		wij := directed[[2]int{i, j}]
		wji := directed[[2]int{j, i}]
		merged[pair] = wij + wji - wij*wji
	}

	edges := make([]edge, 0, len(merged))
	for pair, w := range merged {
		edges = append(edges, edge{i: pair[0], j: pair[1], weight: w})
	}
	sort.Slice(edges, func(a, b int) bool {
		if edges[a].i != edges[b].i {
			return edges[a].i < edges[b].i
		}
		return edges[a].j < edges[b].j
	})
	return edges
}

// initialise lays out the first coordinates by projecting onto the top
// principal components, rescaled to a fixed range. A degenerate
// decomposition falls back to a random layout.
func (u *UMAP) initialise(X *mat.Dense, rng *rand.Rand) []float64 {
	n, p := X.Dims()
	m := u.cfg.Components

	var pc stat.PC
	if pc.PrincipalComponents(X, nil) {
		var vec mat.Dense
		pc.VectorsTo(&vec)

		// Centre the data before projecting.
		means := make([]float64, p)
		for j := 0; j < p; j++ {
			col := make([]float64, n)
			mat.Col(col, j, X)
			means[j] = stat.Mean(col, nil)
		}

		emb := make([]float64, n*m)
		maxAbs := 0.0
		for i := 0; i < n; i++ {
			for d := 0; d < m; d++ {
				sum := 0.0
				for j := 0; j < p; j++ {
					sum += (X.At(i, j) - means[j]) * vec.At(j, d)
				}
				emb[i*m+d] = sum
				if a := math.Abs(sum); a > maxAbs {
					maxAbs = a
				}
			}
		}
		if maxAbs > 0 {
			scale := 10.0 / maxAbs
			for i := range emb {
				emb[i] *= scale
			}
			return emb
		}
	}

	emb := make([]float64, n*m)
	for i := range emb {
		emb[i] = rng.Float64()*20 - 10
	}
	return emb
}

// optimise runs the negative-sampling SGD layout over the edge list.
// Denser edges are sampled more often via per-edge epoch schedules.
func (u *UMAP) optimise(emb []float64, edges []edge, n int, rng *rand.Rand) {
	if len(edges) == 0 {
		return
	}
	m := u.cfg.Components

	maxW := 0.0
	for _, e := range edges {
		if e.weight > maxW {
			maxW = e.weight
		}
	}
	perSample := make([]float64, len(edges))
	next := make([]float64, len(edges))
	for i, e := range edges {
		perSample[i] = maxW / e.weight
		next[i] = perSample[i]
	}

	for epoch := 1; epoch <= u.cfg.Epochs; epoch++ {
		alpha := u.cfg.LearningRate * (1 - float64(epoch-1)/float64(u.cfg.Epochs))
		for e := range edges {
			if next[e] > float64(epoch) {
				continue
			}
			next[e] += perSample[e]

			i, j := edges[e].i, edges[e].j
			u.attract(emb, i, j, m, alpha)
			for s := 0; s < u.cfg.NegativeSamples; s++ {
				k := rng.Intn(n)
				if k == i || k == j {
					continue
				}
				u.repel(emb, i, k, m, alpha)
			}
		}
	}
}

func (u *UMAP) attract(emb []float64, i, j, m int, alpha float64) {
	d2 := 0.0
	for d := 0; d < m; d++ {
		diff := emb[i*m+d] - emb[j*m+d]
		d2 += diff * diff
	}
	if d2 <= 0 {
		return
	}
	coeff := -2 * u.a * u.b * math.Pow(d2, u.b-1) / (1 + u.a*math.Pow(d2, u.b))
	for d := 0; d < m; d++ {
		g := clip(coeff * (emb[i*m+d] - emb[j*m+d]))
		emb[i*m+d] += alpha * g
		emb[j*m+d] -= alpha * g
	}
}

func (u *UMAP) repel(emb []float64, i, k, m int, alpha float64) {
	d2 := 0.0
	for d := 0; d < m; d++ {
		diff := emb[i*m+d] - emb[k*m+d]
		d2 += diff * diff
	}
	for d := 0; d < m; d++ {
		var g float64
		if d2 > 0 {
			coeff := 2 * u.b / ((0.001 + d2) * (1 + u.a*math.Pow(d2, u.b)))
			g = clip(coeff * (emb[i*m+d] - emb[k*m+d]))
		} else {
			g = 4
		}
		emb[i*m+d] += alpha * g
	}
}

func clip(v float64) float64 {
	if v > 4 {
		return 4
	}
	if v < -4 {
		return -4
	}
	return v
}
