package pipeline

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"

	lru "github.com/hashicorp/golang-lru"
	"gonum.org/v1/gonum/mat"
)

// Memory caches fitted transformers keyed by their configuration
// fingerprint and the data they were fit on. During a grid search the same
// embedding configuration is cross-validated once per classifier
// configuration; the embedding fit dominates run time, so reusing the
// fitted stage across those grid points avoids most of the work. Only
// transformers implementing Fingerprinter are cached.
type Memory struct {
	cache *lru.Cache
}

// NewMemory creates a Memory holding at most size fitted transformers.
func NewMemory(size int) (*Memory, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Memory{cache: c}, nil
}

func (m *Memory) lookup(t Transformer, X *mat.Dense) (Transformer, string, bool) {
	fp, ok := t.(Fingerprinter)
	if !ok {
		return nil, "", false
	}
	key := fmt.Sprintf("%s@%s", fp.Fingerprint(), hashMatrix(X))
	if v, ok := m.cache.Get(key); ok {
		return v.(Transformer), key, true
	}
	return nil, key, false
}

func (m *Memory) store(key string, t Transformer) {
	if key == "" {
		return
	}
	m.cache.Add(key, t)
}

// hashMatrix fingerprints the dimensions and raw values of a matrix.
func hashMatrix(X *mat.Dense) string {
	h := fnv.New64a()
	r, c := X.Dims()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(r)<<32|uint64(c))
	h.Write(buf[:])
	for _, v := range X.RawMatrix().Data {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
