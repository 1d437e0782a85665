package manifold

import (
	"bytes"
	"encoding/gob"

	"github.com/peterbourgon/diskv"
	"github.com/pkg/errors"
)

// ErrCacheMiss is returned by a ScoreCacher when no scores are stored
// under a key.
var ErrCacheMiss = errors.New("score cache miss")

// ScoreCacher models a way to cache (either persistent or not) the
// evaluation scores of already-trained models, so interrupted experiments
// resume without refitting.
type ScoreCacher interface {
	Get(key string) (map[string]float64, error)
	Set(key string, scores map[string]float64) error
}

// BlockTransform determines how diskv should partition folders.
func BlockTransform(blockSize int) func(string) []string {
	return func(s string) []string {
		var (
			sliceSize = len(s) / blockSize
			pathSlice = make([]string, sliceSize)
		)
		for i := 0; i < sliceSize; i++ {
			from, to := i*blockSize, (i*blockSize)+blockSize
			pathSlice[i] = s[from:to]
		}
		return pathSlice
	}
}

type mapScoreCache struct {
	m map[string]map[string]float64
}

func (c mapScoreCache) Get(key string) (map[string]float64, error) {
	if scores, ok := c.m[key]; ok {
		// Copied so callers cannot mutate the cached entry.
		out := make(map[string]float64, len(scores))
		for name, score := range scores {
			out[name] = score
		}
		return out, nil
	}
	return nil, ErrCacheMiss
}

func (c mapScoreCache) Set(key string, scores map[string]float64) error {
	c.m[key] = scores
	return nil
}

// NewMapScoreCache creates a score cache out of a regular go map.
func NewMapScoreCache() ScoreCacher {
	return mapScoreCache{m: make(map[string]map[string]float64)}
}

type diskvScoreCache struct {
	*diskv.Diskv
}

func (c diskvScoreCache) Get(key string) (map[string]float64, error) {
	b, err := c.Read(key)
	if err != nil {
		return nil, ErrCacheMiss
	}
	var scores map[string]float64
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&scores); err != nil {
		return nil, err
	}
	return scores, nil
}

func (c diskvScoreCache) Set(key string, scores map[string]float64) error {
	var buff bytes.Buffer
	if err := gob.NewEncoder(&buff).Encode(scores); err != nil {
		return err
	}
	return c.Write(key, buff.Bytes())
}

// NewDiskvScoreCache creates a new on-disk score cache rooted at dir.
func NewDiskvScoreCache(dir string) ScoreCacher {
	return diskvScoreCache{diskv.New(diskv.Options{
		BasePath:     dir,
		Transform:    BlockTransform(4),
		CacheSizeMax: 4096 * 1024,
	})}
}
