package embedder

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedProvider memoizes the embeddings of a wrapped Provider.
type CachedProvider struct {
	inner Provider
	cache *lru.Cache[string, []float64]
}

// NewCachedProvider wraps inner with an LRU cache holding up to size vectors.
// A size <= 0 returns inner unchanged.
func NewCachedProvider(inner Provider, size int) (Provider, error) {
	if size <= 0 {
		return inner, nil
	}
	cache, err := lru.New[string, []float64](size)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &CachedProvider{inner: inner, cache: cache}, nil
}

// Embed returns the cached vector for text or delegates to the wrapped provider.
// Failed embeddings are not cached.
func (p *CachedProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	if vec, ok := p.cache.Get(text); ok {
		return vec, nil
	}
	vec, err := p.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	p.cache.Add(text, vec)
	return vec, nil
}

// Dimensions returns the wrapped provider's dimensions.
func (p *CachedProvider) Dimensions() int {
	return p.inner.Dimensions()
}

// Len reports how many vectors are cached.
func (p *CachedProvider) Len() int {
	return p.cache.Len()
}

// Close purges the cache and closes the wrapped provider.
func (p *CachedProvider) Close() error {
	p.cache.Purge()
	return p.inner.Close()
}
