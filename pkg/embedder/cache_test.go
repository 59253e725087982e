package embedder_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crystallen/memchat/pkg/embedder"
)

type countingProvider struct {
	calls  map[string]int
	fail   bool
	closed bool
}

func (p *countingProvider) Embed(_ context.Context, text string) ([]float64, error) {
	p.calls[text]++
	if p.fail {
		return nil, errors.New("embedding backend down")
	}
	return []float64{float64(len(text)), 1}, nil
}

func (p *countingProvider) Dimensions() int { return 2 }

func (p *countingProvider) Close() error {
	p.closed = true
	return nil
}

func TestCachedProviderMemoizes(t *testing.T) {
	inner := &countingProvider{calls: map[string]int{}}
	p, err := embedder.NewCachedProvider(inner, 2)
	require.NoError(t, err)

	ctx := context.Background()
	first, err := p.Embed(ctx, "hello")
	require.NoError(t, err)
	second, err := p.Embed(ctx, "hello")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls["hello"])
	assert.Equal(t, 2, p.Dimensions())
}

func TestCachedProviderEvicts(t *testing.T) {
	inner := &countingProvider{calls: map[string]int{}}
	p, err := embedder.NewCachedProvider(inner, 1)
	require.NoError(t, err)

	ctx := context.Background()
	_, _ = p.Embed(ctx, "a")
	_, _ = p.Embed(ctx, "b")
	_, _ = p.Embed(ctx, "a")

	assert.Equal(t, 2, inner.calls["a"])
	assert.Equal(t, 1, p.(*embedder.CachedProvider).Len())
}

func TestCachedProviderSkipsErrors(t *testing.T) {
	inner := &countingProvider{calls: map[string]int{}, fail: true}
	p, err := embedder.NewCachedProvider(inner, 4)
	require.NoError(t, err)

	_, err = p.Embed(context.Background(), "x")
	assert.Error(t, err)
	_, err = p.Embed(context.Background(), "x")
	assert.Error(t, err)
	assert.Equal(t, 2, inner.calls["x"])

	require.NoError(t, p.Close())
	assert.True(t, inner.closed)
}

func TestNewCachedProviderDisabled(t *testing.T) {
	inner := &countingProvider{calls: map[string]int{}}

	p, err := embedder.NewCachedProvider(inner, 0)

	require.NoError(t, err)
	assert.Same(t, inner, p)
}
