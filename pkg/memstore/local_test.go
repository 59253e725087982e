package memstore_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crystallen/memchat/pkg/memstore"
	"github.com/crystallen/memchat/pkg/storage/sqlite"
)

// keywordEmbedder maps text onto three axes so similarity is predictable.
type keywordEmbedder struct {
	fail bool
}

func (e *keywordEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	if e.fail {
		return nil, errors.New("embedder unavailable")
	}
	vec := []float64{0.01, 0.01, 0.01}
	lower := strings.ToLower(text)
	for i, word := range []string{"dog", "tea", "work"} {
		if strings.Contains(lower, word) {
			vec[i] = 1
		}
	}
	return vec, nil
}

func (e *keywordEmbedder) Dimensions() int { return 3 }
func (e *keywordEmbedder) Close() error    { return nil }

func newLocal(t *testing.T, emb *keywordEmbedder) *memstore.Local {
	t.Helper()
	vs, err := sqlite.NewClient(&sqlite.Config{DBPath: filepath.Join(t.TempDir(), "memories.db")})
	require.NoError(t, err)

	local, err := memstore.NewLocal(emb, vs, 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = local.Close() })
	return local
}

func TestLocalStoreAndSearch(t *testing.T) {
	local := newLocal(t, &keywordEmbedder{})
	ctx := context.Background()

	dogID, err := local.Store(ctx, "My dog is called Rex", "alice")
	require.NoError(t, err)
	_, err = local.Store(ctx, "I drink green tea", "alice")
	require.NoError(t, err)
	_, err = local.Store(ctx, "Bob's dog is Fido", "bob")
	require.NoError(t, err)

	got, err := local.Search(ctx, memstore.SearchRequest{Query: "what is my dog called", UserID: "alice", Limit: 5, Threshold: 0.7})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, dogID, got[0].ID)
	assert.Equal(t, "My dog is called Rex", got[0].Text)
	assert.Greater(t, got[0].Score, 0.9)
}

func TestLocalGetDelete(t *testing.T) {
	local := newLocal(t, &keywordEmbedder{})
	ctx := context.Background()

	id, err := local.Store(ctx, "work starts at nine", "alice")
	require.NoError(t, err)

	rec, err := local.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "work starts at nine", rec.Text)

	require.NoError(t, local.Delete(ctx, id))
	_, err = local.Get(ctx, id)
	assert.ErrorIs(t, err, memstore.ErrNotFound)
	assert.ErrorIs(t, local.Delete(ctx, id), memstore.ErrNotFound)

	_, err = local.Get(ctx, "not-a-number")
	assert.ErrorIs(t, err, memstore.ErrNotFound)
}

func TestLocalList(t *testing.T) {
	local := newLocal(t, &keywordEmbedder{})
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three"} {
		_, err := local.Store(ctx, text, "alice")
		require.NoError(t, err)
	}

	got, err := local.List(ctx, "alice", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	none, err := local.List(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLocalEmbedderFailure(t *testing.T) {
	emb := &keywordEmbedder{}
	local := newLocal(t, emb)
	emb.fail = true

	_, err := local.Store(context.Background(), "text", "alice")
	assert.Error(t, err)

	_, err = local.Search(context.Background(), memstore.SearchRequest{Query: "text", UserID: "alice"})
	assert.Error(t, err)
}

func TestNewLocalRequiresCollaborators(t *testing.T) {
	_, err := memstore.NewLocal(nil, nil, 1)
	assert.Error(t, err)
}
