package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crystallen/memchat/pkg/storage"
	"github.com/crystallen/memchat/pkg/storage/sqlite"
)

func newTestClient(t *testing.T) *sqlite.Client {
	t.Helper()
	client, err := sqlite.NewClient(&sqlite.Config{
		DBPath: filepath.Join(t.TempDir(), "nested", "memchat.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestInsertGetDelete(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Insert(ctx, &storage.Memory{
		ID: 1, UserID: "alice", Content: "likes tea", Embedding: []float64{1, 0},
	}))

	got, err := client.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.UserID)
	assert.Equal(t, "likes tea", got.Content)
	assert.Equal(t, []float64{1, 0}, got.Embedding)
	assert.False(t, got.CreatedAt.IsZero())

	require.NoError(t, client.Delete(ctx, 1))

	_, err = client.Get(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, client.Delete(ctx, 1), storage.ErrNotFound)
}

func TestSearchRanksAndFilters(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	memories := []*storage.Memory{
		{ID: 1, UserID: "alice", Content: "exact", Embedding: []float64{1, 0}},
		{ID: 2, UserID: "alice", Content: "close", Embedding: []float64{0.9, 0.1}},
		{ID: 3, UserID: "alice", Content: "orthogonal", Embedding: []float64{0, 1}},
		{ID: 4, UserID: "bob", Content: "other user", Embedding: []float64{1, 0}},
	}
	for _, m := range memories {
		require.NoError(t, client.Insert(ctx, m))
	}

	got, err := client.Search(ctx, []float64{1, 0}, &storage.SearchOptions{UserID: "alice", Limit: 5, Threshold: 0.5})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)

	limited, err := client.Search(ctx, []float64{1, 0}, &storage.SearchOptions{UserID: "alice", Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "exact", limited[0].Content)
}

func TestListNewestFirst(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := int64(1); i <= 3; i++ {
		require.NoError(t, client.Insert(ctx, &storage.Memory{
			ID: i, UserID: "alice", Content: "turn", Embedding: []float64{1},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, client.Insert(ctx, &storage.Memory{ID: 9, UserID: "bob", Content: "x", Embedding: []float64{1}}))

	got, err := client.List(ctx, "alice", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)

	all, err := client.List(ctx, "alice", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
