package memstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/crystallen/memchat/pkg/embedder"
	"github.com/crystallen/memchat/pkg/storage"
)

// Local embeds text in-process and keeps vectors in a storage.VectorStore.
// IDs are snowflake int64 values rendered in base 10.
type Local struct {
	embedder embedder.Provider
	store    storage.VectorStore
	node     *snowflake.Node
}

// NewLocal creates a Local store. nodeID distinguishes processes that write
// to the same database and must be in [0, 1023].
func NewLocal(emb embedder.Provider, store storage.VectorStore, nodeID int64) (*Local, error) {
	if emb == nil || store == nil {
		return nil, errors.New("NewLocal: embedder and vector store are required")
	}
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("NewLocal: %w", err)
	}
	return &Local{embedder: emb, store: store, node: node}, nil
}

// Search embeds the query and runs a vector search scoped to the user.
// Categories are ignored.
func (l *Local) Search(ctx context.Context, req SearchRequest) ([]Record, error) {
	vec, err := l.embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("Search: embed query: %w", err)
	}

	memories, err := l.store.Search(ctx, vec, &storage.SearchOptions{
		UserID:    req.UserID,
		Limit:     req.Limit,
		Threshold: req.Threshold,
	})
	if err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}
	return toRecords(memories), nil
}

// Store embeds and inserts text under a fresh ID.
func (l *Local) Store(ctx context.Context, text, userID string) (string, error) {
	vec, err := l.embedder.Embed(ctx, text)
	if err != nil {
		return "", fmt.Errorf("Store: embed text: %w", err)
	}

	memory := &storage.Memory{
		ID:        l.node.Generate().Int64(),
		UserID:    userID,
		Content:   text,
		Embedding: vec,
		CreatedAt: time.Now(),
	}
	if err := l.store.Insert(ctx, memory); err != nil {
		return "", fmt.Errorf("Store: %w", err)
	}
	return formatID(memory.ID), nil
}

// Get looks a memory up by ID. Malformed IDs are reported as ErrNotFound.
func (l *Local) Get(ctx context.Context, id string) (*Record, error) {
	n, err := parseID(id)
	if err != nil {
		return nil, err
	}
	memory, err := l.store.Get(ctx, n)
	if err != nil {
		return nil, translate("Get", err)
	}
	rec := toRecord(memory)
	return &rec, nil
}

// Delete removes a memory by ID.
func (l *Local) Delete(ctx context.Context, id string) error {
	n, err := parseID(id)
	if err != nil {
		return err
	}
	if err := l.store.Delete(ctx, n); err != nil {
		return translate("Delete", err)
	}
	return nil
}

// List returns the user's newest memories.
func (l *Local) List(ctx context.Context, userID string, limit int) ([]Record, error) {
	memories, err := l.store.List(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return toRecords(memories), nil
}

// Close closes the vector store and the embedder.
func (l *Local) Close() error {
	return errors.Join(l.store.Close(), l.embedder.Close())
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid memory id %q: %w", id, ErrNotFound)
	}
	return n, nil
}

func translate(op string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func toRecord(m *storage.Memory) Record {
	return Record{ID: formatID(m.ID), Text: m.Content, Score: m.Score}
}

func toRecords(memories []*storage.Memory) []Record {
	records := make([]Record, 0, len(memories))
	for _, m := range memories {
		records = append(records, toRecord(m))
	}
	return records
}
