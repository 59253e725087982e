// Package storage provides the vector storage backends behind the local memory store.
//
// It defines the VectorStore interface implemented by the sqlite, postgres
// (pgvector) and oceanbase subpackages.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get and Delete when no row has the given ID.
var ErrNotFound = errors.New("memory not found")

// Memory is one stored conversation turn.
type Memory struct {
	// ID is the unique identifier of the memory.
	ID int64

	// UserID identifies the user who owns this memory.
	UserID string

	// Content is the stored text.
	Content string

	// Embedding is the vector embedding of Content.
	Embedding []float64

	// CreatedAt is when the memory was written.
	CreatedAt time.Time

	// Score is the cosine similarity to the query; only set by Search.
	Score float64
}

// SearchOptions contains options for search operations.
type SearchOptions struct {
	// UserID restricts results to one user. Empty searches every user.
	UserID string

	// Limit sets the maximum number of results to return.
	Limit int

	// Threshold drops results whose similarity is below it.
	Threshold float64
}

// VectorStore defines the interface for vector storage backends.
type VectorStore interface {
	// Insert inserts a memory into the store.
	Insert(ctx context.Context, memory *Memory) error

	// Search returns memories sorted by similarity to embedding, highest first.
	Search(ctx context.Context, embedding []float64, opts *SearchOptions) ([]*Memory, error)

	// Get retrieves a memory by ID.
	Get(ctx context.Context, id int64) (*Memory, error)

	// Delete deletes a memory by ID.
	Delete(ctx context.Context, id int64) error

	// List returns a user's memories, newest first.
	List(ctx context.Context, userID string, limit int) ([]*Memory, error)

	// Close closes the store and releases resources.
	Close() error
}

// FilterByScore drops memories scoring below threshold and caps the result at limit.
// Input order is kept. A limit <= 0 means no cap.
func FilterByScore(memories []*Memory, threshold float64, limit int) []*Memory {
	out := memories[:0]
	for _, m := range memories {
		if m.Score >= threshold {
			out = append(out, m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
