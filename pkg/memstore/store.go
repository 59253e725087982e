// Package memstore is the memory service consumed by the chat pipeline.
//
// A Store finds memories similar to a query and vectorizes new turns for later
// retrieval. Local runs the embedding and vector storage in-process; Remote
// talks to an external vector service over HTTP.
package memstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get and Delete when the memory does not exist.
var ErrNotFound = errors.New("memory not found")

// Record is one memory as seen by the pipeline.
type Record struct {
	// ID is the opaque identifier assigned by the store.
	ID string `json:"id"`

	// Text is the stored content.
	Text string `json:"text"`

	// Score is the similarity to the query; zero outside search results.
	Score float64 `json:"score,omitempty"`
}

// SearchRequest describes one similarity search.
type SearchRequest struct {
	Query     string
	UserID    string
	Limit     int
	Threshold float64

	// Categories is forwarded to backends that understand it.
	Categories []string
}

// Store defines the memory service.
type Store interface {
	// Search returns memories similar to req.Query, most similar first.
	Search(ctx context.Context, req SearchRequest) ([]Record, error)

	// Store vectorizes text for userID and returns the new memory's ID.
	Store(ctx context.Context, text, userID string) (string, error)

	// Get returns ErrNotFound when id does not exist.
	Get(ctx context.Context, id string) (*Record, error)

	// Delete returns ErrNotFound when id does not exist.
	Delete(ctx context.Context, id string) error

	// List returns up to limit of the user's memories, newest first.
	List(ctx context.Context, userID string, limit int) ([]Record, error)

	// Close releases the store's resources.
	Close() error
}
