// Package embedder turns text into vectors for similarity search.
//
// The local memory store embeds every stored turn and every query through a
// Provider. NewCachedProvider wraps any Provider with an LRU cache so that
// repeated texts are embedded once.
package embedder

import "context"

// Provider defines the interface for embedding providers.
type Provider interface {
	// Embed converts a text string into a vector embedding.
	Embed(ctx context.Context, text string) ([]float64, error)

	// Dimensions returns the dimension of embedding vectors produced by this provider.
	Dimensions() int

	// Close closes the provider and releases resources.
	Close() error
}
