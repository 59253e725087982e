// Package core drives one conversational turn: compress the input, recall
// related memories, assemble a bounded prompt, generate a reply and write a
// summary of the exchange back to memory.
package core

import (
	"errors"
	"fmt"
)

// Predefined errors for common failure scenarios.
var (
	// ErrInvalidInput indicates that the provided input is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates that the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotFound indicates that a requested memory was not found.
	ErrNotFound = errors.New("memory not found")

	// ErrSearchFailed indicates that the memory search collaborator failed.
	ErrSearchFailed = errors.New("memory search failed")

	// ErrGenerationFailed indicates that the text-generation backend failed.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrStoreFailed indicates that vectorizing or storing a memory failed.
	ErrStoreFailed = errors.New("memory store failed")

	// ErrClosed indicates that the client has been closed.
	ErrClosed = errors.New("client closed")
)

// MemoryError wraps errors with operation context.
//
// Example:
//
//	err := &MemoryError{
//	    Op:  "Chat",
//	    Err: ErrInvalidInput,
//	}
//	// Error() returns: "memchat: Chat: invalid input"
type MemoryError struct {
	// Op is the name of the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// Error returns "memchat: <Op>: <Err>".
func (e *MemoryError) Error() string {
	return fmt.Sprintf("memchat: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *MemoryError) Unwrap() error {
	return e.Err
}

// NewMemoryError creates a new MemoryError wrapping the given error.
// If err is nil, returns nil.
func NewMemoryError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &MemoryError{
		Op:  op,
		Err: err,
	}
}

// wrapCause tags cause with a sentinel so errors.Is matches both.
func wrapCause(sentinel, cause error) error {
	return fmt.Errorf("%w: %w", sentinel, cause)
}
