package core

import (
	"context"
	"fmt"
	"strings"
)

// MemoryTemplate formats the text written back after a turn.
const MemoryTemplate = "User: %s\nAI: %s\nMemory summary: %s"

// Storer vectorizes and stores text for a user.
type Storer interface {
	Store(ctx context.Context, text, userID string) (string, error)
}

// Writeback stores one turn when the model produced a summary.
//
// A blank summary writes nothing and returns ("", nil). The summary is only
// ever read from the argument.
func Writeback(ctx context.Context, store Storer, userID, userInput, answer, summary string) (string, error) {
	if strings.TrimSpace(summary) == "" {
		return "", nil
	}

	content := fmt.Sprintf(MemoryTemplate, userInput, answer, summary)
	id, err := store.Store(ctx, content, userID)
	if err != nil {
		return "", wrapCause(ErrStoreFailed, err)
	}
	return id, nil
}
