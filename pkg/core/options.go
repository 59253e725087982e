package core

import (
	"log/slog"

	"github.com/crystallen/memchat/pkg/llm"
)

// ChatOption is a function type for configuring a single turn.
type ChatOption func(*ChatTurn)

// WithContext adds free text to the prompt's context section.
//
// Example:
//
//	result, _ := client.Chat(ctx, "user_001", "Where am I?", core.WithContext("User is travelling"))
func WithContext(context string) ChatOption {
	return func(t *ChatTurn) {
		t.Context = context
	}
}

// WithCategories forwards category filters to the memory search.
func WithCategories(categories ...string) ChatOption {
	return func(t *ChatTurn) {
		t.Categories = categories
	}
}

// WithMaxMemories sets the search limit. Values <= 0 keep the default.
func WithMaxMemories(n int) ChatOption {
	return func(t *ChatTurn) {
		if n > 0 {
			t.MaxMemories = n
		}
	}
}

// WithSimilarityThreshold sets the minimum similarity of recalled memories.
func WithSimilarityThreshold(threshold float64) ChatOption {
	return func(t *ChatTurn) {
		t.SimilarityThreshold = threshold
	}
}

// applyChatOptions builds the turn, applying defaults and clamping the threshold.
func applyChatOptions(input string, opts []ChatOption) ChatTurn {
	turn := ChatTurn{
		UserInput:           input,
		MaxMemories:         DefaultMaxMemories,
		SimilarityThreshold: DefaultSimilarityThreshold,
	}
	for _, opt := range opts {
		opt(&turn)
	}
	if turn.SimilarityThreshold < 0 {
		turn.SimilarityThreshold = 0
	}
	if turn.SimilarityThreshold > 1 {
		turn.SimilarityThreshold = 1
	}
	return turn
}

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	logger   *slog.Logger
	budget   *BudgetConfig
	generate []llm.GenerateOption
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) ClientOption {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// WithBudget overrides the prompt budget.
func WithBudget(budget BudgetConfig) ClientOption {
	return func(o *clientOptions) {
		o.budget = &budget
	}
}

// WithGenerateOptions sets options passed to every generation call.
func WithGenerateOptions(opts ...llm.GenerateOption) ClientOption {
	return func(o *clientOptions) {
		o.generate = append(o.generate, opts...)
	}
}

func applyClientOptions(opts []ClientOption) clientOptions {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}
