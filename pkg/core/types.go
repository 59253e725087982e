package core

import (
	"github.com/crystallen/memchat/pkg/prompt"
)

const (
	// DefaultMaxMemories is the search limit when a turn does not set one.
	DefaultMaxMemories = 5

	// DefaultSimilarityThreshold is the minimum similarity for recalled memories.
	DefaultSimilarityThreshold = 0.7

	// DefaultMaxUserInputChars bounds the user input before it is used anywhere.
	DefaultMaxUserInputChars = 2000

	// DefaultMaxPromptTokens bounds the assembled prompt.
	DefaultMaxPromptTokens = 3000

	// DefaultListLimit is used by ListMemories when limit <= 0.
	DefaultListLimit = 50
)

// ChatTurn is one user request.
type ChatTurn struct {
	// UserInput is the raw utterance. Required.
	UserInput string

	// Context is optional extra text placed in the prompt's context section.
	Context string

	// Categories are forwarded to the memory search unchanged.
	Categories []string

	// MaxMemories is the search limit. The prompt still holds at most
	// prompt.MaxMemoriesPerPrompt memories.
	MaxMemories int

	// SimilarityThreshold is clamped into [0, 1].
	SimilarityThreshold float64
}

// MemoryRecord is a memory returned to callers.
type MemoryRecord struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	Score float64 `json:"score,omitempty"`
}

// BudgetConfig bounds the size of what is sent to the model.
//
// Zero values fall back to the defaults; a negative limit disables that bound.
type BudgetConfig struct {
	// MaxUserInputChars bounds the compressed user input, in runes.
	MaxUserInputChars int `json:"max_user_input_chars" yaml:"max_user_input_chars"`

	// MaxPromptTokens bounds the prompt; see MaxPromptChars.
	MaxPromptTokens int `json:"max_prompt_tokens" yaml:"max_prompt_tokens"`

	// Strategy picks which memories enter the prompt. Unknown names select
	// prompt.SlidingWindow.
	Strategy prompt.Strategy `json:"strategy" yaml:"strategy"`
}

// DefaultBudgetConfig returns the stock budget.
func DefaultBudgetConfig() BudgetConfig {
	return BudgetConfig{
		MaxUserInputChars: DefaultMaxUserInputChars,
		MaxPromptTokens:   DefaultMaxPromptTokens,
		Strategy:          prompt.SlidingWindow,
	}
}

// MaxPromptChars converts the token budget to characters.
func (b BudgetConfig) MaxPromptChars() int {
	return prompt.TokensToChars(b.MaxPromptTokens)
}

// withDefaults fills zero values and normalizes the strategy name.
func (b BudgetConfig) withDefaults() BudgetConfig {
	if b.MaxUserInputChars == 0 {
		b.MaxUserInputChars = DefaultMaxUserInputChars
	}
	if b.MaxPromptTokens == 0 {
		b.MaxPromptTokens = DefaultMaxPromptTokens
	}
	b.Strategy = prompt.ParseStrategy(string(b.Strategy))
	return b
}

// GeneratedReply is the model output after extraction.
type GeneratedReply struct {
	RawText       string
	Answer        string
	MemorySummary string

	// Structured is false when the reply could not be parsed and Answer is RawText.
	Structured bool
}

// ChatResult is what Chat returns to the caller.
type ChatResult struct {
	// AIResponse is the answer shown to the user.
	AIResponse string `json:"ai_response"`

	// RelatedMemories are the memories returned by the search.
	RelatedMemories []MemoryRecord `json:"related_memories"`

	// AssembledPrompt is the exact prompt sent to the model.
	AssembledPrompt string `json:"prompt"`

	// ProcessingDurationMillis is the wall time of the turn.
	ProcessingDurationMillis int64 `json:"processing_time_ms"`

	// NewMemoryID is empty when no memory was written.
	NewMemoryID string `json:"new_memory_id,omitempty"`

	// TurnID correlates the turn with its log records.
	TurnID string `json:"turn_id"`

	// ReplyStructured reports whether the model followed the JSON format.
	ReplyStructured bool `json:"reply_structured"`
}
