package core

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/crystallen/memchat/pkg/llm"
	"github.com/crystallen/memchat/pkg/memstore"
	"github.com/crystallen/memchat/pkg/prompt"
)

// Client runs conversational turns against a memory store and an LLM.
//
// A Client holds only configuration and collaborator handles; every value
// produced during a turn stays local to that call, so one Client may serve
// any number of goroutines without locking.
//
// Example usage:
//
//	config, _ := core.LoadConfigFromEnv()
//	client, _ := core.NewClient(config)
//	defer client.Close()
//
//	result, _ := client.Chat(ctx, "user_001", "What is my dog's name?")
//	fmt.Println(result.AIResponse)
type Client struct {
	store    memstore.Store
	llm      llm.Provider
	budget   BudgetConfig
	generate []llm.GenerateOption
	logger   *slog.Logger
}

// NewClient builds the configured LLM and memory backend and returns a client
// that owns them.
func NewClient(cfg *Config, opts ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	provider, err := initLLM(cfg.LLM)
	if err != nil {
		return nil, NewMemoryError("NewClient", err)
	}

	store, err := initMemoryStore(cfg)
	if err != nil {
		_ = provider.Close()
		return nil, err
	}

	var generate []llm.GenerateOption
	if cfg.LLM.MaxTokens > 0 {
		generate = append(generate, llm.WithMaxTokens(cfg.LLM.MaxTokens))
	}
	if cfg.LLM.Temperature > 0 {
		generate = append(generate, llm.WithTemperature(cfg.LLM.Temperature))
	}

	base := []ClientOption{WithBudget(cfg.Budget), WithGenerateOptions(generate...)}
	return NewClientWith(store, provider, append(base, opts...)...)
}

// NewClientWith creates a client around existing collaborators.
func NewClientWith(store memstore.Store, provider llm.Provider, opts ...ClientOption) (*Client, error) {
	if store == nil || provider == nil {
		return nil, NewMemoryError("NewClientWith", ErrInvalidConfig)
	}

	o := applyClientOptions(opts)
	budget := DefaultBudgetConfig()
	if o.budget != nil {
		if _, ok := prompt.LookupStrategy(string(o.budget.Strategy)); o.budget.Strategy != "" && !ok {
			o.logger.Warn("unknown prompt strategy, using default",
				"strategy", string(o.budget.Strategy), "default", string(prompt.SlidingWindow))
		}
		budget = o.budget.withDefaults()
	}

	return &Client{
		store:    store,
		llm:      provider,
		budget:   budget,
		generate: o.generate,
		logger:   o.logger,
	}, nil
}

// Budget returns the effective prompt budget.
func (c *Client) Budget() BudgetConfig {
	return c.budget
}

// Chat runs one turn for userID.
//
// The turn compresses input, searches related memories, assembles a bounded
// prompt, calls the model once, extracts the answer and summary, and stores
// the exchange when the model produced a summary. Any collaborator failure
// fails the whole turn.
func (c *Client) Chat(ctx context.Context, userID, input string, opts ...ChatOption) (*ChatResult, error) {
	start := time.Now()
	if strings.TrimSpace(input) == "" {
		return nil, NewMemoryError("Chat", ErrInvalidInput)
	}

	turn := applyChatOptions(input, opts)
	turnID := uuid.NewString()
	log := c.logger.With("turn_id", turnID, "user_id", userID)
	log.Debug("turn started", "input_chars", utf8.RuneCountInString(turn.UserInput), "strategy", string(c.budget.Strategy))

	compressed := prompt.CompressInput(turn.UserInput, c.budget.MaxUserInputChars)
	if compressed != turn.UserInput {
		log.Warn("user input compressed",
			"original_chars", utf8.RuneCountInString(turn.UserInput),
			"compressed_chars", utf8.RuneCountInString(compressed))
	}

	records, err := c.store.Search(ctx, memstore.SearchRequest{
		Query:      compressed,
		UserID:     userID,
		Limit:      turn.MaxMemories,
		Threshold:  turn.SimilarityThreshold,
		Categories: turn.Categories,
	})
	if err != nil {
		log.Error("memory search failed", "error", err)
		return nil, NewMemoryError("Chat", wrapCause(ErrSearchFailed, err))
	}
	log.Debug("memories recalled", "count", len(records))

	memoryText := c.budget.Strategy.Select(toPromptRecords(records))
	assembled := prompt.Assemble(compressed, memoryText, turn.Context, c.budget.MaxPromptChars())
	if strings.Contains(assembled, prompt.MemoryTruncatedMarker) || strings.HasSuffix(assembled, prompt.ContentTruncatedMarker) {
		log.Warn("prompt truncated to budget", "budget_chars", c.budget.MaxPromptChars())
	}
	log.Debug("prompt assembled",
		"chars", utf8.RuneCountInString(assembled),
		"estimated_tokens", prompt.EstimateTokens(assembled))

	raw, err := c.llm.Generate(ctx, assembled, c.generate...)
	if err != nil {
		log.Error("generation failed", "error", err)
		return nil, NewMemoryError("Chat", wrapCause(ErrGenerationFailed, err))
	}

	ext := prompt.Extract(raw)
	reply := GeneratedReply{
		RawText:       raw,
		Answer:        ext.Answer,
		MemorySummary: ext.Summary,
		Structured:    ext.Structured,
	}
	if !reply.Structured {
		log.Warn("model reply was not in the expected JSON format, using raw text", "reason", ext.Reason)
	}

	newID, err := Writeback(ctx, c.store, userID, compressed, reply.Answer, reply.MemorySummary)
	if err != nil {
		log.Error("memory writeback failed", "error", err)
		return nil, NewMemoryError("Chat", err)
	}
	if newID == "" {
		log.Debug("no memory summary, nothing stored")
	}

	result := &ChatResult{
		AIResponse:               reply.Answer,
		RelatedMemories:          fromStoreRecords(records),
		AssembledPrompt:          assembled,
		ProcessingDurationMillis: time.Since(start).Milliseconds(),
		NewMemoryID:              newID,
		TurnID:                   turnID,
		ReplyStructured:          reply.Structured,
	}
	log.Info("turn completed", "new_memory_id", newID, "duration_ms", result.ProcessingDurationMillis)
	return result, nil
}

// AddMemory vectorizes and stores content for userID directly.
func (c *Client) AddMemory(ctx context.Context, userID, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", NewMemoryError("AddMemory", ErrInvalidInput)
	}
	id, err := c.store.Store(ctx, content, userID)
	if err != nil {
		return "", storeError("AddMemory", err)
	}
	return id, nil
}

// GetMemory returns the memory with the given ID.
func (c *Client) GetMemory(ctx context.Context, id string) (*MemoryRecord, error) {
	if id == "" {
		return nil, NewMemoryError("GetMemory", ErrInvalidInput)
	}
	rec, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, storeError("GetMemory", err)
	}
	out := fromStoreRecord(*rec)
	return &out, nil
}

// DeleteMemory removes the memory with the given ID.
func (c *Client) DeleteMemory(ctx context.Context, id string) error {
	if id == "" {
		return NewMemoryError("DeleteMemory", ErrInvalidInput)
	}
	if err := c.store.Delete(ctx, id); err != nil {
		return storeError("DeleteMemory", err)
	}
	return nil
}

// ListMemories returns up to limit of the user's memories, newest first.
// A limit <= 0 uses DefaultListLimit.
func (c *Client) ListMemories(ctx context.Context, userID string, limit int) ([]MemoryRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	records, err := c.store.List(ctx, userID, limit)
	if err != nil {
		return nil, storeError("ListMemories", err)
	}
	return fromStoreRecords(records), nil
}

// Close closes the memory store and the LLM provider.
func (c *Client) Close() error {
	return errors.Join(c.store.Close(), c.llm.Close())
}
