// Package llm defines the text-generation backend consumed by the chat pipeline.
//
// A Provider takes a single prompt and returns the model's free-text reply.
// Implementations live in the openai, anthropic and ollama subpackages.
package llm

import "context"

// Provider defines the interface for text-generation backends.
type Provider interface {
	// Generate sends prompt as a single user message and returns the reply text.
	//
	// Implementations make exactly one round trip and never retry.
	Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error)

	// Close releases resources held by the provider.
	Close() error
}

// GenerateOptions contains options for text generation.
type GenerateOptions struct {
	// Model overrides the provider's configured model when non-empty.
	Model string

	// Temperature controls randomness (0.0-2.0). Higher = more random.
	Temperature float64

	// MaxTokens limits the length of the reply.
	MaxTokens int

	// TopP controls nucleus sampling (0.0-1.0).
	TopP float64
}

// GenerateOption is a function type for configuring generation options.
type GenerateOption func(*GenerateOptions)

// WithModel overrides the model for a single call.
func WithModel(model string) GenerateOption {
	return func(opts *GenerateOptions) {
		opts.Model = model
	}
}

// WithTemperature sets the temperature for text generation.
//
// Example:
//
//	text, _ := provider.Generate(ctx, "Hello", llm.WithTemperature(0.7))
func WithTemperature(temp float64) GenerateOption {
	return func(opts *GenerateOptions) {
		opts.Temperature = temp
	}
}

// WithMaxTokens sets the maximum number of tokens in the reply.
//
// Example:
//
//	text, _ := provider.Generate(ctx, "Hello", llm.WithMaxTokens(100))
func WithMaxTokens(max int) GenerateOption {
	return func(opts *GenerateOptions) {
		opts.MaxTokens = max
	}
}

// WithTopP sets the top-p (nucleus sampling) parameter.
func WithTopP(topP float64) GenerateOption {
	return func(opts *GenerateOptions) {
		opts.TopP = topP
	}
}

// ApplyGenerateOptions applies opts over the defaults
// (Temperature=0.7, MaxTokens=1000, TopP=1.0).
func ApplyGenerateOptions(opts []GenerateOption) *GenerateOptions {
	options := &GenerateOptions{
		Temperature: 0.7,
		MaxTokens:   1000,
		TopP:        1.0,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// ModelOr returns the per-call model override, or fallback when none was given.
func (o *GenerateOptions) ModelOr(fallback string) string {
	if o.Model != "" {
		return o.Model
	}
	return fallback
}
