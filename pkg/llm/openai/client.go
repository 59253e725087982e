// Package openai implements llm.Provider on top of the OpenAI chat completions API.
//
// Any OpenAI-compatible endpoint works by setting BaseURL; DeepSeekBaseURL is
// provided as a preset.
package openai

import (
	"context"
	"errors"

	"github.com/crystallen/memchat/pkg/llm"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultModel is used when Config.Model is empty.
	DefaultModel = openai.GPT3Dot5Turbo

	// DeepSeekBaseURL is the OpenAI-compatible endpoint of DeepSeek.
	DeepSeekBaseURL = "https://api.deepseek.com"
)

// Client is an OpenAI LLM client.
type Client struct {
	client *openai.Client
	model  string
}

// Config is the configuration for the OpenAI LLM client.
// APIKey: API key (required by the hosted service)
// Model: model name, defaults to DefaultModel
// BaseURL: API base URL, defaults to the OpenAI official address
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// NewClient creates a new OpenAI LLM client.
//
// Args:
//   - cfg: OpenAI configuration containing APIKey, Model, and BaseURL
//
// Returns:
//   - *Client: OpenAI client instance
//   - error: Returns an error if the configuration is invalid or initialization fails
func NewClient(cfg *Config) (*Client, error) {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

// Generate sends prompt as a single user message.
//
// Args:
//   - ctx: Context for controlling the request lifecycle
//   - prompt: Complete prompt, sent as a single user message
//   - opts: Optional generation parameters (model, temperature, max_tokens, top_p)
//
// Returns:
//   - string: Generated text content
//   - error: Returns an error if the request fails or the reply carries no text
func (c *Client) Generate(ctx context.Context, prompt string, opts ...llm.GenerateOption) (string, error) {
	options := llm.ApplyGenerateOptions(opts)

	req := openai.ChatCompletionRequest{
		Model: options.ModelOr(c.model),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32(options.Temperature),
		MaxTokens:   options.MaxTokens,
		TopP:        float32(options.TopP),
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("llm generation failed: no choices returned from OpenAI API")
	}

	return resp.Choices[0].Message.Content, nil
}

// Close is a no-op; the SDK client holds no resources.
func (c *Client) Close() error {
	return nil
}
