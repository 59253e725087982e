// Package anthropic implements llm.Provider on top of the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/crystallen/memchat/pkg/llm"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "claude-3-5-sonnet-20240620"

// Client is an Anthropic LLM client.
type Client struct {
	client *anthropicsdk.Client
	model  string
}

// Config is the configuration for Anthropic LLM.
// APIKey: Anthropic API key (required)
// Model: model name, defaults to DefaultModel
// BaseURL: API base URL, defaults to the SDK's endpoint
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// NewClient creates a new Anthropic LLM client.
//
// Args:
//   - cfg: Anthropic configuration containing APIKey, Model, and BaseURL
//
// Returns:
//   - *Client: Anthropic client instance
//   - error: Returns an error if the API key is missing
func NewClient(cfg *Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("API key is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	client := anthropicsdk.NewClient(opts...)
	return &Client{
		client: &client,
		model:  model,
	}, nil
}

// Generate sends prompt as a single user message and concatenates the text
// blocks of the reply.
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

	params := anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(options.ModelOr(c.model)),
		MaxTokens: int64(options.MaxTokens),
		Messages: []anthropicsdk.MessageParam{
			anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(prompt)),
		},
		// Newer models reject temperature and top_p together.
		Temperature: anthropicsdk.Float(options.Temperature),
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("llm generation failed: no text content in Anthropic response")
	}
	return sb.String(), nil
}

// Close is a no-op.
func (c *Client) Close() error {
	return nil
}
