// Package openai implements pkg/llm's Generator against the OpenAI chat
// completions API.
package openai

import (
	"context"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/knolhq/knol/pkg/knowledge"
	"github.com/knolhq/knol/pkg/llm"
)

const (
	// DefaultModel is the default chat model.
	DefaultModel = "gpt-4o-mini"

	// DefaultTemperature keeps answers close to the provided context.
	DefaultTemperature = 0.3

	// DefaultMaxTokens bounds answer length.
	DefaultMaxTokens = 1000
)

// Generator wraps the OpenAI chat completions endpoint.
type Generator struct {
	client      *goopenai.Client
	model       string
	temperature float32
	maxTokens   int
}

// Config holds configuration for the OpenAI generator.
type Config struct {
	// APIKey authenticates against the OpenAI API. Required.
	APIKey string

	// BaseURL overrides the API base URL for compatible backends.
	BaseURL string

	// Model is the chat model. Defaults to DefaultModel if empty.
	Model string

	// Temperature defaults to DefaultTemperature if zero.
	Temperature float32

	// MaxTokens defaults to DefaultMaxTokens if zero.
	MaxTokens int
}

// NewGenerator creates a generator backed by the OpenAI API.
func NewGenerator(c Config) (*Generator, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	model := c.Model
	if model == "" {
		model = DefaultModel
	}

	temperature := c.Temperature
	if temperature == 0 {
		temperature = DefaultTemperature
	}

	maxTokens := c.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}

	cfg := goopenai.DefaultConfig(c.APIKey)
	if c.BaseURL != "" {
		cfg.BaseURL = c.BaseURL
	}

	return &Generator{
		client:      goopenai.NewClientWithConfig(cfg),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}, nil
}

// Generate sends one chat completion request.
func (g *Generator) Generate(ctx context.Context, system, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: g.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: system},
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", knowledge.ErrGenerationFailed, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", knowledge.ErrGenerationFailed)
	}

	return resp.Choices[0].Message.Content, nil
}

// ModelID identifies the chat model.
func (g *Generator) ModelID() string { return "openai/" + g.model }

// Close releases resources held by the generator.
func (g *Generator) Close() error {
	return nil
}

var _ llm.Generator = (*Generator)(nil)
