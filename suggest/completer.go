package suggest

import (
	"context"
	"errors"
	"fmt"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sashabaranov/go-openai"
	"strings"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	defaultOpenAIModel    = "gpt-4o-mini"
	defaultAnthropicModel = "claude-3-5-haiku-latest"
	maxResponseTokens     = 2048
)

var (
	ErrMissingAPIKey    = errors.New("no LLM API key is configured")
	ErrUnknownProvider  = errors.New("unknown LLM provider")
	ErrEmptyLLMResponse = errors.New("LLM returned an empty response")
)

// Completer sends one prompt and returns the model's text reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// NewCompleter builds the client for provider. baseURL only applies to OpenAI compatible endpoints.
func NewCompleter(provider, apiKey, baseURL, model string) (Completer, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	switch strings.ToLower(provider) {
	case "", ProviderOpenAI:
		return NewOpenAICompleter(apiKey, baseURL, model), nil
	case ProviderAnthropic:
		return NewAnthropicCompleter(apiKey, model), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
}

type OpenAICompleter struct {
	client *openai.Client
	model  string
}

func NewOpenAICompleter(apiKey, baseURL, model string) *OpenAICompleter {
	cfg := openai.DefaultConfig(apiKey)

	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	if model == "" {
		model = defaultOpenAIModel
	}

	return &OpenAICompleter{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.1,
	})

	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyLLMResponse
	}

	return resp.Choices[0].Message.Content, nil
}

type AnthropicCompleter struct {
	client anthropic.Client
	model  string
}

func NewAnthropicCompleter(apiKey, model string) *AnthropicCompleter {
	if model == "" {
		model = defaultAnthropicModel
	}

	return &AnthropicCompleter{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (c *AnthropicCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxResponseTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})

	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}

	var reply strings.Builder

	for _, content := range message.Content {
		if content.Type == "text" {
			reply.WriteString(content.Text)
		}
	}

	if reply.Len() == 0 {
		return "", ErrEmptyLLMResponse
	}

	return reply.String(), nil
}
