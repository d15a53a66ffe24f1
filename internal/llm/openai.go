// Package llm provides OpenAI-compatible implementation of the Provider interface.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/smartread/smartread/internal/config"
	"github.com/smartread/smartread/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider for OpenAI-compatible chat endpoints.
// It serves both gpt4 and moonshot, which differ only in base URL and model.
type OpenAIProvider struct {
	client *openai.Client
	name   models.CloudProvider
	label  string
	model  string
}

// NewOpenAIProvider creates a new OpenAI-compatible provider.
func NewOpenAIProvider(name models.CloudProvider, apiKey string, pc config.ProviderConfig, httpClient *http.Client) (*OpenAIProvider, error) {
	label := "OpenAI"
	model := "gpt-4"
	if name == models.ProviderMoonshot {
		label = "Moonshot"
		model = "moonshot-v1-8k"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%s API key is required", label)
	}
	if pc.Model != "" {
		model = pc.Model
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if pc.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(pc.BaseURL, "/")
	} else if name == models.ProviderMoonshot {
		clientCfg.BaseURL = "https://api.moonshot.cn/v1"
	}
	if httpClient != nil {
		clientCfg.HTTPClient = httpClient
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientCfg),
		name:   name,
		label:  label,
		model:  model,
	}, nil
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() models.CloudProvider {
	return p.name
}

// Complete generates a completion for the given prompt.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	return p.CompleteWithSystem(ctx, "", prompt, opts)
}

// CompleteWithSystem generates a completion with a system prompt.
func (p *OpenAIProvider) CompleteWithSystem(ctx context.Context, system, user string, opts CompletionOptions) (string, error) {
	model := opts.Model
	if model == "" {
		model = p.model
	}

	messages := []openai.ChatCompletionMessage{}
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: user,
	})

	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: float32(opts.Temperature),
	})
	if err != nil {
		return "", p.classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", models.NewError(models.ErrUnknown, fmt.Sprintf("%s returned no choices", p.label), nil)
	}

	return resp.Choices[0].Message.Content, nil
}

// Validate sends a ten-token request with the configured key.
func (p *OpenAIProvider) Validate(ctx context.Context) error {
	_, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: validationPrompt},
		},
		MaxTokens: 10,
	})
	if err != nil {
		return p.classify(err)
	}
	return nil
}

// classify turns go-openai errors into SimplifyErrors. Anything without an
// HTTP status is a transport failure.
func (p *OpenAIProvider) classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return statusError(apiErr.HTTPStatusCode, p.label, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return statusError(reqErr.HTTPStatusCode, p.label, err)
	}
	return networkError(err)
}
