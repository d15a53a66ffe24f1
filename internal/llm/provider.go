// Package llm provides a pluggable interface for LLM providers.
package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/smartread/smartread/internal/config"
	"github.com/smartread/smartread/internal/models"
)

// CompletionOptions contains options for completion requests.
type CompletionOptions struct {
	MaxTokens   int
	Temperature float64
	Model       string
}

// DefaultCompletionOptions returns the options used for simplify and explain calls.
func DefaultCompletionOptions() CompletionOptions {
	return CompletionOptions{
		MaxTokens:   1000,
		Temperature: 0.3,
	}
}

// validationPrompt is the minimal prompt sent when checking a key.
const validationPrompt = "Hello"

// Provider defines the interface for LLM providers. Failures are returned
// as *models.SimplifyError.
type Provider interface {
	// Complete generates a completion for the given prompt.
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)

	// CompleteWithSystem generates a completion with a system prompt.
	CompleteWithSystem(ctx context.Context, system, user string, opts CompletionOptions) (string, error)

	// Validate sends a minimal request and reports whether the key is accepted.
	Validate(ctx context.Context) error

	// Name returns the provider name.
	Name() models.CloudProvider
}

// NewProvider creates a provider client for the given vendor and key.
func NewProvider(cfg *config.LLMConfig, provider models.CloudProvider, apiKey string) (Provider, error) {
	if cfg == nil {
		def := config.DefaultLLMConfig()
		cfg = &def
	}
	httpClient := NewHTTPClient(cfg)
	pc := cfg.Provider(string(provider))

	switch provider {
	case models.ProviderGPT4, models.ProviderMoonshot:
		return NewOpenAIProvider(provider, apiKey, pc, httpClient)
	case models.ProviderClaude:
		return NewAnthropicProvider(apiKey, pc, httpClient)
	case models.ProviderWenxin:
		return NewWenxinProvider(apiKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// statusError maps a non-2xx provider status to a SimplifyError.
func statusError(status int, label string, cause error) *models.SimplifyError {
	var se *models.SimplifyError
	switch status {
	case http.StatusUnauthorized:
		se = models.NewError(models.ErrInvalidAPIKey, "API 密钥无效，请检查设置", cause)
	case http.StatusTooManyRequests:
		se = models.NewError(models.ErrRateLimit, "API 调用次数已达上限", cause)
	default:
		se = models.NewError(models.ErrUnknown, fmt.Sprintf("%s API error: %d", label, status), cause)
	}
	se.StatusCode = status
	return se
}

// networkError wraps a transport failure.
func networkError(cause error) *models.SimplifyError {
	return models.NewError(models.ErrNetwork, "网络连接失败，请检查网络", cause)
}
