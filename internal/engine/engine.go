// Package engine dispatches simplify and explain requests to a cloud LLM
// provider and turns the replies into structured results.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/smartread/smartread/internal/config"
	"github.com/smartread/smartread/internal/llm"
	"github.com/smartread/smartread/internal/models"
)

// Engine is bound to one provider and one API key.
type Engine struct {
	provider models.CloudProvider
	client   llm.Provider
	cfg      config.LLMConfig
}

// New creates an engine for the given provider. An empty apiKey yields an
// engine that reports unavailable and fails every call with NO_API_KEY.
func New(cfg *config.LLMConfig, provider models.CloudProvider, apiKey string) (*Engine, error) {
	llmCfg := config.DefaultLLMConfig()
	if cfg != nil {
		llmCfg = *cfg
	}

	e := &Engine{
		provider: provider,
		cfg:      llmCfg,
	}
	if apiKey == "" {
		return e, nil
	}

	client, err := llm.NewProvider(&llmCfg, provider, apiKey)
	if err != nil {
		return nil, err
	}
	e.client = client
	return e, nil
}

// NewWithClient creates an engine around an existing provider client.
func NewWithClient(cfg *config.LLMConfig, client llm.Provider) *Engine {
	llmCfg := config.DefaultLLMConfig()
	if cfg != nil {
		llmCfg = *cfg
	}
	e := &Engine{cfg: llmCfg, client: client}
	if client != nil {
		e.provider = client.Name()
	}
	return e
}

// Provider returns the provider the engine is bound to.
func (e *Engine) Provider() models.CloudProvider {
	if e == nil {
		return ""
	}
	return e.provider
}

// IsAvailable reports whether a key is configured. A nil engine is never
// available.
func (e *Engine) IsAvailable() bool {
	return e != nil && e.client != nil
}

// Simplify rewrites text into an easier version.
func (e *Engine) Simplify(ctx context.Context, req models.SimplifyRequest) (*models.SimplifyResult, error) {
	start := time.Now()
	if !e.IsAvailable() {
		return nil, noAPIKey()
	}

	prompt := BuildSimplifyPrompt(req)
	raw, err := e.dispatch(ctx, "simplify", prompt)
	if err != nil {
		return nil, err
	}

	p, strategy := simplifyParser.Parse(raw)
	result := &models.SimplifyResult{
		Simplified:       p.Primary,
		Domain:           p.Domain,
		Confidence:       p.Confidence,
		KeyTerms:         p.KeyTerms,
		Tips:             p.Tips,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		Provider:         e.provider,
	}

	log.Debug().
		Str("provider", string(e.provider)).
		Str("strategy", strategy).
		Int64("processing_time_ms", result.ProcessingTimeMs).
		Msg("Simplify response parsed")

	return result, nil
}

// Explain produces a detailed explanation of text.
func (e *Engine) Explain(ctx context.Context, req models.ExplainRequest) (*models.ExplainResult, error) {
	start := time.Now()
	if !e.IsAvailable() {
		return nil, noAPIKey()
	}

	prompt := BuildExplainPrompt(req)
	raw, err := e.dispatch(ctx, "explain", prompt)
	if err != nil {
		return nil, err
	}

	p, strategy := explainParser.Parse(raw)
	result := &models.ExplainResult{
		Explanation:      p.Primary,
		Domain:           p.Domain,
		Confidence:       p.Confidence,
		KeyTerms:         p.KeyTerms,
		RelatedConcepts:  p.RelatedConcepts,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		Provider:         e.provider,
	}

	log.Debug().
		Str("provider", string(e.provider)).
		Str("strategy", strategy).
		Int64("processing_time_ms", result.ProcessingTimeMs).
		Msg("Explain response parsed")

	return result, nil
}

// dispatch runs up to 1+MaxRetries attempts with linear backoff. Credential
// errors stop immediately.
func (e *Engine) dispatch(ctx context.Context, op, prompt string) (string, error) {
	opts := llm.CompletionOptions{
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
	}

	var lastErr error
	for attempt := 0; attempt <= e.cfg.MaxRetries; attempt++ {
		raw, err := e.attempt(ctx, prompt, opts)
		if err == nil {
			return raw, nil
		}
		lastErr = err

		log.Warn().
			Err(err).
			Str("op", op).
			Str("provider", string(e.provider)).
			Int("attempt", attempt+1).
			Msg("Provider call failed")

		if !models.ErrorTypeOf(err).Retryable() {
			return "", err
		}
		if attempt == e.cfg.MaxRetries || ctx.Err() != nil {
			break
		}

		backoff := time.Duration(attempt+1) * e.cfg.RetryBackoff
		select {
		case <-ctx.Done():
			return "", lastErr
		case <-time.After(backoff):
		}
	}

	return "", lastErr
}

func (e *Engine) attempt(ctx context.Context, prompt string, opts llm.CompletionOptions) (string, error) {
	var (
		attemptCtx context.Context
		cancel     context.CancelFunc
	)
	if e.cfg.Timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
	} else {
		attemptCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	raw, err := e.client.CompleteWithSystem(attemptCtx, SystemPrompt, prompt, opts)
	if err != nil {
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return "", models.NewError(models.ErrTimeout, "请求超时，请重试", err)
		}
		return "", err
	}
	return raw, nil
}

func noAPIKey() *models.SimplifyError {
	return models.NewError(models.ErrNoAPIKey, "请先配置 API 密钥", nil)
}
