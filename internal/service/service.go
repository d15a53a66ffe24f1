// Package service runs preprocessing and engine calls for the simplify and
// explain features and keeps a bounded history of each call.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/smartread/smartread/internal/config"
	"github.com/smartread/smartread/internal/engine"
	"github.com/smartread/smartread/internal/models"
	"github.com/smartread/smartread/internal/preprocess"
)

// AIEngine is the engine surface the services dispatch to.
type AIEngine interface {
	Provider() models.CloudProvider
	IsAvailable() bool
	Simplify(ctx context.Context, req models.SimplifyRequest) (*models.SimplifyResult, error)
	Explain(ctx context.Context, req models.ExplainRequest) (*models.ExplainResult, error)
}

// base holds what both services share.
type base struct {
	name         string
	llm          config.LLMConfig
	preprocessor *preprocess.Preprocessor
	logs         *LogBuffer

	mu     sync.RWMutex
	engine AIEngine
}

func (b *base) init(name string, cfg *config.Config) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	b.name = name
	b.llm = cfg.LLM
	b.preprocessor = preprocess.New()
	b.logs = NewLogBuffer(cfg.History.MaxEntries)
}

// SetCloudEngine binds a new cloud engine for provider and apiKey.
func (b *base) SetCloudEngine(provider models.CloudProvider, apiKey string) error {
	e, err := engine.New(&b.llm, provider, apiKey)
	if err != nil {
		return err
	}
	b.SetEngine(e)
	return nil
}

// SetEngine binds an engine. A nil engine unbinds.
func (b *base) SetEngine(e AIEngine) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.engine = e
}

// Engine returns the bound engine, or nil.
func (b *base) Engine() AIEngine {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.engine
}

// Logs returns the retained call records, oldest first.
func (b *base) Logs() []models.LogEntry {
	return b.logs.Entries()
}

// ClearLogs drops the call history.
func (b *base) ClearLogs() {
	b.logs.Clear()
}

// Stats summarizes the call history.
func (b *base) Stats() models.Stats {
	return b.logs.Stats()
}

// ready returns the bound engine when it can serve calls.
func (b *base) ready() (AIEngine, error) {
	e := b.Engine()
	if e == nil || !e.IsAvailable() {
		return e, models.NewError(models.ErrNoAPIKey, "请先配置 API 密钥", nil)
	}
	return e, nil
}

func (b *base) newEntry(pre models.PreprocessedText, e AIEngine) models.LogEntry {
	entry := models.LogEntry{
		ID:         uuid.New().String(),
		Timestamp:  time.Now().UTC(),
		TextLength: pre.Length,
		Language:   pre.Language,
		Domain:     "unknown",
	}
	if e != nil {
		entry.Provider = e.Provider()
	}
	return entry
}

func (b *base) recordSuccess(entry models.LogEntry, start time.Time) {
	entry.Success = true
	entry.ProcessingTimeMs = time.Since(start).Milliseconds()
	b.logs.Append(entry)

	log.Info().
		Str("service", b.name).
		Str("provider", string(entry.Provider)).
		Str("domain", entry.Domain).
		Float64("confidence", entry.Confidence).
		Int64("processing_time_ms", entry.ProcessingTimeMs).
		Msg("Request completed")
}

func (b *base) recordFailure(entry models.LogEntry, start time.Time, err error) {
	entry.Success = false
	entry.ProcessingTimeMs = time.Since(start).Milliseconds()
	entry.ErrorType = models.ErrorTypeOf(err)
	entry.Error = err.Error()
	var se *models.SimplifyError
	if errors.As(err, &se) {
		entry.Error = se.Message
	}
	b.logs.Append(entry)

	log.Error().
		Err(err).
		Str("service", b.name).
		Str("provider", string(entry.Provider)).
		Str("error_type", string(entry.ErrorType)).
		Int("text_length", entry.TextLength).
		Msg("Request failed")
}

// SimplifyService rewrites text into an easier version.
type SimplifyService struct {
	base
}

// NewSimplifyService creates a simplify service with no engine bound.
func NewSimplifyService(cfg *config.Config) *SimplifyService {
	s := &SimplifyService{}
	s.init("simplify", cfg)
	return s
}

// Simplify preprocesses text and runs it through the bound engine.
func (s *SimplifyService) Simplify(ctx context.Context, text string) (*models.SimplifyResult, error) {
	return s.SimplifyWithLimit(ctx, text, 0)
}

// SimplifyWithLimit is Simplify with a target length for the rewrite.
// Errors that are not SimplifyErrors come back as UNKNOWN_ERROR.
func (s *SimplifyService) SimplifyWithLimit(ctx context.Context, text string, maxLength int) (*models.SimplifyResult, error) {
	start := time.Now()
	pre := s.preprocessor.Preprocess(text)

	log.Debug().
		Int("length", pre.Length).
		Str("language", string(pre.Language)).
		Msg("Simplify input preprocessed")

	e, err := s.ready()
	entry := s.newEntry(pre, e)
	if err != nil {
		s.recordFailure(entry, start, err)
		return nil, err
	}

	result, err := e.Simplify(ctx, models.SimplifyRequest{
		Text:      pre.Cleaned,
		Language:  pre.Language,
		MaxLength: maxLength,
	})
	if err != nil {
		var se *models.SimplifyError
		if !errors.As(err, &se) {
			err = models.NewError(models.ErrUnknown, "处理失败，请重试", err)
		}
		s.recordFailure(entry, start, err)
		return nil, err
	}

	entry.Provider = result.Provider
	entry.Domain = result.Domain
	entry.Confidence = result.Confidence
	s.recordSuccess(entry, start)
	return result, nil
}

// ExplainService produces detailed explanations of terms and passages.
type ExplainService struct {
	base
}

// NewExplainService creates an explain service with no engine bound.
func NewExplainService(cfg *config.Config) *ExplainService {
	s := &ExplainService{}
	s.init("explain", cfg)
	return s
}

// Explain preprocesses text and runs it through the bound engine.
func (s *ExplainService) Explain(ctx context.Context, text string) (*models.ExplainResult, error) {
	return s.ExplainInContext(ctx, text, "")
}

// ExplainInContext is Explain with the surrounding passage as a hint.
// Engine errors are returned unchanged.
func (s *ExplainService) ExplainInContext(ctx context.Context, text, surrounding string) (*models.ExplainResult, error) {
	start := time.Now()
	pre := s.preprocessor.Preprocess(text)

	log.Debug().
		Int("length", pre.Length).
		Str("language", string(pre.Language)).
		Msg("Explain input preprocessed")

	e, err := s.ready()
	entry := s.newEntry(pre, e)
	if err != nil {
		s.recordFailure(entry, start, err)
		return nil, err
	}

	result, err := e.Explain(ctx, models.ExplainRequest{
		Text:     pre.Cleaned,
		Language: pre.Language,
		Context:  surrounding,
	})
	if err != nil {
		s.recordFailure(entry, start, err)
		return nil, err
	}

	entry.Provider = result.Provider
	entry.Domain = result.Domain
	entry.Confidence = result.Confidence
	s.recordSuccess(entry, start)
	return result, nil
}
