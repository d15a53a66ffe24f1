// Package models defines the core data structures used throughout the application.
package models

import (
	"fmt"
	"time"
)

// Language is the coarse language class of a piece of text.
type Language string

const (
	LanguageZh    Language = "zh"
	LanguageEn    Language = "en"
	LanguageMixed Language = "mixed"
)

// CloudProvider identifies a remote LLM vendor.
type CloudProvider string

const (
	ProviderGPT4     CloudProvider = "gpt4"
	ProviderClaude   CloudProvider = "claude"
	ProviderWenxin   CloudProvider = "wenxin"
	ProviderMoonshot CloudProvider = "moonshot"
)

// Providers lists every supported provider in display order.
var Providers = []CloudProvider{ProviderGPT4, ProviderClaude, ProviderWenxin, ProviderMoonshot}

// ParseProvider converts a raw provider name into a CloudProvider.
func ParseProvider(raw string) (CloudProvider, error) {
	for _, p := range Providers {
		if string(p) == raw {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown provider: %q", raw)
}

// PreprocessedText is normalized input ready for the engine.
type PreprocessedText struct {
	Original string   `json:"original"`
	Cleaned  string   `json:"cleaned"`
	Length   int      `json:"length"` // rune count of Cleaned
	Language Language `json:"language"`
}

// SimplifyRequest is the engine input for a simplification.
type SimplifyRequest struct {
	Text      string   `json:"text"`
	Language  Language `json:"language"`
	MaxLength int      `json:"max_length,omitempty"`
}

// SimplifyResult is the structured output of a simplification.
type SimplifyResult struct {
	Simplified       string        `json:"simplified"`
	Domain           string        `json:"domain"`
	Confidence       float64       `json:"confidence"`
	KeyTerms         []string      `json:"key_terms,omitempty"`
	Tips             string        `json:"tips,omitempty"`
	ProcessingTimeMs int64         `json:"processing_time_ms"`
	Provider         CloudProvider `json:"provider"`
}

// ExplainRequest is the engine input for an explanation.
type ExplainRequest struct {
	Text     string   `json:"text"`
	Language Language `json:"language"`
	Context  string   `json:"context,omitempty"`
}

// ExplainResult is the structured output of an explanation.
type ExplainResult struct {
	Explanation      string        `json:"explanation"`
	Domain           string        `json:"domain"`
	Confidence       float64       `json:"confidence"`
	KeyTerms         []string      `json:"key_terms,omitempty"`
	RelatedConcepts  []string      `json:"related_concepts,omitempty"`
	ProcessingTimeMs int64         `json:"processing_time_ms"`
	Provider         CloudProvider `json:"provider"`
}

// APIKeyConfig is the input for saving a credential.
type APIKeyConfig struct {
	Provider  CloudProvider `json:"provider"`
	APIKey    string        `json:"api_key"`
	IsDefault bool          `json:"is_default"`
}

// EncryptedAPIKey is a persisted credential. EncryptedKey and IV are base64.
type EncryptedAPIKey struct {
	Provider     CloudProvider `json:"provider"`
	EncryptedKey string        `json:"encrypted_key"`
	IV           string        `json:"iv"`
	IsDefault    bool          `json:"is_default"`
}

// ProviderInfo describes a stored credential without exposing the key.
type ProviderInfo struct {
	Provider  CloudProvider `json:"provider"`
	IsDefault bool          `json:"is_default"`
}

// DefaultKey is a decrypted default credential.
type DefaultKey struct {
	Provider CloudProvider
	APIKey   string
}

// ValidationResult is the outcome of a live key check.
type ValidationResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// LogEntry is the audit record of one simplify or explain call.
type LogEntry struct {
	ID               string        `json:"id"`
	Timestamp        time.Time     `json:"timestamp"`
	TextLength       int           `json:"text_length"`
	Language         Language      `json:"language"`
	Provider         CloudProvider `json:"provider,omitempty"`
	Domain           string        `json:"domain"`
	Confidence       float64       `json:"confidence"`
	ProcessingTimeMs int64         `json:"processing_time_ms"`
	Success          bool          `json:"success"`
	Error            string        `json:"error,omitempty"`
	ErrorType        ErrorType     `json:"error_type,omitempty"`
}

// Stats summarizes the retained log entries of a service.
type Stats struct {
	TotalCalls            int                   `json:"total_calls"`
	SuccessRate           float64               `json:"success_rate"`
	AverageProcessingTime float64               `json:"average_processing_time_ms"`
	ProviderUsage         map[CloudProvider]int `json:"provider_usage"`
}
