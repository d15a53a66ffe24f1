// Package api provides HTTP API handlers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/smartread/smartread/internal/keymanager"
	"github.com/smartread/smartread/internal/models"
	"github.com/smartread/smartread/internal/preprocess"
	"github.com/smartread/smartread/internal/service"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// KeyStore is the credential surface the bridge exposes.
type KeyStore interface {
	SaveKey(ctx context.Context, cfg models.APIKeyConfig) error
	DeleteKey(ctx context.Context, provider models.CloudProvider) error
	GetProviders(ctx context.Context) ([]models.ProviderInfo, error)
	GetDefaultKey(ctx context.Context) (*models.DefaultKey, error)
	ValidateKey(ctx context.Context, provider models.CloudProvider, apiKey string) models.ValidationResult
}

// historyService is what the logs and stats endpoints read.
type historyService interface {
	Logs() []models.LogEntry
	ClearLogs()
	Stats() models.Stats
}

// Handler contains all HTTP handlers.
type Handler struct {
	simplify *service.SimplifyService
	explain  *service.ExplainService
	keys     KeyStore
}

// NewHandler creates a new handler.
func NewHandler(simplify *service.SimplifyService, explain *service.ExplainService, keys KeyStore) *Handler {
	return &Handler{
		simplify: simplify,
		explain:  explain,
		keys:     keys,
	}
}

// HealthCheck returns the service health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"version":   Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"available": false,
	}
	if e := h.simplify.Engine(); e != nil {
		response["provider"] = e.Provider()
		response["available"] = e.IsAvailable()
	}
	writeJSON(w, http.StatusOK, response)
}

type simplifyRequest struct {
	Text      string `json:"text"`
	MaxLength int    `json:"max_length"`
}

// Simplify handles text simplification requests.
func (h *Handler) Simplify(w http.ResponseWriter, r *http.Request) {
	var req simplifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}
	if req.MaxLength < 0 {
		writeError(w, http.StatusBadRequest, "max_length must not be negative")
		return
	}

	result, err := h.simplify.SimplifyWithLimit(r.Context(), req.Text, req.MaxLength)
	if err != nil {
		writeServiceError(w, err, preprocess.DetectLanguage(req.Text))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type explainRequest struct {
	Text    string `json:"text"`
	Context string `json:"context"`
}

// Explain handles term and passage explanation requests.
func (h *Handler) Explain(w http.ResponseWriter, r *http.Request) {
	var req explainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}

	result, err := h.explain.ExplainInContext(r.Context(), req.Text, req.Context)
	if err != nil {
		writeServiceError(w, err, preprocess.DetectLanguage(req.Text))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) history(name string) historyService {
	switch name {
	case "simplify":
		return h.simplify
	case "explain":
		return h.explain
	}
	return nil
}

// GetLogs returns the call history of one service.
func (h *Handler) GetLogs(w http.ResponseWriter, r *http.Request) {
	svc := h.history(chi.URLParam(r, "service"))
	if svc == nil {
		writeError(w, http.StatusNotFound, "Unknown service")
		return
	}

	logs := svc.Logs()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"count": len(logs),
	})
}

// ClearLogs drops the call history of one service.
func (h *Handler) ClearLogs(w http.ResponseWriter, r *http.Request) {
	svc := h.history(chi.URLParam(r, "service"))
	if svc == nil {
		writeError(w, http.StatusNotFound, "Unknown service")
		return
	}

	svc.ClearLogs()
	w.WriteHeader(http.StatusNoContent)
}

// GetStats returns aggregate call statistics of one service.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	svc := h.history(chi.URLParam(r, "service"))
	if svc == nil {
		writeError(w, http.StatusNotFound, "Unknown service")
		return
	}

	writeJSON(w, http.StatusOK, svc.Stats())
}

// ListKeys lists stored providers and their default flags.
func (h *Handler) ListKeys(w http.ResponseWriter, r *http.Request) {
	providers, err := h.keys.GetProviders(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list API keys")
		writeError(w, http.StatusInternalServerError, "Failed to list API keys")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"keys":    providers,
		"has_any": len(providers) > 0,
	})
}

type saveKeyRequest struct {
	Provider  string `json:"provider"`
	APIKey    string `json:"api_key"`
	IsDefault bool   `json:"is_default"`
}

// SaveKey stores a provider key and rebinds the services.
func (h *Handler) SaveKey(w http.ResponseWriter, r *http.Request) {
	var req saveKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	provider, err := models.ParseProvider(req.Provider)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.APIKey == "" {
		writeError(w, http.StatusBadRequest, "api_key is required")
		return
	}

	err = h.keys.SaveKey(r.Context(), models.APIKeyConfig{
		Provider:  provider,
		APIKey:    req.APIKey,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		log.Error().Err(err).Str("provider", string(provider)).Msg("Failed to save API key")
		writeError(w, http.StatusInternalServerError, "保存 API 密钥失败")
		return
	}

	h.rebind(r.Context())
	writeJSON(w, http.StatusCreated, models.ProviderInfo{Provider: provider, IsDefault: req.IsDefault})
}

// DeleteKey removes a provider key and rebinds the services.
func (h *Handler) DeleteKey(w http.ResponseWriter, r *http.Request) {
	provider, err := models.ParseProvider(chi.URLParam(r, "provider"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.keys.DeleteKey(r.Context(), provider); err != nil {
		log.Error().Err(err).Str("provider", string(provider)).Msg("Failed to delete API key")
		writeError(w, http.StatusInternalServerError, "删除 API 密钥失败")
		return
	}

	h.rebind(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

type validateKeyRequest struct {
	Provider string `json:"provider"`
	APIKey   string `json:"api_key"`
}

// ValidateKey checks a candidate key against the live provider.
func (h *Handler) ValidateKey(w http.ResponseWriter, r *http.Request) {
	var req validateKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result := h.keys.ValidateKey(r.Context(), models.CloudProvider(req.Provider), req.APIKey)
	writeJSON(w, http.StatusOK, result)
}

// rebind points both services at the current default key.
func (h *Handler) rebind(ctx context.Context) {
	if _, err := service.BindDefault(ctx, h.keys, h.simplify, h.explain); err != nil {
		log.Error().Err(err).Msg("Failed to bind default engine")
	}
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServiceError renders a SimplifyError with the localized message for
// lang and a status derived from its type.
func writeServiceError(w http.ResponseWriter, err error, lang models.Language) {
	errType := models.ErrorTypeOf(err)
	message := err.Error()
	var se *models.SimplifyError
	if errors.As(err, &se) {
		message = se.Message
	}

	writeJSON(w, statusFor(errType), map[string]string{
		"error":   models.UserMessage(err, lang),
		"type":    string(errType),
		"message": message,
	})
}

func statusFor(t models.ErrorType) int {
	switch t {
	case models.ErrNoAPIKey, models.ErrInvalidAPIKey:
		return http.StatusUnauthorized
	case models.ErrRateLimit:
		return http.StatusTooManyRequests
	case models.ErrTimeout:
		return http.StatusGatewayTimeout
	case models.ErrNetwork:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

var _ KeyStore = (*keymanager.Manager)(nil)
