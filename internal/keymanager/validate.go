package keymanager

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/smartread/smartread/internal/llm"
	"github.com/smartread/smartread/internal/models"
)

// ValidateKey sends a minimal request to provider with the candidate key,
// not the stored one. It never returns an error; failures are reported in
// the result.
func (m *Manager) ValidateKey(ctx context.Context, provider models.CloudProvider, apiKey string) models.ValidationResult {
	if err := checkProvider(provider); err != nil {
		return models.ValidationResult{Valid: false, Error: "Unknown provider"}
	}

	client, err := llm.NewProvider(&m.llm, provider, apiKey)
	if err != nil {
		return models.ValidationResult{Valid: false, Error: err.Error()}
	}

	if m.llm.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.llm.Timeout)
		defer cancel()
	}

	err = client.Validate(ctx)
	result := validationResult(err)

	log.Info().
		Str("provider", string(provider)).
		Bool("valid", result.Valid).
		Str("reason", result.Error).
		Msg("API key validated")
	return result
}

func validationResult(err error) models.ValidationResult {
	if err == nil {
		return models.ValidationResult{Valid: true}
	}

	var se *models.SimplifyError
	if !errors.As(err, &se) {
		return models.ValidationResult{Valid: false, Error: err.Error()}
	}

	switch {
	case se.StatusCode == http.StatusUnauthorized:
		return models.ValidationResult{Valid: false, Error: "API 密钥无效"}
	case se.StatusCode != 0:
		return models.ValidationResult{Valid: false, Error: fmt.Sprintf("HTTP %d", se.StatusCode)}
	case se.Type == models.ErrNetwork && se.Err != nil:
		return models.ValidationResult{Valid: false, Error: se.Err.Error()}
	}
	return models.ValidationResult{Valid: false, Error: se.Message}
}
