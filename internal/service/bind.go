package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/smartread/smartread/internal/models"
)

// DefaultKeySource yields the credential to bind at startup.
type DefaultKeySource interface {
	GetDefaultKey(ctx context.Context) (*models.DefaultKey, error)
}

// EngineBinder is implemented by both services.
type EngineBinder interface {
	SetCloudEngine(provider models.CloudProvider, apiKey string) error
	SetEngine(e AIEngine)
}

// BindDefault binds the default credential to every binder. With no stored
// key the binders are unbound and the empty provider is returned. On error
// every binder is unbound as well, so no previously bound key stays in use.
func BindDefault(ctx context.Context, keys DefaultKeySource, binders ...EngineBinder) (models.CloudProvider, error) {
	def, err := keys.GetDefaultKey(ctx)
	if err != nil {
		unbind(binders)
		return "", fmt.Errorf("failed to load default key: %w", err)
	}

	if def == nil {
		unbind(binders)
		log.Info().Msg("No API key configured")
		return "", nil
	}

	for _, b := range binders {
		if err := b.SetCloudEngine(def.Provider, def.APIKey); err != nil {
			unbind(binders)
			return "", fmt.Errorf("failed to bind %s engine: %w", def.Provider, err)
		}
	}

	log.Info().Str("provider", string(def.Provider)).Msg("Default engine bound")
	return def.Provider, nil
}

func unbind(binders []EngineBinder) {
	for _, b := range binders {
		b.SetEngine(nil)
	}
}
