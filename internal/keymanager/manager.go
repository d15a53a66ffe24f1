// Package keymanager stores provider API keys encrypted under the device
// fingerprint and checks candidate keys against the live provider.
package keymanager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/smartread/smartread/internal/config"
	"github.com/smartread/smartread/internal/crypto"
	"github.com/smartread/smartread/internal/database"
	"github.com/smartread/smartread/internal/models"
)

// StorageKey names the single record holding the ordered credential list.
const StorageKey = "smartread_api_keys"

var (
	// ErrKeyNotFound is returned when no key is stored for a provider.
	ErrKeyNotFound = errors.New("API key not found")
	// ErrUnknownProvider is returned for provider names outside the supported set.
	ErrUnknownProvider = errors.New("unknown provider")
)

// Cipher seals secrets for storage.
type Cipher interface {
	Encrypt(plaintext string) (crypto.Sealed, error)
	Decrypt(ciphertext, iv string) (string, error)
}

// Manager reads and writes the credential list. Writes are
// read-modify-write on one record without locking; the last writer wins.
type Manager struct {
	store  database.Store
	cipher Cipher
	llm    config.LLMConfig
}

// New creates a key manager.
func New(store database.Store, cipher Cipher, llmCfg *config.LLMConfig) *Manager {
	m := &Manager{
		store:  store,
		cipher: cipher,
		llm:    config.DefaultLLMConfig(),
	}
	if llmCfg != nil {
		m.llm = *llmCfg
	}
	return m
}

// SaveKey encrypts and upserts the key for cfg.Provider. When cfg.IsDefault
// is set every other record loses its default flag.
func (m *Manager) SaveKey(ctx context.Context, cfg models.APIKeyConfig) error {
	if err := checkProvider(cfg.Provider); err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	sealed, err := m.cipher.Encrypt(cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to save API key: %w", err)
	}

	keys, err := m.load(ctx)
	if err != nil {
		return fmt.Errorf("failed to save API key: %w", err)
	}

	if cfg.IsDefault {
		for i := range keys {
			keys[i].IsDefault = false
		}
	}

	record := models.EncryptedAPIKey{
		Provider:     cfg.Provider,
		EncryptedKey: sealed.Ciphertext,
		IV:           sealed.IV,
		IsDefault:    cfg.IsDefault,
	}

	replaced := false
	for i := range keys {
		if keys[i].Provider == cfg.Provider {
			keys[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		keys = append(keys, record)
	}

	if err := m.save(ctx, keys); err != nil {
		return fmt.Errorf("failed to save API key: %w", err)
	}

	log.Info().
		Str("provider", string(cfg.Provider)).
		Bool("is_default", cfg.IsDefault).
		Msg("API key saved")
	return nil
}

// GetKey returns the plaintext key for provider, or ErrKeyNotFound.
func (m *Manager) GetKey(ctx context.Context, provider models.CloudProvider) (string, error) {
	keys, err := m.load(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get API key: %w", err)
	}

	for _, k := range keys {
		if k.Provider == provider {
			plaintext, err := m.cipher.Decrypt(k.EncryptedKey, k.IV)
			if err != nil {
				return "", fmt.Errorf("failed to get API key: %w", err)
			}
			return plaintext, nil
		}
	}
	return "", ErrKeyNotFound
}

// GetDefaultKey returns the record flagged default. When none is flagged the
// first stored record is used. It returns nil, nil when nothing is stored.
func (m *Manager) GetDefaultKey(ctx context.Context) (*models.DefaultKey, error) {
	keys, err := m.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get default key: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	chosen := keys[0]
	for _, k := range keys {
		if k.IsDefault {
			chosen = k
			break
		}
	}

	plaintext, err := m.cipher.Decrypt(chosen.EncryptedKey, chosen.IV)
	if err != nil {
		return nil, fmt.Errorf("failed to get default key: %w", err)
	}

	return &models.DefaultKey{Provider: chosen.Provider, APIKey: plaintext}, nil
}

// DeleteKey removes the record for provider. No other record is promoted.
func (m *Manager) DeleteKey(ctx context.Context, provider models.CloudProvider) error {
	keys, err := m.load(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete API key: %w", err)
	}

	kept := keys[:0]
	for _, k := range keys {
		if k.Provider != provider {
			kept = append(kept, k)
		}
	}

	if err := m.save(ctx, kept); err != nil {
		return fmt.Errorf("failed to delete API key: %w", err)
	}

	log.Info().Str("provider", string(provider)).Msg("API key deleted")
	return nil
}

// HasAnyKey reports whether at least one key is stored.
func (m *Manager) HasAnyKey(ctx context.Context) (bool, error) {
	keys, err := m.load(ctx)
	if err != nil {
		return false, err
	}
	return len(keys) > 0, nil
}

// GetProviders lists stored providers in storage order without decrypting.
func (m *Manager) GetProviders(ctx context.Context) ([]models.ProviderInfo, error) {
	keys, err := m.load(ctx)
	if err != nil {
		return nil, err
	}

	providers := make([]models.ProviderInfo, len(keys))
	for i, k := range keys {
		providers[i] = models.ProviderInfo{Provider: k.Provider, IsDefault: k.IsDefault}
	}
	return providers, nil
}

func (m *Manager) load(ctx context.Context) ([]models.EncryptedAPIKey, error) {
	raw, err := m.store.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read key store: %w", err)
	}
	if raw == nil {
		return []models.EncryptedAPIKey{}, nil
	}

	var keys []models.EncryptedAPIKey
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, fmt.Errorf("failed to decode key store: %w", err)
	}
	return keys, nil
}

func (m *Manager) save(ctx context.Context, keys []models.EncryptedAPIKey) error {
	if keys == nil {
		keys = []models.EncryptedAPIKey{}
	}
	data, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("failed to encode key store: %w", err)
	}
	if err := m.store.Set(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("failed to write key store: %w", err)
	}
	return nil
}

func checkProvider(p models.CloudProvider) error {
	if _, err := models.ParseProvider(string(p)); err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownProvider, p)
	}
	return nil
}
