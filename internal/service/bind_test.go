package service

import (
	"context"
	"errors"
	"testing"

	"github.com/smartread/smartread/internal/models"
)

type staticKeys struct {
	key *models.DefaultKey
	err error
}

func (s staticKeys) GetDefaultKey(ctx context.Context) (*models.DefaultKey, error) {
	return s.key, s.err
}

func TestBindDefault(t *testing.T) {
	simplify := NewSimplifyService(nil)
	explain := NewExplainService(nil)

	provider, err := BindDefault(context.Background(),
		staticKeys{key: &models.DefaultKey{Provider: models.ProviderMoonshot, APIKey: "sk-moon"}},
		simplify, explain)
	if err != nil {
		t.Fatalf("BindDefault: %v", err)
	}
	if provider != models.ProviderMoonshot {
		t.Errorf("provider = %s", provider)
	}
	for _, e := range []AIEngine{simplify.Engine(), explain.Engine()} {
		if e == nil || e.Provider() != models.ProviderMoonshot || !e.IsAvailable() {
			t.Errorf("engine = %v", e)
		}
	}

	provider, err = BindDefault(context.Background(), staticKeys{}, simplify, explain)
	if err != nil || provider != "" {
		t.Fatalf("BindDefault with no key = %q, %v", provider, err)
	}
	if simplify.Engine() != nil || explain.Engine() != nil {
		t.Error("engines should be unbound when no key exists")
	}
}

func TestBindDefaultError(t *testing.T) {
	simplify := NewSimplifyService(nil)
	explain := NewExplainService(nil)
	simplify.SetEngine(&fakeEngine{provider: models.ProviderGPT4, available: true})
	explain.SetEngine(&fakeEngine{provider: models.ProviderGPT4, available: true})

	boom := errors.New("store down")
	_, err := BindDefault(context.Background(), staticKeys{err: boom}, simplify, explain)
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped store error", err)
	}
	if simplify.Engine() != nil || explain.Engine() != nil {
		t.Error("engines should be unbound when the default key cannot be loaded")
	}
	if _, err := simplify.Simplify(context.Background(), "text"); models.ErrorTypeOf(err) != models.ErrNoAPIKey {
		t.Errorf("simplify after failed bind = %v", err)
	}
}

func TestBindDefaultUnknownProviderUnbinds(t *testing.T) {
	simplify := NewSimplifyService(nil)
	simplify.SetEngine(&fakeEngine{provider: models.ProviderGPT4, available: true})

	_, err := BindDefault(context.Background(),
		staticKeys{key: &models.DefaultKey{Provider: "bard", APIKey: "x"}}, simplify)
	if err == nil {
		t.Fatal("expected bind error for unknown provider")
	}
	if simplify.Engine() != nil {
		t.Error("engine should be unbound after a failed bind")
	}
}
