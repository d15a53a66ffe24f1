package llm

import (
	"context"

	"github.com/smartread/smartread/internal/models"
)

const wenxinUnavailable = "文心一言暂未实现"

// WenxinProvider is the Baidu Wenxin slot. Every call fails until its API
// client is written.
type WenxinProvider struct{}

// NewWenxinProvider creates the placeholder provider. The key is ignored so
// that every call, including validation of an empty key, reports the same
// unavailability.
func NewWenxinProvider(apiKey string) (*WenxinProvider, error) {
	return &WenxinProvider{}, nil
}

func (p *WenxinProvider) Name() models.CloudProvider {
	return models.ProviderWenxin
}

func (p *WenxinProvider) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	return p.CompleteWithSystem(ctx, "", prompt, opts)
}

func (p *WenxinProvider) CompleteWithSystem(ctx context.Context, system, user string, opts CompletionOptions) (string, error) {
	return "", models.NewError(models.ErrUnknown, wenxinUnavailable, nil)
}

func (p *WenxinProvider) Validate(ctx context.Context) error {
	return models.NewError(models.ErrUnknown, wenxinUnavailable, nil)
}
