package gateway

import (
	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
)

// Factory hands out payment providers by code. Unknown codes fail
// fast; there is no silent default.
type Factory struct {
	providers map[types.PaymentProvider]Provider
	defaultP  types.PaymentProvider
}

// NewFactory creates a factory with the given default provider code
func NewFactory(defaultProvider types.PaymentProvider) *Factory {
	return &Factory{
		providers: make(map[types.PaymentProvider]Provider),
		defaultP:  defaultProvider,
	}
}

// Register adds a provider to the factory
func (f *Factory) Register(p Provider) {
	f.providers[p.ProviderCode()] = p
}

// Get returns the provider for the given code
func (f *Factory) Get(code types.PaymentProvider) (Provider, error) {
	p, ok := f.providers[code]
	if !ok {
		return nil, ierr.NewError("unsupported payment provider").
			WithHintf("Payment provider %s is not supported", code).
			WithReportableDetails(map[string]any{
				"provider": code,
			}).
			Mark(ierr.ErrUnsupportedProvider)
	}
	return p, nil
}

// GetDefault returns the provider configured as default
func (f *Factory) GetDefault() (Provider, error) {
	return f.Get(f.defaultP)
}
