package gateway_test

import (
	"testing"

	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/gateway"
	"github.com/danny-ell77/clustr-be-sub003/internal/testutil"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactoryGet(t *testing.T) {
	factory := gateway.NewFactory(types.PaymentProviderPaystack)
	paystack := testutil.NewMockGatewayProvider(types.PaymentProviderPaystack)
	flutterwave := testutil.NewMockGatewayProvider(types.PaymentProviderFlutterwave)
	factory.Register(paystack)
	factory.Register(flutterwave)

	p, err := factory.Get(types.PaymentProviderFlutterwave)
	require.NoError(t, err)
	assert.Equal(t, types.PaymentProviderFlutterwave, p.ProviderCode())

	_, err = factory.Get(types.PaymentProvider("stripe"))
	require.Error(t, err)
	assert.True(t, ierr.IsUnsupportedProvider(err))
}

func TestFactoryGetDefault(t *testing.T) {
	factory := gateway.NewFactory(types.PaymentProviderPaystack)
	factory.Register(testutil.NewMockGatewayProvider(types.PaymentProviderPaystack))

	p, err := factory.GetDefault()
	require.NoError(t, err)
	assert.Equal(t, types.PaymentProviderPaystack, p.ProviderCode())
}

func TestFactoryGetDefaultUnregistered(t *testing.T) {
	factory := gateway.NewFactory(types.PaymentProviderPaystack)

	_, err := factory.GetDefault()
	require.Error(t, err)
	assert.True(t, ierr.IsUnsupportedProvider(err))
}
