package idempotency

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateKeyIsDeterministic(t *testing.T) {
	g := NewGenerator()

	a := g.GenerateKey(ScopeRecurringCharge, map[string]interface{}{
		"recurring_payment_id": "rp-1",
		"due_date":             "2026-09-01T00:00:00Z",
	})
	b := g.GenerateKey(ScopeRecurringCharge, map[string]interface{}{
		"due_date":             "2026-09-01T00:00:00Z",
		"recurring_payment_id": "rp-1",
	})
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, string(ScopeRecurringCharge)+"-"))
}

func TestGenerateKeyVariesByInput(t *testing.T) {
	g := NewGenerator()
	params := map[string]interface{}{"recurring_payment_id": "rp-1", "due_date": "2026-09-01"}

	base := g.GenerateKey(ScopeRecurringCharge, params)

	// A different occurrence of the same schedule is a different key
	other := g.GenerateKey(ScopeRecurringCharge, map[string]interface{}{
		"recurring_payment_id": "rp-1",
		"due_date":             "2026-10-01",
	})
	assert.NotEqual(t, base, other)

	// The same parameters in a different scope never collide
	crossScope := g.GenerateKey(ScopeBillPayment, params)
	assert.NotEqual(t, base, crossScope)
}

func TestValidateKey(t *testing.T) {
	g := NewGenerator()
	params := map[string]interface{}{"bill_id": "bill-1", "amount": "500"}

	key := g.GenerateKey(ScopeBillPayment, params)
	assert.True(t, g.ValidateKey(ScopeBillPayment, params, key))
	assert.False(t, g.ValidateKey(ScopeBillPayment, map[string]interface{}{"bill_id": "bill-2", "amount": "500"}, key))
	assert.False(t, g.ValidateKey(ScopeTreasuryCredit, params, key))
}
