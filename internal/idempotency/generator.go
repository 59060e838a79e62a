package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Scope namespaces generated keys so the same parameters in different
// flows never collide.
type Scope string

const (
	ScopeBillPayment     Scope = "bill_payment"
	ScopeRecurringCharge Scope = "recurring_charge"
	ScopeTreasuryCredit  Scope = "treasury_credit"
)

// Generator derives deterministic idempotency keys from operation
// parameters. The same scope and parameters always produce the same
// key, which lets retried operations replay instead of duplicate.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateKey hashes the scope and sorted parameters into a stable key.
func (g *Generator) GenerateKey(scope Scope, params map[string]interface{}) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(string(scope))
	for _, k := range keys {
		b.WriteString(fmt.Sprintf(":%s=%v", k, params[k]))
	}

	hash := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%s-%s", scope, hex.EncodeToString(hash[:8]))
}

// ValidateKey reports whether key was generated from the given scope
// and parameters.
func (g *Generator) ValidateKey(scope Scope, params map[string]interface{}, key string) bool {
	return g.GenerateKey(scope, params) == key
}
