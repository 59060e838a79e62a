package types

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex wallet_0ujsswThIGTUYm2K8FjOOfXtY1K
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

const (
	// Prefixes for all domains and entities

	UUID_PREFIX_WALLET            = "wallet"
	UUID_PREFIX_TRANSACTION       = "txn"
	UUID_PREFIX_BILL              = "bill"
	UUID_PREFIX_RECURRING_PAYMENT = "rp"
	UUID_PREFIX_PAYMENT_ERROR     = "perr"
)

// Public-facing reference numbers. These are the numbers printed on
// receipts and sent to payment providers, distinct from the internal
// ULID primary keys.
const (
	TransactionNumberPrefix = "TXN-"
	BillNumberPrefix        = "BILL-"
	WalletNumberPrefix      = "WAL-"
)

func randomHex(n int) string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return strings.ToUpper(hex[:n])
}

// GenerateTransactionNumber returns a reference like TXN-1A2B3C4D5E6F
func GenerateTransactionNumber() string {
	return TransactionNumberPrefix + randomHex(12)
}

// GenerateBillNumber returns a reference like BILL-1A2B3C4D
func GenerateBillNumber() string {
	return BillNumberPrefix + randomHex(8)
}

// GenerateWalletNumber returns a reference like WAL-1A2B3C4D
func GenerateWalletNumber() string {
	return WalletNumberPrefix + randomHex(8)
}
