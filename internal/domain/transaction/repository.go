package transaction

import (
	"context"

	"github.com/danny-ell77/clustr-be-sub003/internal/types"
)

// Repository defines the interface for transaction persistence operations
type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	Get(ctx context.Context, id string) (*Transaction, error)
	GetByNumber(ctx context.Context, number string) (*Transaction, error)
	GetByReference(ctx context.Context, reference string) (*Transaction, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*Transaction, error)
	Update(ctx context.Context, t *Transaction) error
	List(ctx context.Context, filter *types.TransactionFilter) ([]*Transaction, error)
	Count(ctx context.Context, filter *types.TransactionFilter) (int, error)
}
