package bill

import (
	"context"
	"time"

	"github.com/danny-ell77/clustr-be-sub003/internal/types"
)

// Repository defines the interface for bill persistence operations
type Repository interface {
	Create(ctx context.Context, b *Bill) error
	Get(ctx context.Context, id string) (*Bill, error)
	GetByNumber(ctx context.Context, number string) (*Bill, error)
	Update(ctx context.Context, b *Bill) error
	List(ctx context.Context, filter *types.BillFilter) ([]*Bill, error)
	Count(ctx context.Context, filter *types.BillFilter) (int, error)
	// ListOverdueCandidates returns bills in a payable, unpaid status
	// whose due date is before the given time.
	ListOverdueCandidates(ctx context.Context, before time.Time) ([]*Bill, error)
	// ListDueBetween returns unpaid bills due inside the window,
	// used for payment reminders.
	ListDueBetween(ctx context.Context, start, end time.Time) ([]*Bill, error)
}
