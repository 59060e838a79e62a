package testutil

import (
	"sort"

	"github.com/danny-ell77/clustr-be-sub003/internal/domain/transaction"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
)

// paginate applies the filter's offset and limit to an already sorted
// slice.
func paginate[T any](items []T, f *types.QueryFilter) []T {
	start := f.GetOffset()
	if start >= len(items) {
		return []T{}
	}
	items = items[start:]

	if !f.IsUnlimited() && f.GetLimit() < len(items) {
		items = items[:f.GetLimit()]
	}
	return items
}

func sortTransactions(txns []*transaction.Transaction, filter *types.TransactionFilter) {
	var qf *types.QueryFilter
	if filter != nil {
		qf = filter.QueryFilter
	}
	asc := qf.GetOrder() == types.OrderAsc

	sort.Slice(txns, func(i, j int) bool {
		var less bool
		switch qf.GetSort() {
		case "amount":
			less = txns[i].Amount.LessThan(txns[j].Amount)
		default:
			less = txns[i].CreatedAt.Before(txns[j].CreatedAt)
		}
		if asc {
			return less
		}
		return !less
	})
}
