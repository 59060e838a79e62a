package repository

import (
	"database/sql"
	"fmt"
	"strings"

	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/lib/pq"
)

const pgUniqueViolation = "23505"

// checkDBError maps database errors onto the error codes the service
// layer branches on.
func checkDBError(err error, entity string) error {
	if err == nil {
		return nil
	}

	if ierr.Is(err, sql.ErrNoRows) {
		return ierr.WithError(err).
			WithHintf("%s not found", entity).
			Mark(ierr.ErrNotFound)
	}

	var pqErr *pq.Error
	if ierr.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
		return ierr.WithError(err).
			WithHintf("%s already exists", entity).
			Mark(ierr.ErrAlreadyExists)
	}

	return ierr.WithError(err).
		WithHintf("Failed to query %s", entity).
		Mark(ierr.ErrDatabase)
}

// checkRowsAffected turns a zero-row update into a not-found error
func checkRowsAffected(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return checkDBError(err, entity)
	}
	if n == 0 {
		return ierr.NewErrorf("%s not found", entity).
			WithHintf("%s not found", entity).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

// queryBuilder accumulates WHERE predicates with positional args
type queryBuilder struct {
	conds []string
	args  []any
}

func newQueryBuilder() *queryBuilder {
	return &queryBuilder{}
}

// Where adds a predicate. Each ? in expr is rewritten to the next
// positional placeholder.
func (b *queryBuilder) Where(expr string, args ...any) *queryBuilder {
	for _, a := range args {
		b.args = append(b.args, a)
		expr = strings.Replace(expr, "?", fmt.Sprintf("$%d", len(b.args)), 1)
	}
	b.conds = append(b.conds, expr)
	return b
}

// WhereIn adds an ANY predicate over a list of values
func (b *queryBuilder) WhereIn(column string, values any) *queryBuilder {
	b.args = append(b.args, pq.Array(values))
	b.conds = append(b.conds, fmt.Sprintf("%s = ANY($%d)", column, len(b.args)))
	return b
}

func (b *queryBuilder) Args() []any {
	return b.args
}

// WhereClause renders the accumulated predicates
func (b *queryBuilder) WhereClause() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

// sortColumns whitelists ORDER BY targets so filter input never
// reaches the SQL text unescaped.
var sortColumns = map[string]struct{}{
	"created_at":        {},
	"updated_at":        {},
	"amount":            {},
	"due_date":          {},
	"next_payment_date": {},
	"next_retry_at":     {},
}

func orderByClause(f *types.QueryFilter) string {
	sort := f.GetSort()
	if _, ok := sortColumns[sort]; !ok {
		sort = "created_at"
	}
	order := "DESC"
	if f.GetOrder() == types.OrderAsc {
		order = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s", sort, order)
}

func paginationClause(f *types.QueryFilter, args *[]any) string {
	clause := ""
	if !f.IsUnlimited() {
		*args = append(*args, f.GetLimit())
		clause += fmt.Sprintf(" LIMIT $%d", len(*args))
	}
	if offset := f.GetOffset(); offset > 0 {
		*args = append(*args, offset)
		clause += fmt.Sprintf(" OFFSET $%d", len(*args))
	}
	return clause
}
