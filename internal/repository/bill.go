package repository

import (
	"context"
	"time"

	"github.com/danny-ell77/clustr-be-sub003/internal/domain/bill"
	"github.com/danny-ell77/clustr-be-sub003/internal/logger"
	"github.com/danny-ell77/clustr-be-sub003/internal/postgres"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/samber/lo"
)

type billRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

// NewBillRepository creates a postgres-backed bill repository
func NewBillRepository(client postgres.IClient, logger *logger.Logger) bill.Repository {
	return &billRepository{client: client, logger: logger}
}

const billColumns = `id, bill_number, cluster_id, user_id, type, title, description, amount,
	paid_amount, currency, bill_status, due_date, paid_at, dispute_reason, recurring_payment_id,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *billRepository) Create(ctx context.Context, b *bill.Bill) error {
	r.logger.Debugw("creating bill", "bill_id", b.ID, "cluster_id", b.ClusterID, "amount", b.Amount)

	query := `INSERT INTO bills (` + billColumns + `) VALUES (
		:id, :bill_number, :cluster_id, :user_id, :type, :title, :description, :amount,
		:paid_amount, :currency, :bill_status, :due_date, :paid_at, :dispute_reason, :recurring_payment_id,
		:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`

	_, err := r.client.Querier(ctx).NamedExecContext(ctx, query, b)
	return checkDBError(err, "bill")
}

func (r *billRepository) getBy(ctx context.Context, column, value string) (*bill.Bill, error) {
	var b bill.Bill
	query := `SELECT ` + billColumns + ` FROM bills
		WHERE ` + column + ` = $1 AND tenant_id = $2 AND status != $3`
	err := r.client.Querier(ctx).GetContext(ctx, &b, query, value, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, checkDBError(err, "bill")
	}
	return &b, nil
}

func (r *billRepository) Get(ctx context.Context, id string) (*bill.Bill, error) {
	return r.getBy(ctx, "id", id)
}

func (r *billRepository) GetByNumber(ctx context.Context, number string) (*bill.Bill, error) {
	return r.getBy(ctx, "bill_number", number)
}

func (r *billRepository) Update(ctx context.Context, b *bill.Bill) error {
	query := `UPDATE bills SET
		title = :title, description = :description, amount = :amount, paid_amount = :paid_amount,
		bill_status = :bill_status, due_date = :due_date, paid_at = :paid_at,
		dispute_reason = :dispute_reason, updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id AND tenant_id = :tenant_id`

	res, err := r.client.Querier(ctx).NamedExecContext(ctx, query, b)
	if err != nil {
		return checkDBError(err, "bill")
	}
	return checkRowsAffected(res, "bill")
}

func (r *billRepository) buildWhere(ctx context.Context, filter *types.BillFilter) *queryBuilder {
	qb := newQueryBuilder().
		Where("tenant_id = ?", types.GetTenantID(ctx)).
		Where("status != ?", types.StatusDeleted)

	if filter == nil {
		return qb
	}
	if filter.ClusterID != "" {
		qb.Where("cluster_id = ?", filter.ClusterID)
	}
	if filter.UserID != "" {
		qb.Where("user_id = ?", filter.UserID)
	}
	if filter.BillStatus != nil {
		qb.Where("bill_status = ?", *filter.BillStatus)
	}
	if filter.Type != nil {
		qb.Where("type = ?", *filter.Type)
	}
	if filter.DueBefore != nil {
		qb.Where("due_date < ?", *filter.DueBefore)
	}
	if filter.DueAfter != nil {
		qb.Where("due_date > ?", *filter.DueAfter)
	}
	if filter.TimeRangeFilter != nil {
		if filter.StartTime != nil {
			qb.Where("created_at >= ?", *filter.StartTime)
		}
		if filter.EndTime != nil {
			qb.Where("created_at <= ?", *filter.EndTime)
		}
	}
	return qb
}

func (r *billRepository) List(ctx context.Context, filter *types.BillFilter) ([]*bill.Bill, error) {
	qb := r.buildWhere(ctx, filter)

	var qf *types.QueryFilter
	if filter != nil {
		qf = filter.QueryFilter
	}

	args := qb.Args()
	query := `SELECT ` + billColumns + ` FROM bills` +
		qb.WhereClause() + orderByClause(qf) + paginationClause(qf, &args)

	bills := make([]*bill.Bill, 0)
	if err := r.client.Querier(ctx).SelectContext(ctx, &bills, query, args...); err != nil {
		return nil, checkDBError(err, "bill")
	}
	return bills, nil
}

func (r *billRepository) Count(ctx context.Context, filter *types.BillFilter) (int, error) {
	qb := r.buildWhere(ctx, filter)

	var count int
	query := `SELECT COUNT(*) FROM bills` + qb.WhereClause()
	if err := r.client.Querier(ctx).GetContext(ctx, &count, query, qb.Args()...); err != nil {
		return 0, checkDBError(err, "bill")
	}
	return count, nil
}

// payableUnpaidStatuses are the bill statuses a due-date sweep cares
// about.
var payableUnpaidStatuses = []types.BillStatus{
	types.BillStatusPending,
	types.BillStatusAcknowledged,
	types.BillStatusPartiallyPaid,
	types.BillStatusOverdue,
}

func (r *billRepository) ListOverdueCandidates(ctx context.Context, before time.Time) ([]*bill.Bill, error) {
	qb := newQueryBuilder().
		Where("tenant_id = ?", types.GetTenantID(ctx)).
		Where("status != ?", types.StatusDeleted).
		Where("due_date < ?", before).
		WhereIn("bill_status", []string{
			string(types.BillStatusPending),
			string(types.BillStatusAcknowledged),
			string(types.BillStatusPartiallyPaid),
		})

	query := `SELECT ` + billColumns + ` FROM bills` + qb.WhereClause() + ` ORDER BY due_date ASC`

	bills := make([]*bill.Bill, 0)
	if err := r.client.Querier(ctx).SelectContext(ctx, &bills, query, qb.Args()...); err != nil {
		return nil, checkDBError(err, "bill")
	}
	return bills, nil
}

func (r *billRepository) ListDueBetween(ctx context.Context, start, end time.Time) ([]*bill.Bill, error) {
	qb := newQueryBuilder().
		Where("tenant_id = ?", types.GetTenantID(ctx)).
		Where("status != ?", types.StatusDeleted).
		Where("due_date >= ?", start).
		Where("due_date <= ?", end).
		WhereIn("bill_status", lo.Map(payableUnpaidStatuses, func(s types.BillStatus, _ int) string {
			return string(s)
		}))

	query := `SELECT ` + billColumns + ` FROM bills` + qb.WhereClause() + ` ORDER BY due_date ASC`

	bills := make([]*bill.Bill, 0)
	if err := r.client.Querier(ctx).SelectContext(ctx, &bills, query, qb.Args()...); err != nil {
		return nil, checkDBError(err, "bill")
	}
	return bills, nil
}
