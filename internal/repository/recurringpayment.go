package repository

import (
	"context"
	"time"

	"github.com/danny-ell77/clustr-be-sub003/internal/domain/recurringpayment"
	"github.com/danny-ell77/clustr-be-sub003/internal/logger"
	"github.com/danny-ell77/clustr-be-sub003/internal/postgres"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
)

type recurringPaymentRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

// NewRecurringPaymentRepository creates a postgres-backed recurring payment repository
func NewRecurringPaymentRepository(client postgres.IClient, logger *logger.Logger) recurringpayment.Repository {
	return &recurringPaymentRepository{client: client, logger: logger}
}

const recurringPaymentColumns = `id, wallet_id, cluster_id, title, description, amount, currency,
	frequency, rp_status, next_payment_date, end_date, failed_attempts, max_failed_attempts,
	last_payment_at, tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *recurringPaymentRepository) Create(ctx context.Context, rp *recurringpayment.RecurringPayment) error {
	r.logger.Debugw("creating recurring payment", "recurring_payment_id", rp.ID, "wallet_id", rp.WalletID)

	query := `INSERT INTO recurring_payments (` + recurringPaymentColumns + `) VALUES (
		:id, :wallet_id, :cluster_id, :title, :description, :amount, :currency,
		:frequency, :rp_status, :next_payment_date, :end_date, :failed_attempts, :max_failed_attempts,
		:last_payment_at, :tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`

	_, err := r.client.Querier(ctx).NamedExecContext(ctx, query, rp)
	return checkDBError(err, "recurring payment")
}

func (r *recurringPaymentRepository) Get(ctx context.Context, id string) (*recurringpayment.RecurringPayment, error) {
	var rp recurringpayment.RecurringPayment
	query := `SELECT ` + recurringPaymentColumns + ` FROM recurring_payments
		WHERE id = $1 AND tenant_id = $2 AND status != $3`
	err := r.client.Querier(ctx).GetContext(ctx, &rp, query, id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, checkDBError(err, "recurring payment")
	}
	return &rp, nil
}

func (r *recurringPaymentRepository) Update(ctx context.Context, rp *recurringpayment.RecurringPayment) error {
	query := `UPDATE recurring_payments SET
		title = :title, description = :description, amount = :amount, rp_status = :rp_status,
		next_payment_date = :next_payment_date, end_date = :end_date,
		failed_attempts = :failed_attempts, max_failed_attempts = :max_failed_attempts,
		last_payment_at = :last_payment_at, updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id AND tenant_id = :tenant_id`

	res, err := r.client.Querier(ctx).NamedExecContext(ctx, query, rp)
	if err != nil {
		return checkDBError(err, "recurring payment")
	}
	return checkRowsAffected(res, "recurring payment")
}

func (r *recurringPaymentRepository) List(ctx context.Context, filter *types.RecurringPaymentFilter) ([]*recurringpayment.RecurringPayment, error) {
	qb := newQueryBuilder().
		Where("tenant_id = ?", types.GetTenantID(ctx)).
		Where("status != ?", types.StatusDeleted)

	var qf *types.QueryFilter
	if filter != nil {
		qf = filter.QueryFilter
		if filter.WalletID != "" {
			qb.Where("wallet_id = ?", filter.WalletID)
		}
		if filter.ClusterID != "" {
			qb.Where("cluster_id = ?", filter.ClusterID)
		}
		if filter.RPStatus != nil {
			qb.Where("rp_status = ?", *filter.RPStatus)
		}
		if filter.DueBefore != nil {
			qb.Where("next_payment_date < ?", *filter.DueBefore)
		}
	}

	args := qb.Args()
	query := `SELECT ` + recurringPaymentColumns + ` FROM recurring_payments` +
		qb.WhereClause() + orderByClause(qf) + paginationClause(qf, &args)

	schedules := make([]*recurringpayment.RecurringPayment, 0)
	if err := r.client.Querier(ctx).SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, checkDBError(err, "recurring payment")
	}
	return schedules, nil
}

func (r *recurringPaymentRepository) ListDue(ctx context.Context, now time.Time) ([]*recurringpayment.RecurringPayment, error) {
	qb := newQueryBuilder().
		Where("tenant_id = ?", types.GetTenantID(ctx)).
		Where("status != ?", types.StatusDeleted).
		Where("rp_status = ?", types.RecurringPaymentStatusActive).
		Where("next_payment_date <= ?", now)

	query := `SELECT ` + recurringPaymentColumns + ` FROM recurring_payments` +
		qb.WhereClause() + ` ORDER BY next_payment_date ASC`

	schedules := make([]*recurringpayment.RecurringPayment, 0)
	if err := r.client.Querier(ctx).SelectContext(ctx, &schedules, query, qb.Args()...); err != nil {
		return nil, checkDBError(err, "recurring payment")
	}
	return schedules, nil
}

func (r *recurringPaymentRepository) ListDueBetween(ctx context.Context, start, end time.Time) ([]*recurringpayment.RecurringPayment, error) {
	qb := newQueryBuilder().
		Where("tenant_id = ?", types.GetTenantID(ctx)).
		Where("status != ?", types.StatusDeleted).
		Where("rp_status = ?", types.RecurringPaymentStatusActive).
		Where("next_payment_date >= ?", start).
		Where("next_payment_date <= ?", end)

	query := `SELECT ` + recurringPaymentColumns + ` FROM recurring_payments` +
		qb.WhereClause() + ` ORDER BY next_payment_date ASC`

	schedules := make([]*recurringpayment.RecurringPayment, 0)
	if err := r.client.Querier(ctx).SelectContext(ctx, &schedules, query, qb.Args()...); err != nil {
		return nil, checkDBError(err, "recurring payment")
	}
	return schedules, nil
}
