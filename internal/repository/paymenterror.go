package repository

import (
	"context"
	"time"

	"github.com/danny-ell77/clustr-be-sub003/internal/domain/paymenterror"
	"github.com/danny-ell77/clustr-be-sub003/internal/logger"
	"github.com/danny-ell77/clustr-be-sub003/internal/postgres"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
)

type paymentErrorRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

// NewPaymentErrorRepository creates a postgres-backed payment error repository
func NewPaymentErrorRepository(client postgres.IClient, logger *logger.Logger) paymenterror.Repository {
	return &paymentErrorRepository{client: client, logger: logger}
}

const paymentErrorColumns = `id, transaction_id, error_type, severity, message, provider_code,
	retry_count, max_retries, next_retry_at, resolved_at, resolution_note,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *paymentErrorRepository) Create(ctx context.Context, e *paymenterror.PaymentError) error {
	r.logger.Debugw("creating payment error", "payment_error_id", e.ID, "error_type", e.ErrorType)

	query := `INSERT INTO payment_errors (` + paymentErrorColumns + `) VALUES (
		:id, :transaction_id, :error_type, :severity, :message, :provider_code,
		:retry_count, :max_retries, :next_retry_at, :resolved_at, :resolution_note,
		:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`

	_, err := r.client.Querier(ctx).NamedExecContext(ctx, query, e)
	return checkDBError(err, "payment error")
}

func (r *paymentErrorRepository) Get(ctx context.Context, id string) (*paymenterror.PaymentError, error) {
	var e paymenterror.PaymentError
	query := `SELECT ` + paymentErrorColumns + ` FROM payment_errors
		WHERE id = $1 AND tenant_id = $2 AND status != $3`
	err := r.client.Querier(ctx).GetContext(ctx, &e, query, id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, checkDBError(err, "payment error")
	}
	return &e, nil
}

func (r *paymentErrorRepository) Update(ctx context.Context, e *paymenterror.PaymentError) error {
	query := `UPDATE payment_errors SET
		error_type = :error_type, severity = :severity, message = :message,
		retry_count = :retry_count, max_retries = :max_retries, next_retry_at = :next_retry_at,
		resolved_at = :resolved_at, resolution_note = :resolution_note,
		updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id AND tenant_id = :tenant_id`

	res, err := r.client.Querier(ctx).NamedExecContext(ctx, query, e)
	if err != nil {
		return checkDBError(err, "payment error")
	}
	return checkRowsAffected(res, "payment error")
}

func (r *paymentErrorRepository) List(ctx context.Context, filter *types.PaymentErrorFilter) ([]*paymenterror.PaymentError, error) {
	qb := newQueryBuilder().
		Where("tenant_id = ?", types.GetTenantID(ctx)).
		Where("status != ?", types.StatusDeleted)

	var qf *types.QueryFilter
	if filter != nil {
		qf = filter.QueryFilter
		if filter.TransactionID != "" {
			qb.Where("transaction_id = ?", filter.TransactionID)
		}
		if filter.ErrorType != nil {
			qb.Where("error_type = ?", *filter.ErrorType)
		}
		if filter.Severity != nil {
			qb.Where("severity = ?", *filter.Severity)
		}
		if filter.Unresolved {
			qb.Where("resolved_at IS NULL")
		}
		if filter.RetryDueBy != nil {
			qb.Where("next_retry_at IS NOT NULL").Where("next_retry_at <= ?", *filter.RetryDueBy)
		}
	}

	args := qb.Args()
	query := `SELECT ` + paymentErrorColumns + ` FROM payment_errors` +
		qb.WhereClause() + orderByClause(qf) + paginationClause(qf, &args)

	errs := make([]*paymenterror.PaymentError, 0)
	if err := r.client.Querier(ctx).SelectContext(ctx, &errs, query, args...); err != nil {
		return nil, checkDBError(err, "payment error")
	}
	return errs, nil
}

func (r *paymentErrorRepository) ListDueRetries(ctx context.Context, now time.Time) ([]*paymenterror.PaymentError, error) {
	qb := newQueryBuilder().
		Where("tenant_id = ?", types.GetTenantID(ctx)).
		Where("status != ?", types.StatusDeleted).
		Where("resolved_at IS NULL").
		Where("next_retry_at IS NOT NULL").
		Where("next_retry_at <= ?", now).
		Where("retry_count < max_retries")

	query := `SELECT ` + paymentErrorColumns + ` FROM payment_errors` +
		qb.WhereClause() + ` ORDER BY next_retry_at ASC`

	errs := make([]*paymenterror.PaymentError, 0)
	if err := r.client.Querier(ctx).SelectContext(ctx, &errs, query, qb.Args()...); err != nil {
		return nil, checkDBError(err, "payment error")
	}
	return errs, nil
}
