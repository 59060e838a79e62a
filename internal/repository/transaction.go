package repository

import (
	"context"

	"github.com/danny-ell77/clustr-be-sub003/internal/domain/transaction"
	"github.com/danny-ell77/clustr-be-sub003/internal/logger"
	"github.com/danny-ell77/clustr-be-sub003/internal/postgres"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/samber/lo"
)

type transactionRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

// NewTransactionRepository creates a postgres-backed transaction repository
func NewTransactionRepository(client postgres.IClient, logger *logger.Logger) transaction.Repository {
	return &transactionRepository{client: client, logger: logger}
}

const transactionColumns = `id, transaction_number, wallet_id, type, txn_status, amount, currency,
	description, reference, provider_code, idempotency_key, bill_id, metadata, failure_reason,
	completed_at, failed_at, tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *transactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	r.logger.Debugw("creating transaction",
		"transaction_id", t.ID,
		"wallet_id", t.WalletID,
		"type", t.Type,
		"amount", t.Amount,
	)

	query := `INSERT INTO transactions (` + transactionColumns + `) VALUES (
		:id, :transaction_number, :wallet_id, :type, :txn_status, :amount, :currency,
		:description, :reference, :provider_code, :idempotency_key, :bill_id, :metadata, :failure_reason,
		:completed_at, :failed_at, :tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`

	_, err := r.client.Querier(ctx).NamedExecContext(ctx, query, t)
	return checkDBError(err, "transaction")
}

func (r *transactionRepository) getBy(ctx context.Context, column, value string) (*transaction.Transaction, error) {
	var t transaction.Transaction
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE ` + column + ` = $1 AND tenant_id = $2 AND status != $3`
	err := r.client.Querier(ctx).GetContext(ctx, &t, query, value, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, checkDBError(err, "transaction")
	}
	return &t, nil
}

func (r *transactionRepository) Get(ctx context.Context, id string) (*transaction.Transaction, error) {
	return r.getBy(ctx, "id", id)
}

func (r *transactionRepository) GetByNumber(ctx context.Context, number string) (*transaction.Transaction, error) {
	return r.getBy(ctx, "transaction_number", number)
}

func (r *transactionRepository) GetByReference(ctx context.Context, reference string) (*transaction.Transaction, error) {
	return r.getBy(ctx, "reference", reference)
}

func (r *transactionRepository) GetByIdempotencyKey(ctx context.Context, key string) (*transaction.Transaction, error) {
	return r.getBy(ctx, "idempotency_key", key)
}

func (r *transactionRepository) Update(ctx context.Context, t *transaction.Transaction) error {
	query := `UPDATE transactions SET
		txn_status = :txn_status, description = :description, provider_code = :provider_code,
		metadata = :metadata, failure_reason = :failure_reason, completed_at = :completed_at,
		failed_at = :failed_at, updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id AND tenant_id = :tenant_id`

	res, err := r.client.Querier(ctx).NamedExecContext(ctx, query, t)
	if err != nil {
		return checkDBError(err, "transaction")
	}
	return checkRowsAffected(res, "transaction")
}

func (r *transactionRepository) buildWhere(ctx context.Context, filter *types.TransactionFilter) *queryBuilder {
	qb := newQueryBuilder().
		Where("tenant_id = ?", types.GetTenantID(ctx)).
		Where("status != ?", types.StatusDeleted)

	if filter == nil {
		return qb
	}
	if filter.WalletID != "" {
		qb.Where("wallet_id = ?", filter.WalletID)
	}
	if filter.Type != nil {
		qb.Where("type = ?", *filter.Type)
	}
	if filter.TxStatus != nil {
		qb.Where("txn_status = ?", *filter.TxStatus)
	}
	if filter.Provider != nil {
		qb.Where("provider_code = ?", *filter.Provider)
	}
	if len(filter.Types) > 0 {
		qb.WhereIn("type", lo.Map(filter.Types, func(t types.TransactionType, _ int) string {
			return string(t)
		}))
	}
	if len(filter.Statuses) > 0 {
		qb.WhereIn("txn_status", lo.Map(filter.Statuses, func(s types.TransactionStatus, _ int) string {
			return string(s)
		}))
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

func (r *transactionRepository) List(ctx context.Context, filter *types.TransactionFilter) ([]*transaction.Transaction, error) {
	qb := r.buildWhere(ctx, filter)

	var qf *types.QueryFilter
	if filter != nil {
		qf = filter.QueryFilter
	}

	args := qb.Args()
	query := `SELECT ` + transactionColumns + ` FROM transactions` +
		qb.WhereClause() + orderByClause(qf) + paginationClause(qf, &args)

	txns := make([]*transaction.Transaction, 0)
	if err := r.client.Querier(ctx).SelectContext(ctx, &txns, query, args...); err != nil {
		return nil, checkDBError(err, "transaction")
	}
	return txns, nil
}

func (r *transactionRepository) Count(ctx context.Context, filter *types.TransactionFilter) (int, error) {
	qb := r.buildWhere(ctx, filter)

	var count int
	query := `SELECT COUNT(*) FROM transactions` + qb.WhereClause()
	if err := r.client.Querier(ctx).GetContext(ctx, &count, query, qb.Args()...); err != nil {
		return 0, checkDBError(err, "transaction")
	}
	return count, nil
}
