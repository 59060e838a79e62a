package repository

import (
	"context"
	"time"

	"github.com/danny-ell77/clustr-be-sub003/internal/domain/wallet"
	"github.com/danny-ell77/clustr-be-sub003/internal/logger"
	"github.com/danny-ell77/clustr-be-sub003/internal/postgres"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/shopspring/decimal"
)

type walletRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

// NewWalletRepository creates a postgres-backed wallet repository
func NewWalletRepository(client postgres.IClient, logger *logger.Logger) wallet.Repository {
	return &walletRepository{client: client, logger: logger}
}

const walletColumns = `id, wallet_number, user_id, cluster_id, currency, balance, available_balance,
	wallet_status, pin_hash, tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *walletRepository) Create(ctx context.Context, w *wallet.Wallet) error {
	r.logger.Debugw("creating wallet", "wallet_id", w.ID, "user_id", w.UserID, "cluster_id", w.ClusterID)

	query := `INSERT INTO wallets (` + walletColumns + `) VALUES (
		:id, :wallet_number, :user_id, :cluster_id, :currency, :balance, :available_balance,
		:wallet_status, :pin_hash, :tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`

	_, err := r.client.Querier(ctx).NamedExecContext(ctx, query, w)
	return checkDBError(err, "wallet")
}

func (r *walletRepository) Get(ctx context.Context, id string) (*wallet.Wallet, error) {
	var w wallet.Wallet
	query := `SELECT ` + walletColumns + ` FROM wallets
		WHERE id = $1 AND tenant_id = $2 AND status != $3`
	err := r.client.Querier(ctx).GetContext(ctx, &w, query, id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, checkDBError(err, "wallet")
	}
	return &w, nil
}

func (r *walletRepository) GetForUpdate(ctx context.Context, id string) (*wallet.Wallet, error) {
	var w wallet.Wallet
	query := `SELECT ` + walletColumns + ` FROM wallets
		WHERE id = $1 AND tenant_id = $2 AND status != $3 FOR UPDATE`
	err := r.client.Querier(ctx).GetContext(ctx, &w, query, id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, checkDBError(err, "wallet")
	}
	return &w, nil
}

func (r *walletRepository) GetByUserAndCluster(ctx context.Context, userID, clusterID string) (*wallet.Wallet, error) {
	var w wallet.Wallet
	query := `SELECT ` + walletColumns + ` FROM wallets
		WHERE user_id = $1 AND cluster_id = $2 AND tenant_id = $3 AND status != $4`
	err := r.client.Querier(ctx).GetContext(ctx, &w, query, userID, clusterID, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, checkDBError(err, "wallet")
	}
	return &w, nil
}

func (r *walletRepository) ListByCluster(ctx context.Context, clusterID string) ([]*wallet.Wallet, error) {
	wallets := make([]*wallet.Wallet, 0)
	query := `SELECT ` + walletColumns + ` FROM wallets
		WHERE cluster_id = $1 AND tenant_id = $2 AND status != $3 ORDER BY created_at DESC`
	err := r.client.Querier(ctx).SelectContext(ctx, &wallets, query, clusterID, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, checkDBError(err, "wallet")
	}
	return wallets, nil
}

func (r *walletRepository) UpdateBalance(ctx context.Context, id string, balance, availableBalance decimal.Decimal) error {
	query := `UPDATE wallets SET balance = $1, available_balance = $2, updated_at = $3
		WHERE id = $4 AND tenant_id = $5`
	res, err := r.client.Querier(ctx).ExecContext(ctx, query,
		balance, availableBalance, time.Now().UTC(), id, types.GetTenantID(ctx))
	if err != nil {
		return checkDBError(err, "wallet")
	}
	return checkRowsAffected(res, "wallet")
}

func (r *walletRepository) UpdateStatus(ctx context.Context, id string, status types.WalletStatus) error {
	query := `UPDATE wallets SET wallet_status = $1, updated_at = $2
		WHERE id = $3 AND tenant_id = $4`
	res, err := r.client.Querier(ctx).ExecContext(ctx, query,
		status, time.Now().UTC(), id, types.GetTenantID(ctx))
	if err != nil {
		return checkDBError(err, "wallet")
	}
	return checkRowsAffected(res, "wallet")
}

func (r *walletRepository) UpdatePinHash(ctx context.Context, id string, pinHash string) error {
	query := `UPDATE wallets SET pin_hash = $1, updated_at = $2
		WHERE id = $3 AND tenant_id = $4`
	res, err := r.client.Querier(ctx).ExecContext(ctx, query,
		pinHash, time.Now().UTC(), id, types.GetTenantID(ctx))
	if err != nil {
		return checkDBError(err, "wallet")
	}
	return checkRowsAffected(res, "wallet")
}
