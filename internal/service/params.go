package service

import (
	"github.com/danny-ell77/clustr-be-sub003/internal/cache"
	"github.com/danny-ell77/clustr-be-sub003/internal/config"
	"github.com/danny-ell77/clustr-be-sub003/internal/domain/bill"
	"github.com/danny-ell77/clustr-be-sub003/internal/domain/paymenterror"
	"github.com/danny-ell77/clustr-be-sub003/internal/domain/recurringpayment"
	"github.com/danny-ell77/clustr-be-sub003/internal/domain/transaction"
	"github.com/danny-ell77/clustr-be-sub003/internal/domain/wallet"
	"github.com/danny-ell77/clustr-be-sub003/internal/gateway"
	"github.com/danny-ell77/clustr-be-sub003/internal/logger"
	"github.com/danny-ell77/clustr-be-sub003/internal/notification"
	"github.com/danny-ell77/clustr-be-sub003/internal/postgres"
)

// NewServiceParams assembles the common dependency bundle injected
// into every service constructor.
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	cache cache.Cache,
	walletRepo wallet.Repository,
	transactionRepo transaction.Repository,
	billRepo bill.Repository,
	recurringPaymentRepo recurringpayment.Repository,
	paymentErrorRepo paymenterror.Repository,
	gatewayFactory *gateway.Factory,
	notifier notification.Sender,
) ServiceParams {
	return ServiceParams{
		Logger:               logger,
		Config:               config,
		DB:                   db,
		Cache:                cache,
		WalletRepo:           walletRepo,
		TransactionRepo:      transactionRepo,
		BillRepo:             billRepo,
		RecurringPaymentRepo: recurringPaymentRepo,
		PaymentErrorRepo:     paymentErrorRepo,
		GatewayFactory:       gatewayFactory,
		Notifier:             notifier,
	}
}

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient
	Cache  cache.Cache

	// Repositories
	WalletRepo           wallet.Repository
	TransactionRepo      transaction.Repository
	BillRepo             bill.Repository
	RecurringPaymentRepo recurringpayment.Repository
	PaymentErrorRepo     paymenterror.Repository

	// Integrations
	GatewayFactory *gateway.Factory
	Notifier       notification.Sender
}
