package testutil

import (
	"context"
	"time"

	"github.com/danny-ell77/clustr-be-sub003/internal/cache"
	"github.com/danny-ell77/clustr-be-sub003/internal/config"
	"github.com/danny-ell77/clustr-be-sub003/internal/domain/bill"
	"github.com/danny-ell77/clustr-be-sub003/internal/domain/paymenterror"
	"github.com/danny-ell77/clustr-be-sub003/internal/domain/recurringpayment"
	"github.com/danny-ell77/clustr-be-sub003/internal/domain/transaction"
	"github.com/danny-ell77/clustr-be-sub003/internal/domain/wallet"
	"github.com/danny-ell77/clustr-be-sub003/internal/gateway"
	"github.com/danny-ell77/clustr-be-sub003/internal/logger"
	"github.com/danny-ell77/clustr-be-sub003/internal/postgres"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	WalletRepo           wallet.Repository
	TransactionRepo      transaction.Repository
	BillRepo             bill.Repository
	RecurringPaymentRepo recurringpayment.Repository
	PaymentErrorRepo     paymenterror.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	stores   Stores
	db       postgres.IClient
	cache    cache.Cache
	logger   *logger.Logger
	config   *config.Configuration
	provider *MockGatewayProvider
	factory  *gateway.Factory
	notifier *MockNotifier
	now      time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	var err error
	s.config = config.GetDefaultConfig()
	s.logger, err = logger.NewLogger(types.LogLevelInfo)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
	s.cache = cache.NewInMemoryCache()
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.ClearStores()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		WalletRepo:           NewInMemoryWalletStore(),
		TransactionRepo:      NewInMemoryTransactionStore(),
		BillRepo:             NewInMemoryBillStore(),
		RecurringPaymentRepo: NewInMemoryRecurringPaymentStore(),
		PaymentErrorRepo:     NewInMemoryPaymentErrorStore(),
	}

	s.db = NewMockPostgresClient(s.logger)
	s.provider = NewMockGatewayProvider(types.PaymentProviderPaystack)
	s.factory = gateway.NewFactory(types.PaymentProviderPaystack)
	s.factory.Register(s.provider)
	s.notifier = NewMockNotifier()
}

// ClearStores resets every store between tests
func (s *BaseServiceTestSuite) ClearStores() {
	s.stores.WalletRepo.(*InMemoryWalletStore).Clear()
	s.stores.TransactionRepo.(*InMemoryTransactionStore).Clear()
	s.stores.BillRepo.(*InMemoryBillStore).Clear()
	s.stores.RecurringPaymentRepo.(*InMemoryRecurringPaymentStore).Clear()
	s.stores.PaymentErrorRepo.(*InMemoryPaymentErrorStore).Clear()
	s.notifier.Clear()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetDB returns the test database client
func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetCache returns the test cache
func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

// GetProvider returns the mock gateway provider
func (s *BaseServiceTestSuite) GetProvider() *MockGatewayProvider {
	return s.provider
}

// GetGatewayFactory returns the gateway factory wired with the mock provider
func (s *BaseServiceTestSuite) GetGatewayFactory() *gateway.Factory {
	return s.factory
}

// GetNotifier returns the mock notifier
func (s *BaseServiceTestSuite) GetNotifier() *MockNotifier {
	return s.notifier
}

// GetNow returns the timestamp captured at test setup
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
