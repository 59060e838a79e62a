package main

import (
	"context"
	"time"

	"github.com/danny-ell77/clustr-be-sub003/internal/api"
	v1 "github.com/danny-ell77/clustr-be-sub003/internal/api/v1"
	"github.com/danny-ell77/clustr-be-sub003/internal/cache"
	"github.com/danny-ell77/clustr-be-sub003/internal/config"
	"github.com/danny-ell77/clustr-be-sub003/internal/gateway"
	"github.com/danny-ell77/clustr-be-sub003/internal/gateway/flutterwave"
	"github.com/danny-ell77/clustr-be-sub003/internal/gateway/paystack"
	"github.com/danny-ell77/clustr-be-sub003/internal/httpclient"
	"github.com/danny-ell77/clustr-be-sub003/internal/logger"
	"github.com/danny-ell77/clustr-be-sub003/internal/notification"
	"github.com/danny-ell77/clustr-be-sub003/internal/postgres"
	"github.com/danny-ell77/clustr-be-sub003/internal/repository"
	"github.com/danny-ell77/clustr-be-sub003/internal/service"
	"github.com/danny-ell77/clustr-be-sub003/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/fx"
)

// @title Clustr Wallet & Billing API
// @version 1.0
// @description Wallet, billing and payment engine for estate clusters
// @BasePath /v1
// @schemes http https

func init() {
	// All timestamps are stored and compared in UTC
	time.Local = time.UTC
}

func main() {
	app := fx.New(
		fx.Provide(
			config.NewConfig,
			provideLogger,
			postgres.NewDB,
			provideDBClient,
			cache.NewInMemoryCache,
			httpclient.NewDefaultClient,
			provideGatewayFactory,
			provideNotifier,

			repository.NewWalletRepository,
			repository.NewTransactionRepository,
			repository.NewBillRepository,
			repository.NewRecurringPaymentRepository,
			repository.NewPaymentErrorRepository,

			service.NewServiceParams,
			service.NewWalletService,
			service.NewTransactionService,
			service.NewBillService,
			service.NewRecurringPaymentService,
			service.NewTreasuryService,
			service.NewPaymentErrorService,
			service.NewWebhookService,

			provideHandlers,
			provideRouter,
		),
		fx.Invoke(start),
	)
	app.Run()
}

func provideLogger(cfg *config.Configuration) (*logger.Logger, error) {
	return logger.NewLogger(cfg.Logging.Level)
}

func provideDBClient(db *sqlx.DB, log *logger.Logger) postgres.IClient {
	return postgres.NewClient(db, log)
}

func provideGatewayFactory(cfg *config.Configuration, http httpclient.Client, log *logger.Logger) *gateway.Factory {
	factory := gateway.NewFactory(cfg.Payment.DefaultProvider)
	factory.Register(paystack.NewClient(cfg.Payment.Paystack.SecretKey, http, log))
	factory.Register(flutterwave.NewClient(cfg.Payment.Flutterwave.SecretKey, cfg.Payment.Flutterwave.SecretHash, http, log))
	return factory
}

func provideNotifier(log *logger.Logger) notification.Sender {
	return notification.NewLogSender(log)
}

func provideHandlers(
	log *logger.Logger,
	walletService service.WalletService,
	transactionService service.TransactionService,
	billService service.BillService,
	recurringService service.RecurringPaymentService,
	treasuryService service.TreasuryService,
	paymentErrorService service.PaymentErrorService,
	webhookService service.WebhookService,
) api.Handlers {
	return api.Handlers{
		Wallet:       v1.NewWalletHandler(walletService, log),
		Transaction:  v1.NewTransactionHandler(transactionService, log),
		Bill:         v1.NewBillHandler(billService, log),
		Recurring:    v1.NewRecurringPaymentHandler(recurringService, log),
		Treasury:     v1.NewTreasuryHandler(treasuryService, log),
		PaymentError: v1.NewPaymentErrorHandler(paymentErrorService, log),
		Webhook:      v1.NewWebhookHandler(webhookService, log),
		Jobs:         v1.NewJobsHandler(billService, recurringService, paymentErrorService, log),
	}
}

func provideRouter(handlers api.Handlers) *gin.Engine {
	return api.NewRouter(handlers)
}

func start(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Configuration,
	r *gin.Engine,
	billService service.BillService,
	recurringService service.RecurringPaymentService,
	paymentErrorService service.PaymentErrorService,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeServer
	}

	switch mode {
	case types.ModeServer, types.ModeLocal:
		startAPIServer(lc, r, cfg, log)
	case types.ModeCron:
		runBatchJobs(lc, shutdowner, cfg, billService, recurringService, paymentErrorService, log)
	default:
		log.Fatalf("unknown deployment mode: %s", mode)
	}
}

func startAPIServer(lc fx.Lifecycle, r *gin.Engine, cfg *config.Configuration, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting API server", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server")
			return nil
		},
	})
}

// runBatchJobs executes each scheduled job once and exits. Deployed as
// a cron container alongside the API server.
func runBatchJobs(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Configuration,
	billService service.BillService,
	recurringService service.RecurringPaymentService,
	paymentErrorService service.PaymentErrorService,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				tenantID := cfg.Deployment.CronTenantID
				if tenantID == "" {
					tenantID = types.DefaultTenantID
				}
				jobCtx := types.SetTenantID(context.Background(), tenantID)
				now := time.Now().UTC()

				if result, err := billService.CheckAndUpdateOverdue(jobCtx); err != nil {
					log.Errorw("overdue bill sweep failed", "error", err)
				} else {
					log.Infow("overdue bill sweep complete", "processed", result.Processed, "succeeded", result.Succeeded)
				}

				if result, err := billService.SendDueReminders(jobCtx); err != nil {
					log.Errorw("bill reminder run failed", "error", err)
				} else {
					log.Infow("bill reminder run complete", "processed", result.Processed)
				}

				if result, err := recurringService.ProcessDue(jobCtx, now); err != nil {
					log.Errorw("recurring payment run failed", "error", err)
				} else {
					log.Infow("recurring payment run complete",
						"processed", result.Processed,
						"succeeded", result.Succeeded,
						"failed", result.Failed,
						"paused", result.Paused,
						"expired", result.Expired)
				}

				if result, err := paymentErrorService.ProcessDueRetries(jobCtx, now); err != nil {
					log.Errorw("payment retry run failed", "error", err)
				} else {
					log.Infow("payment retry run complete", "processed", result.Processed, "succeeded", result.Succeeded)
				}

				if err := shutdowner.Shutdown(); err != nil {
					log.Errorw("shutdown failed", "error", err)
				}
			}()
			return nil
		},
	})
}
