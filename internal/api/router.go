package api

import (
	v1 "github.com/danny-ell77/clustr-be-sub003/internal/api/v1"
	"github.com/danny-ell77/clustr-be-sub003/internal/rest/middleware"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Wallet       *v1.WalletHandler
	Transaction  *v1.TransactionHandler
	Bill         *v1.BillHandler
	Recurring    *v1.RecurringPaymentHandler
	Treasury     *v1.TreasuryHandler
	PaymentError *v1.PaymentErrorHandler
	Webhook      *v1.WebhookHandler
	Jobs         *v1.JobsHandler
}

func NewRouter(handlers Handlers) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.ErrorHandler())

	router.GET("/health", v1.Health)

	// Provider callbacks authenticate with signatures, not tenant headers.
	router.POST("/webhooks/:provider", handlers.Webhook.Receive)

	v1Group := router.Group("/v1")
	v1Group.Use(middleware.TenantContextMiddleware)
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	wallets := router.Group("/wallets")
	{
		wallets.POST("", handlers.Wallet.CreateWallet)
		wallets.GET("/:id", handlers.Wallet.GetWallet)
		wallets.GET("/:id/balance", handlers.Wallet.GetBalance)
		wallets.POST("/:id/deposit", handlers.Transaction.InitiateDeposit)
		wallets.POST("/:id/credit", handlers.Wallet.Credit)
		wallets.POST("/:id/debit", handlers.Wallet.Debit)
		wallets.POST("/:id/suspend", handlers.Wallet.Suspend)
		wallets.POST("/:id/reactivate", handlers.Wallet.Reactivate)
		wallets.POST("/:id/close", handlers.Wallet.Close)
		wallets.PUT("/:id/pin", handlers.Wallet.SetPin)
		wallets.GET("/:id/transactions", handlers.Transaction.GetHistory)
	}

	transactions := router.Group("/transactions")
	{
		transactions.POST("", handlers.Transaction.Create)
		transactions.GET("", handlers.Transaction.List)
		transactions.GET("/:id", handlers.Transaction.Get)
		transactions.POST("/:id/cancel", handlers.Transaction.Cancel)
		transactions.POST("/:id/refund", handlers.Transaction.Refund)
	}

	bills := router.Group("/bills")
	{
		bills.POST("", handlers.Bill.Create)
		bills.GET("", handlers.Bill.List)
		bills.GET("/:id", handlers.Bill.Get)
		bills.POST("/:id/issue", handlers.Bill.Issue)
		bills.POST("/:id/acknowledge", handlers.Bill.Acknowledge)
		bills.POST("/:id/dispute", handlers.Bill.Dispute)
		bills.POST("/:id/resolve-dispute", handlers.Bill.ResolveDispute)
		bills.POST("/:id/cancel", handlers.Bill.Cancel)
		bills.POST("/:id/pay", handlers.Bill.Pay)
	}

	recurring := router.Group("/recurring-payments")
	{
		recurring.POST("", handlers.Recurring.Create)
		recurring.GET("", handlers.Recurring.List)
		recurring.GET("/:id", handlers.Recurring.Get)
		recurring.POST("/:id/pause", handlers.Recurring.Pause)
		recurring.POST("/:id/resume", handlers.Recurring.Resume)
		recurring.POST("/:id/cancel", handlers.Recurring.Cancel)
	}

	clusters := router.Group("/clusters")
	{
		clusters.GET("/:id/bills/summary", handlers.Bill.GetSummary)
		clusters.GET("/:id/treasury", handlers.Treasury.Get)
		clusters.POST("/:id/treasury/credit", handlers.Treasury.ManualCredit)
		clusters.POST("/:id/treasury/transfer", handlers.Treasury.TransferOut)
		clusters.GET("/:id/treasury/revenue", handlers.Treasury.RevenueSummary)
	}

	banks := router.Group("/banks")
	{
		banks.GET("", handlers.Treasury.Banks)
		banks.GET("/resolve", handlers.Treasury.ResolveAccount)
	}

	paymentErrors := router.Group("/payment-errors")
	{
		paymentErrors.GET("", handlers.PaymentError.List)
		paymentErrors.GET("/:id", handlers.PaymentError.Get)
		paymentErrors.POST("/:id/retry", handlers.PaymentError.Retry)
		paymentErrors.POST("/:id/resolve", handlers.PaymentError.Resolve)
		paymentErrors.GET("/:id/recovery-options", handlers.PaymentError.RecoveryOptions)
	}

	jobs := router.Group("/admin/jobs")
	{
		jobs.POST("/overdue-bills", handlers.Jobs.RunOverdueBills)
		jobs.POST("/recurring-due", handlers.Jobs.RunRecurringDue)
		jobs.POST("/payment-retries", handlers.Jobs.RunPaymentRetries)
		jobs.POST("/bill-reminders", handlers.Jobs.RunBillReminders)
	}
}
