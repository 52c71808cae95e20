package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"yield-ledger/internal/auth"
	"yield-ledger/internal/services"
)

// RegisterRoutes mounts the ledger API on router. limit guards the routes
// that move funds.
func RegisterRoutes(router *gin.Engine, svc *services.Services, limit gin.HandlerFunc) {
	walletHandler := NewWalletHandler(svc)
	investmentHandler := NewInvestmentHandler(svc)
	referralHandler := NewReferralHandler(svc)
	adminHandler := NewAdminHandler(svc)
	userHandler := NewUserHandler(svc)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Public catalog
	router.GET("/api/plans", investmentHandler.GetPlans)
	router.GET("/api/cryptos", investmentHandler.GetCryptos)

	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		api.GET("/user/profile", userHandler.GetProfile)

		api.GET("/wallet", walletHandler.GetWallet)
		api.GET("/wallet/transactions", walletHandler.GetTransactions)
		api.GET("/wallet/withdrawals", walletHandler.GetWithdrawals)
		api.POST("/wallet/deposit", limit, walletHandler.Deposit)
		api.POST("/wallet/withdraw", limit, walletHandler.Withdraw)

		api.GET("/investments", investmentHandler.GetInvestments)
		api.GET("/investments/portfolio", investmentHandler.GetPortfolio)
		api.GET("/investments/:id", investmentHandler.GetInvestment)
		api.POST("/investments", limit, investmentHandler.CreateInvestment)
		api.PUT("/investments/:id/sell", limit, investmentHandler.SellInvestment)

		api.GET("/referral/code", referralHandler.GetReferralCode)
		api.POST("/referral/apply", referralHandler.ApplyReferralCode)
		api.GET("/referral/stats", referralHandler.GetReferralStats)
		api.GET("/referral/referrals", referralHandler.GetReferrals)
		api.GET("/referral/commissions", referralHandler.GetCommissions)
	}

	// Admin routes (protected + admin only)
	admin := router.Group("/api/admin")
	admin.Use(auth.AuthMiddleware())
	admin.Use(adminHandler.AdminMiddleware())
	{
		admin.GET("/stats", adminHandler.GetPlatformStats)
		admin.GET("/logs", adminHandler.GetAdminLogs)

		admin.PUT("/withdrawal-requests/:id", adminHandler.ProcessWithdrawal)
		admin.PUT("/deposit-requests/:id", adminHandler.ProcessDeposit)
		admin.PUT("/investments/:id/adjust", adminHandler.AdjustInvestment)
		admin.PUT("/investments/:id/manual-adjust", adminHandler.ManualAdjustInvestment)

		admin.GET("/reconciliation/maturities", adminHandler.GetUnpaidMaturities)
		admin.GET("/reconciliation/wallets", adminHandler.GetWalletDrift)
		admin.POST("/maturity/sweep", adminHandler.SweepMaturities)
	}
}
