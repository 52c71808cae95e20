package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"yield-ledger/internal/models"
	"yield-ledger/internal/services"
)

const defaultSweepBatch = 100

type AdminHandler struct {
	svc *services.Services
}

func NewAdminHandler(svc *services.Services) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// AdminMiddleware checks if user is admin
func (h *AdminHandler) AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			c.Abort()
			return
		}

		isAdmin, err := h.svc.Admin.IsAdmin(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		if !isAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Not an admin"})
			return
		}

		c.Set("admin_id", userID)
		c.Next()
	}
}

type decisionRequest struct {
	Status     string `json:"status" binding:"required"`
	AdminNotes string `json:"adminNotes"`
}

// ProcessWithdrawal approves, rejects or completes a withdrawal request.
func (h *AdminHandler) ProcessWithdrawal(c *gin.Context) {
	adminID := c.GetUint("admin_id")
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	wr, err := h.svc.Withdrawals.Process(ctx, id, adminID, models.WithdrawalStatus(req.Status), req.AdminNotes)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, wr)
}

// ProcessDeposit approves or rejects a pending deposit.
func (h *AdminHandler) ProcessDeposit(c *gin.Context) {
	adminID := c.GetUint("admin_id")
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	tx, err := h.svc.Deposits.Process(ctx, id, adminID, services.DepositStatus(req.Status), req.AdminNotes)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, tx)
}

type adjustRequest struct {
	Enabled    bool            `json:"enabled"`
	Percentage decimal.Decimal `json:"percentage"`
}

// AdjustInvestment sets a percentage override on an investment.
func (h *AdminHandler) AdjustInvestment(c *gin.Context) {
	adminID := c.GetUint("admin_id")
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	inv, err := h.svc.Admin.AdjustInvestment(c.Request.Context(), adminID, id, req.Enabled, req.Percentage)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, inv)
}

type manualAdjustRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Reason   string          `json:"reason" binding:"required"`
	IsActive *bool           `json:"isActive"`
}

// ManualAdjustInvestment sets the flat earnings offset of an investment.
func (h *AdminHandler) ManualAdjustInvestment(c *gin.Context) {
	adminID := c.GetUint("admin_id")
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req manualAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	inv, err := h.svc.Admin.ManualAdjust(c.Request.Context(), adminID, id, req.Amount, req.Reason, active)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, inv)
}

// GetPlatformStats returns ledger-wide totals.
func (h *AdminHandler) GetPlatformStats(c *gin.Context) {
	stats, err := h.svc.Admin.PlatformStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, stats)
}

// GetAdminLogs returns the most recent audit records.
func (h *AdminHandler) GetAdminLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}

	logs, err := h.svc.Repository().ListAdminLogs(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    logs,
		"count":   len(logs),
	})
}

// GetUnpaidMaturities lists claimed investments with no payout entry.
func (h *AdminHandler) GetUnpaidMaturities(c *gin.Context) {
	invs, err := h.svc.Reconciliation.UnpaidMaturities(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    invs,
		"count":   len(invs),
	})
}

// GetWalletDrift lists wallets whose counters disagree with the journal.
func (h *AdminHandler) GetWalletDrift(c *gin.Context) {
	drift, err := h.svc.Reconciliation.ReconcileAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    drift,
		"count":   len(drift),
	})
}

// SweepMaturities runs one maturity pass over due investments.
func (h *AdminHandler) SweepMaturities(c *gin.Context) {
	adminID := c.GetUint("admin_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultSweepBatch)))
	if limit <= 0 {
		limit = defaultSweepBatch
	}

	paid, err := h.svc.Maturity.SweepDue(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	h.audit(c, adminID, "sweep_maturities", "investment", 0, models.JSONB{"paid": paid})
	respondOK(c, http.StatusOK, gin.H{"paid": paid})
}

// audit records a completed admin action. The action already committed, so a
// failure here is logged rather than returned.
func (h *AdminHandler) audit(c *gin.Context, adminID uint, action, resource string, id uint, details models.JSONB) {
	var resourceID *uint
	if id != 0 {
		resourceID = &id
	}
	if err := h.svc.Admin.LogAdminAction(c.Request.Context(), adminID, action, resource, resourceID, details); err != nil {
		zap.L().Error("Failed to write admin log",
			zap.Uint("admin_id", adminID),
			zap.String("action", action),
			zap.Error(err))
	}
}
