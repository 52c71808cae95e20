package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"yield-ledger/internal/models"
	"yield-ledger/internal/repository"
	"yield-ledger/internal/services"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

type WalletHandler struct {
	svc *services.Services
}

func NewWalletHandler(svc *services.Services) *WalletHandler {
	return &WalletHandler{svc: svc}
}

// GetWallet returns the balance with journal-derived totals.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	snapshot, err := h.svc.Wallet.Snapshot(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, snapshot)
}

type depositRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod" binding:"required"`
}

// Deposit records a pending deposit; the balance moves on admin approval.
func (h *WalletHandler) Deposit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	tx, err := h.svc.Deposits.Request(c.Request.Context(), userID, req.Amount, req.PaymentMethod)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, tx)
}

type withdrawRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	PaymentMethod  string          `json:"paymentMethod" binding:"required"`
	PaymentDetails json.RawMessage `json:"paymentDetails"`
}

// Withdraw holds the amount and opens a pending withdrawal request.
func (h *WalletHandler) Withdraw(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req withdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	method, err := models.ParsePaymentMethod(req.PaymentMethod, req.PaymentDetails)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	wr, err := h.svc.Withdrawals.Create(c.Request.Context(), userID, req.Amount, method)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, wr)
}

// GetTransactions returns the caller's journal, newest first.
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultHistoryLimit)))
	if err != nil || limit <= 0 {
		badRequest(c, "Invalid limit")
		return
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	txs, err := h.svc.Journal.List(c.Request.Context(), repository.TransactionFilter{
		UserID: userID,
		Type:   models.TransactionType(c.Query("type")),
		Status: models.TransactionStatus(c.Query("status")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    txs,
		"count":   len(txs),
	})
}

// GetWithdrawals lists the caller's withdrawal requests.
func (h *WalletHandler) GetWithdrawals(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	requests, err := h.svc.Withdrawals.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, requests)
}
