package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"yield-ledger/internal/services"
)

type InvestmentHandler struct {
	svc *services.Services
}

func NewInvestmentHandler(svc *services.Services) *InvestmentHandler {
	return &InvestmentHandler{svc: svc}
}

// GetInvestments lists the caller's investments. Reading recomputes accrual
// and pays out anything that has matured.
func (h *InvestmentHandler) GetInvestments(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	invs, err := h.svc.Investments.List(c.Request.Context(), userID)
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

func (h *InvestmentHandler) GetInvestment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	inv, err := h.svc.Investments.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, inv)
}

func (h *InvestmentHandler) GetPortfolio(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	portfolio, err := h.svc.Investments.Portfolio(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, portfolio)
}

type createInvestmentRequest struct {
	CryptoID uint            `json:"cryptoId" binding:"required"`
	PlanID   uint            `json:"planId" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
}

// CreateInvestment debits the wallet and opens an investment on the plan's terms.
func (h *InvestmentHandler) CreateInvestment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	inv, err := h.svc.Investments.Create(c.Request.Context(), userID, services.CreateInvestmentInput{
		CryptoID: req.CryptoID,
		PlanID:   req.PlanID,
		Amount:   req.Amount,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, inv)
}

// SellInvestment closes an active investment early at its current value.
func (h *InvestmentHandler) SellInvestment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	inv, err := h.svc.Investments.Sell(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, inv)
}

// GetPlans lists the active investment plans.
func (h *InvestmentHandler) GetPlans(c *gin.Context) {
	plans, err := h.svc.Repository().ListActivePlans(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, plans)
}

// GetCryptos lists the active cryptos.
func (h *InvestmentHandler) GetCryptos(c *gin.Context) {
	cryptos, err := h.svc.Repository().ListActiveCryptos(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, cryptos)
}
