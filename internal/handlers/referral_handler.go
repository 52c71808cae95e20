package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yield-ledger/internal/services"
)

type ReferralHandler struct {
	svc *services.Services
}

func NewReferralHandler(svc *services.Services) *ReferralHandler {
	return &ReferralHandler{svc: svc}
}

// GetReferralCode returns user's referral code, generating it on first call.
func (h *ReferralHandler) GetReferralCode(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	code, err := h.svc.Referrals.GetOrCreateCode(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"code": code})
}

// ApplyReferralCode links the current user to the owner of the code.
func (h *ReferralHandler) ApplyReferralCode(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ref, err := h.svc.Referrals.LinkReferral(c.Request.Context(), userID, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, ref)
}

// GetReferralStats returns referral statistics for a user
func (h *ReferralHandler) GetReferralStats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.svc.Referrals.Stats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, stats)
}

// GetReferrals returns all referrals for a user
func (h *ReferralHandler) GetReferrals(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	referrals, err := h.svc.Referrals.ListReferrals(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    referrals,
		"count":   len(referrals),
	})
}

// GetCommissions returns the commissions earned from referees.
func (h *ReferralHandler) GetCommissions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	commissions, err := h.svc.Referrals.ListCommissions(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    commissions,
		"count":   len(commissions),
	})
}
