package services

import (
	"errors"

	"yield-ledger/internal/repository"
)

// Validation errors. Nothing has been written when these are returned.
var (
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrAmountOutOfBounds    = errors.New("amount outside plan bounds")
	ErrPlanNotFound         = errors.New("investment plan not found")
	ErrCryptoNotFound       = errors.New("crypto not found")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidStatus        = errors.New("invalid status")
)

// Business outcomes and state-machine guards.
var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrAlreadyProcessed    = errors.New("already processed")
	ErrNotApproved         = errors.New("request not approved")
	ErrAlreadyLinked       = errors.New("referral already linked")
	ErrInvalidCode         = errors.New("invalid referral code")
	ErrSelfReferral        = errors.New("cannot use your own referral code")
	ErrInvestmentNotActive = errors.New("investment is not active")
)

// Storage outcomes, shared with the repository so errors.Is matches either.
var (
	ErrNotFound               = repository.ErrNotFound
	ErrConcurrentModification = repository.ErrConcurrentModification
)
