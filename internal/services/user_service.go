package services

import (
	"context"
	"errors"

	"yield-ledger/internal/models"
	"yield-ledger/internal/repository"
)

// UserService serves the caller's own account view.
type UserService struct {
	repo   *repository.Repository
	wallet *WalletService
	admin  *AdminService
}

// Profile returns the user with their wallet snapshot and admin flag.
func (s *UserService) Profile(ctx context.Context, userID uint) (*models.UserProfile, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.wallet.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	isAdmin, err := s.admin.IsAdmin(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &models.UserProfile{
		User:    *user,
		Wallet:  *snapshot,
		IsAdmin: isAdmin,
	}
	investments, err := s.repo.CountUserInvestments(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.InvestmentCount = investments
	if _, err := s.repo.GetReferralByReferee(ctx, userID); err == nil {
		profile.Referred = true
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return profile, nil
}
