package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"yield-ledger/internal/database"
	"yield-ledger/internal/models"
	"yield-ledger/internal/repository"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err, "failed to connect database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps the in-memory database alive and serializes goroutines.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db), "failed to migrate database")
	return db
}

type fixture struct {
	t      *testing.T
	ctx    context.Context
	repo   *repository.Repository
	svc    *Services
	clock  *testClock
	plan   *models.InvestmentPlan
	crypto *models.Crypto
	admin  *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := repository.NewRepository(setupTestDB(t))
	clock := &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		repo:  repo,
		clock: clock,
		svc:   New(repo, Options{Now: clock.Now, CommissionRate: dec("5")}),
	}

	f.plan = &models.InvestmentPlan{
		Name:                  "Starter",
		MinAmount:             dec("50"),
		MaxAmount:             dec("1000"),
		DailyReturnPercentage: dec("1.0"),
		Duration:              7,
		IsActive:              true,
	}
	require.NoError(t, repo.UpsertPlan(f.ctx, f.plan))
	f.crypto = &models.Crypto{Symbol: "BTC", Name: "Bitcoin", IsActive: true}
	require.NoError(t, repo.UpsertCrypto(f.ctx, f.crypto))

	f.admin = f.user("admin@example.com")
	require.NoError(t, repo.CreateAdmin(f.ctx, &models.AdminUser{UserID: f.admin.ID, Role: "SUPER_ADMIN"}))
	return f
}

func (f *fixture) user(email string) *models.User {
	f.t.Helper()
	u := &models.User{Email: email, Username: email}
	require.NoError(f.t, f.repo.CreateUser(f.ctx, u))
	return u
}

// fund deposits amount for the user and approves it.
func (f *fixture) fund(userID uint, amount string) {
	f.t.Helper()
	tx, err := f.svc.Deposits.Request(f.ctx, userID, dec(amount), "bank_transfer")
	require.NoError(f.t, err)
	_, err = f.svc.Deposits.Approve(f.ctx, tx.ID, f.admin.ID, "")
	require.NoError(f.t, err)
}

func (f *fixture) invest(userID uint, amount string) *models.Investment {
	f.t.Helper()
	inv, err := f.svc.Investments.Create(f.ctx, userID, CreateInvestmentInput{
		CryptoID: f.crypto.ID,
		PlanID:   f.plan.ID,
		Amount:   dec(amount),
	})
	require.NoError(f.t, err)
	return inv
}

func (f *fixture) wallet(userID uint) *models.Wallet {
	f.t.Helper()
	w, err := f.repo.GetOrCreateWallet(f.ctx, userID)
	require.NoError(f.t, err)
	return w
}

func (f *fixture) commissionCount(investmentID uint) int64 {
	f.t.Helper()
	var count int64
	require.NoError(f.t, f.repo.DB().Model(&models.Commission{}).
		Where("investment_id = ?", investmentID).Count(&count).Error)
	return count
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(expected).Equal(actual), "expected %s, got %s", expected, actual.String())
}
