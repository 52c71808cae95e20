package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"yield-ledger/internal/repository"
)

// DefaultCommissionRate is the referral commission in percent.
var DefaultCommissionRate = decimal.NewFromInt(5)

const defaultWalletRetries = 5

// Options configures the ledger services.
type Options struct {
	// Now is the clock used for accrual, maturity and timestamps.
	Now func() time.Time
	// CommissionRate is the percent of a first investment paid to the referrer.
	CommissionRate decimal.Decimal
	// WalletRetries bounds re-reads after a version conflict on a wallet.
	WalletRetries int
}

func (o Options) withDefaults() Options {
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	if o.CommissionRate.IsZero() {
		o.CommissionRate = DefaultCommissionRate
	}
	if o.WalletRetries <= 0 {
		o.WalletRetries = defaultWalletRetries
	}
	return o
}

// Services bundles every ledger service bound to one repository. Composite
// operations rebuild the bundle on a transaction-bound repository so that all
// of their writes commit together.
type Services struct {
	repo *repository.Repository
	opts Options

	Wallet         *WalletService
	Journal        *Journal
	Investments    *InvestmentService
	Maturity       *MaturityProcessor
	Withdrawals    *WithdrawalService
	Deposits       *DepositService
	Referrals      *ReferralService
	Admin          *AdminService
	Reconciliation *ReconciliationService
	Users          *UserService
}

// New wires the services on repo.
func New(repo *repository.Repository, opts Options) *Services {
	opts = opts.withDefaults()
	s := &Services{repo: repo, opts: opts}

	s.Wallet = &WalletService{repo: repo, opts: opts}
	s.Journal = &Journal{repo: repo, opts: opts}
	s.Referrals = &ReferralService{repo: repo, opts: opts, wallet: s.Wallet, journal: s.Journal}
	s.Maturity = &MaturityProcessor{repo: repo, opts: opts}
	s.Investments = &InvestmentService{repo: repo, opts: opts, maturity: s.Maturity}
	s.Withdrawals = &WithdrawalService{repo: repo, opts: opts}
	s.Deposits = &DepositService{repo: repo, opts: opts, journal: s.Journal}
	s.Admin = &AdminService{repo: repo, opts: opts}
	s.Reconciliation = &ReconciliationService{repo: repo}
	s.Users = &UserService{repo: repo, wallet: s.Wallet, admin: s.Admin}
	return s
}

// Repository returns the repository the bundle is bound to.
func (s *Services) Repository() *repository.Repository {
	return s.repo
}

// inTx runs fn with a bundle bound to a new database transaction.
func inTx(ctx context.Context, repo *repository.Repository, opts Options, fn func(tx *Services) error) error {
	return repo.Transaction(ctx, func(tx *repository.Repository) error {
		return fn(New(tx, opts))
	})
}
