package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"yield-ledger/internal/config"
	"yield-ledger/internal/database"
	"yield-ledger/internal/logging"
	"yield-ledger/internal/repository"
	"yield-ledger/internal/services"
)

type report struct {
	UnpaidMaturities []unpaidMaturity       `json:"unpaid_maturities"`
	WalletDrift      []services.WalletDrift `json:"wallet_drift"`
}

type unpaidMaturity struct {
	InvestmentID uint   `json:"investment_id"`
	UserID       uint   `json:"user_id"`
	Reference    string `json:"expected_reference"`
	CurrentValue string `json:"current_value"`
}

// reconcile prints claimed maturities without a payout entry and wallets
// whose counters disagree with the journal. It never writes.
func main() {
	failOnFindings := flag.Bool("strict", false, "exit 1 when anything needs attention")
	flag.Parse()

	logger, cleanup, err := logging.Init("warn")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer cleanup()

	dbCfg, err := config.LoadDatabase()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	db, err := database.Connect(dbCfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	ctx := context.Background()
	svc := services.New(repository.NewRepository(db), services.Options{})

	unpaid, err := svc.Reconciliation.UnpaidMaturities(ctx)
	if err != nil {
		logger.Fatal("Failed to list unpaid maturities", zap.Error(err))
	}
	drift, err := svc.Reconciliation.ReconcileAll(ctx)
	if err != nil {
		logger.Fatal("Failed to reconcile wallets", zap.Error(err))
	}

	out := report{WalletDrift: drift}
	for _, inv := range unpaid {
		out.UnpaidMaturities = append(out.UnpaidMaturities, unpaidMaturity{
			InvestmentID: inv.ID,
			UserID:       inv.UserID,
			Reference:    services.MaturityReference(inv.ID),
			CurrentValue: inv.CurrentValue.String(),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Fatal("Failed to write report", zap.Error(err))
	}

	if *failOnFindings && (len(out.UnpaidMaturities) > 0 || len(out.WalletDrift) > 0) {
		cleanup()
		os.Exit(1)
	}
}
