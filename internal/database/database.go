package database

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"yield-ledger/internal/config"
	"yield-ledger/internal/models"
)

// Connect opens the ledger store selected by cfg.Driver.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath + "?_busy_timeout=5000&_foreign_keys=on")
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Error),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sqlite pool: %w", err)
		}
		// SQLite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
	}

	zap.L().Info("Database connection established",
		zap.String("driver", cfg.Driver))
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access database pool: %w", err)
	}
	return sqlDB.Close()
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate(db *gorm.DB) error {
	// Identity and catalog first, ledger tables after
	coreModels := []interface{}{
		&models.User{},
		&models.InvestmentPlan{},
		&models.Crypto{},
	}
	ledgerModels := []interface{}{
		&models.Wallet{},
		&models.Transaction{},
		&models.Investment{},
		&models.WithdrawalRequest{},
	}
	referralModels := []interface{}{
		&models.Referral{},
		&models.Commission{},
	}
	adminModels := []interface{}{
		&models.AdminUser{},
		&models.AdminLog{},
	}

	for _, group := range [][]interface{}{coreModels, ledgerModels, referralModels, adminModels} {
		for _, model := range group {
			if err := storeDecimalsAsText(db, model); err != nil {
				return err
			}
			if err := db.AutoMigrate(model); err != nil {
				return fmt.Errorf("migration failed for %T: %w", model, err)
			}
		}
	}

	zap.L().Info("Database migrations completed successfully")
	return nil
}

// storeDecimalsAsText declares decimal columns as TEXT on SQLite. A decimal
// declared type gets NUMERIC affinity there and is rounded through float64.
// The parsed schema is cached per connection, so later statements see it too.
func storeDecimalsAsText(db *gorm.DB, model interface{}) error {
	if db.Dialector.Name() != "sqlite" {
		return nil
	}
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return fmt.Errorf("failed to parse schema for %T: %w", model, err)
	}
	for _, field := range stmt.Schema.Fields {
		if strings.HasPrefix(strings.ToLower(string(field.DataType)), "decimal") {
			field.DataType = schema.String
		}
	}
	return nil
}
