package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

// PlanConfig is one investment plan entry of the catalog file.
type PlanConfig struct {
	Name                  string `yaml:"name"`
	MinAmount             string `yaml:"min_amount"`
	MaxAmount             string `yaml:"max_amount"`
	DailyReturnPercentage string `yaml:"daily_return_percentage"`
	Duration              int    `yaml:"duration"`
	Active                *bool  `yaml:"active"`
}

// CryptoConfig is one listed asset of the catalog file.
type CryptoConfig struct {
	Symbol string `yaml:"symbol"`
	Name   string `yaml:"name"`
	Active *bool  `yaml:"active"`
}

// Catalog is the parsed catalog file.
type Catalog struct {
	Plans   []PlanConfig   `yaml:"plans"`
	Cryptos []CryptoConfig `yaml:"cryptos"`
}

// LoadCatalog reads and validates the plan and crypto catalog.
func LoadCatalog(catalogFile string) (*Catalog, error) {
	var catalogPath string
	if filepath.IsAbs(catalogFile) {
		catalogPath = catalogFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		catalogPath = filepath.Join(wd, catalogFile)
	}

	data, err := os.ReadFile(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", catalogFile, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates catalog YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("unable to parse catalog: %w", err)
	}

	for i, plan := range catalog.Plans {
		if plan.Name == "" {
			return nil, fmt.Errorf("plan at index %d missing name", i)
		}
		if plan.Duration <= 0 {
			return nil, fmt.Errorf("plan %s: duration must be positive", plan.Name)
		}
		rate, err := decimal.NewFromString(plan.DailyReturnPercentage)
		if err != nil || rate.IsNegative() {
			return nil, fmt.Errorf("plan %s: invalid daily_return_percentage %q", plan.Name, plan.DailyReturnPercentage)
		}
		if _, err := plan.Bounds(); err != nil {
			return nil, err
		}
	}
	for i, crypto := range catalog.Cryptos {
		if crypto.Symbol == "" {
			return nil, fmt.Errorf("crypto at index %d missing symbol", i)
		}
		if crypto.Name == "" {
			return nil, fmt.Errorf("crypto %s missing name", crypto.Symbol)
		}
	}
	return &catalog, nil
}

// Bounds parses the plan's min and max amounts. Empty values mean zero.
func (p PlanConfig) Bounds() ([2]decimal.Decimal, error) {
	var out [2]decimal.Decimal
	for i, raw := range []string{p.MinAmount, p.MaxAmount} {
		if raw == "" {
			continue
		}
		v, err := decimal.NewFromString(raw)
		if err != nil || v.IsNegative() {
			return out, fmt.Errorf("plan %s: invalid amount bound %q", p.Name, raw)
		}
		out[i] = v
	}
	if !out[1].IsZero() && out[1].LessThan(out[0]) {
		return out, fmt.Errorf("plan %s: max_amount below min_amount", p.Name)
	}
	return out, nil
}

// IsActive defaults to true when the flag is omitted.
func (p PlanConfig) IsActive() bool {
	return p.Active == nil || *p.Active
}

// IsActive defaults to true when the flag is omitted.
func (c CryptoConfig) IsActive() bool {
	return c.Active == nil || *c.Active
}
