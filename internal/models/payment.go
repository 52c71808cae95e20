package models

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrUnknownPaymentMethod is returned for a method name outside the supported set.
var ErrUnknownPaymentMethod = errors.New("unknown payment method")

const (
	PaymentMethodUsdtTrc20    = "usdt_trc20"
	PaymentMethodPayPal       = "paypal"
	PaymentMethodBankTransfer = "bank_transfer"
)

var paymentValidator = validator.New()

// PaymentMethod is a validated payout destination.
type PaymentMethod interface {
	Method() string
	Details() JSONB
}

type UsdtTrc20 struct {
	Address string `json:"address" validate:"required,startswith=T,len=34,alphanum"`
}

func (UsdtTrc20) Method() string    { return PaymentMethodUsdtTrc20 }
func (p UsdtTrc20) Details() JSONB { return JSONB{"address": p.Address} }

type PayPal struct {
	Email string `json:"email" validate:"required,email"`
}

func (PayPal) Method() string    { return PaymentMethodPayPal }
func (p PayPal) Details() JSONB { return JSONB{"email": p.Email} }

type BankTransfer struct {
	Account string `json:"account" validate:"required,min=4,max=34"`
	Bank    string `json:"bank" validate:"required"`
	Name    string `json:"name" validate:"required"`
}

func (BankTransfer) Method() string { return PaymentMethodBankTransfer }
func (p BankTransfer) Details() JSONB {
	return JSONB{"account": p.Account, "bank": p.Bank, "name": p.Name}
}

// ParsePaymentMethod decodes the details for the named method and validates them.
func ParsePaymentMethod(method string, details json.RawMessage) (PaymentMethod, error) {
	var pm PaymentMethod
	switch method {
	case PaymentMethodUsdtTrc20:
		var v UsdtTrc20
		if err := decodeDetails(details, &v); err != nil {
			return nil, err
		}
		pm = v
	case PaymentMethodPayPal:
		var v PayPal
		if err := decodeDetails(details, &v); err != nil {
			return nil, err
		}
		pm = v
	case PaymentMethodBankTransfer:
		var v BankTransfer
		if err := decodeDetails(details, &v); err != nil {
			return nil, err
		}
		pm = v
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, method)
	}

	if err := paymentValidator.Struct(pm); err != nil {
		return nil, fmt.Errorf("invalid %s details: %w", method, err)
	}
	return pm, nil
}

func decodeDetails(raw json.RawMessage, dst interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("malformed payment details: %w", err)
	}
	return nil
}
