package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaymentMethod(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		details string
		want    PaymentMethod
		wantErr bool
	}{
		{
			name:    "usdt trc20",
			method:  PaymentMethodUsdtTrc20,
			details: `{"address":"TQn9Y2khEsLJW1ChVWFMSMeRDow5KcbLSE"}`,
			want:    UsdtTrc20{Address: "TQn9Y2khEsLJW1ChVWFMSMeRDow5KcbLSE"},
		},
		{
			name:    "usdt address on wrong network",
			method:  PaymentMethodUsdtTrc20,
			details: `{"address":"0x52908400098527886E0F7030069857D2E4169EE7"}`,
			wantErr: true,
		},
		{
			name:    "usdt address too short",
			method:  PaymentMethodUsdtTrc20,
			details: `{"address":"TQn9Y2khEs"}`,
			wantErr: true,
		},
		{
			name:    "paypal",
			method:  PaymentMethodPayPal,
			details: `{"email":"payee@example.com"}`,
			want:    PayPal{Email: "payee@example.com"},
		},
		{
			name:    "paypal bad email",
			method:  PaymentMethodPayPal,
			details: `{"email":"not-an-email"}`,
			wantErr: true,
		},
		{
			name:    "bank transfer",
			method:  PaymentMethodBankTransfer,
			details: `{"account":"DE89370400440532013000","bank":"Commerzbank","name":"Jane Doe"}`,
			want:    BankTransfer{Account: "DE89370400440532013000", Bank: "Commerzbank", Name: "Jane Doe"},
		},
		{
			name:    "bank transfer missing holder",
			method:  PaymentMethodBankTransfer,
			details: `{"account":"DE89370400440532013000","bank":"Commerzbank"}`,
			wantErr: true,
		},
		{
			name:    "missing details",
			method:  PaymentMethodPayPal,
			details: ``,
			wantErr: true,
		},
		{
			name:    "malformed details",
			method:  PaymentMethodPayPal,
			details: `{"email":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePaymentMethod(tt.method, json.RawMessage(tt.details))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.method, got.Method())
		})
	}
}

func TestParsePaymentMethodUnknown(t *testing.T) {
	_, err := ParsePaymentMethod("western_union", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrUnknownPaymentMethod)
}

func TestPaymentDetailsRoundTripThroughJSONB(t *testing.T) {
	pm := BankTransfer{Account: "12345678", Bank: "ING", Name: "Jane Doe"}

	value, err := pm.Details().Value()
	require.NoError(t, err)

	var scanned JSONB
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, "ING", scanned["bank"])
	assert.Equal(t, "12345678", scanned["account"])
}
