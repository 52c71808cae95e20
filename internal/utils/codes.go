package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Ambiguous characters (0, O, 1, I) are left out of referral codes.
const referralAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// ReferralCodeLength is the length of generated referral codes.
const ReferralCodeLength = 8

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// GenerateReferralCode returns a random uppercase code of ReferralCodeLength characters.
func GenerateReferralCode() (string, error) {
	var sb strings.Builder
	sb.Grow(ReferralCodeLength)
	max := big.NewInt(int64(len(referralAlphabet)))
	for i := 0; i < ReferralCodeLength; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate referral code: %w", err)
		}
		sb.WriteByte(referralAlphabet[idx.Int64()])
	}
	return sb.String(), nil
}

// NewReference builds a journal reference of the form PREFIX-<ulid>. The ulid
// carries the millisecond timestamp followed by a random suffix.
func NewReference(prefix string, at time.Time) string {
	entropyMu.Lock()
	id := ulid.MustNew(ulid.Timestamp(at), entropy)
	entropyMu.Unlock()
	return prefix + "-" + id.String()
}

// NormalizeReferralCode uppercases and trims user input.
func NormalizeReferralCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
