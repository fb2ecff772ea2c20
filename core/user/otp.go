package user

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"
)

const otpLength = 6

var (
	ErrOTPInvalid = errors.New("invalid or expired code")

	otpDigitMax = big.NewInt(10)
)

// OTPStore keeps short-lived one-time password reset codes keyed by email.
// Implementations must expire entries after the provided TTL.
type OTPStore interface {
	Set(ctx context.Context, email, code string, ttl time.Duration) error
	Get(ctx context.Context, email string) (string, error)
	Delete(ctx context.Context, email string) error
}

// GenerateOTP returns a random numeric code of otpLength digits.
func GenerateOTP() (string, error) {
	code := make([]byte, 0, otpLength)
	for i := 0; i < otpLength; i++ {
		n, err := rand.Int(rand.Reader, otpDigitMax)
		if err != nil {
			return "", err
		}
		code = append(code, byte('0')+byte(n.Int64()))
	}
	return string(code), nil
}

// verifyOTP compares a submitted code against the stored one in constant time.
func verifyOTP(ctx context.Context, store OTPStore, email, code string) error {
	stored, err := store.Get(ctx, email)
	if err != nil || stored == "" {
		return ErrOTPInvalid
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) == 0 {
		return ErrOTPInvalid
	}
	return nil
}

func otpExpiryText(ttl time.Duration) string {
	if ttl < time.Hour {
		return fmt.Sprintf("%d minutes", int(ttl.Minutes()))
	}
	return ttl.String()
}
