package crypto

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var otpMax = big.NewInt(1000000)

// GenerateOTP returns a 6-digit numeric one-time code, zero-padded.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpMax)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// GenerateHashedOTP returns a fresh code together with its stored form.
// The hash uses the same scrypt scheme as passwords.
func GenerateHashedOTP() (plain string, hashed string, err error) {
	plain, err = GenerateOTP()
	if err != nil {
		return "", "", err
	}
	hashed, err = Hash(plain)
	if err != nil {
		return "", "", err
	}
	return plain, hashed, nil
}
