// Package crypto implements credential hashing for passwords and one-time
// codes, plus the random material the token layer needs.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// ErrInvalidHashFormat is returned when a stored credential is missing the
// salt delimiter; callers are expected to only pass values produced by Hash.
var ErrInvalidHashFormat = errors.New("stored credential hash is malformed")

const (
	saltLen = 16
	keyLen  = 32

	// scrypt cost parameters
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// Hash derives an scrypt key from plain under a fresh random salt and
// returns "saltHex.keyHex". Two calls with the same input produce different
// outputs because the salt is new each time.
func Hash(plain string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	key, err := scrypt.Key([]byte(plain), salt, scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return "", fmt.Errorf("failed to derive key: %w", err)
	}
	return hex.EncodeToString(salt) + "." + hex.EncodeToString(key), nil
}

// Verify re-derives the key for plain using the salt embedded in stored and
// compares in constant time. A malformed stored value is a caller bug and
// surfaces as ErrInvalidHashFormat.
func Verify(plain, stored string) (bool, error) {
	saltHex, keyHex, ok := strings.Cut(stored, ".")
	if !ok {
		return false, ErrInvalidHashFormat
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false, ErrInvalidHashFormat
	}
	key, err := scrypt.Key([]byte(plain), salt, scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return false, fmt.Errorf("failed to derive key: %w", err)
	}
	return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(key)), []byte(keyHex)) == 1, nil
}

// RandomHex returns n bytes of cryptographically secure randomness encoded
// as 2n hex characters.
func RandomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
