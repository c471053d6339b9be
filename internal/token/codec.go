// Package token builds and parses the three token shapes the backend
// issues: short-lived access JWTs, composite refresh tokens, and the
// temporary token that bridges the two steps of a 2FA login.
//
// A composite refresh token is the signed refresh JWT with a random
// opaque id appended: <header>.<payload>.<signature>.<opaqueId>. The
// opaque id never leaves the client in stored form; only its hash is
// persisted.
package token

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/scrypt"

	"github.com/mertakdeniz/lunamarket-backend/internal/crypto"
	"github.com/mertakdeniz/lunamarket-backend/internal/models"
)

var (
	ErrExpired            = errors.New("token is expired")
	ErrInvalid            = errors.New("token is invalid")
	ErrMalformedComposite = errors.New("refresh token must have exactly 4 segments")
)

const (
	opaqueIDBytes    = 32
	twoFactorPurpose = "2fa"
)

// AccessClaims is the verified content of an access token.
type AccessClaims struct {
	UserID       uuid.UUID
	Email        string
	TokenVersion int
}

type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	twoFactorTTL  time.Duration
}

func NewCodec(accessSecret, refreshSecret string, accessTTL, refreshTTL, twoFactorTTL time.Duration) *Codec {
	return &Codec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		twoFactorTTL:  twoFactorTTL,
	}
}

// SignAccess issues the short-lived access token. The embedded
// token_version snapshot is what lets a version bump on the account
// invalidate every outstanding access token.
func (c *Codec) SignAccess(user *models.User) (string, error) {
	email := ""
	if user.Email != nil {
		email = *user.Email
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":           user.ID.String(),
		"email":         email,
		"token_version": user.TokenVersion,
		"iat":           now.Unix(),
		"exp":           now.Add(c.accessTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.accessSecret)
}

// ParseAccess verifies signature and expiry and rejects tokens that carry
// a purpose claim (temporary 2FA tokens share the signing key but must
// never pass as access tokens).
func (c *Codec) ParseAccess(raw string) (*AccessClaims, error) {
	claims, err := c.parse(raw, c.accessSecret)
	if err != nil {
		return nil, err
	}
	if _, scoped := claims["purpose"]; scoped {
		return nil, ErrInvalid
	}
	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrInvalid
	}
	email, _ := claims["email"].(string)
	version, ok := claims["token_version"].(float64)
	if !ok {
		return nil, ErrInvalid
	}
	return &AccessClaims{UserID: id, Email: email, TokenVersion: int(version)}, nil
}

// NewComposite issues a composite refresh token. The returned opaqueID is
// the random tail; callers persist HashOpaqueID(opaqueID), never the id
// itself.
func (c *Codec) NewComposite(userID uuid.UUID) (composite string, opaqueID string, err error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"iat": now.Unix(),
		"exp": now.Add(c.refreshTTL).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.refreshSecret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	opaqueID, err = crypto.RandomHex(opaqueIDBytes)
	if err != nil {
		return "", "", err
	}
	return signed + "." + opaqueID, opaqueID, nil
}

// SplitComposite separates a composite refresh token into its JWT part and
// opaque tail. Anything other than exactly 4 dot-separated segments is
// malformed.
func SplitComposite(composite string) (jwtPart string, opaqueID string, err error) {
	parts := strings.Split(composite, ".")
	if len(parts) != 4 {
		return "", "", ErrMalformedComposite
	}
	return strings.Join(parts[:3], "."), parts[3], nil
}

// VerifyRefreshJWT checks the signed part of a composite token and returns
// the subject. Signature and expiry failures are deliberately collapsed
// into one error so the caller can stay coarse toward clients.
func (c *Codec) VerifyRefreshJWT(jwtPart string) (uuid.UUID, error) {
	claims, err := c.parse(jwtPart, c.refreshSecret)
	if err != nil {
		return uuid.Nil, ErrInvalid
	}
	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, ErrInvalid
	}
	return id, nil
}

// HashOpaqueID derives the stored form of an opaque refresh id. The
// refresh secret acts as a static pepper rather than a per-record salt:
// lookups need a deterministic hash, and the pepper keeps a leaked table
// useless without the process configuration.
func (c *Codec) HashOpaqueID(opaqueID string) (string, error) {
	key, err := scrypt.Key([]byte(opaqueID), c.refreshSecret, 1<<15, 8, 1, 32)
	if err != nil {
		return "", fmt.Errorf("failed to hash opaque id: %w", err)
	}
	return hex.EncodeToString(key), nil
}

// SignTwoFactor issues the temporary token returned by the first step of a
// 2FA login. It carries only the account id and a purpose claim.
func (c *Codec) SignTwoFactor(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":     userID.String(),
		"purpose": twoFactorPurpose,
		"iat":     now.Unix(),
		"exp":     now.Add(c.twoFactorTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.accessSecret)
}

// ParseTwoFactor validates a temporary 2FA token and returns the account id.
func (c *Codec) ParseTwoFactor(raw string) (uuid.UUID, error) {
	claims, err := c.parse(raw, c.accessSecret)
	if err != nil {
		return uuid.Nil, err
	}
	if purpose, _ := claims["purpose"].(string); purpose != twoFactorPurpose {
		return uuid.Nil, ErrInvalid
	}
	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, ErrInvalid
	}
	return id, nil
}

func (c *Codec) parse(raw string, secret []byte) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalid
	}
	return claims, nil
}
