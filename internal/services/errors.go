package services

import "errors"

// Sentinel errors returned by the auth services. Handlers map these to
// HTTP statuses with errors.Is; messages stay coarse on purpose so a
// caller cannot distinguish, say, a wrong signature from an unknown
// opaque id.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrEmailTakenGoogle   = errors.New("email is registered with Google sign-in, use Google to log in")
	ErrWrongProvider      = errors.New("account uses a different sign-in method")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrBadOldPassword     = errors.New("old password is incorrect")
	ErrAccountInactive    = errors.New("account is not active")

	ErrMalformedRefreshToken = errors.New("malformed refresh token")
	ErrRefreshTokenInvalid   = errors.New("invalid or expired refresh token")
	ErrNoValidRefreshToken   = errors.New("no valid refresh token found")

	ErrResetTokenInvalid = errors.New("invalid or expired reset token")

	ErrOTPExpired         = errors.New("verification code has expired")
	ErrOTPMismatch        = errors.New("verification code is incorrect")
	ErrNoPendingOTP       = errors.New("no pending verification code")
	ErrNoActiveOTPSession = errors.New("no active verification session")
	ErrAlreadyVerified    = errors.New("already verified")
	ErrTempTokenInvalid   = errors.New("invalid or expired two-factor token")

	ErrInvalidGoogleToken = errors.New("invalid Google identity token")
)
