package dto

import (
	"github.com/google/uuid"

	"github.com/mertakdeniz/lunamarket-backend/internal/models"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GoogleSignInRequest struct {
	IDToken string `json:"id_token"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type VerifyTwoFactorRequest struct {
	Code   string `json:"code"`
	Enable bool   `json:"enable"`
}

type TwoFactorLoginRequest struct {
	TempToken string `json:"temp_token"`
	Code      string `json:"code"`
}

type ResendOTPRequest struct {
	TempToken string `json:"temp_token"`
	UserID    string `json:"user_id"`
}

type VerificationRequest struct {
	Channel string `json:"channel"`
	Code    string `json:"code"`
}

type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

// TwoFactorChallengeResponse is returned instead of AuthResponse when the
// account has 2FA enabled; the client finishes login with the temp token
// and the mailed code.
type TwoFactorChallengeResponse struct {
	TwoFactorRequired bool   `json:"two_factor_required"`
	TempToken         string `json:"temp_token"`
}

type UserResponse struct {
	ID               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	EmailVerified    bool      `json:"email_verified"`
	PhoneVerified    bool      `json:"phone_verified"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	IsGoogleUser     bool      `json:"is_google_user"`
}

func NewUserResponse(user *models.User) UserResponse {
	email := ""
	if user.Email != nil {
		email = *user.Email
	}
	return UserResponse{
		ID:               user.ID,
		Email:            email,
		Name:             user.Name,
		EmailVerified:    user.EmailVerified,
		PhoneVerified:    user.PhoneVerified,
		TwoFactorEnabled: user.TwoFactorEnabled,
		IsGoogleUser:     user.GoogleID != nil,
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
