package dto

import "github.com/hongminglow/red-syndicate/internal/models"

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// SettingsRequest is a partial settings update; omitted fields are unchanged.
type SettingsRequest struct {
	Theme         *string                      `json:"theme,omitempty"`
	Language      *string                      `json:"language,omitempty"`
	Currency      *string                      `json:"currency,omitempty"`
	Notifications *models.NotificationSettings `json:"notifications,omitempty"`
	Privacy       *models.PrivacySettings      `json:"privacy,omitempty"`
	Limits        *LimitsRequest               `json:"limits,omitempty"`
}

type LimitsRequest struct {
	DailyDeposit    *int64 `json:"daily_deposit,omitempty" validate:"omitempty,gt=0"`
	DailyWithdrawal *int64 `json:"daily_withdrawal,omitempty" validate:"omitempty,gt=0"`
	SessionTime     *int   `json:"session_time,omitempty" validate:"omitempty,gt=0"`
}
