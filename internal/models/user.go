package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User captures application-facing fields for an authenticated identity.
type User struct {
	ID               string          `json:"id"`
	Username         string          `json:"username"`
	Email            string          `json:"email"`
	PasswordHash     string          `json:"password_hash,omitempty"`
	Role             string          `json:"role"`
	Balance          decimal.Decimal `json:"balance"`
	WalletAddress    *string         `json:"wallet_address"`
	CreatedAt        time.Time       `json:"created_at"`
	LastLogin        time.Time       `json:"last_login"`
	Settings         Settings        `json:"settings"`
	Transactions     []Transaction   `json:"transactions"`
	ClaimedBonuses   []string        `json:"claimed_bonuses,omitempty"`
	IsVerified       bool            `json:"is_verified"`
	TwoFactorEnabled bool            `json:"two_factor_enabled"`
}

// Public returns a copy safe to hand to API clients.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// HasClaimed reports whether the bonus id was already claimed.
func (u User) HasClaimed(bonusID string) bool {
	for _, id := range u.ClaimedBonuses {
		if id == bonusID {
			return true
		}
	}
	return false
}

// Session binds a bearer token to a user until ExpiresAt.
type Session struct {
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer usable at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// TotalSince sums the completed transactions of type t recorded at or after since.
func (u User) TotalSince(t TransactionType, since time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range u.Transactions {
		if tx.Type == t && tx.Status == StatusCompleted && !tx.Timestamp.Before(since) {
			total = total.Add(tx.Amount)
		}
	}
	return total
}
