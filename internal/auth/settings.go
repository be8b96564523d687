package auth

import (
	"context"
	"log/slog"
	"slices"

	"github.com/hongminglow/red-syndicate/internal/ledger"
	"github.com/hongminglow/red-syndicate/internal/models"
)

// Accepted values for the enumerated settings.
var (
	Languages  = []string{"en", "es", "fr", "de"}
	Currencies = []string{"USD", "EUR", "GBP", "BTC"}
)

// SetTheme switches between the dark and light theme.
func (s *Service) SetTheme(ctx context.Context, theme string) bool {
	if theme != models.ThemeDark && theme != models.ThemeLight {
		return s.rejectSetting("theme", theme)
	}
	return s.updateSettings(ctx, func(st *models.Settings) { st.Theme = theme })
}

// SetLanguage sets the display language.
func (s *Service) SetLanguage(ctx context.Context, language string) bool {
	if !slices.Contains(Languages, language) {
		return s.rejectSetting("language", language)
	}
	return s.updateSettings(ctx, func(st *models.Settings) { st.Language = language })
}

// SetCurrency sets the display currency.
func (s *Service) SetCurrency(ctx context.Context, currency string) bool {
	if !slices.Contains(Currencies, currency) {
		return s.rejectSetting("currency", currency)
	}
	return s.updateSettings(ctx, func(st *models.Settings) { st.Currency = currency })
}

// SetNotifications replaces the notification channels.
func (s *Service) SetNotifications(ctx context.Context, n models.NotificationSettings) bool {
	return s.updateSettings(ctx, func(st *models.Settings) { st.Notifications = n })
}

// SetPrivacy replaces the privacy flags.
func (s *Service) SetPrivacy(ctx context.Context, p models.PrivacySettings) bool {
	return s.updateSettings(ctx, func(st *models.Settings) { st.Privacy = p })
}

// SetDailyDepositLimit sets the per-day deposit cap in USD.
func (s *Service) SetDailyDepositLimit(ctx context.Context, limit int64) bool {
	if limit <= 0 {
		return s.rejectSetting("limits.daily_deposit", limit)
	}
	return s.updateSettings(ctx, func(st *models.Settings) { st.Limits.DailyDeposit = limit })
}

// SetDailyWithdrawalLimit sets the per-day withdrawal cap in USD.
func (s *Service) SetDailyWithdrawalLimit(ctx context.Context, limit int64) bool {
	if limit <= 0 {
		return s.rejectSetting("limits.daily_withdrawal", limit)
	}
	return s.updateSettings(ctx, func(st *models.Settings) { st.Limits.DailyWithdrawal = limit })
}

// SetSessionTimeLimit sets the session reminder in minutes.
func (s *Service) SetSessionTimeLimit(ctx context.Context, minutes int) bool {
	if minutes <= 0 {
		return s.rejectSetting("limits.session_time", minutes)
	}
	return s.updateSettings(ctx, func(st *models.Settings) { st.Limits.SessionTime = minutes })
}

func (s *Service) updateSettings(ctx context.Context, mutate func(*models.Settings)) bool {
	current := s.User()
	if current == nil {
		s.log.Warn("settings update failed", slog.Any("error", ErrNotAuthenticated))
		return false
	}

	settings := current.Settings
	mutate(&settings)
	return s.UpdateUser(ctx, ledger.UserUpdate{Settings: &settings})
}

func (s *Service) rejectSetting(field string, value any) bool {
	s.log.Warn("settings value rejected", slog.String("field", field), slog.Any("value", value))
	return false
}
