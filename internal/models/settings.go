package models

const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Settings holds per-user preferences. Fields are changed through the typed
// setters on the auth service rather than by path.
type Settings struct {
	Theme         string               `json:"theme"`
	Notifications NotificationSettings `json:"notifications"`
	Privacy       PrivacySettings      `json:"privacy"`
	Limits        LimitSettings        `json:"limits"`
	Language      string               `json:"language"`
	Currency      string               `json:"currency"`
}

type NotificationSettings struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
	SMS   bool `json:"sms"`
}

type PrivacySettings struct {
	ShowBalance  bool `json:"show_balance"`
	ShowActivity bool `json:"show_activity"`
}

// LimitSettings bounds deposits and withdrawals per UTC day. SessionTime is in minutes.
type LimitSettings struct {
	DailyDeposit    int64 `json:"daily_deposit"`
	DailyWithdrawal int64 `json:"daily_withdrawal"`
	SessionTime     int   `json:"session_time"`
}

// DefaultSettings returns the settings every new account starts with.
func DefaultSettings() Settings {
	return Settings{
		Theme: ThemeDark,
		Notifications: NotificationSettings{
			Email: true,
			Push:  true,
			SMS:   false,
		},
		Privacy: PrivacySettings{
			ShowBalance:  true,
			ShowActivity: true,
		},
		Limits: LimitSettings{
			DailyDeposit:    10000,
			DailyWithdrawal: 5000,
			SessionTime:     240,
		},
		Language: "en",
		Currency: "USD",
	}
}
