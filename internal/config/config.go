package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	validator "github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config holds runtime configuration sourced from env vars and an optional
// YAML file named by CONFIG_FILE.
type Config struct {
	Port      string `mapstructure:"port" validate:"required,numeric"`
	AppEnv    string `mapstructure:"app_env" validate:"required,oneof=development test staging production"`
	LogLevel  string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFile   string `mapstructure:"log_file"`
	SentryDSN string `mapstructure:"sentry_dsn" validate:"omitempty,url"`

	StoreDriver   string `mapstructure:"store_driver" validate:"oneof=memory sqlite redis postgres"`
	SQLitePath    string `mapstructure:"sqlite_path" validate:"required_if=StoreDriver sqlite"`
	DatabaseURL   string `mapstructure:"database_url" validate:"required_if=StoreDriver postgres"`
	RedisAddr     string `mapstructure:"redis_addr" validate:"required_if=StoreDriver redis"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" validate:"gte=0"`
	RedisPrefix   string `mapstructure:"redis_prefix"`

	JWTSecret      string        `mapstructure:"jwt_secret" validate:"required,min=16"`
	JWTIssuer      string        `mapstructure:"jwt_issuer" validate:"required"`
	SessionTTL     time.Duration `mapstructure:"session_ttl" validate:"gt=0"`
	WelcomeBalance int64         `mapstructure:"welcome_balance" validate:"gte=0"`
	CORSAllowed    string        `mapstructure:"cors_allowed_origins"`

	SlotsFrameInterval     time.Duration `mapstructure:"slots_frame_interval" validate:"gt=0"`
	RouletteFrameInterval  time.Duration `mapstructure:"roulette_frame_interval" validate:"gt=0"`
	WheelFrameInterval     time.Duration `mapstructure:"wheel_frame_interval" validate:"gt=0"`
	DepositDetectDelay     time.Duration `mapstructure:"deposit_detect_delay" validate:"gt=0"`
	DepositConfirmInterval time.Duration `mapstructure:"deposit_confirm_interval" validate:"gt=0"`
	OddsDriftInterval      time.Duration `mapstructure:"odds_drift_interval" validate:"gt=0"`
	SportsResolveDelay     time.Duration `mapstructure:"sports_resolve_delay" validate:"gte=0"`
	SessionPurgeInterval   time.Duration `mapstructure:"session_purge_interval" validate:"gt=0"`
	BlackjackIdleTimeout   time.Duration `mapstructure:"blackjack_idle_timeout" validate:"gt=0"`
	ShutdownTimeout        time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

var defaults = map[string]any{
	"port":                     "8080",
	"app_env":                  "development",
	"log_level":                "info",
	"log_file":                 "",
	"sentry_dsn":               "",
	"store_driver":             "sqlite",
	"sqlite_path":              "casino.db",
	"database_url":             "",
	"redis_addr":               "",
	"redis_password":           "",
	"redis_db":                 0,
	"redis_prefix":             "casino:",
	"jwt_secret":               "",
	"jwt_issuer":               "red-syndicate",
	"session_ttl":              "24h",
	"welcome_balance":          1000,
	"cors_allowed_origins":     "*",
	"slots_frame_interval":     "100ms",
	"roulette_frame_interval":  "50ms",
	"wheel_frame_interval":     "50ms",
	"deposit_detect_delay":     "10s",
	"deposit_confirm_interval": "3s",
	"odds_drift_interval":      "3s",
	"sports_resolve_delay":     "10s",
	"session_purge_interval":   "10m",
	"blackjack_idle_timeout":   "15m",
	"shutdown_timeout":         "15s",
}

// Load reads configuration and validates it.
func Load() (Config, error) {
	v, err := newViper()
	if err != nil {
		return Config{}, err
	}
	return decode(v)
}

// Watch reloads the file named by CONFIG_FILE whenever it changes and passes
// each valid result to onChange. Invalid edits are reported to onError and
// otherwise ignored. It returns false when no config file is in use.
func Watch(onChange func(Config), onError func(error)) (bool, error) {
	v, err := newViper()
	if err != nil {
		return false, err
	}
	if v.ConfigFileUsed() == "" {
		return false, nil
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decode(v)
		if err != nil {
			onError(fmt.Errorf("reload %s: %w", e.Name, err))
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return true, nil
}

func newViper() (*viper.Viper, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if file := strings.TrimSpace(v.GetString("config_file")); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// CORSOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c Config) CORSOrigins() []string {
	return parseCSV(c.CORSAllowed)
}

// Development reports whether APP_ENV is development.
func (c Config) Development() bool {
	return c.AppEnv == "development"
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
