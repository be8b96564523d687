package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/hongminglow/red-syndicate/internal/auth"
	"github.com/hongminglow/red-syndicate/internal/bonus"
	"github.com/hongminglow/red-syndicate/internal/config"
	"github.com/hongminglow/red-syndicate/internal/deposit"
	"github.com/hongminglow/red-syndicate/internal/ledger"
	"github.com/hongminglow/red-syndicate/internal/logger"
	"github.com/hongminglow/red-syndicate/internal/metrics"
	"github.com/hongminglow/red-syndicate/internal/middleware"
	"github.com/hongminglow/red-syndicate/internal/server"
	"github.com/hongminglow/red-syndicate/internal/sportsbook"
	"github.com/hongminglow/red-syndicate/internal/state"
	"github.com/hongminglow/red-syndicate/internal/storage"
	"github.com/hongminglow/red-syndicate/internal/storage/memory"
	"github.com/hongminglow/red-syndicate/internal/storage/postgres"
	"github.com/hongminglow/red-syndicate/internal/storage/redis"
	"github.com/hongminglow/red-syndicate/internal/storage/sqlite"
	"github.com/hongminglow/red-syndicate/internal/wager"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := new(slog.LevelVar)
	log, flush, err := logger.New(logger.Options{
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		File:      cfg.LogFile,
		SentryDSN: cfg.SentryDSN,
		Release:   version,
		LevelVar:  level,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer flush()
	slog.SetDefault(log)

	watching, err := config.Watch(func(next config.Config) {
		level.Set(logger.ParseLevel(next.LogLevel))
		log.Info("config reloaded", slog.String("log_level", next.LogLevel))
	}, func(err error) {
		log.Warn("config reload rejected", slog.Any("error", err))
	})
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	if watching {
		log.Debug("watching config file for log level changes")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	medium, err := openMedium(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.StoreDriver, err)
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer)
	store := ledger.New(medium, log,
		ledger.WithSessionTTL(cfg.SessionTTL),
		ledger.WithTokenGenerator(tokens.Generate),
	)
	defer store.Close()
	if err := store.Init(ctx); err != nil {
		return fmt.Errorf("init ledger: %w", err)
	}

	engine := wager.NewEngine(store, log,
		wager.WithRecorder(metrics.Wagers{}),
		wager.WithAnimation(wager.GameSlots, wager.Animation{Frames: wager.SlotsAnimation.Frames, Interval: cfg.SlotsFrameInterval}),
		wager.WithAnimation(wager.GameRoulette, wager.Animation{Frames: wager.RouletteAnimation.Frames, Interval: cfg.RouletteFrameInterval}),
		wager.WithAnimation(wager.GameWheel, wager.Animation{Interval: cfg.WheelFrameInterval}),
	)
	deposits := deposit.NewService(store, log, deposit.WithTimings(cfg.DepositDetectDelay, cfg.DepositConfirmInterval))
	defer deposits.Close()

	book := sportsbook.NewBook(log)
	sports := sportsbook.NewService(book, store, log, sportsbook.WithAutoResolve(cfg.SportsResolveDelay))
	defer sports.Close()

	svc := server.Services{
		Ledger:   store,
		Authn:    middleware.NewAuthenticator(store, tokens, log, auth.WithWelcomeBalance(decimal.NewFromInt(cfg.WelcomeBalance))),
		Wager:    engine,
		Deposits: deposits,
		Sports:   sports,
		Bonuses:  bonus.NewService(store, log, nil),
	}

	go book.Run(ctx, cfg.OddsDriftInterval, nil)
	go housekeeping(ctx, cfg, store, engine, log)

	srv := server.New(cfg, svc, log)
	errCh := make(chan error, 1)
	go func() {
		log.Info("red syndicate listening", slog.String("addr", cfg.HTTPAddress()), slog.String("store", cfg.StoreDriver))
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown error", slog.Any("error", err))
	}
	return nil
}

func openMedium(ctx context.Context, cfg config.Config) (storage.Medium, error) {
	switch cfg.StoreDriver {
	case "sqlite":
		return sqlite.Open(cfg.SQLitePath)
	case "redis":
		return redis.New(ctx, redis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
	case "postgres":
		return postgres.NewStore(ctx, cfg.DatabaseURL)
	default:
		return memory.New(), nil
	}
}

// housekeeping drops expired sessions, stands idle blackjack rounds and
// forgets finished ones.
func housekeeping(ctx context.Context, cfg config.Config, store *ledger.Store, engine *wager.Engine, log *slog.Logger) {
	ticker := state.NewTicker(cfg.SessionPurgeInterval)
	_ = ticker.Run(ctx, func(int) bool {
		if n, err := store.PurgeExpiredSessions(ctx); err != nil {
			log.Warn("session purge failed", slog.Any("error", err))
		} else if n > 0 {
			log.Info("expired sessions purged", slog.Int("count", n))
		}
		if n := engine.ExpireIdleBlackjack(ctx, cfg.BlackjackIdleTimeout); n > 0 {
			log.Info("idle blackjack rounds stood", slog.Int("count", n))
		}
		if n := engine.PurgeFinishedBlackjack(); n > 0 {
			log.Debug("finished blackjack rounds purged", slog.Int("count", n))
		}
		return true
	})
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found; relying on existing environment")
	}
}
