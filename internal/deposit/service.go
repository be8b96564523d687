// Package deposit simulates crypto deposits through address generation,
// detection and confirmations, and debits USD withdrawals.
package deposit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hongminglow/red-syndicate/internal/ledger"
	"github.com/hongminglow/red-syndicate/internal/models"
	"github.com/hongminglow/red-syndicate/internal/state"
)

var (
	ErrUnknownCurrency = errors.New("unknown currency")
	ErrBelowMinimum    = errors.New("amount below minimum deposit")
	ErrLimitExceeded   = errors.New("daily limit exceeded")
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrInvalidAddress  = errors.New("withdrawal address required")
	ErrNotFound        = errors.New("deposit not found")
)

// Default timings of the simulated network.
const (
	DefaultDetectDelay     = 10 * time.Second
	DefaultConfirmInterval = 3 * time.Second
)

// Ledger is the subset of the ledger store deposits need.
type Ledger interface {
	GetUserByID(ctx context.Context, id string) *models.User
	UpdateUser(ctx context.Context, id string, update ledger.UserUpdate) (*models.User, error)
	Settle(ctx context.Context, userID string, st ledger.Settlement) (*models.User, error)
}

// Deposit is a snapshot of one deposit.
type Deposit struct {
	ID                    string          `json:"id"`
	UserID                string          `json:"user_id"`
	Currency              string          `json:"currency"`
	Amount                decimal.Decimal `json:"amount"`
	Address               string          `json:"address"`
	TxID                  string          `json:"tx_id,omitempty"`
	Status                state.State     `json:"status"`
	Confirmations         int             `json:"confirmations"`
	RequiredConfirmations int             `json:"required_confirmations"`
	EstimatedTime         string          `json:"estimated_time"`
	NetUSD                decimal.Decimal `json:"net_usd"`
	CreatedAt             time.Time       `json:"created_at"`
	Error                 string          `json:"error,omitempty"`
}

type tracked struct {
	deposit  Deposit
	currency Currency
	machine  *state.Machine
	cancel   context.CancelFunc
	done     chan struct{}
}

// Option customizes a Service.
type Option func(*Service)

// WithTimings overrides the detection delay and confirmation interval.
func WithTimings(detect, confirm time.Duration) Option {
	return func(s *Service) {
		s.detectDelay = detect
		s.confirmInterval = confirm
	}
}

// WithClock overrides the time source used for daily limits.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service tracks deposits in memory. Completed deposits credit the ledger.
type Service struct {
	ledger          Ledger
	log             *slog.Logger
	detectDelay     time.Duration
	confirmInterval time.Duration
	now             func() time.Time

	mu       sync.Mutex
	deposits map[string]*tracked
	wg       sync.WaitGroup
}

// NewService constructs a Service.
func NewService(l Ledger, log *slog.Logger, opts ...Option) *Service {
	if log == nil {
		log = slog.Default()
	}

	s := &Service{
		ledger:          l,
		log:             log,
		detectDelay:     DefaultDetectDelay,
		confirmInterval: DefaultConfirmInterval,
		now:             time.Now,
		deposits:        make(map[string]*tracked),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start validates the deposit, assigns the user a receiving address and
// begins watching for the transfer. The returned deposit is pending. The
// daily limit is measured in net USD, the value a completed deposit credits.
func (s *Service) Start(ctx context.Context, userID, currencyID string, amount decimal.Decimal) (*Deposit, error) {
	cur, err := Lookup(currencyID)
	if err != nil {
		return nil, err
	}
	if amount.LessThan(cur.MinDeposit) {
		return nil, fmt.Errorf("%w: minimum is %s %s", ErrBelowMinimum, cur.MinDeposit, cur.Label)
	}

	machine := state.NewMachine(state.DepositTransitions, state.StateGenerating, s.log)
	runCtx, cancel := context.WithCancel(context.Background())
	t := &tracked{
		deposit: Deposit{
			ID:                    uuid.NewString(),
			UserID:                userID,
			Currency:              cur.ID,
			Amount:                amount,
			Address:               GenerateAddress(cur),
			Status:                state.StateGenerating,
			RequiredConfirmations: cur.Confirmations,
			EstimatedTime:         EstimatedTime(cur.Confirmations),
			NetUSD:                cur.NetUSD(amount),
			CreatedAt:             s.now().UTC(),
		},
		currency: cur,
		machine:  machine,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	if err := s.reserve(ctx, t); err != nil {
		cancel()
		return nil, err
	}

	address := t.deposit.Address
	if _, err := s.ledger.UpdateUser(ctx, userID, ledger.UserUpdate{WalletAddress: &address}); err != nil {
		_ = machine.TransitionTo(state.StateFailed)
		s.release(t)
		return nil, err
	}
	if err := machine.TransitionTo(state.StatePending); err != nil {
		s.release(t)
		return nil, err
	}
	s.mu.Lock()
	t.deposit.Status = state.StatePending
	d := t.deposit
	s.mu.Unlock()

	s.wg.Add(1)
	go s.watch(runCtx, t)

	s.log.Info("deposit started",
		slog.String("deposit_id", t.deposit.ID),
		slog.String("user_id", userID),
		slog.String("currency", cur.ID),
		slog.String("amount", amount.String()),
	)

	return &d, nil
}

// reserve checks the user's daily deposit limit against completed deposits
// plus deposits still in flight, and tracks t when it fits. Both happen under
// s.mu.
func (s *Service) reserve(ctx context.Context, t *tracked) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.ledger.GetUserByID(ctx, t.deposit.UserID)
	if user == nil {
		return ledger.ErrUserNotFound
	}

	limit := decimal.NewFromInt(user.Settings.Limits.DailyDeposit)
	committed := user.TotalSince(models.TransactionDeposit, startOfDay(s.now()))
	for _, other := range s.deposits {
		if other.deposit.UserID == t.deposit.UserID && !other.deposit.Status.Terminal() {
			committed = committed.Add(other.deposit.NetUSD)
		}
	}
	if committed.Add(t.deposit.NetUSD).GreaterThan(limit) {
		return fmt.Errorf("%w: deposits today %s of %s USD", ErrLimitExceeded, committed, limit)
	}

	s.deposits[t.deposit.ID] = t
	return nil
}

// release forgets a deposit that never reached pending.
func (s *Service) release(t *tracked) {
	t.cancel()
	s.mu.Lock()
	delete(s.deposits, t.deposit.ID)
	s.mu.Unlock()
	close(t.done)
}

// Get returns a snapshot of the user's deposit.
func (s *Service) Get(userID, depositID string) (*Deposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.deposits[depositID]
	if !ok || t.deposit.UserID != userID {
		return nil, ErrNotFound
	}
	d := t.deposit
	return &d, nil
}

// Wait blocks until the deposit reaches a terminal state or ctx ends.
func (s *Service) Wait(ctx context.Context, userID, depositID string) (*Deposit, error) {
	s.mu.Lock()
	t, ok := s.deposits[depositID]
	s.mu.Unlock()
	if !ok || t.deposit.UserID != userID {
		return nil, ErrNotFound
	}

	select {
	case <-t.done:
		return s.Get(userID, depositID)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel stops watching a deposit that has not completed; it ends failed.
func (s *Service) Cancel(userID, depositID string) error {
	s.mu.Lock()
	t, ok := s.deposits[depositID]
	s.mu.Unlock()
	if !ok || t.deposit.UserID != userID {
		return ErrNotFound
	}

	t.cancel()
	<-t.done
	return nil
}

// Close cancels every watcher and waits for them to exit.
func (s *Service) Close() {
	s.mu.Lock()
	for _, t := range s.deposits {
		t.cancel()
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Service) watch(ctx context.Context, t *tracked) {
	defer s.wg.Done()
	defer close(t.done)
	defer t.cancel()

	detect := state.NewTicker(s.detectDelay)
	if err := detect.Run(ctx, func(int) bool { return false }); err != nil {
		s.fail(t, err)
		return
	}

	s.update(t, func(d *Deposit) {
		d.TxID = randomTxID()
		d.Status = state.StateConfirming
	})
	if err := t.machine.TransitionTo(state.StateConfirming); err != nil {
		s.fail(t, err)
		return
	}

	required := t.currency.Confirmations
	confirm := state.NewTicker(s.confirmInterval)
	err := confirm.Run(ctx, func(tick int) bool {
		s.update(t, func(d *Deposit) {
			d.Confirmations = tick
			d.EstimatedTime = EstimatedTime(required - tick)
		})
		_ = t.machine.TransitionTo(state.StateConfirming)
		return tick < required
	})
	if err != nil {
		s.fail(t, err)
		return
	}

	s.complete(ctx, t)
}

func (s *Service) complete(ctx context.Context, t *tracked) {
	s.mu.Lock()
	d := t.deposit
	s.mu.Unlock()

	currency := strings.ToUpper(d.Currency)
	_, err := s.ledger.Settle(ctx, d.UserID, ledger.Settlement{
		Credit: d.NetUSD,
		Transaction: &models.TransactionInput{
			Type:        models.TransactionDeposit,
			Amount:      d.NetUSD,
			Currency:    currency,
			Status:      models.StatusCompleted,
			Description: currency + " Deposit",
			Hash:        d.TxID,
		},
	})
	if err != nil {
		s.fail(t, err)
		return
	}

	if err := t.machine.TransitionTo(state.StateCompleted); err != nil {
		s.fail(t, err)
		return
	}
	s.update(t, func(d *Deposit) {
		d.Status = state.StateCompleted
		d.EstimatedTime = EstimatedTime(0)
	})
	s.log.Info("deposit completed", slog.String("deposit_id", d.ID), slog.String("net_usd", d.NetUSD.String()))
}

func (s *Service) fail(t *tracked, err error) {
	_ = t.machine.TransitionTo(state.StateFailed)
	s.update(t, func(d *Deposit) {
		d.Status = state.StateFailed
		d.Error = err.Error()
	})
	s.log.Warn("deposit failed", slog.String("deposit_id", t.deposit.ID), slog.Any("error", err))
}

func (s *Service) update(t *tracked, mutate func(*Deposit)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mutate(&t.deposit)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
