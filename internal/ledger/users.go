package ledger

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/red-syndicate/internal/models"
)

// NewUser holds the caller-supplied fields of a new account.
type NewUser struct {
	Username      string
	Email         string
	PasswordHash  string
	Role          string
	Balance       decimal.Decimal
	WalletAddress *string
}

// UserUpdate is a partial update; nil fields are left unchanged.
type UserUpdate struct {
	Balance          *decimal.Decimal
	WalletAddress    *string
	LastLogin        *time.Time
	Settings         *models.Settings
	Role             *string
	IsVerified       *bool
	TwoFactorEnabled *bool
}

func (u UserUpdate) apply(user *models.User) error {
	if u.Balance != nil {
		if u.Balance.IsNegative() {
			return ErrNegativeBalance
		}
		user.Balance = *u.Balance
	}
	if u.WalletAddress != nil {
		addr := *u.WalletAddress
		user.WalletAddress = &addr
	}
	if u.LastLogin != nil {
		user.LastLogin = u.LastLogin.UTC()
	}
	if u.Settings != nil {
		user.Settings = *u.Settings
	}
	if u.Role != nil {
		user.Role = *u.Role
	}
	if u.IsVerified != nil {
		user.IsVerified = *u.IsVerified
	}
	if u.TwoFactorEnabled != nil {
		user.TwoFactorEnabled = *u.TwoFactorEnabled
	}
	return nil
}

// CreateUser stores a new account with default settings and no transactions.
func (s *Store) CreateUser(ctx context.Context, in NewUser) (*models.User, error) {
	if in.Balance.IsNegative() {
		return nil, ErrNegativeBalance
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		if strings.EqualFold(u.Email, in.Email) || strings.EqualFold(u.Username, in.Username) {
			return nil, ErrDuplicateUser
		}
	}

	role := in.Role
	if role == "" {
		role = models.NormalUser
	}
	now := s.clock()
	user := models.User{
		ID:            uuid.NewString(),
		Username:      in.Username,
		Email:         in.Email,
		PasswordHash:  in.PasswordHash,
		Role:          role,
		Balance:       in.Balance,
		WalletAddress: in.WalletAddress,
		CreatedAt:     now,
		LastLogin:     now,
		Settings:      models.DefaultSettings(),
		Transactions:  []models.Transaction{},
	}

	users = append(users, user)
	if err := s.saveUsers(ctx, users); err != nil {
		return nil, err
	}

	s.log.Info("user created", slog.String("user_id", user.ID), slog.String("username", user.Username))
	return &user, nil
}

// AuthenticateUser returns the user whose email and password match, or nil.
// A successful match refreshes LastLogin.
func (s *Store) AuthenticateUser(ctx context.Context, email, password string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil
	}

	idx := -1
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil
	}
	if bcrypt.CompareHashAndPassword([]byte(users[idx].PasswordHash), []byte(password)) != nil {
		return nil
	}

	users[idx].LastLogin = s.clock()
	if err := s.saveUsers(ctx, users); err != nil {
		// Stale LastLogin is acceptable; the credentials were valid.
		s.log.Warn("last login not persisted", slog.String("user_id", users[idx].ID))
	}

	user := users[idx]
	return &user
}

// GetUserByID returns the user or nil.
func (s *Store) GetUserByID(ctx context.Context, id string) *models.User {
	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil
	}

	idx := indexOfUser(users, id)
	if idx == -1 {
		return nil
	}
	user := users[idx]
	return &user
}

// UpdateUser merges update into the stored user. It returns nil, nil when the
// user does not exist.
func (s *Store) UpdateUser(ctx context.Context, id string, update UserUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}

	idx := indexOfUser(users, id)
	if idx == -1 {
		return nil, nil
	}

	updated := users[idx]
	if err := update.apply(&updated); err != nil {
		return nil, err
	}
	users[idx] = updated

	if err := s.saveUsers(ctx, users); err != nil {
		return nil, err
	}
	return &updated, nil
}

// AddTransaction appends a transaction to the user's history.
func (s *Store) AddTransaction(ctx context.Context, userID string, in models.TransactionInput) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}

	idx := indexOfUser(users, userID)
	if idx == -1 {
		return nil, ErrUserNotFound
	}

	tx := s.newTransaction(in)
	users[idx].Transactions = append(users[idx].Transactions, tx)

	if err := s.saveUsers(ctx, users); err != nil {
		return nil, err
	}
	return &tx, nil
}

// Transactions returns the user's history, newest first.
func (s *Store) Transactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	user := s.GetUserByID(ctx, userID)
	if user == nil {
		return nil, ErrUserNotFound
	}

	out := make([]models.Transaction, len(user.Transactions))
	for i, tx := range user.Transactions {
		out[len(out)-1-i] = tx
	}
	return out, nil
}

func (s *Store) newTransaction(in models.TransactionInput) models.Transaction {
	status := in.Status
	if status == "" {
		status = models.StatusCompleted
	}
	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}

	return models.Transaction{
		ID:          uuid.NewString(),
		Type:        in.Type,
		Amount:      in.Amount,
		Currency:    currency,
		Status:      status,
		Timestamp:   s.clock(),
		Description: in.Description,
		Hash:        in.Hash,
	}
}
