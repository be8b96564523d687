package ledger

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/red-syndicate/internal/models"
)

// Settlement describes one atomic balance adjustment.
type Settlement struct {
	// Debit is taken from the balance; it must not exceed the current balance.
	Debit decimal.Decimal
	// Credit is added to the balance after the debit.
	Credit decimal.Decimal
	// Transaction, when set, is appended to the user's history.
	Transaction *models.TransactionInput
	// Check runs against the current record before anything changes and may
	// mutate non-balance fields. Returning an error aborts the settlement.
	Check func(user *models.User) error
}

// Settle applies s to the user in a single read-modify-write. Either every
// effect is persisted or none is.
func (s *Store) Settle(ctx context.Context, userID string, st Settlement) (*models.User, error) {
	if st.Debit.IsNegative() || st.Credit.IsNegative() {
		return nil, errors.New("settlement amounts must be non-negative")
	}

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

	user := users[idx]
	user.Transactions = append([]models.Transaction(nil), user.Transactions...)
	user.ClaimedBonuses = append([]string(nil), user.ClaimedBonuses...)

	if st.Check != nil {
		if err := st.Check(&user); err != nil {
			return nil, err
		}
	}

	if user.Balance.LessThan(st.Debit) {
		return nil, ErrInsufficientFunds
	}
	user.Balance = user.Balance.Sub(st.Debit).Add(st.Credit)

	if st.Transaction != nil {
		user.Transactions = append(user.Transactions, s.newTransaction(*st.Transaction))
	}

	users[idx] = user
	if err := s.saveUsers(ctx, users); err != nil {
		return nil, err
	}
	return &user, nil
}
