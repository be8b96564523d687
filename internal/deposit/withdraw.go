package deposit

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/red-syndicate/internal/ledger"
	"github.com/hongminglow/red-syndicate/internal/models"
)

// Withdraw debits amount USD to address, bounded by the user's daily
// withdrawal limit.
func (s *Service) Withdraw(ctx context.Context, userID string, amount decimal.Decimal, address string) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrInvalidAddress
	}

	since := startOfDay(s.now())
	user, err := s.ledger.Settle(ctx, userID, ledger.Settlement{
		Debit: amount,
		Check: func(u *models.User) error {
			limit := decimal.NewFromInt(u.Settings.Limits.DailyWithdrawal)
			withdrawn := u.TotalSince(models.TransactionWithdrawal, since)
			if withdrawn.Add(amount).GreaterThan(limit) {
				return fmt.Errorf("%w: withdrawn today %s of %s USD", ErrLimitExceeded, withdrawn, limit)
			}
			return nil
		},
		Transaction: &models.TransactionInput{
			Type:        models.TransactionWithdrawal,
			Amount:      amount,
			Currency:    "USD",
			Status:      models.StatusCompleted,
			Description: "Withdrawal to " + address,
			Hash:        randomTxID(),
		},
	})
	if err != nil {
		return nil, err
	}

	tx := user.Transactions[len(user.Transactions)-1]
	return &tx, nil
}
