package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
	TransactionBet        TransactionType = "bet"
	TransactionWin        TransactionType = "win"
	TransactionBonus      TransactionType = "bonus"
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

// Transaction is an immutable ledger entry owned by a user.
type Transaction struct {
	ID          string            `json:"id"`
	Type        TransactionType   `json:"type"`
	Amount      decimal.Decimal   `json:"amount"`
	Currency    string            `json:"currency"`
	Status      TransactionStatus `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Description string            `json:"description"`
	Hash        string            `json:"hash,omitempty"`
}

// TransactionInput holds the caller-supplied fields of a new transaction.
type TransactionInput struct {
	Type        TransactionType
	Amount      decimal.Decimal
	Currency    string
	Status      TransactionStatus
	Description string
	Hash        string
}
