package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TransactionType is the closed set of ledger event kinds.
type TransactionType string

const (
	TransactionBuy  TransactionType = "buy"
	TransactionSell TransactionType = "sell"
)

// Transaction represents one buy or sell event in a holding's ledger.
// Type and Symbol are immutable after creation; edits may change shares,
// price, fees, and notes only, and every edit or delete triggers a full
// reconciliation of the owning holding.
type Transaction struct {
	ID        string          `json:"id"`
	Symbol    string          `json:"symbol"`
	Type      TransactionType `json:"type"`
	Shares    float64         `json:"shares"`
	Price     float64         `json:"price"` // per share
	Fees      float64         `json:"fees,omitempty"`
	Date      time.Time       `json:"date"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewTransactionID returns a fresh unique transaction id.
func NewTransactionID() string {
	return uuid.New().String()
}

// Validate checks the transaction fields that the engine depends on.
func (t Transaction) Validate() error {
	if t.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	switch t.Type {
	case TransactionBuy, TransactionSell:
	default:
		return fmt.Errorf("type must be %q or %q, got %q", TransactionBuy, TransactionSell, t.Type)
	}
	if t.Shares <= 0 {
		return fmt.Errorf("shares must be positive, got %v", t.Shares)
	}
	if t.Price <= 0 {
		return fmt.Errorf("price must be positive, got %v", t.Price)
	}
	if t.Fees < 0 {
		return fmt.Errorf("fees must not be negative, got %v", t.Fees)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	return nil
}

// Signed returns the share delta this transaction applies to a position.
func (t Transaction) Signed() float64 {
	if t.Type == TransactionSell {
		return -t.Shares
	}
	return t.Shares
}
