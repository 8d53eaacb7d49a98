// Package interfaces defines service contracts for Folio
package interfaces

import (
	"context"

	"github.com/bobmcallan/folio/internal/costbasis"
	"github.com/bobmcallan/folio/internal/models"
)

// LedgerService owns holdings and their transaction ledgers. All ledger
// mutations run the full read → recompute → write reconciliation sequence
// before returning, serialized per holding.
type LedgerService interface {
	// Holdings
	SeedHolding(ctx context.Context, holding *models.Holding) (*models.Holding, error)
	GetHolding(ctx context.Context, symbol string) (*models.Holding, error)
	ListHoldings(ctx context.Context) ([]*models.Holding, error)
	DeleteHolding(ctx context.Context, symbol string) error

	// Ledger mutations (each triggers reconciliation)
	AddTransaction(ctx context.Context, txn *models.Transaction) (*models.Holding, error)
	UpdateTransaction(ctx context.Context, id string, patch TransactionPatch) (*models.Holding, error)
	DeleteTransaction(ctx context.Context, id string) (*models.Holding, error)
	ListTransactions(ctx context.Context, symbol string) ([]models.Transaction, error)

	// Derived views
	GetCostHistory(ctx context.Context, symbol string) (*costbasis.History, error)
	RenderCostHistoryChart(ctx context.Context, symbol string) ([]byte, error)
	ListGains(ctx context.Context, symbol string) ([]*models.RealizedGain, error)
	GainSummary(ctx context.Context) (*models.GainSummary, error)
}

// TransactionPatch carries the editable transaction fields. Type and symbol
// are immutable; nil fields are left unchanged.
type TransactionPatch struct {
	Shares *float64 `json:"shares,omitempty"`
	Price  *float64 `json:"price,omitempty"`
	Fees   *float64 `json:"fees,omitempty"`
	Notes  *string  `json:"notes,omitempty"`
}

// CashbookService records dividends, expenses, and savings certificates.
type CashbookService interface {
	AddDividend(ctx context.Context, d *models.Dividend) (*models.Dividend, error)
	ListDividends(ctx context.Context, symbol string) ([]*models.Dividend, error)
	DeleteDividend(ctx context.Context, id string) error

	AddExpense(ctx context.Context, e *models.Expense) (*models.Expense, error)
	ListExpenses(ctx context.Context) ([]*models.Expense, error)
	DeleteExpense(ctx context.Context, id string) error

	AddCertificate(ctx context.Context, c *models.Certificate) (*models.Certificate, error)
	ListCertificates(ctx context.Context) ([]*models.Certificate, error)
	DeleteCertificate(ctx context.Context, id string) error

	Summary(ctx context.Context) (*models.CashbookSummary, error)
}
