// Package interfaces defines service contracts for Folio
package interfaces

import (
	"context"

	"github.com/bobmcallan/folio/internal/models"
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	HoldingStorage() HoldingStorage
	TransactionStorage() TransactionStorage
	GainStorage() GainStorage
	CashbookStorage() CashbookStorage
	KeyValueStorage() KeyValueStorage

	// Lifecycle
	Close() error
}

// HoldingStorage persists holdings, keyed by symbol.
type HoldingStorage interface {
	GetHolding(ctx context.Context, symbol string) (*models.Holding, error)
	SaveHolding(ctx context.Context, holding *models.Holding) error
	ListHoldings(ctx context.Context) ([]*models.Holding, error)
	DeleteHolding(ctx context.Context, symbol string) error
}

// TransactionStorage persists the buy/sell ledger, keyed by transaction id.
type TransactionStorage interface {
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	SaveTransaction(ctx context.Context, txn *models.Transaction) error
	// ListBySymbol returns the full ledger for one holding, sorted ascending by date.
	ListBySymbol(ctx context.Context, symbol string) ([]models.Transaction, error)
	ListAll(ctx context.Context) ([]models.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	// DeleteBySymbol removes a holding's whole ledger; returns the count removed.
	DeleteBySymbol(ctx context.Context, symbol string) (int, error)
}

// GainStorage persists the append-only realized-gains ledger.
type GainStorage interface {
	AppendGain(ctx context.Context, gain *models.RealizedGain) error
	ListGains(ctx context.Context, symbol string) ([]*models.RealizedGain, error) // empty symbol = all
	Summary(ctx context.Context) (*models.GainSummary, error)
}

// CashbookStorage persists dividends, expenses, and savings certificates.
type CashbookStorage interface {
	SaveDividend(ctx context.Context, d *models.Dividend) error
	ListDividends(ctx context.Context, symbol string) ([]*models.Dividend, error) // empty symbol = all
	DeleteDividend(ctx context.Context, id string) error

	SaveExpense(ctx context.Context, e *models.Expense) error
	ListExpenses(ctx context.Context) ([]*models.Expense, error)
	DeleteExpense(ctx context.Context, id string) error

	SaveCertificate(ctx context.Context, c *models.Certificate) error
	ListCertificates(ctx context.Context) ([]*models.Certificate, error)
	DeleteCertificate(ctx context.Context, id string) error
}

// KeyValueStorage is the system key-value store (schema version, settings).
type KeyValueStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	GetAll(ctx context.Context) (map[string]string, error)
}
