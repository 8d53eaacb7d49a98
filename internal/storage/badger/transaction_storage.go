package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

type transactionStorage struct {
	store  *Store
	logger *common.Logger
}

// NewTransactionStorage creates a new TransactionStorage backed by BadgerHold.
func NewTransactionStorage(store *Store, logger *common.Logger) *transactionStorage {
	return &transactionStorage{store: store, logger: logger}
}

func (s *transactionStorage) GetTransaction(_ context.Context, id string) (*models.Transaction, error) {
	var txn models.Transaction
	err := s.store.db.Get(id, &txn)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("transaction '%s' not found", id)
		}
		return nil, fmt.Errorf("failed to get transaction '%s': %w", id, err)
	}
	return &txn, nil
}

func (s *transactionStorage) SaveTransaction(_ context.Context, txn *models.Transaction) error {
	txn.Symbol = models.NormalizeSymbol(txn.Symbol)
	txn.UpdatedAt = time.Now()
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}
	if txn.ID == "" {
		txn.ID = models.NewTransactionID()
	}

	if err := s.store.db.Upsert(txn.ID, txn); err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	s.logger.Debug().
		Str("id", txn.ID).
		Str("symbol", txn.Symbol).
		Str("type", string(txn.Type)).
		Msg("Transaction saved")
	return nil
}

func (s *transactionStorage) ListBySymbol(_ context.Context, symbol string) ([]models.Transaction, error) {
	symbol = models.NormalizeSymbol(symbol)
	var txns []models.Transaction
	if err := s.store.db.Find(&txns, badgerhold.Where("Symbol").Eq(symbol)); err != nil {
		return nil, fmt.Errorf("failed to list transactions for '%s': %w", symbol, err)
	}
	sortByDate(txns)
	return txns, nil
}

func (s *transactionStorage) ListAll(_ context.Context) ([]models.Transaction, error) {
	var txns []models.Transaction
	if err := s.store.db.Find(&txns, nil); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	sortByDate(txns)
	return txns, nil
}

func (s *transactionStorage) DeleteTransaction(_ context.Context, id string) error {
	err := s.store.db.Delete(id, models.Transaction{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete transaction '%s': %w", id, err)
	}
	s.logger.Debug().Str("id", id).Msg("Transaction deleted")
	return nil
}

func (s *transactionStorage) DeleteBySymbol(ctx context.Context, symbol string) (int, error) {
	txns, err := s.ListBySymbol(ctx, symbol)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, t := range txns {
		if err := s.DeleteTransaction(ctx, t.ID); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// sortByDate orders a ledger ascending by date, creation time breaking ties
// so that same-day events replay in entry order.
func sortByDate(txns []models.Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		if txns[i].Date.Equal(txns[j].Date) {
			return txns[i].CreatedAt.Before(txns[j].CreatedAt)
		}
		return txns[i].Date.Before(txns[j].Date)
	})
}
