package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"
)

type cashbookStorage struct {
	store  *Store
	logger *common.Logger
}

// NewCashbookStorage creates a new CashbookStorage backed by BadgerHold.
func NewCashbookStorage(store *Store, logger *common.Logger) *cashbookStorage {
	return &cashbookStorage{store: store, logger: logger}
}

// --- Dividends ---

func (s *cashbookStorage) SaveDividend(_ context.Context, d *models.Dividend) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	d.Symbol = models.NormalizeSymbol(d.Symbol)

	if err := s.store.db.Upsert(d.ID, d); err != nil {
		return fmt.Errorf("failed to save dividend: %w", err)
	}
	return nil
}

func (s *cashbookStorage) ListDividends(_ context.Context, symbol string) ([]*models.Dividend, error) {
	var dividends []*models.Dividend
	var err error
	if symbol == "" {
		err = s.store.db.Find(&dividends, nil)
	} else {
		err = s.store.db.Find(&dividends, badgerhold.Where("Symbol").Eq(models.NormalizeSymbol(symbol)))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list dividends: %w", err)
	}
	sort.Slice(dividends, func(i, j int) bool {
		return dividends[i].Date.Before(dividends[j].Date)
	})
	return dividends, nil
}

func (s *cashbookStorage) DeleteDividend(_ context.Context, id string) error {
	err := s.store.db.Delete(id, models.Dividend{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete dividend '%s': %w", id, err)
	}
	return nil
}

// --- Expenses ---

func (s *cashbookStorage) SaveExpense(_ context.Context, e *models.Expense) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	if err := s.store.db.Upsert(e.ID, e); err != nil {
		return fmt.Errorf("failed to save expense: %w", err)
	}
	return nil
}

func (s *cashbookStorage) ListExpenses(_ context.Context) ([]*models.Expense, error) {
	var expenses []*models.Expense
	if err := s.store.db.Find(&expenses, nil); err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	sort.Slice(expenses, func(i, j int) bool {
		return expenses[i].Date.Before(expenses[j].Date)
	})
	return expenses, nil
}

func (s *cashbookStorage) DeleteExpense(_ context.Context, id string) error {
	err := s.store.db.Delete(id, models.Expense{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete expense '%s': %w", id, err)
	}
	return nil
}

// --- Certificates ---

func (s *cashbookStorage) SaveCertificate(_ context.Context, c *models.Certificate) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	if err := s.store.db.Upsert(c.ID, c); err != nil {
		return fmt.Errorf("failed to save certificate: %w", err)
	}
	return nil
}

func (s *cashbookStorage) ListCertificates(_ context.Context) ([]*models.Certificate, error) {
	var certs []*models.Certificate
	if err := s.store.db.Find(&certs, nil); err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}
	sort.Slice(certs, func(i, j int) bool {
		return certs[i].StartDate.Before(certs[j].StartDate)
	})
	return certs, nil
}

func (s *cashbookStorage) DeleteCertificate(_ context.Context, id string) error {
	err := s.store.db.Delete(id, models.Certificate{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete certificate '%s': %w", id, err)
	}
	return nil
}
