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

type holdingStorage struct {
	store  *Store
	logger *common.Logger
}

// NewHoldingStorage creates a new HoldingStorage backed by BadgerHold.
func NewHoldingStorage(store *Store, logger *common.Logger) *holdingStorage {
	return &holdingStorage{store: store, logger: logger}
}

func (s *holdingStorage) GetHolding(_ context.Context, symbol string) (*models.Holding, error) {
	symbol = models.NormalizeSymbol(symbol)
	var holding models.Holding
	err := s.store.db.Get(symbol, &holding)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("holding '%s' not found", symbol)
		}
		return nil, fmt.Errorf("failed to get holding '%s': %w", symbol, err)
	}
	return &holding, nil
}

func (s *holdingStorage) SaveHolding(_ context.Context, holding *models.Holding) error {
	holding.Symbol = models.NormalizeSymbol(holding.Symbol)
	holding.UpdatedAt = time.Now()
	if holding.CreatedAt.IsZero() {
		holding.CreatedAt = time.Now()
	}

	if err := s.store.db.Upsert(holding.Symbol, holding); err != nil {
		return fmt.Errorf("failed to save holding: %w", err)
	}
	s.logger.Debug().Str("symbol", holding.Symbol).Float64("shares", holding.Shares).Msg("Holding saved")
	return nil
}

func (s *holdingStorage) ListHoldings(_ context.Context) ([]*models.Holding, error) {
	var holdings []*models.Holding
	if err := s.store.db.Find(&holdings, nil); err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	sort.Slice(holdings, func(i, j int) bool {
		return holdings[i].Symbol < holdings[j].Symbol
	})
	return holdings, nil
}

func (s *holdingStorage) DeleteHolding(_ context.Context, symbol string) error {
	symbol = models.NormalizeSymbol(symbol)
	err := s.store.db.Delete(symbol, models.Holding{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete holding '%s': %w", symbol, err)
	}
	s.logger.Debug().Str("symbol", symbol).Msg("Holding deleted")
	return nil
}
