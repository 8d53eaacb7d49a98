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

type gainStorage struct {
	store  *Store
	logger *common.Logger
}

// NewGainStorage creates a new GainStorage backed by BadgerHold.
func NewGainStorage(store *Store, logger *common.Logger) *gainStorage {
	return &gainStorage{store: store, logger: logger}
}

func (s *gainStorage) AppendGain(_ context.Context, gain *models.RealizedGain) error {
	if gain.ID == "" {
		gain.ID = uuid.New().String()
	}
	if gain.CreatedAt.IsZero() {
		gain.CreatedAt = time.Now()
	}
	gain.Symbol = models.NormalizeSymbol(gain.Symbol)

	// Append-only: Insert, never Upsert. A duplicate id is a bug upstream.
	if err := s.store.db.Insert(gain.ID, gain); err != nil {
		return fmt.Errorf("failed to append realized gain: %w", err)
	}
	s.logger.Debug().
		Str("symbol", gain.Symbol).
		Float64("profit", gain.Profit).
		Msg("Realized gain recorded")
	return nil
}

func (s *gainStorage) ListGains(_ context.Context, symbol string) ([]*models.RealizedGain, error) {
	var gains []*models.RealizedGain
	var err error
	if symbol == "" {
		err = s.store.db.Find(&gains, nil)
	} else {
		err = s.store.db.Find(&gains, badgerhold.Where("Symbol").Eq(models.NormalizeSymbol(symbol)))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list realized gains: %w", err)
	}
	sort.Slice(gains, func(i, j int) bool {
		return gains[i].SellDate.Before(gains[j].SellDate)
	})
	return gains, nil
}

func (s *gainStorage) Summary(ctx context.Context) (*models.GainSummary, error) {
	gains, err := s.ListGains(ctx, "")
	if err != nil {
		return nil, err
	}

	summary := &models.GainSummary{BySymbol: make(map[string]float64)}
	for _, g := range gains {
		summary.TotalProfit += g.Profit
		summary.TotalFees += g.Fees
		summary.SellCount++
		summary.BySymbol[g.Symbol] += g.Profit
	}
	return summary, nil
}
