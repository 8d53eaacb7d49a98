// Package ledger provides the holding reconciliation service.
//
// Every mutation of a holding's transaction ledger (add, edit, delete) runs
// the full sequence: read ledger → recompute cost basis from scratch via the
// costbasis engine → write the holding (and, for sells, append a realized
// gain). Mutations are serialized per symbol; the recomputation is not
// re-entrant for the same holding.
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/costbasis"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// Service implements LedgerService
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a new ledger service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
	}
}

// lockSymbol returns the mutex serializing mutations for one holding.
func (s *Service) lockSymbol(symbol string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[symbol]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[symbol] = lock
	}
	return lock
}

// SeedHolding records a position that predates any ledger entries (imported
// or manually entered holdings).
func (s *Service) SeedHolding(ctx context.Context, holding *models.Holding) (*models.Holding, error) {
	if err := holding.Validate(); err != nil {
		return nil, fmt.Errorf("invalid holding: %w", err)
	}
	holding.Symbol = models.NormalizeSymbol(holding.Symbol)

	lock := s.lockSymbol(holding.Symbol)
	lock.Lock()
	defer lock.Unlock()

	if existing, err := s.storage.HoldingStorage().GetHolding(ctx, holding.Symbol); err == nil {
		return nil, fmt.Errorf("holding '%s' already exists with %v shares", existing.Symbol, existing.Shares)
	}

	if err := s.storage.HoldingStorage().SaveHolding(ctx, holding); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("symbol", holding.Symbol).
		Float64("shares", holding.Shares).
		Float64("avgCost", holding.AvgCost).
		Msg("Holding seeded")
	return holding, nil
}

// GetHolding retrieves one holding by symbol.
func (s *Service) GetHolding(ctx context.Context, symbol string) (*models.Holding, error) {
	return s.storage.HoldingStorage().GetHolding(ctx, symbol)
}

// ListHoldings returns all holdings sorted by symbol.
func (s *Service) ListHoldings(ctx context.Context) ([]*models.Holding, error) {
	return s.storage.HoldingStorage().ListHoldings(ctx)
}

// DeleteHolding removes a holding and its whole ledger. Realized gains are
// historical records and survive.
func (s *Service) DeleteHolding(ctx context.Context, symbol string) error {
	symbol = models.NormalizeSymbol(symbol)
	lock := s.lockSymbol(symbol)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.storage.HoldingStorage().GetHolding(ctx, symbol); err != nil {
		return err
	}
	if err := s.storage.HoldingStorage().DeleteHolding(ctx, symbol); err != nil {
		return err
	}
	removed, err := s.storage.TransactionStorage().DeleteBySymbol(ctx, symbol)
	if err != nil {
		return err
	}
	s.logger.Info().Str("symbol", symbol).Int("transactions", removed).Msg("Holding deleted")
	return nil
}

// ListTransactions returns one holding's ledger sorted ascending by date.
func (s *Service) ListTransactions(ctx context.Context, symbol string) ([]models.Transaction, error) {
	return s.storage.TransactionStorage().ListBySymbol(ctx, symbol)
}

// AddTransaction appends a buy or sell to a holding's ledger and reconciles.
// An over-sell is rejected with *costbasis.ValidationError before anything is
// written. A buy against an unknown symbol creates the holding.
func (s *Service) AddTransaction(ctx context.Context, txn *models.Transaction) (*models.Holding, error) {
	txn.Symbol = models.NormalizeSymbol(txn.Symbol)
	if err := txn.Validate(); err != nil {
		return nil, fmt.Errorf("invalid transaction: %w", err)
	}
	if txn.ID == "" {
		txn.ID = models.NewTransactionID()
	}

	lock := s.lockSymbol(txn.Symbol)
	lock.Lock()
	defer lock.Unlock()

	holding, seed, current, err := s.loadState(ctx, txn.Symbol)
	if err != nil {
		return nil, err
	}
	if holding == nil && txn.Type == models.TransactionSell && seed.Shares == 0 && len(current) == 0 {
		return nil, fmt.Errorf("cannot sell '%s': no holding exists", txn.Symbol)
	}

	candidate := append(append([]models.Transaction{}, current...), *txn)
	history, err := costbasis.Replay(seed, candidate)
	if err != nil {
		return nil, err
	}

	if err := s.storage.TransactionStorage().SaveTransaction(ctx, txn); err != nil {
		return nil, err
	}

	if txn.Type == models.TransactionSell {
		if err := s.recordRealizedGain(ctx, holding, txn, history); err != nil {
			return nil, err
		}
	}

	updated, err := s.persistReconciled(ctx, holding, txn, history)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("symbol", txn.Symbol).
		Str("type", string(txn.Type)).
		Float64("shares", txn.Shares).
		Float64("holdingShares", updated.Shares).
		Float64("holdingAvgCost", updated.AvgCost).
		Msg("Transaction added")
	return updated, nil
}

// UpdateTransaction edits shares/price/fees/notes of an existing transaction
// and reconciles. Type and symbol are immutable. If the recompute fails the
// pre-edit state is retained and a *costbasis.ReconciliationError returned.
// The transaction's already-recorded realized gain, if any, is not revised.
func (s *Service) UpdateTransaction(ctx context.Context, id string, patch interfaces.TransactionPatch) (*models.Holding, error) {
	existing, err := s.storage.TransactionStorage().GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	lock := s.lockSymbol(existing.Symbol)
	lock.Lock()
	defer lock.Unlock()

	patched := *existing
	if patch.Shares != nil {
		patched.Shares = *patch.Shares
	}
	if patch.Price != nil {
		patched.Price = *patch.Price
	}
	if patch.Fees != nil {
		patched.Fees = *patch.Fees
	}
	if patch.Notes != nil {
		patched.Notes = *patch.Notes
	}
	if err := patched.Validate(); err != nil {
		return nil, fmt.Errorf("invalid transaction after edit: %w", err)
	}

	holding, seed, current, err := s.loadState(ctx, existing.Symbol)
	if err != nil {
		return nil, err
	}

	next := make([]models.Transaction, 0, len(current))
	for _, t := range current {
		if t.ID == id {
			next = append(next, patched)
		} else {
			next = append(next, t)
		}
	}

	history, err := costbasis.Replay(seed, next)
	if err != nil {
		return nil, &costbasis.ReconciliationError{Symbol: existing.Symbol, Cause: err}
	}

	if err := s.storage.TransactionStorage().SaveTransaction(ctx, &patched); err != nil {
		return nil, err
	}

	updated, err := s.persistReconciled(ctx, holding, &patched, history)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("symbol", existing.Symbol).
		Str("id", id).
		Float64("holdingShares", updated.Shares).
		Msg("Transaction updated")
	return updated, nil
}

// DeleteTransaction removes a transaction and reconciles from scratch over
// the remaining ledger, so the holding returns to exactly the state it would
// hold had the transaction never existed.
func (s *Service) DeleteTransaction(ctx context.Context, id string) (*models.Holding, error) {
	existing, err := s.storage.TransactionStorage().GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	lock := s.lockSymbol(existing.Symbol)
	lock.Lock()
	defer lock.Unlock()

	holding, seed, current, err := s.loadState(ctx, existing.Symbol)
	if err != nil {
		return nil, err
	}

	next := make([]models.Transaction, 0, len(current))
	for _, t := range current {
		if t.ID != id {
			next = append(next, t)
		}
	}

	history, err := costbasis.Replay(seed, next)
	if err != nil {
		// Deleting a buy that funded a later sell would drive shares negative.
		return nil, &costbasis.ReconciliationError{Symbol: existing.Symbol, Cause: err}
	}

	if err := s.storage.TransactionStorage().DeleteTransaction(ctx, id); err != nil {
		return nil, err
	}

	updated, err := s.persistReconciled(ctx, holding, existing, history)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("symbol", existing.Symbol).
		Str("id", id).
		Float64("holdingShares", updated.Shares).
		Msg("Transaction deleted")
	return updated, nil
}

// GetCostHistory computes the cost-history series for one holding.
func (s *Service) GetCostHistory(ctx context.Context, symbol string) (*costbasis.History, error) {
	symbol = models.NormalizeSymbol(symbol)

	var initialShares, initialAvgCost float64
	holding, err := s.storage.HoldingStorage().GetHolding(ctx, symbol)
	if err == nil {
		initialShares = holding.Shares
		initialAvgCost = holding.AvgCost
	}

	txns, err := s.storage.TransactionStorage().ListBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if holding == nil && len(txns) == 0 {
		return nil, fmt.Errorf("holding '%s' not found", symbol)
	}

	history, err := costbasis.Compute(initialShares, initialAvgCost, txns)
	if err != nil {
		return nil, err
	}
	if history.SeedWarning != nil {
		s.logger.Warn().Str("symbol", symbol).Msg(history.SeedWarning.Error())
	}
	return history, nil
}

// ListGains returns realized gains, optionally filtered by symbol.
func (s *Service) ListGains(ctx context.Context, symbol string) ([]*models.RealizedGain, error) {
	return s.storage.GainStorage().ListGains(ctx, symbol)
}

// GainSummary aggregates all realized gains.
func (s *Service) GainSummary(ctx context.Context) (*models.GainSummary, error) {
	return s.storage.GainStorage().Summary(ctx)
}

// loadState loads a holding (nil when absent), its pre-existing seed, and its
// current ledger. The seed is back-solved from the holding as recorded before
// the mutation, so replaying any candidate ledger against it is a from-scratch
// recomputation rather than an incremental undo.
func (s *Service) loadState(ctx context.Context, symbol string) (*models.Holding, costbasis.Seed, []models.Transaction, error) {
	txns, err := s.storage.TransactionStorage().ListBySymbol(ctx, symbol)
	if err != nil {
		return nil, costbasis.Seed{}, nil, err
	}

	holding, err := s.storage.HoldingStorage().GetHolding(ctx, symbol)
	if err != nil {
		// Absent holding: closed earlier or never created. Pure-ledger seed.
		return nil, costbasis.Seed{}, txns, nil
	}

	seed, warning := costbasis.DeriveSeed(holding.Shares, holding.AvgCost, txns)
	if warning != nil {
		s.logger.Warn().Str("symbol", symbol).Msg(warning.Error())
	}
	return holding, seed, txns, nil
}

// recordRealizedGain appends the closed-lot record for a sell, capturing the
// average cost immediately before that sell from the engine's series.
func (s *Service) recordRealizedGain(ctx context.Context, holding *models.Holding, txn *models.Transaction, history *costbasis.History) error {
	buyPrice, ok := averageCostBefore(history, txn.ID)
	if !ok {
		return fmt.Errorf("sell '%s' missing from recomputed series", txn.ID)
	}

	gain := &models.RealizedGain{
		Symbol:        txn.Symbol,
		TransactionID: txn.ID,
		Shares:        txn.Shares,
		BuyPrice:      buyPrice,
		SellPrice:     txn.Price,
		Fees:          txn.Fees,
		SellDate:      txn.Date,
		Profit:        (txn.Price-buyPrice)*txn.Shares - txn.Fees,
	}
	if holding != nil {
		gain.BuyDate = holding.FirstBuyDate
	}

	return s.storage.GainStorage().AppendGain(ctx, gain)
}

// averageCostBefore returns the average cost at the point just prior to the
// given transaction in the series.
func averageCostBefore(history *costbasis.History, txnID string) (float64, bool) {
	prev := history.Seed.AverageCost
	for _, p := range history.Points {
		if p.TransactionID == txnID {
			return prev, true
		}
		prev = p.AverageCost
	}
	return 0, false
}

// persistReconciled overwrites the holding from the engine's final state. A
// position reduced to exactly zero shares is closed: the holding record is
// removed and a zeroed snapshot returned.
func (s *Service) persistReconciled(ctx context.Context, holding *models.Holding, txn *models.Transaction, history *costbasis.History) (*models.Holding, error) {
	finalShares := history.FinalShares()
	finalAvg := history.FinalAverageCost()

	if holding == nil {
		holding = &models.Holding{
			Symbol:    txn.Symbol,
			CreatedAt: time.Now(),
		}
	}

	if txn.Type == models.TransactionBuy {
		if holding.FirstBuyDate.IsZero() || txn.Date.Before(holding.FirstBuyDate) {
			holding.FirstBuyDate = txn.Date
		}
	}

	if finalShares == 0 {
		if err := s.storage.HoldingStorage().DeleteHolding(ctx, holding.Symbol); err != nil {
			return nil, err
		}
		s.logger.Info().Str("symbol", holding.Symbol).Msg("Position closed")
		holding.Shares = 0
		holding.AvgCost = 0
		return holding, nil
	}

	holding.Shares = finalShares
	holding.AvgCost = finalAvg
	if err := s.storage.HoldingStorage().SaveHolding(ctx, holding); err != nil {
		return nil, err
	}
	return holding, nil
}
