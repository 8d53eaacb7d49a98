// Package costbasis implements the weighted-average-cost inventory engine.
//
// It is the single canonical implementation of the running share count /
// average cost / realized gain computation: every display surface and the
// ledger reconciler call into this package rather than re-deriving the fold
// locally. The engine is pure: it takes the full transaction slice
// explicitly, performs no I/O, and never reaches into storage.
//
// Fee convention: transaction fees reduce realized gain on sells but are
// never folded into running cost, so they do not move the average cost of
// the remaining shares.
package costbasis

import (
	"math"
	"sort"
	"time"

	"github.com/bobmcallan/folio/internal/models"
)

// Epsilon is the absolute tolerance used for share-count comparisons.
const Epsilon = 1e-9

// EventType tags a point in the cost-history series.
type EventType string

const (
	EventInitial EventType = "initial"
	EventBuy     EventType = "buy"
	EventSell    EventType = "sell"
)

// Point is one step of the cost-history series, emitted after every
// transaction (and once up front for a pre-existing position).
type Point struct {
	Date          time.Time `json:"date"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Type          EventType `json:"type"`
	Shares        float64   `json:"shares"`
	AverageCost   float64   `json:"average_cost"`
	Realized      float64   `json:"realized,omitempty"` // sells only: (price - avg) × shares - fees
}

// Seed is the position that predates a ledger.
type Seed struct {
	Shares      float64 `json:"shares"`
	AverageCost float64 `json:"average_cost"`
}

// History is the engine's output: the full point-in-time series plus the
// reconstructed seed. SeedWarning is set (and the series still completed)
// when a seeded holding's ledger implied more shares than the seed covered.
type History struct {
	Seed        Seed                   `json:"seed"`
	Points      []Point                `json:"points"`
	SeedWarning *InconsistentSeedError `json:"-"`
}

// FinalShares returns the share count after the last event, or the seed's
// for an empty series.
func (h *History) FinalShares() float64 {
	if len(h.Points) == 0 {
		return h.Seed.Shares
	}
	return h.Points[len(h.Points)-1].Shares
}

// FinalAverageCost returns the average cost after the last event.
func (h *History) FinalAverageCost() float64 {
	if len(h.Points) == 0 {
		return h.Seed.AverageCost
	}
	return h.Points[len(h.Points)-1].AverageCost
}

// RealizedPoints returns the sell points of the series.
func (h *History) RealizedPoints() []Point {
	var sells []Point
	for _, p := range h.Points {
		if p.Type == EventSell {
			sells = append(sells, p)
		}
	}
	return sells
}

// Compute folds an initial position and a ledger into the cost-history
// series.
//
// initialShares and initialAverageCost describe the holding as currently
// recorded, which may already reflect some or all of the ledger (imported or
// manually seeded holdings). The engine back-solves the position that
// pre-dates the ledger, then replays the ledger over it.
//
// The ledger need not be pre-sorted; it is sorted ascending by date
// defensively, preserving input order for equal dates. The only error is an
// over-sell (*ValidationError), returned with a nil history.
func Compute(initialShares, initialAverageCost float64, txns []models.Transaction) (*History, error) {
	seed, warning := DeriveSeed(initialShares, initialAverageCost, txns)

	history, err := Replay(seed, txns)
	if err != nil {
		return nil, err
	}
	history.SeedWarning = warning
	return history, nil
}

// DeriveSeed reconstructs the position that pre-dates the ledger from a
// holding snapshot that may already include part of the ledger's effect.
//
//	preExistingShares = initialShares - (Σ buy shares - Σ sell shares)
//	preAvgCost        = (initialAverageCost × initialShares - Σ buy cost) / preExistingShares
//
// Both are floored at zero. The warning is non-nil only when the holding was
// actually seeded (initialShares > 0) and the ledger implies more shares than
// the seed covers; a zero-seeded holding built purely from its ledger is the
// normal case, not drift.
func DeriveSeed(initialShares, initialAverageCost float64, txns []models.Transaction) (Seed, *InconsistentSeedError) {
	var buyShares, sellShares, buyCost float64
	for _, t := range txns {
		switch t.Type {
		case models.TransactionBuy:
			buyShares += t.Shares
			buyCost += t.Shares * t.Price
		case models.TransactionSell:
			sellShares += t.Shares
		}
	}

	ledgerNet := buyShares - sellShares
	preShares := initialShares - ledgerNet

	var warning *InconsistentSeedError
	if preShares < -Epsilon && initialShares > Epsilon {
		warning = &InconsistentSeedError{InitialShares: initialShares, LedgerNet: ledgerNet}
	}
	if preShares <= Epsilon {
		return Seed{}, warning
	}

	preAvg := (initialAverageCost*initialShares - buyCost) / preShares
	if preAvg < 0 {
		preAvg = 0
	}
	return Seed{Shares: preShares, AverageCost: preAvg}, warning
}

// Replay folds the ledger over an explicit pre-existing position. Unlike
// Compute it performs no seed reconstruction, which makes it the right entry
// point for reconciliation: derive the seed once from the pre-mutation state,
// then replay any candidate ledger against it.
func Replay(seed Seed, txns []models.Transaction) (*History, error) {
	sorted := make([]models.Transaction, len(txns))
	copy(sorted, txns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	history := &History{Seed: seed}

	runningShares := seed.Shares
	runningCost := seed.Shares * seed.AverageCost

	if seed.Shares > Epsilon {
		initialDate := time.Time{}
		if len(sorted) > 0 {
			initialDate = sorted[0].Date
		}
		history.Points = append(history.Points, Point{
			Date:        initialDate,
			Type:        EventInitial,
			Shares:      runningShares,
			AverageCost: seed.AverageCost,
		})
	}

	for _, t := range sorted {
		point := Point{
			Date:          t.Date,
			TransactionID: t.ID,
		}

		switch t.Type {
		case models.TransactionBuy:
			runningCost += t.Shares * t.Price
			runningShares += t.Shares
			point.Type = EventBuy

		case models.TransactionSell:
			if runningShares <= 0 || t.Shares > runningShares+Epsilon {
				return nil, &ValidationError{
					TransactionID: t.ID,
					Date:          t.Date,
					Requested:     t.Shares,
					Available:     runningShares,
				}
			}
			avgBefore := runningCost / runningShares
			point.Realized = (t.Price-avgBefore)*t.Shares - t.Fees

			// Proportional cost reduction keeps the average cost of the
			// remaining shares unchanged.
			runningCost = runningCost * (runningShares - t.Shares) / runningShares
			runningShares -= t.Shares
			if runningShares <= Epsilon {
				runningShares = 0
				runningCost = 0
			}
			point.Type = EventSell
		}

		if runningShares > 0 {
			point.AverageCost = runningCost / runningShares
		}
		point.Shares = runningShares
		history.Points = append(history.Points, point)
	}

	return history, nil
}

// ApproxEqual reports whether two floats agree within a relative tolerance,
// falling back to absolute comparison near zero.
func ApproxEqual(a, b, relTol float64) bool {
	diff := math.Abs(a - b)
	scale := math.Max(math.Abs(a), math.Abs(b))
	if scale < 1 {
		return diff < relTol
	}
	return diff/scale < relTol
}
