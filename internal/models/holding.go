// Package models defines data structures for Folio
package models

import (
	"fmt"
	"strings"
	"time"
)

// Holding represents one tracked position, keyed by symbol.
//
// Shares and AvgCost are owned by the ledger reconciler: they are overwritten
// from the cost-basis engine's final state after every transaction mutation
// and must not be edited directly once the holding has transactions.
type Holding struct {
	Symbol       string    `json:"symbol"`
	Name         string    `json:"name,omitempty"`
	Shares       float64   `json:"shares"`
	AvgCost      float64   `json:"avg_cost"`
	CurrentPrice float64   `json:"current_price,omitempty"` // informational, never used by the engine
	Notes        string    `json:"notes,omitempty"`
	FirstBuyDate time.Time `json:"first_buy_date,omitempty"` // earliest acquisition, feeds RealizedGain.BuyDate
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CostBasis returns the remaining cost basis (shares × average cost).
func (h Holding) CostBasis() float64 {
	return h.Shares * h.AvgCost
}

// MarketValue returns the position value at the informational current price.
func (h Holding) MarketValue() float64 {
	return h.Shares * h.CurrentPrice
}

// Closed reports whether the position holds no shares.
func (h Holding) Closed() bool {
	return h.Shares == 0
}

// Validate checks holding fields for direct (seed) creation.
func (h Holding) Validate() error {
	if strings.TrimSpace(h.Symbol) == "" {
		return fmt.Errorf("symbol is required")
	}
	if h.Shares < 0 {
		return fmt.Errorf("shares must not be negative, got %v", h.Shares)
	}
	if h.AvgCost < 0 {
		return fmt.Errorf("avg_cost must not be negative, got %v", h.AvgCost)
	}
	return nil
}

// NormalizeSymbol uppercases and trims a ticker symbol so that "bhp" and
// "BHP " address the same holding.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
