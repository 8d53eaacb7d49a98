package models

import "time"

// RealizedGain is one closed-lot record, appended when a sell transaction is
// processed. It is a snapshot at time of sale: later edits or deletes of the
// originating transaction do not revise it.
type RealizedGain struct {
	ID            string    `json:"id"`
	Symbol        string    `json:"symbol"`
	TransactionID string    `json:"transaction_id"` // originating sell
	Shares        float64   `json:"shares"`
	BuyPrice      float64   `json:"buy_price"` // average cost immediately before the sell
	SellPrice     float64   `json:"sell_price"`
	Fees          float64   `json:"fees"`
	BuyDate       time.Time `json:"buy_date,omitempty"` // holding's first acquisition date
	SellDate      time.Time `json:"sell_date"`
	Profit        float64   `json:"profit"` // (sell - buy) × shares - fees, signed
	CreatedAt     time.Time `json:"created_at"`
}

// GainSummary aggregates realized gains for reporting.
type GainSummary struct {
	TotalProfit float64            `json:"total_profit"`
	TotalFees   float64            `json:"total_fees"`
	SellCount   int                `json:"sell_count"`
	BySymbol    map[string]float64 `json:"by_symbol"`
}
