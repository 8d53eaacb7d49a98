package models

import (
	"fmt"
	"strings"
	"time"
)

// Dividend records an income payment against a holding.
type Dividend struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Amount    float64   `json:"amount"`
	Date      time.Time `json:"date"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks dividend fields before persistence.
func (d Dividend) Validate() error {
	if strings.TrimSpace(d.Symbol) == "" {
		return fmt.Errorf("symbol is required")
	}
	if d.Amount <= 0 {
		return fmt.Errorf("amount must be positive, got %v", d.Amount)
	}
	if d.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	return nil
}

// Expense records a cash outgoing (brokerage subscriptions, platform fees, etc.).
type Expense struct {
	ID          string    `json:"id"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate checks expense fields before persistence.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.Category) == "" {
		return fmt.Errorf("category is required")
	}
	if e.Amount <= 0 {
		return fmt.Errorf("amount must be positive, got %v", e.Amount)
	}
	if e.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	return nil
}

// Certificate records a bank savings certificate (term deposit).
// Interest accrues as simple annual interest over the term.
type Certificate struct {
	ID         string    `json:"id"`
	Bank       string    `json:"bank"`
	Principal  float64   `json:"principal"`
	AnnualRate float64   `json:"annual_rate"` // percent, e.g. 4.5
	TermMonths int       `json:"term_months"`
	StartDate  time.Time `json:"start_date"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate checks certificate fields before persistence.
func (c Certificate) Validate() error {
	if strings.TrimSpace(c.Bank) == "" {
		return fmt.Errorf("bank is required")
	}
	if c.Principal <= 0 {
		return fmt.Errorf("principal must be positive, got %v", c.Principal)
	}
	if c.AnnualRate < 0 {
		return fmt.Errorf("annual_rate must not be negative, got %v", c.AnnualRate)
	}
	if c.TermMonths <= 0 {
		return fmt.Errorf("term_months must be positive, got %d", c.TermMonths)
	}
	if c.StartDate.IsZero() {
		return fmt.Errorf("start_date is required")
	}
	return nil
}

// MaturityDate returns the date the certificate matures.
func (c Certificate) MaturityDate() time.Time {
	return c.StartDate.AddDate(0, c.TermMonths, 0)
}

// MaturityValue returns principal plus simple interest over the full term.
func (c Certificate) MaturityValue() float64 {
	return c.Principal * (1 + c.AnnualRate/100*float64(c.TermMonths)/12)
}

// CashbookSummary aggregates dividends and expenses for reporting.
type CashbookSummary struct {
	TotalDividends     float64            `json:"total_dividends"`
	DividendsBySymbol  map[string]float64 `json:"dividends_by_symbol"`
	TotalExpenses      float64            `json:"total_expenses"`
	ExpensesByCategory map[string]float64 `json:"expenses_by_category"`
	NetIncome          float64            `json:"net_income"` // dividends - expenses
}
