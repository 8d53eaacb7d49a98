// Package cashbook tracks the cash side of the portfolio: dividend income,
// expenses, and bank savings certificates. Entries are independent records
// and never feed into cost-basis calculations.
package cashbook

import (
	"context"
	"fmt"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

func (s *Service) AddDividend(ctx context.Context, d *models.Dividend) (*models.Dividend, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dividend: %w", err)
	}
	if err := s.storage.CashbookStorage().SaveDividend(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("symbol", d.Symbol).
		Float64("amount", d.Amount).
		Msg("Dividend recorded")
	return d, nil
}

func (s *Service) ListDividends(ctx context.Context, symbol string) ([]*models.Dividend, error) {
	return s.storage.CashbookStorage().ListDividends(ctx, symbol)
}

func (s *Service) DeleteDividend(ctx context.Context, id string) error {
	return s.storage.CashbookStorage().DeleteDividend(ctx, id)
}

func (s *Service) AddExpense(ctx context.Context, e *models.Expense) (*models.Expense, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("invalid expense: %w", err)
	}
	if err := s.storage.CashbookStorage().SaveExpense(ctx, e); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("category", e.Category).
		Float64("amount", e.Amount).
		Msg("Expense recorded")
	return e, nil
}

func (s *Service) ListExpenses(ctx context.Context) ([]*models.Expense, error) {
	return s.storage.CashbookStorage().ListExpenses(ctx)
}

func (s *Service) DeleteExpense(ctx context.Context, id string) error {
	return s.storage.CashbookStorage().DeleteExpense(ctx, id)
}

func (s *Service) AddCertificate(ctx context.Context, c *models.Certificate) (*models.Certificate, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid certificate: %w", err)
	}
	if err := s.storage.CashbookStorage().SaveCertificate(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("bank", c.Bank).
		Float64("principal", c.Principal).
		Time("matures", c.MaturityDate()).
		Msg("Certificate recorded")
	return c, nil
}

func (s *Service) ListCertificates(ctx context.Context) ([]*models.Certificate, error) {
	return s.storage.CashbookStorage().ListCertificates(ctx)
}

func (s *Service) DeleteCertificate(ctx context.Context, id string) error {
	return s.storage.CashbookStorage().DeleteCertificate(ctx, id)
}

// Summary aggregates dividends against expenses across all entries.
func (s *Service) Summary(ctx context.Context) (*models.CashbookSummary, error) {
	dividends, err := s.storage.CashbookStorage().ListDividends(ctx, "")
	if err != nil {
		return nil, err
	}
	expenses, err := s.storage.CashbookStorage().ListExpenses(ctx)
	if err != nil {
		return nil, err
	}

	summary := &models.CashbookSummary{
		DividendsBySymbol:  make(map[string]float64),
		ExpensesByCategory: make(map[string]float64),
	}
	for _, d := range dividends {
		summary.TotalDividends += d.Amount
		summary.DividendsBySymbol[d.Symbol] += d.Amount
	}
	for _, e := range expenses {
		summary.TotalExpenses += e.Amount
		summary.ExpensesByCategory[e.Category] += e.Amount
	}
	summary.NetIncome = summary.TotalDividends - summary.TotalExpenses

	return summary, nil
}
