package ledger

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/costbasis"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/storage"
)

func approxEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func newTestService(t *testing.T) (*Service, interfaces.StorageManager) {
	t.Helper()
	logger := common.NewLogger("error")
	cfg := common.NewDefaultConfig()
	cfg.Storage.Path = t.TempDir()

	manager, err := storage.NewStorageManager(logger, cfg)
	if err != nil {
		t.Fatalf("NewStorageManager failed: %v", err)
	}
	t.Cleanup(func() { manager.Close() })

	return NewService(manager, logger), manager
}

func day(n int) time.Time {
	return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func txn(symbol string, typ models.TransactionType, n int, shares, price, fees float64) *models.Transaction {
	return &models.Transaction{
		Symbol: symbol,
		Type:   typ,
		Shares: shares,
		Price:  price,
		Fees:   fees,
		Date:   day(n),
	}
}

func TestAddTransaction_BuyCreatesHolding(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	h, err := svc.AddTransaction(ctx, txn("cba", models.TransactionBuy, 0, 100, 10.00, 0))
	if err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}
	if h.Symbol != "CBA" {
		t.Errorf("symbol = %s, want CBA (normalized)", h.Symbol)
	}
	if !approxEqual(h.Shares, 100, 1e-9) || !approxEqual(h.AvgCost, 10.00, 1e-9) {
		t.Errorf("holding = %v @ %v, want 100 @ 10.00", h.Shares, h.AvgCost)
	}
	if !h.FirstBuyDate.Equal(day(0)) {
		t.Errorf("first buy date = %v, want %v", h.FirstBuyDate, day(0))
	}
}

func TestAddTransaction_SecondBuyAveragesCost(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.AddTransaction(ctx, txn("CBA", models.TransactionBuy, 0, 100, 10.00, 0))
	h, err := svc.AddTransaction(ctx, txn("CBA", models.TransactionBuy, 1, 100, 20.00, 0))
	if err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}
	if !approxEqual(h.Shares, 200, 1e-9) || !approxEqual(h.AvgCost, 15.00, 1e-9) {
		t.Errorf("holding = %v @ %v, want 200 @ 15.00", h.Shares, h.AvgCost)
	}
}

func TestAddTransaction_SellPreservesAvgAndRecordsGain(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.AddTransaction(ctx, txn("CBA", models.TransactionBuy, 0, 100, 10.00, 0))
	svc.AddTransaction(ctx, txn("CBA", models.TransactionBuy, 1, 100, 20.00, 0))

	h, err := svc.AddTransaction(ctx, txn("CBA", models.TransactionSell, 2, 50, 30.00, 0))
	if err != nil {
		t.Fatalf("AddTransaction (sell) failed: %v", err)
	}
	if !approxEqual(h.Shares, 150, 1e-9) || !approxEqual(h.AvgCost, 15.00, 1e-9) {
		t.Errorf("holding = %v @ %v, want 150 @ 15.00 (sell must not move avg)", h.Shares, h.AvgCost)
	}

	gains, err := svc.ListGains(ctx, "CBA")
	if err != nil {
		t.Fatalf("ListGains failed: %v", err)
	}
	if len(gains) != 1 {
		t.Fatalf("expected 1 realized gain, got %d", len(gains))
	}
	g := gains[0]
	if !approxEqual(g.BuyPrice, 15.00, 1e-9) {
		t.Errorf("buy price = %v, want 15.00 (avg cost before sale)", g.BuyPrice)
	}
	if !approxEqual(g.Profit, 750.00, 1e-9) {
		t.Errorf("profit = %v, want 750.00", g.Profit)
	}
	if !g.BuyDate.Equal(day(0)) {
		t.Errorf("buy date = %v, want first acquisition %v", g.BuyDate, day(0))
	}
}

func TestAddTransaction_SellFeesReduceProfitOnly(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.AddTransaction(ctx, txn("WES", models.TransactionBuy, 0, 100, 10.00, 19.95))
	h, err := svc.AddTransaction(ctx, txn("WES", models.TransactionSell, 1, 50, 12.00, 19.95))
	if err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}
	// Fees never enter the cost basis.
	if !approxEqual(h.AvgCost, 10.00, 1e-9) {
		t.Errorf("avg = %v, want 10.00", h.AvgCost)
	}

	gains, _ := svc.ListGains(ctx, "WES")
	// (12 - 10) * 50 - 19.95 = 80.05
	if len(gains) != 1 || !approxEqual(gains[0].Profit, 80.05, 1e-9) {
		t.Errorf("profit = %v, want 80.05", gains[0].Profit)
	}
}

func TestAddTransaction_OverSellRejectedWithoutStateChange(t *testing.T) {
	svc, sm := newTestService(t)
	ctx := context.Background()

	svc.AddTransaction(ctx, txn("CBA", models.TransactionBuy, 0, 150, 10.00, 0))

	_, err := svc.AddTransaction(ctx, txn("CBA", models.TransactionSell, 1, 300, 12.00, 0))
	var verr *costbasis.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *costbasis.ValidationError, got %v", err)
	}

	h, err := svc.GetHolding(ctx, "CBA")
	if err != nil {
		t.Fatalf("GetHolding failed: %v", err)
	}
	if !approxEqual(h.Shares, 150, 1e-9) || !approxEqual(h.AvgCost, 10.00, 1e-9) {
		t.Errorf("holding mutated by rejected sell: %v @ %v", h.Shares, h.AvgCost)
	}
	txns, _ := sm.TransactionStorage().ListBySymbol(ctx, "CBA")
	if len(txns) != 1 {
		t.Errorf("ledger mutated by rejected sell: %d transactions", len(txns))
	}
	gains, _ := svc.ListGains(ctx, "CBA")
	if len(gains) != 0 {
		t.Errorf("rejected sell recorded a gain")
	}
}

func TestAddTransaction_SellWithoutHoldingRejected(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.AddTransaction(context.Background(), txn("NAB", models.TransactionSell, 0, 10, 30.00, 0))
	if err == nil {
		t.Fatal("expected error selling against unknown holding")
	}
}

func TestAddTransaction_SeededHoldingKeepsBlendedCost(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SeedHolding(ctx, &models.Holding{Symbol: "BHP", Shares: 100, AvgCost: 10.00})
	if err != nil {
		t.Fatalf("SeedHolding failed: %v", err)
	}

	h, err := svc.AddTransaction(ctx, txn("BHP", models.TransactionBuy, 0, 50, 10.00, 0))
	if err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}
	if !approxEqual(h.Shares, 150, 1e-9) || !approxEqual(h.AvgCost, 10.00, 1e-9) {
		t.Errorf("holding = %v @ %v, want 150 @ 10.00", h.Shares, h.AvgCost)
	}

	// The seed must survive further reconciliations.
	history, err := svc.GetCostHistory(ctx, "BHP")
	if err != nil {
		t.Fatalf("GetCostHistory failed: %v", err)
	}
	if !approxEqual(history.Seed.Shares, 100, 1e-9) || !approxEqual(history.Seed.AverageCost, 10.00, 1e-9) {
		t.Errorf("seed = %v @ %v, want 100 @ 10.00", history.Seed.Shares, history.Seed.AverageCost)
	}
}

func TestSeedHolding_DuplicateRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.SeedHolding(ctx, &models.Holding{Symbol: "BHP", Shares: 100, AvgCost: 10.00})
	_, err := svc.SeedHolding(ctx, &models.Holding{Symbol: "bhp", Shares: 5, AvgCost: 1.00})
	if err == nil {
		t.Fatal("expected duplicate seed to be rejected")
	}
}

func TestAddTransaction_SellToZeroClosesHolding(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.AddTransaction(ctx, txn("CBA", models.TransactionBuy, 0, 100, 10.00, 0))
	h, err := svc.AddTransaction(ctx, txn("CBA", models.TransactionSell, 1, 100, 14.00, 0))
	if err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}
	if h.Shares != 0 {
		t.Errorf("shares = %v, want 0", h.Shares)
	}

	if _, err := svc.GetHolding(ctx, "CBA"); err == nil {
		t.Error("expected closed holding to be removed")
	}

	// Gains survive the close; a later buy reopens the position from zero.
	gains, _ := svc.ListGains(ctx, "CBA")
	if len(gains) != 1 {
		t.Fatalf("expected gain to survive close, got %d", len(gains))
	}

	h, err = svc.AddTransaction(ctx, txn("CBA", models.TransactionBuy, 2, 10, 20.00, 0))
	if err != nil {
		t.Fatalf("re-open buy failed: %v", err)
	}
	if !approxEqual(h.Shares, 10, 1e-9) || !approxEqual(h.AvgCost, 20.00, 1e-9) {
		t.Errorf("reopened holding = %v @ %v, want 10 @ 20.00", h.Shares, h.AvgCost)
	}
}

func TestDeleteTransaction_RestoresPriorState(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.AddTransaction(ctx, txn("CBA", models.TransactionBuy, 0, 100, 10.00, 0))
	before, _ := svc.AddTransaction(ctx, txn("CBA", models.TransactionBuy, 1, 37, 13.37, 7))

	if _, err := svc.AddTransaction(ctx, txn("CBA", models.TransactionBuy, 2, 11, 99.99, 0)); err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}

	txns, _ := svc.ListTransactions(ctx, "CBA")
	last := txns[len(txns)-1]

	h, err := svc.DeleteTransaction(ctx, last.ID)
	if err != nil {
		t.Fatalf("DeleteTransaction failed: %v", err)
	}
	if !approxEqual(h.Shares, before.Shares, 1e-9) {
		t.Errorf("shares = %v, want %v restored", h.Shares, before.Shares)
	}
	if !approxEqual(h.AvgCost, before.AvgCost, 1e-9) {
		t.Errorf("avg cost = %v, want %v restored", h.AvgCost, before.AvgCost)
	}
}

func TestDeleteTransaction_BreakingDeleteRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.AddTransaction(ctx, txn("CBA", models.TransactionBuy, 0, 100, 10.00, 0))
	svc.AddTransaction(ctx, txn("CBA", models.TransactionSell, 1, 80, 12.00, 0))

	txns, _ := svc.ListTransactions(ctx, "CBA")
	buyID := txns[0].ID

	_, err := svc.DeleteTransaction(ctx, buyID)
	var rerr *costbasis.ReconciliationError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *costbasis.ReconciliationError, got %v", err)
	}

	// Pre-delete state retained.
	h, err := svc.GetHolding(ctx, "CBA")
	if err != nil {
		t.Fatalf("GetHolding failed: %v", err)
	}
	if !approxEqual(h.Shares, 20, 1e-9) || !approxEqual(h.AvgCost, 10.00, 1e-9) {
		t.Errorf("holding = %v @ %v, want 20 @ 10.00 retained", h.Shares, h.AvgCost)
	}
	remaining, _ := svc.ListTransactions(ctx, "CBA")
	if len(remaining) != 2 {
		t.Errorf("ledger mutated by rejected delete: %d transactions", len(remaining))
	}
}

func TestUpdateTransaction_RetroactiveOverSellRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.AddTransaction(ctx, txn("CBA", models.TransactionBuy, 0, 100, 10.00, 0))
	svc.AddTransaction(ctx, txn("CBA", models.TransactionSell, 1, 50, 12.00, 0))

	txns, _ := svc.ListTransactions(ctx, "CBA")
	sellID := txns[1].ID

	bigger := 150.0
	_, err := svc.UpdateTransaction(ctx, sellID, interfaces.TransactionPatch{Shares: &bigger})
	var rerr *costbasis.ReconciliationError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *costbasis.ReconciliationError, got %v", err)
	}

	h, _ := svc.GetHolding(ctx, "CBA")
	if !approxEqual(h.Shares, 50, 1e-9) {
		t.Errorf("holding mutated by rejected edit: %v shares", h.Shares)
	}
	current, _ := svc.ListTransactions(ctx, "CBA")
	if !approxEqual(current[1].Shares, 50, 1e-9) {
		t.Errorf("transaction mutated by rejected edit: %v shares", current[1].Shares)
	}
}

func TestUpdateTransaction_EditReconcilesHolding(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.AddTransaction(ctx, txn("CBA", models.TransactionBuy, 0, 100, 10.00, 0))
	txns, _ := svc.ListTransactions(ctx, "CBA")

	newPrice := 20.00
	h, err := svc.UpdateTransaction(ctx, txns[0].ID, interfaces.TransactionPatch{Price: &newPrice})
	if err != nil {
		t.Fatalf("UpdateTransaction failed: %v", err)
	}
	if !approxEqual(h.AvgCost, 20.00, 1e-9) {
		t.Errorf("avg cost = %v, want 20.00 after price edit", h.AvgCost)
	}
}

func TestUpdateTransaction_DoesNotReviseRecordedGain(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.AddTransaction(ctx, txn("CBA", models.TransactionBuy, 0, 100, 10.00, 0))
	svc.AddTransaction(ctx, txn("CBA", models.TransactionSell, 1, 50, 30.00, 0))

	txns, _ := svc.ListTransactions(ctx, "CBA")
	sellID := txns[1].ID

	newPrice := 11.00
	if _, err := svc.UpdateTransaction(ctx, sellID, interfaces.TransactionPatch{Price: &newPrice}); err != nil {
		t.Fatalf("UpdateTransaction failed: %v", err)
	}

	// Snapshot-at-sale semantics: the gain keeps the original sale terms.
	gains, _ := svc.ListGains(ctx, "CBA")
	if len(gains) != 1 {
		t.Fatalf("expected 1 gain, got %d", len(gains))
	}
	if !approxEqual(gains[0].SellPrice, 30.00, 1e-9) || !approxEqual(gains[0].Profit, 1000.00, 1e-9) {
		t.Errorf("gain revised by edit: sell %v profit %v", gains[0].SellPrice, gains[0].Profit)
	}
}

func TestGetCostHistory_Reconciliation_Idempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.AddTransaction(ctx, txn("CBA", models.TransactionBuy, 0, 100, 10.00, 5))
	svc.AddTransaction(ctx, txn("CBA", models.TransactionBuy, 2, 60, 14.00, 5))
	svc.AddTransaction(ctx, txn("CBA", models.TransactionSell, 4, 40, 16.00, 5))

	first, err := svc.GetCostHistory(ctx, "CBA")
	if err != nil {
		t.Fatalf("GetCostHistory failed: %v", err)
	}
	second, err := svc.GetCostHistory(ctx, "CBA")
	if err != nil {
		t.Fatalf("second GetCostHistory failed: %v", err)
	}
	if first.FinalShares() != second.FinalShares() || first.FinalAverageCost() != second.FinalAverageCost() {
		t.Errorf("recomputation not idempotent: %v@%v vs %v@%v",
			first.FinalShares(), first.FinalAverageCost(),
			second.FinalShares(), second.FinalAverageCost())
	}

	h, _ := svc.GetHolding(ctx, "CBA")
	if !approxEqual(h.Shares, first.FinalShares(), 1e-9) || !approxEqual(h.AvgCost, first.FinalAverageCost(), 1e-9) {
		t.Errorf("holding %v@%v disagrees with series final %v@%v",
			h.Shares, h.AvgCost, first.FinalShares(), first.FinalAverageCost())
	}
}

func TestGainSummary_AggregatesBySymbol(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.AddTransaction(ctx, txn("CBA", models.TransactionBuy, 0, 100, 10.00, 0))
	svc.AddTransaction(ctx, txn("CBA", models.TransactionSell, 1, 50, 12.00, 0))
	svc.AddTransaction(ctx, txn("BHP", models.TransactionBuy, 0, 10, 40.00, 0))
	svc.AddTransaction(ctx, txn("BHP", models.TransactionSell, 1, 10, 38.00, 5))

	summary, err := svc.GainSummary(ctx)
	if err != nil {
		t.Fatalf("GainSummary failed: %v", err)
	}
	if summary.SellCount != 2 {
		t.Errorf("sell count = %d, want 2", summary.SellCount)
	}
	if !approxEqual(summary.BySymbol["CBA"], 100.00, 1e-9) {
		t.Errorf("CBA profit = %v, want 100.00", summary.BySymbol["CBA"])
	}
	if !approxEqual(summary.BySymbol["BHP"], -25.00, 1e-9) {
		t.Errorf("BHP profit = %v, want -25.00", summary.BySymbol["BHP"])
	}
	if !approxEqual(summary.TotalProfit, 75.00, 1e-9) {
		t.Errorf("total profit = %v, want 75.00", summary.TotalProfit)
	}
}

func TestDeleteHolding_RemovesLedgerKeepsGains(t *testing.T) {
	svc, sm := newTestService(t)
	ctx := context.Background()

	svc.AddTransaction(ctx, txn("CBA", models.TransactionBuy, 0, 100, 10.00, 0))
	svc.AddTransaction(ctx, txn("CBA", models.TransactionSell, 1, 50, 12.00, 0))

	if err := svc.DeleteHolding(ctx, "CBA"); err != nil {
		t.Fatalf("DeleteHolding failed: %v", err)
	}
	txns, _ := sm.TransactionStorage().ListBySymbol(ctx, "CBA")
	if len(txns) != 0 {
		t.Errorf("expected ledger removed, got %d transactions", len(txns))
	}
	gains, _ := svc.ListGains(ctx, "CBA")
	if len(gains) != 1 {
		t.Errorf("expected gains kept, got %d", len(gains))
	}
}

func TestRenderCostHistoryChart_ReturnsPNG(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.AddTransaction(ctx, txn("CBA", models.TransactionBuy, 0, 100, 10.00, 0))
	svc.AddTransaction(ctx, txn("CBA", models.TransactionBuy, 30, 50, 14.00, 0))
	svc.AddTransaction(ctx, txn("CBA", models.TransactionSell, 60, 30, 18.00, 0))

	png, err := svc.RenderCostHistoryChart(ctx, "CBA")
	if err != nil {
		t.Fatalf("RenderCostHistoryChart failed: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("expected PNG magic bytes")
	}
}

func TestRenderCostHistoryChart_TooFewPoints(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.AddTransaction(ctx, txn("CBA", models.TransactionBuy, 0, 100, 10.00, 0))
	if _, err := svc.RenderCostHistoryChart(ctx, "CBA"); err == nil {
		t.Error("expected error for single-point series")
	}
}
