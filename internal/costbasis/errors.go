package costbasis

import (
	"fmt"
	"time"
)

// ValidationError reports a sell whose shares exceed the shares available at
// its position in the chronological ledger. The engine never clamps an
// over-sell; the caller decides whether to reject the transaction or flag the
// data as inconsistent.
type ValidationError struct {
	TransactionID string
	Date          time.Time
	Requested     float64
	Available     float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("sell of %v shares on %s exceeds the %v shares available",
		e.Requested, e.Date.Format("2006-01-02"), e.Available)
}

// ReconciliationError reports that recomputing a holding's ledger failed,
// typically because an edit or delete made a historical sell retroactively
// too large.
// The pre-mutation state must be retained by the caller.
type ReconciliationError struct {
	Symbol string
	Cause  error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("reconciliation of %s failed: %v", e.Symbol, e.Cause)
}

func (e *ReconciliationError) Unwrap() error {
	return e.Cause
}

// InconsistentSeedError reports that a seeded position implies fewer shares
// than its ledger alone accounts for. This is data-entry drift, not a hard
// constraint violation: the engine clamps the pre-existing contribution to
// zero and completes the series, attaching this as a warning.
type InconsistentSeedError struct {
	InitialShares float64
	LedgerNet     float64
}

func (e *InconsistentSeedError) Error() string {
	return fmt.Sprintf("seeded position of %v shares is smaller than the %v net shares implied by its ledger",
		e.InitialShares, e.LedgerNet)
}
