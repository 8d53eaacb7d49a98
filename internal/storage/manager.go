// Package storage wires the concrete storage backends behind the
// StorageManager contract.
package storage

import (
	"fmt"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/storage/badger"
)

// Manager implements interfaces.StorageManager over a single embedded
// BadgerHold database.
type Manager struct {
	store        *badger.Store
	holdings     interfaces.HoldingStorage
	transactions interfaces.TransactionStorage
	gains        interfaces.GainStorage
	cashbook     interfaces.CashbookStorage
	kv           interfaces.KeyValueStorage
	logger       *common.Logger
}

// NewStorageManager opens the embedded database and builds all storages.
func NewStorageManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	store, err := badger.NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage at %s: %w", config.Storage.Path, err)
	}

	return &Manager{
		store:        store,
		holdings:     badger.NewHoldingStorage(store, logger),
		transactions: badger.NewTransactionStorage(store, logger),
		gains:        badger.NewGainStorage(store, logger),
		cashbook:     badger.NewCashbookStorage(store, logger),
		kv:           badger.NewKVStorage(store, logger),
		logger:       logger,
	}, nil
}

func (m *Manager) HoldingStorage() interfaces.HoldingStorage         { return m.holdings }
func (m *Manager) TransactionStorage() interfaces.TransactionStorage { return m.transactions }
func (m *Manager) GainStorage() interfaces.GainStorage               { return m.gains }
func (m *Manager) CashbookStorage() interfaces.CashbookStorage       { return m.cashbook }
func (m *Manager) KeyValueStorage() interfaces.KeyValueStorage       { return m.kv }

// Close closes the underlying database.
func (m *Manager) Close() error {
	if m.store != nil {
		return m.store.Close()
	}
	return nil
}
