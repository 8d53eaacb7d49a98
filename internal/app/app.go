// Package app wires configuration, storage, and services into a single
// application core shared by cmd/folio-server and tests.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/services/cashbook"
	"github.com/bobmcallan/folio/internal/services/ledger"
	"github.com/bobmcallan/folio/internal/storage"
)

// SchemaVersion identifies the storage layout. Bump when persisted models
// change shape; holdings are recomputed from the ledger on mismatch.
const SchemaVersion = "1"

// App holds all initialized services and storage.
type App struct {
	Config          *common.Config
	Logger          *common.Logger
	Storage         interfaces.StorageManager
	LedgerService   interfaces.LedgerService
	CashbookService interfaces.CashbookService
	StartupTime     time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, logging, storage, and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	// Config resolution: explicit path, FOLIO_CONFIG, binary dir, then dev fallback
	if configPath == "" {
		configPath = os.Getenv("FOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "folio.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/folio.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative paths to the binary directory for self-contained operation
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewStorageManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	ctx := context.Background()
	if err := checkSchemaVersion(ctx, storageManager, logger); err != nil {
		storageManager.Close()
		return nil, err
	}

	ledgerService := ledger.NewService(storageManager, logger)
	cashbookService := cashbook.NewService(storageManager, logger)

	return &App{
		Config:          config,
		Logger:          logger,
		Storage:         storageManager,
		LedgerService:   ledgerService,
		CashbookService: cashbookService,
		StartupTime:     time.Now(),
	}, nil
}

// checkSchemaVersion compares the stored schema version against the binary's
// and records the current version and build timestamp.
func checkSchemaVersion(ctx context.Context, sm interfaces.StorageManager, logger *common.Logger) error {
	kv := sm.KeyValueStorage()

	stored, err := kv.Get(ctx, "folio_schema_version")
	if err == nil && stored != "" && stored != SchemaVersion {
		logger.Warn().
			Str("stored", stored).
			Str("current", SchemaVersion).
			Msg("Schema version mismatch - holdings will be reconciled from ledgers on access")
	}

	if err := kv.Set(ctx, "folio_schema_version", SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	if err := kv.Set(ctx, "folio_build_timestamp", time.Now().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to record build timestamp: %w", err)
	}
	return nil
}

// Close releases storage resources.
func (a *App) Close() {
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}
