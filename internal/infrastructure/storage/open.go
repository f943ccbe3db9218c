package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocksoup/mbtheme/internal/config"
	"github.com/rocksoup/mbtheme/internal/ports"
)

// ErrLedgerDisabled is returned by Open when the driver is "none".
var ErrLedgerDisabled = errors.New("result ledger disabled")

// Open builds the ledger backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.LedgerConfig) (ports.ResultLedger, error) {
	switch cfg.Driver {
	case "", config.LedgerNone:
		return nil, ErrLedgerDisabled
	case config.LedgerSQLite:
		ledger, err := OpenSQLite(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return ledger, nil
	case config.LedgerMongo:
		ledger, err := OpenMongo(ctx, cfg.DSN, cfg.Database, cfg.Collection)
		if err != nil {
			return nil, err
		}
		return ledger, nil
	default:
		return nil, fmt.Errorf("unknown ledger driver %q", cfg.Driver)
	}
}
