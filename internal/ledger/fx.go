package ledger

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/evalworks/vendoreval/internal/config"
	"github.com/evalworks/vendoreval/internal/ledger/domain"
	"github.com/evalworks/vendoreval/internal/ledger/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("ledger",
	fx.Provide(provideStore),
)

func provideStore(cfg config.Config, conn *gorm.DB, genID *snowflake.Node, log *zap.Logger) (domain.Store, error) {
	switch cfg.LedgerBackend {
	case config.LedgerBackendDatabase:
		store := repository.NewDBStore(conn, genID)
		if err := store.Migrate(); err != nil {
			return nil, fmt.Errorf("migrate vote_records: %w", err)
		}
		return store, nil
	case config.LedgerBackendCSV:
		return repository.NewCSVStore(cfg.LedgerCSVPath, log), nil
	default:
		return nil, fmt.Errorf("unsupported ledger backend %q", cfg.LedgerBackend)
	}
}
