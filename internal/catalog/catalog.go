package catalog

import (
	"context"
	"fmt"
	"io"

	"taxoclass/internal/config"
	"taxoclass/internal/exemplar"
	"taxoclass/internal/services"
	"taxoclass/internal/taxonomy"
)

// Catalog is a closable taxonomy and exemplar source.
type Catalog interface {
	taxonomy.Source
	exemplar.Source
	io.Closer
}

// Open selects the driver named in cfg.
func Open(ctx context.Context, cfg config.Catalog) (Catalog, error) {
	switch cfg.Driver {
	case config.CatalogSQLite, "":
		store, err := OpenSQLite(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.CatalogSnapshot:
		snap, err := LoadSnapshot(cfg.Path)
		if err != nil {
			return nil, err
		}
		return snap, nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "open", fmt.Sprintf("unsupported driver %q", cfg.Driver), nil)
	}
}

var (
	_ Catalog = (*Store)(nil)
	_ Catalog = (*Snapshot)(nil)
)
