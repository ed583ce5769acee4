package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// SchemaVersion is the catalog layout this build reads. Curation tooling that
// writes the database must stamp the same version.
const SchemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Schema returns the DDL for SchemaVersion. The reader never applies it;
// curation tooling and fixtures do.
func Schema() string {
	return schemaSQL
}

func (s *Store) checkSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return fmt.Errorf("%w: catalog has no schema_version table", ErrSchemaMismatch)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version != SchemaVersion {
		return fmt.Errorf("%w: catalog has version %d, expected %d",
			ErrSchemaMismatch, version, SchemaVersion)
	}

	return nil
}
