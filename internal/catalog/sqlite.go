package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"taxoclass/internal/exemplar"
	"taxoclass/internal/services"
	"taxoclass/internal/taxonomy"
)

// Store reads the catalog from a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// OpenSQLite opens the catalog database at path read-only. The file must
// already exist and carry the expected schema version; curation tooling owns
// writes.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "open", "sqlite path is empty", nil)
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "catalog", "open", path, err)
		}
		return nil, fmt.Errorf("stat catalog: %w", err)
	}

	db, err := sql.Open("sqlite", readOnlyDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply busy_timeout: %w", err)
	}

	store := &Store{db: db, path: path}
	if err := store.checkSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func readOnlyDSN(path string) string {
	return "file:" + path + "?mode=ro"
}

// Path returns the database file backing the store.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ActiveNodes returns every taxonomy row. Inactive rows are included so the
// forest builder can drop their descendants.
func (s *Store) ActiveNodes(ctx context.Context) ([]taxonomy.Node, error) {
	var nodes []taxonomy.Node
	err := retryOnBusy(ctx, func() error {
		nodes = nodes[:0]
		rows, err := s.db.QueryContext(ctx,
			`SELECT id, name, kind, parent_id, active, sort_order FROM taxonomy_nodes ORDER BY sort_order, name, id`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				node     taxonomy.Node
				kindRaw  string
				parentID sql.NullString
				active   int64
			)
			if err := rows.Scan(&node.ID, &node.Name, &kindRaw, &parentID, &active, &node.Order); err != nil {
				return err
			}
			kind, err := taxonomy.ParseKind(kindRaw)
			if err != nil {
				return services.Wrap(services.ErrValidation, "catalog", "taxonomy", fmt.Sprintf("node %s", node.ID), err)
			}
			node.Kind = kind
			node.ParentID = parentID.String
			node.Active = active != 0
			nodes = append(nodes, node)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("query taxonomy nodes: %w", err)
	}
	return nodes, nil
}

// ApprovedExemplars returns up to limit approved records, most recently
// approved first.
func (s *Store) ApprovedExemplars(ctx context.Context, limit int) ([]exemplar.Exemplar, error) {
	if limit <= 0 {
		return nil, nil
	}
	var out []exemplar.Exemplar
	err := retryOnBusy(ctx, func() error {
		out = out[:0]
		rows, err := s.db.QueryContext(ctx,
			`SELECT title, primary_pillar, secondary_pillars_json, sub, competence, behavior, observations
             FROM exemplars
             WHERE status = 'approved'
             ORDER BY approved_at DESC, id DESC
             LIMIT ?`, limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				ex        exemplar.Exemplar
				secondary sql.NullString
			)
			if err := rows.Scan(&ex.Title, &ex.PrimaryPillar, &secondary, &ex.Sub, &ex.Competence, &ex.Behavior, &ex.Observations); err != nil {
				return err
			}
			if secondary.Valid && strings.TrimSpace(secondary.String) != "" {
				if err := json.Unmarshal([]byte(secondary.String), &ex.SecondaryPillars); err != nil {
					return fmt.Errorf("decode secondary pillars for %q: %w", ex.Title, err)
				}
			}
			out = append(out, ex)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("query approved exemplars: %w", err)
	}
	return out, nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// retryOnBusy reruns op while another writer holds the database lock.
func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
