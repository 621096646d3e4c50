package storage

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"NewsCatcher/internal/domain"
	"NewsCatcher/internal/ports"
)

const defaultTable = "seen_items"

var tableName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresStore remembers delivered fingerprints in Postgres.
type PostgresStore struct {
	db    *sql.DB
	table string
}

var _ ports.SeenStore = (*PostgresStore)(nil)

// NewPostgresStore wires a sql.DB implementation. The table name must be a plain identifier.
func NewPostgresStore(db *sql.DB, table string) (*PostgresStore, error) {
	if table == "" {
		table = defaultTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &PostgresStore{db: db, table: table}, nil
}

// EnsureSchema creates the fingerprint table when missing.
func (r *PostgresStore) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		fingerprint TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		url         TEXT NOT NULL,
		label       TEXT NOT NULL,
		first_seen  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`, r.table)
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// AlreadySeen returns the subset of fingerprints stored by earlier runs.
func (r *PostgresStore) AlreadySeen(ctx context.Context, fingerprints []string) (map[string]bool, error) {
	if r.db == nil || len(fingerprints) == 0 {
		return map[string]bool{}, nil
	}

	query, args, err := r.seenQuery(fingerprints)
	if err != nil {
		return nil, fmt.Errorf("build seen query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query seen: %w", err)
	}

	result := make(map[string]bool)
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan fingerprint: %w", err)
		}
		result[fp] = true
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

// Remember inserts delivered items, ignoring fingerprints already present.
func (r *PostgresStore) Remember(ctx context.Context, items []domain.Item) error {
	if r.db == nil || len(items) == 0 {
		return nil
	}

	query, args, err := r.rememberQuery(items)
	if err != nil {
		return fmt.Errorf("build remember query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert seen: %w", err)
	}
	return nil
}

func (r *PostgresStore) seenQuery(fingerprints []string) (string, []any, error) {
	return psql.Select("fingerprint").
		From(r.table).
		Where("fingerprint = ANY(?)", pq.Array(fingerprints)).
		ToSql()
}

func (r *PostgresStore) rememberQuery(items []domain.Item) (string, []any, error) {
	insert := psql.Insert(r.table).Columns("fingerprint", "title", "url", "label")
	for _, item := range items {
		fp := item.Fingerprint
		if fp == "" {
			fp = domain.Fingerprint(item.Title)
		}
		insert = insert.Values(fp, item.Title, item.URL, item.Label)
	}
	return insert.Suffix("ON CONFLICT (fingerprint) DO NOTHING").ToSql()
}
