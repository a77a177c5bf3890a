package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"notionsync/internal/schema"
)

// PostgresStore applies projected schemas and rows to a Postgres database.
// It implements schema.Store.
type PostgresStore struct {
	db *sql.DB
}

var _ schema.Store = (*PostgresStore)(nil)

// OpenPostgres connects to the database described by conn.
func OpenPostgres(ctx context.Context, conn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", conn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return NewPostgresStore(db), nil
}

// NewPostgresStore wraps an open database.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// DB returns the underlying handle.
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// ApplyDDL runs the statements in order inside one transaction.
func (s *PostgresStore) ApplyDDL(ctx context.Context, statements []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply %q: %w", stmt, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema: %w", err)
	}
	return nil
}

// BulkUpsert writes rows in pages that fit the bind parameter limit, inside
// one transaction.
func (s *PostgresStore) BulkUpsert(ctx context.Context, u schema.Upsert, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	page := u.PageSize(schema.DefaultPageSize)
	var total int64
	for start := 0; start < len(rows); start += page {
		end := min(start+page, len(rows))
		chunk := rows[start:end]

		args := make([]any, 0, len(chunk)*len(u.Columns))
		for i, row := range chunk {
			if len(row) != len(u.Columns) {
				return 0, fmt.Errorf("row %d has %d values, want %d", start+i, len(row), len(u.Columns))
			}
			args = append(args, row...)
		}

		res, err := tx.ExecContext(ctx, u.Statement(len(chunk)), args...)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert rows %d-%d: %w", start, end-1, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to get rows affected: %w", err)
		}
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit upsert: %w", err)
	}
	return total, nil
}
