package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// DiagnosticsRepo reports on the MySQL connection for the diagnostics
// endpoint.
type DiagnosticsRepo struct{ DB *sql.DB }

func NewDiagnosticsRepo(db *sql.DB) *DiagnosticsRepo { return &DiagnosticsRepo{DB: db} }

// Ping checks that the server is reachable.
func (r *DiagnosticsRepo) Ping(ctx context.Context) error {
	if err := r.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Name returns the name of the selected database.
func (r *DiagnosticsRepo) Name(ctx context.Context) (string, error) {
	var name sql.NullString
	if err := r.DB.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&name); err != nil {
		return "", fmt.Errorf("select database: %w", err)
	}
	return name.String, nil
}

// CollectionNames returns up to limit table names of the selected database.
func (r *DiagnosticsRepo) CollectionNames(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, "SHOW TABLES")
	if err != nil {
		return nil, fmt.Errorf("show tables: %w", err)
	}
	defer rows.Close()
	names := make([]string, 0, limit)
	for rows.Next() && len(names) < limit {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
