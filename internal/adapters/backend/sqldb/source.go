// Package sqldb holds the database/sql plumbing shared by the PostgreSQL and
// SQL Server table sources. Concrete backends embed Source and add Describe.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/olusolaa/oneroster-parity/internal/core/domain"
	"github.com/olusolaa/oneroster-parity/internal/core/ports"
	"github.com/olusolaa/oneroster-parity/internal/errors"
)

// Dialect captures the SQL that differs between backends.
type Dialect struct {
	Name string
	// QuoteIdent quotes a single identifier.
	QuoteIdent func(string) string
	// ProbeQuery selects at most one row from a qualified table name.
	ProbeQuery func(qualified string) string
	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder func(n int) string
	// Convert turns a scanned driver value into plain Go data. It may be nil.
	Convert func(databaseType string, v any) any
}

// Source implements the read side of ports.TableSource over a *sql.DB.
type Source struct {
	DB      *sql.DB
	Schema  string
	Dialect Dialect
	Logger  ports.Logger

	label string
}

func NewSource(label string, db *sql.DB, schema string, dialect Dialect, logger ports.Logger) *Source {
	return &Source{
		DB:      db,
		Schema:  schema,
		Dialect: dialect,
		Logger:  logger.WithFields(map[string]any{"backend": label}),
		label:   label,
	}
}

func (s *Source) Label() string {
	return s.label
}

// Qualified returns the quoted schema.table reference for an endpoint.
func (s *Source) Qualified(table string) string {
	if s.Schema == "" {
		return s.Dialect.QuoteIdent(table)
	}
	return s.Dialect.QuoteIdent(s.Schema) + "." + s.Dialect.QuoteIdent(table)
}

// ListColumns reads the column list from a single-row probe and falls back to
// information_schema when the probe fails.
func (s *Source) ListColumns(ctx context.Context, endpoint domain.Endpoint) ([]string, error) {
	if s.DB == nil {
		return nil, errors.New(errors.CodeConnectionError, "database connection not established")
	}
	table := endpoint.TableName()

	cols, err := s.probeColumns(ctx, table)
	if err == nil && len(cols) > 0 {
		return cols, nil
	}
	if err != nil {
		s.Logger.Debugf(ctx, "Column probe on %s failed, falling back to information_schema: %v", table, err)
	}

	cols, err = s.schemaColumns(ctx, table)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeBackendError,
			fmt.Sprintf("failed to read columns of %s from %s", table, s.label))
	}
	return cols, nil
}

func (s *Source) probeColumns(ctx context.Context, table string) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, s.Dialect.ProbeQuery(s.Qualified(table)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return rows.Columns()
}

func (s *Source) schemaColumns(ctx context.Context, table string) ([]string, error) {
	query := fmt.Sprintf(`SELECT column_name FROM information_schema.columns WHERE table_schema = %s AND table_name = %s ORDER BY ordinal_position`,
		s.Dialect.Placeholder(1), s.Dialect.Placeholder(2))

	rows, err := s.DB.QueryContext(ctx, query, s.Schema, table)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

// FetchAllRows scans the whole table. Row order is whatever the backend
// returns.
func (s *Source) FetchAllRows(ctx context.Context, endpoint domain.Endpoint, side domain.Side) ([]domain.Row, error) {
	if s.DB == nil {
		return nil, errors.New(errors.CodeConnectionError, "database connection not established")
	}
	table := endpoint.TableName()

	//nolint:gosec // identifiers are quoted and come from configuration
	rows, err := s.DB.QueryContext(ctx, "SELECT * FROM "+s.Qualified(table))
	if err != nil {
		return nil, s.queryError(ctx, err, table)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeBackendError, fmt.Sprintf("failed to read result columns of %s", table))
	}
	types := s.columnTypes(rows, len(cols))

	var out []domain.Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(err, errors.CodeBackendError, fmt.Sprintf("failed to scan row of %s", table))
		}
		record := make(map[string]any, len(cols))
		for i, col := range cols {
			record[col] = s.convert(types[i], values[i])
		}
		out = append(out, domain.NewRow(endpoint.Name, side, record))
	}
	if err := rows.Err(); err != nil {
		return nil, s.queryError(ctx, err, table)
	}

	s.Logger.Debugf(ctx, "Fetched %d rows from %s", len(out), table)
	return out, nil
}

func (s *Source) columnTypes(rows *sql.Rows, n int) []string {
	names := make([]string, n)
	types, err := rows.ColumnTypes()
	if err != nil {
		return names
	}
	for i := 0; i < n && i < len(types); i++ {
		names[i] = types[i].DatabaseTypeName()
	}
	return names
}

func (s *Source) convert(databaseType string, v any) any {
	if s.Dialect.Convert != nil {
		return s.Dialect.Convert(databaseType, v)
	}
	return ConvertDefault(v)
}

func (s *Source) queryError(ctx context.Context, err error, table string) error {
	if ctx.Err() != nil {
		return errors.Wrap(ctx.Err(), errors.CodeTimeout, fmt.Sprintf("query on %s did not finish in time", table))
	}
	return errors.Wrap(err, errors.CodeBackendError, fmt.Sprintf("failed to query %s on %s", table, s.label))
}

// Close closes the connection pool. Closing an unopened source is a no-op.
func (s *Source) Close() error {
	if s.DB == nil {
		return nil
	}
	s.Logger.Debugf(context.Background(), "Closing database connection")
	return s.DB.Close()
}

// QueryRow runs a single-row query and scans it into dest.
func (s *Source) QueryRow(ctx context.Context, query string, dest ...any) error {
	if s.DB == nil {
		return errors.New(errors.CodeConnectionError, "database connection not established")
	}
	return s.DB.QueryRowContext(ctx, query).Scan(dest...)
}
