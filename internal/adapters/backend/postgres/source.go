// Package postgres provides the PostgreSQL table source. PostgreSQL is the
// authoritative side (A) of every table comparison.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/olusolaa/oneroster-parity/internal/adapters/backend/sqldb"
	"github.com/olusolaa/oneroster-parity/internal/core/domain"
	"github.com/olusolaa/oneroster-parity/internal/core/ports"
	"github.com/olusolaa/oneroster-parity/internal/errors"
)

const Label = "postgres"

type Config struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Database string `mapstructure:"database" validate:"required"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Schema   string `mapstructure:"schema"`
	SSLMode  string `mapstructure:"sslmode"`
}

// Dialect is the PostgreSQL flavour of the shared SQL plumbing.
var Dialect = sqldb.Dialect{
	Name:        "postgres",
	QuoteIdent:  quoteIdent,
	ProbeQuery:  func(q string) string { return "SELECT * FROM " + q + " LIMIT 1" },
	Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	Convert:     convert,
}

type Source struct {
	*sqldb.Source
}

var _ ports.TableSource = (*Source)(nil)

// Open connects and pings the server.
func Open(ctx context.Context, cfg Config, logger ports.Logger) (*Source, error) {
	logger.Debugf(ctx, "Connecting to postgres at %s:%d/%s", cfg.Host, cfg.Port, cfg.Database)

	db, err := sql.Open("pgx", DSN(cfg))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConnectionError, "failed to open postgres connection")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.WrapUserFacing(err, errors.CodeConnectionError,
			fmt.Sprintf("Cannot connect to PostgreSQL at %s:%d", cfg.Host, cfg.Port),
			"Check that the database is running and the datasets.<version>.postgres settings are correct.")
	}
	return New(db, cfg.Schema, logger), nil
}

// New wraps an existing connection pool.
func New(db *sql.DB, schema string, logger ports.Logger) *Source {
	return &Source{Source: sqldb.NewSource(Label, db, schema, Dialect, logger)}
}

// DSN builds a key=value connection string.
func DSN(cfg Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s", host, port, cfg.Database, sslmode)
	if cfg.User != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.User)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}
	return dsn
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// convert decodes json/jsonb columns so structured values arrive as maps and
// slices, the way the REST layer serves them.
func convert(databaseType string, v any) any {
	switch strings.ToUpper(databaseType) {
	case "JSON", "JSONB":
		return sqldb.DecodeJSON(v)
	}
	return sqldb.ConvertDefault(v)
}

// Describe reports server identity and the deployed Ed-Fi data standard.
func (s *Source) Describe(ctx context.Context) (domain.BackendInfo, error) {
	info := domain.BackendInfo{Label: Label, DataStandard: domain.StandardUnknown}

	var server sql.NullString
	err := s.QueryRow(ctx,
		`SELECT version(), current_database(), current_user, COALESCE(inet_server_addr()::text, 'local')`,
		&info.Version, &info.Database, &info.User, &server)
	if err != nil {
		return info, errors.Wrap(err, errors.CodeBackendError, "failed to describe postgres backend")
	}
	info.Server = server.String

	info.DataStandard = s.detectStandard(ctx)
	return info, nil
}

func (s *Source) detectStandard(ctx context.Context) string {
	var script string
	err := s.QueryRow(ctx, `SELECT scriptname FROM public."DeployJournal" WHERE scriptname LIKE '%Standard.4.%' OR scriptname LIKE '%Standard.5.%' ORDER BY scriptname LIMIT 1`, &script)
	if err == nil {
		if std := domain.StandardFromScript(script); std != "" {
			return std
		}
	} else {
		s.Logger.Debugf(ctx, "DeployJournal lookup failed, inferring standard from tables: %v", err)
	}

	var hasContact, hasParent bool
	err = s.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'edfi' AND table_name = 'contact'), EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'edfi' AND table_name = 'parent')`,
		&hasContact, &hasParent)
	if err != nil {
		s.Logger.Debugf(ctx, "Standard detection from tables failed: %v", err)
		return domain.StandardUnknown
	}
	return domain.StandardFromTables(hasContact, hasParent)
}
