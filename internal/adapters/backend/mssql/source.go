// Package mssql provides the SQL Server table source (side B).
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	mssqldriver "github.com/microsoft/go-mssqldb"
	"github.com/olusolaa/oneroster-parity/internal/adapters/backend/sqldb"
	"github.com/olusolaa/oneroster-parity/internal/core/domain"
	"github.com/olusolaa/oneroster-parity/internal/core/ports"
	"github.com/olusolaa/oneroster-parity/internal/errors"
)

const Label = "mssql"

type Config struct {
	Host                   string `mapstructure:"host" validate:"required"`
	Port                   int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Database               string `mapstructure:"database" validate:"required"`
	User                   string `mapstructure:"user"`
	Password               string `mapstructure:"password"`
	Schema                 string `mapstructure:"schema"`
	Encrypt                bool   `mapstructure:"encrypt"`
	TrustServerCertificate bool   `mapstructure:"trust_server_certificate"`
}

var Dialect = sqldb.Dialect{
	Name:        "sqlserver",
	QuoteIdent:  quoteIdent,
	ProbeQuery:  func(q string) string { return "SELECT TOP 1 * FROM " + q },
	Placeholder: func(n int) string { return fmt.Sprintf("@p%d", n) },
	Convert:     convert,
}

type Source struct {
	*sqldb.Source
}

var _ ports.TableSource = (*Source)(nil)

func Open(ctx context.Context, cfg Config, logger ports.Logger) (*Source, error) {
	logger.Debugf(ctx, "Connecting to sqlserver at %s:%d/%s", cfg.Host, cfg.Port, cfg.Database)

	db, err := sql.Open("sqlserver", ConnectionURL(cfg))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConnectionError, "failed to open sqlserver connection")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.WrapUserFacing(err, errors.CodeConnectionError,
			fmt.Sprintf("Cannot connect to SQL Server at %s:%d", cfg.Host, cfg.Port),
			"Check that the database is running and the datasets.<version>.mssql settings are correct.")
	}
	return New(db, cfg.Schema, logger), nil
}

func New(db *sql.DB, schema string, logger ports.Logger) *Source {
	return &Source{Source: sqldb.NewSource(Label, db, schema, Dialect, logger)}
}

// ConnectionURL builds a sqlserver:// URL understood by go-mssqldb.
func ConnectionURL(cfg Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 1433
	}

	query := url.Values{}
	if cfg.Database != "" {
		query.Set("database", cfg.Database)
	}
	query.Set("encrypt", strconv.FormatBool(cfg.Encrypt))
	if cfg.TrustServerCertificate {
		query.Set("TrustServerCertificate", "true")
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		Host:     fmt.Sprintf("%s:%d", host, port),
		RawQuery: query.Encode(),
	}
	if cfg.User != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}
	return u.String()
}

func quoteIdent(s string) string {
	return "[" + strings.ReplaceAll(s, "]", "]]") + "]"
}

// convert renders uniqueidentifier columns in their canonical text form and
// exact numerics as decimal text. JSON stored in NVARCHAR stays a string.
func convert(databaseType string, v any) any {
	switch strings.ToUpper(databaseType) {
	case "UNIQUEIDENTIFIER":
		var id mssqldriver.UniqueIdentifier
		if err := id.Scan(v); err == nil {
			return id.String()
		}
	}
	return sqldb.ConvertDefault(v)
}

func (s *Source) Describe(ctx context.Context) (domain.BackendInfo, error) {
	info := domain.BackendInfo{Label: Label, DataStandard: domain.StandardUnknown}

	var server sql.NullString
	err := s.QueryRow(ctx,
		`SELECT CAST(SERVERPROPERTY('ProductVersion') AS NVARCHAR(128)), DB_NAME(), CURRENT_USER, @@SERVERNAME`,
		&info.Version, &info.Database, &info.User, &server)
	if err != nil {
		return info, errors.Wrap(err, errors.CodeBackendError, "failed to describe sqlserver backend")
	}
	info.Server = server.String

	info.DataStandard = s.detectStandard(ctx)
	return info, nil
}

func (s *Source) detectStandard(ctx context.Context) string {
	var script sql.NullString
	err := s.QueryRow(ctx, `IF OBJECT_ID('dbo.DeployJournal', 'U') IS NOT NULL SELECT TOP 1 ScriptName FROM dbo.DeployJournal WHERE ScriptName LIKE '%Standard.4.%' OR ScriptName LIKE '%Standard.5.%' ORDER BY ScriptName ELSE SELECT CAST(NULL AS NVARCHAR(255))`, &script)
	if err == nil && script.Valid {
		if std := domain.StandardFromScript(script.String); std != "" {
			return std
		}
	} else if err != nil {
		s.Logger.Debugf(ctx, "DeployJournal lookup failed, inferring standard from tables: %v", err)
	}

	var hasContact, hasParent bool
	err = s.QueryRow(ctx,
		`SELECT CAST(CASE WHEN OBJECT_ID('edfi.Contact', 'U') IS NOT NULL THEN 1 ELSE 0 END AS BIT), CAST(CASE WHEN OBJECT_ID('edfi.Parent', 'U') IS NOT NULL THEN 1 ELSE 0 END AS BIT)`,
		&hasContact, &hasParent)
	if err != nil {
		s.Logger.Debugf(ctx, "Standard detection from tables failed: %v", err)
		return domain.StandardUnknown
	}
	return domain.StandardFromTables(hasContact, hasParent)
}
