package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/olusolaa/oneroster-parity/internal/adapters/backend/mssql"
	"github.com/olusolaa/oneroster-parity/internal/adapters/backend/postgres"
	"github.com/olusolaa/oneroster-parity/internal/adapters/rest"
	"github.com/olusolaa/oneroster-parity/internal/core/domain"
	"github.com/olusolaa/oneroster-parity/internal/errors"
	"github.com/olusolaa/oneroster-parity/internal/log"
)

const (
	DatasetDS4 = "ds4"
	DatasetDS5 = "ds5"

	DefaultDataset = DatasetDS5
	DefaultSchema  = "oneroster12"

	ReporterText = "text"
	ReporterJSON = "json"

	ArtifactsFile = "file"
	ArtifactsS3   = "s3"
	ArtifactsNone = "none"

	envelopePrefix = "/ims/oneroster/rostering/v1p2"
)

type Config struct {
	Settings   SettingsConfig           `mapstructure:"settings"`
	Datasets   map[string]DatasetConfig `mapstructure:"datasets" validate:"required,dive"`
	Comparison ComparisonConfig         `mapstructure:"comparison"`
	Endpoints  EndpointsConfig          `mapstructure:"endpoints"`
	Artifacts  ArtifactsConfig          `mapstructure:"artifacts"`
}

type SettingsConfig struct {
	LogLevel       log.Level     `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat      log.Format    `mapstructure:"log_format" validate:"oneof=text json"`
	ReporterType   string        `mapstructure:"reporter" validate:"oneof=text json"`
	NoColor        bool          `mapstructure:"no_color"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	MaxDepth       int           `mapstructure:"max_depth" validate:"min=1"`
	SampleSize     int           `mapstructure:"sample_size" validate:"min=1"`
	GroupLimit     int           `mapstructure:"group_limit" validate:"min=1"`
	RateLimitRPS   int           `mapstructure:"rate_limit_rps" validate:"min=0,max=100"`
	Burst          int           `mapstructure:"burst" validate:"min=0"`
}

// DatasetConfig holds the connection details of one Ed-Fi data standard
// deployment: both databases and both API instances.
type DatasetConfig struct {
	Postgres postgres.Config `mapstructure:"postgres"`
	MSSQL    mssql.Config    `mapstructure:"mssql"`
	API      APIConfig       `mapstructure:"api"`
}

type APIConfig struct {
	Postgres rest.Config `mapstructure:"postgres"`
	MSSQL    rest.Config `mapstructure:"mssql"`
}

type ComparisonConfig struct {
	ExcludedColumns []string `mapstructure:"excluded_columns"`
	TitleFields     []string `mapstructure:"title_fields"`
}

type EndpointsConfig struct {
	Tables    []domain.Endpoint `mapstructure:"tables" validate:"dive"`
	Envelopes []domain.Endpoint `mapstructure:"envelopes" validate:"dive"`
}

type ArtifactsConfig struct {
	Type   string `mapstructure:"type" validate:"oneof=file s3 none"`
	Dir    string `mapstructure:"dir"`
	Bucket string `mapstructure:"bucket" validate:"required_if=Type s3"`
	Prefix string `mapstructure:"prefix"`
	Region string `mapstructure:"region"`
}

// DefaultConfig returns the scalar defaults. Collections are filled by
// ApplyDefaults after decoding so user lists replace rather than merge.
func DefaultConfig() *Config {
	return &Config{
		Settings: SettingsConfig{
			LogLevel:       log.LevelInfo,
			LogFormat:      log.FormatText,
			ReporterType:   ReporterText,
			RequestTimeout: 60 * time.Second,
			MaxDepth:       64,
			SampleSize:     3,
			GroupLimit:     10,
			RateLimitRPS:   20,
		},
		Artifacts: ArtifactsConfig{
			Type: ArtifactsFile,
			Dir:  "results",
		},
	}
}

// ApplyDefaults fills the dataset connections, endpoint tables and
// comparison lists that were not configured.
func (c *Config) ApplyDefaults() {
	if c.Datasets == nil {
		c.Datasets = map[string]DatasetConfig{}
	}
	for _, version := range []string{DatasetDS4, DatasetDS5} {
		if _, ok := c.Datasets[version]; !ok {
			c.Datasets[version] = DatasetConfig{}
		}
	}
	for version, ds := range c.Datasets {
		mergeDataset(&ds, defaultDataset(version))
		c.Datasets[version] = ds
	}

	if len(c.Endpoints.Tables) == 0 {
		c.Endpoints.Tables = DefaultTableEndpoints()
	}
	if len(c.Endpoints.Envelopes) == 0 {
		c.Endpoints.Envelopes = DefaultEnvelopeEndpoints()
	}
	if c.Comparison.ExcludedColumns == nil {
		c.Comparison.ExcludedColumns = append([]string(nil), domain.DefaultExcludedColumns...)
	}
	if len(c.Comparison.TitleFields) == 0 {
		c.Comparison.TitleFields = append([]string(nil), domain.DefaultTitleFields...)
	}
}

// Dataset returns the connection settings of a dataset version.
func (c *Config) Dataset(version string) (DatasetConfig, error) {
	ds, ok := c.Datasets[strings.ToLower(version)]
	if !ok {
		return DatasetConfig{}, errors.NewUserFacing(errors.CodeInvalidArgument,
			fmt.Sprintf("unknown dataset version %q", version),
			fmt.Sprintf("Available dataset versions: %s", strings.Join(c.DatasetVersions(), ", ")))
	}
	return ds, nil
}

func (c *Config) DatasetVersions() []string {
	out := make([]string, 0, len(c.Datasets))
	for v := range c.Datasets {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// IsDatasetVersion reports whether arg names a configured dataset version.
func (c *Config) IsDatasetVersion(arg string) bool {
	_, ok := c.Datasets[strings.ToLower(arg)]
	return ok
}

func defaultDataset(version string) DatasetConfig {
	pgPort, apiPG, apiMSSQL := 5434, 3000, 3001
	if version == DatasetDS4 {
		pgPort, apiPG, apiMSSQL = 5435, 3002, 3003
	}
	return DatasetConfig{
		Postgres: postgres.Config{
			Host:     "localhost",
			Port:     pgPort,
			Database: "EdFi_Ods",
			User:     "postgres",
			Schema:   DefaultSchema,
			SSLMode:  "disable",
		},
		MSSQL: mssql.Config{
			Host:                   "localhost",
			Port:                   1433,
			Database:               "EdFi_Ods",
			User:                   "sa",
			Schema:                 DefaultSchema,
			TrustServerCertificate: true,
		},
		API: APIConfig{
			Postgres: rest.Config{BaseURL: fmt.Sprintf("http://localhost:%d", apiPG)},
			MSSQL:    rest.Config{BaseURL: fmt.Sprintf("http://localhost:%d", apiMSSQL)},
		},
	}
}

func mergeDataset(ds *DatasetConfig, def DatasetConfig) {
	pg := &ds.Postgres
	pg.Host = orString(pg.Host, def.Postgres.Host)
	pg.Port = orInt(pg.Port, def.Postgres.Port)
	pg.Database = orString(pg.Database, def.Postgres.Database)
	pg.User = orString(pg.User, def.Postgres.User)
	pg.Schema = orString(pg.Schema, def.Postgres.Schema)
	pg.SSLMode = orString(pg.SSLMode, def.Postgres.SSLMode)

	ms := &ds.MSSQL
	if ms.Host == "" {
		ms.TrustServerCertificate = def.MSSQL.TrustServerCertificate
	}
	ms.Host = orString(ms.Host, def.MSSQL.Host)
	ms.Port = orInt(ms.Port, def.MSSQL.Port)
	ms.Database = orString(ms.Database, def.MSSQL.Database)
	ms.User = orString(ms.User, def.MSSQL.User)
	ms.Schema = orString(ms.Schema, def.MSSQL.Schema)

	ds.API.Postgres.BaseURL = orString(ds.API.Postgres.BaseURL, def.API.Postgres.BaseURL)
	ds.API.MSSQL.BaseURL = orString(ds.API.MSSQL.BaseURL, def.API.MSSQL.BaseURL)
}

func orString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

// DefaultTableEndpoints lists the oneroster12 views compared in table mode.
func DefaultTableEndpoints() []domain.Endpoint {
	names := []string{"classes", "courses", "academicsessions", "enrollments", "demographics", "users", "orgs"}
	out := make([]domain.Endpoint, len(names))
	for i, n := range names {
		out[i] = domain.Endpoint{Name: n, Table: n, RowKey: domain.KeyRowKey}
	}
	return out
}

// DefaultEnvelopeEndpoints lists the REST collections compared in envelope
// mode, with the envelope member that carries each collection.
func DefaultEnvelopeEndpoints() []domain.Endpoint {
	return []domain.Endpoint{
		{Name: "orgs", Path: envelopePrefix + "/orgs", ResponseProperty: "orgs", DisplayName: "organizations"},
		{Name: "students", Path: envelopePrefix + "/students?limit=100", ResponseProperty: "users", DisplayName: "students"},
		{Name: "teachers", Path: envelopePrefix + "/teachers?limit=100", ResponseProperty: "users", DisplayName: "teachers"},
		{Name: "parents", Path: envelopePrefix + "/users?role=parent&limit=100", ResponseProperty: "users", DisplayName: "parents"},
		{Name: "courses", Path: envelopePrefix + "/courses?limit=100", ResponseProperty: "courses", DisplayName: "courses"},
		{Name: "classes", Path: envelopePrefix + "/classes", ResponseProperty: "classes", DisplayName: "classes"},
		{Name: "demographics", Path: envelopePrefix + "/demographics?limit=100", ResponseProperty: "demographics", DisplayName: "demographics"},
		{Name: "academicSessions", Path: envelopePrefix + "/academicSessions", ResponseProperty: "academicsessions", DisplayName: "academic sessions"},
		{Name: "enrollments", Path: envelopePrefix + "/enrollments?limit=100", ResponseProperty: "enrollments", DisplayName: "enrollments"},
	}
}
