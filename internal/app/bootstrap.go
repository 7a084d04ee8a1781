package app

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/viper"

	"github.com/olusolaa/oneroster-parity/internal/adapters/artifacts/file"
	"github.com/olusolaa/oneroster-parity/internal/adapters/artifacts/s3"
	"github.com/olusolaa/oneroster-parity/internal/adapters/backend/mssql"
	"github.com/olusolaa/oneroster-parity/internal/adapters/backend/postgres"
	"github.com/olusolaa/oneroster-parity/internal/adapters/limiter"
	"github.com/olusolaa/oneroster-parity/internal/adapters/rest"
	"github.com/olusolaa/oneroster-parity/internal/config"
	"github.com/olusolaa/oneroster-parity/internal/core/domain"
	"github.com/olusolaa/oneroster-parity/internal/core/ports"
	"github.com/olusolaa/oneroster-parity/internal/core/service"
	"github.com/olusolaa/oneroster-parity/internal/errors"
	"github.com/olusolaa/oneroster-parity/internal/log"
	jsonreport "github.com/olusolaa/oneroster-parity/internal/reporting/json"
	"github.com/olusolaa/oneroster-parity/internal/reporting/text"
)

type buildOptions struct {
	tableA, tableB ports.TableSource
	envA, envB     ports.EnvelopeSource
	sink           ports.ArtifactSink
	sinkSet        bool
	output         io.Writer
	logOutput      io.Writer
}

// Option overrides a component that would otherwise be built from
// configuration.
type Option func(*buildOptions)

func WithTableSources(a, b ports.TableSource) Option {
	return func(o *buildOptions) { o.tableA, o.tableB = a, b }
}

func WithEnvelopeSources(a, b ports.EnvelopeSource) Option {
	return func(o *buildOptions) { o.envA, o.envB = a, b }
}

// WithArtifactSink replaces the configured sink; nil disables saving.
func WithArtifactSink(sink ports.ArtifactSink) Option {
	return func(o *buildOptions) { o.sink, o.sinkSet = sink, true }
}

// WithOutput sets where the report is written.
func WithOutput(w io.Writer) Option {
	return func(o *buildOptions) { o.output = w }
}

func WithLogOutput(w io.Writer) Option {
	return func(o *buildOptions) { o.logOutput = w }
}

// BuildApplicationFromViper wires an Application for one mode from the
// configuration in v and the positional arguments.
func BuildApplicationFromViper(ctx context.Context, v *viper.Viper, mode domain.Mode, args []string, opts ...Option) (*Application, error) {
	o := &buildOptions{}
	for _, opt := range opts {
		opt(o)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	logger, err := log.NewLogger(log.Config{Level: cfg.Settings.LogLevel, Format: cfg.Settings.LogFormat, Output: o.logOutput})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "logger initialization failed")
	}
	logger.Debugf(ctx, "Logger initialized (Level: %s, Format: %s)", cfg.Settings.LogLevel, cfg.Settings.LogFormat)
	if v.ConfigFileUsed() != "" {
		logger.Debugf(ctx, "Using configuration file: %s", v.ConfigFileUsed())
	} else {
		logger.Debugf(ctx, "No configuration file found, using defaults/env/flags.")
	}

	version, filter, err := ParseArgs(args, cfg.IsDatasetVersion)
	if err != nil {
		return nil, err
	}
	dataset, err := cfg.Dataset(version)
	if err != nil {
		return nil, err
	}

	registry, err := newRegistry(cfg)
	if err != nil {
		return nil, err
	}
	endpoints, err := registry.Select(mode, filter)
	if err != nil {
		return nil, err
	}
	logger.Debugf(ctx, "Selected %d %s endpoints", len(endpoints), mode)

	reporter, err := newReporter(cfg, o.output, logger)
	if err != nil {
		return nil, err
	}

	engineOpts := service.Options{
		DatasetVersion:  version,
		RequestTimeout:  cfg.Settings.RequestTimeout,
		MaxDepth:        cfg.Settings.MaxDepth,
		SampleSize:      cfg.Settings.SampleSize,
		ExcludedColumns: cfg.Comparison.ExcludedColumns,
		TitleFields:     cfg.Comparison.TitleFields,
	}

	var (
		engine  ports.ParityEngine
		closers []func() error
	)
	switch mode {
	case domain.ModeTables:
		a, b, err := openTableSources(ctx, dataset, o, logger)
		if err != nil {
			return nil, err
		}
		closers = append(closers, a.Close, b.Close)
		engine, err = service.NewTableEngine(a, b, endpoints, engineOpts, logger)
		if err != nil {
			closeAll(closers)
			return nil, err
		}
	case domain.ModeEnvelopes:
		a, b := newEnvelopeSources(cfg, dataset, o, logger)
		sink := newSink(ctx, cfg, version, o, logger)
		engine, err = service.NewEnvelopeEngine(a, b, sink, endpoints, engineOpts, logger)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.NewUserFacing(errors.CodeInvalidArgument, fmt.Sprintf("unsupported mode %q", mode), "Usage: "+Usage)
	}

	logger.Debugf(ctx, "Application bootstrap complete")
	application := NewApplication(engine, reporter, logger, closers...)
	application.Config = cfg
	return application, nil
}

func newRegistry(cfg *config.Config) (*service.EndpointRegistry, error) {
	registry := service.NewEndpointRegistry()
	for _, ep := range cfg.Endpoints.Tables {
		if err := registry.Register(domain.ModeTables, ep); err != nil {
			return nil, err
		}
	}
	for _, ep := range cfg.Endpoints.Envelopes {
		if err := registry.Register(domain.ModeEnvelopes, ep); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func newReporter(cfg *config.Config, out io.Writer, logger ports.Logger) (ports.Reporter, error) {
	reportLog := logger.WithFields(map[string]any{"component": "reporter", "type": cfg.Settings.ReporterType})
	switch cfg.Settings.ReporterType {
	case text.ReporterTypeText:
		return text.NewReporter(text.Config{NoColor: cfg.Settings.NoColor, GroupLimit: cfg.Settings.GroupLimit, Output: out}, reportLog)
	case jsonreport.ReporterTypeJSON:
		return jsonreport.NewReporter(jsonreport.Config{Output: out}, reportLog)
	}
	return nil, errors.NewUserFacing(errors.CodeConfigValidation,
		fmt.Sprintf("unsupported reporter type: %s", cfg.Settings.ReporterType), "Supported: text, json")
}

// openTableSources connects to both databases. PostgreSQL is side A.
func openTableSources(ctx context.Context, ds config.DatasetConfig, o *buildOptions, logger ports.Logger) (ports.TableSource, ports.TableSource, error) {
	if o.tableA != nil && o.tableB != nil {
		return o.tableA, o.tableB, nil
	}

	a, err := postgres.Open(ctx, ds.Postgres, logger)
	if err != nil {
		return nil, nil, err
	}
	b, err := mssql.Open(ctx, ds.MSSQL, logger)
	if err != nil {
		_ = a.Close()
		return nil, nil, err
	}
	logger.Infof(ctx, "Connected to %s and %s", a.Label(), b.Label())
	return a, b, nil
}

func newEnvelopeSources(cfg *config.Config, ds config.DatasetConfig, o *buildOptions, logger ports.Logger) (ports.EnvelopeSource, ports.EnvelopeSource) {
	if o.envA != nil && o.envB != nil {
		return o.envA, o.envB
	}
	lim := limiter.New(cfg.Settings.RateLimitRPS, cfg.Settings.Burst, logger)
	timeout := cfg.Settings.RequestTimeout
	a := rest.New(postgres.Label, ds.API.Postgres, nil, lim, timeout, logger)
	b := rest.New(mssql.Label, ds.API.MSSQL, nil, lim, timeout, logger)
	return a, b
}

// newSink builds the artifact sink. A sink that cannot be set up only
// disables saving.
func newSink(ctx context.Context, cfg *config.Config, version string, o *buildOptions, logger ports.Logger) ports.ArtifactSink {
	if o.sinkSet {
		return o.sink
	}
	switch cfg.Artifacts.Type {
	case config.ArtifactsFile:
		return file.New(cfg.Artifacts.Dir, logger)
	case config.ArtifactsS3:
		sink, err := s3.New(ctx, s3.Config{Bucket: cfg.Artifacts.Bucket, Prefix: cfg.Artifacts.Prefix, Region: cfg.Artifacts.Region}, logger)
		if err == nil {
			err = sink.Verify(ctx)
		}
		if err != nil {
			logger.Warnf(ctx, "Artifacts will not be saved for %s: %v", version, err)
			return nil
		}
		return sink
	}
	return nil
}

func closeAll(closers []func() error) {
	for _, c := range closers {
		_ = c()
	}
}
