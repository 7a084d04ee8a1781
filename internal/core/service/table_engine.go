package service

import (
	"context"
	"fmt"

	"github.com/olusolaa/oneroster-parity/internal/core/compare"
	"github.com/olusolaa/oneroster-parity/internal/core/domain"
	"github.com/olusolaa/oneroster-parity/internal/core/ports"
	"github.com/olusolaa/oneroster-parity/internal/errors"
)

// TableEngine compares raw table scans of every selected endpoint.
type TableEngine struct {
	a, b      ports.TableSource
	aligner   *RowAligner
	differ    *compare.Differ
	endpoints []domain.Endpoint
	opts      Options
	logger    ports.Logger
}

func NewTableEngine(
	a, b ports.TableSource,
	endpoints []domain.Endpoint,
	opts Options,
	logger ports.Logger,
) (*TableEngine, error) {
	if a == nil || b == nil {
		return nil, errors.New(errors.CodeConfigValidation, "both table sources are required")
	}
	if len(endpoints) == 0 {
		return nil, errors.New(errors.CodeConfigValidation, "no endpoints selected for comparison")
	}
	opts = opts.withDefaults()
	return &TableEngine{
		a:         a,
		b:         b,
		aligner:   NewRowAligner(a, b, opts.RequestTimeout, logger),
		differ:    compare.NewDiffer(opts.MaxDepth, logger),
		endpoints: endpoints,
		opts:      opts,
		logger:    logger.WithFields(map[string]any{"component": "table_engine"}),
	}, nil
}

// Run compares the endpoints one after another. Per-endpoint failures are
// recorded in the report; only cancellation stops the run early.
func (e *TableEngine) Run(ctx context.Context) (domain.RunReport, error) {
	e.logger.Infof(ctx, "Comparing %s tables of %s (A) and %s (B)", e.opts.DatasetVersion, e.a.Label(), e.b.Label())
	describeBackends(ctx, e.logger, e.opts, e.a, e.b)

	agg := NewAggregator(domain.ModeTables, e.opts.DatasetVersion, e.a.Label(), e.b.Label())
	for _, ep := range e.endpoints {
		if err := ctx.Err(); err != nil {
			return agg.Finalize(), errors.Wrap(err, errors.CodeTimeout, "comparison run cancelled")
		}
		agg.Add(e.compareEndpoint(ctx, ep))
	}

	report := agg.Finalize()
	e.logger.Infof(ctx, "Table comparison finished: %d/%d endpoints identical", report.Summary.Identical, report.Summary.Total)
	return report, nil
}

func (e *TableEngine) compareEndpoint(ctx context.Context, ep domain.Endpoint) domain.EndpointResult {
	log := e.logger.WithFields(map[string]any{"endpoint": ep.Name})
	log.Infof(ctx, "Comparing %s", ep.Label())

	colsA, colsB, err := e.aligner.Columns(ctx, ep)
	if err != nil {
		log.Errorf(ctx, err, "Could not determine columns for %s", ep.Name)
		return errorResult(ep.Name, domain.ModeTables, domain.StatusColumnDetectionFailed, err)
	}
	colDiff, err := compare.ReconcileColumns(colsA, colsB)
	if err != nil {
		log.Errorf(ctx, err, "Could not determine columns for %s", ep.Name)
		return errorResult(ep.Name, domain.ModeTables, domain.StatusColumnDetectionFailed, err)
	}
	log.Debugf(ctx, "%s: %d columns, %s: %d columns", e.a.Label(), len(colsA), e.b.Label(), len(colsB))
	if len(colDiff.MissingInB) > 0 {
		log.Warnf(ctx, "Columns in %s but missing in %s: %v", e.a.Label(), e.b.Label(), colDiff.MissingInB)
	}
	if len(colDiff.ExtraInB) > 0 {
		log.Warnf(ctx, "Extra columns in %s not in %s: %v", e.b.Label(), e.a.Label(), colDiff.ExtraInB)
	}

	alignment, err := e.aligner.Align(ctx, ep)
	if err != nil {
		log.Errorf(ctx, err, "Fetching rows failed")
		res := errorResult(ep.Name, domain.ModeTables, domain.StatusError, err)
		res.ColumnDifferences = &colDiff
		return res
	}

	res := domain.EndpointResult{
		Endpoint:          ep.Name,
		Mode:              domain.ModeTables,
		CountA:            len(alignment.A),
		CountB:            len(alignment.B),
		ColumnDifferences: &colDiff,
		KindCounts:        map[domain.DiffKind]int{},
	}

	switch alignment.Status {
	case domain.AlignEmpty:
		log.Warnf(ctx, "Both backends returned 0 rows for %s", ep.Name)
		res.Status = domain.StatusEmpty
		res.Identical = colDiff.Empty()
		return res
	case domain.AlignCountMismatch:
		log.Warnf(ctx, "Row count mismatch for %s: %d vs %d", ep.Name, res.CountA, res.CountB)
		res.Status = domain.StatusCountMismatch
		res.Err = errors.New(errors.CodeCountMismatch,
			fmt.Sprintf("%s returned %d rows, %s returned %d", e.a.Label(), res.CountA, e.b.Label(), res.CountB))
		return res
	}

	policy := compare.NewColumnPolicy(ep.KeyField(), e.opts.ExcludedColumns, colsA, colsB)
	for i := 0; i < alignment.Len(); i++ {
		rowA, rowB := alignment.A[i], alignment.B[i]
		fields := e.differ.DiffRows(ctx, rowA, rowB, policy)
		res.RowsCompared++
		if len(fields) == 0 {
			continue
		}
		res.DifferenceCount++
		res.FieldDifferenceCount += len(fields)
		for _, f := range fields {
			res.KindCounts[f.Kind]++
			if f.Kind == domain.DiffBooleanFormat {
				res.BooleanFormatDiffs++
			}
		}
		if len(res.SampleDifferences) < e.opts.SampleSize {
			res.SampleDifferences = append(res.SampleDifferences, domain.RowDifference{
				Index:  i,
				KeyA:   rowA.ShortKey(ep.KeyField()),
				KeyB:   rowB.ShortKey(ep.KeyField()),
				TitleA: rowA.Title(e.opts.TitleFields),
				TitleB: rowB.Title(e.opts.TitleFields),
				Fields: fields,
				RowA:   rowA,
				RowB:   rowB,
			})
		}
	}

	if res.DifferenceCount == 0 {
		res.Status = domain.StatusSuccess
		res.Identical = true
		log.Infof(ctx, "%s: all %d rows are identical", ep.Name, res.RowsCompared)
		return res
	}
	res.Status = domain.StatusDifferent
	log.Warnf(ctx, "%s: %d of %d rows differ", ep.Name, res.DifferenceCount, res.RowsCompared)
	if res.BooleanFormatDiffs > 0 {
		log.Warnf(ctx, "%s: %d boolean format differences (OneRoster requires string \"true\"/\"false\")", ep.Name, res.BooleanFormatDiffs)
	}
	return res
}

// describeBackends logs what each backend is and warns when the detected data
// standard does not fit the selected dataset version. Failures only warn.
func describeBackends(ctx context.Context, logger ports.Logger, opts Options, a, b ports.TableSource) {
	infoA, errA := withTimeout(ctx, opts.RequestTimeout, a.Describe, "describing "+a.Label())
	if errA != nil {
		logger.Warnf(ctx, "Could not describe %s: %v", a.Label(), errA)
	}
	infoB, errB := withTimeout(ctx, opts.RequestTimeout, b.Describe, "describing "+b.Label())
	if errB != nil {
		logger.Warnf(ctx, "Could not describe %s: %v", b.Label(), errB)
	}
	for _, info := range []domain.BackendInfo{infoA, infoB} {
		if info.Label == "" {
			continue
		}
		logger.Infof(ctx, "%s: server=%s database=%s user=%s version=%s standard=%s",
			info.Label, info.Server, info.Database, info.User, info.Version, info.DataStandard)
		if !domain.StandardMatches(info.DataStandard, opts.DatasetVersion) {
			logger.Warnf(ctx, "%s contains %s but the run is configured for %s",
				info.Label, info.DataStandard, opts.DatasetVersion)
		}
	}
	if known(infoA.DataStandard) && known(infoB.DataStandard) && infoA.DataStandard != infoB.DataStandard {
		logger.Warnf(ctx, "Data standard mismatch between backends: %s has %s, %s has %s",
			infoA.Label, infoA.DataStandard, infoB.Label, infoB.DataStandard)
	}
}

func known(standard string) bool {
	return standard != "" && standard != domain.StandardUnknown
}
