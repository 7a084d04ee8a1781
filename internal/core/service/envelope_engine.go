package service

import (
	"context"
	"fmt"

	"github.com/olusolaa/oneroster-parity/internal/core/compare"
	"github.com/olusolaa/oneroster-parity/internal/core/domain"
	"github.com/olusolaa/oneroster-parity/internal/core/ports"
	"github.com/olusolaa/oneroster-parity/internal/errors"
)

// EnvelopeEngine compares the REST response envelopes of every selected
// endpoint and saves the raw payloads for inspection.
type EnvelopeEngine struct {
	a, b      ports.EnvelopeSource
	sink      ports.ArtifactSink
	differ    *compare.Differ
	endpoints []domain.Endpoint
	opts      Options
	logger    ports.Logger
}

// NewEnvelopeEngine builds the engine. sink may be nil, in which case raw
// envelopes are not saved.
func NewEnvelopeEngine(
	a, b ports.EnvelopeSource,
	sink ports.ArtifactSink,
	endpoints []domain.Endpoint,
	opts Options,
	logger ports.Logger,
) (*EnvelopeEngine, error) {
	if a == nil || b == nil {
		return nil, errors.New(errors.CodeConfigValidation, "both envelope sources are required")
	}
	if len(endpoints) == 0 {
		return nil, errors.New(errors.CodeConfigValidation, "no endpoints selected for comparison")
	}
	opts = opts.withDefaults()
	return &EnvelopeEngine{
		a:         a,
		b:         b,
		sink:      sink,
		differ:    compare.NewDiffer(opts.MaxDepth, logger),
		endpoints: endpoints,
		opts:      opts,
		logger:    logger.WithFields(map[string]any{"component": "envelope_engine"}),
	}, nil
}

func (e *EnvelopeEngine) Run(ctx context.Context) (domain.RunReport, error) {
	e.logger.Infof(ctx, "Comparing %s API responses of %s (A) and %s (B)", e.opts.DatasetVersion, e.a.Label(), e.b.Label())

	agg := NewAggregator(domain.ModeEnvelopes, e.opts.DatasetVersion, e.a.Label(), e.b.Label())
	for _, ep := range e.endpoints {
		if err := ctx.Err(); err != nil {
			return agg.Finalize(), errors.Wrap(err, errors.CodeTimeout, "comparison run cancelled")
		}
		agg.Add(e.compareEndpoint(ctx, ep))
	}

	report := agg.Finalize()
	e.logger.Infof(ctx, "Envelope comparison finished: %d/%d endpoints identical", report.Summary.Identical, report.Summary.Total)
	return report, nil
}

func (e *EnvelopeEngine) compareEndpoint(ctx context.Context, ep domain.Endpoint) domain.EndpointResult {
	log := e.logger.WithFields(map[string]any{"endpoint": ep.Name})
	log.Infof(ctx, "Comparing %s", ep.Label())

	rawA, rawB, err := fetchPair(ctx, e.opts.RequestTimeout,
		func(ctx context.Context) ([]byte, error) { return e.a.FetchEnvelope(ctx, ep) },
		func(ctx context.Context) ([]byte, error) { return e.b.FetchEnvelope(ctx, ep) },
		"fetching "+ep.Name,
	)
	if err != nil {
		log.Errorf(ctx, err, "Fetching envelopes failed")
		return errorResult(ep.Name, domain.ModeEnvelopes, domain.StatusError, err)
	}

	e.save(ctx, log, e.a.Label(), ep, rawA)
	e.save(ctx, log, e.b.Label(), ep, rawB)

	property := ep.ResponseProperty
	if property == "" {
		property = ep.Name
	}
	outcome, err := e.differ.CompareEnvelopes(rawA, rawB, property)
	if err != nil {
		log.Errorf(ctx, err, "Envelope could not be parsed")
		return errorResult(ep.Name, domain.ModeEnvelopes, domain.StatusError, err)
	}

	detail := outcome.Detail
	res := domain.EndpointResult{
		Endpoint:        ep.Name,
		Mode:            domain.ModeEnvelopes,
		Status:          outcome.Status,
		Identical:       outcome.Identical,
		CountA:          outcome.CountA,
		CountB:          outcome.CountB,
		DifferenceCount: len(detail.Differences),
		KindCounts:      map[domain.DiffKind]int{},
		Envelope:        &detail,
	}
	if outcome.CountA == outcome.CountB {
		res.RowsCompared = outcome.CountA
	}
	for _, d := range detail.Differences {
		res.KindCounts[d.Kind]++
	}

	switch {
	case outcome.Status == domain.StatusStructureMismatch:
		log.Warnf(ctx, "Response structure mismatch: property %q missing on one side", property)
		res.Err = errors.New(errors.CodeStructureMismatch, fmt.Sprintf("response property %q missing on one side", property))
	case outcome.Identical:
		log.Infof(ctx, "%s: all %d items are identical", ep.Name, outcome.CountA)
	default:
		log.Warnf(ctx, "%s: %d differences (%d vs %d items)", ep.Name, res.DifferenceCount, outcome.CountA, outcome.CountB)
	}
	if outcome.SampleA.Kind != domain.KindAbsent {
		log.Debugf(ctx, "First %s item from %s: %s", ep.Name, e.a.Label(), outcome.SampleA)
		log.Debugf(ctx, "First %s item from %s: %s", ep.Name, e.b.Label(), outcome.SampleB)
	}
	return res
}

func (e *EnvelopeEngine) save(ctx context.Context, log ports.Logger, label string, ep domain.Endpoint, payload []byte) {
	if e.sink == nil {
		return
	}
	name := ArtifactName(e.opts.DatasetVersion, label, ep.Name)
	if err := e.sink.Save(ctx, name, payload); err != nil {
		log.Errorf(ctx, err, "Could not save %s", name)
		return
	}
	log.Debugf(ctx, "Saved %s", name)
}
