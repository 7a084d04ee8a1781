package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/olusolaa/oneroster-parity/internal/core/compare"
	"github.com/olusolaa/oneroster-parity/internal/core/domain"
	"github.com/olusolaa/oneroster-parity/internal/core/ports"
	apperrors "github.com/olusolaa/oneroster-parity/internal/errors"
	"golang.org/x/sync/errgroup"
)

const DefaultRequestTimeout = 60 * time.Second

// RowAligner fetches an endpoint from both table sources at once and pairs
// the rows by key.
type RowAligner struct {
	a, b    ports.TableSource
	timeout time.Duration
	logger  ports.Logger
}

func NewRowAligner(a, b ports.TableSource, timeout time.Duration, logger ports.Logger) *RowAligner {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &RowAligner{
		a:       a,
		b:       b,
		timeout: timeout,
		logger:  logger.WithFields(map[string]any{"component": "row_aligner"}),
	}
}

// Columns lists the endpoint's columns on both sides.
func (r *RowAligner) Columns(ctx context.Context, endpoint domain.Endpoint) ([]string, []string, error) {
	return fetchPair(ctx, r.timeout,
		func(ctx context.Context) ([]string, error) {
			return r.a.ListColumns(ctx, endpoint)
		},
		func(ctx context.Context) ([]string, error) {
			return r.b.ListColumns(ctx, endpoint)
		},
		fmt.Sprintf("listing columns of %s", endpoint.Name),
	)
}

// Align fetches all rows from both sides concurrently and aligns them.
func (r *RowAligner) Align(ctx context.Context, endpoint domain.Endpoint) (compare.Alignment, error) {
	rowsA, rowsB, err := fetchPair(ctx, r.timeout,
		func(ctx context.Context) ([]domain.Row, error) {
			return r.a.FetchAllRows(ctx, endpoint, domain.SideA)
		},
		func(ctx context.Context) ([]domain.Row, error) {
			return r.b.FetchAllRows(ctx, endpoint, domain.SideB)
		},
		fmt.Sprintf("fetching rows of %s", endpoint.Name),
	)
	if err != nil {
		return compare.Alignment{}, err
	}
	r.logger.Debugf(ctx, "Fetched %d rows from %s and %d rows from %s for %s",
		len(rowsA), r.a.Label(), len(rowsB), r.b.Label(), endpoint.Name)
	return compare.AlignRows(rowsA, rowsB, endpoint.KeyField()), nil
}

// fetchPair runs fa and fb concurrently, each under its own timeout, and
// returns once both have finished.
func fetchPair[T any](ctx context.Context, timeout time.Duration, fa, fb func(context.Context) (T, error), what string) (T, T, error) {
	var a, b T
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := withTimeout(gctx, timeout, fa, what+" (A)")
		a = v
		return err
	})
	g.Go(func() error {
		v, err := withTimeout(gctx, timeout, fb, what+" (B)")
		b = v
		return err
	})
	if err := g.Wait(); err != nil {
		var zero T
		return zero, zero, err
	}
	return a, b, nil
}

func withTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error), what string) (T, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	v, err := fn(cctx)
	if err == nil {
		return v, nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(cctx.Err(), context.DeadlineExceeded) {
		timeoutErr := apperrors.New(apperrors.CodeTimeout, fmt.Sprintf("%s timed out after %s", what, timeout))
		timeoutErr.WrappedError = err
		return v, timeoutErr
	}
	return v, err
}
