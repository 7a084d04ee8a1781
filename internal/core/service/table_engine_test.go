package service

import (
	"context"
	"testing"
	"time"

	"github.com/olusolaa/oneroster-parity/internal/core/domain"
	"github.com/olusolaa/oneroster-parity/internal/core/ports/mocks"
	"github.com/olusolaa/oneroster-parity/internal/errors"
	"github.com/olusolaa/oneroster-parity/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var orgs = domain.Endpoint{Name: "orgs"}

func newSources(t *testing.T) (*mocks.TableSource, *mocks.TableSource) {
	a := mocks.NewTableSource(t)
	b := mocks.NewTableSource(t)
	a.On("Label").Maybe().Return("postgres")
	b.On("Label").Maybe().Return("mssql")
	a.On("Describe", mock.Anything).Maybe().Return(domain.BackendInfo{Label: "postgres", DataStandard: "Data Standard 5.2.0"}, nil)
	b.On("Describe", mock.Anything).Maybe().Return(domain.BackendInfo{Label: "mssql", DataStandard: domain.StandardUnknown}, nil)
	return a, b
}

func newEngine(t *testing.T, a, b *mocks.TableSource, opts Options, eps ...domain.Endpoint) *TableEngine {
	t.Helper()
	if len(eps) == 0 {
		eps = []domain.Endpoint{orgs}
	}
	if opts.DatasetVersion == "" {
		opts.DatasetVersion = "ds5"
	}
	e, err := NewTableEngine(a, b, eps, opts, log.Discard())
	require.NoError(t, err)
	return e
}

func rows(side domain.Side, cols ...map[string]any) []domain.Row {
	out := make([]domain.Row, len(cols))
	for i, c := range cols {
		out[i] = domain.NewRow("orgs", side, c)
	}
	return out
}

func TestTableEngine_OrgsIdentical(t *testing.T) {
	a, b := newSources(t)
	columns := []string{"sourcedId", "name", "status", "metadata"}
	a.On("ListColumns", mock.Anything, orgs).Return(columns, nil)
	b.On("ListColumns", mock.Anything, orgs).Return(columns, nil)
	a.On("FetchAllRows", mock.Anything, orgs, domain.SideA).Return(rows(domain.SideA,
		map[string]any{"sourcedId": "x1", "name": "Acme", "status": "active", "metadata": map[string]any{"grade": "K"}},
	), nil)
	b.On("FetchAllRows", mock.Anything, orgs, domain.SideB).Return(rows(domain.SideB,
		map[string]any{"sourcedId": "y9", "name": "Acme", "status": "active", "metadata": `{"grade":"K"}`},
	), nil)

	report, err := newEngine(t, a, b, Options{}).Run(context.Background())

	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	res := report.Results[0]
	assert.True(t, res.Identical)
	assert.Equal(t, domain.StatusSuccess, res.Status)
	assert.Equal(t, 1, res.RowsCompared)
	assert.Equal(t, 0, report.ExitCode())
	assert.Equal(t, "postgres", report.LabelA)
}

func TestTableEngine_StatusMismatch(t *testing.T) {
	a, b := newSources(t)
	columns := []string{"sourcedId", "name", "status"}
	a.On("ListColumns", mock.Anything, orgs).Return(columns, nil)
	b.On("ListColumns", mock.Anything, orgs).Return(columns, nil)
	a.On("FetchAllRows", mock.Anything, orgs, domain.SideA).Return(rows(domain.SideA,
		map[string]any{"sourcedId": "b", "name": "Beta", "status": "active", "isActive": true},
		map[string]any{"sourcedId": "a", "name": "Acme", "status": "active"},
	), nil)
	b.On("FetchAllRows", mock.Anything, orgs, domain.SideB).Return(rows(domain.SideB,
		map[string]any{"sourcedId": "a", "name": "Acme", "status": "tobedeleted"},
		map[string]any{"sourcedId": "b", "name": "Beta", "status": "active"},
	), nil)

	report, err := newEngine(t, a, b, Options{}).Run(context.Background())

	require.NoError(t, err)
	res := report.Results[0]
	assert.False(t, res.Identical)
	assert.Equal(t, domain.StatusDifferent, res.Status)
	assert.Equal(t, 2, res.RowsCompared)
	assert.Equal(t, 1, res.DifferenceCount)
	assert.Equal(t, map[domain.DiffKind]int{domain.DiffValue: 1}, res.KindCounts)
	require.Len(t, res.SampleDifferences, 1)
	sample := res.SampleDifferences[0]
	assert.Equal(t, 0, sample.Index)
	assert.Equal(t, "Acme", sample.TitleA)
	assert.Equal(t, "status", sample.Fields[0].Field)
	assert.Equal(t, 1, report.ExitCode())
}

func TestTableEngine_BooleanFormatAndSampleBound(t *testing.T) {
	a, b := newSources(t)
	columns := []string{"sourcedId", "enabledUser"}
	a.On("ListColumns", mock.Anything, orgs).Return(columns, nil)
	b.On("ListColumns", mock.Anything, orgs).Return(columns, nil)

	var rowsA, rowsB []map[string]any
	for _, k := range []string{"1", "2", "3", "4", "5"} {
		rowsA = append(rowsA, map[string]any{"sourcedId": k, "enabledUser": true})
		rowsB = append(rowsB, map[string]any{"sourcedId": k, "enabledUser": "true"})
	}
	a.On("FetchAllRows", mock.Anything, orgs, domain.SideA).Return(rows(domain.SideA, rowsA...), nil)
	b.On("FetchAllRows", mock.Anything, orgs, domain.SideB).Return(rows(domain.SideB, rowsB...), nil)

	report, err := newEngine(t, a, b, Options{SampleSize: 3}).Run(context.Background())

	require.NoError(t, err)
	res := report.Results[0]
	assert.Equal(t, 5, res.DifferenceCount)
	assert.Equal(t, 5, res.BooleanFormatDiffs)
	assert.Len(t, res.SampleDifferences, 3)
	assert.Equal(t, 5, report.Summary.BooleanFormatDiffs)
}

func TestTableEngine_CountMismatchSkipsDiff(t *testing.T) {
	a, b := newSources(t)
	a.On("ListColumns", mock.Anything, orgs).Return([]string{"sourcedId"}, nil)
	b.On("ListColumns", mock.Anything, orgs).Return([]string{"sourcedId"}, nil)
	a.On("FetchAllRows", mock.Anything, orgs, domain.SideA).Return(rows(domain.SideA,
		map[string]any{"sourcedId": "1"}, map[string]any{"sourcedId": "2"}, map[string]any{"sourcedId": "3"}), nil)
	b.On("FetchAllRows", mock.Anything, orgs, domain.SideB).Return(rows(domain.SideB,
		map[string]any{"sourcedId": "1"}, map[string]any{"sourcedId": "2"}, map[string]any{"sourcedId": "3"}, map[string]any{"sourcedId": "4"}), nil)

	report, err := newEngine(t, a, b, Options{}).Run(context.Background())

	require.NoError(t, err)
	res := report.Results[0]
	assert.Equal(t, domain.StatusCountMismatch, res.Status)
	assert.False(t, res.Identical)
	assert.Equal(t, 3, res.CountA)
	assert.Equal(t, 4, res.CountB)
	assert.Zero(t, res.RowsCompared)
	assert.Empty(t, res.SampleDifferences)
	assert.True(t, errors.Is(res.Err, errors.CodeCountMismatch))
	assert.Equal(t, 0, report.Summary.Errors)
}

func TestTableEngine_EmptyWithColumnDifferences(t *testing.T) {
	a, b := newSources(t)
	a.On("ListColumns", mock.Anything, orgs).Return([]string{"sourcedId", "name"}, nil)
	b.On("ListColumns", mock.Anything, orgs).Return([]string{"sourcedId"}, nil)
	a.On("FetchAllRows", mock.Anything, orgs, domain.SideA).Return([]domain.Row{}, nil)
	b.On("FetchAllRows", mock.Anything, orgs, domain.SideB).Return([]domain.Row{}, nil)

	report, err := newEngine(t, a, b, Options{}).Run(context.Background())

	require.NoError(t, err)
	res := report.Results[0]
	assert.Equal(t, domain.StatusEmpty, res.Status)
	assert.False(t, res.Identical)
	assert.Equal(t, []string{"name"}, res.ColumnDifferences.MissingInB)
	assert.Equal(t, []string{"orgs"}, report.Summary.ColumnDiffEndpoint)
}

func TestTableEngine_ColumnDetectionFailedContinues(t *testing.T) {
	a, b := newSources(t)
	users := domain.Endpoint{Name: "users"}
	a.On("ListColumns", mock.Anything, orgs).Return([]string{}, nil)
	b.On("ListColumns", mock.Anything, orgs).Return([]string{"sourcedId"}, nil)
	a.On("ListColumns", mock.Anything, users).Return(nil, errors.New(errors.CodeBackendError, "relation does not exist"))
	b.On("ListColumns", mock.Anything, users).Return([]string{"sourcedId"}, nil)

	report, err := newEngine(t, a, b, Options{}, orgs, users).Run(context.Background())

	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	for _, res := range report.Results {
		assert.Equal(t, domain.StatusColumnDetectionFailed, res.Status)
		assert.False(t, res.Identical)
		assert.Error(t, res.Err)
	}
	assert.Equal(t, 2, report.Summary.Errors)
	a.AssertNotCalled(t, "FetchAllRows", mock.Anything, mock.Anything, mock.Anything)
}

func TestTableEngine_FetchTimeoutBecomesEndpointError(t *testing.T) {
	a, b := newSources(t)
	a.On("ListColumns", mock.Anything, orgs).Return([]string{"sourcedId"}, nil)
	b.On("ListColumns", mock.Anything, orgs).Return([]string{"sourcedId"}, nil)
	a.On("FetchAllRows", mock.Anything, orgs, domain.SideA).Return(rows(domain.SideA), nil)
	b.On("FetchAllRows", mock.Anything, orgs, domain.SideB).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded)

	report, err := newEngine(t, a, b, Options{RequestTimeout: 20 * time.Millisecond}).Run(context.Background())

	require.NoError(t, err)
	res := report.Results[0]
	assert.Equal(t, domain.StatusError, res.Status)
	assert.True(t, errors.IsTimeout(res.Err))
	assert.True(t, errors.Is(res.Err, errors.CodeTimeout))
}

func TestTableEngine_CancelledRunStopsEarly(t *testing.T) {
	a, b := newSources(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := newEngine(t, a, b, Options{}).Run(ctx)

	assert.Error(t, err)
	assert.Empty(t, report.Results)
}

func TestNewTableEngine_Validation(t *testing.T) {
	a, b := newSources(t)
	_, err := NewTableEngine(a, nil, []domain.Endpoint{orgs}, Options{}, log.Discard())
	assert.True(t, errors.Is(err, errors.CodeConfigValidation))

	_, err = NewTableEngine(a, b, nil, Options{}, log.Discard())
	assert.True(t, errors.Is(err, errors.CodeConfigValidation))
}

func TestTableEngine_DescribeHonoursRequestTimeout(t *testing.T) {
	a := mocks.NewTableSource(t)
	b := mocks.NewTableSource(t)
	a.On("Label").Maybe().Return("postgres")
	b.On("Label").Maybe().Return("mssql")
	hang := func(args mock.Arguments) { <-args.Get(0).(context.Context).Done() }
	a.On("Describe", mock.Anything).Run(hang).Return(domain.BackendInfo{}, context.DeadlineExceeded)
	b.On("Describe", mock.Anything).Run(hang).Return(domain.BackendInfo{}, context.DeadlineExceeded)
	columns := []string{"sourcedId", "name"}
	a.On("ListColumns", mock.Anything, orgs).Return(columns, nil)
	b.On("ListColumns", mock.Anything, orgs).Return(columns, nil)
	a.On("FetchAllRows", mock.Anything, orgs, domain.SideA).Return(rows(domain.SideA, map[string]any{"sourcedId": "1", "name": "Acme"}), nil)
	b.On("FetchAllRows", mock.Anything, orgs, domain.SideB).Return(rows(domain.SideB, map[string]any{"sourcedId": "2", "name": "Acme"}), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	report, err := newEngine(t, a, b, Options{RequestTimeout: 50 * time.Millisecond}).Run(ctx)

	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	require.Len(t, report.Results, 1)
	assert.Equal(t, domain.StatusSuccess, report.Results[0].Status)
}
