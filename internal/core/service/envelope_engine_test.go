package service

import (
	"context"
	"testing"

	"github.com/olusolaa/oneroster-parity/internal/core/domain"
	"github.com/olusolaa/oneroster-parity/internal/core/ports/mocks"
	"github.com/olusolaa/oneroster-parity/internal/errors"
	"github.com/olusolaa/oneroster-parity/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var orgsAPI = domain.Endpoint{Name: "orgs", Path: "/ims/oneroster/rostering/v1p2/orgs", ResponseProperty: "orgs"}

func newEnvelopeSources(t *testing.T) (*mocks.EnvelopeSource, *mocks.EnvelopeSource) {
	a := mocks.NewEnvelopeSource(t)
	b := mocks.NewEnvelopeSource(t)
	a.On("Label").Maybe().Return("postgres")
	b.On("Label").Maybe().Return("mssql")
	return a, b
}

func TestEnvelopeEngine_HrefOnlyDifferenceIsIdentical(t *testing.T) {
	a, b := newEnvelopeSources(t)
	sink := mocks.NewArtifactSink(t)
	rawA := []byte(`{"orgs":[{"sourcedId":"1","href":"http://a/orgs/1","name":"Acme"}]}`)
	rawB := []byte(`{"orgs":[{"sourcedId":"2","href":"http://b/orgs/2","name":"Acme"}]}`)
	a.On("FetchEnvelope", mock.Anything, orgsAPI).Return(rawA, nil)
	b.On("FetchEnvelope", mock.Anything, orgsAPI).Return(rawB, nil)
	sink.On("Save", mock.Anything, "ds5-postgres-orgs.json", rawA).Return(nil).Once()
	sink.On("Save", mock.Anything, "ds5-mssql-orgs.json", rawB).Return(nil).Once()

	e, err := NewEnvelopeEngine(a, b, sink, []domain.Endpoint{orgsAPI}, Options{DatasetVersion: "ds5"}, log.Discard())
	require.NoError(t, err)
	report, err := e.Run(context.Background())

	require.NoError(t, err)
	res := report.Results[0]
	assert.True(t, res.Identical)
	assert.Equal(t, domain.StatusSuccess, res.Status)
	assert.Equal(t, 1, res.RowsCompared)
	assert.Equal(t, domain.ModeEnvelopes, report.Mode)
	assert.Equal(t, 0, report.ExitCode())
}

func TestEnvelopeEngine_DifferentItems(t *testing.T) {
	a, b := newEnvelopeSources(t)
	a.On("FetchEnvelope", mock.Anything, orgsAPI).Return([]byte(`{"orgs":[{"name":"A","status":"active"}]}`), nil)
	b.On("FetchEnvelope", mock.Anything, orgsAPI).Return([]byte(`{"orgs":[{"name":"A","status":"tobedeleted"}]}`), nil)

	e, err := NewEnvelopeEngine(a, b, nil, []domain.Endpoint{orgsAPI}, Options{DatasetVersion: "ds4"}, log.Discard())
	require.NoError(t, err)
	report, err := e.Run(context.Background())

	require.NoError(t, err)
	res := report.Results[0]
	assert.False(t, res.Identical)
	assert.Equal(t, domain.StatusDifferent, res.Status)
	assert.Equal(t, 1, res.DifferenceCount)
	require.NotNil(t, res.Envelope)
	assert.Equal(t, 1, res.Envelope.DifferentItems)
	assert.Equal(t, "root.orgs[0].status", res.Envelope.Differences[0].Path)
	assert.Equal(t, 1, report.ExitCode())
}

func TestEnvelopeEngine_StructureMismatchAndErrors(t *testing.T) {
	a, b := newEnvelopeSources(t)
	users := domain.Endpoint{Name: "users", ResponseProperty: "users"}
	a.On("FetchEnvelope", mock.Anything, orgsAPI).Return([]byte(`{"orgs":[]}`), nil)
	b.On("FetchEnvelope", mock.Anything, orgsAPI).Return([]byte(`{"imsx_codeMajor":"failure"}`), nil)
	a.On("FetchEnvelope", mock.Anything, users).Return(nil, errors.New(errors.CodeBackendError, "HTTP 500"))
	b.On("FetchEnvelope", mock.Anything, users).Maybe().Return([]byte(`{"users":[]}`), nil)

	sink := mocks.NewArtifactSink(t)
	sink.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(errors.New(errors.CodeArtifactWriteError, "disk full"))

	e, err := NewEnvelopeEngine(a, b, sink, []domain.Endpoint{orgsAPI, users}, Options{DatasetVersion: "ds5"}, log.Discard())
	require.NoError(t, err)
	report, err := e.Run(context.Background())

	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	assert.Equal(t, domain.StatusStructureMismatch, report.Results[0].Status)
	assert.False(t, report.Results[0].Identical)
	assert.True(t, errors.Is(report.Results[0].Err, errors.CodeStructureMismatch))
	assert.Equal(t, domain.StatusError, report.Results[1].Status)
	assert.True(t, errors.Is(report.Results[1].Err, errors.CodeBackendError))
	sink.AssertNumberOfCalls(t, "Save", 2)
}

func TestEnvelopeEngine_InvalidJSONIsEndpointError(t *testing.T) {
	a, b := newEnvelopeSources(t)
	a.On("FetchEnvelope", mock.Anything, orgsAPI).Return([]byte(`<html>502</html>`), nil)
	b.On("FetchEnvelope", mock.Anything, orgsAPI).Return([]byte(`{"orgs":[]}`), nil)

	e, err := NewEnvelopeEngine(a, b, nil, []domain.Endpoint{orgsAPI}, Options{}, log.Discard())
	require.NoError(t, err)
	report, err := e.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.StatusError, report.Results[0].Status)
	assert.True(t, errors.Is(report.Results[0].Err, errors.CodeParseError))
}

func TestArtifactName(t *testing.T) {
	assert.Equal(t, "ds4-mssql-academicSessions.json", ArtifactName("ds4", "mssql", "academicSessions"))
}
