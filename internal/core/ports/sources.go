package ports

import (
	"context"

	"github.com/olusolaa/oneroster-parity/internal/core/domain"
)

// TableSource is a read-only connection to one backend's table surface.
//
//go:generate mockery --name=TableSource --output=./mocks --outpkg=mocks --case underscore
type TableSource interface {
	Label() string
	// ListColumns returns the endpoint's column names in source order, or an
	// empty slice when they cannot be determined.
	ListColumns(ctx context.Context, endpoint domain.Endpoint) ([]string, error)
	// FetchAllRows performs a complete, unordered scan of the endpoint.
	FetchAllRows(ctx context.Context, endpoint domain.Endpoint, side domain.Side) ([]domain.Row, error)
	Describe(ctx context.Context) (domain.BackendInfo, error)
	Close() error
}

// EnvelopeSource fetches REST response envelopes from one backend's API.
//
//go:generate mockery --name=EnvelopeSource --output=./mocks --outpkg=mocks --case underscore
type EnvelopeSource interface {
	Label() string
	FetchEnvelope(ctx context.Context, endpoint domain.Endpoint) ([]byte, error)
}

// ArtifactSink persists raw payloads for later inspection.
//
//go:generate mockery --name=ArtifactSink --output=./mocks --outpkg=mocks --case underscore
type ArtifactSink interface {
	Save(ctx context.Context, name string, payload []byte) error
}
