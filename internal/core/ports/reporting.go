package ports

import (
	"context"

	"github.com/olusolaa/oneroster-parity/internal/core/domain"
)

//go:generate mockery --name=Reporter --output=./mocks --outpkg=mocks --case underscore
type Reporter interface {
	Report(ctx context.Context, report domain.RunReport) error
}
