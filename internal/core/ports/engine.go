package ports

import (
	"context"

	"github.com/olusolaa/oneroster-parity/internal/core/domain"
)

//go:generate mockery --name ParityEngine --output ./mocks --outpkg mocks --case underscore
type ParityEngine interface {
	Run(ctx context.Context) (domain.RunReport, error)
}
