package compare

import (
	"fmt"

	"github.com/olusolaa/oneroster-parity/internal/core/domain"
	apperrors "github.com/olusolaa/oneroster-parity/internal/errors"
)

// ReconcileColumns computes the symmetric difference of two column lists.
// Both outputs preserve source order. The result is advisory: it never fails
// an endpoint, but an empty column list on either side means the schema could
// not be read and comparison must not proceed.
func ReconcileColumns(a, b []string) (domain.ColumnDifference, error) {
	if len(a) == 0 || len(b) == 0 {
		return domain.ColumnDifference{}, apperrors.New(apperrors.CodeColumnDetectionFailed,
			fmt.Sprintf("could not determine columns (A: %d, B: %d)", len(a), len(b)))
	}
	return domain.ColumnDifference{
		MissingInB: minus(a, b),
		ExtraInB:   minus(b, a),
	}, nil
}

// SharedColumns returns the columns of a that also exist in b, in a's order.
func SharedColumns(a, b []string) []string {
	inB := toSet(b)
	out := make([]string, 0, len(a))
	for _, c := range a {
		if _, ok := inB[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

func minus(a, b []string) []string {
	inB := toSet(b)
	out := []string{}
	for _, c := range a {
		if _, ok := inB[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		set[s] = struct{}{}
	}
	return set
}
