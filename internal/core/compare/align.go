package compare

import (
	"sort"

	"github.com/olusolaa/oneroster-parity/internal/core/domain"
)

// Alignment holds both row sets sorted by key. Pairs are only meaningful when
// Status is AlignOK: row i of A is compared with row i of B.
type Alignment struct {
	Status domain.AlignStatus
	A      []domain.Row
	B      []domain.Row
}

// Len is the number of aligned pairs.
func (a Alignment) Len() int {
	if a.Status != domain.AlignOK {
		return 0
	}
	return len(a.A)
}

// AlignRows sorts copies of both inputs by the key field using ordinal byte
// comparison. Rows with a missing or null key sort as "". The sort is stable
// so rows with equal keys keep their fetch order.
func AlignRows(a, b []domain.Row, keyField string) Alignment {
	sa := sortedByKey(a, keyField)
	sb := sortedByKey(b, keyField)

	status := domain.AlignOK
	switch {
	case len(sa) == 0 && len(sb) == 0:
		status = domain.AlignEmpty
	case len(sa) != len(sb):
		status = domain.AlignCountMismatch
	}
	return Alignment{Status: status, A: sa, B: sb}
}

func sortedByKey(rows []domain.Row, keyField string) []domain.Row {
	out := make([]domain.Row, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Key(keyField) < out[j].Key(keyField)
	})
	return out
}
