package compare

import (
	"context"
	"sort"
	"strings"

	"github.com/olusolaa/oneroster-parity/internal/core/domain"
	"github.com/olusolaa/oneroster-parity/internal/core/normalize"
)

// ColumnPolicy decides which columns of an aligned row pair are compared.
// Side A is authoritative: Columns is taken from A, and columns B does not
// have are skipped.
type ColumnPolicy struct {
	RowKey   string
	Excluded map[string]struct{}
	// Columns is A's column list in source order. When empty the columns of
	// the A row are used.
	Columns []string
	// ColumnsB is B's column set. When nil the columns of the B row are used.
	ColumnsB map[string]struct{}
}

// NewColumnPolicy builds a policy from the two schemas and the configured
// exclusions.
func NewColumnPolicy(rowKey string, excluded, columnsA, columnsB []string) ColumnPolicy {
	if rowKey == "" {
		rowKey = domain.KeyRowKey
	}
	var setB map[string]struct{}
	if len(columnsB) > 0 {
		setB = toSet(columnsB)
	}
	return ColumnPolicy{
		RowKey:   rowKey,
		Excluded: toSet(excluded),
		Columns:  columnsA,
		ColumnsB: setB,
	}
}

// Compared returns the columns of the pair that take part in the comparison.
func (p ColumnPolicy) Compared(rowA, rowB domain.Row) []string {
	cols := p.Columns
	if len(cols) == 0 {
		cols = rowA.Columns()
	}
	inB := p.ColumnsB
	if inB == nil {
		inB = toSet(rowB.Columns())
	}
	key := strings.ToLower(p.RowKey)

	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if _, skip := p.Excluded[c]; skip {
			continue
		}
		if key != "" && strings.Contains(strings.ToLower(c), key) {
			continue
		}
		if _, ok := inB[c]; !ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

// DiffRows compares one aligned row pair field by field. Encoding differences
// between the backends are bridged before the generic structural diff: JSON
// text is parsed when the other side holds a native array or object, null and
// a missing value are equivalent, and a native boolean against its string form
// is reported as boolean_format rather than hidden.
func (d *Differ) DiffRows(ctx context.Context, rowA, rowB domain.Row, policy ColumnPolicy) []domain.FieldDifference {
	var out []domain.FieldDifference
	for _, col := range policy.Compared(rowA, rowB) {
		rawA, _ := rowA.Get(col)
		rawB, _ := rowB.Get(col)
		if fd, ok := d.diffField(ctx, col, rawA, rawB, policy.RowKey); ok {
			out = append(out, fd)
		}
	}
	return out
}

func (d *Differ) diffField(ctx context.Context, field string, rawA, rawB any, rowKey string) (domain.FieldDifference, bool) {
	a := normalize.Literal(rawA)
	b := normalize.Literal(rawB)

	switch {
	case a.Kind == domain.KindArray && b.Kind == domain.KindString:
		return d.bridgeArray(ctx, field, a, b, rowKey, false)
	case b.Kind == domain.KindArray && a.Kind == domain.KindString:
		return d.bridgeArray(ctx, field, b, a, rowKey, true)
	case a.Kind == domain.KindObject && b.Kind == domain.KindString:
		return d.bridgeObject(ctx, field, a, b, false)
	case b.Kind == domain.KindObject && a.Kind == domain.KindString:
		return d.bridgeObject(ctx, field, b, a, true)
	case a.IsNullish() && b.IsNullish():
		return domain.FieldDifference{}, false
	}

	if fd, ok := booleanFormat(field, a, b); ok {
		return fd, true
	}

	na := d.normalizeField(ctx, field, a)
	nb := d.normalizeField(ctx, field, b)
	details := d.DiffValues(na, nb, field)
	if len(details) == 0 {
		return domain.FieldDifference{}, false
	}
	fd := domain.FieldDifference{Field: field, Kind: domain.DiffValue, A: na, B: nb}
	switch {
	case na.Kind == domain.KindArray || nb.Kind == domain.KindArray:
		fd.Kind = domain.DiffArrayContent
		fd.Details = details
	case na.Kind == domain.KindObject || nb.Kind == domain.KindObject:
		fd.Kind = domain.DiffJSONContent
		fd.Details = details
	}
	return fd, true
}

// bridgeArray handles a native array against JSON text. swapped means the
// native array came from side B.
func (d *Differ) bridgeArray(ctx context.Context, field string, native, text domain.Value, rowKey string, swapped bool) (domain.FieldDifference, bool) {
	parsed, err := normalize.ParseJSON(text.Str)
	if err != nil {
		return orient(domain.FieldDifference{Field: field, Kind: domain.DiffArrayParseErr, A: native, B: text}, swapped), true
	}
	nv := d.normalizeField(ctx, field, native)
	if parsed.Kind == domain.KindArray {
		if sortKey := arraySortKey(nv, rowKey); sortKey != "" {
			nv = sortArray(nv, sortKey)
			parsed = sortArray(parsed, sortKey)
		}
	}
	if nv.Equal(parsed) {
		return domain.FieldDifference{}, false
	}
	fd := domain.FieldDifference{Field: field, Kind: domain.DiffArrayContent, A: nv, B: parsed}
	fd = orient(fd, swapped)
	fd.Details = d.DiffValues(fd.A, fd.B, field)
	return fd, true
}

func (d *Differ) bridgeObject(ctx context.Context, field string, native, text domain.Value, swapped bool) (domain.FieldDifference, bool) {
	parsed, err := normalize.ParseJSON(text.Str)
	if err != nil {
		return orient(domain.FieldDifference{Field: field, Kind: domain.DiffJSONParseError, A: native, B: text}, swapped), true
	}
	nv := d.normalizeField(ctx, field, native)
	if nv.Equal(parsed) {
		return domain.FieldDifference{}, false
	}
	fd := orient(domain.FieldDifference{Field: field, Kind: domain.DiffJSONContent, A: nv, B: parsed}, swapped)
	fd.Details = d.DiffValues(fd.A, fd.B, field)
	return fd, true
}

func booleanFormat(field string, a, b domain.Value) (domain.FieldDifference, bool) {
	matches := func(boolean, text domain.Value) bool {
		return boolean.Kind == domain.KindBool && text.Kind == domain.KindString &&
			((boolean.Bool && text.Str == "true") || (!boolean.Bool && text.Str == "false"))
	}
	if matches(a, b) || matches(b, a) {
		return domain.FieldDifference{Field: field, Kind: domain.DiffBooleanFormat, A: a, B: b}, true
	}
	return domain.FieldDifference{}, false
}

func (d *Differ) normalizeField(ctx context.Context, field string, v domain.Value) domain.Value {
	if d.normalizer == nil {
		out, _ := normalize.Value(v)
		return out
	}
	return d.normalizer.NormalizeAt(ctx, field, v)
}

// arraySortKey picks the field that identifies elements of a keyed array:
// the row key when the first element carries one, otherwise "type".
func arraySortKey(arr domain.Value, rowKey string) string {
	if len(arr.Arr) == 0 {
		return ""
	}
	first := arr.Arr[0]
	if truthy(first.Field(rowKey)) {
		return rowKey
	}
	if truthy(first.Field(domain.KeyType)) {
		return domain.KeyType
	}
	return ""
}

func truthy(v domain.Value) bool {
	switch v.Kind {
	case domain.KindAbsent, domain.KindNull:
		return false
	case domain.KindString:
		return v.Str != ""
	case domain.KindBool:
		return v.Bool
	case domain.KindNumber:
		return v.Num != "0"
	default:
		return true
	}
}

func sortArray(arr domain.Value, key string) domain.Value {
	items := make([]domain.Value, len(arr.Arr))
	copy(items, arr.Arr)
	sort.SliceStable(items, func(i, j int) bool {
		return sortText(items[i].Field(key)) < sortText(items[j].Field(key))
	})
	return domain.Array(items...)
}

func sortText(v domain.Value) string {
	switch v.Kind {
	case domain.KindString:
		return v.Str
	case domain.KindNumber:
		return v.Num
	case domain.KindAbsent, domain.KindNull:
		return ""
	default:
		return v.String()
	}
}

func orient(fd domain.FieldDifference, swapped bool) domain.FieldDifference {
	if swapped {
		fd.A, fd.B = fd.B, fd.A
	}
	return fd
}
