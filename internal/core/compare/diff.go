package compare

import (
	"fmt"
	"sort"

	"github.com/olusolaa/oneroster-parity/internal/core/domain"
	"github.com/olusolaa/oneroster-parity/internal/core/normalize"
	"github.com/olusolaa/oneroster-parity/internal/core/ports"
)

const (
	DefaultMaxDepth = 64
	rootPath        = "root"
)

// Differ computes path-addressed differences between normalized values and
// field differences between aligned rows.
type Differ struct {
	MaxDepth   int
	normalizer *normalize.Normalizer
}

func NewDiffer(maxDepth int, logger ports.Logger) *Differ {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Differ{
		MaxDepth:   maxDepth,
		normalizer: normalize.NewNormalizer(logger),
	}
}

// DiffValues returns the differences between a and b in pre-order: object
// keys in sorted union order, arrays by index. The result is empty iff a and
// b are deep-equal.
func (d *Differ) DiffValues(a, b domain.Value, path string) []domain.Difference {
	if path == "" {
		path = rootPath
	}
	var out []domain.Difference
	d.diff(a, b, path, 0, &out)
	return out
}

func (d *Differ) diff(a, b domain.Value, path string, depth int, out *[]domain.Difference) {
	if a.IsNullish() || b.IsNullish() {
		if a.Kind != b.Kind {
			*out = append(*out, domain.Difference{Path: path, Kind: domain.DiffValue, A: a, B: b})
		}
		return
	}

	if depth > d.maxDepth() {
		if !sameTree(a, b) {
			*out = append(*out, domain.Difference{Path: path, Kind: domain.DiffType, A: a, B: b})
		}
		return
	}

	aArr, bArr := a.Kind == domain.KindArray, b.Kind == domain.KindArray
	switch {
	case aArr != bArr:
		*out = append(*out, domain.Difference{Path: path, Kind: domain.DiffType, A: a, B: b})

	case aArr:
		if len(a.Arr) != len(b.Arr) {
			*out = append(*out, domain.Difference{
				Path: path,
				Kind: domain.DiffLength,
				A:    domain.Int(int64(len(a.Arr))),
				B:    domain.Int(int64(len(b.Arr))),
			})
		}
		n := min(len(a.Arr), len(b.Arr))
		for i := 0; i < n; i++ {
			d.diff(a.Arr[i], b.Arr[i], fmt.Sprintf("%s[%d]", path, i), depth+1, out)
		}

	case a.Kind == domain.KindObject && b.Kind == domain.KindObject:
		for _, k := range unionKeys(a, b) {
			av, inA := a.Obj[k]
			bv, inB := b.Obj[k]
			child := path + "." + k
			switch {
			case !inB:
				*out = append(*out, domain.Difference{Path: child, Kind: domain.DiffMissingInB, A: av, B: domain.Absent()})
			case !inA:
				*out = append(*out, domain.Difference{Path: child, Kind: domain.DiffMissingInA, A: domain.Absent(), B: bv})
			default:
				d.diff(av, bv, child, depth+1, out)
			}
		}

	default:
		if !a.Equal(b) {
			*out = append(*out, domain.Difference{Path: path, Kind: domain.DiffValue, A: a, B: b})
		}
	}
}

func (d *Differ) maxDepth() int {
	if d.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return d.MaxDepth
}

// sameTree reports deep equality of a and b using an explicit work list, so
// subtrees below the depth cutoff are checked without further recursion.
func sameTree(a, b domain.Value) bool {
	work := [][2]domain.Value{{a, b}}
	for len(work) > 0 {
		pair := work[len(work)-1]
		work = work[:len(work)-1]
		x, y := pair[0], pair[1]
		if x.Kind != y.Kind {
			return false
		}
		switch x.Kind {
		case domain.KindBool:
			if x.Bool != y.Bool {
				return false
			}
		case domain.KindNumber:
			if x.Num != y.Num {
				return false
			}
		case domain.KindString:
			if x.Str != y.Str {
				return false
			}
		case domain.KindArray:
			if len(x.Arr) != len(y.Arr) {
				return false
			}
			for i := range x.Arr {
				work = append(work, [2]domain.Value{x.Arr[i], y.Arr[i]})
			}
		case domain.KindObject:
			if len(x.Obj) != len(y.Obj) {
				return false
			}
			for k, xv := range x.Obj {
				yv, ok := y.Obj[k]
				if !ok {
					return false
				}
				work = append(work, [2]domain.Value{xv, yv})
			}
		}
	}
	return true
}

func unionKeys(a, b domain.Value) []string {
	keys := a.Keys()
	seen := toSet(keys)
	for _, k := range b.Keys() {
		if _, ok := seen[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
