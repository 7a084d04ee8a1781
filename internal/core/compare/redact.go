package compare

import (
	"regexp"
	"strings"

	"github.com/olusolaa/oneroster-parity/internal/core/domain"
)

// generatedID matches backend-generated row identifiers (md5 hex).
var generatedID = regexp.MustCompile(`^[a-f0-9]{32}$`)

var redactedKeys = map[string]struct{}{
	domain.KeyRowKey:           {},
	domain.KeyHref:             {},
	domain.KeyDateLastModified: {},
}

// Redact removes fields that legitimately differ between backends for the same
// logical record: identifiers, links and refresh timestamps. A key is dropped
// when its name is one of those fields or when its value contains, at any
// depth, a generated identifier or a string mentioning sourcedId or href.
// Kept values are redacted recursively.
func Redact(v domain.Value) domain.Value {
	switch v.Kind {
	case domain.KindArray:
		out := make([]domain.Value, len(v.Arr))
		for i, item := range v.Arr {
			out[i] = Redact(item)
		}
		return domain.Array(out...)
	case domain.KindObject:
		out := make(map[string]domain.Value, len(v.Obj))
		for k, item := range v.Obj {
			if _, drop := redactedKeys[k]; drop {
				continue
			}
			if carriesIdentifier(item) {
				continue
			}
			out[k] = Redact(item)
		}
		return domain.Object(out)
	default:
		return v
	}
}

// RedactCollection applies Redact to each item of the named collection and
// leaves the rest of the document untouched.
func RedactCollection(doc domain.Value, property string) domain.Value {
	coll, ok := doc.Obj[property]
	if doc.Kind != domain.KindObject || !ok || coll.Kind != domain.KindArray {
		return doc
	}
	items := make([]domain.Value, len(coll.Arr))
	for i, item := range coll.Arr {
		items[i] = Redact(item)
	}
	out := make(map[string]domain.Value, len(doc.Obj))
	for k, item := range doc.Obj {
		out[k] = item
	}
	out[property] = domain.Array(items...)
	return domain.Object(out)
}

func carriesIdentifier(v domain.Value) bool {
	switch v.Kind {
	case domain.KindString:
		return generatedID.MatchString(v.Str) ||
			strings.Contains(v.Str, domain.KeyRowKey) ||
			strings.Contains(v.Str, domain.KeyHref)
	case domain.KindArray:
		for _, item := range v.Arr {
			if carriesIdentifier(item) {
				return true
			}
		}
	case domain.KindObject:
		for _, item := range v.Obj {
			if carriesIdentifier(item) {
				return true
			}
		}
	}
	return false
}
