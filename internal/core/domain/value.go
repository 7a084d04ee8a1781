package domain

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	jsoniter "github.com/json-iterator/go"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	// KindAbsent is the zero kind: the field does not exist at all.
	KindAbsent ValueKind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

var kindNames = map[ValueKind]string{
	KindAbsent: "absent",
	KindNull:   "null",
	KindBool:   "boolean",
	KindNumber: "number",
	KindString: "string",
	KindArray:  "array",
	KindObject: "object",
}

func (k ValueKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// Value is the canonical, backend-independent form of a field value.
// Only the member matching Kind is populated. Numbers are kept as canonical
// decimal text so that integer and floating encodings of the same number
// compare equal without losing int64 precision.
type Value struct {
	Kind ValueKind
	Bool bool
	Num  string
	Str  string
	Arr  []Value
	Obj  map[string]Value
}

// plainValue drops Value's method set so cmp does not call back into Equal.
type plainValue Value

var equalOpts = []cmp.Option{cmpopts.EquateEmpty()}

func Absent() Value              { return Value{} }
func Null() Value                { return Value{Kind: KindNull} }
func Bool(b bool) Value          { return Value{Kind: KindBool, Bool: b} }
func String(s string) Value      { return Value{Kind: KindString, Str: s} }
func Array(items ...Value) Value { return Value{Kind: KindArray, Arr: items} }

func Object(fields map[string]Value) Value {
	if fields == nil {
		fields = map[string]Value{}
	}
	return Value{Kind: KindObject, Obj: fields}
}

// Number builds a number from its decimal text, canonicalizing it so that
// "1", "1.0" and "1e0" all yield the same Value.
func Number(text string) Value {
	return Value{Kind: KindNumber, Num: CanonicalNumber(text)}
}

func Int(i int64) Value     { return Value{Kind: KindNumber, Num: strconv.FormatInt(i, 10)} }
func Float(f float64) Value { return Value{Kind: KindNumber, Num: canonicalFloat(f)} }

// CanonicalNumber rewrites numeric text into a single representation.
// Text that is not a number is returned unchanged.
func CanonicalNumber(text string) string {
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return canonicalFloat(f)
	}
	return text
}

func canonicalFloat(f float64) string {
	if f == float64(int64(f)) && f >= -1e15 && f <= 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func (v Value) IsNullish() bool    { return v.Kind == KindAbsent || v.Kind == KindNull }
func (v Value) IsScalar() bool     { return v.Kind != KindArray && v.Kind != KindObject }
func (v Value) IsStructured() bool { return v.Kind == KindArray || v.Kind == KindObject }

// Equal reports deep equality. Nested elements are compared through their
// own Equal method, one level per call.
func (v Value) Equal(other Value) bool {
	return cmp.Equal(plainValue(v), plainValue(other), equalOpts...)
}

// Keys returns the object's keys in sorted order; nil for non-objects.
func (v Value) Keys() []string {
	if v.Kind != KindObject {
		return nil
	}
	keys := make([]string, 0, len(v.Obj))
	for k := range v.Obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Field returns the member named key, or Absent.
func (v Value) Field(key string) Value {
	if v.Kind != KindObject {
		return Absent()
	}
	f, ok := v.Obj[key]
	if !ok {
		return Absent()
	}
	return f
}

// Interface converts the value back into plain Go data (maps, slices,
// json.Number, string, bool, nil).
func (v Value) Interface() any {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindNumber:
		return json.Number(v.Num)
	case KindString:
		return v.Str
	case KindArray:
		out := make([]any, len(v.Arr))
		for i, item := range v.Arr {
			out[i] = item.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.Obj))
		for k, item := range v.Obj {
			out[k] = item.Interface()
		}
		return out
	default:
		return nil
	}
}

// String renders the value as compact JSON. Absent renders as "undefined".
func (v Value) String() string {
	if v.Kind == KindAbsent {
		return "undefined"
	}
	b, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(v.Interface())
	if err != nil {
		return "<unrenderable>"
	}
	return string(b)
}

// MarshalJSON lets reports embed values directly.
func (v Value) MarshalJSON() ([]byte, error) {
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(v.Interface())
}
