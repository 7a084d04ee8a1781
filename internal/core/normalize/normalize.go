// Package normalize converts raw backend values into domain.Value so that the
// same logical datum converges regardless of how a backend encoded it.
package normalize

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/olusolaa/oneroster-parity/internal/core/domain"
	"github.com/olusolaa/oneroster-parity/internal/core/ports"
	apperrors "github.com/olusolaa/oneroster-parity/internal/errors"
	"github.com/olusolaa/oneroster-parity/pkg/reflectutil"
)

const rootPath = "root"

// jsonAPI keeps numbers as json.Number so int64 identifiers survive decoding.
var jsonAPI = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// Degradation records a string that looked like JSON but did not parse. The
// string is kept as-is in the normalized output.
type Degradation struct {
	Path string
	Text string
	Err  error
}

// Normalizer wraps the pure conversion functions and reports degradations to
// the log.
type Normalizer struct {
	logger ports.Logger
}

func NewNormalizer(logger ports.Logger) *Normalizer {
	return &Normalizer{logger: logger.WithFields(map[string]any{"component": "normalizer"})}
}

// Normalize converts raw and logs any degraded JSON parse at warn level.
func (n *Normalizer) Normalize(ctx context.Context, raw any) domain.Value {
	return n.NormalizeAt(ctx, "", raw)
}

// NormalizeAt is Normalize with a path prefix used in log messages.
func (n *Normalizer) NormalizeAt(ctx context.Context, path string, raw any) domain.Value {
	w := walker{parseStrings: true}
	v := w.convert(raw, pathOrRoot(path))
	for _, d := range w.degraded {
		n.logger.Warnf(ctx, "value at %s looks like JSON but could not be parsed, keeping raw text: %v", d.Path, d.Err)
	}
	return v
}

// Value is the pure normalization function. JSON-looking strings are parsed
// recursively; everything else is converted structurally.
func Value(raw any) (domain.Value, []Degradation) {
	w := walker{parseStrings: true}
	v := w.convert(raw, rootPath)
	return v, w.degraded
}

// Literal converts raw without interpreting strings, so a JSON-encoded string
// stays a string. The row differ uses it to see how each backend encoded a
// field before bridging the encodings.
func Literal(raw any) domain.Value {
	w := walker{}
	return w.convert(raw, rootPath)
}

// LooksLikeJSON reports whether s, trimmed, is delimited like a JSON object
// or array.
func LooksLikeJSON(s string) bool {
	t := strings.TrimSpace(s)
	if len(t) < 2 {
		return false
	}
	return (t[0] == '{' && t[len(t)-1] == '}') || (t[0] == '[' && t[len(t)-1] == ']')
}

// ParseJSON strictly parses s and normalizes the result. Any scalar JSON
// document is accepted; trailing data is an error.
func ParseJSON(s string) (domain.Value, error) {
	return ParseJSONBytes([]byte(s))
}

func ParseJSONBytes(data []byte) (domain.Value, error) {
	var decoded any
	if err := jsonAPI.Unmarshal(data, &decoded); err != nil {
		return domain.Value{}, apperrors.Wrap(err, apperrors.CodeParseError, "invalid JSON document")
	}
	v, _ := Value(decoded)
	return v, nil
}

type walker struct {
	parseStrings bool
	degraded     []Degradation
}

func (w *walker) convert(raw any, path string) domain.Value {
	switch v := raw.(type) {
	case nil:
		return domain.Null()
	case domain.Value:
		return w.renormalize(v, path)
	case bool:
		return domain.Bool(v)
	case string:
		return w.str(v, path)
	case []byte:
		return w.str(string(v), path)
	case json.Number:
		return domain.Number(v.String())
	case time.Time:
		return domain.String(v.UTC().Format(time.RFC3339Nano))
	case map[string]any:
		out := make(map[string]domain.Value, len(v))
		for k, item := range v {
			out[k] = w.convert(item, path+"."+k)
		}
		return domain.Object(out)
	case []any:
		out := make([]domain.Value, len(v))
		for i, item := range v {
			out[i] = w.convert(item, fmt.Sprintf("%s[%d]", path, i))
		}
		return domain.Array(out...)
	case fmt.Stringer:
		return w.str(v.String(), path)
	}
	return w.reflected(reflect.ValueOf(raw), path)
}

func (w *walker) reflected(rv reflect.Value, path string) domain.Value {
	rv = reflectutil.DerefValue(rv)
	if reflectutil.IsNil(rv) {
		return domain.Null()
	}
	if reflectutil.IsNumber(rv) {
		text, _ := reflectutil.NumberText(rv)
		return domain.Number(text)
	}
	switch {
	case rv.Kind() == reflect.Bool:
		return domain.Bool(rv.Bool())
	case rv.Kind() == reflect.String:
		return w.str(rv.String(), path)
	case reflectutil.IsBytes(rv):
		return w.str(string(rv.Bytes()), path)
	case reflectutil.IsSequence(rv):
		out := make([]domain.Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = w.convert(rv.Index(i).Interface(), fmt.Sprintf("%s[%d]", path, i))
		}
		return domain.Array(out...)
	case reflectutil.IsStringMap(rv):
		out := make(map[string]domain.Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			out[k] = w.convert(iter.Value().Interface(), path+"."+k)
		}
		return domain.Object(out)
	}
	if rv.CanInterface() {
		return w.str(fmt.Sprint(rv.Interface()), path)
	}
	return domain.String(rv.String())
}

// renormalize walks an already normalized value so that Normalize is
// idempotent and Literal output can be upgraded later.
func (w *walker) renormalize(v domain.Value, path string) domain.Value {
	switch v.Kind {
	case domain.KindString:
		return w.str(v.Str, path)
	case domain.KindNumber:
		return domain.Number(v.Num)
	case domain.KindArray:
		out := make([]domain.Value, len(v.Arr))
		for i, item := range v.Arr {
			out[i] = w.renormalize(item, fmt.Sprintf("%s[%d]", path, i))
		}
		return domain.Array(out...)
	case domain.KindObject:
		out := make(map[string]domain.Value, len(v.Obj))
		for _, k := range v.Keys() {
			out[k] = w.renormalize(v.Obj[k], path+"."+k)
		}
		return domain.Object(out)
	default:
		return v
	}
}

func (w *walker) str(s, path string) domain.Value {
	if !w.parseStrings || !LooksLikeJSON(s) {
		return domain.String(s)
	}
	var decoded any
	if err := jsonAPI.UnmarshalFromString(s, &decoded); err != nil {
		w.degraded = append(w.degraded, Degradation{Path: path, Text: s, Err: err})
		return domain.String(s)
	}
	return w.convert(decoded, path)
}

func pathOrRoot(p string) string {
	if p == "" {
		return rootPath
	}
	return p
}
