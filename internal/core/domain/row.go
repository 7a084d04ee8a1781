package domain

import (
	"fmt"
	"sort"

	jsoniter "github.com/json-iterator/go"
)

// Endpoint is one logical dataset shared by both backends.
type Endpoint struct {
	Name             string `mapstructure:"name" validate:"required"`
	Table            string `mapstructure:"table"`
	RowKey           string `mapstructure:"row_key"`
	Path             string `mapstructure:"path"`
	ResponseProperty string `mapstructure:"response_property"`
	DisplayName      string `mapstructure:"display_name"`
}

// TableName falls back to the endpoint name when no table is configured.
func (e Endpoint) TableName() string {
	if e.Table != "" {
		return e.Table
	}
	return e.Name
}

// KeyField falls back to the conventional OneRoster identifier.
func (e Endpoint) KeyField() string {
	if e.RowKey != "" {
		return e.RowKey
	}
	return KeyRowKey
}

func (e Endpoint) Label() string {
	if e.DisplayName != "" {
		return e.DisplayName
	}
	return e.Name
}

// Row is a single record fetched from one backend. Rows are never mutated
// after they are built.
type Row struct {
	Endpoint string
	Side     Side
	columns  map[string]any
}

// NewRow copies columns so later changes by the caller cannot leak in.
func NewRow(endpoint string, side Side, columns map[string]any) Row {
	cp := make(map[string]any, len(columns))
	for k, v := range columns {
		cp[k] = v
	}
	return Row{Endpoint: endpoint, Side: side, columns: cp}
}

// Get returns the raw column value and whether the column exists.
func (r Row) Get(column string) (any, bool) {
	v, ok := r.columns[column]
	return v, ok
}

// Columns returns the row's column names sorted.
func (r Row) Columns() []string {
	out := make([]string, 0, len(r.columns))
	for k := range r.columns {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Map returns a copy of the raw column map.
func (r Row) Map() map[string]any {
	cp := make(map[string]any, len(r.columns))
	for k, v := range r.columns {
		cp[k] = v
	}
	return cp
}

func (r Row) Len() int {
	return len(r.columns)
}

// MarshalJSON renders the complete raw row with sorted keys. A row with no
// columns renders as null.
func (r Row) MarshalJSON() ([]byte, error) {
	if len(r.columns) == 0 {
		return []byte("null"), nil
	}
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(r.columns)
}

// Key renders the key column as a string; missing or null keys render as "".
func (r Row) Key(field string) string {
	v, ok := r.columns[field]
	if !ok || v == nil {
		return ""
	}
	switch k := v.(type) {
	case string:
		return k
	case []byte:
		return string(k)
	default:
		return fmt.Sprint(k)
	}
}

// Title picks the first non-empty title field for display.
func (r Row) Title(fields []string) string {
	for _, f := range fields {
		if s := r.Key(f); s != "" {
			return s
		}
	}
	return "N/A"
}

// ShortKey is the first eight characters of the row key, used in summaries.
func (r Row) ShortKey(field string) string {
	k := r.Key(field)
	if k == "" {
		return "N/A"
	}
	if len(k) > 8 {
		return k[:8]
	}
	return k
}

// BackendInfo describes a connected backend.
type BackendInfo struct {
	Label        string
	Server       string
	Database     string
	User         string
	Version      string
	DataStandard string
}
