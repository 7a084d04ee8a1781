package sqldb

import (
	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.Config{UseNumber: true}.Froze()

// ConvertDefault turns driver byte slices into strings and leaves every
// other value alone.
func ConvertDefault(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// DecodeJSON decodes a native JSON column into maps and slices. Undecodable
// content is returned as text.
func DecodeJSON(v any) any {
	var data []byte
	switch t := v.(type) {
	case nil:
		return nil
	case []byte:
		data = t
	case string:
		data = []byte(t)
	default:
		return v
	}
	var decoded any
	if err := jsonAPI.Unmarshal(data, &decoded); err != nil {
		return string(data)
	}
	return decoded
}
