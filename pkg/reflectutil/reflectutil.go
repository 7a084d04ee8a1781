package reflectutil

import (
	"reflect"
	"strconv"
)

// DerefValue follows pointers and interfaces until it reaches a concrete value
// or a nil.
func DerefValue(v reflect.Value) reflect.Value {
	for (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) && !v.IsNil() {
		v = v.Elem()
	}
	return v
}

// IsNil reports whether v is invalid or a nil pointer, interface, map or slice.
func IsNil(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}

func IsNumber(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// IsBytes reports whether v is a byte slice, which drivers use for text.
func IsBytes(v reflect.Value) bool {
	return v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8
}

// IsSequence reports slices and arrays other than byte slices.
func IsSequence(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Slice:
		return !IsBytes(v)
	case reflect.Array:
		return true
	default:
		return false
	}
}

// IsStringMap reports maps keyed by a string kind.
func IsStringMap(v reflect.Value) bool {
	return v.Kind() == reflect.Map && v.Type().Key().Kind() == reflect.String
}

// NumberText renders a numeric value as decimal text. Integers keep their full
// precision; floats use the shortest representation that round-trips.
func NumberText(v reflect.Value) (string, bool) {
	v = DerefValue(v)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), true
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'g', -1, 32), true
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64), true
	}
	return "", false
}
