package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// ValueType tags how a persisted configuration value is decoded.
type ValueType string

const (
	TypeString   ValueType = "string"
	TypeNumber   ValueType = "number"
	TypeBoolean  ValueType = "boolean"
	TypeJSON     ValueType = "json"
	TypeArray    ValueType = "array"
	TypePassword ValueType = "password"
	TypeEnum     ValueType = "enum"
)

// DefaultCategory is used for keys without a leading segment.
const DefaultCategory = "default"

// ErrNonFinite reports a number value of NaN or an infinity, which has no JSON form.
var ErrNonFinite = errors.New("number is not finite")

// Valid reports whether t is one of the known value types.
func (t ValueType) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean, TypeJSON, TypeArray, TypePassword, TypeEnum:
		return true
	default:
		return false
	}
}

// ParseValue decodes raw according to t. When decoding fails the raw string is returned.
func ParseValue(raw string, t ValueType) any {
	v, _ := DecodeValue(raw, t)
	return v
}

// DecodeValue decodes raw according to t. On failure it returns the raw string together
// with the decoding error.
//
// Password values are returned as stored; decryption is left to callers.
func DecodeValue(raw string, t ValueType) (any, error) {
	switch t {
	case TypeNumber:
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return float64(0), nil
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return raw, fmt.Errorf("decode number %q: %w", raw, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return raw, fmt.Errorf("decode number %q: %w", raw, ErrNonFinite)
		}
		return f, nil
	case TypeBoolean:
		return raw == "true" || raw == "1", nil
	case TypeJSON, TypeArray:
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return raw, fmt.Errorf("decode %s: %w", t, err)
		}
		return v, nil
	default:
		return raw, nil
	}
}

// StringifyValue produces the persisted form of v. nil becomes the empty string, maps,
// slices and structs are JSON encoded and scalars use their plain text form.
func StringifyValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case json.RawMessage:
		return string(val)
	case []byte:
		return string(val)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Pointer:
		if rv.IsNil() {
			return ""
		}
		return StringifyValue(rv.Elem().Interface())
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	default:
		return fmt.Sprint(v)
	}
}

// InferValueType guesses the ValueType for a runtime value. It is only used when a key is
// created without an existing row to take the type from.
func InferValueType(v any) ValueType {
	if v == nil {
		return TypeString
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return TypeString
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Bool:
		return TypeBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return TypeNumber
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			// raw bytes are persisted verbatim
			return TypeString
		}
		return TypeArray
	case reflect.Map, reflect.Struct:
		return TypeJSON
	default:
		return TypeString
	}
}

// ExtractCategory returns the first dot-delimited segment of key, or DefaultCategory when
// that segment is empty.
func ExtractCategory(key string) string {
	head, _, _ := strings.Cut(key, ".")
	if head == "" {
		return DefaultCategory
	}
	return head
}
