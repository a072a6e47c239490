package codec

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Option is one selectable choice of an enum configuration value.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ParseOptions decodes the serialized choice list stored with enum items. Both
// [{"label":"A","value":"a"}] and ["a","b"] are accepted; plain strings use the value as
// label. Empty or malformed input yields nil.
func ParseOptions(raw string) []Option {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}

	out := make([]Option, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, Option{Label: s, Value: s})
			continue
		}

		var obj struct {
			Label string `json:"label"`
			Value any    `json:"value"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return nil
		}
		value := StringifyValue(obj.Value)
		label := obj.Label
		if label == "" {
			label = value
		}
		out = append(out, Option{Label: label, Value: value})
	}

	return out
}

// HasOption reports whether value is one of the choices encoded in raw.
func HasOption(raw, value string) bool {
	for _, o := range ParseOptions(raw) {
		if o.Value == value {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (o Option) String() string {
	return fmt.Sprintf("%s=%s", o.Label, o.Value)
}
