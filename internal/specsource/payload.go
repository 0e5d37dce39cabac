package specsource

import (
	"encoding/json"
	"strconv"
)

// payload is one decoded upstream JSON object.
type payload map[string]interface{}

// str returns the payload field rendered as a string. Numbers are rendered
// without loss ("0" stays "0", 6.5 stays "6.5"); absent fields report false.
func (p payload) str(key string) (string, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", false
	}
	return renderValue(v), true
}

// strPtr returns a *string for the payload field, nil when absent. Used to
// populate optional specification fields without collapsing "0" into unset.
func (p payload) strPtr(key string) *string {
	s, ok := p.str(key)
	if !ok {
		return nil
	}
	return &s
}

// nested returns a nested object field, e.g. "engine" in an Open Vehicles
// response. Absent or non-object fields report false.
func (p payload) nested(key string) (payload, bool) {
	v, ok := p[key]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, false
	}
	return payload(m), true
}

// isNumeric reports whether the raw field value is a JSON number.
func (p payload) isNumeric(key string) bool {
	_, ok := p[key].(float64)
	return ok
}

// renderValue renders a decoded JSON scalar as a string. Objects and arrays
// are re-encoded so nothing is silently dropped from the additional-info bag.
func renderValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
