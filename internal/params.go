package internal

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
)

// Params are the explicit parameters of one API call. Values are scalars or
// pointers to scalars; nil values are dropped before anything is encoded, so
// optional arguments can be passed as typed nil pointers.
type Params map[string]any

// Values converts the params to url.Values, dropping nil entries.
// The same values feed both the GET query string and the POST form body.
func (p Params) Values() url.Values {
	values := url.Values{}
	for key, raw := range p {
		if value, ok := FormatValue(raw); ok {
			values.Set(key, value)
		}
	}
	return values
}

// Encode returns the form-encoded representation of the non-nil params.
func (p Params) Encode() string {
	return p.Values().Encode()
}

// Keys returns the keys of the non-nil params in ascending byte order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for key, raw := range p {
		if _, ok := FormatValue(raw); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// FormatValue renders a scalar the way it is sent on the wire.
// It reports false for nil values and nil pointers.
func FormatValue(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case *string:
		if val == nil {
			return "", false
		}
		return *val, true
	case int:
		return strconv.Itoa(val), true
	case *int:
		if val == nil {
			return "", false
		}
		return strconv.Itoa(*val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case int32:
		return strconv.FormatInt(int64(val), 10), true
	case uint:
		return strconv.FormatUint(uint64(val), 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case *float64:
		if val == nil {
			return "", false
		}
		return strconv.FormatFloat(*val, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case bool:
		// Booleans are sent as 1 and 0.
		if val {
			return "1", true
		}
		return "0", true
	case fmt.Stringer:
		return val.String(), true
	default:
		return fmt.Sprint(val), true
	}
}
