// Package record defines the generic row type shared by the grid and the
// tabular import/export service, together with the lookup, stringification
// and ordering rules both of them rely on.
package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Record is one row's worth of data: field name to primitive, date or boolean value.
// Nested records are allowed and addressed with dotted keys ("classe.nom").
type Record map[string]any

// DateLayout is the layout used when a date must be turned into plain text
// for searching or filtering.
const DateLayout = "2006-01-02"

// Get returns the value stored under key. Dotted keys walk nested records.
// A direct match on the full key wins over path traversal so that field names
// containing dots keep working.
func Get(rec Record, key string) (any, bool) {
	if rec == nil {
		return nil, false
	}
	if v, ok := rec[key]; ok {
		return v, true
	}
	if !strings.Contains(key, ".") {
		return nil, false
	}

	var cur any = rec
	for _, part := range strings.Split(key, ".") {
		switch m := cur.(type) {
		case Record:
			v, ok := m[part]
			if !ok {
				return nil, false
			}
			cur = v
		case map[string]any:
			v, ok := m[part]
			if !ok {
				return nil, false
			}
			cur = v
		default:
			return nil, false
		}
	}
	return cur, true
}

// Value is Get without the presence flag.
func Value(rec Record, key string) any {
	v, _ := Get(rec, key)
	return v
}

// Clone returns a shallow copy of rec.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Text returns the plain string form of a value as used for search and filters.
// Missing values become the empty string.
func Text(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.Format(DateLayout)
	case *time.Time:
		if val == nil {
			return ""
		}
		return Text(*val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Float reports the numeric value of v if v holds any Go number type.
func Float(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// ToBool coerces a value for boolean comparisons.
// Strings accept true/false, yes/no, oui/non and 1/0 in any case.
func ToBool(v any) (bool, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "1", "yes", "oui", "y", "o":
			return true, true
		case "false", "0", "no", "non", "n":
			return false, true
		}
		return false, false
	case nil:
		return false, false
	}
	if f, ok := Float(v); ok {
		return f != 0, true
	}
	return false, false
}

// Compare orders two values using the natural ordering of their runtime type.
// Numbers compare numerically, times chronologically, booleans false before
// true and strings lexicographically. nil sorts before any value; values of
// different kinds fall back to comparing their Text forms.
func Compare(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	if fa, ok := Float(a); ok {
		if fb, ok := Float(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}

	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}

	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			}
			return 1
		}
	}

	return strings.Compare(Text(a), Text(b))
}
