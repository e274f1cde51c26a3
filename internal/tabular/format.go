package tabular

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/acadflow/acadflow/internal/record"
)

// FormatValue renders one cell for export: nil is empty, dates follow the
// locale date order, booleans become the locale yes/no word, numbers use the
// locale decimal separator and everything else its plain string form.
func FormatValue(v any, loc Locale) string {
	switch val := v.(type) {
	case nil:
		return ""
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.Format(loc.DateLayout())
	case *time.Time:
		if val == nil {
			return ""
		}
		return FormatValue(*val, loc)
	case bool:
		if val {
			return loc.yes()
		}
		return loc.no()
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(val).Int(), 10)
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(val).Uint(), 10)
	}

	if f, ok := record.Float(v); ok {
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if loc.DecimalSeparator != "" && loc.DecimalSeparator != "." {
			s = strings.Replace(s, ".", loc.DecimalSeparator, 1)
		}
		return s
	}
	return record.Text(v)
}

var (
	slashDate = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)
	isoDate   = regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}$`)
	dashDate  = regexp.MustCompile(`^\d{1,2}-\d{1,2}-\d{4}$`)
)

// Coerce turns a raw cell into a typed value. The first rule that matches
// wins: boolean token, integer or decimal number, date, trimmed string.
// A blank cell is absent and reports false.
func Coerce(raw string, loc Locale) (any, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, false
	}

	if b, ok := loc.ParseBool(s); ok {
		return b, true
	}
	if f, ok := parseNumber(s, loc); ok {
		return f, true
	}
	if t, ok := parseDate(s, loc); ok {
		return t, true
	}
	return s, true
}

func parseNumber(s string, loc Locale) (float64, bool) {
	digits, sign := s, ""
	if strings.HasPrefix(digits, "-") || strings.HasPrefix(digits, "+") {
		sign, digits = digits[:1], digits[1:]
	}
	if digits == "" {
		return 0, false
	}

	intPart, frac, hasFrac := cutDecimal(digits, loc)
	if !allDigits(intPart) || (hasFrac && !allDigits(frac)) {
		return 0, false
	}

	norm := sign + intPart
	if hasFrac {
		norm += "." + frac
	}
	f, err := strconv.ParseFloat(norm, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func cutDecimal(s string, loc Locale) (string, string, bool) {
	if before, after, ok := strings.Cut(s, "."); ok {
		return before, after, true
	}
	if loc.DecimalSeparator == "," {
		if before, after, ok := strings.Cut(s, ","); ok {
			return before, after, true
		}
	}
	return s, "", false
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func parseDate(s string, loc Locale) (time.Time, bool) {
	var layout string
	switch {
	case slashDate.MatchString(s):
		if loc.DateOrder == MDY {
			layout = "1/2/2006"
		} else {
			layout = "2/1/2006"
		}
	case isoDate.MatchString(s):
		layout = "2006-1-2"
	case dashDate.MatchString(s):
		layout = "2-1-2006"
	default:
		return time.Time{}, false
	}

	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
