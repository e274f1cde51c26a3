package tabular

import (
	"fmt"
	"slices"
	"strings"
)

// DateOrder is the order of day, month and year in displayed and parsed dates.
type DateOrder string

const (
	DMY DateOrder = "DMY"
	MDY DateOrder = "MDY"
	YMD DateOrder = "YMD"
)

// BooleanTokens lists the cell texts read as true or false and the words
// written for booleans on export.
type BooleanTokens struct {
	True  []string `yaml:"true"`
	False []string `yaml:"false"`
	Yes   string   `yaml:"yes"`
	No    string   `yaml:"no"`
}

// Locale carries every formatting choice of the import/export service.
type Locale struct {
	DecimalSeparator string        `yaml:"decimalSeparator"`
	DateOrder        DateOrder     `yaml:"dateOrder"`
	BooleanTokens    BooleanTokens `yaml:"booleanTokens"`
}

// DefaultLocale is the French academic locale: dot decimals, day/month/year
// dates, oui/non booleans.
func DefaultLocale() Locale {
	return Locale{
		DecimalSeparator: ".",
		DateOrder:        DMY,
		BooleanTokens: BooleanTokens{
			True:  []string{"oui", "true", "1"},
			False: []string{"non", "false", "0"},
			Yes:   "Oui",
			No:    "Non",
		},
	}
}

// Validate reports a locale that cannot be used.
func (l Locale) Validate() error {
	var errs []string
	if l.DecimalSeparator != "." && l.DecimalSeparator != "," {
		errs = append(errs, fmt.Sprintf("decimal separator must be \".\" or \",\", got %q", l.DecimalSeparator))
	}
	switch l.DateOrder {
	case DMY, MDY, YMD:
	default:
		errs = append(errs, fmt.Sprintf("date order must be DMY, MDY or YMD, got %q", l.DateOrder))
	}
	if len(l.BooleanTokens.True) == 0 || len(l.BooleanTokens.False) == 0 {
		errs = append(errs, "boolean tokens must list at least one true and one false value")
	}
	for _, t := range l.BooleanTokens.True {
		if slices.ContainsFunc(l.BooleanTokens.False, func(f string) bool { return strings.EqualFold(f, t) }) {
			errs = append(errs, fmt.Sprintf("boolean token %q is both true and false", t))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid locale: %s", strings.Join(errs, "; "))
	}
	return nil
}

// DateLayout is the time layout used to display dates.
func (l Locale) DateLayout() string {
	switch l.DateOrder {
	case MDY:
		return "01/02/2006"
	case YMD:
		return "2006-01-02"
	default:
		return "02/01/2006"
	}
}

// ParseBool matches s against the boolean tokens, ignoring case.
func (l Locale) ParseBool(s string) (bool, bool) {
	s = strings.TrimSpace(s)
	for _, t := range l.BooleanTokens.True {
		if strings.EqualFold(s, t) {
			return true, true
		}
	}
	for _, t := range l.BooleanTokens.False {
		if strings.EqualFold(s, t) {
			return false, true
		}
	}
	return false, false
}

func (l Locale) yes() string {
	if l.BooleanTokens.Yes == "" {
		return "Oui"
	}
	return l.BooleanTokens.Yes
}

func (l Locale) no() string {
	if l.BooleanTokens.No == "" {
		return "Non"
	}
	return l.BooleanTokens.No
}
