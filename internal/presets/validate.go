package presets

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/locales/fr"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/acadflow/acadflow/internal/record"
	"github.com/acadflow/acadflow/internal/tabular"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

// messages are the French problem texts. {0} is the column header and {1}
// the rule parameter.
var messages = map[string]string{
	"required": "{0} est obligatoire",
	"invalid":  "{0} est invalide",
	"text":     "{0} doit être un texte",
	"number":   "{0} doit être un nombre",
	"date":     "{0} doit être une date valide (JJ/MM/AAAA)",
	"boolean":  "{0} doit valoir Oui ou Non",
	"numeric":  "{0} doit être un nombre",
	"gt":       "{0} doit être supérieur à {1}",
	"gte":      "{0} doit être supérieur ou égal à {1}",
	"lt":       "{0} doit être inférieur à {1}",
	"lte":      "{0} doit être inférieur ou égal à {1}",
	"min":      "{0} doit contenir au moins {1} caractères",
	"max":      "{0} doit contenir au plus {1} caractères",
	"len":      "{0} doit contenir exactement {1} caractères",
	"email":    "{0} doit être une adresse e-mail valide",
	"oneof":    "{0} doit être l'une des valeurs suivantes : {1}",
	"alphanum": "{0} ne doit contenir que des lettres et des chiffres",
}

func init() {
	validate = validator.New()

	french := fr.New()
	uni := ut.New(french, french)
	translator, _ = uni.GetTranslator("fr")
	for key, text := range messages {
		_ = translator.Add(key, text, true)
	}
}

func message(key, header, param string) string {
	msg, err := translator.T(key, header, param)
	if err != nil {
		msg, _ = translator.T("invalid", header)
	}
	return msg
}

// checkRules rejects rule strings the validator does not understand.
// validator panics on unknown tags, so the probe runs under recover.
func checkRules(rules string) (err error) {
	if rules == "" {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid rules %q: %v", rules, r)
		}
	}()
	_ = validate.Var("", rules)
	return nil
}

// Validator returns the import validator of the preset: required fields must
// be present, present values must have the declared type and satisfy the rules.
func (p Preset) Validator() tabular.Validator {
	return func(rec record.Record) []string {
		var problems []string
		for _, f := range p.Columns {
			problems = append(problems, p.checkField(f, rec)...)
		}
		return problems
	}
}

func (p Preset) checkField(f Field, rec record.Record) []string {
	v, ok := rec[f.Field]
	if !ok || v == nil || v == "" {
		if f.Required {
			return []string{message("required", f.Header, "")}
		}
		return nil
	}

	if !hasType(v, f.Type) {
		key := string(f.Type)
		if key == "" {
			key = string(FieldText)
		}
		return []string{message(key, f.Header, "")}
	}
	if f.Rules == "" {
		return nil
	}

	var verrs validator.ValidationErrors
	err := validate.Var(v, f.Rules)
	if err == nil {
		return nil
	}
	if !errors.As(err, &verrs) {
		return []string{message("invalid", f.Header, "")}
	}

	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, message(fe.Tag(), f.Header, paramText(fe)))
	}
	return out
}

func paramText(fe validator.FieldError) string {
	if fe.Tag() == "oneof" {
		return strings.Join(strings.Fields(fe.Param()), ", ")
	}
	return fe.Param()
}

func hasType(v any, t FieldType) bool {
	switch t {
	case FieldNumber:
		_, ok := record.Float(v)
		return ok
	case FieldDate:
		_, ok := v.(time.Time)
		return ok
	case FieldBool:
		_, ok := v.(bool)
		return ok
	default:
		_, ok := v.(string)
		return ok
	}
}
