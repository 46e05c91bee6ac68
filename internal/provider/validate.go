package provider

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

// Choices maps a parameter name to its allow-list.
type Choices map[string][]string

// Check rejects the first supplied value that is not in its allow-list.
// Parameters are checked in name order so the reported error is stable.
// Values for parameters without an allow-list are ignored.
func (c Choices) Check(values map[string]string) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		valid, ok := c[name]
		if !ok {
			continue
		}
		if err := OneOf(name, values[name], valid...); err != nil {
			return err
		}
	}
	return nil
}

// OneOf checks a single value against valid.
func OneOf(param, value string, valid ...string) error {
	for _, v := range valid {
		if v == value {
			return nil
		}
	}
	return &InvalidParameterError{Param: param, Value: value, Valid: valid}
}

// Keys returns the keys of a lookup table in sorted order, for use as an
// allow-list.
func Keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ParseDate parses a YYYY-MM-DD option value. An empty value is the zero
// time.
func ParseDate(param, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, &InvalidParameterError{Param: param, Value: value, Valid: []string{"a YYYY-MM-DD date"}}
	}
	return t, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Prepare fills zero fields of the option struct opts from their `default`
// tags and then enforces its `validate` rules. A rule violation becomes an
// InvalidParameterError naming the option.
func Prepare(opts any) error {
	if err := defaults.Set(opts); err != nil {
		return fmt.Errorf("apply defaults: %w", err)
	}
	return ValidateStruct(opts)
}

// ValidateStruct enforces the `validate` tags of v.
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	valid := []string{ruleText(fe)}
	if fe.Tag() == "oneof" {
		valid = strings.Fields(fe.Param())
	}
	return &InvalidParameterError{
		Param: fe.Field(),
		Value: fmt.Sprint(fe.Value()),
		Valid: valid,
	}
}

func ruleText(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "a non-empty value"
	case "min", "gte":
		return "at least " + fe.Param()
	case "max", "lte":
		return "at most " + fe.Param()
	case "dive":
		return "valid elements"
	default:
		return fe.Tag() + " " + fe.Param()
	}
}
