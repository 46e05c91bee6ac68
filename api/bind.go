package api

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/seenimoa/finflux/internal/provider"
)

// bindQuery copies query parameters onto the fields of the option struct
// opts, matched by json tag. List fields take comma separated or repeated
// values. Unknown parameters are ignored.
func bindQuery(q url.Values, opts any) error {
	v := reflect.ValueOf(opts).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := strings.SplitN(t.Field(i).Tag.Get("json"), ",", 2)[0]
		raw, ok := q[name]
		if name == "" || name == "-" || !ok {
			continue
		}
		if err := setField(v.Field(i), name, raw); err != nil {
			return err
		}
	}
	return nil
}

func setField(f reflect.Value, name string, raw []string) error {
	last := raw[len(raw)-1]
	switch f.Kind() {
	case reflect.String:
		f.SetString(last)
	case reflect.Bool:
		b, err := strconv.ParseBool(last)
		if err != nil {
			return &provider.InvalidParameterError{Param: name, Value: last, Valid: []string{"true", "false"}}
		}
		f.SetBool(b)
	case reflect.Slice:
		var items []string
		for _, r := range raw {
			for _, s := range strings.Split(r, ",") {
				if s = strings.TrimSpace(s); s != "" {
					items = append(items, s)
				}
			}
		}
		out := reflect.MakeSlice(f.Type(), len(items), len(items))
		for i, s := range items {
			if err := setScalar(out.Index(i), name, s); err != nil {
				return err
			}
		}
		f.Set(out)
	default:
		return setScalar(f, name, last)
	}
	return nil
}

func setScalar(f reflect.Value, name, s string) error {
	switch f.Kind() {
	case reflect.String:
		f.SetString(s)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return &provider.InvalidParameterError{Param: name, Value: s, Valid: []string{"an integer"}}
		}
		f.SetInt(n)
	case reflect.Float64:
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return &provider.InvalidParameterError{Param: name, Value: s, Valid: []string{"a number"}}
		}
		f.SetFloat(x)
	default:
		return fmt.Errorf("bind %s: unsupported kind %s", name, f.Kind())
	}
	return nil
}
