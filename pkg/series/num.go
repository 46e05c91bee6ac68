// Package series implements the period-windowed financial series used by
// every asset class: a date-indexed sequence of numeric observations with an
// explicit missing-value sentinel, the transforms applied to it (rebasing,
// rate of change, trailing aggregation) and the symbolic period windows.
package series

import (
	"encoding/json"
	"math"
	"strconv"
)

// Num is a numeric observation that may be missing.
// The zero value is NA.
type Num struct {
	V     float64
	Valid bool
}

// NA is the missing-observation sentinel.
var NA = Num{}

// Val wraps a float64. NaN becomes NA; infinities stay valid.
func Val(v float64) Num {
	if math.IsNaN(v) {
		return NA
	}
	return Num{V: v, Valid: true}
}

// Parse converts an upstream string. Empty strings, "." (FRED), "-" and
// "None" map to NA.
func Parse(s string) Num {
	switch s {
	case "", ".", "-", "None", "null", "NaN", "n/a", "N/A":
		return NA
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return NA
	}
	return Val(v)
}

// Ptr converts a nullable upstream float.
func Ptr(p *float64) Num {
	if p == nil {
		return NA
	}
	return Val(*p)
}

// Float returns the value, or NaN when missing.
func (n Num) Float() float64 {
	if !n.Valid {
		return math.NaN()
	}
	return n.V
}

// Finite reports whether n is present and neither +Inf nor -Inf.
func (n Num) Finite() bool {
	return n.Valid && !math.IsInf(n.V, 0)
}

// Or returns n, or def when n is missing.
func (n Num) Or(def float64) float64 {
	if !n.Valid {
		return def
	}
	return n.V
}

func (n Num) Add(o Num) Num {
	if !n.Valid || !o.Valid {
		return NA
	}
	return Val(n.V + o.V)
}

func (n Num) Sub(o Num) Num {
	if !n.Valid || !o.Valid {
		return NA
	}
	return Val(n.V - o.V)
}

func (n Num) Mul(o Num) Num {
	if !n.Valid || !o.Valid {
		return NA
	}
	return Val(n.V * o.V)
}

// MulF scales n by a constant.
func (n Num) MulF(f float64) Num {
	if !n.Valid {
		return NA
	}
	return Val(n.V * f)
}

func (n Num) Neg() Num {
	if !n.Valid {
		return NA
	}
	return Num{V: -n.V, Valid: true}
}

// Round rounds to the given number of decimal places.
func (n Num) Round(places int) Num {
	if !n.Finite() {
		return n
	}
	p := math.Pow(10, float64(places))
	return Num{V: math.Round(n.V*p) / p, Valid: true}
}

// Trunc drops the fractional part, rounding toward zero.
func (n Num) Trunc() Num {
	if !n.Finite() {
		return n
	}
	return Num{V: math.Trunc(n.V), Valid: true}
}

// Div divides a by b. A zero or missing denominator yields NA.
func Div(a, b Num) Num {
	if !a.Valid || !b.Valid || b.V == 0 {
		return NA
	}
	return Val(a.V / b.V)
}

// Ratio is Div for financial multiples where a zero denominator is a
// recognised outcome: a non-zero numerator over zero gives +Inf or -Inf.
// 0/0 is NA.
func Ratio(a, b Num) Num {
	if !a.Valid || !b.Valid {
		return NA
	}
	if b.V == 0 {
		switch {
		case a.V > 0:
			return Num{V: math.Inf(1), Valid: true}
		case a.V < 0:
			return Num{V: math.Inf(-1), Valid: true}
		default:
			return NA
		}
	}
	return Val(a.V / b.V)
}

// SubOr0 subtracts each term from base, counting missing terms as zero.
// A missing base yields NA.
func SubOr0(base Num, terms ...Num) Num {
	if !base.Valid {
		return NA
	}
	v := base.V
	for _, t := range terms {
		if t.Valid {
			v -= t.V
		}
	}
	return Val(v)
}

// Sum adds every value; any missing value makes the sum NA.
func Sum(ns ...Num) Num {
	var v float64
	for _, n := range ns {
		if !n.Valid {
			return NA
		}
		v += n.V
	}
	return Val(v)
}

// Mean averages every value; any missing value makes the mean NA.
func Mean(ns ...Num) Num {
	if len(ns) == 0 {
		return NA
	}
	s := Sum(ns...)
	if !s.Valid {
		return NA
	}
	return Val(s.V / float64(len(ns)))
}

// String formats n with two decimals. NA prints as "NaN".
func (n Num) String() string {
	if !n.Valid {
		return "NaN"
	}
	switch {
	case math.IsInf(n.V, 1):
		return "inf"
	case math.IsInf(n.V, -1):
		return "-inf"
	}
	return strconv.FormatFloat(n.V, 'f', 2, 64)
}

// MarshalJSON writes null for NA and "inf"/"-inf" for infinities.
func (n Num) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	switch {
	case math.IsInf(n.V, 1):
		return []byte(`"inf"`), nil
	case math.IsInf(n.V, -1):
		return []byte(`"-inf"`), nil
	}
	return []byte(strconv.FormatFloat(n.V, 'f', -1, 64)), nil
}

// UnmarshalJSON accepts numbers, null and numeric strings.
func (n *Num) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*n = NA
		return nil
	}
	if len(s) > 0 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		switch str {
		case "inf":
			*n = Num{V: math.Inf(1), Valid: true}
		case "-inf":
			*n = Num{V: math.Inf(-1), Valid: true}
		default:
			*n = Parse(str)
		}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*n = Val(v)
	return nil
}
