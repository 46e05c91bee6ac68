package technical

import (
	"fmt"

	"github.com/seenimoa/finflux/pkg/series"
)

// Bands is a Bollinger envelope around a moving average.
type Bands struct {
	Middle series.Series `json:"middle"`
	Upper  series.Series `json:"upper"`
	Lower  series.Series `json:"lower"`
}

// BollingerBands returns SMA(window) plus and minus k sample standard
// deviations of the same window.
func BollingerBands(s series.Series, window int, k float64) Bands {
	mid := SMA(s, window)
	sd := series.TrailingStd(s, window)
	upper := series.Combine(fmt.Sprintf("bollinger_upper %d", window), mid, sd, func(m, d series.Num) series.Num {
		return m.Add(d.MulF(k))
	})
	lower := series.Combine(fmt.Sprintf("bollinger_lower %d", window), mid, sd, func(m, d series.Num) series.Num {
		return m.Sub(d.MulF(k))
	})
	return Bands{Middle: mid, Upper: upper, Lower: lower}
}

// Tail trims every line of the envelope to its last n observations.
func (b Bands) Tail(n int) Bands {
	return Bands{Middle: b.Middle.Tail(n), Upper: b.Upper.Tail(n), Lower: b.Lower.Tail(n)}
}
