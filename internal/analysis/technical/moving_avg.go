// Package technical computes price overlays (moving averages and
// Bollinger bands) over date-indexed series. Missing observations stay NA
// and make every window that contains them NA.
package technical

import (
	"fmt"

	"github.com/seenimoa/finflux/pkg/series"
)

// SMA returns the simple moving average of s over window observations,
// named "SMA {window}". The first window-1 entries are NA.
func SMA(s series.Series, window int) series.Series {
	return series.TrailingMean(s, window).Rename(fmt.Sprintf("SMA %d", window))
}

// MultiSMA computes one SMA per window, in the order given.
func MultiSMA(s series.Series, windows []int) []series.Series {
	out := make([]series.Series, len(windows))
	for i, w := range windows {
		out[i] = SMA(s, w)
	}
	return out
}

// TailMean averages the valid values among the last n observations.
// Short histories average what is there; an all-NA tail is NA.
func TailMean(s series.Series, n int) series.Num {
	var sum float64
	var count int
	for _, p := range s.Tail(n).Points {
		if p.Value.Valid {
			sum += p.Value.V
			count++
		}
	}
	if count == 0 {
		return series.NA
	}
	return series.Val(sum / float64(count))
}

// TailMax returns the highest valid value among the last n observations.
func TailMax(s series.Series, n int) series.Num {
	return tailExtreme(s, n, func(a, b float64) bool { return a > b })
}

// TailMin returns the lowest valid value among the last n observations.
func TailMin(s series.Series, n int) series.Num {
	return tailExtreme(s, n, func(a, b float64) bool { return a < b })
}

func tailExtreme(s series.Series, n int, better func(a, b float64) bool) series.Num {
	out := series.NA
	for _, p := range s.Tail(n).Points {
		if p.Value.Valid && (!out.Valid || better(p.Value.V, out.V)) {
			out = p.Value
		}
	}
	return out
}
