package fundamental

import (
	"time"

	"github.com/seenimoa/finflux/pkg/series"
)

// Recent-figure bases.
const (
	BasisMRQ = "mrq"
	BasisTTM = "ttm"
	BasisNow = "now"
)

// Extra upstream items the statistics read besides the "all" statement.
var StatsExtraKeys = []string{"BasicAverageShares", "BasicEPS"}

// Figure is one recent value and the basis it is computed on.
type Figure struct {
	Basis string     `json:"basis"`
	Value series.Num `json:"value"`
}

// Metric is one statistic: recent figures plus one value per fiscal year,
// most recent year first.
type Metric struct {
	Name   string       `json:"name"`
	Recent []Figure     `json:"recent"`
	Years  []series.Num `json:"years"`
}

// Section groups related metrics.
type Section struct {
	Name    string   `json:"name"`
	Metrics []Metric `json:"metrics"`
}

// Stats is the statistics report of one company. Amounts are in millions
// of the statement currency.
type Stats struct {
	Symbol   string    `json:"symbol"`
	Name     string    `json:"name"`
	Exchange string    `json:"exchange"`
	Currency string    `json:"currency"`
	Timezone string    `json:"timezone"`
	Years    []string  `json:"years"`
	Sections []Section `json:"sections"`
}

// StatsInput carries everything the statistics are derived from.
// Annual and Quarterly are "all" statements in millions, most recent
// column first. The slices run parallel to the statement columns.
type StatsInput struct {
	Annual            *series.Frame
	Quarterly         *series.Frame
	AnnualShares      []series.Num // basic average shares, raw count
	AnnualEPS         []series.Num
	QuarterlyEPS      []series.Num
	FiscalYearPrices  []series.Num // close on each fiscal year end
	Price             series.Num   // latest traded price
	SharesOutstanding series.Num
}

// table reads statement rows by label; absent rows and columns are NA.
type table struct {
	f    *series.Frame
	cols int
}

func newTable(f *series.Frame) table {
	if f == nil {
		return table{f: series.NewFrame("")}
	}
	return table{f: f, cols: len(f.Columns)}
}

func (t table) row(label string) []series.Num {
	out := make([]series.Num, t.cols)
	if r, ok := t.f.Row(label); ok {
		copy(out, r)
	}
	return out
}

// at returns the value of label in column i.
func (t table) at(label string, i int) series.Num {
	if i < 0 || i >= t.cols {
		return series.NA
	}
	return t.row(label)[i]
}

// ttm sums the four most recent quarters.
func (t table) ttm(label string) series.Num {
	if t.cols < 4 {
		return series.NA
	}
	return series.Sum(t.row(label)[:4]...)
}

func at(vs []series.Num, i int) series.Num {
	if i < 0 || i >= len(vs) {
		return series.NA
	}
	return vs[i]
}

// perYear evaluates fn for each annual column.
func perYear(n int, fn func(i int) series.Num) []series.Num {
	out := make([]series.Num, n)
	for i := range out {
		out[i] = fn(i)
	}
	return out
}

func metric(name string, years []series.Num, recent ...Figure) Metric {
	return Metric{Name: name, Recent: recent, Years: years}
}

func fig(basis string, v series.Num) Figure { return Figure{Basis: basis, Value: v} }

func minus(a, b series.Num) series.Num { return a.Sub(b) }

// avg2 is the mean of two balances.
func avg2(a, b series.Num) series.Num { return series.Mean(a, b) }

func millions(n series.Num) series.Num { return series.Div(n, series.Val(1e6)) }

func days(turnover series.Num) series.Num { return series.Div(series.Val(365), turnover) }

// ComputeStats derives profitability, liquidity, leverage, efficiency,
// cash flow, growth and valuation statistics.
func ComputeStats(in StatsInput) *Stats {
	a, q := newTable(in.Annual), newTable(in.Quarterly)
	n := a.cols
	one := series.Val(1)

	// prev is the column of the preceding fiscal year.
	prev := func(label string, i int) series.Num { return a.at(label, i+1) }

	// --- fiscal year figures ---
	grossMargin := perYear(n, func(i int) series.Num { return series.Div(a.at("Gross Profit", i), a.at("Total Revenue", i)) })
	ebitMargin := perYear(n, func(i int) series.Num { return series.Div(a.at("EBIT", i), a.at("Total Revenue", i)) })
	netMargin := perYear(n, func(i int) series.Num { return series.Div(a.at("Net Income", i), a.at("Total Revenue", i)) })
	roa := perYear(n, func(i int) series.Num { return series.Div(a.at("Net Income", i), a.at("Total Assets", i)) })
	roe := perYear(n, func(i int) series.Num { return series.Div(a.at("Net Income", i), a.at("Total Equity", i)) })

	currentRatio := perYear(n, func(i int) series.Num {
		return series.Div(a.at("Total Current Assets", i), a.at("Total Current Liabilities", i))
	})
	quickRatio := perYear(n, func(i int) series.Num {
		return series.Div(minus(a.at("Total Current Assets", i), a.at("Inventory", i)), a.at("Total Current Liabilities", i))
	})
	cashRatio := perYear(n, func(i int) series.Num {
		return series.Div(a.at("Cash And Cash Equivalents", i), a.at("Total Current Liabilities", i))
	})

	debtToEquity := perYear(n, func(i int) series.Num { return series.Div(a.at("Total Liabilities", i), a.at("Total Equity", i)) })
	debtToAssets := perYear(n, func(i int) series.Num { return series.Div(a.at("Total Liabilities", i), a.at("Total Assets", i)) })
	interestCoverage := perYear(n, func(i int) series.Num { return series.Div(a.at("EBIT", i), a.at("Interest Expense", i)) })

	invTurn := perYear(n, func(i int) series.Num {
		return series.Div(a.at("Cost Of Revenue", i), avg2(a.at("Inventory", i), prev("Inventory", i)))
	})
	recTurn := perYear(n, func(i int) series.Num {
		return series.Div(a.at("Total Revenue", i), avg2(a.at("Accounts Receivable", i), prev("Accounts Receivable", i)))
	})
	payTurn := perYear(n, func(i int) series.Num {
		return series.Div(a.at("Cost Of Revenue", i), avg2(a.at("Accounts Payable", i), prev("Accounts Payable", i)))
	})
	dio := perYear(n, func(i int) series.Num { return days(invTurn[i]) })
	dso := perYear(n, func(i int) series.Num { return days(recTurn[i]) })
	dpo := perYear(n, func(i int) series.Num { return days(payTurn[i]) })
	ccc := perYear(n, func(i int) series.Num { return dso[i].Add(dio[i]).Sub(dpo[i]) })

	fcff := perYear(n, func(i int) series.Num {
		taxRate := series.Div(a.at("Tax Provision", i), a.at("Pretax Income", i))
		return a.at("EBIT", i).Mul(one.Sub(taxRate)).
			Add(a.at("Depreciation and Amortization", i)).
			Add(a.at("Change In Working Capital", i)).
			Add(a.at("Capital Expenditure", i))
	})
	fcffNonCash := perYear(n, func(i int) series.Num { return fcff[i].Add(a.at("Other Operating Cash Flow", i)) })
	fcfe := perYear(n, func(i int) series.Num {
		return a.at("Net Income", i).
			Add(a.at("Depreciation and Amortization", i)).
			Add(a.at("Change In Working Capital", i)).
			Add(a.at("Capital Expenditure", i)).
			Add(a.at("Net Issuance/Payments Of Debt", i))
	})
	fcfeNonCash := perYear(n, func(i int) series.Num {
		return a.at("Operating Cash Flow", i).
			Add(a.at("Capital Expenditure", i)).
			Add(a.at("Net Issuance/Payments Of Debt", i))
	})

	growth := func(label string) []series.Num {
		return perYear(n, func(i int) series.Num { return minus(series.Div(a.at(label, i), prev(label, i)), one) })
	}
	revenueGrowth, ebitGrowth := growth("Total Revenue"), growth("EBIT")

	marketCap := perYear(n, func(i int) series.Num {
		return millions(at(in.FiscalYearPrices, i).Mul(at(in.AnnualShares, i)))
	})
	pe := perYear(n, func(i int) series.Num { return series.Ratio(marketCap[i], a.at("Net Income", i)) })
	ps := perYear(n, func(i int) series.Num { return series.Ratio(marketCap[i], a.at("Total Revenue", i)) })
	pb := perYear(n, func(i int) series.Num { return series.Div(marketCap[i], a.at("Total Equity", i)) })
	eps := perYear(n, func(i int) series.Num { return at(in.AnnualEPS, i) })
	divYield := perYear(n, func(i int) series.Num { return series.Div(a.at("Cash Dividends Paid", i).Neg(), marketCap[i]) })
	payout := perYear(n, func(i int) series.Num { return series.Div(a.at("Cash Dividends Paid", i).Neg(), a.at("Net Income", i)) })
	ev := perYear(n, func(i int) series.Num {
		return marketCap[i].Add(a.at("Total Liabilities", i)).Sub(a.at("Cash And Cash Equivalents", i))
	})
	evEBITDA := perYear(n, func(i int) series.Num { return series.Div(ev[i], a.at("EBITDA", i)) })
	evEBIT := perYear(n, func(i int) series.Num { return series.Div(ev[i], a.at("EBIT", i)) })

	// --- recent figures ---
	mrq := func(label string) series.Num { return q.at(label, 0) }
	nowCap := millions(in.SharesOutstanding.Mul(in.Price))
	mrqEV := nowCap.Add(mrq("Total Liabilities")).Sub(mrq("Cash And Cash Equivalents"))

	ttmEPS := series.NA
	if len(in.QuarterlyEPS) >= 4 {
		ttmEPS = series.Sum(in.QuarterlyEPS[:4]...)
	}
	ttmTurnover := func(num, balance string) series.Num {
		return series.Div(q.ttm(num), avg2(q.at(balance, 0), q.at(balance, 3)))
	}
	ttmInv := ttmTurnover("Cost Of Revenue", "Inventory")
	ttmRec := ttmTurnover("Total Revenue", "Accounts Receivable")
	ttmPay := ttmTurnover("Cost Of Revenue", "Accounts Payable")

	ttmTax := series.Div(q.ttm("Tax Provision"), q.ttm("Pretax Income"))
	ttmFCFF := q.ttm("EBIT").Mul(one.Sub(ttmTax)).
		Add(q.ttm("Depreciation and Amortization")).
		Add(q.ttm("Change In Working Capital")).
		Add(q.ttm("Capital Expenditure"))
	ttmFCFE := q.ttm("Net Income").
		Add(q.ttm("Depreciation and Amortization")).
		Add(q.ttm("Change In Working Capital")).
		Add(q.ttm("Capital Expenditure")).
		Add(q.ttm("Net Issuance/Payments Of Debt"))
	ttmFCFENonCash := q.ttm("Operating Cash Flow").
		Add(q.ttm("Capital Expenditure")).
		Add(q.ttm("Net Issuance/Payments Of Debt"))

	qGrowth := func(label string) series.Num {
		return minus(series.Div(q.at(label, 0), q.at(label, 1)), one)
	}

	return &Stats{
		Years: append([]string(nil), a.f.Columns...),
		Sections: []Section{
			{Name: "valuation", Metrics: []Metric{
				metric("pe", pe, fig(BasisTTM, series.Ratio(nowCap, q.ttm("Net Income")))),
				metric("ps", ps, fig(BasisTTM, series.Ratio(nowCap, q.ttm("Total Revenue")))),
				metric("pb", pb, fig(BasisMRQ, series.Div(nowCap, mrq("Total Equity")))),
				metric("eps", eps, fig(BasisMRQ, at(in.QuarterlyEPS, 0)), fig(BasisTTM, ttmEPS)),
				metric("dividend yield", divYield, fig(BasisTTM, series.Div(q.ttm("Cash Dividends Paid").Neg(), nowCap))),
				metric("dividend payout ratio", payout,
					fig(BasisMRQ, series.Div(mrq("Cash Dividends Paid").Neg(), mrq("Net Income"))),
					fig(BasisTTM, series.Div(q.ttm("Cash Dividends Paid").Neg(), q.ttm("Net Income")))),
				metric("enterprise value", ev, fig(BasisMRQ, mrqEV)),
				metric("market cap", marketCap, fig(BasisNow, nowCap)),
				metric("ev/ebitda", evEBITDA, fig(BasisTTM, series.Div(mrqEV, q.ttm("EBITDA")))),
				metric("ev/ebit", evEBIT, fig(BasisTTM, series.Div(mrqEV, q.ttm("EBIT")))),
			}},
			{Name: "profitability", Metrics: []Metric{
				metric("gross margin", grossMargin, fig(BasisMRQ, series.Div(mrq("Gross Profit"), mrq("Total Revenue")))),
				metric("ebit margin", ebitMargin, fig(BasisMRQ, series.Div(mrq("EBIT"), mrq("Total Revenue")))),
				metric("net margin", netMargin, fig(BasisMRQ, series.Div(mrq("Net Income"), mrq("Total Revenue")))),
				metric("roa", roa, fig(BasisTTM, series.Div(q.ttm("Net Income"), mrq("Total Assets")))),
				metric("roe", roe, fig(BasisTTM, series.Div(q.ttm("Net Income"), mrq("Total Equity")))),
			}},
			{Name: "growth", Metrics: []Metric{
				metric("revenue growth rate", revenueGrowth, fig(BasisMRQ, qGrowth("Total Revenue"))),
				metric("ebit growth rate", ebitGrowth, fig(BasisMRQ, qGrowth("EBIT"))),
			}},
			{Name: "liquidity", Metrics: []Metric{
				metric("current ratio", currentRatio, fig(BasisMRQ, series.Div(mrq("Total Current Assets"), mrq("Total Current Liabilities")))),
				metric("quick ratio", quickRatio, fig(BasisMRQ, series.Div(minus(mrq("Total Current Assets"), mrq("Inventory")), mrq("Total Current Liabilities")))),
				metric("cash ratio", cashRatio, fig(BasisMRQ, series.Div(mrq("Cash And Cash Equivalents"), mrq("Total Current Liabilities")))),
			}},
			{Name: "leverage", Metrics: []Metric{
				metric("debt to equity", debtToEquity, fig(BasisMRQ, series.Div(mrq("Total Liabilities"), mrq("Total Equity")))),
				metric("debt to assets", debtToAssets, fig(BasisMRQ, series.Div(mrq("Total Liabilities"), mrq("Total Assets")))),
				metric("interest coverage ratio", interestCoverage, fig(BasisMRQ, series.Div(mrq("EBIT"), mrq("Interest Expense")))),
			}},
			{Name: "efficiency", Metrics: []Metric{
				metric("inventory turnover", invTurn, fig(BasisTTM, ttmInv)),
				metric("receivables turnover", recTurn, fig(BasisTTM, ttmRec)),
				metric("payables turnover", payTurn, fig(BasisTTM, ttmPay)),
				metric("dio", dio, fig(BasisTTM, days(ttmInv))),
				metric("dso", dso, fig(BasisTTM, days(ttmRec))),
				metric("dpo", dpo, fig(BasisTTM, days(ttmPay))),
				metric("cash conversion cycle", ccc, fig(BasisTTM, days(ttmRec).Add(days(ttmInv)).Sub(days(ttmPay)))),
			}},
			{Name: "cash flow", Metrics: []Metric{
				metric("fcff_DA.WC", fcff, fig(BasisTTM, ttmFCFF)),
				metric("fcff_DA.WC.otherNonCash", fcffNonCash, fig(BasisTTM, ttmFCFF.Add(q.ttm("Other Operating Cash Flow")))),
				metric("fcfe_DA.WC", fcfe, fig(BasisTTM, ttmFCFE)),
				metric("fcfe_DA.WC.otherNonCash", fcfeNonCash, fig(BasisTTM, ttmFCFENonCash)),
			}},
		},
	}
}

// Metric returns the named metric of a section.
func (s *Stats) Metric(section, name string) (Metric, bool) {
	for _, sec := range s.Sections {
		if sec.Name != section {
			continue
		}
		for _, m := range sec.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return Metric{}, false
}

// RecentValue returns the metric's figure on the given basis.
func (m Metric) RecentValue(basis string) series.Num {
	for _, f := range m.Recent {
		if f.Basis == basis {
			return f.Value
		}
	}
	return series.NA
}

// Frame lays the report out with one row per metric ("section: name"),
// the recent figures in "mrq", "ttm" and "now" columns, then the years.
func (s *Stats) Frame() *series.Frame {
	cols := append([]string{BasisMRQ, BasisTTM, BasisNow}, s.Years...)
	f := series.NewFrame(s.Symbol+" statistics", cols...)
	for _, sec := range s.Sections {
		for _, m := range sec.Metrics {
			row := []series.Num{m.RecentValue(BasisMRQ), m.RecentValue(BasisTTM), m.RecentValue(BasisNow)}
			f.AddRow(sec.Name+": "+m.Name, append(row, m.Years...)...)
		}
	}
	return f
}

// PriceNear returns the close on date, or on the nearest earlier session
// no more than maxBack days before it.
func PriceNear(closes series.Series, date time.Time, maxBack int) series.Num {
	p, ok := closes.AtOrBefore(date)
	if !ok || date.Sub(p.Date) > time.Duration(maxBack)*24*time.Hour {
		return series.NA
	}
	return p.Value
}
