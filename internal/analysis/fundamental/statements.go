// Package fundamental lays out reported financial statements and derives
// the ratio tables built on them.
package fundamental

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
	"github.com/seenimoa/finflux/pkg/series"
)

// Statement kinds.
const (
	Income  = "income"
	Balance = "balance"
	Cash    = "cash"
	All     = "all"
)

// Statements lists the statement kinds in display order.
var Statements = []string{Income, Balance, Cash, All}

// Units maps a unit name to its divisor exponent.
var Units = map[string]int32{"raw": 0, "thousand": 3, "million": 6, "billion": 9}

// Columns kept per interval.
const (
	AnnualColumns    = 4
	QuarterlyColumns = 5
)

// LineItem is one row of a statement. Derived rows have no Key and are
// computed as Base minus Less, where a missing Base is NA and missing Less
// terms count as zero.
type LineItem struct {
	Label string
	Key   string
	Base  string
	Less  []string
}

func item(label, key string) LineItem { return LineItem{Label: label, Key: key} }

func other(label, base string, less ...string) LineItem {
	return LineItem{Label: label, Base: base, Less: less}
}

var incomeItems = []LineItem{
	item("Total Revenue", "TotalRevenue"),
	item("Cost Of Revenue", "CostOfRevenue"),
	item("Gross Profit", "GrossProfit"),
	item("Research And Development", "ResearchAndDevelopment"),
	other("Other Operating Expenses", "GrossProfit", "ResearchAndDevelopment", "EBITDA"),
	item("EBITDA", "EBITDA"),
	item("Depreciation and Amortization", "ReconciledDepreciation"),
	item("EBIT", "EBIT"),
	item("Interest Expense", "InterestExpense"),
	item("Interest Income", "InterestIncome"),
	item("Pretax Income", "PretaxIncome"),
	item("Tax Provision", "TaxProvision"),
	item("Net Income", "NetIncome"),
}

var balanceItems = []LineItem{
	item("Total Assets", "TotalAssets"),
	item("Total Current Assets", "CurrentAssets"),
	item("Cash And Cash Equivalents", "CashAndCashEquivalents"),
	item("Accounts Receivable", "AccountsReceivable"),
	item("Inventory", "Inventory"),
	other("Other Current Assets", "CurrentAssets", "CashAndCashEquivalents", "AccountsReceivable", "Inventory"),
	item("Total Non Current Assets", "TotalNonCurrentAssets"),
	item("Net PPE", "NetPPE"),
	item("Goodwill And Other Intangible Assets", "GoodwillAndOtherIntangibleAssets"),
	other("Other Non Current Assets", "TotalNonCurrentAssets", "NetPPE", "GoodwillAndOtherIntangibleAssets"),
	item("Total Liabilities", "TotalLiabilitiesNetMinorityInterest"),
	item("Total Current Liabilities", "CurrentLiabilities"),
	item("Accounts Payable", "AccountsPayable"),
	item("Short Term Debt And Capital Lease Obligation", "CurrentDebtAndCapitalLeaseObligation"),
	other("Other Current Liabilities", "CurrentLiabilities", "AccountsPayable", "CurrentDebtAndCapitalLeaseObligation"),
	item("Total Non Current Liabilities", "TotalNonCurrentLiabilitiesNetMinorityInterest"),
	item("Long Term Debt And Capital Lease Obligation", "LongTermDebtAndCapitalLeaseObligation"),
	other("Other Non Current Liabilities", "TotalNonCurrentLiabilitiesNetMinorityInterest", "LongTermDebtAndCapitalLeaseObligation"),
	item("Total Equity", "TotalEquityGrossMinorityInterest"),
	item("Retained Earnings", "RetainedEarnings"),
	other("Other Equity", "TotalEquityGrossMinorityInterest", "RetainedEarnings"),
}

var cashItems = []LineItem{
	item("Operating Cash Flow", "OperatingCashFlow"),
	item("Net Income", "NetIncomeFromContinuingOperations"),
	item("Depreciation And Amortization", "DepreciationAmortizationDepletion"),
	item("Change In Working Capital", "ChangeInWorkingCapital"),
	other("Other Operating Cash Flow", "OperatingCashFlow", "NetIncomeFromContinuingOperations", "DepreciationAmortizationDepletion", "ChangeInWorkingCapital"),
	item("Investing Cash Flow", "InvestingCashFlow"),
	item("Capital Expenditure", "CapitalExpenditure"),
	other("Other Investing Cash Flow", "InvestingCashFlow", "CapitalExpenditure"),
	item("Financing Cash Flow", "FinancingCashFlow"),
	item("Net Issuance/Payments Of Debt", "NetIssuancePaymentsOfDebt"),
	item("Net Common Stock Issuance", "NetCommonStockIssuance"),
	item("Cash Dividends Paid", "CashDividendsPaid"),
	other("Other Financing Cash Flow", "FinancingCashFlow", "NetIssuancePaymentsOfDebt", "NetCommonStockIssuance", "CashDividendsPaid"),
	item("Beginning Cash Position", "BeginningCashPosition"),
	item("Net Change in Cash", "ChangesInCash"),
	other("Other Changes", "EndCashPosition", "BeginningCashPosition", "ChangesInCash"),
	item("End Cash Position", "EndCashPosition"),
}

// Cash flow rows left out of "all"; the income statement already has them.
var notInAll = map[string]bool{
	"Net Income":                    true,
	"Depreciation And Amortization": true,
}

// Items returns the rows of a statement kind in display order.
func Items(kind string) ([]LineItem, error) {
	switch kind {
	case Income:
		return incomeItems, nil
	case Balance:
		return balanceItems, nil
	case Cash:
		return cashItems, nil
	case All:
		out := append(append([]LineItem{}, incomeItems...), balanceItems...)
		for _, it := range cashItems {
			if !notInAll[it.Label] {
				out = append(out, it)
			}
		}
		return out, nil
	}
	return nil, provider.OneOf("statement", kind, Statements...)
}

// UpstreamKeys returns every reported item needed to lay out kind, plus
// extra keys, without duplicates.
func UpstreamKeys(kind string, extra ...string) ([]string, error) {
	items, err := Items(kind)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var keys []string
	add := func(k string) {
		if k != "" && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for _, it := range items {
		add(it.Key)
		add(it.Base)
		for _, l := range it.Less {
			add(l)
		}
	}
	for _, k := range extra {
		add(k)
	}
	return keys, nil
}

// RecentPeriods returns up to n period end dates, most recent first.
func RecentPeriods(f *models.Fundamentals, n int) []time.Time {
	periods := f.Periods()
	sort.Slice(periods, func(i, j int) bool { return periods[i].After(periods[j]) })
	if len(periods) > n {
		periods = periods[:n]
	}
	return periods
}

// ColumnLabel names a period column: "FY 2024" for annual statements,
// "2024-06" for quarterly ones.
func ColumnLabel(interval string, d time.Time) string {
	if interval == "annual" {
		return fmt.Sprintf("FY %d", d.Year())
	}
	return d.Format("2006-01")
}

// Row returns the values of an upstream item at each date.
func Row(f *models.Fundamentals, key string, dates []time.Time) []series.Num {
	s := f.Item(key)
	out := make([]series.Num, len(dates))
	for i, d := range dates {
		out[i], _ = s.ValueAt(d)
	}
	return out
}

// BuildStatement lays out a statement kind with one row per line item and
// one column per period, most recent first. interval is "annual" (four
// columns) or "quarterly" (five).
func BuildStatement(f *models.Fundamentals, kind string) (*series.Frame, error) {
	items, err := Items(kind)
	if err != nil {
		return nil, err
	}
	n := AnnualColumns
	if f.Interval != "annual" {
		n = QuarterlyColumns
	}
	dates := RecentPeriods(f, n)
	cols := make([]string, len(dates))
	for i, d := range dates {
		cols[i] = ColumnLabel(f.Interval, d)
	}

	frame := series.NewFrame(fmt.Sprintf("%s %s statement", f.Symbol, kind), cols...)
	for _, it := range items {
		if it.Key != "" {
			frame.AddRow(it.Label, Row(f, it.Key, dates)...)
			continue
		}
		base := Row(f, it.Base, dates)
		less := make([][]series.Num, len(it.Less))
		for j, k := range it.Less {
			less[j] = Row(f, k, dates)
		}
		vals := make([]series.Num, len(dates))
		for c := range dates {
			terms := make([]series.Num, len(less))
			for j := range less {
				terms[j] = less[j][c]
			}
			vals[c] = series.SubOr0(base[c], terms...)
		}
		frame.AddRow(it.Label, vals...)
	}
	return frame, nil
}

// ScaleUnit divides every cell by the unit's power of ten.
func ScaleUnit(frame *series.Frame, unit string) (*series.Frame, error) {
	exp, ok := Units[unit]
	if !ok {
		return nil, provider.OneOf("unit", unit, "thousand", "million", "billion", "raw")
	}
	return frame.Map(func(n series.Num) series.Num {
		if !n.Valid {
			return n
		}
		v, _ := decimal.NewFromFloat(n.V).Shift(-exp).Float64()
		return series.Val(v)
	}), nil
}

// Convert multiplies every cell by an exchange rate.
func Convert(frame *series.Frame, rate series.Num) *series.Frame {
	r := decimal.NewFromFloat(rate.V)
	return frame.Map(func(n series.Num) series.Num {
		if !n.Valid || !rate.Valid {
			return series.NA
		}
		v, _ := decimal.NewFromFloat(n.V).Mul(r).Float64()
		return series.Val(v)
	})
}
