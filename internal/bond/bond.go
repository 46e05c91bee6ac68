// Package bond implements sovereign and corporate bond yield operations:
// yield history, candlestick views, the sovereign yield curve, end of day
// quotes and the FRED-published corporate and long-term rate series.
package bond

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/seenimoa/finflux/internal/datasource"
	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
	"github.com/seenimoa/finflux/pkg/series"
)

// Source is the upstream data the bond operations read.
type Source interface {
	BondHistory(ctx context.Context, country, maturity string, r datasource.Range) ([]models.Bar, error)
	FredSeries(ctx context.Context, id, frequency string, r datasource.Range) (series.Series, error)
}

// Country names a sovereign issuer. Investing is the name the yield
// history site uses for it.
type Country struct {
	Name      string `json:"name"`
	Investing string `json:"-"`
}

func named(name string) Country { return Country{Name: name, Investing: name} }

// Countries maps ISO 3166 alpha-2 codes to the sovereign issuers with
// published yield history.
var Countries = map[string]Country{
	"AU": named("Australia"),
	"AT": named("Austria"),
	"BH": named("Bahrain"),
	"BD": named("Bangladesh"),
	"BE": named("Belgium"),
	"BR": named("Brazil"),
	"BG": named("Bulgaria"),
	"CA": named("Canada"),
	"CL": named("Chile"),
	"CN": named("China"),
	"CO": named("Colombia"),
	"CI": {Name: "Cote D'Ivoire", Investing: "Cote d'Ivoire"},
	"HR": named("Croatia"),
	"CY": named("Cyprus"),
	"CZ": named("Czech Republic"),
	"DK": named("Denmark"),
	"EG": named("Egypt"),
	"FI": named("Finland"),
	"FR": named("France"),
	"DE": named("Germany"),
	"GR": named("Greece"),
	"HK": named("Hong Kong"),
	"HU": named("Hungary"),
	"IS": named("Iceland"),
	"IN": named("India"),
	"ID": named("Indonesia"),
	"IE": named("Ireland"),
	"IL": named("Israel"),
	"IT": named("Italy"),
	"JP": named("Japan"),
	"KZ": named("Kazakhstan"),
	"KE": named("Kenya"),
	"LV": named("Latvia"),
	"LT": named("Lithuania"),
	"MY": named("Malaysia"),
	"MT": named("Malta"),
	"MU": named("Mauritius"),
	"MX": named("Mexico"),
	"MA": named("Morocco"),
	"NA": named("Namibia"),
	"NL": named("Netherlands"),
	"NZ": named("New Zealand"),
	"NG": named("Nigeria"),
	"NO": named("Norway"),
	"PK": named("Pakistan"),
	"PE": named("Peru"),
	"PH": named("Philippines"),
	"PL": named("Poland"),
	"PT": named("Portugal"),
	"QA": named("Qatar"),
	"RO": named("Romania"),
	"RU": named("Russia"),
	"RS": named("Serbia"),
	"SG": named("Singapore"),
	"SK": named("Slovakia"),
	"SI": named("Slovenia"),
	"ZA": named("South Africa"),
	"KR": named("South Korea"),
	"ES": named("Spain"),
	"LK": named("Sri Lanka"),
	"SE": named("Sweden"),
	"CH": named("Switzerland"),
	"TW": named("Taiwan"),
	"TH": named("Thailand"),
	"TR": named("Turkey"),
	"UG": named("Uganda"),
	"UA": named("Ukraine"),
	"GB": {Name: "United Kingdom", Investing: "U.K."},
	"US": {Name: "United States", Investing: "U.S."},
	"VN": named("Vietnam"),
	"ZM": named("Zambia"),
}

// Maturities lists the tenors quoted for sovereign and corporate yields,
// shortest first.
var Maturities = []string{"6mo", "1y", "2y", "3y", "5y", "7y", "10y", "20y", "30y"}

// Periods are the look-back windows accepted by the bond operations.
var Periods = []string{
	series.Period6M, series.Period1Y, series.Period2Y, series.Period5Y,
	series.Period10Y, series.PeriodYTD, series.PeriodMax,
}

// Service runs bond operations against a Source.
type Service struct {
	src Source
	now func() time.Time
}

// New creates a Service.
func New(src Source) *Service {
	return &Service{src: src, now: time.Now}
}

// label is the column prefix of a sovereign bond: "US 10Y".
func label(code, maturity string) string {
	return code + " " + strings.ToUpper(maturity)
}

// window is a resolved slice of history.
type window struct {
	interval   string
	start, end time.Time
}

// resolve turns a period, or explicit start/end dates, into a window.
func (s *Service) resolve(period, interval, start, end string) (window, error) {
	from, err := provider.ParseDate("start", start)
	if err != nil {
		return window{}, err
	}
	to, err := provider.ParseDate("end", end)
	if err != nil {
		return window{}, err
	}
	if from.IsZero() {
		if from, err = series.StartDate(period, s.now()); err != nil {
			return window{}, err
		}
	}
	return window{interval: interval, start: from, end: to}, nil
}

// history fetches the yield bars of one sovereign bond inside w.
func (s *Service) history(ctx context.Context, code, maturity string, w window) ([]models.Bar, error) {
	bars, err := s.src.BondHistory(ctx, Countries[code].Investing, maturity, datasource.Range{
		Interval: w.interval, Start: w.start, End: w.end,
	})
	if err != nil {
		var icm *provider.InvalidCountryMaturityError
		if errors.As(err, &icm) {
			icm.Country = code
		}
		return nil, err
	}
	return bars, nil
}

// TimeseriesOptions selects a slice of yield history. Start and End
// (YYYY-MM-DD) override Period.
type TimeseriesOptions struct {
	Period   string `json:"period"   default:"5y"`
	Interval string `json:"interval" default:"1d"`
	Data     string `json:"data"     default:"all"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Display  string `json:"display"  default:"table"`
}

var timeseriesChoices = provider.Choices{
	"country":  provider.Keys(Countries),
	"maturity": Maturities,
	"period":   Periods,
	"interval": {"1d", "1wk", "1mo"},
	"data":     {"open", "high", "low", "close", "all"},
	"display":  {display.Table, display.JSON, display.Line},
}

var ohlc = []struct{ field, name string }{
	{models.FieldOpen, "Open"},
	{models.FieldHigh, "High"},
	{models.FieldLow, "Low"},
	{models.FieldClose, "Close"},
}

// SovereignTimeseries returns the yield history of a government bond in
// percent. country is an ISO 3166 alpha-2 code.
func (s *Service) SovereignTimeseries(ctx context.Context, country, maturity string, opts TimeseriesOptions) (display.Result, error) {
	if err := provider.Prepare(&opts); err != nil {
		return display.Result{}, err
	}
	country = strings.ToUpper(country)
	if err := timeseriesChoices.Check(map[string]string{
		"country":  country,
		"maturity": maturity,
		"period":   opts.Period,
		"interval": opts.Interval,
		"data":     opts.Data,
		"display":  opts.Display,
	}); err != nil {
		return display.Result{}, err
	}
	if opts.Display == display.Line && opts.Data == "all" {
		return display.Result{}, &provider.ChartReadabilityError{Reason: "a line chart of every yield column; pick one data column"}
	}
	w, err := s.resolve(opts.Period, opts.Interval, opts.Start, opts.End)
	if err != nil {
		return display.Result{}, err
	}
	bars, err := s.history(ctx, country, maturity, w)
	if err != nil {
		return display.Result{}, err
	}

	name := label(country, maturity)
	c := &models.Chart{Bars: bars}
	var out []series.Series
	for _, f := range ohlc {
		if opts.Data != "all" && opts.Data != f.field {
			continue
		}
		out = append(out, c.Series(f.field, name+" "+f.name))
	}
	return display.Result{Title: fmt.Sprintf("%s %s bond yield", Countries[country].Name, strings.ToUpper(maturity)), Series: out}, nil
}

// checkBond validates a country code and maturity pair.
func checkBond(country, maturity string) (string, error) {
	country = strings.ToUpper(country)
	if err := provider.OneOf("country", country, provider.Keys(Countries)...); err != nil {
		return "", err
	}
	if err := provider.OneOf("maturity", maturity, Maturities...); err != nil {
		return "", err
	}
	return country, nil
}
