package provider

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var timeseriesChoices = Choices{
	"period":   {"1mo", "6mo", "1y", "2y", "5y", "10y", "ytd", "max"},
	"interval": {"1d", "1wk", "1mo", "3mo"},
	"display":  {"json", "table", "line"},
}

func TestChoicesAccepts(t *testing.T) {
	err := timeseriesChoices.Check(map[string]string{"period": "5y", "interval": "1wk", "display": "json"})
	assert.NoError(t, err)
}

func TestChoicesRejectsNamingParamAndChoices(t *testing.T) {
	err := timeseriesChoices.Check(map[string]string{"period": "3y", "interval": "1d"})
	var ipe *InvalidParameterError
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, "period", ipe.Param)
	assert.Equal(t, "3y", ipe.Value)
	assert.Contains(t, err.Error(), "period")
	assert.Contains(t, err.Error(), strings.Join(timeseriesChoices["period"], ", "))
}

func TestChoicesReportsFirstByName(t *testing.T) {
	err := timeseriesChoices.Check(map[string]string{"period": "x", "display": "y"})
	var ipe *InvalidParameterError
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, "display", ipe.Param)
}

func TestChoicesIgnoresUnlistedParams(t *testing.T) {
	assert.NoError(t, timeseriesChoices.Check(map[string]string{"ticker": "anything"}))
}

type candleOpts struct {
	Candles int       `json:"candles" default:"120" validate:"min=1,max=265"`
	SMA     []int     `json:"sma" validate:"max=5,dive,min=10,max=300"`
	Display string    `json:"display" default:"json" validate:"oneof=json table"`
	Bands   []float64 `json:"bollinger" validate:"dive,min=0.1,max=3"`
}

func TestPrepareAppliesDefaults(t *testing.T) {
	o := candleOpts{}
	require.NoError(t, Prepare(&o))
	assert.Equal(t, 120, o.Candles)
	assert.Equal(t, "json", o.Display)
}

func TestPrepareRangeViolation(t *testing.T) {
	o := candleOpts{SMA: []int{5}}
	err := Prepare(&o)
	var ipe *InvalidParameterError
	require.True(t, errors.As(err, &ipe))
	assert.True(t, strings.HasPrefix(ipe.Param, "sma"), ipe.Param)
	assert.Equal(t, []string{"at least 10"}, ipe.Valid)
}

func TestPrepareOneOfListsChoices(t *testing.T) {
	o := candleOpts{Display: "pdf"}
	err := Prepare(&o)
	var ipe *InvalidParameterError
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, []string{"json", "table"}, ipe.Valid)
}

func TestErrorMessages(t *testing.T) {
	assert.Contains(t, (&InvalidSecurityError{Symbol: "EURUSD=X", Expected: "EQUITY", Got: "CURRENCY"}).Error(), "equity")
	assert.Contains(t, (&MissingConfigurationError{Provider: "fred", Setting: "FINFLUX_KEYS_FRED"}).Error(), "FINFLUX_KEYS_FRED")
	inner := errors.New("404")
	cm := &InvalidCountryMaturityError{Country: "KR", Maturity: "30y", Err: inner}
	assert.ErrorIs(t, cm, inner)
	assert.Contains(t, (&ChartReadabilityError{Reason: "too many candles"}).Error(), "too many candles")
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("start", "2020-01-31")
	require.NoError(t, err)
	assert.Equal(t, 31, d.Day())

	d, err = ParseDate("start", "")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseDate("end", "31/01/2020")
	var ipe *InvalidParameterError
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, "end", ipe.Param)
}
