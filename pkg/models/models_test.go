package models

import (
	"testing"
	"time"

	"github.com/seenimoa/finflux/pkg/series"
)

func TestChartSeriesExtractsField(t *testing.T) {
	d1 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	c := &Chart{Bars: []Bar{
		{Date: d1, Close: series.Val(10), Volume: series.Val(100)},
		{Date: d2, Close: series.NA, Volume: series.Val(200)},
	}}

	closes := c.Series(FieldClose, "Close")
	if closes.Name != "Close" || closes.Len() != 2 {
		t.Fatalf("unexpected series: %+v", closes)
	}
	if closes.Points[0].Value.V != 10 {
		t.Errorf("close[0]: got %v", closes.Points[0].Value)
	}
	if closes.Points[1].Value.Valid {
		t.Error("missing close should stay NA, not be dropped")
	}
	vol := c.Series(FieldVolume, "Volume")
	if vol.Points[1].Value.V != 200 {
		t.Errorf("volume[1]: got %v", vol.Points[1].Value)
	}
}

func TestFundamentalsPeriodsSortedUnique(t *testing.T) {
	y := func(n int) time.Time { return time.Date(n, 12, 31, 0, 0, 0, 0, time.UTC) }
	f := &Fundamentals{Items: map[string]series.Series{
		"TotalRevenue": {Points: []series.Point{{Date: y(2022)}, {Date: y(2023)}}},
		"NetIncome":    {Points: []series.Point{{Date: y(2021)}, {Date: y(2023)}}},
	}}
	got := f.Periods()
	if len(got) != 3 {
		t.Fatalf("expected 3 periods, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if !got[i].After(got[i-1]) {
			t.Errorf("periods not increasing at %d", i)
		}
	}
	if f.Item("Missing").Len() != 0 {
		t.Error("missing item should be empty")
	}
}
