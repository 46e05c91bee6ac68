package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/finflux/api"
	"github.com/seenimoa/finflux/internal/datasource"
	"github.com/seenimoa/finflux/internal/econ"
	"github.com/seenimoa/finflux/pkg/series"
)

func TestParseJobs(t *testing.T) {
	jobs, err := parseJobs([]byte(`
jobs:
  - name: de-gdp
    schedule: "0 6 * * 1"
    args: [econ, gdp, DE, --period, 2y]
  - name: us10y
    schedule: "@daily"
    args: [bond, eod, US, 10y]
`))
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, Job{Name: "de-gdp", Schedule: "0 6 * * 1", Args: []string{"econ", "gdp", "DE", "--period", "2y"}}, jobs[0])
	assert.Equal(t, "@daily", jobs[1].Schedule)
}

func TestParseJobsRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "jobs: []", "invalid jobs"},
		{"no name", "jobs: [{schedule: '@daily', args: [econ, pce]}]", "invalid jobs"},
		{"slash in name", "jobs: [{name: a/b, schedule: '@daily', args: [econ, pce]}]", "invalid jobs"},
		{"short args", "jobs: [{name: a, schedule: '@daily', args: [econ]}]", "invalid jobs"},
		{"bad schedule", "jobs: [{name: a, schedule: 'every day', args: [econ, pce]}]", "schedule"},
		{"duplicate", "jobs: [{name: a, schedule: '@daily', args: [econ, pce]}, {name: a, schedule: '@hourly', args: [econ, pce]}]", "duplicate"},
		{"not yaml", "jobs: [", "parse jobs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseJobs([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadJobsMissingFile(t *testing.T) {
	_, err := loadJobs(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read jobs")
}

func TestSnapshotterWritesOutput(t *testing.T) {
	dir := t.TempDir()
	var got []string
	s := &snapshotter{
		dir: dir,
		exec: func(_ context.Context, args []string, w io.Writer) error {
			got = args
			_, err := io.WriteString(w, `{"ok":true}`)
			return err
		},
		log: zerolog.Nop(),
		now: func() time.Time { return time.Date(2024, 6, 15, 8, 30, 0, 0, time.UTC) },
	}

	path, err := s.run(context.Background(), Job{Name: "de-gdp", Args: []string{"econ", "gdp", "DE"}})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "de-gdp-20240615T083000Z.json"), path)
	assert.Equal(t, []string{"econ", "gdp", "DE"}, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(data))
}

func TestSnapshotterSkipsFailedRuns(t *testing.T) {
	dir := t.TempDir()
	s := &snapshotter{
		dir:  dir,
		exec: func(context.Context, []string, io.Writer) error { return errors.New("upstream down") },
		log:  zerolog.Nop(),
		now:  time.Now,
	}
	_, err := s.run(context.Background(), Job{Name: "x", Args: []string{"econ", "pce"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job x")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// quarterlySource serves 20 quarters valued 100+i from 2019-Q1.
type quarterlySource struct{ calls int }

func (q *quarterlySource) IFS(context.Context, string, string, string, time.Time) (series.Series, error) {
	q.calls++
	s := series.Series{Name: "raw"}
	for i := 0; i < 20; i++ {
		d := time.Date(2019+i/4, time.Month(3*(i%4)+3), 1, 0, 0, 0, 0, time.UTC)
		s.Points = append(s.Points, series.Point{Date: d, Value: series.Val(float64(100 + i))})
	}
	return s, nil
}

func (q *quarterlySource) FredSeries(context.Context, string, string, datasource.Range) (series.Series, error) {
	return series.Series{}, errors.New("not served")
}

func TestExecuteRendersJSON(t *testing.T) {
	src := &quarterlySource{}
	a := &application{svc: api.Services{Econ: econ.New(src)}}

	var buf bytes.Buffer
	err := a.execute(context.Background(), []string{"econ", "gdp", "DE", "--period", "1y", "--display", "table"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)

	var f series.Frame
	require.NoError(t, json.Unmarshal(buf.Bytes(), &f))
	assert.Equal(t, []string{"DE Q Nominal GDP"}, f.Columns)
	assert.Len(t, f.Index, 5)
}

func TestExecuteReportsInvalidParameters(t *testing.T) {
	src := &quarterlySource{}
	a := &application{svc: api.Services{Econ: econ.New(src)}}

	err := a.execute(context.Background(), []string{"econ", "gdp", "XX"}, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "country")
	assert.Zero(t, src.calls)
}
