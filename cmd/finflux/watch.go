package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Job is one scheduled snapshot: a data command run on a cron schedule
// whose JSON output is written to the snapshot directory.
//
//	jobs:
//	  - name: de-gdp
//	    schedule: "0 6 * * 1"
//	    args: [econ, gdp, DE, --period, 2y]
type Job struct {
	Name     string   `yaml:"name"     validate:"required,excludesall=/"`
	Schedule string   `yaml:"schedule" validate:"required"`
	Args     []string `yaml:"args"     validate:"min=2"`
}

type jobFile struct {
	Jobs []Job `yaml:"jobs" validate:"min=1,dive"`
}

var validate = validator.New()

// parseJobs decodes and checks a job file. Names must be unique and every
// schedule must be a standard five field cron spec or descriptor.
func parseJobs(data []byte) ([]Job, error) {
	var f jobFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse jobs: %w", err)
	}
	if err := validate.Struct(f); err != nil {
		return nil, fmt.Errorf("invalid jobs: %w", err)
	}
	seen := make(map[string]bool, len(f.Jobs))
	for _, j := range f.Jobs {
		if seen[j.Name] {
			return nil, fmt.Errorf("invalid jobs: duplicate name %q", j.Name)
		}
		seen[j.Name] = true
		if _, err := cron.ParseStandard(j.Schedule); err != nil {
			return nil, fmt.Errorf("job %s: schedule %q: %w", j.Name, j.Schedule, err)
		}
	}
	return f.Jobs, nil
}

func loadJobs(path string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read jobs: %w", err)
	}
	return parseJobs(data)
}

// executor runs a data command with args and writes its output to w.
type executor func(ctx context.Context, args []string, w io.Writer) error

// execute runs a data command on a fresh command tree, always in json mode.
func (a *application) execute(ctx context.Context, args []string, w io.Writer) error {
	root := &cobra.Command{Use: "finflux", SilenceUsage: true, SilenceErrors: true}
	root.AddCommand(dataCommands(a)...)
	root.SetArgs(append(append([]string(nil), args...), "--display=json"))
	root.SetOut(w)
	root.SetErr(io.Discard)
	return root.ExecuteContext(ctx)
}

// snapshotter writes the output of each job run to dir.
type snapshotter struct {
	dir  string
	exec executor
	log  zerolog.Logger
	now  func() time.Time
}

// run executes job once. Nothing is written when the command fails.
func (s *snapshotter) run(ctx context.Context, job Job) (string, error) {
	var buf bytes.Buffer
	if err := s.exec(ctx, job.Args, &buf); err != nil {
		return "", fmt.Errorf("job %s: %w", job.Name, err)
	}
	path := filepath.Join(s.dir, fmt.Sprintf("%s-%s.json", job.Name, s.now().UTC().Format("20060102T150405Z")))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("job %s: %w", job.Name, err)
	}
	return path, nil
}

func (s *snapshotter) runLogged(ctx context.Context, job Job) {
	start := time.Now()
	path, err := s.run(ctx, job)
	if err != nil {
		s.log.Error().Err(err).Str("job", job.Name).Msg("snapshot failed")
		return
	}
	s.log.Info().Str("job", job.Name).Str("file", path).Dur("elapsed", time.Since(start)).Msg("snapshot written")
}

// cronLogger sends cron's own messages to zerolog.
type cronLogger struct{ log zerolog.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}

// --- Watch Command ---

func watchCmd(a *application) *cobra.Command {
	var (
		jobsFile, outDir string
		once             bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Write scheduled JSON snapshots of data commands",
		Long: `watch reads a YAML job file and runs each job's data command on its cron
schedule, writing the JSON output to <out-dir>/<name>-<timestamp>.json.

  jobs:
    - name: us10y
      schedule: "30 22 * * 1-5"
      args: [bond, eod, US, 10y]
    - name: de-cpi
      schedule: "@monthly"
      args: [econ, price_index, DE, --figure, yoy]`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if jobsFile == "" {
				jobsFile = a.cfg.Watch.JobsFile
			}
			if outDir == "" {
				outDir = a.cfg.Watch.OutDir
			}
			jobs, err := loadJobs(jobsFile)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create snapshot dir: %w", err)
			}
			s := &snapshotter{dir: outDir, exec: a.execute, log: a.log, now: time.Now}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if once {
				for _, job := range jobs {
					if _, err := s.run(ctx, job); err != nil {
						return err
					}
				}
				return nil
			}

			logger := cronLogger{a.log}
			c := cron.New(cron.WithLogger(logger), cron.WithChain(cron.SkipIfStillRunning(logger)))
			for _, job := range jobs {
				job := job
				if _, err := c.AddFunc(job.Schedule, func() { s.runLogged(ctx, job) }); err != nil {
					return fmt.Errorf("schedule %s: %w", job.Name, err)
				}
			}
			c.Start()
			a.log.Info().Int("jobs", len(jobs)).Str("dir", outDir).Msg("watch started")

			<-ctx.Done()
			<-c.Stop().Done()
			a.log.Info().Msg("watch stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&jobsFile, "jobs", "", "job file (default from config)")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "snapshot directory (default from config)")
	cmd.Flags().BoolVar(&once, "once", false, "run every job once and exit")
	return cmd
}
