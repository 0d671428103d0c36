// Package pipeline runs the daily report end to end: fetch, aggregate,
// snapshot, diff, export, notify. Execution is strictly sequential; the
// tool is meant to run once per day from cron.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rkharel/annoreport/internal/config"
	"github.com/rkharel/annoreport/internal/cvat"
	"github.com/rkharel/annoreport/internal/history"
	"github.com/rkharel/annoreport/internal/report"
	"github.com/rkharel/annoreport/internal/snapshot"
	"github.com/rkharel/annoreport/internal/stats"
)

// Remote is the slice of the annotation-server client the pipeline needs.
type Remote interface {
	Fetch(ctx context.Context, projectName string, projectID int, skip map[int]bool) (*cvat.ProjectData, error)
	DownloadAnnotations(ctx context.Context, targets map[int]string, format, annotationsDir string, now time.Time) []string
}

// Sender delivers the finished report.
type Sender interface {
	Send(data report.Data) error
}

// Options toggles the side-effecting stages. Preview runs disable all of
// them and only render the diff.
type Options struct {
	SaveSnapshot bool
	Download     bool
	SendEmail    bool
}

// Result is what a run produced, for rendering and exit reporting.
type Result struct {
	Rows []stats.TaskStats
	Data report.Data
}

// Pipeline holds the collaborators for one project.
type Pipeline struct {
	cfg    *config.Config
	remote Remote
	mailer Sender
	hist   *history.Store // optional; nil disables run recording
	log    *slog.Logger
	now    func() time.Time
}

// New assembles a pipeline. hist may be nil.
func New(log *slog.Logger, cfg *config.Config, remote Remote, mailer Sender, hist *history.Store) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		remote: remote,
		mailer: mailer,
		hist:   hist,
		log:    log,
		now:    time.Now,
	}
}

// Run executes the daily pipeline. Only the remote fetch can fail the run;
// every later stage degrades and continues per its own policy.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	started := p.now()
	project := p.cfg.CVAT.ProjectName

	data, err := p.remote.Fetch(ctx, project, p.cfg.CVAT.ProjectID, p.cfg.CVAT.SkipSet())
	if err != nil {
		return nil, err
	}

	resolved := stats.ResolveTasks(p.log, data.Tasks)
	rows := stats.Aggregate(resolved, data.Labels)
	p.log.Info("aggregated annotation stats", "tasks", len(rows))

	stats.LogLabelCounts(p.log, stats.LabelCounts(data.Labels))

	now := p.now()
	snapshotPath := ""
	if opts.SaveSnapshot {
		path, err := snapshot.Write(p.log, p.cfg.ProjDir, project, rows, now)
		if err != nil {
			// Reported as a missing path downstream; the diff and the
			// email still run.
			p.log.Error("snapshot not saved", "error", err)
		}
		snapshotPath = path
	}

	prior, err := snapshot.FindLastWorkingDay(p.log, p.cfg.ProjDir, now)
	if err != nil && !errors.Is(err, snapshot.ErrNoSnapshot) {
		p.log.Warn("snapshot lookup failed, skipping comparison", "error", err)
	}

	delta, err := stats.Compare(rows, prior)
	if err != nil {
		p.log.Warn("snapshot comparison failed, skipping", "error", err)
		delta = nil
	}

	var filenames []string
	if opts.Download {
		filenames = p.remote.DownloadAnnotations(ctx, delta.ExportTargets(), p.cfg.CVAT.AnnotationFormat, p.cfg.AnnotationsDir, now)
	}

	rd := report.NewData(project, delta, snapshotPath, p.cfg.AnnotationsDir, filenames, now)

	if opts.SendEmail {
		// Send failures are already logged by the mailer; the run result
		// is still valid.
		_ = p.mailer.Send(rd)
	}

	if p.hist != nil && opts.SaveSnapshot {
		p.record(rd, rows, started)
	}

	return &Result{Rows: rows, Data: rd}, nil
}

func (p *Pipeline) record(rd report.Data, rows []stats.TaskStats, started time.Time) {
	run := history.Run{
		Project:      rd.ProjectName,
		Date:         rd.Date,
		SnapshotPath: rd.SnapshotPath,
		TotalTasks:   len(rows),
		Exported:     len(rd.Filenames),
		StartedAt:    started,
		FinishedAt:   p.now(),
	}
	if rd.Delta != nil {
		run.Baseline = true
		run.NewTasks = len(rd.Delta.New)
		run.ChangedTasks = len(rd.Delta.Changed)
	}
	if _, err := p.hist.RecordRun(run); err != nil {
		p.log.Warn("could not record run history", "error", err)
	}
}
