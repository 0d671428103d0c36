package pipeline

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/rkharel/annoreport/internal/config"
	"github.com/rkharel/annoreport/internal/cvat"
	"github.com/rkharel/annoreport/internal/history"
	"github.com/rkharel/annoreport/internal/report"
	"github.com/rkharel/annoreport/internal/stats"
)

type fakeRemote struct {
	data      *cvat.ProjectData
	exported  map[int]string
	downloads []string
}

func (f *fakeRemote) Fetch(ctx context.Context, projectName string, projectID int, skip map[int]bool) (*cvat.ProjectData, error) {
	return f.data, nil
}

func (f *fakeRemote) DownloadAnnotations(ctx context.Context, targets map[int]string, format, dir string, now time.Time) []string {
	f.exported = targets
	return f.downloads
}

type fakeSender struct {
	sent *report.Data
}

func (f *fakeSender) Send(data report.Data) error {
	f.sent = &data
	return nil
}

func projectData(framesPerTask map[int][]string) *cvat.ProjectData {
	var tasks []stats.Task
	labels := make(map[int]stats.FrameLabels)
	for id, frameLabels := range framesPerTask {
		tasks = append(tasks, stats.Task{
			ID:       id,
			Name:     "clip",
			Assignee: "alice",
			Jobs:     []stats.Job{{ID: id * 10, Assignee: "alice", FrameCount: 100}},
		})
		frames := make(stats.FrameLabels)
		for i, label := range frameLabels {
			frames[i] = []string{label}
		}
		labels[id] = frames
	}
	return &cvat.ProjectData{Tasks: tasks, Labels: labels}
}

func testPipeline(t *testing.T, remote Remote, sender Sender, projDir string, now time.Time) *Pipeline {
	t.Helper()
	cfg := &config.Config{
		ProjDir:        projDir,
		AnnotationsDir: t.TempDir(),
		CVAT: config.CVAT{
			Host:             "http://unused",
			ProjectName:      "EUS",
			ProjectID:        7,
			AnnotationFormat: "Datumaro 1.0",
		},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := New(log, cfg, remote, sender, nil)
	p.now = func() time.Time { return now }
	return p
}

func TestRun_FirstRunHasNoBaseline(t *testing.T) {
	projDir := t.TempDir()
	remote := &fakeRemote{data: projectData(map[int][]string{1: {"A", "B"}})}
	sender := &fakeSender{}

	day1 := time.Date(2025, 3, 13, 9, 0, 0, 0, time.UTC)
	p := testPipeline(t, remote, sender, projDir, day1)

	res, err := p.Run(context.Background(), Options{SaveSnapshot: true, SendEmail: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(res.Rows) != 1 {
		t.Fatalf("expected 1 aggregated row, got %d", len(res.Rows))
	}
	if res.Data.Delta != nil {
		t.Error("expected nil delta on first run")
	}
	if res.Data.SnapshotPath == "" {
		t.Error("expected snapshot to be written")
	}
	if sender.sent == nil {
		t.Fatal("expected email to be sent")
	}
	if sender.sent.Delta != nil {
		t.Error("email should report missing baseline")
	}
}

func TestRun_SecondRunComputesDelta(t *testing.T) {
	projDir := t.TempDir()

	day1 := time.Date(2025, 3, 13, 9, 0, 0, 0, time.UTC)
	remote1 := &fakeRemote{data: projectData(map[int][]string{1: {"A"}})}
	p1 := testPipeline(t, remote1, &fakeSender{}, projDir, day1)
	if _, err := p1.Run(context.Background(), Options{SaveSnapshot: true}); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// Next day: task 1 grew, task 2 appeared.
	day2 := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	remote2 := &fakeRemote{
		data:      projectData(map[int][]string{1: {"A", "B"}, 2: {"C"}}),
		downloads: []string{"clip_datumaro_annotations.zip"},
	}
	sender := &fakeSender{}
	p2 := testPipeline(t, remote2, sender, projDir, day2)

	res, err := p2.Run(context.Background(), Options{SaveSnapshot: true, Download: true, SendEmail: true})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	d := res.Data.Delta
	if d == nil {
		t.Fatal("expected delta on second run")
	}
	if len(d.New) != 1 || d.New[0].TaskID != 2 {
		t.Fatalf("expected task 2 in new, got %+v", d.New)
	}
	if len(d.Changed) != 1 || d.Changed[0].TaskID != 1 {
		t.Fatalf("expected task 1 in changed, got %+v", d.Changed)
	}
	if d.Changed[0].FramesAdded != 1 || d.Changed[0].ObjAdded != 1 {
		t.Errorf("unexpected deltas: %+v", d.Changed[0])
	}

	if len(remote2.exported) != 2 {
		t.Errorf("expected 2 export targets, got %v", remote2.exported)
	}
	if len(res.Data.Filenames) != 1 {
		t.Errorf("expected 1 downloaded file, got %v", res.Data.Filenames)
	}
	if sender.sent == nil {
		t.Fatal("expected email to be sent")
	}
}

func TestRun_PreviewWritesNothing(t *testing.T) {
	projDir := t.TempDir()
	remote := &fakeRemote{data: projectData(map[int][]string{1: {"A"}})}
	sender := &fakeSender{}

	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	p := testPipeline(t, remote, sender, projDir, now)

	res, err := p.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Data.SnapshotPath != "" {
		t.Error("preview must not write a snapshot")
	}
	if sender.sent != nil {
		t.Error("preview must not send email")
	}
	if remote.exported != nil {
		t.Error("preview must not download exports")
	}
	// No snapshot folder should have appeared.
	matches, _ := filepath.Glob(filepath.Join(projDir, "*"))
	if len(matches) != 0 {
		t.Errorf("preview created files: %v", matches)
	}
}

func TestRun_RecordsHistory(t *testing.T) {
	projDir := t.TempDir()
	hist, err := history.New(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("history store: %v", err)
	}
	defer hist.Close()

	remote := &fakeRemote{data: projectData(map[int][]string{1: {"A"}})}
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	p := testPipeline(t, remote, &fakeSender{}, projDir, now)
	p.hist = hist

	if _, err := p.Run(context.Background(), Options{SaveSnapshot: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	runs, err := hist.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 recorded run, got %d", len(runs))
	}
	if runs[0].Date != "20250314" || runs[0].TotalTasks != 1 || runs[0].Baseline {
		t.Errorf("unexpected run record: %+v", runs[0])
	}
}
