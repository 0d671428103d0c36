// Package snapshot persists and retrieves dated CSV snapshots of per-task
// annotation stats. Snapshots live at
//
//	<root>/<YYYYMMDD>/<project>_annotation_stats_<YYYYMMDD_HHMM>.csv
//
// and are created once per day, never mutated or deleted.
package snapshot

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rkharel/annoreport/internal/stats"
)

// ErrNoSnapshot is returned when no usable prior snapshot exists.
var ErrNoSnapshot = errors.New("no prior snapshot")

// marker identifies the canonical stats file inside a date folder.
const marker = "_annotation_stats_"

const (
	dateLayout     = "20060102"
	datetimeLayout = "20060102_1504"
)

// header is the fixed column schema shared by writer and reader. The
// capitalized "Assignee" is load-bearing: prior snapshots were written with
// this exact header.
var header = []string{
	"task_id", "job_id", "task_name", "frames", "Assignee",
	"frames_annotated", "unique_obj_annotated", "total_obj_annotated",
}

// Write stores today's rows under a date-named folder in root and returns
// the file path. If the primary location is not writable it falls back to
// the user's home directory with the same filename. Only when both fail is
// an error returned; callers treat that as a missing path, not a fatal
// condition.
func Write(log *slog.Logger, root, project string, rows []stats.TaskStats, now time.Time) (string, error) {
	filename := project + marker + now.Format(datetimeLayout) + ".csv"
	dir := filepath.Join(root, now.Format(dateLayout))

	path := filepath.Join(dir, filename)
	err := os.MkdirAll(dir, 0755)
	if err == nil {
		err = writeCSV(path, rows)
	}
	if err == nil {
		log.Info("saved stats snapshot", "path", path)
		return path, nil
	}

	log.Warn("primary save location failed, falling back to home directory", "error", err)
	home, homeErr := os.UserHomeDir()
	if homeErr != nil {
		return "", fmt.Errorf("resolve home directory: %w", homeErr)
	}
	fallback := filepath.Join(home, filename)
	if err := writeCSV(fallback, rows); err != nil {
		log.Error("fallback save location also failed", "error", err)
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	log.Warn("saved stats snapshot to fallback location", "path", fallback)
	return fallback, nil
}

// FindLastWorkingDay returns the rows of the most recent snapshot strictly
// before today. It scans root for 8-digit date-named subfolders, picks the
// chronologically latest prior one, and reads the first stats file inside.
// Any missing folder, missing file, or parse failure yields ErrNoSnapshot.
func FindLastWorkingDay(log *slog.Logger, root string, today time.Time) ([]stats.TaskStats, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		log.Warn("cannot list snapshot root", "root", root, "error", err)
		return nil, ErrNoSnapshot
	}

	// Normalize to midnight of today's calendar date so intra-day
	// timestamps never match as "prior".
	todayDate, err := time.Parse(dateLayout, today.Format(dateLayout))
	if err != nil {
		return nil, ErrNoSnapshot
	}
	var lastDir string
	var lastDate time.Time

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		date, err := time.Parse(dateLayout, entry.Name())
		if err != nil {
			continue
		}
		if !date.Before(todayDate) {
			continue
		}
		if lastDir == "" || date.After(lastDate) {
			lastDir, lastDate = entry.Name(), date
		}
	}

	if lastDir == "" {
		log.Info("no previous working day folder found, skipping comparison")
		return nil, ErrNoSnapshot
	}

	dayPath := filepath.Join(root, lastDir)
	files, err := os.ReadDir(dayPath)
	if err != nil {
		log.Warn("cannot list last working day folder", "path", dayPath, "error", err)
		return nil, ErrNoSnapshot
	}

	for _, file := range files {
		name := file.Name()
		if file.IsDir() || !strings.Contains(name, marker) || !strings.HasSuffix(name, ".csv") {
			continue
		}
		path := filepath.Join(dayPath, name)
		rows, err := readCSV(path)
		if err != nil {
			log.Warn("cannot parse last working day snapshot", "path", path, "error", err)
			return nil, ErrNoSnapshot
		}
		log.Info("found last working day snapshot", "path", path)
		return rows, nil
	}

	log.Warn("no annotation stats file in last working day folder", "path", dayPath)
	return nil, ErrNoSnapshot
}

func writeCSV(path string, rows []stats.TaskStats) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.TaskID),
			strconv.Itoa(r.JobID),
			r.TaskName,
			strconv.Itoa(r.Frames),
			r.Assignee,
			strconv.Itoa(r.FramesAnnotated),
			strconv.Itoa(r.UniqueObjAnnotated),
			strconv.Itoa(r.TotalObjAnnotated),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Error()
}

func readCSV(path string) ([]stats.TaskStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("snapshot file is empty")
	}
	if !equalHeader(records[0]) {
		return nil, fmt.Errorf("unexpected snapshot columns: %v", records[0])
	}

	rows := make([]stats.TaskStats, 0, len(records)-1)
	for _, rec := range records[1:] {
		row, err := parseRow(rec)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(rec []string) (stats.TaskStats, error) {
	var row stats.TaskStats
	if len(rec) != len(header) {
		return row, fmt.Errorf("expected %d columns, got %d", len(header), len(rec))
	}

	ints := map[int]*int{
		0: &row.TaskID,
		1: &row.JobID,
		3: &row.Frames,
		5: &row.FramesAnnotated,
		6: &row.UniqueObjAnnotated,
		7: &row.TotalObjAnnotated,
	}
	for idx, dst := range ints {
		v, err := strconv.Atoi(rec[idx])
		if err != nil {
			return row, fmt.Errorf("column %s: %w", header[idx], err)
		}
		*dst = v
	}
	row.TaskName = rec[2]
	row.Assignee = rec[4]
	return row, nil
}

func equalHeader(got []string) bool {
	if len(got) != len(header) {
		return false
	}
	for i := range header {
		if got[i] != header[i] {
			return false
		}
	}
	return true
}
