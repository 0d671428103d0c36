package cvat

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// exportPollInterval is how often we ask the server whether a dataset
// export has finished preparing. Variable so tests can shorten it.
var exportPollInterval = 2 * time.Second

// ExportDataset downloads the annotation export for one task into destDir
// and returns the written filename. The server prepares exports
// asynchronously, so the request is polled until the archive is ready.
func (c *Client) ExportDataset(ctx context.Context, taskID int, taskName, format, destDir string) (string, error) {
	filename := taskNameStem(taskName) + "_datumaro_annotations.zip"
	outPath := filepath.Join(destDir, filename)

	params := url.Values{
		"format": {format},
		"action": {"download"},
	}
	u := fmt.Sprintf("%s/api/tasks/%d/dataset?%s", c.base, taskID, params.Encode())

	for {
		done, err := c.tryDownload(ctx, u, outPath)
		if err != nil {
			return "", err
		}
		if done {
			return filename, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(exportPollInterval):
		}
	}
}

// tryDownload performs one export request. A 202 means the server is still
// preparing the archive.
func (c *Client) tryDownload(ctx context.Context, u, outPath string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("export request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusAccepted, http.StatusCreated:
		return false, nil
	case http.StatusOK:
	default:
		body, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("server returned status %d: %s", resp.StatusCode, body)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return false, fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return false, fmt.Errorf("write export file: %w", err)
	}
	return true, nil
}

// DownloadAnnotations exports every task in targets (task id → task name)
// into <annotationsDir>/<YYYYMMDD>/ and returns the filenames written, in
// task-id order. A failed export is logged and skipped.
func (c *Client) DownloadAnnotations(ctx context.Context, targets map[int]string, format, annotationsDir string, now time.Time) []string {
	if len(targets) == 0 {
		return nil
	}

	destDir := filepath.Join(annotationsDir, now.Format(dateLayout))
	if err := os.MkdirAll(destDir, 0755); err != nil {
		c.log.Error("cannot create annotations folder", "path", destDir, "error", err)
		return nil
	}

	ids := make([]int, 0, len(targets))
	for id := range targets {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var filenames []string
	for _, id := range ids {
		name := targets[id]
		c.log.Info("downloading annotation export", "task_id", id, "task_name", name)
		filename, err := c.ExportDataset(ctx, id, name, format, destDir)
		if err != nil {
			c.log.Error("annotation export failed", "task_id", id, "error", err)
			continue
		}
		filenames = append(filenames, filename)
	}
	return filenames
}

const dateLayout = "20060102"

// taskNameStem strips a file extension from a task name so exports of
// video-file tasks get readable archive names.
func taskNameStem(name string) string {
	base := filepath.Base(name)
	if ext := filepath.Ext(base); ext != "" {
		return strings.TrimSuffix(base, ext)
	}
	return base
}
