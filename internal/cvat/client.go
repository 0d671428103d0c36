// Package cvat is a minimal REST client for the CVAT annotation server,
// covering what the daily report needs: paginated task/job/label listing,
// per-task annotation retrieval, assignment updates, and dataset export.
package cvat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rkharel/annoreport/internal/config"
	"github.com/rkharel/annoreport/internal/stats"
)

// pageSize keeps list requests small enough not to stress the server.
const pageSize = 100

// Client talks to one CVAT server with basic auth.
type Client struct {
	base     string
	username string
	password string
	http     *http.Client
	log      *slog.Logger
}

// New creates a client for the configured CVAT server.
func New(log *slog.Logger, cfg config.CVAT) *Client {
	return &Client{
		base:     cfg.BaseURL(),
		username: cfg.Username,
		password: cfg.Password,
		http:     &http.Client{Timeout: 60 * time.Second},
		log:      log,
	}
}

// user is the wire shape of an assignee reference.
type user struct {
	Username string `json:"username"`
}

type taskPage struct {
	Next    string `json:"next"`
	Results []struct {
		ID       int    `json:"id"`
		Name     string `json:"name"`
		Assignee *user  `json:"assignee"`
	} `json:"results"`
}

type jobPage struct {
	Next    string `json:"next"`
	Results []struct {
		ID         int   `json:"id"`
		Assignee   *user `json:"assignee"`
		StartFrame int   `json:"start_frame"`
		StopFrame  int   `json:"stop_frame"`
	} `json:"results"`
}

type labelPage struct {
	Next    string `json:"next"`
	Results []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"results"`
}

type annotations struct {
	Shapes []struct {
		LabelID int `json:"label_id"`
		Frame   int `json:"frame"`
	} `json:"shapes"`
}

// ListTasks returns every task of the project together with its jobs.
// Assignees are normalized to usernames, with the Unassigned sentinel when
// the server reports none.
func (c *Client) ListTasks(ctx context.Context, projectName string) ([]stats.Task, error) {
	c.log.Info("fetching tasks and jobs", "project", projectName)

	var tasks []stats.Task
	for page := 1; ; page++ {
		var tp taskPage
		params := url.Values{
			"project_name": {projectName},
			"page":         {strconv.Itoa(page)},
			"page_size":    {strconv.Itoa(pageSize)},
		}
		if err := c.getJSON(ctx, "/api/tasks", params, &tp); err != nil {
			return nil, fmt.Errorf("list tasks page %d: %w", page, err)
		}
		if len(tp.Results) == 0 {
			break
		}

		for _, t := range tp.Results {
			jobs, err := c.listJobs(ctx, t.ID)
			if err != nil {
				return nil, fmt.Errorf("list jobs for task %d: %w", t.ID, err)
			}
			tasks = append(tasks, stats.Task{
				ID:       t.ID,
				Name:     t.Name,
				Assignee: username(t.Assignee),
				Jobs:     jobs,
			})
		}

		if tp.Next == "" {
			break
		}
	}

	c.log.Info("finished fetching tasks", "project", projectName, "count", len(tasks))
	return tasks, nil
}

func (c *Client) listJobs(ctx context.Context, taskID int) ([]stats.Job, error) {
	var jobs []stats.Job
	for page := 1; ; page++ {
		var jp jobPage
		params := url.Values{
			"task_id":   {strconv.Itoa(taskID)},
			"page":      {strconv.Itoa(page)},
			"page_size": {strconv.Itoa(pageSize)},
		}
		if err := c.getJSON(ctx, "/api/jobs", params, &jp); err != nil {
			return nil, err
		}
		if len(jp.Results) == 0 {
			break
		}
		for _, j := range jp.Results {
			jobs = append(jobs, stats.Job{
				ID:         j.ID,
				Assignee:   username(j.Assignee),
				FrameCount: j.StopFrame - j.StartFrame + 1,
			})
		}
		if jp.Next == "" {
			break
		}
	}
	return jobs, nil
}

// LabelMapping returns the project's label id → name map.
func (c *Client) LabelMapping(ctx context.Context, projectID int) (map[int]string, error) {
	c.log.Info("fetching label mapping", "project_id", projectID)

	mapping := make(map[int]string)
	for page := 1; ; page++ {
		var lp labelPage
		params := url.Values{
			"project_id": {strconv.Itoa(projectID)},
			"page":       {strconv.Itoa(page)},
			"page_size":  {strconv.Itoa(pageSize)},
		}
		if err := c.getJSON(ctx, "/api/labels", params, &lp); err != nil {
			return nil, fmt.Errorf("list labels page %d: %w", page, err)
		}
		if len(lp.Results) == 0 {
			break
		}
		for _, l := range lp.Results {
			mapping[l.ID] = l.Name
		}
		if lp.Next == "" {
			break
		}
	}
	return mapping, nil
}

// TaskLabels returns the per-frame label names for one task, counting only
// shape annotations. Label ids missing from the mapping are kept visible
// as "Unknown_label_<id>" rather than dropped.
func (c *Client) TaskLabels(ctx context.Context, taskID int, mapping map[int]string) (stats.FrameLabels, error) {
	var ann annotations
	if err := c.getJSON(ctx, fmt.Sprintf("/api/tasks/%d/annotations", taskID), nil, &ann); err != nil {
		return nil, fmt.Errorf("retrieve annotations for task %d: %w", taskID, err)
	}

	frames := make(stats.FrameLabels)
	for _, shape := range ann.Shapes {
		name, ok := mapping[shape.LabelID]
		if !ok {
			name = fmt.Sprintf("Unknown_label_%d", shape.LabelID)
		}
		frames[shape.Frame] = append(frames[shape.Frame], name)
	}
	return frames, nil
}

// AssignTask sets the top-level assignee of a task.
func (c *Client) AssignTask(ctx context.Context, taskID, userID int) error {
	c.log.Info("assigning task", "task_id", taskID, "user_id", userID)
	body := map[string]int{"assignee_id": userID}
	if err := c.patchJSON(ctx, fmt.Sprintf("/api/tasks/%d", taskID), body); err != nil {
		return fmt.Errorf("assign task %d: %w", taskID, err)
	}
	return nil
}

// AssignJob sets the assignee of a job.
func (c *Client) AssignJob(ctx context.Context, jobID, userID int) error {
	c.log.Info("assigning job", "job_id", jobID, "user_id", userID)
	body := map[string]int{"assignee": userID}
	if err := c.patchJSON(ctx, fmt.Sprintf("/api/jobs/%d", jobID), body); err != nil {
		return fmt.Errorf("assign job %d: %w", jobID, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	u := c.base + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, respBody)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (c *Client) patchJSON(ctx context.Context, path string, body any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.base+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, respBody)
	}
	return nil
}

func username(u *user) string {
	if u == nil {
		return stats.Unassigned
	}
	return u.Username
}
