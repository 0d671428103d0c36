package cvat

import (
	"context"

	"github.com/rkharel/annoreport/internal/stats"
)

// ProjectData is everything the aggregation pipeline needs from the server.
type ProjectData struct {
	Tasks  []stats.Task
	Labels map[int]stats.FrameLabels
}

// Fetch pulls the full project state: all tasks with their jobs, plus
// per-frame labels for every task not on the skip list. A failed annotation
// retrieval degrades to an empty label set for that task so one broken task
// cannot abort the whole run.
func (c *Client) Fetch(ctx context.Context, projectName string, projectID int, skip map[int]bool) (*ProjectData, error) {
	mapping, err := c.LabelMapping(ctx, projectID)
	if err != nil {
		return nil, err
	}

	tasks, err := c.ListTasks(ctx, projectName)
	if err != nil {
		return nil, err
	}

	labels := make(map[int]stats.FrameLabels, len(tasks))
	for _, task := range tasks {
		if skip[task.ID] {
			continue
		}
		frames, err := c.TaskLabels(ctx, task.ID, mapping)
		if err != nil {
			c.log.Error("skipping annotations for task", "task_id", task.ID, "error", err)
			frames = stats.FrameLabels{}
		}
		labels[task.ID] = frames
	}

	return &ProjectData{Tasks: tasks, Labels: labels}, nil
}
