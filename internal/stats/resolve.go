package stats

import (
	"errors"
	"log/slog"
)

// ErrAssigneeConflict is returned when a task and its job name two
// different real users.
var ErrAssigneeConflict = errors.New("task and job assignees conflict")

// ResolveAssignee reconciles a task-level assignee with its job's assignee
// into one authoritative value:
//
//   - both real and equal → that username
//   - both real and different → ErrAssigneeConflict
//   - exactly one real → the real one
//   - both Unassigned → "" (no assignee)
func ResolveAssignee(taskAssignee, jobAssignee string) (string, error) {
	if taskAssignee != Unassigned && jobAssignee != Unassigned && taskAssignee != jobAssignee {
		return "", ErrAssigneeConflict
	}
	if taskAssignee != Unassigned {
		return taskAssignee, nil
	}
	if jobAssignee != Unassigned {
		return jobAssignee, nil
	}
	return "", nil
}

// ResolveTasks resolves assignees for a whole project. Tasks with an
// assignee conflict are excluded with a warning rather than failing the
// run. Tasks with zero or more than one job violate the single-job
// precondition and are likewise excluded.
func ResolveTasks(log *slog.Logger, tasks []Task) []ResolvedTask {
	resolved := make([]ResolvedTask, 0, len(tasks))

	for _, t := range tasks {
		if len(t.Jobs) != 1 {
			log.Warn("skipping task: expected exactly one job",
				"task_id", t.ID, "jobs", len(t.Jobs))
			continue
		}
		job := t.Jobs[0]

		assignee, err := ResolveAssignee(t.Assignee, job.Assignee)
		if err != nil {
			log.Warn("skipping task: assignee mismatch",
				"task_id", t.ID,
				"task_assignee", t.Assignee,
				"job_assignee", job.Assignee)
			continue
		}

		resolved = append(resolved, ResolvedTask{
			TaskID:   t.ID,
			JobID:    job.ID,
			Name:     t.Name,
			Frames:   job.FrameCount,
			Assignee: assignee,
		})
	}

	return resolved
}
