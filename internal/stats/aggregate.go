package stats

import "sort"

// Aggregate joins resolved task metadata with per-frame label data into one
// row per task. Tasks without any annotated frame are dropped entirely.
//
// Per task:
//
//   - FramesAnnotated: frames carrying at least one label
//   - UniqueObjAnnotated: distinct labels across all frames of the task
//   - TotalObjAnnotated: sum over frames of the distinct labels within that
//     frame, so a label seen on several frames counts once per frame
//
// Rows are sorted by (assignee, task_id) ascending; rows without an
// assignee sort last. Running Aggregate twice on the same input yields the
// same rows in the same order.
func Aggregate(resolved []ResolvedTask, labels map[int]FrameLabels) []TaskStats {
	rows := make([]TaskStats, 0, len(resolved))

	for _, task := range resolved {
		frames := labels[task.TaskID]

		framesAnnotated := 0
		unique := make(map[string]struct{})
		totalObj := 0

		for _, frameLabels := range frames {
			if len(frameLabels) == 0 {
				continue
			}
			framesAnnotated++

			inFrame := make(map[string]struct{}, len(frameLabels))
			for _, label := range frameLabels {
				unique[label] = struct{}{}
				inFrame[label] = struct{}{}
			}
			totalObj += len(inFrame)
		}

		if framesAnnotated == 0 {
			continue
		}

		rows = append(rows, TaskStats{
			TaskID:             task.TaskID,
			JobID:              task.JobID,
			TaskName:           task.Name,
			Frames:             task.Frames,
			Assignee:           task.Assignee,
			FramesAnnotated:    framesAnnotated,
			UniqueObjAnnotated: len(unique),
			TotalObjAnnotated:  totalObj,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Assignee != rows[j].Assignee {
			return lessAssignee(rows[i].Assignee, rows[j].Assignee)
		}
		return rows[i].TaskID < rows[j].TaskID
	})

	return rows
}

// lessAssignee orders assignees ascending with unassigned ("") last.
func lessAssignee(a, b string) bool {
	if a == "" {
		return false
	}
	if b == "" {
		return true
	}
	return a < b
}
