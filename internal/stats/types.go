package stats

// Unassigned is the sentinel the annotation server reports when a task or
// job has no assignee.
const Unassigned = "Unassigned"

// Job is a sub-unit of a task covering a contiguous frame range, with its
// own assignee.
type Job struct {
	ID         int
	Assignee   string // username or Unassigned
	FrameCount int
}

// Task is one unit of annotation work as fetched from the server.
// Supported tasks have exactly one job.
type Task struct {
	ID       int
	Name     string
	Assignee string // username or Unassigned
	Jobs     []Job
}

// FrameLabels maps a frame index to the label names observed on that
// frame's shapes. Duplicates within a frame are kept as fetched.
type FrameLabels map[int][]string

// ResolvedTask carries per-task metadata after assignee resolution.
type ResolvedTask struct {
	TaskID   int
	JobID    int
	Name     string
	Frames   int
	Assignee string // resolved username, "" when unassigned
}

// TaskStats is one aggregated row of a daily snapshot.
type TaskStats struct {
	TaskID             int
	JobID              int
	TaskName           string
	Frames             int
	Assignee           string // "" when unassigned
	FramesAnnotated    int
	UniqueObjAnnotated int
	TotalObjAnnotated  int
}

// ChangedTask is a TaskStats row whose counters moved since the prior
// snapshot, with the signed amount of movement.
type ChangedTask struct {
	TaskStats
	FramesAdded int // negative after an annotation rollback
	ObjAdded    int
}

// Delta partitions today's rows against the prior snapshot. A nil *Delta
// means no prior snapshot existed, which is distinct from an empty one.
type Delta struct {
	New     []TaskStats
	Changed []ChangedTask
}

// ExportTargets returns the (taskID, taskName) pairs that need their
// annotations re-downloaded: the union of new and changed tasks.
func (d *Delta) ExportTargets() map[int]string {
	if d == nil {
		return nil
	}
	targets := make(map[int]string, len(d.New)+len(d.Changed))
	for _, c := range d.Changed {
		targets[c.TaskID] = c.TaskName
	}
	for _, n := range d.New {
		targets[n.TaskID] = n.TaskName
	}
	return targets
}
