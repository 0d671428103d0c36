package stats

import "fmt"

// Compare partitions today's rows against the prior snapshot.
//
// A nil prior slice means no baseline exists: the result is a nil *Delta,
// which callers must treat as "nothing to diff against" rather than an
// empty diff. With a baseline, New holds rows whose task id is absent from
// the prior snapshot and Changed holds common rows whose FramesAnnotated or
// TotalObjAnnotated moved, with signed deltas. Unchanged rows are dropped.
//
// Task ids must be unique within each table; a duplicate is reported as an
// error instead of silently shadowing a row.
func Compare(today, prior []TaskStats) (*Delta, error) {
	if prior == nil {
		return nil, nil
	}

	priorByID, err := indexByTaskID(prior)
	if err != nil {
		return nil, fmt.Errorf("prior snapshot: %w", err)
	}
	if _, err := indexByTaskID(today); err != nil {
		return nil, fmt.Errorf("today's snapshot: %w", err)
	}

	delta := &Delta{
		New:     []TaskStats{},
		Changed: []ChangedTask{},
	}

	for _, row := range today {
		old, ok := priorByID[row.TaskID]
		if !ok {
			delta.New = append(delta.New, row)
			continue
		}
		if row.FramesAnnotated == old.FramesAnnotated && row.TotalObjAnnotated == old.TotalObjAnnotated {
			continue
		}
		delta.Changed = append(delta.Changed, ChangedTask{
			TaskStats:   row,
			FramesAdded: row.FramesAnnotated - old.FramesAnnotated,
			ObjAdded:    row.TotalObjAnnotated - old.TotalObjAnnotated,
		})
	}

	return delta, nil
}

func indexByTaskID(rows []TaskStats) (map[int]TaskStats, error) {
	byID := make(map[int]TaskStats, len(rows))
	for _, row := range rows {
		if _, dup := byID[row.TaskID]; dup {
			return nil, fmt.Errorf("duplicate task id %d", row.TaskID)
		}
		byID[row.TaskID] = row
	}
	return byID, nil
}
