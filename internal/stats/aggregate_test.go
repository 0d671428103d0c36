package stats

import (
	"reflect"
	"testing"
)

func TestAggregate_CountsObjects(t *testing.T) {
	resolved := []ResolvedTask{
		{TaskID: 1, JobID: 10, Name: "clip", Frames: 20, Assignee: "alice"},
	}
	// Frame 1 has A twice plus B, frame 2 has A and C. A repeated across
	// frames counts once per frame in the total but once overall in unique.
	labels := map[int]FrameLabels{
		1: {1: {"A", "A", "B"}, 2: {"A", "C"}},
	}

	rows := Aggregate(resolved, labels)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	r := rows[0]
	if r.FramesAnnotated != 2 {
		t.Errorf("frames_annotated: expected 2, got %d", r.FramesAnnotated)
	}
	if r.UniqueObjAnnotated != 3 {
		t.Errorf("unique_obj_annotated: expected 3, got %d", r.UniqueObjAnnotated)
	}
	if r.TotalObjAnnotated != 4 {
		t.Errorf("total_obj_annotated: expected 4, got %d", r.TotalObjAnnotated)
	}
	if r.Frames != 20 || r.JobID != 10 || r.TaskName != "clip" {
		t.Errorf("metadata not carried over: %+v", r)
	}
}

func TestAggregate_DropsUnannotatedTasks(t *testing.T) {
	resolved := []ResolvedTask{
		{TaskID: 1, Name: "annotated", Assignee: "alice"},
		{TaskID: 2, Name: "untouched", Assignee: "bob"},
		{TaskID: 3, Name: "empty frames only", Assignee: "carol"},
	}
	labels := map[int]FrameLabels{
		1: {0: {"A"}},
		3: {0: {}},
	}

	rows := Aggregate(resolved, labels)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].TaskID != 1 {
		t.Errorf("expected task 1, got %d", rows[0].TaskID)
	}
}

func TestAggregate_SortsByAssigneeThenTaskID(t *testing.T) {
	resolved := []ResolvedTask{
		{TaskID: 5, Assignee: "bob"},
		{TaskID: 2, Assignee: ""},
		{TaskID: 9, Assignee: "alice"},
		{TaskID: 3, Assignee: "alice"},
	}
	labels := map[int]FrameLabels{
		5: {0: {"A"}},
		2: {0: {"A"}},
		9: {0: {"A"}},
		3: {0: {"A"}},
	}

	rows := Aggregate(resolved, labels)
	var order []int
	for _, r := range rows {
		order = append(order, r.TaskID)
	}
	// alice(3,9), bob(5), then unassigned(2) last.
	want := []int{3, 9, 5, 2}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("expected order %v, got %v", want, order)
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	resolved := []ResolvedTask{
		{TaskID: 1, Assignee: "bob"},
		{TaskID: 2, Assignee: "alice"},
		{TaskID: 3, Assignee: ""},
	}
	labels := map[int]FrameLabels{
		1: {0: {"A"}, 1: {"B", "C"}},
		2: {3: {"A", "A"}},
		3: {7: {"D"}},
	}

	first := Aggregate(resolved, labels)
	second := Aggregate(resolved, labels)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("aggregation not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestAggregate_EmptyInput(t *testing.T) {
	rows := Aggregate(nil, nil)
	if rows == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestAggregate_TaskWithoutLabelEntry(t *testing.T) {
	resolved := []ResolvedTask{
		{TaskID: 1, Assignee: "alice"},
	}

	rows := Aggregate(resolved, map[int]FrameLabels{})
	if len(rows) != 0 {
		t.Fatalf("expected task without label data to be dropped, got %d rows", len(rows))
	}
}
