package stats

import "testing"

func TestLabelCounts_NoDeduplication(t *testing.T) {
	labels := map[int]FrameLabels{
		1: {0: {"A", "A", "B"}, 1: {"A"}},
		2: {5: {"B", "C"}},
	}

	counts := LabelCounts(labels)
	if counts["A"] != 3 {
		t.Errorf("A: expected 3, got %d", counts["A"])
	}
	if counts["B"] != 2 {
		t.Errorf("B: expected 2, got %d", counts["B"])
	}
	if counts["C"] != 1 {
		t.Errorf("C: expected 1, got %d", counts["C"])
	}
}

func TestLabelCounts_Empty(t *testing.T) {
	counts := LabelCounts(nil)
	if len(counts) != 0 {
		t.Fatalf("expected empty tally, got %v", counts)
	}
}
