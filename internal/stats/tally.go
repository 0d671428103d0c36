package stats

import (
	"log/slog"
	"sort"
)

// LabelCounts totals every occurrence of every label across all frames of
// all tasks. Unlike the per-task object counters, nothing is deduplicated:
// a label appearing three times in one frame counts three times.
func LabelCounts(labels map[int]FrameLabels) map[string]int {
	counts := make(map[string]int)
	for _, frames := range labels {
		for _, frameLabels := range frames {
			for _, label := range frameLabels {
				counts[label]++
			}
		}
	}
	return counts
}

// LogLabelCounts emits the tally one label per line, sorted by name. Debug
// level keeps it out of normal daily-run output.
func LogLabelCounts(log *slog.Logger, counts map[string]int) {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		log.Debug("label count", "label", name, "count", counts[name])
	}
}
