package cli

import (
	"fmt"

	"github.com/rkharel/annoreport/internal/history"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent pipeline runs",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := history.New(historyDBPath(cfg))
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.ListRuns(historyLimit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No recorded runs yet. Run: annoreport run")
		return nil
	}

	fmt.Printf("%-10s %-8s %-6s %-8s %-9s %-9s %s\n",
		"DATE", "TASKS", "NEW", "CHANGED", "EXPORTED", "BASELINE", "SNAPSHOT")
	for _, r := range runs {
		baseline := "yes"
		newCol := fmt.Sprintf("%d", r.NewTasks)
		changedCol := fmt.Sprintf("%d", r.ChangedTasks)
		if !r.Baseline {
			baseline = "no"
			newCol, changedCol = "-", "-"
		}
		snapshot := r.SnapshotPath
		if snapshot == "" {
			snapshot = "(not saved)"
		}
		fmt.Printf("%-10s %-8d %-6s %-8s %-9d %-9s %s\n",
			r.Date, r.TotalTasks, newCol, changedCol, r.Exported, baseline, snapshot)
	}
	return nil
}
