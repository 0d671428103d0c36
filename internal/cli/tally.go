package cli

import (
	"fmt"
	"sort"

	"github.com/rkharel/annoreport/internal/cvat"
	"github.com/rkharel/annoreport/internal/stats"
	"github.com/spf13/cobra"
)

var tallyCmd = &cobra.Command{
	Use:   "tally",
	Short: "Print global label counts for the project",
	Long:  "Counts every label occurrence across all frames of all tasks, without any deduplication.",
	RunE:  runTally,
}

func runTally(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := cvat.New(log, cfg.CVAT)
	data, err := client.Fetch(cmd.Context(), cfg.CVAT.ProjectName, cfg.CVAT.ProjectID, cfg.CVAT.SkipSet())
	if err != nil {
		return err
	}

	counts := stats.LabelCounts(data.Labels)
	if len(counts) == 0 {
		fmt.Println("No labels found.")
		return nil
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("%-30s %d\n", name, counts[name])
	}
	return nil
}
