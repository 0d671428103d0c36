package cli

import (
	"fmt"

	"github.com/rkharel/annoreport/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	runNoEmail    bool
	runNoDownload bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the daily report pipeline",
	Long:  "Fetches project state, writes today's stats snapshot, diffs it against the last\nworking day, downloads annotation exports for new and changed tasks, and emails the report.",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runNoEmail, "no-email", false, "skip sending the report email")
	runCmd.Flags().BoolVar(&runNoDownload, "no-download", false, "skip downloading annotation exports")
}

func runRun(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p, hist := buildPipeline(log, cfg, true)
	if hist != nil {
		defer hist.Close()
	}

	res, err := p.Run(cmd.Context(), pipeline.Options{
		SaveSnapshot: true,
		Download:     !runNoDownload,
		SendEmail:    !runNoEmail,
	})
	if err != nil {
		return err
	}

	if d := res.Data.Delta; d != nil {
		fmt.Printf("Done: %d tasks aggregated, %d new, %d changed, %d exports downloaded\n",
			len(res.Rows), len(d.New), len(d.Changed), len(res.Data.Filenames))
	} else {
		fmt.Printf("Done: %d tasks aggregated, no prior snapshot to compare against\n", len(res.Rows))
	}
	return nil
}
