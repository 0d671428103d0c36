package cli

import (
	"fmt"

	"github.com/rkharel/annoreport/internal/pipeline"
	"github.com/rkharel/annoreport/internal/report"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show today's delta without writing or sending anything",
	Long:  "Fetches live project state, aggregates it, and diffs against the last snapshot.\nNothing is persisted, downloaded, or emailed.",
	RunE:  runPreview,
}

func runPreview(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p, _ := buildPipeline(log, cfg, false)

	res, err := p.Run(cmd.Context(), pipeline.Options{})
	if err != nil {
		return err
	}

	fmt.Print(report.RenderTerminal(res.Data))
	return nil
}
