package cli

import (
	"fmt"
	"os"

	"github.com/rkharel/annoreport/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Long:  "Creates an annoreport.yaml with placeholder CVAT and email settings.",
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s", configPath)
	}

	cfg := config.DefaultConfig()
	if err := config.Save(configPath, cfg); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Printf("Wrote %s\n", configPath)
	fmt.Println("")
	fmt.Println("Next steps:")
	fmt.Println("  1. Fill in the cvat and email_params sections")
	fmt.Println("  2. Run: annoreport preview")
	fmt.Println("  3. Schedule: annoreport run (once per working day)")

	return nil
}
