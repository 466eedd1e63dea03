package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/reshape/internal/config"
	"github.com/dusk-indust/reshape/internal/report"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List batch reports for the project",
	RunE:  runReports,
}

func init() {
	rootCmd.AddCommand(reportsCmd)
}

func runReports(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(projectRoot)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	reports, err := report.List(projectRoot, cfg.ReportDir)
	if err != nil {
		return fmt.Errorf("list reports: %w", err)
	}
	if len(reports) == 0 {
		fmt.Println("No reports found.")
		return nil
	}

	for i, r := range reports {
		if i > 0 {
			fmt.Println()
		}
		outcome := "success"
		if !r.Success {
			outcome = fmt.Sprintf("failed at operation %d", r.FailedIndex)
		}
		fmt.Printf("Batch %s  %s  [%s]\n", r.BatchID, r.StartedAt, outcome)
		for _, op := range r.Operations {
			marker := "ok  "
			if !op.Success {
				marker = "FAIL"
			}
			fmt.Printf("  %s %d %s %s\n", marker, op.Index, op.Operation, op.Selector)
		}
	}
	return nil
}
