package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/reshape/internal/config"
	"github.com/dusk-indust/reshape/internal/refactor"
	"github.com/dusk-indust/reshape/internal/report"
	"github.com/dusk-indust/reshape/internal/source"
)

var applyReportDir string

var applyCmd = &cobra.Command{
	Use:   "apply [batch.json]",
	Short: "Apply a batch of refactoring operations",
	Long: `Reads a batch request (JSON) from the given file, or from stdin when no
file is named, and applies its operations to the project in order.

The request shape is {"operations": [...]} where each operation carries an
"operation" tag of remove, rename, or move.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVar(&applyReportDir, "report-dir", "", "directory for batch reports (default: .reshape/reports)")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	data, err := readBatchInput(args)
	if err != nil {
		return err
	}

	var req refactor.BatchRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("parse batch request: %w", err)
	}
	if len(req.Operations) == 0 {
		return fmt.Errorf("batch request contains no operations")
	}

	cfg, err := config.Load(projectRoot)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := cmd.Context()
	project, err := source.LoadProject(ctx, projectRoot, source.Options{ExcludeDirs: cfg.ExcludeDirs})
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}

	started := time.Now()
	result := refactor.NewEngine(project, logger).Execute(ctx, req)
	finished := time.Now()

	printBatchResult(req, result)

	reportDir := applyReportDir
	if reportDir == "" {
		reportDir = cfg.ReportDir
	}
	rep := report.Build(project.Root(), req, result, started, finished)
	if path, err := rep.Write(reportDir); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to write report: %v\n", err)
	} else {
		fmt.Printf("\nReport: %s\n", path)
	}

	if !result.Success {
		return fmt.Errorf("batch failed at operation %d", result.FailedIndex)
	}
	return nil
}

func readBatchInput(args []string) ([]byte, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("read batch file: %w", err)
		}
		return data, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return data, nil
}

func printBatchResult(req refactor.BatchRequest, result refactor.BatchResult) {
	for i, res := range result.Results {
		op := req.Operations[i]
		marker := "ok  "
		if !res.Success {
			marker = "FAIL"
		}
		fmt.Printf("%s %d %s %s\n", marker, i, op.Kind(), op.Sel())
		if len(res.AffectedFiles) > 0 {
			fmt.Printf("       %s\n", strings.Join(res.AffectedFiles, ", "))
		}
		if res.Error != "" {
			fmt.Printf("       %s\n", res.Error)
		}
	}

	skipped := len(req.Operations) - len(result.Results)
	if skipped > 0 {
		fmt.Printf("     %d operation(s) not attempted\n", skipped)
	}
}
