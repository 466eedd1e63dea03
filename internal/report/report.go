package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dusk-indust/reshape/internal/refactor"
)

// DefaultDir is the report directory relative to the project root.
const DefaultDir = ".reshape/reports"

// OperationRecord describes one executed operation for the audit trail.
type OperationRecord struct {
	Index         int      `json:"index"`
	Operation     string   `json:"operation"`
	Selector      string   `json:"selector"`
	Reason        string   `json:"reason,omitempty"`
	Success       bool     `json:"success"`
	AffectedFiles []string `json:"affectedFiles,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// Report is the persisted record of one batch execution.
type Report struct {
	BatchID     uuid.UUID         `json:"batchId"`
	ProjectRoot string            `json:"projectRoot"`
	StartedAt   string            `json:"startedAt"`
	FinishedAt  string            `json:"finishedAt"`
	Success     bool              `json:"success"`
	Error       string            `json:"error,omitempty"`
	FailedIndex int               `json:"failedIndex"`
	Operations  []OperationRecord `json:"operations"`
}

// Build assembles a Report from a batch request and its result. The record
// list covers every attempted operation; operations after the first failure
// were never attempted and do not appear.
func Build(projectRoot string, req refactor.BatchRequest, res refactor.BatchResult, startedAt, finishedAt time.Time) *Report {
	r := &Report{
		BatchID:     uuid.New(),
		ProjectRoot: projectRoot,
		StartedAt:   startedAt.UTC().Format(time.RFC3339),
		FinishedAt:  finishedAt.UTC().Format(time.RFC3339),
		Success:     res.Success,
		Error:       res.Error,
		FailedIndex: res.FailedIndex,
	}
	for i, opRes := range res.Results {
		op := req.Operations[i]
		r.Operations = append(r.Operations, OperationRecord{
			Index:         i,
			Operation:     string(op.Kind()),
			Selector:      op.Sel().String(),
			Reason:        refactor.Reason(op),
			Success:       opRes.Success,
			AffectedFiles: opRes.AffectedFiles,
			Error:         opRes.Error,
		})
	}
	return r
}

// Write persists the report as <dir>/<batchId>.json under the project root
// and returns the written path. An empty dir selects DefaultDir.
func (r *Report) Write(dir string) (string, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(r.ProjectRoot, dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir %s: %w", dir, err)
	}

	path := filepath.Join(dir, r.BatchID.String()+".json")
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report %s: %w", path, err)
	}
	return path, nil
}

// List reads every report in the directory, newest first by start time.
// A missing directory yields an empty list, not an error.
func List(projectRoot, dir string) ([]*Report, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(projectRoot, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var reports []*Report
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		var r Report
		if err := json.Unmarshal(data, &r); err != nil {
			continue
		}
		reports = append(reports, &r)
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].StartedAt > reports[j].StartedAt
	})
	return reports, nil
}
