package refactor

import "github.com/dusk-indust/reshape/internal/source"

// ConflictChecker guards destination scopes against name collisions. Every
// check re-reads the destination file's current declaration set. It must
// never consult state captured before the batch began or before an earlier
// in-batch mutation: a destination that was emptied by a previous operation
// in the same batch is clear, and a snapshot taken earlier would report a
// false conflict.
type ConflictChecker struct {
	project *source.Project
}

// NewConflictChecker creates a ConflictChecker over the given project.
func NewConflictChecker(project *source.Project) *ConflictChecker {
	return &ConflictChecker{project: project}
}

// Check reports a NamingConflictError when destPath currently declares a
// top-level symbol with the given name. A destination file that is not part
// of the project yet is clear; the move creates it.
func (c *ConflictChecker) Check(name, destPath string) error {
	file, ok := c.project.File(destPath)
	if !ok {
		return nil
	}
	if file.TopLevel(name) != nil {
		return &NamingConflictError{Name: name, TargetFilePath: destPath}
	}
	return nil
}
