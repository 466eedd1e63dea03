package refactor

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/reshape/internal/source"
)

// Expected failures are typed values so callers can branch on the failure
// class with errors.As instead of parsing messages. Only genuinely
// unexpected faults from the source-model toolkit are wrapped as
// ToolingIOError.

// NotFoundError reports that a selector resolved to no declaration.
type NotFoundError struct {
	Name     string
	FilePath string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("symbol %q not found in %s", e.Name, e.FilePath)
}

// UnsupportedKindError reports an operation attempted on a symbol kind it
// does not handle.
type UnsupportedKindError struct {
	Kind      source.SymbolKind
	Operation string
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("unsupported symbol kind %q for %s", e.Kind, e.Operation)
}

// BlockedByReferencesError reports external references that prevent an
// operation. Files holds the distinct referencing file paths; Count the
// total occurrence count.
type BlockedByReferencesError struct {
	Name  string
	Files []string
	Count int
}

func (e *BlockedByReferencesError) Error() string {
	return fmt.Sprintf("symbol %q has %d external reference(s) in %d file(s): %s",
		e.Name, e.Count, len(e.Files), strings.Join(e.Files, ", "))
}

// NamingConflictError reports that the destination already declares the name.
type NamingConflictError struct {
	Name           string
	TargetFilePath string
}

func (e *NamingConflictError) Error() string {
	return fmt.Sprintf("Naming conflict: %q is already declared in %s", e.Name, e.TargetFilePath)
}

// VerificationError reports that a post-mutation check found the source tree
// in an unexpected state. This signals a defect in the executor, not a user
// error.
type VerificationError struct {
	Operation string
	Name      string
	FilePath  string
	Detail    string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("%s verification failed for %q in %s: %s", e.Operation, e.Name, e.FilePath, e.Detail)
}

// ToolingIOError wraps an unexpected failure from the source-model toolkit
// (a file that cannot be loaded, parsed, or saved), preserving the original
// message.
type ToolingIOError struct {
	Path string
	Err  error
}

func (e *ToolingIOError) Error() string {
	return fmt.Sprintf("tooling failure on %s: %v", e.Path, e.Err)
}

func (e *ToolingIOError) Unwrap() error { return e.Err }

// toolingErr wraps err as a ToolingIOError unless it is nil.
func toolingErr(path string, err error) error {
	if err == nil {
		return nil
	}
	return &ToolingIOError{Path: path, Err: err}
}
