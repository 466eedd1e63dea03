package refactor

import (
	"errors"

	"github.com/dusk-indust/reshape/internal/source"
)

// removableKinds is the set of symbol kinds RemoveExecutor handles. A
// resolved declaration of any other kind fails fast with
// UnsupportedKindError.
var removableKinds = map[source.SymbolKind]bool{
	source.KindFunction:        true,
	source.KindClass:           true,
	source.KindInterface:       true,
	source.KindTypeAlias:       true,
	source.KindEnum:            true,
	source.KindMethod:          true,
	source.KindProperty:        true,
	source.KindExportSpecifier: true,
	source.KindVariable:        true,
}

// RemoveExecutor excises a declaration and its local export wiring after
// confirming no external reference depends on it.
//
// It moves through Located -> Classified -> Unblocked -> Mutated -> Verified;
// any external reference short-circuits to Blocked before a single byte
// changes.
type RemoveExecutor struct {
	project    *source.Project
	finder     *Finder
	classifier *Classifier
}

// NewRemoveExecutor creates a RemoveExecutor over the given project.
func NewRemoveExecutor(project *source.Project) *RemoveExecutor {
	return &RemoveExecutor{
		project:    project,
		finder:     NewFinder(project),
		classifier: NewClassifier(project),
	}
}

// Apply executes the remove operation and returns the mutated files. On any
// failure no file has been mutated, except for VerificationError, which
// reports an executor defect discovered after mutation.
func (e *RemoveExecutor) Apply(op RemoveOp) ([]string, error) {
	decl, err := e.finder.Resolve(op.Selector)
	if err != nil {
		return nil, err
	}

	if !removableKinds[decl.Kind] {
		return nil, &UnsupportedKindError{Kind: decl.Kind, Operation: "remove"}
	}

	ext := External(e.classifier.Classify(decl))
	if len(ext) > 0 {
		return nil, &BlockedByReferencesError{
			Name:  decl.Name,
			Files: ReferencingFiles(ext),
			Count: len(ext),
		}
	}

	file, ok := e.project.File(decl.FilePath)
	if !ok {
		return nil, &NotFoundError{Name: decl.Name, FilePath: decl.FilePath}
	}
	if err := e.project.Mutate(decl.FilePath, excisionEdits(file, decl)); err != nil {
		return nil, toolingErr(decl.FilePath, err)
	}

	// The declaration must be gone now; still resolving is an executor
	// defect, not a user error.
	if _, err := e.finder.Resolve(op.Selector); err == nil {
		return nil, &VerificationError{
			Operation: "remove",
			Name:      decl.Name,
			FilePath:  decl.FilePath,
			Detail:    "selector still resolves after excision",
		}
	} else {
		var notFound *NotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	return []string{decl.FilePath}, nil
}
