package refactor

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dusk-indust/reshape/internal/source"
)

// MoveExecutor relocates a top-level declaration to another file: a
// Remove-style excision at the source, an insertion at the destination
// preserving the export modifier, and a repoint of every import and
// re-export specifier that bound the symbol through its old location.
//
// The destination is gated by ConflictChecker against current state, so a
// move later in a batch sees the effect of earlier operations that cleared
// the destination.
type MoveExecutor struct {
	project    *source.Project
	finder     *Finder
	classifier *Classifier
	conflicts  *ConflictChecker
}

// NewMoveExecutor creates a MoveExecutor over the given project.
func NewMoveExecutor(project *source.Project) *MoveExecutor {
	return &MoveExecutor{
		project:    project,
		finder:     NewFinder(project),
		classifier: NewClassifier(project),
		conflicts:  NewConflictChecker(project),
	}
}

// fileRewrite is the repoint plan for one importing or re-exporting file,
// computed against that file's pre-move text.
type fileRewrite struct {
	path  string
	edits []source.Edit
}

// Apply executes the move. On any failure before mutation no file has
// changed; a VerificationError reports an executor defect discovered after
// mutation.
func (e *MoveExecutor) Apply(op MoveOp) ([]string, error) {
	decl, err := e.finder.Resolve(op.Selector)
	if err != nil {
		return nil, err
	}
	if decl.Parent != nil || decl.Kind == source.KindExportSpecifier {
		return nil, &UnsupportedKindError{Kind: decl.Kind, Operation: "move"}
	}
	if op.TargetFilePath == decl.FilePath {
		return []string{decl.FilePath}, nil
	}

	// Only references the move cannot repoint block it: usages elsewhere in
	// the declaring file, and namespace-qualified accesses, whose binding
	// would dangle once the symbol leaves the module. Import and re-export
	// specifiers in other files are rewritten below.
	if blocking := e.blockingRefs(decl); len(blocking) > 0 {
		return nil, &BlockedByReferencesError{
			Name:  decl.Name,
			Files: ReferencingFiles(blocking),
			Count: len(blocking),
		}
	}

	if err := e.conflicts.Check(decl.Name, op.TargetFilePath); err != nil {
		return nil, err
	}

	srcFile, ok := e.project.File(decl.FilePath)
	if !ok {
		return nil, &NotFoundError{Name: decl.Name, FilePath: decl.FilePath}
	}
	declText := e.declText(srcFile, decl)

	// Plan every repoint against pre-move state: once the source is excised
	// the export chains no longer resolve to the declaration.
	rewrites := e.planRewrites(decl, op.TargetFilePath)

	target, ok := e.project.File(op.TargetFilePath)
	if !ok {
		target, err = e.project.CreateFile(op.TargetFilePath)
		if err != nil {
			return nil, toolingErr(op.TargetFilePath, err)
		}
	}

	for _, rw := range rewrites {
		if err := e.project.Mutate(rw.path, rw.edits); err != nil {
			return nil, toolingErr(rw.path, err)
		}
	}
	if err := e.project.Mutate(decl.FilePath, excisionEdits(srcFile, decl)); err != nil {
		return nil, toolingErr(decl.FilePath, err)
	}
	if err := e.project.AppendDecl(op.TargetFilePath, declText); err != nil {
		return nil, toolingErr(op.TargetFilePath, err)
	}

	if err := e.verify(op, decl, target); err != nil {
		return nil, err
	}

	affected := map[string]bool{decl.FilePath: true, op.TargetFilePath: true}
	for _, rw := range rewrites {
		affected[rw.path] = true
	}
	paths := make([]string, 0, len(affected))
	for path := range affected {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}

// blockingRefs filters the classification down to the references a move
// cannot preserve.
func (e *MoveExecutor) blockingRefs(decl *source.Declaration) []Reference {
	var blocking []Reference
	for _, r := range External(e.classifier.Classify(decl)) {
		switch {
		case r.FilePath == decl.FilePath && r.Form == FormIdentifier:
			blocking = append(blocking, r)
		case r.Form == FormNamespaceAccess:
			blocking = append(blocking, r)
		}
	}
	return blocking
}

// declText extracts the statement text to insert at the destination,
// preserving export status. A declarator sharing its statement with siblings
// is rebuilt as a standalone statement under the same keyword.
func (e *MoveExecutor) declText(f *source.File, decl *source.Declaration) string {
	text := f.Text()
	stmt := strings.TrimSpace(string(text[decl.StmtSpan.Start:decl.StmtSpan.End]))

	if decl.Kind == source.KindVariable && decl.Siblings > 1 {
		keyword := "const"
		for _, kw := range []string{"const", "let", "var"} {
			if strings.HasPrefix(strings.TrimPrefix(stmt, "export "), kw) {
				keyword = kw
				break
			}
		}
		stmt = keyword + " " + strings.TrimSpace(string(text[decl.Span.Start:decl.Span.End])) + ";"
	}

	if decl.Exported && !strings.HasPrefix(stmt, "export") {
		stmt = "export " + stmt
	}
	return stmt
}

// planRewrites builds the per-file edits that repoint import and re-export
// specifiers bound to the declaration at its new path. A statement that binds
// nothing else is repointed in place; otherwise the specifier is split out
// into its own statement against the new path. Imports inside the destination
// file itself are dropped: the symbol is local there after the move.
func (e *MoveExecutor) planRewrites(decl *source.Declaration, targetPath string) []fileRewrite {
	var rewrites []fileRewrite

	for _, f := range e.project.Files() {
		if f.Path() == decl.FilePath {
			continue
		}
		var edits []source.Edit
		newSpec := e.project.Resolver().SpecifierFor(f.Path(), targetPath)

		for _, imp := range f.Imports() {
			idx := e.bindingEntry(f.Path(), imp, decl)
			if idx < 0 {
				continue
			}
			sole := imp.Default == "" && imp.Namespace == "" && len(imp.Named) == 1
			switch {
			case f.Path() == targetPath && sole:
				edits = append(edits, source.Remove(f.WidenStatement(imp.Span)))
			case f.Path() == targetPath:
				edits = append(edits, source.TrimEntry(entrySpans(imp.Named), idx))
			case sole:
				edits = append(edits, source.Replace(imp.ModuleSpan, newSpec))
			default:
				edits = append(edits, source.TrimEntry(entrySpans(imp.Named), idx))
				edits = append(edits, e.insertLine(f, imp.Span,
					fmt.Sprintf("import { %s } from '%s';\n", specifierText(imp.Named[idx]), newSpec)))
			}
		}

		for _, ex := range f.Exports() {
			if !ex.IsReexport() || f.Path() == targetPath {
				continue
			}
			idx := e.reexportEntry(f.Path(), ex, decl)
			if idx < 0 {
				continue
			}
			if !ex.Wildcard && ex.Namespace == "" && len(ex.Named) == 1 {
				edits = append(edits, source.Replace(ex.ModuleSpan, newSpec))
				continue
			}
			edits = append(edits, source.TrimEntry(entrySpans(ex.Named), idx))
			edits = append(edits, e.insertLine(f, ex.Span,
				fmt.Sprintf("export { %s } from '%s';\n", specifierText(ex.Named[idx]), newSpec)))
		}

		if len(edits) > 0 {
			rewrites = append(rewrites, fileRewrite{path: f.Path(), edits: edits})
		}
	}

	return rewrites
}

// bindingEntry returns the index of the named-import entry binding decl, or
// -1 when the import does not touch it.
func (e *MoveExecutor) bindingEntry(fromPath string, imp source.ImportStmt, decl *source.Declaration) int {
	for i, entry := range imp.Named {
		// An entry importing a re-export alias keeps binding through its
		// barrel; that barrel's own re-export is what gets repointed.
		if entry.Name != decl.Name {
			continue
		}
		df, dn, ok := e.project.ResolveImported(fromPath, imp, entry.Name)
		if ok && df == decl.FilePath && dn == decl.Name {
			return i
		}
	}
	return -1
}

// reexportEntry returns the index of the re-export entry forwarding decl, or
// -1 when the statement does not touch it.
func (e *MoveExecutor) reexportEntry(fromPath string, ex source.ExportStmt, decl *source.Declaration) int {
	target, ok := e.project.Resolver().Resolve(ex.Module, fromPath)
	if !ok {
		return -1
	}
	for i, entry := range ex.Named {
		if entry.Name != decl.Name {
			continue // forwards an upstream alias; the upstream repoints
		}
		df, dn, ok := e.project.ResolveExport(target, entry.Name)
		if ok && df == decl.FilePath && dn == decl.Name {
			return i
		}
	}
	return -1
}

// insertLine builds a zero-width edit placing text at the start of the line
// containing the given statement span.
func (e *MoveExecutor) insertLine(f *source.File, stmtSpan source.Span, text string) source.Edit {
	at := f.WidenStatement(stmtSpan).Start
	return source.Replace(source.Span{Start: at, End: at}, text)
}

// specifierText renders one import/export specifier entry, keeping any alias.
func specifierText(entry source.SpecEntry) string {
	if entry.Alias != "" {
		return entry.Name + " as " + entry.Alias
	}
	return entry.Name
}

// verify confirms the declaration is gone from the source and present at the
// destination.
func (e *MoveExecutor) verify(op MoveOp, decl *source.Declaration, target *source.File) error {
	if _, err := e.finder.Resolve(op.Selector); err == nil {
		return &VerificationError{
			Operation: "move",
			Name:      decl.Name,
			FilePath:  decl.FilePath,
			Detail:    "selector still resolves at the source after excision",
		}
	} else {
		var notFound *NotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}
	if target.TopLevel(decl.Name) == nil {
		return &VerificationError{
			Operation: "move",
			Name:      decl.Name,
			FilePath:  op.TargetFilePath,
			Detail:    "declaration missing at the destination after insertion",
		}
	}
	return nil
}
