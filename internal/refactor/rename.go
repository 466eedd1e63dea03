package refactor

import (
	"sort"

	"github.com/dusk-indust/reshape/internal/source"
)

// RenameExecutor rewrites a declaration's identifier and every reference
// form project-wide: direct usages, named imports, named re-exports, and
// namespace-qualified accesses. Pre-existing local aliases are kept; only
// the token denoting the symbol's own name changes.
type RenameExecutor struct {
	project *source.Project
	finder  *Finder
}

// NewRenameExecutor creates a RenameExecutor over the given project.
func NewRenameExecutor(project *source.Project) *RenameExecutor {
	return &RenameExecutor{project: project, finder: NewFinder(project)}
}

// Apply executes the rename and returns the union of the declaring file and
// every file containing a rewritten reference.
func (e *RenameExecutor) Apply(op RenameOp) ([]string, error) {
	decl, err := e.finder.Resolve(op.Selector)
	if err != nil {
		return nil, err
	}
	if op.NewName == decl.Name {
		return []string{decl.FilePath}, nil
	}

	edits := make(map[string]map[uint]source.Edit)
	add := func(path string, edit source.Edit) {
		if edits[path] == nil {
			edits[path] = make(map[uint]source.Edit)
		}
		edits[path][edit.Span.Start] = edit
	}

	for _, f := range e.project.Files() {
		if f.Path() == decl.FilePath {
			e.declaringFileEdits(f, decl, op.NewName, add)
		} else {
			e.foreignFileEdits(f, decl, op.NewName, add)
		}
	}

	paths := make([]string, 0, len(edits))
	for path := range edits {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		fileEdits := make([]source.Edit, 0, len(edits[path]))
		for _, edit := range edits[path] {
			fileEdits = append(fileEdits, edit)
		}
		if err := e.project.Mutate(path, fileEdits); err != nil {
			return nil, toolingErr(path, err)
		}
	}

	return paths, nil
}

// declaringFileEdits rewrites the declaration identifier, every same-file
// usage (including recursion inside the body), and local export-list
// entries.
func (e *RenameExecutor) declaringFileEdits(f *source.File, decl *source.Declaration, newName string, add func(string, source.Edit)) {
	// The name token itself. For methods and properties this is the only
	// occurrence Identifiers cannot see (member names are not
	// reference-position identifiers).
	add(f.Path(), source.Replace(decl.NameSpan, newName))

	if decl.Parent == nil {
		for _, id := range f.Identifiers(decl.Name) {
			add(f.Path(), identEdit(decl.Name, newName, id))
		}
		for _, ex := range f.Exports() {
			if ex.IsReexport() {
				continue
			}
			for _, entry := range ex.Named {
				if entry.Name == decl.Name {
					add(f.Path(), source.Replace(entry.NameSpan, newName))
				}
			}
		}
		return
	}

	// Nested declaration: rewrite "this.name" accesses inside the enclosing
	// declaration's body. Accesses through arbitrary instances need type
	// information the toolkit does not model.
	for _, acc := range f.NamespaceAccesses("this", decl.Name) {
		if decl.Parent.Span.Contains(acc.Span) {
			add(f.Path(), source.Replace(acc.Span, newName))
		}
	}
}

// foreignFileEdits rewrites import specifiers, bound usages, re-export
// specifiers, and namespace-qualified accesses in one importing file.
func (e *RenameExecutor) foreignFileEdits(f *source.File, decl *source.Declaration, newName string, add func(string, source.Edit)) {
	for _, imp := range f.Imports() {
		for _, entry := range imp.Named {
			// Only rewrite entries whose surface token is the old identifier.
			// An import of a re-export alias binds the declaration through a
			// name the rename does not change, so the specifier stays intact.
			if entry.Name != decl.Name {
				continue
			}
			df, dn, ok := e.project.ResolveImported(f.Path(), imp, entry.Name)
			if !ok || df != decl.FilePath || dn != decl.Name {
				continue
			}
			add(f.Path(), source.Replace(entry.NameSpan, newName))
			if entry.Alias == "" {
				// No alias: the local name follows the rename.
				for _, id := range f.Identifiers(entry.Name) {
					add(f.Path(), identEdit(decl.Name, newName, id))
				}
			}
		}
	}

	for _, ex := range f.Exports() {
		if !ex.IsReexport() {
			continue
		}
		target, ok := e.project.Resolver().Resolve(ex.Module, f.Path())
		if !ok {
			continue
		}
		for _, entry := range ex.Named {
			if entry.Name != decl.Name {
				continue // forwards an upstream alias, which keeps its name
			}
			df, dn, ok := e.project.ResolveExport(target, entry.Name)
			if !ok || df != decl.FilePath || dn != decl.Name {
				continue
			}
			// Aliased re-exports keep the alias; only the imported name
			// token changes. Sibling entries are untouched.
			add(f.Path(), source.Replace(entry.NameSpan, newName))
		}
	}

	for _, binding := range e.project.NamespaceBindings(f) {
		df, dn, ok := e.project.ResolveExport(binding.TargetFile, decl.Name)
		if !ok || df != decl.FilePath || dn != decl.Name {
			continue
		}
		for _, acc := range f.NamespaceAccesses(binding.Local, decl.Name) {
			add(f.Path(), source.Replace(acc.Span, newName))
		}
	}
}

// identEdit builds the replacement for one identifier occurrence. An object
// shorthand is both property key and value, so it expands to "key: newName"
// to keep the key stable.
func identEdit(name, newName string, id source.IdentRef) source.Edit {
	if id.Shorthand {
		return source.Replace(id.Span, name+": "+newName)
	}
	return source.Replace(id.Span, newName)
}
