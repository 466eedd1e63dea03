package refactor

import (
	"sort"

	"github.com/dusk-indust/reshape/internal/source"
)

// Classifier enumerates every usage site of a declaration across all loaded
// files and tags each one per the blocking rules: only external references
// can block an operation, because Self/IntraDeclaration sites disappear with
// the declaration and ExportOnly sites are rewritten by the operation
// itself.
type Classifier struct {
	project *source.Project
}

// NewClassifier creates a Classifier over the given project.
func NewClassifier(project *source.Project) *Classifier {
	return &Classifier{project: project}
}

// Classify walks every loaded file for occurrences tied to the declaration:
// plain identifiers, named-import specifiers, named re-export specifiers
// (following barrel chains), and namespace-qualified member accesses. The
// result is sorted by file path and position.
func (c *Classifier) Classify(decl *source.Declaration) []Reference {
	var refs []Reference

	for _, f := range c.project.Files() {
		if f.Path() == decl.FilePath {
			refs = append(refs, c.declaringFileRefs(f, decl)...)
		} else {
			refs = append(refs, c.foreignFileRefs(f, decl)...)
		}
	}

	sort.Slice(refs, func(i, j int) bool {
		if refs[i].FilePath != refs[j].FilePath {
			return refs[i].FilePath < refs[j].FilePath
		}
		return refs[i].Span.Start < refs[j].Span.Start
	})
	return refs
}

// External filters a classification down to its blocking references.
func External(refs []Reference) []Reference {
	var out []Reference
	for _, r := range refs {
		if r.Class == RefExternal {
			out = append(out, r)
		}
	}
	return out
}

// ReferencingFiles returns the distinct file paths of the given references,
// in first-seen order.
func ReferencingFiles(refs []Reference) []string {
	seen := make(map[string]bool)
	var files []string
	for _, r := range refs {
		if !seen[r.FilePath] {
			seen[r.FilePath] = true
			files = append(files, r.FilePath)
		}
	}
	return files
}

// declaringFileRefs classifies occurrences inside the declaration's own
// file: the identifier itself (Self), sites inside its body
// (IntraDeclaration), export-list entries (ExportOnly), and any other
// same-file usage (External).
func (c *Classifier) declaringFileRefs(f *source.File, decl *source.Declaration) []Reference {
	var refs []Reference

	if decl.Kind == source.KindExportSpecifier {
		// The specifier's own entry is the declaration; the local symbol it
		// exports is a separate declaration, not a reference to the entry.
		return []Reference{{
			FilePath: f.Path(),
			Span:     decl.NameSpan,
			Line:     decl.StartLine,
			Form:     FormExportSpecifier,
			Class:    RefSelf,
		}}
	}

	for _, id := range f.Identifiers(decl.Name) {
		class := RefExternal
		switch {
		case decl.NameSpan.Contains(id.Span):
			class = RefSelf
		case decl.Span.Contains(id.Span):
			class = RefIntraDeclaration
		}
		refs = append(refs, Reference{
			FilePath: f.Path(),
			Span:     id.Span,
			Line:     id.Line,
			Form:     FormIdentifier,
			Class:    class,
		})
	}

	if decl.Parent != nil {
		// Sibling members reach a method or property through "this". Sites
		// outside the member's own body survive its removal, so they block.
		for _, acc := range f.NamespaceAccesses("this", decl.Name) {
			if !decl.Parent.Span.Contains(acc.Span) {
				continue
			}
			class := RefExternal
			if decl.Span.Contains(acc.Span) {
				class = RefIntraDeclaration
			}
			refs = append(refs, Reference{
				FilePath: f.Path(),
				Span:     acc.Span,
				Line:     acc.Line,
				Form:     FormNamespaceAccess,
				Class:    class,
			})
		}
		return refs
	}

	for _, ex := range f.Exports() {
		if ex.IsReexport() {
			continue // forwards someone else's symbol, not this declaration
		}
		for _, entry := range ex.Named {
			if entry.Name == decl.Name {
				refs = append(refs, Reference{
					FilePath: f.Path(),
					Span:     entry.NameSpan,
					Line:     decl.StartLine,
					Form:     FormExportSpecifier,
					Class:    RefExportOnly,
				})
			}
		}
	}

	return refs
}

// foreignFileRefs classifies occurrences in a file other than the declaring
// one. Everything found here is External.
func (c *Classifier) foreignFileRefs(f *source.File, decl *source.Declaration) []Reference {
	var refs []Reference

	// Named imports binding this declaration, directly or through barrels,
	// plus every usage of the local name they introduce.
	for _, imp := range f.Imports() {
		for _, entry := range imp.Named {
			df, dn, ok := c.project.ResolveImported(f.Path(), imp, entry.Name)
			if !ok || df != decl.FilePath || dn != decl.Name {
				continue
			}
			refs = append(refs, Reference{
				FilePath: f.Path(),
				Span:     entry.NameSpan,
				Line:     0,
				Form:     FormImportSpecifier,
				Class:    RefExternal,
			})
			for _, id := range f.Identifiers(entry.Local()) {
				refs = append(refs, Reference{
					FilePath: f.Path(),
					Span:     id.Span,
					Line:     id.Line,
					Form:     FormIdentifier,
					Class:    RefExternal,
				})
			}
		}
	}

	// Named re-exports forwarding this declaration.
	for _, ex := range f.Exports() {
		if !ex.IsReexport() {
			continue
		}
		target, ok := c.project.Resolver().Resolve(ex.Module, f.Path())
		if !ok {
			continue
		}
		for _, entry := range ex.Named {
			df, dn, ok := c.project.ResolveExport(target, entry.Name)
			if !ok || df != decl.FilePath || dn != decl.Name {
				continue
			}
			refs = append(refs, Reference{
				FilePath: f.Path(),
				Span:     entry.NameSpan,
				Line:     0,
				Form:     FormExportSpecifier,
				Class:    RefExternal,
			})
		}
	}

	// Namespace-qualified accesses through "import * as NS" or a named
	// import of an "export * as ns" binding.
	for _, binding := range c.project.NamespaceBindings(f) {
		df, dn, ok := c.project.ResolveExport(binding.TargetFile, decl.Name)
		if !ok || df != decl.FilePath || dn != decl.Name {
			continue
		}
		for _, acc := range f.NamespaceAccesses(binding.Local, decl.Name) {
			refs = append(refs, Reference{
				FilePath: f.Path(),
				Span:     acc.Span,
				Line:     acc.Line,
				Form:     FormNamespaceAccess,
				Class:    RefExternal,
			})
		}
	}

	return refs
}
