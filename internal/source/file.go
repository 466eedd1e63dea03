package source

import "fmt"

// File is the structural representation of one source file: its current text
// plus the declarations, imports, and exports derived from it. The derived
// model is rebuilt by a full re-parse after every mutation, so spans always
// describe the current text and no syntax-tree node outlives an edit.
type File struct {
	path string
	lang Language
	text []byte

	decls   []Declaration
	imports []ImportStmt
	exports []ExportStmt
}

// NewFile parses text and builds the structural model. The path is stored
// repo-relative and is used only for labeling declarations.
func NewFile(path string, text []byte) (*File, error) {
	lang, ok := DetectLanguage(path)
	if !ok {
		return nil, fmt.Errorf("%s: not a supported source file", path)
	}
	f := &File{path: path, lang: lang}
	if err := f.SetText(text); err != nil {
		return nil, err
	}
	return f, nil
}

// Path returns the repo-relative file path.
func (f *File) Path() string { return f.path }

// Language returns the grammar used for this file.
func (f *File) Language() Language { return f.lang }

// Text returns the current file text. Callers must not mutate it.
func (f *File) Text() []byte { return f.text }

func (f *File) String() string { return string(f.text) }

// Decls returns every declaration in the file, top-level and nested, in
// document order.
func (f *File) Decls() []Declaration { return f.decls }

// Imports returns the file's import statements in document order.
func (f *File) Imports() []ImportStmt { return f.imports }

// Exports returns the file's non-declaration export statements in document
// order.
func (f *File) Exports() []ExportStmt { return f.exports }

// TopLevel returns the first top-level declaration with the given name, or
// nil. Export-specifier entries do not count: they re-export, they do not
// declare.
func (f *File) TopLevel(name string) *Declaration {
	for i := range f.decls {
		d := &f.decls[i]
		if d.Parent == nil && d.Kind != KindExportSpecifier && d.Name == name {
			return d
		}
	}
	return nil
}

// TopLevelNames returns the names declared at the file's top level, in
// document order.
func (f *File) TopLevelNames() []string {
	var names []string
	for i := range f.decls {
		d := &f.decls[i]
		if d.Parent == nil && d.Kind != KindExportSpecifier {
			names = append(names, d.Name)
		}
	}
	return names
}

// Identifiers returns every reference-position occurrence of name in the
// current text. Import/export specifier tokens and property accesses are
// excluded; those are modelled separately.
func (f *File) Identifiers(name string) []IdentRef {
	tree, err := parseTree(f.lang, f.text)
	if err != nil {
		return nil
	}
	defer tree.Close()
	return collectIdentifiers(tree.RootNode(), f.text, name)
}

// NamespaceAccesses returns the member-token spans of every "ns.member"
// access in the current text.
func (f *File) NamespaceAccesses(ns, member string) []IdentRef {
	tree, err := parseTree(f.lang, f.text)
	if err != nil {
		return nil
	}
	defer tree.Close()
	return collectNamespaceAccesses(tree.RootNode(), f.text, ns, member)
}

// WidenStatement expands a span to whole lines for clean statement removal.
func (f *File) WidenStatement(s Span) Span {
	return statementSpan(f.text, s)
}

// SetText replaces the file text and rebuilds the structural model.
func (f *File) SetText(text []byte) error {
	tree, err := parseTree(f.lang, text)
	if err != nil {
		return fmt.Errorf("%s: %w", f.path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	f.text = text
	f.decls = extractDecls(root, text, f.path)
	f.imports = extractImports(root, text)
	f.exports = extractExports(root, text)
	f.markExportedViaClause()
	return nil
}

// Apply splices edits into the text and re-parses.
func (f *File) Apply(edits []Edit) error {
	if len(edits) == 0 {
		return nil
	}
	next, err := applyEdits(f.text, edits)
	if err != nil {
		return fmt.Errorf("%s: %w", f.path, err)
	}
	return f.SetText(next)
}

// Append adds declText at the end of the file as its own paragraph and
// re-parses.
func (f *File) Append(declText string) error {
	return f.SetText(appendDecl(f.text, declText))
}

// markExportedViaClause flags top-level declarations whose name appears in a
// local export list ("const x = 1; export {x}") as exported.
func (f *File) markExportedViaClause() {
	exported := make(map[string]bool)
	for _, ex := range f.exports {
		if ex.IsReexport() {
			continue
		}
		for _, entry := range ex.Named {
			exported[entry.Name] = true
		}
	}
	if len(exported) == 0 {
		return
	}
	for i := range f.decls {
		d := &f.decls[i]
		if d.Parent == nil && d.Kind != KindExportSpecifier && exported[d.Name] {
			d.Exported = true
		}
	}
}
