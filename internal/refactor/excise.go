package refactor

import "github.com/dusk-indust/reshape/internal/source"

// Excision rules shared by remove and move: first unwire the declaring
// file's export lists, then cut the declaration itself.

// excisionEdits builds the edits that remove a declaration and its local
// export wiring from its declaring file.
func excisionEdits(f *source.File, decl *source.Declaration) []source.Edit {
	if decl.Kind == source.KindExportSpecifier {
		return []source.Edit{specifierRemovalEdit(f, decl)}
	}

	var edits []source.Edit
	if decl.Parent == nil {
		// Export lists name top-level symbols only; a nested member sharing
		// a name with an exported symbol must not trim that export.
		edits = exportTrimEdits(f, decl.Name)
	}
	edits = append(edits, declRemovalEdit(f, decl))
	return edits
}

// exportTrimEdits removes entries naming the symbol from the file's local
// export lists: just the specifier when the list keeps other entries, the
// whole statement when it would become empty. Re-exports forward other
// files' symbols and are left alone.
func exportTrimEdits(f *source.File, name string) []source.Edit {
	var edits []source.Edit
	for _, ex := range f.Exports() {
		if ex.IsReexport() {
			continue
		}
		for i, entry := range ex.Named {
			if entry.Name != name {
				continue
			}
			if len(ex.Named) == 1 {
				edits = append(edits, source.Remove(f.WidenStatement(ex.Span)))
			} else {
				edits = append(edits, source.TrimEntry(entrySpans(ex.Named), i))
			}
			break
		}
	}
	return edits
}

// declRemovalEdit cuts the declaration node itself, honoring list membership:
// a variable sharing a statement with other declarators loses only its
// declarator, an enum member only its entry, everything else loses the whole
// statement (including any wrapping export keyword).
func declRemovalEdit(f *source.File, decl *source.Declaration) source.Edit {
	switch {
	case decl.Kind == source.KindVariable && decl.Siblings > 1:
		spans, idx := siblingDeclarators(f, decl)
		if idx >= 0 && len(spans) > 1 {
			return source.TrimEntry(spans, idx)
		}
	case decl.Parent != nil && decl.Parent.Kind == source.KindEnum:
		spans, idx := siblingEnumMembers(f, decl)
		if idx >= 0 && len(spans) > 1 {
			return source.TrimEntry(spans, idx)
		}
		return source.Remove(f.WidenStatement(decl.Span))
	case decl.Parent != nil:
		// Class and interface members are line-shaped; cut whole lines.
		return source.Remove(f.WidenStatement(decl.Span))
	}
	return source.Remove(f.WidenStatement(decl.StmtSpan))
}

// specifierRemovalEdit cuts one export-specifier entry, or its whole
// statement when it is the only entry.
func specifierRemovalEdit(f *source.File, decl *source.Declaration) source.Edit {
	if decl.Siblings <= 1 {
		return source.Remove(f.WidenStatement(decl.StmtSpan))
	}
	spans, idx := siblingSpecifiers(f, decl)
	if idx < 0 || len(spans) <= 1 {
		return source.Remove(f.WidenStatement(decl.StmtSpan))
	}
	return source.TrimEntry(spans, idx)
}

// siblingDeclarators returns the declarator spans of the variable statement
// containing decl, plus decl's index among them.
func siblingDeclarators(f *source.File, decl *source.Declaration) ([]source.Span, int) {
	return siblings(f, decl, func(d *source.Declaration) bool {
		return d.Kind == source.KindVariable && d.StmtSpan == decl.StmtSpan
	})
}

// siblingEnumMembers returns the member spans of the enum containing decl,
// plus decl's index among them.
func siblingEnumMembers(f *source.File, decl *source.Declaration) ([]source.Span, int) {
	return siblings(f, decl, func(d *source.Declaration) bool {
		return d.Parent != nil && decl.Parent != nil &&
			d.Parent.Kind == source.KindEnum && d.Parent.Name == decl.Parent.Name
	})
}

// siblingSpecifiers returns the specifier spans of the export statement
// containing decl, plus decl's index among them.
func siblingSpecifiers(f *source.File, decl *source.Declaration) ([]source.Span, int) {
	return siblings(f, decl, func(d *source.Declaration) bool {
		return d.Kind == source.KindExportSpecifier && d.StmtSpan == decl.StmtSpan
	})
}

func siblings(f *source.File, decl *source.Declaration, match func(*source.Declaration) bool) ([]source.Span, int) {
	var spans []source.Span
	idx := -1
	decls := f.Decls()
	for i := range decls {
		d := &decls[i]
		if !match(d) {
			continue
		}
		if d.Span == decl.Span {
			idx = len(spans)
		}
		spans = append(spans, d.Span)
	}
	return spans, idx
}

func entrySpans(entries []source.SpecEntry) []source.Span {
	spans := make([]source.Span, len(entries))
	for i, e := range entries {
		spans[i] = e.Span
	}
	return spans
}
