package source

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// grammars holds the tree-sitter languages, keyed by Language. Both come from
// the tree-sitter-typescript module; TSX is a distinct grammar.
var grammars = map[Language]*tree_sitter.Language{
	LangTypeScript: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
	LangTSX:        tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()),
}

// parseTree parses source with the grammar for lang. A new tree-sitter parser
// is created per call, so this is safe for sequential use from any goroutine.
// The caller owns the returned tree and must Close it.
func parseTree(lang Language, src []byte) (*tree_sitter.Tree, error) {
	grammar, ok := grammars[lang]
	if !ok {
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(grammar); err != nil {
		return nil, fmt.Errorf("set language %s: %w", lang, err)
	}

	tree := parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned nil tree")
	}
	return tree, nil
}

func nodeSpan(n *tree_sitter.Node) Span {
	return Span{Start: n.StartByte(), End: n.EndByte()}
}

func nodeLine(n *tree_sitter.Node) int {
	return int(n.StartPosition().Row) + 1
}

// --- Declaration extraction ---

// extractDecls walks the top level of a parsed file and collects every named
// declaration, including class/interface/enum members.
func extractDecls(root *tree_sitter.Node, src []byte, path string) []Declaration {
	var decls []Declaration

	for i := uint(0); i < root.NamedChildCount(); i++ {
		child := root.NamedChild(i)
		if child == nil {
			continue
		}

		stmt := child
		node := child
		exported := false

		if child.Kind() == "export_statement" {
			if d := child.ChildByFieldName("declaration"); d != nil {
				node = d
				exported = true
			} else if child.ChildByFieldName("source") == nil {
				// "export {a, b as c};" — each specifier is its own
				// export-specifier declaration. Re-exports are statements of
				// the importing side, not declarations here.
				decls = append(decls, exportSpecifierDecls(child, src, path)...)
				continue
			} else {
				continue
			}
		}

		decls = append(decls, declsFromNode(node, stmt, src, path, exported)...)
	}

	return decls
}

// declsFromNode converts one top-level declaration node into Declarations.
func declsFromNode(node, stmt *tree_sitter.Node, src []byte, path string, exported bool) []Declaration {
	switch node.Kind() {
	case "function_declaration", "generator_function_declaration":
		if d := namedDecl(node, stmt, src, path, KindFunction, exported); d != nil {
			return []Declaration{*d}
		}

	case "class_declaration", "abstract_class_declaration":
		if d := namedDecl(node, stmt, src, path, KindClass, exported); d != nil {
			return append([]Declaration{*d}, classMembers(node, src, path, d)...)
		}

	case "interface_declaration":
		if d := namedDecl(node, stmt, src, path, KindInterface, exported); d != nil {
			return append([]Declaration{*d}, interfaceMembers(node, src, path, d)...)
		}

	case "type_alias_declaration":
		if d := namedDecl(node, stmt, src, path, KindTypeAlias, exported); d != nil {
			return []Declaration{*d}
		}

	case "enum_declaration":
		if d := namedDecl(node, stmt, src, path, KindEnum, exported); d != nil {
			return append([]Declaration{*d}, enumMembers(node, src, path, d)...)
		}

	case "lexical_declaration", "variable_declaration":
		return variableDecls(node, stmt, src, path, exported)
	}
	return nil
}

// namedDecl builds a Declaration from a node with a "name" field child.
func namedDecl(node, stmt *tree_sitter.Node, src []byte, path string, kind SymbolKind, exported bool) *Declaration {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	return &Declaration{
		Name:      nameNode.Utf8Text(src),
		Kind:      kind,
		FilePath:  path,
		Exported:  exported,
		StartLine: nodeLine(stmt),
		NameSpan:  nodeSpan(nameNode),
		Span:      nodeSpan(node),
		StmtSpan:  nodeSpan(stmt),
		Siblings:  1,
	}
}

// classMembers extracts method and property declarations from a class body.
func classMembers(class *tree_sitter.Node, src []byte, path string, parent *Declaration) []Declaration {
	body := class.ChildByFieldName("body")
	if body == nil {
		return nil
	}

	var members []Declaration
	for i := uint(0); i < body.NamedChildCount(); i++ {
		m := body.NamedChild(i)
		if m == nil {
			continue
		}

		var kind SymbolKind
		switch m.Kind() {
		case "method_definition", "abstract_method_signature":
			kind = KindMethod
		case "public_field_definition", "field_definition":
			kind = KindProperty
		default:
			continue
		}

		if d := memberDecl(m, src, path, kind, parent); d != nil {
			members = append(members, *d)
		}
	}
	return members
}

// interfaceMembers extracts method and property signatures from an interface
// body.
func interfaceMembers(iface *tree_sitter.Node, src []byte, path string, parent *Declaration) []Declaration {
	body := iface.ChildByFieldName("body")
	if body == nil {
		return nil
	}

	var members []Declaration
	for i := uint(0); i < body.NamedChildCount(); i++ {
		m := body.NamedChild(i)
		if m == nil {
			continue
		}

		var kind SymbolKind
		switch m.Kind() {
		case "method_signature":
			kind = KindMethod
		case "property_signature":
			kind = KindProperty
		default:
			continue
		}

		if d := memberDecl(m, src, path, kind, parent); d != nil {
			members = append(members, *d)
		}
	}
	return members
}

// enumMembers extracts enum entries as property declarations.
func enumMembers(enum *tree_sitter.Node, src []byte, path string, parent *Declaration) []Declaration {
	body := enum.ChildByFieldName("body")
	if body == nil {
		return nil
	}

	var members []Declaration
	for i := uint(0); i < body.NamedChildCount(); i++ {
		m := body.NamedChild(i)
		if m == nil {
			continue
		}

		nameNode := m
		memberSpan := nodeSpan(m)
		if m.Kind() == "enum_assignment" {
			nameNode = m.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
		} else if m.Kind() != "property_identifier" && m.Kind() != "string" {
			continue
		}

		parentCopy := *parent
		members = append(members, Declaration{
			Name:      nameNode.Utf8Text(src),
			Kind:      KindProperty,
			FilePath:  path,
			Exported:  parent.Exported,
			StartLine: nodeLine(m),
			NameSpan:  nodeSpan(nameNode),
			Span:      memberSpan,
			StmtSpan:  memberSpan,
			Parent:    &parentCopy,
			Siblings:  1,
		})
	}
	return members
}

// memberDecl builds a nested Declaration from a class/interface member node.
func memberDecl(m *tree_sitter.Node, src []byte, path string, kind SymbolKind, parent *Declaration) *Declaration {
	nameNode := m.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	parentCopy := *parent
	span := nodeSpan(m)
	return &Declaration{
		Name:      nameNode.Utf8Text(src),
		Kind:      kind,
		FilePath:  path,
		Exported:  parent.Exported,
		StartLine: nodeLine(m),
		NameSpan:  nodeSpan(nameNode),
		Span:      span,
		StmtSpan:  span,
		Parent:    &parentCopy,
		Siblings:  1,
	}
}

// variableDecls emits one Declaration per declarator in a variable statement.
func variableDecls(node, stmt *tree_sitter.Node, src []byte, path string, exported bool) []Declaration {
	var declarators []*tree_sitter.Node
	for i := uint(0); i < node.NamedChildCount(); i++ {
		c := node.NamedChild(i)
		if c != nil && c.Kind() == "variable_declarator" {
			declarators = append(declarators, c)
		}
	}

	var decls []Declaration
	for _, d := range declarators {
		nameNode := d.ChildByFieldName("name")
		if nameNode == nil || nameNode.Kind() != "identifier" {
			continue // destructuring patterns are not addressable declarations
		}
		decls = append(decls, Declaration{
			Name:      nameNode.Utf8Text(src),
			Kind:      KindVariable,
			FilePath:  path,
			Exported:  exported,
			StartLine: nodeLine(d),
			NameSpan:  nodeSpan(nameNode),
			Span:      nodeSpan(d),
			StmtSpan:  nodeSpan(stmt),
			Siblings:  len(declarators),
		})
	}
	return decls
}

// exportSpecifierDecls converts "export {a, b as c}" entries into
// export-specifier declarations.
func exportSpecifierDecls(stmt *tree_sitter.Node, src []byte, path string) []Declaration {
	clause := childOfKind(stmt, "export_clause")
	if clause == nil {
		return nil
	}

	var specs []*tree_sitter.Node
	for i := uint(0); i < clause.NamedChildCount(); i++ {
		c := clause.NamedChild(i)
		if c != nil && c.Kind() == "export_specifier" {
			specs = append(specs, c)
		}
	}

	var decls []Declaration
	for _, spec := range specs {
		nameNode := spec.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		exportedName := nameNode
		if alias := spec.ChildByFieldName("alias"); alias != nil {
			exportedName = alias
		}
		decls = append(decls, Declaration{
			Name:      exportedName.Utf8Text(src),
			Kind:      KindExportSpecifier,
			FilePath:  path,
			Exported:  true,
			StartLine: nodeLine(spec),
			NameSpan:  nodeSpan(exportedName),
			Span:      nodeSpan(spec),
			StmtSpan:  nodeSpan(stmt),
			Siblings:  len(specs),
		})
	}
	return decls
}

// --- Import / export extraction ---

// extractImports collects every import statement at the top of the file.
func extractImports(root *tree_sitter.Node, src []byte) []ImportStmt {
	var imports []ImportStmt

	for i := uint(0); i < root.NamedChildCount(); i++ {
		child := root.NamedChild(i)
		if child == nil || child.Kind() != "import_statement" {
			continue
		}

		module, moduleSpan, ok := moduleSource(child, src)
		if !ok {
			continue
		}

		stmt := ImportStmt{
			Span:       nodeSpan(child),
			Module:     module,
			ModuleSpan: moduleSpan,
		}

		if clause := childOfKind(child, "import_clause"); clause != nil {
			for j := uint(0); j < clause.NamedChildCount(); j++ {
				part := clause.NamedChild(j)
				if part == nil {
					continue
				}
				switch part.Kind() {
				case "identifier":
					stmt.Default = part.Utf8Text(src)
				case "namespace_import":
					if id := childOfKind(part, "identifier"); id != nil {
						stmt.Namespace = id.Utf8Text(src)
					}
				case "named_imports":
					stmt.Named = specEntries(part, "import_specifier", src)
				}
			}
		}

		imports = append(imports, stmt)
	}
	return imports
}

// extractExports collects export statements that do not wrap a declaration:
// export lists, re-exports, wildcard and namespace re-exports.
func extractExports(root *tree_sitter.Node, src []byte) []ExportStmt {
	var exports []ExportStmt

	for i := uint(0); i < root.NamedChildCount(); i++ {
		child := root.NamedChild(i)
		if child == nil || child.Kind() != "export_statement" {
			continue
		}
		if child.ChildByFieldName("declaration") != nil {
			continue
		}

		stmt := ExportStmt{Span: nodeSpan(child)}
		if module, moduleSpan, ok := moduleSource(child, src); ok {
			stmt.Module = module
			stmt.ModuleSpan = moduleSpan
		}

		if clause := childOfKind(child, "export_clause"); clause != nil {
			stmt.Named = specEntries(clause, "export_specifier", src)
		} else if ns := childOfKind(child, "namespace_export"); ns != nil {
			if id := childOfKind(ns, "identifier"); id != nil {
				stmt.Namespace = id.Utf8Text(src)
			}
		} else if stmt.Module != "" {
			stmt.Wildcard = hasStarChild(child)
		}

		exports = append(exports, stmt)
	}
	return exports
}

// specEntries reads the name/alias pairs out of a named_imports or
// export_clause node.
func specEntries(list *tree_sitter.Node, specKind string, src []byte) []SpecEntry {
	var entries []SpecEntry
	for i := uint(0); i < list.NamedChildCount(); i++ {
		spec := list.NamedChild(i)
		if spec == nil || spec.Kind() != specKind {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		entry := SpecEntry{
			Name:     nameNode.Utf8Text(src),
			NameSpan: nodeSpan(nameNode),
			Span:     nodeSpan(spec),
		}
		if alias := spec.ChildByFieldName("alias"); alias != nil {
			entry.Alias = alias.Utf8Text(src)
			entry.AliasSpan = nodeSpan(alias)
		}
		entries = append(entries, entry)
	}
	return entries
}

// moduleSource extracts the quoted module specifier from an import or export
// statement. The returned span covers only the text between the quotes.
func moduleSource(stmt *tree_sitter.Node, src []byte) (string, Span, bool) {
	srcNode := stmt.ChildByFieldName("source")
	if srcNode == nil {
		return "", Span{}, false
	}
	if frag := childOfKind(srcNode, "string_fragment"); frag != nil {
		return frag.Utf8Text(src), nodeSpan(frag), true
	}
	// Empty string literal: the span between the quotes.
	span := nodeSpan(srcNode)
	if span.Len() >= 2 {
		return "", Span{Start: span.Start + 1, End: span.End - 1}, true
	}
	return "", Span{}, false
}

// childOfKind returns the first named child with the given node kind.
func childOfKind(n *tree_sitter.Node, kind string) *tree_sitter.Node {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c != nil && c.Kind() == kind {
			return c
		}
	}
	return nil
}

// hasStarChild reports whether the statement contains a bare "*" token
// (wildcard re-export).
func hasStarChild(n *tree_sitter.Node) bool {
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c != nil && c.Kind() == "*" {
			return true
		}
	}
	return false
}

// --- Identifier queries ---

// identifierKinds are the node kinds that count as a value or type reference
// to a name. Property accesses (obj.name) use property_identifier and are
// intentionally excluded; namespace-qualified accesses are found separately.
var identifierKinds = map[string]bool{
	"identifier":                            true,
	"type_identifier":                       true,
	"shorthand_property_identifier":         true,
	"shorthand_property_identifier_pattern": true,
}

// specifierParents are parent node kinds whose identifier children belong to
// import/export wiring rather than plain references. Those occurrences are
// modelled by ImportStmt/ExportStmt instead.
var specifierParents = map[string]bool{
	"import_specifier": true,
	"export_specifier": true,
	"namespace_import": true,
	"namespace_export": true,
	"import_clause":    true,
}

// collectIdentifiers finds every reference-position occurrence of name.
func collectIdentifiers(root *tree_sitter.Node, src []byte, name string) []IdentRef {
	var refs []IdentRef

	cursor := root.Walk()
	defer cursor.Close()

	var walk func()
	walk = func() {
		node := cursor.Node()
		if kind := node.Kind(); identifierKinds[kind] && node.Utf8Text(src) == name {
			parent := node.Parent()
			if parent == nil || !specifierParents[parent.Kind()] {
				refs = append(refs, IdentRef{
					Span: nodeSpan(node),
					Line: nodeLine(node),
					Shorthand: kind == "shorthand_property_identifier" ||
						kind == "shorthand_property_identifier_pattern",
				})
			}
		}

		if cursor.GotoFirstChild() {
			walk()
			for cursor.GotoNextSibling() {
				walk()
			}
			cursor.GotoParent()
		}
	}
	walk()

	return refs
}

// collectNamespaceAccesses finds "ns.member" value accesses and "ns.Member"
// type accesses, returning the span of the member token only.
func collectNamespaceAccesses(root *tree_sitter.Node, src []byte, ns, member string) []IdentRef {
	var refs []IdentRef

	cursor := root.Walk()
	defer cursor.Close()

	var walk func()
	walk = func() {
		node := cursor.Node()
		switch node.Kind() {
		case "member_expression":
			obj := node.ChildByFieldName("object")
			prop := node.ChildByFieldName("property")
			if obj != nil && prop != nil &&
				(obj.Kind() == "identifier" || obj.Kind() == "this") &&
				obj.Utf8Text(src) == ns && prop.Utf8Text(src) == member {
				refs = append(refs, IdentRef{Span: nodeSpan(prop), Line: nodeLine(prop)})
			}
		case "nested_type_identifier":
			mod := node.ChildByFieldName("module")
			nameNode := node.ChildByFieldName("name")
			if mod != nil && nameNode != nil &&
				mod.Utf8Text(src) == ns && nameNode.Utf8Text(src) == member {
				refs = append(refs, IdentRef{Span: nodeSpan(nameNode), Line: nodeLine(nameNode)})
			}
		}

		if cursor.GotoFirstChild() {
			walk()
			for cursor.GotoNextSibling() {
				walk()
			}
			cursor.GotoParent()
		}
	}
	walk()

	return refs
}
