package source

import "path/filepath"

// --- Enums ---

// Language identifies a grammar used to parse a source file.
type Language string

const (
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
)

// DetectLanguage maps a file path to its Language. The second return value is
// false for files the toolkit does not handle.
func DetectLanguage(path string) (Language, bool) {
	switch filepath.Ext(path) {
	case ".ts", ".mts", ".cts":
		return LangTypeScript, true
	case ".tsx":
		return LangTSX, true
	default:
		return "", false
	}
}

// SymbolKind classifies a named declaration.
type SymbolKind string

const (
	KindFunction        SymbolKind = "function"
	KindClass           SymbolKind = "class"
	KindInterface       SymbolKind = "interface"
	KindTypeAlias       SymbolKind = "type-alias"
	KindEnum            SymbolKind = "enum"
	KindVariable        SymbolKind = "variable"
	KindMethod          SymbolKind = "method"
	KindProperty        SymbolKind = "property"
	KindExportSpecifier SymbolKind = "export-specifier"
)

// Nested reports whether declarations of this kind live inside an enclosing
// declaration (and therefore carry a parent link).
func (k SymbolKind) Nested() bool {
	return k == KindMethod || k == KindProperty
}

// --- Models ---

// Span is a half-open byte range [Start, End) into a file's text.
type Span struct {
	Start uint `json:"start"`
	End   uint `json:"end"`
}

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	return other.Start >= s.Start && other.End <= s.End
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return int(s.End - s.Start)
}

// Declaration is a named, located definition inside a single file.
//
// Declarations are value snapshots keyed by (file, kind, name, parent): they
// carry byte spans into the file text at the time of extraction, never live
// syntax-tree nodes, so holders must re-resolve after any mutation of the
// owning file.
type Declaration struct {
	Name      string     `json:"name"`
	Kind      SymbolKind `json:"kind"`
	FilePath  string     `json:"filePath"`
	Exported  bool       `json:"exported"`
	StartLine int        `json:"startLine"`

	// NameSpan covers the identifier token; Span covers the declaration node
	// itself (the single declarator for variables, the single specifier for
	// export-specifier entries); StmtSpan covers the whole enclosing
	// statement including any wrapping export keyword.
	NameSpan Span `json:"nameSpan"`
	Span     Span `json:"span"`
	StmtSpan Span `json:"stmtSpan"`

	// Parent is set for nested kinds (method, property) and names the
	// enclosing declaration.
	Parent *Declaration `json:"parent,omitempty"`

	// Siblings counts co-declared entries sharing StmtSpan: declarators in a
	// variable statement, or specifiers in an export clause. 1 means the
	// declaration owns the whole statement.
	Siblings int `json:"siblings"`
}

// Key returns a stable identity for the declaration, independent of spans.
func (d *Declaration) Key() string {
	key := d.FilePath + "#" + string(d.Kind) + ":" + d.Name
	if d.Parent != nil {
		key += "@" + string(d.Parent.Kind) + ":" + d.Parent.Name
	}
	return key
}

// SpecEntry is one entry of a named import or export list. For imports, Name
// is the imported name and Alias the optional local alias ("import {a as b}").
// For exports, Name is the local/imported name and Alias the optional exported
// alias ("export {a as b}").
type SpecEntry struct {
	Name  string `json:"name"`
	Alias string `json:"alias,omitempty"`

	NameSpan  Span `json:"nameSpan"`
	AliasSpan Span `json:"aliasSpan,omitempty"`
	Span      Span `json:"span"` // the whole "a as b" specifier
}

// Local returns the name the entry binds in the importing file.
func (e SpecEntry) Local() string {
	if e.Alias != "" {
		return e.Alias
	}
	return e.Name
}

// Exported returns the name the entry exposes from an export list.
func (e SpecEntry) Exported() string {
	if e.Alias != "" {
		return e.Alias
	}
	return e.Name
}

// ImportStmt models one import statement.
type ImportStmt struct {
	Span       Span        `json:"span"`
	Module     string      `json:"module"`     // raw specifier text, e.g. "./utils"
	ModuleSpan Span        `json:"moduleSpan"` // the text between the quotes
	Default    string      `json:"default,omitempty"`
	Namespace  string      `json:"namespace,omitempty"` // "import * as NS"
	Named      []SpecEntry `json:"named,omitempty"`
}

// ExportStmt models one export statement that does not wrap a declaration.
type ExportStmt struct {
	Span       Span        `json:"span"`
	Module     string      `json:"module,omitempty"` // set for re-exports
	ModuleSpan Span        `json:"moduleSpan,omitempty"`
	Namespace  string      `json:"namespace,omitempty"` // "export * as ns from"
	Wildcard   bool        `json:"wildcard,omitempty"`  // "export * from"
	Named      []SpecEntry `json:"named,omitempty"`
}

// IsReexport reports whether the statement forwards names from another module.
func (e ExportStmt) IsReexport() bool {
	return e.Module != ""
}

// IdentRef is one occurrence of an identifier token in a file.
type IdentRef struct {
	Span Span `json:"span"`
	Line int  `json:"line"`
	// Shorthand marks an object or pattern shorthand, where the token is
	// simultaneously the property key and the bound name.
	Shorthand bool `json:"shorthand,omitempty"`
}
