package mcptools

import (
	"encoding/json"

	"github.com/dusk-indust/reshape/internal/refactor"
)

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// ApplyRefactoringsInput is the input for the apply_refactorings MCP tool.
// Operations are tagged objects: {"operation": "remove"|"rename"|"move",
// "selector": {...}, ...}.
type ApplyRefactoringsInput struct {
	ProjectRoot string            `json:"projectRoot,omitempty" jsonschema:"project root to refactor (default: the server's configured root)"`
	Operations  []json.RawMessage `json:"operations" jsonschema:"ordered list of refactoring operations, applied sequentially with fail-fast semantics"`
}

// ApplyRefactoringsOutput is the result of the apply_refactorings MCP tool.
type ApplyRefactoringsOutput struct {
	Success       bool                       `json:"success"`
	Results       []refactor.OperationResult `json:"results"`
	Error         string                     `json:"error,omitempty"`
	FailedIndex   int                        `json:"failedIndex"`
	AffectedFiles []string                   `json:"affectedFiles"`
	ReportPath    string                     `json:"reportPath,omitempty"`
}

// FindSymbolInput is the input for the find_symbol MCP tool.
type FindSymbolInput struct {
	ProjectRoot string `json:"projectRoot,omitempty" jsonschema:"project root to search (default: the server's configured root)"`
	Name        string `json:"name" jsonschema:"declaration name to locate"`
	Kind        string `json:"kind" jsonschema:"symbol kind: function, class, interface, type-alias, enum, variable, method, property, export-specifier"`
	FilePath    string `json:"filePath" jsonschema:"repo-relative path of the declaring file"`
	ParentName  string `json:"parentName,omitempty" jsonschema:"enclosing declaration name, for methods and properties"`
	ParentKind  string `json:"parentKind,omitempty" jsonschema:"enclosing declaration kind, for methods and properties"`
}

// FindSymbolOutput is the result of the find_symbol MCP tool.
type FindSymbolOutput struct {
	Found       bool       `json:"found"`
	Declaration SymbolInfo `json:"declaration,omitempty"`
}

// SymbolInfo is the wire shape of a located declaration.
type SymbolInfo struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	FilePath  string `json:"filePath"`
	Exported  bool   `json:"exported"`
	StartLine int    `json:"startLine"`
	Parent    string `json:"parent,omitempty"`
}

// ListReferencesInput is the input for the list_references MCP tool.
type ListReferencesInput struct {
	ProjectRoot string `json:"projectRoot,omitempty" jsonschema:"project root to search (default: the server's configured root)"`
	Name        string `json:"name" jsonschema:"declaration name to classify references for"`
	Kind        string `json:"kind" jsonschema:"symbol kind of the declaration"`
	FilePath    string `json:"filePath" jsonschema:"repo-relative path of the declaring file"`
	ParentName  string `json:"parentName,omitempty" jsonschema:"enclosing declaration name, for methods and properties"`
	ParentKind  string `json:"parentKind,omitempty" jsonschema:"enclosing declaration kind, for methods and properties"`
}

// ListReferencesOutput is the result of the list_references MCP tool.
type ListReferencesOutput struct {
	References []refactor.Reference `json:"references"`
	External   int                  `json:"external"`
	Total      int                  `json:"total"`
}
