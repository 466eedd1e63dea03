package refactor

import (
	"encoding/json"
	"fmt"

	"github.com/dusk-indust/reshape/internal/source"
)

// --- Selectors ---

// ParentSelector disambiguates nested declarations by their enclosing
// declaration's name and kind.
type ParentSelector struct {
	Name string            `json:"name"`
	Kind source.SymbolKind `json:"kind"`
}

// Selector is a textual query locating exactly one declaration.
type Selector struct {
	Type     string            `json:"type"` // always "identifier"
	Name     string            `json:"name"`
	Kind     source.SymbolKind `json:"kind"`
	FilePath string            `json:"filePath"`
	Parent   *ParentSelector   `json:"parent,omitempty"`
}

func (s Selector) String() string {
	if s.Parent != nil {
		return fmt.Sprintf("%s %s.%s in %s", s.Kind, s.Parent.Name, s.Name, s.FilePath)
	}
	return fmt.Sprintf("%s %s in %s", s.Kind, s.Name, s.FilePath)
}

// --- Operations ---

// OpKind is the wire discriminator of an operation.
type OpKind string

const (
	OpRemove OpKind = "remove"
	OpRename OpKind = "rename"
	OpMove   OpKind = "move"
)

// Operation is the closed union of refactoring operations. The three
// variants are RemoveOp, RenameOp, and MoveOp; the unexported method keeps
// the union closed so a dispatch switch stays exhaustive.
type Operation interface {
	Kind() OpKind
	Sel() Selector
	isOperation()
}

// RemoveOp excises a declaration and its local export wiring.
type RemoveOp struct {
	Selector Selector `json:"selector"`
	Reason   string   `json:"reason"`
}

func (RemoveOp) Kind() OpKind    { return OpRemove }
func (o RemoveOp) Sel() Selector { return o.Selector }
func (RemoveOp) isOperation()    {}

// RenameOp rewrites a declaration's identifier and every reference form
// project-wide.
type RenameOp struct {
	Selector Selector `json:"selector"`
	NewName  string   `json:"newName"`
	Scope    string   `json:"scope"` // always "project"
	Reason   string   `json:"reason"`
}

func (RenameOp) Kind() OpKind    { return OpRename }
func (o RenameOp) Sel() Selector { return o.Selector }
func (RenameOp) isOperation()    {}

// MoveOp relocates a declaration to another file.
type MoveOp struct {
	Selector       Selector `json:"selector"`
	TargetFilePath string   `json:"targetFilePath"`
	Reason         string   `json:"reason"`
}

func (MoveOp) Kind() OpKind    { return OpMove }
func (o MoveOp) Sel() Selector { return o.Selector }
func (MoveOp) isOperation()    {}

// Reason returns the audit-only reason carried by any operation variant.
func Reason(op Operation) string {
	switch o := op.(type) {
	case RemoveOp:
		return o.Reason
	case RenameOp:
		return o.Reason
	case MoveOp:
		return o.Reason
	}
	return ""
}

// --- Wire shapes ---

// BatchRequest is an ordered list of operations.
type BatchRequest struct {
	Operations []Operation `json:"operations"`
}

// opEnvelope mirrors the wire shape of one operation: the "operation" tag
// plus the union of all variant fields.
type opEnvelope struct {
	Operation      OpKind   `json:"operation"`
	Selector       Selector `json:"selector"`
	NewName        string   `json:"newName,omitempty"`
	Scope          string   `json:"scope,omitempty"`
	TargetFilePath string   `json:"targetFilePath,omitempty"`
	Reason         string   `json:"reason,omitempty"`
}

// UnmarshalJSON decodes the discriminated union, rejecting unknown tags.
func (r *BatchRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Operations []json.RawMessage `json:"operations"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Operations = make([]Operation, 0, len(raw.Operations))
	for i, msg := range raw.Operations {
		op, err := decodeOperation(msg)
		if err != nil {
			return fmt.Errorf("operation %d: %w", i, err)
		}
		r.Operations = append(r.Operations, op)
	}
	return nil
}

// MarshalJSON encodes operations back into tagged wire form.
func (r BatchRequest) MarshalJSON() ([]byte, error) {
	envelopes := make([]opEnvelope, 0, len(r.Operations))
	for _, op := range r.Operations {
		env := opEnvelope{Operation: op.Kind(), Selector: op.Sel(), Reason: Reason(op)}
		switch o := op.(type) {
		case RenameOp:
			env.NewName = o.NewName
			env.Scope = o.Scope
		case MoveOp:
			env.TargetFilePath = o.TargetFilePath
		}
		envelopes = append(envelopes, env)
	}
	return json.Marshal(struct {
		Operations []opEnvelope `json:"operations"`
	}{envelopes})
}

// DecodeOperations parses a raw JSON operations array into the typed union.
func DecodeOperations(msgs []json.RawMessage) ([]Operation, error) {
	ops := make([]Operation, 0, len(msgs))
	for i, msg := range msgs {
		op, err := decodeOperation(msg)
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func decodeOperation(msg json.RawMessage) (Operation, error) {
	var env opEnvelope
	if err := json.Unmarshal(msg, &env); err != nil {
		return nil, err
	}

	switch env.Operation {
	case OpRemove:
		return RemoveOp{Selector: env.Selector, Reason: env.Reason}, nil
	case OpRename:
		if env.NewName == "" {
			return nil, fmt.Errorf("rename requires newName")
		}
		return RenameOp{Selector: env.Selector, NewName: env.NewName, Scope: env.Scope, Reason: env.Reason}, nil
	case OpMove:
		if env.TargetFilePath == "" {
			return nil, fmt.Errorf("move requires targetFilePath")
		}
		return MoveOp{Selector: env.Selector, TargetFilePath: env.TargetFilePath, Reason: env.Reason}, nil
	default:
		return nil, fmt.Errorf("unknown operation %q", env.Operation)
	}
}

// --- Results ---

// OperationResult is the outcome of one operation.
type OperationResult struct {
	Success       bool     `json:"success"`
	AffectedFiles []string `json:"affectedFiles"`
	Error         string   `json:"error,omitempty"`
}

// BatchResult aggregates per-operation results. On failure, Error carries
// the first failing operation's error and FailedIndex its position.
type BatchResult struct {
	Success     bool              `json:"success"`
	Results     []OperationResult `json:"results"`
	Error       string            `json:"error,omitempty"`
	FailedIndex int               `json:"failedIndex,omitempty"`
}

// AffectedFiles returns the union of files mutated by successful operations,
// in first-touched order.
func (r BatchResult) AffectedFiles() []string {
	seen := make(map[string]bool)
	var files []string
	for _, res := range r.Results {
		if !res.Success {
			continue
		}
		for _, f := range res.AffectedFiles {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	return files
}

// --- References ---

// RefClass classifies a reference relative to its declaration.
type RefClass string

const (
	// RefSelf is the declaration's own identifier token.
	RefSelf RefClass = "self"
	// RefIntraDeclaration lies inside the declaration's own body (e.g.
	// recursion).
	RefIntraDeclaration RefClass = "intra-declaration"
	// RefExportOnly appears only inside an export list of the declaring
	// file; the mutating operation rewrites it as part of its own work.
	RefExportOnly RefClass = "export-only"
	// RefExternal is every other reference, including all references in
	// other files. Only external references can block an operation.
	RefExternal RefClass = "external"
)

// RefForm is the syntactic shape of a reference site.
type RefForm string

const (
	FormIdentifier      RefForm = "identifier"
	FormImportSpecifier RefForm = "import-specifier"
	FormExportSpecifier RefForm = "export-specifier"
	FormNamespaceAccess RefForm = "namespace-access"
)

// Reference is one usage site of a declaration.
type Reference struct {
	FilePath string      `json:"filePath"`
	Span     source.Span `json:"span"`
	Line     int         `json:"line"`
	Form     RefForm     `json:"form"`
	Class    RefClass    `json:"class"`
}
