package mcptools

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/dusk-indust/reshape/internal/refactor"
	"github.com/dusk-indust/reshape/internal/report"
	"github.com/dusk-indust/reshape/internal/source"
)

// RefactorService holds the configuration shared by MCP tool handlers. Each
// call loads the project fresh from disk, so handlers always observe the
// current tree rather than a model cached across calls.
type RefactorService struct {
	projectRoot string
	excludeDirs []string
	reportDir   string
	log         *zap.Logger
}

// NewRefactorService creates a RefactorService rooted at projectRoot.
func NewRefactorService(projectRoot string, excludeDirs []string, reportDir string, log *zap.Logger) *RefactorService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RefactorService{
		projectRoot: projectRoot,
		excludeDirs: excludeDirs,
		reportDir:   reportDir,
		log:         log,
	}
}

// load opens the project at the requested root, falling back to the server's
// configured root.
func (s *RefactorService) load(ctx context.Context, root string) (*source.Project, error) {
	if root == "" {
		root = s.projectRoot
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot access projectRoot: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("projectRoot is not a directory: %s", root)
	}
	return source.LoadProject(ctx, root, source.Options{ExcludeDirs: s.excludeDirs})
}

// ApplyRefactorings executes an ordered batch of remove/rename/move
// operations with fail-fast, no-rollback semantics and persists an audit
// report.
func (s *RefactorService) ApplyRefactorings(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ApplyRefactoringsInput,
) (*mcp.CallToolResult, ApplyRefactoringsOutput, error) {
	if len(input.Operations) == 0 {
		return nil, ApplyRefactoringsOutput{}, fmt.Errorf("operations is required")
	}

	ops, err := refactor.DecodeOperations(input.Operations)
	if err != nil {
		return nil, ApplyRefactoringsOutput{}, err
	}

	project, err := s.load(ctx, input.ProjectRoot)
	if err != nil {
		return nil, ApplyRefactoringsOutput{}, err
	}

	req := refactor.BatchRequest{Operations: ops}
	started := time.Now()
	result := refactor.NewEngine(project, s.log).Execute(ctx, req)
	finished := time.Now()

	out := ApplyRefactoringsOutput{
		Success:       result.Success,
		Results:       result.Results,
		Error:         result.Error,
		FailedIndex:   result.FailedIndex,
		AffectedFiles: result.AffectedFiles(),
	}

	rep := report.Build(project.Root(), req, result, started, finished)
	if path, err := rep.Write(s.reportDir); err != nil {
		s.log.Warn("failed to write batch report", zap.Error(err))
	} else {
		out.ReportPath = path
	}

	return nil, out, nil
}

// FindSymbol resolves a selector to its declaration. A selector that matches
// nothing returns found=false rather than an error.
func (s *RefactorService) FindSymbol(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FindSymbolInput,
) (*mcp.CallToolResult, FindSymbolOutput, error) {
	sel, err := selectorFrom(input.Name, input.Kind, input.FilePath, input.ParentName, input.ParentKind)
	if err != nil {
		return nil, FindSymbolOutput{}, err
	}

	project, err := s.load(ctx, input.ProjectRoot)
	if err != nil {
		return nil, FindSymbolOutput{}, err
	}

	decl, err := refactor.NewFinder(project).Resolve(sel)
	if err != nil {
		return nil, FindSymbolOutput{Found: false}, nil
	}

	info := SymbolInfo{
		Name:      decl.Name,
		Kind:      string(decl.Kind),
		FilePath:  decl.FilePath,
		Exported:  decl.Exported,
		StartLine: decl.StartLine,
	}
	if decl.Parent != nil {
		info.Parent = decl.Parent.Name
	}
	return nil, FindSymbolOutput{Found: true, Declaration: info}, nil
}

// ListReferences classifies every usage site of a declaration project-wide.
func (s *RefactorService) ListReferences(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListReferencesInput,
) (*mcp.CallToolResult, ListReferencesOutput, error) {
	sel, err := selectorFrom(input.Name, input.Kind, input.FilePath, input.ParentName, input.ParentKind)
	if err != nil {
		return nil, ListReferencesOutput{}, err
	}

	project, err := s.load(ctx, input.ProjectRoot)
	if err != nil {
		return nil, ListReferencesOutput{}, err
	}

	decl, err := refactor.NewFinder(project).Resolve(sel)
	if err != nil {
		return nil, ListReferencesOutput{}, err
	}

	refs := refactor.NewClassifier(project).Classify(decl)
	return nil, ListReferencesOutput{
		References: refs,
		External:   len(refactor.External(refs)),
		Total:      len(refs),
	}, nil
}

// selectorFrom validates the flat tool-input fields into a Selector.
func selectorFrom(name, kind, filePath, parentName, parentKind string) (refactor.Selector, error) {
	if name == "" || kind == "" || filePath == "" {
		return refactor.Selector{}, fmt.Errorf("name, kind, and filePath are required")
	}
	sel := refactor.Selector{
		Type:     "identifier",
		Name:     name,
		Kind:     source.SymbolKind(kind),
		FilePath: filePath,
	}
	if parentName != "" {
		sel.Parent = &refactor.ParentSelector{
			Name: parentName,
			Kind: source.SymbolKind(parentKind),
		}
	}
	return sel, nil
}
