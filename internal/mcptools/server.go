package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewRefactorMCPServer creates an MCP server with the refactoring tools
// registered.
func NewRefactorMCPServer(svc *RefactorService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "reshape-refactor",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "apply_refactorings",
		Description: "Apply an ordered batch of structural refactoring operations (remove, rename, move) to a TypeScript project. Operations run sequentially; each observes the mutations of earlier ones. Execution stops at the first failure and already-applied operations are not rolled back.",
	}, svc.ApplyRefactorings)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_symbol",
		Description: "Resolve a declaration by name, kind, and file path, with an optional parent discriminator for methods and properties.",
	}, svc.FindSymbol)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_references",
		Description: "Enumerate and classify every usage site of a declaration project-wide: direct identifiers, import specifiers, re-export specifiers, and namespace-qualified accesses. Only external references block a remove.",
	}, svc.ListReferences)

	return server
}

// RunMCPServer starts an HTTP server exposing the refactoring MCP tools.
func RunMCPServer(ctx context.Context, svc *RefactorService, addr string) error {
	server := NewRefactorMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
