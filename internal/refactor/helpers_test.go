package refactor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/reshape/internal/source"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// loadTree materializes a file map under a temp root and loads it as a
// project.
func loadTree(t *testing.T, files map[string]string) *source.Project {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}
	p, err := source.LoadProject(context.Background(), root, source.Options{})
	require.NoError(t, err)
	return p
}

// fileText returns the current model text of one project file.
func fileText(t *testing.T, p *source.Project, path string) string {
	t.Helper()
	f, ok := p.File(path)
	require.True(t, ok, "file %s should be loaded", path)
	return f.String()
}

// diskText reads the file straight from disk, bypassing the model.
func diskText(t *testing.T, p *source.Project, path string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(p.Root(), path))
	require.NoError(t, err)
	return string(data)
}

// sel builds a top-level selector.
func sel(name string, kind source.SymbolKind, filePath string) Selector {
	return Selector{Type: "identifier", Name: name, Kind: kind, FilePath: filePath}
}

// memberSel builds a selector with a parent discriminator.
func memberSel(name string, kind source.SymbolKind, filePath, parentName string, parentKind source.SymbolKind) Selector {
	s := sel(name, kind, filePath)
	s.Parent = &ParentSelector{Name: parentName, Kind: parentKind}
	return s
}

// topLevelCount counts addressable top-level declarations across the project.
func topLevelCount(p *source.Project) int {
	n := 0
	for _, f := range p.Files() {
		n += len(f.TopLevelNames())
	}
	return n
}
