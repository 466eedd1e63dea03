package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Options controls project loading.
type Options struct {
	// ExcludeDirs are directory names skipped during the walk, in addition
	// to .git and node_modules.
	ExcludeDirs []string
}

// Project holds every loaded source file of one repository, keyed by
// repo-relative path. Loading parses files concurrently; after that the
// project is single-writer: mutations run one at a time and each one is
// written through to disk before it returns, so every later read observes
// the cumulative effect of every earlier mutation.
type Project struct {
	root     string
	files    map[string]*File
	resolver *Resolver
}

// LoadProject walks root, reads and parses every supported source file, and
// builds the module resolver. Unparseable files abort the load: refactoring
// against a partially loaded project would silently miss references.
func LoadProject(ctx context.Context, root string, opts Options) (*Project, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", root, err)
	}

	skip := map[string]bool{".git": true, "node_modules": true}
	for _, d := range opts.ExcludeDirs {
		skip[d] = true
	}

	var paths []string
	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}
		if d.IsDir() {
			if skip[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := DetectLanguage(path); !ok {
			return nil
		}
		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk %s: %w", absRoot, walkErr)
	}
	sort.Strings(paths)

	files := make(map[string]*File, len(paths))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, rel := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(filepath.Join(absRoot, rel))
			if err != nil {
				return fmt.Errorf("read %s: %w", rel, err)
			}
			f, err := NewFile(rel, data)
			if err != nil {
				return fmt.Errorf("parse %s: %w", rel, err)
			}
			mu.Lock()
			files[rel] = f
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Project{
		root:     absRoot,
		files:    files,
		resolver: NewResolver(absRoot, paths),
	}, nil
}

// Root returns the absolute project root directory.
func (p *Project) Root() string { return p.root }

// Resolver returns the module specifier resolver for this project.
func (p *Project) Resolver() *Resolver { return p.resolver }

// File returns the loaded file at the given repo-relative path.
func (p *Project) File(path string) (*File, bool) {
	f, ok := p.files[filepath.Clean(path)]
	return f, ok
}

// Paths returns every loaded file path in sorted order.
func (p *Project) Paths() []string {
	paths := make([]string, 0, len(p.files))
	for path := range p.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Files returns every loaded file in path order.
func (p *Project) Files() []*File {
	paths := p.Paths()
	files := make([]*File, 0, len(paths))
	for _, path := range paths {
		files = append(files, p.files[path])
	}
	return files
}

// CreateFile adds an empty source file at the given repo-relative path,
// persisting it immediately so the on-disk tree matches the model.
func (p *Project) CreateFile(path string) (*File, error) {
	path = filepath.Clean(path)
	if _, ok := p.files[path]; ok {
		return nil, fmt.Errorf("%s: already exists", path)
	}
	f, err := NewFile(path, nil)
	if err != nil {
		return nil, err
	}

	abs := filepath.Join(p.root, path)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir for %s: %w", path, err)
	}
	if err := os.WriteFile(abs, nil, 0o644); err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}

	p.files[path] = f
	p.resolver.Add(path)
	return f, nil
}

// Save writes a file's current text to disk.
func (p *Project) Save(path string) error {
	f, ok := p.File(path)
	if !ok {
		return fmt.Errorf("%s: not loaded", path)
	}
	abs := filepath.Join(p.root, f.path)
	if err := os.WriteFile(abs, f.text, 0o644); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// Mutate applies edits to a file, re-parses it, and writes it through to
// disk. This is the only mutation entry point, which keeps the
// read-after-write guarantee in one place.
func (p *Project) Mutate(path string, edits []Edit) error {
	f, ok := p.File(path)
	if !ok {
		return fmt.Errorf("%s: not loaded", path)
	}
	if err := f.Apply(edits); err != nil {
		return err
	}
	return p.Save(path)
}

// AppendDecl appends declaration text to a file and writes it through.
func (p *Project) AppendDecl(path, declText string) error {
	f, ok := p.File(path)
	if !ok {
		return fmt.Errorf("%s: not loaded", path)
	}
	if err := f.Append(declText); err != nil {
		return err
	}
	return p.Save(path)
}

// --- Export binding resolution ---

// ResolveExport follows export wiring to find the declaration behind the
// name that filePath exposes as extName. It traverses local export lists,
// aliased and plain re-exports, and wildcard re-exports, with a cycle guard.
// It returns the declaring file and the declaration's own name.
func (p *Project) ResolveExport(filePath, extName string) (declFile, declName string, ok bool) {
	return p.resolveExport(filePath, extName, make(map[string]bool))
}

func (p *Project) resolveExport(filePath, extName string, visited map[string]bool) (string, string, bool) {
	key := filePath + ":" + extName
	if visited[key] {
		return "", "", false
	}
	visited[key] = true

	f, ok := p.File(filePath)
	if !ok {
		return "", "", false
	}

	// A top-level declaration with this name wins outright.
	if d := f.TopLevel(extName); d != nil {
		return filePath, d.Name, true
	}

	for _, ex := range f.Exports() {
		if ex.IsReexport() {
			target, ok := p.resolver.Resolve(ex.Module, filePath)
			if !ok {
				continue
			}
			for _, entry := range ex.Named {
				if entry.Exported() == extName {
					if df, dn, ok := p.resolveExport(target, entry.Name, visited); ok {
						return df, dn, true
					}
				}
			}
			if ex.Wildcard {
				if df, dn, ok := p.resolveExport(target, extName, visited); ok {
					return df, dn, true
				}
			}
			continue
		}

		// Local export list: "export {orig as extName}" binds a local
		// declaration under a different exported name.
		for _, entry := range ex.Named {
			if entry.Exported() == extName && entry.Name != extName {
				if d := f.TopLevel(entry.Name); d != nil {
					return filePath, d.Name, true
				}
			}
		}
	}

	return "", "", false
}

// ResolveImported maps one named-import entry of fromFile back to its
// declaration, following barrel re-export chains.
func (p *Project) ResolveImported(fromFile string, imp ImportStmt, importedName string) (declFile, declName string, ok bool) {
	target, ok := p.resolver.Resolve(imp.Module, fromFile)
	if !ok {
		return "", "", false
	}
	return p.ResolveExport(target, importedName)
}

// NamespaceBinding describes a local name that exposes an entire module's
// exports ("import * as NS", or a named import of an "export * as ns"
// re-export).
type NamespaceBinding struct {
	Local      string // the qualifying identifier in this file
	TargetFile string // repo-relative path of the module it exposes
}

// NamespaceBindings returns every namespace binding in the given file.
func (p *Project) NamespaceBindings(f *File) []NamespaceBinding {
	var bindings []NamespaceBinding

	for _, imp := range f.Imports() {
		target, ok := p.resolver.Resolve(imp.Module, f.Path())
		if !ok {
			continue
		}
		if imp.Namespace != "" {
			bindings = append(bindings, NamespaceBinding{Local: imp.Namespace, TargetFile: target})
		}
		// A named import can bind a namespace re-exported by the target:
		// import {ns} from './barrel' where barrel has "export * as ns from".
		for _, entry := range imp.Named {
			if nsTarget, ok := p.namespaceExportTarget(target, entry.Name); ok {
				bindings = append(bindings, NamespaceBinding{Local: entry.Local(), TargetFile: nsTarget})
			}
		}
	}

	return bindings
}

// namespaceExportTarget checks whether filePath re-exports a whole module
// under the given name ("export * as name from 'm'").
func (p *Project) namespaceExportTarget(filePath, name string) (string, bool) {
	f, ok := p.File(filePath)
	if !ok {
		return "", false
	}
	for _, ex := range f.Exports() {
		if ex.Namespace == name && ex.IsReexport() {
			return p.resolver.Resolve(ex.Module, filePath)
		}
	}
	return "", false
}
