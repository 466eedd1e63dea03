package source

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// Resolver maps module specifiers ("./utils", "@acme/db") to repo-relative
// file paths, and back again. It is built from the set of known project files
// plus any npm workspace metadata found at the repository root, and probes
// the file set only — no filesystem I/O after construction.
type Resolver struct {
	repoRoot   string
	fileSet    map[string]bool
	workspaces map[string]string // package name -> repo-relative directory
}

// tsExtensions is the probe ladder applied to an extensionless import target.
var tsExtensions = []string{".ts", ".tsx", "/index.ts", "/index.tsx"}

// NewResolver builds a Resolver over the known repo-relative file paths.
func NewResolver(repoRoot string, knownFiles []string) *Resolver {
	r := &Resolver{
		repoRoot:   repoRoot,
		fileSet:    make(map[string]bool, len(knownFiles)),
		workspaces: make(map[string]string),
	}
	for _, f := range knownFiles {
		r.fileSet[f] = true
	}
	r.scanWorkspaces()
	return r
}

// Add registers a newly created file with the resolver.
func (r *Resolver) Add(path string) {
	r.fileSet[path] = true
}

// Resolve maps a module specifier, as written in fromFile, to a repo-relative
// file path. External packages and unresolvable specifiers return false.
func (r *Resolver) Resolve(specifier, fromFile string) (string, bool) {
	if strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") {
		base := filepath.Clean(filepath.Join(filepath.Dir(fromFile), specifier))
		return r.probe(base)
	}
	return r.resolveWorkspace(specifier)
}

// resolveWorkspace resolves bare specifiers against npm workspace packages:
// the package name maps to its directory, an optional subpath is probed
// inside it (directly and under src/).
func (r *Resolver) resolveWorkspace(specifier string) (string, bool) {
	if dir, ok := r.workspaces[specifier]; ok {
		for _, entry := range []string{filepath.Join(dir, "src", "index"), filepath.Join(dir, "index")} {
			if resolved, ok := r.probe(entry); ok {
				return resolved, true
			}
		}
		return "", false
	}

	for pkg, dir := range r.workspaces {
		rest, ok := strings.CutPrefix(specifier, pkg+"/")
		if !ok {
			continue
		}
		if resolved, ok := r.probe(filepath.Join(dir, rest)); ok {
			return resolved, true
		}
		if resolved, ok := r.probe(filepath.Join(dir, "src", rest)); ok {
			return resolved, true
		}
	}
	return "", false
}

// SpecifierFor produces the relative, extensionless module specifier that
// fromFile should use to import toFile.
func (r *Resolver) SpecifierFor(fromFile, toFile string) string {
	rel, err := filepath.Rel(filepath.Dir(fromFile), toFile)
	if err != nil {
		rel = toFile
	}
	rel = filepath.ToSlash(rel)

	for _, ext := range []string{".tsx", ".ts"} {
		if cut, ok := strings.CutSuffix(rel, ext); ok {
			rel = cut
			break
		}
	}
	rel = strings.TrimSuffix(rel, "/index")
	if rel == "" {
		rel = "."
	}
	if !strings.HasPrefix(rel, ".") {
		rel = "./" + rel
	}
	return rel
}

// probe checks basePath, then basePath with each extension, against the known
// file set.
func (r *Resolver) probe(basePath string) (string, bool) {
	if r.fileSet[basePath] {
		return basePath, true
	}
	for _, ext := range tsExtensions {
		if candidate := basePath + ext; r.fileSet[candidate] {
			return candidate, true
		}
	}
	return "", false
}

// --- Workspace scanning ---

// rootPackageJSON is the subset of package.json the resolver reads.
type rootPackageJSON struct {
	Workspaces json.RawMessage `json:"workspaces"`
}

type memberPackageJSON struct {
	Name string `json:"name"`
}

// scanWorkspaces reads the repository root package.json and records each
// workspace package's name and directory.
func (r *Resolver) scanWorkspaces() {
	data, err := os.ReadFile(filepath.Join(r.repoRoot, "package.json"))
	if err != nil {
		return
	}

	var pkg rootPackageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return
	}

	for _, pattern := range workspacePatterns(pkg.Workspaces) {
		matches, err := filepath.Glob(filepath.Join(r.repoRoot, pattern))
		if err != nil {
			continue
		}
		for _, dir := range matches {
			info, err := os.Stat(dir)
			if err != nil || !info.IsDir() {
				continue
			}
			memberData, err := os.ReadFile(filepath.Join(dir, "package.json"))
			if err != nil {
				continue
			}
			var member memberPackageJSON
			if err := json.Unmarshal(memberData, &member); err != nil || member.Name == "" {
				continue
			}
			if rel, err := filepath.Rel(r.repoRoot, dir); err == nil {
				r.workspaces[member.Name] = rel
			}
		}
	}
}

// workspacePatterns accepts both forms of the workspaces field: a plain array
// of globs, or an object with a "packages" key.
func workspacePatterns(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var arr []string
	if err := json.Unmarshal(raw, &arr); err == nil {
		return arr
	}

	var obj struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Packages
	}
	return nil
}
