package refactor

import "github.com/dusk-indust/reshape/internal/source"

// Finder resolves selectors to declarations against the project's current
// state. Resolution is deterministic: the first structural match in document
// order wins.
type Finder struct {
	project *source.Project
}

// NewFinder creates a Finder over the given project.
func NewFinder(project *source.Project) *Finder {
	return &Finder{project: project}
}

// Resolve locates the declaration a selector names. Nested kinds (method,
// property) match the parent discriminator when one is given; without a
// parent the first name/kind match in the file wins. A failed lookup
// returns NotFoundError.
func (f *Finder) Resolve(sel Selector) (*source.Declaration, error) {
	file, ok := f.project.File(sel.FilePath)
	if !ok {
		return nil, &NotFoundError{Name: sel.Name, FilePath: sel.FilePath}
	}

	decls := file.Decls()
	for i := range decls {
		d := &decls[i]
		if d.Name != sel.Name || d.Kind != sel.Kind {
			continue
		}
		if sel.Parent != nil {
			if d.Parent == nil || d.Parent.Name != sel.Parent.Name || d.Parent.Kind != sel.Parent.Kind {
				continue
			}
		}
		return d, nil
	}

	return nil, &NotFoundError{Name: sel.Name, FilePath: sel.FilePath}
}
