package refactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/reshape/internal/source"
)

func classOf(refs []Reference) map[RefClass]int {
	counts := make(map[RefClass]int)
	for _, r := range refs {
		counts[r.Class]++
	}
	return counts
}

func TestClassifier_DeclaringFile(t *testing.T) {
	p := loadTree(t, map[string]string{
		"math.ts": `export function fib(n: number): number {
  return n < 2 ? n : fib(n - 1) + fib(n - 2);
}
`,
	})
	decl, err := NewFinder(p).Resolve(sel("fib", source.KindFunction, "math.ts"))
	require.NoError(t, err)

	refs := NewClassifier(p).Classify(decl)
	counts := classOf(refs)

	assert.Equal(t, 1, counts[RefSelf], "the declaration's own name token")
	assert.Equal(t, 2, counts[RefIntraDeclaration], "recursive calls")
	assert.Zero(t, counts[RefExternal])
	assert.Empty(t, External(refs))
}

func TestClassifier_ExportOnly(t *testing.T) {
	p := loadTree(t, map[string]string{
		"util.ts": `function helper(): void {}

export { helper };
`,
	})
	decl, err := NewFinder(p).Resolve(sel("helper", source.KindFunction, "util.ts"))
	require.NoError(t, err)

	refs := NewClassifier(p).Classify(decl)
	counts := classOf(refs)

	assert.Equal(t, 1, counts[RefSelf])
	assert.Equal(t, 1, counts[RefExportOnly], "the export-list entry")
	assert.Zero(t, counts[RefExternal], "export-only never blocks")
}

func TestClassifier_SameFileUsageIsExternal(t *testing.T) {
	p := loadTree(t, map[string]string{
		"util.ts": `export function helper(): number { return 1; }

export const cached = helper();
`,
	})
	decl, err := NewFinder(p).Resolve(sel("helper", source.KindFunction, "util.ts"))
	require.NoError(t, err)

	refs := NewClassifier(p).Classify(decl)
	ext := External(refs)
	require.Len(t, ext, 1)
	assert.Equal(t, FormIdentifier, ext[0].Form)
	assert.Equal(t, "util.ts", ext[0].FilePath)
}

func TestClassifier_ThisAccesses(t *testing.T) {
	p := loadTree(t, map[string]string{
		"svc.ts": `export class Service {
  run(): number {
    return this.step();
  }

  step(): number {
    return this.step() - 1;
  }
}
`,
	})
	decl, err := NewFinder(p).Resolve(memberSel("step", source.KindMethod, "svc.ts", "Service", source.KindClass))
	require.NoError(t, err)

	refs := NewClassifier(p).Classify(decl)
	counts := classOf(refs)

	assert.Equal(t, 1, counts[RefExternal], "the sibling's call survives a removal")
	assert.Equal(t, 1, counts[RefIntraDeclaration], "the recursive call disappears with the member")
	for _, r := range External(refs) {
		assert.Equal(t, FormNamespaceAccess, r.Form)
	}
}

func TestClassifier_ForeignFileForms(t *testing.T) {
	p := loadTree(t, map[string]string{
		"util.ts":   "export function helper(): number { return 1; }\n",
		"barrel.ts": "export { helper } from './util';\n",
		"app.ts": `import { helper } from './util';

export const x = helper() + helper();
`,
		"ns.ts": `import * as U from './util';

export const y = U.helper();
`,
		"aliased.ts": "export { helper as assist } from './barrel';\n",
	})
	decl, err := NewFinder(p).Resolve(sel("helper", source.KindFunction, "util.ts"))
	require.NoError(t, err)

	refs := NewClassifier(p).Classify(decl)
	ext := External(refs)

	forms := make(map[RefForm]int)
	for _, r := range ext {
		forms[r.Form]++
	}

	// app.ts: one import specifier plus two call sites; ns.ts: one namespace
	// access; barrel.ts and aliased.ts: one re-export specifier each.
	assert.Equal(t, 1, forms[FormImportSpecifier])
	assert.Equal(t, 2, forms[FormIdentifier])
	assert.Equal(t, 1, forms[FormNamespaceAccess])
	assert.Equal(t, 2, forms[FormExportSpecifier])

	files := ReferencingFiles(ext)
	assert.ElementsMatch(t, []string{"app.ts", "barrel.ts", "ns.ts", "aliased.ts"}, files)
}

func TestConflictChecker(t *testing.T) {
	p := loadTree(t, map[string]string{
		"a.ts": "export function taken(): void {}\n",
		"b.ts": "export function other(): void {}\n",
	})
	checker := NewConflictChecker(p)

	t.Run("collision", func(t *testing.T) {
		err := checker.Check("taken", "a.ts")
		var conflict *NamingConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Contains(t, err.Error(), "Naming conflict")
		assert.Contains(t, err.Error(), "taken")
	})

	t.Run("clear destination", func(t *testing.T) {
		assert.NoError(t, checker.Check("taken", "b.ts"))
	})

	t.Run("missing file is clear", func(t *testing.T) {
		assert.NoError(t, checker.Check("taken", "new/file.ts"))
	})

	t.Run("re-reads current state after mutation", func(t *testing.T) {
		f, _ := p.File("a.ts")
		d := f.TopLevel("taken")
		require.NotNil(t, d)
		require.NoError(t, p.Mutate("a.ts", []source.Edit{source.Remove(f.WidenStatement(d.StmtSpan))}))

		assert.NoError(t, checker.Check("taken", "a.ts"), "emptied destination must be clear")
	})
}
