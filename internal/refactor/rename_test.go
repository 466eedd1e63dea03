package refactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/reshape/internal/source"
)

func TestRename_DeclaringFileAndUsages(t *testing.T) {
	p := loadTree(t, map[string]string{
		"math.ts": `export function fib(n: number): number {
  return n < 2 ? n : fib(n - 1) + fib(n - 2);
}

export const tenth = fib(10);
`,
	})

	affected, err := NewRenameExecutor(p).Apply(RenameOp{
		Selector: sel("fib", source.KindFunction, "math.ts"),
		NewName:  "fibonacci",
		Scope:    "project",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"math.ts"}, affected)

	text := fileText(t, p, "math.ts")
	assert.NotContains(t, text, "fib(")
	assert.Contains(t, text, "export function fibonacci(")
	assert.Contains(t, text, "fibonacci(n - 1) + fibonacci(n - 2)")
	assert.Contains(t, text, "fibonacci(10)")
}

// Rename propagates through every reference form: a direct import, a barrel
// re-export, an aliased re-export (alias kept), and a namespace access.
func TestRename_AcrossReferenceForms(t *testing.T) {
	p := loadTree(t, map[string]string{
		"strings.ts": "export function formatString(s: string): string {\n  return s.trim();\n}\n",
		"barrel.ts":  "export { formatString } from './strings';\n",
		"app.ts": `import { formatString } from './strings';

export const out = formatString(' x ');
`,
		"ns.ts": `import * as strings from './strings';

export const viaNs = strings.formatString(' y ');
`,
		"aliased.ts": "export { formatString as fmt } from './strings';\n",
	})

	affected, err := NewRenameExecutor(p).Apply(RenameOp{
		Selector: sel("formatString", source.KindFunction, "strings.ts"),
		NewName:  "formatText",
		Scope:    "project",
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"strings.ts", "barrel.ts", "app.ts", "ns.ts", "aliased.ts"}, affected)

	for _, path := range []string{"strings.ts", "barrel.ts", "app.ts", "ns.ts", "aliased.ts"} {
		text := fileText(t, p, path)
		assert.NotContains(t, text, "formatString", path)
		assert.Contains(t, text, "formatText", path)
		assert.Equal(t, text, diskText(t, p, path), "%s written through", path)
	}

	// The pre-existing alias is untouched.
	assert.Contains(t, fileText(t, p, "aliased.ts"), "formatText as fmt")
}

// A consumer importing the alias of an aliased re-export binds through a name
// the rename does not change; rewriting its specifier would dangle it.
func TestRename_AliasMediatedImportUntouched(t *testing.T) {
	p := loadTree(t, map[string]string{
		"strings.ts": "export function formatString(s: string): string {\n  return s.trim();\n}\n",
		"aliased.ts": "export { formatString as fmt } from './strings';\n",
		"consumer.ts": `import { fmt } from './aliased';

export const out = fmt(' x ');
`,
	})
	before := fileText(t, p, "consumer.ts")

	affected, err := NewRenameExecutor(p).Apply(RenameOp{
		Selector: sel("formatString", source.KindFunction, "strings.ts"),
		NewName:  "formatText",
		Scope:    "project",
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"strings.ts", "aliased.ts"}, affected)

	assert.Contains(t, fileText(t, p, "aliased.ts"), "export { formatText as fmt } from './strings';")
	assert.Equal(t, before, fileText(t, p, "consumer.ts"), "the alias still resolves through the barrel")
	assert.Equal(t, before, diskText(t, p, "consumer.ts"))
}

func TestRename_ObjectShorthandKeepsKey(t *testing.T) {
	p := loadTree(t, map[string]string{
		"cfg.ts": `export const port = 8137;

export const settings = { port };
`,
	})

	_, err := NewRenameExecutor(p).Apply(RenameOp{
		Selector: sel("port", source.KindVariable, "cfg.ts"),
		NewName:  "listenPort",
		Scope:    "project",
	})
	require.NoError(t, err)

	text := fileText(t, p, "cfg.ts")
	assert.Contains(t, text, "export const listenPort = 8137;")
	assert.Contains(t, text, "{ port: listenPort }", "the shorthand expands so the property key survives")
}

func TestRename_ImportAliasKeepsLocalName(t *testing.T) {
	p := loadTree(t, map[string]string{
		"utils.ts": "export function helper(): number { return 1; }\n",
		"app.ts": `import { helper as h } from './utils';

export const x = h();
`,
	})

	_, err := NewRenameExecutor(p).Apply(RenameOp{
		Selector: sel("helper", source.KindFunction, "utils.ts"),
		NewName:  "assist",
		Scope:    "project",
	})
	require.NoError(t, err)

	text := fileText(t, p, "app.ts")
	assert.Contains(t, text, "import { assist as h } from './utils';")
	assert.Contains(t, text, "x = h()", "aliased local usages stay on the alias")
}

func TestRename_ClassMethodRewritesThisAccesses(t *testing.T) {
	p := loadTree(t, map[string]string{
		"svc.ts": `export class Service {
  run(): number {
    return this.step() + this.step();
  }

  step(): number { return 1; }
}
`,
	})

	_, err := NewRenameExecutor(p).Apply(RenameOp{
		Selector: memberSel("step", source.KindMethod, "svc.ts", "Service", source.KindClass),
		NewName:  "phase",
		Scope:    "project",
	})
	require.NoError(t, err)

	text := fileText(t, p, "svc.ts")
	assert.Contains(t, text, "phase(): number { return 1; }")
	assert.Contains(t, text, "this.phase() + this.phase()")
	assert.NotContains(t, text, "step")
}

func TestRename_RoundTripRestoresText(t *testing.T) {
	files := map[string]string{
		"strings.ts": "export function formatString(s: string): string {\n  return s.trim();\n}\n",
		"barrel.ts":  "export { formatString as fmt } from './strings';\n",
		"app.ts": `import { formatString } from './strings';

export const out = formatString(' x ');
`,
	}
	p := loadTree(t, files)

	before := make(map[string]string)
	for path := range files {
		before[path] = fileText(t, p, path)
	}

	_, err := NewRenameExecutor(p).Apply(RenameOp{
		Selector: sel("formatString", source.KindFunction, "strings.ts"),
		NewName:  "formatText",
		Scope:    "project",
	})
	require.NoError(t, err)

	_, err = NewRenameExecutor(p).Apply(RenameOp{
		Selector: sel("formatText", source.KindFunction, "strings.ts"),
		NewName:  "formatString",
		Scope:    "project",
	})
	require.NoError(t, err)

	for path, want := range before {
		assert.Equal(t, want, fileText(t, p, path), path)
		assert.Equal(t, want, diskText(t, p, path), path)
	}
}

func TestRename_NotFound(t *testing.T) {
	p := loadTree(t, map[string]string{
		"a.ts": "export const x = 1;\n",
	})

	_, err := NewRenameExecutor(p).Apply(RenameOp{
		Selector: sel("ghost", source.KindFunction, "a.ts"),
		NewName:  "phantom",
	})
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}
