package refactor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dusk-indust/reshape/internal/source"
)

func TestEngine_SequentialSuccess(t *testing.T) {
	p := loadTree(t, map[string]string{
		"a.ts": "export function one(): number { return 1; }\n",
	})
	engine := NewEngine(p, zap.NewNop())

	result := engine.Execute(context.Background(), BatchRequest{Operations: []Operation{
		RenameOp{Selector: sel("one", source.KindFunction, "a.ts"), NewName: "first", Scope: "project"},
		MoveOp{Selector: sel("first", source.KindFunction, "a.ts"), TargetFilePath: "b.ts"},
		RemoveOp{Selector: sel("first", source.KindFunction, "b.ts")},
	}})

	assert.True(t, result.Success)
	assert.Equal(t, -1, result.FailedIndex)
	require.Len(t, result.Results, 3)
	for i, res := range result.Results {
		assert.True(t, res.Success, "operation %d", i)
	}

	// Later operations observed earlier mutations: the rename's output was
	// movable, the move's output removable.
	assert.NotContains(t, fileText(t, p, "a.ts"), "first")
	assert.NotContains(t, fileText(t, p, "b.ts"), "first")
	assert.ElementsMatch(t, []string{"a.ts", "b.ts"}, result.AffectedFiles())
}

func TestEngine_FailFastNoRollback(t *testing.T) {
	p := loadTree(t, map[string]string{
		"a.ts": "export function one(): number { return 1; }\n",
	})
	engine := NewEngine(p, zap.NewNop())

	result := engine.Execute(context.Background(), BatchRequest{Operations: []Operation{
		RenameOp{Selector: sel("one", source.KindFunction, "a.ts"), NewName: "first", Scope: "project"},
		RemoveOp{Selector: sel("ghost", source.KindFunction, "a.ts")},
		RenameOp{Selector: sel("first", source.KindFunction, "a.ts"), NewName: "never", Scope: "project"},
	}})

	assert.False(t, result.Success)
	assert.Equal(t, 1, result.FailedIndex)
	assert.Contains(t, result.Error, "operation 1")
	assert.Contains(t, result.Error, "ghost")

	// The failing operation is the last attempted; the third never ran.
	require.Len(t, result.Results, 2)
	assert.True(t, result.Results[0].Success)
	assert.False(t, result.Results[1].Success)

	// No rollback: the first rename stays applied on disk.
	assert.Contains(t, diskText(t, p, "a.ts"), "first")
	assert.NotContains(t, fileText(t, p, "a.ts"), "never")
}

func TestEngine_BlockedRemoveMutatesNothing(t *testing.T) {
	p := loadTree(t, map[string]string{
		"utils.ts": "export function helper(): number { return 1; }\n",
		"app.ts":   "import { helper } from './utils';\n\nexport const x = helper();\n",
	})
	before := fileText(t, p, "utils.ts")
	engine := NewEngine(p, zap.NewNop())

	result := engine.Execute(context.Background(), BatchRequest{Operations: []Operation{
		RemoveOp{Selector: sel("helper", source.KindFunction, "utils.ts")},
	}})

	assert.False(t, result.Success)
	require.Len(t, result.Results, 1)
	assert.Empty(t, result.Results[0].AffectedFiles)
	assert.Equal(t, before, fileText(t, p, "utils.ts"))
}

// A long mixed batch against destinations that are cleared by earlier
// operations in the same batch: every later lookup must observe the earlier
// mutations, with no spurious naming conflicts.
func TestEngine_MixedBatchWithPreclearedDestinations(t *testing.T) {
	p := loadTree(t, map[string]string{
		"src/a.ts": `export function f1(): number { return 1; }

export function f2(): number { return 2; }

export function f3(): number { return 3; }

export function f4(): number { return 4; }
`,
		"src/b.ts": `export const c1 = 1;

export const c2 = 2;

export const c3 = 3;
`,
		"src/old1.ts": "export function g1(): number { return 10; }\n",
		"src/old2.ts": "export function g3(): number { return 30; }\n",
	})
	engine := NewEngine(p, zap.NewNop())

	fn := source.KindFunction
	v := source.KindVariable
	ops := []Operation{
		// Clear both destinations first.
		RemoveOp{Selector: sel("g1", fn, "src/old1.ts"), Reason: "clear destination"},
		RemoveOp{Selector: sel("g3", fn, "src/old2.ts"), Reason: "clear destination"},
		// Rename into the names the destinations just gave up.
		RenameOp{Selector: sel("f1", fn, "src/a.ts"), NewName: "g1", Scope: "project"},
		RenameOp{Selector: sel("f2", fn, "src/a.ts"), NewName: "g2", Scope: "project"},
		RenameOp{Selector: sel("f3", fn, "src/a.ts"), NewName: "g3", Scope: "project"},
		// Moves see the cleared destinations, not pre-batch state.
		MoveOp{Selector: sel("g1", fn, "src/a.ts"), TargetFilePath: "src/old1.ts"},
		MoveOp{Selector: sel("g2", fn, "src/a.ts"), TargetFilePath: "src/old1.ts"},
		MoveOp{Selector: sel("g3", fn, "src/a.ts"), TargetFilePath: "src/old2.ts"},
		RenameOp{Selector: sel("c1", v, "src/b.ts"), NewName: "k1", Scope: "project"},
		MoveOp{Selector: sel("k1", v, "src/b.ts"), TargetFilePath: "src/old2.ts"},
		RemoveOp{Selector: sel("f4", fn, "src/a.ts"), Reason: "obsolete"},
		RenameOp{Selector: sel("c2", v, "src/b.ts"), NewName: "k2", Scope: "project"},
		RenameOp{Selector: sel("c3", v, "src/b.ts"), NewName: "k3", Scope: "project"},
		MoveOp{Selector: sel("k2", v, "src/b.ts"), TargetFilePath: "src/old1.ts"},
		MoveOp{Selector: sel("k3", v, "src/b.ts"), TargetFilePath: "src/old2.ts"},
		// Operate on symbols already relocated within this batch.
		RenameOp{Selector: sel("g1", fn, "src/old1.ts"), NewName: "h1", Scope: "project"},
		RenameOp{Selector: sel("g3", fn, "src/old2.ts"), NewName: "h3", Scope: "project"},
	}
	require.Len(t, ops, 17)

	result := engine.Execute(context.Background(), BatchRequest{Operations: ops})

	require.True(t, result.Success, "batch error: %s", result.Error)
	require.Len(t, result.Results, 17)
	for i, res := range result.Results {
		assert.True(t, res.Success, "operation %d: %s", i, res.Error)
	}

	a := fileText(t, p, "src/a.ts")
	for _, gone := range []string{"f1", "f2", "f3", "f4", "g1", "g2", "g3"} {
		assert.NotContains(t, a, gone)
	}

	b := fileText(t, p, "src/b.ts")
	for _, gone := range []string{"c1", "c2", "c3", "k1", "k2", "k3"} {
		assert.NotContains(t, b, gone)
	}

	old1 := fileText(t, p, "src/old1.ts")
	assert.Contains(t, old1, "function h1")
	assert.Contains(t, old1, "function g2")
	assert.Contains(t, old1, "const k2 = 2;")

	old2 := fileText(t, p, "src/old2.ts")
	assert.Contains(t, old2, "function h3")
	assert.Contains(t, old2, "const k1 = 1;")
	assert.Contains(t, old2, "const k3 = 3;")
}

func TestEngine_CancelledContextStops(t *testing.T) {
	p := loadTree(t, map[string]string{
		"a.ts": "export const x = 1;\n",
	})
	engine := NewEngine(p, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := engine.Execute(ctx, BatchRequest{Operations: []Operation{
		RenameOp{Selector: sel("x", source.KindVariable, "a.ts"), NewName: "y", Scope: "project"},
	}})

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.FailedIndex)
	assert.Empty(t, result.Results)
	assert.Contains(t, fileText(t, p, "a.ts"), "x")
}
