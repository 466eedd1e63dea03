package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_RelativeSpecifiers(t *testing.T) {
	r := NewResolver(t.TempDir(), []string{
		"src/app.ts",
		"src/utils.ts",
		"src/components/Button.tsx",
		"src/lib/index.ts",
	})

	cases := []struct {
		specifier string
		fromFile  string
		want      string
	}{
		{"./utils", "src/app.ts", "src/utils.ts"},
		{"./utils.ts", "src/app.ts", "src/utils.ts"},
		{"./components/Button", "src/app.ts", "src/components/Button.tsx"},
		{"./lib", "src/app.ts", "src/lib/index.ts"},
		{"../utils", "src/components/Button.tsx", "src/utils.ts"},
	}
	for _, tc := range cases {
		got, ok := r.Resolve(tc.specifier, tc.fromFile)
		require.True(t, ok, "%s from %s", tc.specifier, tc.fromFile)
		assert.Equal(t, tc.want, got)
	}

	_, ok := r.Resolve("./missing", "src/app.ts")
	assert.False(t, ok)
	_, ok = r.Resolve("lodash", "src/app.ts")
	assert.False(t, ok, "external packages are not project files")
}

func TestResolver_SpecifierFor(t *testing.T) {
	r := NewResolver(t.TempDir(), nil)

	assert.Equal(t, "./utils", r.SpecifierFor("src/app.ts", "src/utils.ts"))
	assert.Equal(t, "./components/Button", r.SpecifierFor("src/app.ts", "src/components/Button.tsx"))
	assert.Equal(t, "../utils", r.SpecifierFor("src/components/Button.tsx", "src/utils.ts"))
	assert.Equal(t, "./lib", r.SpecifierFor("src/app.ts", "src/lib/index.ts"))
}

func TestResolver_AddRegistersNewFile(t *testing.T) {
	r := NewResolver(t.TempDir(), []string{"src/app.ts"})

	_, ok := r.Resolve("./fresh", "src/app.ts")
	require.False(t, ok)

	r.Add("src/fresh.ts")
	got, ok := r.Resolve("./fresh", "src/app.ts")
	require.True(t, ok)
	assert.Equal(t, "src/fresh.ts", got)
}

func TestResolver_Workspaces(t *testing.T) {
	root := t.TempDir()
	write := func(rel, content string) {
		t.Helper()
		abs := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}

	write("package.json", `{"workspaces": ["packages/*"]}`)
	write("packages/util/package.json", `{"name": "@acme/util"}`)
	write("packages/util/src/index.ts", "export const u = 1;\n")
	write("packages/util/src/deep.ts", "export const d = 2;\n")

	r := NewResolver(root, []string{
		"packages/util/src/index.ts",
		"packages/util/src/deep.ts",
		"apps/web/main.ts",
	})

	got, ok := r.Resolve("@acme/util", "apps/web/main.ts")
	require.True(t, ok)
	assert.Equal(t, "packages/util/src/index.ts", got)

	got, ok = r.Resolve("@acme/util/deep", "apps/web/main.ts")
	require.True(t, ok)
	assert.Equal(t, "packages/util/src/deep.ts", got)

	_, ok = r.Resolve("@acme/other", "apps/web/main.ts")
	assert.False(t, ok)
}
