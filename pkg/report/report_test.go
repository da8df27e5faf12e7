package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karpierz/lcov/pkg/summary"
	"github.com/karpierz/lcov/pkg/tracefile"
)

var fixedTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

// testProject writes a small source tree and returns its model: one
// file directly under the root and one in a subdirectory.
func testProject(t *testing.T) (root string, model *tracefile.Model) {
	t.Helper()
	root = t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.c"),
		[]byte("int main(void) {\n\treturn 0;\n}\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "util.c"),
		[]byte("int add(int a, int b) {\n\treturn a + b;\n}\n"), 0644))

	model = tracefile.NewModel()
	mainFile := model.FileFor(filepath.ToSlash(filepath.Join(root, "main.c")))
	mainFile.Lines[1] = tracefile.LineRecord{Line: 1, Count: 2}
	mainFile.Lines[2] = tracefile.LineRecord{Line: 2, Count: 0}
	mainFile.Funcs["main"] = tracefile.FuncRecord{Name: "main", StartLine: 1, Count: 2}

	utilFile := model.FileFor(filepath.ToSlash(filepath.Join(root, "src", "util.c")))
	utilFile.Lines[1] = tracefile.LineRecord{Line: 1, Count: 7}
	utilFile.Lines[2] = tracefile.LineRecord{Line: 2, Count: 7}
	utilFile.Funcs["add"] = tracefile.FuncRecord{Name: "add", StartLine: 1, Count: 7}

	return root, model
}

func generate(t *testing.T, root string, model *tracefile.Model, outputDir string) []Warning {
	t.Helper()
	cfg := summary.DefaultConfig()
	tree := summary.Build(model, root, cfg)
	warnings, err := Generate(model, tree, Options{
		Config:      cfg,
		SourceRoot:  root,
		OutputDir:   outputDir,
		Title:       "Test Project",
		GeneratedAt: fixedTime,
	})
	require.NoError(t, err)
	return warnings
}

func TestGeneratePageSet(t *testing.T) {
	t.Parallel()

	root, model := testProject(t)
	out := t.TempDir()
	warnings := generate(t, root, model, out)
	assert.Empty(t, warnings)

	// Project index, one index per directory, one page per file.
	for _, page := range []string{
		"index.html",
		"root/index.html",
		"root/main.c.gcov.html",
		"src/index.html",
		"src/util.c.gcov.html",
	} {
		info, err := os.Stat(filepath.Join(out, filepath.FromSlash(page)))
		require.NoError(t, err, "missing page %s", page)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestGenerateProjectIndexContent(t *testing.T) {
	t.Parallel()

	root, model := testProject(t)
	out := t.TempDir()
	generate(t, root, model, out)

	data, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	page := string(data)

	assert.Contains(t, page, "Test Project")
	assert.Contains(t, page, `href="root/index.html"`)
	assert.Contains(t, page, `href="src/index.html"`)
	// 3 of 4 lines hit overall.
	assert.Contains(t, page, "75.0 %")
	assert.Contains(t, page, "2026-03-14 09:26:53 UTC")
}

func TestGenerateSourcePageContent(t *testing.T) {
	t.Parallel()

	root, model := testProject(t)
	out := t.TempDir()
	generate(t, root, model, out)

	data, err := os.ReadFile(filepath.Join(out, "src", "util.c.gcov.html"))
	require.NoError(t, err)
	page := string(data)

	assert.Contains(t, page, "int add(int a, int b)")
	assert.Contains(t, page, "cov-hit")
	assert.Contains(t, page, "100.0 %")

	data, err = os.ReadFile(filepath.Join(out, "root", "main.c.gcov.html"))
	require.NoError(t, err)
	page = string(data)

	// Line 2 has a count of zero, line 3 is uninstrumented.
	assert.Contains(t, page, "cov-none")
	assert.Contains(t, page, `<td class="hit-count">-</td>`)
}

func TestGenerateDeterministic(t *testing.T) {
	t.Parallel()

	root, model := testProject(t)

	first := t.TempDir()
	second := t.TempDir()
	generate(t, root, model, first)
	generate(t, root, model, second)

	for _, page := range []string{
		"index.html",
		"root/index.html",
		"root/main.c.gcov.html",
		"src/index.html",
		"src/util.c.gcov.html",
	} {
		a, err := os.ReadFile(filepath.Join(first, filepath.FromSlash(page)))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(second, filepath.FromSlash(page)))
		require.NoError(t, err)
		assert.Equal(t, a, b, "page %s differs between runs", page)
	}
}

func TestGenerateMissingSource(t *testing.T) {
	t.Parallel()

	root, model := testProject(t)
	missing := model.FileFor(filepath.ToSlash(filepath.Join(root, "src", "gone.c")))
	missing.Lines[1] = tracefile.LineRecord{Line: 1, Count: 4}
	missing.Lines[3] = tracefile.LineRecord{Line: 3, Count: 0}

	out := t.TempDir()
	warnings := generate(t, root, model, out)

	require.Len(t, warnings, 1)
	assert.Equal(t, "src/gone.c", warnings[0].Path)
	assert.Contains(t, warnings[0].Msg, "not found")

	// Placeholder page still renders with the instrumented lines.
	data, err := os.ReadFile(filepath.Join(out, "src", "gone.c.gcov.html"))
	require.NoError(t, err)
	page := string(data)
	assert.Contains(t, page, "Source file not found on disk")
	assert.Contains(t, page, `id="L3"`)

	// The directory index still carries its counts.
	data, err = os.ReadFile(filepath.Join(out, "src", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "gone.c.gcov.html")
}

func TestGenerateNoTempFilesLeftBehind(t *testing.T) {
	t.Parallel()

	root, model := testProject(t)
	out := t.TempDir()
	generate(t, root, model, out)

	err := filepath.WalkDir(out, func(path string, d os.DirEntry, err error) error {
		require.NoError(t, err)
		if !d.IsDir() {
			assert.NotContains(t, d.Name(), ".page-")
		}
		return nil
	})
	require.NoError(t, err)
}

func TestFormatInt(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0", formatInt(0))
	assert.Equal(t, "999", formatInt(999))
	assert.Equal(t, "1,000", formatInt(1000))
	assert.Equal(t, "1,234,567", formatInt(1234567))
}
