package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karpierz/lcov/pkg/tracefile"
)

func TestCountsRate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 70.0, Counts{Hit: 7, Total: 10}.Rate())
	assert.Equal(t, 100.0, Counts{Hit: 4, Total: 4}.Rate())
	assert.Equal(t, 0.0, Counts{}.Rate())
	assert.Equal(t, 0.0, Counts{Hit: 0, Total: 5}.Rate())
}

func TestClassify(t *testing.T) {
	t.Parallel()

	cfg := Config{HighThreshold: 90, MediumThreshold: 50}

	// 7 of 10 lines hit is 70%: above medium, below high.
	assert.Equal(t, Medium, Classify(Counts{Hit: 7, Total: 10}, cfg))

	assert.Equal(t, High, Classify(Counts{Hit: 9, Total: 10}, cfg))
	assert.Equal(t, Medium, Classify(Counts{Hit: 5, Total: 10}, cfg))
	assert.Equal(t, Low, Classify(Counts{Hit: 4, Total: 10}, cfg))
	assert.Equal(t, Low, Classify(Counts{}, cfg))

	// The genhtml defaults put 70% below medium.
	assert.Equal(t, Low, Classify(Counts{Hit: 7, Total: 10}, DefaultConfig()))
}

func TestClassificationString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "high", High.String())
	assert.Equal(t, "medium", Medium.String())
	assert.Equal(t, "low", Low.String())
}

func buildModel() *tracefile.Model {
	m := tracefile.NewModel()

	alpha := m.FileFor("/project/src/alpha.c")
	alpha.Lines[1] = tracefile.LineRecord{Line: 1, Count: 3}
	alpha.Lines[2] = tracefile.LineRecord{Line: 2, Count: 0}
	alpha.Funcs["main"] = tracefile.FuncRecord{Name: "main", StartLine: 1, Count: 3}
	alpha.Branches[tracefile.BranchKey{Line: 1, Block: 0, Branch: 0}] =
		tracefile.BranchRecord{Line: 1, Block: 0, Branch: 0, Taken: 1}
	alpha.Branches[tracefile.BranchKey{Line: 1, Block: 0, Branch: 1}] =
		tracefile.BranchRecord{Line: 1, Block: 0, Branch: 1, Taken: tracefile.TakenNever}

	beta := m.FileFor("/project/src/beta.c")
	beta.Lines[1] = tracefile.LineRecord{Line: 1, Count: 1}

	top := m.FileFor("/project/main.c")
	top.Lines[1] = tracefile.LineRecord{Line: 1, Count: 0}
	top.Lines[2] = tracefile.LineRecord{Line: 2, Count: 5}

	return m
}

func TestBuild(t *testing.T) {
	t.Parallel()

	tree := Build(buildModel(), "/project", DefaultConfig())

	require.Len(t, tree.Dirs, 2)
	assert.Equal(t, ".", tree.Dirs[0].Path)
	assert.Equal(t, "src", tree.Dirs[1].Path)

	src := tree.Dirs[1]
	require.Len(t, src.Files, 2)
	assert.Equal(t, "alpha.c", src.Files[0].Name)
	assert.Equal(t, "src/alpha.c", src.Files[0].Path)
	assert.Equal(t, Counts{Hit: 1, Total: 2}, src.Files[0].Lines)
	assert.Equal(t, Counts{Hit: 1, Total: 1}, src.Files[0].Funcs)
	assert.Equal(t, Counts{Hit: 1, Total: 2}, src.Files[0].Branches)
	assert.Equal(t, "beta.c", src.Files[1].Name)

	// Directory counts are element-wise sums of their files.
	assert.Equal(t, Counts{Hit: 2, Total: 3}, src.Lines)

	root := tree.Dirs[0]
	assert.Equal(t, Counts{Hit: 1, Total: 2}, root.Lines)

	// Project counts are element-wise sums of directory counts.
	assert.Equal(t, Counts{Hit: 3, Total: 5}, tree.Lines)
	assert.Equal(t, Counts{Hit: 1, Total: 1}, tree.Funcs)
	assert.Equal(t, Counts{Hit: 1, Total: 2}, tree.Branches)
}

func TestBuildHiddenKinds(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.ShowFunctions = false
	cfg.ShowBranches = false

	tree := Build(buildModel(), "/project", cfg)
	assert.Equal(t, Counts{}, tree.Funcs)
	assert.Equal(t, Counts{}, tree.Branches)
	assert.Equal(t, Counts{Hit: 3, Total: 5}, tree.Lines)
}

func TestBuildPathOutsideRoot(t *testing.T) {
	t.Parallel()

	m := tracefile.NewModel()
	fc := m.FileFor("/elsewhere/lib.c")
	fc.Lines[1] = tracefile.LineRecord{Line: 1, Count: 1}

	tree := Build(m, "/project", DefaultConfig())
	require.Len(t, tree.Dirs, 1)
	assert.Equal(t, "elsewhere", tree.Dirs[0].Path)
	assert.Equal(t, "elsewhere/lib.c", tree.Dirs[0].Files[0].Path)
}

func TestRelativize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "src/a.c", Relativize("/project/src/a.c", "/project"))
	assert.Equal(t, "src/a.c", Relativize("/project/src/a.c", "/project/"))
	assert.Equal(t, "elsewhere/a.c", Relativize("/elsewhere/a.c", "/project"))
	assert.Equal(t, "a.c", Relativize("/a.c", ""))
	assert.Equal(t, "src/a.c", Relativize("src/a.c", ""))
}
