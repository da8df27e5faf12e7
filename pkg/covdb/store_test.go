package covdb

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karpierz/lcov/pkg/summary"
)

func testTree() *summary.Tree {
	tree := &summary.Tree{
		SourceRoot: "/project",
		Lines:      summary.Counts{Hit: 7, Total: 10},
		Funcs:      summary.Counts{Hit: 2, Total: 3},
		Branches:   summary.Counts{Hit: 1, Total: 4},
	}
	tree.Dirs = []*summary.Directory{
		{
			Path: "src",
			Files: []*summary.File{
				{
					Path:     "src/a.c",
					Name:     "a.c",
					Lines:    summary.Counts{Hit: 4, Total: 5},
					Funcs:    summary.Counts{Hit: 1, Total: 2},
					Branches: summary.Counts{Hit: 1, Total: 4},
				},
				{
					Path:  "src/b.c",
					Name:  "b.c",
					Lines: summary.Counts{Hit: 3, Total: 5},
					Funcs: summary.Counts{Hit: 1, Total: 1},
				},
			},
		},
	}
	return tree
}

func TestRecordAndLoadRuns(t *testing.T) {
	t.Parallel()

	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	at := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	runID, err := store.RecordRun("nightly", at, testTree())
	require.NoError(t, err)
	assert.Greater(t, runID, int64(0))

	runs, err := store.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, runID, run.ID)
	assert.Equal(t, "nightly", run.Label)
	assert.True(t, run.RecordedAt.Equal(at))
	assert.Equal(t, 2, run.FileCount)
	assert.Equal(t, summary.Counts{Hit: 7, Total: 10}, run.Lines)
	assert.Equal(t, summary.Counts{Hit: 2, Total: 3}, run.Funcs)
	assert.Equal(t, summary.Counts{Hit: 1, Total: 4}, run.Branches)
}

func TestRunFiles(t *testing.T) {
	t.Parallel()

	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	runID, err := store.RecordRun("release", time.Now(), testTree())
	require.NoError(t, err)

	files, err := store.RunFiles(runID)
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "src/a.c", files[0].Path)
	assert.Equal(t, summary.Counts{Hit: 4, Total: 5}, files[0].Lines)
	assert.Equal(t, summary.Counts{Hit: 1, Total: 4}, files[0].Branches)
	assert.Equal(t, "src/b.c", files[1].Path)
	assert.Equal(t, summary.Counts{}, files[1].Branches)
}

func TestRunsOrderedMostRecentFirst(t *testing.T) {
	t.Parallel()

	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	_, err = store.RecordRun("first", older, testTree())
	require.NoError(t, err)
	_, err = store.RecordRun("second", newer, testTree())
	require.NoError(t, err)

	runs, err := store.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "second", runs[0].Label)
	assert.Equal(t, "first", runs[1].Label)
}

func TestOpenExistingDatabase(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	require.NoError(t, err)
	_, err = store.RecordRun("persisted", time.Now(), testTree())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	runs, err := reopened.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "persisted", runs[0].Label)
}
