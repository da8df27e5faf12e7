package covprofile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karpierz/lcov/pkg/tracefile"
)

const sampleProfile = `mode: count
example.com/pkg/a.go:3.20,5.2 2 4
example.com/pkg/a.go:7.24,9.2 1 0
example.com/pkg/b.go:1.12,1.30 1 1
`

func TestConvertReader(t *testing.T) {
	t.Parallel()

	m, err := ConvertReader(strings.NewReader(sampleProfile), "coverage.out")
	require.NoError(t, err)
	require.Len(t, m.Files, 2)

	a := m.Files["example.com/pkg/a.go"]
	require.NotNil(t, a)

	// The first block spans lines 3-5 with count 4, the second
	// lines 7-9 with count 0.
	for line := 3; line <= 5; line++ {
		assert.Equal(t, int64(4), a.Lines[line].Count, "line %d", line)
	}
	for line := 7; line <= 9; line++ {
		assert.Equal(t, int64(0), a.Lines[line].Count, "line %d", line)
	}
	assert.NotContains(t, a.Lines, 6)

	// Profiles carry no function or branch information.
	assert.Empty(t, a.Funcs)
	assert.Empty(t, a.Branches)

	b := m.Files["example.com/pkg/b.go"]
	require.NotNil(t, b)
	assert.Equal(t, int64(1), b.Lines[1].Count)
}

func TestConvertOverlappingBlocksTakeMax(t *testing.T) {
	t.Parallel()

	profile := `mode: count
example.com/pkg/a.go:1.1,4.2 3 2
example.com/pkg/a.go:3.1,3.20 1 9
`
	m, err := ConvertReader(strings.NewReader(profile), "coverage.out")
	require.NoError(t, err)

	a := m.Files["example.com/pkg/a.go"]
	assert.Equal(t, int64(2), a.Lines[1].Count)
	assert.Equal(t, int64(9), a.Lines[3].Count)
	assert.Equal(t, int64(2), a.Lines[4].Count)
}

func TestConvertMergesWithTracefiles(t *testing.T) {
	t.Parallel()

	converted, err := ConvertReader(strings.NewReader(sampleProfile), "coverage.out")
	require.NoError(t, err)

	other := tracefile.NewModel()
	fc := other.FileFor("example.com/pkg/a.go")
	fc.Lines[3] = tracefile.LineRecord{Line: 3, Count: 1}

	merged := tracefile.Merge(converted, other, false, nil)
	assert.Equal(t, int64(5), merged.Files["example.com/pkg/a.go"].Lines[3].Count)
}

func TestConvertInvalidProfile(t *testing.T) {
	t.Parallel()

	_, err := ConvertReader(strings.NewReader("not a profile\n"), "bad.out")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.out")
}
