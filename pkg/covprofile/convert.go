// Package covprofile converts Go cover profiles into tracefile models so
// they can be merged and reported alongside lcov data.
package covprofile

import (
	"fmt"
	"io"

	"golang.org/x/tools/cover"

	"github.com/karpierz/lcov/pkg/tracefile"
)

// Convert parses a Go cover profile file and returns the equivalent model.
// Cover profiles carry statement blocks, not per-line execution counts, so
// each line spanned by a block gets the largest count of any block covering
// it. Function and branch records are not produced.
func Convert(path string) (*tracefile.Model, error) {
	profiles, err := cover.ParseProfiles(path)
	if err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}
	return fromProfiles(profiles), nil
}

// ConvertReader is Convert for an already-open profile stream. The name is
// attached to errors in place of a file path.
func ConvertReader(r io.Reader, name string) (*tracefile.Model, error) {
	profiles, err := cover.ParseProfilesFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse profiles from %s: %w", name, err)
	}
	return fromProfiles(profiles), nil
}

func fromProfiles(profiles []*cover.Profile) *tracefile.Model {
	m := tracefile.NewModel()
	for _, profile := range profiles {
		fc := m.FileFor(profile.FileName)
		for _, block := range profile.Blocks {
			for line := block.StartLine; line <= block.EndLine; line++ {
				rec, ok := fc.Lines[line]
				if !ok {
					rec = tracefile.LineRecord{Line: line}
				}
				if int64(block.Count) > rec.Count {
					rec.Count = int64(block.Count)
				}
				fc.Lines[line] = rec
			}
		}
	}
	for path, fc := range m.Files {
		if len(fc.Lines) == 0 {
			delete(m.Files, path)
		}
	}
	return m
}
