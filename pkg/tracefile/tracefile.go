// Package tracefile implements the in-memory coverage model and the
// plain-text tracefile (.info) format: parsing, serialization, and
// semantic merging of per-line, per-function, and per-branch
// execution counts.
package tracefile

import (
	"fmt"
	"sort"
)

// TakenNever marks a branch that was never reached. It is distinct
// from a branch that was reached but taken zero times, and is
// serialized as "-".
const TakenNever int64 = -1

// LineRecord holds the execution count for one source line. Checksum
// is an opaque per-line fingerprint; empty means no claim about the
// line's content.
type LineRecord struct {
	Line     int
	Count    int64
	Checksum string
}

// FuncRecord holds the call count for one function.
type FuncRecord struct {
	Name      string
	StartLine int
	Count     int64
}

// BranchKey identifies a branch within a source file.
type BranchKey struct {
	Line   int
	Block  int
	Branch int
}

// BranchRecord holds the taken count for one branch direction.
// Taken is TakenNever when the branch was never reached.
type BranchRecord struct {
	Line   int
	Block  int
	Branch int
	Taken  int64
}

// Key returns the identity key of the branch record.
func (b BranchRecord) Key() BranchKey {
	return BranchKey{Line: b.Line, Block: b.Block, Branch: b.Branch}
}

// FileCoverage holds all coverage records for a single source file.
// Line numbers are unique within Lines, function names within Funcs,
// and (line, block, branch) keys within Branches.
type FileCoverage struct {
	Path     string
	TestName string
	Lines    map[int]LineRecord
	Funcs    map[string]FuncRecord
	Branches map[BranchKey]BranchRecord
}

// NewFileCoverage returns an empty record set for path.
func NewFileCoverage(path string) *FileCoverage {
	return &FileCoverage{
		Path:     path,
		Lines:    make(map[int]LineRecord),
		Funcs:    make(map[string]FuncRecord),
		Branches: make(map[BranchKey]BranchRecord),
	}
}

// Clone returns a deep copy. Merged models own their file entries and
// never alias the inputs.
func (fc *FileCoverage) Clone() *FileCoverage {
	out := &FileCoverage{
		Path:     fc.Path,
		TestName: fc.TestName,
		Lines:    make(map[int]LineRecord, len(fc.Lines)),
		Funcs:    make(map[string]FuncRecord, len(fc.Funcs)),
		Branches: make(map[BranchKey]BranchRecord, len(fc.Branches)),
	}
	for k, v := range fc.Lines {
		out.Lines[k] = v
	}
	for k, v := range fc.Funcs {
		out.Funcs[k] = v
	}
	for k, v := range fc.Branches {
		out.Branches[k] = v
	}
	return out
}

// SortedLines returns the line records in ascending line order.
func (fc *FileCoverage) SortedLines() []LineRecord {
	out := make([]LineRecord, 0, len(fc.Lines))
	for _, r := range fc.Lines {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	return out
}

// SortedFuncs returns the function records ordered by start line,
// then name.
func (fc *FileCoverage) SortedFuncs() []FuncRecord {
	out := make([]FuncRecord, 0, len(fc.Funcs))
	for _, r := range fc.Funcs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartLine != out[j].StartLine {
			return out[i].StartLine < out[j].StartLine
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// SortedBranches returns the branch records ordered by
// (line, block, branch).
func (fc *FileCoverage) SortedBranches() []BranchRecord {
	out := make([]BranchRecord, 0, len(fc.Branches))
	for _, r := range fc.Branches {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Block != b.Block {
			return a.Block < b.Block
		}
		return a.Branch < b.Branch
	})
	return out
}

// addLine folds one line record into the file, summing counts.
// Returns an error when both sides carry a checksum and they
// disagree; the existing checksum is kept in that case.
func (fc *FileCoverage) addLine(rec LineRecord) error {
	existing, ok := fc.Lines[rec.Line]
	if !ok {
		fc.Lines[rec.Line] = rec
		return nil
	}
	if existing.Checksum != "" && rec.Checksum != "" && existing.Checksum != rec.Checksum {
		fc.Lines[rec.Line] = LineRecord{
			Line:     rec.Line,
			Count:    saturatingAdd(existing.Count, rec.Count),
			Checksum: existing.Checksum,
		}
		return &ChecksumMismatchError{
			Path: fc.Path,
			Line: rec.Line,
			A:    existing.Checksum,
			B:    rec.Checksum,
		}
	}
	checksum := existing.Checksum
	if checksum == "" {
		checksum = rec.Checksum
	}
	fc.Lines[rec.Line] = LineRecord{
		Line:     rec.Line,
		Count:    saturatingAdd(existing.Count, rec.Count),
		Checksum: checksum,
	}
	return nil
}

// addFunc folds one function record into the file, summing call
// counts. A start-line disagreement keeps the first definition.
func (fc *FileCoverage) addFunc(rec FuncRecord) (startLineConflict bool) {
	existing, ok := fc.Funcs[rec.Name]
	if !ok {
		fc.Funcs[rec.Name] = rec
		return false
	}
	conflict := existing.StartLine != 0 && rec.StartLine != 0 && existing.StartLine != rec.StartLine
	startLine := existing.StartLine
	if startLine == 0 {
		startLine = rec.StartLine
	}
	fc.Funcs[rec.Name] = FuncRecord{
		Name:      rec.Name,
		StartLine: startLine,
		Count:     saturatingAdd(existing.Count, rec.Count),
	}
	return conflict
}

// addBranch folds one branch record into the file. TakenNever merges
// as identity; numeric taken counts add.
func (fc *FileCoverage) addBranch(rec BranchRecord) {
	key := rec.Key()
	existing, ok := fc.Branches[key]
	if !ok {
		fc.Branches[key] = rec
		return
	}
	switch {
	case existing.Taken == TakenNever:
		existing.Taken = rec.Taken
	case rec.Taken == TakenNever:
		// keep existing
	default:
		existing.Taken = saturatingAdd(existing.Taken, rec.Taken)
	}
	fc.Branches[key] = existing
}

// Model is the in-memory representation of one or more parsed or
// merged tracefiles: a mapping from source file path to its coverage
// records.
type Model struct {
	Files map[string]*FileCoverage
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{Files: make(map[string]*FileCoverage)}
}

// FileFor returns the record set for path, creating it if absent.
func (m *Model) FileFor(path string) *FileCoverage {
	fc, ok := m.Files[path]
	if !ok {
		fc = NewFileCoverage(path)
		m.Files[path] = fc
	}
	return fc
}

// Paths returns the source file paths in sorted order.
func (m *Model) Paths() []string {
	out := make([]string, 0, len(m.Files))
	for p := range m.Files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Clone returns a deep copy of the model.
func (m *Model) Clone() *Model {
	out := NewModel()
	for p, fc := range m.Files {
		out.Files[p] = fc.Clone()
	}
	return out
}

// ChecksumMismatchError reports that two coverage records disagree
// about the content of a source line. Combining their counts would be
// meaningless, so the merge of the affected file fails.
type ChecksumMismatchError struct {
	Path string
	Line int
	A, B string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch at %s:%d (%q vs %q)", e.Path, e.Line, e.A, e.B)
}

// StructuralError reports a tracefile whose section structure is
// ambiguous. It is fatal: parsing cannot continue past it.
type StructuralError struct {
	Name   string
	LineNo int
	Msg    string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Name, e.LineNo, e.Msg)
}

func saturatingAdd(a, b int64) int64 {
	sum := a + b
	if sum < a {
		return int64(^uint64(0) >> 1)
	}
	return sum
}
