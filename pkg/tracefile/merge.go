package tracefile

import "fmt"

// MergeResult collects the recoverable conditions raised while
// merging. Checksum mismatches fail the affected file but never
// abort the merge of the remaining files.
type MergeResult struct {
	Mismatches []*ChecksumMismatchError
	Warnings   []string
}

func (r *MergeResult) warnf(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Merge combines two models into a new one. Files present in only
// one input are deep-copied; files present in both have their line,
// function, and branch counts summed key-wise. When both sides carry
// a checksum for the same line and the checksums differ, the merge of
// that file fails with a ChecksumMismatch: in strict mode the file is
// dropped from the result, otherwise the first input's records are
// kept. Count totals are commutative and associative across merge
// order, so folds over capture files may run in any order.
func Merge(a, b *Model, strict bool, result *MergeResult) *Model {
	if result == nil {
		result = &MergeResult{}
	}
	out := NewModel()

	for path, fa := range a.Files {
		fb, both := b.Files[path]
		if !both {
			out.Files[path] = fa.Clone()
			continue
		}
		merged, err := mergeFile(fa, fb, result)
		if err != nil {
			result.Mismatches = append(result.Mismatches, err)
			if strict {
				continue
			}
			merged = fa.Clone()
		}
		out.Files[path] = merged
	}
	for path, fb := range b.Files {
		if _, both := a.Files[path]; !both {
			out.Files[path] = fb.Clone()
		}
	}
	return out
}

// MergeAll folds any number of models into one. An empty input yields
// an empty model.
func MergeAll(models []*Model, strict bool, result *MergeResult) *Model {
	out := NewModel()
	for _, m := range models {
		out = Merge(out, m, strict, result)
	}
	return out
}

// mergeFile merges two record sets for the same source file. The
// returned set is freshly owned. On checksum conflict the partially
// merged set is discarded and the error returned.
func mergeFile(a, b *FileCoverage, result *MergeResult) (*FileCoverage, *ChecksumMismatchError) {
	out := a.Clone()
	if out.TestName == "" {
		out.TestName = b.TestName
	}
	for _, rec := range b.Lines {
		if err := out.addLine(rec); err != nil {
			var mismatch *ChecksumMismatchError
			if m, ok := err.(*ChecksumMismatchError); ok {
				mismatch = m
			} else {
				mismatch = &ChecksumMismatchError{Path: a.Path, Line: rec.Line}
			}
			return nil, mismatch
		}
	}
	for _, rec := range b.Funcs {
		if out.addFunc(rec) {
			result.warnf("conflicting start line for function %s in %s", rec.Name, a.Path)
		}
	}
	for _, rec := range b.Branches {
		out.addBranch(rec)
	}
	return out, nil
}
