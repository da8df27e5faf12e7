// Package summary computes aggregate coverage statistics at file,
// directory, and project scope, plus the high/medium/low
// classification used for report coloring.
package summary

import (
	"path"
	"sort"
	"strings"

	"github.com/karpierz/lcov/pkg/tracefile"
)

// Config is the recognized configuration surface of the summarizer
// and the report generator. It is an immutable value passed
// explicitly, never ambient state. Thresholds are percentage cut
// points with MediumThreshold <= HighThreshold.
type Config struct {
	HighThreshold   float64
	MediumThreshold float64
	ShowBranches    bool
	ShowFunctions   bool
	StrictChecksum  bool
}

// DefaultConfig returns the genhtml defaults: high at 90%, medium at
// 75%, all record kinds shown.
func DefaultConfig() Config {
	return Config{
		HighThreshold:   90,
		MediumThreshold: 75,
		ShowBranches:    true,
		ShowFunctions:   true,
	}
}

// Classification buckets a coverage rate via the two configured
// threshold cut points.
type Classification int

const (
	Low Classification = iota
	Medium
	High
)

func (c Classification) String() string {
	switch c {
	case High:
		return "high"
	case Medium:
		return "medium"
	default:
		return "low"
	}
}

// Counts is a (hit, total) pair for one record kind.
type Counts struct {
	Hit   int
	Total int
}

// Rate returns the coverage percentage. A total of zero is defined as
// 0%, not an error.
func (c Counts) Rate() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Hit) / float64(c.Total) * 100
}

// Add accumulates another pair element-wise.
func (c *Counts) Add(other Counts) {
	c.Hit += other.Hit
	c.Total += other.Total
}

// Classify buckets the rate: high when rate >= HighThreshold, medium
// when rate >= MediumThreshold, low otherwise.
func Classify(c Counts, cfg Config) Classification {
	rate := c.Rate()
	switch {
	case rate >= cfg.HighThreshold:
		return High
	case rate >= cfg.MediumThreshold:
		return Medium
	default:
		return Low
	}
}

// File is the summary of one source file.
type File struct {
	// Path is the file path relative to the source root, or the
	// original tracefile path when outside the root.
	Path     string
	Name     string
	Lines    Counts
	Funcs    Counts
	Branches Counts
}

// Directory is the summary of one directory that directly contains
// instrumented files. Its counts are the element-wise sum of its
// files, computed exactly once.
type Directory struct {
	Path     string
	Files    []*File
	Lines    Counts
	Funcs    Counts
	Branches Counts
}

// Tree is the project-level summary: one node per directory, with
// project counts being the element-wise sum of directory counts.
// Parent totals are never recomputed from raw records, so they are
// always consistent with child totals.
type Tree struct {
	SourceRoot string
	Dirs       []*Directory
	Lines      Counts
	Funcs      Counts
	Branches   Counts
}

// Build summarizes a model relative to sourceRoot. File paths under
// the root are relativized; paths outside it keep their tracefile
// spelling. Aggregation is a single bottom-up pass: file counts are
// computed from records, directory counts from files, project counts
// from directories.
func Build(m *tracefile.Model, sourceRoot string, cfg Config) *Tree {
	dirs := make(map[string]*Directory)

	for _, p := range m.Paths() {
		fc := m.Files[p]
		rel := Relativize(p, sourceRoot)

		fs := &File{
			Path: rel,
			Name: path.Base(rel),
		}
		fs.Lines.Hit, fs.Lines.Total = lineCounts(fc)
		if cfg.ShowFunctions {
			found, hit := tracefile.FuncStats(fc)
			fs.Funcs = Counts{Hit: hit, Total: found}
		}
		if cfg.ShowBranches {
			found, hit := tracefile.BranchStats(fc)
			fs.Branches = Counts{Hit: hit, Total: found}
		}

		dirPath := path.Dir(rel)
		dir, ok := dirs[dirPath]
		if !ok {
			dir = &Directory{Path: dirPath}
			dirs[dirPath] = dir
		}
		dir.Files = append(dir.Files, fs)
	}

	tree := &Tree{SourceRoot: sourceRoot}
	dirPaths := make([]string, 0, len(dirs))
	for p := range dirs {
		dirPaths = append(dirPaths, p)
	}
	sort.Strings(dirPaths)

	for _, p := range dirPaths {
		dir := dirs[p]
		sort.Slice(dir.Files, func(i, j int) bool {
			return dir.Files[i].Name < dir.Files[j].Name
		})
		for _, fs := range dir.Files {
			dir.Lines.Add(fs.Lines)
			dir.Funcs.Add(fs.Funcs)
			dir.Branches.Add(fs.Branches)
		}
		tree.Lines.Add(dir.Lines)
		tree.Funcs.Add(dir.Funcs)
		tree.Branches.Add(dir.Branches)
		tree.Dirs = append(tree.Dirs, dir)
	}
	return tree
}

func lineCounts(fc *tracefile.FileCoverage) (hit, total int) {
	found, h := tracefile.LineStats(fc)
	return h, found
}

// Relativize strips sourceRoot from p when p lies under it. Both
// forward-slash tracefile paths and a cleaned root are handled.
func Relativize(p, sourceRoot string) string {
	if sourceRoot == "" {
		return strings.TrimPrefix(p, "/")
	}
	root := strings.TrimSuffix(path.Clean(strings.ReplaceAll(sourceRoot, "\\", "/")), "/")
	clean := path.Clean(strings.ReplaceAll(p, "\\", "/"))
	if clean == root {
		return path.Base(clean)
	}
	if strings.HasPrefix(clean, root+"/") {
		return strings.TrimPrefix(clean, root+"/")
	}
	return strings.TrimPrefix(clean, "/")
}
