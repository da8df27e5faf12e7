// Package report renders a summarized coverage model into a static,
// browsable HTML page set: a project index, one index per directory,
// and one annotated source page per file. Given the same model,
// configuration, and timestamp the output is byte-for-byte identical
// on every run.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/karpierz/lcov/pkg/summary"
	"github.com/karpierz/lcov/pkg/tracefile"
)

// Warning describes a recoverable rendering problem, e.g. a source
// file referenced by the tracefile that is absent on disk. The
// affected page is still generated with a placeholder body.
type Warning struct {
	Path string
	Msg  string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Path, w.Msg)
}

// Options configures one report generation run.
type Options struct {
	Config      summary.Config
	SourceRoot  string
	OutputDir   string
	Title       string
	GeneratedAt time.Time
}

// Generate renders the full page set for model under opts.OutputDir.
// Returns the collected recoverable warnings; a directory or page
// that cannot be written aborts the run with an error.
func Generate(model *tracefile.Model, tree *summary.Tree, opts Options) ([]Warning, error) {
	if opts.Title == "" {
		opts.Title = "LCOV coverage report"
	}
	g := &generator{
		model: model,
		tree:  tree,
		opts:  opts,
		files: make(map[string]*tracefile.FileCoverage),
	}
	for p, fc := range model.Files {
		g.files[summary.Relativize(p, opts.SourceRoot)] = fc
	}

	funcs := template.FuncMap{
		"formatPct": func(rate float64) string {
			return fmt.Sprintf("%.1f %%", rate)
		},
		"formatInt": formatInt,
		"rateClass": func(c summary.Counts) string {
			return summary.Classify(c, g.opts.Config).String()
		},
		"rate": func(c summary.Counts) float64 {
			return c.Rate()
		},
	}
	g.project = template.Must(template.New("project").Funcs(funcs).Parse(projectIndexTemplate))
	g.dir = template.Must(template.New("dir").Funcs(funcs).Parse(dirIndexTemplate))
	g.source = template.Must(template.New("source").Funcs(funcs).Parse(sourceTemplate))

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return g.warnings, fmt.Errorf("create output directory: %w", err)
	}

	if err := g.projectIndex(); err != nil {
		return g.warnings, err
	}
	for _, dir := range tree.Dirs {
		if err := g.dirIndex(dir); err != nil {
			return g.warnings, err
		}
		for _, file := range dir.Files {
			if err := g.sourcePage(dir, file); err != nil {
				return g.warnings, err
			}
		}
	}
	return g.warnings, nil
}

type generator struct {
	model    *tracefile.Model
	tree     *summary.Tree
	opts     Options
	files    map[string]*tracefile.FileCoverage
	warnings []Warning

	project *template.Template
	dir     *template.Template
	source  *template.Template
}

func (g *generator) warnf(path, format string, args ...interface{}) {
	g.warnings = append(g.warnings, Warning{Path: path, Msg: fmt.Sprintf(format, args...)})
}

// outDir maps a summarized directory path to its output subdirectory.
// Files that live directly under the source root summarize into ".",
// which renders under "root".
func outDir(dirPath string) string {
	if dirPath == "." || dirPath == "" {
		return "root"
	}
	return dirPath
}

type pageHeader struct {
	Title         string
	Subtitle      string
	RootHref      string
	GeneratedAt   string
	ShowFunctions bool
	ShowBranches  bool
}

func (g *generator) header(subtitle, rootHref string) pageHeader {
	return pageHeader{
		Title:         g.opts.Title,
		Subtitle:      subtitle,
		RootHref:      rootHref,
		GeneratedAt:   g.opts.GeneratedAt.UTC().Format("2006-01-02 15:04:05 MST"),
		ShowFunctions: g.opts.Config.ShowFunctions,
		ShowBranches:  g.opts.Config.ShowBranches,
	}
}

func (g *generator) projectIndex() error {
	type row struct {
		Name     string
		Href     string
		Lines    summary.Counts
		Funcs    summary.Counts
		Branches summary.Counts
	}
	var rows []row
	for _, dir := range g.tree.Dirs {
		rows = append(rows, row{
			Name:     dir.Path,
			Href:     outDir(dir.Path) + "/index.html",
			Lines:    dir.Lines,
			Funcs:    dir.Funcs,
			Branches: dir.Branches,
		})
	}

	data := struct {
		pageHeader
		Rows     []row
		Lines    summary.Counts
		Funcs    summary.Counts
		Branches summary.Counts
		DirCount int
	}{
		pageHeader: g.header(fmt.Sprintf("%d directories", len(rows)), "index.html"),
		Rows:       rows,
		Lines:      g.tree.Lines,
		Funcs:      g.tree.Funcs,
		Branches:   g.tree.Branches,
		DirCount:   len(rows),
	}
	return g.writePage(filepath.Join(g.opts.OutputDir, "index.html"), g.project, data)
}

func (g *generator) dirIndex(dir *summary.Directory) error {
	od := outDir(dir.Path)
	depth := strings.Count(od, "/") + 1

	type row struct {
		Name     string
		Href     string
		Lines    summary.Counts
		Funcs    summary.Counts
		Branches summary.Counts
	}
	var rows []row
	for _, file := range dir.Files {
		rows = append(rows, row{
			Name:     file.Name,
			Href:     file.Name + ".gcov.html",
			Lines:    file.Lines,
			Funcs:    file.Funcs,
			Branches: file.Branches,
		})
	}

	data := struct {
		pageHeader
		Dir      string
		Rows     []row
		Lines    summary.Counts
		Funcs    summary.Counts
		Branches summary.Counts
	}{
		pageHeader: g.header(fmt.Sprintf("directory %s", dir.Path), strings.Repeat("../", depth)+"index.html"),
		Dir:        dir.Path,
		Rows:       rows,
		Lines:      dir.Lines,
		Funcs:      dir.Funcs,
		Branches:   dir.Branches,
	}
	return g.writePage(filepath.Join(g.opts.OutputDir, filepath.FromSlash(od), "index.html"), g.dir, data)
}

func (g *generator) sourcePage(dir *summary.Directory, file *summary.File) error {
	od := outDir(dir.Path)
	depth := strings.Count(od, "/") + 1

	fc := g.files[file.Path]
	body, missing := g.annotate(file, fc)
	if missing {
		g.warnf(file.Path, "source file not found under %s, generated placeholder page", g.opts.SourceRoot)
	}

	data := struct {
		pageHeader
		File     string
		DirHref  string
		Missing  bool
		Rows     []sourceLine
		Lines    summary.Counts
		Funcs    summary.Counts
		Branches summary.Counts
	}{
		pageHeader: g.header(fmt.Sprintf("file %s", file.Path), strings.Repeat("../", depth)+"index.html"),
		File:       file.Path,
		DirHref:    "index.html",
		Missing:    missing,
		Rows:       body,
		Lines:      file.Lines,
		Funcs:      file.Funcs,
		Branches:   file.Branches,
	}
	target := filepath.Join(g.opts.OutputDir, filepath.FromSlash(od), file.Name+".gcov.html")
	return g.writePage(target, g.source, data)
}

// writePage renders the template and writes the result atomically:
// write-to-temp-then-rename, so a reader never observes a partially
// written page.
func (g *generator) writePage(target string, tmpl *template.Template, data interface{}) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create page directory: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render %s: %w", target, err)
	}

	tmp, err := os.CreateTemp(dir, ".page-*.html")
	if err != nil {
		return fmt.Errorf("create temp page: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write page %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close page %s: %w", target, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("rename page into place: %w", err)
	}
	return nil
}

func formatInt(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var result []byte
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	return string(result)
}

// sourceLine is one gutter row of an annotated source page. Class is
// the two-state line coloring: covered vs. not covered; lines without
// records stay unmarked.
type sourceLine struct {
	Num   int
	Count string
	Class string
	Text  string
}

// annotate builds the annotated body for file. A missing source file
// is recoverable: the caller gets a placeholder body built from the
// instrumented lines alone.
func (g *generator) annotate(file *summary.File, fc *tracefile.FileCoverage) (rows []sourceLine, missing bool) {
	var srcLines []string
	if g.opts.SourceRoot != "" {
		data, err := os.ReadFile(filepath.Join(g.opts.SourceRoot, filepath.FromSlash(file.Path)))
		if err == nil {
			srcLines = strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
		} else {
			missing = true
		}
	} else {
		missing = true
	}

	lineCount := len(srcLines)
	if fc != nil {
		for n := range fc.Lines {
			if n > lineCount {
				lineCount = n
			}
		}
	}

	for n := 1; n <= lineCount; n++ {
		row := sourceLine{Num: n, Count: "-"}
		if n <= len(srcLines) {
			row.Text = strings.ReplaceAll(srcLines[n-1], "\t", "    ")
		}
		if fc != nil {
			if rec, ok := fc.Lines[n]; ok {
				row.Count = fmt.Sprintf("%d", rec.Count)
				if rec.Count > 0 {
					row.Class = "cov-hit"
				} else {
					row.Class = "cov-none"
				}
			}
		}
		rows = append(rows, row)
	}
	return rows, missing
}
