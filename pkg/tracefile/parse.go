package tracefile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Warning describes a recoverable problem found while parsing a
// single record. The record is skipped and parsing continues.
type Warning struct {
	Name   string // tracefile name
	LineNo int    // line number within the tracefile
	Msg    string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s:%d: %s", w.Name, w.LineNo, w.Msg)
}

// ParseFile reads the tracefile at path into a model.
func ParseFile(path string) (*Model, []Warning, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open tracefile: %w", err)
	}
	defer f.Close()
	return Parse(f, path)
}

// Parse reads a tracefile from r into a model. name is used in
// warnings and errors. Recoverable problems (unknown tags, malformed
// fields) are collected as warnings; a section left open at a
// following SF record is a StructuralError. Multiple sections for
// the same source file are merged additively.
func Parse(r io.Reader, name string) (*Model, []Warning, error) {
	p := &parser{
		model: NewModel(),
		name:  name,
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.lineNo++
		p.record(strings.TrimRight(scanner.Text(), "\r\n"))
		if p.fatal != nil {
			return nil, p.warnings, p.fatal
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, p.warnings, fmt.Errorf("read tracefile %s: %w", name, err)
	}

	// End of input without an explicit terminator is tolerated for
	// the final section only.
	p.closeSection()

	// Sections with no line records carry no usable data.
	for path, fc := range p.model.Files {
		if len(fc.Lines) == 0 && len(fc.Funcs) == 0 && len(fc.Branches) == 0 {
			delete(p.model.Files, path)
		}
	}

	if p.negative {
		p.warnings = append(p.warnings, Warning{
			Name: name, Msg: "negative execution counts were clamped to zero",
		})
	}
	return p.model, p.warnings, nil
}

type parser struct {
	model    *Model
	name     string
	lineNo   int
	testName string
	current  *FileCoverage // section being read, nil between sections
	negative bool
	warnings []Warning
	fatal    error
}

func (p *parser) warnf(format string, args ...interface{}) {
	p.warnings = append(p.warnings, Warning{
		Name:   p.name,
		LineNo: p.lineNo,
		Msg:    fmt.Sprintf(format, args...),
	})
}

func (p *parser) closeSection() {
	if p.current == nil {
		return
	}
	target := p.model.FileFor(p.current.Path)
	if target == p.current {
		p.current = nil
		return
	}
	// A previous section for the same file exists: fold the counts in.
	if target.TestName == "" {
		target.TestName = p.current.TestName
	}
	for _, rec := range p.current.Lines {
		if err := target.addLine(rec); err != nil {
			p.warnf("%v", err)
		}
	}
	for _, rec := range p.current.Funcs {
		if target.addFunc(rec) {
			p.warnf("conflicting start line for function %s in %s", rec.Name, target.Path)
		}
	}
	for _, rec := range p.current.Branches {
		target.addBranch(rec)
	}
	p.current = nil
}

func (p *parser) record(line string) {
	if line == "" {
		return
	}

	if line == "end_of_record" {
		if p.current == nil {
			p.warnf("end_of_record outside of a section")
			return
		}
		p.closeSection()
		return
	}

	tag, rest, ok := strings.Cut(line, ":")
	if !ok {
		p.warnf("malformed record %q", line)
		return
	}

	switch tag {
	case "TN":
		p.testName = rest

	case "SF", "KF":
		if p.current != nil {
			p.fatal = &StructuralError{
				Name:   p.name,
				LineNo: p.lineNo,
				Msg:    fmt.Sprintf("section for %s not terminated before next SF record", p.current.Path),
			}
			return
		}
		if rest == "" {
			p.warnf("SF record with empty file path")
			return
		}
		if existing, ok := p.model.Files[rest]; ok {
			// Re-opened section: accumulate into a scratch section so
			// checksum conflicts surface through the same merge path.
			p.current = NewFileCoverage(rest)
			p.current.TestName = existing.TestName
		} else {
			p.current = p.model.FileFor(rest)
			p.current.TestName = p.testName
		}

	case "DA":
		fc := p.section()
		if fc == nil {
			return
		}
		fields := strings.Split(rest, ",")
		if len(fields) < 2 || len(fields) > 3 {
			p.warnf("malformed DA record %q", line)
			return
		}
		lineNum, err := strconv.Atoi(fields[0])
		if err != nil || lineNum <= 0 {
			p.warnf("DA record with invalid line number %q", fields[0])
			return
		}
		count, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			p.warnf("DA record with invalid count %q", fields[1])
			return
		}
		if count < 0 {
			count = 0
			p.negative = true
		}
		rec := LineRecord{Line: lineNum, Count: count}
		if len(fields) == 3 {
			rec.Checksum = fields[2]
		}
		if err := fc.addLine(rec); err != nil {
			p.warnf("%v", err)
		}

	case "FN":
		fc := p.section()
		if fc == nil {
			return
		}
		startStr, fnName, ok := strings.Cut(rest, ",")
		if !ok || fnName == "" {
			p.warnf("malformed FN record %q", line)
			return
		}
		start, err := strconv.Atoi(startStr)
		if err != nil || start <= 0 {
			p.warnf("FN record with invalid start line %q", startStr)
			return
		}
		if fc.addFunc(FuncRecord{Name: fnName, StartLine: start}) {
			p.warnf("conflicting start line for function %s", fnName)
		}

	case "FNDA":
		fc := p.section()
		if fc == nil {
			return
		}
		countStr, fnName, ok := strings.Cut(rest, ",")
		if !ok || fnName == "" {
			p.warnf("malformed FNDA record %q", line)
			return
		}
		count, err := strconv.ParseInt(countStr, 10, 64)
		if err != nil {
			p.warnf("FNDA record with invalid count %q", countStr)
			return
		}
		if count < 0 {
			count = 0
			p.negative = true
		}
		fc.addFunc(FuncRecord{Name: fnName, Count: count})

	case "BRDA":
		fc := p.section()
		if fc == nil {
			return
		}
		fields := strings.Split(rest, ",")
		if len(fields) != 4 {
			p.warnf("malformed BRDA record %q", line)
			return
		}
		lineNum, err1 := strconv.Atoi(fields[0])
		block, err2 := strconv.Atoi(fields[1])
		branch, err3 := strconv.Atoi(fields[2])
		if err1 != nil || err2 != nil || err3 != nil || lineNum <= 0 {
			p.warnf("malformed BRDA record %q", line)
			return
		}
		taken := TakenNever
		if fields[3] != "-" {
			taken, err1 = strconv.ParseInt(fields[3], 10, 64)
			if err1 != nil {
				p.warnf("BRDA record with invalid taken count %q", fields[3])
				return
			}
			if taken < 0 {
				taken = 0
				p.negative = true
			}
		}
		fc.addBranch(BranchRecord{Line: lineNum, Block: block, Branch: branch, Taken: taken})

	case "LF", "LH", "FNF", "FNH", "BRF", "BRH":
		// Summary records are recomputed from the detail records on
		// write and intentionally not trusted on read.

	default:
		p.warnf("skipping unknown record tag %q", tag)
	}
}

// section returns the open section, warning when a detail record
// appears outside of one.
func (p *parser) section() *FileCoverage {
	if p.current == nil {
		p.warnf("record outside of an SF section")
		return nil
	}
	return p.current
}
