package tracefile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// Write serializes the model as a tracefile. Sections are sorted by
// file path and records by ascending line number within each kind, so
// identical models always produce identical bytes and the output
// parses back to an equal model.
func Write(w io.Writer, m *Model) error {
	bw := bufio.NewWriter(w)
	for _, path := range m.Paths() {
		fc := m.Files[path]
		if err := writeSection(bw, fc); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile serializes the model to path atomically: the data is
// written to a temporary file in the destination directory and
// renamed into place.
func WriteFile(path string, m *Model) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".lcov-*.info")
	if err != nil {
		return fmt.Errorf("create temp tracefile: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, m); err != nil {
		tmp.Close()
		return fmt.Errorf("write tracefile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close tracefile: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename tracefile into place: %w", err)
	}
	return nil
}

func writeSection(w *bufio.Writer, fc *FileCoverage) error {
	fmt.Fprintf(w, "TN:%s\n", fc.TestName)
	fmt.Fprintf(w, "SF:%s\n", fc.Path)

	funcs := fc.SortedFuncs()
	for _, fn := range funcs {
		fmt.Fprintf(w, "FN:%d,%s\n", fn.StartLine, fn.Name)
	}
	for _, fn := range funcs {
		fmt.Fprintf(w, "FNDA:%d,%s\n", fn.Count, fn.Name)
	}
	fnFound, fnHit := FuncStats(fc)
	fmt.Fprintf(w, "FNF:%d\n", fnFound)
	fmt.Fprintf(w, "FNH:%d\n", fnHit)

	branches := fc.SortedBranches()
	for _, br := range branches {
		taken := "-"
		if br.Taken != TakenNever {
			taken = strconv.FormatInt(br.Taken, 10)
		}
		fmt.Fprintf(w, "BRDA:%d,%d,%d,%s\n", br.Line, br.Block, br.Branch, taken)
	}
	if len(branches) > 0 {
		brFound, brHit := BranchStats(fc)
		fmt.Fprintf(w, "BRF:%d\n", brFound)
		fmt.Fprintf(w, "BRH:%d\n", brHit)
	}

	lnFound, lnHit := LineStats(fc)
	for _, ln := range fc.SortedLines() {
		if ln.Checksum != "" {
			fmt.Fprintf(w, "DA:%d,%d,%s\n", ln.Line, ln.Count, ln.Checksum)
		} else {
			fmt.Fprintf(w, "DA:%d,%d\n", ln.Line, ln.Count)
		}
	}
	fmt.Fprintf(w, "LF:%d\n", lnFound)
	fmt.Fprintf(w, "LH:%d\n", lnHit)
	_, err := fmt.Fprintln(w, "end_of_record")
	return err
}

// LineStats returns the number of instrumented and executed lines.
func LineStats(fc *FileCoverage) (found, hit int) {
	for _, r := range fc.Lines {
		found++
		if r.Count > 0 {
			hit++
		}
	}
	return found, hit
}

// FuncStats returns the number of instrumented and called functions.
func FuncStats(fc *FileCoverage) (found, hit int) {
	for _, r := range fc.Funcs {
		found++
		if r.Count > 0 {
			hit++
		}
	}
	return found, hit
}

// BranchStats returns the number of instrumented and taken branches.
// A branch that was never reached counts as found but not hit.
func BranchStats(fc *FileCoverage) (found, hit int) {
	for _, r := range fc.Branches {
		found++
		if r.Taken != TakenNever && r.Taken > 0 {
			hit++
		}
	}
	return found, hit
}
