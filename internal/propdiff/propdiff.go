// Package propdiff emits the "Property changes on: <path>" section of a
// unified patch (spec §4.C): one Added:/Deleted:/Modified: block per
// changed property, with svn:mergeinfo pretty-printed when possible and
// everything else diffed in "##"-delimited unified mode.
package propdiff

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/svndiff/svndiff/internal/mergeinfo"
	"github.com/svndiff/svndiff/internal/textdiff"
)

const mergeinfoPropName = "svn:mergeinfo"

// Change describes one property's before/after value. An empty Old means
// the property was added; an empty New means it was deleted.
type Change struct {
	Name     string
	Old, New string
}

// visitedPaths tracks which paths have already had a header block emitted
// in the current output (spec §4.C: "only one header block per path is
// emitted per diff").
type visitedPaths map[string]bool

// Writer emits property-diff sections, deduplicating per-path headers
// across repeated calls (content changes and property changes on the same
// path share the set).
type Writer struct {
	differ  textdiff.Differ
	visited visitedPaths
}

// NewWriter returns a Writer using differ to render non-mergeinfo
// property values. A nil differ defaults to textdiff.DefaultDiffer{}.
func NewWriter(differ textdiff.Differ) *Writer {
	if differ == nil {
		differ = textdiff.DefaultDiffer{}
	}
	return &Writer{differ: differ, visited: visitedPaths{}}
}

// Emit writes the property-changes section for path, given its sorted
// changes. If the path's header was already emitted by a prior call
// (e.g. the content diff for the same file), only the property blocks are
// written, not the "Property changes on:" ruler.
func (w *Writer) Emit(out io.Writer, path string, changes []Change) error {
	if len(changes) == 0 {
		return nil
	}

	sorted := make([]Change, 0, len(changes))
	for _, c := range changes {
		if !textdiff.Identical(c.Old, c.New) {
			sorted = append(sorted, c)
		}
	}
	if len(sorted) == 0 {
		return nil
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	if !w.visited[path] {
		if _, err := fmt.Fprintf(out, "\nProperty changes on: %s\n", path); err != nil {
			return err
		}
		if _, err := io.WriteString(out, strings.Repeat("_", 67)+"\n"); err != nil {
			return err
		}
		w.visited[path] = true
	}

	for _, c := range sorted {
		if err := w.emitOne(out, c); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) emitOne(out io.Writer, c Change) error {
	header := propHeaderVerb(c)
	if _, err := fmt.Fprintf(out, "%s%s\n", header, c.Name); err != nil {
		return err
	}

	if c.Name == mergeinfoPropName {
		if body, err := w.renderMergeinfo(c); err == nil {
			_, werr := io.WriteString(out, body)
			return werr
		}
		// mergeinfo-parse-error is swallowed: fall through to plain diffing
		// (spec §4.C step 2).
	}

	return w.renderPlain(out, c)
}

func propHeaderVerb(c Change) string {
	switch {
	case c.Old == "" && c.New != "":
		return "Added: "
	case c.Old != "" && c.New == "":
		return "Deleted: "
	default:
		return "Modified: "
	}
}

func (w *Writer) renderMergeinfo(c Change) (string, error) {
	var tree mergeinfo.Tree
	val := c.New
	if val == "" {
		val = c.Old
	}
	for _, line := range strings.Split(val, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		// Property values list ranges as "/path:1-5,7"; ParseLine reads the
		// "/path:r1-5,r7" form.
		if i := strings.LastIndex(line, ":"); i >= 0 && !strings.Contains(line, ":r") {
			line = line[:i] + ":r" + strings.ReplaceAll(line[i+1:], ",", ",r")
		}
		path, ranges, err := mergeinfo.ParseLine(line)
		if err != nil {
			return "", err
		}
		if tree == nil {
			tree = mergeinfo.Tree{}
		}
		tree.Merge(path, ranges)
	}
	if tree == nil {
		return "", fmt.Errorf("empty mergeinfo value")
	}
	pretty, err := mergeinfo.PrettyPrint(tree)
	if err != nil {
		return "", err
	}
	verb := "   Merged"
	if c.New == "" {
		verb = "   Reverse-merged"
	}
	var b strings.Builder
	b.WriteString(verb)
	b.WriteString(" via svn:mergeinfo:\n")
	b.WriteString(pretty)
	return b.String(), nil
}

// renderPlain normalizes old/new by appending the platform EOL terminator
// if absent, then invokes the text differ in unified mode with a "##"
// hunk delimiter and no per-file header (spec §4.C step 3).
func (w *Writer) renderPlain(out io.Writer, c Change) error {
	old, oldHadEOL := ensureEOL(c.Old)
	new, newHadEOL := ensureEOL(c.New)

	rendered, err := w.differ.Diff(old, new, textdiff.Options{
		ContextLines:       0,
		HunkDelimiter:      "##",
		SuppressFileHeader: true,
	})
	if err != nil {
		return err
	}

	if _, err := io.WriteString(out, rendered); err != nil {
		return err
	}
	if !oldHadEOL || !newHadEOL {
		if _, err := io.WriteString(out, "\\ No newline at end of property\n"); err != nil {
			return err
		}
	}
	return nil
}

func ensureEOL(s string) (adjusted string, hadEOL bool) {
	if s == "" {
		return s, true
	}
	if strings.HasSuffix(s, "\n") {
		return s, true
	}
	return s + "\n", false
}
