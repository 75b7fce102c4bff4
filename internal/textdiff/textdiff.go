// Package textdiff is the pluggable "text differ" collaborator the core
// spec treats as external (spec §1 excludes the byte-level diff algorithm
// and the unified-format printer from its own scope, but §4.C drives one
// through this interface). The default implementation renders unified
// hunks with github.com/pmezard/go-difflib and uses
// github.com/sergi/go-diff's diffmatchpatch for a cheap equality
// pre-check so property diffing never emits a no-op hunk.
package textdiff

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Options configures one invocation of a Differ.
type Options struct {
	// ContextLines is the number of unchanged lines surrounding each hunk;
	// zero selects the default of 3.
	ContextLines int
	// HunkDelimiter replaces the standard "@@" marker (spec §4.C uses "##"
	// for property hunks).
	HunkDelimiter string
	// SuppressFileHeader drops the --- /+++ lines a differ would normally
	// emit; the caller (propdiff, or the content-diff front end) supplies
	// its own labels via §4.A instead.
	SuppressFileHeader bool
	// Label1, Label2 are used for the --- / +++ lines when the header is
	// not suppressed.
	Label1, Label2 string
}

// Differ renders a unified diff between two texts. old/new are whole file
// contents; implementations split them into lines internally.
type Differ interface {
	Diff(old, new string, opts Options) (string, error)
}

// DefaultDiffer is the go-difflib-backed implementation.
type DefaultDiffer struct{}

// Identical reports whether old and new are byte-for-byte the same,
// computed via diffmatchpatch's main diff algorithm. It serves as the
// "is there anything to show" pre-check (propdiff); the line-level diff in
// Diff below is go-difflib's.
func Identical(old, new string) bool {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(old, new, false)
	for _, d := range diffs {
		if d.Type != diffmatchpatch.DiffEqual {
			return false
		}
	}
	return true
}

// Diff renders old -> new as a unified diff. With opts.HunkDelimiter set to
// something other than "@@", the standard go-difflib header token is
// rewritten in place; with opts.SuppressFileHeader, the leading --- / +++
// lines are dropped entirely.
func (DefaultDiffer) Diff(old, new string, opts Options) (string, error) {
	ctx := opts.ContextLines
	if ctx == 0 {
		ctx = 3
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(old),
		B:        difflib.SplitLines(new),
		FromFile: opts.Label1,
		ToFile:   opts.Label2,
		Context:  ctx,
	}

	rendered, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", err
	}

	lines := strings.SplitAfter(rendered, "\n")
	var out strings.Builder
	for _, line := range lines {
		if opts.SuppressFileHeader && (strings.HasPrefix(line, "--- ") || strings.HasPrefix(line, "+++ ")) {
			continue
		}
		if delim := opts.HunkDelimiter; delim != "" && delim != "@@" && strings.HasPrefix(line, "@@") {
			line = rewriteHunkDelimiter(line, delim)
		}
		out.WriteString(line)
	}
	return out.String(), nil
}

// rewriteHunkDelimiter replaces the two "@@" tokens bracketing a standard
// hunk header with delim, preserving the "-A,B +C,D" body between them.
func rewriteHunkDelimiter(line, delim string) string {
	trimmed := strings.TrimPrefix(line, "@@")
	idx := strings.Index(trimmed, "@@")
	if idx < 0 {
		return line
	}
	body := trimmed[:idx]
	rest := trimmed[idx+2:]
	return delim + body + delim + rest
}
