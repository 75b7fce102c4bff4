// Package mergeinfo implements the merge-info tree type, its line parser and
// its pretty-printer (spec §4.C "special-case svn:mergeinfo pretty-printing",
// §4.G "Merge-info parsing", and GLOSSARY "Merge-info").
package mergeinfo

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	svnerrors "github.com/svndiff/svndiff/internal/errors"
)

// RevRange is an inclusive revision range [Start, End] merged from a source path.
type RevRange struct {
	Start, End int64
}

func (r RevRange) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.End)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Tree maps a source path to the sorted, non-overlapping revision ranges
// merged from it.
type Tree map[string][]RevRange

// ParseLine parses one svn:mergeinfo property-patch body line of the shape
// "   /trunk:r2-3,r9" (leading whitespace, then a path, a colon, and
// comma-separated "rN" or "rN-M" tokens), per spec §4.G: "look for / and the
// rightmost :r; the substring from / up to whitespace after :r is fed to the
// merge-info tree parser". A malformed line is reported as
// ErrorTypeMergeinfoParseError so the caller can stop treating the line as
// merge-info without aborting the whole parse.
func ParseLine(line string) (path string, ranges []RevRange, err error) {
	slash := strings.Index(line, "/")
	if slash < 0 {
		return "", nil, svnerrors.NewMergeinfoParseError("mergeinfo", fmt.Errorf("no path in %q", line))
	}

	rest := line[slash:]
	colon := strings.LastIndex(rest, ":r")
	if colon < 0 {
		return "", nil, svnerrors.NewMergeinfoParseError("mergeinfo", fmt.Errorf("no revision list in %q", line))
	}

	path = rest[:colon]
	revPart := rest[colon+2:]
	// stop at the first whitespace after the revision list
	if ws := strings.IndexAny(revPart, " \t\n"); ws >= 0 {
		revPart = revPart[:ws]
	}

	for _, tok := range strings.Split(revPart, ",r") {
		tok = strings.TrimPrefix(tok, "r")
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		var rr RevRange
		if dash := strings.IndexByte(tok, '-'); dash >= 0 {
			start, err1 := strconv.ParseInt(tok[:dash], 10, 64)
			end, err2 := strconv.ParseInt(tok[dash+1:], 10, 64)
			if err1 != nil || err2 != nil {
				return "", nil, svnerrors.NewMergeinfoParseError("mergeinfo", fmt.Errorf("bad range %q", tok))
			}
			rr = RevRange{Start: start, End: end}
		} else {
			n, err1 := strconv.ParseInt(tok, 10, 64)
			if err1 != nil {
				return "", nil, svnerrors.NewMergeinfoParseError("mergeinfo", fmt.Errorf("bad revision %q", tok))
			}
			rr = RevRange{Start: n, End: n}
		}
		ranges = append(ranges, rr)
	}

	if path == "" || len(ranges) == 0 {
		return "", nil, svnerrors.NewMergeinfoParseError("mergeinfo", fmt.Errorf("empty path or range list in %q", line))
	}

	return path, ranges, nil
}

// Merge adds ranges for path into the tree, keeping ranges sorted.
func (t Tree) Merge(path string, ranges []RevRange) {
	t[path] = append(t[path], ranges...)
	sort.Slice(t[path], func(i, j int) bool { return t[path][i].Start < t[path][j].Start })
}

// PrettyPrint renders a Tree the way a property-diff hunk body would (one
// "   /path:rA-B,rC" line per source path, sorted for determinism). Returns
// an error classified ErrorTypeMergeinfoParseError if the tree is empty,
// mirroring diff.c's fallback-to-plain-diff behavior on pretty-print failure.
func PrettyPrint(t Tree) (string, error) {
	if len(t) == 0 {
		return "", svnerrors.NewMergeinfoParseError("mergeinfo", fmt.Errorf("empty merge-info tree"))
	}

	paths := make([]string, 0, len(t))
	for p := range t {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	for _, p := range paths {
		ranges := t[p]
		parts := make([]string, len(ranges))
		for i, r := range ranges {
			parts[i] = "r" + r.String()
		}
		fmt.Fprintf(&b, "   %s:%s\n", p, strings.Join(parts, ","))
	}
	return b.String(), nil
}
