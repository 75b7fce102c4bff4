package patch

import (
	"strconv"
	"strings"

	"github.com/svndiff/svndiff/internal/mergeinfo"
)

// parseHunksAndProps consumes the hunk and property-patch body that follows
// a completed classical or git-extended header, until the patch ends (a
// line that opens a new "diff --git"/"Index:" or EOF).
func (pr *Parser) parseHunksAndProps(patch *Patch) error {
	data := pr.src.Bytes()

	for {
		lineStart := pr.pos
		line, _, ok := lineAt(data, pr.pos)
		if !ok {
			return nil
		}

		switch {
		case hasPrefix(line, "@@"):
			hunk, err := pr.parseOneHunk(patch, false)
			if err != nil {
				return err
			}
			patch.Hunks = append(patch.Hunks, hunk)

		case hasPrefix(line, "Added:"), hasPrefix(line, "Deleted:"), hasPrefix(line, "Modified:"):
			if err := pr.parsePropertySection(patch, string(line)); err != nil {
				return err
			}

		case hasPrefix(line, "diff --git"), hasPrefix(line, "Index:"):
			pr.pos = lineStart
			return nil

		case strings.TrimSpace(string(line)) == "":
			pr.pos += int64(len(line)) + 1

		default:
			pr.pos = lineStart
			return nil
		}
	}
}

// parseHunkHeader parses "@@ -A,B +C,D @@ [comment]" or "## -A,B +C,D ##
// [comment]" (spec §4.G "Header parsing"). Commas are optional; a missing
// length defaults to 1.
func parseHunkHeader(line string, delim string) (oldStart, oldLen, newStart, newLen int64, comment string, ok bool) {
	rest := strings.TrimPrefix(line, delim)
	end := strings.Index(rest, delim)
	if end < 0 {
		return 0, 0, 0, 0, "", false
	}
	body := strings.TrimSpace(rest[:end])
	comment = strings.TrimSpace(rest[end+len(delim):])

	fields := strings.Fields(body)
	if len(fields) != 2 {
		return 0, 0, 0, 0, "", false
	}

	oldStart, oldLen, ok1 := parseRangeField(fields[0], '-')
	newStart, newLen, ok2 := parseRangeField(fields[1], '+')
	if !ok1 || !ok2 {
		return 0, 0, 0, 0, "", false
	}
	return oldStart, oldLen, newStart, newLen, comment, true
}

func parseRangeField(field string, sigil byte) (start, length int64, ok bool) {
	if len(field) == 0 || field[0] != sigil {
		return 0, 0, false
	}
	field = field[1:]
	length = 1
	if comma := strings.IndexByte(field, ','); comma >= 0 {
		s, err1 := strconv.ParseInt(field[:comma], 10, 64)
		l, err2 := strconv.ParseInt(field[comma+1:], 10, 64)
		if err1 != nil || err2 != nil {
			return 0, 0, false
		}
		return s, l, true
	}
	s, err := strconv.ParseInt(field, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return s, 1, true
}

// parseOneHunk parses one hunk (content or property) starting at pr.pos,
// which must be positioned at the "@@"/"##" header line. forProperty
// indicates a "##" delimiter. Body lines are never diverted through the
// merge-info sub-parser here; parseOneHunkNamed does that for
// "svn:mergeinfo" (spec §4.G "Hunk-body loop", "Merge-info parsing").
func (pr *Parser) parseOneHunk(patch *Patch, forProperty bool) (*Hunk, error) {
	return pr.parseOneHunkNamed(patch, forProperty, "")
}

// parseOneHunkNamed parses one hunk. When propName is "svn:mergeinfo", body
// lines are diverted through the merge-info sub-parser into
// patch.Mergeinfo/patch.ReverseMergeinfo according to which declared count
// each line is consumed against, per spec §3 "mergeinfo, reverse_mergeinfo —
// parsed merge-info trees extracted from any svn:mergeinfo hunk".
func (pr *Parser) parseOneHunkNamed(patch *Patch, forProperty bool, propName string) (*Hunk, error) {
	data := pr.src.Bytes()
	delim := "@@"
	if forProperty {
		delim = "##"
	}

	headerStart := pr.pos
	line, next, ok := lineAt(data, pr.pos)
	if !ok || !hasPrefix(line, delim) {
		return nil, errSyntax("expected hunk header")
	}
	oldStart, oldLen, newStart, newLen, comment, ok := parseHunkHeader(string(line), delim)
	if !ok {
		return nil, errSyntax("malformed hunk header: " + string(line))
	}
	pr.pos = next

	h := &Hunk{
		OriginalStart: oldStart,
		OriginalLength: oldLen,
		ModifiedStart: newStart,
		ModifiedLength: newLen,
		Comment:       comment,
	}

	originalRemaining := oldLen
	modifiedRemaining := newLen
	lastWasOriginal := true

	originalStart := pr.pos
	modifiedStart := pr.pos

	// isMergeinfo diverts every body line (regardless of its leading
	// ' '/'+'/'-' sigil) through the merge-info sub-parser before the usual
	// per-character dispatch, per spec §4.G "Merge-info parsing": reverse
	// merges are the lines consumed while originalRemaining is still
	// positive, forward merges the ones consumed afterwards while
	// modifiedRemaining is still positive.
	isMergeinfo := propName == "svn:mergeinfo"
	reverseMI := mergeinfo.Tree{}
	forwardMI := mergeinfo.Tree{}

	for originalRemaining > 0 || modifiedRemaining > 0 {
		lineStart := pr.pos
		line, next, ok := lineAt(data, pr.pos)
		if !ok {
			break
		}

		if hasPrefix(line, "\\") {
			if lastWasOriginal {
				h.OriginalNoFinalEOL = true
			} else {
				h.ModifiedNoFinalEOL = true
			}
			pr.pos = next
			continue
		}

		if len(line) == 0 {
			// blank line mid-hunk counts as context when both sides still
			// expect lines (spec §4.G)
			if originalRemaining > 0 && modifiedRemaining > 0 {
				originalRemaining--
				modifiedRemaining--
				pr.pos = next
				continue
			}
			break
		}

		if isMergeinfo {
			if path, ranges, err := mergeinfo.ParseLine(string(line)); err == nil {
				if originalRemaining > 0 {
					reverseMI.Merge(path, ranges)
					originalRemaining--
				} else {
					forwardMI.Merge(path, ranges)
					modifiedRemaining--
				}
				pr.pos = next
				continue
			}
		}

		op := line[0]
		switch op {
		case ' ':
			if originalRemaining <= 0 {
				h.OriginalFuzz++
			} else {
				originalRemaining--
			}
			if modifiedRemaining <= 0 {
				h.ModifiedFuzz++
			} else {
				modifiedRemaining--
			}
			lastWasOriginal = true
			pr.pos = next

		case '-':
			if originalRemaining <= 0 {
				h.OriginalFuzz++
			} else {
				originalRemaining--
			}
			lastWasOriginal = true
			pr.pos = next

		case '+':
			if modifiedRemaining <= 0 {
				h.ModifiedFuzz++
			} else {
				modifiedRemaining--
			}
			lastWasOriginal = false
			pr.pos = next

		default:
			if pr.opts.IgnoreWhitespace {
				// treat any other non-empty line as context in
				// whitespace-insensitive mode
				if originalRemaining > 0 {
					originalRemaining--
				} else {
					h.OriginalFuzz++
				}
				if modifiedRemaining > 0 {
					modifiedRemaining--
				} else {
					h.ModifiedFuzz++
				}
				pr.pos = next
				continue
			}
			pr.pos = lineStart
			goto doneBody
		}
	}
doneBody:

	// leftover declared counts become fuzz (spec §3 invariant 3)
	if originalRemaining > 0 {
		h.OriginalFuzz += originalRemaining
		h.OriginalLength -= originalRemaining
	}
	if modifiedRemaining > 0 {
		h.ModifiedFuzz += modifiedRemaining
		h.ModifiedLength -= modifiedRemaining
	}

	h.DiffTextRange = Range{Start: headerStart, Current: headerStart, End: pr.pos}
	h.OriginalTextRange = Range{Start: originalStart, Current: originalStart, End: pr.pos}
	h.ModifiedTextRange = Range{Start: modifiedStart, Current: modifiedStart, End: pr.pos}

	if isMergeinfo {
		// Forward merges land in patch.Mergeinfo and reverse merges in
		// patch.ReverseMergeinfo; NextPatch's post-parse Patch.Reversed()
		// swaps the two wholesale when -reverse is requested, so this
		// assignment stays unconditional here (spec §4.G).
		mergeInto(&patch.Mergeinfo, forwardMI)
		mergeInto(&patch.ReverseMergeinfo, reverseMI)
	}

	return h, nil
}

func mergeInto(target *mergeinfo.Tree, src mergeinfo.Tree) {
	if len(src) == 0 {
		return
	}
	if *target == nil {
		*target = mergeinfo.Tree{}
	}
	for k, v := range src {
		(*target).Merge(k, v)
	}
}

type syntaxError string

func (e syntaxError) Error() string { return string(e) }
func errSyntax(msg string) error    { return syntaxError(msg) }
