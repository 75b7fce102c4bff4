package patch

// ContentSide selects which reconstruction a HunkReader produces.
type ContentSide int

const (
	// Original reconstructs the pre-change (minus+context) text.
	Original ContentSide = iota
	// Modified reconstructs the post-change (plus+context) text.
	Modified
)

// HunkReader replays one side of a hunk's reconstruction on demand
// (spec §4.H). It mutates the hunk's Range.Current as it is consumed, so a
// HunkReader and its Hunk share state — callers should not read both sides
// concurrently.
type HunkReader struct {
	hunk *Hunk
	side ContentSide
	done bool
}

// NewHunkReader returns a reader over one side of h, resetting that side's
// Range.Current to its Start.
func NewHunkReader(h *Hunk, side ContentSide) *HunkReader {
	r := rangeFor(h, side)
	r.Current = r.Start
	return &HunkReader{hunk: h, side: side}
}

func rangeFor(h *Hunk, side ContentSide) *Range {
	if side == Original {
		return &h.OriginalTextRange
	}
	return &h.ModifiedTextRange
}

func noFinalEOL(h *Hunk, side ContentSide) bool {
	if side == Original {
		return h.OriginalNoFinalEOL
	}
	return h.ModifiedNoFinalEOL
}

// classify reports whether a line with prefix op is kept for side and
// whether its prefix is stripped, honoring patch.Reverse by swapping '+'
// and '-' before filtering
// (spec §4.H "If the caller has set the patch to reverse, swap + <-> -").
func classify(h *Hunk, side ContentSide, op byte) (keep, strip bool) {
	if h.patch != nil && h.patch.Reverse {
		switch op {
		case '+':
			op = '-'
		case '-':
			op = '+'
		}
	}
	switch side {
	case Original:
		switch op {
		case ' ', '-':
			return true, true
		default:
			return false, false
		}
	default: // Modified
		switch op {
		case ' ', '+':
			return true, true
		default:
			return false, false
		}
	}
}

// Next returns the next reconstructed line (with its original trailing
// newline, if any), or ok=false at the end of the hunk's range
// (spec §8 invariant 3: the original side never carries a '+'-prefixed
// line, and vice versa).
func (r *HunkReader) Next() (line []byte, ok bool, err error) {
	if r.done {
		return nil, false, nil
	}

	rng := rangeFor(r.hunk, r.side)
	data := r.hunk.sourceBytes()

	for rng.Current < rng.End {
		raw, next, lok := lineAt(data, rng.Current)
		if !lok {
			break
		}
		rng.Current = next

		if hasPrefix(raw, "\\") {
			continue
		}
		if len(raw) == 0 {
			continue
		}

		keep, strip := classify(r.hunk, r.side, raw[0])
		if !keep {
			continue
		}

		out := raw
		if strip {
			out = raw[1:]
		}

		isLast := rng.Current >= rng.End
		hasEOL := r.hasTrailingNewline(raw, next)
		result := append([]byte{}, out...)
		if hasEOL {
			result = append(result, '\n')
		} else if isLast && !noFinalEOL(r.hunk, r.side) {
			// synthesize an EOL so downstream consumers aren't surprised
			// (spec §4.H "synthesize an EOL by reading the first EOL found
			// in the patch file")
			if eol := r.firstEOLInFile(); len(eol) > 0 {
				result = append(result, eol...)
			} else {
				result = append(result, '\n')
			}
		}

		if isLast {
			r.done = true
		}
		return result, true, nil
	}

	r.done = true
	return nil, false, nil
}

// hasTrailingNewline reports whether the physical line at [lineStart, next)
// actually ended with '\n' in the source (as opposed to running off the end
// of the file).
func (r *HunkReader) hasTrailingNewline(raw []byte, next int64) bool {
	data := r.hunk.sourceBytes()
	return next > 0 && next <= int64(len(data)) && data[next-1] == '\n'
}

func (r *HunkReader) firstEOLInFile() []byte {
	data := r.hunk.sourceBytes()
	for _, b := range data {
		if b == '\n' {
			return []byte{'\n'}
		}
	}
	return nil
}

func (h *Hunk) sourceBytes() []byte {
	if h.patch == nil || h.patch.source == nil {
		return nil
	}
	return h.patch.source.Bytes()
}

// Lines drains r and returns every reconstructed line.
func (r *HunkReader) Lines() ([][]byte, error) {
	var out [][]byte
	for {
		line, ok, err := r.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, line)
	}
}
