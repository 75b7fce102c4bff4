package patch

import (
	"strconv"
	"strings"
)

// parseBinaryBlock scans a "GIT binary patch" block (spec §4.I): the first
// "literal N" segment is the destination (new) content, the second is the
// source (old) content. Each segment is a run of base85 blob lines
// terminated by a blank line. A line that doesn't fit the grammar ends
// scanning and is rewound for the next call (spec §4.I "Any other line
// terminates scanning and rewinds").
func (pr *Parser) parseBinaryBlock(patch *Patch) error {
	data := pr.src.Bytes()

	bp := &BinaryPatch{File: patch.NewFilename}
	segment := 0 // 0 = dst (new), 1 = src (old)

	for segment < 2 {
		lineStart := pr.pos
		line, next, ok := lineAt(data, pr.pos)
		if !ok {
			break
		}

		if hasPrefix(line, "literal ") {
			n, err := strconv.ParseInt(strings.TrimSpace(string(line[len("literal "):])), 10, 64)
			if err != nil {
				// unparseable "literal N": abandon this segment, but keep
				// scanning for the next one (spec §7 "recoverable")
				pr.pos = next
				segment++
				continue
			}

			blobStart := next
			pos := next
			blobEnd := next
			for {
				bline, bnext, bok := lineAt(data, pos)
				if !bok {
					break
				}
				if len(bline) == 0 {
					// the blank line separates segments; it belongs to the
					// outer scan position, not to the blob byte range
					// (a last blob line of exactly 52 bytes must not be
					// followed by an empty line when re-decoded).
					pos = bnext
					break
				}
				if !isBlobLine(bline) {
					break
				}
				pos = bnext
				blobEnd = pos
			}

			if segment == 0 {
				bp.DstStart, bp.DstEnd, bp.DstFilesize = blobStart, blobEnd, n
			} else {
				bp.SrcStart, bp.SrcEnd, bp.SrcFilesize = blobStart, blobEnd, n
			}
			pr.pos = pos
			segment++
			continue
		}

		if strings.TrimSpace(string(line)) == "" {
			pr.pos = next
			continue
		}

		// doesn't match the binary-patch grammar: rewind, block is done
		pr.pos = lineStart
		break
	}

	if bp.DstStart != bp.DstEnd || bp.SrcStart != bp.SrcEnd || bp.DstFilesize > 0 || bp.SrcFilesize > 0 {
		patch.BinaryPatch = bp
	}
	return nil
}

// isBlobLine reports whether line matches a base85 blob line: starts
// A-Z/a-z, length <= 66, contains neither ':' nor ' ' (spec §4.I).
func isBlobLine(line []byte) bool {
	if len(line) == 0 || len(line) > 66 {
		return false
	}
	c := line[0]
	if !((c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')) {
		return false
	}
	for _, b := range line {
		if b == ':' || b == ' ' {
			return false
		}
	}
	return true
}
