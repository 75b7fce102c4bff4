// Package patchcheck cross-checks our own patch parser (internal/patch)
// against github.com/bluekeyes/go-gitdiff's independent implementation —
// a debugging aid exposed by the CLI's "patch -show-hunks" path, grounded
// on the teacher's use of gitdiff.Parse for patch introspection
// (internal/stager/hunk_info.go, patch_parser_test.go).
package patchcheck

import (
	"fmt"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/svndiff/svndiff/internal/patch"
)

// Mismatch describes one place our parser and go-gitdiff disagree.
type Mismatch struct {
	File   string
	Detail string
}

// CrossCheck parses src with both internal/patch's own parser and
// go-gitdiff, and reports structural disagreements (file count, files of
// ours with no go-gitdiff file of the same new name, hunk count per file).
// Old filenames are not compared. It is advisory only: go-gitdiff
// does not understand svn:mergeinfo, property patches, or byte-range
// reversal, so only the subset both parsers model is compared.
func CrossCheck(src []byte) ([]Mismatch, error) {
	ours, err := parseAllOurs(src)
	if err != nil {
		return nil, fmt.Errorf("our parser failed: %w", err)
	}

	theirs, _, err := gitdiff.Parse(strings.NewReader(string(src)))
	if err != nil {
		return nil, fmt.Errorf("go-gitdiff failed: %w", err)
	}

	var mismatches []Mismatch
	if len(ours) != len(theirs) {
		mismatches = append(mismatches, Mismatch{
			Detail: fmt.Sprintf("file count mismatch: ours=%d go-gitdiff=%d", len(ours), len(theirs)),
		})
	}

	theirByNewName := make(map[string]*gitdiff.File, len(theirs))
	for _, f := range theirs {
		theirByNewName[f.NewName] = f
	}

	for _, p := range ours {
		tf, ok := theirByNewName[p.NewFilename]
		if !ok {
			mismatches = append(mismatches, Mismatch{
				File:   p.NewFilename,
				Detail: "go-gitdiff has no matching file",
			})
			continue
		}
		if len(p.Hunks) != len(tf.TextFragments) {
			mismatches = append(mismatches, Mismatch{
				File:   p.NewFilename,
				Detail: fmt.Sprintf("hunk count mismatch: ours=%d go-gitdiff=%d", len(p.Hunks), len(tf.TextFragments)),
			})
		}
	}

	return mismatches, nil
}

func parseAllOurs(src []byte) ([]*patch.Patch, error) {
	parser := patch.NewParser(patch.NewSource(src), patch.ParseOptions{})
	var out []*patch.Patch
	for {
		p, err := parser.NextPatch()
		if err != nil {
			return nil, err
		}
		if p == nil {
			break
		}
		out = append(out, p)
	}
	return out, nil
}
