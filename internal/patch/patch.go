package patch

import "github.com/svndiff/svndiff/internal/mergeinfo"

// Source is the shared, read-only backing buffer for a parsed patch file
// (spec §5 "Shared resources": "The patch-file handle is shared read-only
// between the parser ... and hunk readers"). Patches and hunks keep byte
// offsets into a Source rather than copies of the underlying text.
type Source struct {
	data []byte
}

// NewSource wraps patch-file bytes for parsing.
func NewSource(data []byte) *Source { return &Source{data: data} }

// Bytes returns the full backing buffer.
func (s *Source) Bytes() []byte { return s.data }

// Range is a byte-offset cursor into a Source (spec §3 "Three byte-range
// cursors"). Current is mutable as the hunk is consumed.
type Range struct {
	Start, Current, End int64
}

// Hunk is one contiguous `@@`/`##`-delimited region of a patch (spec §3 "Hunk").
type Hunk struct {
	OriginalStart, OriginalLength int64
	ModifiedStart, ModifiedLength int64

	LeadingContext, TrailingContext int64

	OriginalFuzz, ModifiedFuzz int64

	OriginalNoFinalEOL, ModifiedNoFinalEOL bool

	DiffTextRange     Range
	OriginalTextRange Range
	ModifiedTextRange Range

	// Comment is any trailing context text on the `@@ ... @@` line.
	Comment string

	patch *Patch
}

// PropertyPatch is a patch component that changes a node's metadata
// (spec §3 "Property patch").
type PropertyPatch struct {
	Name      string
	Operation Operation
	Hunks     []*Hunk
}

// BinaryPatch is a base85-encoded, length-checked binary delta
// (spec §3 "Binary-patch segment").
type BinaryPatch struct {
	File string

	SrcStart, SrcEnd, SrcFilesize int64
	DstStart, DstEnd, DstFilesize int64
}

// Patch is one file's worth of changes parsed from, or destined for, a
// unified-diff/git-extended patch file (spec §3 "Patch").
type Patch struct {
	OldFilename string
	NewFilename string

	Operation Operation

	OldExecutableBit Tristate
	NewExecutableBit Tristate
	OldSymlinkBit    Tristate
	NewSymlinkBit    Tristate

	Hunks []*Hunk

	// PropPatches never contains an entry keyed "svn:mergeinfo"
	// (spec §3 invariant 4, §8 invariant 4); that hunk is diverted into
	// Mergeinfo/ReverseMergeinfo instead.
	PropPatches map[string]*PropertyPatch

	Mergeinfo        mergeinfo.Tree
	ReverseMergeinfo mergeinfo.Tree

	BinaryPatch *BinaryPatch

	// Reverse indicates the patch's intent is to undo rather than apply.
	Reverse bool

	source *Source
}

// Valid reports whether both filenames were set, the acceptance criterion
// for a parsed patch (spec §3 invariant 4).
func (p *Patch) Valid() bool {
	return p.OldFilename != "" && p.NewFilename != ""
}

// Reversed returns the bit-exact inverse of p (spec §3 invariant 6): old/new
// filenames, mode tristates and binary offsets are swapped, and the
// operation is mapped add<->delete (modified/copied/moved/unchanged are
// their own inverse).
func (p *Patch) Reversed() *Patch {
	r := &Patch{
		OldFilename: p.NewFilename,
		NewFilename: p.OldFilename,

		Operation: p.Operation.reversed(),

		OldExecutableBit: p.NewExecutableBit,
		NewExecutableBit: p.OldExecutableBit,
		OldSymlinkBit:    p.NewSymlinkBit,
		NewSymlinkBit:    p.OldSymlinkBit,

		PropPatches: p.PropPatches,

		Mergeinfo:        p.ReverseMergeinfo,
		ReverseMergeinfo: p.Mergeinfo,

		Reverse: !p.Reverse,
		source:  p.source,
	}

	if p.BinaryPatch != nil {
		r.BinaryPatch = &BinaryPatch{
			File:        p.BinaryPatch.File,
			SrcStart:    p.BinaryPatch.DstStart,
			SrcEnd:      p.BinaryPatch.DstEnd,
			SrcFilesize: p.BinaryPatch.DstFilesize,
			DstStart:    p.BinaryPatch.SrcStart,
			DstEnd:      p.BinaryPatch.SrcEnd,
			DstFilesize: p.BinaryPatch.SrcFilesize,
		}
	}

	r.Hunks = make([]*Hunk, len(p.Hunks))
	for i, h := range p.Hunks {
		rh := *h
		rh.patch = r
		r.Hunks[i] = &rh
	}

	return r
}
