package patch

import "testing"

// TestReversedInvolution covers spec §8 invariant 1 / "Laws: Reverse
// involution": reversing a patch twice yields a patch equal, field for
// field, to the original.
func TestReversedInvolution(t *testing.T) {
	src := NewSource([]byte("unused"))
	original := &Patch{
		OldFilename:      "a.txt",
		NewFilename:      "b.txt",
		Operation:        OpAdded,
		OldExecutableBit: False,
		NewExecutableBit: True,
		OldSymlinkBit:    Unknown,
		NewSymlinkBit:    False,
		PropPatches:      map[string]*PropertyPatch{},
		Mergeinfo:        nil,
		ReverseMergeinfo: nil,
		BinaryPatch: &BinaryPatch{
			File:        "b.txt",
			SrcStart:    10,
			SrcEnd:      20,
			SrcFilesize: 5,
			DstStart:    30,
			DstEnd:      50,
			DstFilesize: 8,
		},
		source: src,
	}
	original.Hunks = []*Hunk{{OriginalStart: 1, OriginalLength: 2, ModifiedStart: 1, ModifiedLength: 3, patch: original}}

	twice := original.Reversed().Reversed()

	if twice.OldFilename != original.OldFilename || twice.NewFilename != original.NewFilename {
		t.Errorf("filenames = (%q, %q), want (%q, %q)", twice.OldFilename, twice.NewFilename, original.OldFilename, original.NewFilename)
	}
	if twice.Operation != original.Operation {
		t.Errorf("Operation = %v, want %v", twice.Operation, original.Operation)
	}
	if twice.OldExecutableBit != original.OldExecutableBit || twice.NewExecutableBit != original.NewExecutableBit {
		t.Errorf("executable bits = (%v, %v), want (%v, %v)", twice.OldExecutableBit, twice.NewExecutableBit, original.OldExecutableBit, original.NewExecutableBit)
	}
	if twice.OldSymlinkBit != original.OldSymlinkBit || twice.NewSymlinkBit != original.NewSymlinkBit {
		t.Errorf("symlink bits = (%v, %v), want (%v, %v)", twice.OldSymlinkBit, twice.NewSymlinkBit, original.OldSymlinkBit, original.NewSymlinkBit)
	}
	if twice.Reverse != original.Reverse {
		t.Errorf("Reverse = %v, want %v", twice.Reverse, original.Reverse)
	}
	if *twice.BinaryPatch != *original.BinaryPatch {
		t.Errorf("BinaryPatch = %+v, want %+v", *twice.BinaryPatch, *original.BinaryPatch)
	}
	if len(twice.Hunks) != 1 || twice.Hunks[0].OriginalStart != original.Hunks[0].OriginalStart {
		t.Errorf("Hunks = %+v, want matching %+v", twice.Hunks, original.Hunks)
	}
}

// TestReversedMapsAddDelete covers spec §3 invariant 6: operation add<->delete
// under reversal, with every other operation its own inverse.
func TestReversedMapsAddDelete(t *testing.T) {
	tests := []struct {
		op   Operation
		want Operation
	}{
		{OpAdded, OpDeleted},
		{OpDeleted, OpAdded},
		{OpModified, OpModified},
		{OpCopied, OpCopied},
		{OpMoved, OpMoved},
		{OpUnchanged, OpUnchanged},
	}
	for _, tt := range tests {
		p := &Patch{Operation: tt.op, PropPatches: map[string]*PropertyPatch{}}
		if got := p.Reversed().Operation; got != tt.want {
			t.Errorf("Reversed(%v).Operation = %v, want %v", tt.op, got, tt.want)
		}
	}
}

// TestReversedSwapsBinaryOffsets covers spec §3 "swapping ... binary src/dst
// offsets" under reversal.
func TestReversedSwapsBinaryOffsets(t *testing.T) {
	p := &Patch{
		PropPatches: map[string]*PropertyPatch{},
		BinaryPatch: &BinaryPatch{SrcStart: 1, SrcEnd: 2, SrcFilesize: 3, DstStart: 4, DstEnd: 5, DstFilesize: 6},
	}
	r := p.Reversed()
	if r.BinaryPatch.SrcStart != 4 || r.BinaryPatch.SrcEnd != 5 || r.BinaryPatch.SrcFilesize != 6 {
		t.Errorf("reversed src = %+v, want dst of original", r.BinaryPatch)
	}
	if r.BinaryPatch.DstStart != 1 || r.BinaryPatch.DstEnd != 2 || r.BinaryPatch.DstFilesize != 3 {
		t.Errorf("reversed dst = %+v, want src of original", r.BinaryPatch)
	}
}

func TestPatchValid(t *testing.T) {
	tests := []struct {
		name string
		p    *Patch
		want bool
	}{
		{"both set", &Patch{OldFilename: "a", NewFilename: "b"}, true},
		{"old missing", &Patch{NewFilename: "b"}, false},
		{"new missing", &Patch{OldFilename: "a"}, false},
		{"neither set", &Patch{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}
