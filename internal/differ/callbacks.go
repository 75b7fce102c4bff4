// Package differ implements the diff driver (§4.D), the added/deleted-tree
// walker (§4.E) and the diff callback set (§4.F): the producer half of the
// unified-diff/patch engine. It classifies a pair of targets into one of
// four modes, resolves endpoints and pegs, and replays changes into a
// caller-supplied Callbacks implementation — the text front-end this core
// treats as an external collaborator.
package differ

import (
	"context"

	"github.com/svndiff/svndiff/internal/patch"
)

// PropChanges is a sorted list of property name/old/new triples, mirroring
// the shape internal/propdiff.Change consumes.
type PropChanges []PropChange

// PropChange is one changed property.
type PropChange struct {
	Name     string
	Old, New string
}

// State is returned by every callback; this core never tracks real
// conflict/notification state, so it is always the zero value.
type State struct {
	TreeConflicted bool
}

// Callbacks is the capability set the diff driver invokes as it walks a
// comparison (spec §4.F); the text front-end binds to it.
type Callbacks interface {
	FileOpened(ctx context.Context, path string, rev patch.Revision) (State, error)
	FileChanged(ctx context.Context, path string, tmpOld, tmpNew []byte, revOld, revNew patch.Revision, mimeOld, mimeNew string, propChanges PropChanges, oldProps map[string]string) (State, error)
	FileAdded(ctx context.Context, path string, tmpNew []byte, revOld, revNew patch.Revision, mimeNew string, copyFrom string, copyFromRev patch.Revision, propChanges PropChanges) (State, error)
	FileDeleted(ctx context.Context, path string, tmpOld []byte, mimeOld, mimeNew string, oldProps map[string]string) (State, error)

	DirOpened(ctx context.Context, path string, rev patch.Revision) (State, error)
	DirAdded(ctx context.Context, path string, rev patch.Revision) (State, error)
	DirDeleted(ctx context.Context, path string) (State, error)
	DirPropsChanged(ctx context.Context, path string, propChanges PropChanges, isAdd bool) (State, error)
	DirClosed(ctx context.Context, path string) (State, error)
}
