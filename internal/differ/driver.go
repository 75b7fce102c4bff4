package differ

import (
	"context"
	"fmt"
	"path"
	"strings"

	svnerrors "github.com/svndiff/svndiff/internal/errors"
	"github.com/svndiff/svndiff/internal/patch"
	"github.com/svndiff/svndiff/internal/vcsreader"
)

var errCancelled = svnerrors.New(svnerrors.ErrorTypeUnknown, "operation cancelled", nil)

// Endpoints is the result of preparing a repo<->repo comparison (spec
// §4.D "Endpoint preparation"): resolved URLs/revisions, the shared base
// path used for label display, both node kinds, and the anchor/target
// split.
type Endpoints struct {
	URL1, URL2 string
	Rev1, Rev2 patch.Revision
	BasePath   string
	Kind1      patch.NodeKind
	Kind2      patch.NodeKind

	// Anchor is the directory diffing is rooted at; Target1/Target2 are
	// the basenames to diff within it when either side is a file.
	Anchor  string
	Target1 string
	Target2 string
}

// PrepareEndpoints resolves both repository-side targets and computes the
// anchor/target split used when either side is a single file rather than
// a directory (spec §4.D).
func PrepareEndpoints(ctx context.Context, reader vcsreader.RepoReader, t1, t2 Target) (Endpoints, error) {
	rev1, err := resolveRevision(ctx, reader, t1.Operative)
	if err != nil {
		return Endpoints{}, err
	}
	rev2, err := resolveRevision(ctx, reader, t2.Operative)
	if err != nil {
		return Endpoints{}, err
	}

	kind1, err := reader.NodeKind(ctx, t1.PathOrURL, rev1)
	if err != nil {
		return Endpoints{}, err
	}
	kind2, err := reader.NodeKind(ctx, t2.PathOrURL, rev2)
	if err != nil {
		return Endpoints{}, err
	}

	if kind1 == patch.NodeAbsent && kind2 == patch.NodeAbsent && t1.PathOrURL == t2.PathOrURL {
		return Endpoints{}, svnerrors.NewNotFound(fmt.Sprintf("%q not found in either revision", t1.PathOrURL), nil)
	}
	if kind1 == patch.NodeAbsent {
		if k, err := reader.NodeKind(ctx, t1.PathOrURL, rev2); err != nil || k == patch.NodeAbsent {
			return Endpoints{}, svnerrors.NewNotFound(fmt.Sprintf("%q not found", t1.PathOrURL), nil)
		}
	}
	if kind2 == patch.NodeAbsent {
		if k, err := reader.NodeKind(ctx, t2.PathOrURL, rev1); err != nil || k == patch.NodeAbsent {
			return Endpoints{}, svnerrors.NewNotFound(fmt.Sprintf("%q not found", t2.PathOrURL), nil)
		}
	}

	anchor, target1, target2 := splitAnchor(t1.PathOrURL, t2.PathOrURL, kind1, kind2)

	return Endpoints{
		URL1: t1.PathOrURL, URL2: t2.PathOrURL,
		Rev1: rev1, Rev2: rev2,
		BasePath: anchor,
		Kind1:    kind1, Kind2: kind2,
		Anchor: anchor, Target1: target1, Target2: target2,
	}, nil
}

func splitAnchor(p1, p2 string, kind1, kind2 patch.NodeKind) (anchor, target1, target2 string) {
	if kind1 == patch.NodeFile || kind2 == patch.NodeFile {
		return path.Dir(p1), path.Base(p1), path.Base(p2)
	}
	return p1, "", ""
}

func resolveRevision(ctx context.Context, reader vcsreader.RepoReader, spec RevisionSpec) (patch.Revision, error) {
	if spec.Kind == RevisionNumber {
		return spec.Number, nil
	}
	if spec.Kind == RevisionHead {
		return reader.HeadRevision(ctx)
	}
	return patch.Invalid, nil
}

// ResolvePeg walks history from a pegged path to the requested operative
// revision (spec §4.D "Peg resolution"). If the node does not exist at
// that revision, it returns an empty resolved URL rather than failing; if
// only one side of a pair resolves, the caller should copy the resolved
// URL to the other side so the diff renders as a whole-file add/delete.
func ResolvePeg(ctx context.Context, reader vcsreader.RepoReader, t Target) (resolvedURL string, rev patch.Revision, err error) {
	rev, err = resolveRevision(ctx, reader, t.Operative)
	if err != nil {
		return "", patch.Invalid, err
	}

	kind, err := reader.NodeKind(ctx, t.PathOrURL, rev)
	if err != nil {
		return "", patch.Invalid, err
	}
	if kind == patch.NodeAbsent {
		return "", rev, nil
	}
	return t.PathOrURL, rev, nil
}

// ResolvePegPair resolves both sides of a pegged comparison and, if only
// one side resolved, copies its URL onto the unresolved side so the diff
// is produced as a one-sided add or delete rather than failing with
// *unrelated-resources*.
func ResolvePegPair(ctx context.Context, reader vcsreader.RepoReader, t1, t2 Target) (url1, url2 string, rev1, rev2 patch.Revision, err error) {
	url1, rev1, err = ResolvePeg(ctx, reader, t1)
	if err != nil {
		return "", "", patch.Invalid, patch.Invalid, err
	}
	url2, rev2, err = ResolvePeg(ctx, reader, t2)
	if err != nil {
		return "", "", patch.Invalid, patch.Invalid, err
	}

	switch {
	case url1 == "" && url2 == "":
		return "", "", patch.Invalid, patch.Invalid, svnerrors.NewUnrelatedResources(t1.PathOrURL, t2.PathOrURL)
	case url1 == "":
		url1 = url2
	case url2 == "":
		url2 = url1
	}
	return url1, url2, rev1, rev2, nil
}

// trimSlash is a small path helper shared by driver and walker callers
// that need repository-relative (not leading-slash) forms.
func trimSlash(p string) string {
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}
