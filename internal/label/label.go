// Package label implements the path-labeling helpers the diff front-end
// uses to render header lines (spec §4.A): adjusting a path to be
// repository-root-relative, stripping a common ancestor for display, and
// formatting the revision suffix of a diff label.
package label

import (
	"context"
	"path"
	"strconv"
	"strings"

	svnerrors "github.com/svndiff/svndiff/internal/errors"
	"github.com/svndiff/svndiff/internal/patch"
	"github.com/svndiff/svndiff/internal/vcsreader"
)

// RepoRelative implements the "repos-root-relative adjust" operation. If
// repoReader is nil, the working-copy node's own repository-relative path
// is returned unchanged. Otherwise the caller's originalTarget decides
// which reader answers the "relative to root" question: a URL target asks
// the repository, anything else asks the working copy. When wcRoot is
// non-empty and path is beneath it, only the tail past wcRoot is joined
// onto that answer; otherwise path is joined onto it literally.
func RepoRelative(ctx context.Context, p string, originalTarget patch.TargetDescriptor, wcRoot string, repoReader vcsreader.RepoReader, wcReader vcsreader.WCReader) (string, error) {
	if repoReader == nil {
		if wcReader == nil {
			return p, nil
		}
		return wcReader.PathRelativeToRepos(ctx, p)
	}

	var base string
	var err error
	if originalTarget.IsURL() {
		base, err = repoReader.PathRelativeToRoot(ctx, originalTarget.PathOrURL)
	} else if wcReader != nil {
		base, err = wcReader.PathRelativeToRepos(ctx, originalTarget.PathOrURL)
	}
	if err != nil {
		return "", err
	}

	tail := p
	if wcRoot != "" && isUnder(p, wcRoot) {
		tail = strings.TrimPrefix(strings.TrimPrefix(p, wcRoot), "/")
	}
	return path.Join(base, tail), nil
}

func isUnder(p, root string) bool {
	if root == "" {
		return false
	}
	if p == root {
		return true
	}
	return strings.HasPrefix(p, strings.TrimSuffix(root, "/")+"/")
}

const ellipsis = "..."

// Adjust implements "label adjust": it strips the longest common ancestor
// directory of orig1 and orig2 from all three paths, substituting an
// ellipsis for the removed prefix when it is non-empty. If relativeTo is
// given, each resulting path must collapse onto it (exact match -> ".",
// descendant -> tail, otherwise *bad-relative-path*).
func Adjust(p, orig1, orig2, relativeTo string) (adjP, adjOrig1, adjOrig2 string, err error) {
	ancestor := commonAncestor(orig1, orig2)

	adjP = stripAncestor(p, ancestor)
	adjOrig1 = stripAncestor(orig1, ancestor)
	adjOrig2 = stripAncestor(orig2, ancestor)

	if relativeTo == "" {
		return adjP, adjOrig1, adjOrig2, nil
	}

	adjP, err = makeRelative(adjP, relativeTo)
	if err != nil {
		return "", "", "", err
	}
	adjOrig1, err = makeRelative(adjOrig1, relativeTo)
	if err != nil {
		return "", "", "", err
	}
	adjOrig2, err = makeRelative(adjOrig2, relativeTo)
	if err != nil {
		return "", "", "", err
	}
	return adjP, adjOrig1, adjOrig2, nil
}

func makeRelative(p, relativeTo string) (string, error) {
	if p == relativeTo {
		return ".", nil
	}
	if isUnder(p, relativeTo) {
		return strings.TrimPrefix(strings.TrimPrefix(p, relativeTo), "/"), nil
	}
	return "", svnerrors.NewBadRelativePath(p, relativeTo)
}

func commonAncestor(a, b string) string {
	pa := strings.Split(strings.Trim(a, "/"), "/")
	pb := strings.Split(strings.Trim(b, "/"), "/")
	n := len(pa)
	if len(pb) < n {
		n = len(pb)
	}
	var common []string
	for i := 0; i < n; i++ {
		if pa[i] != pb[i] {
			break
		}
		common = append(common, pa[i])
	}
	return strings.Join(common, "/")
}

func stripAncestor(p, ancestor string) string {
	if ancestor == "" {
		return p
	}
	trimmed := strings.TrimPrefix(strings.Trim(p, "/"), ancestor)
	trimmed = strings.TrimPrefix(trimmed, "/")
	if trimmed == p {
		return p
	}
	if trimmed == "" {
		return ellipsis
	}
	return ellipsis + "/" + trimmed
}

// Diff formats the "path\t(revision N)" / "path\t(working copy)" label
// used for unified-diff --- / +++ lines.
func Diff(p string, rev patch.Revision) string {
	if !rev.Valid() {
		return p + "\t(working copy)"
	}
	return p + "\t(revision " + strconv.FormatInt(int64(rev), 10) + ")"
}

// CopyFrom formats the copyfrom-revision label used for the "old" side of a
// copy's diff header: "path\t(from copyFromPath@REV)" when the source
// revision is known, falling back to Diff's plain form when it is not
// (copy detected against a working-copy source with no resolved revision).
func CopyFrom(p, copyFromPath string, copyFromRev patch.Revision) string {
	if !copyFromRev.Valid() {
		return Diff(p, copyFromRev)
	}
	return p + "\t(from " + copyFromPath + "@" + strconv.FormatInt(int64(copyFromRev), 10) + ")"
}
