package differ

import (
	"context"
	"path"
	"sort"

	"github.com/svndiff/svndiff/internal/patch"
	"github.com/svndiff/svndiff/internal/vcsreader"
)

// DiffRepoWC drives the repo<->wc branch (spec §4.D: "resolve the
// repository endpoint, compute the working-copy anchor, and either stream
// a single-file diff ... or drive the working-copy's editor-based diff
// machinery against the remote side"). reverse swaps which side is "old"
// for callback purposes (wc<->repo).
func DiffRepoWC(ctx context.Context, repo vcsreader.RepoReader, wc vcsreader.WCReader, cb Callbacks, repoPath string, rev patch.Revision, wcPath string, reverse bool) error {
	repoKind, err := repo.NodeKind(ctx, repoPath, rev)
	if err != nil {
		return err
	}
	wcKind, err := wc.NodeKind(ctx, wcPath)
	if err != nil {
		return err
	}

	if repoKind == patch.NodeFile && wcKind == patch.NodeFile {
		return diffRepoFileVsWCFile(ctx, repo, wc, cb, repoPath, rev, wcPath, reverse)
	}
	if repoKind == patch.NodeAbsent && wcKind == patch.NodeFile {
		if reverse {
			return wcFileDeleted(ctx, wc, cb, wcPath)
		}
		return wcFileAdded(ctx, wc, cb, wcPath)
	}
	if repoKind == patch.NodeFile && wcKind == patch.NodeAbsent {
		return WalkAddedOrDeletedTree(ctx, repo, cb, repoPath, rev, !reverse)
	}
	return diffRepoDirVsWCDir(ctx, repo, wc, cb, repoPath, rev, wcPath, reverse)
}

func diffRepoFileVsWCFile(ctx context.Context, repo vcsreader.RepoReader, wc vcsreader.WCReader, cb Callbacks, repoPath string, rev patch.Revision, wcPath string, reverse bool) error {
	repoContent, repoProps, err := repo.FileContents(ctx, repoPath, rev)
	if err != nil {
		return err
	}
	wcContent, wcProps, err := wc.FileContents(ctx, wcPath)
	if err != nil {
		return err
	}

	old, new := repoContent, wcContent
	oldProps, newProps := repoProps, wcProps
	oldRev, newRev := rev, patch.Invalid
	if reverse {
		old, new = wcContent, repoContent
		oldProps, newProps = wcProps, repoProps
		oldRev, newRev = patch.Invalid, rev
	}

	if _, err := cb.FileOpened(ctx, wcPath, newRev); err != nil {
		return err
	}
	_, err = cb.FileChanged(ctx, wcPath, old, new, oldRev, newRev,
		oldProps["svn:mime-type"], newProps["svn:mime-type"],
		diffProps(oldProps, newProps), filterRegularProps(oldProps))
	return err
}

func wcFileAdded(ctx context.Context, wc vcsreader.WCReader, cb Callbacks, wcPath string) error {
	content, props, err := wc.FileContents(ctx, wcPath)
	if err != nil {
		return err
	}
	_, err = cb.FileAdded(ctx, wcPath, content, patch.Invalid, patch.Invalid,
		props["svn:mime-type"], "", patch.Invalid, propsAsChanges(filterRegularProps(props), true))
	return err
}

func diffRepoDirVsWCDir(ctx context.Context, repo vcsreader.RepoReader, wc vcsreader.WCReader, cb Callbacks, repoPath string, rev patch.Revision, wcPath string, reverse bool) error {
	repoEntries, repoProps, err := repo.DirEntries(ctx, repoPath, rev)
	if err != nil {
		return err
	}
	wcEntries, wcProps, err := wc.DirEntries(ctx, wcPath)
	if err != nil {
		return err
	}

	announcedRev := rev
	if reverse {
		announcedRev = patch.Invalid
	}
	if _, err := cb.DirOpened(ctx, wcPath, announcedRev); err != nil {
		return err
	}
	oldProps, newProps := repoProps, wcProps
	if reverse {
		oldProps, newProps = wcProps, repoProps
	}
	if changes := diffProps(oldProps, newProps); len(changes) > 0 {
		if _, err := cb.DirPropsChanged(ctx, wcPath, changes, false); err != nil {
			return err
		}
	}

	byRepo := indexEntries(repoEntries)
	byWC := indexEntries(wcEntries)

	names := make(map[string]bool)
	for n := range byRepo {
		names[n] = true
	}
	for n := range byWC {
		names[n] = true
	}
	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	for _, name := range sorted {
		_, inRepo := byRepo[name]
		_, inWC := byWC[name]
		repoChild := path.Join(repoPath, name)
		wcChild := path.Join(wcPath, name)

		switch {
		case inRepo && inWC:
			if err := DiffRepoWC(ctx, repo, wc, cb, repoChild, rev, wcChild, reverse); err != nil {
				return err
			}
		case inRepo && !inWC:
			if err := WalkAddedOrDeletedTree(ctx, repo, cb, repoChild, rev, !reverse); err != nil {
				return err
			}
		default: // !inRepo && inWC
			if reverse {
				if err := wcFileDeleted(ctx, wc, cb, wcChild); err != nil {
					return err
				}
			} else if err := wcFileAdded(ctx, wc, cb, wcChild); err != nil {
				return err
			}
		}
	}

	_, err = cb.DirClosed(ctx, wcPath)
	return err
}

// DiffWCWC drives the wc<->wc branch (spec §4.D: "skip any repository
// interaction; drive the working-copy's local diff machinery"). Side 1 is
// read through wc1 and side 2 through wc2; passing the same WCReader for
// both compares one working copy against itself at a different path.
func DiffWCWC(ctx context.Context, wc1, wc2 vcsreader.WCReader, cb Callbacks, path1, path2 string) error {
	kind1, err := wc1.NodeKind(ctx, path1)
	if err != nil {
		return err
	}
	kind2, err := wc2.NodeKind(ctx, path2)
	if err != nil {
		return err
	}

	if path1 == "" {
		path1 = "."
	}
	if path2 == "" {
		path2 = "."
	}

	if kind1 == patch.NodeFile && kind2 == patch.NodeFile {
		old, oldProps, err := wc1.FileContents(ctx, path1)
		if err != nil {
			return err
		}
		new, newProps, err := wc2.FileContents(ctx, path2)
		if err != nil {
			return err
		}
		if _, err := cb.FileOpened(ctx, path2, patch.Invalid); err != nil {
			return err
		}
		_, err = cb.FileChanged(ctx, path2, old, new, patch.Invalid, patch.Invalid,
			oldProps["svn:mime-type"], newProps["svn:mime-type"],
			diffProps(oldProps, newProps), filterRegularProps(oldProps))
		return err
	}

	if kind1 == patch.NodeDir && kind2 == patch.NodeDir {
		return diffWCDirVsWCDir(ctx, wc1, wc2, cb, path1, path2)
	}

	return nil
}

// diffWCDirVsWCDir drives the local diff machinery over two directories in
// (possibly the same) working copies, mirroring diffRepoDirVsWCDir's
// recursion but with both sides read through a WCReader (spec §4.D
// "wc<->wc: ... drive the working-copy's local diff machinery").
func diffWCDirVsWCDir(ctx context.Context, wc1, wc2 vcsreader.WCReader, cb Callbacks, path1, path2 string) error {
	entries1, props1, err := wc1.DirEntries(ctx, path1)
	if err != nil {
		return err
	}
	entries2, props2, err := wc2.DirEntries(ctx, path2)
	if err != nil {
		return err
	}

	if _, err := cb.DirOpened(ctx, path2, patch.Invalid); err != nil {
		return err
	}
	if changes := diffProps(props1, props2); len(changes) > 0 {
		if _, err := cb.DirPropsChanged(ctx, path2, changes, false); err != nil {
			return err
		}
	}

	by1 := indexEntries(entries1)
	by2 := indexEntries(entries2)

	names := make(map[string]bool)
	for n := range by1 {
		names[n] = true
	}
	for n := range by2 {
		names[n] = true
	}
	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	for _, name := range sorted {
		_, in1 := by1[name]
		_, in2 := by2[name]
		child1 := path.Join(path1, name)
		child2 := path.Join(path2, name)

		switch {
		case in1 && in2:
			if err := DiffWCWC(ctx, wc1, wc2, cb, child1, child2); err != nil {
				return err
			}
		case in1 && !in2:
			if err := wcFileDeleted(ctx, wc1, cb, child1); err != nil {
				return err
			}
		default: // !in1 && in2
			if err := wcFileAdded(ctx, wc2, cb, child2); err != nil {
				return err
			}
		}
	}

	_, err = cb.DirClosed(ctx, path2)
	return err
}

// wcFileDeleted announces the removal of a working-copy file (counterpart
// to wcFileAdded) for entries present only on the "old" side of a wc<->wc
// directory diff.
func wcFileDeleted(ctx context.Context, wc vcsreader.WCReader, cb Callbacks, wcPath string) error {
	content, props, err := wc.FileContents(ctx, wcPath)
	if err != nil {
		return err
	}
	_, err = cb.FileDeleted(ctx, wcPath, content,
		props["svn:mime-type"], "", filterRegularProps(props))
	return err
}
