package differ

import (
	"context"
	"path"
	"sort"

	"github.com/svndiff/svndiff/internal/patch"
	"github.com/svndiff/svndiff/internal/vcsreader"
)

// DiffReposRepos drives the repo<->repo branch of the diff driver (spec
// §4.D.1): when either side is wholly absent at its revision, it defers to
// the added/deleted-tree walker; otherwise it walks both trees in lockstep,
// replaying adds, deletes, and modifications into cb.
func DiffReposRepos(ctx context.Context, reader vcsreader.RepoReader, cb Callbacks, ep Endpoints) error {
	if ep.Kind1 == patch.NodeAbsent && ep.Kind2 != patch.NodeAbsent {
		return WalkAddedOrDeletedTree(ctx, reader, cb, trimSlash(ep.URL2), ep.Rev2, false)
	}
	if ep.Kind2 == patch.NodeAbsent && ep.Kind1 != patch.NodeAbsent {
		return WalkAddedOrDeletedTree(ctx, reader, cb, trimSlash(ep.URL1), ep.Rev1, true)
	}

	p1, p2 := trimSlash(ep.URL1), trimSlash(ep.URL2)
	if ep.Kind1 == patch.NodeFile {
		return diffFileVsFile(ctx, reader, cb, p1, ep.Rev1, p2, ep.Rev2)
	}
	return diffDirVsDir(ctx, reader, cb, p1, ep.Rev1, p2, ep.Rev2)
}

func diffFileVsFile(ctx context.Context, reader vcsreader.RepoReader, cb Callbacks, p1 string, rev1 patch.Revision, p2 string, rev2 patch.Revision) error {
	old, oldProps, err := reader.FileContents(ctx, p1, rev1)
	if err != nil {
		return err
	}
	new, newProps, err := reader.FileContents(ctx, p2, rev2)
	if err != nil {
		return err
	}

	if _, err := cb.FileOpened(ctx, p2, rev2); err != nil {
		return err
	}
	_, err = cb.FileChanged(ctx, p2, old, new, rev1, rev2,
		oldProps["svn:mime-type"], newProps["svn:mime-type"],
		diffProps(oldProps, newProps), filterRegularProps(oldProps))
	return err
}

func diffDirVsDir(ctx context.Context, reader vcsreader.RepoReader, cb Callbacks, p1 string, rev1 patch.Revision, p2 string, rev2 patch.Revision) error {
	if reader.Cancelled() {
		return errCancelled
	}

	entries1, props1, err := reader.DirEntries(ctx, p1, rev1)
	if err != nil {
		return err
	}
	entries2, props2, err := reader.DirEntries(ctx, p2, rev2)
	if err != nil {
		return err
	}

	if _, err := cb.DirOpened(ctx, p2, rev2); err != nil {
		return err
	}
	if propChanges := diffProps(props1, props2); len(propChanges) > 0 {
		if _, err := cb.DirPropsChanged(ctx, p2, propChanges, false); err != nil {
			return err
		}
	}

	byName1 := indexEntries(entries1)
	byName2 := indexEntries(entries2)

	names := make(map[string]bool)
	for n := range byName1 {
		names[n] = true
	}
	for n := range byName2 {
		names[n] = true
	}
	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	for _, name := range sorted {
		e1, ok1 := byName1[name]
		e2, ok2 := byName2[name]
		child1 := path.Join(p1, name)
		child2 := path.Join(p2, name)

		switch {
		case !ok1 && ok2:
			if err := WalkAddedOrDeletedTree(ctx, reader, cb, child2, rev2, false); err != nil {
				return err
			}
		case ok1 && !ok2:
			if err := WalkAddedOrDeletedTree(ctx, reader, cb, child1, rev1, true); err != nil {
				return err
			}
		case e1.Kind == patch.NodeFile && e2.Kind == patch.NodeFile:
			if err := diffFileVsFile(ctx, reader, cb, child1, rev1, child2, rev2); err != nil {
				return err
			}
		case e1.Kind == patch.NodeDir && e2.Kind == patch.NodeDir:
			if err := diffDirVsDir(ctx, reader, cb, child1, rev1, child2, rev2); err != nil {
				return err
			}
		default:
			// kind changed (file <-> dir): treat as delete-then-add.
			if err := WalkAddedOrDeletedTree(ctx, reader, cb, child1, rev1, true); err != nil {
				return err
			}
			if err := WalkAddedOrDeletedTree(ctx, reader, cb, child2, rev2, false); err != nil {
				return err
			}
		}
	}

	_, err = cb.DirClosed(ctx, p2)
	return err
}

func indexEntries(entries []vcsreader.DirEntry) map[string]vcsreader.DirEntry {
	m := make(map[string]vcsreader.DirEntry, len(entries))
	for _, e := range entries {
		m[e.Name] = e
	}
	return m
}

// diffProps computes the sorted set of property changes between two
// regular-property maps (added, removed, and changed values).
func diffProps(oldProps, newProps map[string]string) PropChanges {
	old := filterRegularProps(oldProps)
	new := filterRegularProps(newProps)

	names := make(map[string]bool)
	for n := range old {
		names[n] = true
	}
	for n := range new {
		names[n] = true
	}
	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	var out PropChanges
	for _, n := range sorted {
		ov, nv := old[n], new[n]
		if ov != nv {
			out = append(out, PropChange{Name: n, Old: ov, New: nv})
		}
	}
	return out
}
