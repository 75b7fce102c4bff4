package differ

import (
	"context"
	"path"
	"sort"

	"github.com/svndiff/svndiff/internal/patch"
	"github.com/svndiff/svndiff/internal/vcsreader"
)

// entryPropPrefix and wcPropPrefix name-prefixes are excluded from forwarded
// property sets (spec §4.E "only regular properties ... are forwarded").
const (
	entryPropPrefix = "svn:entry:"
	wcPropPrefix    = "svn:wc:"
)

func isRegularProp(name string) bool {
	return !hasNamePrefix(name, entryPropPrefix) && !hasNamePrefix(name, wcPropPrefix)
}

func hasNamePrefix(name, prefix string) bool {
	return len(name) >= len(prefix) && name[:len(prefix)] == prefix
}

func filterRegularProps(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		if isRegularProp(k) {
			out[k] = v
		}
	}
	return out
}

func propsAsChanges(props map[string]string, additions bool) PropChanges {
	names := make([]string, 0, len(props))
	for n := range props {
		names = append(names, n)
	}
	sort.Strings(names)

	out := make(PropChanges, 0, len(names))
	for _, n := range names {
		if additions {
			out = append(out, PropChange{Name: n, Old: "", New: props[n]})
		} else {
			out = append(out, PropChange{Name: n, Old: props[n], New: ""})
		}
	}
	return out
}

// WalkAddedOrDeletedTree implements the added/deleted-tree walker (spec
// §4.E): given a repository target at a revision, it recursively
// enumerates the extant side and emits synthetic add or delete callbacks
// for every file and directory found. deleted selects which half of the
// callback set is driven.
func WalkAddedOrDeletedTree(ctx context.Context, reader vcsreader.RepoReader, cb Callbacks, repoPath string, rev patch.Revision, deleted bool) error {
	if reader.Cancelled() {
		return errCancelled
	}

	kind, err := reader.NodeKind(ctx, repoPath, rev)
	if err != nil {
		return err
	}

	switch kind {
	case patch.NodeFile:
		return walkFile(ctx, reader, cb, repoPath, rev, deleted)
	case patch.NodeDir:
		return walkDir(ctx, reader, cb, repoPath, rev, deleted)
	default:
		return nil
	}
}

func walkFile(ctx context.Context, reader vcsreader.RepoReader, cb Callbacks, p string, rev patch.Revision, deleted bool) error {
	content, props, err := reader.FileContents(ctx, p, rev)
	if err != nil {
		return err
	}
	mime := props["svn:mime-type"]

	if deleted {
		_, err = cb.FileDeleted(ctx, p, content, mime, "", filterRegularProps(props))
		return err
	}
	_, err = cb.FileAdded(ctx, p, content, patch.Invalid, rev, mime, "", patch.Invalid, propsAsChanges(filterRegularProps(props), true))
	return err
}

func walkDir(ctx context.Context, reader vcsreader.RepoReader, cb Callbacks, p string, rev patch.Revision, deleted bool) error {
	if reader.Cancelled() {
		return errCancelled
	}

	entries, props, err := reader.DirEntries(ctx, p, rev)
	if err != nil {
		return err
	}

	regular := filterRegularProps(props)
	if deleted {
		if _, err := cb.DirDeleted(ctx, p); err != nil {
			return err
		}
		if _, err := cb.DirPropsChanged(ctx, p, propsAsChanges(regular, false), false); err != nil {
			return err
		}
	} else {
		if _, err := cb.DirAdded(ctx, p, rev); err != nil {
			return err
		}
		if _, err := cb.DirPropsChanged(ctx, p, propsAsChanges(regular, true), true); err != nil {
			return err
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	for _, e := range entries {
		child := path.Join(p, e.Name)
		switch e.Kind {
		case patch.NodeFile:
			if err := walkFile(ctx, reader, cb, child, rev, deleted); err != nil {
				return err
			}
		case patch.NodeDir:
			if err := walkDir(ctx, reader, cb, child, rev, deleted); err != nil {
				return err
			}
		}
	}

	if !deleted {
		if _, err := cb.DirClosed(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
