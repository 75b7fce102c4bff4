package vcsreader

import (
	"bytes"
	"context"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/svndiff/svndiff/internal/patch"
)

// GitRepoReader is the default RepoReader, backed by a real go-git
// repository opened from disk or cloned in memory — the concrete fill-in
// for spec §1's "abstract repository reader" (SPEC_FULL.md domain stack).
// Revisions are modeled as commit generation numbers counted back from
// HEAD: revision 0 is the root commit, the highest revision is HEAD.
type GitRepoReader struct {
	repo      *git.Repository
	revisions []plumbing.Hash // revisions[i] is revision i, oldest first
	cancelled func() bool
}

// NewGitRepoReader opens repo and orders its first-parent history into
// revision numbers.
func NewGitRepoReader(repo *git.Repository, cancelled func() bool) (*GitRepoReader, error) {
	head, err := repo.Head()
	if err != nil {
		return nil, err
	}

	var hashes []plumbing.Hash
	c, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, err
	}
	for {
		hashes = append(hashes, c.Hash)
		if c.NumParents() == 0 {
			break
		}
		parent, err := c.Parent(0)
		if err != nil {
			break
		}
		c = parent
	}
	for i, j := 0, len(hashes)-1; i < j; i, j = i+1, j-1 {
		hashes[i], hashes[j] = hashes[j], hashes[i]
	}

	return &GitRepoReader{repo: repo, revisions: hashes, cancelled: cancelled}, nil
}

func (g *GitRepoReader) Cancelled() bool {
	if g.cancelled == nil {
		return false
	}
	return g.cancelled()
}

func (g *GitRepoReader) HeadRevision(ctx context.Context) (patch.Revision, error) {
	return patch.Revision(len(g.revisions) - 1), nil
}

func (g *GitRepoReader) commitAt(rev patch.Revision) (*object.Commit, error) {
	if !rev.Valid() || int(rev) >= len(g.revisions) || rev < 0 {
		return nil, errBadRevision(rev)
	}
	return g.repo.CommitObject(g.revisions[rev])
}

func (g *GitRepoReader) NodeKind(ctx context.Context, p string, rev patch.Revision) (patch.NodeKind, error) {
	c, err := g.commitAt(rev)
	if err != nil {
		return patch.NodeAbsent, err
	}
	tree, err := c.Tree()
	if err != nil {
		return patch.NodeAbsent, err
	}
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if p == "" || p == "." {
		return patch.NodeDir, nil
	}
	entry, err := tree.FindEntry(p)
	if err != nil {
		return patch.NodeAbsent, nil
	}
	if entry.Mode == plumbing.ModeDir || entry.Mode == plumbing.ModeSubmodule {
		return patch.NodeDir, nil
	}
	return patch.NodeFile, nil
}

func (g *GitRepoReader) FileContents(ctx context.Context, p string, rev patch.Revision) ([]byte, map[string]string, error) {
	c, err := g.commitAt(rev)
	if err != nil {
		return nil, nil, err
	}
	f, err := c.File(strings.TrimPrefix(path.Clean("/"+p), "/"))
	if err != nil {
		return nil, nil, err
	}
	rc, err := f.Reader()
	if err != nil {
		return nil, nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, nil, err
	}
	return data, map[string]string{}, nil
}

func (g *GitRepoReader) DirEntries(ctx context.Context, p string, rev patch.Revision) ([]DirEntry, map[string]string, error) {
	c, err := g.commitAt(rev)
	if err != nil {
		return nil, nil, err
	}
	tree, err := c.Tree()
	if err != nil {
		return nil, nil, err
	}
	clean := strings.TrimPrefix(path.Clean("/"+p), "/")
	if clean != "" && clean != "." {
		sub, err := tree.Tree(clean)
		if err != nil {
			return nil, nil, err
		}
		tree = sub
	}

	var out []DirEntry
	for _, e := range tree.Entries {
		kind := patch.NodeFile
		if e.Mode == plumbing.ModeDir {
			kind = patch.NodeDir
		}
		out = append(out, DirEntry{Name: e.Name, Kind: kind})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, map[string]string{}, nil
}

func (g *GitRepoReader) PathRelativeToRoot(ctx context.Context, p string) (string, error) {
	return strings.TrimPrefix(path.Clean("/"+p), "/"), nil
}

type errBadRevision patch.Revision

func (e errBadRevision) Error() string {
	var b bytes.Buffer
	b.WriteString("revision out of range: ")
	b.WriteString(patch.Revision(e).String())
	return b.String()
}
