package vcsreader

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v5"

	"github.com/svndiff/svndiff/internal/patch"
)

// FSWCReader is the default WCReader (spec §1 "working-copy metadata
// store"). It reads files and directories straight from the filesystem
// under root; the go-git repository is only opened to locate the checkout,
// and its worktree status is not consulted.
type FSWCReader struct {
	repo *git.Repository
	root string
}

// NewFSWCReader opens the repository containing root (walking up to find
// the .git directory, as git.PlainOpenWithOptions(DetectDotGit) does).
func NewFSWCReader(root string) (*FSWCReader, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &FSWCReader{repo: repo, root: abs}, nil
}

func (w *FSWCReader) Cancelled() bool { return false }

func (w *FSWCReader) Root(ctx context.Context) (string, error) { return w.root, nil }

func (w *FSWCReader) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(w.root, p)
}

func (w *FSWCReader) NodeKind(ctx context.Context, p string) (patch.NodeKind, error) {
	info, err := os.Stat(w.resolve(p))
	if err != nil {
		if os.IsNotExist(err) {
			return patch.NodeAbsent, nil
		}
		return patch.NodeAbsent, err
	}
	if info.IsDir() {
		return patch.NodeDir, nil
	}
	return patch.NodeFile, nil
}

func (w *FSWCReader) FileContents(ctx context.Context, p string) ([]byte, map[string]string, error) {
	data, err := os.ReadFile(w.resolve(p))
	if err != nil {
		return nil, nil, err
	}
	return data, map[string]string{}, nil
}

func (w *FSWCReader) DirEntries(ctx context.Context, p string) ([]DirEntry, map[string]string, error) {
	entries, err := os.ReadDir(w.resolve(p))
	if err != nil {
		return nil, nil, err
	}
	var out []DirEntry
	for _, e := range entries {
		kind := patch.NodeFile
		if e.IsDir() {
			kind = patch.NodeDir
		}
		out = append(out, DirEntry{Name: e.Name(), Kind: kind})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, map[string]string{}, nil
}

func (w *FSWCReader) PathRelativeToRepos(ctx context.Context, p string) (string, error) {
	abs := w.resolve(p)
	rel, err := filepath.Rel(w.root, abs)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
