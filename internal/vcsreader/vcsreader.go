// Package vcsreader defines the repository-reader and working-copy-reader
// collaborators the core diff engine treats as external (spec §1, §6), and
// provides a github.com/go-git/go-git/v5-backed default implementation.
package vcsreader

import (
	"context"

	"github.com/svndiff/svndiff/internal/patch"
)

// DirEntry is one child of a directory listing.
type DirEntry struct {
	Name string
	Kind patch.NodeKind
}

// RepoReader is the abstract "remote-access session" spec §1 excludes from
// the core's scope: it fetches file/directory contents and revision
// metadata from a repository.
type RepoReader interface {
	// NodeKind reports what kind of node exists at path@rev, or NodeAbsent.
	NodeKind(ctx context.Context, path string, rev patch.Revision) (patch.NodeKind, error)
	// FileContents returns a file's full bytes and regular properties.
	FileContents(ctx context.Context, path string, rev patch.Revision) (content []byte, props map[string]string, err error)
	// DirEntries lists a directory's immediate children and its properties.
	DirEntries(ctx context.Context, path string, rev patch.Revision) (entries []DirEntry, props map[string]string, err error)
	// PathRelativeToRoot renders path relative to the repository root.
	PathRelativeToRoot(ctx context.Context, path string) (string, error)
	// HeadRevision returns the latest revision, used to resolve Invalid.
	HeadRevision(ctx context.Context) (patch.Revision, error)
	// Cancelled reports whether the caller has requested cancellation
	// (spec §5 "Cancellation" — polled before each network/disk operation).
	Cancelled() bool
}

// WCReader is the abstract "working-copy metadata store" spec §1 excludes
// from the core's scope.
type WCReader interface {
	NodeKind(ctx context.Context, path string) (patch.NodeKind, error)
	FileContents(ctx context.Context, path string) (content []byte, props map[string]string, err error)
	DirEntries(ctx context.Context, path string) (entries []DirEntry, props map[string]string, err error)
	PathRelativeToRepos(ctx context.Context, path string) (string, error)
	// Root returns the working-copy root directory.
	Root(ctx context.Context) (string, error)
	Cancelled() bool
}
