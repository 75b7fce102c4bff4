package vcsreader

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/svndiff/svndiff/internal/patch"
)

// newTestRepo initializes a git repository in a temp directory and returns
// its path and handle, grounded on the teacher's testutils.NewTestRepo.
func newTestRepo(t *testing.T) (string, *git.Repository) {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit() error = %v", err)
	}
	return dir, repo
}

func commitFile(t *testing.T, dir string, repo *git.Repository, name, content, message string) {
	t.Helper()
	if err := os.WriteFile(dir+"/"+name, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	w, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree() error = %v", err)
	}
	if _, err := w.Add(name); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	_, err = w.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
}

func TestGitRepoReaderRevisionOrdering(t *testing.T) {
	dir, repo := newTestRepo(t)
	commitFile(t, dir, repo, "foo.c", "one\n", "first")
	commitFile(t, dir, repo, "foo.c", "two\n", "second")

	reader, err := NewGitRepoReader(repo, nil)
	if err != nil {
		t.Fatalf("NewGitRepoReader() error = %v", err)
	}

	ctx := context.Background()
	head, err := reader.HeadRevision(ctx)
	if err != nil {
		t.Fatalf("HeadRevision() error = %v", err)
	}
	if head != 1 {
		t.Fatalf("HeadRevision() = %v, want 1 (two commits, zero-indexed)", head)
	}

	content, _, err := reader.FileContents(ctx, "foo.c", 0)
	if err != nil {
		t.Fatalf("FileContents(rev 0) error = %v", err)
	}
	if string(content) != "one\n" {
		t.Errorf("FileContents(rev 0) = %q, want %q", content, "one\n")
	}

	content, _, err = reader.FileContents(ctx, "foo.c", head)
	if err != nil {
		t.Fatalf("FileContents(HEAD) error = %v", err)
	}
	if string(content) != "two\n" {
		t.Errorf("FileContents(HEAD) = %q, want %q", content, "two\n")
	}
}

func TestGitRepoReaderNodeKindAbsent(t *testing.T) {
	dir, repo := newTestRepo(t)
	commitFile(t, dir, repo, "foo.c", "one\n", "first")

	reader, err := NewGitRepoReader(repo, nil)
	if err != nil {
		t.Fatalf("NewGitRepoReader() error = %v", err)
	}

	ctx := context.Background()
	kind, err := reader.NodeKind(ctx, "missing.c", 0)
	if err != nil {
		t.Fatalf("NodeKind() error = %v", err)
	}
	if kind != patch.NodeAbsent {
		t.Errorf("NodeKind(missing.c) = %v, want NodeAbsent", kind)
	}
}

func TestFSWCReaderFileContents(t *testing.T) {
	dir, repo := newTestRepo(t)
	commitFile(t, dir, repo, "foo.c", "one\n", "first")

	if err := os.WriteFile(dir+"/bar.c", []byte("two\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	reader, err := NewFSWCReader(dir)
	if err != nil {
		t.Fatalf("NewFSWCReader() error = %v", err)
	}

	ctx := context.Background()
	kind, err := reader.NodeKind(ctx, "bar.c")
	if err != nil {
		t.Fatalf("NodeKind() error = %v", err)
	}
	if kind != patch.NodeFile {
		t.Errorf("NodeKind(bar.c) = %v, want NodeFile", kind)
	}

	content, _, err := reader.FileContents(ctx, "bar.c")
	if err != nil {
		t.Fatalf("FileContents() error = %v", err)
	}
	if string(content) != "two\n" {
		t.Errorf("FileContents(bar.c) = %q, want %q", content, "two\n")
	}

	root, err := reader.Root(ctx)
	if err != nil {
		t.Fatalf("Root() error = %v", err)
	}
	if root == "" {
		t.Error("Root() returned empty string")
	}
}
