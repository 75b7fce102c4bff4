package differ

import (
	"context"
	"sort"
	"testing"

	"github.com/svndiff/svndiff/internal/patch"
	"github.com/svndiff/svndiff/internal/vcsreader"
)

// fakeRepoReader is an in-memory vcsreader.RepoReader for driver tests.
type fakeRepoReader struct {
	files map[string]map[patch.Revision][]byte
	dirs  map[string]map[patch.Revision][]vcsreader.DirEntry
	head  patch.Revision
}

func (f *fakeRepoReader) Cancelled() bool { return false }

func (f *fakeRepoReader) HeadRevision(ctx context.Context) (patch.Revision, error) { return f.head, nil }

func (f *fakeRepoReader) NodeKind(ctx context.Context, path string, rev patch.Revision) (patch.NodeKind, error) {
	if byRev, ok := f.files[path]; ok {
		if _, ok := byRev[rev]; ok {
			return patch.NodeFile, nil
		}
	}
	if byRev, ok := f.dirs[path]; ok {
		if _, ok := byRev[rev]; ok {
			return patch.NodeDir, nil
		}
	}
	return patch.NodeAbsent, nil
}

func (f *fakeRepoReader) FileContents(ctx context.Context, path string, rev patch.Revision) ([]byte, map[string]string, error) {
	return f.files[path][rev], map[string]string{}, nil
}

func (f *fakeRepoReader) DirEntries(ctx context.Context, path string, rev patch.Revision) ([]vcsreader.DirEntry, map[string]string, error) {
	return f.dirs[path][rev], map[string]string{}, nil
}

func (f *fakeRepoReader) PathRelativeToRoot(ctx context.Context, path string) (string, error) {
	return path, nil
}

// recordingCallbacks records every callback invocation for assertion.
type recordingCallbacks struct {
	added   []string
	deleted []string
	changed []string
}

func (r *recordingCallbacks) FileOpened(ctx context.Context, path string, rev patch.Revision) (State, error) {
	return State{}, nil
}
func (r *recordingCallbacks) FileChanged(ctx context.Context, path string, tmpOld, tmpNew []byte, revOld, revNew patch.Revision, mimeOld, mimeNew string, propChanges PropChanges, oldProps map[string]string) (State, error) {
	r.changed = append(r.changed, path)
	return State{}, nil
}
func (r *recordingCallbacks) FileAdded(ctx context.Context, path string, tmpNew []byte, revOld, revNew patch.Revision, mimeNew string, copyFrom string, copyFromRev patch.Revision, propChanges PropChanges) (State, error) {
	r.added = append(r.added, path)
	return State{}, nil
}
func (r *recordingCallbacks) FileDeleted(ctx context.Context, path string, tmpOld []byte, mimeOld, mimeNew string, oldProps map[string]string) (State, error) {
	r.deleted = append(r.deleted, path)
	return State{}, nil
}
func (r *recordingCallbacks) DirOpened(ctx context.Context, path string, rev patch.Revision) (State, error) {
	return State{}, nil
}
func (r *recordingCallbacks) DirAdded(ctx context.Context, path string, rev patch.Revision) (State, error) {
	return State{}, nil
}
func (r *recordingCallbacks) DirDeleted(ctx context.Context, path string) (State, error) {
	return State{}, nil
}
func (r *recordingCallbacks) DirPropsChanged(ctx context.Context, path string, propChanges PropChanges, isAdd bool) (State, error) {
	return State{}, nil
}
func (r *recordingCallbacks) DirClosed(ctx context.Context, path string) (State, error) {
	return State{}, nil
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		t1, t2   Target
		wantMode Mode
	}{
		{
			name: "both numbered revisions of a URL is repo-repo",
			t1:   Target{PathOrURL: "https://example.com/trunk", Operative: RevisionSpec{Kind: RevisionNumber, Number: 1}},
			t2:   Target{PathOrURL: "https://example.com/trunk", Operative: RevisionSpec{Kind: RevisionNumber, Number: 2}},
			wantMode: ModeRepoRepo,
		},
		{
			name: "repo side vs working side is repo-wc",
			t1:   Target{PathOrURL: "https://example.com/trunk", Operative: RevisionSpec{Kind: RevisionNumber, Number: 1}},
			t2:   Target{PathOrURL: "/home/user/wc", Operative: RevisionSpec{Kind: RevisionWorking}},
			wantMode: ModeRepoWC,
		},
		{
			name: "working vs repo is wc-repo",
			t1:   Target{PathOrURL: "/home/user/wc", Operative: RevisionSpec{Kind: RevisionWorking}},
			t2:   Target{PathOrURL: "https://example.com/trunk", Operative: RevisionSpec{Kind: RevisionNumber, Number: 1}},
			wantMode: ModeWCRepo,
		},
		{
			name: "both working is wc-wc",
			t1:   Target{PathOrURL: "/home/user/wc", Operative: RevisionSpec{Kind: RevisionWorking}},
			t2:   Target{PathOrURL: "/home/user/wc2", Operative: RevisionSpec{Kind: RevisionBase}},
			wantMode: ModeWCWC,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.t1, tt.t2); got != tt.wantMode {
				t.Errorf("Classify() = %v, want %v", got, tt.wantMode)
			}
		})
	}
}

func TestDiffReposReposFileModified(t *testing.T) {
	reader := &fakeRepoReader{
		files: map[string]map[patch.Revision][]byte{
			"trunk/foo.c": {
				1: []byte("old\n"),
				2: []byte("new\n"),
			},
		},
		head: 2,
	}
	cb := &recordingCallbacks{}

	ep := Endpoints{
		URL1: "trunk/foo.c", URL2: "trunk/foo.c",
		Rev1: 1, Rev2: 2,
		Kind1: patch.NodeFile, Kind2: patch.NodeFile,
	}

	if err := DiffReposRepos(context.Background(), reader, cb, ep); err != nil {
		t.Fatalf("DiffReposRepos() error = %v", err)
	}
	if len(cb.changed) != 1 || cb.changed[0] != "trunk/foo.c" {
		t.Errorf("expected one FileChanged for trunk/foo.c, got %v", cb.changed)
	}
}

func TestDiffReposReposDirAddedSide(t *testing.T) {
	reader := &fakeRepoReader{
		files: map[string]map[patch.Revision][]byte{
			"trunk/a.c": {2: []byte("hello\n")},
			"trunk/b.c": {2: []byte("world\n")},
		},
		dirs: map[string]map[patch.Revision][]vcsreader.DirEntry{
			"trunk": {
				2: {
					{Name: "a.c", Kind: patch.NodeFile},
					{Name: "b.c", Kind: patch.NodeFile},
				},
			},
		},
		head: 2,
	}
	cb := &recordingCallbacks{}

	ep := Endpoints{
		URL1: "trunk", URL2: "trunk",
		Rev1: patch.Invalid, Rev2: 2,
		Kind1: patch.NodeAbsent, Kind2: patch.NodeDir,
	}

	if err := DiffReposRepos(context.Background(), reader, cb, ep); err != nil {
		t.Fatalf("DiffReposRepos() error = %v", err)
	}

	sort.Strings(cb.added)
	if len(cb.added) != 2 || cb.added[0] != "trunk/a.c" || cb.added[1] != "trunk/b.c" {
		t.Errorf("expected both files added, got %v", cb.added)
	}
}
