package differ

import "github.com/svndiff/svndiff/internal/patch"

// RevisionKind distinguishes how a revision was specified, since "local"
// classification depends on the kind, not just whether a number was given
// (spec §4.D "A revision is local iff its kind is base or working").
type RevisionKind int

const (
	// RevisionNumber is an explicit numbered repository revision.
	RevisionNumber RevisionKind = iota
	// RevisionHead is the latest revision in the repository.
	RevisionHead
	// RevisionBase is the working copy's last-updated-to revision.
	RevisionBase
	// RevisionWorking is the uncommitted state of the working copy.
	RevisionWorking
)

// Local reports whether this revision kind refers to the working copy
// rather than a repository snapshot.
func (k RevisionKind) Local() bool {
	return k == RevisionBase || k == RevisionWorking
}

// RevisionSpec is a revision as given by the caller, before resolution to
// a concrete patch.Revision number.
type RevisionSpec struct {
	Kind   RevisionKind
	Number patch.Revision // only meaningful when Kind == RevisionNumber
}

// Target is one side of a diff invocation (spec §3 "Target descriptor",
// §4.D).
type Target struct {
	PathOrURL string
	Peg       *RevisionSpec // nil if not pegged
	Operative RevisionSpec
}

// IsURL reports whether t names a repository URL rather than a
// working-copy path.
func (t Target) IsURL() bool {
	return patch.TargetDescriptor{PathOrURL: t.PathOrURL}.IsURL()
}

// Mode is the four-way classification of a diff invocation (spec §4.D).
type Mode int

const (
	ModeRepoRepo Mode = iota
	ModeRepoWC
	ModeWCRepo
	ModeWCWC
)

func (m Mode) String() string {
	switch m {
	case ModeRepoRepo:
		return "repo-repo"
	case ModeRepoWC:
		return "repo-wc"
	case ModeWCRepo:
		return "wc-repo"
	default:
		return "wc-wc"
	}
}

// isRepos reports whether a side is a repository side: either its
// operative revision is non-local, or its path is a URL (spec §4.D
// "is_repos1 = ¬local(rev1) ∨ is_url(path1)").
func isRepos(t Target) bool {
	return !t.Operative.Kind.Local() || t.IsURL()
}

// Classify implements the diff driver's four-way mode classification.
func Classify(t1, t2 Target) Mode {
	r1 := isRepos(t1)
	r2 := isRepos(t2)
	switch {
	case r1 && r2:
		return ModeRepoRepo
	case r1 && !r2:
		return ModeRepoWC
	case !r1 && r2:
		return ModeWCRepo
	default:
		return ModeWCWC
	}
}
