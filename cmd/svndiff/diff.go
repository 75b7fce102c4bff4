package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/go-git/go-git/v5"

	"github.com/svndiff/svndiff/internal/config"
	"github.com/svndiff/svndiff/internal/differ"
	"github.com/svndiff/svndiff/internal/executor"
	"github.com/svndiff/svndiff/internal/logger"
	"github.com/svndiff/svndiff/internal/patch"
	"github.com/svndiff/svndiff/internal/textdiff"
	"github.com/svndiff/svndiff/internal/vcsreader"
)

// runDiff implements the "diff" subcommand: compare two revisions of a
// local git repository (the default vcsreader.RepoReader backend) and
// print a unified diff of every changed file to stdout.
func runDiff(args []string, cfg config.Config, lg *logger.Logger) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	repoPath := fs.String("repo", ".", "path to the repository")
	path := fs.String("path", "", "path within the repository to diff (default: whole tree)")
	rev1 := fs.Int64("r1", -1, "old revision (generation number; -1 means the root commit)")
	rev2 := fs.Int64("r2", -1, "new revision (generation number; -1 means HEAD)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s diff -repo=<path> [-path=<subpath>] [-r1=N] [-r2=N]\n", os.Args[0])
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	ctx := context.Background()

	gitRepo, err := git.PlainOpenWithOptions(*repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		handleCommandError("diff", err)
	}

	reader, err := vcsreader.NewGitRepoReader(gitRepo, nil)
	if err != nil {
		handleCommandError("diff", err)
	}

	head, err := reader.HeadRevision(ctx)
	if err != nil {
		handleCommandError("diff", err)
	}

	r1, r2 := patch.Revision(*rev1), patch.Revision(*rev2)
	if *rev1 < 0 {
		r1 = 0
	}
	if *rev2 < 0 {
		r2 = head
	}

	ep, err := differ.PrepareEndpoints(ctx, reader, differ.Target{
		PathOrURL: *path,
		Operative: differ.RevisionSpec{Kind: differ.RevisionNumber, Number: r1},
	}, differ.Target{
		PathOrURL: *path,
		Operative: differ.RevisionSpec{Kind: differ.RevisionNumber, Number: r2},
	})
	if err != nil {
		handleCommandError("diff", err)
	}

	cb := &textCallbacks{
		out:    os.Stdout,
		differ: textdiff.DefaultDiffer{},
		exec:   executor.NewRealCommandExecutor(),
		cfg:    cfg,
		lg:     lg,
	}
	if err := differ.DiffReposRepos(ctx, reader, cb, ep); err != nil {
		handleCommandError("diff", err)
	}
}
