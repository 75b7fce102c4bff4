package main

import (
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/svndiff/svndiff/internal/config"
	"github.com/svndiff/svndiff/internal/differ"
	"github.com/svndiff/svndiff/internal/executor"
	"github.com/svndiff/svndiff/internal/githeader"
	"github.com/svndiff/svndiff/internal/label"
	"github.com/svndiff/svndiff/internal/logger"
	"github.com/svndiff/svndiff/internal/patch"
	"github.com/svndiff/svndiff/internal/propdiff"
	"github.com/svndiff/svndiff/internal/textdiff"
)

// textCallbacks is the text front-end's differ.Callbacks implementation:
// it binds the driver's enumeration of changes to githeader, textdiff and
// propdiff to render a unified, optionally git-extended diff to out.
type textCallbacks struct {
	out    io.Writer
	differ textdiff.Differ
	exec   executor.CommandExecutor
	cfg    config.Config
	lg     *logger.Logger
	props  *propdiff.Writer
}

func (c *textCallbacks) propWriter() *propdiff.Writer {
	if c.props == nil {
		c.props = propdiff.NewWriter(c.differ)
	}
	return c.props
}

func (c *textCallbacks) FileOpened(ctx context.Context, path string, rev patch.Revision) (differ.State, error) {
	c.lg.Debug("diffing %s", path)
	return differ.State{}, nil
}

func (c *textCallbacks) FileChanged(ctx context.Context, path string, tmpOld, tmpNew []byte, revOld, revNew patch.Revision, mimeOld, mimeNew string, propChanges differ.PropChanges, oldProps map[string]string) (differ.State, error) {
	l1, l2, err := githeader.Emit(c.out, patch.OpModified, path, path, "")
	if err != nil {
		return differ.State{}, err
	}
	if err := c.emitTextHunks(ctx, l1, l2, revOld, revNew, string(tmpOld), string(tmpNew)); err != nil {
		return differ.State{}, err
	}
	return differ.State{}, c.emitPropChanges(path, propChanges)
}

func (c *textCallbacks) FileAdded(ctx context.Context, path string, tmpNew []byte, revOld, revNew patch.Revision, mimeNew string, copyFrom string, copyFromRev patch.Revision, propChanges differ.PropChanges) (differ.State, error) {
	op := patch.OpAdded
	if copyFrom != "" {
		op = patch.OpCopied
	}
	l1, l2, err := githeader.Emit(c.out, op, path, path, copyFrom)
	if err != nil {
		return differ.State{}, err
	}
	label1 := adjustLabel(l1, revOld)
	if copyFrom != "" {
		// copy: the "old" side names the copy source, not path itself
		// (SPEC_FULL §4 "Copyfrom-revision display").
		label1 = label.CopyFrom(l1, copyFrom, copyFromRev)
	}
	if err := c.emitTextHunksLabeled(ctx, label1, adjustLabel(l2, revNew), "", string(tmpNew)); err != nil {
		return differ.State{}, err
	}
	return differ.State{}, c.emitPropChanges(path, propChanges)
}

func (c *textCallbacks) FileDeleted(ctx context.Context, path string, tmpOld []byte, mimeOld, mimeNew string, oldProps map[string]string) (differ.State, error) {
	l1, l2, err := githeader.Emit(c.out, patch.OpDeleted, path, path, "")
	if err != nil {
		return differ.State{}, err
	}
	return differ.State{}, c.emitTextHunks(ctx, l1, l2, patch.Invalid, patch.Invalid, string(tmpOld), "")
}

func (c *textCallbacks) DirOpened(ctx context.Context, path string, rev patch.Revision) (differ.State, error) {
	return differ.State{}, nil
}

func (c *textCallbacks) DirAdded(ctx context.Context, path string, rev patch.Revision) (differ.State, error) {
	return differ.State{}, nil
}

func (c *textCallbacks) DirDeleted(ctx context.Context, path string) (differ.State, error) {
	return differ.State{}, nil
}

func (c *textCallbacks) DirPropsChanged(ctx context.Context, path string, propChanges differ.PropChanges, isAdd bool) (differ.State, error) {
	return differ.State{}, c.emitPropChanges(path, propChanges)
}

func (c *textCallbacks) DirClosed(ctx context.Context, path string) (differ.State, error) {
	return differ.State{}, nil
}

func (c *textCallbacks) emitTextHunks(ctx context.Context, l1, l2 string, revOld, revNew patch.Revision, old, new string) error {
	return c.emitTextHunksLabeled(ctx, adjustLabel(l1, revOld), adjustLabel(l2, revNew), old, new)
}

// emitTextHunksLabeled renders the text diff for old/new given already-final
// labels, allowing callers (e.g. FileAdded's copy path) to substitute a
// copyfrom-revision label instead of the plain revision-suffixed one.
func (c *textCallbacks) emitTextHunksLabeled(ctx context.Context, label1, label2, old, new string) error {
	if old == new {
		return nil
	}

	if c.cfg.DiffCmd != "" {
		return c.emitExternalDiffHunks(ctx, label1, label2, old, new)
	}

	rendered, err := c.differ.Diff(old, new, textdiff.Options{
		ContextLines: 3,
		Label1:       label1,
		Label2:       label2,
	})
	if err != nil {
		return err
	}
	_, err = io.WriteString(c.out, rendered)
	return err
}

// emitExternalDiffHunks shells out to the configured external diff command
// (spec §6 "External diff command") instead of internal/textdiff, passing
// the two sides as temp files the way `svn diff --diff-cmd` invokes its
// external program: "<diff-cmd> -L label1 -L label2 <extensions…> old new".
func (c *textCallbacks) emitExternalDiffHunks(ctx context.Context, label1, label2, old, new string) error {
	oldFile, err := writeTempFile("svndiff-old-*", old)
	if err != nil {
		return err
	}
	defer os.Remove(oldFile)

	newFile, err := writeTempFile("svndiff-new-*", new)
	if err != nil {
		return err
	}
	defer os.Remove(newFile)

	args := append([]string{"-L", label1, "-L", label2}, c.cfg.DiffExtensions...)
	args = append(args, oldFile, newFile)

	output, err := c.exec.Execute(ctx, c.cfg.DiffCmd, args...)
	if err != nil {
		// external diff programs conventionally exit 1 to mean "files
		// differ", not "command failed"; only a missing/unexecutable
		// program or a non-exit failure is a real error here.
		if _, isExitErr := err.(*exec.ExitError); !isExitErr {
			return err
		}
	}
	_, werr := c.out.Write(output)
	return werr
}

func writeTempFile(pattern, content string) (string, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func adjustLabel(l string, rev patch.Revision) string {
	if l == "/dev/null" {
		return l
	}
	return label.Diff(l, rev)
}

func (c *textCallbacks) emitPropChanges(path string, propChanges differ.PropChanges) error {
	if len(propChanges) == 0 {
		return nil
	}
	changes := make([]propdiff.Change, len(propChanges))
	for i, p := range propChanges {
		changes[i] = propdiff.Change{Name: p.Name, Old: p.Old, New: p.New}
	}
	return c.propWriter().Emit(c.out, path, changes)
}
