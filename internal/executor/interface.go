package executor

import "context"

// CommandExecutor defines the interface for executing external commands.
// It backs the "external diff command" collaborator (diff-cmd): cmd/svndiff
// shells out through it when config.Config.DiffCmd is set instead of
// rendering through internal/textdiff.
type CommandExecutor interface {
	// Execute runs a command and returns its output. Output is returned even
	// when the command exits non-zero (an *exec.ExitError), since an
	// external diff program's conventional "files differ" signal is exit
	// status 1 with the diff itself on stdout.
	Execute(ctx context.Context, name string, args ...string) ([]byte, error)

	// ExecuteInDir runs a command in a specific directory and returns its output
	ExecuteInDir(ctx context.Context, dir string, name string, args ...string) ([]byte, error)
}
