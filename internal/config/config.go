// Package config loads the small set of configuration keys spec §6 exposes:
// the external diff command and its extra options.
package config

import (
	"os"
	"strings"
)

// Config holds the external-diff-command configuration (spec §6
// "Configuration keys").
type Config struct {
	// DiffCmd is the path to an external diff program. When empty, the
	// internal text differ (internal/textdiff) is used instead.
	DiffCmd string
	// DiffExtensions is a whitespace-delimited list of options appended to
	// the external diff invocation. The internal text differ does not use
	// them.
	DiffExtensions []string
}

// LoadFromEnv reads diff-cmd/diff-extensions from the process environment,
// mirroring the teacher's flag-driven configuration style but for the
// ambient config layer (env vars so library callers don't need flag.Parse).
func LoadFromEnv() Config {
	cfg := Config{
		DiffCmd: os.Getenv("SVNDIFF_DIFF_CMD"),
	}
	if ext := os.Getenv("SVNDIFF_DIFF_EXTENSIONS"); ext != "" {
		cfg.DiffExtensions = strings.Fields(ext)
	}
	return cfg
}

// Validate checks that a configured diff-cmd, if any, looks usable.
func (c *Config) Validate() error {
	if c.DiffCmd == "" {
		return nil
	}
	if strings.TrimSpace(c.DiffCmd) == "" {
		return errConfigInvalid("diff-cmd is blank")
	}
	return nil
}

type errConfigInvalid string

func (e errConfigInvalid) Error() string { return string(e) }
