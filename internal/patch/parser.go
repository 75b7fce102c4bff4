package patch

import (
	"strconv"
	"strings"

	"github.com/svndiff/svndiff/internal/logger"
)

// parseState names the states of the per-patch header state machine
// (spec §4.G "Drives a state machine per patch").
type parseState int

const (
	stateStart parseState = iota
	stateGitDiffSeen
	stateGitTreeSeen
	stateGitMinusSeen
	stateGitPlusSeen
	stateOldModeSeen
	stateGitModeSeen
	stateMoveFromSeen
	stateCopyFromSeen
	stateMinusSeen
	stateUnidiffFound
	stateGitHeaderFound
	stateBinaryPatchFound
)

func (s parseState) terminal() bool {
	return s == stateUnidiffFound || s == stateGitHeaderFound || s == stateBinaryPatchFound
}

// ParseOptions configures patch parsing (spec §4.G + SPEC_FULL §4
// "whitespace-insensitive hunk matching").
type ParseOptions struct {
	// Reverse, if true, parses the patch as if reversed (spec §4.G "Reversal").
	Reverse bool
	// IgnoreWhitespace relaxes the hunk body's prefix classification so
	// that non-matching leading characters still count as context.
	IgnoreWhitespace bool
	Logger           *logger.Logger
}

// Parser pulls successive Patches out of a patch-file Source (spec §5
// "The parser is a pull API: next_patch(patch_file) -> patch?").
type Parser struct {
	src  *Source
	pos  int64
	opts ParseOptions
	log  *logger.Logger
}

// NewParser creates a Parser over src starting at the beginning of the file.
func NewParser(src *Source, opts ParseOptions) *Parser {
	log := opts.Logger
	if log == nil {
		log = logger.NewFromEnv()
	}
	return &Parser{src: src, opts: opts, log: log}
}

// transition is one entry of the prefix-driven header state table
// (spec DESIGN NOTES "State machine over a prefix table").
type transition struct {
	prefix string
	from   map[parseState]bool
	handle func(p *parseCtx, line string) error
}

func from(states ...parseState) map[parseState]bool {
	m := make(map[parseState]bool, len(states))
	for _, s := range states {
		m[s] = true
	}
	return m
}

// parseCtx carries the in-progress patch and state across transitions.
type parseCtx struct {
	patch *Patch
	state parseState
}

var transitions = []transition{
	{"--- ", from(stateStart), handleClassicalOld},
	{"+++ ", from(stateMinusSeen), handleClassicalNew},
	{"diff --git", from(stateStart), handleGitDiffGit},
	{"old mode ", from(stateGitDiffSeen), handleOldMode},
	{"new mode ", from(stateOldModeSeen), handleNewMode},
	{"rename from ", from(stateGitDiffSeen, stateGitModeSeen), handleRenameFrom},
	{"rename to ", from(stateMoveFromSeen), handleRenameTo},
	{"copy from ", from(stateGitDiffSeen, stateGitModeSeen), handleCopyFrom},
	{"copy to ", from(stateCopyFromSeen), handleCopyTo},
	{"new file mode ", from(stateGitDiffSeen), handleNewFileMode},
	{"deleted file mode ", from(stateGitDiffSeen), handleDeletedFileMode},
	{"index ", from(stateGitDiffSeen, stateGitTreeSeen, stateGitModeSeen), handleIndexLine},
	{"similarity index ", from(stateGitDiffSeen, stateGitTreeSeen, stateGitModeSeen), handleIgnoredLine},
	{"dissimilarity index ", from(stateGitDiffSeen, stateGitTreeSeen, stateGitModeSeen), handleIgnoredLine},
	{"GIT binary patch", from(stateGitDiffSeen, stateGitTreeSeen, stateGitModeSeen), handleBinaryPatchMarker},
	{"--- /dev/null", from(stateGitDiffSeen, stateGitModeSeen, stateGitTreeSeen), handleGitOldDevNull},
	{"--- a/", from(stateGitDiffSeen, stateGitModeSeen, stateGitTreeSeen), handleGitOld},
	{"+++ /dev/null", from(stateGitMinusSeen), handleGitNewDevNull},
	{"+++ b/", from(stateGitMinusSeen), handleGitNew},
}

// NextPatch returns the next patch in the file, or nil at EOF
// (spec §4.G "EOF without both filenames produces a null patch").
func (pr *Parser) NextPatch() (*Patch, error) {
	for {
		patch, state, err := pr.scanHeader()
		if err != nil {
			return nil, err
		}
		if patch == nil {
			return nil, nil
		}

		if patch.Valid() {
			switch state {
			case stateUnidiffFound, stateGitHeaderFound:
				if err := pr.parseHunksAndProps(patch); err != nil {
					return nil, err
				}
			case stateBinaryPatchFound:
				if err := pr.parseBinaryBlock(patch); err != nil {
					return nil, err
				}
			}
			sortHunks(patch.Hunks)
			if pr.opts.Reverse {
				patch = patch.Reversed()
			}
			patch.source = pr.src
			for _, h := range patch.Hunks {
				h.patch = patch
			}
			return patch, nil
		}
		// invalid patch: discard and resume scanning (spec §3 invariant 4)
	}
}

// scanHeader runs the prefix-table state machine over successive lines
// until a terminal state, or a non-matching line while in
// stateGitTreeSeen/stateGitModeSeen (rewound for the next call), or EOF.
func (pr *Parser) scanHeader() (*Patch, parseState, error) {
	data := pr.src.Bytes()
	ctx := &parseCtx{patch: &Patch{PropPatches: map[string]*PropertyPatch{}}, state: stateStart}
	sawAnyLine := false

	for {
		lineStart := pr.pos
		line, next, ok := lineAt(data, pr.pos)
		if !ok {
			if !sawAnyLine {
				return nil, stateStart, nil
			}
			return ctx.patch, ctx.state, nil
		}

		matched := false
		for _, t := range transitions {
			if !t.from[ctx.state] {
				continue
			}
			if !hasPrefix(line, t.prefix) {
				continue
			}
			if err := t.handle(ctx, string(line)); err != nil {
				return nil, stateStart, err
			}
			matched = true
			sawAnyLine = true
			pr.pos = next
			break
		}

		if matched {
			if ctx.state.terminal() {
				return ctx.patch, ctx.state, nil
			}
			continue
		}

		if !sawAnyLine {
			// no header found at all on this line; advance past it and keep
			// scanning for the start of the next patch
			pr.pos = next
			continue
		}

		if ctx.state == stateGitTreeSeen || ctx.state == stateGitModeSeen {
			// rewind: this line belongs to the next call (spec §4.G)
			pr.pos = lineStart
			return ctx.patch, ctx.state, nil
		}

		// unmatched line in an incomplete header: treat as noise and continue
		pr.pos = next
	}
}

func sortHunks(hunks []*Hunk) {
	for i := 1; i < len(hunks); i++ {
		for j := i; j > 0 && hunks[j-1].OriginalStart > hunks[j].OriginalStart; j-- {
			hunks[j-1], hunks[j] = hunks[j], hunks[j-1]
		}
	}
}

// --- transition handlers -----------------------------------------------

func handleClassicalOld(c *parseCtx, line string) error {
	c.patch.OldFilename = stripLabel(strings.TrimPrefix(line, "--- "))
	c.state = stateMinusSeen
	return nil
}

func handleClassicalNew(c *parseCtx, line string) error {
	c.patch.NewFilename = stripLabel(strings.TrimPrefix(line, "+++ "))
	if c.patch.Operation == OpUnchanged {
		c.patch.Operation = OpModified
	}
	c.state = stateUnidiffFound
	return nil
}

// stripLabel drops a trailing "\t(revision N)"/"\t(working copy)" label,
// keeping only the path (spec §4.A labels appear on these lines too).
func stripLabel(s string) string {
	if i := strings.IndexByte(s, '\t'); i >= 0 {
		return s[:i]
	}
	return s
}

func handleGitDiffGit(c *parseCtx, line string) error {
	rest := strings.TrimPrefix(line, "diff --git ")
	a, b, ok := splitGitNames(rest)
	if ok {
		c.patch.OldFilename = strings.TrimPrefix(a, "a/")
		c.patch.NewFilename = strings.TrimPrefix(b, "b/")
	}
	c.state = stateGitDiffSeen
	return nil
}

// splitGitNames splits "a/foo b/foo" into its two halves, tolerating quoted
// names that contain spaces by looking for the " b/" marker.
func splitGitNames(rest string) (a, b string, ok bool) {
	if i := strings.Index(rest, " b/"); i >= 0 {
		return rest[:i], rest[i+1:], true
	}
	fields := strings.Fields(rest)
	if len(fields) == 2 {
		return fields[0], fields[1], true
	}
	return "", "", false
}

func handleOldMode(c *parseCtx, line string) error {
	mode := strings.TrimSpace(strings.TrimPrefix(line, "old mode "))
	exec, symlink := parseMode(mode)
	c.patch.OldExecutableBit = exec
	c.patch.OldSymlinkBit = symlink
	c.state = stateOldModeSeen
	return nil
}

func handleNewMode(c *parseCtx, line string) error {
	mode := strings.TrimSpace(strings.TrimPrefix(line, "new mode "))
	exec, symlink := parseMode(mode)
	c.patch.NewExecutableBit = exec
	c.patch.NewSymlinkBit = symlink
	c.state = stateGitModeSeen
	return nil
}

func handleRenameFrom(c *parseCtx, line string) error {
	c.patch.OldFilename = strings.TrimSpace(strings.TrimPrefix(line, "rename from "))
	c.patch.Operation = OpMoved
	c.state = stateMoveFromSeen
	return nil
}

func handleRenameTo(c *parseCtx, line string) error {
	c.patch.NewFilename = strings.TrimSpace(strings.TrimPrefix(line, "rename to "))
	c.patch.Operation = OpMoved
	c.state = stateGitTreeSeen
	return nil
}

func handleCopyFrom(c *parseCtx, line string) error {
	c.patch.OldFilename = strings.TrimSpace(strings.TrimPrefix(line, "copy from "))
	c.patch.Operation = OpCopied
	c.state = stateCopyFromSeen
	return nil
}

func handleCopyTo(c *parseCtx, line string) error {
	c.patch.NewFilename = strings.TrimSpace(strings.TrimPrefix(line, "copy to "))
	c.patch.Operation = OpCopied
	c.state = stateGitTreeSeen
	return nil
}

func handleNewFileMode(c *parseCtx, line string) error {
	mode := strings.TrimSpace(strings.TrimPrefix(line, "new file mode "))
	exec, symlink := parseMode(mode)
	c.patch.NewExecutableBit = exec
	c.patch.NewSymlinkBit = symlink
	c.patch.Operation = OpAdded
	c.state = stateGitTreeSeen
	return nil
}

func handleDeletedFileMode(c *parseCtx, line string) error {
	mode := strings.TrimSpace(strings.TrimPrefix(line, "deleted file mode "))
	exec, symlink := parseMode(mode)
	c.patch.OldExecutableBit = exec
	c.patch.OldSymlinkBit = symlink
	c.patch.Operation = OpDeleted
	c.state = stateGitTreeSeen
	return nil
}

func handleIndexLine(c *parseCtx, line string) error {
	// "index <old>..<new> [mode]" — only the trailing unchanged mode, if
	// present, is of interest (spec §4.G "optionally extract unchanged mode").
	fields := strings.Fields(line)
	if len(fields) == 3 {
		exec, symlink := parseMode(fields[2])
		if c.patch.OldExecutableBit == Unknown {
			c.patch.OldExecutableBit = exec
			c.patch.OldSymlinkBit = symlink
		}
		if c.patch.NewExecutableBit == Unknown {
			c.patch.NewExecutableBit = exec
			c.patch.NewSymlinkBit = symlink
		}
	}
	c.state = stateGitTreeSeen
	return nil
}

func handleIgnoredLine(c *parseCtx, line string) error {
	c.state = stateGitTreeSeen
	return nil
}

func handleBinaryPatchMarker(c *parseCtx, line string) error {
	c.state = stateBinaryPatchFound
	return nil
}

func handleGitOldDevNull(c *parseCtx, line string) error {
	c.state = stateGitMinusSeen
	return nil
}

func handleGitOld(c *parseCtx, line string) error {
	name := strings.TrimPrefix(line, "--- a/")
	name = stripLabel(name)
	if c.patch.OldFilename == "" {
		c.patch.OldFilename = name
	}
	c.state = stateGitMinusSeen
	return nil
}

func handleGitNewDevNull(c *parseCtx, line string) error {
	c.state = stateGitHeaderFound
	return nil
}

func handleGitNew(c *parseCtx, line string) error {
	name := strings.TrimPrefix(line, "+++ b/")
	name = stripLabel(name)
	if c.patch.NewFilename == "" {
		c.patch.NewFilename = name
	}
	c.state = stateGitHeaderFound
	return nil
}

// parseMode maps an octal git file mode onto the executable/symlink
// tristates (spec §4.G "Mode parsing").
func parseMode(octal string) (executable, symlink Tristate) {
	n, err := strconv.ParseUint(strings.TrimSpace(octal), 8, 32)
	if err != nil {
		return Unknown, Unknown
	}

	switch n & 0777 {
	case 0644:
		executable = False
	case 0755:
		executable = True
	default:
		executable = Unknown
	}

	switch n & 0170000 {
	case 0120000:
		symlink = True
	case 0100000, 0040000:
		symlink = False
	default:
		symlink = Unknown
	}

	return executable, symlink
}
