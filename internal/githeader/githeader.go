// Package githeader emits the git-extended diff header lines (spec §4.B):
// "diff --git", the new/deleted-file mode lines, and the copy/rename
// from/to pairs, in the shape github.com/bluekeyes/go-gitdiff's File.String
// renders them and our own patch parser in internal/patch accepts back.
package githeader

import (
	"fmt"
	"io"

	"github.com/svndiff/svndiff/internal/patch"
)

// fixedMode is the only mode this producer ever emits; the parser accepts
// arbitrary octal modes (executable, symlink) but we never synthesize them
// (spec §4.B: "extended modes are not emitted by the producer").
const fixedMode = "10644"

// Emit writes the "diff --git" header block for one operation and returns
// the labels the caller should pass through §4.A diff-label before writing
// the --- / +++ lines.
func Emit(w io.Writer, op patch.Operation, oldPath, newPath string, copyFrom string) (label1, label2 string, err error) {
	switch op {
	case patch.OpAdded:
		if _, err = fmt.Fprintf(w, "diff --git a/%s b/%s\nnew file mode %s\n", oldPath, newPath, fixedMode); err != nil {
			return "", "", err
		}
		return "/dev/null", "b/" + newPath, nil

	case patch.OpDeleted:
		if _, err = fmt.Fprintf(w, "diff --git a/%s b/%s\ndeleted file mode %s\n", oldPath, newPath, fixedMode); err != nil {
			return "", "", err
		}
		return "a/" + oldPath, "/dev/null", nil

	case patch.OpCopied:
		if _, err = fmt.Fprintf(w, "diff --git a/%s b/%s\ncopy from %s\ncopy to %s\n", copyFrom, newPath, copyFrom, newPath); err != nil {
			return "", "", err
		}
		return "a/" + copyFrom, "b/" + newPath, nil

	case patch.OpMoved:
		if _, err = fmt.Fprintf(w, "diff --git a/%s b/%s\nrename from %s\nrename to %s\n", copyFrom, newPath, copyFrom, newPath); err != nil {
			return "", "", err
		}
		return "a/" + copyFrom, "b/" + newPath, nil

	default: // modified, unchanged
		if _, err = fmt.Fprintf(w, "diff --git a/%s b/%s\n", oldPath, newPath); err != nil {
			return "", "", err
		}
		return "a/" + oldPath, "b/" + newPath, nil
	}
}
