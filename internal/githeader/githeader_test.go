package githeader

import (
	"strings"
	"testing"

	"github.com/svndiff/svndiff/internal/patch"
)

func TestEmit(t *testing.T) {
	tests := []struct {
		name           string
		op             patch.Operation
		oldPath        string
		newPath        string
		copyFrom       string
		wantOut        string
		wantL1, wantL2 string
	}{
		{
			name: "added", op: patch.OpAdded, oldPath: "foo.c", newPath: "foo.c",
			wantOut: "diff --git a/foo.c b/foo.c\nnew file mode 10644\n",
			wantL1:  "/dev/null", wantL2: "b/foo.c",
		},
		{
			name: "deleted", op: patch.OpDeleted, oldPath: "foo.c", newPath: "foo.c",
			wantOut: "diff --git a/foo.c b/foo.c\ndeleted file mode 10644\n",
			wantL1:  "a/foo.c", wantL2: "/dev/null",
		},
		{
			name: "modified", op: patch.OpModified, oldPath: "foo.c", newPath: "foo.c",
			wantOut: "diff --git a/foo.c b/foo.c\n",
			wantL1:  "a/foo.c", wantL2: "b/foo.c",
		},
		{
			name: "copied", op: patch.OpCopied, newPath: "bar.c", copyFrom: "foo.c",
			wantOut: "diff --git a/foo.c b/bar.c\ncopy from foo.c\ncopy to bar.c\n",
			wantL1:  "a/foo.c", wantL2: "b/bar.c",
		},
		{
			name: "moved", op: patch.OpMoved, newPath: "bar.c", copyFrom: "foo.c",
			wantOut: "diff --git a/foo.c b/bar.c\nrename from foo.c\nrename to bar.c\n",
			wantL1:  "a/foo.c", wantL2: "b/bar.c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf strings.Builder
			l1, l2, err := Emit(&buf, tt.op, tt.oldPath, tt.newPath, tt.copyFrom)
			if err != nil {
				t.Fatalf("Emit() error = %v", err)
			}
			if buf.String() != tt.wantOut {
				t.Errorf("Emit() output = %q, want %q", buf.String(), tt.wantOut)
			}
			if l1 != tt.wantL1 || l2 != tt.wantL2 {
				t.Errorf("Emit() labels = (%q, %q), want (%q, %q)", l1, l2, tt.wantL1, tt.wantL2)
			}
		})
	}
}
