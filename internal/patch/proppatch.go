package patch

import "strings"

// parsePropertySection parses one "Added:"/"Deleted:"/"Modified: <name>"
// block and its one-or-more "##"-delimited property hunks (spec §4.G
// "Property patches are a separate path in the parser"). The svn:mergeinfo
// property is excluded from patch.PropPatches (spec §3 invariant; §8
// invariant 4) and instead feeds patch.Mergeinfo/ReverseMergeinfo.
func (pr *Parser) parsePropertySection(patch *Patch, headerLine string) error {
	var op Operation
	var name string
	switch {
	case strings.HasPrefix(headerLine, "Added:"):
		op = OpAdded
		name = strings.TrimSpace(strings.TrimPrefix(headerLine, "Added:"))
	case strings.HasPrefix(headerLine, "Deleted:"):
		op = OpDeleted
		name = strings.TrimSpace(strings.TrimPrefix(headerLine, "Deleted:"))
	case strings.HasPrefix(headerLine, "Modified:"):
		op = OpModified
		name = strings.TrimSpace(strings.TrimPrefix(headerLine, "Modified:"))
	default:
		return errSyntax("not a property header: " + headerLine)
	}

	// advance past the header line
	_, next, ok := lineAt(pr.src.Bytes(), pr.pos)
	if !ok {
		return errSyntax("truncated property section")
	}
	pr.pos = next

	pp := &PropertyPatch{Name: name, Operation: op}
	isMergeinfo := name == "svn:mergeinfo"

	data := pr.src.Bytes()
	for {
		lineStart := pr.pos
		line, _, ok := lineAt(data, pr.pos)
		if !ok {
			break
		}
		if !hasPrefix(line, "##") {
			pr.pos = lineStart
			break
		}
		hunk, err := pr.parseOneHunkNamed(patch, true, name)
		if err != nil {
			return err
		}
		pp.Hunks = append(pp.Hunks, hunk)
	}

	if !isMergeinfo {
		patch.PropPatches[name] = pp
	}
	return nil
}
