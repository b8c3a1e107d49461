package libdiff

import (
	"regexp"
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

func patchText(doc any, unidiff any, p *path) (string, error) {
	from, ok := doc.(string)
	if !ok {
		return "", malformed(p, "text delta applied to %T", doc)
	}
	txt, ok := unidiff.(string)
	if !ok {
		return "", malformed(p, "text delta is %T, not a string", unidiff)
	}
	dmp := diffpatch.New()
	patches, err := dmp.PatchFromText(txt)
	if err != nil {
		return "", malformed(p, "invalid text delta: %v", err)
	}
	res, applied := dmp.PatchApply(patches, from)
	for i, ok := range applied {
		if !ok {
			return "", malformed(p, "text delta hunk %d does not apply", i)
		}
	}
	return res, nil
}

var hunkHeader = regexp.MustCompile(`^@@ -(\d+)(,\d+)? \+(\d+)(,\d+)? @@$`)

// reverseText swaps the sides of a unidiff: hunk ranges trade places and
// insertions become deletions.
func reverseText(unidiff any, p *path) (string, error) {
	txt, ok := unidiff.(string)
	if !ok {
		return "", malformed(p, "text delta is %T, not a string", unidiff)
	}
	lines := strings.Split(txt, "\n")
	for i, line := range lines {
		if line == "" {
			continue
		}
		switch line[0] {
		case '@':
			m := hunkHeader.FindStringSubmatch(line)
			if m == nil {
				return "", malformed(p, "invalid text delta hunk header %q", line)
			}
			lines[i] = "@@ -" + m[3] + m[4] + " +" + m[1] + m[2] + " @@"
		case '+':
			lines[i] = "-" + line[1:]
		case '-':
			lines[i] = "+" + line[1:]
		}
	}
	return strings.Join(lines, "\n"), nil
}
