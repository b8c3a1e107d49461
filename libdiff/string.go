package libdiff

import (
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

func (d *differ) diffString(from, to string) Delta {
	if from == to {
		return nil
	}
	minLen := d.cfg.TextDiffMinLength
	if minLen <= 0 || len(from) < minLen || len(to) < minLen {
		return d.replaced(from, to)
	}
	dmp := diffpatch.New()
	patches := dmp.PatchMake(from, to)
	return []any{dmp.PatchToText(patches), 0, TextDiffTag}
}
