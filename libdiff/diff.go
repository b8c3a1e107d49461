package libdiff

import (
	"github.com/signadot/livequery/debug"
)

// Diff produces a delta describing how to go from left to right.  If
// there are no differences, Diff returns nil.
//
// A resulting delta may be applied with [Patch] and reversed with
// [Reverse].
//
//   - if the kinds of left and right differ, or they are different
//     scalars, the result replaces left by right.
//
//   - for objects, every key only in right is added, every key only in
//     left is removed, and keys present in both hold the delta of their
//     values when it is not nil.
//
//   - for arrays, items are matched by equality, by hash when an
//     [ObjectHash] is given, or by position with [MatchByPosition].
//     Unmatched items are removed or added, a removed item matching an
//     added one is moved, and matched items hold the delta of their
//     values.
func Diff(left, right any, opts ...DiffOpt) Delta {
	d := &differ{cfg: newDiffConfig(opts)}
	res := d.diff(left, right)
	if debug.Diff() {
		debug.Logf("diff\n%v\n%v\n=> %v\n", left, right, res)
	}
	return res
}

type differ struct {
	cfg *DiffConfig
}

func (d *differ) diff(left, right any) Delta {
	lk, rk := kindOf(left), kindOf(right)
	if lk != rk {
		return d.replaced(left, right)
	}
	switch lk {
	case objectKind:
		lo, _ := asObject(left)
		ro, _ := asObject(right)
		return d.diffObject(lo, ro)
	case arrayKind:
		la, _ := asArray(left)
		ra, _ := asArray(right)
		return d.diffArray(la, ra)
	case stringKind:
		return d.diffString(left.(string), right.(string))
	}
	if Equal(left, right) {
		return nil
	}
	return d.replaced(left, right)
}

func (d *differ) diffObject(left, right map[string]any) Delta {
	var res map[string]any
	set := func(k string, delta Delta) {
		if res == nil {
			res = make(map[string]any)
		}
		res[k] = delta
	}
	for k, lv := range left {
		rv, ok := right[k]
		if !ok {
			set(k, d.removed(lv))
			continue
		}
		if cd := d.diff(lv, rv); cd != nil {
			set(k, cd)
		}
	}
	for k, rv := range right {
		if _, ok := left[k]; !ok {
			set(k, d.added(rv))
		}
	}
	if res == nil {
		return nil
	}
	return res
}
