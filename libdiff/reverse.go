package libdiff

import (
	"sort"
	"strconv"
)

// Reverse returns the delta undoing delta, so that
//
//	Patch(Patch(doc, delta), Reverse(delta))
//
// yields doc.  Deltas computed without previous values reverse into
// deltas restoring nil in place of the lost values.
func Reverse(delta Delta) (Delta, error) {
	return reverseDelta(delta, rootPath)
}

func reverseDelta(delta Delta, p *path) (Delta, error) {
	switch dt := delta.(type) {
	case nil:
		return nil, nil
	case []any:
		return reverseTuple(dt, p)
	case map[string]any:
		if isArrayDelta(dt) {
			return reverseArray(dt, p)
		}
		res := make(map[string]any, len(dt))
		for k, cd := range dt {
			rd, err := reverseDelta(cd, p.Field(k))
			if err != nil {
				return nil, err
			}
			res[k] = rd
		}
		return res, nil
	}
	return nil, malformed(p, "unexpected delta type %T", delta)
}

func reverseTuple(t []any, p *path) (Delta, error) {
	switch len(t) {
	case 1:
		return MakeRemoved(t[0]), nil
	case 2:
		return MakeReplaced(t[1], t[0]), nil
	case 3:
		tag, ok := toInt(t[2])
		if !ok {
			return nil, malformed(p, "invalid delta tag %v", t[2])
		}
		switch tag {
		case DeleteTag:
			return MakeAdded(t[0]), nil
		case TextDiffTag:
			txt, err := reverseText(t[0], p)
			if err != nil {
				return nil, err
			}
			return []any{txt, 0, TextDiffTag}, nil
		case MoveTag:
			return nil, malformed(p, "move outside of an array delta")
		}
		return nil, malformed(p, "unknown delta tag %d", tag)
	}
	return nil, malformed(p, "delta tuple of length %d", len(t))
}

// reverseArray swaps the roles of old and new indices.  Removals become
// insertions at the same index and vice versa, a move from i to j becomes
// a move from j to i, and a nested delta at new index j moves to the old
// index of the item which ended up at j.
func reverseArray(d map[string]any, p *path) (Delta, error) {
	ops, err := parseArrayDelta(d, p)
	if err != nil {
		return nil, err
	}
	res := map[string]any{ArrayTag: ArrayTagValue}
	movedTo := make(map[int]int, len(ops.moves))
	for _, i := range ops.removals {
		t := d[RemovedPrefix+strconv.Itoa(i)].([]any)
		if j, ok := ops.moves[i]; ok {
			res[RemovedPrefix+strconv.Itoa(j)] = MakeMoved(t[0], i)
			movedTo[j] = i
			continue
		}
		res[strconv.Itoa(i)] = MakeAdded(t[0])
	}
	for _, in := range ops.inserts {
		res[RemovedPrefix+strconv.Itoa(in.index)] = MakeRemoved(in.value)
	}
	targets := make([]int, 0, len(ops.inserts)+len(ops.moves))
	for _, in := range ops.inserts {
		targets = append(targets, in.index)
	}
	for _, j := range ops.moves {
		targets = append(targets, j)
	}
	sort.Ints(targets)
	for _, m := range ops.modifies {
		rd, err := reverseDelta(m.delta, p.Index(m.index))
		if err != nil {
			return nil, err
		}
		old, ok := movedTo[m.index]
		if !ok {
			old = oldIndexOf(m.index, targets, ops.removals)
		}
		res[strconv.Itoa(old)] = rd
	}
	return res, nil
}

// oldIndexOf maps the new index of an item that was neither inserted nor
// moved back to its old index.  targets are the new indices of inserted
// and moved items and removals the old indices of removed and moved items,
// both ascending.
func oldIndexOf(j int, targets, removals []int) int {
	kept := j - sort.SearchInts(targets, j)
	old := kept
	for _, r := range removals {
		if r > old {
			break
		}
		old++
	}
	return old
}
