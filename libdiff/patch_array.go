package libdiff

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// arrayOps is an array delta broken down into its operations.
type arrayOps struct {
	// removals holds old indices, ascending, of removed and moved items.
	removals []int
	// moves maps an old index to the new index of a moved item.
	moves map[int]int
	// inserts holds new indices, ascending, of added items with their value.
	inserts []arrayInsert
	// modifies holds new indices, ascending, of items with a nested delta.
	modifies []arrayModify
}

type arrayInsert struct {
	index int
	value any
}

type arrayModify struct {
	index int
	delta Delta
}

func parseArrayDelta(d map[string]any, p *path) (*arrayOps, error) {
	ops := &arrayOps{moves: map[int]int{}}
	for k, v := range d {
		if k == ArrayTag {
			continue
		}
		if rest, ok := strings.CutPrefix(k, RemovedPrefix); ok {
			i, err := strconv.Atoi(rest)
			if err != nil || i < 0 {
				return nil, malformed(p, "invalid array delta key %q", k)
			}
			t, ok := v.([]any)
			if !ok || len(t) != 3 {
				return nil, malformed(p.Index(i), "only removal or move can be applied at original array indices")
			}
			tag, ok := toInt(t[2])
			switch {
			case ok && tag == DeleteTag:
			case ok && tag == MoveTag:
				to, ok := toInt(t[1])
				if !ok || to < 0 {
					return nil, malformed(p.Index(i), "invalid move target %v", t[1])
				}
				ops.moves[i] = to
			default:
				return nil, malformed(p.Index(i), "only removal or move can be applied at original array indices, got tag %v", t[2])
			}
			ops.removals = append(ops.removals, i)
			continue
		}
		j, err := strconv.Atoi(k)
		if err != nil || j < 0 {
			return nil, malformed(p, "invalid array delta key %q", k)
		}
		if t, ok := v.([]any); ok && len(t) == 1 {
			ops.inserts = append(ops.inserts, arrayInsert{index: j, value: t[0]})
			continue
		}
		ops.modifies = append(ops.modifies, arrayModify{index: j, delta: v})
	}
	slices.Sort(ops.removals)
	slices.SortFunc(ops.inserts, func(a, b arrayInsert) int { return cmp.Compare(a.index, b.index) })
	slices.SortFunc(ops.modifies, func(a, b arrayModify) int { return cmp.Compare(a.index, b.index) })
	return ops, nil
}

// patchArray removes items from the highest old index down, so removals do
// not shift each other, inserts added and moved items from the lowest new
// index up, then patches modified items in place.
func patchArray(doc []any, d map[string]any, p *path) ([]any, error) {
	ops, err := parseArrayDelta(d, p)
	if err != nil {
		return nil, err
	}
	res := slices.Clone(doc)
	inserts := slices.Clone(ops.inserts)
	for n := len(ops.removals) - 1; n >= 0; n-- {
		i := ops.removals[n]
		if i >= len(res) {
			return nil, malformed(p.Index(i), "removal beyond array length %d", len(res))
		}
		v := res[i]
		res = slices.Delete(res, i, i+1)
		if to, ok := ops.moves[i]; ok {
			inserts = append(inserts, arrayInsert{index: to, value: v})
		}
	}
	slices.SortStableFunc(inserts, func(a, b arrayInsert) int { return cmp.Compare(a.index, b.index) })
	for _, in := range inserts {
		if in.index > len(res) {
			return nil, malformed(p.Index(in.index), "insertion beyond array length %d", len(res))
		}
		res = slices.Insert(res, in.index, in.value)
	}
	for _, m := range ops.modifies {
		if m.index >= len(res) {
			return nil, malformed(p.Index(m.index), "modification beyond array length %d", len(res))
		}
		v, present, err := patchValue(res[m.index], true, m.delta, p.Index(m.index))
		if err != nil {
			return nil, err
		}
		if !present {
			return nil, malformed(p.Index(m.index), "removal must use an original index key")
		}
		res[m.index] = v
	}
	return res, nil
}
