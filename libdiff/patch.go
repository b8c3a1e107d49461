package libdiff

import (
	"maps"

	"github.com/signadot/livequery/debug"
)

// Patch applies delta to doc and returns the result.  Neither doc nor
// delta is modified: containers along changed paths are copied and the
// rest is shared with doc.
//
// A delta removing the top level value yields nil.
func Patch(doc any, delta Delta) (any, error) {
	res, _, err := patchValue(doc, true, delta, rootPath)
	if debug.Patch() {
		debug.Logf("patch\n%v\nwith %v\n=> %v (err %v)\n", doc, delta, res, err)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// patchValue patches doc, which may be absent, returning whether the
// result is present.
func patchValue(doc any, present bool, delta Delta, p *path) (any, bool, error) {
	switch dt := delta.(type) {
	case nil:
		return doc, present, nil
	case []any:
		return patchTuple(doc, dt, p)
	case map[string]any:
		if !present {
			return nil, false, malformed(p, "nested delta applied to an absent value")
		}
		if isArrayDelta(dt) {
			arr, ok := asArray(doc)
			if !ok {
				return nil, false, malformed(p, "array delta applied to %T", doc)
			}
			res, err := patchArray(arr, dt, p)
			return res, true, err
		}
		obj, ok := asObject(doc)
		if !ok {
			return nil, false, malformed(p, "object delta applied to %T", doc)
		}
		res := maps.Clone(obj)
		if res == nil {
			res = map[string]any{}
		}
		for k, cd := range dt {
			v, ok := res[k]
			nv, np, err := patchValue(v, ok, cd, p.Field(k))
			if err != nil {
				return nil, false, err
			}
			if !np {
				delete(res, k)
				continue
			}
			res[k] = nv
		}
		return res, true, nil
	}
	return nil, false, malformed(p, "unexpected delta type %T", delta)
}

func patchTuple(doc any, t []any, p *path) (any, bool, error) {
	switch len(t) {
	case 1:
		return t[0], true, nil
	case 2:
		return t[1], true, nil
	case 3:
		tag, ok := toInt(t[2])
		if !ok {
			return nil, false, malformed(p, "invalid delta tag %v", t[2])
		}
		switch tag {
		case DeleteTag:
			return nil, false, nil
		case TextDiffTag:
			res, err := patchText(doc, t[0], p)
			if err != nil {
				return nil, false, err
			}
			return res, true, nil
		case MoveTag:
			return nil, false, malformed(p, "move outside of an array delta")
		}
		return nil, false, malformed(p, "unknown delta tag %d", tag)
	}
	return nil, false, malformed(p, "delta tuple of length %d", len(t))
}
