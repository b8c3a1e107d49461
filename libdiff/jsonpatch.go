package libdiff

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	jsonpatch "github.com/evanphx/json-patch"
)

// JSONPatchOp is one RFC 6902 operation.
type JSONPatchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

func (op JSONPatchOp) MarshalJSON() ([]byte, error) {
	if op.Op == "remove" {
		return json.Marshal(struct {
			Op   string `json:"op"`
			Path string `json:"path"`
		}{op.Op, op.Path})
	}
	type plain JSONPatchOp
	return json.Marshal(plain(op))
}

// ToJSONPatch converts a delta computed against doc into RFC 6902
// operations, for consumers which speak JSON Patch rather than deltas.
func ToJSONPatch(doc any, delta Delta) (jsonpatch.Patch, error) {
	ops, err := JSONPatchOps(doc, delta)
	if err != nil {
		return nil, err
	}
	d, err := json.Marshal(ops)
	if err != nil {
		return nil, err
	}
	return jsonpatch.DecodePatch(d)
}

// JSONPatchOps is like ToJSONPatch but returns plain operations.
func JSONPatchOps(doc any, delta Delta) ([]JSONPatchOp, error) {
	w := &jpWriter{}
	if err := w.emit(doc, true, delta, "", rootPath); err != nil {
		return nil, err
	}
	return w.ops, nil
}

// ApplyJSONPatch applies RFC 6902 operations to a JSON document.
func ApplyJSONPatch(doc []byte, p jsonpatch.Patch) ([]byte, error) {
	res, err := p.Apply(doc)
	if err != nil {
		return nil, fmt.Errorf("error applying json patch: %w", err)
	}
	return res, nil
}

type jpWriter struct {
	ops []JSONPatchOp
}

func (w *jpWriter) add(op, ptr string, v any) {
	w.ops = append(w.ops, JSONPatchOp{Op: op, Path: ptr, Value: v})
}

func (w *jpWriter) emit(doc any, present bool, delta Delta, ptr string, p *path) error {
	switch dt := delta.(type) {
	case nil:
		return nil
	case []any:
		v, np, err := patchTuple(doc, dt, p)
		if err != nil {
			return err
		}
		switch {
		case !np:
			w.add("remove", ptr, nil)
		case present:
			w.add("replace", ptr, v)
		default:
			w.add("add", ptr, v)
		}
		return nil
	case map[string]any:
		if isArrayDelta(dt) {
			return w.emitArray(doc, dt, ptr, p)
		}
		obj, ok := asObject(doc)
		if !ok {
			return malformed(p, "object delta applied to %T", doc)
		}
		keys := make([]string, 0, len(dt))
		for k := range dt {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v, ok := obj[k]
			if err := w.emit(v, ok, dt[k], ptr+"/"+escapePointer(k), p.Field(k)); err != nil {
				return err
			}
		}
		return nil
	}
	return malformed(p, "unexpected delta type %T", delta)
}

// emitArray follows the same order as patchArray so that indices in the
// operations line up with the intermediate arrays.
func (w *jpWriter) emitArray(doc any, d map[string]any, ptr string, p *path) error {
	arr, ok := asArray(doc)
	if !ok {
		return malformed(p, "array delta applied to %T", doc)
	}
	ops, err := parseArrayDelta(d, p)
	if err != nil {
		return err
	}
	cur := slices.Clone(arr)
	inserts := slices.Clone(ops.inserts)
	for n := len(ops.removals) - 1; n >= 0; n-- {
		i := ops.removals[n]
		if i >= len(cur) {
			return malformed(p.Index(i), "removal beyond array length %d", len(cur))
		}
		v := cur[i]
		cur = slices.Delete(cur, i, i+1)
		w.add("remove", ptr+"/"+strconv.Itoa(i), nil)
		if to, ok := ops.moves[i]; ok {
			inserts = append(inserts, arrayInsert{index: to, value: v})
		}
	}
	sort.SliceStable(inserts, func(a, b int) bool { return inserts[a].index < inserts[b].index })
	for _, in := range inserts {
		if in.index > len(cur) {
			return malformed(p.Index(in.index), "insertion beyond array length %d", len(cur))
		}
		cur = slices.Insert(cur, in.index, in.value)
		w.add("add", ptr+"/"+strconv.Itoa(in.index), in.value)
	}
	for _, m := range ops.modifies {
		if m.index >= len(cur) {
			return malformed(p.Index(m.index), "modification beyond array length %d", len(cur))
		}
		if err := w.emit(cur[m.index], true, m.delta, ptr+"/"+strconv.Itoa(m.index), p.Index(m.index)); err != nil {
			return err
		}
	}
	return nil
}

func escapePointer(k string) string {
	k = strings.ReplaceAll(k, "~", "~0")
	return strings.ReplaceAll(k, "/", "~1")
}
