package libdiff

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// HashContent is an ObjectHashFunc hashing the canonical encoding of an
// item, so equal items hash equally whatever their Go representation.
func HashContent(item any, _ int) (string, bool) {
	h := xxhash.New()
	writeCanonical(h, item)
	return strconv.FormatUint(h.Sum64(), 16), true
}

// HashFields returns an ObjectHashFunc identifying object items by the
// values of the given fields, such as "__typename" and "id".  Items
// lacking all of the fields have no identity.
func HashFields(fields ...string) ObjectHashFunc {
	return func(item any, _ int) (string, bool) {
		obj, ok := asObject(item)
		if !ok {
			return "", false
		}
		h := xxhash.New()
		found := false
		for _, f := range fields {
			v, ok := obj[f]
			if !ok {
				h.WriteString("\x00")
				continue
			}
			found = true
			writeCanonical(h, v)
			h.WriteString("\x00")
		}
		if !found {
			return "", false
		}
		return strconv.FormatUint(h.Sum64(), 16), true
	}
}

type stringWriter interface {
	WriteString(string) (int, error)
}

func writeCanonical(w stringWriter, v any) {
	switch kindOf(v) {
	case nullKind:
		w.WriteString("null")
	case boolKind:
		w.WriteString(strconv.FormatBool(v.(bool)))
	case numberKind:
		n, _ := toNumber(v)
		w.WriteString("n" + n.String())
	case stringKind:
		w.WriteString(strconv.Quote(v.(string)))
	case objectKind:
		obj, _ := asObject(v)
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		w.WriteString("{")
		for _, k := range keys {
			w.WriteString(strconv.Quote(k) + ":")
			writeCanonical(w, obj[k])
			w.WriteString(",")
		}
		w.WriteString("}")
	case arrayKind:
		arr, _ := asArray(v)
		w.WriteString("[")
		for _, x := range arr {
			writeCanonical(w, x)
			w.WriteString(",")
		}
		w.WriteString("]")
	default:
		d, err := json.Marshal(v)
		if err != nil {
			w.WriteString(fmt.Sprintf("%#v", v))
			return
		}
		w.WriteString(string(d))
	}
}
