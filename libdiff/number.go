package libdiff

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
)

type kind int

const (
	nullKind kind = iota
	boolKind
	numberKind
	stringKind
	objectKind
	arrayKind
	otherKind
)

func kindOf(v any) kind {
	switch v.(type) {
	case nil:
		return nullKind
	case bool:
		return boolKind
	case string:
		return stringKind
	case map[string]any:
		return objectKind
	case []any:
		return arrayKind
	case json.Number, float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return numberKind
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			if rv.IsNil() {
				return nullKind
			}
			return objectKind
		}
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return otherKind
		}
		if rv.IsNil() {
			return nullKind
		}
		return arrayKind
	case reflect.Array:
		return arrayKind
	case reflect.Pointer:
		if rv.IsNil() {
			return nullKind
		}
	}
	return otherKind
}

// asObject returns v as a map[string]any.  Maps of other value types are
// copied.
func asObject(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	if kindOf(v) != objectKind {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	res := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		res[iter.Key().String()] = iter.Value().Interface()
	}
	return res, true
}

// asArray returns v as a []any.  Slices of other element types are copied.
func asArray(v any) ([]any, bool) {
	if a, ok := v.([]any); ok {
		return a, true
	}
	if kindOf(v) != arrayKind {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	res := make([]any, rv.Len())
	for i := range res {
		res[i] = rv.Index(i).Interface()
	}
	return res, true
}

// number is a numeric value normalised for comparison.
type number struct {
	isInt bool
	i     int64
	f     float64
}

func toNumber(v any) (number, bool) {
	switch x := v.(type) {
	case int:
		return number{isInt: true, i: int64(x)}, true
	case int8:
		return number{isInt: true, i: int64(x)}, true
	case int16:
		return number{isInt: true, i: int64(x)}, true
	case int32:
		return number{isInt: true, i: int64(x)}, true
	case int64:
		return number{isInt: true, i: x}, true
	case uint:
		return fromUint(uint64(x)), true
	case uint8:
		return number{isInt: true, i: int64(x)}, true
	case uint16:
		return number{isInt: true, i: int64(x)}, true
	case uint32:
		return number{isInt: true, i: int64(x)}, true
	case uint64:
		return fromUint(x), true
	case float32:
		return fromFloat(float64(x)), true
	case float64:
		return fromFloat(x), true
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return number{isInt: true, i: i}, true
		}
		f, err := x.Float64()
		if err != nil {
			return number{}, false
		}
		return fromFloat(f), true
	}
	return number{}, false
}

func fromUint(u uint64) number {
	if u > math.MaxInt64 {
		return number{f: float64(u)}
	}
	return number{isInt: true, i: int64(u)}
}

func fromFloat(f float64) number {
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return number{isInt: true, i: int64(f)}
	}
	return number{f: f}
}

func (n number) equal(o number) bool {
	if n.isInt && o.isInt {
		return n.i == o.i
	}
	return n.float() == o.float()
}

func (n number) float() float64 {
	if n.isInt {
		return float64(n.i)
	}
	return n.f
}

func (n number) String() string {
	if n.isInt {
		return strconv.FormatInt(n.i, 10)
	}
	return strconv.FormatFloat(n.f, 'g', -1, 64)
}

// toInt reads a small integer out of a delta tuple, which may have been
// decoded from JSON as a float64.
func toInt(v any) (int, bool) {
	n, ok := toNumber(v)
	if !ok || !n.isInt {
		return 0, false
	}
	return int(n.i), true
}

// Equal reports whether a and b are the same JSON value.  Numbers compare
// by value regardless of their Go type.
func Equal(a, b any) bool {
	ka, kb := kindOf(a), kindOf(b)
	if ka != kb {
		return false
	}
	switch ka {
	case nullKind:
		return true
	case boolKind:
		return a.(bool) == b.(bool)
	case stringKind:
		return a.(string) == b.(string)
	case numberKind:
		na, _ := toNumber(a)
		nb, _ := toNumber(b)
		return na.equal(nb)
	case objectKind:
		oa, _ := asObject(a)
		ob, _ := asObject(b)
		if len(oa) != len(ob) {
			return false
		}
		for k, va := range oa {
			vb, ok := ob[k]
			if !ok || !Equal(va, vb) {
				return false
			}
		}
		return true
	case arrayKind:
		aa, _ := asArray(a)
		ab, _ := asArray(b)
		if len(aa) != len(ab) {
			return false
		}
		for i := range aa {
			if !Equal(aa[i], ab[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}
