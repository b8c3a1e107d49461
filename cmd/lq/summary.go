package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/signadot/livequery/libdiff"
)

// summary prints a delta as one line per change.
type summary struct {
	w                                io.Writer
	add, remove, change, move, plain func(a ...any) string
}

func newSummary(w io.Writer, colored bool) *summary {
	mk := func(attrs ...color.Attribute) func(a ...any) string {
		c := color.New(attrs...)
		if !colored {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
		return c.SprintFunc()
	}
	return &summary{
		w:      w,
		add:    mk(color.FgGreen),
		remove: mk(color.FgRed),
		change: mk(color.FgYellow),
		move:   mk(color.FgCyan),
		plain:  mk(color.Faint),
	}
}

func (s *summary) line(c func(a ...any) string, mark, path, rest string) {
	fmt.Fprintf(s.w, "%s %s %s\n", c(mark), s.plain(path), c(rest))
}

func (s *summary) delta(path string, d libdiff.Delta) {
	switch x := d.(type) {
	case nil:
	case []any:
		s.tuple(path, x)
	case map[string]any:
		if x[libdiff.ArrayTag] == libdiff.ArrayTagValue {
			s.array(path, x)
			return
		}
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			s.delta(fieldPath(path, k), x[k])
		}
	default:
		s.line(s.change, "?", path, fmt.Sprintf("unrecognized delta %v", d))
	}
}

func (s *summary) tuple(path string, t []any) {
	switch len(t) {
	case 1:
		s.line(s.add, "+", path, render(t[0]))
	case 2:
		s.line(s.change, "~", path, render(t[0])+" => "+render(t[1]))
	case 3:
		switch tag, _ := asInt(t[2]); tag {
		case libdiff.DeleteTag:
			s.line(s.remove, "-", path, render(t[0]))
		case libdiff.TextDiffTag:
			s.line(s.change, "~", path, "text diff")
		case libdiff.MoveTag:
			to, _ := asInt(t[1])
			s.line(s.move, ">", path, "moved to "+strconv.Itoa(to))
		default:
			s.line(s.change, "?", path, fmt.Sprintf("unrecognized tag %v", t[2]))
		}
	}
}

func (s *summary) array(path string, m map[string]any) {
	type entry struct {
		key  string
		idx  int
		from bool
	}
	var entries []entry
	for k := range m {
		if k == libdiff.ArrayTag {
			continue
		}
		from := strings.HasPrefix(k, libdiff.RemovedPrefix)
		i, err := strconv.Atoi(strings.TrimPrefix(k, libdiff.RemovedPrefix))
		if err != nil {
			continue
		}
		entries = append(entries, entry{k, i, from})
	}
	// old positions first, then new positions
	slices.SortFunc(entries, func(a, b entry) int {
		if a.from != b.from {
			if a.from {
				return -1
			}
			return 1
		}
		return a.idx - b.idx
	})
	for _, e := range entries {
		s.delta(path+"["+strconv.Itoa(e.idx)+"]", m[e.key])
	}
}

func fieldPath(path, k string) string {
	for _, r := range k {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return path + "[" + strconv.Quote(k) + "]"
		}
	}
	return path + "." + k
}

func render(v any) string {
	d, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(d)
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case uint64:
		return int(x), true
	case float64:
		return int(x), true
	case json.Number:
		i, err := x.Int64()
		return int(i), err == nil
	}
	return 0, false
}
