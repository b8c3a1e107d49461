package libdiff

import (
	"strconv"
	"strings"
)

// path locates a node in a value for error reporting, rendered as
// $.field[3].other.
type path struct {
	parent *path
	field  string
	index  int
}

var rootPath = &path{index: -1}

func (p *path) Field(f string) *path {
	return &path{parent: p, field: f, index: -1}
}

func (p *path) Index(i int) *path {
	return &path{parent: p, index: i}
}

func (p *path) String() string {
	var parts []*path
	for q := p; q != nil && q.parent != nil; q = q.parent {
		parts = append(parts, q)
	}
	var b strings.Builder
	b.WriteString("$")
	for i := len(parts) - 1; i >= 0; i-- {
		q := parts[i]
		if q.index >= 0 {
			b.WriteString("[" + strconv.Itoa(q.index) + "]")
			continue
		}
		if q.field == "" || strings.ContainsAny(q.field, ".[]\"' ") {
			b.WriteString("[" + strconv.Quote(q.field) + "]")
			continue
		}
		b.WriteString("." + q.field)
	}
	return b.String()
}
