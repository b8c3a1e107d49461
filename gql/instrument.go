package gql

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/graphql-go/graphql"
)

// Resource is one resolved (typename, id) pair.
type Resource struct {
	TypeName string
	ID       string
}

// Collector gathers the resources resolved during one execution.
type Collector struct {
	mu   sync.Mutex
	seen map[Resource]struct{}
	res  []Resource
}

func NewCollector() *Collector {
	return &Collector{seen: map[Resource]struct{}{}}
}

// Add records a resource; duplicates are ignored.
func (c *Collector) Add(typeName, id string) {
	r := Resource{TypeName: typeName, ID: id}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.seen[r]; ok {
		return
	}
	c.seen[r] = struct{}{}
	c.res = append(c.res, r)
}

// Resources returns the collected resources in resolution order.
func (c *Collector) Resources() []Resource {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Resource(nil), c.res...)
}

type collectorKey struct{}

// WithCollector returns a context carrying c to instrumented resolvers.
func WithCollector(ctx context.Context, c *Collector) context.Context {
	return context.WithValue(ctx, collectorKey{}, c)
}

// CollectorFrom returns the collector carried by ctx, or nil.
func CollectorFrom(ctx context.Context) *Collector {
	if ctx == nil {
		return nil
	}
	c, _ := ctx.Value(collectorKey{}).(*Collector)
	return c
}

// Instrumenter wraps the id field resolvers of schemas so that resolved ids
// are reported to the Collector of the execution context.  Each schema is
// instrumented at most once per Instrumenter.
//
// Wrapping happens in place: the schema's object types are shared with
// every other user of the schema.  Without a collector in the context the
// wrapped resolvers behave exactly like the originals.
type Instrumenter struct {
	idField string

	mu   sync.Mutex
	done map[*graphql.Schema]struct{}
}

func NewInstrumenter(idField string) *Instrumenter {
	if idField == "" {
		idField = "id"
	}
	return &Instrumenter{
		idField: idField,
		done:    map[*graphql.Schema]struct{}{},
	}
}

// Instrument wraps schema unless it has already been wrapped.  It reports
// whether this call did the wrapping.
func (in *Instrumenter) Instrument(schema *graphql.Schema) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	if _, ok := in.done[schema]; ok {
		return false
	}
	in.done[schema] = struct{}{}
	for name, t := range schema.TypeMap() {
		if strings.HasPrefix(name, "__") {
			continue
		}
		obj, ok := t.(*graphql.Object)
		if !ok {
			continue
		}
		fd := obj.Fields()[in.idField]
		if fd == nil {
			continue
		}
		fd.Resolve = wrapResolve(fd.Resolve)
	}
	return true
}

// Len returns the number of instrumented schemas.
func (in *Instrumenter) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.done)
}

func wrapResolve(next graphql.FieldResolveFn) graphql.FieldResolveFn {
	if next == nil {
		next = graphql.DefaultResolveFn
	}
	return func(p graphql.ResolveParams) (any, error) {
		v, err := next(p)
		c := CollectorFrom(p.Context)
		if err != nil || c == nil {
			return v, err
		}
		typeName := ""
		if p.Info.ParentType != nil {
			typeName = p.Info.ParentType.Name()
		}
		// deferred resolution
		if thunk, ok := v.(func() (any, error)); ok {
			return func() (any, error) {
				tv, terr := thunk()
				if terr == nil {
					report(c, typeName, tv)
				}
				return tv, terr
			}, nil
		}
		report(c, typeName, v)
		return v, nil
	}
}

func report(c *Collector, typeName string, id any) {
	if id == nil {
		return
	}
	if p, ok := id.(*string); ok {
		if p == nil {
			return
		}
		id = *p
	}
	c.Add(typeName, fmt.Sprint(id))
}
