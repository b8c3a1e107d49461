package livestore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/graphql-go/graphql"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/signadot/livequery/gql"
	"github.com/signadot/livequery/patchstream"
)

type todo struct {
	ID    string
	Title string
}

// backend is the mutable state behind the test schema.
type backend struct {
	mu      sync.Mutex
	foo     string
	todos   []todo
	current todo
	gate    chan struct{}
	entered chan struct{}
}

func (b *backend) setFoo(v string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.foo = v
}

func newBackend() *backend {
	return &backend{
		foo:   "queried",
		todos: []todo{{"1", "a"}, {"2", "b"}},
	}
}

func (b *backend) schema(t *testing.T) *graphql.Schema {
	t.Helper()
	todoType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Todo",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(todo).ID, nil
				},
			},
			"title": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(todo).Title, nil
				},
			},
		},
	})
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"foo": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					b.mu.Lock()
					defer b.mu.Unlock()
					return b.foo, nil
				},
			},
			"todos": &graphql.Field{
				Type: graphql.NewList(todoType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					b.mu.Lock()
					defer b.mu.Unlock()
					return append([]todo(nil), b.todos...), nil
				},
			},
			"current": &graphql.Field{
				Type: todoType,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					b.mu.Lock()
					td, gate, entered := b.current, b.gate, b.entered
					b.gate, b.entered = nil, nil
					b.mu.Unlock()
					if gate != nil {
						close(entered)
						<-gate
					}
					return td, nil
				},
			},
		},
	})
	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:      query,
		Directives: append(graphql.SpecifiedDirectives, gql.LiveDirective),
	})
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	return &schema
}

type recorder struct {
	mu      sync.Mutex
	results []*gql.Result
}

func (r *recorder) publish(res *gql.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.results)
}

func (r *recorder) last() *gql.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.results) == 0 {
		return nil
	}
	return r.results[len(r.results)-1]
}

func testStore(t *testing.T, cfg *Config, reg prometheus.Registerer) *Store {
	t.Helper()
	s, err := New(&Spec{
		Config:     cfg,
		Log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		Registerer: reg,
	})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func params(t *testing.T, schema *graphql.Schema, query string) gql.ExecuteParams {
	t.Helper()
	doc, err := gql.Parse(query)
	if err != nil {
		t.Fatal(err)
	}
	return gql.ExecuteParams{Schema: schema, Document: doc}
}

func TestStoreInvalidateEndToEnd(t *testing.T) {
	b := newBackend()
	s := testStore(t, nil, nil)
	rec := &recorder{}
	unsubscribe, err := s.Register(params(t, b.schema(t), `query @live { foo }`), rec.publish)
	if err != nil {
		t.Fatal(err)
	}
	defer unsubscribe()

	if rec.len() != 1 {
		t.Fatalf("expected the first result to be published on register, got %d", rec.len())
	}
	if diff := cmp.Diff(any(map[string]any{"foo": "queried"}), rec.last().Data); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if !rec.last().IsLive {
		t.Error("expected a live result")
	}

	b.setFoo("updated")
	s.Invalidate("Query.foo")
	if rec.len() != 2 {
		t.Fatalf("expected 2 results, got %d", rec.len())
	}
	if diff := cmp.Diff(any(map[string]any{"foo": "updated"}), rec.last().Data); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	s.Invalidate("Query.other")
	if rec.len() != 2 {
		t.Errorf("expected unrelated invalidation to be ignored, got %d results", rec.len())
	}
}

func TestRegisterErrors(t *testing.T) {
	b := newBackend()
	schema := b.schema(t)
	s := testStore(t, nil, nil)
	noop := func(*gql.Result) {}
	tests := []struct {
		name    string
		params  gql.ExecuteParams
		publish func(*gql.Result)
		err     error
	}{
		{"not live", params(t, schema, `query { foo }`), noop, gql.ErrNoLiveOperation},
		{"two live", params(t, schema, `query A @live { foo } query B @live { foo }`), noop, gql.ErrMultipleLiveOperations},
		{"no schema", params(t, nil, `query @live { foo }`), noop, gql.ErrNoSchema},
		{"no publish", params(t, schema, `query @live { foo }`), nil, ErrNoPublish},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Register(tt.params, tt.publish)
			if !errors.Is(err, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, err)
			}
		})
	}
	if s.Len() != 0 || s.IdentifierCount() != 0 {
		t.Errorf("expected rejected registrations to leave no state, got %d records %d identifiers", s.Len(), s.IdentifierCount())
	}
}

func TestInvalidateResolvedIdentifiers(t *testing.T) {
	b := newBackend()
	s := testStore(t, nil, nil)
	rec := &recorder{}
	unsubscribe, err := s.Register(params(t, b.schema(t), `query @live { todos { id title } }`), rec.publish)
	if err != nil {
		t.Fatal(err)
	}
	defer unsubscribe()

	s.Invalidate("Todo:2")
	if rec.len() != 2 {
		t.Errorf("expected Todo:2 to re-execute, got %d results", rec.len())
	}
	s.Invalidate("Todo:9")
	if rec.len() != 2 {
		t.Errorf("expected Todo:9 to be ignored, got %d results", rec.len())
	}
	// one execution per record per call
	s.Invalidate("Todo:1", "Todo:2", "Query.todos", "Todo:1")
	if rec.len() != 3 {
		t.Errorf("expected a single re-execution, got %d results", rec.len())
	}

	b.mu.Lock()
	b.todos = []todo{{"3", "c"}}
	b.mu.Unlock()
	s.Invalidate("Query.todos")
	s.Invalidate("Todo:1")
	if rec.len() != 4 {
		t.Errorf("expected Todo:1 to be untracked after re-execution, got %d results", rec.len())
	}
	s.Invalidate("Todo:3")
	if rec.len() != 5 {
		t.Errorf("expected Todo:3 to be tracked after re-execution, got %d results", rec.len())
	}
}

func TestUnsubscribe(t *testing.T) {
	b := newBackend()
	s := testStore(t, nil, nil)
	rec := &recorder{}
	unsubscribe, err := s.Register(params(t, b.schema(t), `query @live { todos { id } foo }`), rec.publish)
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 || s.IdentifierCount() != 4 {
		t.Fatalf("expected 1 record and 4 identifiers, got %d and %d", s.Len(), s.IdentifierCount())
	}

	unsubscribe()
	unsubscribe()
	if s.Len() != 0 || s.IdentifierCount() != 0 {
		t.Errorf("expected no state after unsubscribe, got %d records %d identifiers", s.Len(), s.IdentifierCount())
	}
	s.Invalidate("Query.foo", "Todo:1")
	if rec.len() != 1 {
		t.Errorf("expected no publish after unsubscribe, got %d results", rec.len())
	}
}

func TestStaleExecutionDiscarded(t *testing.T) {
	b := newBackend()
	b.current = todo{"1", "a"}
	reg := prometheus.NewRegistry()
	s := testStore(t, nil, reg)
	rec := &recorder{}
	unsubscribe, err := s.Register(params(t, b.schema(t), `query @live { current { id } }`), rec.publish)
	if err != nil {
		t.Fatal(err)
	}
	defer unsubscribe()

	gate, entered := make(chan struct{}), make(chan struct{})
	b.mu.Lock()
	b.gate, b.entered = gate, entered
	b.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Invalidate("Query.current")
	}()
	<-entered

	// a newer execution starts and finishes while the first is blocked
	b.mu.Lock()
	b.current = todo{"2", "b"}
	b.mu.Unlock()
	s.Invalidate("Query.current")

	close(gate)
	wg.Wait()

	if rec.len() != 3 {
		t.Fatalf("expected both executions to publish, got %d results", rec.len())
	}
	before := rec.len()
	s.Invalidate("Todo:1")
	if rec.len() != before {
		t.Error("expected the stale dependency set to be discarded")
	}
	s.Invalidate("Todo:2")
	if rec.len() != before+1 {
		t.Error("expected the latest dependency set to be tracked")
	}
	if got := counterValue(t, reg, "livequery_"+MetricDiscardedCommits); got != 1 {
		t.Errorf("expected 1 discarded commit, got %v", got)
	}
}

func TestUnsubscribeDuringExecution(t *testing.T) {
	b := newBackend()
	b.current = todo{"1", "a"}
	reg := prometheus.NewRegistry()
	s := testStore(t, nil, reg)
	rec := &recorder{}
	unsubscribe, err := s.Register(params(t, b.schema(t), `query @live { current { id } }`), rec.publish)
	if err != nil {
		t.Fatal(err)
	}

	gate, entered := make(chan struct{}), make(chan struct{})
	b.mu.Lock()
	b.gate, b.entered = gate, entered
	b.current = todo{"2", "b"}
	b.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Invalidate("Query.current")
	}()
	<-entered
	unsubscribe()
	close(gate)
	wg.Wait()

	if rec.len() != 1 {
		t.Errorf("expected only the first result, got %d results", rec.len())
	}
	if s.Len() != 0 || s.IdentifierCount() != 0 {
		t.Errorf("expected no state after unsubscribe, got %d records %d identifiers", s.Len(), s.IdentifierCount())
	}
	if got := counterValue(t, reg, "livequery_"+MetricDiscardedCommits); got != 1 {
		t.Errorf("expected 1 discarded commit, got %v", got)
	}
	s.Invalidate("Query.current", "Todo:1", "Todo:2")
	if rec.len() != 1 {
		t.Errorf("expected no publish after unsubscribe, got %d results", rec.len())
	}
}

func TestExecutorFailure(t *testing.T) {
	b := newBackend()
	reg := prometheus.NewRegistry()
	var fail atomic.Bool
	s, err := New(&Spec{
		Log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		Registerer: reg,
		Executor: func(p gql.ExecuteParams) (*gql.Result, error) {
			if fail.Load() {
				return nil, errors.New("executor unavailable")
			}
			return gql.Run(p)
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	unsubscribe, err := s.Register(params(t, b.schema(t), `query @live { todos { id } }`), rec.publish)
	if err != nil {
		t.Fatal(err)
	}
	defer unsubscribe()
	if s.IdentifierCount() != 3 {
		t.Fatalf("expected 3 identifiers, got %d", s.IdentifierCount())
	}

	fail.Store(true)
	s.Invalidate("Todo:1")
	if rec.len() != 2 {
		t.Fatalf("expected the failure to be published, got %d results", rec.len())
	}
	res := rec.last()
	if len(res.Errors) == 0 || !res.IsLive {
		t.Fatalf("expected a live error result, got %+v", res)
	}
	if res.Errors[0].Message != "executor unavailable" {
		t.Errorf("expected executor error message, got %q", res.Errors[0].Message)
	}

	// dependencies fall back to the root fields
	if s.IdentifierCount() != 1 {
		t.Errorf("expected only Query.todos to be tracked, got %d", s.IdentifierCount())
	}
	s.Invalidate("Todo:1", "Todo:2")
	if rec.len() != 2 {
		t.Errorf("expected resolved identifiers to be dropped, got %d results", rec.len())
	}
	s.Invalidate("Query.todos")
	if rec.len() != 3 {
		t.Errorf("expected Query.todos to re-execute, got %d results", rec.len())
	}
	if got := counterValue(t, reg, "livequery_"+MetricExecutionErrors); got != 2 {
		t.Errorf("expected 2 execution errors, got %v", got)
	}

	fail.Store(false)
	s.Invalidate("Query.todos")
	if len(rec.last().Errors) != 0 {
		t.Errorf("expected recovery, got %+v", rec.last().Errors)
	}
	if s.IdentifierCount() != 3 {
		t.Errorf("expected resolved identifiers to be tracked again, got %d", s.IdentifierCount())
	}
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestIdentifierConfig(t *testing.T) {
	b := newBackend()
	cfg := DefaultConfig()
	cfg.IdentifierExpr = `typename + "#" + id`
	cfg.IncludeIdentifierExtension = true
	s := testStore(t, cfg, nil)
	rec := &recorder{}
	unsubscribe, err := s.Register(params(t, b.schema(t), `query @live { todos { id } }`), rec.publish)
	if err != nil {
		t.Fatal(err)
	}
	defer unsubscribe()

	got, _ := rec.last().Extensions[ExtensionIdentifiers].([]string)
	want := []string{"Query.todos", "Todo#1", "Todo#2"}
	if diff := cmp.Diff(want, got, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	s.Invalidate("Todo#1")
	if rec.len() != 2 {
		t.Errorf("expected Todo#1 to re-execute, got %d results", rec.len())
	}
}

func TestExecute(t *testing.T) {
	b := newBackend()
	schema := b.schema(t)
	s := testStore(t, nil, nil)

	exec := s.Execute(params(t, schema, `query { foo }`))
	if exec.Result == nil || exec.Stream != nil {
		t.Fatalf("expected a single result, got %+v", exec)
	}
	if exec.Result.IsLive {
		t.Error("expected a non-live result")
	}

	exec = s.Execute(params(t, schema, `query @live { foo }`))
	if exec.Stream == nil {
		t.Fatal("expected a stream")
	}
	var envs []*patchstream.Envelope
	for env, err := range patchstream.Generate(exec.Stream) {
		if err != nil {
			t.Fatal(err)
		}
		envs = append(envs, env)
		if env.Revision == 1 {
			b.setFoo("updated")
			go s.Invalidate("Query.foo")
			continue
		}
		break
	}
	if len(envs) != 2 {
		t.Fatalf("expected 2 envelopes, got %d", len(envs))
	}
	wantPatch := map[string]any{"foo": []any{"queried", "updated"}}
	if diff := cmp.Diff(any(wantPatch), envs[1].Patch); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if s.Len() != 0 {
		t.Errorf("expected the stream to unregister when the consumer stops, got %d records", s.Len())
	}
}

func TestExecuteContextCancel(t *testing.T) {
	b := newBackend()
	s := testStore(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := params(t, b.schema(t), `query @live { foo }`)
	p.Context = ctx

	n := 0
	var gotErr error
	for res, err := range s.Execute(p).Stream {
		if err != nil {
			gotErr = err
			continue
		}
		if res.IsLive {
			n++
		}
		cancel()
	}
	if n != 1 || !errors.Is(gotErr, context.Canceled) {
		t.Errorf("expected 1 result then cancellation, got %d and %v", n, gotErr)
	}
	if s.Len() != 0 {
		t.Errorf("expected cancellation to unregister, got %d records", s.Len())
	}
}

func TestSchemaInstrumentedOnce(t *testing.T) {
	b := newBackend()
	schema := b.schema(t)
	s := testStore(t, nil, nil)
	for range 3 {
		unsubscribe, err := s.Register(params(t, schema, `query @live { todos { id } }`), func(*gql.Result) {})
		if err != nil {
			t.Fatal(err)
		}
		defer unsubscribe()
	}
	if s.instrumenter.Len() != 1 {
		t.Errorf("expected 1 instrumented schema, got %d", s.instrumenter.Len())
	}
	if s.IdentifierCount() != 3 {
		t.Errorf("expected shared identifiers, got %d", s.IdentifierCount())
	}
}
