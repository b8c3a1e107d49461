package livestore

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/signadot/livequery/debug"
	"github.com/signadot/livequery/gql"
	"github.com/signadot/livequery/patchstream"
	"github.com/signadot/livequery/tracker"
)

// ExtensionIdentifiers is the extensions key under which published results
// list their identifiers when Config.IncludeIdentifierExtension is set.
const ExtensionIdentifiers = "liveResourceIdentifier"

var ErrNoPublish = errors.New("no publish function")

// Store holds the registered live queries.
type Store struct {
	Spec Spec

	tracker      *tracker.Tracker[*record]
	instrumenter *gql.Instrumenter
	identifier   identifierFunc
	metrics      *metrics

	mu      sync.Mutex
	records map[*record]struct{}
}

// record is one registered live query.
type record struct {
	params  gql.ExecuteParams
	static  []string
	publish func(*gql.Result)

	// executions counts started executions; only the latest one commits
	// its dependency set.
	executions atomic.Uint64
	closed     atomic.Bool

	ids []string // guarded by Store.mu
}

// New creates a Store.  It fails only if spec.Config is invalid.
func New(spec *Spec) (*Store, error) {
	if spec.Log == nil {
		spec.Log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slogLevel(),
		}))
	}
	if spec.Config == nil {
		spec.Config = DefaultConfig()
	}
	if spec.Executor == nil {
		spec.Executor = gql.Run
	}
	if err := spec.Config.Validate(); err != nil {
		return nil, err
	}
	identifier, err := compileIdentifier(spec.Config.IdentifierExpr)
	if err != nil {
		return nil, err
	}
	return &Store{
		Spec:         *spec,
		tracker:      tracker.New[*record](),
		instrumenter: gql.NewInstrumenter(spec.Config.IDFieldName),
		identifier:   identifier,
		metrics:      newMetrics(spec.Config.MetricsNamespace, spec.Registerer),
		records:      make(map[*record]struct{}),
	}, nil
}

func slogLevel() slog.Level {
	if os.Getenv("DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// Register registers the live operation of params.Document and publishes
// its first result before returning.  Later results are published each
// time Invalidate names one of the query's identifiers.
//
// The returned function unregisters the query; it may be called more than
// once.  An execution that completes after unregistration is discarded.
func (s *Store) Register(params gql.ExecuteParams, publish func(*gql.Result)) (unsubscribe func(), err error) {
	if params.Schema == nil {
		return nil, gql.ErrNoSchema
	}
	if publish == nil {
		return nil, ErrNoPublish
	}
	op, err := gql.LiveOperation(params.Document, params.OperationName, params.Variables)
	if err != nil {
		return nil, err
	}
	if params.OperationName == "" && op.Name != nil {
		params.OperationName = op.Name.Value
	}
	if params.Context == nil {
		params.Context = context.Background()
	}
	if s.instrumenter.Instrument(params.Schema) {
		s.Spec.Log.Debug("instrumented schema", "idField", s.Spec.Config.IDFieldName)
	}

	rec := &record{
		params:  params,
		static:  gql.StaticIdentifiers(params.Schema, params.Document, op, params.Variables),
		publish: publish,
	}
	s.mu.Lock()
	s.records[rec] = struct{}{}
	rec.ids = rec.static
	s.tracker.Register(rec, rec.ids)
	s.updateGauges()
	s.mu.Unlock()
	s.Spec.Log.Debug("registered live query", "operation", params.OperationName, "identifiers", rec.static)

	s.execute(rec)

	var once sync.Once
	return func() {
		once.Do(func() { s.unregister(rec) })
	}, nil
}

func (s *Store) unregister(rec *record) {
	rec.closed.Store(true)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, rec)
	s.tracker.Release(rec, rec.ids)
	rec.ids = nil
	s.updateGauges()
	s.Spec.Log.Debug("unregistered live query", "operation", rec.params.OperationName)
}

// Invalidate re-executes every live query depending on any of ids and
// returns when all of them have published.  Each query runs at most once
// per call.
func (s *Store) Invalidate(ids ...string) {
	s.metrics.invalidations.Inc()
	recs := s.tracker.RecordsFor(ids)
	if debug.Store() {
		debug.Logf("invalidate %v: %d live queries\n", ids, len(recs))
	}
	if len(recs) == 0 {
		return
	}
	s.Spec.Log.Debug("invalidating", "identifiers", ids, "queries", len(recs))

	var g errgroup.Group
	g.SetLimit(s.Spec.Config.MaxConcurrentExecutions)
	for rec := range recs {
		if rec.closed.Load() {
			continue
		}
		g.Go(func() error {
			s.execute(rec)
			return nil
		})
	}
	_ = g.Wait()
}

// Execute runs params.  Documents without a live operation execute once;
// a live operation yields a stream of results which stays registered
// until the consumer stops ranging over it or params.Context is done.
func (s *Store) Execute(params gql.ExecuteParams) gql.Execution {
	_, err := gql.LiveOperation(params.Document, params.OperationName, params.Variables)
	switch {
	case errors.Is(err, gql.ErrNoLiveOperation):
		return gql.Execution{Result: gql.Execute(params)}
	case err != nil:
		return gql.Execution{Result: gql.ErrorResult(err)}
	}
	return gql.Execution{Stream: s.stream(params)}
}

func (s *Store) stream(params gql.ExecuteParams) iter.Seq2[*gql.Result, error] {
	return func(yield func(*gql.Result, error) bool) {
		ctx := params.Context
		if ctx == nil {
			ctx = context.Background()
		}
		feed := patchstream.NewFeed(s.Spec.Config.FeedSize)
		unsubscribe, err := s.Register(params, func(r *gql.Result) {
			feed.Publish(r)
		})
		if err != nil {
			feed.Close()
			yield(nil, err)
			return
		}
		feed.OnClose(unsubscribe)
		for r, err := range feed.Seq(ctx) {
			if !yield(r, err) {
				return
			}
		}
	}
}

// Len returns the number of registered live queries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// IdentifierCount returns the number of identifiers some live query
// depends on.
func (s *Store) IdentifierCount() int {
	return s.tracker.IdentifierCount()
}

// execute runs rec once, commits its dependency set if this is still the
// latest execution and publishes the result if rec is still registered.
func (s *Store) execute(rec *record) {
	n := rec.executions.Add(1)
	s.metrics.executions.Inc()

	col := gql.NewCollector()
	params := rec.params
	params.Context = gql.WithCollector(params.Context, col)

	start := time.Now()
	res, err := s.Spec.Executor(params)
	s.metrics.executionDuration.Observe(time.Since(start).Seconds())

	ids := rec.static
	if err != nil {
		s.metrics.executionErrors.Inc()
		s.Spec.Log.Error("live query execution failed", "operation", params.OperationName, "error", err)
		res = gql.ErrorResult(err)
	} else {
		ids = s.identifiers(rec.static, col.Resources())
	}

	s.mu.Lock()
	_, registered := s.records[rec]
	latest := rec.executions.Load() == n
	if registered && latest {
		s.tracker.Track(rec, rec.ids, ids)
		rec.ids = ids
		s.updateGauges()
	} else {
		s.metrics.discardedCommits.Inc()
	}
	s.mu.Unlock()

	if debug.Store() {
		debug.Logf("execution %d of %q: registered=%v latest=%v identifiers=%v\n",
			n, params.OperationName, registered, latest, ids)
	}
	if !registered || rec.closed.Load() {
		return
	}
	if s.Spec.Config.IncludeIdentifierExtension {
		ext := make(map[string]any, len(res.Extensions)+1)
		maps.Copy(ext, res.Extensions)
		ext[ExtensionIdentifiers] = append([]string(nil), ids...)
		res.Extensions = ext
	}
	res.IsLive = true
	rec.publish(res)
}

// identifiers extends static with the identifiers of resolved resources.
func (s *Store) identifiers(static []string, resources []gql.Resource) []string {
	ids := make([]string, 0, len(static)+len(resources))
	seen := make(map[string]struct{}, cap(ids))
	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, id := range static {
		add(id)
	}
	for _, r := range resources {
		id, err := s.identifier(r.TypeName, r.ID)
		if err != nil {
			s.Spec.Log.Warn("could not build identifier", "error", fmt.Errorf("resource %s: %w", r.TypeName, err))
			continue
		}
		add(id)
	}
	return ids
}

func (s *Store) updateGauges() {
	s.metrics.liveQueries.Set(float64(len(s.records)))
	s.metrics.trackedIDs.Set(float64(s.tracker.IdentifierCount()))
}
