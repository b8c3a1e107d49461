// Package livestore keeps registered live queries up to date.
//
// A [Store] registers GraphQL operations marked @live, records which
// resources (root fields and resolved typename:id pairs) each one depends
// on, and re-executes exactly the affected queries when [Store.Invalidate]
// is called with changed identifiers.
//
// Dependencies come from two places: the root-level field selections of
// the query, which are known before execution, and the id fields resolved
// during each execution, which the store observes by instrumenting the
// schema once.  Every re-execution replaces the record's dependency set,
// unless a newer execution of the same record has started in the
// meantime.
//
// # Related Packages
//
//   - github.com/signadot/livequery/tracker - the identifier index
//   - github.com/signadot/livequery/patchstream - turns published results into patches
package livestore
