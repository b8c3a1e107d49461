// Package tracker maps resource identifiers to the records subscribed to
// them.
//
// A record is any comparable handle, typically a pointer owned by the
// caller.  The tracker only stores handles.  Each record's subscriptions
// are replaced incrementally with [Tracker.Track], and [Tracker.RecordsFor]
// answers which records depend on any of a set of identifiers without
// scanning all records.
//
// # Related Packages
//
//   - github.com/signadot/livequery/livestore - the live query store using the tracker
package tracker
