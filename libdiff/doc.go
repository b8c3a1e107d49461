// Package libdiff computes, applies and reverses structural deltas between
// JSON-like values.
//
// Values are what encoding/json produces when decoding into an any:
// map[string]any, []any, string, bool, nil and numbers.  Other Go numeric
// kinds, json.Number, string keyed maps and slices are accepted as well.
//
// # Usage
//
//	// Compute a delta between two values; nil means no difference.
//	delta := libdiff.Diff(oldValue, newValue)
//
//	// Apply it
//	patched, err := libdiff.Patch(oldValue, delta)
//
//	// Undo it
//	rev, err := libdiff.Reverse(delta)
//	orig, err := libdiff.Patch(patched, rev)
//
// # Delta format
//
// A delta has the same shape family as the values it describes and
// marshals to JSON as is:
//
//   - [new]               the value was added
//   - [old, new]          the value was replaced
//   - [old, 0, 0]         the value was removed
//   - [old, newIndex, 3]  an array item moved, keyed by its old index
//   - [unidiff, 0, 2]     a text delta, only with the [TextDiff] option
//   - {key: delta, ...}   an object with changed keys
//   - {"_t": "a", ...}    an array; plain keys are indices in the new array
//     (added or modified items), keys prefixed with "_" are indices in the
//     old array (removed or moved items)
//
// Old values are nil when the delta was computed with
// IncludePreviousValue(false), which makes the delta smaller but not
// reversible.
//
// # Related Packages
//
//   - github.com/signadot/livequery/patchstream - revisioned patch streams built on deltas
package libdiff
