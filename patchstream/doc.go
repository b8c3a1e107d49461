// Package patchstream turns a sequence of live query results into a
// sequence of revisioned patches and back.
//
// [Generate] publishes the first live result in full as revision 1 and
// each later live result as a [libdiff] delta against the previous one,
// dropping results that did not change.  [Apply] is its inverse.  Non-live
// results pass through both and restart the revision sequence.
//
// [Feed] adapts a push-style publish callback to the pull-style sequences
// consumed here.
package patchstream
