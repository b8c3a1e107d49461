package patchstream

import (
	"fmt"
	"iter"

	"github.com/signadot/livequery/debug"
	"github.com/signadot/livequery/gql"
	"github.com/signadot/livequery/libdiff"
)

// Apply reconstructs results from a patch stream.
//
// A protocol violation (missing data or patch, a revision gap, a delta
// that does not apply) is yielded as an error and ends the stream.
func Apply(src iter.Seq2[*Envelope, error]) iter.Seq2[*gql.Result, error] {
	return func(yield func(*gql.Result, error) bool) {
		var (
			cur  any
			last int
		)
		for env, err := range src {
			if err != nil {
				yield(nil, err)
				return
			}
			if env == nil {
				continue
			}
			res := &gql.Result{
				Errors:     env.Errors,
				Extensions: env.Extensions,
			}
			switch {
			case env.Revision == 0:
				cur, last = nil, 0
				res.Data = env.Data
			case env.Revision == 1:
				if !env.hasData() {
					yield(nil, ErrMissingData)
					return
				}
				cur, last = env.Data, 1
				res.Data, res.IsLive = cur, true
			default:
				if !env.hasPatch() {
					yield(nil, ErrMissingPatch)
					return
				}
				if env.Revision != last+1 {
					yield(nil, &RevisionMismatchError{Expected: last + 1, Got: env.Revision})
					return
				}
				next, err := libdiff.Patch(cur, env.Patch)
				if err != nil {
					yield(nil, fmt.Errorf("could not apply revision %d: %w", env.Revision, err))
					return
				}
				if debug.Stream() {
					debug.Logf("applied revision %d\n", env.Revision)
				}
				cur, last = next, env.Revision
				res.Data, res.IsLive = cur, true
			}
			if !yield(res, nil) {
				return
			}
		}
	}
}
