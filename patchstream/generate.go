package patchstream

import (
	"iter"

	"github.com/signadot/livequery/debug"
	"github.com/signadot/livequery/gql"
	"github.com/signadot/livequery/libdiff"
)

// Generate converts src into a patch stream.
//
// Breaking out of the returned sequence stops src.  An error from src is
// yielded once and ends the stream.
func Generate(src iter.Seq2[*gql.Result, error], opts ...libdiff.DiffOpt) iter.Seq2[*Envelope, error] {
	return func(yield func(*Envelope, error) bool) {
		var (
			prev     any
			revision int
		)
		for res, err := range src {
			if err != nil {
				yield(nil, err)
				return
			}
			if res == nil {
				continue
			}
			if !res.IsLive {
				prev, revision = nil, 0
				if !yield(passThrough(res), nil) {
					return
				}
				continue
			}
			var env *Envelope
			if revision == 0 {
				env = &Envelope{Data: res.Data, HasData: true}
			} else {
				delta := libdiff.Diff(prev, res.Data, opts...)
				if delta == nil {
					if debug.Stream() {
						debug.Logf("suppressed unchanged result after revision %d\n", revision)
					}
					continue
				}
				env = &Envelope{Patch: delta, HasPatch: true}
			}
			revision++
			prev = res.Data
			env.Revision = revision
			env.Errors = res.Errors
			env.Extensions = res.Extensions
			if !yield(env, nil) {
				return
			}
		}
	}
}
