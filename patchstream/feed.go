package patchstream

import (
	"context"
	"iter"
	"sync"

	"github.com/signadot/livequery/gql"
)

// DefaultFeedSize is the number of results a Feed queues before it starts
// dropping the oldest ones.
const DefaultFeedSize = 16

// Feed buffers results pushed by a publisher until a consumer pulls them
// with Seq.
//
// Publish never blocks.  When the queue is full the oldest queued result
// is dropped; live results are full snapshots, so the consumer only misses
// intermediate states.  After Close, published results are discarded.
type Feed struct {
	mu      sync.Mutex
	queue   []*gql.Result
	size    int
	dropped int
	onClose []func()

	ready     chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewFeed creates a Feed queueing at most size results; size <= 0 uses
// DefaultFeedSize.
func NewFeed(size int) *Feed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	return &Feed{
		size:  size,
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Publish queues r.  It reports false if the feed is closed.
func (f *Feed) Publish(r *gql.Result) bool {
	if f.IsClosed() {
		return false
	}
	f.mu.Lock()
	if f.IsClosed() {
		f.mu.Unlock()
		return false
	}
	if len(f.queue) >= f.size {
		f.queue[0] = nil
		f.queue = f.queue[1:]
		f.dropped++
	}
	f.queue = append(f.queue, r)
	f.mu.Unlock()

	select {
	case f.ready <- struct{}{}:
	default:
	}
	return true
}

// OnClose registers fn to run when the feed closes.  If the feed is
// already closed fn runs immediately.
func (f *Feed) OnClose(fn func()) {
	f.mu.Lock()
	if !f.IsClosed() {
		f.onClose = append(f.onClose, fn)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	fn()
}

// Close closes the feed and runs the OnClose hooks.  Only the first call
// has an effect.
func (f *Feed) Close() {
	f.closeOnce.Do(func() {
		f.mu.Lock()
		close(f.done)
		hooks := f.onClose
		f.onClose = nil
		f.queue = nil
		f.mu.Unlock()
		for _, fn := range hooks {
			fn()
		}
	})
}

// IsClosed reports whether Close has been called.
func (f *Feed) IsClosed() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Dropped returns the number of results dropped because the queue was
// full.
func (f *Feed) Dropped() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dropped
}

// Seq yields published results in order until the feed is closed or ctx
// is done.  The feed is closed when the sequence ends, so breaking out of
// it releases the publisher.  Cancellation of ctx is yielded as an error.
func (f *Feed) Seq(ctx context.Context) iter.Seq2[*gql.Result, error] {
	return func(yield func(*gql.Result, error) bool) {
		defer f.Close()
		for {
			f.mu.Lock()
			q := f.queue
			f.queue = nil
			f.mu.Unlock()
			for _, r := range q {
				if f.IsClosed() {
					return
				}
				if !yield(r, nil) {
					return
				}
			}
			select {
			case <-f.ready:
			case <-f.done:
				return
			case <-ctx.Done():
				yield(nil, ctx.Err())
				return
			}
		}
	}
}
