package database

import (
	"context"
	"sync"
)

type afterCommitKey struct{}

type afterCommitHooks struct {
	mu  sync.Mutex
	fns []func()
}

// WithAfterCommit returns a context that collects AfterCommit callbacks and a
// run function that invokes them in registration order. A Transactor calls
// run only after a successful commit; on rollback the callbacks are dropped.
func WithAfterCommit(ctx context.Context) (context.Context, func()) {
	hooks := &afterCommitHooks{}
	run := func() {
		hooks.mu.Lock()
		fns := hooks.fns
		hooks.fns = nil
		hooks.mu.Unlock()

		for _, fn := range fns {
			fn()
		}
	}
	return context.WithValue(ctx, afterCommitKey{}, hooks), run
}

// AfterCommit defers fn until the transaction on ctx commits. Outside a
// transaction fn runs immediately.
func AfterCommit(ctx context.Context, fn func()) {
	hooks, ok := ctx.Value(afterCommitKey{}).(*afterCommitHooks)
	if !ok {
		fn()
		return
	}
	hooks.mu.Lock()
	hooks.fns = append(hooks.fns, fn)
	hooks.mu.Unlock()
}
