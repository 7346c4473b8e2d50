// Package lifecycle provides process-wide, keyed, lazily-initialized handles
// to backing resources (database and cache clients). At most one ready handle
// and one in-flight initialization exist per key at any instant, no matter
// how many goroutines hit an uninitialized key at once.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrConfigRequired is returned when a key has no handle, no initialization
// in flight, and the caller supplied no configuration to start one.
var ErrConfigRequired = errors.New("configuration required")

// DefaultKey names the primary instance of a resource.
const DefaultKey = "main"

const defaultConnectTimeout = 5 * time.Second

// ConnectFunc opens the underlying resource from its configuration.
type ConnectFunc[C, T any] func(ctx context.Context, cfg C) (T, error)

// CloseFunc releases the underlying resource.
type CloseFunc[T any] func(ctx context.Context, handle T) error

// inflight is both the pending marker and the future all concurrent first
// callers wait on: installed under the mutex before any dialing starts.
type inflight[T any] struct {
	done   chan struct{}
	handle T
	err    error
}

// Registry manages the handles for one resource type.
type Registry[C, T any] struct {
	name    string
	connect ConnectFunc[C, T]
	close   CloseFunc[T]
	timeout time.Duration

	mu      sync.Mutex
	ready   map[string]T
	pending map[string]*inflight[T]
	closing map[string]struct{}
}

// NewRegistry builds a registry for one resource type. A non-positive
// timeout falls back to the default connect timeout.
func NewRegistry[C, T any](name string, timeout time.Duration, connect ConnectFunc[C, T], close CloseFunc[T]) *Registry[C, T] {
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	return &Registry[C, T]{
		name:    name,
		connect: connect,
		close:   close,
		timeout: timeout,
		ready:   make(map[string]T),
		pending: make(map[string]*inflight[T]),
		closing: make(map[string]struct{}),
	}
}

// Acquire returns the handle for key, initializing it on first use. Concurrent
// first callers share a single initialization; exactly one connection is
// opened. cfg may be nil once a handle exists or an initialization is in
// flight; otherwise ErrConfigRequired is returned. A failed initialization
// leaves the key absent so the next caller retries cleanly.
func (r *Registry[C, T]) Acquire(ctx context.Context, key string, cfg *C) (T, error) {
	var zero T
	if key == "" {
		key = DefaultKey
	}

	r.mu.Lock()
	if h, ok := r.ready[key]; ok {
		r.mu.Unlock()
		return h, nil
	}
	if fl, ok := r.pending[key]; ok {
		r.mu.Unlock()
		return r.await(ctx, fl)
	}
	if cfg == nil {
		r.mu.Unlock()
		return zero, fmt.Errorf("%s client %q not initialized: %w", r.name, key, ErrConfigRequired)
	}

	// Install the pending marker before any dialing so later callers join
	// this attempt instead of opening their own connection.
	fl := &inflight[T]{done: make(chan struct{})}
	r.pending[key] = fl
	r.mu.Unlock()

	// The attempt is bounded by the registry timeout and detached from the
	// first caller's cancellation: other goroutines may be waiting on it.
	connectCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	handle, err := r.connect(connectCtx, *cfg)
	if err != nil {
		err = fmt.Errorf("%s client %q: %w", r.name, key, err)
	}

	r.mu.Lock()
	delete(r.pending, key)
	if err == nil {
		r.ready[key] = handle
	}
	r.mu.Unlock()

	fl.handle, fl.err = handle, err
	close(fl.done)

	return handle, err
}

// await blocks on an in-flight initialization started by another caller.
func (r *Registry[C, T]) await(ctx context.Context, fl *inflight[T]) (T, error) {
	select {
	case <-fl.done:
		return fl.handle, fl.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Has reports whether a ready handle exists for key.
func (r *Registry[C, T]) Has(key string) bool {
	if key == "" {
		key = DefaultKey
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.ready[key]
	return ok
}

// Release closes and removes the handle for key. Idempotent: absent or
// already-closing keys are a no-op. A subsequent Acquire starts fresh.
func (r *Registry[C, T]) Release(ctx context.Context, key string) error {
	if key == "" {
		key = DefaultKey
	}

	r.mu.Lock()
	if _, ok := r.closing[key]; ok {
		r.mu.Unlock()
		return nil
	}
	h, ok := r.ready[key]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	r.closing[key] = struct{}{}
	r.mu.Unlock()

	err := r.close(ctx, h)

	r.mu.Lock()
	delete(r.ready, key)
	delete(r.closing, key)
	r.mu.Unlock()

	return err
}

// ReleaseAll closes every ready handle, returning the first error seen.
func (r *Registry[C, T]) ReleaseAll(ctx context.Context) error {
	r.mu.Lock()
	keys := make([]string, 0, len(r.ready))
	for k := range r.ready {
		keys = append(keys, k)
	}
	r.mu.Unlock()

	var first error
	for _, k := range keys {
		if err := r.Release(ctx, k); err != nil && first == nil {
			first = err
		}
	}
	return first
}
