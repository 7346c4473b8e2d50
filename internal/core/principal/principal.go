// Package principal binds the authenticated caller to a request's context so
// that nested code, including data-access hooks, can answer "who is acting"
// without explicit plumbing. Bindings are per-request: a principal attached
// to one request's context is never visible to another.
package principal

import (
	"context"

	"github.com/opskernel/admin-api/internal/core/domain"
)

type contextKey struct{}

// systemActor is the attribution used for writes that happen outside any
// authenticated request, e.g. seeding or background jobs.
const systemActor = "system"

// WithPrincipal returns a child context carrying p.
func WithPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the bound principal, or nil when the request is
// anonymous or the context is outside any request scope.
func FromContext(ctx context.Context) *domain.Principal {
	p, _ := ctx.Value(contextKey{}).(*domain.Principal)
	return p
}

// Stamp applies create/update attribution to rec from the principal bound to
// ctx. It is the pre-save hook called by repositories before persisting a
// record; unauthenticated writes are attributed to the system actor.
func Stamp(ctx context.Context, rec domain.Stampable, isNew bool) {
	actor := systemActor
	if p := FromContext(ctx); p != nil && p.UserName != "" {
		actor = p.UserName
	}
	if isNew {
		rec.StampCreate(actor)
		return
	}
	rec.StampUpdate(actor)
}
