package middleware

import (
	"context"

	"github.com/lnwboom/office-assets/models"
)

type sessionKey struct{}

// WithSession stores the authenticated session on ctx.
func WithSession(ctx context.Context, s models.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the session set by APIAuth or PageGate.
func SessionFromContext(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(models.Session)
	return s, ok
}
