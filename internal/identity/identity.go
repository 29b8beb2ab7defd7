// Package identity wraps the external identity provider that issues
// session credentials. The client never verifies credentials itself;
// it only needs to know whether a session exists, start or end one,
// and read the opaque identity id the provider attributes to it.
package identity

import (
	"context"
	"time"
)

// DefaultSessionTTL mirrors the provider's seven day session lifetime.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Options tune a login request.
type Options struct {
	// SessionTTL caps the issued session lifetime; zero means
	// DefaultSessionTTL.
	SessionTTL time.Duration
}

// Provider is the identity-provider port. Login and Logout block on
// the provider round trip; neither is retried by the client.
type Provider interface {
	IsAuthenticated(ctx context.Context) (bool, error)
	Login(ctx context.Context, opts Options) error
	Logout(ctx context.Context) error
	// IdentityID returns the opaque id of the authenticated identity.
	IdentityID(ctx context.Context) (string, error)
}
