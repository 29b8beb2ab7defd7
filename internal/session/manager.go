// Package session owns the authenticated identity and role for the
// lifetime of the process. There is exactly one Manager, created at
// startup; the current user record is replaced wholesale on login and
// logout and never mutated field by field.
package session

import (
	"context"
	"fmt"
	"log/slog"

	"finch/internal/core"
	"finch/internal/identity"
	"finch/internal/ledger"
)

// State is the session lifecycle state. Every path into Authenticated
// passes through Authenticating.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Route is the startup decision the manager hands to the caller.
type Route int

const (
	// RouteLogin shows the login affordance.
	RouteLogin Route = iota
	// RouteInvite runs the invite redemption flow.
	RouteInvite
	// RouteDashboard goes straight to the authenticated app.
	RouteDashboard
)

// Manager gates feature visibility from the session role. It is owned
// by the single logical task driving the UI; it is not safe for
// concurrent use and does not need to be.
type Manager struct {
	provider  identity.Provider
	directory ledger.UserDirectory

	state    State
	current  *core.User
	unlinked bool
}

func NewManager(provider identity.Provider, directory ledger.UserDirectory) *Manager {
	return &Manager{provider: provider, directory: directory}
}

// Bootstrap decides the initial route. An invite token only routes to
// the redemption flow when no authenticated session exists; an active
// session wins and the token is ignored.
//
// The returned error may be core.ErrUnlinkedIdentity: the session is
// then authenticated but no account matches the identity. That is a
// distinct degraded state, not anonymity.
func (m *Manager) Bootstrap(ctx context.Context, inviteToken string) (Route, error) {
	authed, err := m.provider.IsAuthenticated(ctx)
	if err != nil {
		return RouteLogin, fmt.Errorf("check session: %w", err)
	}

	if inviteToken != "" && !authed {
		return RouteInvite, nil
	}
	if !authed {
		return RouteLogin, nil
	}

	if inviteToken != "" {
		slog.InfoContext(ctx, "Ignoring invite token for authenticated session")
	}
	if err := m.resolve(ctx); err != nil {
		return RouteDashboard, err
	}
	return RouteDashboard, nil
}

// Login runs a fresh identity-provider login and resolves the account.
// Failure or cancel returns the session to Anonymous.
func (m *Manager) Login(ctx context.Context, opts identity.Options) error {
	m.state = StateAuthenticating
	m.current = nil
	m.unlinked = false

	if err := m.provider.Login(ctx, opts); err != nil {
		m.state = StateAnonymous
		return fmt.Errorf("login: %w", err)
	}
	return m.resolve(ctx)
}

// resolve finishes the Authenticating -> Authenticated transition by
// matching the provider identity against the ledger's accounts.
func (m *Manager) resolve(ctx context.Context) error {
	m.state = StateAuthenticating

	id, err := m.provider.IdentityID(ctx)
	if err != nil {
		m.state = StateAnonymous
		return fmt.Errorf("read identity: %w", err)
	}

	users, err := m.directory.ListUsers(ctx)
	if err != nil {
		m.state = StateAnonymous
		return fmt.Errorf("list users: %w", err)
	}

	m.state = StateAuthenticated
	for i := range users {
		if users[i].ID == id {
			u := users[i]
			m.current = &u
			m.unlinked = false
			return nil
		}
	}

	// Provider session is valid but no account matches: degraded
	// authenticated state, surfaced, never silently anonymous.
	m.current = nil
	m.unlinked = true
	slog.WarnContext(ctx, "Authenticated identity has no linked account", "identity", id)
	return core.ErrUnlinkedIdentity
}

// Logout ends the provider session and resets to Anonymous. The local
// state is cleared even when the provider call fails.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.provider.Logout(ctx)
	m.state = StateAnonymous
	m.current = nil
	m.unlinked = false
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (m *Manager) State() State { return m.state }

// Current returns the resolved user, if any.
func (m *Manager) Current() (core.User, bool) {
	if m.current == nil {
		return core.User{}, false
	}
	return *m.current, true
}

// IsAdmin reports whether admin affordances should be visible. It is a
// display decision only; the ledger service independently rejects
// unauthorized calls. An unresolved identity is simply not an admin.
func (m *Manager) IsAdmin() bool {
	return m.current != nil && m.current.Role.IsAdmin()
}

// Unlinked reports the degraded authenticated-without-account state.
func (m *Manager) Unlinked() bool { return m.unlinked }
