// Package invite implements the state machine that turns an invite
// token plus a chosen username into a new account. The flow only runs
// for an anonymous session with a token present; session.Bootstrap
// makes that routing decision.
package invite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finch/internal/identity"
	"finch/internal/ledger"
	"finch/internal/session"
)

// State of the redemption flow.
type State int

const (
	StateTokenPresented State = iota
	StateSubmitting
	StateAccepted
)

// Flow drives one token through redemption. After a rejection it is
// back in TokenPresented so the user can retry with a different
// username; token-level rejections make retries pointless but are not
// blocked here, the service rejects them again deterministically.
type Flow struct {
	token    string
	invites  ledger.InviteService
	sessions *session.Manager

	state      State
	lastReason ledger.RedemptionReason
}

func NewFlow(token string, invites ledger.InviteService, sessions *session.Manager) *Flow {
	return &Flow{token: token, invites: invites, sessions: sessions}
}

// Submit redeems the token under the given username. A rejection is
// returned as *ledger.RedemptionError and leaves the flow retriable;
// any other error is an opaque collaborator failure. On acceptance the
// flow triggers a fresh identity-provider login, which moves the
// session through Authenticating.
func (f *Flow) Submit(ctx context.Context, username string) error {
	f.state = StateSubmitting

	if err := f.invites.AcceptInvite(ctx, f.token, username); err != nil {
		f.state = StateTokenPresented

		var rerr *ledger.RedemptionError
		if errors.As(err, &rerr) {
			f.lastReason = rerr.Reason
			slog.InfoContext(ctx, "Invite rejected", "reason", string(rerr.Reason))
			return err
		}
		f.lastReason = ""
		return fmt.Errorf("accept invite: %w", err)
	}

	f.state = StateAccepted
	f.lastReason = ""

	if err := f.sessions.Login(ctx, identity.Options{}); err != nil {
		// The account exists now; only the follow-up login failed.
		return fmt.Errorf("post-invite login: %w", err)
	}
	return nil
}

func (f *Flow) State() State { return f.state }

// Token returns the token under redemption.
func (f *Flow) Token() string { return f.token }

// LastReason returns the most recent rejection reason, if any.
func (f *Flow) LastReason() (ledger.RedemptionReason, bool) {
	return f.lastReason, f.lastReason != ""
}

// Message maps a redemption reason to its user-facing text. Every
// reason has a distinct message.
func Message(r ledger.RedemptionReason) string {
	switch r {
	case ledger.ReasonShortUsername:
		return "Username too short"
	case ledger.ReasonAlreadyUsedToken:
		return "Invite already used"
	case ledger.ReasonExpiredToken:
		return "Invite expired"
	case ledger.ReasonInvalidToken:
		return "Invalid invite"
	case ledger.ReasonAlreadyRegistered:
		return "Already registered"
	default:
		return "Unknown error"
	}
}

// Terminal reports whether a reason dooms the token itself, as opposed
// to the submitted username.
func Terminal(r ledger.RedemptionReason) bool {
	switch r {
	case ledger.ReasonAlreadyUsedToken, ledger.ReasonExpiredToken, ledger.ReasonInvalidToken:
		return true
	}
	return false
}
