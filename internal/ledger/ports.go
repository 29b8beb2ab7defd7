// Package ledger defines the ports to the remote ledger service, the
// system of record for users, transactions, budgets and invite tokens.
// Adapters live in the subpackages: remote (HTTP), sqlite (local
// offline ledger) and memory (dev and tests).
package ledger

import (
	"context"

	"finch/internal/core"
)

type (
	// UserDirectory lists known accounts and revokes access.
	// Revocation is admin-only by service policy; the client never
	// enforces that itself.
	UserDirectory interface {
		ListUsers(ctx context.Context) ([]core.User, error)
		RevokeAccess(ctx context.Context, identityID string) error
	}

	// TransactionStore queries and mutates transactions.
	TransactionStore interface {
		// Filtered returns transactions matching the canonical spec,
		// together with their service-assigned ids.
		Filtered(ctx context.Context, spec core.FilterSpec) ([]core.TransactionRecord, error)
		Add(ctx context.Context, tx core.Transaction) (int64, error)
		Update(ctx context.Context, id int64, tx core.Transaction) error
	}

	// BudgetStore manages per-category budgets. Summary is the
	// service-side pre-aggregated alternative to core.Summarize; both
	// must yield identical arithmetic.
	BudgetStore interface {
		ListBudgets(ctx context.Context) ([]core.BudgetEntry, error)
		Summary(ctx context.Context) ([]core.BudgetSummaryRow, error)
		SetBudget(ctx context.Context, category string, amount int64) error
		DeleteBudget(ctx context.Context, category string) error
	}

	// InviteService manages single-use invite tokens. AcceptInvite
	// failures that the service attributes to the token or username are
	// returned as *RedemptionError; anything else is an opaque failure.
	InviteService interface {
		GenerateInviteLink(ctx context.Context) (string, error)
		AcceptInvite(ctx context.Context, token, username string) error
	}
)
