package core

import (
	"errors"
	"strings"
)

const (
	// RoleAdmin may manage budgets, invites and user access.
	RoleAdmin Role = "admin"
	// RoleEditor may record and edit transactions.
	RoleEditor Role = "editor"
)

type (
	// Role is the account role reported by the ledger service. The client
	// only reflects it in the UI; the service enforces it.
	Role string

	// User is an account known to the ledger service. ID is the opaque
	// identity-provider id and never changes once the account exists.
	User struct {
		ID       string
		Username string
		Role     Role
	}

	// Transaction is a single ledger entry. Amount is minor currency units
	// (cents) and may be negative; Date is the service's nanosecond-epoch
	// timestamp. Notes may be empty.
	Transaction struct {
		Date          int64
		Amount        int64
		Category      string
		PaymentMethod string
		Notes         string
	}

	// TransactionRecord is a stored transaction together with the id the
	// ledger service assigned to it.
	TransactionRecord struct {
		ID int64
		Transaction
	}

	// BudgetEntry is a per-category spending limit in minor units.
	// Absence of an entry for a category means no limit is set.
	BudgetEntry struct {
		Category string
		Amount   int64
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")

	// ErrUnlinkedIdentity means the identity-provider session is valid but
	// no account matches the identity. Distinct from being anonymous.
	ErrUnlinkedIdentity = errors.New("identity has no linked account")
)

// IsAdmin reports whether the role grants admin affordances.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func (u User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return errors.New("empty identity id")
	}
	if strings.TrimSpace(u.Username) == "" {
		return errors.New("empty username")
	}
	switch u.Role {
	case RoleAdmin, RoleEditor:
	default:
		return errors.New("unknown role")
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Category) == "" {
		return errors.New("empty category")
	}
	return nil
}
