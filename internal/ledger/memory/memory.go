// Package memory is an in-process stand-in for the remote ledger
// service, used by tests and by the dev backend. It reproduces the
// service's observable behavior, including invite token lifecycle and
// admin-only enforcement, so the client's reflection of roles can be
// exercised without a network.
package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"finch/internal/core"
	"finch/internal/ledger"
)

const (
	inviteTTL      = 7 * 24 * time.Hour
	minUsernameLen = 3
)

var ErrForbidden = errors.New("caller is not an admin")

type inviteToken struct {
	expiry   time.Time
	consumed bool
}

// Store holds the full ledger state behind a mutex.
type Store struct {
	mu      sync.Mutex
	users   []core.User
	txs     []core.TransactionRecord
	nextID  int64
	budgets []core.BudgetEntry
	invites map[string]*inviteToken

	// caller is the identity the service would derive from the request
	// credentials; admin-only operations are checked against it.
	caller string

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		nextID:  1,
		invites: map[string]*inviteToken{},
		now:     time.Now,
	}
}

// SetCaller sets the identity attributed to subsequent calls.
func (s *Store) SetCaller(identityID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.caller = identityID
}

// SetClock overrides the store's clock; tests use it to expire tokens.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Seed installs an account without going through an invite.
func (s *Store) Seed(u core.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, u)
}

func (s *Store) ListUsers(_ context.Context) ([]core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.User(nil), s.users...), nil
}

func (s *Store) RevokeAccess(_ context.Context, identityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.callerIsAdmin() {
		return ErrForbidden
	}
	for i, u := range s.users {
		if u.ID == identityID {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return nil
		}
	}
	return errors.New("unknown identity")
}

func (s *Store) Add(_ context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.txs = append(s.txs, core.TransactionRecord{ID: id, Transaction: tx})
	return id, nil
}

func (s *Store) Update(_ context.Context, id int64, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txs {
		if s.txs[i].ID == id {
			s.txs[i].Transaction = tx
			return nil
		}
	}
	return errors.New("unknown transaction id")
}

func (s *Store) Filtered(_ context.Context, spec core.FilterSpec) ([]core.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.TransactionRecord
	for _, rec := range s.txs {
		if matches(spec, rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func matches(spec core.FilterSpec, rec core.TransactionRecord) bool {
	if spec.StartTime != nil && rec.Date < *spec.StartTime {
		return false
	}
	if spec.EndTime != nil && rec.Date > *spec.EndTime {
		return false
	}
	if spec.MinAmount != nil && rec.Amount < *spec.MinAmount {
		return false
	}
	if spec.MaxAmount != nil && rec.Amount > *spec.MaxAmount {
		return false
	}
	if spec.Category != nil && rec.Category != *spec.Category {
		return false
	}
	if spec.PaymentMethod != nil && rec.PaymentMethod != *spec.PaymentMethod {
		return false
	}
	return true
}

func (s *Store) ListBudgets(_ context.Context) ([]core.BudgetEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.BudgetEntry(nil), s.budgets...), nil
}

// Summary aggregates server-side with the same integer arithmetic as
// core.Summarize over the unfiltered transaction set.
func (s *Store) Summary(_ context.Context) ([]core.BudgetSummaryRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Summarize(s.budgets, s.txs), nil
}

func (s *Store) SetBudget(_ context.Context, category string, amount int64) error {
	if strings.TrimSpace(category) == "" {
		return errors.New("empty category")
	}
	if amount < 0 {
		return core.ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.callerIsAdmin() {
		return ErrForbidden
	}
	for i := range s.budgets {
		if s.budgets[i].Category == category {
			s.budgets[i].Amount = amount
			return nil
		}
	}
	s.budgets = append(s.budgets, core.BudgetEntry{Category: category, Amount: amount})
	return nil
}

func (s *Store) DeleteBudget(_ context.Context, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.callerIsAdmin() {
		return ErrForbidden
	}
	for i := range s.budgets {
		if s.budgets[i].Category == category {
			s.budgets = append(s.budgets[:i], s.budgets[i+1:]...)
			return nil
		}
	}
	return errors.New("no budget for category")
}

func (s *Store) GenerateInviteLink(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.callerIsAdmin() {
		return "", ErrForbidden
	}
	token := uuid.NewString()
	s.invites[token] = &inviteToken{expiry: s.now().Add(inviteTTL)}
	return token, nil
}

// AcceptInvite checks expiry before consumption, flips consumed exactly
// once, and registers the caller's identity under the given username.
func (s *Store) AcceptInvite(_ context.Context, token, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invites[token]
	if !ok {
		return &ledger.RedemptionError{Reason: ledger.ReasonInvalidToken}
	}
	if s.now().After(inv.expiry) {
		return &ledger.RedemptionError{Reason: ledger.ReasonExpiredToken}
	}
	if inv.consumed {
		return &ledger.RedemptionError{Reason: ledger.ReasonAlreadyUsedToken}
	}
	if len(strings.TrimSpace(username)) < minUsernameLen {
		return &ledger.RedemptionError{Reason: ledger.ReasonShortUsername}
	}
	for _, u := range s.users {
		if u.ID == s.caller {
			return &ledger.RedemptionError{Reason: ledger.ReasonAlreadyRegistered}
		}
	}

	inv.consumed = true
	s.users = append(s.users, core.User{
		ID:       s.caller,
		Username: strings.TrimSpace(username),
		Role:     core.RoleEditor,
	})
	return nil
}

func (s *Store) callerIsAdmin() bool {
	for _, u := range s.users {
		if u.ID == s.caller {
			return u.Role.IsAdmin()
		}
	}
	return false
}

var (
	_ ledger.UserDirectory    = (*Store)(nil)
	_ ledger.TransactionStore = (*Store)(nil)
	_ ledger.BudgetStore      = (*Store)(nil)
	_ ledger.InviteService    = (*Store)(nil)
)
