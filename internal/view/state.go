// Package view holds the client's render state. State is exposed only
// as immutable snapshots: every mutation builds a new Snapshot, so a
// render in progress can never observe a half-applied update.
package view

import (
	"sync"

	"finch/internal/core"
)

// Notifier shows a user-facing failure notice. Each failed operation
// produces exactly one notification.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

// Snapshot is one immutable frame of render state.
type Snapshot struct {
	Loading      bool
	Users        []core.User
	Summary      []core.BudgetSummaryRow
	Chart        []core.ChartSlice
	Transactions []core.TransactionRecord
}

// State owns the current snapshot and serializes updates to it.
type State struct {
	mu       sync.Mutex
	current  Snapshot
	notifier Notifier
}

func NewState(notifier Notifier) *State {
	if notifier == nil {
		notifier = NotifierFunc(func(string) {})
	}
	return &State{notifier: notifier}
}

// Snapshot returns the current frame. The slices it carries are never
// mutated after publication, so callers may read them without copying.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Begin marks a load in flight and returns a completion handle. The
// handle clears the loading flag on both outcomes and dispatches one
// notification on failure; calling it more than once is a no-op.
func (s *State) Begin() *Completion {
	s.mu.Lock()
	next := s.current
	next.Loading = true
	s.current = next
	s.mu.Unlock()

	return &Completion{state: s}
}

// Completion resolves a load started with Begin.
type Completion struct {
	state *State
	once  sync.Once
}

// Succeed publishes the loaded data and clears the loading flag.
func (c *Completion) Succeed(users []core.User, summary []core.BudgetSummaryRow, chart []core.ChartSlice, txs []core.TransactionRecord) {
	c.once.Do(func() {
		c.state.mu.Lock()
		c.state.current = Snapshot{
			Loading:      false,
			Users:        users,
			Summary:      summary,
			Chart:        chart,
			Transactions: txs,
		}
		c.state.mu.Unlock()
	})
}

// Fail clears the loading flag, keeps the previous data on screen and
// dispatches exactly one notification.
func (c *Completion) Fail(message string) {
	c.once.Do(func() {
		c.state.mu.Lock()
		next := c.state.current
		next.Loading = false
		c.state.current = next
		c.state.mu.Unlock()

		c.state.notifier.Notify(message)
	})
}
