package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finch/internal/core"
	"finch/internal/ledger"
)

func seedAdmin(s *Store) core.User {
	admin := core.User{ID: "adm-1", Username: "root", Role: core.RoleAdmin}
	s.Seed(admin)
	s.SetCaller(admin.ID)
	return admin
}

func TestFilteredMatchesSpec(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	food := core.Transaction{
		Date:          core.EncodeDate(core.NewDate(2025, 1, 10)),
		Amount:        2500,
		Category:      "Food",
		PaymentMethod: "Cash",
	}
	rent := core.Transaction{
		Date:          core.EncodeDate(core.NewDate(2025, 2, 1)),
		Amount:        90000,
		Category:      "Rent",
		PaymentMethod: "Bank Transfer",
	}
	_, err := s.Add(ctx, food)
	require.NoError(t, err)
	_, err = s.Add(ctx, rent)
	require.NoError(t, err)

	all, err := s.Filtered(ctx, core.FilterSpec{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	spec, err := core.FilterInput{Category: "Food"}.Normalize()
	require.NoError(t, err)
	got, err := s.Filtered(ctx, spec)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Food", got[0].Category)

	spec, err = core.FilterInput{MinAmount: "100"}.Normalize()
	require.NoError(t, err)
	got, err = s.Filtered(ctx, spec)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Rent", got[0].Category)

	// Inverted range yields an empty result, not an error.
	spec, err = core.FilterInput{StartDate: "2025-03-01", EndDate: "2025-01-01"}.Normalize()
	require.NoError(t, err)
	got, err = s.Filtered(ctx, spec)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBudgetsAdminOnly(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.Seed(core.User{ID: "ed-1", Username: "erin", Role: core.RoleEditor})
	s.SetCaller("ed-1")

	err := s.SetBudget(ctx, "Food", 10000)
	assert.ErrorIs(t, err, ErrForbidden)

	seedAdmin(s)
	require.NoError(t, s.SetBudget(ctx, "Food", 10000))
	require.NoError(t, s.SetBudget(ctx, "Food", 12000)) // upsert

	budgets, err := s.ListBudgets(ctx)
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.Equal(t, int64(12000), budgets[0].Amount)

	require.NoError(t, s.DeleteBudget(ctx, "Food"))
	budgets, err = s.ListBudgets(ctx)
	require.NoError(t, err)
	assert.Empty(t, budgets)
}

func TestSummaryMatchesLocalAggregation(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedAdmin(s)
	require.NoError(t, s.SetBudget(ctx, "Food", 10000))

	for _, amount := range []int64{3000, 2000} {
		_, err := s.Add(ctx, core.Transaction{
			Date: core.EncodeDate(core.NewDate(2025, 1, 5)), Amount: amount, Category: "Food",
		})
		require.NoError(t, err)
	}

	rows, err := s.Summary(ctx)
	require.NoError(t, err)

	budgets, err := s.ListBudgets(ctx)
	require.NoError(t, err)
	txs, err := s.Filtered(ctx, core.FilterSpec{})
	require.NoError(t, err)

	assert.Equal(t, core.Summarize(budgets, txs), rows)
	require.Len(t, rows, 1)
	assert.Equal(t, core.BudgetSummaryRow{Category: "Food", Budget: 10000, Spent: 5000, Remaining: 5000}, rows[0])
}

func TestInviteLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedAdmin(s)

	token, err := s.GenerateInviteLink(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	s.SetCaller("new-identity")

	// Short username rejects without consuming the token.
	err = s.AcceptInvite(ctx, token, "ab")
	var rerr *ledger.RedemptionError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, ledger.ReasonShortUsername, rerr.Reason)

	require.NoError(t, s.AcceptInvite(ctx, token, "newbie"))

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, core.RoleEditor, users[1].Role)

	// Consumed flips exactly once; every retry is rejected the same way.
	s.SetCaller("another-identity")
	for i := 0; i < 3; i++ {
		err = s.AcceptInvite(ctx, token, "another")
		require.True(t, errors.As(err, &rerr))
		assert.Equal(t, ledger.ReasonAlreadyUsedToken, rerr.Reason)
	}
}

func TestInviteExpiryCheckedBeforeConsumed(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedAdmin(s)

	token, err := s.GenerateInviteLink(ctx)
	require.NoError(t, err)

	s.SetClock(func() time.Time { return time.Now().Add(8 * 24 * time.Hour) })
	s.SetCaller("late-identity")

	err = s.AcceptInvite(ctx, token, "latecomer")
	var rerr *ledger.RedemptionError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, ledger.ReasonExpiredToken, rerr.Reason)
}

func TestInviteUnknownTokenAndAlreadyRegistered(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	admin := seedAdmin(s)

	var rerr *ledger.RedemptionError
	err := s.AcceptInvite(ctx, "bogus", "whoever")
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, ledger.ReasonInvalidToken, rerr.Reason)

	token, err := s.GenerateInviteLink(ctx)
	require.NoError(t, err)
	s.SetCaller(admin.ID)
	err = s.AcceptInvite(ctx, token, "rootagain")
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, ledger.ReasonAlreadyRegistered, rerr.Reason)
}

func TestGenerateInviteRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.Seed(core.User{ID: "ed-1", Username: "erin", Role: core.RoleEditor})
	s.SetCaller("ed-1")

	_, err := s.GenerateInviteLink(ctx)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRevokeAccess(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedAdmin(s)
	s.Seed(core.User{ID: "ed-1", Username: "erin", Role: core.RoleEditor})

	require.NoError(t, s.RevokeAccess(ctx, "ed-1"))
	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	assert.Error(t, s.RevokeAccess(ctx, "ed-1"))
}
