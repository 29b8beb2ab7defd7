package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finch/internal/backend"
	"finch/internal/core"
	"finch/internal/ledger/memory"
	"finch/internal/services"
)

func TestParseCapture(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    core.Transaction
		wantErr bool
	}{
		{
			name: "full arguments",
			args: []string{"2024-03-01", "12.50", "Food", "card", "lunch", "with", "team"},
			want: core.Transaction{
				Date:          core.EncodeDate(core.NewDate(2024, 3, 1)),
				Amount:        1250,
				Category:      "Food",
				PaymentMethod: "card",
				Notes:         "lunch with team",
			},
		},
		{
			name: "minimal arguments",
			args: []string{"2024-03-01", "5", "Transport"},
			want: core.Transaction{
				Date:     core.EncodeDate(core.NewDate(2024, 3, 1)),
				Amount:   500,
				Category: "Transport",
			},
		},
		{name: "too few arguments", args: []string{"2024-03-01", "5"}, wantErr: true},
		{name: "bad date", args: []string{"march first", "5", "Food"}, wantErr: true},
		{name: "bad amount", args: []string{"2024-03-01", "five", "Food"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCapture(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunCommandRecordsAndAmends(t *testing.T) {
	store := memory.NewStore()
	b := &backend.Backend{
		Transactions: store,
		Recorder:     services.NewRecorder(store, nil),
	}
	ctx := context.Background()

	err := runCommand(ctx, []string{"add", "2024-03-01", "12.50", "Food"}, b)
	require.NoError(t, err)

	recorded, err := store.Filtered(ctx, core.FilterSpec{})
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	assert.Equal(t, int64(1250), recorded[0].Amount)

	err = runCommand(ctx, []string{"edit", "1", "2024-03-02", "9.00", "Transport"}, b)
	require.NoError(t, err)

	amended, err := store.Filtered(ctx, core.FilterSpec{})
	require.NoError(t, err)
	require.Len(t, amended, 1)
	assert.Equal(t, "Transport", amended[0].Category)
	assert.Equal(t, int64(900), amended[0].Amount)

	err = runCommand(ctx, []string{"budgets"}, b)
	assert.Error(t, err, "unknown commands are rejected")
}
