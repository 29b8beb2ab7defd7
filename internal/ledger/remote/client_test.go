package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finch/internal/core"
	"finch/internal/ledger"
)

func TestFilteredEncodesOnlyConstrainedFields(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode([]any{})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	spec, err := core.FilterInput{Category: "Food", MinAmount: "0"}.Normalize()
	require.NoError(t, err)

	_, err = client.Filtered(context.Background(), spec)
	require.NoError(t, err)

	assert.Equal(t, []string{"Food"}, gotQuery["category"])
	assert.NotContains(t, gotQuery, "min_amount")
	assert.NotContains(t, gotQuery, "start_time")
}

func TestAddReturnsServiceAssignedID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload transactionPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		payload.ID = 42
		json.NewEncoder(w).Encode(payload)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	id, err := client.Add(context.Background(), core.Transaction{
		Date:     core.EncodeDate(core.NewDate(2024, 3, 1)),
		Amount:   1500,
		Category: "Food",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestAcceptInviteMapsKnownReasons(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"reason": "alreadyUsedToken"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	err := client.AcceptInvite(context.Background(), "tok", "alice")

	var redemption *ledger.RedemptionError
	require.ErrorAs(t, err, &redemption)
	assert.Equal(t, ledger.ReasonAlreadyUsedToken, redemption.Reason)
}

func TestAcceptInviteUnknownReasonStaysOpaque(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "database unavailable"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	err := client.AcceptInvite(context.Background(), "tok", "alice")

	require.Error(t, err)
	var redemption *ledger.RedemptionError
	assert.False(t, errors.As(err, &redemption))
	assert.Contains(t, err.Error(), "database unavailable")
}
