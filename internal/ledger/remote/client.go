// Package remote is the HTTP adapter for the ledger service. It speaks
// the service's JSON API and authenticates every request with the
// OAuth-backed http.Client supplied by the identity provider.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"finch/internal/core"
	"finch/internal/ledger"
)

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a ledger client against baseURL. httpClient should
// come from identity.OAuthProvider.HTTPClient so requests carry the
// caller's bearer token; pass nil for an unauthenticated client.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

type userPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type transactionPayload struct {
	ID            int64  `json:"id,omitempty"`
	Date          int64  `json:"date"`
	Amount        int64  `json:"amount"`
	Category      string `json:"category"`
	PaymentMethod string `json:"payment_method"`
	Notes         string `json:"notes"`
}

type budgetPayload struct {
	Category string `json:"category"`
	Amount   int64  `json:"amount"`
}

type summaryRowPayload struct {
	Category  string `json:"category"`
	Budget    int64  `json:"budget"`
	Spent     int64  `json:"spent"`
	Remaining int64  `json:"remaining"`
}

type errorPayload struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func (c *Client) ListUsers(ctx context.Context) ([]core.User, error) {
	var payload []userPayload
	if err := c.do(ctx, http.MethodGet, "/v1/users", nil, &payload); err != nil {
		return nil, err
	}
	users := make([]core.User, 0, len(payload))
	for _, u := range payload {
		users = append(users, core.User{
			ID:       u.ID,
			Username: u.Username,
			Role:     core.Role(u.Role),
		})
	}
	return users, nil
}

func (c *Client) RevokeAccess(ctx context.Context, identityID string) error {
	path := "/v1/users/" + url.PathEscape(identityID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) Filtered(ctx context.Context, spec core.FilterSpec) ([]core.TransactionRecord, error) {
	q := url.Values{}
	if spec.StartTime != nil {
		q.Set("start_time", fmt.Sprintf("%d", *spec.StartTime))
	}
	if spec.EndTime != nil {
		q.Set("end_time", fmt.Sprintf("%d", *spec.EndTime))
	}
	if spec.MinAmount != nil {
		q.Set("min_amount", fmt.Sprintf("%d", *spec.MinAmount))
	}
	if spec.MaxAmount != nil {
		q.Set("max_amount", fmt.Sprintf("%d", *spec.MaxAmount))
	}
	if spec.Category != nil {
		q.Set("category", *spec.Category)
	}
	if spec.PaymentMethod != nil {
		q.Set("payment_method", *spec.PaymentMethod)
	}

	path := "/v1/transactions"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var payload []transactionPayload
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	records := make([]core.TransactionRecord, 0, len(payload))
	for _, t := range payload {
		records = append(records, core.TransactionRecord{
			ID: t.ID,
			Transaction: core.Transaction{
				Date:          t.Date,
				Amount:        t.Amount,
				Category:      t.Category,
				PaymentMethod: t.PaymentMethod,
				Notes:         t.Notes,
			},
		})
	}
	return records, nil
}

func (c *Client) Add(ctx context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}
	body := transactionPayload{
		Date:          tx.Date,
		Amount:        tx.Amount,
		Category:      tx.Category,
		PaymentMethod: tx.PaymentMethod,
		Notes:         tx.Notes,
	}
	var created transactionPayload
	if err := c.do(ctx, http.MethodPost, "/v1/transactions", body, &created); err != nil {
		return 0, err
	}
	return created.ID, nil
}

func (c *Client) Update(ctx context.Context, id int64, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	body := transactionPayload{
		Date:          tx.Date,
		Amount:        tx.Amount,
		Category:      tx.Category,
		PaymentMethod: tx.PaymentMethod,
		Notes:         tx.Notes,
	}
	path := fmt.Sprintf("/v1/transactions/%d", id)
	return c.do(ctx, http.MethodPut, path, body, nil)
}

func (c *Client) ListBudgets(ctx context.Context) ([]core.BudgetEntry, error) {
	var payload []budgetPayload
	if err := c.do(ctx, http.MethodGet, "/v1/budgets", nil, &payload); err != nil {
		return nil, err
	}
	budgets := make([]core.BudgetEntry, 0, len(payload))
	for _, b := range payload {
		budgets = append(budgets, core.BudgetEntry{Category: b.Category, Amount: b.Amount})
	}
	return budgets, nil
}

func (c *Client) Summary(ctx context.Context) ([]core.BudgetSummaryRow, error) {
	var payload []summaryRowPayload
	if err := c.do(ctx, http.MethodGet, "/v1/budgets/summary", nil, &payload); err != nil {
		return nil, err
	}
	rows := make([]core.BudgetSummaryRow, 0, len(payload))
	for _, r := range payload {
		rows = append(rows, core.BudgetSummaryRow{
			Category:  r.Category,
			Budget:    r.Budget,
			Spent:     r.Spent,
			Remaining: r.Remaining,
		})
	}
	return rows, nil
}

func (c *Client) SetBudget(ctx context.Context, category string, amount int64) error {
	return c.do(ctx, http.MethodPut, "/v1/budgets", budgetPayload{Category: category, Amount: amount}, nil)
}

func (c *Client) DeleteBudget(ctx context.Context, category string) error {
	path := "/v1/budgets/" + url.PathEscape(category)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) GenerateInviteLink(ctx context.Context) (string, error) {
	var payload struct {
		Link string `json:"link"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/invites", nil, &payload); err != nil {
		return "", err
	}
	return payload.Link, nil
}

// AcceptInvite maps a 4xx reason from the service onto
// *ledger.RedemptionError so the redemption flow can show the right
// message; unknown reasons stay opaque.
func (c *Client) AcceptInvite(ctx context.Context, token, username string) error {
	body := struct {
		Token    string `json:"token"`
		Username string `json:"username"`
	}{Token: token, Username: username}
	return c.do(ctx, http.MethodPost, "/v1/invites/accept", body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.decodeError(resp, method, path)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) decodeError(resp *http.Response, method, path string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var payload errorPayload
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Reason != "" {
		if reason := ledger.RedemptionReason(payload.Reason); reason.Known() {
			return &ledger.RedemptionError{Reason: reason}
		}
	}
	if payload.Error != "" {
		return fmt.Errorf("%s %s: %s (status %d)", method, path, payload.Error, resp.StatusCode)
	}
	return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
}

var (
	_ ledger.UserDirectory    = (*Client)(nil)
	_ ledger.TransactionStore = (*Client)(nil)
	_ ledger.BudgetStore      = (*Client)(nil)
	_ ledger.InviteService    = (*Client)(nil)
)
