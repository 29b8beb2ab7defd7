// Package sqlite is the offline ledger: transactions captured while
// the remote service is unreachable land here and are pushed out later
// by the sync worker. It implements the same transaction and budget
// ports as the remote adapter so the rest of the client cannot tell
// the difference.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"finch/internal/core"
	"finch/internal/ledger"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned for unknown local row ids.
var ErrNotFound = errors.New("no such row")

// PendingTransaction is a locally captured row awaiting sync. Synced
// is set once the remote ledger has accepted the row.
type PendingTransaction struct {
	LocalID int64
	Synced  bool
	core.Transaction
}

type Store struct {
	db *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Add(ctx context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (date_ns, amount_cents, category, payment_method, notes)
		 VALUES (?, ?, ?, ?, ?)`,
		tx.Date, tx.Amount, tx.Category, tx.PaymentMethod, tx.Notes)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction captured locally",
		"local_id", id,
		"category", tx.Category,
		"amount_cents", tx.Amount)

	return id, nil
}

func (s *Store) Update(ctx context.Context, id int64, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions
		 SET date_ns = ?, amount_cents = ?, category = ?, payment_method = ?, notes = ?, synced = 0
		 WHERE id = ?`,
		tx.Date, tx.Amount, tx.Category, tx.PaymentMethod, tx.Notes, id)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Filtered applies the canonical filter in SQL; nil fields add no
// predicate, so an empty filter returns everything in insert order.
func (s *Store) Filtered(ctx context.Context, spec core.FilterSpec) ([]core.TransactionRecord, error) {
	var (
		clauses []string
		args    []any
	)
	if spec.StartTime != nil {
		clauses = append(clauses, "date_ns >= ?")
		args = append(args, *spec.StartTime)
	}
	if spec.EndTime != nil {
		clauses = append(clauses, "date_ns <= ?")
		args = append(args, *spec.EndTime)
	}
	if spec.MinAmount != nil {
		clauses = append(clauses, "amount_cents >= ?")
		args = append(args, *spec.MinAmount)
	}
	if spec.MaxAmount != nil {
		clauses = append(clauses, "amount_cents <= ?")
		args = append(args, *spec.MaxAmount)
	}
	if spec.Category != nil {
		clauses = append(clauses, "category = ?")
		args = append(args, *spec.Category)
	}
	if spec.PaymentMethod != nil {
		clauses = append(clauses, "payment_method = ?")
		args = append(args, *spec.PaymentMethod)
	}

	query := `SELECT id, date_ns, amount_cents, category, payment_method, notes FROM transactions`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.TransactionRecord
	for rows.Next() {
		var rec core.TransactionRecord
		if err := rows.Scan(&rec.ID, &rec.Date, &rec.Amount, &rec.Category, &rec.PaymentMethod, &rec.Notes); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) ListBudgets(ctx context.Context) ([]core.BudgetEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, amount_cents FROM budgets ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var out []core.BudgetEntry
	for rows.Next() {
		var b core.BudgetEntry
		if err := rows.Scan(&b.Category, &b.Amount); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Summary aggregates through core.Summarize over the local rows so the
// arithmetic is byte-for-byte the same as the service's pre-aggregated
// path.
func (s *Store) Summary(ctx context.Context) ([]core.BudgetSummaryRow, error) {
	budgets, err := s.ListBudgets(ctx)
	if err != nil {
		return nil, err
	}
	txs, err := s.Filtered(ctx, core.FilterSpec{})
	if err != nil {
		return nil, err
	}
	return core.Summarize(budgets, txs), nil
}

func (s *Store) SetBudget(ctx context.Context, category string, amount int64) error {
	if strings.TrimSpace(category) == "" {
		return errors.New("empty category")
	}
	if amount < 0 {
		return core.ErrInvalidAmount
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budgets (category, amount_cents, position)
		 VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM budgets))
		 ON CONFLICT(category) DO UPDATE SET amount_cents = excluded.amount_cents`,
		category, amount)
	if err != nil {
		return fmt.Errorf("set budget: %w", err)
	}
	return nil
}

func (s *Store) DeleteBudget(ctx context.Context, category string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM budgets WHERE category = ?`, category)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Get loads one locally captured row by its local id, including its
// sync flag so callers can tell an already pushed row apart from a
// pending one.
func (s *Store) Get(ctx context.Context, localID int64) (PendingTransaction, error) {
	var p PendingTransaction
	err := s.db.QueryRowContext(ctx,
		`SELECT id, synced, date_ns, amount_cents, category, payment_method, notes
		 FROM transactions WHERE id = ?`, localID).
		Scan(&p.LocalID, &p.Synced, &p.Date, &p.Amount, &p.Category, &p.PaymentMethod, &p.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return PendingTransaction{}, ErrNotFound
	}
	if err != nil {
		return PendingTransaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return p, nil
}

// PendingSync lists unsynced rows, oldest first.
func (s *Store) PendingSync(ctx context.Context, limit int) ([]PendingTransaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date_ns, amount_cents, category, payment_method, notes
		 FROM transactions WHERE synced = 0 ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending: %w", err)
	}
	defer rows.Close()

	var out []PendingTransaction
	for rows.Next() {
		var p PendingTransaction
		if err := rows.Scan(&p.LocalID, &p.Date, &p.Amount, &p.Category, &p.PaymentMethod, &p.Notes); err != nil {
			return nil, fmt.Errorf("scan pending: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkSynced records the remote id the ledger service assigned.
func (s *Store) MarkSynced(ctx context.Context, localID, remoteID int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET synced = 1, remote_id = ? WHERE id = ?`, remoteID, localID)
	if err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

var (
	_ ledger.TransactionStore = (*Store)(nil)
	_ ledger.BudgetStore      = (*Store)(nil)
)
