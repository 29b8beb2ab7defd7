package core

import (
	"testing"
)

func TestSummarize(t *testing.T) {
	budgets := []BudgetEntry{{Category: "Food", Amount: 10000}}
	txs := []TransactionRecord{
		{ID: 1, Transaction: Transaction{Category: "Food", Amount: 3000}},
		{ID: 2, Transaction: Transaction{Category: "Food", Amount: 2000}},
	}

	rows := Summarize(budgets, txs)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	want := BudgetSummaryRow{Category: "Food", Budget: 10000, Spent: 5000, Remaining: 5000}
	if rows[0] != want {
		t.Fatalf("row = %+v, want %+v", rows[0], want)
	}
}

func TestSummarizeUnbudgetedCategory(t *testing.T) {
	txs := []TransactionRecord{
		{ID: 1, Transaction: Transaction{Category: "Travel", Amount: 4200}},
	}
	rows := Summarize(nil, txs)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	want := BudgetSummaryRow{Category: "Travel", Budget: 0, Spent: 4200, Remaining: -4200}
	if rows[0] != want {
		t.Fatalf("row = %+v, want %+v", rows[0], want)
	}
}

func TestSummarizeEncounterOrder(t *testing.T) {
	budgets := []BudgetEntry{
		{Category: "Rent", Amount: 90000},
		{Category: "Food", Amount: 10000},
	}
	txs := []TransactionRecord{
		{ID: 1, Transaction: Transaction{Category: "Travel", Amount: 100}},
		{ID: 2, Transaction: Transaction{Category: "Food", Amount: 200}},
		{ID: 3, Transaction: Transaction{Category: "Coffee", Amount: 300}},
		{ID: 4, Transaction: Transaction{Category: "Travel", Amount: 400}},
	}

	rows := Summarize(budgets, txs)
	got := make([]string, len(rows))
	for i, r := range rows {
		got[i] = r.Category
	}
	want := []string{"Rent", "Food", "Travel", "Coffee"}
	if len(got) != len(want) {
		t.Fatalf("categories = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("categories = %v, want %v", got, want)
		}
	}
}

func TestSummarizeNegativeAmounts(t *testing.T) {
	budgets := []BudgetEntry{{Category: "Food", Amount: 1000}}
	txs := []TransactionRecord{
		{ID: 1, Transaction: Transaction{Category: "Food", Amount: 2500}},
		{ID: 2, Transaction: Transaction{Category: "Food", Amount: -500}}, // refund
	}
	rows := Summarize(budgets, txs)
	if rows[0].Spent != 2000 || rows[0].Remaining != -1000 {
		t.Fatalf("row = %+v", rows[0])
	}
}

func TestChartProjection(t *testing.T) {
	rows := []BudgetSummaryRow{
		{Category: "Food", Budget: 10000, Spent: 5000, Remaining: 5000},
		{Category: "Travel", Budget: 0, Spent: 4242, Remaining: -4242},
	}
	slices := ChartProjection(rows)
	if len(slices) != 2 {
		t.Fatalf("expected 2 slices, got %d", len(slices))
	}
	if slices[0].Label != "Food" || slices[0].Value != 50.00 {
		t.Fatalf("slice 0 = %+v", slices[0])
	}
	if slices[1].Label != "Travel" || slices[1].Value != 42.42 {
		t.Fatalf("slice 1 = %+v", slices[1])
	}
}
