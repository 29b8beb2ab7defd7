package core

type (
	// BudgetSummaryRow is the per-category line of the spending summary.
	// Remaining is always Budget minus Spent and may be negative; it is
	// derived here and never stored.
	BudgetSummaryRow struct {
		Category  string
		Budget    int64
		Spent     int64
		Remaining int64
	}

	// ChartSlice is the display-only projection of a summary row used
	// for charting. Value is in display units; the projection is lossy
	// and must not feed back into aggregation.
	ChartSlice struct {
		Label string
		Value float64
	}
)

// Summarize combines budgets and the filtered transaction set into
// summary rows. Summation stays in integer minor units throughout so
// large transaction counts cannot drift at the cent level.
//
// Rows appear in encounter order: budgeted categories in the order the
// ledger service returned them, then categories that only occur in
// transactions, in first-seen order. No sort is applied.
func Summarize(budgets []BudgetEntry, txs []TransactionRecord) []BudgetSummaryRow {
	spent := make(map[string]int64, len(budgets))
	order := make([]string, 0, len(budgets))
	budgeted := make(map[string]int64, len(budgets))

	for _, b := range budgets {
		if _, ok := budgeted[b.Category]; ok {
			continue
		}
		budgeted[b.Category] = b.Amount
		order = append(order, b.Category)
	}
	for _, tx := range txs {
		if _, seen := spent[tx.Category]; !seen {
			if _, ok := budgeted[tx.Category]; !ok {
				order = append(order, tx.Category)
			}
		}
		spent[tx.Category] += tx.Amount
	}

	rows := make([]BudgetSummaryRow, 0, len(order))
	for _, category := range order {
		budget := budgeted[category]
		s := spent[category]
		rows = append(rows, BudgetSummaryRow{
			Category:  category,
			Budget:    budget,
			Spent:     s,
			Remaining: budget - s,
		})
	}
	return rows
}

// ChartProjection derives label/value pairs for visualization from
// summary rows.
func ChartProjection(rows []BudgetSummaryRow) []ChartSlice {
	slices := make([]ChartSlice, len(rows))
	for i, row := range rows {
		slices[i] = ChartSlice{
			Label: row.Category,
			Value: ToDisplay(row.Spent),
		}
	}
	return slices
}
