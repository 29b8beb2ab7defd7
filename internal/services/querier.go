package services

import (
	"context"
	"sync/atomic"

	"finch/internal/core"
	"finch/internal/ledger"
)

// QueryResult is one completed filtered query, tagged with the
// sequence number of the request that produced it.
type QueryResult struct {
	Seq     uint64
	Spec    core.FilterSpec
	Records []core.TransactionRecord
}

// Querier runs filtered transaction queries. Each dispatched request
// gets a monotonically increasing sequence number; results from
// superseded requests are rejected by Apply, so out-of-order
// completions can never clobber a newer result.
type Querier struct {
	store   ledger.TransactionStore
	seq     atomic.Uint64
	applied atomic.Uint64
}

func NewQuerier(store ledger.TransactionStore) *Querier {
	return &Querier{store: store}
}

// Query normalizes the raw input and runs the query. Invalid input
// fails before anything is dispatched: no sequence number is consumed
// and the store is never called.
func (q *Querier) Query(ctx context.Context, in core.FilterInput) (QueryResult, error) {
	spec, err := in.Normalize()
	if err != nil {
		return QueryResult{}, err
	}

	seq := q.seq.Add(1)
	records, err := q.store.Filtered(ctx, spec)
	if err != nil {
		return QueryResult{}, err
	}

	return QueryResult{Seq: seq, Spec: spec, Records: records}, nil
}

// Apply reports whether the result is still current and, if so, marks
// it applied. A result loses to any result from a later request, and
// to the mere existence of a later dispatched request.
func (q *Querier) Apply(res QueryResult) bool {
	if res.Seq != q.seq.Load() {
		return false
	}
	for {
		applied := q.applied.Load()
		if res.Seq <= applied {
			return false
		}
		if q.applied.CompareAndSwap(applied, res.Seq) {
			return true
		}
	}
}
