// Package domain defines the read side of the vote ledger: per-supplier
// category averages and the supplier ranking.
package domain

import (
	"context"
	"errors"
)

// Filters narrows a report to a slice of the ledger. Empty fields match
// everything. Supplier and project matching is case-insensitive.
type Filters struct {
	Years     []int
	Projects  []string
	Suppliers []string
}

// CategoryScore is the mean of one supplier's numeric votes in one category.
type CategoryScore struct {
	Category string  `json:"category"`
	Average  float64 `json:"average"`
	Votes    int     `json:"votes"`
}

// SupplierAverages aggregates one supplier across the filtered ledger.
type SupplierAverages struct {
	Supplier   string          `json:"supplier"`
	Categories []CategoryScore `json:"categories"`
	Overall    float64         `json:"overall"`
	// Votes counts the numeric votes behind Overall; not-applicable
	// entries never count.
	Votes int `json:"votes"`
}

// RankedSupplier is one row of the ranking table.
type RankedSupplier struct {
	Rank        int     `json:"rank"`
	Supplier    string  `json:"supplier"`
	Mean        float64 `json:"mean"`
	Votes       int     `json:"votes"`
	Evaluations int     `json:"evaluations"`
}

type Service interface {
	// Averages returns one entry per supplier present in the filtered
	// ledger, in supplier name order. An empty ledger yields an empty
	// slice, not an error.
	Averages(ctx context.Context, f Filters) ([]SupplierAverages, error)

	// Rankings orders suppliers by descending mean vote. Ties keep
	// supplier name order. Ranks are 1-based.
	Rankings(ctx context.Context, f Filters) ([]RankedSupplier, error)

	// Years lists the distinct evaluation years in the ledger, descending.
	Years(ctx context.Context) ([]int, error)
}

// ErrInvalidVoteValue flags a ledger row whose vote token is neither
// numeric 1..5 nor the not-applicable sentinel. Reports fail loudly
// instead of guessing.
var ErrInvalidVoteValue = errors.New("invalid_vote_value")
