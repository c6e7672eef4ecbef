// Package domain defines the operator surface over the vote ledger:
// raw record access, participation overview, targeted deletion and purge.
package domain

import (
	"context"
	"errors"

	ledgerdomain "github.com/evalworks/vendoreval/internal/ledger/domain"
)

// EvaluationRef identifies one evaluation to delete. EvaluationID wins when
// set; otherwise the user+supplier+project+year tuple identifies the rows,
// which also covers legacy rows recorded before evaluation ids existed.
type EvaluationRef struct {
	EvaluationID string `json:"evaluation_id"`
	UserName     string `json:"user_name"`
	Supplier     string `json:"supplier"`
	Project      string `json:"project"`
	Year         int    `json:"year"`
}

// Participation summarizes one evaluator's activity.
type Participation struct {
	UserName    string   `json:"user_name"`
	Evaluations int      `json:"evaluations"`
	Suppliers   []string `json:"suppliers"`
}

type Service interface {
	// Records returns the full ledger in storage order.
	Records(ctx context.Context) ([]ledgerdomain.VoteRecord, error)

	// Participation summarizes evaluators in user name order.
	Participation(ctx context.Context) ([]Participation, error)

	// DeleteEvaluation removes every row of the referenced evaluation and
	// reports how many went. Deleting an absent evaluation removes zero
	// rows and is not an error.
	DeleteEvaluation(ctx context.Context, ref EvaluationRef) (int, error)

	// PurgeAll empties the ledger and reports how many rows went. The
	// storage schema survives.
	PurgeAll(ctx context.Context) (int, error)
}

// ErrEmptyRef rejects a deletion request that identifies nothing.
var ErrEmptyRef = errors.New("empty_evaluation_ref")
