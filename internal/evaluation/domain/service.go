// Package domain defines the evaluation recorder contract: turning one
// submitted questionnaire into ledger rows, exactly once per evaluator,
// supplier, project and review year.
package domain

import (
	"context"
	"errors"
	"time"
)

// SubmitRequest is one complete questionnaire submission.
type SubmitRequest struct {
	UserName string
	Supplier string
	Project  string

	// Votes maps category -> question id -> vote token. A valid
	// submission covers every catalog question exactly once.
	Votes map[string]map[string]string

	// Comments maps category -> optional free text, one per category.
	Comments map[string]string
}

// Receipt describes an accepted submission.
type Receipt struct {
	EvaluationID string    `json:"evaluation_id"`
	Supplier     string    `json:"supplier"`
	SupplierSlug string    `json:"supplier_slug"`
	Project      string    `json:"project,omitempty"`
	Year         int       `json:"year"`
	Records      int       `json:"records"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

type Service interface {
	Submit(context.Context, SubmitRequest) (Receipt, error)
}

var (
	ErrInvalidUser          = errors.New("invalid_user")
	ErrUnknownSupplier      = errors.New("unknown_supplier")
	ErrUnknownQuestion      = errors.New("unknown_question")
	ErrIncompleteSubmission = errors.New("incomplete_submission")
	ErrInvalidVote          = errors.New("invalid_vote")
	ErrDuplicateEvaluation  = errors.New("duplicate_evaluation")
)
