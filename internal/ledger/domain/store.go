package domain

import (
	"context"
	"errors"
)

// ErrStorage marks load/save failures of the backing store. A failed
// ReplaceAll leaves the previous ledger state intact.
var ErrStorage = errors.New("storage_error")

// Store owns ledger persistence. The contract is deliberately narrow:
// engines borrow a full snapshot per operation and hand back a complete
// replacement table — there is no partial-append primitive, and concurrent
// writers race last-writer-wins (accepted limitation, serialized only
// in-process).
type Store interface {
	// Load materializes the whole ledger. Schema-tolerant: absent
	// columns read as empty, malformed years coerce to zero; a missing
	// backing file is an empty ledger, not an error.
	Load(ctx context.Context) ([]VoteRecord, error)

	// ReplaceAll overwrites the ledger with the given table,
	// all-or-nothing.
	ReplaceAll(ctx context.Context, records []VoteRecord) error
}
