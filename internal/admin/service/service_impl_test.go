package service

import (
	"context"
	"testing"

	"github.com/evalworks/vendoreval/internal/admin/domain"
	ledgerdomain "github.com/evalworks/vendoreval/internal/ledger/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memStore struct {
	rows []ledgerdomain.VoteRecord
}

func (m *memStore) Load(context.Context) ([]ledgerdomain.VoteRecord, error) {
	return m.rows, nil
}

func (m *memStore) ReplaceAll(_ context.Context, rows []ledgerdomain.VoteRecord) error {
	m.rows = rows
	return nil
}

func row(user, eval, supplier, project string, year int, question string) ledgerdomain.VoteRecord {
	return ledgerdomain.VoteRecord{
		UserName:       user,
		EvaluationID:   eval,
		EvaluationYear: year,
		Project:        project,
		Supplier:       supplier,
		Category:       "C1",
		QuestionID:     question,
		VoteValue:      "4",
	}
}

func newAdminService(rows []ledgerdomain.VoteRecord) (domain.Service, *memStore) {
	store := &memStore{rows: rows}
	return New(Params{Log: zap.NewNop(), Store: store}), store
}

func TestDeleteEvaluation_ByID(t *testing.T) {
	svc, store := newAdminService([]ledgerdomain.VoteRecord{
		row("ALICE", "E1", "ACME", "P1", 2026, "1.1"),
		row("ALICE", "E1", "ACME", "P1", 2026, "1.2"),
		row("BOB", "E2", "ACME", "P1", 2026, "1.1"),
	})
	ctx := context.Background()

	removed, err := svc.DeleteEvaluation(ctx, domain.EvaluationRef{EvaluationID: "E1"})
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	require.Len(t, store.rows, 1)
	assert.Equal(t, "BOB", store.rows[0].UserName)

	// Second delete of the same id is a no-op.
	removed, err = svc.DeleteEvaluation(ctx, domain.EvaluationRef{EvaluationID: "E1"})
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
	assert.Len(t, store.rows, 1)
}

func TestDeleteEvaluation_ByTupleCoversLegacyRows(t *testing.T) {
	svc, store := newAdminService([]ledgerdomain.VoteRecord{
		row("ALICE", "", "ACME", "P1", 2026, "1.1"),
		row("ALICE", "", "ACME", "P1", 2026, "1.2"),
		row("ALICE", "", "ACME", "P2", 2026, "1.1"),
		row("BOB", "", "ACME", "P1", 2026, "1.1"),
	})

	removed, err := svc.DeleteEvaluation(context.Background(), domain.EvaluationRef{
		UserName: " alice ",
		Supplier: "acme",
		Project:  "p1",
		Year:     2026,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	// Other projects and other users survive, order preserved.
	require.Len(t, store.rows, 2)
	assert.Equal(t, "P2", store.rows[0].Project)
	assert.Equal(t, "BOB", store.rows[1].UserName)
}

func TestDeleteEvaluation_EmptyRef(t *testing.T) {
	svc, _ := newAdminService(nil)

	_, err := svc.DeleteEvaluation(context.Background(), domain.EvaluationRef{})
	require.ErrorIs(t, err, domain.ErrEmptyRef)

	_, err = svc.DeleteEvaluation(context.Background(), domain.EvaluationRef{UserName: "ALICE"})
	require.ErrorIs(t, err, domain.ErrEmptyRef)
}

func TestPurgeAll(t *testing.T) {
	svc, store := newAdminService([]ledgerdomain.VoteRecord{
		row("ALICE", "E1", "ACME", "P1", 2026, "1.1"),
		row("BOB", "E2", "GLOBEX", "P1", 2026, "1.1"),
	})
	ctx := context.Background()

	removed, err := svc.PurgeAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Empty(t, store.rows)

	removed, err = svc.PurgeAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestParticipation(t *testing.T) {
	svc, _ := newAdminService([]ledgerdomain.VoteRecord{
		row("ALICE", "E1", "ACME", "P1", 2026, "1.1"),
		row("ALICE", "E1", "ACME", "P1", 2026, "1.2"),
		row("ALICE", "E2", "GLOBEX", "P1", 2026, "1.1"),
		row("BOB", "", "ACME", "P1", 2026, "1.1"),
		row("BOB", "", "ACME", "P1", 2026, "1.2"),
	})

	participation, err := svc.Participation(context.Background())
	require.NoError(t, err)
	require.Len(t, participation, 2)

	assert.Equal(t, "ALICE", participation[0].UserName)
	assert.Equal(t, 2, participation[0].Evaluations)
	assert.Equal(t, []string{"ACME", "GLOBEX"}, participation[0].Suppliers)

	// Legacy rows without ids collapse to one evaluation per tuple.
	assert.Equal(t, "BOB", participation[1].UserName)
	assert.Equal(t, 1, participation[1].Evaluations)
}
