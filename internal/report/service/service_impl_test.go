package service

import (
	"context"
	"testing"

	"github.com/evalworks/vendoreval/internal/catalog"
	ledgerdomain "github.com/evalworks/vendoreval/internal/ledger/domain"
	"github.com/evalworks/vendoreval/internal/report/domain"
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

func reportDocument(t *testing.T) *catalog.Document {
	t.Helper()

	doc := &catalog.Document{
		Version:       "test",
		VoteTokens:    []string{"1", "2", "3", "4", "5"},
		NotApplicable: "N/A",
		Categories: []catalog.Category{
			{Name: "C1", Questions: []catalog.Question{{ID: "1.1", Text: "q"}, {ID: "1.2", Text: "q"}}},
			{Name: "C2", Questions: []catalog.Question{{ID: "2.1", Text: "q"}, {ID: "2.2", Text: "q"}}},
		},
		SupplierNames: []string{"ACME", "GLOBEX"},
	}
	require.NoError(t, doc.Finalize())
	return doc
}

func newReportService(t *testing.T, rows []ledgerdomain.VoteRecord) domain.Service {
	t.Helper()
	return New(Params{
		Log:     zap.NewNop(),
		Store:   &memStore{rows: rows},
		Catalog: catalog.Static{Doc: reportDocument(t)},
	})
}

func row(user, eval, supplier, project string, year int, category, question, vote string) ledgerdomain.VoteRecord {
	return ledgerdomain.VoteRecord{
		UserName:       user,
		EvaluationID:   eval,
		EvaluationYear: year,
		Project:        project,
		Supplier:       supplier,
		Category:       category,
		QuestionID:     question,
		VoteValue:      vote,
	}
}

func TestAverages_EndToEndScenario(t *testing.T) {
	svc := newReportService(t, []ledgerdomain.VoteRecord{
		row("ALICE", "E1", "ACME", "P1", 2026, "C1", "1.1", "5"),
		row("ALICE", "E1", "ACME", "P1", 2026, "C1", "1.2", "N/A"),
		row("ALICE", "E1", "ACME", "P1", 2026, "C2", "2.1", "3"),
		row("ALICE", "E1", "ACME", "P1", 2026, "C2", "2.2", "4"),
	})

	averages, err := svc.Averages(context.Background(), domain.Filters{})
	require.NoError(t, err)
	require.Len(t, averages, 1)

	acme := averages[0]
	assert.Equal(t, "ACME", acme.Supplier)
	require.Len(t, acme.Categories, 2)
	assert.Equal(t, "C1", acme.Categories[0].Category)
	assert.InDelta(t, 5.0, acme.Categories[0].Average, 1e-9)
	assert.Equal(t, 1, acme.Categories[0].Votes)
	assert.Equal(t, "C2", acme.Categories[1].Category)
	assert.InDelta(t, 3.5, acme.Categories[1].Average, 1e-9)
	assert.InDelta(t, 4.0, acme.Overall, 1e-9)
	assert.Equal(t, 3, acme.Votes)

	rankings, err := svc.Rankings(context.Background(), domain.Filters{})
	require.NoError(t, err)
	require.Len(t, rankings, 1)
	assert.Equal(t, 1, rankings[0].Rank)
	assert.InDelta(t, 4.0, rankings[0].Mean, 1e-9)
	assert.Equal(t, 3, rankings[0].Votes)
	assert.Equal(t, 1, rankings[0].Evaluations)
}

func TestAverages_EmptyLedger(t *testing.T) {
	svc := newReportService(t, nil)

	averages, err := svc.Averages(context.Background(), domain.Filters{})
	require.NoError(t, err)
	assert.Empty(t, averages)

	rankings, err := svc.Rankings(context.Background(), domain.Filters{})
	require.NoError(t, err)
	assert.Empty(t, rankings)
}

func TestAverages_InvalidVoteValueFailsLoudly(t *testing.T) {
	svc := newReportService(t, []ledgerdomain.VoteRecord{
		row("ALICE", "E1", "ACME", "P1", 2026, "C1", "1.1", "7"),
	})

	_, err := svc.Averages(context.Background(), domain.Filters{})
	require.ErrorIs(t, err, domain.ErrInvalidVoteValue)

	_, err = svc.Rankings(context.Background(), domain.Filters{})
	require.ErrorIs(t, err, domain.ErrInvalidVoteValue)
}

func TestRankings_OrderingAndTies(t *testing.T) {
	svc := newReportService(t, []ledgerdomain.VoteRecord{
		row("ALICE", "E1", "GLOBEX", "P1", 2026, "C1", "1.1", "5"),
		row("ALICE", "E2", "ACME", "P1", 2026, "C1", "1.1", "5"),
		row("BOB", "E3", "ACME", "P1", 2026, "C1", "1.1", "5"),
	})

	rankings, err := svc.Rankings(context.Background(), domain.Filters{})
	require.NoError(t, err)
	require.Len(t, rankings, 2)

	// Equal means keep name order; evaluation counts break nothing.
	assert.Equal(t, 1, rankings[0].Rank)
	assert.Equal(t, "ACME", rankings[0].Supplier)
	assert.Equal(t, 2, rankings[0].Evaluations)
	assert.Equal(t, 2, rankings[1].Rank)
	assert.Equal(t, "GLOBEX", rankings[1].Supplier)
}

func TestRankings_LegacyRowsCollapseByTuple(t *testing.T) {
	// Rows without evaluation ids group on user+supplier+project+year.
	svc := newReportService(t, []ledgerdomain.VoteRecord{
		row("ALICE", "", "ACME", "P1", 2026, "C1", "1.1", "4"),
		row("ALICE", "", "ACME", "P1", 2026, "C1", "1.2", "2"),
		row("BOB", "", "ACME", "P1", 2026, "C1", "1.1", "3"),
	})

	rankings, err := svc.Rankings(context.Background(), domain.Filters{})
	require.NoError(t, err)
	require.Len(t, rankings, 1)
	assert.Equal(t, 2, rankings[0].Evaluations)
	assert.InDelta(t, 3.0, rankings[0].Mean, 1e-9)
}

func TestRankings_AllNotApplicableStillCounts(t *testing.T) {
	svc := newReportService(t, []ledgerdomain.VoteRecord{
		row("ALICE", "E1", "ACME", "P1", 2026, "C1", "1.1", "N/A"),
		row("ALICE", "E1", "ACME", "P1", 2026, "C1", "1.2", "N/A"),
	})

	rankings, err := svc.Rankings(context.Background(), domain.Filters{})
	require.NoError(t, err)
	require.Len(t, rankings, 1)
	assert.Equal(t, 0, rankings[0].Votes)
	assert.InDelta(t, 0.0, rankings[0].Mean, 1e-9)
	assert.Equal(t, 1, rankings[0].Evaluations)
}

func TestFilters(t *testing.T) {
	rows := []ledgerdomain.VoteRecord{
		row("ALICE", "E1", "ACME", "P1", 2025, "C1", "1.1", "5"),
		row("ALICE", "E2", "ACME", "P2", 2026, "C1", "1.1", "1"),
		row("BOB", "E3", "GLOBEX", "P1", 2026, "C1", "1.1", "3"),
	}
	svc := newReportService(t, rows)
	ctx := context.Background()

	averages, err := svc.Averages(ctx, domain.Filters{Years: []int{2025}})
	require.NoError(t, err)
	require.Len(t, averages, 1)
	assert.InDelta(t, 5.0, averages[0].Overall, 1e-9)

	averages, err = svc.Averages(ctx, domain.Filters{Projects: []string{"p1"}})
	require.NoError(t, err)
	require.Len(t, averages, 2)

	averages, err = svc.Averages(ctx, domain.Filters{Suppliers: []string{"globex"}, Years: []int{2026}})
	require.NoError(t, err)
	require.Len(t, averages, 1)
	assert.Equal(t, "GLOBEX", averages[0].Supplier)

	years, err := svc.Years(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2026, 2025}, years)
}
