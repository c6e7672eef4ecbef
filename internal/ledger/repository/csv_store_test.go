package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/evalworks/vendoreval/internal/ledger/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCSVStore_MissingFileLoadsEmpty(t *testing.T) {
	store := NewCSVStore(filepath.Join(t.TempDir(), "votes.csv"), zap.NewNop())

	records, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCSVStore_ReplaceAllRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "votes.csv")
	store := NewCSVStore(path, zap.NewNop())

	in := []domain.VoteRecord{
		{
			UserName:       "ALICE",
			EvaluationID:   "01JD0000000000000000000001",
			EvaluationYear: 2026,
			Project:        "C-1001 - NEW LINE",
			Supplier:       "ACME",
			Category:       "SAFETY",
			QuestionID:     "1.1",
			QuestionText:   "Accidents / near miss",
			VoteValue:      "5",
			Comment:        "solid crew, no incidents",
		},
		{
			UserName:       "ALICE",
			EvaluationID:   "01JD0000000000000000000001",
			EvaluationYear: 2026,
			Project:        "C-1001 - NEW LINE",
			Supplier:       "ACME",
			Category:       "SAFETY",
			QuestionID:     "1.2",
			QuestionText:   "Work Permit (LTR, PPT) performance",
			VoteValue:      "N/A",
		},
	}
	require.NoError(t, store.ReplaceAll(context.Background(), in))

	out, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, in, out)

	// Second rewrite overwrites, not appends.
	require.NoError(t, store.ReplaceAll(context.Background(), in[:1]))
	out, err = store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "1.1", out[0].QuestionID)
}

func TestCSVStore_SchemaTolerantLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "votes.csv")

	// A legacy file: no evaluation_id/year/project columns, one short row,
	// one malformed year.
	legacy := "user_name,supplier,category,question_id,question_text,vote_value,comment\n" +
		"BOB,ACME,SAFETY,1.1,Accidents / near miss,4,\n" +
		"BOB,ACME,SAFETY,1.2,Work Permit,3\n"
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	store := NewCSVStore(path, zap.NewNop())
	records, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "BOB", records[0].UserName)
	assert.Equal(t, "", records[0].EvaluationID)
	assert.Equal(t, 0, records[0].EvaluationYear)
	assert.Equal(t, "4", records[0].VoteValue)
	assert.Equal(t, "", records[1].Comment)

	badYear := "user_name,evaluation_year,supplier,category,question_id,vote_value\n" +
		"BOB,20x6,ACME,SAFETY,1.1,4\n"
	require.NoError(t, os.WriteFile(path, []byte(badYear), 0o644))
	records, err = store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 0, records[0].EvaluationYear)
}
