package catalog

import (
	"testing"

	"github.com/evalworks/vendoreval/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEmbeddedDocument(t *testing.T) {
	holder, err := NewHolder(config.Config{}, zap.NewNop())
	require.NoError(t, err)

	doc := holder.Current()
	assert.Equal(t, []string{"SAFETY", "QUALITY", "PEOPLE", "DOCUMENTATION"}, doc.CategoryNames())
	assert.Equal(t, 16, doc.TotalQuestions())

	questions, ok := doc.Questions("SAFETY")
	require.True(t, ok)
	require.Len(t, questions, 5)
	assert.Equal(t, "1.1", questions[0].ID)

	q, ok := doc.Question("QUALITY", "2.5")
	require.True(t, ok)
	assert.Equal(t, "Delivery jobs on cost", q.Text)

	_, ok = doc.Question("QUALITY", "9.9")
	assert.False(t, ok)

	assert.True(t, doc.IsVoteToken("3"))
	assert.True(t, doc.IsVoteToken("N/A"))
	assert.True(t, doc.IsNotApplicable(" n/a "))
	assert.False(t, doc.IsVoteToken("6"))
	assert.False(t, doc.IsVoteToken(""))

	assert.Len(t, doc.Rubric("SAFETY", "1.1"), 5)
}

func TestSupplierRoster(t *testing.T) {
	holder, err := NewHolder(config.Config{}, zap.NewNop())
	require.NoError(t, err)

	doc := holder.Current()
	require.NotEmpty(t, doc.Suppliers())

	s, ok := doc.SupplierByName("cave engenharia e obras ltda")
	require.True(t, ok)
	assert.Equal(t, "CAVE ENGENHARIA E OBRAS LTDA", s.Name)
	assert.Equal(t, "cave-engenharia-e-obras-ltda", s.Slug)

	bySlug, ok := doc.SupplierBySlug(s.Slug)
	require.True(t, ok)
	assert.Equal(t, s.Name, bySlug.Name)

	_, ok = doc.SupplierByName("NOT A SUPPLIER")
	assert.False(t, ok)
}

func TestFinalizeRejectsBadDocuments(t *testing.T) {
	base := func() *Document {
		return &Document{
			VoteTokens:    []string{"1", "2", "3", "4", "5"},
			NotApplicable: "N/A",
			Categories: []Category{
				{Name: "SAFETY", Questions: []Question{{ID: "1.1", Text: "q"}}},
			},
			SupplierNames: []string{"ACME"},
		}
	}

	doc := base()
	assert.NoError(t, doc.Finalize())

	doc = base()
	doc.Categories = nil
	assert.ErrorIs(t, doc.Finalize(), ErrNoCategories)

	doc = base()
	doc.Categories[0].Questions = append(doc.Categories[0].Questions, Question{ID: "1.1", Text: "dup"})
	assert.ErrorIs(t, doc.Finalize(), ErrDuplicateEntries)

	doc = base()
	doc.Categories[0].Questions[0].Rubric = []string{"only", "three", "entries"}
	assert.ErrorIs(t, doc.Finalize(), ErrBadRubric)

	doc = base()
	doc.SupplierNames = []string{"ACME", "acme"}
	assert.ErrorIs(t, doc.Finalize(), ErrDuplicateEntries)
}
