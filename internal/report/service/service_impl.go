package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/evalworks/vendoreval/internal/catalog"
	ledgerdomain "github.com/evalworks/vendoreval/internal/ledger/domain"
	"github.com/evalworks/vendoreval/internal/report/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Store   ledgerdomain.Store
	Catalog catalog.Provider
}

type Service struct {
	log     *zap.Logger
	store   ledgerdomain.Store
	catalog catalog.Provider
}

func New(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("report.service"),
		store:   p.Store,
		catalog: p.Catalog,
	}
}

func (s *Service) Averages(ctx context.Context, f Filters) ([]domain.SupplierAverages, error) {
	rows, err := s.filtered(ctx, f)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		sum   float64
		votes int
	}
	perSupplier := map[string]map[string]*bucket{}
	names := map[string]string{}

	doc := s.catalog.Current()
	for _, row := range rows {
		value, counted, err := parseVote(doc, row)
		if err != nil {
			return nil, err
		}
		if !counted {
			continue
		}
		key := strings.ToUpper(row.Supplier)
		if perSupplier[key] == nil {
			perSupplier[key] = map[string]*bucket{}
			names[key] = row.Supplier
		}
		b := perSupplier[key][row.Category]
		if b == nil {
			b = &bucket{}
			perSupplier[key][row.Category] = b
		}
		b.sum += value
		b.votes++
	}

	out := make([]domain.SupplierAverages, 0, len(perSupplier))
	for key, byCategory := range perSupplier {
		entry := domain.SupplierAverages{Supplier: names[key]}
		var sum float64
		categories := make([]string, 0, len(byCategory))
		for category := range byCategory {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		for _, category := range categories {
			b := byCategory[category]
			entry.Categories = append(entry.Categories, domain.CategoryScore{
				Category: category,
				Average:  b.sum / float64(b.votes),
				Votes:    b.votes,
			})
			sum += b.sum
			entry.Votes += b.votes
		}
		if entry.Votes > 0 {
			entry.Overall = sum / float64(entry.Votes)
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Supplier < out[j].Supplier })
	return out, nil
}

func (s *Service) Rankings(ctx context.Context, f Filters) ([]domain.RankedSupplier, error) {
	rows, err := s.filtered(ctx, f)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		name        string
		sum         float64
		votes       int
		evaluations map[string]bool
	}
	buckets := map[string]*bucket{}

	doc := s.catalog.Current()
	for _, row := range rows {
		key := strings.ToUpper(row.Supplier)
		b := buckets[key]
		if b == nil {
			b = &bucket{name: row.Supplier, evaluations: map[string]bool{}}
			buckets[key] = b
		}
		// Rows whose every vote is not-applicable still count as one
		// submitted evaluation.
		b.evaluations[row.EvaluationKey()] = true

		value, counted, err := parseVote(doc, row)
		if err != nil {
			return nil, err
		}
		if counted {
			b.sum += value
			b.votes++
		}
	}

	out := make([]domain.RankedSupplier, 0, len(buckets))
	for _, b := range buckets {
		entry := domain.RankedSupplier{
			Supplier:    b.name,
			Votes:       b.votes,
			Evaluations: len(b.evaluations),
		}
		if b.votes > 0 {
			entry.Mean = b.sum / float64(b.votes)
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Supplier < out[j].Supplier })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Mean > out[j].Mean })
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}

func (s *Service) Years(ctx context.Context) ([]int, error) {
	rows, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[int]bool{}
	for _, row := range rows {
		if row.EvaluationYear != 0 {
			seen[row.EvaluationYear] = true
		}
	}
	years := make([]int, 0, len(seen))
	for year := range seen {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

// Filters is re-exported so handlers can build it without importing two
// packages for one call.
type Filters = domain.Filters

func (s *Service) filtered(ctx context.Context, f Filters) ([]ledgerdomain.VoteRecord, error) {
	rows, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(f.Years) == 0 && len(f.Projects) == 0 && len(f.Suppliers) == 0 {
		return rows, nil
	}

	years := map[int]bool{}
	for _, y := range f.Years {
		years[y] = true
	}
	projects := foldSet(f.Projects)
	suppliers := foldSet(f.Suppliers)

	out := rows[:0:0]
	for _, row := range rows {
		if len(years) > 0 && !years[row.EvaluationYear] {
			continue
		}
		if len(projects) > 0 && !projects[strings.ToUpper(strings.TrimSpace(row.Project))] {
			continue
		}
		if len(suppliers) > 0 && !suppliers[strings.ToUpper(strings.TrimSpace(row.Supplier))] {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func foldSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v = strings.ToUpper(strings.TrimSpace(v)); v != "" {
			set[v] = true
		}
	}
	return set
}

// parseVote turns a ledger token into a score. Not-applicable rows are
// excluded from every average; anything else must parse as an integer in
// the catalog's 1..5 range.
func parseVote(doc *catalog.Document, row ledgerdomain.VoteRecord) (float64, bool, error) {
	token := strings.TrimSpace(row.VoteValue)
	if doc.IsNotApplicable(token) {
		return 0, false, nil
	}
	value, err := strconv.Atoi(token)
	if err != nil || value < 1 || value > 5 {
		return 0, false, fmt.Errorf("%w: %q (supplier %s, question %s)",
			domain.ErrInvalidVoteValue, row.VoteValue, row.Supplier, row.QuestionID)
	}
	return float64(value), true, nil
}
