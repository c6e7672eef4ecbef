package service

import (
	"context"
	"sort"
	"strings"

	"github.com/evalworks/vendoreval/internal/admin/domain"
	ledgerdomain "github.com/evalworks/vendoreval/internal/ledger/domain"
	"github.com/evalworks/vendoreval/internal/observability/metrics"
	"github.com/evalworks/vendoreval/internal/userctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Store   ledgerdomain.Store
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	store   ledgerdomain.Store
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("admin.service"),
		store:   p.Store,
		metrics: p.Metrics,
	}
}

func (s *Service) Records(ctx context.Context) ([]ledgerdomain.VoteRecord, error) {
	return s.store.Load(ctx)
}

func (s *Service) Participation(ctx context.Context) ([]domain.Participation, error) {
	rows, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	type activity struct {
		evaluations map[string]bool
		suppliers   map[string]bool
	}
	perUser := map[string]*activity{}
	for _, row := range rows {
		a := perUser[row.UserName]
		if a == nil {
			a = &activity{evaluations: map[string]bool{}, suppliers: map[string]bool{}}
			perUser[row.UserName] = a
		}
		a.evaluations[row.EvaluationKey()] = true
		a.suppliers[row.Supplier] = true
	}

	out := make([]domain.Participation, 0, len(perUser))
	for user, a := range perUser {
		suppliers := make([]string, 0, len(a.suppliers))
		for supplier := range a.suppliers {
			suppliers = append(suppliers, supplier)
		}
		sort.Strings(suppliers)
		out = append(out, domain.Participation{
			UserName:    user,
			Evaluations: len(a.evaluations),
			Suppliers:   suppliers,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserName < out[j].UserName })
	return out, nil
}

func (s *Service) DeleteEvaluation(ctx context.Context, ref domain.EvaluationRef) (int, error) {
	match, err := matcher(ref)
	if err != nil {
		return 0, err
	}

	rows, err := s.store.Load(ctx)
	if err != nil {
		return 0, err
	}

	kept := make([]ledgerdomain.VoteRecord, 0, len(rows))
	removed := 0
	for _, row := range rows {
		if match(row) {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	if removed == 0 {
		return 0, nil
	}

	if err := s.store.ReplaceAll(ctx, kept); err != nil {
		if s.metrics != nil {
			s.metrics.RecordLedgerRewrite("error")
		}
		return 0, err
	}
	if s.metrics != nil {
		s.metrics.RecordLedgerRewrite("ok")
		s.metrics.RecordDeletion(removed)
	}

	s.log.Info("evaluation deleted",
		zap.String("evaluation_id", ref.EvaluationID),
		zap.String("user", ref.UserName),
		zap.String("supplier", ref.Supplier),
		zap.Int("rows_removed", removed),
	)
	return removed, nil
}

func (s *Service) PurgeAll(ctx context.Context) (int, error) {
	rows, err := s.store.Load(ctx)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	if err := s.store.ReplaceAll(ctx, nil); err != nil {
		if s.metrics != nil {
			s.metrics.RecordLedgerRewrite("error")
		}
		return 0, err
	}
	if s.metrics != nil {
		s.metrics.RecordLedgerRewrite("ok")
	}

	s.log.Warn("ledger purged", zap.Int("rows_removed", len(rows)))
	return len(rows), nil
}

// matcher builds the row predicate for a deletion reference. An id reference
// matches on evaluation_id alone; a tuple reference matches every identity
// field, so two evaluators of the same supplier never shadow each other.
func matcher(ref domain.EvaluationRef) (func(ledgerdomain.VoteRecord) bool, error) {
	if id := strings.TrimSpace(ref.EvaluationID); id != "" {
		return func(row ledgerdomain.VoteRecord) bool {
			return row.EvaluationID == id
		}, nil
	}

	user := userctx.Normalize(ref.UserName)
	supplier := strings.TrimSpace(ref.Supplier)
	if user == "" || supplier == "" {
		return nil, domain.ErrEmptyRef
	}
	project := strings.TrimSpace(ref.Project)
	return func(row ledgerdomain.VoteRecord) bool {
		return row.UserName == user &&
			strings.EqualFold(row.Supplier, supplier) &&
			strings.EqualFold(row.Project, project) &&
			row.EvaluationYear == ref.Year
	}, nil
}
