package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/evalworks/vendoreval/internal/catalog"
	"github.com/evalworks/vendoreval/internal/clock"
	"github.com/evalworks/vendoreval/internal/config"
	"github.com/evalworks/vendoreval/internal/evaluation/domain"
	ledgerdomain "github.com/evalworks/vendoreval/internal/ledger/domain"
	"github.com/evalworks/vendoreval/internal/observability/metrics"
	"github.com/evalworks/vendoreval/internal/userctx"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg     config.Config
	Log     *zap.Logger
	Store   ledgerdomain.Store
	Catalog catalog.Provider
	Clock   clock.Clock
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	cfg     config.Config
	log     *zap.Logger
	store   ledgerdomain.Store
	catalog catalog.Provider
	clock   clock.Clock
	metrics *metrics.Metrics

	loc *time.Location

	// ulid.Monotonic is not safe for concurrent use.
	entropyMu sync.Mutex
	entropy   *ulid.MonotonicEntropy
}

func New(p Params) domain.Service {
	loc, err := time.LoadLocation(p.Cfg.ReviewTimezone)
	if err != nil {
		p.Log.Warn("invalid review timezone, using UTC", zap.String("tz", p.Cfg.ReviewTimezone))
		loc = time.UTC
	}
	return &Service{
		cfg:     p.Cfg,
		log:     p.Log.Named("evaluation.service"),
		store:   p.Store,
		catalog: p.Catalog,
		clock:   p.Clock,
		metrics: p.Metrics,
		loc:     loc,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

func (s *Service) Submit(ctx context.Context, req domain.SubmitRequest) (domain.Receipt, error) {
	doc := s.catalog.Current()

	user := userctx.Normalize(req.UserName)
	if user == "" {
		s.reject("invalid_user")
		return domain.Receipt{}, domain.ErrInvalidUser
	}

	supplier, ok := doc.SupplierByName(req.Supplier)
	if !ok {
		s.reject("unknown_supplier")
		return domain.Receipt{}, fmt.Errorf("%w: %s", domain.ErrUnknownSupplier, strings.TrimSpace(req.Supplier))
	}

	project := strings.TrimSpace(req.Project)
	now := s.clock.Now().In(s.loc)
	year := s.cfg.ReviewYear
	if year == 0 {
		year = now.Year()
	}

	votes, err := s.validateVotes(doc, req.Votes)
	if err != nil {
		s.reject(reasonOf(err))
		return domain.Receipt{}, err
	}

	snapshot, err := s.store.Load(ctx)
	if err != nil {
		return domain.Receipt{}, err
	}

	if !s.cfg.AllowResubmit {
		if s.alreadyEvaluated(snapshot, user, supplier.Name, project, year) {
			s.reject("duplicate_evaluation")
			return domain.Receipt{}, fmt.Errorf("%w: %s already evaluated %s", domain.ErrDuplicateEvaluation, user, supplier.Name)
		}
	}

	evaluationID := s.newEvaluationID(now)
	rows := s.expand(doc, evaluationID, user, supplier.Name, project, year, votes, req.Comments)

	if err := s.store.ReplaceAll(ctx, append(snapshot, rows...)); err != nil {
		if s.metrics != nil {
			s.metrics.RecordLedgerRewrite("error")
		}
		return domain.Receipt{}, err
	}
	if s.metrics != nil {
		s.metrics.RecordLedgerRewrite("ok")
		s.metrics.RecordSubmission(supplier.Slug)
	}

	s.log.Info("evaluation recorded",
		zap.String("evaluation_id", evaluationID),
		zap.String("supplier", supplier.Slug),
		zap.String("project", project),
		zap.Int("year", year),
		zap.Int("records", len(rows)),
	)

	return domain.Receipt{
		EvaluationID: evaluationID,
		Supplier:     supplier.Name,
		SupplierSlug: supplier.Slug,
		Project:      project,
		Year:         year,
		Records:      len(rows),
		SubmittedAt:  now,
	}, nil
}

// validateVotes checks the submission against the catalog schema: exactly
// one allowed token per (category, question) pair, nothing extra. The
// returned map is keyed by the catalog's canonical category names and
// question ids so expansion reads it by exact key.
func (s *Service) validateVotes(doc *catalog.Document, votes map[string]map[string]string) (map[string]map[string]string, error) {
	canonical := make(map[string]map[string]string, len(votes))
	total := 0
	for category, byQuestion := range votes {
		questions, ok := doc.Questions(category)
		if !ok {
			return nil, fmt.Errorf("%w: category %s", domain.ErrUnknownQuestion, category)
		}
		known := make(map[string]bool, len(questions))
		for _, q := range questions {
			known[q.ID] = true
		}
		name := canonicalCategory(doc, category)
		if canonical[name] == nil {
			canonical[name] = make(map[string]string, len(byQuestion))
		}
		for id, token := range byQuestion {
			id = strings.TrimSpace(id)
			if !known[id] {
				return nil, fmt.Errorf("%w: %s/%s", domain.ErrUnknownQuestion, category, id)
			}
			if !doc.IsVoteToken(token) {
				return nil, fmt.Errorf("%w: %q for %s/%s", domain.ErrInvalidVote, token, category, id)
			}
			if _, dup := canonical[name][id]; !dup {
				total++
			}
			canonical[name][id] = strings.TrimSpace(token)
		}
	}
	if total != doc.TotalQuestions() {
		return nil, fmt.Errorf("%w: got %d votes, catalog defines %d questions", domain.ErrIncompleteSubmission, total, doc.TotalQuestions())
	}
	return canonical, nil
}

func canonicalCategory(doc *catalog.Document, category string) string {
	category = strings.TrimSpace(category)
	for _, name := range doc.CategoryNames() {
		if strings.EqualFold(name, category) {
			return name
		}
	}
	return category
}

func (s *Service) alreadyEvaluated(snapshot []ledgerdomain.VoteRecord, user, supplier, project string, year int) bool {
	for _, r := range snapshot {
		if r.UserName == user &&
			strings.EqualFold(r.Supplier, supplier) &&
			strings.EqualFold(r.Project, project) &&
			r.EvaluationYear == year {
			return true
		}
	}
	return false
}

// expand produces one row per catalog (category, question) pair, in catalog
// order. Question text is copied at expansion time; the category comment is
// denormalized onto every row of its category.
func (s *Service) expand(doc *catalog.Document, evaluationID, user, supplier, project string, year int, votes map[string]map[string]string, comments map[string]string) []ledgerdomain.VoteRecord {
	rows := make([]ledgerdomain.VoteRecord, 0, doc.TotalQuestions())
	for _, category := range doc.Categories {
		comment := strings.TrimSpace(comments[category.Name])
		for _, question := range category.Questions {
			token := votes[category.Name][question.ID]
			if doc.IsNotApplicable(token) {
				token = doc.NotApplicable
			}
			rows = append(rows, ledgerdomain.VoteRecord{
				UserName:       user,
				EvaluationID:   evaluationID,
				EvaluationYear: year,
				Project:        project,
				Supplier:       supplier,
				Category:       category.Name,
				QuestionID:     question.ID,
				QuestionText:   question.Text,
				VoteValue:      token,
				Comment:        comment,
			})
		}
	}
	return rows
}

// newEvaluationID mints a ULID: millisecond timestamp plus monotonic
// entropy, so rapid successive submissions from one user never collide.
func (s *Service) newEvaluationID(t time.Time) string {
	s.entropyMu.Lock()
	defer s.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

func (s *Service) reject(reason string) {
	if s.metrics != nil {
		s.metrics.RecordRejection(reason)
	}
}

func reasonOf(err error) string {
	switch {
	case err == nil:
		return ""
	default:
		// Sentinel text doubles as the metric label.
		msg := err.Error()
		if i := strings.IndexByte(msg, ':'); i > 0 {
			return msg[:i]
		}
		return msg
	}
}
