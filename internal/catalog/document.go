// Package catalog holds the versioned questionnaire document: categories,
// questions, the vote vocabulary and the supplier roster. The document is
// the structural schema a submission is validated against.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
)

type Question struct {
	ID     string   `mapstructure:"id"`
	Text   string   `mapstructure:"text"`
	Rubric []string `mapstructure:"rubric"`
}

type Category struct {
	Name      string     `mapstructure:"name"`
	Questions []Question `mapstructure:"questions"`
}

type Supplier struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Document is one immutable catalog revision. Category and question order
// is the presentation order.
type Document struct {
	Version       string     `mapstructure:"version"`
	VoteTokens    []string   `mapstructure:"vote_tokens"`
	NotApplicable string     `mapstructure:"not_applicable"`
	DefaultRubric []string   `mapstructure:"default_rubric"`
	Categories    []Category `mapstructure:"categories"`
	SupplierNames []string   `mapstructure:"suppliers"`

	suppliers []Supplier
}

var (
	ErrNoCategories     = errors.New("catalog has no categories")
	ErrNoSuppliers      = errors.New("catalog has no suppliers")
	ErrNoVoteTokens     = errors.New("catalog has no vote tokens")
	ErrDuplicateEntries = errors.New("catalog has duplicate entries")
	ErrBadRubric        = errors.New("rubric must have exactly five entries")
)

// Finalize validates the document and derives supplier slugs. It must be
// called once after decoding, before any read accessor.
func (d *Document) Finalize() error {
	if len(d.Categories) == 0 {
		return ErrNoCategories
	}
	if len(d.SupplierNames) == 0 {
		return ErrNoSuppliers
	}
	if len(d.VoteTokens) == 0 {
		return ErrNoVoteTokens
	}
	if strings.TrimSpace(d.NotApplicable) == "" {
		return ErrNoVoteTokens
	}
	if len(d.DefaultRubric) != 0 && len(d.DefaultRubric) != 5 {
		return ErrBadRubric
	}

	seenCategories := map[string]bool{}
	for _, category := range d.Categories {
		name := strings.TrimSpace(category.Name)
		if name == "" || seenCategories[name] {
			return fmt.Errorf("%w: category %q", ErrDuplicateEntries, category.Name)
		}
		seenCategories[name] = true

		if len(category.Questions) == 0 {
			return fmt.Errorf("%w: category %q has no questions", ErrNoCategories, name)
		}
		seenQuestions := map[string]bool{}
		for _, question := range category.Questions {
			id := strings.TrimSpace(question.ID)
			if id == "" || seenQuestions[id] {
				return fmt.Errorf("%w: question %q in %q", ErrDuplicateEntries, question.ID, name)
			}
			seenQuestions[id] = true
			if len(question.Rubric) != 0 && len(question.Rubric) != 5 {
				return fmt.Errorf("%w: question %q", ErrBadRubric, id)
			}
		}
	}

	d.suppliers = make([]Supplier, 0, len(d.SupplierNames))
	seenSlugs := map[string]bool{}
	for _, name := range d.SupplierNames {
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("%w: empty supplier name", ErrDuplicateEntries)
		}
		s := slug.Make(name)
		if seenSlugs[s] {
			return fmt.Errorf("%w: supplier %q", ErrDuplicateEntries, name)
		}
		seenSlugs[s] = true
		d.suppliers = append(d.suppliers, Supplier{Name: name, Slug: s})
	}

	return nil
}

// CategoryNames returns category names in catalog order.
func (d *Document) CategoryNames() []string {
	names := make([]string, 0, len(d.Categories))
	for _, category := range d.Categories {
		names = append(names, category.Name)
	}
	return names
}

// Questions returns the ordered questions of a category.
func (d *Document) Questions(category string) ([]Question, bool) {
	for _, c := range d.Categories {
		if strings.EqualFold(c.Name, strings.TrimSpace(category)) {
			return c.Questions, true
		}
	}
	return nil, false
}

// Question looks up one question by (category, id).
func (d *Document) Question(category, id string) (Question, bool) {
	questions, ok := d.Questions(category)
	if !ok {
		return Question{}, false
	}
	id = strings.TrimSpace(id)
	for _, q := range questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Rubric returns the score descriptions for a question, falling back to the
// document default. Display-only.
func (d *Document) Rubric(category, id string) []string {
	if q, ok := d.Question(category, id); ok && len(q.Rubric) == 5 {
		return q.Rubric
	}
	return d.DefaultRubric
}

// TotalQuestions counts every (category, question) pair.
func (d *Document) TotalQuestions() int {
	total := 0
	for _, c := range d.Categories {
		total += len(c.Questions)
	}
	return total
}

// IsVoteToken reports whether tok belongs to the vote vocabulary, the
// not-applicable sentinel included.
func (d *Document) IsVoteToken(tok string) bool {
	tok = strings.TrimSpace(tok)
	if d.IsNotApplicable(tok) {
		return true
	}
	for _, allowed := range d.VoteTokens {
		if tok == allowed {
			return true
		}
	}
	return false
}

// IsNotApplicable reports whether tok is the not-applicable sentinel.
func (d *Document) IsNotApplicable(tok string) bool {
	return strings.EqualFold(strings.TrimSpace(tok), d.NotApplicable)
}

// Suppliers returns the roster in catalog order.
func (d *Document) Suppliers() []Supplier {
	return d.suppliers
}

// SupplierByName resolves a roster entry by exact (case-insensitive) name.
func (d *Document) SupplierByName(name string) (Supplier, bool) {
	name = strings.TrimSpace(name)
	for _, s := range d.suppliers {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Supplier{}, false
}

// SupplierBySlug resolves a roster entry by slug.
func (d *Document) SupplierBySlug(s string) (Supplier, bool) {
	s = strings.TrimSpace(s)
	for _, supplier := range d.suppliers {
		if supplier.Slug == s {
			return supplier, true
		}
	}
	return Supplier{}, false
}
