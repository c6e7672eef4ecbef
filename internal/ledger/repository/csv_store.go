package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/evalworks/vendoreval/internal/ledger/domain"
	"go.uber.org/zap"
)

// csvColumns is the persisted layout: one header row, one row per
// (evaluation, question).
var csvColumns = []string{
	"user_name",
	"evaluation_id",
	"evaluation_year",
	"project",
	"supplier",
	"category",
	"question_id",
	"question_text",
	"vote_value",
	"comment",
}

// CSVStore persists the ledger as a flat file. Writes go through a temp
// file and rename, so a failed save never truncates the previous table.
// The mutex serializes in-process writers only; cross-process writers
// still race last-writer-wins.
type CSVStore struct {
	path string
	log  *zap.Logger
	mu   sync.Mutex
}

func NewCSVStore(path string, log *zap.Logger) *CSVStore {
	return &CSVStore{
		path: path,
		log:  log.Named("ledger.csv"),
	}
}

func (s *CSVStore) Load(ctx context.Context) ([]domain.VoteRecord, error) {
	_ = ctx

	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.VoteRecord{}, nil
		}
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrStorage, s.path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrStorage, s.path, err)
	}
	if len(rows) == 0 {
		return []domain.VoteRecord{}, nil
	}

	index := headerIndex(rows[0])
	records := make([]domain.VoteRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, domain.VoteRecord{
			UserName:       field(row, index, "user_name"),
			EvaluationID:   field(row, index, "evaluation_id"),
			EvaluationYear: yearField(row, index),
			Project:        field(row, index, "project"),
			Supplier:       field(row, index, "supplier"),
			Category:       field(row, index, "category"),
			QuestionID:     field(row, index, "question_id"),
			QuestionText:   field(row, index, "question_text"),
			VoteValue:      field(row, index, "vote_value"),
			Comment:        field(row, index, "comment"),
		})
	}
	return records, nil
}

func (s *CSVStore) ReplaceAll(ctx context.Context, records []domain.VoteRecord) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".votes-*.csv")
	if err != nil {
		return fmt.Errorf("%w: create temp in %s: %v", domain.ErrStorage, dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	writer := csv.NewWriter(tmp)
	if err := writer.Write(csvColumns); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write header: %v", domain.ErrStorage, err)
	}
	for _, r := range records {
		row := []string{
			r.UserName,
			r.EvaluationID,
			strconv.Itoa(r.EvaluationYear),
			r.Project,
			r.Supplier,
			r.Category,
			r.QuestionID,
			r.QuestionText,
			r.VoteValue,
			r.Comment,
		}
		if err := writer.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("%w: write row: %v", domain.ErrStorage, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: flush: %v", domain.ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp: %v", domain.ErrStorage, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%w: rename %s: %v", domain.ErrStorage, s.path, err)
	}

	s.log.Debug("ledger rewritten", zap.Int("rows", len(records)))
	return nil
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return index
}

func field(row []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func yearField(row []string, index map[string]int) int {
	raw := strings.TrimSpace(field(row, index, "evaluation_year"))
	if raw == "" {
		return 0
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		// Malformed period tags are dropped, never fatal to the load.
		return 0
	}
	return year
}
