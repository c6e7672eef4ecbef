package repository

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/evalworks/vendoreval/internal/ledger/domain"
	"gorm.io/gorm"
)

// DBStore keeps the ledger in a vote_records table. The store still honors
// the snapshot contract: Load reads the whole table, ReplaceAll swaps it in
// one transaction.
type DBStore struct {
	db    *gorm.DB
	genID *snowflake.Node
}

func NewDBStore(db *gorm.DB, genID *snowflake.Node) *DBStore {
	return &DBStore{db: db, genID: genID}
}

// Migrate creates the vote_records table.
func (s *DBStore) Migrate() error {
	return s.db.AutoMigrate(&domain.VoteRecord{})
}

func (s *DBStore) Load(ctx context.Context) ([]domain.VoteRecord, error) {
	var records []domain.VoteRecord
	err := s.db.WithContext(ctx).
		Order("id asc").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("%w: load vote_records: %v", domain.ErrStorage, err)
	}
	return records, nil
}

func (s *DBStore) ReplaceAll(ctx context.Context, records []domain.VoteRecord) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM vote_records").Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		rows := make([]domain.VoteRecord, len(records))
		copy(rows, records)
		for i := range rows {
			// Fresh PKs on every rewrite keep insertion order stable.
			rows[i].ID = s.genID.Generate()
		}
		return tx.CreateInBatches(rows, 200).Error
	})
	if err != nil {
		return fmt.Errorf("%w: replace vote_records: %v", domain.ErrStorage, err)
	}
	return nil
}
