// Package domain defines the vote ledger: one row per (evaluation,
// question), appended by the recorder and read as a whole by the engines.
package domain

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// VoteRecord is one answered question of one evaluation.
type VoteRecord struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"-"`
	UserName       string       `gorm:"not null;index" json:"user_name"`
	EvaluationID   string       `gorm:"index" json:"evaluation_id"`
	EvaluationYear int          `gorm:"index" json:"evaluation_year"`
	Project        string       `json:"project"`
	Supplier       string       `gorm:"not null;index" json:"supplier"`
	Category       string       `gorm:"not null" json:"category"`
	QuestionID     string       `gorm:"not null" json:"question_id"`
	QuestionText   string       `json:"question_text"`
	VoteValue      string       `gorm:"not null" json:"vote_value"`
	Comment        string       `json:"comment"`
}

// TableName sets the database table name.
func (VoteRecord) TableName() string { return "vote_records" }

// EvaluationKey returns the identity that groups the rows of one
// evaluation. New rows carry an explicit evaluation id; imported legacy
// rows without one collapse on the user+supplier+project+year tuple.
func (r VoteRecord) EvaluationKey() string {
	if id := strings.TrimSpace(r.EvaluationID); id != "" {
		return id
	}
	return strings.Join([]string{
		r.UserName,
		r.Supplier,
		r.Project,
		strconv.Itoa(r.EvaluationYear),
	}, "\x1f")
}
