package ledger

import (
	"fmt"

	"gorm.io/gorm"
)

var scoreExpr = fmt.Sprintf("COALESCE(SUM(CASE WHEN success THEN %d ELSE %d END), 0)", successPoints, failurePoints)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(msg *Message) error {
	return r.db.Create(msg).Error
}

func (r *Repo) GetByFilters(filters []Filter) ([]Message, error) {
	db := r.db.Model(&Message{})
	for _, f := range filters {
		db = f.Apply(db)
	}

	var list []Message
	if err := db.Find(&list).Error; err != nil {
		return nil, err
	}

	return list, nil
}

// GetScore returns sum of points over all attempts of the address
func (r *Repo) GetScore(address string) (int64, error) {
	var score int64
	err := r.db.
		Model(&Message{}).
		Select(scoreExpr).
		Where("user_address = ?", address).
		Scan(&score).
		Error
	if err != nil {
		return 0, err
	}

	return score, nil
}

func (r *Repo) GetTopScores(limit int) ([]Score, error) {
	var list []Score
	err := r.db.
		Model(&Message{}).
		Select("user_address, " + scoreExpr + " AS score").
		Group("user_address").
		Order("score DESC, user_address ASC").
		Limit(limit).
		Scan(&list).
		Error
	if err != nil {
		return nil, err
	}

	return list, nil
}
