package portfolio

import (
	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(s *Snapshot) error {
	return r.db.Create(s).Error
}

func (r *Repo) GetByFilters(filters []Filter) ([]Snapshot, error) {
	db := r.db.Model(&Snapshot{})
	for _, f := range filters {
		db = f.Apply(db)
	}

	var list []Snapshot
	if err := db.Find(&list).Error; err != nil {
		return nil, err
	}

	return list, nil
}
