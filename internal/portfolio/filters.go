package portfolio

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Filter interface {
	Apply(*gorm.DB) *gorm.DB
}

type PageFilter struct {
	Limit int
}

func (f PageFilter) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(f.Limit)
}

type CursorFilter struct {
	Before uint64
}

func (f CursorFilter) Apply(db *gorm.DB) *gorm.DB {
	var (
		dummy = Snapshot{}
		_     = dummy.ID
	)

	return db.Where("id < ?", f.Before)
}

type OrderByIDFilter struct{}

func (f OrderByIDFilter) Apply(db *gorm.DB) *gorm.DB {
	return db.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true})
}
