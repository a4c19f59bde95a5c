package ledger

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

type UserAddressFilter struct {
	Address string
}

func (f UserAddressFilter) Apply(db *gorm.DB) *gorm.DB {
	var (
		dummy = Message{}
		_     = dummy.UserAddress
	)

	return db.Where("user_address = ?", f.Address)
}

// CursorFilter keeps rows created before the last seen id
type CursorFilter struct {
	Before uint64
}

func (f CursorFilter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id < ?", f.Before)
}

type OrderByIDFilter struct {
	Desc bool
}

func (f OrderByIDFilter) Apply(db *gorm.DB) *gorm.DB {
	return db.Order(clause.OrderByColumn{
		Column: clause.Column{Name: "id"},
		Desc:   f.Desc,
	})
}
