package portfolio

import (
	"time"

	"gorm.io/datatypes"
)

const (
	DefaultLimit = 24
	MaxLimit     = 720

	usdcSymbol = "USDC"
)

// Snapshot is the fund wallet token list at a point in time
type Snapshot struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement"`
	Status    datatypes.JSON `gorm:"column:portfolio_status;not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
}

func (Snapshot) TableName() string {
	return "portfolio"
}

type Page struct {
	Snapshots  []Snapshot
	NextCursor *uint64
}
