package settlement

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Job is a single settlement of an approved pitch. MessageID is the ledger row
// that approved it and is unique across jobs.
type Job struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	MessageID   uint64 `gorm:"uniqueIndex"`
	UserAddress string `gorm:"index"`
	SellToken   string
	BuyToken    string
	Percent     uint64
	Status      Status `gorm:"index"`
	Error       string
}

func (Job) TableName() string {
	return "settlement_jobs"
}

type Request struct {
	MessageID   uint64
	UserAddress string
	SellToken   string
	BuyToken    string
	Percent     uint64
}
