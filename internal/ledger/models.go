package ledger

import (
	"time"
)

type TradeType string

const (
	TradeTypeBuy  TradeType = "buy"
	TradeTypeSell TradeType = "sell"

	// points granted per attempt for the leaderboard
	successPoints = 200
	failurePoints = 10

	DefaultLimit = 10
	MaxLimit     = 100
)

func (t TradeType) Valid() bool {
	return t == TradeTypeBuy || t == TradeTypeSell
}

// Message is a single pitch attempt. Rows are append only.
type Message struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	UserAddress    string `gorm:"index"`
	Token          string
	TradeType      TradeType
	Allocation     string
	Pitch          string
	AIResponseText string `gorm:"column:ai_response_text"`
	Success        bool

	Timestamp time.Time `gorm:"autoCreateTime"`
}

func (Message) TableName() string {
	return "messages"
}

type Query struct {
	UserAddress string
	Cursor      *uint64
	Limit       int
}

type Page struct {
	Messages   []Message
	NextCursor *uint64
}

type Score struct {
	UserAddress string
	Score       int64
}
