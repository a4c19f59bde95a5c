package nonce

// DefaultCounter is the name of the shared counter handed out by /nonce
const DefaultCounter = "myNonceCounter"

type Counter struct {
	Name  string `gorm:"primaryKey"`
	Value int64
}

func (Counter) TableName() string {
	return "nonce_counters"
}
