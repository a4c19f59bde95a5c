package config

import "time"

const (
	SettlementQueueLocal = "local"
	SettlementQueueNats  = "nats"
)

type Settlement struct {
	Queue       string        `env:"SETTLEMENT_QUEUE" envDefault:"local"`
	MaxDuration time.Duration `env:"SETTLEMENT_MAX_DURATION" envDefault:"300s"`
	Subject     string        `env:"SETTLEMENT_SUBJECT" envDefault:"aicapital.settlement.transfer-prize-pool"`
	BufferSize  int           `env:"SETTLEMENT_BUFFER_SIZE" envDefault:"64"`
}
