package config

import "time"

type Redis struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	LockTTL  time.Duration `env:"REDIS_ADMISSION_LOCK_TTL" envDefault:"330s"`
}

func (r Redis) Enabled() bool {
	return r.Addr != ""
}
