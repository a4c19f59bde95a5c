package config

import "time"

type API struct {
	Listen         string        `env:"API_LISTEN" envDefault:":3000"`
	RequestTimeout time.Duration `env:"API_REQUEST_TIMEOUT" envDefault:"300s"`
}
