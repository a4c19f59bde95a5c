package config

type App struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Env      string `env:"APP_ENV" envDefault:"prod"`

	API        API
	DB         DB
	AI         AI
	Injection  Injection
	Chain      Chain
	Settlement Settlement
	Nats       Nats
	Redis      Redis
	Vault      Vault
	Market     Market
	Cron       Cron
	Prometheus Prometheus
	Health     Health
}

// IsDev allows calling cron protected endpoints without the shared secret.
func (a App) IsDev() bool {
	return a.Env == "dev"
}
