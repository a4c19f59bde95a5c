package config

type Cron struct {
	Secret        string `env:"CRON_SECRET"`
	PortfolioSpec string `env:"CRON_PORTFOLIO_SPEC"`
}
