package config

type Market struct {
	MoralisURL   string   `env:"MORALIS_API_URL" envDefault:"https://deep-index.moralis.io/api/v2.2"`
	MoralisKey   string   `env:"MORALIS_API_KEY"`
	CMCURL       string   `env:"CMC_API_URL" envDefault:"https://pro-api.coinmarketcap.com/v1"`
	CMCKey       string   `env:"CMC_API_KEY"`
	FundWallet   string   `env:"FUND_WALLET_ADDRESS"`
	Chains       []string `env:"PORTFOLIO_CHAINS" envSeparator:"," envDefault:"base"`
	HistoryChain string   `env:"WALLET_HISTORY_CHAIN" envDefault:"optimism"`
}
