package config

type Chain struct {
	RPCURL            string   `env:"CHAIN_RPC_URL" envDefault:"http://127.0.0.1:8545"`
	ChainID           int64    `env:"CHAIN_ID" envDefault:"7000"`
	AllowlistContract string   `env:"ALLOWLIST_CONTRACT_ADDRESS"`
	PrizePoolContract string   `env:"PRIZE_POOL_CONTRACT_ADDRESS"`
	FundContract      string   `env:"FUND_CONTRACT_ADDRESS"`
	BackendPrivateKey string   `env:"BACKEND_WALLET_PRIVATE_KEY"`
	TreasuryTokens    []string `env:"TREASURY_TOKEN_ADDRESSES" envSeparator:","`
	TreasurySymbols   []string `env:"TREASURY_TOKEN_SYMBOLS" envSeparator:","`
	TreasuryDecimals  []int32  `env:"TREASURY_TOKEN_DECIMALS" envSeparator:","`
	NativeSymbol      string   `env:"CHAIN_NATIVE_SYMBOL" envDefault:"ZETA"`
}
