package moralis

import "encoding/json"

type (
	// Token mirrors a wallet token entry. Numeric fields keep the raw
	// representation since the API mixes strings and numbers.
	Token struct {
		TokenAddress              string      `json:"token_address"`
		Symbol                    string      `json:"symbol"`
		Name                      string      `json:"name"`
		Logo                      string      `json:"logo,omitempty"`
		Thumbnail                 string      `json:"thumbnail,omitempty"`
		Decimals                  json.Number `json:"decimals"`
		Balance                   string      `json:"balance"`
		PossibleSpam              bool        `json:"possible_spam"`
		VerifiedContract          bool        `json:"verified_contract"`
		BalanceFormatted          string      `json:"balance_formatted"`
		USDPrice                  float64     `json:"usd_price"`
		USDPrice24hrPercentChange float64     `json:"usd_price_24hr_percent_change"`
		USDPrice24hrUSDChange     float64     `json:"usd_price_24hr_usd_change"`
		USDValue                  float64     `json:"usd_value"`
		USDValue24hrUSDChange     float64     `json:"usd_value_24hr_usd_change"`
		NativeToken               bool        `json:"native_token"`
		PortfolioPercentage       float64     `json:"portfolio_percentage"`
		Chain                     string      `json:"chain,omitempty"`
	}

	WalletTokens struct {
		Result []Token `json:"result"`
	}

	Transfer struct {
		TokenName      string `json:"token_name,omitempty"`
		TokenSymbol    string `json:"token_symbol,omitempty"`
		TokenAddress   string `json:"address,omitempty"`
		FromAddress    string `json:"from_address"`
		ToAddress      string `json:"to_address"`
		Value          string `json:"value"`
		ValueFormatted string `json:"value_formatted"`
		Direction      string `json:"direction"`
	}

	// Transaction is a decoded wallet history entry
	Transaction struct {
		Hash            string     `json:"hash"`
		Nonce           string     `json:"nonce"`
		FromAddress     string     `json:"from_address"`
		ToAddress       string     `json:"to_address"`
		Value           string     `json:"value"`
		TransactionFee  string     `json:"transaction_fee"`
		BlockNumber     string     `json:"block_number"`
		BlockTimestamp  string     `json:"block_timestamp"`
		ReceiptStatus   string     `json:"receipt_status"`
		Category        string     `json:"category"`
		Summary         string     `json:"summary"`
		MethodLabel     string     `json:"method_label,omitempty"`
		PossibleSpam    bool       `json:"possible_spam"`
		NativeTransfers []Transfer `json:"native_transfers"`
		ERC20Transfers  []Transfer `json:"erc20_transfers"`
	}

	WalletHistory struct {
		Cursor   string        `json:"cursor"`
		PageSize int           `json:"page_size"`
		Result   []Transaction `json:"result"`
	}
)
