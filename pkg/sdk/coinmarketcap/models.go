package coinmarketcap

import "github.com/shopspring/decimal"

type (
	Quote struct {
		Price decimal.Decimal `json:"price"`
	}

	Currency struct {
		Symbol string           `json:"symbol"`
		Quote  map[string]Quote `json:"quote"`
	}

	QuotesLatest struct {
		Data map[string]Currency `json:"data"`
	}
)

// USDPrice returns zero price for unknown symbols.
func (q *QuotesLatest) USDPrice(symbol string) decimal.Decimal {
	if q == nil {
		return decimal.Zero
	}

	c, ok := q.Data[symbol]
	if !ok {
		return decimal.Zero
	}

	return c.Quote["USD"].Price
}
