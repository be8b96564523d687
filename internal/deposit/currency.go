package deposit

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency describes a supported deposit coin. Prices are fixed USD quotes.
type Currency struct {
	ID            string          `json:"id"`
	Symbol        string          `json:"symbol"`
	Label         string          `json:"label"`
	Network       string          `json:"network"`
	Confirmations int             `json:"confirmations"`
	MinDeposit    decimal.Decimal `json:"min_deposit"`
	Fee           decimal.Decimal `json:"fee"`
	PriceUSD      decimal.Decimal `json:"price_usd"`
	AddressPrefix string          `json:"address_prefix"`
	AddressLength int             `json:"address_length"`
}

var catalog = map[string]Currency{
	"bitcoin": {
		ID: "bitcoin", Symbol: "₿", Label: "Bitcoin (BTC)", Network: "Bitcoin",
		Confirmations: 3,
		MinDeposit:    decimal.RequireFromString("0.001"),
		Fee:           decimal.RequireFromString("0.0005"),
		PriceUSD:      decimal.NewFromInt(45000),
		AddressPrefix: "bc1", AddressLength: 39,
	},
	"ethereum": {
		ID: "ethereum", Symbol: "Ξ", Label: "Ethereum (ETH)", Network: "Ethereum",
		Confirmations: 12,
		MinDeposit:    decimal.RequireFromString("0.01"),
		Fee:           decimal.RequireFromString("0.005"),
		PriceUSD:      decimal.NewFromInt(2800),
		AddressPrefix: "0x", AddressLength: 40,
	},
	"usdt": {
		ID: "usdt", Symbol: "₮", Label: "Tether (USDT)", Network: "Ethereum (ERC-20)",
		Confirmations: 12,
		MinDeposit:    decimal.NewFromInt(10),
		Fee:           decimal.NewFromInt(5),
		PriceUSD:      decimal.NewFromInt(1),
		AddressPrefix: "0x", AddressLength: 40,
	},
	"litecoin": {
		ID: "litecoin", Symbol: "Ł", Label: "Litecoin (LTC)", Network: "Litecoin",
		Confirmations: 6,
		MinDeposit:    decimal.RequireFromString("0.1"),
		Fee:           decimal.RequireFromString("0.01"),
		PriceUSD:      decimal.NewFromInt(75),
		AddressPrefix: "ltc1", AddressLength: 39,
	},
}

// Lookup returns the currency with id.
func Lookup(id string) (Currency, error) {
	c, ok := catalog[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Currency{}, fmt.Errorf("%w: %q", ErrUnknownCurrency, id)
	}
	return c, nil
}

// Currencies lists the catalog ordered by id.
func Currencies() []Currency {
	out := make([]Currency, 0, len(catalog))
	for _, c := range catalog {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NetUSD is the credited value of amount after the network fee.
func (c Currency) NetUSD(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(c.PriceUSD).Sub(c.Fee.Mul(c.PriceUSD))
}

const addressAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateAddress fabricates a receiving address: the currency prefix padded
// with random characters to the currency's address length.
func GenerateAddress(c Currency) string {
	var b strings.Builder
	b.WriteString(c.AddressPrefix)
	for b.Len() < c.AddressLength {
		b.WriteByte(addressAlphabet[rand.IntN(len(addressAlphabet))])
	}
	return b.String()
}

func randomTxID() string {
	b := make([]byte, 12)
	for i := range b {
		b[i] = addressAlphabet[rand.IntN(len(addressAlphabet))]
	}
	return "tx_" + string(b)
}

const minutesPerConfirmation = 10

// EstimatedTime renders how long the remaining confirmations should take.
func EstimatedTime(remaining int) string {
	if remaining <= 0 {
		return "Completed"
	}
	minutes := remaining * minutesPerConfirmation
	if minutes < 60 {
		return fmt.Sprintf("~%d minutes", minutes)
	}
	hours := int(float64(minutes)/60 + 0.5)
	return fmt.Sprintf("~%d hours", hours)
}
