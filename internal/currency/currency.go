// Package currency normalizes donation amounts to the project's base currency.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Base is the currency every ledger amount is stored in.
const Base = "EUR"

// DefaultFXFeeRate is the processor fee charged on cross-currency donations.
var DefaultFXFeeRate = decimal.RequireFromString("0.025")

// Config describes a fixed exchange-rate table relative to the base currency.
type Config struct {
	// Base is the canonical currency code. Empty means EUR.
	Base string
	// Aliases are additional codes or symbols treated as the base currency.
	Aliases []string
	// Rates maps a code or symbol to the base-currency value of one unit.
	Rates map[string]decimal.Decimal
	// FeeRate is deducted from every non-base conversion.
	FeeRate decimal.Decimal
}

// DefaultConfig returns the built-in rate table. The returned map is a fresh
// copy and can be modified by the caller.
func DefaultConfig() Config {
	return Config{
		Base:    Base,
		Aliases: []string{"€"},
		Rates: map[string]decimal.Decimal{
			"EUR": decimal.NewFromInt(1),
			"€":   decimal.NewFromInt(1),
			"USD": decimal.RequireFromString("0.92"),
			"$":   decimal.RequireFromString("0.92"),
			"GBP": decimal.RequireFromString("1.20"),
			"£":   decimal.RequireFromString("1.20"),
			"AED": decimal.RequireFromString("0.25"),
			"د.إ": decimal.RequireFromString("0.25"),
		},
		FeeRate: DefaultFXFeeRate,
	}
}

// Normalizer converts amounts into the base currency. It is immutable after
// construction and safe for concurrent use.
type Normalizer struct {
	base    string
	aliases map[string]struct{}
	rates   map[string]decimal.Decimal
	feeRate decimal.Decimal
}

// New builds a Normalizer from cfg.
func New(cfg Config) *Normalizer {
	base := normalizeCode(cfg.Base)
	if base == "" {
		base = Base
	}
	n := &Normalizer{
		base:    base,
		aliases: map[string]struct{}{base: {}},
		rates:   make(map[string]decimal.Decimal, len(cfg.Rates)),
		feeRate: cfg.FeeRate,
	}
	for _, alias := range cfg.Aliases {
		if code := normalizeCode(alias); code != "" {
			n.aliases[code] = struct{}{}
		}
	}
	for code, rate := range cfg.Rates {
		n.rates[normalizeCode(code)] = rate
	}
	return n
}

// NewDefault returns a Normalizer over DefaultConfig.
func NewDefault() *Normalizer {
	return New(DefaultConfig())
}

// BaseCurrency returns the canonical base code.
func (n *Normalizer) BaseCurrency() string {
	return n.base
}

// IsBase reports whether code denotes the base currency.
func (n *Normalizer) IsBase(code string) bool {
	_, ok := n.aliases[normalizeCode(code)]
	return ok
}

// Rate returns the exchange rate for code. Unknown currencies use 1.0.
func (n *Normalizer) Rate(code string) decimal.Decimal {
	if n.IsBase(code) {
		return decimal.NewFromInt(1)
	}
	if rate, ok := n.rates[normalizeCode(code)]; ok {
		return rate
	}
	return decimal.NewFromInt(1)
}

// ConvertToBase returns amount expressed in the base currency, net of the
// conversion fee.
func (n *Normalizer) ConvertToBase(amount decimal.Decimal, code string) decimal.Decimal {
	if n.IsBase(code) {
		return amount
	}
	gross := amount.Mul(n.Rate(code))
	return gross.Sub(gross.Mul(n.feeRate))
}

// FeeFor returns the conversion fee in the base currency. Base-currency
// amounts carry no fee.
func (n *Normalizer) FeeFor(amount decimal.Decimal, code string) decimal.Decimal {
	if n.IsBase(code) {
		return decimal.Zero
	}
	return amount.Mul(n.Rate(code)).Mul(n.feeRate)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
