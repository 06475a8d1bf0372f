package infra

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"campaignops/internal/currency"
	"campaignops/internal/liquidity"
)

// DefaultMonthlyVelocity is used by trust projections when neither the
// policy file nor the caller gives one.
var DefaultMonthlyVelocity = decimal.NewFromInt(500)

type policyFile struct {
	BaseCurrency    string             `yaml:"base_currency"`
	FXFeeRate       *float64           `yaml:"fx_fee_rate"`
	Rates           map[string]float64 `yaml:"rates"`
	BaseAliases     []string           `yaml:"base_aliases"`
	MonthlyVelocity *float64           `yaml:"monthly_velocity"`
	Policy          *struct {
		TotalCompromise    float64 `yaml:"total_compromise"`
		DebtResolution     float64 `yaml:"debt_resolution"`
		TransactionFees    float64 `yaml:"transaction_fees"`
		OperationalCushion float64 `yaml:"operational_cushion"`
	} `yaml:"policy"`
}

// Settings are the financial parameters shared by the API and the CLI.
type Settings struct {
	Currency        currency.Config
	Policy          liquidity.Policy
	MonthlyVelocity decimal.Decimal
}

// DefaultSettings returns the built-in rate table and the 25% policy.
func DefaultSettings() Settings {
	return Settings{
		Currency:        currency.DefaultConfig(),
		Policy:          liquidity.DefaultPolicy(),
		MonthlyVelocity: DefaultMonthlyVelocity,
	}
}

// LoadSettings reads the YAML policy file at path over the defaults. An empty
// path or a missing file yields the defaults.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if strings.TrimSpace(path) == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read policy file: %w", err)
	}

	var pf policyFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return Settings{}, fmt.Errorf("parse policy file: %w", err)
	}
	if pf.BaseCurrency != "" {
		s.Currency.Base = strings.ToUpper(strings.TrimSpace(pf.BaseCurrency))
		s.Currency.Aliases = nil
	}
	if pf.BaseAliases != nil {
		s.Currency.Aliases = pf.BaseAliases
	}
	if pf.FXFeeRate != nil {
		s.Currency.FeeRate = decimal.NewFromFloat(*pf.FXFeeRate)
	}
	if len(pf.Rates) > 0 {
		s.Currency.Rates = make(map[string]decimal.Decimal, len(pf.Rates))
		for code, rate := range pf.Rates {
			s.Currency.Rates[strings.ToUpper(strings.TrimSpace(code))] = decimal.NewFromFloat(rate)
		}
	}
	if pf.MonthlyVelocity != nil {
		s.MonthlyVelocity = decimal.NewFromFloat(*pf.MonthlyVelocity)
	}
	if pf.Policy != nil {
		s.Policy = liquidity.Policy{
			TotalCompromise:    decimal.NewFromFloat(pf.Policy.TotalCompromise),
			DebtResolution:     decimal.NewFromFloat(pf.Policy.DebtResolution),
			TransactionFees:    decimal.NewFromFloat(pf.Policy.TransactionFees),
			OperationalCushion: decimal.NewFromFloat(pf.Policy.OperationalCushion),
		}
	}
	if err := s.Policy.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}
