// Package liquidity computes the compromise split of a campaign goal and
// applies its debt-resolution share to the ledger.
package liquidity

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrInvalidPolicy = errors.New("liquidity: invalid policy")

// Policy holds the fractions of a gross goal set aside from net support.
// DebtResolution, TransactionFees and OperationalCushion must add up to
// TotalCompromise.
type Policy struct {
	TotalCompromise    decimal.Decimal
	DebtResolution     decimal.Decimal
	TransactionFees    decimal.Decimal
	OperationalCushion decimal.Decimal
}

// DefaultPolicy is the 25% compromise: 10% debt, 5% fees, 10% cushion.
func DefaultPolicy() Policy {
	return Policy{
		TotalCompromise:    decimal.RequireFromString("0.25"),
		DebtResolution:     decimal.RequireFromString("0.10"),
		TransactionFees:    decimal.RequireFromString("0.05"),
		OperationalCushion: decimal.RequireFromString("0.10"),
	}
}

// Validate reports ErrInvalidPolicy when a fraction is negative, the total
// exceeds one, or the parts do not add up to the total.
func (p Policy) Validate() error {
	for name, f := range map[string]decimal.Decimal{
		"total_compromise":    p.TotalCompromise,
		"debt_resolution":     p.DebtResolution,
		"transaction_fees":    p.TransactionFees,
		"operational_cushion": p.OperationalCushion,
	} {
		if f.IsNegative() {
			return fmt.Errorf("%w: %s is negative", ErrInvalidPolicy, name)
		}
	}
	if p.TotalCompromise.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: total_compromise %s exceeds 1", ErrInvalidPolicy, p.TotalCompromise)
	}
	parts := p.DebtResolution.Add(p.TransactionFees).Add(p.OperationalCushion)
	if !parts.Equal(p.TotalCompromise) {
		return fmt.Errorf("%w: parts sum to %s, total_compromise is %s", ErrInvalidPolicy, parts, p.TotalCompromise)
	}
	return nil
}

// TransparentRatio is the publicly disclosed share: debt plus fees.
func (p Policy) TransparentRatio() decimal.Decimal {
	return p.DebtResolution.Add(p.TransactionFees)
}

// NetSupportFraction is the share left to the campaign beneficiary.
func (p Policy) NetSupportFraction() decimal.Decimal {
	return decimal.NewFromInt(1).Sub(p.TotalCompromise)
}
