package liquidity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"campaignops/internal/ledger"
)

// Split is the breakdown of one gross goal under a Policy.
type Split struct {
	GrossGoal          decimal.Decimal
	NetSupport         decimal.Decimal
	NetSupportFraction decimal.Decimal
	DebtResolution     decimal.Decimal
	TransactionFees    decimal.Decimal
	OperationalCushion decimal.Decimal
	TransparentTotal   decimal.Decimal
	TotalResolution    decimal.Decimal
	// Resolutions are the ledger payments made or previewed for this split.
	Resolutions []ledger.ResolutionEvent
}

// ComputeSplit applies p to goal. Negative goals are treated as zero.
func ComputeSplit(p Policy, goal decimal.Decimal) Split {
	if goal.IsNegative() {
		goal = decimal.Zero
	}
	debt := goal.Mul(p.DebtResolution)
	fees := goal.Mul(p.TransactionFees)
	return Split{
		GrossGoal:          goal,
		NetSupport:         goal.Mul(p.NetSupportFraction()),
		NetSupportFraction: p.NetSupportFraction(),
		DebtResolution:     debt,
		TransactionFees:    fees,
		OperationalCushion: goal.Mul(p.OperationalCushion),
		TransparentTotal:   debt.Add(fees),
		TotalResolution:    goal.Mul(p.TotalCompromise),
	}
}

type resolutionJSON struct {
	DonationID  int     `json:"donation_id"`
	Beneficiary string  `json:"shareholder"`
	Amount      float64 `json:"amount"`
	Timestamp   string  `json:"timestamp"`
	Status      string  `json:"status"`
}

// MarshalJSON renders amounts as JSON numbers.
func (s Split) MarshalJSON() ([]byte, error) {
	res := make([]resolutionJSON, 0, len(s.Resolutions))
	for _, ev := range s.Resolutions {
		res = append(res, resolutionJSON{
			DonationID:  int(ev.DonationID),
			Beneficiary: ev.Beneficiary,
			Amount:      ev.Applied.InexactFloat64(),
			Timestamp:   ev.Timestamp.Format(time.RFC3339),
			Status:      string(ev.Status),
		})
	}
	return json.Marshal(map[string]any{
		"gross_goal":           s.GrossGoal.InexactFloat64(),
		"net_support":          s.NetSupport.InexactFloat64(),
		"net_support_fraction": s.NetSupportFraction.InexactFloat64(),
		"debt_resolution":      s.DebtResolution.InexactFloat64(),
		"transaction_fees":     s.TransactionFees.InexactFloat64(),
		"operational_cushion":  s.OperationalCushion.InexactFloat64(),
		"transparent_total":    s.TransparentTotal.InexactFloat64(),
		"total_resolution":     s.TotalResolution.InexactFloat64(),
		"resolutions":          res,
	})
}
