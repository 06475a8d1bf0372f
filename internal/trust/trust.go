// Package trust derives read-only shareholder analytics from the debt ledger.
package trust

import (
	"encoding/json"
	"sort"

	"github.com/shopspring/decimal"

	"campaignops/internal/ledger"
)

const (
	// CandidateLabel marks every beneficiary holding outstanding debt.
	CandidateLabel = "Trustee Candidate"

	StatusActive   = "active"
	StatusStagnant = "stagnant"
)

var hundred = decimal.NewFromInt(100)

// Source is the slice of ledger behaviour the projection reads.
type Source interface {
	Beneficiaries() []ledger.BeneficiaryDebt
	TotalUnsatisfiedDebt() decimal.Decimal
}

// ShareholderStat is one beneficiary's share of the outstanding debt.
type ShareholderStat struct {
	Beneficiary  string
	DebtAmount   decimal.Decimal
	SharePercent decimal.Decimal
	Label        string
}

// MarshalJSON renders amounts as JSON numbers.
func (s ShareholderStat) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"beneficiary":   s.Beneficiary,
		"debt_amount":   s.DebtAmount.InexactFloat64(),
		"share_percent": s.SharePercent.InexactFloat64(),
		"label":         s.Label,
	})
}

// Projection estimates how long the outstanding debt takes to clear.
type Projection struct {
	TotalUnsatisfiedDebt decimal.Decimal
	MonthlyVelocity      decimal.Decimal
	// ProjectedMonths is meaningful only when Infinite is false.
	ProjectedMonths decimal.Decimal
	Infinite        bool
	Status          string
}

// MarshalJSON renders an infinite projection as the string "infinite".
func (p Projection) MarshalJSON() ([]byte, error) {
	var months any = p.ProjectedMonths.InexactFloat64()
	if p.Infinite {
		months = "infinite"
	}
	return json.Marshal(map[string]any{
		"total_unsatisfied_debt": p.TotalUnsatisfiedDebt.InexactFloat64(),
		"monthly_velocity":       p.MonthlyVelocity.InexactFloat64(),
		"projected_months":       months,
		"status":                 p.Status,
	})
}

// View computes analytics over a ledger. It never mutates it.
type View struct {
	src Source
}

// New returns a View over src.
func New(src Source) *View {
	return &View{src: src}
}

// ShareholderStats lists beneficiaries with outstanding debt, largest first.
// Beneficiaries with equal debt keep ledger order.
func (v *View) ShareholderStats() []ShareholderStat {
	debts := v.src.Beneficiaries()
	total := decimal.Zero
	for _, d := range debts {
		total = total.Add(d.Debt)
	}

	stats := make([]ShareholderStat, 0, len(debts))
	for _, d := range debts {
		share := decimal.Zero
		if total.IsPositive() {
			share = d.Debt.Div(total).Mul(hundred).Round(2)
		}
		stats = append(stats, ShareholderStat{
			Beneficiary:  d.Beneficiary,
			DebtAmount:   d.Debt,
			SharePercent: share,
			Label:        CandidateLabel,
		})
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].DebtAmount.GreaterThan(stats[j].DebtAmount)
	})
	return stats
}

// ProjectResolution estimates months to clear the debt at monthlyVelocity
// per month. A non-positive velocity never clears it.
func (v *View) ProjectResolution(monthlyVelocity decimal.Decimal) Projection {
	total := v.src.TotalUnsatisfiedDebt()
	p := Projection{
		TotalUnsatisfiedDebt: total,
		MonthlyVelocity:      monthlyVelocity,
	}
	if !monthlyVelocity.IsPositive() {
		p.Infinite = true
		p.Status = StatusStagnant
		return p
	}
	p.ProjectedMonths = total.Div(monthlyVelocity).Round(2)
	p.Status = StatusActive
	return p
}
