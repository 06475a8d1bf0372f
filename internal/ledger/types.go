package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the resolution state of a donation record.
type Status string

const (
	StatusUnsatisfied       Status = "unsatisfied"
	StatusPartiallyResolved Status = "partially_resolved"
	StatusResolved          Status = "resolved"
)

// DonationID addresses a record inside a Ledger. IDs follow FIFO order.
type DonationID int

// Entry is a donation as recorded in the source log, before normalization.
type Entry struct {
	Timestamp   time.Time
	Amount      decimal.Decimal
	Currency    string
	Beneficiary string
}

// Donation is a snapshot of one ledger record.
type Donation struct {
	ID               DonationID
	Timestamp        time.Time
	OriginalAmount   decimal.Decimal
	OriginalCurrency string
	Beneficiary      string
	// AmountBase is the amount in the base currency, net of the FX fee.
	AmountBase decimal.Decimal
	// FXFeeBase is the fee already deducted from AmountBase. Reporting only.
	FXFeeBase decimal.Decimal
	Remaining decimal.Decimal
	Status    Status
}

// ResolutionEvent records one payment applied to a donation by Resolve.
type ResolutionEvent struct {
	DonationID  DonationID      `json:"donation_id"`
	Beneficiary string          `json:"beneficiary"`
	Applied     decimal.Decimal `json:"amount"`
	Timestamp   time.Time       `json:"timestamp"`
	Status      Status          `json:"status"`
}

// BeneficiaryDebt is the outstanding debt owed to a single beneficiary.
type BeneficiaryDebt struct {
	Beneficiary string
	Debt        decimal.Decimal
}

// Summary aggregates the ledger state.
type Summary struct {
	Donations         int
	Unsatisfied       int
	PartiallyResolved int
	Resolved          int
	TotalBase         decimal.Decimal
	TotalFXFees       decimal.Decimal
	Outstanding       decimal.Decimal
	Oldest            time.Time
	Newest            time.Time
}

// SumApplied totals the applied amounts of events.
func SumApplied(events []ResolutionEvent) decimal.Decimal {
	total := decimal.Zero
	for _, ev := range events {
		total = total.Add(ev.Applied)
	}
	return total
}
