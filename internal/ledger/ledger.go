package ledger

import (
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"campaignops/internal/currency"
)

// Options configures ledger construction.
type Options struct {
	// Normalizer converts entry amounts to the base currency. Nil uses the
	// built-in rate table.
	Normalizer *currency.Normalizer
	// Logger receives skipped-row diagnostics. Nil disables logging.
	Logger *zerolog.Logger
}

func (o Options) normalizer() *currency.Normalizer {
	if o.Normalizer != nil {
		return o.Normalizer
	}
	return currency.NewDefault()
}

func (o Options) logger() zerolog.Logger {
	if o.Logger != nil {
		return *o.Logger
	}
	return zerolog.Nop()
}

// Ledger owns the donation records. Resolve calls are serialized; reads may
// run concurrently with each other.
type Ledger struct {
	mu      sync.RWMutex
	records []Donation
	base    string
}

// FromEntries builds a ledger from already-parsed entries. Entries are sorted
// by timestamp; entries with equal timestamps keep their input order.
// Entries with a negative amount are dropped.
func FromEntries(entries []Entry, opts Options) *Ledger {
	norm := opts.normalizer()
	log := opts.logger()
	sorted := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Amount.IsNegative() {
			log.Debug().Str("beneficiary", e.Beneficiary).Str("amount", e.Amount.String()).Msg("ledger: negative amount skipped")
			continue
		}
		sorted = append(sorted, e)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	records := make([]Donation, len(sorted))
	for i, e := range sorted {
		base := norm.ConvertToBase(e.Amount, e.Currency)
		records[i] = Donation{
			ID:               DonationID(i),
			Timestamp:        e.Timestamp,
			OriginalAmount:   e.Amount,
			OriginalCurrency: strings.TrimSpace(e.Currency),
			Beneficiary:      e.Beneficiary,
			AmountBase:       base,
			FXFeeBase:        norm.FeeFor(e.Amount, e.Currency),
			Remaining:        base,
			Status:           StatusUnsatisfied,
		}
	}
	return &Ledger{records: records, base: norm.BaseCurrency()}
}

// Empty returns a ledger without records.
func Empty() *Ledger {
	return &Ledger{base: currency.Base}
}

// BaseCurrency is the currency every amount in the ledger is expressed in.
func (l *Ledger) BaseCurrency() string {
	return l.base
}

// Len returns the number of records, resolved ones included.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// TotalUnsatisfiedDebt sums the remaining amount of every unresolved record.
func (l *Ledger) TotalUnsatisfiedDebt() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	total := decimal.Zero
	for _, rec := range l.records {
		if rec.Status != StatusResolved {
			total = total.Add(rec.Remaining)
		}
	}
	return total
}

// DebtsByBeneficiary sums unresolved remaining amounts per beneficiary.
func (l *Ledger) DebtsByBeneficiary() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, b := range l.Beneficiaries() {
		out[b.Beneficiary] = b.Debt
	}
	return out
}

// Beneficiaries returns the unresolved debt per beneficiary in order of each
// beneficiary's oldest outstanding donation.
func (l *Ledger) Beneficiaries() []BeneficiaryDebt {
	l.mu.RLock()
	defer l.mu.RUnlock()
	index := make(map[string]int)
	var out []BeneficiaryDebt
	for _, rec := range l.records {
		if rec.Status == StatusResolved {
			continue
		}
		i, ok := index[rec.Beneficiary]
		if !ok {
			i = len(out)
			index[rec.Beneficiary] = i
			out = append(out, BeneficiaryDebt{Beneficiary: rec.Beneficiary, Debt: decimal.Zero})
		}
		out[i].Debt = out[i].Debt.Add(rec.Remaining)
	}
	return out
}

// PriorityQueue returns snapshots of all unresolved records in FIFO order.
func (l *Ledger) PriorityQueue() []Donation {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Donation
	for _, rec := range l.records {
		if rec.Status != StatusResolved {
			out = append(out, rec)
		}
	}
	return out
}

// Donations returns snapshots of every record in FIFO order.
func (l *Ledger) Donations() []Donation {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Donation, len(l.records))
	copy(out, l.records)
	return out
}

// Donation returns the snapshot of a single record.
func (l *Ledger) Donation(id DonationID) (Donation, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if id < 0 || int(id) >= len(l.records) {
		return Donation{}, false
	}
	return l.records[id], true
}

// Orphans returns unresolved records that carry no beneficiary. They still
// take part in FIFO resolution.
func (l *Ledger) Orphans() []Donation {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Donation
	for _, rec := range l.records {
		if rec.Status != StatusResolved && strings.TrimSpace(rec.Beneficiary) == "" {
			out = append(out, rec)
		}
	}
	return out
}

// Summary reports counts per status and the ledger totals.
func (l *Ledger) Summary() Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s := Summary{
		Donations:   len(l.records),
		TotalBase:   decimal.Zero,
		TotalFXFees: decimal.Zero,
		Outstanding: decimal.Zero,
	}
	for i, rec := range l.records {
		if i == 0 {
			s.Oldest = rec.Timestamp
		}
		s.Newest = rec.Timestamp
		s.TotalBase = s.TotalBase.Add(rec.AmountBase)
		s.TotalFXFees = s.TotalFXFees.Add(rec.FXFeeBase)
		switch rec.Status {
		case StatusUnsatisfied:
			s.Unsatisfied++
		case StatusPartiallyResolved:
			s.PartiallyResolved++
		case StatusResolved:
			s.Resolved++
		}
		if rec.Status != StatusResolved {
			s.Outstanding = s.Outstanding.Add(rec.Remaining)
		}
	}
	return s
}

// Resolve applies amount to the oldest unresolved records. Any amount beyond
// the outstanding debt is dropped. Non-positive amounts are a no-op.
func (l *Ledger) Resolve(amount decimal.Decimal) []ResolutionEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.allocate(amount, true)
}

// Preview returns the events Resolve(amount) would produce without changing
// the ledger.
func (l *Ledger) Preview(amount decimal.Decimal) []ResolutionEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.allocate(amount, false)
}

func (l *Ledger) allocate(amount decimal.Decimal, apply bool) []ResolutionEvent {
	var events []ResolutionEvent
	left := amount
	for i := range l.records {
		if !left.IsPositive() {
			break
		}
		rec := &l.records[i]
		if rec.Status == StatusResolved {
			continue
		}
		applied := decimal.Min(left, rec.Remaining)
		remaining := rec.Remaining.Sub(applied)
		left = left.Sub(applied)

		status := StatusPartiallyResolved
		if !remaining.IsPositive() {
			status = StatusResolved
		}
		if apply {
			rec.Remaining = remaining
			rec.Status = status
		}
		events = append(events, ResolutionEvent{
			DonationID:  rec.ID,
			Beneficiary: rec.Beneficiary,
			Applied:     applied,
			Timestamp:   rec.Timestamp,
			Status:      status,
		})
	}
	return events
}
