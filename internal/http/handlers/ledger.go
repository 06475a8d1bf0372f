package handlers

import (
	"net/http"
	"strconv"
	"time"

	"campaignops/internal/ledger"
)

type donationView struct {
	ID               int     `json:"donation_id"`
	DonatedAt        string  `json:"donated_at"`
	Beneficiary      string  `json:"beneficiary"`
	OriginalAmount   float64 `json:"original_amount"`
	OriginalCurrency string  `json:"original_currency"`
	AmountBase       float64 `json:"amount_base"`
	FXFeeBase        float64 `json:"fx_fee_base"`
	Remaining        float64 `json:"remaining"`
	Status           string  `json:"status"`
}

func toDonationView(d ledger.Donation) donationView {
	return donationView{
		ID:               int(d.ID),
		DonatedAt:        d.Timestamp.UTC().Format(time.RFC3339),
		Beneficiary:      d.Beneficiary,
		OriginalAmount:   d.OriginalAmount.InexactFloat64(),
		OriginalCurrency: d.OriginalCurrency,
		AmountBase:       d.AmountBase.InexactFloat64(),
		FXFeeBase:        d.FXFeeBase.InexactFloat64(),
		Remaining:        d.Remaining.InexactFloat64(),
		Status:           string(d.Status),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func (a *App) LedgerSummary(w http.ResponseWriter, r *http.Request) {
	l := a.ledger()
	s := l.Summary()
	a.json(w, http.StatusOK, map[string]any{
		"base_currency":      l.BaseCurrency(),
		"donations":          s.Donations,
		"unsatisfied":        s.Unsatisfied,
		"partially_resolved": s.PartiallyResolved,
		"resolved":           s.Resolved,
		"total_base":         s.TotalBase.InexactFloat64(),
		"total_fx_fees":      s.TotalFXFees.InexactFloat64(),
		"outstanding":        s.Outstanding.InexactFloat64(),
		"oldest":             formatTime(s.Oldest),
		"newest":             formatTime(s.Newest),
	})
}

// LedgerQueue lists unresolved donations oldest first. ?limit= caps the
// number of items; the total is always reported.
func (a *App) LedgerQueue(w http.ResponseWriter, r *http.Request) {
	queue := a.ledger().PriorityQueue()
	limit := len(queue)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			a.error(w, http.StatusBadRequest, "bad_request", "limit must be a non-negative integer")
			return
		}
		if n < limit {
			limit = n
		}
	}
	items := make([]donationView, 0, limit)
	for _, d := range queue[:limit] {
		items = append(items, toDonationView(d))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items, "total": len(queue)})
}

func (a *App) LedgerBeneficiaries(w http.ResponseWriter, r *http.Request) {
	debts := a.ledger().Beneficiaries()
	items := make([]map[string]any, 0, len(debts))
	for _, d := range debts {
		items = append(items, map[string]any{
			"beneficiary": d.Beneficiary,
			"debt":        d.Debt.InexactFloat64(),
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
