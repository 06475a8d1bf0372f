package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"campaignops/internal/ledger"
	"campaignops/internal/liquidity"
)

type donationJSON struct {
	ID               int     `json:"donation_id"`
	DonatedAt        string  `json:"donated_at"`
	Beneficiary      string  `json:"beneficiary"`
	OriginalAmount   float64 `json:"original_amount"`
	OriginalCurrency string  `json:"original_currency"`
	AmountBase       float64 `json:"amount_base"`
	Remaining        float64 `json:"remaining"`
	Status           string  `json:"status"`
}

// NewLedgerCommand creates the ledger command group.
func NewLedgerCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the donation ledger",
	}

	var limit int
	queue := &cobra.Command{
		Use:   "queue",
		Short: "List unresolved donations, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			items := s.ledger.PriorityQueue()
			if limit > 0 && limit < len(items) {
				items = items[:limit]
			}
			out := make([]donationJSON, 0, len(items))
			for _, d := range items {
				out = append(out, donationJSON{
					ID:               int(d.ID),
					DonatedAt:        d.Timestamp.UTC().Format(time.RFC3339),
					Beneficiary:      d.Beneficiary,
					OriginalAmount:   d.OriginalAmount.InexactFloat64(),
					OriginalCurrency: d.OriginalCurrency,
					AmountBase:       d.AmountBase.InexactFloat64(),
					Remaining:        d.Remaining.InexactFloat64(),
					Status:           string(d.Status),
				})
			}
			return s.out.Success(out, formatDonations(items))
		},
	}
	queue.Flags().IntVar(&limit, "limit", 0, "show at most this many donations")

	summary := &cobra.Command{
		Use:   "summary",
		Short: "Summarize ledger totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			sum := s.ledger.Summary()
			data := map[string]any{
				"base_currency":      s.ledger.BaseCurrency(),
				"donations":          sum.Donations,
				"unsatisfied":        sum.Unsatisfied,
				"partially_resolved": sum.PartiallyResolved,
				"resolved":           sum.Resolved,
				"total_base":         sum.TotalBase.InexactFloat64(),
				"total_fx_fees":      sum.TotalFXFees.InexactFloat64(),
				"outstanding":        sum.Outstanding.InexactFloat64(),
			}
			return s.out.Success(data, formatSummary(s.ledger.BaseCurrency(), sum))
		},
	}

	cmd.AddCommand(summary, queue)
	return cmd
}

func formatSummary(base string, s ledger.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Donations:          %d (%d unsatisfied, %d partial, %d resolved)\n", s.Donations, s.Unsatisfied, s.PartiallyResolved, s.Resolved)
	fmt.Fprintf(&b, "Total received:     %s %s\n", liquidity.FormatAmount(s.TotalBase), base)
	fmt.Fprintf(&b, "FX fees deducted:   %s %s\n", liquidity.FormatAmount(s.TotalFXFees), base)
	fmt.Fprintf(&b, "Outstanding debt:   %s %s\n", liquidity.FormatAmount(s.Outstanding), base)
	if !s.Oldest.IsZero() {
		fmt.Fprintf(&b, "Period:             %s to %s\n", s.Oldest.UTC().Format("2006-01-02"), s.Newest.UTC().Format("2006-01-02"))
	}
	return b.String()
}
