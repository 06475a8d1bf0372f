package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"campaignops/internal/ledger"
	"campaignops/internal/liquidity"
)

type splitOptions struct {
	apply    bool
	campaign string
	locale   string
}

// NewSplitCommand creates the split command.
func NewSplitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &splitOptions{}
	cmd := &cobra.Command{
		Use:   "split <goal>",
		Short: "Compute the liquidity split of a campaign goal",
		Long: `Compute how a gross goal divides into debt resolution, fees and cushion.

Without --apply the resolutions are a preview and the ledger is unchanged.
With --apply the split is recorded in the journal for --campaign; applying
the same campaign again replays the recorded result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(rootOpts, opts, args[0], cmd)
		},
	}
	cmd.Flags().BoolVar(&opts.apply, "apply", false, "resolve ledger debt with the split")
	cmd.Flags().StringVar(&opts.campaign, "campaign", "", "campaign reference the split is applied for")
	cmd.Flags().StringVar(&opts.locale, "locale", "en", "disclosure locale (en|ar)")
	return cmd
}

func runSplit(rootOpts *RootOptions, opts *splitOptions, goal string, cmd *cobra.Command) error {
	if opts.apply && strings.TrimSpace(opts.campaign) == "" {
		return NewExitError(ExitCommandError, "--apply requires --campaign")
	}
	s, err := openSession(cmd.Context(), rootOpts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	locale := liquidity.ParseLocale(opts.locale)
	split := s.calc.Preview(goal)
	replayed := false
	if opts.apply {
		app, err := s.calc.Apply(cmd.Context(), opts.campaign, s.calc.Compute(goal))
		if err != nil {
			return WrapExitError(ExitCommandError, "apply split", err)
		}
		split, replayed = app.Split, app.Replayed
	}
	disclosure := liquidity.Disclosure(split, s.calc.Policy(), locale)

	data := map[string]any{
		"split":      split,
		"disclosure": disclosure,
		"applied":    opts.apply,
		"replayed":   replayed,
	}
	return s.out.Success(data, formatSplit(split, disclosure, opts.apply, replayed))
}

func formatSplit(s liquidity.Split, disclosure string, applied, replayed bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Gross goal:          %s\n", liquidity.FormatAmount(s.GrossGoal))
	fmt.Fprintf(&b, "Net support:         %s\n", liquidity.FormatAmount(s.NetSupport))
	fmt.Fprintf(&b, "Debt resolution:     %s\n", liquidity.FormatAmount(s.DebtResolution))
	fmt.Fprintf(&b, "Transaction fees:    %s\n", liquidity.FormatAmount(s.TransactionFees))
	fmt.Fprintf(&b, "Operational cushion: %s\n", liquidity.FormatAmount(s.OperationalCushion))
	switch {
	case replayed:
		b.WriteString("\nAlready applied; recorded resolutions:\n")
	case applied:
		b.WriteString("\nApplied resolutions:\n")
	default:
		b.WriteString("\nPreviewed resolutions:\n")
	}
	if len(s.Resolutions) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, ev := range s.Resolutions {
		fmt.Fprintf(&b, "  #%d %-24s %10s  %s\n", ev.DonationID, ev.Beneficiary, liquidity.FormatAmount(ev.Applied), statusLabel(string(ev.Status)))
	}
	fmt.Fprintf(&b, "\n%s", disclosure)
	return b.String()
}

func formatDonations(items []ledger.Donation) string {
	if len(items) == 0 {
		return "No outstanding donations."
	}
	var b strings.Builder
	for _, d := range items {
		fmt.Fprintf(&b, "#%-4d %s  %-24s %10s %-3s  remaining %10s  %s\n",
			d.ID, d.Timestamp.UTC().Format("2006-01-02"), d.Beneficiary,
			d.OriginalAmount.StringFixed(2), d.OriginalCurrency,
			liquidity.FormatAmount(d.Remaining), statusLabel(string(d.Status)))
	}
	return b.String()
}
