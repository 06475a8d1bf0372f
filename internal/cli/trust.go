package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"campaignops/internal/liquidity"
	"campaignops/internal/trust"
)

// NewTrustCommand creates the trust command group.
func NewTrustCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trust",
		Short: "Shareholder shares and resolution projections",
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show each beneficiary's share of the outstanding debt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			items := trust.New(s.ledger).ShareholderStats()
			return s.out.Success(items, formatStats(items))
		},
	}

	var velocity string
	project := &cobra.Command{
		Use:   "project",
		Short: "Project months until the outstanding debt is resolved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			v := s.settings.MonthlyVelocity
			if velocity != "" {
				if v, err = decimal.NewFromString(velocity); err != nil {
					return WrapExitError(ExitCommandError, "invalid --velocity", err)
				}
			}
			p := trust.New(s.ledger).ProjectResolution(v)
			return s.out.Success(p, formatProjection(p))
		},
	}
	project.Flags().StringVar(&velocity, "velocity", "", "monthly resolution velocity (defaults to the policy file)")

	cmd.AddCommand(stats, project)
	return cmd
}

func formatStats(items []trust.ShareholderStat) string {
	if len(items) == 0 {
		return "No outstanding debt."
	}
	var b strings.Builder
	for _, st := range items {
		fmt.Fprintf(&b, "%-24s %10s  %6s%%  %s\n", st.Beneficiary, liquidity.FormatAmount(st.DebtAmount), st.SharePercent.StringFixed(2), st.Label)
	}
	return b.String()
}

func formatProjection(p trust.Projection) string {
	months := p.ProjectedMonths.StringFixed(2)
	if p.Infinite {
		months = "never at this velocity"
	}
	return fmt.Sprintf("Outstanding debt: %s\nMonthly velocity: %s\nProjected months: %s\nStatus:           %s",
		liquidity.FormatAmount(p.TotalUnsatisfiedDebt), liquidity.FormatAmount(p.MonthlyVelocity), months, statusLabel(p.Status))
}
