package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"campaignops/internal/export"
	"campaignops/internal/liquidity"
	"campaignops/internal/trust"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var goal, locale string
	cmd := &cobra.Command{
		Use:   "export <out.zip>",
		Short: "Write the transparency bundle for a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			b := export.Build(s.calc, trust.New(s.ledger), goal, liquidity.ParseLocale(locale), s.settings.MonthlyVelocity, time.Now())
			data, err := export.Archive(b)
			if err != nil {
				return WrapExitError(ExitCommandError, "build export", err)
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return WrapExitError(ExitCommandError, "write export", err)
			}
			return s.out.Success(map[string]any{"path": args[0], "bytes": len(data)},
				fmt.Sprintf("Wrote %s (%d bytes)", args[0], len(data)))
		},
	}
	cmd.Flags().StringVar(&goal, "goal", "", "campaign goal disclosed in the bundle")
	cmd.Flags().StringVar(&locale, "locale", "en", "disclosure locale (en|ar)")
	return cmd
}
