// Package cli implements campaignctl, the operator command line.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose      bool
	Format       string // "json" | "text"
	Transactions string
	PolicyFile   string
	// Journal is the SQLite journal path. Empty keeps applied splits in
	// memory for the life of the command.
	Journal string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for campaignctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "campaignctl",
		Short: "Campaign debt resolution and liquidity tooling",
		Long:  "Inspect the donation ledger, compute liquidity splits and render transparent campaign appeals.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Transactions, "transactions", envOr("TRANSACTIONS_PATH", "primary_campaign_dataset.csv"), "transaction log CSV")
	cmd.PersistentFlags().StringVar(&opts.PolicyFile, "policy", envOr("POLICY_FILE", ""), "policy and currency YAML")
	cmd.PersistentFlags().StringVar(&opts.Journal, "journal", envOr("JOURNAL_SQLITE_PATH", ""), "SQLite resolution journal")

	cmd.AddCommand(NewSplitCommand(opts))
	cmd.AddCommand(NewLedgerCommand(opts))
	cmd.AddCommand(NewTrustCommand(opts))
	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCampaignsCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}
