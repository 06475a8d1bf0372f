package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"campaignops/internal/campaigns"
	"campaignops/internal/currency"
	"campaignops/internal/infra"
	"campaignops/internal/liquidity"
)

// NewCampaignsCommand creates the campaigns command group.
func NewCampaignsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaigns",
		Short: "Import platform campaign data",
	}

	var platform, redisURL string
	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Normalize a Chuffed or Whydonate export into the campaign store",
		Long: `Normalize a platform JSON export into the unified campaign schema.

With --redis (or REDIS_URL) the campaigns are written to Redis where the API
serves them; otherwise they are only printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			logger := newLogger(cmd.ErrOrStderr(), rootOpts.Verbose)

			settings, err := infra.LoadSettings(rootOpts.PolicyFile)
			if err != nil {
				return WrapExitError(ExitCommandError, "load policy", err)
			}
			f, err := os.Open(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "open export", err)
			}
			defer f.Close()

			var store campaigns.Store = campaigns.NewMemoryStore()
			if redisURL != "" {
				client, err := campaigns.Connect(cmd.Context(), redisURL)
				if err != nil {
					return WrapExitError(ExitCommandError, "connect redis", err)
				}
				defer client.Close()
				store = campaigns.NewRedisStore(client)
			}

			imp := campaigns.NewImporter(store, currency.New(settings.Currency), &logger)
			items, err := imp.Import(cmd.Context(), platform, f)
			if err != nil {
				return WrapExitError(ExitCommandError, "import campaigns", err)
			}
			return out.Success(items, formatCampaigns(items))
		},
	}
	importCmd.Flags().StringVar(&platform, "platform", campaigns.PlatformChuffed, "source platform (chuffed|whydonate)")
	importCmd.Flags().StringVar(&redisURL, "redis", envOr("REDIS_URL", ""), "Redis URL of the campaign store")

	cmd.AddCommand(importCmd)
	return cmd
}

func formatCampaigns(items []campaigns.Campaign) string {
	if len(items) == 0 {
		return "No campaigns imported."
	}
	var b strings.Builder
	for _, c := range items {
		fmt.Fprintf(&b, "%-40s %-20s %10s  %s\n", c.ID, c.DisplayName, liquidity.FormatAmount(c.Raised), c.Status)
	}
	fmt.Fprintf(&b, "%d campaign(s) imported", len(items))
	return b.String()
}
