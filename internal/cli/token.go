package cli

import (
	"time"

	"github.com/spf13/cobra"

	"campaignops/internal/middleware"
)

// NewTokenCommand creates the token command, which signs operator tokens for
// the API's guarded routes.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	var secret, subject string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an operator bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return NewExitError(ExitCommandError, "no secret: set --secret or OPERATOR_SECRET")
			}
			if subject == "" {
				return NewExitError(ExitCommandError, "--subject is required")
			}
			if ttl <= 0 {
				return NewExitError(ExitCommandError, "--ttl must be positive")
			}
			token, err := middleware.SignOperatorToken(secret, subject, ttl)
			if err != nil {
				return WrapExitError(ExitCommandError, "sign token", err)
			}
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return out.Success(map[string]any{"token": token, "subject": subject, "ttl": ttl.String()}, token)
		},
	}
	cmd.Flags().StringVar(&secret, "secret", envOr("OPERATOR_SECRET", ""), "operator signing secret")
	cmd.Flags().StringVar(&subject, "subject", "", "operator identity")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	return cmd
}
