package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"campaignops/internal/liquidity"
	"campaignops/internal/pipeline"
)

type templateOptions struct {
	vars   []string
	goal   string
	locale string
}

func (o *templateOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&o.vars, "var", nil, "template variable as name=value (repeatable)")
	cmd.Flags().StringVar(&o.goal, "goal", "", "shorthand for --var goal_amount=<goal>")
	cmd.Flags().StringVar(&o.locale, "locale", "en", "disclosure locale (en|ar)")
}

func (o *templateOptions) variables() (map[string]string, error) {
	vars := make(map[string]string, len(o.vars)+1)
	for _, kv := range o.vars {
		name, value, ok := strings.Cut(kv, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("invalid --var %q: want name=value", kv))
		}
		vars[name] = value
	}
	if o.goal != "" {
		vars[pipeline.GoalVariable] = o.goal
	}
	return vars, nil
}

func (o *templateOptions) runner(s *session, gen pipeline.Generator) (*pipeline.Runner, error) {
	return pipeline.NewRunner(pipeline.Options{
		Calculator: s.calc,
		Generator:  gen,
		Locale:     liquidity.ParseLocale(o.locale),
		Logger:     &s.logger,
	})
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &templateOptions{}
	cmd := &cobra.Command{
		Use:   "render <template>",
		Short: "Render a prompt template with liquidity variables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vars, err := opts.variables()
			if err != nil {
				return err
			}
			s, err := openSession(cmd.Context(), rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			t, err := pipeline.LoadTemplate(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "load template", err)
			}
			r, err := opts.runner(s, nil)
			if err != nil {
				return WrapExitError(ExitCommandError, "configure pipeline", err)
			}
			p, err := r.Prepare(t, vars)
			if err != nil {
				return WrapExitError(ExitCommandError, "render template", err)
			}
			return s.out.Success(map[string]any{"prompt": p.Prompt, "rules": p.Rules}, p.Prompt)
		},
	}
	opts.bind(cmd)
	return cmd
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &templateOptions{}
	cmd := &cobra.Command{
		Use:   "validate <template> <response-file>",
		Short: "Score a saved response against a template's rules",
		Long: `Score a saved model response against the validation rules of a template.

Exits with status 1 when a primary rule fails.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			vars, err := opts.variables()
			if err != nil {
				return err
			}
			content, err := os.ReadFile(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, "read response", err)
			}
			s, err := openSession(cmd.Context(), rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			r, err := opts.runner(s, pipeline.StaticGenerator{Content: string(content)})
			if err != nil {
				return WrapExitError(ExitCommandError, "configure pipeline", err)
			}
			outcome, err := r.Run(cmd.Context(), args[0], vars)
			if err != nil {
				return WrapExitError(ExitCommandError, "validate", err)
			}
			res := outcome.Validation

			var b strings.Builder
			fmt.Fprintf(&b, "Passed: %t\nScore:  %.2f\n", res.Passed, res.Score)
			for _, sg := range res.Suggestions {
				fmt.Fprintf(&b, "  - %s\n", sg)
			}
			if err := s.out.Success(res, b.String()); err != nil {
				return err
			}
			if !res.Passed {
				return NewExitError(ExitFailure, "primary validation rules failed")
			}
			return nil
		},
	}
	opts.bind(cmd)
	return cmd
}
