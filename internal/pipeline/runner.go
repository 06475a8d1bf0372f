package pipeline

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/rs/zerolog"

	"campaignops/internal/liquidity"
	"campaignops/internal/validator"
)

// GoalVariable triggers injection of the liq_* variables.
const GoalVariable = "goal_amount"

// Response is generated text with provenance.
type Response struct {
	Content  string
	Model    string
	Provider string
	Latency  time.Duration
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (Response, error)
}

// StaticGenerator returns fixed content. It replays saved responses through
// validation.
type StaticGenerator struct {
	Content string
}

func (g StaticGenerator) Generate(context.Context, string) (Response, error) {
	return Response{Content: g.Content, Provider: "static"}, nil
}

// Prepared is a template with variables applied, ready to generate.
type Prepared struct {
	Prompt string
	Rules  validator.Rules
	Vars   map[string]string
}

// Outcome is the result of Run.
type Outcome struct {
	Prepared
	Response   Response
	Validation validator.Result
}

type Options struct {
	// Calculator supplies liquidity variables. Nil uses the default policy
	// without a ledger.
	Calculator *liquidity.Calculator
	Generator  Generator
	Locale     liquidity.Locale
	Logger     *zerolog.Logger
}

type Runner struct {
	calc   *liquidity.Calculator
	gen    Generator
	locale liquidity.Locale
	logger zerolog.Logger
}

func NewRunner(opts Options) (*Runner, error) {
	r := &Runner{calc: opts.Calculator, gen: opts.Generator, locale: opts.Locale, logger: zerolog.Nop()}
	if r.calc == nil {
		calc, err := liquidity.NewCalculator(liquidity.Options{})
		if err != nil {
			return nil, err
		}
		r.calc = calc
	}
	if r.locale == "" {
		r.locale = liquidity.LocaleEnglish
	}
	if opts.Logger != nil {
		r.logger = *opts.Logger
	}
	return r, nil
}

// Variables returns vars plus the liq_* figures when a goal is present. The
// split is previewed, never applied.
func (r *Runner) Variables(vars map[string]string) map[string]string {
	out := maps.Clone(vars)
	if out == nil {
		out = map[string]string{}
	}
	if goal, ok := out[GoalVariable]; ok {
		maps.Copy(out, r.calc.Variables(goal, r.locale))
	}
	return out
}

// Prepare renders t with vars.
func (r *Runner) Prepare(t Template, vars map[string]string) (Prepared, error) {
	all := r.Variables(vars)
	prompt, err := Render(t.Prompt, all)
	if err != nil {
		return Prepared{}, err
	}
	return Prepared{
		Prompt: prompt,
		Rules:  validator.Substitute(t.Rules, all),
		Vars:   all,
	}, nil
}

// Run loads the template at path, generates a response and validates it.
func (r *Runner) Run(ctx context.Context, path string, vars map[string]string) (Outcome, error) {
	if r.gen == nil {
		return Outcome{}, fmt.Errorf("pipeline: no generator configured")
	}
	t, err := LoadTemplate(path)
	if err != nil {
		return Outcome{}, err
	}
	p, err := r.Prepare(t, vars)
	if err != nil {
		return Outcome{}, err
	}

	start := time.Now()
	resp, err := r.gen.Generate(ctx, p.Prompt)
	if err != nil {
		return Outcome{}, fmt.Errorf("pipeline: generate: %w", err)
	}
	if resp.Latency == 0 {
		resp.Latency = time.Since(start)
	}
	res := validator.Validate(resp.Content, p.Rules)

	log := r.logger
	log.Info().
		Str("template", path).
		Str("provider", resp.Provider).
		Bool("passed", res.Passed).
		Float64("score", res.Score).
		Dur("latency", resp.Latency).
		Msg("prompt validated")

	return Outcome{Prepared: p, Response: resp, Validation: res}, nil
}
