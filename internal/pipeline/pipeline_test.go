package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campaignops/internal/validator"
)

func TestParseTemplate(t *testing.T) {
	tpl, err := LoadTemplate(filepath.Join("testdata", "appeal.md"))
	require.NoError(t, err)

	assert.Equal(t, "Write a short appeal for {family} raising {goal_amount}.\nMention that {liq_debt_resolution} settles earlier pledges and {liq_fees} covers fees.", tpl.Prompt)
	assert.Contains(t, tpl.Body, "Background notes")
	assert.Equal(t, 3, tpl.Rules.Len())
	assert.Equal(t, validator.Value("60"), tpl.Rules.Secondary["concise"].Value)
}

func TestParseTemplateWithoutSections(t *testing.T) {
	tpl, err := ParseTemplate("  Say hello to {name}.  ")
	require.NoError(t, err)
	assert.Equal(t, "Say hello to {name}.", tpl.Prompt)
	assert.Zero(t, tpl.Rules.Len())
}

func TestRender(t *testing.T) {
	out, err := Render(`{"json": true} for {name}`, map[string]string{"name": "Amal"})
	require.NoError(t, err)
	assert.Equal(t, `{"json": true} for Amal`, out)

	_, err = Render("{b} and {a} and {a}", nil)
	require.ErrorIs(t, err, ErrMissingVariable)
	assert.Contains(t, err.Error(), "a, b")
}

func TestPrepareInjectsLiquidityVariables(t *testing.T) {
	r, err := NewRunner(Options{})
	require.NoError(t, err)
	tpl, err := LoadTemplate(filepath.Join("testdata", "appeal.md"))
	require.NoError(t, err)

	vars := map[string]string{"family": "the Haddad family", "goal_amount": "€5.000,00"}
	p, err := r.Prepare(tpl, vars)
	require.NoError(t, err)
	assert.Equal(t, "Write a short appeal for the Haddad family raising €5.000,00.\nMention that 500 settles earlier pledges and 250 covers fees.", p.Prompt)
	assert.Equal(t, "750", p.Vars["liq_transparent_total"])
	assert.Contains(t, p.Vars["liq_public_note"], "15% resolution policy")
	assert.Equal(t, validator.Value("500"), p.Rules.Primary["states_policy"].Value)
	assert.Equal(t, "Disclose the 500 debt share", p.Rules.Primary["states_policy"].Message)
	_, mutated := vars["liq_fees"]
	assert.False(t, mutated)
}

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, string) (Response, error) {
	return Response{}, errors.New("backend offline")
}

func TestRun(t *testing.T) {
	path := filepath.Join("testdata", "appeal.md")
	vars := map[string]string{"family": "the Haddad family", "goal_amount": "€5.000,00"}

	r, err := NewRunner(Options{Generator: StaticGenerator{Content: "Support the Haddad family: 500 repays past pledges."}})
	require.NoError(t, err)
	out, err := r.Run(context.Background(), path, vars)
	require.NoError(t, err)
	assert.True(t, out.Validation.Passed)
	assert.Equal(t, 1.0, out.Validation.Score)
	assert.Equal(t, "static", out.Response.Provider)

	r, err = NewRunner(Options{Generator: StaticGenerator{Content: "Please give generously."}})
	require.NoError(t, err)
	out, err = r.Run(context.Background(), path, vars)
	require.NoError(t, err)
	assert.False(t, out.Validation.Passed)
	assert.Equal(t, []string{"Primary Fail: names_family", "Primary Fail: Disclose the 500 debt share"}, out.Validation.Suggestions)

	r, err = NewRunner(Options{Generator: failingGenerator{}})
	require.NoError(t, err)
	_, err = r.Run(context.Background(), path, vars)
	require.Error(t, err)

	r, err = NewRunner(Options{})
	require.NoError(t, err)
	_, err = r.Run(context.Background(), path, vars)
	require.Error(t, err)
}
