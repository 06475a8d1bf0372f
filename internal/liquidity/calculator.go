package liquidity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"campaignops/internal/events"
	"campaignops/internal/journal"
	"campaignops/internal/ledger"
)

var ErrNoLedger = errors.New("liquidity: no ledger attached")

// Options configures a Calculator. Every field is optional.
type Options struct {
	// Policy defaults to DefaultPolicy.
	Policy *Policy
	// Ledger receives debt resolutions. Without it splits are pure.
	Ledger *ledger.Ledger
	// Journal records applied splits. Defaults to an in-memory store.
	Journal journal.Store
	// Publisher receives debt.resolved events after an Apply.
	Publisher events.Publisher
	Logger    *zerolog.Logger
}

// Calculator computes splits and applies them to an attached ledger.
type Calculator struct {
	policy    Policy
	ledger    *ledger.Ledger
	journal   journal.Store
	publisher events.Publisher
	logger    zerolog.Logger

	// mu serializes every path that resolves ledger debt.
	mu sync.Mutex
}

// Application is the outcome of Apply.
type Application struct {
	CampaignRef string
	EntryID     string
	Split       Split
	Events      []ledger.ResolutionEvent
	// Replayed is true when the campaign had already been applied and the
	// recorded events were returned without touching the ledger.
	Replayed bool
}

// NewCalculator validates the policy and returns a Calculator.
func NewCalculator(opts Options) (*Calculator, error) {
	policy := DefaultPolicy()
	if opts.Policy != nil {
		policy = *opts.Policy
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	c := &Calculator{
		policy:    policy,
		ledger:    opts.Ledger,
		journal:   opts.Journal,
		publisher: opts.Publisher,
		logger:    zerolog.Nop(),
	}
	if opts.Logger != nil {
		c.logger = *opts.Logger
	}
	if c.journal == nil {
		c.journal = journal.NewMemoryStore()
	}
	return c, nil
}

func (c *Calculator) Policy() Policy { return c.policy }

func (c *Calculator) Ledger() *ledger.Ledger { return c.ledger }

// Compute parses goalText and returns the split without touching the ledger.
func (c *Calculator) Compute(goalText string) Split {
	return ComputeSplit(c.policy, ParseAmount(goalText))
}

// Preview is Compute plus the resolutions the split would make against the
// current ledger state.
func (c *Calculator) Preview(goalText string) Split {
	s := c.Compute(goalText)
	if c.ledger != nil {
		s.Resolutions = c.ledger.Preview(s.DebtResolution)
	}
	return s
}

// CalculateSplit parses goalText, computes the split and, when a ledger is
// attached, resolves the debt share against it. Each call depletes the
// ledger again; use Apply for campaign-scoped, once-only resolution.
func (c *Calculator) CalculateSplit(goalText string) Split {
	s := c.Compute(goalText)
	if c.ledger == nil {
		return s
	}
	c.mu.Lock()
	s.Resolutions = c.ledger.Resolve(s.DebtResolution)
	c.mu.Unlock()
	return s
}

// Apply resolves the debt share of split against the ledger once per
// campaignRef. The journal entry is written before the ledger is touched.
// A repeated call ignores split and returns the recorded entry with Replayed
// set.
func (c *Calculator) Apply(ctx context.Context, campaignRef string, split Split) (Application, error) {
	ref := strings.TrimSpace(campaignRef)
	if ref == "" {
		return Application{}, fmt.Errorf("liquidity: apply: empty campaign reference")
	}
	if c.ledger == nil {
		return Application{}, ErrNoLedger
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	prior, err := c.journal.Find(ctx, ref)
	switch {
	case err == nil:
		recorded := c.recordedSplit(prior)
		return Application{CampaignRef: ref, EntryID: prior.ID, Split: recorded, Events: prior.Events, Replayed: true}, nil
	case !errors.Is(err, journal.ErrNotFound):
		return Application{}, fmt.Errorf("liquidity: apply %s: %w", ref, err)
	}

	entry := journal.NewEntry(ref, split.GrossGoal, split.DebtResolution, c.ledger.Preview(split.DebtResolution))
	if err := c.journal.Record(ctx, entry); err != nil {
		return Application{}, fmt.Errorf("liquidity: apply %s: %w", ref, err)
	}
	applied := c.ledger.Resolve(split.DebtResolution)
	split.Resolutions = applied

	log := c.logger
	log.Info().
		Str("campaign_ref", ref).
		Str("amount", split.DebtResolution.String()).
		Int("events", len(applied)).
		Msg("debt resolution applied")

	if c.publisher != nil {
		if err := events.PublishResolutions(ctx, c.publisher, ref, c.ledger.BaseCurrency(), applied); err != nil {
			log.Warn().Err(err).Str("campaign_ref", ref).Msg("resolution events not published")
		}
	}
	return Application{CampaignRef: ref, EntryID: entry.ID, Split: split, Events: applied}, nil
}

// PublicContext renders the disclosure for goalText. Resolutions are
// previewed, so the ledger is not depleted.
func (c *Calculator) PublicContext(goalText string, locale Locale) string {
	return Disclosure(c.Preview(goalText), c.policy, locale)
}

// Variables returns the liq_* template variables for goalText.
func (c *Calculator) Variables(goalText string, locale Locale) map[string]string {
	s := c.Preview(goalText)
	return map[string]string{
		"liq_transparent_total": FormatAmount(s.TransparentTotal),
		"liq_debt_resolution":   FormatAmount(s.DebtResolution),
		"liq_fees":              FormatAmount(s.TransactionFees),
		"liq_public_note":       Disclosure(s, c.policy, locale),
	}
}

// Sum returns the total of a split's parts; it always equals TotalResolution.
func (s Split) Sum() decimal.Decimal {
	return s.DebtResolution.Add(s.TransactionFees).Add(s.OperationalCushion)
}

// recordedSplit rebuilds the split a journal entry was applied with. The
// recorded amount wins over the current policy's debt share.
func (c *Calculator) recordedSplit(e journal.Entry) Split {
	s := ComputeSplit(c.policy, e.Goal)
	s.DebtResolution = e.Amount
	s.Resolutions = e.Events
	return s
}
