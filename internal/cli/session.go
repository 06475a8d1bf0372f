package cli

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"campaignops/internal/currency"
	"campaignops/internal/events"
	"campaignops/internal/infra"
	"campaignops/internal/journal"
	"campaignops/internal/ledger"
	"campaignops/internal/liquidity"
)

// session is the ledger, journal and calculator one command works on.
type session struct {
	settings infra.Settings
	norm     *currency.Normalizer
	ledger   *ledger.Ledger
	journal  journal.Store
	calc     *liquidity.Calculator
	logger   zerolog.Logger
	out      *OutputFormatter
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).Level(level).With().Timestamp().Logger()
}

// openSession loads the settings and ledger, opens the journal and replays
// it, so the ledger reflects every split applied so far.
func openSession(ctx context.Context, opts *RootOptions, cmd *cobra.Command) (*session, error) {
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	settings, err := infra.LoadSettings(opts.PolicyFile)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load policy", err)
	}
	norm := currency.New(settings.Currency)

	l, err := ledger.Load(opts.Transactions, ledger.Options{Normalizer: norm, Logger: &logger})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load transactions", err)
	}

	var store journal.Store = journal.NewMemoryStore()
	if opts.Journal != "" {
		lite, err := journal.OpenSQLite(opts.Journal)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "open journal", err)
		}
		store = lite
	}
	replayed, err := journal.Replay(ctx, store, l)
	if err != nil {
		store.Close()
		return nil, WrapExitError(ExitCommandError, "replay journal", err)
	}
	logger.Debug().Int("donations", l.Len()).Int("replayed", replayed).Msg("ledger loaded")

	calc, err := liquidity.NewCalculator(liquidity.Options{
		Policy:    &settings.Policy,
		Ledger:    l,
		Journal:   store,
		Publisher: events.NewLoggingPublisher(logger),
		Logger:    &logger,
	})
	if err != nil {
		store.Close()
		return nil, WrapExitError(ExitCommandError, "invalid policy", err)
	}

	return &session{
		settings: settings,
		norm:     norm,
		ledger:   l,
		journal:  store,
		calc:     calc,
		logger:   logger,
		out:      &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()},
	}, nil
}

func (s *session) Close() error {
	return s.journal.Close()
}
