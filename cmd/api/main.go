package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"campaignops/internal/campaigns"
	"campaignops/internal/currency"
	"campaignops/internal/events"
	"campaignops/internal/http/handlers"
	httpapi "campaignops/internal/http/httpapi"
	"campaignops/internal/infra"
	"campaignops/internal/infra/geoip"
	"campaignops/internal/journal"
	"campaignops/internal/ledger"
	"campaignops/internal/liquidity"
	"campaignops/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings, err := infra.LoadSettings(cfg.PolicyFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: invalid policy file")
	}
	norm := currency.New(settings.Currency)

	l, err := ledger.Load(cfg.TransactionsPath, ledger.Options{Normalizer: norm, Logger: &logger})
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to load transactions")
	}

	store, err := infra.OpenJournal(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.JournalDriver).Msg("api: failed to open journal")
	}
	defer store.Close()

	replayed, err := journal.Replay(ctx, store, l)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: journal replay failed")
	}
	logger.Info().
		Int("donations", l.Len()).
		Int("replayed", replayed).
		Str("outstanding", l.TotalUnsatisfiedDebt().String()).
		Msg("api: ledger ready")

	var publisher events.Publisher = events.NewLoggingPublisher(logger)
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := events.NewKafkaPublisher(cfg.KafkaBrokers, map[string]string{events.TypeDebtResolved: cfg.KafkaTopicResolved})
		if err != nil {
			logger.Fatal().Err(err).Msg("api: failed to configure kafka")
		}
		publisher = kp
	}
	defer publisher.Close()

	calc, err := liquidity.NewCalculator(liquidity.Options{
		Policy:    &settings.Policy,
		Ledger:    l,
		Journal:   store,
		Publisher: publisher,
		Logger:    &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("api: invalid policy")
	}

	var campaignStore campaigns.Store = campaigns.NewMemoryStore()
	if cfg.RedisURL != "" {
		client, err := campaigns.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("api: redis connection failed")
		}
		defer client.Close()
		campaignStore = campaigns.NewRedisStore(client)
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("api: geoip disabled")
	}
	if resolver != nil {
		defer resolver.Close()
	}

	storagePath := cfg.StoragePath
	if !filepath.IsAbs(storagePath) {
		if abs, err := filepath.Abs(storagePath); err == nil {
			storagePath = abs
		}
	}
	files, err := storage.NewFileStore(storagePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to configure storage")
	}

	app := handlers.NewApp(calc, campaignStore, files, norm, settings.MonthlyVelocity, logger)
	app.MaxUploadBytes = cfg.MaxUploadBytes

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		CORSOrigins:     cfg.CORSAllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		DefaultLocale:   liquidity.ParseLocale(cfg.DefaultLocale),
		CountryLookup:   geoip.Lookup(resolver),
		OperatorSecret:  cfg.OperatorSecret,
	})
	server := infra.NewHTTPServer(cfg, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", server.Addr()).Msg("api: listening")
		return server.Serve(gctx)
	})
	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("api: server failed")
		return
	}
	logger.Info().Msg("api: stopped")
}
