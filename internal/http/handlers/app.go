package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"campaignops/internal/campaigns"
	"campaignops/internal/currency"
	"campaignops/internal/ledger"
	"campaignops/internal/liquidity"
	"campaignops/internal/storage"
	"campaignops/internal/trust"
)

// App holds the services behind the HTTP handlers.
type App struct {
	Calc       *liquidity.Calculator
	Trust      *trust.View
	Campaigns  campaigns.Store
	Files      *storage.FileStore
	Normalizer *currency.Normalizer
	// Velocity is the default monthly resolution velocity for projections.
	Velocity       decimal.Decimal
	MaxUploadBytes int64
	Logger         zerolog.Logger
	Now            func() time.Time
}

// NewApp wires the handlers to calc and its ledger. A calculator without a
// ledger is served as if the ledger were empty.
func NewApp(calc *liquidity.Calculator, store campaigns.Store, files *storage.FileStore, norm *currency.Normalizer, velocity decimal.Decimal, logger zerolog.Logger) *App {
	l := calc.Ledger()
	if l == nil {
		l = ledger.Empty()
	}
	if norm == nil {
		norm = currency.NewDefault()
	}
	return &App{
		Calc:           calc,
		Trust:          trust.New(l),
		Campaigns:      store,
		Files:          files,
		Normalizer:     norm,
		Velocity:       velocity,
		MaxUploadBytes: 10 << 20,
		Logger:         logger,
		Now:            time.Now,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, msg string) {
	a.json(w, code, map[string]string{"error": errCode, "message": msg})
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) ledger() *ledger.Ledger {
	if l := a.Calc.Ledger(); l != nil {
		return l
	}
	return ledger.Empty()
}
