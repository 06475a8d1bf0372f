package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"campaignops/internal/campaigns"
	"campaignops/internal/http/handlers"
	"campaignops/internal/ledger"
	"campaignops/internal/liquidity"
	"campaignops/internal/middleware"
	"campaignops/internal/storage"
)

const secret = "router-test-secret"

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newRouter(t *testing.T, opts Options) http.Handler {
	t.Helper()
	l := ledger.FromEntries([]ledger.Entry{
		{Timestamp: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(100), Currency: "EUR", Beneficiary: "Family A"},
		{Timestamp: time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(400), Currency: "EUR", Beneficiary: "Family B"},
	}, ledger.Options{})
	calc, err := liquidity.NewCalculator(liquidity.Options{Ledger: l})
	require.NoError(t, err)
	store := campaigns.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), campaigns.Campaign{ID: "whydonate_help", Platform: campaigns.PlatformWhydonate, Goal: "1000"}))
	files, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	opts.Logger = zerolog.Nop()
	if opts.DefaultLocale == "" {
		opts.DefaultLocale = liquidity.LocaleEnglish
	}
	return NewRouter(handlers.NewApp(calc, store, files, nil, decimal.NewFromInt(500), zerolog.Nop()), opts)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthz(t *testing.T) {
	h := newRouter(t, Options{})
	rr := serve(h, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.Equal(t, "en", rr.Header().Get("Content-Language"))
	assert.JSONEq(t, `{"status":"ok","donations":2}`, rr.Body.String())
}

func TestSplitLocaleFromAcceptLanguage(t *testing.T) {
	h := newRouter(t, Options{})
	req := httptest.NewRequest(http.MethodPost, "/v1/split", strings.NewReader(`{"goal":"1000"}`))
	req.Header.Set("Accept-Language", "ar-EG,ar;q=0.9,en;q=0.5")
	rr := serve(h, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ar", rr.Header().Get("Content-Language"))
	var payload struct {
		Disclosure string `json:"disclosure"`
		Locale     string `json:"locale"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&payload))
	assert.Equal(t, "ar", payload.Locale)
	assert.Contains(t, payload.Disclosure, "Family A")
}

func TestCountryLookupSelectsArabic(t *testing.T) {
	lookup := func(string) (string, error) { return "JO", nil }
	h := newRouter(t, Options{CountryLookup: lookup})
	rr := serve(h, httptest.NewRequest(http.MethodGet, "/v1/ledger/summary", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ar", rr.Header().Get("Content-Language"))
}

func TestOperatorRoutes(t *testing.T) {
	t.Run("disabled without secret", func(t *testing.T) {
		h := newRouter(t, Options{})
		rr := serve(h, httptest.NewRequest(http.MethodPost, "/v1/campaigns/whydonate_help/resolve", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		h := newRouter(t, Options{OperatorSecret: secret})
		rr := serve(h, httptest.NewRequest(http.MethodPost, "/v1/campaigns/whydonate_help/resolve", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		h := newRouter(t, Options{OperatorSecret: secret})
		token, err := middleware.SignOperatorToken(secret, "ops@example.org", time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/v1/campaigns/whydonate_help/resolve", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := serve(h, req)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		summary := serve(h, httptest.NewRequest(http.MethodGet, "/v1/ledger/summary", nil))
		var payload map[string]any
		require.NoError(t, json.NewDecoder(summary.Body).Decode(&payload))
		assert.Equal(t, float64(400), payload["outstanding"])
	})
}

func TestPublicRoutes(t *testing.T) {
	h := newRouter(t, Options{})
	for _, path := range []string{
		"/v1/ledger/queue",
		"/v1/ledger/beneficiaries",
		"/v1/trust/shareholders",
		"/v1/trust/projection?velocity=100",
		"/v1/campaigns",
		"/v1/campaigns/whydonate_help/split",
		"/v1/export/transparency.zip?goal=1000",
	} {
		rr := serve(h, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
}

func TestRateLimit(t *testing.T) {
	h := newRouter(t, Options{RateLimitPerMin: 1})
	first := serve(h, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	second := serve(h, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
}

func TestCORSPreflight(t *testing.T) {
	h := newRouter(t, Options{CORSOrigins: []string{"https://campaigns.example.org"}})
	req := httptest.NewRequest(http.MethodOptions, "/v1/split", nil)
	req.Header.Set("Origin", "https://campaigns.example.org")
	rr := serve(h, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "https://campaigns.example.org", rr.Header().Get("Access-Control-Allow-Origin"))
}
