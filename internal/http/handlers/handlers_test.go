package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"campaignops/internal/campaigns"
	"campaignops/internal/ledger"
	"campaignops/internal/liquidity"
	"campaignops/internal/storage"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	l := ledger.FromEntries([]ledger.Entry{
		{Timestamp: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(100), Currency: "EUR", Beneficiary: "Family A"},
		{Timestamp: time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(400), Currency: "EUR", Beneficiary: "Family B"},
		{Timestamp: time.Date(2024, 3, 3, 9, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(1000), Currency: "EUR", Beneficiary: "Family C"},
	}, ledger.Options{})
	calc, err := liquidity.NewCalculator(liquidity.Options{Ledger: l})
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	store := campaigns.NewMemoryStore()
	if err := store.Put(context.Background(), campaigns.Campaign{ID: "chuffed_1", Platform: campaigns.PlatformChuffed, Title: "Help Family A", Goal: "2000", Status: "active"}); err != nil {
		t.Fatalf("put campaign: %v", err)
	}
	files, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	app := NewApp(calc, store, files, nil, decimal.NewFromInt(500), zerolog.Nop())
	app.Now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return app
}

func withID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return payload
}

func TestLedgerSummary(t *testing.T) {
	app := newTestApp(t)
	rr := httptest.NewRecorder()
	app.LedgerSummary(rr, httptest.NewRequest(http.MethodGet, "/v1/ledger/summary", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status code: got %d, want 200", rr.Code)
	}
	payload := decode(t, rr)
	if payload["donations"] != float64(3) {
		t.Fatalf("expected 3 donations, got %#v", payload["donations"])
	}
	if payload["outstanding"] != float64(1500) {
		t.Fatalf("expected outstanding 1500, got %#v", payload["outstanding"])
	}
	if payload["oldest"] != "2024-03-01T09:00:00Z" {
		t.Fatalf("unexpected oldest: %#v", payload["oldest"])
	}
}

func TestLedgerQueueLimit(t *testing.T) {
	app := newTestApp(t)
	rr := httptest.NewRecorder()
	app.LedgerQueue(rr, httptest.NewRequest(http.MethodGet, "/v1/ledger/queue?limit=2", nil))

	var payload struct {
		Items []donationView `json:"items"`
		Total int            `json:"total"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Total != 3 || len(payload.Items) != 2 {
		t.Fatalf("expected 2 of 3 items, got %d of %d", len(payload.Items), payload.Total)
	}
	if payload.Items[0].Beneficiary != "Family A" {
		t.Fatalf("expected oldest donation first, got %q", payload.Items[0].Beneficiary)
	}

	rr = httptest.NewRecorder()
	app.LedgerQueue(rr, httptest.NewRequest(http.MethodGet, "/v1/ledger/queue?limit=abc", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rr.Code)
	}
}

func TestTrustProjection(t *testing.T) {
	app := newTestApp(t)
	rr := httptest.NewRecorder()
	app.TrustProjection(rr, httptest.NewRequest(http.MethodGet, "/v1/trust/projection?velocity=0", nil))

	payload := decode(t, rr)
	if payload["projected_months"] != "infinite" || payload["status"] != "stagnant" {
		t.Fatalf("expected stagnant projection, got %#v", payload)
	}

	rr = httptest.NewRecorder()
	app.TrustProjection(rr, httptest.NewRequest(http.MethodGet, "/v1/trust/projection", nil))
	payload = decode(t, rr)
	if payload["projected_months"] != float64(3) {
		t.Fatalf("expected 3 months at default velocity, got %#v", payload["projected_months"])
	}
}

func TestSplitIsPure(t *testing.T) {
	app := newTestApp(t)
	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		app.Split(rr, httptest.NewRequest(http.MethodPost, "/v1/split", strings.NewReader(`{"goal": 1000}`)))
		if rr.Code != http.StatusOK {
			t.Fatalf("unexpected status code: got %d, want 200", rr.Code)
		}
		var payload struct {
			Split struct {
				DebtResolution float64 `json:"debt_resolution"`
				Resolutions    []struct {
					Beneficiary string `json:"shareholder"`
				} `json:"resolutions"`
			} `json:"split"`
			Locale string `json:"locale"`
		}
		if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if payload.Split.DebtResolution != 100 {
			t.Fatalf("expected debt resolution 100, got %v", payload.Split.DebtResolution)
		}
		if len(payload.Split.Resolutions) != 1 || payload.Split.Resolutions[0].Beneficiary != "Family A" {
			t.Fatalf("unexpected resolutions: %#v", payload.Split.Resolutions)
		}
		if payload.Locale != "en" {
			t.Fatalf("expected en locale, got %q", payload.Locale)
		}
	}
	if got := app.ledger().TotalUnsatisfiedDebt(); !got.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("split must not touch the ledger, outstanding %s", got)
	}
}

func TestSplitRejectsBadPayload(t *testing.T) {
	app := newTestApp(t)
	rr := httptest.NewRecorder()
	app.Split(rr, httptest.NewRequest(http.MethodPost, "/v1/split", strings.NewReader(`{}`)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestCampaignResolveIsIdempotent(t *testing.T) {
	app := newTestApp(t)

	rr := httptest.NewRecorder()
	app.CampaignResolve(rr, withID(httptest.NewRequest(http.MethodPost, "/v1/campaigns/chuffed_1/resolve", nil), "chuffed_1"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("unexpected status code: got %d, want 201", rr.Code)
	}
	first := decode(t, rr)
	if first["replayed"] != false {
		t.Fatalf("first apply must not be replayed: %#v", first)
	}

	rr = httptest.NewRecorder()
	app.CampaignResolve(rr, withID(httptest.NewRequest(http.MethodPost, "/v1/campaigns/chuffed_1/resolve", nil), "chuffed_1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status code: got %d, want 200", rr.Code)
	}
	second := decode(t, rr)
	if second["replayed"] != true || second["entry_id"] != first["entry_id"] {
		t.Fatalf("expected replay of %v, got %#v", first["entry_id"], second)
	}

	if got := app.ledger().TotalUnsatisfiedDebt(); !got.Equal(decimal.NewFromInt(1300)) {
		t.Fatalf("expected outstanding 1300 after one apply, got %s", got)
	}
}

func TestCampaignNotFound(t *testing.T) {
	app := newTestApp(t)
	rr := httptest.NewRecorder()
	app.CampaignSplit(rr, withID(httptest.NewRequest(http.MethodGet, "/v1/campaigns/missing/split", nil), "missing"))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestValidateSubstitutesSplitVariables(t *testing.T) {
	app := newTestApp(t)
	body := `{
		"text": "We dedicate 100 to clearing old debt.",
		"rules": {
			"primary": {"mentions_amount": {"type": "contains", "value": "{liq_debt_resolution}"}},
			"secondary": {"long_enough": {"type": "min_length", "value": 20, "message": "Add detail"}}
		},
		"vars": {"goal_amount": "1000"}
	}`
	rr := httptest.NewRecorder()
	app.Validate(rr, httptest.NewRequest(http.MethodPost, "/v1/validate", strings.NewReader(body)))

	var res struct {
		Passed      bool     `json:"passed"`
		Score       float64  `json:"score"`
		Suggestions []string `json:"suggestions"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !res.Passed || res.Score != 0.5 {
		t.Fatalf("expected pass with score 0.5, got %+v", res)
	}
	if len(res.Suggestions) != 1 || res.Suggestions[0] != "Secondary Hint: Add detail" {
		t.Fatalf("unexpected suggestions: %#v", res.Suggestions)
	}
}

func TestIntakeTransactions(t *testing.T) {
	app := newTestApp(t)
	csv := "Created At,Type,Currency,Amount,Description,Status\n" +
		"\"15/03/2024, 09:30:00\",donation,EUR,\"50.00\",Family Haddad,succeeded\n" +
		"\"01/02/2024, 18:05:10\",payout,EUR,\"400.00\",Withdrawal,paid\n" +
		"\"01/02/2024, 18:05:10\",donation,EUR,\"100.00\",Family Nasser,succeeded\n"
	rr := httptest.NewRecorder()
	app.IntakeTransactions(rr, httptest.NewRequest(http.MethodPost, "/v1/intake/transactions", strings.NewReader(csv)))

	if rr.Code != http.StatusCreated {
		t.Fatalf("unexpected status code: got %d, want 201: %s", rr.Code, rr.Body.String())
	}
	payload := decode(t, rr)
	if payload["kept"] != float64(2) || payload["ignored"] != float64(1) {
		t.Fatalf("unexpected parse stats: %#v", payload)
	}
	if payload["total_debt"] != float64(150) {
		t.Fatalf("expected total debt 150, got %#v", payload["total_debt"])
	}
	keys, err := app.Files.List(context.Background(), "transactions/")
	if err != nil {
		t.Fatalf("list uploads: %v", err)
	}
	if len(keys) != 1 || keys[0] != payload["key"] {
		t.Fatalf("expected stored upload %v, got %v", payload["key"], keys)
	}
}

func TestIntakeTransactionsTooLarge(t *testing.T) {
	app := newTestApp(t)
	app.MaxUploadBytes = 8
	rr := httptest.NewRecorder()
	app.IntakeTransactions(rr, httptest.NewRequest(http.MethodPost, "/v1/intake/transactions", strings.NewReader("Created At,Type,Currency\n")))
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rr.Code)
	}
}

func TestExportTransparency(t *testing.T) {
	app := newTestApp(t)
	rr := httptest.NewRecorder()
	app.ExportTransparency(rr, httptest.NewRequest(http.MethodGet, "/v1/export/transparency.zip?goal=1000", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status code: got %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/zip" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.HasPrefix(rr.Body.String(), "PK") {
		t.Fatalf("expected a zip archive")
	}
	if got := app.ledger().TotalUnsatisfiedDebt(); !got.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("export must not touch the ledger, outstanding %s", got)
	}
}
