package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"campaignops/internal/liquidity"
)

type assertError string

func (e assertError) Error() string { return string(e) }

func TestDetectLocale(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(r *http.Request)
		fallback liquidity.Locale
		country  string
		want     liquidity.Locale
	}{
		{
			name: "x-locale overrides",
			setup: func(r *http.Request) {
				r.Header.Set("X-Locale", "AR")
			},
			country: "US",
			want:    liquidity.LocaleArabic,
		},
		{
			name: "accept-language used",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "en-US,en;q=0.9")
			},
			country: "PS",
			want:    liquidity.LocaleEnglish,
		},
		{
			name: "accept-language ar preference",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "ar-JO,en;q=0.8")
			},
			want: liquidity.LocaleArabic,
		},
		{
			name:    "arabic-speaking country",
			country: "PS",
			want:    liquidity.LocaleArabic,
		},
		{
			name:     "other country falls back to en",
			country:  "NL",
			fallback: liquidity.LocaleArabic,
			want:     liquidity.LocaleEnglish,
		},
		{
			name:     "configured fallback",
			fallback: liquidity.LocaleArabic,
			want:     liquidity.LocaleArabic,
		},
		{
			name: "default to en",
			want: liquidity.LocaleEnglish,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.setup != nil {
				tc.setup(req)
			}
			got := detectLocale(req, tc.fallback, tc.country)
			if got != tc.want {
				t.Fatalf("detectLocale() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResolveCountry(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(r *http.Request)
		resolver CountryLookup
		want     string
	}{
		{
			name: "header precedence",
			setup: func(r *http.Request) {
				r.Header.Set("X-Country-Code", "ps")
				r.Header.Set("CF-IPCountry", "nl")
			},
			want: "PS",
		},
		{
			name: "locale region fallback",
			setup: func(r *http.Request) {
				r.Header.Set("X-Locale", "ar-EG")
			},
			want: "EG",
		},
		{
			name: "accept-language region",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "en-GB,en;q=0.9")
			},
			want: "GB",
		},
		{
			name: "resolver fallback",
			resolver: func(ip string) (string, error) {
				if ip != "203.0.113.4" {
					t.Fatalf("unexpected ip: %s", ip)
				}
				return "jo", nil
			},
			want: "JO",
		},
		{
			name: "resolver error returns empty",
			resolver: func(ip string) (string, error) {
				return "", assertError("boom")
			},
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "203.0.113.4:80"
			if tc.setup != nil {
				tc.setup(req)
			}
			got := ResolveCountry(req, tc.resolver)
			if got != tc.want {
				t.Fatalf("ResolveCountry() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestI18NMiddleware(t *testing.T) {
	var gotLocale liquidity.Locale
	var gotCountry string
	h := I18N(liquidity.LocaleEnglish, func(string) (string, error) { return "sa", nil })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotLocale = LocaleFromContext(r.Context())
			gotCountry = CountryFromContext(r.Context())
		}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if gotLocale != liquidity.LocaleArabic || gotCountry != "SA" {
		t.Fatalf("locale=%q country=%q, want ar/SA", gotLocale, gotCountry)
	}
	if rec.Header().Get("Content-Language") != "ar" {
		t.Fatalf("Content-Language = %q", rec.Header().Get("Content-Language"))
	}
}

func TestLocaleFromContext(t *testing.T) {
	ctx := context.Background()
	if got := LocaleFromContext(ctx); got != liquidity.LocaleEnglish {
		t.Fatalf("LocaleFromContext() default = %q, want %q", got, liquidity.LocaleEnglish)
	}
	ctx = context.WithValue(ctx, LocaleKey, liquidity.LocaleArabic)
	if got := LocaleFromContext(ctx); got != liquidity.LocaleArabic {
		t.Fatalf("LocaleFromContext() with value = %q, want %q", got, liquidity.LocaleArabic)
	}
}
