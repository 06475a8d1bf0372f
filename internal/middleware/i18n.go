package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"campaignops/internal/liquidity"
)

type localeContextKey struct{}
type countryContextKey struct{}

var (
	LocaleKey  = localeContextKey{}
	CountryKey = countryContextKey{}
)

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

// arabicCountries default to the Arabic disclosure when the client sends no
// language preference.
var arabicCountries = map[string]struct{}{
	"AE": {}, "BH": {}, "DZ": {}, "EG": {}, "IQ": {}, "JO": {}, "KW": {}, "LB": {},
	"LY": {}, "MA": {}, "OM": {}, "PS": {}, "QA": {}, "SA": {}, "SD": {}, "SY": {},
	"TN": {}, "YE": {},
}

// I18N stores the disclosure locale and the best-effort client country in
// the request context.
func I18N(defaultLocale liquidity.Locale, lookup CountryLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			country := ResolveCountry(r, lookup)
			locale := detectLocale(r, defaultLocale, country)
			ctx := context.WithValue(r.Context(), LocaleKey, locale)
			if country != "" {
				ctx = context.WithValue(ctx, CountryKey, country)
			}
			w.Header().Set("Content-Language", string(locale))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectLocale(r *http.Request, fallback liquidity.Locale, country string) liquidity.Locale {
	if v := strings.TrimSpace(r.Header.Get("X-Locale")); v != "" {
		return liquidity.ParseLocale(v)
	}
	if v := strings.TrimSpace(r.Header.Get("Accept-Language")); v != "" {
		return liquidity.ParseLocale(v)
	}
	if _, ok := arabicCountries[strings.ToUpper(country)]; ok {
		return liquidity.LocaleArabic
	}
	if country != "" {
		return liquidity.LocaleEnglish
	}
	if fallback != "" {
		return fallback
	}
	return liquidity.LocaleEnglish
}

// ClientIP returns the best-effort client IP address for the request.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		first, _, _ := strings.Cut(xf, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func LocaleFromContext(ctx context.Context) liquidity.Locale {
	if v, ok := ctx.Value(LocaleKey).(liquidity.Locale); ok && v != "" {
		return v
	}
	return liquidity.LocaleEnglish
}

// CountryFromContext returns the ISO country code stored in the request context.
func CountryFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CountryKey).(string); ok {
		return v
	}
	return ""
}

// ResolveCountry checks proxy country headers, then the region subtag of the
// requested locale, then the GeoIP lookup.
func ResolveCountry(r *http.Request, lookup CountryLookup) string {
	if r == nil {
		return ""
	}
	for _, key := range []string{"X-Country-Code", "CF-IPCountry", "X-Appengine-Country"} {
		if val := strings.TrimSpace(r.Header.Get(key)); val != "" {
			return strings.ToUpper(val)
		}
	}
	if region := localeRegion(r.Header.Get("X-Locale")); region != "" {
		return region
	}
	if region := localeRegion(r.Header.Get("Accept-Language")); region != "" {
		return region
	}
	if lookup != nil {
		if ip := ClientIP(r); ip != "" {
			if country, err := lookup(ip); err == nil && country != "" {
				return strings.ToUpper(country)
			}
		}
	}
	return ""
}

func localeRegion(accept string) string {
	for _, part := range strings.Split(accept, ",") {
		token, _, _ := strings.Cut(part, ";")
		token = strings.TrimSpace(token)
		if idx := strings.IndexAny(token, "-_"); idx > 0 && idx < len(token)-1 {
			return strings.ToUpper(token[idx+1:])
		}
	}
	return ""
}
