package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestOperatorTokenRoundTrip(t *testing.T) {
	token, err := SignOperatorToken("s3cret", "amal", time.Hour)
	if err != nil {
		t.Fatalf("SignOperatorToken: %v", err)
	}
	claims, err := VerifyOperatorToken("s3cret", token)
	if err != nil {
		t.Fatalf("VerifyOperatorToken: %v", err)
	}
	if claims.Subject != "amal" || claims.Role != RoleOperator {
		t.Fatalf("claims = %+v", claims)
	}
	if _, err := VerifyOperatorToken("other", token); err != ErrInvalidToken {
		t.Fatalf("wrong secret err = %v", err)
	}
	if _, err := SignOperatorToken("", "amal", time.Hour); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func signClaims(t *testing.T, method jwt.SigningMethod, claims OperatorClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte("s3cret"))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return token
}

func TestOperatorTokenExpired(t *testing.T) {
	token := signClaims(t, jwt.SigningMethodHS256, OperatorClaims{
		Role: RoleOperator,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "amal",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	if _, err := VerifyOperatorToken("s3cret", token); err != ErrTokenExpired {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
}

func TestOperatorTokenRequiresLifetime(t *testing.T) {
	for _, ttl := range []time.Duration{0, -time.Minute} {
		if _, err := SignOperatorToken("s3cret", "amal", ttl); err != ErrTokenTTL {
			t.Fatalf("ttl %s: err = %v, want ErrTokenTTL", ttl, err)
		}
	}

	noExpiry := signClaims(t, jwt.SigningMethodHS256, OperatorClaims{
		Role:             RoleOperator,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "amal"},
	})
	if _, err := VerifyOperatorToken("s3cret", noExpiry); err != ErrInvalidToken {
		t.Fatalf("token without exp: err = %v, want ErrInvalidToken", err)
	}
}

func TestOperatorTokenRejectsOtherAlgorithmsAndRoles(t *testing.T) {
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))
	hs512 := signClaims(t, jwt.SigningMethodHS512, OperatorClaims{
		Role:             RoleOperator,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "amal", ExpiresAt: exp},
	})
	if _, err := VerifyOperatorToken("s3cret", hs512); err != ErrInvalidToken {
		t.Fatalf("HS512: err = %v", err)
	}
	viewer := signClaims(t, jwt.SigningMethodHS256, OperatorClaims{
		Role:             "viewer",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "amal", ExpiresAt: exp},
	})
	if _, err := VerifyOperatorToken("s3cret", viewer); err != ErrInvalidToken {
		t.Fatalf("viewer role: err = %v", err)
	}
}

func TestRequireOperator(t *testing.T) {
	var subject string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject = OperatorFromContext(r.Context())
	})
	token, _ := SignOperatorToken("s3cret", "amal", time.Hour)

	tests := []struct {
		name   string
		secret string
		header string
		want   int
	}{
		{name: "valid", secret: "s3cret", header: "Bearer " + token, want: http.StatusOK},
		{name: "missing", secret: "s3cret", want: http.StatusUnauthorized},
		{name: "wrong scheme", secret: "s3cret", header: "Basic " + token, want: http.StatusUnauthorized},
		{name: "tampered", secret: "s3cret", header: "Bearer " + token + "x", want: http.StatusUnauthorized},
		{name: "disabled", secret: "", header: "Bearer " + token, want: http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			subject = ""
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			RequireOperator(tc.secret)(next).ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
			if tc.want == http.StatusOK && subject != "amal" {
				t.Fatalf("subject = %q", subject)
			}
			if tc.want != http.StatusOK && !strings.Contains(rec.Body.String(), `"error"`) {
				t.Fatalf("body = %q", rec.Body.String())
			}
		})
	}
}
