package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func callerEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(CallerFromContext(r.Context())))
	})
}

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims jwt.RegisteredClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func validClaims(sub string) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
}

func assertUnauthenticated(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
	var errResp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != CodeUnauthenticated {
		t.Errorf("code = %s", errResp.Code)
	}
}

func TestAuthMiddleware_NoSecret_UsesHeader(t *testing.T) {
	handler := CallerAuthMiddleware("")(callerEcho())

	req := httptest.NewRequest("GET", "/v1/places/x", http.NoBody)
	req.Header.Set(CallerHeader, " user-1 ")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK || rr.Body.String() != "user-1" {
		t.Errorf("got %d %q", rr.Code, rr.Body.String())
	}
}

func TestAuthMiddleware_NoSecret_Anonymous(t *testing.T) {
	handler := CallerAuthMiddleware("")(callerEcho())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/v1/places/x", http.NoBody))

	if rr.Code != http.StatusOK || rr.Body.String() != "" {
		t.Errorf("got %d %q", rr.Code, rr.Body.String())
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	handler := CallerAuthMiddleware(testSecret)(callerEcho())

	req := httptest.NewRequest("GET", "/v1/places/x", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("user-7")))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK || rr.Body.String() != "user-7" {
		t.Errorf("got %d %q", rr.Code, rr.Body.String())
	}
}

func TestAuthMiddleware_HeaderIgnoredWithSecret(t *testing.T) {
	handler := CallerAuthMiddleware(testSecret)(callerEcho())

	req := httptest.NewRequest("GET", "/v1/places/x", http.NoBody)
	req.Header.Set(CallerHeader, "spoofed")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assertUnauthenticated(t, rr)
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	expired := validClaims("u")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	noExp := jwt.RegisteredClaims{Subject: "u"}

	tests := []struct {
		name   string
		header string
	}{
		{"bad scheme", "Basic dXNlcjpwYXNz"},
		{"garbage", "Bearer not-a-jwt"},
		{"wrong key", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("other"), validClaims("u"))},
		{"wrong alg", "Bearer " + signToken(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims("u"))},
		{"expired", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), expired)},
		{"no exp", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), noExp)},
		{"no sub", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims(""))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := CallerAuthMiddleware(testSecret)(callerEcho())
			req := httptest.NewRequest("GET", "/v1/places/x", http.NoBody)
			req.Header.Set("Authorization", tt.header)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assertUnauthenticated(t, rr)
		})
	}
}

func TestAuthMiddleware_MissingHeader_401(t *testing.T) {
	handler := CallerAuthMiddleware(testSecret)(callerEcho())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/v1/places/x", http.NoBody))

	assertUnauthenticated(t, rr)
}

func TestAuthMiddleware_ExemptPaths(t *testing.T) {
	handler := CallerAuthMiddleware(testSecret)(callerEcho())

	for _, path := range []string{"/health", "/metrics"} {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("GET", path, http.NoBody))
		if rr.Code != http.StatusOK {
			t.Errorf("%s: got %d, want %d", path, rr.Code, http.StatusOK)
		}
	}
}
