package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"coupon-service/pkg/jwtutil"
	"coupon-service/pkg/logger"
)

const signingKey = "test-signing-key"

func newEcho(jwtUtil *jwtutil.JWTUtil) *echo.Echo {
	e := echo.New()
	e.Use(RequestIDMiddleware())
	e.GET("/private", func(c echo.Context) error {
		p, ok := PrincipalFrom(c)
		if !ok {
			return c.NoContent(http.StatusInternalServerError)
		}
		if logger.FromContext(c.Request().Context()) == nil {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.String(http.StatusOK, p.UserID)
	}, JWTAuthMiddleware(jwtUtil))
	return e
}

func TestRequestIDMiddleware(t *testing.T) {
	e := newEcho(jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: signingKey}))

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("missing generated request id")
	}

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want the incoming one", got)
	}
}

func TestJWTAuthMiddleware(t *testing.T) {
	jwtUtil := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: signingKey})
	other := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "another-key"})
	e := newEcho(jwtUtil)

	valid, err := jwtUtil.GenerateToken("user-42", "u42@example.com", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	expired, err := jwtUtil.GenerateToken("user-42", "u42@example.com", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	forged, err := other.GenerateToken("user-42", "u42@example.com", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + valid, http.StatusOK},
		{"lowercase scheme", "bearer " + valid, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"no scheme", valid, http.StatusUnauthorized},
		{"basic", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong key", "Bearer " + forged, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.status == http.StatusOK && rec.Body.String() != "user-42" {
				t.Errorf("principal = %q", rec.Body.String())
			}
			if tt.status == http.StatusUnauthorized && rec.Body.String() != "{\"error\":\"Unauthorized\"}\n" {
				t.Errorf("body = %q", rec.Body.String())
			}
		})
	}
}
