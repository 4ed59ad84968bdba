package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/logging"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func actorEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(logging.ActorIDFromContext(r.Context())))
	})
}

func TestAuthenticate(t *testing.T) {
	verifier, err := NewTokenVerifier(testSecret)
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	userID := uuid.NewString()
	valid := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	expired := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	wrongKey := signToken(t, jwt.SigningMethodHS256, []byte("other"), jwt.RegisteredClaims{Subject: userID})
	noSubject := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{})
	upperSubject := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{Subject: strings.ToUpper(userID)})
	urnSubject := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{Subject: "urn:uuid:" + userID})
	badSubject := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{Subject: "alice"})

	cases := []struct {
		name       string
		header     string
		wantStatus int
		wantActor  string
	}{
		{"anonymous", "", http.StatusOK, ""},
		{"valid", "Bearer " + valid, http.StatusOK, userID},
		{"lowercaseScheme", "bearer " + valid, http.StatusOK, userID},
		{"uppercaseSubject", "Bearer " + upperSubject, http.StatusOK, userID},
		{"urnSubject", "Bearer " + urnSubject, http.StatusOK, userID},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, ""},
		{"wrongKey", "Bearer " + wrongKey, http.StatusUnauthorized, ""},
		{"noSubject", "Bearer " + noSubject, http.StatusUnauthorized, ""},
		{"badSubject", "Bearer " + badSubject, http.StatusUnauthorized, ""},
		{"basicScheme", "Basic abc", http.StatusUnauthorized, ""},
		{"emptyToken", "Bearer ", http.StatusUnauthorized, ""},
	}

	handler := Authenticate(verifier)(actorEcho())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rec.Code)
			}
			if tc.wantStatus == http.StatusOK && rec.Body.String() != tc.wantActor {
				t.Fatalf("expected actor %q, got %q", tc.wantActor, rec.Body.String())
			}
		})
	}
}

func TestNewTokenVerifierRequiresSecret(t *testing.T) {
	if _, err := NewTokenVerifier(""); err == nil {
		t.Fatal("expected an error for an empty secret")
	}
}

func TestRequireActor(t *testing.T) {
	handler := RequireActor(actorEcho())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous request, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(logging.WithActorID(req.Context(), "user-1"))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "user-1" {
		t.Fatalf("expected actor to pass through, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestKeyedRateLimiter(t *testing.T) {
	limiter := NewKeyedRateLimiter(1, time.Minute, 2, time.Minute).(*keyedRateLimiter)
	now := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	if !limiter.Allow("a") || !limiter.Allow("a") {
		t.Fatal("expected burst of two to be allowed")
	}
	if limiter.Allow("a") {
		t.Fatal("expected third request to be limited")
	}
	if !limiter.Allow("b") {
		t.Fatal("expected independent keys to have their own budget")
	}

	now = now.Add(time.Minute)
	if !limiter.Allow("a") {
		t.Fatal("expected a token to be replenished after the window")
	}

	now = now.Add(2 * time.Minute)
	limiter.Allow("c")
	if _, ok := limiter.visitors["b"]; ok {
		t.Fatal("expected idle visitors to be collected")
	}
}

func TestLimitKeysByActorThenAddress(t *testing.T) {
	limiter := NewKeyedRateLimiter(1, time.Hour, 1, time.Hour)
	handler := Limit(limiter, "toggle")(actorEcho())

	send := func(actor, addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = addr
		if actor != "" {
			req = req.WithContext(logging.WithActorID(req.Context(), actor))
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("u1", "10.0.0.1:1234"); code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", code)
	}
	if code := send("u1", "10.0.0.2:1234"); code != http.StatusTooManyRequests {
		t.Fatalf("expected the same actor to be limited from another address, got %d", code)
	}
	if code := send("u2", "10.0.0.1:1234"); code != http.StatusOK {
		t.Fatalf("expected another actor to pass, got %d", code)
	}
	if code := send("", "10.0.0.3:1234"); code != http.StatusOK {
		t.Fatalf("expected anonymous request to pass, got %d", code)
	}
	if code := send("", "10.0.0.3:9999"); code != http.StatusTooManyRequests {
		t.Fatalf("expected anonymous request from the same host to be limited, got %d", code)
	}

	passthrough := Limit(nil, "toggle")(actorEcho())
	rec := httptest.NewRecorder()
	passthrough.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected nil limiter to pass, got %d", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name      string
		forwarded string
		remote    string
		want      string
	}{
		{"forwarded", "203.0.113.7, 10.0.0.1", "10.0.0.1:80", "203.0.113.7"},
		{"remoteWithPort", "", "192.0.2.1:5555", "192.0.2.1"},
		{"remoteWithoutPort", "", "192.0.2.1", "192.0.2.1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			if tc.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			if got := ClientIP(req); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	var seenID string
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = logging.RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusCreated)
	}))

	inbound := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/videos", nil)
	req.Header.Set(RequestIDHeader, inbound)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seenID != inbound || rec.Header().Get(RequestIDHeader) != inbound {
		t.Fatalf("expected inbound request id to be reused, got ctx %q header %q", seenID, rec.Header().Get(RequestIDHeader))
	}

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode log entry: %v", err)
	}
	if entry["msg"] != "request completed" || entry["status"] != float64(http.StatusCreated) {
		t.Fatalf("unexpected log entry: %v", entry)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get(RequestIDHeader) == "not-a-uuid" {
		t.Fatal("expected a malformed request id to be replaced")
	}
}

func TestRequestLoggerRecoversPanics(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	handler := RequestLogger(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Internal Server Error") {
		t.Fatalf("expected JSON error body, got %q", rec.Body.String())
	}
}
