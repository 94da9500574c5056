package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"orbit/internal/domain/auth"
)

// fakeSessions marks one token hash as live.
type fakeSessions struct {
	liveHash string
	checked  int
}

func (f *fakeSessions) SessionValid(_ context.Context, _, tokenHash string) (bool, error) {
	f.checked++
	return tokenHash == f.liveHash, nil
}

func TestAuthMiddlewareSetsUser(t *testing.T) {
	secret := "test-secret"
	token, err := auth.GenerateToken(secret, auth.Claims{
		UserID:   "u1",
		TenantID: "t1",
		RoleID:   "r1",
		RoleName: auth.RolePayrollAdmin,
	}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	handler := Auth(secret, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUser(r.Context())
		if !ok {
			t.Fatal("expected user in context")
		}
		if user.UserID != "u1" || user.RoleName != auth.RolePayrollAdmin {
			t.Fatalf("unexpected user: %+v", user)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	handler := Auth("secret", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); ok {
			t.Fatal("did not expect user in context")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
}

func TestAuthMiddlewareBadToken(t *testing.T) {
	handler := Auth("secret", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); ok {
			t.Fatal("did not expect user in context for a forged token")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
}

func TestAuthMiddlewareChecksSession(t *testing.T) {
	secret := "test-secret"
	makeToken := func(sessionID string) string {
		token, err := auth.GenerateToken(secret, auth.Claims{
			UserID:    "u1",
			TenantID:  "t1",
			RoleID:    "r1",
			RoleName:  auth.RolePayrollAdmin,
			SessionID: sessionID,
		}, time.Hour)
		if err != nil {
			t.Fatalf("token error: %v", err)
		}
		return token
	}

	sessions := &fakeSessions{liveHash: auth.HashToken("live-session")}

	var sawUser bool
	handler := Auth(secret, sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawUser = GetUser(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+makeToken("live-session"))
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if !sawUser {
		t.Fatal("expected user for a live session")
	}

	// A structurally valid JWT whose session was revoked at logout must
	// come through anonymous.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+makeToken("revoked-session"))
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if sawUser {
		t.Fatal("expected anonymous request for a revoked session")
	}
	if sessions.checked != 2 {
		t.Fatalf("expected 2 session checks, got %d", sessions.checked)
	}
}
