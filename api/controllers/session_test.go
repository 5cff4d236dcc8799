package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	sessionstate "github.com/farmfreshconnect/farmfresh-backend/internal/session"
	pkgAuth "github.com/farmfreshconnect/farmfresh-backend/pkg/auth"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/config"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/enums"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/types"
)

func sessionTestJWT() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "farmfresh", ExpirationMinutes: 30}
}

func sessionToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(sessionTestJWT(), time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID:   userID,
		FullName: "Casey Grower",
		JTI:      "access-test",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func decodeSessionState(t *testing.T, resp *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	payload, ok := envelope.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected payload %v", envelope.Data)
	}
	state, _ := payload["state"].(string)
	action, _ := payload["action"].(string)
	return state, action
}

func TestSessionStateRequiresRoute(t *testing.T) {
	handler := SessionState(sessionTestJWT(), sessionstate.ResolverFunc(func(ctx context.Context, userID uuid.UUID) (sessionstate.Profile, error) {
		return sessionstate.Profile{}, nil
	}), nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/session", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without route got %d", resp.Code)
	}
}

func TestSessionStateAnonymous(t *testing.T) {
	handler := SessionState(sessionTestJWT(), sessionstate.ResolverFunc(func(ctx context.Context, userID uuid.UUID) (sessionstate.Profile, error) {
		t.Fatal("resolver must not run for anonymous callers")
		return sessionstate.Profile{}, nil
	}), nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/session?route=/dashboard", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	state, action := decodeSessionState(t, resp)
	if state != string(sessionstate.StateUnauthenticated) {
		t.Fatalf("expected unauthenticated state got %q", state)
	}
	if action != string(sessionstate.ActionRedirectSignIn) {
		t.Fatalf("expected sign-in redirect for protected route got %q", action)
	}
}

func TestSessionStateGarbageTokenReadsAsAnonymous(t *testing.T) {
	handler := SessionState(sessionTestJWT(), sessionstate.ResolverFunc(func(ctx context.Context, userID uuid.UUID) (sessionstate.Profile, error) {
		return sessionstate.Profile{}, nil
	}), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session?route=/browse", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	state, action := decodeSessionState(t, resp)
	if state != string(sessionstate.StateUnauthenticated) {
		t.Fatalf("expected unauthenticated state got %q", state)
	}
	if action != string(sessionstate.ActionNone) {
		t.Fatalf("expected no action on public route got %q", action)
	}
}

func TestSessionStateIncompleteProfile(t *testing.T) {
	userID := uuid.New()
	handler := SessionState(sessionTestJWT(), sessionstate.ResolverFunc(func(ctx context.Context, id uuid.UUID) (sessionstate.Profile, error) {
		if id != userID {
			t.Fatalf("resolver got unexpected user %s", id)
		}
		return sessionstate.Profile{}, nil
	}), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session?route=/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, userID))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	state, action := decodeSessionState(t, resp)
	if state != string(sessionstate.StateAuthenticatedIncomplete) {
		t.Fatalf("expected incomplete state got %q", state)
	}
	if action != string(sessionstate.ActionRedirectProfileCompletion) {
		t.Fatalf("expected profile completion redirect got %q", action)
	}
}

func TestSessionStateCompleteProfile(t *testing.T) {
	accountType := enums.AccountTypeBuyer
	phone := "5551234567"
	handler := SessionState(sessionTestJWT(), sessionstate.ResolverFunc(func(ctx context.Context, id uuid.UUID) (sessionstate.Profile, error) {
		return sessionstate.Profile{AccountType: &accountType, PhoneNumber: &phone}, nil
	}), nil)

	// A completed account sitting on the sign-in page belongs on the dashboard.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/session?route=/sign-in", nil)
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, uuid.New()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	state, action := decodeSessionState(t, resp)
	if state != string(sessionstate.StateAuthenticatedComplete) {
		t.Fatalf("expected complete state got %q", state)
	}
	if action != string(sessionstate.ActionRedirectDashboard) {
		t.Fatalf("expected dashboard redirect got %q", action)
	}

	// Unless an external redirect is still settling on the auth route.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/session?route=/sign-in&redirect_in_flight=true", nil)
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, uuid.New()))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	_, action = decodeSessionState(t, resp)
	if action != string(sessionstate.ActionNone) {
		t.Fatalf("expected no action while redirect in flight got %q", action)
	}
}

func TestSessionStateResolverFailureDowngrades(t *testing.T) {
	handler := SessionState(sessionTestJWT(), sessionstate.ResolverFunc(func(ctx context.Context, id uuid.UUID) (sessionstate.Profile, error) {
		return sessionstate.Profile{}, fmt.Errorf("profile store down")
	}), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session?route=/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, uuid.New()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	state, _ := decodeSessionState(t, resp)
	if state != string(sessionstate.StateAuthenticatedIncomplete) {
		t.Fatalf("expected incomplete state on resolver failure got %q", state)
	}
}
