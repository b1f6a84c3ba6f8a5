package handlers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/config"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/middleware"
)

func TestRegisterLoginRefreshLifecycle(t *testing.T) {
	srv := newTestServer(t, nil)

	userID := srv.register(t, "alice", "password123")
	sess := srv.login(t, "ALICE@example.com", "password123")
	if sess.UserID != userID {
		t.Fatalf("login resolved to %q, registered %q", sess.UserID, userID)
	}

	rec, env := srv.do(t, call{method: http.MethodGet, path: "/api/v1/users/current-user", token: sess.AccessToken})
	if rec.Code != http.StatusOK {
		t.Fatalf("current user: %d %+v", rec.Code, env)
	}
	if strings.Contains(string(env.Data), "password") || strings.Contains(string(env.Data), sess.RefreshToken) {
		t.Fatalf("credential material leaked: %s", env.Data)
	}

	current := sess.RefreshToken
	for i := 0; i < 2; i++ {
		rec, env := srv.do(t, jsonCall(http.MethodPost, "/api/v1/users/refresh-token", "", map[string]string{"refreshToken": current}))
		if rec.Code != http.StatusOK {
			t.Fatalf("refresh %d: %d %+v", i, rec.Code, env)
		}
		tokens := decodeData[struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
		}](t, env)
		if tokens.RefreshToken == current || tokens.AccessToken == "" {
			t.Fatalf("refresh %d did not rotate tokens", i)
		}

		rec, _ = srv.do(t, jsonCall(http.MethodPost, "/api/v1/users/refresh-token", "", map[string]string{"refreshToken": current}))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("reused refresh token accepted with %d", rec.Code)
		}
		current = tokens.RefreshToken
	}

	rec, _ = srv.do(t, call{method: http.MethodPost, path: "/api/v1/users/logout", token: sess.AccessToken})
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: %d", rec.Code)
	}
	for _, cookie := range rec.Result().Cookies() {
		if cookie.MaxAge >= 0 || cookie.Value != "" {
			t.Fatalf("expected cookie %s to be cleared", cookie.Name)
		}
	}

	rec, _ = srv.do(t, jsonCall(http.MethodPost, "/api/v1/users/refresh-token", "", map[string]string{"refreshToken": current}))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("refresh after logout accepted with %d", rec.Code)
	}
}

func TestLoginSetsHTTPOnlyCookiesAndRefreshReadsCookie(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.register(t, "bob", "password123")

	rec, env := srv.do(t, jsonCall(http.MethodPost, "/api/v1/users/login", "", map[string]string{"email": "bob@example.com", "password": "password123"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %+v", rec.Code, env)
	}

	cookies := rec.Result().Cookies()
	var refresh *http.Cookie
	for _, cookie := range cookies {
		if !cookie.HttpOnly {
			t.Fatalf("cookie %s must be httpOnly", cookie.Name)
		}
		if cookie.Name == RefreshCookie {
			refresh = cookie
		}
	}
	if len(cookies) != 2 || refresh == nil {
		t.Fatalf("expected access and refresh cookies, got %v", cookies)
	}

	rec, env = srv.do(t, call{method: http.MethodPost, path: "/api/v1/users/refresh-token", cookies: []*http.Cookie{refresh}})
	if rec.Code != http.StatusOK {
		t.Fatalf("cookie refresh: %d %+v", rec.Code, env)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.register(t, "carol", "password123")

	_, unknown := srv.do(t, jsonCall(http.MethodPost, "/api/v1/users/login", "", map[string]string{"username": "nobody", "password": "password123"}))
	_, wrong := srv.do(t, jsonCall(http.MethodPost, "/api/v1/users/login", "", map[string]string{"username": "carol", "password": "not-the-password"}))

	if unknown.StatusCode != http.StatusUnauthorized || unknown.Message != wrong.Message || unknown.Kind != wrong.Kind {
		t.Fatalf("expected identical failures, got %+v and %+v", unknown, wrong)
	}
}

func TestRegisterValidationAndConflict(t *testing.T) {
	srv := newTestServer(t, nil)

	rec, env := srv.do(t, multipartCall(t, http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"username": "dave", "email": "dave@example.com", "fullName": "Dave", "password": "password123",
	}, nil))
	if rec.Code != http.StatusBadRequest || len(env.Errors) == 0 {
		t.Fatalf("expected missing avatar to fail validation, got %d %+v", rec.Code, env)
	}

	srv.register(t, "dave", "password123")
	rec, env = srv.do(t, multipartCall(t, http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"username": "DAVE", "email": "other@example.com", "fullName": "Dave", "password": "password123",
	}, map[string]string{"avatar": "a.png"}))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected conflict got %d %+v", rec.Code, env)
	}

	rec, _ = srv.do(t, jsonCall(http.MethodPost, "/api/v1/users/register", "", map[string]string{"username": "erin"}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected JSON registration to be rejected got %d", rec.Code)
	}
}

func TestChangePassword(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.register(t, "frank", "password123")
	sess := srv.login(t, "frank", "password123")

	rec, _ := srv.do(t, jsonCall(http.MethodPost, "/api/v1/users/change-password", sess.AccessToken, map[string]string{"oldPassword": "wrong-one", "newPassword": "new-password"}))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected wrong old password to be rejected got %d", rec.Code)
	}
	rec, _ = srv.do(t, jsonCall(http.MethodPost, "/api/v1/users/change-password", sess.AccessToken, map[string]string{"oldPassword": "password123", "newPassword": "short"}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected weak password to be rejected got %d", rec.Code)
	}
	rec, _ = srv.do(t, jsonCall(http.MethodPost, "/api/v1/users/change-password", sess.AccessToken, map[string]string{"oldPassword": "password123", "newPassword": "new-password"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("change password: %d", rec.Code)
	}
	srv.login(t, "frank", "new-password")
}

func TestCredentialEndpointsAreThrottled(t *testing.T) {
	now := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := middleware.NewKeyedRateLimiter(config.AuthLimit{Requests: 1, Window: time.Hour, Burst: 2}).
		WithNowFunc(func() time.Time { return now })
	srv := newTestServer(t, limiter)

	for i := 0; i < 2; i++ {
		rec, _ := srv.do(t, jsonCall(http.MethodPost, "/api/v1/users/login", "", map[string]string{"username": "x", "password": "y"}))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401 got %d", i, rec.Code)
		}
	}
	rec, env := srv.do(t, jsonCall(http.MethodPost, "/api/v1/users/login", "", map[string]string{"username": "x", "password": "y"}))
	if rec.Code != http.StatusTooManyRequests || env.Kind != "rate_limited" {
		t.Fatalf("expected throttling got %d %+v", rec.Code, env)
	}
}
