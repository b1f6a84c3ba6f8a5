package handlers

import (
	"net/http"
	"time"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/middleware"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/models"
)

// RefreshCookie is the cookie holding the refresh token.
const RefreshCookie = "refreshToken"

func setSessionCookies(w http.ResponseWriter, tokens models.SessionTokens, secure bool) {
	http.SetCookie(w, sessionCookie(middleware.AccessCookie, tokens.AccessToken, tokens.AccessExpiresAt, secure))
	http.SetCookie(w, sessionCookie(RefreshCookie, tokens.RefreshToken, tokens.RefreshExpiresAt, secure))
}

func clearSessionCookies(w http.ResponseWriter, secure bool) {
	for _, name := range []string{middleware.AccessCookie, RefreshCookie} {
		cookie := sessionCookie(name, "", time.Unix(0, 0), secure)
		cookie.MaxAge = -1
		http.SetCookie(w, cookie)
	}
}

func sessionCookie(name, value string, expires time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
