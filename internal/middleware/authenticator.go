package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/apierror"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/auth"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/logging"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/models"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/repositories"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/response"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/token"
)

// AccessCookie is the cookie holding the access token.
const AccessCookie = "accessToken"

// AccessVerifier validates access tokens.
type AccessVerifier interface {
	Verify(raw string) (token.Claim, error)
}

// UserFinder resolves the subject of a verified token.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// Authenticator resolves the viewer of a request from its access token.
type Authenticator struct {
	Tokens AccessVerifier
	Users  UserFinder
}

var errNoToken = errors.New("no access token presented")

// Require rejects requests without a valid access token.
func (a Authenticator) Require(next http.Handler) http.Handler {
	return a.wrap(next, false)
}

// Optional lets anonymous requests through but still rejects invalid tokens.
func (a Authenticator) Optional(next http.Handler) http.Handler {
	return a.wrap(next, true)
}

func (a Authenticator) wrap(next http.Handler, allowAnonymous bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		user, err := a.Authenticate(ctx, r)
		switch {
		case errors.Is(err, errNoToken) && allowAnonymous:
			next.ServeHTTP(w, r)
			return
		case errors.Is(err, errNoToken):
			response.Error(ctx, w, apierror.New(apierror.Unauthorized, "authentication required"))
			return
		case err != nil:
			response.Error(ctx, w, err)
			return
		}

		ctx = auth.WithViewer(ctx, user)
		ctx = logging.With(ctx, "user_id", user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Authenticate verifies the request's access token and loads its user. The
// cookie takes precedence over the Authorization header.
func (a Authenticator) Authenticate(ctx context.Context, r *http.Request) (models.User, error) {
	raw := bearerToken(r)
	if raw == "" {
		return models.User{}, errNoToken
	}

	claim, err := a.Tokens.Verify(raw)
	if err != nil {
		return models.User{}, err
	}

	user, err := a.Users.FindByID(ctx, claim.Subject)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.User{}, apierror.New(apierror.Unauthorized, "invalid access token")
		}
		return models.User{}, err
	}
	return user, nil
}

func bearerToken(r *http.Request) string {
	if cookie, err := r.Cookie(AccessCookie); err == nil && strings.TrimSpace(cookie.Value) != "" {
		return strings.TrimSpace(cookie.Value)
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, value, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(value)
}
