package handlers

import (
	"net/http"
	"strings"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/accounts"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/apierror"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/logging"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/models"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/response"
)

// AuthHandler implements registration and the session lifecycle endpoints.
type AuthHandler struct {
	Sessions     SessionManager
	Accounts     AccountService
	CookieSecure bool
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type loginResponse struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

// Register handles POST /api/v1/users/register.
func (h AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	form, err := parseUploadForm(w, r)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	defer form.Close()

	avatar, err := form.file("avatar")
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	cover, err := form.file("coverImage")
	if err != nil {
		response.Error(ctx, w, err)
		return
	}

	user, err := h.Accounts.Register(ctx, accounts.RegisterInput{
		Username:   form.value("username"),
		Email:      form.value("email"),
		FullName:   form.value("fullName"),
		Password:   form.r.FormValue("password"),
		Avatar:     avatar,
		CoverImage: cover,
	})
	if err != nil {
		response.Error(ctx, w, err)
		return
	}

	response.JSON(ctx, w, http.StatusCreated, user, "User registered successfully")
}

// Login handles POST /api/v1/users/login. Either username or email identifies the user.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(ctx, w, err)
		return
	}

	identity := strings.TrimSpace(req.Username)
	if identity == "" {
		identity = strings.TrimSpace(req.Email)
	}
	if identity == "" || req.Password == "" {
		response.Error(ctx, w, apierror.Validationf("username or email and password are required"))
		return
	}

	user, tokens, err := h.Sessions.Login(ctx, identity, req.Password)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}

	logging.FromContext(ctx).Info("user logged in", "user_id", user.ID)
	setSessionCookies(w, tokens, h.CookieSecure)
	response.JSON(ctx, w, http.StatusOK, loginResponse{
		User:         user,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, "User logged in successfully")
}

// Logout handles POST /api/v1/users/logout.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	actorID, ok := viewer(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	if err := h.Sessions.Logout(ctx, actorID); err != nil {
		response.Error(ctx, w, err)
		return
	}

	clearSessionCookies(w, h.CookieSecure)
	response.JSON(ctx, w, http.StatusOK, struct{}{}, "User logged out")
}

// Refresh handles POST /api/v1/users/refresh-token. The cookie wins over the body.
func (h AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	presented := ""
	if cookie, err := r.Cookie(RefreshCookie); err == nil {
		presented = strings.TrimSpace(cookie.Value)
	}
	if presented == "" {
		var req refreshRequest
		if err := decodeJSON(w, r, &req); err != nil {
			response.Error(ctx, w, err)
			return
		}
		presented = strings.TrimSpace(req.RefreshToken)
	}
	if presented == "" {
		response.Error(ctx, w, apierror.New(apierror.Unauthorized, "refresh token is required"))
		return
	}

	tokens, err := h.Sessions.Refresh(ctx, presented)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}

	setSessionCookies(w, tokens, h.CookieSecure)
	response.JSON(ctx, w, http.StatusOK, tokens, "Access token refreshed")
}

// ChangePassword handles POST /api/v1/users/change-password.
func (h AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	actorID, ok := viewer(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(ctx, w, err)
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		response.Error(ctx, w, apierror.Validationf("oldPassword and newPassword are required"))
		return
	}

	if err := h.Sessions.ChangeSecret(ctx, actorID, req.OldPassword, req.NewPassword); err != nil {
		response.Error(ctx, w, err)
		return
	}

	response.JSON(ctx, w, http.StatusOK, struct{}{}, "Password changed successfully")
}
