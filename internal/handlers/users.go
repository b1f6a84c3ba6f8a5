package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/accounts"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/apierror"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/auth"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/models"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/pagination"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/response"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/storage"
)

// UserHandler serves the signed-in user's profile and public channel pages.
type UserHandler struct {
	Accounts AccountService
	Views    ViewComposer
}

type updateAccountRequest struct {
	FullName *string `json:"fullName"`
	Email    *string `json:"email"`
}

// Current handles GET /api/v1/users/current-user.
func (h UserHandler) Current(w http.ResponseWriter, r *http.Request) {
	actorID, ok := viewer(w, r)
	if !ok {
		return
	}
	user, err := h.Accounts.Current(r.Context(), actorID)
	if err != nil {
		response.Error(r.Context(), w, err)
		return
	}
	response.JSON(r.Context(), w, http.StatusOK, user, "Current user fetched")
}

// UpdateAccount handles PATCH /api/v1/users/update-account.
func (h UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	actorID, ok := viewer(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	var req updateAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(ctx, w, err)
		return
	}

	user, err := h.Accounts.UpdateProfile(ctx, actorID, accounts.ProfileInput{FullName: req.FullName, Email: req.Email})
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, user, "Account details updated")
}

// UpdateAvatar handles PATCH /api/v1/users/avatar.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "avatar", h.Accounts.UpdateAvatar, "Avatar updated")
}

// UpdateCoverImage handles PATCH /api/v1/users/cover-image.
func (h UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "coverImage", h.Accounts.UpdateCoverImage, "Cover image updated")
}

func (h UserHandler) replaceImage(w http.ResponseWriter, r *http.Request, field string, update func(context.Context, string, *storage.Upload) (models.User, error), message string) {
	actorID, ok := viewer(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	form, err := parseUploadForm(w, r)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	defer form.Close()

	upload, err := form.file(field)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	if upload == nil {
		response.Error(ctx, w, apierror.Validationf("%s file is required", field))
		return
	}

	user, err := update(ctx, actorID, upload)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, user, message)
}

// ChannelProfile handles GET /api/v1/users/c/{username}.
func (h UserHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := strings.ToLower(strings.TrimSpace(r.PathValue("username")))
	if username == "" {
		response.Error(ctx, w, apierror.Validationf("username is required"))
		return
	}

	profile, err := h.Views.ChannelProfile(ctx, auth.ViewerID(ctx), username)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, profile, "Channel fetched")
}

// WatchHistory handles GET /api/v1/users/history.
func (h UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	actorID, ok := viewer(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	page, err := h.Views.WatchHistory(ctx, actorID, pagination.Parse(r.URL.Query()))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, page, "Watch history fetched")
}
