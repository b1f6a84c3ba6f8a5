package handlers

import (
	"net/http"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/models"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/pagination"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/response"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/social"
)

// LikeHandler toggles likes and lists liked videos.
type LikeHandler struct {
	Social SocialService
	Views  ViewComposer
}

type toggleResponse struct {
	Outcome social.Outcome `json:"outcome"`
	Active  bool           `json:"active"`
}

func toggled(outcome social.Outcome) toggleResponse {
	return toggleResponse{Outcome: outcome, Active: outcome == social.Added}
}

// ToggleVideoLike handles POST /api/v1/likes/toggle/v/{videoId}.
func (h LikeHandler) ToggleVideoLike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.VideoTarget(r.PathValue("videoId")))
}

// ToggleCommentLike handles POST /api/v1/likes/toggle/c/{commentId}.
func (h LikeHandler) ToggleCommentLike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.CommentTarget(r.PathValue("commentId")))
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, target models.LikeTarget) {
	actorID, ok := viewer(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	outcome, err := h.Social.ToggleLike(ctx, actorID, target)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}

	message := "Like added"
	if outcome == social.Removed {
		message = "Like removed"
	}
	response.JSON(ctx, w, http.StatusOK, toggled(outcome), message)
}

// LikedVideos handles GET /api/v1/likes/videos.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	actorID, ok := viewer(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	page, err := h.Views.ListLikedVideos(ctx, actorID, pagination.Parse(r.URL.Query()))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, page, "Liked videos fetched")
}
