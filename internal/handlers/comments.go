package handlers

import (
	"net/http"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/auth"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/pagination"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/response"
)

// CommentHandler serves comment feeds and comment mutations.
type CommentHandler struct {
	Content ContentService
	Views   ViewComposer
}

type commentRequest struct {
	Content string `json:"content"`
}

// List handles GET /api/v1/comments/{videoId}.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, err := h.Views.ListComments(ctx, auth.ViewerID(ctx), r.PathValue("videoId"), pagination.Parse(r.URL.Query()))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, page, "Comments fetched")
}

// Add handles POST /api/v1/comments/{videoId}.
func (h CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	actorID, ok := viewer(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(ctx, w, err)
		return
	}

	comment, err := h.Content.AddComment(ctx, actorID, r.PathValue("videoId"), req.Content)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusCreated, comment, "Comment added")
}

// Update handles PATCH /api/v1/comments/c/{commentId}.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, ok := viewer(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(ctx, w, err)
		return
	}

	comment, err := h.Content.UpdateComment(ctx, actorID, r.PathValue("commentId"), req.Content)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, comment, "Comment updated")
}

// Delete handles DELETE /api/v1/comments/c/{commentId}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := viewer(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	commentID := r.PathValue("commentId")

	if err := h.Content.DeleteComment(ctx, actorID, commentID); err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, map[string]string{"commentId": commentID}, "Comment deleted")
}
