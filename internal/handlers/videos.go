package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/apierror"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/auth"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/content"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/logging"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/pagination"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/response"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/views"
)

// VideoHandler provides endpoints for publishing, browsing and editing videos.
type VideoHandler struct {
	Content  ContentService
	Views    ViewComposer
	Recorder ViewRecorder
}

type updateVideoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// List handles GET /api/v1/videos.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	sort, err := pagination.ParseSort(query.Get("sortBy"), query.Get("sortType"))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}

	page, err := h.Views.ListVideos(ctx, auth.ViewerID(ctx), views.VideoQuery{
		Query:   query.Get("query"),
		OwnerID: strings.TrimSpace(query.Get("userId")),
		Sort:    sort,
		Page:    pagination.Parse(query),
	})
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, page, "Videos fetched")
}

// Publish handles POST /api/v1/videos.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
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

	var duration float64
	if raw := form.value("duration"); raw != "" {
		duration, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			response.Error(ctx, w, apierror.Validationf("duration must be a number of seconds"))
			return
		}
	}

	videoFile, err := form.file("videoFile")
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	thumbnail, err := form.file("thumbnail")
	if err != nil {
		response.Error(ctx, w, err)
		return
	}

	video, err := h.Content.PublishVideo(ctx, actorID, content.PublishInput{
		Title:       form.value("title"),
		Description: form.value("description"),
		Duration:    duration,
		Video:       videoFile,
		Thumbnail:   thumbnail,
	})
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusCreated, video, "Video uploaded")
}

// Get handles GET /api/v1/videos/{videoId} and counts the view.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID := auth.ViewerID(ctx)
	videoID := r.PathValue("videoId")

	detail, err := h.Views.GetVideo(ctx, viewerID, videoID)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}

	if h.Recorder != nil {
		if err := h.Recorder.RecordView(viewerID, detail.ID); err != nil {
			logging.FromContext(ctx).Debug("view not recorded", "video_id", detail.ID, "error", err)
		}
	}
	response.JSON(ctx, w, http.StatusOK, detail, "Video fetched")
}

// Update handles PATCH /api/v1/videos/{videoId}. It accepts JSON or a
// multipart form carrying an optional thumbnail.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, ok := viewer(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	var in content.UpdateVideoInput
	if isMultipart(r) {
		form, err := parseUploadForm(w, r)
		if err != nil {
			response.Error(ctx, w, err)
			return
		}
		defer form.Close()

		in.Title = form.optionalValue("title")
		in.Description = form.optionalValue("description")
		if in.Thumbnail, err = form.file("thumbnail"); err != nil {
			response.Error(ctx, w, err)
			return
		}
	} else {
		var req updateVideoRequest
		if err := decodeJSON(w, r, &req); err != nil {
			response.Error(ctx, w, err)
			return
		}
		in.Title, in.Description = req.Title, req.Description
	}

	video, err := h.Content.UpdateVideo(ctx, actorID, r.PathValue("videoId"), in)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, video, "Video updated")
}

// Delete handles DELETE /api/v1/videos/{videoId}.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := viewer(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	videoID := r.PathValue("videoId")

	if err := h.Content.DeleteVideo(ctx, actorID, videoID); err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, map[string]string{"videoId": videoID}, "Video deleted")
}

// TogglePublish handles PATCH /api/v1/videos/toggle/publish/{videoId}.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	actorID, ok := viewer(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	video, err := h.Content.TogglePublish(ctx, actorID, r.PathValue("videoId"))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, map[string]bool{"isPublished": video.IsPublished}, "Publish status toggled")
}
