package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/apierror"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/response"
)

const healthTimeout = 2 * time.Second

// HealthHandler responds with service health information.
type HealthHandler struct {
	Store Pinger
}

// Handle implements GET /healthz.
func (h HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.Store != nil {
		pingCtx, cancel := context.WithTimeout(ctx, healthTimeout)
		defer cancel()
		if err := h.Store.Ping(pingCtx); err != nil {
			response.Error(ctx, w, apierror.Wrap(apierror.UpstreamFailure, "store unavailable", err))
			return
		}
	}

	response.JSON(ctx, w, http.StatusOK, map[string]string{"status": "ok"}, "healthy")
}
