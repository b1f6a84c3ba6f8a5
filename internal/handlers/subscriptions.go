package handlers

import (
	"net/http"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/response"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/social"
)

// SubscriptionHandler toggles channel subscriptions.
type SubscriptionHandler struct {
	Social SocialService
}

// Toggle handles POST /api/v1/subscriptions/c/{channelId}.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	actorID, ok := viewer(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	outcome, err := h.Social.ToggleSubscription(ctx, actorID, r.PathValue("channelId"))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}

	message := "Subscribed"
	if outcome == social.Removed {
		message = "Unsubscribed"
	}
	response.JSON(ctx, w, http.StatusOK, toggled(outcome), message)
}
