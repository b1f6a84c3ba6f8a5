// Package response writes the uniform JSON envelope returned by every endpoint.
package response

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/apierror"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/logging"
)

// Envelope is the body shape shared by success and failure responses.
type Envelope struct {
	StatusCode int           `json:"statusCode"`
	Data       any           `json:"data"`
	Message    string        `json:"message"`
	Success    bool          `json:"success"`
	Kind       apierror.Kind `json:"kind,omitempty"`
	Errors     []string      `json:"errors,omitempty"`
	TraceID    string        `json:"traceId,omitempty"`
}

// JSON writes a successful envelope around data.
func JSON(ctx context.Context, w http.ResponseWriter, status int, data any, message string) {
	write(ctx, w, Envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

// Error classifies err and writes a failure envelope. The underlying cause is
// logged but never sent to the client.
func Error(ctx context.Context, w http.ResponseWriter, err error) {
	apiErr := apierror.From(err)
	if apiErr == nil {
		apiErr = apierror.New(apierror.UpstreamFailure, "internal server error")
	}
	status := apiErr.Status()

	logger := logging.FromContext(ctx)
	switch {
	case apiErr.Kind == apierror.Canceled:
		logger.Info("request canceled by client", "status", status, "error", err)
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "kind", apiErr.Kind, "error", err)
	default:
		logger.Warn("request returned client error", "status", status, "kind", apiErr.Kind, "message", apiErr.Message)
	}

	write(ctx, w, Envelope{
		StatusCode: status,
		Message:    apiErr.Message,
		Success:    false,
		Kind:       apiErr.Kind,
		Errors:     apiErr.Details,
		TraceID:    logging.RequestIDFromContext(ctx),
	})
}

func write(ctx context.Context, w http.ResponseWriter, envelope Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(envelope.StatusCode)

	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", envelope.StatusCode, "error", err)
	}
}
