package apierror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/auth"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/pagination"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/repositories"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/token"
)

func TestFromClassifiesCollaboratorErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   Kind
		status int
	}{
		{"not found", fmt.Errorf("select video: %w", repositories.ErrNotFound), NotFound, http.StatusNotFound},
		{"conflict", repositories.ErrConflict, Conflict, http.StatusConflict},
		{"deadline", fmt.Errorf("insert like: %w", context.DeadlineExceeded), Timeout, http.StatusGatewayTimeout},
		{"canceled", fmt.Errorf("select video: %w", context.Canceled), Canceled, StatusClientClosedRequest},
		{"joined canceled", errors.Join(context.Canceled, errors.New("pool closed")), Canceled, StatusClientClosedRequest},
		{"invalid credential", auth.ErrInvalidCredential, Unauthorized, http.StatusUnauthorized},
		{"revoked", auth.ErrRevoked, Unauthorized, http.StatusUnauthorized},
		{"expired token", token.ErrExpired, Unauthorized, http.StatusUnauthorized},
		{"tampered token", token.ErrSignatureInvalid, Unauthorized, http.StatusUnauthorized},
		{"weak secret", auth.ErrWeakSecret, Validation, http.StatusBadRequest},
		{"bad sort", fmt.Errorf("%w: unknown sort field", pagination.ErrInvalidSort), Validation, http.StatusBadRequest},
		{"unknown", errors.New("connection reset"), UpstreamFailure, http.StatusInternalServerError},
		{"classified", Forbiddenf("only the owner may edit this video"), Forbidden, http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := From(tc.err)
			if got.Kind != tc.kind {
				t.Fatalf("expected kind %s got %s", tc.kind, got.Kind)
			}
			if got.Status() != tc.status {
				t.Fatalf("expected status %d got %d", tc.status, got.Status())
			}
		})
	}
}

func TestFromKeepsCauseForLogsOnly(t *testing.T) {
	cause := errors.New("pq: password authentication failed for user glitch")
	got := From(cause)

	if !errors.Is(got, cause) {
		t.Fatal("expected cause to remain reachable through Unwrap")
	}
	if got.Message != "internal server error" {
		t.Fatalf("expected generic client message, got %q", got.Message)
	}
}

func TestFromNil(t *testing.T) {
	if From(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}
