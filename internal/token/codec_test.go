package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func mustCodec(t *testing.T, kind Kind, secret string, ttl time.Duration) *Codec {
	t.Helper()
	codec, err := NewCodec(kind, secret, ttl)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return codec
}

func TestCodecIssueAndVerify(t *testing.T) {
	codec := mustCodec(t, KindAccess, "access-secret", time.Minute)

	raw, issued, err := codec.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if raw == "" {
		t.Fatal("expected signed token")
	}

	claim, err := codec.Verify(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claim.Subject != "user-1" || claim.Kind != KindAccess {
		t.Fatalf("unexpected claim: %+v", claim)
	}
	if claim.ID != issued.ID || !claim.ExpiresAt.Equal(issued.ExpiresAt) {
		t.Fatalf("verified claim %+v does not match issued %+v", claim, issued)
	}
}

func TestCodecIssueProducesDistinctTokens(t *testing.T) {
	codec := mustCodec(t, KindRefresh, "refresh-secret", time.Hour)
	fixed := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	codec.WithNowFunc(func() time.Time { return fixed })

	first, _, err := codec.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	second, _, err := codec.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if first == second {
		t.Fatal("expected tokens issued in the same second to differ")
	}
}

func TestCodecVerifyExpired(t *testing.T) {
	now := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	codec := mustCodec(t, KindAccess, "access-secret", time.Minute)
	codec.WithNowFunc(func() time.Time { return now })

	raw, _, err := codec.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := codec.Verify(raw); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired got %v", err)
	}
}

func TestCodecVerifyClockSkewTreatedAsExpiry(t *testing.T) {
	now := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	codec := mustCodec(t, KindAccess, "access-secret", time.Minute)
	codec.WithNowFunc(func() time.Time { return now })

	raw, _, err := codec.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	now = now.Add(-time.Hour)
	if _, err := codec.Verify(raw); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired for token issued in the future got %v", err)
	}
}

func TestCodecVerifyRejectsTampering(t *testing.T) {
	codec := mustCodec(t, KindAccess, "access-secret", time.Minute)
	raw, _, err := codec.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		t.Fatalf("expected compact jwt got %q", raw)
	}

	other, _, err := codec.Issue("user-2")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	otherParts := strings.Split(other, ".")

	swapped := strings.Join([]string{parts[0], otherParts[1], parts[2]}, ".")
	if _, err := codec.Verify(swapped); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid for swapped payload got %v", err)
	}

	cases := []string{"", "garbage", "a.b.c", parts[0] + "." + parts[1]}
	for _, tc := range cases {
		if _, err := codec.Verify(tc); !errors.Is(err, ErrMalformed) {
			t.Fatalf("expected ErrMalformed for %q got %v", tc, err)
		}
	}
}

func TestCodecVerifyRejectsForeignSecretAndKind(t *testing.T) {
	access := mustCodec(t, KindAccess, "access-secret", time.Minute)
	refresh := mustCodec(t, KindRefresh, "refresh-secret", time.Hour)

	raw, _, err := refresh.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := access.Verify(raw); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid got %v", err)
	}

	sameSecret := mustCodec(t, KindAccess, "refresh-secret", time.Minute)
	if _, err := sameSecret.Verify(raw); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for wrong kind got %v", err)
	}
}

func TestNewCodecValidation(t *testing.T) {
	if _, err := NewCodec(KindAccess, "", time.Minute); err == nil {
		t.Fatal("expected error for empty secret")
	}
	if _, err := NewCodec(KindAccess, "secret", 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
	if _, err := NewCodec(Kind("other"), "secret", time.Minute); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
