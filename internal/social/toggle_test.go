package social

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/apierror"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/memstore"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/models"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/repositories"
)

func newService(t *testing.T) (Service, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	ctx := context.Background()
	for _, name := range []string{"owner", "fan"} {
		if err := store.Users().Create(ctx, models.User{ID: name, Username: name, Email: name + "@example.com"}); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}
	if err := store.Videos().Create(ctx, models.Video{ID: "v1", OwnerID: "owner", IsPublished: true, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("create video: %v", err)
	}
	if err := store.Videos().Create(ctx, models.Video{ID: "draft", OwnerID: "owner", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("create video: %v", err)
	}
	if err := store.Comments().Create(ctx, models.Comment{ID: "c1", VideoID: "v1", OwnerID: "owner"}); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	return Service{
		Likes:         store.Likes(),
		Subscriptions: store.Subscriptions(),
		Videos:        store.Relations(),
		Comments:      store.Comments(),
		Users:         store.Users(),
	}, store
}

func TestToggleLikeTwiceRestoresState(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	for _, target := range []models.LikeTarget{models.VideoTarget("v1"), models.CommentTarget("c1")} {
		outcome, err := svc.ToggleLike(ctx, "fan", target)
		if err != nil || outcome != Added {
			t.Fatalf("first toggle on %+v: %v %v", target, outcome, err)
		}
		if has, _ := store.Likes().HasLike(ctx, "fan", target); !has {
			t.Fatal("expected like edge")
		}

		outcome, err = svc.ToggleLike(ctx, "fan", target)
		if err != nil || outcome != Removed {
			t.Fatalf("second toggle on %+v: %v %v", target, outcome, err)
		}
		if has, _ := store.Likes().HasLike(ctx, "fan", target); has {
			t.Fatal("expected like edge to be removed")
		}
	}
}

func TestToggleLikeConcurrentNeverDuplicates(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.ToggleLike(ctx, "fan", models.VideoTarget("v1")); err != nil {
				t.Errorf("toggle: %v", err)
			}
		}()
	}
	wg.Wait()

	counts, err := store.Relations().CountLikes(ctx, models.TargetVideo, []string{"v1"})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts["v1"] > 1 {
		t.Fatalf("expected at most one like edge, got %d", counts["v1"])
	}
}

func TestToggleLikeRejectsMissingOrHiddenTargets(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.ToggleLike(ctx, "fan", models.VideoTarget("missing")); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
	if _, err := svc.ToggleLike(ctx, "fan", models.VideoTarget("draft")); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected draft to be hidden got %v", err)
	}
	if _, err := svc.ToggleLike(ctx, "owner", models.VideoTarget("draft")); err != nil {
		t.Fatalf("owner should be able to like their draft: %v", err)
	}
	if _, err := svc.ToggleLike(ctx, "fan", models.LikeTarget{Kind: "playlist", ID: "p1"}); apierror.From(err).Kind != apierror.Validation {
		t.Fatalf("expected validation error got %v", err)
	}
	if _, err := svc.ToggleLike(ctx, "", models.VideoTarget("v1")); apierror.From(err).Kind != apierror.Unauthorized {
		t.Fatalf("expected unauthorized got %v", err)
	}
}

func TestToggleSubscription(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	if outcome, err := svc.ToggleSubscription(ctx, "fan", "owner"); err != nil || outcome != Added {
		t.Fatalf("subscribe: %v %v", outcome, err)
	}
	if has, _ := store.Subscriptions().HasSubscription(ctx, "fan", "owner"); !has {
		t.Fatal("expected subscription edge")
	}
	if outcome, err := svc.ToggleSubscription(ctx, "fan", "owner"); err != nil || outcome != Removed {
		t.Fatalf("unsubscribe: %v %v", outcome, err)
	}

	if _, err := svc.ToggleSubscription(ctx, "fan", "fan"); apierror.From(err).Kind != apierror.Validation {
		t.Fatalf("expected self-subscription to be rejected got %v", err)
	}
	if _, err := svc.ToggleSubscription(ctx, "fan", "ghost"); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}
