// Package activity records video views off the request path.
package activity

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/config"
)

// ViewCounter increments the view count of a video.
type ViewCounter interface {
	IncrementViews(ctx context.Context, videoID string) error
}

// HistoryWriter appends a video to a user's watch history.
type HistoryWriter interface {
	AppendWatchHistory(ctx context.Context, userID, videoID string, watchedAt time.Time) error
}

// ErrDropped is returned when a view was shed because the recorder is
// saturated or closed.
var ErrDropped = errors.New("view dropped")

const writeTimeout = 5 * time.Second

type viewEvent struct {
	viewerID string
	videoID  string
	at       time.Time
}

// Recorder applies view events with a fixed worker pool. Events are dropped,
// never queued unbounded, when the queue is full or the rate limit is hit.
type Recorder struct {
	counter ViewCounter
	history HistoryWriter
	limiter *rate.Limiter
	logger  *slog.Logger
	now     func() time.Time

	mu     sync.Mutex
	closed bool
	events chan viewEvent
	wg     sync.WaitGroup
}

// NewRecorder starts cfg.Workers workers.
func NewRecorder(counter ViewCounter, history HistoryWriter, cfg config.ViewRecorder, logger *slog.Logger) *Recorder {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	r := &Recorder{
		counter: counter,
		history: history,
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		events:  make(chan viewEvent, cfg.QueueSize),
	}

	r.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go r.worker()
	}
	return r
}

// RecordView schedules a view increment and, for signed-in viewers, a watch
// history append. It never blocks.
func (r *Recorder) RecordView(viewerID, videoID string) error {
	if !r.limiter.Allow() {
		r.logger.Debug("view dropped by rate limit", "video_id", videoID)
		return ErrDropped
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrDropped
	}

	select {
	case r.events <- viewEvent{viewerID: viewerID, videoID: videoID, at: r.now()}:
		return nil
	default:
		r.logger.Debug("view dropped, queue full", "video_id", videoID)
		return ErrDropped
	}
}

// Shutdown stops accepting events and waits for queued ones to be written.
func (r *Recorder) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.events)
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (r *Recorder) worker() {
	defer r.wg.Done()
	for event := range r.events {
		r.apply(event)
	}
}

func (r *Recorder) apply(event viewEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := r.counter.IncrementViews(ctx, event.videoID); err != nil {
		r.logger.Error("increment views", "video_id", event.videoID, "error", err)
	}
	if event.viewerID == "" {
		return
	}
	if err := r.history.AppendWatchHistory(ctx, event.viewerID, event.videoID, event.at); err != nil {
		r.logger.Error("append watch history", "user_id", event.viewerID, "video_id", event.videoID, "error", err)
	}
}
