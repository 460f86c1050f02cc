package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"code_practice/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

// Source yields queued notifications. It returns redis.Nil when nothing
// arrived within timeout.
type Source interface {
	Name() string
	Dequeue(ctx context.Context, timeout time.Duration) (*model.Notification, error)
}

type Deliverer interface {
	Deliver(ctx context.Context, n *model.Notification) error
}

type NotificationWorker struct {
	source      Source
	deliverer   Deliverer
	pollTimeout time.Duration
	retryDelay  time.Duration
}

func NewNotificationWorker(source Source, deliverer Deliverer) *NotificationWorker {
	return &NotificationWorker{
		source:      source,
		deliverer:   deliverer,
		pollTimeout: 5 * time.Second,
		retryDelay:  5 * time.Second,
	}
}

// Start consumes the queue until ctx is cancelled. Notifications are
// delivered one at a time in queue order.
func (w *NotificationWorker) Start(ctx context.Context) {
	slog.Info("notification worker started", "queue", w.source.Name())
	for {
		select {
		case <-ctx.Done():
			slog.Info("notification worker stopping")
			return
		default:
		}

		n, err := w.source.Dequeue(ctx, w.pollTimeout)
		if err != nil {
			switch {
			case errors.Is(err, redis.Nil):
				// poll timeout, queue empty
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				// shutting down; loop re-checks ctx
			default:
				slog.Error("dequeue notification", "queue", w.source.Name(), "error", err)
				w.sleep(ctx, w.retryDelay)
			}
			continue
		}

		if err := w.deliverer.Deliver(ctx, n); err != nil {
			slog.Error("deliver notification", "notification_id", n.ID, "user_id", n.UserID, "error", err)
			continue
		}
		slog.Debug("notification delivered", "notification_id", n.ID, "type", n.Type)
	}
}

func (w *NotificationWorker) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
