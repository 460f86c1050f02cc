package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"code_practice/internal/app/policy"
	"code_practice/internal/domain/model"
	"code_practice/internal/domain/repository"

	"github.com/google/uuid"
)

// Enqueuer hands notifications to an asynchronous deliverer.
type Enqueuer interface {
	Enqueue(ctx context.Context, notifications ...model.Notification) error
}

// BadgePusher pushes a user's unread count to their live connections.
type BadgePusher interface {
	PushUnread(userID string, count int)
}

type NotificationService struct {
	repo     repository.NotificationRepository
	userRepo repository.UserRepository
	queue    Enqueuer    // nil delivers inline
	badges   BadgePusher // nil disables pushes
}

func NewNotificationService(repo repository.NotificationRepository, userRepo repository.UserRepository, queue Enqueuer, badges BadgePusher) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo, queue: queue, badges: badges}
}

// Notify stamps and dispatches notifications, through the queue when one is configured.
func (s *NotificationService) Notify(ctx context.Context, notifications ...model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range notifications {
		if notifications[i].ID == "" {
			notifications[i].ID = uuid.NewString()
		}
		if notifications[i].CreatedAt.IsZero() {
			notifications[i].CreatedAt = now
		}
	}

	if s.queue != nil {
		if err := s.queue.Enqueue(ctx, notifications...); err != nil {
			return fmt.Errorf("failed to enqueue notifications: %w", err)
		}
		return nil
	}

	for i := range notifications {
		if err := s.Deliver(ctx, &notifications[i]); err != nil {
			return err
		}
	}
	return nil
}

// NotifyRole sends the same notification to every user holding role.
func (s *NotificationService) NotifyRole(ctx context.Context, role, kind, title, message string, relatedSubmissionID *string) error {
	users, err := s.userRepo.ListByRole(ctx, role)
	if err != nil {
		return fmt.Errorf("failed to list %s users: %w", role, err)
	}
	batch := make([]model.Notification, 0, len(users))
	for _, u := range users {
		batch = append(batch, model.Notification{
			UserID:              u.ID,
			Type:                kind,
			Title:               title,
			Message:             message,
			RelatedSubmissionID: relatedSubmissionID,
		})
	}
	return s.Notify(ctx, batch...)
}

// Deliver persists one notification and refreshes the recipient's badge.
func (s *NotificationService) Deliver(ctx context.Context, n *model.Notification) error {
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to store notification for user %s: %w", n.UserID, err)
	}
	s.pushBadge(ctx, n.UserID)
	return nil
}

func (s *NotificationService) pushBadge(ctx context.Context, userID string) {
	if s.badges == nil {
		return
	}
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		slog.Warn("unread count for badge push", "user_id", userID, "error", err)
		return
	}
	s.badges.PushUnread(userID, count)
}

func (s *NotificationService) List(ctx context.Context, caller *policy.Caller) ([]model.Notification, error) {
	if err := policy.Authorize(caller, policy.ActionList, policy.ResourceNotification, caller.UserID()); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, caller.ID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, caller *policy.Caller) (int, error) {
	if err := policy.Authorize(caller, policy.ActionRead, policy.ResourceNotification, caller.UserID()); err != nil {
		return 0, err
	}
	return s.repo.CountUnread(ctx, caller.ID)
}

// MarkRead is scoped to the caller: another user's notification id is NotFound.
func (s *NotificationService) MarkRead(ctx context.Context, caller *policy.Caller, id string) error {
	if err := policy.Authorize(caller, policy.ActionUpdate, policy.ResourceNotification, caller.UserID()); err != nil {
		return err
	}
	if err := s.repo.MarkRead(ctx, id, caller.ID); err != nil {
		return err
	}
	s.pushBadge(ctx, caller.ID)
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, caller *policy.Caller) error {
	if err := policy.Authorize(caller, policy.ActionUpdate, policy.ResourceNotification, caller.UserID()); err != nil {
		return err
	}
	if err := s.repo.MarkAllRead(ctx, caller.ID); err != nil {
		return err
	}
	s.pushBadge(ctx, caller.ID)
	return nil
}

func (s *NotificationService) Delete(ctx context.Context, caller *policy.Caller, id string) error {
	if err := policy.Authorize(caller, policy.ActionDelete, policy.ResourceNotification, caller.UserID()); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, caller.ID); err != nil {
		return err
	}
	s.pushBadge(ctx, caller.ID)
	return nil
}
