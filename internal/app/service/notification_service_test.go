package service

import (
	"context"
	"testing"

	"code_practice/internal/common"
	"code_practice/internal/domain/model"
	"code_practice/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationService_ReadFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "Alice", "alice@example.com")
	bob := env.register(t, "Bob", "bob@example.com")

	require.NoError(t, env.notifications.Notify(ctx,
		model.Notification{UserID: alice.ID, Type: model.NotificationNewProblem, Title: "a", Message: "first"},
		model.Notification{UserID: alice.ID, Type: model.NotificationNewProblem, Title: "b", Message: "second"},
	))

	list, err := env.notifications.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Message, "newest first")

	count, err := env.notifications.UnreadCount(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, env.notifications.MarkRead(ctx, alice, list[0].ID))
	require.NoError(t, env.notifications.MarkRead(ctx, alice, list[0].ID), "idempotent")
	badge, _ := env.badges.Last(alice.ID)
	assert.Equal(t, 1, badge)

	assert.ErrorIs(t, env.notifications.MarkRead(ctx, bob, list[1].ID), common.ErrNotFound)
	assert.ErrorIs(t, env.notifications.Delete(ctx, bob, list[1].ID), common.ErrNotFound)

	require.NoError(t, env.notifications.MarkAllRead(ctx, alice))
	count, err = env.notifications.UnreadCount(ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, env.notifications.Delete(ctx, alice, list[1].ID))
	list, err = env.notifications.List(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestNotificationService_UsesQueueWhenConfigured(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "Alice", "alice@example.com")

	q := &testutil.Queue{}
	svc := NewNotificationService(env.store.Notifications(), env.store.Users(), q, env.badges)
	require.NoError(t, svc.NotifyRole(ctx, model.RoleStudent, model.NotificationNewPattern, "t", "m", nil))

	require.Len(t, q.Items, 1)
	assert.Equal(t, alice.ID, q.Items[0].UserID)
	assert.NotEmpty(t, q.Items[0].ID)

	list, err := svc.List(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, list, "nothing stored until the worker delivers")

	require.NoError(t, svc.Deliver(ctx, &q.Items[0]))
	list, err = svc.List(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestNotificationService_RequiresCaller(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.notifications.List(context.Background(), nil)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}
