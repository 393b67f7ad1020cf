package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryhub/internal/http-api/errs"
	"libraryhub/internal/http-api/models"
)

func TestNotificationService(t *testing.T) {
	e := newTestEnv(t)
	alice := e.user("alice")
	bob := e.user("bob")
	admin := e.admin("root")

	_, err := e.notifications.Create(e.ctx, &models.Notification{Recipient: "alice", Title: "Hi", Message: "m", Type: "loud"})
	assert.ErrorIs(t, err, errs.ErrValidation)

	n, err := e.notifications.Create(e.ctx, &models.Notification{Recipient: "alice", Title: "Hi", Message: "Welcome"})
	require.NoError(t, err)
	assert.Equal(t, models.NotificationInfo, n.Type)
	assert.False(t, n.IsRead)

	e.notifications.Notify(e.ctx, "alice", models.NotificationAlert, "Second", "Another")

	unread, total, err := e.notifications.ListMine(e.ctx, alice, true, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, unread, 2)

	_, err = e.notifications.MarkAsRead(e.ctx, bob, n.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	read, err := e.notifications.MarkAsRead(e.ctx, alice, n.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	_, total, err = e.notifications.ListMine(e.ctx, alice, true, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = e.notifications.ListMine(e.ctx, alice, false, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, err = e.notifications.MarkAsRead(e.ctx, admin, 999)
	assert.ErrorIs(t, err, ErrNotificationNotFound)

	require.NoError(t, e.notifications.Delete(e.ctx, n.ID))
	assert.ErrorIs(t, e.notifications.Delete(e.ctx, n.ID), ErrNotificationNotFound)
}
