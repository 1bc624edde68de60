package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garnizeh/fairway/internal/models"
)

func TestEnsureConversationIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.disp.EnsureConversation(ctx, 7, 1, 2)
	require.NoError(t, err)
	second, err := f.disp.EnsureConversation(ctx, 7, 1, 2)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.mocks.Conversations.Stored, 1)
	assert.Equal(t, 2, f.mocks.Conversations.EnsureCalls)
}

func TestNotifyEnqueuesDelivery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.disp.Notify(ctx, 2, "job_confirmed", "Job confirmed", "Details inside.", map[string]any{"job_id": int64(7)})
	require.NoError(t, err)
	assert.Positive(t, id)

	require.Len(t, f.mocks.Queue.Stored, 1)
	assert.Equal(t, DeliverNotificationJob, f.mocks.Queue.Stored[0].Type)
}

func TestNotifySurvivesEnqueueFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mocks.Queue.EnqueueErr = errors.New("queue table locked")

	id, err := f.disp.Notify(ctx, 2, "job_confirmed", "Job confirmed", "Details inside.", nil)
	require.NoError(t, err)

	// the row exists for polling even though delivery was not scheduled
	notifs, err := f.mocks.Notifications.ListNotificationsByRecipient(ctx, 2, 10, 0)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, id, notifs[0].ID)
	assert.Empty(t, f.mocks.Queue.Stored)
}

func TestPostSystemMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m, err := f.disp.PostSystemMessage(ctx, 5, 1, "Work is confirmed.")
	require.NoError(t, err)
	assert.Equal(t, models.MessageTypeSystem, m.MessageType)
	assert.Positive(t, m.ID)
}
