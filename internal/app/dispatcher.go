package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/garnizeh/fairway/internal/fault"
	"github.com/garnizeh/fairway/internal/models"
	"github.com/garnizeh/fairway/pkg/repository"
)

// DeliverNotificationJob is the background job type emitted for each created
// notification; the queue worker marks the row delivered.
const DeliverNotificationJob = "notification.deliver"

// Dispatcher fires the side effects of lifecycle transitions: conversations,
// system messages, and notifications. It is stateless and every call is
// independently fallible; callers log failures and continue, they never fail
// the authoritative transition over a dispatcher error.
type Dispatcher struct {
	convs  repository.ConversationRepo
	msgs   repository.MessageRepo
	notifs repository.NotificationRepo
	queue  repository.QueueRepo
	logger *slog.Logger
}

func NewDispatcher(convs repository.ConversationRepo, msgs repository.MessageRepo, notifs repository.NotificationRepo, queue repository.QueueRepo, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{convs: convs, msgs: msgs, notifs: notifs, queue: queue, logger: logger}
}

// EnsureConversation fetches or creates the conversation for a job. Calling
// it twice for the same job yields the same conversation, never two rows.
func (d *Dispatcher) EnsureConversation(ctx context.Context, jobID, courseID, professionalID int64) (*models.Conversation, error) {
	c, err := d.convs.EnsureConversation(ctx, jobID, courseID, professionalID)
	if err != nil {
		return nil, fault.Wrap(fault.CodeDependency, "ensure conversation", err)
	}
	return c, nil
}

// PostSystemMessage appends a system message to a conversation.
func (d *Dispatcher) PostSystemMessage(ctx context.Context, conversationID, senderID int64, text string) (*models.Message, error) {
	m := &models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        text,
		MessageType:    models.MessageTypeSystem,
	}
	id, err := d.msgs.CreateMessage(ctx, m)
	if err != nil {
		return nil, fault.Wrap(fault.CodeDependency, "post system message", err)
	}
	m.ID = id
	return m, nil
}

// Notify records a notification for a recipient and enqueues its delivery.
// A failed enqueue leaves the row in place for polling; it is logged, not
// returned.
func (d *Dispatcher) Notify(ctx context.Context, recipientID int64, typ, title, message string, metadata map[string]any) (int64, error) {
	var raw json.RawMessage
	if len(metadata) > 0 {
		b, err := json.Marshal(metadata)
		if err != nil {
			return 0, fault.Wrap(fault.CodeDependency, "encode notification metadata", err)
		}
		raw = b
	}

	id, err := d.notifs.CreateNotification(ctx, &models.Notification{
		RecipientID: recipientID,
		Type:        typ,
		Title:       title,
		Message:     message,
		Metadata:    raw,
	})
	if err != nil {
		return 0, fault.Wrap(fault.CodeDependency, "create notification", err)
	}

	payload, _ := json.Marshal(map[string]any{"notification_id": id})
	j := &models.BackgroundJob{Type: DeliverNotificationJob, Payload: payload, Priority: 100, MaxAttempts: 3, ScheduledAt: time.Now()}
	if _, err := d.queue.Enqueue(ctx, j); err != nil {
		d.logger.Warn("failed to enqueue notification delivery", slog.Int64("notification_id", id), slog.Any("err", err))
	}

	return id, nil
}
