package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/garnizeh/fairway/internal/models"
	"github.com/garnizeh/fairway/pkg/repository"
)

// NotificationDelivery returns the handler for notification.deliver jobs.
// Delivery here means stamping the row so pollers and subscribers can tell a
// notification has left the building; push transports would hang off this
// same handler.
func NotificationDelivery(notifs repository.NotificationRepo, logger *slog.Logger) Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, j *models.BackgroundJob) error {
		var payload struct {
			NotificationID int64 `json:"notification_id"`
		}
		if err := json.Unmarshal(j.Payload, &payload); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		if payload.NotificationID <= 0 {
			return fmt.Errorf("missing notification_id")
		}
		if err := notifs.MarkNotificationDelivered(ctx, payload.NotificationID); err != nil {
			return fmt.Errorf("mark delivered: %w", err)
		}
		logger.Info("notification delivered", slog.Int64("notification_id", payload.NotificationID))
		return nil
	}
}
