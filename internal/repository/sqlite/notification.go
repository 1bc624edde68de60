package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/garnizeh/fairway/internal/models"
)

func (r *SQLiteRepo) CreateNotification(ctx context.Context, n *models.Notification) (int64, error) {
	if n == nil {
		return 0, fmt.Errorf("notification is nil")
	}

	var metadata any
	if len(n.Metadata) > 0 {
		metadata = string(n.Metadata)
	}
	res, err := r.conn.Exec(ctx, `INSERT INTO notifications (recipient_id, type, title, message, metadata, read, created) VALUES (?,?,?,?,?,0,?)`,
		n.RecipientID, n.Type, n.Title, n.Message, metadata, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) ListNotificationsByRecipient(ctx context.Context, recipientID int64, limit, offset int) ([]models.Notification, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, recipient_id, type, title, message, metadata, read, delivered_at, created FROM notifications WHERE recipient_id = ? ORDER BY created DESC LIMIT ? OFFSET ?`, recipientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var (
			n         models.Notification
			metadata  sql.NullString
			read      int
			delivered sql.NullInt64
		)
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Type, &n.Title, &n.Message, &metadata, &read, &delivered, &n.Created); err != nil {
			return nil, err
		}
		if metadata.Valid {
			n.Metadata = json.RawMessage(metadata.String)
		}
		n.Read = read != 0
		if delivered.Valid {
			n.DeliveredAt = &delivered.Int64
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkNotificationRead flips the read flag; the recipient guard keeps one
// account from acknowledging another's notifications.
func (r *SQLiteRepo) MarkNotificationRead(ctx context.Context, id, recipientID int64) (bool, error) {
	res, err := r.conn.Exec(ctx, `UPDATE notifications SET read = 1 WHERE id = ? AND recipient_id = ?`, id, recipientID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SQLiteRepo) MarkNotificationDelivered(ctx context.Context, id int64) error {
	_, err := r.conn.Exec(ctx, `UPDATE notifications SET delivered_at = ? WHERE id = ?`, now(), id)
	return err
}
