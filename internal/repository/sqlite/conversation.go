package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garnizeh/fairway/internal/models"
)

const conversationColumns = `id, job_id, course_id, professional_id, created`

// EnsureConversation fetches or inserts the conversation for a job. The
// unique index on job_id makes concurrent callers converge on one row.
func (r *SQLiteRepo) EnsureConversation(ctx context.Context, jobID, courseID, professionalID int64) (*models.Conversation, error) {
	if _, err := r.conn.Exec(ctx, `INSERT INTO job_conversations (job_id, course_id, professional_id, created) VALUES (?,?,?,?) ON CONFLICT(job_id) DO NOTHING`,
		jobID, courseID, professionalID, now()); err != nil {
		return nil, fmt.Errorf("ensure conversation: %w", err)
	}

	c, err := r.GetConversationByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("conversation for job %d missing after upsert", jobID)
	}
	return c, nil
}

func (r *SQLiteRepo) GetConversationByID(ctx context.Context, id int64) (*models.Conversation, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+conversationColumns+` FROM job_conversations WHERE id = ?`, id)
	return scanConversation(row)
}

func (r *SQLiteRepo) GetConversationByJob(ctx context.Context, jobID int64) (*models.Conversation, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+conversationColumns+` FROM job_conversations WHERE job_id = ?`, jobID)
	return scanConversation(row)
}

func (r *SQLiteRepo) ListConversationsByAccount(ctx context.Context, accountID int64) ([]models.Conversation, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+conversationColumns+` FROM job_conversations WHERE course_id = ? OR professional_id = ? ORDER BY created DESC`, accountID, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Conversation
	for rows.Next() {
		var c models.Conversation
		if err := rows.Scan(&c.ID, &c.JobID, &c.CourseID, &c.ProfessionalID, &c.Created); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanConversation(row *sql.Row) (*models.Conversation, error) {
	var c models.Conversation
	if err := row.Scan(&c.ID, &c.JobID, &c.CourseID, &c.ProfessionalID, &c.Created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *SQLiteRepo) CreateMessage(ctx context.Context, m *models.Message) (int64, error) {
	if m == nil {
		return 0, fmt.Errorf("message is nil")
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO messages (conversation_id, sender_id, content, message_type, created) VALUES (?,?,?,?,?)`,
		m.ConversationID, m.SenderID, m.Content, m.MessageType, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) ListMessagesByConversation(ctx context.Context, conversationID int64, limit, offset int) ([]models.Message, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, conversation_id, sender_id, content, message_type, created FROM messages WHERE conversation_id = ? ORDER BY created ASC, id ASC LIMIT ? OFFSET ?`, conversationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.MessageType, &m.Created); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
