package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garnizeh/fairway/internal/models"
)

func (r *SQLiteRepo) CreateJobUpdate(ctx context.Context, u *models.JobUpdate) (int64, error) {
	if u == nil {
		return 0, fmt.Errorf("job update is nil")
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO job_updates (job_id, professional_id, update_type, milestone, content, photo_urls, created) VALUES (?,?,?,?,?,?,?)`,
		u.JobID, u.ProfessionalID, u.UpdateType, u.Milestone, u.Content, encodeStrings(u.PhotoURLs), now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) ListJobUpdates(ctx context.Context, jobID int64) ([]models.JobUpdate, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, job_id, professional_id, update_type, milestone, content, photo_urls, created FROM job_updates WHERE job_id = ? ORDER BY created ASC, id ASC`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.JobUpdate
	for rows.Next() {
		var (
			u         models.JobUpdate
			milestone sql.NullString
			photos    string
		)
		if err := rows.Scan(&u.ID, &u.JobID, &u.ProfessionalID, &u.UpdateType, &milestone, &u.Content, &photos, &u.Created); err != nil {
			return nil, err
		}
		if milestone.Valid {
			u.Milestone = &milestone.String
		}
		u.PhotoURLs = decodeStrings(photos)
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) HasMilestone(ctx context.Context, jobID int64, milestone string) (bool, error) {
	var count int
	row := r.conn.QueryRow(ctx, `SELECT COUNT(1) FROM job_updates WHERE job_id = ? AND milestone = ?`, jobID, milestone)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
