package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garnizeh/fairway/internal/models"
)

const applicationColumns = `id, job_id, professional_id, message, proposed_rate, status, applied_at, updated`

func (r *SQLiteRepo) CreateApplication(ctx context.Context, a *models.Application) (int64, error) {
	if a == nil {
		return 0, fmt.Errorf("application is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO applications (job_id, professional_id, message, proposed_rate, status, applied_at, updated) VALUES (?,?,?,?,?,?,?)`,
		a.JobID, a.ProfessionalID, a.Message, a.ProposedRate, a.Status, ts, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetApplicationByID(ctx context.Context, id int64) (*models.Application, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id)
	return scanApplication(row.Scan)
}

func (r *SQLiteRepo) GetApplicationByJobAndProfessional(ctx context.Context, jobID, professionalID int64) (*models.Application, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE job_id = ? AND professional_id = ?`, jobID, professionalID)
	return scanApplication(row.Scan)
}

func (r *SQLiteRepo) ListApplicationsByJob(ctx context.Context, jobID int64) ([]models.Application, error) {
	return r.listApplications(ctx, `SELECT `+applicationColumns+` FROM applications WHERE job_id = ? ORDER BY applied_at ASC`, jobID)
}

func (r *SQLiteRepo) ListApplicationsByProfessional(ctx context.Context, professionalID int64) ([]models.Application, error) {
	return r.listApplications(ctx, `SELECT `+applicationColumns+` FROM applications WHERE professional_id = ? ORDER BY applied_at DESC`, professionalID)
}

func (r *SQLiteRepo) listApplications(ctx context.Context, q string, args ...any) ([]models.Application, error) {
	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Application
	for rows.Next() {
		a, err := scanApplication(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// TransitionStatus performs a guarded status write. The guard makes racing
// writers resolve to last-committed-wins: the loser's update matches zero
// rows and reports false.
func (r *SQLiteRepo) TransitionStatus(ctx context.Context, id int64, from, to string) (bool, error) {
	res, err := r.conn.Exec(ctx, `UPDATE applications SET status = ?, updated = ? WHERE id = ? AND status = ?`,
		to, now(), id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AcceptApplication marks the application accepted_by_course and rejects all
// sibling pending applications of the same job in one transaction.
func (r *SQLiteRepo) AcceptApplication(ctx context.Context, id, jobID int64) (bool, error) {
	tx, err := r.conn.GetConn().BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}

	ts := now()
	res, err := tx.ExecContext(ctx, `UPDATE applications SET status = ?, updated = ? WHERE id = ? AND status = ?`,
		models.ApplicationAcceptedByCourse, ts, id, models.ApplicationPending)
	if err != nil {
		_ = tx.Rollback()
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return false, err
	}
	if n == 0 {
		_ = tx.Rollback()
		return false, nil
	}

	// sibling sweep: only still-pending rows move; already-rejected rows stay
	if _, err := tx.ExecContext(ctx, `UPDATE applications SET status = ?, updated = ? WHERE job_id = ? AND id != ? AND status = ?`,
		models.ApplicationRejected, ts, jobID, id, models.ApplicationPending); err != nil {
		_ = tx.Rollback()
		return false, err
	}

	return true, tx.Commit()
}

// ConfirmApplication marks the application accepted_by_professional and moves
// the parent job to in_progress in one transaction.
func (r *SQLiteRepo) ConfirmApplication(ctx context.Context, id, jobID, professionalID int64) (bool, error) {
	tx, err := r.conn.GetConn().BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}

	ts := now()
	res, err := tx.ExecContext(ctx, `UPDATE applications SET status = ?, updated = ? WHERE id = ? AND status = ?`,
		models.ApplicationAcceptedByProfessional, ts, id, models.ApplicationAcceptedByCourse)
	if err != nil {
		_ = tx.Rollback()
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return false, err
	}
	if n == 0 {
		_ = tx.Rollback()
		return false, nil
	}

	res, err = tx.ExecContext(ctx, `UPDATE jobs SET status = ?, professional_id = ?, updated = ? WHERE id = ? AND status = ?`,
		models.JobStatusInProgress, professionalID, ts, jobID, models.JobStatusOpen)
	if err != nil {
		_ = tx.Rollback()
		return false, err
	}
	n, err = res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return false, err
	}
	if n == 0 {
		// job already left open; do not commit a half transition
		_ = tx.Rollback()
		return false, nil
	}

	return true, tx.Commit()
}

func (r *SQLiteRepo) DeleteApplication(ctx context.Context, id int64) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM applications WHERE id = ?`, id)
	return err
}

func scanApplication(scan func(dest ...any) error) (*models.Application, error) {
	var a models.Application
	if err := scan(&a.ID, &a.JobID, &a.ProfessionalID, &a.Message, &a.ProposedRate, &a.Status, &a.AppliedAt, &a.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
