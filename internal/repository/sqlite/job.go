package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/garnizeh/fairway/internal/models"
	"github.com/garnizeh/fairway/pkg/repository"
)

const jobColumns = `id, course_id, title, description, job_type, latitude, longitude, address, start_date, end_date, hourly_rate, required_certifications, required_experience, urgency_level, status, professional_id, completion_notes, created, updated`

func (r *SQLiteRepo) CreateJob(ctx context.Context, j *models.Job) (int64, error) {
	if j == nil {
		return 0, fmt.Errorf("job is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO jobs (course_id, title, description, job_type, latitude, longitude, address, start_date, end_date, hourly_rate, required_certifications, required_experience, urgency_level, status, created, updated) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		j.CourseID, j.Title, j.Description, j.JobType, j.Latitude, j.Longitude, j.Address,
		j.StartDate, j.EndDate, j.HourlyRate, encodeStrings(j.RequiredCertifications),
		j.RequiredExperience, j.UrgencyLevel, j.Status, ts, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetJobByID(ctx context.Context, id int64) (*models.Job, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	j, err := scanJob(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return j, nil
}

// UpdateJob writes the mutable job fields. Callers own the whitelist of what
// may change; this persists the full row.
func (r *SQLiteRepo) UpdateJob(ctx context.Context, j *models.Job) error {
	_, err := r.conn.Exec(ctx, `UPDATE jobs SET title = ?, description = ?, job_type = ?, latitude = ?, longitude = ?, address = ?, start_date = ?, end_date = ?, hourly_rate = ?, required_certifications = ?, required_experience = ?, urgency_level = ?, status = ?, professional_id = ?, completion_notes = ?, updated = ? WHERE id = ?`,
		j.Title, j.Description, j.JobType, j.Latitude, j.Longitude, j.Address,
		j.StartDate, j.EndDate, j.HourlyRate, encodeStrings(j.RequiredCertifications),
		j.RequiredExperience, j.UrgencyLevel, j.Status, j.ProfessionalID, j.CompletionNotes, now(), j.ID)
	return err
}

func (r *SQLiteRepo) ListOpenJobs(ctx context.Context, f repository.JobFilter) ([]models.Job, error) {
	q, args := openJobsQuery(`SELECT `+jobColumns+` FROM jobs`, f)
	q += ` ORDER BY created DESC`
	if f.Limit > 0 {
		q += fmt.Sprintf(` LIMIT %d OFFSET %d`, f.Limit, f.Offset)
	}

	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Job
	for rows.Next() {
		j, err := scanJob(rows.Scan)
		if err != nil {
			return nil, err
		}
		// bounding box is coarse; refine with the real distance
		if f.RadiusKm > 0 && haversineKm(f.Lat, f.Lng, j.Latitude, j.Longitude) > f.RadiusKm {
			continue
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) CountOpenJobs(ctx context.Context, f repository.JobFilter) (int64, error) {
	q, args := openJobsQuery(`SELECT COUNT(1) FROM jobs`, f)
	var total int64
	if err := r.conn.QueryRow(ctx, q, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *SQLiteRepo) ListJobsByCourse(ctx context.Context, courseID int64, limit, offset int) ([]models.Job, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+jobColumns+` FROM jobs WHERE course_id = ? ORDER BY created DESC LIMIT ? OFFSET ?`, courseID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Job
	for rows.Next() {
		j, err := scanJob(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

// CancelJob marks the job cancelled and rejects its still-pending
// applications in one transaction. Returns false if the job was already
// completed or cancelled.
func (r *SQLiteRepo) CancelJob(ctx context.Context, jobID int64) (bool, error) {
	tx, err := r.conn.GetConn().BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}

	ts := now()
	res, err := tx.ExecContext(ctx, `UPDATE jobs SET status = ?, updated = ? WHERE id = ? AND status IN (?, ?)`,
		models.JobStatusCancelled, ts, jobID, models.JobStatusOpen, models.JobStatusInProgress)
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

	if _, err := tx.ExecContext(ctx, `UPDATE applications SET status = ?, updated = ? WHERE job_id = ? AND status = ?`,
		models.ApplicationRejected, ts, jobID, models.ApplicationPending); err != nil {
		_ = tx.Rollback()
		return false, err
	}

	return true, tx.Commit()
}

func openJobsQuery(selectClause string, f repository.JobFilter) (string, []any) {
	var sb strings.Builder
	sb.WriteString(selectClause)
	sb.WriteString(` WHERE status = ?`)
	args := []any{models.JobStatusOpen}

	if f.JobType != "" {
		sb.WriteString(` AND job_type = ?`)
		args = append(args, f.JobType)
	}
	if f.UrgencyLevel != "" {
		sb.WriteString(` AND urgency_level = ?`)
		args = append(args, f.UrgencyLevel)
	}
	if f.RadiusKm > 0 {
		// coarse bounding box; trig-free so it stays portable across drivers
		latDelta := f.RadiusKm / 111.0
		lngDelta := f.RadiusKm / (111.0 * math.Max(0.01, math.Cos(f.Lat*math.Pi/180)))
		sb.WriteString(` AND latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?`)
		args = append(args, f.Lat-latDelta, f.Lat+latDelta, f.Lng-lngDelta, f.Lng+lngDelta)
	}

	return sb.String(), args
}

// haversineKm returns the great-circle distance between two points.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371.0
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func scanJob(scan func(dest ...any) error) (*models.Job, error) {
	var (
		j       models.Job
		endDate sql.NullInt64
		certs   string
		exp     sql.NullString
		profID  sql.NullInt64
		notes   sql.NullString
	)
	if err := scan(&j.ID, &j.CourseID, &j.Title, &j.Description, &j.JobType, &j.Latitude, &j.Longitude, &j.Address,
		&j.StartDate, &endDate, &j.HourlyRate, &certs, &exp, &j.UrgencyLevel, &j.Status, &profID, &notes, &j.Created, &j.Updated); err != nil {
		return nil, err
	}
	if endDate.Valid {
		j.EndDate = &endDate.Int64
	}
	j.RequiredCertifications = decodeStrings(certs)
	if exp.Valid {
		j.RequiredExperience = &exp.String
	}
	if profID.Valid {
		j.ProfessionalID = &profID.Int64
	}
	if notes.Valid {
		j.CompletionNotes = &notes.String
	}
	return &j, nil
}
