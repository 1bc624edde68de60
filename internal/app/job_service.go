package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/garnizeh/fairway/internal/fault"
	"github.com/garnizeh/fairway/internal/models"
	"github.com/garnizeh/fairway/pkg/repository"
)

const (
	minHourlyRate = 15
	maxHourlyRate = 200
)

// JobService owns job creation, mutation, and cancellation rules.
type JobService struct {
	jobs   repository.JobRepo
	apps   repository.ApplicationRepo
	logger *slog.Logger
}

func NewJobService(jobs repository.JobRepo, apps repository.ApplicationRepo, logger *slog.Logger) *JobService {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobService{jobs: jobs, apps: apps, logger: logger}
}

// JobInput carries the fields a course supplies when posting a job.
// Timestamps are unix milliseconds.
type JobInput struct {
	Title                  string   `json:"title"`
	Description            string   `json:"description"`
	JobType                string   `json:"job_type"`
	Latitude               float64  `json:"latitude"`
	Longitude              float64  `json:"longitude"`
	Address                string   `json:"address"`
	StartDate              int64    `json:"start_date"`
	EndDate                *int64   `json:"end_date,omitempty"`
	HourlyRate             float64  `json:"hourly_rate"`
	RequiredCertifications []string `json:"required_certifications,omitempty"`
	RequiredExperience     *string  `json:"required_experience,omitempty"`
	UrgencyLevel           string   `json:"urgency_level"`
}

// JobPatch carries the whitelisted mutable fields of an open job. Nil means
// "leave unchanged".
type JobPatch struct {
	Title                  *string  `json:"title,omitempty"`
	Description            *string  `json:"description,omitempty"`
	JobType                *string  `json:"job_type,omitempty"`
	Latitude               *float64 `json:"latitude,omitempty"`
	Longitude              *float64 `json:"longitude,omitempty"`
	Address                *string  `json:"address,omitempty"`
	StartDate              *int64   `json:"start_date,omitempty"`
	EndDate                *int64   `json:"end_date,omitempty"`
	HourlyRate             *float64 `json:"hourly_rate,omitempty"`
	RequiredCertifications []string `json:"required_certifications,omitempty"`
	RequiredExperience     *string  `json:"required_experience,omitempty"`
	UrgencyLevel           *string  `json:"urgency_level,omitempty"`
}

// Create validates the input and posts a new open job owned by the acting
// course account.
func (s *JobService) Create(ctx context.Context, actor Actor, in JobInput) (*models.Job, error) {
	if !actor.IsCourse() {
		return nil, fault.New(fault.CodeForbidden, "only course accounts may post jobs")
	}

	if in.UrgencyLevel == "" {
		in.UrgencyLevel = models.UrgencyNormal
	}
	if fields := validateJobInput(in, true); len(fields) > 0 {
		return nil, fault.Validation("invalid job", fields)
	}

	job := &models.Job{
		CourseID:               actor.ID,
		Title:                  strings.TrimSpace(in.Title),
		Description:            strings.TrimSpace(in.Description),
		JobType:                in.JobType,
		Latitude:               in.Latitude,
		Longitude:              in.Longitude,
		Address:                strings.TrimSpace(in.Address),
		StartDate:              in.StartDate,
		EndDate:                in.EndDate,
		HourlyRate:             in.HourlyRate,
		RequiredCertifications: in.RequiredCertifications,
		RequiredExperience:     in.RequiredExperience,
		UrgencyLevel:           in.UrgencyLevel,
		Status:                 models.JobStatusOpen,
	}
	id, err := s.jobs.CreateJob(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	created, err := s.jobs.GetJobByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load created job: %w", err)
	}
	s.logger.Info("job posted", slog.Int64("job_id", id), slog.Int64("course_id", actor.ID))
	return created, nil
}

// Update applies whitelisted fields to a job. Only the owning course may
// edit, and only while the job is open.
func (s *JobService) Update(ctx context.Context, actor Actor, jobID int64, patch JobPatch) (*models.Job, error) {
	job, err := s.jobs.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	if job == nil {
		return nil, fault.New(fault.CodeNotFound, "job not found")
	}
	if job.CourseID != actor.ID {
		return nil, fault.New(fault.CodeForbidden, "not the owning course")
	}
	if job.Status != models.JobStatusOpen {
		return nil, fault.New(fault.CodeInvalidState, "only open jobs may be edited")
	}

	applyJobPatch(job, patch)
	// a passed start_date on an untouched job is not the editor's fault
	if fields := validateJobInput(jobAsInput(job), patch.StartDate != nil); len(fields) > 0 {
		return nil, fault.Validation("invalid job", fields)
	}

	if err := s.jobs.UpdateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("update job: %w", err)
	}
	return s.jobs.GetJobByID(ctx, jobID)
}

// Cancel soft-terminates a job. Completed jobs are immutable; pending
// applications of the cancelled job are rejected in the same transaction.
func (s *JobService) Cancel(ctx context.Context, actor Actor, jobID int64) error {
	job, err := s.jobs.GetJobByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job: %w", err)
	}
	if job == nil {
		return fault.New(fault.CodeNotFound, "job not found")
	}
	if job.CourseID != actor.ID {
		return fault.New(fault.CodeForbidden, "not the owning course")
	}
	if job.Status == models.JobStatusCompleted {
		return fault.New(fault.CodeInvalidState, "completed jobs cannot be deleted")
	}

	ok, err := s.jobs.CancelJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("cancel job: %w", err)
	}
	if !ok {
		return fault.New(fault.CodeInvalidState, "job is not cancellable")
	}
	s.logger.Info("job cancelled", slog.Int64("job_id", jobID), slog.Int64("course_id", actor.ID))
	return nil
}

// Get returns a job if the actor may see it: the owning course, a
// professional with an application against it, or anyone authenticated while
// the job is open.
func (s *JobService) Get(ctx context.Context, actor Actor, jobID int64) (*models.Job, error) {
	job, err := s.jobs.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	if job == nil {
		return nil, fault.New(fault.CodeNotFound, "job not found")
	}

	if job.CourseID == actor.ID || job.Status == models.JobStatusOpen {
		return job, nil
	}
	if actor.IsProfessional() {
		a, err := s.apps.GetApplicationByJobAndProfessional(ctx, jobID, actor.ID)
		if err != nil {
			return nil, fmt.Errorf("load application: %w", err)
		}
		if a != nil {
			return job, nil
		}
	}
	return nil, fault.New(fault.CodeForbidden, "job is not visible to this account")
}

// List returns open jobs matching the filter; any authenticated account may
// browse.
func (s *JobService) List(ctx context.Context, f repository.JobFilter) ([]models.Job, int64, error) {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 50
	}
	items, err := s.jobs.ListOpenJobs(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}
	if f.RadiusKm > 0 {
		// proximity results are refined post-query; a box count would lie
		return items, int64(len(items)), nil
	}
	total, err := s.jobs.CountOpenJobs(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}
	return items, total, nil
}

// ListMine returns the acting course's own jobs in any status.
func (s *JobService) ListMine(ctx context.Context, actor Actor, limit, offset int) ([]models.Job, error) {
	if !actor.IsCourse() {
		return nil, fault.New(fault.CodeForbidden, "only course accounts own jobs")
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.jobs.ListJobsByCourse(ctx, actor.ID, limit, offset)
}

func validateJobInput(in JobInput, requireFutureStart bool) map[string]string {
	fields := map[string]string{}
	if len(strings.TrimSpace(in.Title)) < 5 {
		fields["title"] = "must be at least 5 characters"
	}
	if len(strings.TrimSpace(in.Description)) < 20 {
		fields["description"] = "must be at least 20 characters"
	}
	if !models.ValidJobType(in.JobType) {
		fields["job_type"] = "unknown job type"
	}
	if !models.ValidUrgency(in.UrgencyLevel) {
		fields["urgency_level"] = "unknown urgency level"
	}
	if in.RequiredExperience != nil && !models.ValidExperience(*in.RequiredExperience) {
		fields["required_experience"] = "unknown experience level"
	}
	if requireFutureStart && in.StartDate <= time.Now().UTC().UnixMilli() {
		fields["start_date"] = "must be in the future"
	}
	if in.EndDate != nil && *in.EndDate < in.StartDate {
		fields["end_date"] = "must not precede start_date"
	}
	if in.HourlyRate < minHourlyRate || in.HourlyRate > maxHourlyRate {
		fields["hourly_rate"] = fmt.Sprintf("must be between %d and %d", minHourlyRate, maxHourlyRate)
	}
	if in.Latitude < -90 || in.Latitude > 90 {
		fields["latitude"] = "must be between -90 and 90"
	}
	if in.Longitude < -180 || in.Longitude > 180 {
		fields["longitude"] = "must be between -180 and 180"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func applyJobPatch(job *models.Job, p JobPatch) {
	if p.Title != nil {
		job.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		job.Description = strings.TrimSpace(*p.Description)
	}
	if p.JobType != nil {
		job.JobType = *p.JobType
	}
	if p.Latitude != nil {
		job.Latitude = *p.Latitude
	}
	if p.Longitude != nil {
		job.Longitude = *p.Longitude
	}
	if p.Address != nil {
		job.Address = strings.TrimSpace(*p.Address)
	}
	if p.StartDate != nil {
		job.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		job.EndDate = p.EndDate
	}
	if p.HourlyRate != nil {
		job.HourlyRate = *p.HourlyRate
	}
	if p.RequiredCertifications != nil {
		job.RequiredCertifications = p.RequiredCertifications
	}
	if p.RequiredExperience != nil {
		job.RequiredExperience = p.RequiredExperience
	}
	if p.UrgencyLevel != nil {
		job.UrgencyLevel = *p.UrgencyLevel
	}
}

func jobAsInput(j *models.Job) JobInput {
	return JobInput{
		Title:                  j.Title,
		Description:            j.Description,
		JobType:                j.JobType,
		Latitude:               j.Latitude,
		Longitude:              j.Longitude,
		Address:                j.Address,
		StartDate:              j.StartDate,
		EndDate:                j.EndDate,
		HourlyRate:             j.HourlyRate,
		RequiredCertifications: j.RequiredCertifications,
		RequiredExperience:     j.RequiredExperience,
		UrgencyLevel:           j.UrgencyLevel,
	}
}
