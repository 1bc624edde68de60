package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/garnizeh/fairway/internal/fault"
	"github.com/garnizeh/fairway/internal/models"
	"github.com/garnizeh/fairway/pkg/repository"
)

// ProgressService tracks in-progress work: the started milestone, appended
// updates, and the completion transition.
type ProgressService struct {
	jobs    repository.JobRepo
	updates repository.UpdateRepo
	logger  *slog.Logger
}

func NewProgressService(jobs repository.JobRepo, updates repository.UpdateRepo, logger *slog.Logger) *ProgressService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressService{jobs: jobs, updates: updates, logger: logger}
}

// UpdateInput is the body of a posted job update.
type UpdateInput struct {
	UpdateType string   `json:"update_type"`
	Milestone  *string  `json:"milestone,omitempty"`
	Content    string   `json:"content,omitempty"`
	PhotoURLs  []string `json:"photo_urls,omitempty"`
}

// StartWork records the started milestone, once, for an in-progress job.
func (s *ProgressService) StartWork(ctx context.Context, actor Actor, jobID int64) (*models.JobUpdate, error) {
	job, err := s.loadAssignedJob(ctx, actor, jobID)
	if err != nil {
		return nil, err
	}

	started, err := s.updates.HasMilestone(ctx, jobID, models.MilestoneStarted)
	if err != nil {
		return nil, fmt.Errorf("check started milestone: %w", err)
	}
	if started {
		return nil, fault.New(fault.CodeInvalidState, "work already started")
	}

	milestone := models.MilestoneStarted
	u := &models.JobUpdate{
		JobID:          job.ID,
		ProfessionalID: actor.ID,
		UpdateType:     models.UpdateTypeMilestone,
		Milestone:      &milestone,
		Content:        "Work started",
	}
	id, err := s.updates.CreateJobUpdate(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("record start: %w", err)
	}
	u.ID = id
	s.logger.Info("work started", slog.Int64("job_id", job.ID), slog.Int64("professional_id", actor.ID))
	return u, nil
}

// PostUpdate appends a progress record. At least one of content, milestone,
// or photos must be present. A completed milestone also finishes the job.
func (s *ProgressService) PostUpdate(ctx context.Context, actor Actor, jobID int64, in UpdateInput) (*models.JobUpdate, error) {
	job, err := s.loadAssignedJob(ctx, actor, jobID)
	if err != nil {
		return nil, err
	}

	if in.UpdateType == "" {
		in.UpdateType = models.UpdateTypeProgress
	}
	fields := map[string]string{}
	if !models.ValidUpdateType(in.UpdateType) {
		fields["update_type"] = "unknown update type"
	}
	if in.Milestone != nil && !models.ValidMilestone(*in.Milestone) {
		fields["milestone"] = "unknown milestone"
	}
	if strings.TrimSpace(in.Content) == "" && in.Milestone == nil && len(in.PhotoURLs) == 0 {
		fields["content"] = "one of content, milestone, or photo_urls is required"
	}
	if len(fields) > 0 {
		return nil, fault.Validation("invalid job update", fields)
	}

	if in.Milestone != nil && *in.Milestone == models.MilestoneCompleted {
		// completing through a milestone goes down the same gated path
		if err := s.completeJob(ctx, job, nil); err != nil {
			return nil, err
		}
	}

	u := &models.JobUpdate{
		JobID:          job.ID,
		ProfessionalID: actor.ID,
		UpdateType:     in.UpdateType,
		Milestone:      in.Milestone,
		Content:        strings.TrimSpace(in.Content),
		PhotoURLs:      in.PhotoURLs,
	}
	id, err := s.updates.CreateJobUpdate(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("create job update: %w", err)
	}
	u.ID = id
	return u, nil
}

// CompleteWork finishes an in-progress job. Either side of the engagement
// may complete; a started milestone must exist.
func (s *ProgressService) CompleteWork(ctx context.Context, actor Actor, jobID int64, completionNotes string) (*models.Job, error) {
	job, err := s.jobs.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	if job == nil {
		return nil, fault.New(fault.CodeNotFound, "job not found")
	}
	assigned := job.ProfessionalID != nil && *job.ProfessionalID == actor.ID
	if job.CourseID != actor.ID && !assigned {
		return nil, fault.New(fault.CodeForbidden, "not a participant of this job")
	}

	var notes *string
	if trimmed := strings.TrimSpace(completionNotes); trimmed != "" {
		notes = &trimmed
	}
	if err := s.completeJob(ctx, job, notes); err != nil {
		return nil, err
	}

	if job.ProfessionalID != nil {
		milestone := models.MilestoneCompleted
		if _, err := s.updates.CreateJobUpdate(ctx, &models.JobUpdate{
			JobID:          job.ID,
			ProfessionalID: *job.ProfessionalID,
			UpdateType:     models.UpdateTypeMilestone,
			Milestone:      &milestone,
			Content:        "Work completed",
		}); err != nil {
			// the job is already completed; the trailing record is best-effort
			s.logger.Warn("failed to record completion update", slog.Int64("job_id", job.ID), slog.Any("err", err))
		}
	}

	return s.jobs.GetJobByID(ctx, jobID)
}

// ListUpdates returns a job's progress history to its participants.
func (s *ProgressService) ListUpdates(ctx context.Context, actor Actor, jobID int64) ([]models.JobUpdate, error) {
	job, err := s.jobs.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	if job == nil {
		return nil, fault.New(fault.CodeNotFound, "job not found")
	}
	assigned := job.ProfessionalID != nil && *job.ProfessionalID == actor.ID
	if job.CourseID != actor.ID && !assigned {
		return nil, fault.New(fault.CodeForbidden, "not a participant of this job")
	}
	return s.updates.ListJobUpdates(ctx, jobID)
}

// completeJob gates and applies the in_progress -> completed transition.
func (s *ProgressService) completeJob(ctx context.Context, job *models.Job, notes *string) error {
	if job.Status != models.JobStatusInProgress {
		return fault.New(fault.CodeInvalidState, "job is not in progress")
	}
	started, err := s.updates.HasMilestone(ctx, job.ID, models.MilestoneStarted)
	if err != nil {
		return fmt.Errorf("check started milestone: %w", err)
	}
	if !started {
		return fault.New(fault.CodeInvalidState, "work was never started")
	}

	job.Status = models.JobStatusCompleted
	if notes != nil {
		job.CompletionNotes = notes
	}
	if err := s.jobs.UpdateJob(ctx, job); err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	s.logger.Info("job completed", slog.Int64("job_id", job.ID))
	return nil
}

// loadAssignedJob resolves an in-progress job the actor works on.
func (s *ProgressService) loadAssignedJob(ctx context.Context, actor Actor, jobID int64) (*models.Job, error) {
	job, err := s.jobs.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	if job == nil {
		return nil, fault.New(fault.CodeNotFound, "job not found")
	}
	// before confirmation there is no assigned professional to authorize
	// against, so the state gate comes first
	if job.Status != models.JobStatusInProgress {
		return nil, fault.New(fault.CodeInvalidState, "job is not in progress")
	}
	if job.ProfessionalID == nil || *job.ProfessionalID != actor.ID {
		return nil, fault.New(fault.CodeForbidden, "not the confirmed professional for this job")
	}
	return job, nil
}
